package identity

import (
	"github.com/isometry/ldap-identity/schema"
)

// Dialect carries the schema-specific search parameters of one directory
// flavor: which filters locate users, which attributes record memberships,
// and how group identities are encoded on the wire.
type Dialect struct {
	// UsersFilter matches every user entry; UserFilter narrows to one login
	// name (%s placeholder, filter-escaped before substitution).
	UsersFilter string
	UserFilter  string

	// GroupsAttribute is the multi-valued membership attribute on an entry;
	// PrimaryGroupAttribute the single-valued primary-group identifier.
	GroupsAttribute       string
	PrimaryGroupAttribute string

	// GroupIdentityAttribute is the attribute a group's identity is matched
	// against when resolving the primary group; GroupIdentityConverter
	// decodes its raw values.
	GroupIdentityAttribute string
	GroupIdentityConverter schema.Converter

	// DNAttribute is the attribute holding an entry's own DN, used to chase
	// membership references.
	DNAttribute string
}

// DialectFor returns the built-in parameters of a schema dialect.
func DialectFor(name schema.Name) Dialect {
	switch name {
	case schema.ActiveDirectory:
		return Dialect{
			UsersFilter:            "(&(objectCategory=person)(objectClass=user))",
			UserFilter:             "(&(objectCategory=person)(objectClass=user)(sAMAccountName=%s))",
			GroupsAttribute:        "memberOf",
			PrimaryGroupAttribute:  "primaryGroupID",
			GroupIdentityAttribute: "objectSid",
			GroupIdentityConverter: schema.SIDConverter{},
			DNAttribute:            "distinguishedName",
		}
	case schema.FreeIPA:
		return Dialect{
			UsersFilter:            "(&(objectClass=person)(objectClass=posixAccount))",
			UserFilter:             "(&(objectClass=person)(objectClass=posixAccount)(uid=%s))",
			GroupsAttribute:        "memberOf",
			PrimaryGroupAttribute:  "gidNumber",
			GroupIdentityAttribute: "gidNumber",
			GroupIdentityConverter: schema.NumericStringConverter{},
			DNAttribute:            "entryDN",
		}
	case schema.RFC2307:
		return Dialect{
			UsersFilter:            "(objectClass=posixAccount)",
			UserFilter:             "(&(objectClass=posixAccount)(uid=%s))",
			GroupsAttribute:        "memberOf",
			PrimaryGroupAttribute:  "gidNumber",
			GroupIdentityAttribute: "gidNumber",
			GroupIdentityConverter: schema.NumericStringConverter{},
			DNAttribute:            "entryDN",
		}
	default:
		return Dialect{}
	}
}
