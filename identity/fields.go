package identity

import (
	"github.com/isometry/ldap-identity/schema"
)

// UserFields is the declarative field registry for User. Each field lists the
// directory attribute backing it under every dialect it participates in; the
// mapper and claims projector walk the registry in declaration order.
func UserFields() []schema.Field[*User] {
	return []schema.Field[*User]{
		{
			Name:       "identity",
			Special:    schema.SpecialIdentity,
			ClaimTypes: []string{ClaimTypeSID},
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "objectSid", Converter: schema.SIDConverter{}},
				{Schema: schema.FreeIPA, Attribute: "ipaUniqueID"},
				{Schema: schema.RFC2307, Attribute: "uidNumber", Converter: schema.NumericStringConverter{}},
			},
			Assign: func(u *User, v string) { u.Identity = v },
			Value:  func(u *User) string { return u.Identity },
		},
		{
			Name:       "account_name",
			Special:    schema.SpecialAccountName,
			ClaimTypes: []string{ClaimTypeName},
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "sAMAccountName"},
				{Schema: schema.FreeIPA, Attribute: "uid"},
				{Schema: schema.RFC2307, Attribute: "uid"},
			},
			Assign: func(u *User, v string) { u.AccountName = v },
			Value:  func(u *User) string { return u.AccountName },
		},
		{
			Name:       "distinguished_name",
			Special:    schema.SpecialDistinguishedName,
			ClaimTypes: []string{ClaimTypeDN},
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "distinguishedName"},
				{Schema: schema.FreeIPA, Attribute: "entryDN"},
				{Schema: schema.RFC2307, Attribute: "entryDN"},
			},
			Assign: func(u *User, v string) { u.DistinguishedName = v },
			Value:  func(u *User) string { return u.DistinguishedName },
		},
		{
			Name:       "upn",
			ClaimTypes: []string{ClaimTypeUPN},
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "userPrincipalName"},
				{Schema: schema.FreeIPA, Attribute: "krbPrincipalName"},
			},
			Assign: func(u *User, v string) { u.UserPrincipalName = v },
			Value:  func(u *User) string { return u.UserPrincipalName },
		},
		{
			Name: "display_name",
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "displayName"},
				{Schema: schema.FreeIPA, Attribute: "displayName"},
				{Schema: schema.RFC2307, Attribute: "cn"},
			},
			Assign: func(u *User, v string) { u.DisplayName = v },
			Value:  func(u *User) string { return u.DisplayName },
		},
		{
			Name:       "email",
			ClaimTypes: []string{ClaimTypeEmail},
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "mail"},
				{Schema: schema.FreeIPA, Attribute: "mail"},
				{Schema: schema.RFC2307, Attribute: "mail"},
			},
			Assign: func(u *User, v string) { u.Email = v },
			Value:  func(u *User) string { return u.Email },
		},
		{
			Name: "guid",
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "objectGUID", Converter: schema.GUIDConverter{}},
			},
			Assign: func(u *User, v string) { u.GUID = v },
			Value:  func(u *User) string { return u.GUID },
		},
		{
			Name:    "member_of",
			Special: schema.SpecialGroups,
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "memberOf"},
				{Schema: schema.FreeIPA, Attribute: "memberOf"},
				{Schema: schema.RFC2307, Attribute: "memberOf"},
			},
			Assign: func(u *User, v string) { u.MemberOf = append(u.MemberOf, v) },
		},
		{
			Name:    "primary_group_id",
			Special: schema.SpecialPrimaryGroup,
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "primaryGroupID", Converter: schema.NumericStringConverter{}},
				{Schema: schema.FreeIPA, Attribute: "gidNumber", Converter: schema.NumericStringConverter{}},
				{Schema: schema.RFC2307, Attribute: "gidNumber", Converter: schema.NumericStringConverter{}},
			},
			Assign: func(u *User, v string) { u.PrimaryGroupID = v },
			Value:  func(u *User) string { return u.PrimaryGroupID },
		},
		{
			Name: "user_account_control",
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "userAccountControl", Converter: schema.NumericStringConverter{}},
			},
			Assign: func(u *User, v string) { u.UserAccountControl = v },
			Value:  func(u *User) string { return u.UserAccountControl },
		},
		{
			Name: "password_last_set",
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "pwdLastSet", Converter: schema.FileTimeConverter{}},
			},
			Assign: func(u *User, v string) { u.PasswordLastSet = v },
			Value:  func(u *User) string { return u.PasswordLastSet },
		},
		{
			Name: "when_created",
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "whenCreated"},
			},
			Assign: func(u *User, v string) { u.WhenCreated = v },
			Value:  func(u *User) string { return u.WhenCreated },
		},
		{
			Name: "when_changed",
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "whenChanged"},
			},
			Assign: func(u *User, v string) { u.WhenChanged = v },
			Value:  func(u *User) string { return u.WhenChanged },
		},
	}
}

// GroupFields is the declarative field registry for Group.
func GroupFields() []schema.Field[*Group] {
	return []schema.Field[*Group]{
		{
			Name:    "identity",
			Special: schema.SpecialIdentity,
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "objectSid", Converter: schema.SIDConverter{}},
				{Schema: schema.FreeIPA, Attribute: "gidNumber", Converter: schema.NumericStringConverter{}},
				{Schema: schema.RFC2307, Attribute: "gidNumber", Converter: schema.NumericStringConverter{}},
			},
			Assign: func(g *Group, v string) { g.Identity = v },
			Value:  func(g *Group) string { return g.Identity },
		},
		{
			Name:    "name",
			Special: schema.SpecialAccountName,
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "cn"},
				{Schema: schema.FreeIPA, Attribute: "cn"},
				{Schema: schema.RFC2307, Attribute: "cn"},
			},
			Assign: func(g *Group, v string) { g.Name = v },
			Value:  func(g *Group) string { return g.Name },
		},
		{
			Name:    "distinguished_name",
			Special: schema.SpecialDistinguishedName,
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "distinguishedName"},
				{Schema: schema.FreeIPA, Attribute: "entryDN"},
				{Schema: schema.RFC2307, Attribute: "entryDN"},
			},
			Assign: func(g *Group, v string) { g.DistinguishedName = v },
			Value:  func(g *Group) string { return g.DistinguishedName },
		},
		{
			Name:    "member_of",
			Special: schema.SpecialGroups,
			Mappings: []schema.AttributeMapping{
				{Schema: schema.ActiveDirectory, Attribute: "memberOf"},
				{Schema: schema.FreeIPA, Attribute: "memberOf"},
				{Schema: schema.RFC2307, Attribute: "memberOf"},
			},
			Assign: func(g *Group, v string) { g.MemberOf = append(g.MemberOf, v) },
		},
	}
}
