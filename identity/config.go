package identity

import (
	"fmt"
	"time"

	"github.com/isometry/ldap-identity/directory"
	"github.com/isometry/ldap-identity/schema"
)

// SearchBase is one (base DN, scope) pair; bases are tried in configured
// order and the first match wins.
type SearchBase struct {
	BaseDN string                `mapstructure:"base_dn" validate:"required"`
	Scope  directory.SearchScope `mapstructure:"-"`
}

// Config are the validated core settings one Resolver operates under.
// Exactly one schema dialect is active; every attribute lookup during a
// resolution uses that dialect's mappings only.
type Config struct {
	Schema      schema.Name  `mapstructure:"-" validate:"required"`
	SearchBases []SearchBase `mapstructure:"search_bases" validate:"min=1,dive"`

	// ResolveGroupsRecursively walks the transitive membership closure
	// instead of stopping at direct memberships.
	ResolveGroupsRecursively bool `mapstructure:"resolve_groups_recursively"`

	// Timeout bounds each directory operation; zero waits indefinitely.
	Timeout time.Duration `mapstructure:"timeout"`

	// Optional dialect overrides; empty values keep the built-in defaults.
	UsersFilter            string `mapstructure:"users_filter"`
	UserFilter             string `mapstructure:"user_filter"`
	GroupsAttribute        string `mapstructure:"groups_attribute"`
	PrimaryGroupAttribute  string `mapstructure:"primary_group_attribute"`
	GroupIdentityAttribute string `mapstructure:"group_identity_attribute"`
}

// validate checks construction-time invariants and canonicalizes the schema
// name, so aliases like "ad" or "posix" work wherever the dialect is keyed
// off c.Schema. Configuration defects are fatal and never retried.
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("configuration is required")
	}
	name, err := schema.ParseName(string(c.Schema))
	if err != nil {
		return err
	}
	c.Schema = name
	if len(c.SearchBases) == 0 {
		return fmt.Errorf("at least one search base is required")
	}
	for i, base := range c.SearchBases {
		if base.BaseDN == "" {
			return fmt.Errorf("search base %d has an empty base DN", i)
		}
	}
	return nil
}

// dialect returns the dialect parameters with configuration overrides
// applied.
func (c *Config) dialect() Dialect {
	d := DialectFor(c.Schema)
	if c.UsersFilter != "" {
		d.UsersFilter = c.UsersFilter
	}
	if c.UserFilter != "" {
		d.UserFilter = c.UserFilter
	}
	if c.GroupsAttribute != "" {
		d.GroupsAttribute = c.GroupsAttribute
	}
	if c.PrimaryGroupAttribute != "" {
		d.PrimaryGroupAttribute = c.PrimaryGroupAttribute
	}
	if c.GroupIdentityAttribute != "" {
		d.GroupIdentityAttribute = c.GroupIdentityAttribute
	}
	return d
}
