// Package config loads and validates the process configuration from a YAML
// file and LDAP_IDENTITY_* environment variables, then translates it into
// the typed settings the directory and identity packages consume.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/isometry/ldap-identity/directory"
	"github.com/isometry/ldap-identity/identity"
	"github.com/isometry/ldap-identity/schema"
)

// Config is the full on-disk configuration.
//
// Sources, in order of precedence:
//  1. Environment variables (LDAP_IDENTITY_*)
//  2. Configuration file (YAML)
//  3. Default values
type Config struct {
	// Directory holds connection and service-account settings.
	Directory directory.Config `mapstructure:"directory"`

	// Identity holds resolution settings: schema dialect, search bases,
	// group handling and optional filter overrides.
	Identity Identity `mapstructure:"identity"`

	// Logging controls diagnostic output.
	Logging Logging `mapstructure:"logging"`
}

// Identity is the raw resolution section. Schema and scope names stay
// strings here; IdentityConfig parses them into their typed forms.
type Identity struct {
	Schema      string       `mapstructure:"schema" default:"activedirectory" validate:"required"`
	SearchBases []SearchBase `mapstructure:"search_bases" validate:"min=1,dive"`

	ResolveGroupsRecursively bool `mapstructure:"resolve_groups_recursively"`

	// Optional dialect overrides; empty values keep the built-in defaults.
	UsersFilter            string `mapstructure:"users_filter"`
	UserFilter             string `mapstructure:"user_filter"`
	GroupsAttribute        string `mapstructure:"groups_attribute"`
	PrimaryGroupAttribute  string `mapstructure:"primary_group_attribute"`
	GroupIdentityAttribute string `mapstructure:"group_identity_attribute"`
}

// SearchBase is one base DN with its search scope name.
type SearchBase struct {
	BaseDN string `mapstructure:"base_dn" validate:"required"`
	Scope  string `mapstructure:"scope" default:"subtree" validate:"omitempty,oneof=base onelevel one subtree sub"`
}

// Logging controls diagnostic output behaviour.
type Logging struct {
	// Level is the minimum level to emit: debug, info, warn or error.
	Level string `mapstructure:"level" default:"info" validate:"required,oneof=debug info warn error"`

	// Format is the output encoding: text or json.
	Format string `mapstructure:"format" default:"text" validate:"required,oneof=text json"`
}

// Load reads the configuration from the given file path, overlaying
// LDAP_IDENTITY_* environment variables, applying defaults and validating
// the result. An empty path searches the default locations; a missing file
// there is not an error and yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LDAP_IDENTITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(defaultConfigDir())
		v.AddConfigPath(".")
		v.SetConfigName("ldap-identity")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// no file, defaults only
		case os.IsNotExist(err) && path == "":
		default:
			return nil, fmt.Errorf("reading configuration: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("applying configuration defaults: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// IdentityConfig parses the raw identity section into the typed settings the
// resolver consumes. The directory timeout doubles as the per-operation
// resolution timeout.
func (c *Config) IdentityConfig() (*identity.Config, error) {
	name, err := schema.ParseName(c.Identity.Schema)
	if err != nil {
		return nil, err
	}

	bases := make([]identity.SearchBase, 0, len(c.Identity.SearchBases))
	for _, base := range c.Identity.SearchBases {
		scope, err := directory.ParseScope(base.Scope)
		if err != nil {
			return nil, err
		}
		bases = append(bases, identity.SearchBase{BaseDN: base.BaseDN, Scope: scope})
	}

	return &identity.Config{
		Schema:                   name,
		SearchBases:              bases,
		ResolveGroupsRecursively: c.Identity.ResolveGroupsRecursively,
		Timeout:                  c.Directory.Timeout,
		UsersFilter:              c.Identity.UsersFilter,
		UserFilter:               c.Identity.UserFilter,
		GroupsAttribute:          c.Identity.GroupsAttribute,
		PrimaryGroupAttribute:    c.Identity.PrimaryGroupAttribute,
		GroupIdentityAttribute:   c.Identity.GroupIdentityAttribute,
	}, nil
}

// defaultConfigDir returns the user configuration directory, preferring
// XDG_CONFIG_HOME over ~/.config.
func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ldap-identity")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "ldap-identity")
}
