// Package commands implements the ldap-identity CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/isometry/ldap-identity/config"
	"github.com/isometry/ldap-identity/directory"
	"github.com/isometry/ldap-identity/identity"
	"github.com/isometry/ldap-identity/logging"
)

// Version information, set by main from ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "ldap-identity",
	Short: "Authenticate and resolve identities against an LDAP directory",
	Long: `ldap-identity authenticates principals against an LDAP directory and
resolves them into typed identities: mapped attributes, resolved group
memberships including the primary group, and projected claims.

Use --config to specify a configuration file, or it will be searched at
$XDG_CONFIG_HOME/ldap-identity/ldap-identity.yaml and the current directory.
Every setting can also be supplied via LDAP_IDENTITY_* environment variables,
for example LDAP_IDENTITY_DIRECTORY_URL=ldaps://dc.example.com.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// session bundles everything a subcommand needs for one resolution run.
type session struct {
	cfg      *config.Config
	client   *directory.Conn
	resolver *identity.Resolver
}

func (s *session) Close() error {
	return s.client.Close()
}

// newSession loads configuration and wires the directory client and
// resolver together.
func newSession() (*session, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logging.NewLogger()

	client := directory.NewConn(&cfg.Directory, logging.NewLogrusLogger(logger, "directory"))

	identityCfg, err := cfg.IdentityConfig()
	if err != nil {
		return nil, err
	}

	resolver, err := identity.NewResolver(identityCfg, client, logging.NewLogrusLogger(logger, "identity"))
	if err != nil {
		return nil, err
	}

	return &session{cfg: cfg, client: client, resolver: resolver}, nil
}
