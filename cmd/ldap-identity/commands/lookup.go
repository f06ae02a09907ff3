package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var lookupJSON bool

var lookupCmd = &cobra.Command{
	Use:     "lookup <identifier>",
	Aliases: []string{"whoami"},
	Short:   "Resolve an identity by DN, GUID, SID, UPN or account name",
	Long: `Resolve a directory entry using the service-account session, without an
end-user credential. The identifier kind is detected from its shape:
a distinguished name, a GUID, a SID, a user principal name, or a plain
account name.

Examples:
  ldap-identity lookup alice
  ldap-identity lookup alice@example.com
  ldap-identity lookup S-1-5-21-111-222-333-1105
  ldap-identity lookup "CN=Alice,OU=People,DC=example,DC=com"`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().BoolVar(&lookupJSON, "output-json", false, "Print the identity as JSON")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	user, err := sess.resolver.ResolveByIdentity(context.Background(), args[0])
	if err != nil {
		return err
	}

	return printUser(cmd.OutOrStdout(), user, lookupJSON)
}
