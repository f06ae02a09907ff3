package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	authnPassword string
	authnJSON     bool
)

var authnCmd = &cobra.Command{
	Use:   "authn <username>",
	Short: "Authenticate a principal and print the resolved identity",
	Long: `Authenticate the given principal against the directory with a bind and,
on success, print the resolved identity: mapped attributes, group
memberships including the primary group, and projected claims.

The password is read from --password, the LDAP_IDENTITY_PASSWORD
environment variable, or standard input, in that order.

Examples:
  # Password on stdin
  echo -n "hunter2" | ldap-identity authn alice

  # JSON output
  ldap-identity authn alice --password hunter2 --output-json`,
	Args: cobra.ExactArgs(1),
	RunE: runAuthn,
}

func init() {
	authnCmd.Flags().StringVarP(&authnPassword, "password", "p", "", "Password (prefer stdin or LDAP_IDENTITY_PASSWORD)")
	authnCmd.Flags().BoolVar(&authnJSON, "output-json", false, "Print the identity as JSON")
	rootCmd.AddCommand(authnCmd)
}

func runAuthn(cmd *cobra.Command, args []string) error {
	password := authnPassword
	if password == "" {
		password = os.Getenv("LDAP_IDENTITY_PASSWORD")
	}
	if password == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading password from stdin: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	sess, err := newSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	user, err := sess.resolver.ResolveByCredentials(context.Background(), args[0], password)
	if err != nil {
		return err
	}

	return printUser(cmd.OutOrStdout(), user, authnJSON)
}
