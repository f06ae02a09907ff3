package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	listFilter string
	listBase   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List directory users",
	Long: `Enumerate user entries page by page using the service-account session.
Entries are attribute-mapped only; group memberships are not resolved.

Examples:
  ldap-identity list
  ldap-identity list --filter "(department=Engineering)"
  ldap-identity list --base "OU=Contractors,DC=example,DC=com"`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listFilter, "filter", "f", "", "Additional LDAP filter, ANDed with the dialect user filter")
	listCmd.Flags().StringVarP(&listBase, "base", "b", "", "Search base override (subtree scope)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}
	defer sess.Close()

	table := newTable(cmd.OutOrStdout(), "ACCOUNT", "DISPLAY NAME", "EMAIL", "DN")
	for user, err := range sess.resolver.ListEntries(context.Background(), listFilter, listBase) {
		if err != nil {
			return err
		}
		table.Append([]string{user.AccountName, user.DisplayName, user.Email, user.DistinguishedName})
	}
	table.Render()

	return nil
}
