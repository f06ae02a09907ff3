package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/isometry/ldap-identity/identity"
)

// printUser renders one resolved identity, either as indented JSON or as
// key-value, group and claim tables.
func printUser(w io.Writer, user *identity.User, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(user)
	}

	pairs := [][2]string{
		{"Identity", user.Identity},
		{"Account Name", user.AccountName},
		{"UPN", user.UserPrincipalName},
		{"Display Name", user.DisplayName},
		{"Email", user.Email},
		{"DN", user.DistinguishedName},
		{"GUID", user.GUID},
		{"Enabled", fmt.Sprintf("%t", user.AccountEnabled())},
	}
	keyValueTable(w, pairs)

	if len(user.Groups) > 0 {
		fmt.Fprintln(w)
		table := newTable(w, "PRIMARY", "NAME", "IDENTITY", "DN")
		for _, group := range user.Groups {
			primary := ""
			if group.IsPrimary {
				primary = "*"
			}
			table.Append([]string{primary, group.Name, group.Identity, group.DistinguishedName})
		}
		table.Render()
	}

	if len(user.Claims) > 0 {
		fmt.Fprintln(w)
		table := newTable(w, "CLAIM", "VALUE")
		for _, claim := range user.Claims {
			table.Append([]string{claim.Type, claim.Value})
		}
		table.Render()
	}

	return nil
}

// newTable builds a borderless left-aligned table.
func newTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

func keyValueTable(w io.Writer, pairs [][2]string) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator(":")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	for _, pair := range pairs {
		table.Append([]string{pair[0], pair[1]})
	}
	table.Render()
}
