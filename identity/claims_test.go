package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isometry/ldap-identity/schema"
)

func TestProjectClaims(t *testing.T) {
	userMap := buildUserMap(t, schema.ActiveDirectory)

	user := &User{
		Identity:          "S-1-5-21-111-222-333-1105",
		AccountName:       "alice",
		DistinguishedName: "CN=Alice,OU=People," + testBaseDN,
		UserPrincipalName: "alice@example.com",
		Email:             "alice@example.com",
	}
	groups := []*Group{
		{Identity: "S-1-5-21-111-222-333-513", Name: "Domain Users", IsPrimary: true},
		{Identity: "S-1-5-21-111-222-333-2001", Name: "Developers"},
	}

	claims := ProjectClaims(user, userMap, groups, nil)

	assert.Equal(t, []Claim{
		{Type: ClaimTypeSID, Value: "S-1-5-21-111-222-333-1105"},
		{Type: ClaimTypeName, Value: "alice"},
		{Type: ClaimTypeDN, Value: "CN=Alice,OU=People," + testBaseDN},
		{Type: ClaimTypeUPN, Value: "alice@example.com"},
		{Type: ClaimTypeEmail, Value: "alice@example.com"},
		{Type: ClaimTypePrimaryGroup, Value: "S-1-5-21-111-222-333-513"},
		{Type: ClaimTypeGroup, Value: "S-1-5-21-111-222-333-513"},
		{Type: ClaimTypeGroup, Value: "S-1-5-21-111-222-333-2001"},
	}, claims)
}

func TestProjectClaimsSkipsEmptyValues(t *testing.T) {
	userMap := buildUserMap(t, schema.ActiveDirectory)

	user := &User{
		Identity:    "S-1-5-21-111-222-333-1105",
		AccountName: "alice",
		// no UPN, no email
	}

	claims := ProjectClaims(user, userMap, nil, nil)
	require.Len(t, claims, 2)
	assert.Equal(t, ClaimTypeSID, claims[0].Type)
	assert.Equal(t, ClaimTypeName, claims[1].Type)
}

func TestProjectClaimsSkipsGroupWithoutIdentity(t *testing.T) {
	userMap := buildUserMap(t, schema.ActiveDirectory)

	user := &User{Identity: "S-1-5-21-111-222-333-1105", AccountName: "alice"}
	groups := []*Group{
		{Name: "Broken", DistinguishedName: "CN=Broken," + testBaseDN},
		{Identity: "S-1-5-21-111-222-333-2001", Name: "Developers"},
	}

	claims := ProjectClaims(user, userMap, groups, nil)

	var groupClaims []Claim
	for _, c := range claims {
		if c.Type == ClaimTypeGroup {
			groupClaims = append(groupClaims, c)
		}
	}
	require.Len(t, groupClaims, 1)
	assert.Equal(t, "S-1-5-21-111-222-333-2001", groupClaims[0].Value)
}

func TestFilterClaims(t *testing.T) {
	claims := []Claim{
		{Type: ClaimTypeName, Value: "alice"},
		{Type: ClaimTypeGroup, Value: "S-1-5-21-111-222-333-513"},
		{Type: ClaimTypeGroup, Value: "S-1-5-21-111-222-333-2001"},
	}

	groupsOnly := FilterClaims(claims, func(c Claim) bool { return c.Type == ClaimTypeGroup })
	assert.Len(t, groupsOnly, 2)

	everything := FilterClaims(claims, nil)
	assert.Equal(t, claims, everything)
}
