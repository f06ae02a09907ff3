package identity

import (
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isometry/ldap-identity/schema"
)

func buildUserMap(t *testing.T, name schema.Name) *schema.Map[*User] {
	t.Helper()
	m, err := schema.Build(name, UserFields())
	require.NoError(t, err)
	return m
}

func TestMapEntry(t *testing.T) {
	userMap := buildUserMap(t, schema.ActiveDirectory)

	dn := "CN=Alice,OU=People," + testBaseDN
	entry := ldap.NewEntry(dn, map[string][]string{
		"objectSid":          {testSID(1105)},
		"sAMAccountName":     {"alice"},
		"distinguishedName":  {dn},
		"userPrincipalName":  {"alice@example.com"},
		"displayName":        {"Alice Example"},
		"mail":               {"alice@example.com"},
		"memberOf":           {"CN=Developers," + testBaseDN, "CN=Operations," + testBaseDN},
		"primaryGroupID":     {"513"},
		"userAccountControl": {"512"},
		"pwdLastSet":         {"132539328000000000"},
		"whenCreated":        {"20200101000000.0Z"},
		"whenChanged":        {"20210101000000.0Z"},
	})

	user, err := MapEntry(entry, &User{}, userMap, nil)
	require.NoError(t, err)

	assert.Equal(t, "S-1-5-21-111-222-333-1105", user.Identity)
	assert.Equal(t, "alice", user.AccountName)
	assert.Equal(t, dn, user.DistinguishedName)
	assert.Equal(t, "alice@example.com", user.UserPrincipalName)
	assert.Equal(t, "Alice Example", user.DisplayName)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, []string{"CN=Developers," + testBaseDN, "CN=Operations," + testBaseDN}, user.MemberOf)
	assert.Equal(t, "513", user.PrimaryGroupID)
	assert.Equal(t, "512", user.UserAccountControl)
	assert.Equal(t, "2021-01-01T00:00:00Z", user.PasswordLastSet)
	assert.Equal(t, "20200101000000.0Z", user.WhenCreated)
	assert.Equal(t, "20210101000000.0Z", user.WhenChanged)

	assert.True(t, user.AccountEnabled())
	assert.False(t, user.PasswordNeverExpires())
}

func TestMapEntryMissingAttributesTolerated(t *testing.T) {
	userMap := buildUserMap(t, schema.ActiveDirectory)

	entry := ldap.NewEntry("CN=Bob,OU=People,"+testBaseDN, map[string][]string{
		"objectSid":      {testSID(1200)},
		"sAMAccountName": {"bob"},
	})

	user, err := MapEntry(entry, &User{}, userMap, nil)
	require.NoError(t, err)

	assert.Equal(t, "S-1-5-21-111-222-333-1200", user.Identity)
	assert.Equal(t, "bob", user.AccountName)
	assert.Empty(t, user.Email)
	assert.Empty(t, user.MemberOf)
}

func TestMapEntryDNFallback(t *testing.T) {
	// Servers that do not expose a DN attribute still report the entry DN
	// on the envelope.
	userMap := buildUserMap(t, schema.ActiveDirectory)

	dn := "CN=Carol,OU=People," + testBaseDN
	entry := ldap.NewEntry(dn, map[string][]string{
		"objectSid":      {testSID(1300)},
		"sAMAccountName": {"carol"},
	})

	user, err := MapEntry(entry, &User{}, userMap, nil)
	require.NoError(t, err)
	assert.Equal(t, dn, user.DistinguishedName)
}

func TestMapEntryConversionFailure(t *testing.T) {
	userMap := buildUserMap(t, schema.ActiveDirectory)

	entry := ldap.NewEntry("CN=Mallory,OU=People,"+testBaseDN, map[string][]string{
		"objectSid":      {"not-a-binary-sid"},
		"sAMAccountName": {"mallory"},
	})

	_, err := MapEntry(entry, &User{}, userMap, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrUnsupportedConversion)
	assert.Contains(t, err.Error(), "objectSid")
}

func TestMapEntryRFC2307(t *testing.T) {
	m, err := schema.Build(schema.RFC2307, UserFields())
	require.NoError(t, err)

	dn := "uid=dave,ou=people," + testBaseDN
	entry := ldap.NewEntry(dn, map[string][]string{
		"uidNumber": {"10042"},
		"uid":       {"dave"},
		"cn":        {"Dave Example"},
		"gidNumber": {"10000"},
	})

	user, mapErr := MapEntry(entry, &User{}, m, nil)
	require.NoError(t, mapErr)

	assert.Equal(t, "10042", user.Identity)
	assert.Equal(t, "dave", user.AccountName)
	assert.Equal(t, "Dave Example", user.DisplayName)
	assert.Equal(t, "10000", user.PrimaryGroupID)
	assert.Equal(t, dn, user.DistinguishedName)
}

func TestUserAccountControlFlags(t *testing.T) {
	tests := []struct {
		name         string
		uac          string
		enabled      bool
		locked       bool
		neverExpires bool
	}{
		{name: "normal account", uac: "512", enabled: true},
		{name: "disabled account", uac: "514", enabled: false},
		{name: "locked account", uac: "528", enabled: true, locked: true},
		{name: "password never expires", uac: "66048", enabled: true, neverExpires: true},
		{name: "disabled with never expires", uac: "66050", enabled: false, neverExpires: true},
		{name: "unset", uac: "", enabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{UserAccountControl: tt.uac}
			assert.Equal(t, tt.enabled, user.AccountEnabled())
			assert.Equal(t, tt.locked, user.AccountLocked())
			assert.Equal(t, tt.neverExpires, user.PasswordNeverExpires())
		})
	}
}
