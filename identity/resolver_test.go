package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isometry/ldap-identity/directory"
	"github.com/isometry/ldap-identity/schema"
)

// aliceDirectory builds a mock directory with one user and two groups, the
// fixture most resolver tests run against.
func aliceDirectory() *mockDirectory {
	mock := &mockDirectory{}
	addTestGroup(mock, "Domain Users", 513)
	addTestGroup(mock, "Developers", 2001)
	addTestUser(mock, "alice", 1105, "513", "CN=Developers,"+testBaseDN)
	return mock
}

func newTestResolver(t *testing.T, mock *mockDirectory) *Resolver {
	t.Helper()
	r, err := NewResolver(testConfig(), mock, nil)
	require.NoError(t, err)
	return r
}

func TestNewResolverValidation(t *testing.T) {
	mock := &mockDirectory{}

	_, err := NewResolver(nil, mock, nil)
	assert.Error(t, err)

	_, err = NewResolver(&Config{Schema: schema.ActiveDirectory}, mock, nil)
	assert.Error(t, err)

	_, err = NewResolver(&Config{
		Schema:      "openldap",
		SearchBases: []SearchBase{{BaseDN: testBaseDN}},
	}, mock, nil)
	assert.Error(t, err)
}

func TestNewResolverSchemaAlias(t *testing.T) {
	mock := aliceDirectory()
	cfg := testConfig()
	cfg.Schema = "ad"
	r, err := NewResolver(cfg, mock, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.ActiveDirectory, cfg.Schema)

	user, err := r.ResolveByIdentity(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.AccountName)
}

func TestResolveByCredentials(t *testing.T) {
	mock := aliceDirectory()
	r := newTestResolver(t, mock)

	user, err := r.ResolveByCredentials(context.Background(), "alice", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, 1, mock.bindCalls)
	assert.Equal(t, "alice", mock.lastBindUser)
	assert.Equal(t, "hunter2", mock.lastBindPass)

	assert.Equal(t, "S-1-5-21-111-222-333-1105", user.Identity)
	assert.Equal(t, "alice", user.AccountName)
	assert.Equal(t, "CN=alice,OU=People,"+testBaseDN, user.DistinguishedName)

	require.Len(t, user.Groups, 2)
	assert.True(t, user.Groups[0].IsPrimary)
	assert.Equal(t, "Domain Users", user.Groups[0].Name)
	assert.Equal(t, "S-1-5-21-111-222-333-513", user.Groups[0].Identity)
	assert.False(t, user.Groups[1].IsPrimary)
	assert.Equal(t, "Developers", user.Groups[1].Name)

	assert.Contains(t, user.Claims, Claim{Type: ClaimTypeSID, Value: "S-1-5-21-111-222-333-1105"})
	assert.Contains(t, user.Claims, Claim{Type: ClaimTypeName, Value: "alice"})
	assert.Contains(t, user.Claims, Claim{Type: ClaimTypePrimaryGroup, Value: "S-1-5-21-111-222-333-513"})
	assert.Contains(t, user.Claims, Claim{Type: ClaimTypeGroup, Value: "S-1-5-21-111-222-333-2001"})
}

func TestResolveByCredentialsBindRejected(t *testing.T) {
	mock := aliceDirectory()
	mock.bindErr = assert.AnError
	r := newTestResolver(t, mock)

	_, err := r.ResolveByCredentials(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBindFailed)
	assert.Empty(t, mock.searchLog, "no search after a rejected bind")
}

func TestResolveByCredentialsNotFound(t *testing.T) {
	mock := aliceDirectory()
	r := newTestResolver(t, mock)

	_, err := r.ResolveByCredentials(context.Background(), "nobody", "hunter2")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "nobody")
}

func TestResolveByCredentialsEmptyPasswordReplaced(t *testing.T) {
	// An empty password must never reach the server as-is; that would turn
	// the bind into an unauthenticated one that trivially succeeds.
	mock := aliceDirectory()
	mock.bindErr = assert.AnError
	r := newTestResolver(t, mock)

	_, err := r.ResolveByCredentials(context.Background(), "alice", "")
	require.ErrorIs(t, err, ErrBindFailed)
	assert.NotEmpty(t, mock.lastBindPass)
}

func TestResolveByIdentityAccountName(t *testing.T) {
	mock := aliceDirectory()
	r := newTestResolver(t, mock)

	user, err := r.ResolveByIdentity(context.Background(), "alice")
	require.NoError(t, err)

	assert.Equal(t, 1, mock.serviceBinds)
	assert.Zero(t, mock.bindCalls)
	assert.Equal(t, "alice", user.AccountName)
	require.Len(t, user.Groups, 2)
}

func TestResolveByIdentitySID(t *testing.T) {
	mock := aliceDirectory()
	// The user entry answers to its SID's string rendering.
	mock.addAlias(mock.entries[2], "objectSid", "S-1-5-21-111-222-333-1105")
	r := newTestResolver(t, mock)

	user, err := r.ResolveByIdentity(context.Background(), "S-1-5-21-111-222-333-1105")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.AccountName)
}

func TestResolveByIdentityDN(t *testing.T) {
	mock := aliceDirectory()
	r := newTestResolver(t, mock)

	user, err := r.ResolveByIdentity(context.Background(), "CN=alice,OU=People,"+testBaseDN)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.AccountName)
}

func TestResolveByIdentityGUID(t *testing.T) {
	mock := aliceDirectory()
	raw, err := guidFilterBytes("01020304-0506-0708-090a-0b0c0d0e0f10")
	require.NoError(t, err)
	mock.addAlias(mock.entries[2], "objectGUID", string(raw))
	r := newTestResolver(t, mock)

	user, err := r.ResolveByIdentity(context.Background(), "01020304-0506-0708-090a-0b0c0d0e0f10")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.AccountName)
}

func TestResolveByIdentityUPN(t *testing.T) {
	mock := &mockDirectory{}
	addTestGroup(mock, "Domain Users", 513)
	dn := "CN=erin,OU=People," + testBaseDN
	mock.add(dn, map[string][]string{
		"distinguishedName": {dn},
		"sAMAccountName":    {"erin"},
		"userPrincipalName": {"erin@example.com"},
		"objectClass":       {"user"},
		"objectCategory":    {"person"},
		"objectSid":         {testSID(1300)},
		"primaryGroupID":    {"513"},
	})
	r := newTestResolver(t, mock)

	user, err := r.ResolveByIdentity(context.Background(), "erin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "erin", user.AccountName)
	assert.Equal(t, "erin@example.com", user.UserPrincipalName)
}

func TestResolveByIdentityServiceBindFails(t *testing.T) {
	mock := aliceDirectory()
	mock.serviceBindErr = assert.AnError
	r := newTestResolver(t, mock)

	_, err := r.ResolveByIdentity(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrBindFailed)
}

func TestListEntries(t *testing.T) {
	mock := aliceDirectory()
	addTestUser(mock, "bob", 1200, "513")
	r := newTestResolver(t, mock)

	var users []*User
	for user, err := range r.ListEntries(context.Background(), "", "") {
		require.NoError(t, err)
		users = append(users, user)
	}

	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].AccountName)
	assert.Equal(t, "bob", users[1].AccountName)

	// Listing maps attributes only; groups are not resolved.
	assert.Empty(t, users[0].Groups)
	assert.Contains(t, users[0].Claims, Claim{Type: ClaimTypeName, Value: "alice"})
}

func TestListEntriesHonorsConfiguredScope(t *testing.T) {
	mock := aliceDirectory()
	cfg := testConfig()
	cfg.SearchBases[0].Scope = directory.ScopeSingleLevel
	r, err := NewResolver(cfg, mock, nil)
	require.NoError(t, err)

	for _, err := range r.ListEntries(context.Background(), "", "") {
		require.NoError(t, err)
	}

	require.Len(t, mock.pagedReqs, 1)
	assert.Equal(t, directory.ScopeSingleLevel, mock.pagedReqs[0].Scope)

	// An explicit base override searches its whole subtree.
	for _, err := range r.ListEntries(context.Background(), "", "OU=People,"+testBaseDN) {
		require.NoError(t, err)
	}
	require.Len(t, mock.pagedReqs, 2)
	assert.Equal(t, directory.ScopeWholeSubtree, mock.pagedReqs[1].Scope)
	assert.Equal(t, "OU=People,"+testBaseDN, mock.pagedReqs[1].BaseDN)
}

func TestListEntriesEarlyBreak(t *testing.T) {
	mock := aliceDirectory()
	addTestUser(mock, "bob", 1200, "513")
	r := newTestResolver(t, mock)

	var count int
	for _, err := range r.ListEntries(context.Background(), "", "") {
		require.NoError(t, err)
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestListEntriesServiceBindFails(t *testing.T) {
	mock := aliceDirectory()
	mock.serviceBindErr = assert.AnError
	r := newTestResolver(t, mock)

	var firstErr error
	for _, err := range r.ListEntries(context.Background(), "", "") {
		firstErr = err
		break
	}
	assert.ErrorIs(t, firstErr, ErrBindFailed)
}
