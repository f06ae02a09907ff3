package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectIdentifierKind(t *testing.T) {
	tests := []struct {
		input string
		want  IdentifierKind
	}{
		{input: "CN=Alice,OU=People,DC=example,DC=com", want: IdentifierDN},
		{input: "cn=alice,dc=example,dc=com", want: IdentifierDN},
		{input: "uid=dave,ou=people,dc=example,dc=com", want: IdentifierDN},
		{input: "01020304-0506-0708-090a-0b0c0d0e0f10", want: IdentifierGUID},
		{input: "0102030405060708090a0b0c0d0e0f10", want: IdentifierGUID},
		{input: "S-1-5-21-111-222-333-1105", want: IdentifierSID},
		{input: "S-1-5-32-544", want: IdentifierSID},
		{input: "alice@example.com", want: IdentifierUPN},
		{input: "alice", want: IdentifierAccountName},
		{input: "EXAMPLE\\alice", want: IdentifierAccountName},
		{input: "  alice  ", want: IdentifierAccountName},
		{input: "", want: IdentifierUnknown},
		{input: "   ", want: IdentifierUnknown},
		// Not quite a SID: the prefix alone is an account name.
		{input: "S-2-5-21", want: IdentifierAccountName},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectIdentifierKind(tt.input))
		})
	}
}

func TestIdentifierKindString(t *testing.T) {
	assert.Equal(t, "dn", IdentifierDN.String())
	assert.Equal(t, "sid", IdentifierSID.String())
	assert.Equal(t, "unknown", IdentifierUnknown.String())
}

func TestGUIDFilterBytes(t *testing.T) {
	raw, err := guidFilterBytes("01020304-0506-0708-090a-0b0c0d0e0f10")
	require.NoError(t, err)

	assert.Equal(t, []byte{
		0x04, 0x03, 0x02, 0x01,
		0x06, 0x05,
		0x08, 0x07,
		0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F, 0x10,
	}, raw)
}

func TestGUIDFilterBytesInvalid(t *testing.T) {
	_, err := guidFilterBytes("not-a-guid")
	assert.Error(t, err)
}
