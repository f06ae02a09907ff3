// Package identity resolves directory principals into typed users with their
// group memberships and projected claims. The Resolver authenticates or
// looks up an entry, maps its attributes through a schema dialect, walks
// group membership including the primary group, and emits claims.
package identity

import "strconv"

// Claim is a named attribute asserted about a resolved identity, consumed by
// downstream authorization logic.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Claim types emitted by the projector.
const (
	ClaimTypeName         = "name"
	ClaimTypeUPN          = "upn"
	ClaimTypeEmail        = "email"
	ClaimTypeDN           = "dn"
	ClaimTypeSID          = "sid"
	ClaimTypeGroup        = "group"
	ClaimTypePrimaryGroup = "primarygroup"
)

// userAccountControl flags relevant to authentication decisions.
const (
	uacAccountDisabled      int64 = 0x00000002
	uacLockout              int64 = 0x00000010
	uacPasswordNeverExpires int64 = 0x00010000
)

// User is the application identity populated from a directory entry. It is
// created empty, populated once by the mapper, then enriched with groups and
// claims by the resolution pipeline; it is not mutated afterwards.
type User struct {
	// Identity is the unique stable identifier under the active dialect:
	// the canonical SID string, an ipaUniqueID, or a numeric POSIX UID.
	Identity          string `json:"identity"`
	AccountName       string `json:"accountName"`
	UserPrincipalName string `json:"userPrincipalName,omitempty"`
	DisplayName       string `json:"displayName,omitempty"`
	Email             string `json:"email,omitempty"`
	DistinguishedName string `json:"distinguishedName"`
	GUID              string `json:"guid,omitempty"`

	// MemberOf holds the raw values of the groups attribute; PrimaryGroupID
	// the raw primary-group identifier. Both feed group resolution.
	MemberOf       []string `json:"memberOf,omitempty"`
	PrimaryGroupID string   `json:"primaryGroupID,omitempty"`

	// UserAccountControl is the raw decimal flag word (Active Directory).
	UserAccountControl string `json:"userAccountControl,omitempty"`
	PasswordLastSet    string `json:"passwordLastSet,omitempty"`
	WhenCreated        string `json:"whenCreated,omitempty"`
	WhenChanged        string `json:"whenChanged,omitempty"`

	Groups []*Group `json:"groups,omitempty"`
	Claims []Claim  `json:"claims,omitempty"`
}

// AccountEnabled reports whether the account-disabled flag is clear. Always
// true for dialects that do not map userAccountControl.
func (u *User) AccountEnabled() bool {
	uac, err := strconv.ParseInt(u.UserAccountControl, 10, 64)
	if err != nil {
		return true
	}
	return uac&uacAccountDisabled == 0
}

// AccountLocked reports whether the lockout flag is set.
func (u *User) AccountLocked() bool {
	uac, err := strconv.ParseInt(u.UserAccountControl, 10, 64)
	if err != nil {
		return false
	}
	return uac&uacLockout != 0
}

// PasswordNeverExpires reports the corresponding userAccountControl flag.
func (u *User) PasswordNeverExpires() bool {
	uac, err := strconv.ParseInt(u.UserAccountControl, 10, 64)
	if err != nil {
		return false
	}
	return uac&uacPasswordNeverExpires != 0
}

// Group is a resolved group membership.
type Group struct {
	// Identity is the group's stable identifier in its canonical form (SID
	// string or numeric GID), already run through the dialect's converter.
	Identity          string   `json:"identity"`
	Name              string   `json:"name,omitempty"`
	DistinguishedName string   `json:"distinguishedName"`
	MemberOf          []string `json:"memberOf,omitempty"`

	// IsPrimary marks the membership recorded on the user entry itself
	// rather than via a membership list.
	IsPrimary bool `json:"isPrimary,omitempty"`
}
