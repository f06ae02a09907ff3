package identity

import "errors"

var (
	// ErrBindFailed indicates the directory rejected the authentication
	// bind: invalid credentials or an unreachable server. Never retried
	// here; retrying is caller policy.
	ErrBindFailed = errors.New("authentication bind failed")

	// ErrNotFound indicates no entry matched the user filter across any
	// configured search base.
	ErrNotFound = errors.New("no matching directory entry")

	// ErrGroupNotFound indicates the computed primary-group identifier
	// matched no entry in any search base. Fatal to the resolution it
	// occurred in: an unresolvable primary group is directory
	// inconsistency worth surfacing, not a condition to paper over.
	ErrGroupNotFound = errors.New("primary group not found")
)
