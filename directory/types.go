// Package directory provides the LDAP transport: connection establishment
// with TLS and Kerberos options, simple and service-account binds, and plain
// or paged searches, with errors classified into stable categories.
package directory

import (
	"context"
	"crypto/tls"
	"iter"
	"time"

	"github.com/go-ldap/ldap/v3"
)

// Config holds connection and service-account settings for one directory
// server.
type Config struct {
	// Connection settings
	URL     string        `mapstructure:"url" validate:"required" default:""`
	Timeout time.Duration `mapstructure:"timeout" default:"30s"` // zero means wait indefinitely

	// Service-account credentials, used for lookups that are not performed
	// on behalf of an authenticating end user.
	BindDN       string `mapstructure:"bind_dn"`
	BindPassword string `mapstructure:"bind_password"`

	// Kerberos settings. When Realm is set the service-account bind uses
	// GSSAPI instead of a simple bind.
	KerberosRealm  string `mapstructure:"kerberos_realm"`
	KerberosKeytab string `mapstructure:"kerberos_keytab"`
	KerberosConfig string `mapstructure:"kerberos_config"`
	KerberosSPN    string `mapstructure:"kerberos_spn"`

	// TLS settings
	StartTLS           bool        `mapstructure:"start_tls"`
	InsecureSkipVerify bool        `mapstructure:"insecure_skip_verify"`
	TLSConfig          *tls.Config `mapstructure:"-"`
}

// SearchScope defines LDAP search scope.
type SearchScope int

const (
	ScopeBaseObject SearchScope = iota
	ScopeSingleLevel
	ScopeWholeSubtree
)

// String returns the scope name used in configuration files.
func (s SearchScope) String() string {
	switch s {
	case ScopeBaseObject:
		return "base"
	case ScopeSingleLevel:
		return "onelevel"
	case ScopeWholeSubtree:
		return "subtree"
	default:
		return "unknown"
	}
}

// ParseScope parses a configuration scope name.
func ParseScope(s string) (SearchScope, error) {
	switch s {
	case "", "subtree", "sub":
		return ScopeWholeSubtree, nil
	case "base":
		return ScopeBaseObject, nil
	case "onelevel", "one":
		return ScopeSingleLevel, nil
	default:
		return 0, &OperationError{Op: "parse_scope", Category: CategoryValidation,
			Message: "unknown search scope: " + s}
	}
}

// SearchRequest encapsulates directory search parameters.
type SearchRequest struct {
	BaseDN     string
	Scope      SearchScope
	Filter     string
	Attributes []string
	SizeLimit  int
	TimeLimit  time.Duration // zero means no time limit
}

// SearchResult contains the entries a search returned.
type SearchResult struct {
	Entries []*ldap.Entry
}

// Client is the capability the resolution pipeline holds on a directory
// server. One client wraps one connection; it is not safe for simultaneous
// use by multiple in-flight resolutions.
type Client interface {
	// Bind authenticates the connection as the given principal. A failed
	// bind leaves the connection unauthenticated.
	Bind(ctx context.Context, username, password string) error

	// BindServiceAccount authenticates with the configured service-account
	// credentials (simple bind or GSSAPI).
	BindServiceAccount(ctx context.Context) error

	// Search performs a single non-paged search.
	Search(ctx context.Context, req *SearchRequest) (*SearchResult, error)

	// SearchPaged streams entries page by page using the simple paged
	// results control. The sequence ends on exhaustion or first error.
	SearchPaged(ctx context.Context, req *SearchRequest, pageSize uint32) iter.Seq2[*ldap.Entry, error]

	// Close tears down the connection. The client reconnects lazily on the
	// next operation.
	Close() error
}
