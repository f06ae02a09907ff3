package directory

import (
	"context"
	"crypto/tls"
	"errors"
	"iter"
	"sync"

	"github.com/go-ldap/ldap/v3"

	"github.com/isometry/ldap-identity/logging"
)

// Conn implements Client over a single lazily-dialed LDAP connection.
type Conn struct {
	config *Config
	log    logging.Logger

	mu   sync.Mutex
	conn *ldap.Conn
}

// NewConn creates a client for the configured server. No network activity
// happens until the first operation.
func NewConn(config *Config, log logging.Logger) *Conn {
	if log == nil {
		log = logging.Nop{}
	}
	return &Conn{config: config, log: log}
}

// acquire returns the live connection, dialing on first use.
func (c *Conn) acquire() (*ldap.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}

	tlsConfig := c.config.TLSConfig
	if tlsConfig == nil {
		tlsConfig = &tls.Config{
			MinVersion:         tls.VersionTLS12,
			InsecureSkipVerify: c.config.InsecureSkipVerify,
		}
	}

	c.log.Debug("Dialing directory server", map[string]any{
		"url":       c.config.URL,
		"start_tls": c.config.StartTLS,
	})

	conn, err := ldap.DialURL(c.config.URL, ldap.DialWithTLSConfig(tlsConfig))
	if err != nil {
		return nil, WrapError("dial", err)
	}

	if c.config.Timeout > 0 {
		conn.SetTimeout(c.config.Timeout)
	}

	if c.config.StartTLS {
		if err := conn.StartTLS(tlsConfig); err != nil {
			conn.Close()
			return nil, WrapError("start_tls", err)
		}
	}

	c.conn, err = conn, nil
	return conn, nil
}

// drop discards a connection after a network-level failure so the next
// operation redials.
func (c *Conn) drop(conn *ldap.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == conn {
		c.conn.Close()
		c.conn = nil
	}
}

// Bind authenticates the connection as the given principal.
func (c *Conn) Bind(ctx context.Context, username, password string) error {
	if err := ctx.Err(); err != nil {
		return WrapError("bind", err)
	}

	conn, err := c.acquire()
	if err != nil {
		return err
	}

	if err := conn.Bind(username, password); err != nil {
		if isNetworkError(err) {
			c.drop(conn)
		}
		return WrapError("bind", err)
	}
	return nil
}

// BindServiceAccount authenticates with the configured service-account
// credentials. Kerberos takes precedence when a realm is configured.
func (c *Conn) BindServiceAccount(ctx context.Context) error {
	if c.config.KerberosRealm != "" {
		return c.bindKerberos(ctx)
	}
	return c.Bind(ctx, c.config.BindDN, c.config.BindPassword)
}

// Search performs a single non-paged search.
func (c *Conn) Search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, WrapError("search", err)
	}

	conn, err := c.acquire()
	if err != nil {
		return nil, err
	}

	result, err := conn.Search(toLDAPRequest(req, nil))
	if err != nil {
		if isNetworkError(err) {
			c.drop(conn)
		}
		return nil, WrapError("search", err)
	}

	c.log.Debug("Search completed", map[string]any{
		"base_dn": req.BaseDN,
		"filter":  req.Filter,
		"entries": len(result.Entries),
	})

	return &SearchResult{Entries: result.Entries}, nil
}

// SearchPaged streams entries using the simple paged results control. Each
// page is one directory round trip; the caller controls how far to consume.
func (c *Conn) SearchPaged(ctx context.Context, req *SearchRequest, pageSize uint32) iter.Seq2[*ldap.Entry, error] {
	if pageSize == 0 {
		pageSize = 500
	}

	return func(yield func(*ldap.Entry, error) bool) {
		conn, err := c.acquire()
		if err != nil {
			yield(nil, err)
			return
		}

		paging := ldap.NewControlPaging(pageSize)
		page := 0

		for {
			if err := ctx.Err(); err != nil {
				yield(nil, WrapError("paged_search", err))
				return
			}

			page++
			result, err := conn.Search(toLDAPRequest(req, []ldap.Control{paging}))
			if err != nil {
				if isNetworkError(err) {
					c.drop(conn)
				}
				yield(nil, WrapError("paged_search", err))
				return
			}

			c.log.Debug("Paged search page completed", map[string]any{
				"base_dn": req.BaseDN,
				"filter":  req.Filter,
				"page":    page,
				"entries": len(result.Entries),
			})

			for _, entry := range result.Entries {
				if !yield(entry, nil) {
					return
				}
			}

			response, ok := ldap.FindControl(result.Controls, ldap.ControlTypePaging).(*ldap.ControlPaging)
			if !ok || len(response.Cookie) == 0 {
				return
			}
			paging.SetCookie(response.Cookie)
		}
	}
}

// Close tears down the connection.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	return nil
}

// toLDAPRequest converts a SearchRequest into the go-ldap wire form.
func toLDAPRequest(req *SearchRequest, controls []ldap.Control) *ldap.SearchRequest {
	return ldap.NewSearchRequest(
		req.BaseDN,
		int(req.Scope),
		ldap.NeverDerefAliases,
		req.SizeLimit,
		int(req.TimeLimit.Seconds()),
		false,
		req.Filter,
		req.Attributes,
		controls,
	)
}

// isNetworkError reports whether the connection itself is unusable.
func isNetworkError(err error) bool {
	var ldapErr *ldap.Error
	if errors.As(err, &ldapErr) {
		return ldapErr.ResultCode == ldap.ErrorNetwork
	}
	return false
}
