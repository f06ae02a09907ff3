package directory

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-ldap/ldap/v3"
	"github.com/go-ldap/ldap/v3/gssapi"
	krb5client "github.com/jcmturner/gokrb5/v8/client"
)

// bindKerberos performs a GSSAPI bind with the configured service-account
// credentials.
func (c *Conn) bindKerberos(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return WrapError("gssapi_bind", err)
	}

	conn, err := c.acquire()
	if err != nil {
		return err
	}

	gssapiClient, err := newGSSAPIClient(c.config)
	if err != nil {
		return &OperationError{Op: "gssapi_bind", Category: CategoryAuthentication, Cause: err}
	}
	defer func() {
		_ = gssapiClient.DeleteSecContext()
	}()

	spn, err := servicePrincipal(c.config)
	if err != nil {
		return &OperationError{Op: "gssapi_bind", Category: CategoryValidation, Cause: err}
	}

	c.log.Debug("Performing GSSAPI bind", map[string]any{
		"realm": c.config.KerberosRealm,
		"spn":   spn,
	})

	if err := conn.GSSAPIBind(gssapiClient, spn, ""); err != nil {
		if isNetworkError(err) {
			c.drop(conn)
		}
		return WrapError("gssapi_bind", err)
	}
	return nil
}

// newGSSAPIClient creates a GSSAPI client from the configured credentials.
// Priority order: keytab, then password.
func newGSSAPIClient(cfg *Config) (ldap.GSSAPIClient, error) {
	krb5conf := cfg.KerberosConfig
	if krb5conf == "" {
		krb5conf = "/etc/krb5.conf"
	}
	if !fileExists(krb5conf) {
		return nil, fmt.Errorf("kerberos configuration file not found at %s", krb5conf)
	}

	principal := cfg.BindDN
	if principal == "" {
		return nil, fmt.Errorf("bind_dn (principal) is required for kerberos authentication")
	}
	// Allow principal@REALM form, overriding the configured realm
	realm := cfg.KerberosRealm
	if at := strings.LastIndex(principal, "@"); at != -1 {
		realm = principal[at+1:]
		principal = principal[:at]
	}

	if cfg.KerberosKeytab != "" {
		if !fileExists(cfg.KerberosKeytab) {
			return nil, fmt.Errorf("kerberos keytab not found at %s", cfg.KerberosKeytab)
		}
		return gssapi.NewClientWithKeytab(principal, realm, cfg.KerberosKeytab, krb5conf,
			krb5client.DisablePAFXFAST(true))
	}

	if cfg.BindPassword != "" {
		return gssapi.NewClientWithPassword(principal, realm, cfg.BindPassword, krb5conf,
			krb5client.DisablePAFXFAST(true))
	}

	return nil, fmt.Errorf("no suitable credentials for kerberos authentication: provide kerberos_keytab or bind_password")
}

// servicePrincipal constructs the LDAP service principal name, honoring an
// explicit override.
func servicePrincipal(cfg *Config) (string, error) {
	if cfg.KerberosSPN != "" {
		return cfg.KerberosSPN, nil
	}

	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return "", fmt.Errorf("invalid directory URL: %w", err)
	}
	hostname := parsed.Hostname()
	if hostname == "" {
		return "", fmt.Errorf("no hostname in directory URL: %s", cfg.URL)
	}

	return "ldap/" + hostname, nil
}

// fileExists checks that a file exists and is readable.
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
