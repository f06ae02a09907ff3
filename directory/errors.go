package directory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

// Category classifies directory operation failures.
type Category string

const (
	CategoryConnection     Category = "connection"
	CategoryAuthentication Category = "authentication"
	CategoryNotFound       Category = "not_found"
	CategoryTimeout        Category = "timeout"
	CategoryValidation     Category = "validation"
	CategoryServer         Category = "server"
	CategoryUnknown        Category = "unknown"
)

// OperationError carries the failed operation, its category and the LDAP
// result code when the server reported one.
type OperationError struct {
	Op       string
	Category Category
	Code     uint16
	Message  string
	Cause    error

	// Retryable marks transient failures where repeating the operation on a
	// fresh connection can succeed. Invalid credentials or a bad filter
	// never are.
	Retryable bool
}

func (e *OperationError) Error() string {
	var parts []string
	if e.Code > 0 {
		parts = append(parts, fmt.Sprintf("directory %s failed (code %d)", e.Op, e.Code))
	} else {
		parts = append(parts, fmt.Sprintf("directory %s failed", e.Op))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Cause != nil && e.Cause.Error() != e.Message {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *OperationError) Unwrap() error {
	return e.Cause
}

// WrapError attaches operation context and a category to an error coming out
// of the underlying LDAP library.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}

	var opErr *OperationError
	if errors.As(err, &opErr) {
		return err
	}

	wrapped := &OperationError{Op: op, Cause: err, Category: CategoryUnknown}

	var ldapErr *ldap.Error
	if errors.As(err, &ldapErr) {
		wrapped.Code = ldapErr.ResultCode
		wrapped.Category = categorize(ldapErr.ResultCode)
		if ldapErr.Err != nil {
			wrapped.Message = ldapErr.Err.Error()
		}
		wrapped.Retryable = retryable(wrapped.Category)
		return wrapped
	}

	wrapped.Category = categorizeGeneric(err)
	wrapped.Retryable = retryable(wrapped.Category)
	return wrapped
}

// retryable reports whether failures in a category are transient.
func retryable(c Category) bool {
	switch c {
	case CategoryConnection, CategoryTimeout, CategoryServer:
		return true
	default:
		return false
	}
}

// categorize maps LDAP result codes onto failure categories.
func categorize(code uint16) Category {
	switch code {
	case ldap.LDAPResultInvalidCredentials,
		ldap.LDAPResultInappropriateAuthentication,
		ldap.LDAPResultStrongAuthRequired:
		return CategoryAuthentication

	case ldap.LDAPResultNoSuchObject,
		ldap.LDAPResultNoSuchAttribute,
		ldap.LDAPResultUndefinedAttributeType:
		return CategoryNotFound

	case ldap.LDAPResultTimeLimitExceeded,
		ldap.LDAPResultTimeout:
		return CategoryTimeout

	case ldap.LDAPResultInvalidAttributeSyntax,
		ldap.LDAPResultInvalidDNSyntax,
		ldap.LDAPResultFilterError:
		return CategoryValidation

	case ldap.LDAPResultServerDown,
		ldap.LDAPResultUnavailable,
		ldap.LDAPResultBusy,
		ldap.LDAPResultUnwillingToPerform:
		return CategoryServer

	case ldap.LDAPResultConnectError,
		ldap.LDAPResultProtocolError:
		return CategoryConnection

	default:
		return CategoryUnknown
	}
}

// categorizeGeneric classifies non-LDAP errors by message shape.
func categorizeGeneric(err error) Category {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return CategoryTimeout
	case strings.Contains(msg, "connection") ||
		strings.Contains(msg, "network") ||
		strings.Contains(msg, "broken pipe"):
		return CategoryConnection
	case strings.Contains(msg, "credentials") || strings.Contains(msg, "authentication"):
		return CategoryAuthentication
	default:
		return CategoryUnknown
	}
}

// CategoryOf returns the failure category of an error.
func CategoryOf(err error) Category {
	if err == nil {
		return CategoryUnknown
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Category
	}
	var ldapErr *ldap.Error
	if errors.As(err, &ldapErr) {
		return categorize(ldapErr.ResultCode)
	}
	return categorizeGeneric(err)
}

// IsAuthenticationError reports whether the error indicates rejected
// credentials rather than an operational failure.
func IsAuthenticationError(err error) bool {
	return CategoryOf(err) == CategoryAuthentication
}

// IsNotFoundError reports whether the error indicates a missing entry or
// attribute.
func IsNotFoundError(err error) bool {
	return CategoryOf(err) == CategoryNotFound
}

// IsRetryable reports whether the failure is transient. Errors that never
// passed through WrapError fall back to category classification.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Retryable
	}
	return retryable(CategoryOf(err))
}
