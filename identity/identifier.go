package identity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// IdentifierKind classifies the lookup value handed to ResolveByIdentity so
// the search filter can target the right attribute.
type IdentifierKind int

const (
	IdentifierUnknown IdentifierKind = iota
	IdentifierDN                     // distinguished name
	IdentifierGUID                   // hyphenated or compact GUID
	IdentifierSID                    // security identifier string
	IdentifierUPN                    // user principal name
	IdentifierAccountName            // bare or DOMAIN\ login name
)

// String returns a human-readable kind name for diagnostics.
func (k IdentifierKind) String() string {
	switch k {
	case IdentifierDN:
		return "dn"
	case IdentifierGUID:
		return "guid"
	case IdentifierSID:
		return "sid"
	case IdentifierUPN:
		return "upn"
	case IdentifierAccountName:
		return "account_name"
	default:
		return "unknown"
	}
}

var (
	dnRegex  = regexp.MustCompile(`^(?i)(CN|OU|DC|UID|O|C|L|ST)=.+`)
	sidRegex = regexp.MustCompile(`^S-1-\d+(-\d+)*$`)
	upnRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// DetectIdentifierKind analyzes an identifier string, most specific format
// first.
func DetectIdentifierKind(identifier string) IdentifierKind {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return IdentifierUnknown
	}

	if dnRegex.MatchString(identifier) {
		return IdentifierDN
	}
	if _, err := uuid.Parse(identifier); err == nil {
		return IdentifierGUID
	}
	if sidRegex.MatchString(identifier) {
		return IdentifierSID
	}
	if upnRegex.MatchString(identifier) {
		return IdentifierUPN
	}
	return IdentifierAccountName
}

// guidFilterBytes renders a GUID in the mixed-endian binary form Active
// Directory expects in objectGUID search filters.
func guidFilterBytes(identifier string) ([]byte, error) {
	id, err := uuid.Parse(identifier)
	if err != nil {
		return nil, fmt.Errorf("invalid GUID %q: %w", identifier, err)
	}

	standard := id[:]
	mixed := make([]byte, 16)
	mixed[0], mixed[1], mixed[2], mixed[3] = standard[3], standard[2], standard[1], standard[0]
	mixed[4], mixed[5] = standard[5], standard[4]
	mixed[6], mixed[7] = standard[7], standard[6]
	copy(mixed[8:], standard[8:])
	return mixed, nil
}
