package identity

import (
	"github.com/isometry/ldap-identity/logging"
	"github.com/isometry/ldap-identity/schema"
)

// ProjectClaims converts a mapped user and its resolved groups into a flat
// claim list. Field-derived claims come first, in field declaration order;
// then the primary group's claims, then one group claim per remaining
// membership in discovery order.
//
// A group without a usable identity is logged and skipped: one bad group
// must not blank out every other claim.
func ProjectClaims(user *User, userMap *schema.Map[*User], groups []*Group, log logging.Logger) []Claim {
	if log == nil {
		log = logging.Nop{}
	}

	var claims []Claim

	for _, field := range userMap.Fields() {
		if len(field.ClaimTypes) == 0 || field.Value == nil {
			continue
		}
		value := field.Value(user)
		if value == "" {
			continue
		}
		for _, claimType := range field.ClaimTypes {
			claims = append(claims, Claim{Type: claimType, Value: value})
		}
	}

	for _, group := range groups {
		if group.Identity == "" {
			log.Warn("Skipping claim for group without identity", map[string]any{
				"dn": group.DistinguishedName,
			})
			continue
		}
		if group.IsPrimary {
			claims = append(claims,
				Claim{Type: ClaimTypePrimaryGroup, Value: group.Identity},
				Claim{Type: ClaimTypeGroup, Value: group.Identity})
			continue
		}
		claims = append(claims, Claim{Type: ClaimTypeGroup, Value: group.Identity})
	}

	return claims
}

// ClaimFilter is a predicate over claims, applied where an identity becomes
// an application principal.
type ClaimFilter func(Claim) bool

// FilterClaims returns the claims the predicate keeps. A nil predicate keeps
// everything.
func FilterClaims(claims []Claim, keep ClaimFilter) []Claim {
	if keep == nil {
		return claims
	}
	filtered := make([]Claim, 0, len(claims))
	for _, claim := range claims {
		if keep(claim) {
			filtered = append(filtered, claim)
		}
	}
	return filtered
}
