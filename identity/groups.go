package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"github.com/isometry/ldap-identity/directory"
	"github.com/isometry/ldap-identity/logging"
	"github.com/isometry/ldap-identity/schema"
)

// GroupEntry is one resolved membership: the group's directory entry and
// whether it is the owner's primary group.
type GroupEntry struct {
	Entry     *ldap.Entry
	IsPrimary bool
}

// GroupResolver determines an entry's primary group, its direct memberships
// and, when enabled, the transitive membership closure, by issuing further
// directory searches.
type GroupResolver struct {
	client  directory.Client
	config  *Config
	dialect Dialect
	userMap *schema.Map[*User]

	// groupAttrs is requested on every group search: the attributes needed
	// to map a group plus the attributes needed to continue the walk.
	groupAttrs []string

	log logging.Logger
}

// NewGroupResolver creates a resolver over the given client and maps.
func NewGroupResolver(client directory.Client, config *Config, userMap *schema.Map[*User], groupMap *schema.Map[*Group], log logging.Logger) *GroupResolver {
	if log == nil {
		log = logging.Nop{}
	}
	dialect := config.dialect()
	return &GroupResolver{
		client:  client,
		config:  config,
		dialect: dialect,
		userMap: userMap,
		groupAttrs: mergeAttributes(groupMap.RequiredAttributes(),
			dialect.DNAttribute, dialect.GroupsAttribute, dialect.PrimaryGroupAttribute),
		log: log,
	}
}

// Resolve returns the entry's group memberships in discovery order: the
// primary group first (flagged), then direct memberships, then, when
// recursive is set, transitively inherited ones. Results are de-duplicated
// by distinguished name, keeping the first-seen entry and its primary flag.
//
// A primary group that cannot be found is fatal. A membership reference that
// cannot be chased is logged and skipped: directories accumulate stale
// references and one dangling edge must not fail the resolution.
func (r *GroupResolver) Resolve(ctx context.Context, entry *ldap.Entry, recursive bool) ([]GroupEntry, error) {
	var results []GroupEntry
	visited := make(map[string]bool)

	primary, err := r.resolvePrimary(ctx, entry)
	if err != nil {
		return nil, err
	}
	if primary != nil {
		visited[dnKey(primary.DN)] = true
		results = append(results, GroupEntry{Entry: primary, IsPrimary: true})
	}

	// The transitive walk uses an explicit work-stack; membership graphs
	// can be deep and can contain cycles, which the visited set breaks.
	var stack []*ldap.Entry
	for _, group := range r.resolveDirect(ctx, entry) {
		key := dnKey(group.DN)
		if visited[key] {
			continue
		}
		visited[key] = true
		results = append(results, GroupEntry{Entry: group})
		if recursive {
			stack = append(stack, group)
		}
	}

	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, group := range r.resolveDirect(ctx, next) {
			key := dnKey(group.DN)
			if visited[key] {
				continue
			}
			visited[key] = true
			results = append(results, GroupEntry{Entry: group})
			stack = append(stack, group)
		}
	}

	r.log.Debug("Group resolution completed", map[string]any{
		"dn":        entry.DN,
		"groups":    len(results),
		"recursive": recursive,
	})

	return results, nil
}

// resolvePrimary locates the entry's primary group. Entries without the
// primary-group attribute (group objects, service entries) have none; a
// computed identifier that matches nothing in any search base is fatal.
func (r *GroupResolver) resolvePrimary(ctx context.Context, entry *ldap.Entry) (*ldap.Entry, error) {
	raw := entry.GetAttributeValue(r.dialect.PrimaryGroupAttribute)
	if raw == "" {
		r.log.Debug("Entry has no primary group attribute", map[string]any{
			"attribute": r.dialect.PrimaryGroupAttribute,
			"dn":        entry.DN,
		})
		return nil, nil
	}

	owner, err := r.ownerIdentity(entry)
	if err != nil {
		return nil, err
	}

	groupID := PrimaryGroupIdentifier(owner, raw)
	filter := fmt.Sprintf("(%s=%s)", r.dialect.GroupIdentityAttribute, ldap.EscapeFilter(groupID))

	for _, base := range r.config.SearchBases {
		result, err := r.client.Search(ctx, &directory.SearchRequest{
			BaseDN:     base.BaseDN,
			Scope:      directory.ScopeWholeSubtree,
			Filter:     filter,
			Attributes: r.groupAttrs,
			SizeLimit:  1,
			TimeLimit:  r.config.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("primary group search in %s: %w", base.BaseDN, err)
		}
		if len(result.Entries) > 0 {
			return result.Entries[0], nil
		}
	}

	return nil, fmt.Errorf("%w: no entry with %s=%s in any search base",
		ErrGroupNotFound, r.dialect.GroupIdentityAttribute, groupID)
}

// ownerIdentity reads and converts the entry's own identity value, used as
// the domain prefix for relative primary-group identifiers.
func (r *GroupResolver) ownerIdentity(entry *ldap.Entry) (string, error) {
	field := r.userMap.Identity()
	raw := entry.GetRawAttributeValue(field.Attribute)
	if len(raw) == 0 {
		return "", nil
	}
	owner, err := schema.Convert(field.Converter, raw)
	if err != nil {
		return "", fmt.Errorf("converting identity of %s: %w", entry.DN, err)
	}
	return owner, nil
}

// resolveDirect chases the entry's membership references. Each reference is
// a DN; every matching entry across every search base is returned. A
// reference that fails to resolve is logged and skipped.
func (r *GroupResolver) resolveDirect(ctx context.Context, entry *ldap.Entry) []*ldap.Entry {
	refs := entry.GetAttributeValues(r.dialect.GroupsAttribute)
	if len(refs) == 0 {
		return nil
	}

	var groups []*ldap.Entry
	for _, ref := range refs {
		filter := fmt.Sprintf("(%s=%s)", r.dialect.DNAttribute, ldap.EscapeFilter(ref))

		found := false
		for _, base := range r.config.SearchBases {
			result, err := r.client.Search(ctx, &directory.SearchRequest{
				BaseDN:     base.BaseDN,
				Scope:      directory.ScopeWholeSubtree,
				Filter:     filter,
				Attributes: r.groupAttrs,
				TimeLimit:  r.config.Timeout,
			})
			if err != nil {
				r.log.Warn("Membership reference could not be searched", map[string]any{
					"reference": ref,
					"base_dn":   base.BaseDN,
					"error":     err.Error(),
				})
				continue
			}
			if len(result.Entries) > 0 {
				found = true
				groups = append(groups, result.Entries...)
			}
		}
		if !found {
			r.log.Warn("Dangling membership reference", map[string]any{
				"reference": ref,
				"dn":        entry.DN,
			})
		}
	}

	return groups
}

// PrimaryGroupIdentifier computes the globally resolvable identifier of a
// primary group. Active Directory stores the primary group as a bare RID
// relative to the owner's domain, so SID-shaped owner identities are rebased:
// everything before the owner SID's final dash, then the raw value. POSIX
// identities (gidNumber, ipaUniqueID) are absolute already and the raw value
// is used unchanged.
func PrimaryGroupIdentifier(ownerIdentity, raw string) string {
	if !sidRegex.MatchString(ownerIdentity) {
		return raw
	}
	if i := strings.LastIndex(ownerIdentity, "-"); i > 0 {
		return ownerIdentity[:i+1] + raw
	}
	return raw
}

// dnKey folds a DN for visited-set and de-duplication purposes; directory
// DNs compare case-insensitively.
func dnKey(dn string) string {
	return strings.ToLower(dn)
}

// mergeAttributes unions attribute lists, preserving first-seen order.
func mergeAttributes(attrs []string, extra ...string) []string {
	seen := make(map[string]bool, len(attrs)+len(extra))
	merged := make([]string, 0, len(attrs)+len(extra))
	for _, attr := range append(attrs, extra...) {
		key := strings.ToLower(attr)
		if attr == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, attr)
	}
	return merged
}
