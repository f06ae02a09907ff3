package identity

import (
	"context"
	"fmt"
	"iter"

	"github.com/go-ldap/ldap/v3"
	"github.com/google/uuid"

	"github.com/isometry/ldap-identity/directory"
	"github.com/isometry/ldap-identity/logging"
	"github.com/isometry/ldap-identity/schema"
)

// listPageSize is the page size used when enumerating entries.
const listPageSize = 500

// Resolver orchestrates the resolution pipeline: locate the user entry, map
// its attributes, resolve group memberships, map each group, project claims.
//
// The attribute maps are built once at construction and shared read-only
// across resolutions. The directory client wraps a single connection, so one
// Resolver serves one resolution at a time.
type Resolver struct {
	client   directory.Client
	config   *Config
	dialect  Dialect
	userMap  *schema.Map[*User]
	groupMap *schema.Map[*Group]
	groups   *GroupResolver

	// userAttrs is requested on user searches: everything the user map
	// needs plus everything group resolution reads off the user entry.
	userAttrs []string

	log logging.Logger
}

// NewResolver validates the configuration and builds the per-dialect
// attribute maps. Configuration defects surface here, not at first use.
func NewResolver(config *Config, client directory.Client, log logging.Logger) (*Resolver, error) {
	if log == nil {
		log = logging.Nop{}
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	userMap, err := schema.Build(config.Schema, UserFields())
	if err != nil {
		return nil, fmt.Errorf("building user attribute map: %w", err)
	}
	groupMap, err := schema.Build(config.Schema, GroupFields())
	if err != nil {
		return nil, fmt.Errorf("building group attribute map: %w", err)
	}

	dialect := config.dialect()

	return &Resolver{
		client:   client,
		config:   config,
		dialect:  dialect,
		userMap:  userMap,
		groupMap: groupMap,
		groups:   NewGroupResolver(client, config, userMap, groupMap, log),
		userAttrs: mergeAttributes(userMap.RequiredAttributes(),
			dialect.DNAttribute, dialect.GroupsAttribute, dialect.PrimaryGroupAttribute),
		log: log,
	}, nil
}

// ResolveByCredentials authenticates the given principal against the
// directory and returns the fully populated identity.
func (r *Resolver) ResolveByCredentials(ctx context.Context, username, password string) (*User, error) {
	// An empty bind password makes many servers perform an unauthenticated
	// bind and report success; substitute a random value so the bind is a
	// real (failing) authentication attempt.
	if password == "" {
		r.log.Debug("Empty password replaced before bind", map[string]any{
			"username": username,
		})
		password = uuid.NewString()
	}

	if err := r.client.Bind(ctx, username, password); err != nil {
		r.log.Info("Authentication bind rejected", map[string]any{
			"username": username,
			"category": string(directory.CategoryOf(err)),
		})
		return nil, fmt.Errorf("%w: %v", ErrBindFailed, err)
	}

	filter := fmt.Sprintf(r.dialect.UserFilter, ldap.EscapeFilter(username))
	entry, err := r.searchUser(ctx, filter)
	if err != nil {
		return nil, err
	}

	return r.resolve(ctx, entry)
}

// ResolveByIdentity locates an entry by an identity value (DN, GUID, SID,
// UPN or account name) using the service-account session, and returns the
// fully populated identity. No end-user credential is involved.
func (r *Resolver) ResolveByIdentity(ctx context.Context, identifier string) (*User, error) {
	if err := r.client.BindServiceAccount(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBindFailed, err)
	}

	lookup, err := r.identifierFilter(identifier)
	if err != nil {
		return nil, err
	}

	filter := "(&" + r.dialect.UsersFilter + lookup + ")"
	entry, err := r.searchUser(ctx, filter)
	if err != nil {
		return nil, err
	}

	return r.resolve(ctx, entry)
}

// ListEntries enumerates directory entries matching the optional extra
// filter, lazily, page by page. Entries are mapped but group resolution is
// not performed; claims reflect mapped fields only. An empty baseOverride
// walks the configured search bases in order.
func (r *Resolver) ListEntries(ctx context.Context, extraFilter, baseOverride string) iter.Seq2[*User, error] {
	return func(yield func(*User, error) bool) {
		if err := r.client.BindServiceAccount(ctx); err != nil {
			yield(nil, fmt.Errorf("%w: %v", ErrBindFailed, err))
			return
		}

		filter := r.dialect.UsersFilter
		if extraFilter != "" {
			filter = "(&" + filter + extraFilter + ")"
		}

		bases := r.config.SearchBases
		if baseOverride != "" {
			bases = []SearchBase{{BaseDN: baseOverride, Scope: directory.ScopeWholeSubtree}}
		}

		for _, base := range bases {
			req := &directory.SearchRequest{
				BaseDN:     base.BaseDN,
				Scope:      base.Scope,
				Filter:     filter,
				Attributes: r.userAttrs,
				TimeLimit:  r.config.Timeout,
			}

			for entry, err := range r.client.SearchPaged(ctx, req, listPageSize) {
				if err != nil {
					yield(nil, err)
					return
				}

				user, err := MapEntry(entry, &User{}, r.userMap, r.log)
				if err != nil {
					r.log.Warn("Skipping unmappable entry", map[string]any{
						"dn":    entry.DN,
						"error": err.Error(),
					})
					continue
				}
				user.Claims = ProjectClaims(user, r.userMap, nil, r.log)

				if !yield(user, nil) {
					return
				}
			}
		}
	}
}

// searchUser tries every configured search base in order; the first entry of
// the first base that matches wins.
func (r *Resolver) searchUser(ctx context.Context, filter string) (*ldap.Entry, error) {
	for _, base := range r.config.SearchBases {
		result, err := r.client.Search(ctx, &directory.SearchRequest{
			BaseDN:     base.BaseDN,
			Scope:      base.Scope,
			Filter:     filter,
			Attributes: r.userAttrs,
			SizeLimit:  1,
			TimeLimit:  r.config.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("user search in %s: %w", base.BaseDN, err)
		}
		if len(result.Entries) > 0 {
			return result.Entries[0], nil
		}
	}

	r.log.Error("No entry matched user filter", map[string]any{
		"filter": filter,
		"bases":  len(r.config.SearchBases),
	})
	return nil, fmt.Errorf("%w: filter %s", ErrNotFound, filter)
}

// resolve runs the post-search pipeline on a located entry.
func (r *Resolver) resolve(ctx context.Context, entry *ldap.Entry) (*User, error) {
	user, err := MapEntry(entry, &User{}, r.userMap, r.log)
	if err != nil {
		return nil, err
	}

	groupEntries, err := r.groups.Resolve(ctx, entry, r.config.ResolveGroupsRecursively)
	if err != nil {
		return nil, err
	}

	for _, ge := range groupEntries {
		group, err := MapEntry(ge.Entry, &Group{}, r.groupMap, r.log)
		if err != nil {
			// A group entry the map cannot decode is treated like a
			// dangling membership edge, not a failed resolution.
			r.log.Warn("Skipping unmappable group entry", map[string]any{
				"dn":    ge.Entry.DN,
				"error": err.Error(),
			})
			continue
		}
		group.IsPrimary = ge.IsPrimary
		user.Groups = append(user.Groups, group)
	}

	user.Claims = ProjectClaims(user, r.userMap, user.Groups, r.log)

	r.log.Debug("Identity resolved", map[string]any{
		"dn":     user.DistinguishedName,
		"groups": len(user.Groups),
		"claims": len(user.Claims),
	})

	return user, nil
}

// identifierFilter builds the lookup clause for one identity value based on
// its detected kind.
func (r *Resolver) identifierFilter(identifier string) (string, error) {
	switch DetectIdentifierKind(identifier) {
	case IdentifierDN:
		return fmt.Sprintf("(%s=%s)", r.dialect.DNAttribute, ldap.EscapeFilter(identifier)), nil

	case IdentifierGUID:
		if guidField := r.userMap.Lookup("guid"); guidField != nil {
			raw, err := guidFilterBytes(identifier)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("(%s=%s)", guidField.Attribute, ldap.EscapeFilter(string(raw))), nil
		}
		return fmt.Sprintf("(%s=%s)", r.userMap.Identity().Attribute, ldap.EscapeFilter(identifier)), nil

	case IdentifierSID:
		return fmt.Sprintf("(%s=%s)", r.userMap.Identity().Attribute, ldap.EscapeFilter(identifier)), nil

	case IdentifierUPN:
		if upnField := r.userMap.Lookup("upn"); upnField != nil {
			return fmt.Sprintf("(%s=%s)", upnField.Attribute, ldap.EscapeFilter(identifier)), nil
		}
		fallthrough

	case IdentifierAccountName:
		field := r.userMap.AccountName()
		if field == nil {
			field = r.userMap.Identity()
		}
		return fmt.Sprintf("(%s=%s)", field.Attribute, ldap.EscapeFilter(identifier)), nil

	default:
		return "", fmt.Errorf("%w: unusable identifier %q", ErrNotFound, identifier)
	}
}
