// Package schema describes how typed identity properties are backed by raw
// directory attributes. A Map binds a declarative field registry to one
// schema dialect and knows, per field, which attribute to request and which
// converter decodes its bytes.
package schema

import (
	"fmt"
	"strings"
)

// Name identifies a directory schema dialect. The dialect selects which
// directory attributes back each mapped property and which search filters
// locate users and groups.
type Name string

const (
	ActiveDirectory Name = "activedirectory"
	FreeIPA         Name = "freeipa"
	RFC2307         Name = "rfc2307"
)

// ParseName normalizes a dialect name from configuration.
func ParseName(s string) (Name, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "activedirectory", "active-directory", "ad":
		return ActiveDirectory, nil
	case "freeipa", "ipa":
		return FreeIPA, nil
	case "rfc2307", "posix":
		return RFC2307, nil
	default:
		return "", fmt.Errorf("unsupported schema dialect: %q", s)
	}
}

// String returns the string representation of the dialect name.
func (n Name) String() string {
	return string(n)
}

// Special marks a field as carrying one of the distinguished roles a mapped
// object type must expose. Each role may appear at most once per type.
type Special int

const (
	SpecialNone Special = iota
	SpecialIdentity          // unique stable identifier (SID, uidNumber, ...)
	SpecialAccountName       // login name (sAMAccountName, uid, ...)
	SpecialDistinguishedName // entry DN
	SpecialGroups            // multi-valued group membership attribute
	SpecialPrimaryGroup      // single-valued primary group identifier
)

// String returns a human-readable role name for diagnostics.
func (s Special) String() string {
	switch s {
	case SpecialIdentity:
		return "identity"
	case SpecialAccountName:
		return "account_name"
	case SpecialDistinguishedName:
		return "distinguished_name"
	case SpecialGroups:
		return "groups"
	case SpecialPrimaryGroup:
		return "primary_group"
	default:
		return "none"
	}
}

// AttributeMapping binds one field to a directory attribute under a single
// dialect. A field declares one mapping per dialect it participates in.
type AttributeMapping struct {
	Schema    Name
	Attribute string
	Converter Converter // nil selects the default conversion
}

// Field declares one mapped property of an object type: its per-dialect
// attribute mappings, its optional special role, the claim types it emits,
// and the accessors used to read and write the property on the target.
type Field[T any] struct {
	Name       string
	Special    Special
	ClaimTypes []string
	Mappings   []AttributeMapping
	Assign     func(target T, value string)
	Value      func(target T) string
}

// BoundField is a Field resolved against one dialect: exactly one attribute
// name and converter are active.
type BoundField[T any] struct {
	Field[T]
	Attribute string
	Converter Converter
}

// Map is the per-(type, dialect) attribute table. It is built once, is
// immutable afterwards, and may be shared by any number of concurrent
// resolutions.
type Map[T any] struct {
	name     Name
	fields   []*BoundField[T]
	byName   map[string]*BoundField[T]
	special  map[Special]*BoundField[T]
	required []string
}

// Build resolves a field registry against one dialect.
//
// Fields with no mapping for the dialect are excluded. A field declaring two
// mappings for the same dialect, or two fields claiming the same special
// role, fail construction with ErrAmbiguousMapping. A registry whose
// identity role is absent (or unmapped under the dialect) fails with
// ErrNoIdentity: an object that cannot be identified cannot be resolved.
func Build[T any](name Name, fields []Field[T]) (*Map[T], error) {
	m := &Map[T]{
		name:    name,
		byName:  make(map[string]*BoundField[T]),
		special: make(map[Special]*BoundField[T]),
	}

	seen := make(map[string]bool)
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: field with empty name", ErrAmbiguousMapping)
		}
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: field %q declared twice", ErrAmbiguousMapping, f.Name)
		}
		seen[f.Name] = true

		var active *AttributeMapping
		for i := range f.Mappings {
			mapping := &f.Mappings[i]
			if mapping.Schema != name {
				continue
			}
			if active != nil {
				return nil, fmt.Errorf("%w: field %q has multiple mappings for schema %s",
					ErrAmbiguousMapping, f.Name, name)
			}
			active = mapping
		}
		if active == nil {
			continue // field does not participate in this dialect
		}

		bound := &BoundField[T]{
			Field:     f,
			Attribute: active.Attribute,
			Converter: active.Converter,
		}

		if f.Special != SpecialNone {
			if prev, ok := m.special[f.Special]; ok {
				return nil, fmt.Errorf("%w: fields %q and %q both marked %s",
					ErrAmbiguousMapping, prev.Name, f.Name, f.Special)
			}
			m.special[f.Special] = bound
		}

		m.fields = append(m.fields, bound)
		m.byName[f.Name] = bound
	}

	if m.special[SpecialIdentity] == nil {
		return nil, fmt.Errorf("%w: no identity field mapped for schema %s", ErrNoIdentity, name)
	}

	m.required = dedupeAttributes(m.fields)

	return m, nil
}

// dedupeAttributes collapses the attribute names of the bound fields,
// preserving declaration order.
func dedupeAttributes[T any](fields []*BoundField[T]) []string {
	seen := make(map[string]bool, len(fields))
	attrs := make([]string, 0, len(fields))
	for _, f := range fields {
		key := strings.ToLower(f.Attribute)
		if seen[key] {
			continue
		}
		seen[key] = true
		attrs = append(attrs, f.Attribute)
	}
	return attrs
}

// Schema returns the dialect this map was built for.
func (m *Map[T]) Schema() Name {
	return m.name
}

// Fields returns the bound fields in declaration order.
func (m *Map[T]) Fields() []*BoundField[T] {
	return m.fields
}

// Lookup returns the bound field with the given name, or nil.
func (m *Map[T]) Lookup(name string) *BoundField[T] {
	return m.byName[name]
}

// RequiredAttributes returns the de-duplicated set of directory attribute
// names a search must request so that every mapped field can be populated.
// Requesting fewer silently yields empty properties; requesting more wastes
// directory round-trip payload.
func (m *Map[T]) RequiredAttributes() []string {
	attrs := make([]string, len(m.required))
	copy(attrs, m.required)
	return attrs
}

// Identity returns the field carrying the unique stable identifier.
// Never nil on a successfully built map.
func (m *Map[T]) Identity() *BoundField[T] {
	return m.special[SpecialIdentity]
}

// AccountName returns the login-name field, or nil if the dialect maps none.
func (m *Map[T]) AccountName() *BoundField[T] {
	return m.special[SpecialAccountName]
}

// DistinguishedName returns the DN field, or nil if the dialect maps none.
func (m *Map[T]) DistinguishedName() *BoundField[T] {
	return m.special[SpecialDistinguishedName]
}

// Groups returns the group-membership container field, or nil.
func (m *Map[T]) Groups() *BoundField[T] {
	return m.special[SpecialGroups]
}

// PrimaryGroup returns the primary-group identifier field, or nil.
func (m *Map[T]) PrimaryGroup() *BoundField[T] {
	return m.special[SpecialPrimaryGroup]
}
