package identity

import (
	"context"
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/go-ldap/ldap/v3"

	"github.com/isometry/ldap-identity/directory"
)

// mockDirectory implements directory.Client for resolver testing. Entries
// match a search when the filter contains an (attribute=value) clause for
// one of their attributes, which is exactly the shape every resolver filter
// takes.
type mockDirectory struct {
	entries []*ldap.Entry

	bindErr        error
	serviceBindErr error
	searchErr      error

	// aliases holds extra filter clauses an entry answers to, for
	// attributes whose stored form differs from their filter form
	// (binary SIDs searched by their string rendering).
	aliases map[*ldap.Entry][]string

	lastBindUser string
	lastBindPass string
	bindCalls    int
	serviceBinds int
	searchLog    []string
	pagedReqs    []*directory.SearchRequest
}

var _ directory.Client = (*mockDirectory)(nil)

func (m *mockDirectory) Bind(ctx context.Context, username, password string) error {
	m.bindCalls++
	m.lastBindUser = username
	m.lastBindPass = password
	return m.bindErr
}

func (m *mockDirectory) BindServiceAccount(ctx context.Context) error {
	m.serviceBinds++
	return m.serviceBindErr
}

func (m *mockDirectory) Search(ctx context.Context, req *directory.SearchRequest) (*directory.SearchResult, error) {
	m.searchLog = append(m.searchLog, req.Filter)
	if m.searchErr != nil {
		return nil, m.searchErr
	}

	var matched []*ldap.Entry
	for _, entry := range m.entries {
		if !m.matches(entry, req.Filter) {
			continue
		}
		matched = append(matched, entry)
		if req.SizeLimit > 0 && len(matched) >= req.SizeLimit {
			break
		}
	}
	return &directory.SearchResult{Entries: matched}, nil
}

func (m *mockDirectory) SearchPaged(ctx context.Context, req *directory.SearchRequest, pageSize uint32) iter.Seq2[*ldap.Entry, error] {
	return func(yield func(*ldap.Entry, error) bool) {
		m.searchLog = append(m.searchLog, req.Filter)
		m.pagedReqs = append(m.pagedReqs, req)
		if m.searchErr != nil {
			yield(nil, m.searchErr)
			return
		}
		for _, entry := range m.entries {
			if !m.matches(entry, req.Filter) {
				continue
			}
			if !yield(entry, nil) {
				return
			}
		}
	}
}

func (m *mockDirectory) Close() error {
	return nil
}

var clauseRegexp = regexp.MustCompile(`\(([a-zA-Z0-9]+)=([^()]*)\)`)

// matches treats the filter as a conjunction of (attribute=value) clauses,
// all of which the entry must satisfy, either through one of its attributes
// or through a registered alias.
func (m *mockDirectory) matches(entry *ldap.Entry, filter string) bool {
	clauses := clauseRegexp.FindAllStringSubmatch(filter, -1)
	if len(clauses) == 0 {
		return false
	}
	for _, clause := range clauses {
		if !m.satisfies(entry, clause[1], clause[2], clause[0]) {
			return false
		}
	}
	return true
}

func (m *mockDirectory) satisfies(entry *ldap.Entry, attribute, value, clause string) bool {
	for _, alias := range m.aliases[entry] {
		if alias == clause {
			return true
		}
	}
	for _, attr := range entry.Attributes {
		if !strings.EqualFold(attr.Name, attribute) {
			continue
		}
		for _, v := range attr.Values {
			if ldap.EscapeFilter(v) == value {
				return true
			}
		}
	}
	return false
}

func (m *mockDirectory) add(dn string, attrs map[string][]string) *ldap.Entry {
	entry := ldap.NewEntry(dn, attrs)
	m.entries = append(m.entries, entry)
	return entry
}

// addAlias registers an extra (attribute=value) clause the entry matches.
func (m *mockDirectory) addAlias(entry *ldap.Entry, attribute, value string) {
	if m.aliases == nil {
		m.aliases = make(map[*ldap.Entry][]string)
	}
	m.aliases[entry] = append(m.aliases[entry], fmt.Sprintf("(%s=%s)", attribute, ldap.EscapeFilter(value)))
}
