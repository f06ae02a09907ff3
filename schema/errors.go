package schema

import "errors"

var (
	// ErrAmbiguousMapping indicates a field registry that declares the same
	// special role or the same (field, schema) mapping more than once.
	// Construction-time configuration defect, never retried.
	ErrAmbiguousMapping = errors.New("ambiguous attribute mapping")

	// ErrNoIdentity indicates a field registry with no identity field mapped
	// under the requested schema dialect.
	ErrNoIdentity = errors.New("no identity field mapped")

	// ErrUnsupportedConversion indicates a converter received a value shape
	// it cannot decode, e.g. a binary integer of unexpected width. This is a
	// schema/converter mismatch, not a transient condition.
	ErrUnsupportedConversion = errors.New("unsupported attribute conversion")
)
