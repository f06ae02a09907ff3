package schema

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/bwmarrin/go-objectsid"
	"github.com/google/uuid"
)

// Converter transforms one raw directory attribute value into its canonical
// string form. Converters are stateless and safe for concurrent use.
type Converter interface {
	Convert(raw []byte) (string, error)
}

// Convert applies the converter, falling back to the default conversion when
// none is declared on the mapping.
func Convert(c Converter, raw []byte) (string, error) {
	if c == nil {
		return defaultConvert(raw), nil
	}
	return c.Convert(raw)
}

// defaultConvert keeps textual values as-is and base64-encodes anything the
// directory returned as opaque binary.
func defaultConvert(raw []byte) string {
	if utf8.Valid(raw) && isPrintable(raw) {
		return string(raw)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func isPrintable(raw []byte) bool {
	for _, r := range string(raw) {
		if r == utf8.RuneError {
			return false
		}
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// NumberConverter decodes fixed-width little-endian signed integers, the
// encoding Active Directory uses for binary numeric attributes. The byte
// length selects the width exactly; any other length is a schema mismatch.
type NumberConverter struct{}

func (NumberConverter) Convert(raw []byte) (string, error) {
	switch len(raw) {
	case 1:
		return strconv.FormatInt(int64(int8(raw[0])), 10), nil
	case 2:
		return strconv.FormatInt(int64(int16(binary.LittleEndian.Uint16(raw))), 10), nil
	case 4:
		return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(raw))), 10), nil
	case 8:
		return strconv.FormatInt(int64(binary.LittleEndian.Uint64(raw)), 10), nil
	default:
		return "", fmt.Errorf("%w: numeric value of %d bytes", ErrUnsupportedConversion, len(raw))
	}
}

// NumericStringConverter validates and normalizes integers that the dialect
// stores as decimal strings (gidNumber, uidNumber, primaryGroupID).
type NumericStringConverter struct{}

func (NumericStringConverter) Convert(raw []byte) (string, error) {
	s := strings.TrimSpace(string(raw))
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a decimal integer", ErrUnsupportedConversion, s)
	}
	return strconv.FormatInt(n, 10), nil
}

// SIDConverter decodes the binary security-identifier encoding used by
// Active Directory into its canonical S-R-I-S... string form. One-directional;
// only meaningful for the Active Directory dialect.
type SIDConverter struct{}

func (SIDConverter) Convert(raw []byte) (string, error) {
	if err := validateBinarySID(raw); err != nil {
		return "", err
	}
	sid := objectsid.Decode(raw)
	return sid.String(), nil
}

// validateBinarySID checks the structural shape of a binary SID before it is
// handed to the decoder: revision byte, sub-authority count byte, 48-bit
// authority, then count 32-bit sub-authorities.
func validateBinarySID(raw []byte) error {
	if len(raw) < 8 {
		return fmt.Errorf("%w: SID of %d bytes", ErrUnsupportedConversion, len(raw))
	}
	count := int(raw[1])
	if count > 15 {
		return fmt.Errorf("%w: SID with %d sub-authorities", ErrUnsupportedConversion, count)
	}
	if want := 8 + 4*count; len(raw) != want {
		return fmt.Errorf("%w: SID of %d bytes, expected %d for %d sub-authorities",
			ErrUnsupportedConversion, len(raw), want, count)
	}
	return nil
}

// GUIDConverter decodes the 16-byte mixed-endian objectGUID encoding into a
// hyphenated UUID string. The first three groups are stored little-endian,
// the final eight bytes big-endian.
type GUIDConverter struct{}

func (GUIDConverter) Convert(raw []byte) (string, error) {
	if len(raw) != 16 {
		return "", fmt.Errorf("%w: GUID of %d bytes", ErrUnsupportedConversion, len(raw))
	}

	standard := make([]byte, 16)
	standard[0], standard[1], standard[2], standard[3] = raw[3], raw[2], raw[1], raw[0]
	standard[4], standard[5] = raw[5], raw[4]
	standard[6], standard[7] = raw[7], raw[6]
	copy(standard[8:], raw[8:])

	id, err := uuid.FromBytes(standard)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedConversion, err)
	}
	return id.String(), nil
}

// fileTimeEpochDelta is the number of 100-nanosecond intervals between the
// Windows epoch (1601-01-01) and the Unix epoch (1970-01-01).
const fileTimeEpochDelta = 116444736000000000

// fileTimeNever is the sentinel Active Directory stores for "no expiry".
const fileTimeNever = 0x7FFFFFFFFFFFFFFF

// FileTimeConverter decodes Active Directory interval timestamps (decimal
// strings counting 100-nanosecond ticks since 1601) into RFC 3339. The zero
// and "never" sentinels convert to the empty string.
type FileTimeConverter struct{}

func (FileTimeConverter) Convert(raw []byte) (string, error) {
	s := strings.TrimSpace(string(raw))
	ticks, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w: %q is not a FILETIME value", ErrUnsupportedConversion, s)
	}
	if ticks == 0 || ticks == fileTimeNever {
		return "", nil
	}
	if ticks < fileTimeEpochDelta {
		return "", fmt.Errorf("%w: FILETIME %d predates the Unix epoch", ErrUnsupportedConversion, ticks)
	}
	return time.Unix(0, (ticks-fileTimeEpochDelta)*100).UTC().Format(time.RFC3339), nil
}
