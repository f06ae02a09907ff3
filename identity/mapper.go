package identity

import (
	"fmt"

	"github.com/go-ldap/ldap/v3"

	"github.com/isometry/ldap-identity/logging"
	"github.com/isometry/ldap-identity/schema"
)

// MapEntry projects one directory entry onto the target object through the
// given attribute map. Directories commonly omit optional attributes, so an
// absent attribute is logged and leaves the property at its default value; a
// conversion failure is a schema/converter mismatch and fails the mapping.
func MapEntry[T any](entry *ldap.Entry, target T, sm *schema.Map[T], log logging.Logger) (T, error) {
	if log == nil {
		log = logging.Nop{}
	}

	for _, field := range sm.Fields() {
		// The membership container takes every value of its multi-valued
		// attribute, unconverted: the values are entry references, not data.
		if field == sm.Groups() {
			for _, value := range entry.GetAttributeValues(field.Attribute) {
				field.Assign(target, value)
			}
			continue
		}

		raw := entry.GetRawAttributeValue(field.Attribute)
		if len(raw) == 0 {
			// Servers that do not expose the DN attribute still report the
			// entry's own DN on the envelope.
			if field == sm.DistinguishedName() && entry.DN != "" {
				field.Assign(target, entry.DN)
				continue
			}
			log.Warn("Attribute missing from entry", map[string]any{
				"attribute": field.Attribute,
				"field":     field.Name,
				"dn":        entry.DN,
			})
			continue
		}

		value, err := schema.Convert(field.Converter, raw)
		if err != nil {
			return target, fmt.Errorf("mapping %s from attribute %s of %s: %w",
				field.Name, field.Attribute, entry.DN, err)
		}
		field.Assign(target, value)
	}

	return target, nil
}
