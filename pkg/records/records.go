// Package records defines the loosely typed row shape shared by parsers and
// normalizers. A Record maps a canonical column key to its raw value; parsers
// store strings and use nil for empty cells.
package records

import "fmt"

// Record is one parsed row keyed by canonical column name.
type Record map[string]any

// String returns the value at key as a string. Missing keys and nil values
// yield "". Non-string values are formatted with fmt.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Has reports whether key is present with a non-nil value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}
