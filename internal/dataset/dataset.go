// Package dataset owns the loaded survey snapshot. A Store reads a source,
// parses and normalizes it, and swaps the result in atomically; readers only
// ever see a complete, immutable Dataset.
package dataset

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"surveydash/internal/survey"
)

// Dataset is one immutable load of the survey. Callers must not modify
// Responses.
type Dataset struct {
	ID          uuid.UUID
	Source      string
	Fingerprint uint64
	LoadedAt    time.Time
	Responses   []survey.Response
	// Skipped counts CSV rows dropped by the parser.
	Skipped int
}

// Len returns the number of respondents.
func (d *Dataset) Len() int { return len(d.Responses) }

// ETag is the quoted hex fingerprint of the raw source bytes.
func (d *Dataset) ETag() string { return fmt.Sprintf(`"%016x"`, d.Fingerprint) }

// Countries returns the distinct non-blank countries, sorted.
func (d *Dataset) Countries() []string { return d.Values(survey.FieldCountry) }

// Values returns the distinct non-blank values of a text field, sorted.
// Fields without text (age, gender) yield nil.
func (d *Dataset) Values(field string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.Responses {
		v := r.Text(field)
		if strings.TrimSpace(v) == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
