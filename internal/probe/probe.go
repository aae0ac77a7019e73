// Package probe samples the head of a survey source and reports what the
// loader will make of it: the delimiter, each column's inferred type and
// fill rate, missing survey fields, and how genders and ages normalize.
// It reads at most MaxBytes so it is cheap against large remote files.
package probe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"surveydash/internal/datasource"
	csvparser "surveydash/internal/parser/csv"
	"surveydash/internal/survey"
)

// DefaultMaxBytes is the sample size used when Options.MaxBytes is zero.
const DefaultMaxBytes = 64 << 10

// Options control sampling.
type Options struct {
	// MaxBytes to sample from the start of the source.
	MaxBytes int
	// Parser is applied to the sample as the loader would apply it. A zero
	// Comma detects the separator from the header; quotes are always lazy.
	Parser csvparser.Options
	Logger *zap.Logger
}

// Column describes one header column of the sample.
type Column struct {
	Header string `json:"header" yaml:"header"`
	// Type is one of integer, real, boolean, text.
	Type string `json:"type" yaml:"type"`
	// Filled counts non-empty sampled values.
	Filled int `json:"filled" yaml:"filled"`
	// Survey is true when the normalizer reads this column.
	Survey bool `json:"survey" yaml:"survey"`
}

// Report is the probe outcome.
type Report struct {
	Source    string   `json:"source" yaml:"source"`
	Delimiter string   `json:"delimiter" yaml:"delimiter"`
	Bytes     int      `json:"bytes" yaml:"bytes"`
	Rows      int      `json:"rows" yaml:"rows"`
	Skipped   int      `json:"skipped" yaml:"skipped"`
	Columns   []Column `json:"columns" yaml:"columns"`
	Missing   []string `json:"missing,omitempty" yaml:"missing,omitempty"`
	// Genders counts normalized categories in the sample.
	Genders map[survey.Gender]int `json:"genders" yaml:"genders"`
	// AgeAbsent counts rows whose age normalized to absent.
	AgeAbsent int `json:"age_absent" yaml:"age_absent"`
}

// Ready reports whether every survey field is present.
func (r Report) Ready() bool { return len(r.Missing) == 0 }

// Sniff reads the head of src and builds a Report.
func Sniff(ctx context.Context, src datasource.Source, opt Options) (Report, error) {
	if opt.MaxBytes <= 0 {
		opt.MaxBytes = DefaultMaxBytes
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("open %s: %w", src.Location(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, int64(opt.MaxBytes)))
	if err != nil {
		return Report{}, fmt.Errorf("sample %s: %w", src.Location(), err)
	}
	// A read that filled the buffer likely ends mid-record.
	if len(data) == opt.MaxBytes {
		if i := bytes.LastIndexByte(data, '\n'); i > 0 {
			data = data[:i+1]
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Report{}, errors.New("probe: empty sample")
	}

	popt := opt.Parser
	if popt.Comma == 0 {
		popt.Comma = DetectDelimiter(firstLine(data))
	}
	popt.LazyQuotes = true
	if popt.Logger == nil {
		popt.Logger = opt.Logger
	}
	delim := popt.Comma

	res, err := csvparser.NewParser(popt).ParseResult(bytes.NewReader(data))
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		Source:    src.Location(),
		Delimiter: string(delim),
		Bytes:     len(data),
		Rows:      len(res.Records),
		Skipped:   res.Skipped,
		Genders:   map[survey.Gender]int{},
	}

	known := map[string]bool{}
	for _, f := range survey.Fields() {
		known[f] = true
	}
	seen := map[string]bool{}
	for _, h := range res.Header {
		seen[h] = true
		var vals []string
		for _, rec := range res.Records {
			if rec.Has(h) {
				vals = append(vals, rec.String(h))
			}
		}
		rep.Columns = append(rep.Columns, Column{
			Header: h,
			Type:   inferType(vals),
			Filled: len(vals),
			Survey: known[h],
		})
	}
	for _, f := range survey.Fields() {
		if !seen[f] {
			rep.Missing = append(rep.Missing, f)
		}
	}

	for _, rec := range res.Records {
		r := survey.Normalize(rec)
		rep.Genders[r.Gender]++
		if !r.HasAge() {
			rep.AgeAbsent++
		}
	}
	return rep, nil
}

func firstLine(data []byte) []byte {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[:i]
	}
	return data
}

var candidates = []rune{',', ';', '\t', '|'}

// DetectDelimiter picks the candidate separator occurring most often in a
// header line, outside double quotes. Ties and no hits select ','.
func DetectDelimiter(line []byte) rune {
	counts := map[rune]int{}
	inQuote := false
	for _, r := range string(line) {
		if r == '"' {
			inQuote = !inQuote
			continue
		}
		if !inQuote {
			counts[r]++
		}
	}
	best, bestN := ',', counts[',']
	for _, c := range candidates[1:] {
		if counts[c] > bestN {
			best, bestN = c, counts[c]
		}
	}
	return best
}

// inferType requires every non-empty value to satisfy the narrower type.
func inferType(vals []string) string {
	if len(vals) == 0 {
		return "text"
	}
	switch {
	case all(vals, isInt):
		return "integer"
	case all(vals, isFloat):
		return "real"
	case all(vals, isBool):
		return "boolean"
	}
	return "text"
}

func all(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

func isBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "no", "true", "false", "y", "n", "t", "f":
		return true
	}
	return false
}

// GenderNames returns the keys of r.Genders in canonical order.
func (r Report) GenderNames() []survey.Gender {
	var out []survey.Gender
	for _, g := range survey.Genders() {
		if r.Genders[g] > 0 {
			out = append(out, g)
		}
	}
	return out
}

// SurveyColumns returns the header names the normalizer reads, sorted.
func (r Report) SurveyColumns() []string {
	var out []string
	for _, c := range r.Columns {
		if c.Survey {
			out = append(out, c.Header)
		}
	}
	sort.Strings(out)
	return out
}
