// Package csv implements the survey CSV reader. It streams records through
// encoding/csv, normalizes header names into canonical keys, and soft-skips
// rows whose width does not match the header. Optional byte-level scrubbing
// repairs known bad sequences before they reach the CSV decoder.
package csv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/transform"

	"surveydash/internal/parser"
	"surveydash/pkg/records"
)

var _ parser.Parser = (*Parser)(nil)

// Replacement is a literal byte sequence rewrite applied to the raw stream.
type Replacement struct {
	From, To string
}

// MojibakeNBSP rewrites a UTF-8 no-break space that was decoded as Latin-1
// and re-encoded ("Â" + NBSP) into a plain space. Spreadsheet exports of
// survey data commonly contain it.
var MojibakeNBSP = Replacement{From: "\u00c2\u00a0", To: " "}

// Options configures the CSV parser behavior. All fields are optional; sensible
// defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing whitespace from each field value.
	TrimSpace bool

	// LazyQuotes relaxes quote handling in encoding/csv.
	LazyQuotes bool

	// HeaderMap maps source header names to canonical keys. Unmapped headers
	// are lowercased with spaces replaced by underscores.
	HeaderMap map[string]string

	// Scrub lists streaming rewrites applied in order before decoding.
	Scrub []Replacement

	// Logger receives soft-skip notices. Nil disables logging.
	Logger *zap.Logger

	// MaxSkipLogs caps how many skipped rows are logged individually. Zero
	// means 400.
	MaxSkipLogs int
}

// Result is the outcome of a successful Parse.
type Result struct {
	// Header holds the canonical column keys in file order.
	Header  []string
	Records []records.Record
	// Skipped counts rows dropped for decode errors or width mismatches.
	Skipped int
}

// Parser parses CSV input according to Options. It holds no per-input
// state and may be shared between goroutines.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	if opt.MaxSkipLogs <= 0 {
		opt.MaxSkipLogs = 400
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	return &Parser{opt: opt}
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Parse consumes r and returns the records plus the number of skipped rows.
// A missing or unreadable header row, or an I/O failure of the underlying
// reader, is returned as an error and no records are produced.
func (p *Parser) Parse(r io.Reader) ([]records.Record, int, error) {
	res, err := p.ParseResult(r)
	if err != nil {
		return nil, 0, err
	}
	return res.Records, res.Skipped, nil
}

// ParseResult is Parse with the canonical header included.
func (p *Parser) ParseResult(r io.Reader) (Result, error) {
	if t := scrubber(p.opt.Scrub); t != nil {
		r = transform.NewReader(r, t)
	}

	cr := csv.NewReader(r)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	// Width is enforced against the header below so mismatches soft-fail.
	cr.FieldsPerRecord = -1

	h, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Result{}, fmt.Errorf("read csv header: empty input")
		}
		return Result{}, fmt.Errorf("read csv header: %w", err)
	}
	headers := normalizeHeaders(h, p.opt)

	var (
		out     []records.Record
		skipped int
	)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return Result{}, fmt.Errorf("read csv line %d: %w", line, err)
			}
			if skipped < p.opt.MaxSkipLogs {
				p.opt.Logger.Warn("skipping row", zap.Int("line", line), zap.Error(err))
			}
			skipped++
			continue
		}

		if len(row) != len(headers) {
			if skipped < p.opt.MaxSkipLogs {
				p.opt.Logger.Warn("skipping row: incorrect number of fields",
					zap.Int("line", line),
					zap.Int("expected", len(headers)),
					zap.Int("got", len(row)),
				)
			}
			skipped++
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[keyFor(i, headers)] = emptyToNil(val)
		}
		out = append(out, rec)
	}

	return Result{Header: headers, Records: out, Skipped: skipped}, nil
}

// keyFor returns the column key for index idx, using headers when available,
// otherwise synthesizing a "col_N" name.
func keyFor(idx int, headers []string) string {
	if idx < len(headers) && headers[idx] != "" {
		return headers[idx]
	}
	return fmt.Sprintf("col_%d", idx)
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// normalizeHeaders produces canonical header keys using HeaderMap (when
// provided) and simple normalization (lowercase, spaces to underscores). It
// also strips a UTF-8 BOM from the first cell if present.
func normalizeHeaders(h []string, opt Options) []string {
	h = StripHeaderBOM(h)
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if opt.HeaderMap != nil {
			if m, ok := opt.HeaderMap[c]; ok {
				res[i] = m
				continue
			}
		}
		res[i] = strings.ReplaceAll(strings.ToLower(c), " ", "_")
	}
	return res
}

// replacer rewrites every occurrence of from into to. A prefix of from at
// the end of src is held back until more input or EOF decides it.
type replacer struct {
	transform.NopResetter
	from, to []byte
}

func (rp replacer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		rest := src[nSrc:]
		if i := bytes.IndexByte(rest, rp.from[0]); i != 0 {
			if i < 0 {
				i = len(rest)
			}
			n := copy(dst[nDst:], rest[:i])
			nDst += n
			nSrc += n
			if n < i {
				return nDst, nSrc, transform.ErrShortDst
			}
			continue
		}

		switch {
		case bytes.HasPrefix(rest, rp.from):
			if len(dst)-nDst < len(rp.to) {
				return nDst, nSrc, transform.ErrShortDst
			}
			nDst += copy(dst[nDst:], rp.to)
			nSrc += len(rp.from)
		case !atEOF && len(rest) < len(rp.from) && bytes.HasPrefix(rp.from, rest):
			return nDst, nSrc, transform.ErrShortSrc
		default:
			if nDst == len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = rest[0]
			nDst++
			nSrc++
		}
	}
	return nDst, nSrc, nil
}

// scrubber chains the configured replacements, or returns nil when none
// would change the stream.
func scrubber(reps []Replacement) transform.Transformer {
	var ts []transform.Transformer
	for _, rep := range reps {
		if rep.From == "" || rep.From == rep.To {
			continue
		}
		ts = append(ts, replacer{from: []byte(rep.From), to: []byte(rep.To)})
	}
	if len(ts) == 0 {
		return nil
	}
	return transform.Chain(ts...)
}
