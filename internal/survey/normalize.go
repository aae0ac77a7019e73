package survey

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"surveydash/pkg/records"
)

// Normalize converts one parsed record into a Response. It never fails:
// malformed age degrades to absent and unrecognized gender to Other. Other
// fields are copied as provided, with missing values becoming "".
func Normalize(rec records.Record) Response {
	return Response{
		Age:           ParseAge(rec.String(FieldAge)),
		Gender:        CanonicalGender(rec.String(FieldGender)),
		Country:       rec.String(FieldCountry),
		Treatment:     rec.String(FieldTreatment),
		RemoteWork:    rec.String(FieldRemoteWork),
		TechCompany:   rec.String(FieldTechCompany),
		WorkInterfere: rec.String(FieldWorkInterfere),
	}
}

// NormalizeAll maps Normalize over recs into a new slice.
func NormalizeAll(recs []records.Record) []Response {
	out := make([]Response, 0, len(recs))
	for _, r := range recs {
		out = append(out, Normalize(r))
	}
	return out
}

// ParseAge returns a positive age or 0 for absent. Only plain digits are
// accepted, optionally followed by a zero fraction such as "31.0". Signs,
// exponents, fractions and text are absent.
func ParseAge(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	whole, frac, _ := strings.Cut(s, ".")
	if !isDigits(whole) || strings.Trim(frac, "0") != "" {
		return 0
	}
	n, err := strconv.Atoi(whole)
	if err != nil || n > math.MaxInt32 {
		return 0
	}
	if n <= 0 {
		return 0
	}
	return n
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CanonicalGender maps free-text gender onto the fixed categories. Keywords
// are tested in priority order on the folded text; "female" must precede
// "male" because it contains it.
func CanonicalGender(raw string) Gender {
	g := foldText(raw)
	switch {
	case g == "":
		return Other
	case strings.Contains(g, "female"):
		return Female
	case strings.Contains(g, "male"):
		return Male
	case strings.Contains(g, "non-binary"), strings.Contains(g, "nonbinary"):
		return NonBinary
	case strings.Contains(g, "trans"):
		return Transgender
	default:
		return Other
	}
}

// foldText case-folds s and strips combining marks. Transformers carry
// state, so the chain is built per call.
func foldText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}
