// Package filter applies conjunctive respondent criteria to a normalized
// dataset. Criteria map one-to-one onto the dashboard controls.
package filter

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"surveydash/internal/config"
	"surveydash/internal/survey"
)

// All is the selector sentinel meaning "no constraint".
const All = "All"

// Query parameter names used by FromValues and Criteria.Values.
const (
	ParamGender  = "gender"
	ParamCountry = "country"
	ParamRemote  = "remote"
	ParamTech    = "tech"
	ParamAge     = "age"
)

// ErrInvalidCriteria wraps every FromValues failure.
var ErrInvalidCriteria = errors.New("invalid filter criteria")

// Criteria is a filter configuration. Empty strings and All impose no
// constraint; MaxAge zero imposes no age bound.
type Criteria struct {
	Gender      string `json:"gender,omitempty" yaml:"gender,omitempty"`
	Country     string `json:"country,omitempty" yaml:"country,omitempty"`
	RemoteWork  string `json:"remote_work,omitempty" yaml:"remote_work,omitempty"`
	TechCompany string `json:"tech_company,omitempty" yaml:"tech_company,omitempty"`
	MaxAge      int    `json:"max_age,omitempty" yaml:"max_age,omitempty"`
}

func active(v string) bool { return v != "" && v != All }

// Active reports whether any criterion constrains the result.
func (c Criteria) Active() bool {
	return active(c.Gender) || active(c.Country) || active(c.RemoteWork) ||
		active(c.TechCompany) || c.MaxAge > 0
}

// Match reports whether r satisfies every active criterion. When an age bound
// is active, rows without an age never match.
func (c Criteria) Match(r survey.Response) bool {
	if active(c.Gender) && string(r.Gender) != c.Gender {
		return false
	}
	if active(c.Country) && r.Country != c.Country {
		return false
	}
	if active(c.RemoteWork) && r.RemoteWork != c.RemoteWork {
		return false
	}
	if active(c.TechCompany) && r.TechCompany != c.TechCompany {
		return false
	}
	if c.MaxAge > 0 {
		age, ok := r.AgeValue()
		if !ok || age > c.MaxAge {
			return false
		}
	}
	return true
}

// Apply returns the rows matching c in input order. The result is always a
// new slice; rows is never modified.
func Apply(rows []survey.Response, c Criteria) []survey.Response {
	if !c.Active() {
		out := make([]survey.Response, len(rows))
		copy(out, rows)
		return out
	}
	out := make([]survey.Response, 0, len(rows))
	for _, r := range rows {
		if c.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// FromValues parses dashboard query or form values. Gender is resolved
// case-insensitively to its canonical category; age must be a non-negative
// integer.
func FromValues(v url.Values) (Criteria, error) {
	c := Criteria{
		Country:     strings.TrimSpace(v.Get(ParamCountry)),
		RemoteWork:  strings.TrimSpace(v.Get(ParamRemote)),
		TechCompany: strings.TrimSpace(v.Get(ParamTech)),
	}

	if g := strings.TrimSpace(v.Get(ParamGender)); active(g) {
		gender, ok := survey.ParseGender(g)
		if !ok {
			return Criteria{}, fmt.Errorf("%w: unknown gender %q", ErrInvalidCriteria, g)
		}
		c.Gender = string(gender)
	}

	if a := strings.TrimSpace(v.Get(ParamAge)); a != "" {
		n, err := strconv.Atoi(a)
		if err != nil {
			return Criteria{}, fmt.Errorf("%w: age %q is not an integer", ErrInvalidCriteria, a)
		}
		if n < 0 {
			return Criteria{}, fmt.Errorf("%w: age must be >= 0, got %d", ErrInvalidCriteria, n)
		}
		c.MaxAge = n
	}
	return c, nil
}

// Values encodes c back into query parameters, omitting inactive criteria.
func (c Criteria) Values() url.Values {
	v := url.Values{}
	if active(c.Gender) {
		v.Set(ParamGender, c.Gender)
	}
	if active(c.Country) {
		v.Set(ParamCountry, c.Country)
	}
	if active(c.RemoteWork) {
		v.Set(ParamRemote, c.RemoteWork)
	}
	if active(c.TechCompany) {
		v.Set(ParamTech, c.TechCompany)
	}
	if c.MaxAge > 0 {
		v.Set(ParamAge, strconv.Itoa(c.MaxAge))
	}
	return v
}

// String renders the active criteria for logs, e.g. "gender=Female age<=30".
func (c Criteria) String() string {
	var parts []string
	if active(c.Gender) {
		parts = append(parts, "gender="+c.Gender)
	}
	if active(c.Country) {
		parts = append(parts, "country="+c.Country)
	}
	if active(c.RemoteWork) {
		parts = append(parts, "remote="+c.RemoteWork)
	}
	if active(c.TechCompany) {
		parts = append(parts, "tech="+c.TechCompany)
	}
	if c.MaxAge > 0 {
		parts = append(parts, "age<="+strconv.Itoa(c.MaxAge))
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// Validate lints criteria built outside FromValues, such as CLI flags.
func (c Criteria) Validate() []config.Issue {
	var issues []config.Issue
	if active(c.Gender) {
		if _, ok := survey.ParseGender(c.Gender); !ok {
			issues = append(issues, config.Issue{
				Severity: config.SeverityError,
				Path:     ParamGender,
				Message:  fmt.Sprintf("unknown gender %q; want one of %v", c.Gender, survey.Genders()),
			})
		} else if g, _ := survey.ParseGender(c.Gender); string(g) != c.Gender {
			issues = append(issues, config.Issue{
				Severity: config.SeverityWarning,
				Path:     ParamGender,
				Message:  fmt.Sprintf("gender %q is not canonical; matching is exact, use %q", c.Gender, g),
			})
		}
	}
	if c.MaxAge < 0 {
		issues = append(issues, config.Issue{
			Severity: config.SeverityError,
			Path:     ParamAge,
			Message:  "age bound must be >= 0",
		})
	}
	return issues
}
