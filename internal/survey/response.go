// Package survey holds the typed respondent model and the row normalizer
// that turns parsed CSV records into it.
package survey

import "strings"

// Canonical column keys after header normalization.
const (
	FieldAge           = "age"
	FieldGender        = "gender"
	FieldCountry       = "country"
	FieldTreatment     = "treatment"
	FieldRemoteWork    = "remote_work"
	FieldTechCompany   = "tech_company"
	FieldWorkInterfere = "work_interfere"
)

// Fields lists the columns the normalizer reads, in file order of the
// reference dataset.
func Fields() []string {
	return []string{FieldAge, FieldGender, FieldCountry, FieldTreatment, FieldRemoteWork, FieldTechCompany, FieldWorkInterfere}
}

// Gender is one of the fixed respondent categories.
type Gender string

const (
	Female      Gender = "Female"
	Male        Gender = "Male"
	NonBinary   Gender = "Non-binary"
	Transgender Gender = "Transgender"
	Other       Gender = "Other"
)

var genders = []Gender{Female, Male, NonBinary, Transgender, Other}

// Genders returns the categories in canonical display order.
func Genders() []Gender {
	out := make([]Gender, len(genders))
	copy(out, genders)
	return out
}

// ParseGender resolves an exact category name, ignoring case.
func ParseGender(s string) (Gender, bool) {
	s = strings.TrimSpace(s)
	for _, g := range genders {
		if strings.EqualFold(s, string(g)) {
			return g, true
		}
	}
	return "", false
}

// Response is one normalized respondent. It is a value type; a loaded
// dataset never hands out pointers into its backing slice.
type Response struct {
	// Age is the respondent age in years. Zero means absent.
	Age    int
	Gender Gender

	Country       string
	Treatment     string
	RemoteWork    string
	TechCompany   string
	WorkInterfere string
}

// AgeValue returns the age and whether it is present.
func (r Response) AgeValue() (int, bool) { return r.Age, r.Age > 0 }

// HasAge reports whether the age field parsed to a positive integer.
func (r Response) HasAge() bool { return r.Age > 0 }

// SoughtTreatment reports an affirmative treatment answer. Treatment and
// interference answers are compared case-insensitively against a fixed
// vocabulary everywhere in the codebase.
func (r Response) SoughtTreatment() bool { return answerIs(r.Treatment, "yes") }

// DeclinedTreatment reports a negative treatment answer.
func (r Response) DeclinedTreatment() bool { return answerIs(r.Treatment, "no") }

// InterferesOften reports whether work_interfere is "Often".
func (r Response) InterferesOften() bool { return answerIs(r.WorkInterfere, "often") }

func answerIs(v, want string) bool {
	return strings.EqualFold(strings.TrimSpace(v), want)
}

// Text returns the pass-through text stored for field, or "" for age,
// gender and unknown keys.
func (r Response) Text(field string) string {
	switch field {
	case FieldCountry:
		return r.Country
	case FieldTreatment:
		return r.Treatment
	case FieldRemoteWork:
		return r.RemoteWork
	case FieldTechCompany:
		return r.TechCompany
	case FieldWorkInterfere:
		return r.WorkInterfere
	}
	return ""
}
