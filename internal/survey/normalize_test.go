package survey

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"surveydash/pkg/records"
)

/*
TestCanonicalGender_TableDriven covers keyword priority and fallbacks:

  - "female" wins even when "male" is also a substring.
  - Matching is case-insensitive and ignores surrounding text.
  - Accented input is folded before matching.
  - Empty or unrecognized text maps to Other.
*/
func TestCanonicalGender_TableDriven(t *testing.T) {
	tests := []struct {
		in   string
		want Gender
	}{
		{"Female", Female},
		{"female", Female},
		{"FEMALE", Female},
		{"Female-identifying", Female},
		{"cis female", Female},
		{"Trans-female", Female},
		{"Male", Male},
		{"M a l e", Other},
		{"male-ish", Male},
		{"Mâle", Male},
		{"Non-binary", NonBinary},
		{"nonbinary", NonBinary},
		{"NONBINARY person", NonBinary},
		{"Trans", Transgender},
		{"transgender", Transgender},
		{"Genderqueer", Other},
		{"", Other},
		{"   ", Other},
		{"M", Other},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := CanonicalGender(tt.in); got != tt.want {
				t.Fatalf("CanonicalGender(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"plain", "22", 22},
		{"padded", " 40 ", 40},
		{"whole_decimal", "31.0", 31},
		{"fraction", "22.5", 0},
		{"empty", "", 0},
		{"text", "abc", 0},
		{"zero", "0", 0},
		{"negative", "-29", 0},
		{"huge_float", "1e20", 0},
		{"nan", "NaN", 0},
		{"exponent", "1e2", 0},
		{"upper_exponent", "3E1", 0},
		{"hex", "0x1F", 0},
		{"signed", "+30", 0},
		{"trailing_dot", "44.", 44},
		{"zero_fraction", "27.000", 27},
		{"overflow", "99999999999999999999", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseAge(tt.in); got != tt.want {
				t.Fatalf("ParseAge(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_PassThroughAndDefaults(t *testing.T) {
	rec := records.Record{
		FieldAge:           "35",
		FieldGender:        "woman, female",
		FieldCountry:       "United States",
		FieldTreatment:     "yes",
		FieldRemoteWork:    "No",
		FieldTechCompany:   "Yes",
		FieldWorkInterfere: "Often",
		"comments":         "ignored",
	}
	want := Response{
		Age:           35,
		Gender:        Female,
		Country:       "United States",
		Treatment:     "yes",
		RemoteWork:    "No",
		TechCompany:   "Yes",
		WorkInterfere: "Often",
	}
	if diff := cmp.Diff(want, Normalize(rec)); diff != "" {
		t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
	}

	// Missing and nil fields degrade to documented defaults.
	got := Normalize(records.Record{FieldAge: nil, FieldCountry: nil})
	if got.HasAge() {
		t.Fatalf("expected absent age, got %d", got.Age)
	}
	if got.Gender != Other {
		t.Fatalf("gender = %q, want Other", got.Gender)
	}
	if got.Country != "" || got.Treatment != "" {
		t.Fatalf("expected empty pass-through fields, got %+v", got)
	}
}

func TestNormalizeAll_AgeInvariant(t *testing.T) {
	in := []records.Record{
		{FieldAge: "22"},
		{FieldAge: ""},
		{FieldAge: "not a number"},
		{FieldAge: "-1"},
		{FieldAge: "99999999999"},
	}
	out := NormalizeAll(in)
	if len(out) != len(in) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	for i, r := range out {
		if age, ok := r.AgeValue(); ok && age <= 0 {
			t.Fatalf("row %d: present age must be positive, got %d", i, age)
		}
		if !r.HasAge() && r.Age != 0 {
			t.Fatalf("row %d: absent age must be zero value, got %d", i, r.Age)
		}
	}
	if !out[0].HasAge() || out[1].HasAge() || out[2].HasAge() || out[3].HasAge() {
		t.Fatalf("unexpected age presence: %+v", out)
	}
}

func TestParseGender(t *testing.T) {
	if g, ok := ParseGender("non-BINARY"); !ok || g != NonBinary {
		t.Fatalf("ParseGender = %q,%v", g, ok)
	}
	if _, ok := ParseGender("All"); ok {
		t.Fatal("All must not resolve to a category")
	}
	if got := len(Genders()); got != 5 {
		t.Fatalf("Genders() len = %d, want 5", got)
	}
}

func TestResponseAnswers_CaseInsensitive(t *testing.T) {
	r := Response{Treatment: " YES ", WorkInterfere: "often"}
	if !r.SoughtTreatment() || r.DeclinedTreatment() {
		t.Fatalf("treatment predicates wrong for %+v", r)
	}
	if !r.InterferesOften() {
		t.Fatal("expected interference")
	}
	if (Response{Treatment: "Maybe"}).SoughtTreatment() {
		t.Fatal("Maybe is not affirmative")
	}
}

func TestResponseText(t *testing.T) {
	r := Response{Age: 30, Gender: Male, Country: "Canada", Treatment: "Yes", RemoteWork: "No", TechCompany: "Yes", WorkInterfere: "Often"}
	tests := map[string]string{
		FieldCountry:       "Canada",
		FieldTreatment:     "Yes",
		FieldRemoteWork:    "No",
		FieldTechCompany:   "Yes",
		FieldWorkInterfere: "Often",
		FieldAge:           "",
		FieldGender:        "",
		"unknown":          "",
	}
	for field, want := range tests {
		if got := r.Text(field); got != want {
			t.Errorf("Text(%q) = %q, want %q", field, got, want)
		}
	}
}
