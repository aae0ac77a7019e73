package probe

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"surveydash/internal/datasource/file"
	csvparser "surveydash/internal/parser/csv"
	"surveydash/internal/survey"
)

const sampleCSV = `Age,Gender,Country,treatment,remote_work,tech_company,work_interfere
37,Female,United States,Yes,No,Yes,Often
44,M,United States,No,No,No,Rarely
32,Male,Canada,No,No,Yes,Rarely
31,male,United Kingdom,Yes,No,Yes,Often
-1726,Male,United States,No,Yes,Yes,Never
,female,,Yes,Yes,No,Sometimes
broken,row
`

func writeFile(t *testing.T, name, body string) *file.Local {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return file.NewLocal(p)
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		line string
		want rune
	}{
		{"a,b,c", ','},
		{"a;b;c", ';'},
		{"a\tb\tc", '\t'},
		{"a|b|c", '|'},
		{`"x;y;z",b,c`, ','},
		{"single", ','},
	}
	for _, tt := range tests {
		if got := DetectDelimiter([]byte(tt.line)); got != tt.want {
			t.Errorf("DetectDelimiter(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestSniff(t *testing.T) {
	src := writeFile(t, "survey.csv", sampleCSV)
	rep, err := Sniff(context.Background(), src, Options{})
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}

	if rep.Delimiter != "," || rep.Rows != 6 || rep.Skipped != 1 {
		t.Fatalf("delimiter=%q rows=%d skipped=%d", rep.Delimiter, rep.Rows, rep.Skipped)
	}
	if !rep.Ready() {
		t.Fatalf("missing fields: %v", rep.Missing)
	}

	types := map[string]string{}
	for _, c := range rep.Columns {
		types[c.Header] = c.Type
		if !c.Survey {
			t.Errorf("column %q not marked as a survey field", c.Header)
		}
	}
	wantTypes := map[string]string{
		"age":            "integer",
		"gender":         "text",
		"country":        "text",
		"treatment":      "boolean",
		"remote_work":    "boolean",
		"tech_company":   "boolean",
		"work_interfere": "text",
	}
	if diff := cmp.Diff(wantTypes, types); diff != "" {
		t.Errorf("types mismatch (-want +got):\n%s", diff)
	}

	wantGenders := map[survey.Gender]int{survey.Female: 2, survey.Male: 3, survey.Other: 1}
	if diff := cmp.Diff(wantGenders, rep.Genders); diff != "" {
		t.Errorf("genders mismatch (-want +got):\n%s", diff)
	}
	if got := rep.GenderNames(); !cmp.Equal(got, []survey.Gender{survey.Female, survey.Male, survey.Other}) {
		t.Errorf("GenderNames = %v", got)
	}
	if rep.AgeAbsent != 2 {
		t.Errorf("AgeAbsent = %d, want 2", rep.AgeAbsent)
	}
}

func TestSniff_SemicolonMissingFields(t *testing.T) {
	src := writeFile(t, "partial.csv", "Age;Gender;Country;Notes\n29;Non-binary;France;n/a\n")
	rep, err := Sniff(context.Background(), src, Options{})
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if rep.Delimiter != ";" {
		t.Errorf("Delimiter = %q, want ;", rep.Delimiter)
	}
	if rep.Ready() {
		t.Fatal("Ready() = true with missing fields")
	}
	want := []string{"treatment", "remote_work", "tech_company", "work_interfere"}
	if diff := cmp.Diff(want, rep.Missing); diff != "" {
		t.Errorf("Missing mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"age", "country", "gender"}, rep.SurveyColumns()); diff != "" {
		t.Errorf("SurveyColumns mismatch (-want +got):\n%s", diff)
	}
}

func TestSniff_LoaderParserOptions(t *testing.T) {
	body := "Wiek|Płeć|Kraj|Leczenie|Zdalnie|Firma|Wpływ\n" +
		"29|Kobieta|Polska|Yes|No|Yes|Often\n" +
		"41|Mężczyzna|Nowa\u00c2\u00a0Zelandia|No|Yes|No|Never\n"
	src := writeFile(t, "ankieta.csv", body)

	rep, err := Sniff(context.Background(), src, Options{Parser: csvparser.Options{
		Comma: '|',
		HeaderMap: map[string]string{
			"Wiek": "age", "Płeć": "gender", "Kraj": "country", "Leczenie": "treatment",
			"Zdalnie": "remote_work", "Firma": "tech_company", "Wpływ": "work_interfere",
		},
		Scrub: []csvparser.Replacement{csvparser.MojibakeNBSP},
	}})
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if rep.Delimiter != "|" || rep.Rows != 2 {
		t.Fatalf("delimiter=%q rows=%d", rep.Delimiter, rep.Rows)
	}
	if !rep.Ready() {
		t.Fatalf("mapped headers should cover every field, missing %v", rep.Missing)
	}
	if diff := cmp.Diff(survey.Fields(), rep.SurveyColumns(), cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("SurveyColumns mismatch (-want +got):\n%s", diff)
	}
	for _, c := range rep.Columns {
		if c.Filled != 2 {
			t.Errorf("column %q filled = %d, want 2", c.Header, c.Filled)
		}
	}
}

func TestSniff_MaxBytesCutsAtLine(t *testing.T) {
	src := writeFile(t, "survey.csv", sampleCSV)
	// Header (69 bytes with newline) plus the first data row and part of the second.
	rep, err := Sniff(context.Background(), src, Options{MaxBytes: 120})
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if rep.Rows != 1 || rep.Skipped != 0 {
		t.Fatalf("rows=%d skipped=%d, want 1/0", rep.Rows, rep.Skipped)
	}
	if rep.Bytes >= 120 {
		t.Errorf("Bytes = %d, want the sample cut at a newline", rep.Bytes)
	}
}

func TestSniff_Errors(t *testing.T) {
	if _, err := Sniff(context.Background(), writeFile(t, "empty.csv", "  \n"), Options{}); err == nil {
		t.Error("expected error for empty sample")
	}
	missing := file.NewLocal(filepath.Join(t.TempDir(), "missing.csv"))
	if _, err := Sniff(context.Background(), missing, Options{}); err == nil {
		t.Error("expected error for missing file")
	}
}
