package aggregate

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"surveydash/internal/survey"
)

func resp(age int, treatment string) survey.Response {
	return survey.Response{Age: age, Treatment: treatment}
}

func TestRate_EmptyIsZero(t *testing.T) {
	got := Rate(nil, func(survey.Response) bool { return true })
	if got != 0 || math.IsNaN(got) {
		t.Fatalf("Rate(empty) = %v, want 0", got)
	}
	if s := Summarize(nil); s != (Summary{}) {
		t.Fatalf("Summarize(empty) = %+v", s)
	}
}

func TestRate_RoundsToOneDecimal(t *testing.T) {
	rows := []survey.Response{resp(1, "Yes"), resp(1, "No"), resp(1, "No")}
	if got := TreatmentRate(rows); got != 33.3 {
		t.Fatalf("TreatmentRate = %v, want 33.3", got)
	}
	rows = append(rows, resp(1, "yes"), resp(1, "YES"), resp(1, "No"))
	if got := TreatmentRate(rows); got != 50 {
		t.Fatalf("TreatmentRate = %v, want 50", got)
	}
	two := []survey.Response{resp(1, "Yes"), resp(1, "Yes"), resp(1, "No")}
	if got := TreatmentRate(two); got != 66.7 {
		t.Fatalf("TreatmentRate = %v, want 66.7", got)
	}
}

func TestSummarize_Interference(t *testing.T) {
	rows := []survey.Response{
		{Treatment: "Yes", WorkInterfere: "Often"},
		{Treatment: "No", WorkInterfere: "often"},
		{Treatment: "No", WorkInterfere: "Sometimes"},
		{Treatment: "No", WorkInterfere: ""},
	}
	want := Summary{Respondents: 4, TreatmentRate: 25, InterferenceRate: 50}
	if got := Summarize(rows); got != want {
		t.Fatalf("Summarize = %+v, want %+v", got, want)
	}
}

func TestByAge_SpecExample(t *testing.T) {
	rows := []survey.Response{resp(22, "Yes"), resp(40, "No")}
	want := []AgeBucket{
		{Label: "18-25", TreatmentYes: 100, TreatmentNo: 0, Total: 1},
		{Label: "36-45", TreatmentYes: 0, TreatmentNo: 100, Total: 1},
	}
	if diff := cmp.Diff(want, ByAge(rows)); diff != "" {
		t.Fatalf("ByAge mismatch (-want +got):\n%s", diff)
	}
}

func TestByAge_BoundsAndOmissions(t *testing.T) {
	rows := []survey.Response{
		resp(0, "Yes"),    // absent
		resp(17, "Yes"),   // below first bin
		resp(18, "Yes"),   // 18-25
		resp(25, "Maybe"), // 18-25, neither yes nor no
		resp(26, "No"),    // 26-35
		resp(56, "Yes"),   // 56+
		resp(100, "No"),   // 56+
		resp(101, "Yes"),  // beyond cap
	}
	got := ByAge(rows)
	want := []AgeBucket{
		{Label: "18-25", TreatmentYes: 50, TreatmentNo: 0, Total: 2},
		{Label: "26-35", TreatmentYes: 0, TreatmentNo: 100, Total: 1},
		{Label: "56+", TreatmentYes: 50, TreatmentNo: 50, Total: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ByAge mismatch (-want +got):\n%s", diff)
	}
	if len(ByAge(nil)) != 0 {
		t.Fatal("empty input should yield no buckets")
	}
}

func TestByGender_FirstEncounteredOrder(t *testing.T) {
	rows := []survey.Response{
		{Gender: survey.Male, Treatment: "No"},
		{Gender: survey.Female, Treatment: "Yes"},
		{Gender: survey.Male, Treatment: "Yes"},
		{Gender: survey.Other, Treatment: "Don't know"},
		{Gender: survey.Male, Treatment: "no"},
	}
	want := []GenderCount{
		{Gender: survey.Male, TreatmentYes: 1, TreatmentNo: 2, Total: 3, YesPercent: 33.3, NoPercent: 66.7},
		{Gender: survey.Female, TreatmentYes: 1, TreatmentNo: 0, Total: 1, YesPercent: 100, NoPercent: 0},
		{Gender: survey.Other, TreatmentYes: 0, TreatmentNo: 0, Total: 1, YesPercent: 0, NoPercent: 0},
	}
	if diff := cmp.Diff(want, ByGender(rows)); diff != "" {
		t.Fatalf("ByGender mismatch (-want +got):\n%s", diff)
	}
}

func TestTopCountries_LimitSortAndTies(t *testing.T) {
	var rows []survey.Response
	add := func(country string, n int) {
		for i := 0; i < n; i++ {
			rows = append(rows, survey.Response{Country: country})
		}
	}
	// Twelve countries; C03 and C04 tie and must keep encounter order.
	add("C01", 1)
	add("C02", 2)
	add("C03", 5)
	add("C04", 5)
	for i := 5; i <= 12; i++ {
		add(fmt.Sprintf("C%02d", i), 3)
	}
	add("", 4)
	add("C01", 9)

	got := TopCountries(rows, 10)
	if len(got) != 10 {
		t.Fatalf("len = %d, want 10", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Count > got[i-1].Count {
			t.Fatalf("not descending at %d: %+v", i, got)
		}
	}
	if got[0].Country != "C01" || got[0].Count != 10 {
		t.Fatalf("top = %+v, want C01/10", got[0])
	}
	if got[1].Country != "C03" || got[2].Country != "C04" {
		t.Fatalf("tie order broken: %+v", got[1:3])
	}
	if got[3].Country != "C05" {
		t.Fatalf("3-count ties should start at C05, got %+v", got[3])
	}
	for _, c := range got {
		if c.Country == "" {
			t.Fatal("blank country must not be ranked")
		}
	}
	total := len(rows)
	if want := math.Round(float64(10)/float64(total)*1000) / 10; got[0].Share != want {
		t.Fatalf("share = %v, want %v", got[0].Share, want)
	}

	if all := TopCountries(rows, 0); len(all) != 12 {
		t.Fatalf("n<=0 should return all 12, got %d", len(all))
	}
}

func TestByRemoteWork(t *testing.T) {
	rows := []survey.Response{
		{RemoteWork: "Yes", Treatment: "Yes"},
		{RemoteWork: "Yes", Treatment: "Yes"},
		{RemoteWork: "Yes", Treatment: "No"},
		{RemoteWork: "Yes", Treatment: "Maybe"},
		{RemoteWork: "", Treatment: "Yes"},
	}
	want := []RemoteSplit{
		{Category: Remote, TreatmentYes: 2, TreatmentNo: 1, Total: 3, YesPercent: 66.7, NoPercent: 33.3},
		{Category: Office},
	}
	if diff := cmp.Diff(want, ByRemoteWork(rows)); diff != "" {
		t.Fatalf("ByRemoteWork mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	rows := []survey.Response{
		{Age: 22, Gender: survey.Female, Country: "US", Treatment: "Yes", RemoteWork: "No"},
		{Age: 40, Gender: survey.Male, Country: "US", Treatment: "No", RemoteWork: "Yes"},
		{Age: 33, Gender: survey.NonBinary, Country: "DE", Treatment: "Yes", RemoteWork: "Yes"},
		{Age: 35, Gender: survey.Male, Country: "UK", Treatment: "No", RemoteWork: "No"},
	}
	first := Build(rows, 0)
	for i := 0; i < 20; i++ {
		if diff := cmp.Diff(first, Build(rows, 0)); diff != "" {
			t.Fatalf("run %d differs:\n%s", i, diff)
		}
	}
	if first.Summary.TreatmentRate != 50 || len(first.Countries) != 3 || len(first.Remote) != 2 {
		t.Fatalf("unexpected report: %+v", first)
	}
}
