// Package aggregate computes the dashboard statistics over a slice of
// normalized responses: summary rates and the four chart breakdowns. Every
// function is pure and deterministic, and an empty input yields zero
// percentages rather than NaN.
package aggregate

import (
	"math"

	"surveydash/internal/survey"
)

// Predicate selects rows for a binary rate.
type Predicate func(survey.Response) bool

// Rate returns the percentage of rows satisfying pred, rounded to one
// decimal place. It is 0 when rows is empty.
func Rate(rows []survey.Response, pred Predicate) float64 {
	if len(rows) == 0 {
		return 0
	}
	n := 0
	for _, r := range rows {
		if pred(r) {
			n++
		}
	}
	return percent(n, len(rows))
}

// TreatmentRate is the share of respondents whose treatment answer is "yes"
// (case-insensitive).
func TreatmentRate(rows []survey.Response) float64 {
	return Rate(rows, survey.Response.SoughtTreatment)
}

// InterferenceRate is the share of respondents reporting that their mental
// health often interferes with work.
func InterferenceRate(rows []survey.Response) float64 {
	return Rate(rows, survey.Response.InterferesOften)
}

// Summary holds the headline metrics for a subset.
type Summary struct {
	Respondents      int     `json:"respondents" yaml:"respondents"`
	TreatmentRate    float64 `json:"treatment_rate" yaml:"treatment_rate"`
	InterferenceRate float64 `json:"interference_rate" yaml:"interference_rate"`
}

// Summarize computes Summary for rows.
func Summarize(rows []survey.Response) Summary {
	return Summary{
		Respondents:      len(rows),
		TreatmentRate:    TreatmentRate(rows),
		InterferenceRate: InterferenceRate(rows),
	}
}

// percent returns n/total*100 rounded to one decimal, or 0 when total is 0.
func percent(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round1(float64(n) / float64(total) * 100)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
