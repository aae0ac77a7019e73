package aggregate

import (
	"sort"
	"strings"

	"surveydash/internal/survey"
)

// AgeBin is a closed age interval.
type AgeBin struct {
	Label    string
	Min, Max int
}

// AgeBins are the fixed buckets of the age chart. The open-ended bucket is
// capped at 100 so obviously bogus ages do not land in it.
var AgeBins = []AgeBin{
	{Label: "18-25", Min: 18, Max: 25},
	{Label: "26-35", Min: 26, Max: 35},
	{Label: "36-45", Min: 36, Max: 45},
	{Label: "46-55", Min: 46, Max: 55},
	{Label: "56+", Min: 56, Max: 100},
}

// AgeBucket is one non-empty age bin with treatment percentages of its total.
type AgeBucket struct {
	Label        string  `json:"label" yaml:"label"`
	TreatmentYes float64 `json:"treatment_yes" yaml:"treatment_yes"`
	TreatmentNo  float64 `json:"treatment_no" yaml:"treatment_no"`
	Total        int     `json:"total" yaml:"total"`
}

// ByAge partitions rows into AgeBins. Rows without an age, or outside every
// bin, are ignored. Empty bins are omitted.
func ByAge(rows []survey.Response) []AgeBucket {
	type tally struct{ yes, no, total int }
	counts := make([]tally, len(AgeBins))
	for _, r := range rows {
		age, ok := r.AgeValue()
		if !ok {
			continue
		}
		for i, b := range AgeBins {
			if age >= b.Min && age <= b.Max {
				counts[i].total++
				if r.SoughtTreatment() {
					counts[i].yes++
				} else if r.DeclinedTreatment() {
					counts[i].no++
				}
				break
			}
		}
	}

	out := make([]AgeBucket, 0, len(AgeBins))
	for i, b := range AgeBins {
		c := counts[i]
		if c.total == 0 {
			continue
		}
		out = append(out, AgeBucket{
			Label:        b.Label,
			TreatmentYes: percent(c.yes, c.total),
			TreatmentNo:  percent(c.no, c.total),
			Total:        c.total,
		})
	}
	return out
}

// GenderCount holds treatment counts for one gender category.
type GenderCount struct {
	Gender       survey.Gender `json:"gender" yaml:"gender"`
	TreatmentYes int           `json:"treatment_yes" yaml:"treatment_yes"`
	TreatmentNo  int           `json:"treatment_no" yaml:"treatment_no"`
	Total        int           `json:"total" yaml:"total"`
	YesPercent   float64       `json:"yes_percent" yaml:"yes_percent"`
	NoPercent    float64       `json:"no_percent" yaml:"no_percent"`
}

// ByGender groups rows by gender in first-encountered order.
func ByGender(rows []survey.Response) []GenderCount {
	idx := map[survey.Gender]int{}
	var out []GenderCount
	for _, r := range rows {
		i, ok := idx[r.Gender]
		if !ok {
			i = len(out)
			idx[r.Gender] = i
			out = append(out, GenderCount{Gender: r.Gender})
		}
		g := &out[i]
		g.Total++
		if r.SoughtTreatment() {
			g.TreatmentYes++
		} else if r.DeclinedTreatment() {
			g.TreatmentNo++
		}
	}
	for i := range out {
		out[i].YesPercent = percent(out[i].TreatmentYes, out[i].Total)
		out[i].NoPercent = percent(out[i].TreatmentNo, out[i].Total)
	}
	return out
}

// CountryCount is one entry of the country ranking.
type CountryCount struct {
	Country string `json:"country" yaml:"country"`
	Count   int    `json:"count" yaml:"count"`
	// Share is Count as a percentage of all rows considered.
	Share float64 `json:"share" yaml:"share"`
}

// TopCountries ranks countries by respondent count, descending. Ties keep
// first-encountered order. Rows with a blank country are counted in the
// share denominator but never ranked. n <= 0 returns every country.
func TopCountries(rows []survey.Response, n int) []CountryCount {
	idx := map[string]int{}
	var out []CountryCount
	for _, r := range rows {
		c := r.Country
		if strings.TrimSpace(c) == "" {
			continue
		}
		i, ok := idx[c]
		if !ok {
			i = len(out)
			idx[c] = i
			out = append(out, CountryCount{Country: c})
		}
		out[i].Count++
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].Share = percent(out[i].Count, len(rows))
	}
	return out
}

// Work-location categories of the remote-work cross-tab.
const (
	Remote = "Remote"
	Office = "Office"
)

// RemoteSplit is one row of the remote-work × treatment cross-tab.
type RemoteSplit struct {
	Category     string  `json:"category" yaml:"category"`
	TreatmentYes int     `json:"treatment_yes" yaml:"treatment_yes"`
	TreatmentNo  int     `json:"treatment_no" yaml:"treatment_no"`
	Total        int     `json:"total" yaml:"total"`
	YesPercent   float64 `json:"yes_percent" yaml:"yes_percent"`
	NoPercent    float64 `json:"no_percent" yaml:"no_percent"`
}

// ByRemoteWork cross-tabulates work location against treatment. A
// remote_work answer of "Yes" counts as Remote and "No" as Office; the
// category total is its yes plus no treatment answers. Both categories are
// always present, with 0% when empty.
func ByRemoteWork(rows []survey.Response) []RemoteSplit {
	out := []RemoteSplit{{Category: Remote}, {Category: Office}}
	for _, r := range rows {
		var s *RemoteSplit
		switch strings.ToLower(strings.TrimSpace(r.RemoteWork)) {
		case "yes":
			s = &out[0]
		case "no":
			s = &out[1]
		default:
			continue
		}
		if r.SoughtTreatment() {
			s.TreatmentYes++
		} else if r.DeclinedTreatment() {
			s.TreatmentNo++
		}
	}
	for i := range out {
		s := &out[i]
		s.Total = s.TreatmentYes + s.TreatmentNo
		s.YesPercent = percent(s.TreatmentYes, s.Total)
		s.NoPercent = percent(s.TreatmentNo, s.Total)
	}
	return out
}
