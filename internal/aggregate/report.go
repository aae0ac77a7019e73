package aggregate

import "surveydash/internal/survey"

// DefaultTopCountries is the size of the dashboard country ranking.
const DefaultTopCountries = 10

// Report bundles every result shape the dashboard renders.
type Report struct {
	Summary   Summary        `json:"summary" yaml:"summary"`
	Age       []AgeBucket    `json:"age" yaml:"age"`
	Gender    []GenderCount  `json:"gender" yaml:"gender"`
	Countries []CountryCount `json:"countries" yaml:"countries"`
	Remote    []RemoteSplit  `json:"remote" yaml:"remote"`
}

// Build computes a full Report. topCountries <= 0 selects
// DefaultTopCountries.
func Build(rows []survey.Response, topCountries int) Report {
	if topCountries <= 0 {
		topCountries = DefaultTopCountries
	}
	return Report{
		Summary:   Summarize(rows),
		Age:       ByAge(rows),
		Gender:    ByGender(rows),
		Countries: TopCountries(rows, topCountries),
		Remote:    ByRemoteWork(rows),
	}
}
