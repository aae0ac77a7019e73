package config

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"surveydash/internal/survey"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a problem worth surfacing that does not block
	// execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path names the offending setting by its environment key (e.g. "DATA_SOURCE")
// or, for filter criteria, by its query parameter.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidateConfig performs static validation of a Config. It does not mutate
// the value; callers decide whether warnings are fatal.
func ValidateConfig(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.DataSource) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "DATA_SOURCE",
			Message:  "data source must not be empty",
		})
	}
	if n := utf8.RuneCountInString(c.CSVDelimiter); n != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "CSV_DELIMITER",
			Message:  fmt.Sprintf("delimiter must be exactly one character, got %d", n),
		})
	}
	if c.HTTPMaxRetries < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "HTTP_MAX_RETRIES",
			Message:  "retries must be >= 0",
		})
	}
	if c.LoadTimeout < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "LOAD_TIMEOUT",
			Message:  "load timeout must be >= 0",
		})
	}
	if c.TopCountries <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "TOP_COUNTRIES",
			Message:  "top countries must be > 0",
		})
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "LOG_LEVEL",
			Message:  fmt.Sprintf("unknown log level %q; info will be used", c.LogLevel),
		})
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "LOG_FORMAT",
			Message:  fmt.Sprintf("unknown log format %q; json will be used", c.LogFormat),
		})
	}

	issues = append(issues, validateHeaderMap(c.CSVHeaderMap)...)
	issues = append(issues, validateMetrics(c)...)
	return issues
}

// validateHeaderMap warns about renames onto names the dashboard never
// reads; such columns load but are ignored.
func validateHeaderMap(m map[string]string) []Issue {
	var issues []Issue
	fields := survey.Fields()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if to := m[k]; !slices.Contains(fields, to) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "CSV_HEADER_MAP",
				Message:  fmt.Sprintf("%q maps to %q, which is not one of %s", k, to, strings.Join(fields, ", ")),
			})
		}
	}
	return issues
}

func validateMetrics(c Config) []Issue {
	var issues []Issue
	switch strings.ToLower(c.MetricsBackend) {
	case "", "none":
	case "pushgateway":
		if strings.TrimSpace(c.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "PUSHGATEWAY_URL",
				Message:  "pushgateway backend requires a URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(c.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "DATADOG_ADDR",
				Message:  "datadog backend requires a DogStatsD address",
			})
		}
	default:
		// Unknown backends fall back to nop at runtime.
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "METRICS_BACKEND",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", c.MetricsBackend),
		})
	}
	return issues
}
