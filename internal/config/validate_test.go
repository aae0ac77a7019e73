package config

import (
	"strings"
	"testing"
	"time"
)

// hasIssue reports whether issues contains an Issue with the given severity,
// path, and a Message containing msgSubstr.
func hasIssue(t *testing.T, issues []Issue, sev IssueSeverity, path, msgSubstr string) bool {
	t.Helper()
	for _, iss := range issues {
		if iss.Severity == sev && iss.Path == path && strings.Contains(iss.Message, msgSubstr) {
			return true
		}
	}
	return false
}

func validConfig() Config {
	return Config{
		DataSource:     "data/survey.csv",
		HTTPAddr:       ":8080",
		CSVDelimiter:   ",",
		HTTPMaxRetries: 3,
		LogLevel:       "info",
		LogFormat:      "json",
		MetricsBackend: "none",
		TopCountries:   10,
	}
}

/*
TestValidateConfig_ValidMinimal verifies that a well-formed config produces
no issues (errors or warnings).
*/
func TestValidateConfig_ValidMinimal(t *testing.T) {
	if issues := ValidateConfig(validConfig()); len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestValidateConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
		msg    string
	}{
		{"empty_source", func(c *Config) { c.DataSource = "  " }, "DATA_SOURCE", "must not be empty"},
		{"long_delimiter", func(c *Config) { c.CSVDelimiter = ";;" }, "CSV_DELIMITER", "exactly one character"},
		{"empty_delimiter", func(c *Config) { c.CSVDelimiter = "" }, "CSV_DELIMITER", "got 0"},
		{"negative_retries", func(c *Config) { c.HTTPMaxRetries = -1 }, "HTTP_MAX_RETRIES", ">= 0"},
		{"zero_top", func(c *Config) { c.TopCountries = 0 }, "TOP_COUNTRIES", "> 0"},
		{"negative_load_timeout", func(c *Config) { c.LoadTimeout = -time.Second }, "LOAD_TIMEOUT", ">= 0"},
		{"pushgateway_no_url", func(c *Config) {
			c.MetricsBackend = "pushgateway"
			c.PushgatewayURL = ""
		}, "PUSHGATEWAY_URL", "requires a URL"},
		{"datadog_no_addr", func(c *Config) {
			c.MetricsBackend = "datadog"
			c.DatadogAddr = ""
		}, "DATADOG_ADDR", "DogStatsD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			issues := ValidateConfig(c)
			if !hasIssue(t, issues, SeverityError, tt.path, tt.msg) {
				t.Fatalf("expected error at %s containing %q; got %+v", tt.path, tt.msg, issues)
			}
			if !HasErrors(issues) {
				t.Fatal("HasErrors should be true")
			}
		})
	}
}

func TestValidateConfig_Warnings(t *testing.T) {
	c := validConfig()
	c.LogLevel = "verbose"
	c.LogFormat = "xml"
	c.MetricsBackend = "graphite"

	issues := ValidateConfig(c)
	for _, path := range []string{"LOG_LEVEL", "LOG_FORMAT", "METRICS_BACKEND"} {
		if !hasIssue(t, issues, SeverityWarning, path, "") {
			t.Fatalf("expected warning at %s; got %+v", path, issues)
		}
	}
	if HasErrors(issues) {
		t.Fatalf("warnings only expected, got %+v", issues)
	}
}

func TestValidateConfig_HeaderMap(t *testing.T) {
	c := validConfig()
	c.CSVHeaderMap = map[string]string{"Wiek": "age", "Kraj": "kraj"}

	issues := ValidateConfig(c)
	if !hasIssue(t, issues, SeverityWarning, "CSV_HEADER_MAP", `"Kraj" maps to "kraj"`) {
		t.Fatalf("expected warning for unknown target; got %+v", issues)
	}
	if hasIssue(t, issues, SeverityWarning, "CSV_HEADER_MAP", `"Wiek"`) {
		t.Fatalf("known target should not warn; got %+v", issues)
	}
	if HasErrors(issues) {
		t.Fatalf("warnings only expected, got %+v", issues)
	}
}

func TestIssue_Error(t *testing.T) {
	iss := Issue{Severity: SeverityError, Path: "DATA_SOURCE", Message: "boom"}
	if got, want := iss.Error(), "error at DATA_SOURCE: boom"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}
