// Package config defines the runtime configuration for surveydash.
//
// Values come from the process environment (optionally seeded from a .env
// file) and are later overridden by command-line flags in cmd/surveydash.
// ValidateConfig lints a decoded Config into a list of Issues so the CLI can
// report every problem at once instead of failing on the first.
//
// Example .env:
//
//	DATA_SOURCE=data/survey.csv
//	HTTP_ADDR=:8080
//	CSV_HEADER_MAP=Wiek:age,Płeć:gender
//	METRICS_BACKEND=pushgateway
//	PUSHGATEWAY_URL=http://localhost:9091
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config is the full runtime configuration.
type Config struct {
	// DataSource is a local CSV path or an http(s) URL.
	DataSource string `env:"DATA_SOURCE" envDefault:"data/survey.csv"`

	// HTTPAddr is the dashboard listen address.
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	// CSVDelimiter is a single-character field separator.
	CSVDelimiter string `env:"CSV_DELIMITER" envDefault:","`
	// CSVTrimSpace trims every cell. Off by default so values reach the
	// dashboard exactly as exported; age parsing trims on its own.
	CSVTrimSpace bool `env:"CSV_TRIM_SPACE" envDefault:"false"`
	// CSVScrubMojibake rewrites the "Â" + no-break-space sequence left by
	// Latin-1 round trips into a plain space before decoding.
	CSVScrubMojibake bool `env:"CSV_SCRUB_MOJIBAKE" envDefault:"false"`
	// CSVHeaderMap renames source headers onto canonical field names,
	// e.g. "Wiek:age,Płeć:gender".
	CSVHeaderMap map[string]string `env:"CSV_HEADER_MAP"`

	// LoadTimeout bounds one read of the data source.
	LoadTimeout time.Duration `env:"LOAD_TIMEOUT" envDefault:"2m"`

	// HTTPTimeout and HTTPMaxRetries apply when DataSource is a URL.
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	HTTPMaxRetries int           `env:"HTTP_MAX_RETRIES" envDefault:"3"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// MetricsBackend is one of none, pushgateway, datadog.
	MetricsBackend string `env:"METRICS_BACKEND" envDefault:"none"`
	PushgatewayURL string `env:"PUSHGATEWAY_URL" envDefault:"http://localhost:9091"`
	DatadogAddr    string `env:"DATADOG_ADDR" envDefault:"127.0.0.1:8125"`
	MetricsJob     string `env:"METRICS_JOB" envDefault:"surveydash"`

	// TopCountries bounds the country breakdown.
	TopCountries int `env:"TOP_COUNTRIES" envDefault:"10"`
}

// Load reads an optional .env file from the working directory and then
// decodes Config from the process environment. A missing .env is not an
// error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// LoadFrom decodes Config from an explicit environment map, ignoring the
// process environment. Tests use it to stay hermetic.
func LoadFrom(environ map[string]string) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// Delimiter returns the first rune of CSVDelimiter, or ',' when empty.
func (c Config) Delimiter() rune {
	for _, r := range c.CSVDelimiter {
		return r
	}
	return ','
}
