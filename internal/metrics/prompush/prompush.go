// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// The dashboard is a mix of a long-running server and short CLI runs
// (summary, export, charts), so metrics are pushed to a Pushgateway on Flush
// rather than scraped.
package prompush

import (
	"fmt"

	"surveydash/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Config selects the Pushgateway and the group pushed to.
type Config struct {
	// URL is the Pushgateway base URL, e.g. http://pushgateway:9091.
	URL string
	// Job is the "job" grouping key; defaults to "surveydash".
	Job string
	// Source is the dataset location. When set, metrics.SourceName of it
	// is added as a "source" grouping key so runs against different
	// datasets keep separate groups.
	Source string
}

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	source     string
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // survey_step_total
	stepDuration *prometheus.SummaryVec // survey_step_duration_seconds

	recordCounter *prometheus.CounterVec // survey_records_total
	batchCounter  prometheus.Counter     // survey_batches_total
}

// NewBackend registers the survey collectors on a private registry.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if cfg.Job == "" {
		cfg.Job = "surveydash"
	}

	reg := prometheus.NewRegistry()

	// job is carried by the Pushgateway grouping key, not as a label.
	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Dataset load, query and export executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.StepDurationSeconds,
			Help:       "Duration of dashboard steps in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	recordCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RecordsTotal,
			Help: "Survey rows per kind (loaded, skipped, inserted).",
		},
		[]string{"kind"},
	)
	batchCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: metrics.BatchesTotal,
			Help: "Export batches flushed to storage.",
		},
	)

	for what, c := range map[string]prometheus.Collector{
		"step counter":   stepCounter,
		"step summary":   stepDuration,
		"record counter": recordCounter,
		"batch counter":  batchCounter,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", what, err)
		}
	}

	return &Backend{
		gatewayURL:    cfg.URL,
		jobName:       cfg.Job,
		source:        metrics.SourceName(cfg.Source),
		reg:           reg,
		stepCounter:   stepCounter,
		stepDuration:  stepDuration,
		recordCounter: recordCounter,
		batchCounter:  batchCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter == nil {
			return
		}
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)

	case metrics.RecordsTotal:
		if b.recordCounter == nil {
			return
		}
		b.recordCounter.WithLabelValues(labels["kind"]).Add(delta)

	case metrics.BatchesTotal:
		if b.batchCounter == nil {
			return
		}
		b.batchCounter.Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != metrics.StepDurationSeconds || b.stepDuration == nil {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush replaces the backend's group on the Pushgateway with the current
// registry.
func (b *Backend) Flush() error {
	p := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg)
	if b.source != "" {
		p = p.Grouping("source", b.source)
	}
	return p.Push()
}
