// Package metrics records operational metrics for dataset loads, queries
// and exports behind a small backend-agnostic interface.
//
// The global backend defaults to a no-op so instrumented code never needs to
// check whether metrics are configured. Concrete systems (Prometheus
// Pushgateway, DogStatsD) live in subpackages.
package metrics

import (
	"net/url"
	"path/filepath"
	"sync"
	"time"
)

// Metric names shared by all backends.
const (
	StepTotal           = "survey_step_total"
	StepDurationSeconds = "survey_step_duration_seconds"
	RecordsTotal        = "survey_records_total"
	BatchesTotal        = "survey_batches_total"
)

// SourceName shortens a dataset location for use as a label or grouping
// value: the host of a URL or the base name of a file path.
func SourceName(loc string) string {
	if loc == "" {
		return ""
	}
	if u, err := url.Parse(loc); err == nil && u.Host != "" {
		return u.Host
	}
	return filepath.Base(loc)
}

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// SetBackend installs b and returns the backend it replaced. Passing nil
// keeps the existing backend.
func SetBackend(b Backend) (prev Backend) {
	mu.Lock()
	defer mu.Unlock()
	prev = backend
	if b != nil {
		backend = b
	}
	return prev
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep counts one execution of step and observes its latency.
// Steps used by the dashboard are "load", "query" and "export".
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRow increments a record-level counter for the given job and kind.
//
// Kinds in use:
//   - "loaded"
//   - "skipped"
//   - "inserted"
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments the export batch counter for the given job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(BatchesTotal, float64(delta), Labels{
		"job": job,
	})
}
