// Package metricstest provides an in-memory metrics backend for tests.
package metricstest

import (
	"sync"
	"testing"

	"surveydash/internal/metrics"
)

// Sample is one recorded counter increment or observation.
type Sample struct {
	Name   string
	Value  float64
	Labels metrics.Labels
}

// Recorder is a metrics.Backend that keeps every call in memory.
type Recorder struct {
	mu           sync.Mutex
	counters     []Sample
	observations []Sample
	flushes      int
}

var _ metrics.Backend = (*Recorder)(nil)

// Install makes a new Recorder the global backend until t finishes.
func Install(t testing.TB) *Recorder {
	t.Helper()
	r := &Recorder{}
	prev := metrics.SetBackend(r)
	t.Cleanup(func() { metrics.SetBackend(prev) })
	return r
}

func (r *Recorder) IncCounter(name string, delta float64, labels metrics.Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counters = append(r.counters, Sample{name, delta, labels})
}

func (r *Recorder) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observations = append(r.observations, Sample{name, value, labels})
}

func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushes++
	return nil
}

// Counter sums the increments of name whose labels include match.
func (r *Recorder) Counter(name string, match metrics.Labels) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum float64
	for _, s := range r.counters {
		if s.Name == name && includes(s.Labels, match) {
			sum += s.Value
		}
	}
	return sum
}

// Observations returns the observations of name whose labels include match.
func (r *Recorder) Observations(name string, match metrics.Labels) []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Sample
	for _, s := range r.observations {
		if s.Name == name && includes(s.Labels, match) {
			out = append(out, s)
		}
	}
	return out
}

// Flushes reports how many times Flush was called.
func (r *Recorder) Flushes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flushes
}

func includes(have, want metrics.Labels) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}
