// Package datadog ships survey metrics to a DogStatsD agent. Metric names
// map onto dotted Datadog names and labels become sorted "key:value" tags.
package datadog

import (
	"fmt"
	"math"
	"sort"

	"github.com/DataDog/datadog-go/v5/statsd"

	"surveydash/internal/metrics"
)

// Config holds Datadog backend configuration.
type Config struct {
	// Addr is the DogStatsD address, e.g. "127.0.0.1:8125" or
	// "unix:///var/run/datadog/dsd.socket".
	Addr string
	// Namespace prefixes every metric name, e.g. "surveydash.".
	Namespace string
	// Service is sent as the global "service" tag. A "job" label equal to
	// it is dropped from individual metrics.
	Service string
	// Source is the dataset location; metrics.SourceName of it is sent as
	// the global "source" tag.
	Source string
	// Tags are extra global tags such as "env:prod".
	Tags []string
}

// names maps metric names onto Datadog names. Unknown names pass through.
var names = map[string]string{
	metrics.StepTotal:           "survey.step.count",
	metrics.StepDurationSeconds: "survey.step.duration",
	metrics.RecordsTotal:        "survey.records",
	metrics.BatchesTotal:        "survey.export.batches",
}

// Backend is a metrics.Backend over a DogStatsD client.
type Backend struct {
	client  *statsd.Client
	service string
}

// NewBackend dials cfg.Addr. Addr is required.
func NewBackend(cfg Config) (*Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("datadog: Addr is required")
	}

	opts := []statsd.Option{statsd.WithTags(GlobalTags(cfg))}
	if cfg.Namespace != "" {
		opts = append(opts, statsd.WithNamespace(cfg.Namespace))
	}
	c, err := statsd.New(cfg.Addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("datadog: create client: %w", err)
	}
	return &Backend{client: c, service: cfg.Service}, nil
}

// GlobalTags returns the tags attached to every metric sent for cfg.
func GlobalTags(cfg Config) []string {
	var tags []string
	if cfg.Service != "" {
		tags = append(tags, "service:"+cfg.Service)
	}
	if src := metrics.SourceName(cfg.Source); src != "" {
		tags = append(tags, "source:"+src)
	}
	return append(tags, cfg.Tags...)
}

// IncCounter sends delta as a Count, rounded to a whole number.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Count(metricName(name), int64(math.Round(delta)), b.tags(labels), 1)
}

// ObserveHistogram sends value as a Distribution so percentiles aggregate
// across hosts.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if b.client == nil {
		return
	}
	_ = b.client.Distribution(metricName(name), value, b.tags(labels), 1)
}

// Flush sends buffered and aggregated metrics.
func (b *Backend) Flush() error {
	if b.client == nil {
		return nil
	}
	return b.client.Flush()
}

// Close flushes and releases the client.
func (b *Backend) Close() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

func metricName(name string) string {
	if n, ok := names[name]; ok {
		return n
	}
	return name
}

// tags converts labels to sorted tags, omitting a job that matches the
// global service tag.
func (b *Backend) tags(lbls metrics.Labels) []string {
	if len(lbls) == 0 {
		return nil
	}
	out := make([]string, 0, len(lbls))
	for k, v := range lbls {
		if k == "job" && v == b.service {
			continue
		}
		out = append(out, k+":"+v)
	}
	sort.Strings(out)
	return out
}
