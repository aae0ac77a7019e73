package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"surveydash/internal/config"
	"surveydash/internal/dataset"
	"surveydash/internal/datasource"
	"surveydash/internal/datasource/httpds"
	"surveydash/internal/metrics"
	"surveydash/internal/metrics/datadog"
	"surveydash/internal/metrics/prompush"
	csvparser "surveydash/internal/parser/csv"
)

// setupMetrics installs the configured backend and returns a flush func.
// Backend init failures degrade to the nop backend.
func setupMetrics(cfg *config.Config, log *zap.Logger) (flush func()) {
	flush = func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush", zap.Error(err))
		}
	}

	switch strings.ToLower(cfg.MetricsBackend) {
	case "pushgateway":
		b, err := prompush.NewBackend(prompush.Config{URL: cfg.PushgatewayURL, Job: cfg.MetricsJob, Source: cfg.DataSource})
		if err != nil {
			log.Warn("metrics: prometheus push backend unavailable; using nop", zap.Error(err))
			return flush
		}
		metrics.SetBackend(b)
		log.Info("metrics enabled", zap.String("backend", "pushgateway"), zap.String("url", cfg.PushgatewayURL))
	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:      cfg.DatadogAddr,
			Namespace: cfg.MetricsJob + ".",
			Service:   cfg.MetricsJob,
			Source:    cfg.DataSource,
		})
		if err != nil {
			log.Warn("metrics: datadog backend unavailable; using nop", zap.Error(err))
			return flush
		}
		metrics.SetBackend(b)
		flush = func() {
			if err := b.Close(); err != nil {
				log.Warn("metrics close", zap.Error(err))
			}
		}
		log.Info("metrics enabled", zap.String("backend", "datadog"), zap.String("addr", cfg.DatadogAddr))
	case "", "none":
		log.Debug("metrics disabled")
	default:
		log.Warn("metrics: unknown backend; metrics disabled", zap.String("backend", cfg.MetricsBackend))
	}
	return flush
}

// csvOptions maps the CSV_* settings onto parser options.
func csvOptions(cfg *config.Config, log *zap.Logger) csvparser.Options {
	opt := csvparser.Options{
		Comma:     cfg.Delimiter(),
		TrimSpace: cfg.CSVTrimSpace,
		HeaderMap: cfg.CSVHeaderMap,
		Logger:    log,
	}
	if cfg.CSVScrubMojibake {
		opt.Scrub = append(opt.Scrub, csvparser.MojibakeNBSP)
	}
	return opt
}

// newStore builds the dataset store for cfg without loading it.
func newStore(cfg *config.Config, log *zap.Logger) *dataset.Store {
	hc := httpds.NewClient(httpds.Config{
		Timeout:    cfg.HTTPTimeout,
		MaxRetries: cfg.HTTPMaxRetries,
	})
	return dataset.NewStore(dataset.Options{
		Source:       datasource.FromLocation(cfg.DataSource, hc),
		Parser:       csvOptions(cfg, log),
		LoadTimeout:  cfg.LoadTimeout,
		TopCountries: cfg.TopCountries,
		Job:          cfg.MetricsJob,
		Logger:       log,
	})
}

// checkConfig logs every issue and fails on errors.
func checkConfig(cfg *config.Config, log *zap.Logger) error {
	issues := config.ValidateConfig(*cfg)
	for _, iss := range issues {
		log.Warn("config issue",
			zap.String("severity", string(iss.Severity)),
			zap.String("path", iss.Path),
			zap.String("message", iss.Message))
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("invalid configuration (%d issues)", len(issues))
	}
	return nil
}

// loadDataset validates cfg and performs the initial load.
func loadDataset(ctx context.Context, cfg *config.Config, log *zap.Logger) (*dataset.Store, *dataset.Dataset, error) {
	if err := checkConfig(cfg, log); err != nil {
		return nil, nil, err
	}
	store := newStore(cfg, log)
	ds, err := store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return store, ds, nil
}
