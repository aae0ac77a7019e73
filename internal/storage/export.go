package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"surveydash/internal/metrics"
	"surveydash/internal/survey"
)

// DefaultBatchSize is used when ExportOptions.BatchSize is zero.
const DefaultBatchSize = 500

// ExportOptions controls Export.
type ExportOptions struct {
	// Kind selects the DDL dialect; it must match the Repository backend.
	Kind      string
	Table     string
	LoadID    string
	BatchSize int
	// CreateTable issues the snapshot DDL before inserting.
	CreateTable bool
	Job         string
	Logger      *zap.Logger
}

// Export writes responses to repo as one snapshot and returns the number of
// rows inserted.
func Export(ctx context.Context, repo Repository, opts ExportOptions, responses []survey.Response) (n int64, err error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Job == "" {
		opts.Job = "surveydash"
	}
	if opts.LoadID == "" {
		return 0, fmt.Errorf("storage: export requires a load id")
	}
	log := opts.Logger.With(zap.String("kind", opts.Kind), zap.String("table", opts.Table), zap.String("load_id", opts.LoadID))

	start := time.Now()
	var batches int64
	defer func() {
		metrics.RecordStep(opts.Job, "export", err, time.Since(start))
		metrics.RecordRow(opts.Job, "inserted", n)
		metrics.RecordBatches(opts.Job, batches)
	}()

	if opts.CreateTable {
		if err := EnsureTable(ctx, opts.Kind, repo, opts.Table); err != nil {
			return 0, err
		}
	} else if !ValidTable(opts.Table) {
		return 0, fmt.Errorf("storage: invalid table name %q", opts.Table)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	in := make(chan []any, opts.BatchSize)
	go func() {
		defer close(in)
		for i, r := range responses {
			select {
			case in <- Row(opts.LoadID, i+1, r):
			case <-ctx.Done():
				return
			}
		}
	}()

	copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
		batches++
		return repo.CopyFrom(ctx, columns, rows)
	}
	n, err = LoadBatches(ctx, log, Columns(), in, opts.BatchSize, copyFn)
	if err != nil {
		return n, fmt.Errorf("export %s: %w", opts.Table, err)
	}
	log.Info("snapshot exported", zap.Int64("rows", n), zap.Int64("batches", batches))
	return n, nil
}
