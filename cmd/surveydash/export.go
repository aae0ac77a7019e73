package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surveydash/internal/storage"

	// register all backends with the storage factory.
	_ "surveydash/internal/storage/all"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		ff          filterFlags
		scfg        storage.Config
		batchSize   int
		createTable bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the normalized responses to a SQL table",
		Long: fmt.Sprintf("Write the normalized (optionally filtered) responses to a SQL table.\n"+
			"Each run is tagged with a fresh load_id. Supported kinds: %v.", storage.ListKinds()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			crit, err := ff.criteria()
			if err != nil {
				return err
			}
			if scfg.DSN == "" {
				return fmt.Errorf("--dsn is required")
			}
			ctx := cmd.Context()
			flush := setupMetrics(a.cfg, a.log)
			defer flush()

			store, ds, err := loadDataset(ctx, a.cfg, a.log)
			if err != nil {
				return err
			}
			rows := ds.Responses
			if crit.Active() {
				v, err := store.Query(crit)
				if err != nil {
					return err
				}
				rows = v.Rows
			}

			repo, err := storage.New(ctx, scfg)
			if err != nil {
				return err
			}
			defer repo.Close()

			loadID := uuid.NewString()
			n, err := storage.Export(ctx, repo, storage.ExportOptions{
				Kind:        scfg.Kind,
				Table:       scfg.Table,
				LoadID:      loadID,
				BatchSize:   batchSize,
				CreateTable: createTable,
				Job:         a.cfg.MetricsJob,
				Logger:      a.log,
			}, rows)
			if err != nil {
				return err
			}
			a.log.Info("export complete",
				zap.String("kind", scfg.Kind),
				zap.String("table", scfg.Table),
				zap.String("load_id", loadID),
				zap.Int64("rows", n))
			fmt.Fprintf(a.out, "exported %s rows to %s (load_id=%s)\n", humanize.Comma(n), scfg.Table, loadID)
			return nil
		},
	}
	ff.bind(cmd)
	fl := cmd.Flags()
	fl.StringVar(&scfg.Kind, "kind", "sqlite", "storage backend")
	fl.StringVar(&scfg.DSN, "dsn", "", "backend connection string")
	fl.StringVar(&scfg.Table, "table", "survey_responses", "destination table, optionally schema-qualified")
	fl.IntVar(&batchSize, "batch-size", storage.DefaultBatchSize, "rows per insert batch")
	fl.BoolVar(&createTable, "create-table", true, "create the table if it does not exist")
	return cmd
}
