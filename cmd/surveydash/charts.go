package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surveydash/internal/render"
)

func newChartsCmd(a *app) *cobra.Command {
	var (
		ff     filterFlags
		outDir string
		format string
	)
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Render the four dashboard charts to files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			crit, err := ff.criteria()
			if err != nil {
				return err
			}
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			flush := setupMetrics(a.cfg, a.log)
			defer flush()

			store, _, err := loadDataset(cmd.Context(), a.cfg, a.log)
			if err != nil {
				return err
			}
			v, err := store.Query(crit)
			if err != nil {
				return err
			}
			charts, err := render.RenderAll(cmd.Context(), v.Report, f)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", outDir, err)
			}

			names := make([]string, 0, len(charts))
			for name := range charts {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				path := filepath.Join(outDir, name+"."+f.String())
				if err := os.WriteFile(path, charts[name], 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				a.log.Info("chart written", zap.String("path", path), zap.Int("bytes", len(charts[name])))
				fmt.Fprintln(a.out, path)
			}
			return nil
		},
	}
	ff.bind(cmd)
	cmd.Flags().StringVar(&outDir, "out", "charts", "output directory")
	cmd.Flags().StringVar(&format, "format", "svg", "svg|png")
	return cmd
}
