package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surveydash/internal/webui"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the dataset and serve the dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.HTTPAddr = addr
			}
			flush := setupMetrics(a.cfg, a.log)
			defer flush()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, ds, err := loadDataset(ctx, a.cfg, a.log)
			if err != nil {
				a.log.Error("initial load failed", zap.String("source", a.cfg.DataSource), zap.Error(err))
				return err
			}
			a.log.Info("dataset ready", zap.Int("rows", ds.Len()), zap.Int("skipped", ds.Skipped))

			if a.cfg.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := webui.NewServer(webui.Config{Addr: a.cfg.HTTPAddr}, store, a.log)
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address (env HTTP_ADDR)")
	return cmd
}
