package main

import (
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"surveydash/internal/config"
	"surveydash/internal/filter"
	"surveydash/internal/logging"
)

// app is the per-invocation state shared by subcommands. PersistentPreRunE
// fills cfg and log before any RunE executes.
type app struct {
	out, errOut io.Writer

	cfg *config.Config
	log *zap.Logger

	// flag overrides, applied only when the flag was set
	source         string
	delimiter      string
	logLevel       string
	logFormat      string
	metricsBackend string
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:          "surveydash",
		Short:        "Mental health in tech survey dashboard",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.source, "source", "", "CSV path or http(s) URL (env DATA_SOURCE)")
	pf.StringVar(&a.delimiter, "delimiter", "", "CSV field delimiter (env CSV_DELIMITER)")
	pf.StringVar(&a.logLevel, "log-level", "", "debug|info|warn|error (env LOG_LEVEL)")
	pf.StringVar(&a.logFormat, "log-format", "", "json|console (env LOG_FORMAT)")
	pf.StringVar(&a.metricsBackend, "metrics-backend", "", "none|pushgateway|datadog (env METRICS_BACKEND)")

	root.AddCommand(
		newServeCmd(a),
		newSummaryCmd(a),
		newChartsCmd(a),
		newExportCmd(a),
		newValidateCmd(a),
		newProbeCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.DataSource = a.source
	}
	if flags.Changed("delimiter") {
		cfg.CSVDelimiter = a.delimiter
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if flags.Changed("metrics-backend") {
		cfg.MetricsBackend = a.metricsBackend
	}
	a.cfg = cfg

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.log = log
	return nil
}

// filterFlags binds the dashboard filter controls to a command.
type filterFlags struct {
	gender, country, remote, tech string
	age                           int
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.gender, "gender", "", "Female|Male|Non-binary|Transgender|Other")
	fl.StringVar(&f.country, "country", "", "exact country name")
	fl.StringVar(&f.remote, "remote", "", "remote_work answer, e.g. Yes")
	fl.StringVar(&f.tech, "tech", "", "tech_company answer, e.g. Yes")
	fl.IntVar(&f.age, "age", 0, "maximum age; 0 disables the bound")
}

// criteria routes the flags through the same parser as the HTTP form so
// both surfaces accept identical values.
func (f *filterFlags) criteria() (filter.Criteria, error) {
	v := url.Values{}
	v.Set(filter.ParamGender, f.gender)
	v.Set(filter.ParamCountry, f.country)
	v.Set(filter.ParamRemote, f.remote)
	v.Set(filter.ParamTech, f.tech)
	if f.age != 0 {
		v.Set(filter.ParamAge, strconv.Itoa(f.age))
	}
	return filter.FromValues(v)
}
