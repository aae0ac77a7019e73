package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"surveydash/internal/datasource"
	"surveydash/internal/datasource/httpds"
	"surveydash/internal/probe"
)

func newProbeCmd(a *app) *cobra.Command {
	var (
		maxBytes int
		format   string
		detect   bool
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Sample the head of the data source and report its layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			hc := httpds.NewClient(httpds.Config{Timeout: a.cfg.HTTPTimeout, MaxRetries: a.cfg.HTTPMaxRetries})
			opt := probe.Options{MaxBytes: maxBytes, Parser: csvOptions(a.cfg, a.log), Logger: a.log}
			if detect {
				opt.Parser.Comma = 0
			}
			rep, err := probe.Sniff(cmd.Context(), datasource.FromLocation(a.cfg.DataSource, hc), opt)
			if err != nil {
				return err
			}

			switch strings.ToLower(format) {
			case "json":
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				err = enc.Encode(rep)
			case "yaml":
				err = yaml.NewEncoder(a.out).Encode(rep)
			case "text", "":
				err = writeProbe(a, rep)
			default:
				err = fmt.Errorf("unknown format %q", format)
			}
			if err != nil {
				return err
			}
			if !rep.Ready() {
				return errors.New("source is missing survey fields: " + strings.Join(rep.Missing, ", "))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxBytes, "max-bytes", probe.DefaultMaxBytes, "bytes to sample from the start of the source")
	cmd.Flags().StringVar(&format, "format", "text", "text|json|yaml")
	cmd.Flags().BoolVar(&detect, "detect-delimiter", true, "detect the delimiter instead of using CSV_DELIMITER")
	return cmd
}

func writeProbe(a *app, rep probe.Report) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Source:\t%s\n", rep.Source)
	fmt.Fprintf(tw, "Sampled:\t%s, %d rows, %d skipped\n", humanize.Bytes(uint64(rep.Bytes)), rep.Rows, rep.Skipped)
	fmt.Fprintf(tw, "Delimiter:\t%q\n", rep.Delimiter)
	fmt.Fprintln(tw, "\nColumn\tType\tFilled\tSurvey")
	for _, c := range rep.Columns {
		mark := ""
		if c.Survey {
			mark = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", c.Header, c.Type, c.Filled, mark)
	}
	if len(rep.Genders) > 0 {
		fmt.Fprintln(tw, "\nGender\tRows")
		for _, g := range rep.GenderNames() {
			fmt.Fprintf(tw, "%s\t%d\n", g, rep.Genders[g])
		}
	}
	if cols := rep.SurveyColumns(); len(cols) > 0 {
		fmt.Fprintf(tw, "\nSurvey columns:\t%s\n", strings.Join(cols, ", "))
	}
	fmt.Fprintf(tw, "Age absent:\t%d\n", rep.AgeAbsent)
	if len(rep.Missing) > 0 {
		fmt.Fprintf(tw, "Missing:\t%s\n", strings.Join(rep.Missing, ", "))
	}
	return tw.Flush()
}
