package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"surveydash/internal/dataset"
)

func newSummaryCmd(a *app) *cobra.Command {
	var (
		ff     filterFlags
		format string
		full   bool
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print metrics for a filtered subset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			crit, err := ff.criteria()
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
			return writeView(a.out, v, format, full)
		},
	}
	ff.bind(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "text|json|yaml")
	cmd.Flags().BoolVar(&full, "full", false, "include every breakdown, not only the headline metrics")
	return cmd
}

func writeView(w io.Writer, v dataset.View, format string, full bool) error {
	var payload any = v.Report.Summary
	if full {
		payload = v.Report
	}
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(payload); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		return writeText(w, v, full)
	}
	return fmt.Errorf("unknown format %q", format)
}

func writeText(w io.Writer, v dataset.View, full bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	s := v.Report.Summary
	fmt.Fprintf(tw, "Filters:\t%s\n", v.Criteria)
	fmt.Fprintf(tw, "Respondents:\t%s of %s\n", humanize.Comma(int64(s.Respondents)), humanize.Comma(int64(v.Dataset.Len())))
	fmt.Fprintf(tw, "Sought treatment:\t%.1f%%\n", s.TreatmentRate)
	fmt.Fprintf(tw, "Work interference (often):\t%.1f%%\n", s.InterferenceRate)

	if full {
		fmt.Fprintln(tw, "\nAge group\tYes %\tNo %\tRespondents")
		for _, b := range v.Report.Age {
			fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%d\n", b.Label, b.TreatmentYes, b.TreatmentNo, b.Total)
		}
		fmt.Fprintln(tw, "\nGender\tYes\tNo\tRespondents")
		for _, g := range v.Report.Gender {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", g.Gender, g.TreatmentYes, g.TreatmentNo, g.Total)
		}
		fmt.Fprintln(tw, "\nCountry\tRespondents\tShare %")
		for _, c := range v.Report.Countries {
			fmt.Fprintf(tw, "%s\t%s\t%.1f\n", c.Country, humanize.Comma(int64(c.Count)), c.Share)
		}
		fmt.Fprintln(tw, "\nWork location\tYes %\tNo %\tRespondents")
		for _, r := range v.Report.Remote {
			fmt.Fprintf(tw, "%s\t%.1f\t%.1f\t%d\n", r.Category, r.YesPercent, r.NoPercent, r.Total)
		}
	}
	return tw.Flush()
}
