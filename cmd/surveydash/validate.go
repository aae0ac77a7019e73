package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"surveydash/internal/config"
)

func newValidateCmd(a *app) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Lint the configuration and filter flags, then exit",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			issues := config.ValidateConfig(*a.cfg)
			crit, err := ff.criteria()
			if err != nil {
				issues = append(issues, config.Issue{
					Severity: config.SeverityError,
					Path:     "filter",
					Message:  err.Error(),
				})
			} else {
				issues = append(issues, crit.Validate()...)
			}

			for _, iss := range issues {
				fmt.Fprintf(a.out, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
			}
			if config.HasErrors(issues) {
				return errors.New("configuration is invalid")
			}
			fmt.Fprintln(a.out, "configuration is valid")
			return nil
		},
	}
	ff.bind(cmd)
	return cmd
}
