// Command surveydash serves and exports the mental-health-in-tech survey
// dashboard.
//
//	surveydash serve    --source data/survey.csv --addr :8080
//	surveydash summary  --gender Female --age 30 --format yaml
//	surveydash charts   --out charts --format png
//	surveydash export   --kind sqlite --dsn file:survey.db --table responses
//	surveydash validate
//	surveydash probe    --source https://example.org/survey.csv
//
// Settings come from the environment (and an optional .env file); flags
// override them.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
