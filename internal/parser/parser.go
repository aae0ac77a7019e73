// Package parser defines the contract shared by record parsers.
package parser

import (
	"io"

	"surveydash/pkg/records"
)

// Parser decodes a byte stream into records and reports how many rows it
// skipped as malformed.
type Parser interface {
	Parse(r io.Reader) ([]records.Record, int, error)
}
