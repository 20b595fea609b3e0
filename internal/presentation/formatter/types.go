package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
)

// DateSummary describes one archive day.
type DateSummary struct {
	Date   string `json:"date"`
	Count  int    `json:"count"`
	Latest string `json:"latest"`
	File   string `json:"file"`
}

// Formatter renders archive contents for the CLI.
type Formatter interface {
	FormatDates(dates []DateSummary) error
	FormatRecords(records []model.Record) error
	FormatRecord(rec model.Record) error
}

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
)

// New returns the formatter for name writing to w.
func New(name string, w io.Writer) (Formatter, error) {
	switch strings.ToLower(name) {
	case "", FormatTable:
		return NewTableFormatter(w), nil
	case FormatJSON:
		return NewJSONFormatter(w), nil
	case FormatCSV:
		return NewCSVFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want table, json or csv)", name)
	}
}
