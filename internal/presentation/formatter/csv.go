package formatter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
)

type CSVFormatter struct {
	w io.Writer
}

func NewCSVFormatter(w io.Writer) *CSVFormatter {
	return &CSVFormatter{w: w}
}

func (f *CSVFormatter) FormatDates(dates []DateSummary) error {
	w := csv.NewWriter(f.w)
	if err := w.Write([]string{"Date", "Backups", "Latest", "File"}); err != nil {
		return err
	}
	for _, d := range dates {
		if err := w.Write([]string{d.Date, strconv.Itoa(d.Count), d.Latest, d.File}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (f *CSVFormatter) FormatRecords(records []model.Record) error {
	w := csv.NewWriter(f.w)
	if err := w.Write([]string{"Timestamp", "Payload"}); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write([]string{rec.Timestamp, rec.Payload}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (f *CSVFormatter) FormatRecord(rec model.Record) error {
	return f.FormatRecords([]model.Record{rec})
}
