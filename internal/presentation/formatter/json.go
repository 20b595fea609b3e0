package formatter

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
)

type JSONFormatter struct {
	w io.Writer
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{w: w}
}

func (f *JSONFormatter) FormatDates(dates []DateSummary) error {
	if dates == nil {
		dates = []DateSummary{}
	}
	return f.encode(dates)
}

func (f *JSONFormatter) FormatRecords(records []model.Record) error {
	if records == nil {
		records = []model.Record{}
	}
	return f.encode(records)
}

func (f *JSONFormatter) FormatRecord(rec model.Record) error {
	return f.encode(rec)
}

func (f *JSONFormatter) encode(v interface{}) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = f.w.Write(data)
	return err
}
