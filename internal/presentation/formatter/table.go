package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/penwyp/go-mela-save-monitor/internal/core/model"
	"github.com/penwyp/go-mela-save-monitor/internal/presentation/layout"
	"github.com/penwyp/go-mela-save-monitor/internal/util"
)

// TableFormatter draws box tables. A single record is printed bare so it can
// be piped into a clipboard tool.
type TableFormatter struct {
	w     io.Writer
	sizer *layout.Sizer
}

func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{w: w, sizer: layout.NewSizer(w)}
}

// WithSizer overrides terminal detection.
func (f *TableFormatter) WithSizer(s *layout.Sizer) *TableFormatter {
	f.sizer = s
	return f
}

func (f *TableFormatter) FormatDates(dates []DateSummary) error {
	headers := []string{"Date", "Backups", "Latest"}
	rows := make([][]string, 0, len(dates))
	total := 0
	for _, d := range dates {
		rows = append(rows, []string{d.Date, strconv.Itoa(d.Count), d.Latest})
		total += d.Count
	}
	footer := []string{"Total", strconv.Itoa(total), ""}
	return f.render(headers, rows, footer, []bool{true, false, true})
}

func (f *TableFormatter) FormatRecords(records []model.Record) error {
	headers := []string{"#", "Time", "Size", "Preview"}
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			rec.TimePart(),
			strconv.Itoa(len(rec.Payload)),
			rec.Payload,
		})
	}

	widths := f.calculateColumnWidths(headers, rows, nil)
	// Whatever the other columns leave over goes to the preview.
	used := 1
	for _, w := range widths[:3] {
		used += w + 3
	}
	preview := f.sizer.GetMaxWidth() - used - 4
	if preview < len(headers[3]) {
		preview = len(headers[3])
	}
	for _, row := range rows {
		row[3] = util.Preview(row[3], preview)
	}

	return f.render(headers, rows, nil, []bool{false, true, false, true})
}

func (f *TableFormatter) FormatRecord(rec model.Record) error {
	_, err := fmt.Fprintln(f.w, rec.Payload)
	return err
}

func (f *TableFormatter) render(headers []string, rows [][]string, footer []string, leftAlign []bool) error {
	widths := f.calculateColumnWidths(headers, rows, footer)

	var b strings.Builder
	f.printBorder(&b, widths, "top")
	f.printRow(&b, headers, widths, leftAlign)
	f.printBorder(&b, widths, "middle")
	for _, row := range rows {
		f.printRow(&b, row, widths, leftAlign)
	}
	if footer != nil {
		f.printBorder(&b, widths, "middle")
		f.printRow(&b, footer, widths, leftAlign)
	}
	f.printBorder(&b, widths, "bottom")

	_, err := io.WriteString(f.w, b.String())
	return err
}

// calculateColumnWidths determines the display width of each column
func (f *TableFormatter) calculateColumnWidths(headers []string, rows [][]string, footer []string) []int {
	widths := make([]int, len(headers))
	measure := func(values []string) {
		for i, value := range values {
			if w := util.GetDisplayWidth(value); w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(headers)
	for _, row := range rows {
		measure(row)
	}
	measure(footer)
	return widths
}

// printBorder prints table borders (top, middle, bottom)
func (f *TableFormatter) printBorder(b *strings.Builder, widths []int, borderType string) {
	var left, middle, right string

	switch borderType {
	case "top":
		left, middle, right = "┌", "┬", "┐"
	case "middle":
		left, middle, right = "├", "┼", "┤"
	case "bottom":
		left, middle, right = "└", "┴", "┘"
	}

	b.WriteString(left)
	for i, width := range widths {
		b.WriteString(strings.Repeat("─", width+2))
		if i < len(widths)-1 {
			b.WriteString(middle)
		}
	}
	b.WriteString(right)
	b.WriteString("\n")
}

func (f *TableFormatter) printRow(b *strings.Builder, values []string, widths []int, leftAlign []bool) {
	b.WriteString("│")
	for i, value := range values {
		b.WriteString(" ")
		b.WriteString(util.PadString(value, widths[i], leftAlign[i]))
		b.WriteString(" │")
	}
	b.WriteString("\n")
}
