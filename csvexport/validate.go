package csvexport

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/gomlx/go-annotations/validation"
)

// Report is a validation.Report with the size of the validated table. ColumnCount
// is the width of the first section's header.
type Report struct {
	validation.Report
	RowCount    int `json:"row_count"`
	ColumnCount int `json:"column_count"`
}

type section struct {
	name    string
	columns int // -1 until the header is read
	rows    int
}

// Validate re-parses a CSV artifact with the exporter's separator.
//
// Quoted fields may span lines. A line starting with an unquoted "#" is a
// section banner: the next record is the header of that section, and every data
// row must match the header's width. Row numbers in messages are line numbers.
func (e *Exporter) Validate(text string) Report {
	var c validation.Collector
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = e.options.Separator
	r.FieldsPerRecord = -1

	var (
		sections []*section
		current  *section
		report   Report
	)
	for {
		offset := r.InputOffset()
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.Errorf("Malformed CSV: %v", err)
			break
		}
		// Blank lines before the record are skipped by the reader.
		if raw := strings.TrimLeft(text[offset:], "\r\n"); strings.HasPrefix(raw, "#") {
			banner := strings.Join(record, string(e.options.Separator))
			current = &section{name: strings.TrimSpace(strings.TrimPrefix(banner, "#")), columns: -1}
			sections = append(sections, current)
			continue
		}
		if current == nil {
			current = &section{columns: -1}
			sections = append(sections, current)
		}
		if current.columns < 0 {
			current.columns = len(record)
			if report.ColumnCount == 0 {
				report.ColumnCount = len(record)
			}
			continue
		}
		current.rows++
		report.RowCount++
		if len(record) != current.columns {
			line, _ := r.FieldPos(0)
			c.Errorf("Row %d: Expected %d columns, got %d", line, current.columns, len(record))
		}
	}

	headers := 0
	for _, s := range sections {
		if s.columns >= 0 {
			headers++
		}
	}
	if headers == 0 && !c.HasErrors() {
		c.Errorf("Empty CSV content")
	}
	for _, s := range sections {
		if s.columns < 0 || s.rows > 0 {
			continue
		}
		if s.name == "" {
			c.Warnf("CSV contains only headers, no data rows")
		} else {
			c.Warnf("Section %s contains only headers, no data rows", s.name)
		}
	}
	report.Report = c.Report()
	return report
}
