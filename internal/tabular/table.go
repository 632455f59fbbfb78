// Package tabular reads and writes the row-oriented files fed to batch
// classification: CSV, XLSX and NDJSON.
package tabular

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingColumn is returned when a required column is absent.
	// Column names match exactly and case-sensitively.
	ErrMissingColumn = errors.New("missing column")
	// ErrUnsupportedFormat is returned for file extensions with no
	// registered format.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrEmpty is returned when a file has no header row.
	ErrEmpty = errors.New("empty table")
	// ErrRaggedRow is returned when a row carries values past the last
	// header column.
	ErrRaggedRow = errors.New("row wider than header")
)

// Table is a header plus rows of cell values. Rows may be shorter than the
// header; missing cells read as nil. Rows are never wider than the header
// once they pass through Trim or AddColumn.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Index returns the position of the named column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns the values of the named column in row order.
func (t *Table) Column(name string) ([]any, error) {
	col := t.Index(name)
	if col < 0 {
		return nil, fmt.Errorf("tabular: %w %q", ErrMissingColumn, name)
	}
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		if col < len(row) {
			out[i] = row[col]
		}
	}
	return out, nil
}

// AddColumn appends a column. values must have one entry per row.
func (t *Table) AddColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("tabular: column %q has %d values for %d rows", name, len(values), len(t.Rows))
	}
	if err := t.Trim(); err != nil {
		return err
	}
	width := len(t.Columns)
	t.Columns = append(t.Columns, name)
	for i, row := range t.Rows {
		// Pad short rows so the new cell lands under its header.
		for len(row) < width {
			row = append(row, nil)
		}
		t.Rows[i] = append(row, values[i])
	}
	return nil
}

// Trim drops blank cells past the last header column, as left by trailing
// delimiters. A row with a non-blank value there fails with ErrRaggedRow.
func (t *Table) Trim() error {
	width := len(t.Columns)
	for i, row := range t.Rows {
		if len(row) <= width {
			continue
		}
		for j, v := range row[width:] {
			if !blank(v) {
				return fmt.Errorf("tabular: %w: row %d has value %q in column %d",
					ErrRaggedRow, i+1, fmt.Sprint(v), width+j+1)
			}
		}
		t.Rows[i] = row[:width:width]
	}
	return nil
}

func blank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

// SetColumn replaces the named column's values, or appends the column when
// it does not exist yet.
func (t *Table) SetColumn(name string, values []string) error {
	col := t.Index(name)
	if col < 0 {
		return t.AddColumn(name, values)
	}
	if len(values) != len(t.Rows) {
		return fmt.Errorf("tabular: column %q has %d values for %d rows", name, len(values), len(t.Rows))
	}
	for i, row := range t.Rows {
		for len(row) <= col {
			row = append(row, nil)
		}
		row[col] = values[i]
		t.Rows[i] = row
	}
	return nil
}

// cell returns row[i] or nil when the row is short.
func cell(row []any, i int) any {
	if i < len(row) {
		return row[i]
	}
	return nil
}
