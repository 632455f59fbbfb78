package tabular

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

func init() {
	Register(".xlsx", xlsxFormat{})
}

const xlsxSheet = "Sheet1"

type xlsxFormat struct{}

func (xlsxFormat) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Read loads the first worksheet. Cells come back as their formatted text.
func (xlsxFormat) Read(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}

	t := &Table{Columns: rows[0]}
	for _, rec := range rows[1:] {
		row := make([]any, len(rec))
		for i, v := range rec {
			row[i] = v
		}
		t.Rows = append(t.Rows, row)
	}
	if err := t.Trim(); err != nil {
		return nil, err
	}
	return t, nil
}

func (xlsxFormat) Write(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		padded := make([]any, len(t.Columns))
		copy(padded, row)
		if err := setRow(f, i+2, padded); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func setRow(f *excelize.File, n int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
		return fmt.Errorf("row %d: %w", n, err)
	}
	return nil
}
