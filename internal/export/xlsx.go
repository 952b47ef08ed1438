package export

import (
	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet of an XLSX workbook.
type Sheet struct {
	Name  string
	Table *Table
	Notes []Note
}

// WriteXLSX saves one worksheet per sheet. Notes go in a two-column block
// above the header row.
func WriteXLSX(path string, sheets ...Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return err
		}
		if err := writeSheet(f, s); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, s Sheet) error {
	sw, err := f.NewStreamWriter(s.Name)
	if err != nil {
		return err
	}

	row := 1
	if s.Table.Title != "" {
		if err := sw.SetRow("A1", []any{s.Table.Title}); err != nil {
			return err
		}
		row++
	}
	for _, n := range s.Notes {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := sw.SetRow(cell, []any{n.Key, n.Value}); err != nil {
			return err
		}
		row++
	}
	if row > 1 {
		row++
	}

	header := make([]any, len(s.Table.Columns))
	for i, h := range s.Table.Headers() {
		header[i] = h
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := sw.SetRow(cell, header); err != nil {
		return err
	}

	values := make([]any, len(s.Table.Columns))
	for i := 0; i < s.Table.Rows(); i++ {
		for j, v := range s.Table.Row(i) {
			values[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, row+1+i)
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// ReadXLSXRows reads the named sheet back as raw rows.
func ReadXLSXRows(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetRows(sheet)
}
