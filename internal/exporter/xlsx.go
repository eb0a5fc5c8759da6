package exporter

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

// Sheet is one named table of a workbook.
type Sheet struct {
	Name  string
	Frame dataframe.DataFrame
}

// WriteWorkbook writes sheets to w as an XLSX workbook. The header row of
// each sheet is bold and Int columns are stored as numbers.
func WriteWorkbook(w io.Writer, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	defaultSheet := f.GetSheetList()[0]
	for i, s := range sheets {
		name := sheetName(s.Name, i)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}

		if err := writeSheet(f, name, s.Frame); err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}
		if err := f.SetRowStyle(name, 1, 1, bold); err != nil {
			return fmt.Errorf("failed to style header of %q: %w", name, err)
		}
	}
	f.SetActiveSheet(0)

	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return df.Err
	}

	names := df.Names()
	header := make([]interface{}, len(names))
	for i, n := range names {
		header[i] = n
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	cols := make([]series.Series, len(names))
	for i, n := range names {
		cols[i] = df.Col(n)
	}

	for r := 0; r < df.Nrow(); r++ {
		row := make([]interface{}, len(cols))
		for c, col := range cols {
			elem := col.Elem(r)
			if col.Type() == series.Int {
				if v, err := elem.Int(); err == nil {
					row[c] = v
					continue
				}
			}
			row[c] = elem.String()
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func sheetName(name string, i int) string {
	if name == "" {
		name = fmt.Sprintf("Sheet%d", i+1)
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}
