package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadOptions controls how a source file is decoded.
type ReadOptions struct {
	// Sheet selects the worksheet of a workbook. Empty means the first sheet.
	Sheet string
	// Encoding names the text encoding of delimited files. Empty means auto.
	Encoding string
	// Comma is the field delimiter. Zero means detect from the header line.
	Comma rune
}

// IsWorkbook reports whether path names a spreadsheet workbook.
func IsWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return true
	}
	return false
}

// ReadSource reads one CSV or workbook file into a RawTable. Only failures to
// open or decode the file as a whole are returned, always as *LoadError.
func ReadSource(path string, opts ReadOptions) (RawTable, error) {
	if IsWorkbook(path) {
		return readWorkbook(path, opts)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return RawTable{}, newLoadError(path, err)
	}
	table, err := ReadDelimited(path, data, opts)
	if err != nil {
		return RawTable{}, newLoadError(path, err)
	}
	return table, nil
}

// ReadDelimited parses delimited text. Rows the CSV reader rejects are kept
// as empty rows so the row count matches the input.
func ReadDelimited(source string, data []byte, opts ReadOptions) (RawTable, error) {
	text, _, err := decodeText(data, opts.Encoding)
	if err != nil {
		return RawTable{}, err
	}

	reader := csv.NewReader(bytes.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.Comma = opts.Comma
	if reader.Comma == 0 {
		reader.Comma = detectDelimiter(text)
	}

	table := RawTable{Source: source}
	header, err := reader.Read()
	if err == io.EOF {
		return table, nil
	}
	if err != nil {
		return RawTable{}, fmt.Errorf("failed to read header: %w", err)
	}
	table.Header = header

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				table.Rows = append(table.Rows, nil)
				table.MalformedRows++
				continue
			}
			return RawTable{}, err
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

func readWorkbook(path string, opts ReadOptions) (RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return RawTable{}, newLoadError(path, err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return RawTable{}, newLoadError(path, errors.New("workbook has no sheets"))
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return RawTable{}, newLoadError(path, fmt.Errorf("failed to read sheet %q: %w", sheet, err))
	}

	table := RawTable{Source: path}
	if len(rows) == 0 {
		return table, nil
	}
	table.Header = rows[0]
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func detectDelimiter(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, candidate := range []rune{';', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(candidate))); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
