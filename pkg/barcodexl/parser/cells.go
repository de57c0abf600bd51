package parser

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/models"
	"github.com/xuri/excelize/v2"
)

// ReadTable opens an xlsx file and reads its first sheet as a table.
// The first row is the header; trailing empty rows are dropped.
func ReadTable(path string) (*models.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
	}

	table, err := ExtractTable(f, sheets[0])
	if err != nil {
		return nil, err
	}
	table.Name = filepath.Base(path)
	return table, nil
}

// ExtractTable reads a sheet as a header plus typed data rows.
// Cell values are read raw so number formats do not alter the codes. Only
// cells stored as numbers are parsed; text cells stay text. Columns without
// a header name are kept with an empty name.
func ExtractTable(f *excelize.File, sheetName string) (*models.Table, error) {
	rows, err := f.Rows(sheetName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	table := &models.Table{}
	sheetRow := 0
	lastNonEmpty := -1
	for rows.Next() {
		sheetRow++
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, err
		}

		if sheetRow == 1 {
			table.Header = append([]string{}, cols...)
			continue
		}

		row := models.Row{
			Index:  len(table.Rows),
			Values: make([]models.Value, max(len(table.Header), usedWidth(cols))),
		}
		for colIdx := range row.Values {
			if colIdx >= len(cols) || cols[colIdx] == "" {
				row.Values[colIdx] = models.Empty()
				continue
			}
			v, err := cellValue(f, sheetName, colIdx+1, sheetRow, cols[colIdx])
			if err != nil {
				return nil, err
			}
			row.Values[colIdx] = v
		}
		table.Rows = append(table.Rows, row)
		if usedWidth(cols) > 0 {
			lastNonEmpty = row.Index
		}
	}
	if err := rows.Error(); err != nil {
		return nil, err
	}

	table.Rows = table.Rows[:lastNonEmpty+1]
	widen(table)
	return table, nil
}

// usedWidth returns the number of columns up to the last non-empty cell.
func usedWidth(cols []string) int {
	for i := len(cols) - 1; i >= 0; i-- {
		if cols[i] != "" {
			return i + 1
		}
	}
	return 0
}

// widen pads the header and every row to the widest row.
func widen(table *models.Table) {
	width := len(table.Header)
	for _, row := range table.Rows {
		width = max(width, len(row.Values))
	}
	for len(table.Header) < width {
		table.Header = append(table.Header, "")
	}
	for i := range table.Rows {
		for len(table.Rows[i].Values) < width {
			table.Rows[i].Values = append(table.Rows[i].Values, models.Empty())
		}
	}
}

// cellValue converts a raw cell to a Value. Text cells are returned as-is
// even when they look numeric.
func cellValue(f *excelize.File, sheet string, col, row int, raw string) (models.Value, error) {
	v := parseValue(raw)
	if v.Kind == models.KindString {
		return v, nil
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return models.Value{}, err
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return models.Value{}, err
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		return v, nil
	}
	return models.StringValue(raw), nil
}

// parseValue attempts to parse a string value as a number.
// Returns an int value for integers, a float value for decimals, or text.
func parseValue(s string) models.Value {
	// Try integer first
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return models.IntValue(i)
	}
	// Try float
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return models.FloatValue(f)
	}
	// Return as string
	return models.StringValue(s)
}
