// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlgrid

import (
	"fmt"
	"strconv"
	"time"

	"github.com/TsubasaBE/go-xlsb/worksheet"
	"github.com/extrame/xls"
	tealeg "github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

// ExcelizeSheet names one sheet of an open excelize workbook.
// excelize addresses cells by (file, sheet name) instead of handing out
// sheet objects, so this pair is what Read and Write dispatch on.
type ExcelizeSheet struct {
	File *excelize.File
	Name string
}

// Read reads the whole used range of sheet into a Grid.
//
// The accepted sheet types are ExcelizeSheet, *xlsx.Sheet (tealeg),
// *xls.WorkSheet, *worksheet.Worksheet (go-xlsb) and *CSVSheet.
// Cell values come back as nil, string, float64, bool, time.Time or
// CellError. The .xlsb reader cannot see date formats, so dates stay
// serial float64 there (convert with SerialToTime).
func Read(sheet any) (Grid, error) { return ReadRange(sheet, "", "") }

// ReadRange reads the rectangle between the first and last cell reference
// (both in A1 notation, both inclusive). An empty first means "A1", an
// empty last means the bottom-right corner of the used range. Cells
// outside the used range read as nil.
func ReadRange(sheet any, first, last string) (Grid, error) {
	from, err := ParseRef(first)
	if err != nil {
		return nil, err
	}
	var to Ref
	haveTo := last != ""
	if haveTo {
		if to, err = ParseRef(last); err != nil {
			return nil, err
		}
		if to.Row < from.Row || to.Col < from.Col {
			return nil, fmt.Errorf("%s:%s: range end before start", first, last)
		}
	}
	switch x := sheet.(type) {
	case ExcelizeSheet:
		return readExcelize(x, from, to, haveTo)
	case *ExcelizeSheet:
		return readExcelize(*x, from, to, haveTo)
	case *tealeg.Sheet:
		return readTealeg(x, from, to, haveTo)
	case *xls.WorkSheet:
		return readXLS(x, from, to, haveTo)
	case *worksheet.Worksheet:
		return readXLSB(x, from, to, haveTo)
	case *CSVSheet:
		return readCSVSheet(x, from, to, haveTo)
	}
	return nil, fmt.Errorf("%T: %w", sheet, ErrUnknownSheet)
}

func readExcelize(sheet ExcelizeSheet, from, to Ref, haveTo bool) (Grid, error) {
	f, name := sheet.File, sheet.Name
	if !haveTo {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", name, err)
		}
		var cols int
		for _, row := range rows {
			if len(row) > cols {
				cols = len(row)
			}
		}
		if len(rows) == 0 || cols == 0 {
			return Grid{}, nil
		}
		to = Ref{Row: len(rows) - 1, Col: cols - 1}
		if to.Row < from.Row || to.Col < from.Col {
			return Grid{}, nil
		}
	}
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, err
	}
	date1904 := props.Date1904 != nil && *props.Date1904
	dateStyles := make(map[int]bool)
	grid := make(Grid, 0, to.Row-from.Row+1)
	for r := from.Row; r <= to.Row; r++ {
		row := make([]any, 0, to.Col-from.Col+1)
		for c := from.Col; c <= to.Col; c++ {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			v, err := excelizeCellValue(f, name, axis, date1904, dateStyles)
			if err != nil {
				return nil, fmt.Errorf("%s[%s]: %w", name, axis, err)
			}
			row = append(row, v)
		}
		grid = append(grid, row)
	}
	return grid, nil
}

func excelizeCellValue(f *excelize.File, name, axis string, date1904 bool, dateStyles map[int]bool) (any, error) {
	raw, err := f.GetCellValue(name, axis, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	ct, err := f.GetCellType(name, axis)
	if err != nil {
		return nil, err
	}
	switch ct {
	case excelize.CellTypeBool:
		return raw == "1" || raw == "TRUE", nil
	case excelize.CellTypeError:
		return asCellError(raw), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		// "str" cells: string formula results and SetCellStr values.
		excelize.CellTypeFormula:
		if raw == "" {
			return nil, nil
		}
		return asCellError(raw), nil
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return raw, nil
	}
	// Number, formula result or unset.
	if raw == "" {
		return nil, nil
	}
	n, perr := strconv.ParseFloat(raw, 64)
	if perr != nil {
		// Cached string result of a formula.
		return asCellError(raw), nil
	}
	sid, err := f.GetCellStyle(name, axis)
	if err != nil {
		return nil, err
	}
	isDate, ok := dateStyles[sid]
	if !ok {
		if st, err := f.GetStyle(sid); err == nil && st != nil {
			isDate = isBuiltinDateFormat(st.NumFmt) ||
				(st.CustomNumFmt != nil && isDateFormatString(*st.CustomNumFmt))
		}
		dateStyles[sid] = isDate
	}
	if isDate {
		return SerialToTime(n, date1904), nil
	}
	return n, nil
}

func readTealeg(sheet *tealeg.Sheet, from, to Ref, haveTo bool) (Grid, error) {
	if !haveTo {
		if sheet.MaxRow == 0 || sheet.MaxCol == 0 {
			return Grid{}, nil
		}
		to = Ref{Row: sheet.MaxRow - 1, Col: sheet.MaxCol - 1}
		if to.Row < from.Row || to.Col < from.Col {
			return Grid{}, nil
		}
	}
	date1904 := sheet.File != nil && sheet.File.Date1904
	grid := make(Grid, 0, to.Row-from.Row+1)
	for r := from.Row; r <= to.Row; r++ {
		row := make([]any, 0, to.Col-from.Col+1)
		for c := from.Col; c <= to.Col; c++ {
			row = append(row, tealegCellValue(sheet, r, c, date1904))
		}
		grid = append(grid, row)
	}
	return grid, nil
}

func tealegCellValue(sheet *tealeg.Sheet, r, c int, date1904 bool) any {
	if r >= len(sheet.Rows) || sheet.Rows[r] == nil {
		return nil
	}
	cells := sheet.Rows[r].Cells
	if c >= len(cells) || cells[c] == nil {
		return nil
	}
	cell := cells[c]
	switch cell.Type() {
	case tealeg.CellTypeBool:
		return cell.Bool()
	case tealeg.CellTypeError:
		return asCellError(cell.Value)
	case tealeg.CellTypeDate:
		if t, err := cell.GetTime(date1904); err == nil {
			return t
		}
		return cell.Value
	case tealeg.CellTypeNumeric:
		if cell.IsTime() {
			if t, err := cell.GetTime(date1904); err == nil {
				return t
			}
		}
		if f, err := cell.Float(); err == nil {
			return f
		}
		return cell.Value
	}
	if cell.Value == "" {
		return nil
	}
	return asCellError(cell.Value)
}

func readXLS(sheet *xls.WorkSheet, from, to Ref, haveTo bool) (Grid, error) {
	if !haveTo {
		rows := int(sheet.MaxRow) + 1
		var cols int
		for r := 0; r < rows; r++ {
			if row := sheet.Row(r); row != nil && row.LastCol() > cols {
				cols = row.LastCol()
			}
		}
		if cols == 0 {
			return Grid{}, nil
		}
		to = Ref{Row: rows - 1, Col: cols - 1}
		if to.Row < from.Row || to.Col < from.Col {
			return Grid{}, nil
		}
	}
	grid := make(Grid, 0, to.Row-from.Row+1)
	for r := from.Row; r <= to.Row; r++ {
		row := sheet.Row(r)
		out := make([]any, 0, to.Col-from.Col+1)
		for c := from.Col; c <= to.Col; c++ {
			if row == nil || c >= row.LastCol() {
				out = append(out, nil)
				continue
			}
			out = append(out, retypeString(row.Col(c)))
		}
		grid = append(grid, out)
	}
	return grid, nil
}

func readXLSB(ws *worksheet.Worksheet, from, to Ref, haveTo bool) (Grid, error) {
	if !haveTo {
		dim := ws.Dimension
		if dim == nil {
			return Grid{}, nil
		}
		to = Ref{Row: dim.R + dim.H - 1, Col: dim.C + dim.W - 1}
		if to.Row < from.Row || to.Col < from.Col {
			return Grid{}, nil
		}
	}
	grid := make(Grid, to.Row-from.Row+1)
	for i := range grid {
		grid[i] = make([]any, to.Col-from.Col+1)
	}
	rowIdx := 0
	for cells := range ws.Rows(false) {
		if rowIdx > to.Row {
			break
		}
		if rowIdx >= from.Row {
			out := grid[rowIdx-from.Row]
			for _, cell := range cells {
				if cell.C < from.Col || cell.C > to.Col {
					continue
				}
				out[cell.C-from.Col] = xlsbCellValue(cell.V)
			}
		}
		rowIdx++
	}
	if ws.Err != nil {
		return nil, fmt.Errorf("%q: %w", ws.Name, ws.Err)
	}
	return grid, nil
}

func xlsbCellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case string:
		if x == "" {
			return nil
		}
		return asCellError(x)
	}
	return v
}

func readCSVSheet(sheet *CSVSheet, from, to Ref, haveTo bool) (Grid, error) {
	if !haveTo {
		var cols int
		for _, rec := range sheet.Records {
			if len(rec) > cols {
				cols = len(rec)
			}
		}
		if len(sheet.Records) == 0 || cols == 0 {
			return Grid{}, nil
		}
		to = Ref{Row: len(sheet.Records) - 1, Col: cols - 1}
		if to.Row < from.Row || to.Col < from.Col {
			return Grid{}, nil
		}
	}
	grid := make(Grid, 0, to.Row-from.Row+1)
	for r := from.Row; r <= to.Row; r++ {
		row := make([]any, 0, to.Col-from.Col+1)
		for c := from.Col; c <= to.Col; c++ {
			var s string
			if r < len(sheet.Records) && c < len(sheet.Records[r]) {
				s = sheet.Records[r][c]
			}
			if sheet.Raw {
				if s == "" {
					row = append(row, nil)
				} else {
					row = append(row, s)
				}
			} else {
				row = append(row, retypeString(s))
			}
		}
		grid = append(grid, row)
	}
	return grid, nil
}
