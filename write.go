// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlgrid

import (
	"fmt"
	"strconv"
	"time"

	tealeg "github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

// Write writes values into sheet with its top-left cell at A1.
//
// The accepted sheet types are ExcelizeSheet, *xlsx.Sheet (tealeg) and
// *CSVSheet; the .xls and .xlsb backends are read only. nil cells are
// skipped, time.Time values get the DefaultDateFormat number format.
func Write(sheet any, values Grid) error { return WriteAt(sheet, values, "", "") }

// WriteAt writes values with its top-left cell at first (A1 notation,
// empty means A1). dateFormat is the number format applied to time.Time
// values; empty means DefaultDateFormat. The CSV backend has no number
// formats and renders dates ISO 8601 instead.
func WriteAt(sheet any, values Grid, first, dateFormat string) error {
	at, err := ParseRef(first)
	if err != nil {
		return err
	}
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}
	switch x := sheet.(type) {
	case ExcelizeSheet:
		return writeExcelize(x, values, at, dateFormat)
	case *ExcelizeSheet:
		return writeExcelize(*x, values, at, dateFormat)
	case *tealeg.Sheet:
		return writeTealeg(x, values, at, dateFormat)
	case *CSVSheet:
		return writeCSVSheet(x, values, at)
	}
	return fmt.Errorf("%T: %w", sheet, ErrUnknownSheet)
}

func writeExcelize(sheet ExcelizeSheet, values Grid, at Ref, dateFormat string) error {
	f, name := sheet.File, sheet.Name
	props, err := f.GetWorkbookProps()
	if err != nil {
		return err
	}
	date1904 := props.Date1904 != nil && *props.Date1904
	var dateStyle int
	for i, row := range values {
		for j, v := range row {
			if v == nil {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(at.Col+j+1, at.Row+i+1)
			if err != nil {
				return err
			}
			switch x := v.(type) {
			case time.Time:
				if dateStyle == 0 {
					if dateStyle, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFormat}); err != nil {
						return fmt.Errorf("%q date style: %w", dateFormat, err)
					}
				}
				if err = f.SetCellFloat(name, axis, TimeToSerial(x, date1904), -1, 64); err == nil {
					err = f.SetCellStyle(name, axis, axis, dateStyle)
				}
			case string:
				err = f.SetCellStr(name, axis, x)
			case Number:
				err = f.SetCellValue(name, axis, string(x))
			case CellError:
				err = f.SetCellStr(name, axis, string(x))
			default:
				err = f.SetCellValue(name, axis, v)
			}
			if err != nil {
				return fmt.Errorf("%s[%s]: %w", name, axis, err)
			}
		}
	}
	return nil
}

func writeTealeg(sheet *tealeg.Sheet, values Grid, at Ref, dateFormat string) error {
	date1904 := sheet.File != nil && sheet.File.Date1904
	for i, row := range values {
		for j, v := range row {
			if v == nil {
				continue
			}
			cell := sheet.Cell(at.Row+i, at.Col+j)
			switch x := v.(type) {
			case time.Time:
				cell.SetFloatWithFormat(TimeToSerial(x, date1904), dateFormat)
			case bool:
				cell.SetBool(x)
			case string:
				cell.SetString(x)
			case CellError:
				cell.SetString(string(x))
			case Number:
				if f, err := strconv.ParseFloat(string(x), 64); err == nil {
					cell.SetFloat(f)
				} else {
					cell.SetString(string(x))
				}
			case float64:
				cell.SetFloat(x)
			case int:
				cell.SetInt(x)
			case int64:
				cell.SetInt64(x)
			default:
				cell.SetValue(x)
			}
		}
	}
	return nil
}

func writeCSVSheet(sheet *CSVSheet, values Grid, at Ref) error {
	for i, row := range values {
		r := at.Row + i
		for len(sheet.Records) <= r {
			sheet.Records = append(sheet.Records, nil)
		}
		rec := sheet.Records[r]
		for j, v := range row {
			c := at.Col + j
			for len(rec) <= c {
				rec = append(rec, "")
			}
			if v != nil {
				rec[c] = renderString(v)
			}
		}
		sheet.Records[r] = rec
	}
	return nil
}

func renderString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case Number:
		return string(x)
	case CellError:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprint(v)
}
