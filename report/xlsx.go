// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/UNO-SOFT/xlgrid"
)

const (
	sheetName = "Sheet1"
	// Table position, 0-based.
	startRow, startCol = 2, 1
	// Monthly revenue below this renders red.
	monthlyTarget = 20000
)

// WriteXLSX renders the summary as the styled report workbook: title,
// formatted table with totals, below-target highlighting and a column
// chart of the monthly revenue per store.
func WriteXLSX(path string, s *Summary) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := writeXLSX(f, s); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %q: %w", path, err)
	}
	return nil
}

func writeXLSX(f *excelize.File, s *Summary) error {
	// Number of table rows and columns, not counting the Month column
	// but counting the totals.
	nrows, ncols := len(s.Months)+1, len(s.Stores)+1

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 24}})
	if err != nil {
		return err
	}
	monthFmt := "mmm yy"
	monthStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &monthFmt})
	if err != nil {
		return err
	}
	numFmt := "#,##0"
	numStyle, err := f.NewStyle(&excelize.Style{
		CustomNumFmt: &numFmt,
		Alignment:    &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	title := xlgrid.Ref{Row: 0, Col: startCol}
	if err = f.SetCellStr(sheetName, title.String(), "Sales Report"); err != nil {
		return err
	}
	if err = f.SetCellStyle(sheetName, title.String(), title.String(), titleStyle); err != nil {
		return err
	}
	showGridLines := false
	if err = f.SetSheetView(sheetName, 0, &excelize.ViewOptions{ShowGridLines: &showGridLines}); err != nil {
		return err
	}

	// Header row.
	header := xlgrid.Ref{Row: startRow, Col: startCol}
	if err = f.SetCellStr(sheetName, header.String(), "Month"); err != nil {
		return err
	}
	for j, store := range s.Stores {
		cell := xlgrid.Ref{Row: startRow, Col: startCol + 1 + j}
		if err = f.SetCellStr(sheetName, cell.String(), store); err != nil {
			return err
		}
	}
	cell := xlgrid.Ref{Row: startRow, Col: startCol + ncols}
	if err = f.SetCellStr(sheetName, cell.String(), "Total"); err != nil {
		return err
	}

	// Month rows with their row totals.
	for i, month := range s.Months {
		cell := xlgrid.Ref{Row: startRow + 1 + i, Col: startCol}
		if err = f.SetCellFloat(sheetName, cell.String(), xlgrid.TimeToSerial(month, false), -1, 64); err != nil {
			return err
		}
		for j := range s.Stores {
			cell.Col = startCol + 1 + j
			if err = f.SetCellFloat(sheetName, cell.String(), s.Cells[i][j], -1, 64); err != nil {
				return err
			}
		}
		cell.Col = startCol + ncols
		if err = f.SetCellFloat(sheetName, cell.String(), s.RowTotal(i), -1, 64); err != nil {
			return err
		}
	}

	// Totals row.
	totalRow := xlgrid.Ref{Row: startRow + nrows, Col: startCol}
	if err = f.SetCellStr(sheetName, totalRow.String(), "Total"); err != nil {
		return err
	}
	for j := range s.Stores {
		totalRow.Col = startCol + 1 + j
		if err = f.SetCellFloat(sheetName, totalRow.String(), s.StoreTotal(j), -1, 64); err != nil {
			return err
		}
	}
	totalRow.Col = startCol + ncols
	if err = f.SetCellFloat(sheetName, totalRow.String(), s.GrandTotal(), -1, 64); err != nil {
		return err
	}

	// Formats: months down the first column, numbers in the data block,
	// a uniform width for all table columns.
	monthFirst := xlgrid.Ref{Row: startRow + 1, Col: startCol}
	monthLast := xlgrid.Ref{Row: startRow + len(s.Months), Col: startCol}
	if err = f.SetCellStyle(sheetName, monthFirst.String(), monthLast.String(), monthStyle); err != nil {
		return err
	}
	numFirst := xlgrid.Ref{Row: startRow + 1, Col: startCol + 1}
	numLast := xlgrid.Ref{Row: startRow + nrows, Col: startCol + ncols}
	if err = f.SetCellStyle(sheetName, numFirst.String(), numLast.String(), numStyle); err != nil {
		return err
	}
	if err = f.SetColWidth(sheetName, xlgrid.ColName(startCol), xlgrid.ColName(startCol+ncols), 14); err != nil {
		return err
	}

	redFont, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "E93423"}})
	if err != nil {
		return err
	}
	if err = f.SetConditionalFormat(sheetName,
		numFirst.String()+":"+numLast.String(),
		[]excelize.ConditionalFormatOptions{{
			Type:       "cell",
			Criteria:   "<",
			Value:      fmt.Sprintf("%d", monthlyTarget),
			Format:     &redFont,
			StopIfTrue: true,
		}},
	); err != nil {
		return err
	}

	// One series per store, without the totals.
	series := make([]excelize.ChartSeries, 0, len(s.Stores))
	catFirst := xlgrid.Ref{Row: startRow + 1, Col: startCol}
	catLast := xlgrid.Ref{Row: startRow + len(s.Months), Col: startCol}
	categories := fmt.Sprintf("%s!$%s$%d:$%s$%d", sheetName,
		xlgrid.ColName(catFirst.Col), catFirst.Row+1,
		xlgrid.ColName(catLast.Col), catLast.Row+1)
	for j := range s.Stores {
		colName := xlgrid.ColName(startCol + 1 + j)
		series = append(series, excelize.ChartSeries{
			Name: fmt.Sprintf("%s!$%s$%d", sheetName, colName, startRow+1),
			Values: fmt.Sprintf("%s!$%s$%d:$%s$%d", sheetName,
				colName, startRow+2, colName, startRow+1+len(s.Months)),
			Categories: categories,
		})
	}
	anchor := xlgrid.Ref{Row: startRow + nrows + 2, Col: startCol}
	return f.AddChart(sheetName, anchor.String(), &excelize.Chart{
		Type:      excelize.Col,
		Series:    series,
		Title:     []excelize.RichTextRun{{Text: "Sales per Month and Store"}},
		XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Month"}}},
		YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Sales"}}},
		Dimension: excelize.ChartDimension{Width: 830, Height: 450},
	})
}
