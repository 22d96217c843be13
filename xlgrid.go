// Copyright 2020, 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package xlgrid reads and writes rectangular ranges of spreadsheet files,
// hiding the differences between the underlying libraries' object models
// (excelize, tealeg/xlsx, extrame/xls, go-xlsb and plain CSV).
package xlgrid

import (
	"errors"
	"fmt"
	"io"
)

// Writer writes the spreadsheet consisting of the sheets created
// with NewSheet. The write finishes when Close is called.
//
// The writer SHOULD allow writing to separate sheets concurrently,
// and document if it does not provide this functionality.
type Writer interface {
	io.Closer
	NewSheet(name string, cols []Column) (Sheet, error)
}

// Sheet should be Closed when finished.
type Sheet interface {
	io.Closer
	AppendRow(values ...any) error
}

// Style is a style for a column/row/cell.
type Style struct {
	// Format is the number format
	Format string
	// FontBold is true if the font is bold
	FontBold bool
}

// Column contains the Name of the column and header's style and column's style.
type Column struct {
	Name           string
	Header, Column Style
}

var (
	ErrTooManyRows = errors.New("too many rows")

	// ErrUnknownSheet is returned when Read or Write is given a sheet
	// object of a type it does not handle.
	ErrUnknownSheet = errors.New("unknown sheet type")
)

// Number is a string that contains a number.
type Number string

// Grid is a rectangular block of cell values, row-major.
// The element types are those produced by Read: nil, string, float64,
// bool, time.Time and CellError.
type Grid [][]any

// WriteGrid writes grid as one sheet of w.
// The column headers (if any) come from cols, not from the grid.
func WriteGrid(w Writer, name string, cols []Column, grid Grid) error {
	sheet, err := w.NewSheet(name, cols)
	if err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}
	for i, row := range grid {
		if err := sheet.AppendRow(row...); err != nil {
			return fmt.Errorf("%q row %d: %w", name, i, err)
		}
	}
	return sheet.Close()
}
