// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlgrid

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/TsubasaBE/go-xlsb/workbook"
	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// SheetNames returns the sheet names of the workbook, without loading
// cell data. A CSV file counts as one sheet named after the file.
func SheetNames(filename string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(filename)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", filename, err)
		}
		names := f.GetSheetList()
		return names, f.Close()

	case ".xls":
		wb, closer, err := xls.OpenWithCloser(filename, "utf-8")
		if err != nil {
			return nil, fmt.Errorf("%q: %w", filename, err)
		}
		defer closer.Close()
		names := make([]string, 0, wb.NumSheets())
		for i := 0; i < wb.NumSheets(); i++ {
			if sheet := wb.GetSheet(i); sheet != nil {
				names = append(names, sheet.Name)
			}
		}
		return names, nil

	case ".xlsb":
		wb, err := workbook.Open(filename)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", filename, err)
		}
		names := wb.Sheets()
		return names, wb.Close()

	case ".csv":
		return []string{strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))}, nil
	}
	return nil, fmt.Errorf("%q: unknown workbook extension", filename)
}

// LoadWorkbook reads the named sheets of the workbook into Grids,
// loading the sheets concurrently with an independently opened workbook
// handle per sheet. With no sheet names given it loads every sheet.
// The first failing sheet cancels the rest.
func LoadWorkbook(ctx context.Context, filename string, sheets ...string) (map[string]Grid, error) {
	names := sheets
	if len(names) == 0 {
		var err error
		if names, err = SheetNames(filename); err != nil {
			return nil, err
		}
	}
	grids := make([]Grid, len(names))
	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			grid, err := loadSheet(filename, name)
			if err != nil {
				return fmt.Errorf("%q sheet %q: %w", filename, name, err)
			}
			grids[i] = grid
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	m := make(map[string]Grid, len(names))
	for i, name := range names {
		m[name] = grids[i]
	}
	return m, nil
}

func loadSheet(filename, sheet string) (Grid, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		f, err := excelize.OpenFile(filename)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return Read(ExcelizeSheet{File: f, Name: sheet})

	case ".xls":
		wb, closer, err := xls.OpenWithCloser(filename, "utf-8")
		if err != nil {
			return nil, err
		}
		defer closer.Close()
		for i := 0; i < wb.NumSheets(); i++ {
			if ws := wb.GetSheet(i); ws != nil && ws.Name == sheet {
				return Read(ws)
			}
		}
		return nil, fmt.Errorf("no such sheet")

	case ".xlsb":
		wb, err := workbook.Open(filename)
		if err != nil {
			return nil, err
		}
		defer wb.Close()
		ws, err := wb.SheetByName(sheet)
		if err != nil {
			return nil, err
		}
		return Read(ws)

	case ".csv":
		cs, err := OpenCSVSheet(filename, EncName)
		if err != nil {
			return nil, err
		}
		return Read(cs)
	}
	return nil, fmt.Errorf("unknown workbook extension")
}
