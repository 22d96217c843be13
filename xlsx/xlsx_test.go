// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlsx

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/UNO-SOFT/xlgrid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

func TestWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	sheet, err := w.NewSheet("Eladás", []xlgrid.Column{
		{Name: "date", Header: xlgrid.Style{FontBold: true}},
		{Name: "amount", Header: xlgrid.Style{FontBold: true}, Column: xlgrid.Style{Format: "#,##0"}},
		{Name: "note"},
	})
	if err != nil {
		t.Fatal(err)
	}
	day := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, row := range [][]interface{}{
		{day, 12345.0, "ok"},
		{sql.NullTime{}, sql.NullFloat64{Float64: 2.5, Valid: true}, xlgrid.CellError("#N/A")},
		{sql.NullInt64{Int64: 42, Valid: true}, sql.NullString{String: "sz", Valid: true}, nil},
	} {
		if err = sheet.AppendRow(row...); err != nil {
			t.Fatalf("%d. %+v", i, err)
		}
	}
	if err = sheet.Close(); err != nil {
		t.Fatal(err)
	}
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := xlgrid.Read(xlgrid.ExcelizeSheet{File: f, Name: "Eladás"})
	if err != nil {
		t.Fatal(err)
	}
	want := xlgrid.Grid{
		{"date", "amount", "note"},
		{day, 12345.0, "ok"},
		{nil, 2.5, xlgrid.CellErrNA},
		{42.0, "sz", nil},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, wanted %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("row %d: got %v, wanted %v", i, got[i], want[i])
		}
		for j, x := range want[i] {
			g := got[i][j]
			if wt, ok := x.(time.Time); ok {
				if gt, ok := g.(time.Time); ok && gt.Equal(wt) {
					continue
				}
			} else if g == x {
				continue
			}
			t.Errorf("[%d][%d]: got %#v (%T), wanted %#v", i, j, g, g, x)
		}
	}
}

func TestTooManyRows(t *testing.T) {
	w := NewWriter(new(bytes.Buffer))
	sheet, err := w.NewSheet("big", nil)
	if err != nil {
		t.Fatal(err)
	}
	sheet.(*XLSXSheet).row = MaxRowCount
	if err = sheet.AppendRow("overflow"); !errors.Is(err, xlgrid.ErrTooManyRows) {
		t.Errorf("got %v, wanted ErrTooManyRows", err)
	}
}

func TestConcurrentSheets(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	var grp errgroup.Group
	for _, name := range []string{"first", "second"} {
		sheet, err := w.NewSheet(name, []xlgrid.Column{{Name: "n"}})
		if err != nil {
			t.Fatal(err)
		}
		grp.Go(func() error {
			defer sheet.Close()
			for i := 0; i < 100; i++ {
				if err := sheet.AppendRow(i); err != nil {
					return fmt.Errorf("%d: %w", i, err)
				}
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	for _, name := range []string{"first", "second"} {
		rows, err := f.GetRows(name)
		if err != nil {
			t.Fatal(err)
		}
		if len(rows) != 101 {
			t.Errorf("%q: got %d rows, wanted 101", name, len(rows))
		}
	}
}
