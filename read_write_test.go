// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlgrid

import (
	"errors"
	"testing"
	"time"

	"github.com/kylelemons/godebug/pretty"
	tealeg "github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

func checkGrid(t *testing.T, got, want Grid) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d rows, wanted %d:\n%s", len(got), len(want), pretty.Sprint(got))
	}
	for i := range want {
		if len(got[i]) != len(want[i]) {
			t.Fatalf("row %d: got %d cells, wanted %d:\n%s", i, len(got[i]), len(want[i]), pretty.Sprint(got[i]))
		}
		for j, w := range want[i] {
			g := got[i][j]
			if wt, ok := w.(time.Time); ok {
				if gt, ok := g.(time.Time); ok && gt.Equal(wt) {
					continue
				}
			} else if g == w {
				continue
			}
			t.Errorf("[%d][%d]: got %#v (%T), wanted %#v (%T)", i, j, g, g, w, w)
		}
	}
}

func TestExcelizeRoundTrip(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := ExcelizeSheet{File: f, Name: "Sheet1"}
	day := time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)
	grid := Grid{
		{"name", "value", "when"},
		{"pi", 3.14159, day},
		{"total", true, nil},
		{"oops", CellErrDiv0, "x"},
	}
	if err := Write(sheet, grid); err != nil {
		t.Fatal(err)
	}
	got, err := Read(sheet)
	if err != nil {
		t.Fatal(err)
	}
	checkGrid(t, got, grid)
}

func TestExcelizeReadRange(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := ExcelizeSheet{File: f, Name: "Sheet1"}
	if err := WriteAt(sheet, Grid{{42.0, "x"}}, "B2", ""); err != nil {
		t.Fatal(err)
	}
	got, err := Read(sheet)
	if err != nil {
		t.Fatal(err)
	}
	checkGrid(t, got, Grid{
		{nil, nil, nil},
		{nil, 42.0, "x"},
	})

	// Windows may reach past the used range; the excess reads as nil.
	if got, err = ReadRange(sheet, "B2", "C4"); err != nil {
		t.Fatal(err)
	}
	checkGrid(t, got, Grid{
		{42.0, "x"},
		{nil, nil},
		{nil, nil},
	})

	if _, err = ReadRange(sheet, "B2", "A1"); err == nil {
		t.Error("B2:A1: wanted an error")
	}
	if _, err = ReadRange(sheet, "2B", ""); err == nil {
		t.Error("2B: wanted an error")
	}
}

func TestTealegRoundTrip(t *testing.T) {
	tf := tealeg.NewFile()
	sheet, err := tf.AddSheet("data")
	if err != nil {
		t.Fatal(err)
	}
	day := time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)
	grid := Grid{
		{"label", 1.5, true},
		{day, CellErrNA, "x"},
	}
	if err := Write(sheet, grid); err != nil {
		t.Fatal(err)
	}
	got, err := Read(sheet)
	if err != nil {
		t.Fatal(err)
	}
	checkGrid(t, got, grid)
}

func TestCSVSheetRoundTrip(t *testing.T) {
	cs := &CSVSheet{Name: "t"}
	day := time.Date(2021, 1, 2, 0, 0, 0, 0, time.UTC)
	if err := Write(cs, Grid{
		{"item", "count", "ok", "day", "code"},
		{"ice", 2.5, true, day, Number("007")},
	}); err != nil {
		t.Fatal(err)
	}
	wantRecords := [][]string{
		{"item", "count", "ok", "day", "code"},
		{"ice", "2.5", "TRUE", "2021-01-02", "007"},
	}
	if d := pretty.Compare(cs.Records, wantRecords); d != "" {
		t.Errorf("records differ (-got +want):\n%s", d)
	}

	got, err := Read(cs)
	if err != nil {
		t.Fatal(err)
	}
	// CSV stores strings only, so Number("007") reads back as the number 7.
	checkGrid(t, got, Grid{
		{"item", "count", "ok", "day", "code"},
		{"ice", 2.5, true, day, 7.0},
	})

	cs.Raw = true
	if got, err = Read(cs); err != nil {
		t.Fatal(err)
	}
	checkGrid(t, got, Grid{
		{"item", "count", "ok", "day", "code"},
		{"ice", "2.5", "TRUE", "2021-01-02", "007"},
	})
}

func TestUnknownSheetType(t *testing.T) {
	if _, err := Read(42); !errors.Is(err, ErrUnknownSheet) {
		t.Errorf("Read: got %v, wanted ErrUnknownSheet", err)
	}
	if err := Write(42, Grid{{1.0}}); !errors.Is(err, ErrUnknownSheet) {
		t.Errorf("Write: got %v, wanted ErrUnknownSheet", err)
	}
}
