// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/kylelemons/godebug/pretty"

	"github.com/UNO-SOFT/xlgrid"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testTransactions() []Transaction {
	return []Transaction{
		{Date: day(2021, 1, 5), Store: "Alpha", Amount: 12000},
		{Date: day(2021, 1, 20), Store: "Beta", Amount: 30000},
		{Date: day(2021, 2, 14), Store: "Alpha", Amount: 8000},
		{Date: day(2021, 4, 1), Store: "Beta", Amount: 1000},
		{Date: day(2021, 4, 30), Store: "Gamma", Amount: 5000},
	}
}

func TestMonthEnd(t *testing.T) {
	for i, tc := range []struct {
		in, want time.Time
	}{
		{day(2021, 1, 5), day(2021, 1, 31)},
		{day(2021, 12, 31), day(2021, 12, 31)},
		{day(2023, 2, 1), day(2023, 2, 28)},
		{day(2024, 2, 10), day(2024, 2, 29)},
		{time.Date(2021, 6, 15, 13, 14, 15, 0, time.UTC), day(2021, 6, 30)},
	} {
		if got := MonthEnd(tc.in); !got.Equal(tc.want) {
			t.Errorf("%d. MonthEnd(%v): got %v, wanted %v", i, tc.in, got, tc.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(testTransactions())
	if err != nil {
		t.Fatal(err)
	}
	wantMonths := []time.Time{
		day(2021, 1, 31), day(2021, 2, 28), day(2021, 3, 31), day(2021, 4, 30),
	}
	if len(s.Months) != len(wantMonths) {
		t.Fatalf("got %d months, wanted %d: %v", len(s.Months), len(wantMonths), s.Months)
	}
	for i, want := range wantMonths {
		if !s.Months[i].Equal(want) {
			t.Errorf("month %d: got %v, wanted %v", i, s.Months[i], want)
		}
	}
	// Smallest total first.
	if d := pretty.Compare(s.Stores, []string{"Gamma", "Alpha", "Beta"}); d != "" {
		t.Errorf("stores differ:\n%s", d)
	}
	if d := pretty.Compare(s.Cells, [][]float64{
		{0, 12000, 30000},
		{0, 8000, 0},
		{0, 0, 0},
		{5000, 0, 1000},
	}); d != "" {
		t.Errorf("cells differ:\n%s", d)
	}

	for i, want := range []float64{42000, 8000, 0, 6000} {
		if got := s.RowTotal(i); got != want {
			t.Errorf("RowTotal(%d): got %v, wanted %v", i, got, want)
		}
	}
	for j, want := range []float64{5000, 20000, 31000} {
		if got := s.StoreTotal(j); got != want {
			t.Errorf("StoreTotal(%d): got %v, wanted %v", j, got, want)
		}
	}
	if got := s.GrandTotal(); got != 56000 {
		t.Errorf("GrandTotal: got %v, wanted 56000", got)
	}
}

func TestSummarizeTieBreak(t *testing.T) {
	s, err := Summarize([]Transaction{
		{Date: day(2021, 1, 1), Store: "Pécs", Amount: 100},
		{Date: day(2021, 1, 2), Store: "Buda", Amount: 100},
	})
	if err != nil {
		t.Fatal(err)
	}
	// Equal totals fall back to name order.
	if d := pretty.Compare(s.Stores, []string{"Buda", "Pécs"}); d != "" {
		t.Errorf("stores differ:\n%s", d)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	if _, err := Summarize(nil); !errors.Is(err, ErrNoData) {
		t.Errorf("got %v, wanted ErrNoData", err)
	}
}

func TestWriteSummary(t *testing.T) {
	s, err := Summarize(testTransactions())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	cw := xlgrid.NewCSVWriter(&buf, 0)
	if err = WriteSummary(cw, "Sales", s); err != nil {
		t.Fatal(err)
	}
	if err = cw.Close(); err != nil {
		t.Fatal(err)
	}
	want := `Month,Gamma,Alpha,Beta,Total
2021-01-31,0,12000,30000,42000
2021-02-28,0,8000,0,8000
2021-03-31,0,0,0,0
2021-04-30,5000,0,1000,6000
Total,5000,20000,31000,56000
`
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwanted:\n%s", got, want)
	}
}
