// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFormatAmount(t *testing.T) {
	for i, tc := range []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{19999.4, "19,999"},
		{1234567, "1,234,567"},
	} {
		if got := formatAmount(tc.in); got != tc.want {
			t.Errorf("%d. formatAmount(%v): got %q, wanted %q", i, tc.in, got, tc.want)
		}
	}
}

func TestWritePDF(t *testing.T) {
	s, err := Summarize(testTransactions())
	if err != nil {
		t.Fatal(err)
	}
	fn := filepath.Join(t.TempDir(), "sales.pdf")
	if err = WritePDF(fn, s); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(fn)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Errorf("not a PDF: %.8q", b)
	}
	if len(b) < 1024 {
		t.Errorf("suspiciously small PDF: %d bytes", len(b))
	}
}

func TestWritePDFTooWide(t *testing.T) {
	stores := make([]string, 11)
	cells := [][]float64{make([]float64, len(stores))}
	for i := range stores {
		stores[i] = fmt.Sprintf("Store-%02d", i)
	}
	s := &Summary{
		Months: []time.Time{day(2021, 1, 31)},
		Stores: stores,
		Cells:  cells,
	}
	if err := WritePDF(filepath.Join(t.TempDir(), "wide.pdf"), s); err == nil {
		t.Error("11 stores: wanted an error")
	}
}
