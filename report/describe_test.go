// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"errors"
	"math"
	"testing"

	"github.com/UNO-SOFT/xlgrid"
)

func TestDescribe(t *testing.T) {
	got, err := Describe(xlgrid.Grid{
		{"n", "label", "price", "once"},
		{1.0, "a", 10.5, 7.0},
		{2.0, "b", 20.5, nil},
		{3.0, "c", nil, nil},
		{4.0, "d", nil, nil},
	})
	if err != nil {
		t.Fatal(err)
	}
	// The label column holds strings, so it is dropped.
	want := xlgrid.Grid{
		{nil, "n", "price", "once"},
		{"count", 4.0, 2.0, 1.0},
		{"mean", 2.5, 15.5, 7.0},
		{"std", 1.2909944487358056, 7.0710678118654755, nil},
		{"min", 1.0, 10.5, 7.0},
		{"25%", 1.75, 13.0, 7.0},
		{"50%", 2.5, 15.5, 7.0},
		{"75%", 3.25, 18.0, 7.0},
		{"max", 4.0, 20.5, 7.0},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, wanted %d: %v", len(got), len(want), got)
	}
	for i, wantRow := range want {
		if len(got[i]) != len(wantRow) {
			t.Fatalf("row %d: got %d cells, wanted %d: %v", i, len(got[i]), len(wantRow), got[i])
		}
		for j, w := range wantRow {
			g := got[i][j]
			if wf, ok := w.(float64); ok {
				if gf, ok := g.(float64); ok && math.Abs(gf-wf) < 1e-9 {
					continue
				}
			} else if g == w {
				continue
			}
			t.Errorf("[%d][%d]: got %#v, wanted %#v", i, j, g, w)
		}
	}
}

func TestDescribeNoData(t *testing.T) {
	for i, grid := range []xlgrid.Grid{
		nil,
		{{"name"}, {"only"}, {"strings"}},
		{{"empty"}},
	} {
		if _, err := Describe(grid); !errors.Is(err, ErrNoData) {
			t.Errorf("%d. got %v, wanted ErrNoData", i, err)
		}
	}
}

func TestQuantile(t *testing.T) {
	for i, tc := range []struct {
		values []float64
		q      float64
		want   float64
	}{
		{[]float64{15, 20, 35, 40, 50}, 0.4, 29},
		{[]float64{15, 20, 35, 40, 50}, 0.25, 20},
		{[]float64{1, 2, 3, 4}, 0.25, 1.75},
		{[]float64{1, 2}, 0.5, 1.5},
		{[]float64{5}, 0.75, 5},
		{[]float64{3, 1, 2}, 0, 1},
		{[]float64{3, 1, 2}, 1, 3},
	} {
		if got := quantile(tc.values, tc.q); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%d. quantile(%v, %v): got %v, wanted %v", i, tc.values, tc.q, got, tc.want)
		}
	}
}
