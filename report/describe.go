// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"math"
	"sort"

	"github.com/UNO-SOFT/xlgrid"
)

// Describe computes the usual summary statistics (count, mean, std,
// min, quartiles, max) for the numeric columns of a grid whose first
// row names the columns. Columns holding anything but numbers are left
// out, an undefined std (below two values) comes back as a nil cell.
func Describe(grid xlgrid.Grid) (xlgrid.Grid, error) {
	if len(grid) == 0 {
		return nil, ErrNoData
	}
	var names []string
	var columns [][]float64
	for j, v := range grid[0] {
		name, _ := v.(string)
		var values []float64
		numeric := true
		for _, row := range grid[1:] {
			if j >= len(row) || row[j] == nil {
				continue
			}
			f, ok := cellFloat(row[j])
			if !ok {
				numeric = false
				break
			}
			values = append(values, f)
		}
		if !numeric || len(values) == 0 {
			continue
		}
		names = append(names, name)
		columns = append(columns, values)
	}
	if len(columns) == 0 {
		return nil, ErrNoData
	}

	out := make(xlgrid.Grid, 0, 9)
	header := make([]any, 1, len(names)+1)
	for _, name := range names {
		header = append(header, name)
	}
	out = append(out, header)
	for _, stat := range []struct {
		name string
		fn   func([]float64) any
	}{
		{"count", func(v []float64) any { return float64(len(v)) }},
		{"mean", func(v []float64) any { return mean(v) }},
		{"std", stddev},
		{"min", func(v []float64) any { return quantile(v, 0) }},
		{"25%", func(v []float64) any { return quantile(v, 0.25) }},
		{"50%", func(v []float64) any { return quantile(v, 0.5) }},
		{"75%", func(v []float64) any { return quantile(v, 0.75) }},
		{"max", func(v []float64) any { return quantile(v, 1) }},
	} {
		row := make([]any, 1, len(columns)+1)
		row[0] = stat.name
		for _, values := range columns {
			row = append(row, stat.fn(values))
		}
		out = append(out, row)
	}
	return out, nil
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) any {
	if len(values) < 2 {
		return nil
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}

// quantile interpolates linearly between the two nearest order
// statistics, matching the numpy default.
func quantile(values []float64, q float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}
