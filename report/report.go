// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package report turns raw sales transaction files into the monthly
// revenue summary and renders it as a styled workbook, a PDF or
// through any spreadsheet Writer.
package report

import (
	"errors"
	"sort"
	"time"
)

// Transaction is one sales record from the raw data files.
type Transaction struct {
	Date   time.Time
	Store  string
	Amount float64
}

// Summary is the pivoted report: one row per month, labelled with the
// month's last day, one column per store. Stores are ordered by their
// total revenue, smallest first.
type Summary struct {
	Months []time.Time
	Stores []string
	// Cells[m][s] is the revenue of Stores[s] in Months[m].
	Cells [][]float64
}

// ErrNoData is returned by Summarize when there is nothing to report on.
var ErrNoData = errors.New("no transactions")

// Summarize pivots the transactions into the per-month, per-store
// revenue table. Months between the first and the last transaction
// stay in the table even when nothing was sold in them.
func Summarize(transactions []Transaction) (*Summary, error) {
	if len(transactions) == 0 {
		return nil, ErrNoData
	}
	sums := make(map[time.Time]map[string]float64)
	totals := make(map[string]float64)
	var first, last time.Time
	for _, tx := range transactions {
		m := MonthEnd(tx.Date)
		if first.IsZero() || m.Before(first) {
			first = m
		}
		if m.After(last) {
			last = m
		}
		byStore := sums[m]
		if byStore == nil {
			byStore = make(map[string]float64)
			sums[m] = byStore
		}
		byStore[tx.Store] += tx.Amount
		totals[tx.Store] += tx.Amount
	}

	var months []time.Time
	for m := first; !m.After(last); m = MonthEnd(m.AddDate(0, 0, 1)) {
		months = append(months, m)
	}
	stores := make([]string, 0, len(totals))
	for store := range totals {
		stores = append(stores, store)
	}
	sort.Slice(stores, func(i, j int) bool {
		if totals[stores[i]] != totals[stores[j]] {
			return totals[stores[i]] < totals[stores[j]]
		}
		return stores[i] < stores[j]
	})

	cells := make([][]float64, len(months))
	for i, m := range months {
		row := make([]float64, len(stores))
		for j, store := range stores {
			row[j] = sums[m][store]
		}
		cells[i] = row
	}
	return &Summary{Months: months, Stores: stores, Cells: cells}, nil
}

// MonthEnd returns the last day of t's month.
func MonthEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// RowTotal is the revenue of all stores in month i.
func (s *Summary) RowTotal(i int) float64 {
	var sum float64
	for _, v := range s.Cells[i] {
		sum += v
	}
	return sum
}

// StoreTotal is the revenue of store column j over all months.
func (s *Summary) StoreTotal(j int) float64 {
	var sum float64
	for _, row := range s.Cells {
		sum += row[j]
	}
	return sum
}

// GrandTotal is the revenue of all stores over all months.
func (s *Summary) GrandTotal() float64 {
	var sum float64
	for i := range s.Cells {
		sum += s.RowTotal(i)
	}
	return sum
}
