// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"

	"github.com/UNO-SOFT/xlgrid"
)

// WriteSummary streams the summary table (header, month rows, totals
// row) into one sheet of w. The Writer picks the output format, so the
// same call serves XLSX, ODS and CSV.
func WriteSummary(w xlgrid.Writer, name string, s *Summary) error {
	cols := make([]xlgrid.Column, 0, len(s.Stores)+2)
	cols = append(cols, xlgrid.Column{
		Name:   "Month",
		Header: xlgrid.Style{FontBold: true},
		Column: xlgrid.Style{Format: "mmm yy"},
	})
	for _, store := range s.Stores {
		cols = append(cols, xlgrid.Column{
			Name:   store,
			Header: xlgrid.Style{FontBold: true},
			Column: xlgrid.Style{Format: "#,##0"},
		})
	}
	cols = append(cols, xlgrid.Column{
		Name:   "Total",
		Header: xlgrid.Style{FontBold: true},
		Column: xlgrid.Style{Format: "#,##0"},
	})

	sheet, err := w.NewSheet(name, cols)
	if err != nil {
		return fmt.Errorf("%q: %w", name, err)
	}
	for i, month := range s.Months {
		row := make([]any, 0, len(cols))
		row = append(row, month)
		for j := range s.Stores {
			row = append(row, s.Cells[i][j])
		}
		row = append(row, s.RowTotal(i))
		if err = sheet.AppendRow(row...); err != nil {
			return fmt.Errorf("%q row %d: %w", name, i, err)
		}
	}
	last := make([]any, 0, len(cols))
	last = append(last, "Total")
	for j := range s.Stores {
		last = append(last, s.StoreTotal(j))
	}
	last = append(last, s.GrandTotal())
	if err = sheet.AppendRow(last...); err != nil {
		return fmt.Errorf("%q totals: %w", name, err)
	}
	return sheet.Close()
}
