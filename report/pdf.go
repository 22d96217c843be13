// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	belowTarget = props.Color{Red: 233, Green: 52, Blue: 35}
	zebra       = props.Color{Red: 239, Green: 239, Blue: 239}

	amountPrinter = message.NewPrinter(language.English)
)

// WritePDF renders the summary as a PDF table, months down the rows,
// stores across the columns, totals on both edges. Below-target months
// show red like in the workbook.
func WritePDF(path string, s *Summary) error {
	ncols := len(s.Stores) + 2
	size := 12 / ncols
	if size < 1 {
		return fmt.Errorf("%d stores do not fit the page", len(s.Stores))
	}
	// The month column soaks up the grid columns left over.
	monthSize := 12 - size*(ncols-1)

	m := maroto.New(config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithTopMargin(10).
		WithRightMargin(15).
		Build())

	m.AddRows(row.New(14).Add(
		text.NewCol(12, "Sales Report", props.Text{Size: 20, Style: fontstyle.Bold}),
	))

	header := make([]core.Col, 0, ncols)
	header = append(header, text.NewCol(monthSize, "Month",
		props.Text{Size: 9, Style: fontstyle.Bold}))
	for _, store := range s.Stores {
		header = append(header, text.NewCol(size, store,
			props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}))
	}
	header = append(header, text.NewCol(size, "Total",
		props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}))
	m.AddRows(row.New(8).Add(header...))

	for i, month := range s.Months {
		cells := make([]core.Col, 0, ncols)
		cells = append(cells, text.NewCol(monthSize, month.Format("Jan 06"),
			props.Text{Size: 9}))
		for j := range s.Stores {
			cells = append(cells, amountCol(size, s.Cells[i][j], false))
		}
		cells = append(cells, amountCol(size, s.RowTotal(i), false))
		r := row.New(7).Add(cells...)
		if i%2 == 1 {
			r.WithStyle(&props.Cell{BackgroundColor: &zebra})
		}
		m.AddRows(r)
	}

	totals := make([]core.Col, 0, ncols)
	totals = append(totals, text.NewCol(monthSize, "Total",
		props.Text{Size: 9, Style: fontstyle.Bold}))
	for j := range s.Stores {
		totals = append(totals, amountCol(size, s.StoreTotal(j), true))
	}
	totals = append(totals, amountCol(size, s.GrandTotal(), true))
	m.AddRows(row.New(8).Add(totals...))

	doc, err := m.Generate()
	if err != nil {
		return err
	}
	if err = doc.Save(path); err != nil {
		return fmt.Errorf("save %q: %w", path, err)
	}
	return nil
}

func amountCol(size int, v float64, bold bool) core.Col {
	p := props.Text{Size: 9, Align: align.Right}
	if bold {
		p.Style = fontstyle.Bold
	}
	if v < monthlyTarget {
		p.Color = &belowTarget
	}
	return text.NewCol(size, formatAmount(v), p)
}

// formatAmount renders v the way the workbook's "#,##0" format does.
func formatAmount(v float64) string {
	return amountPrinter.Sprintf("%.0f", v)
}
