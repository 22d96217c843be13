// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Command salesreport reads the raw transaction files under a
// directory and writes the monthly revenue summary. The output
// extension picks the format: .xlsx (styled workbook with chart),
// .pdf, .ods or .csv. The describe subcommand prints summary
// statistics of any workbook's numeric columns instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/UNO-SOFT/xlgrid"
	"github.com/UNO-SOFT/xlgrid/ods"
	"github.com/UNO-SOFT/xlgrid/report"
)

var verbose zlog.VerboseVar
var logger = zlog.NewLogger(zlog.MaybeConsoleHandler(&verbose, os.Stderr)).SLog()

func main() {
	if err := Main(); err != nil {
		slog.Error("MAIN", "error", err)
		os.Exit(1)
	}
}

func Main() error {
	fs := flag.NewFlagSet("salesreport", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	flagOut := fs.String("o", "sales_report.xlsx", "output file name")

	describeFS := flag.NewFlagSet("salesreport describe", flag.ContinueOnError)
	flagSheet := describeFS.String("sheet", "", "sheet to describe (default: the first)")
	describeCmd := &ffcli.Command{Name: "describe", FlagSet: describeFS,
		ShortUsage: "salesreport describe [-sheet name] file",
		ShortHelp:  "print summary statistics of the numeric columns as CSV",
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return flag.ErrHelp
			}
			fn, sheet := args[0], *flagSheet
			if sheet == "" {
				names, err := xlgrid.SheetNames(fn)
				if err != nil {
					return err
				}
				if len(names) == 0 {
					return fmt.Errorf("%q: no sheets", fn)
				}
				sheet = names[0]
			}
			grids, err := xlgrid.LoadWorkbook(ctx, fn, sheet)
			if err != nil {
				return err
			}
			stats, err := report.Describe(grids[sheet])
			if err != nil {
				return fmt.Errorf("%q: %w", fn, err)
			}
			w := xlgrid.NewCSVWriter(os.Stdout, ',')
			if err = xlgrid.WriteGrid(w, sheet, nil, stats); err != nil {
				return err
			}
			return w.Close()
		},
	}

	app := ffcli.Command{Name: "salesreport", FlagSet: fs,
		ShortUsage: "salesreport [flags] [datadir]",
		Subcommands: []*ffcli.Command{describeCmd},
		Exec: func(ctx context.Context, args []string) error {
			dir := "sales_data"
			if len(args) != 0 {
				dir = args[0]
			}
			transactions, err := report.ReadDir(ctx, dir)
			if err != nil {
				return err
			}
			summary, err := report.Summarize(transactions)
			if err != nil {
				return fmt.Errorf("%q: %w", dir, err)
			}
			logger.Info("summarized", "transactions", len(transactions),
				"months", len(summary.Months), "stores", len(summary.Stores))

			out := *flagOut
			switch strings.ToLower(filepath.Ext(out)) {
			case ".xlsx", ".xlsm":
				return report.WriteXLSX(out, summary)
			case ".pdf":
				return report.WritePDF(out, summary)
			case ".ods":
				fh, err := os.Create(out)
				if err != nil {
					return err
				}
				defer fh.Close()
				w, err := ods.NewWriter(fh)
				if err != nil {
					return err
				}
				if err = report.WriteSummary(w, "Sheet1", summary); err != nil {
					return err
				}
				if err = w.Close(); err != nil {
					return err
				}
				return fh.Close()
			case ".csv", "":
				fh := os.Stdout
				if !(out == "" || out == "-") {
					if fh, err = os.Create(out); err != nil {
						return err
					}
				}
				defer fh.Close()
				w := xlgrid.NewCSVWriter(fh, ',')
				if err = report.WriteSummary(w, "Sheet1", summary); err != nil {
					return err
				}
				if err = w.Close(); err != nil {
					return err
				}
				return fh.Close()
			}
			return fmt.Errorf("%q: unknown output format", out)
		},
	}

	if err := app.Parse(os.Args[1:]); err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx = zlog.NewSContext(ctx, logger)
	return app.Run(ctx)
}
