// Copyright 2020, 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Command csv2xlsx collects CSV files into one workbook, a sheet per
// file. The output extension picks the format: .xlsx, .ods or
// anything else for CSV again (useful for charset normalization).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
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
	"github.com/UNO-SOFT/xlgrid/xlsx"
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
	fs := flag.NewFlagSet("csv2xlsx", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	flagEnc := fs.String("charset", xlgrid.EncName, "csv charset name")
	flagOut := fs.String("o", "", "output file name (default stdout, ODS format)")

	app := ffcli.Command{Name: "csv2xlsx", FlagSet: fs,
		ShortUsage: "csv2xlsx [flags] [sheetname:]input.csv...",
		Exec: func(ctx context.Context, args []string) error {
			out := *flagOut
			fh := os.Stdout
			if !(out == "" || out == "-") {
				var err error
				if fh, err = os.Create(out); err != nil {
					return err
				}
			}
			defer fh.Close()
			var w xlgrid.Writer
			switch strings.ToLower(filepath.Ext(out)) {
			case ".xlsx", ".xlsm":
				w = xlsx.NewWriter(fh)
			case ".csv":
				w = xlgrid.NewCSVWriter(fh, ',')
			default:
				var err error
				if w, err = ods.NewWriter(fh); err != nil {
					return err
				}
			}

			if len(args) == 0 {
				args = []string{"-"}
			}
			for i, fn := range args {
				sheetName := fmt.Sprintf("Sheet%d", i+1)
				if i := strings.IndexByte(fn, ':'); i >= 0 {
					sheetName, fn = fn[:i], fn[i+1:]
				} else if fn != "" && fn != "-" {
					sheetName = strings.TrimSuffix(filepath.Base(fn), ".csv")
				}
				if err := copyFile(w, sheetName, fn, *flagEnc); err != nil {
					return fmt.Errorf("%q: %w", fn, err)
				}
				logger.Info("copied", "file", fn, "sheet", sheetName)
			}

			if err := w.Close(); err != nil {
				return err
			}
			return fh.Close()
		},
	}

	if err := app.Parse(os.Args[1:]); err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return app.Run(ctx)
}

func copyFile(w xlgrid.Writer, sheetName, fn, encName string) error {
	cr, err := xlgrid.OpenCsv(fn, encName)
	if err != nil {
		return err
	}
	defer cr.Close()

	row, err := cr.Read()
	if err != nil {
		return err
	}
	cols := make([]xlgrid.Column, len(row))
	for i, name := range row {
		cols[i].Name = name
		cols[i].Header.FontBold = true
	}
	sheet, err := w.NewSheet(sheetName, cols)
	if err != nil {
		return err
	}

	var values []any
	for {
		if row, err = cr.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		values = values[:0]
		for _, s := range row {
			values = append(values, s)
		}
		if err = sheet.AppendRow(values...); err != nil {
			return err
		}
	}
	return sheet.Close()
}
