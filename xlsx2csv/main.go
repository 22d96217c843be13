// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Command xlsx2csv dumps workbook sheets as CSV. It reads .xlsx,
// .xlsm, .xls and .xlsb files, a single selected sheet to stdout or
// every sheet into a directory of CSV files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/UNO-SOFT/xlgrid"
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
	fs := flag.NewFlagSet("xlsx2csv", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	flagSheet := fs.String("sheet", "", "dump only the named sheet")
	flagOut := fs.String("o", "", "output file, or directory for multi-sheet dumps (default stdout)")
	flagSep := fs.String("d", ",", "field separator")

	app := ffcli.Command{Name: "xlsx2csv", FlagSet: fs,
		ShortUsage: "xlsx2csv [flags] workbook.xlsx",
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return flag.ErrHelp
			}
			fn := args[0]
			sep := ','
			if *flagSep != "" {
				sep = ([]rune(*flagSep))[0]
			}

			var sheets []string
			if *flagSheet != "" {
				sheets = []string{*flagSheet}
			}
			grids, err := xlgrid.LoadWorkbook(ctx, fn, sheets...)
			if err != nil {
				return err
			}
			if sheets == nil {
				for name := range grids {
					sheets = append(sheets, name)
				}
				sort.Strings(sheets)
			}

			out := *flagOut
			if fi, err := os.Stat(out); out != "" && (err == nil && fi.IsDir() || len(sheets) > 1) {
				if err != nil {
					if err = os.MkdirAll(out, 0o750); err != nil {
						return err
					}
				}
				base := strings.TrimSuffix(filepath.Base(fn), filepath.Ext(fn))
				for _, name := range sheets {
					dest := filepath.Join(out, base+"-"+sheetFileName(name)+".csv")
					if err := dumpSheet(dest, grids[name], sep); err != nil {
						return fmt.Errorf("%q: %w", dest, err)
					}
					logger.Info("dumped", "sheet", name, "file", dest)
				}
				return nil
			}
			if len(sheets) > 1 {
				return fmt.Errorf("%q has %d sheets, use -sheet or point -o at a directory", fn, len(sheets))
			}
			return dumpSheet(out, grids[sheets[0]], sep)
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

func dumpSheet(fn string, grid xlgrid.Grid, sep rune) error {
	fh := os.Stdout
	if !(fn == "" || fn == "-") {
		var err error
		if fh, err = os.Create(fn); err != nil {
			return err
		}
	}
	defer fh.Close()
	w := xlgrid.NewCSVWriter(fh, sep)
	if err := xlgrid.WriteGrid(w, "", nil, grid); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return fh.Close()
}

// sheetFileName makes the sheet name safe as a file name part.
func sheetFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
