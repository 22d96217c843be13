// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Command pkgtracker maintains the package tracker workbook from the
// command line: create the workbook and database, add packages, pull
// the release history from PyPI and refresh the workbook's dropdown.
//
// Flags can come from the command line, from PKGTRACKER_* environment
// variables (a .env file is honored) or from a TOML config file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/BurntSushi/toml"
	"github.com/UNO-SOFT/zlog/v2"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/UNO-SOFT/xlgrid/pkgtrack"
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
	// Local overrides (DSN, API base URL) usually live in a .env file.
	_ = godotenv.Load()

	fs := flag.NewFlagSet("pkgtracker", flag.ContinueOnError)
	fs.Var(&verbose, "v", "logging verbosity")
	flagDB := fs.String("db", "packagetracker.db", "database DSN (SQLite file or postgres:// URL)")
	flagBook := fs.String("book", "packagetracker.xlsx", "tracker workbook")
	flagPyPI := fs.String("pypi", pkgtrack.BaseURL, "PyPI JSON API base URL")
	fs.String("config", "", "TOML config file")

	openTracker := func(ctx context.Context) (*pkgtrack.Tracker, error) {
		store, err := pkgtrack.OpenStore(ctx, *flagDB)
		if err != nil {
			return nil, err
		}
		if err = store.Init(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return &pkgtrack.Tracker{
			Store: store,
			PyPI:  pkgtrack.NewClient(*flagPyPI),
			Book:  *flagBook,
		}, nil
	}

	initCmd := &ffcli.Command{Name: "init",
		ShortUsage: "pkgtracker init",
		ShortHelp:  "create the workbook and the database schema",
		Exec: func(ctx context.Context, args []string) error {
			store, err := pkgtrack.OpenStore(ctx, *flagDB)
			if err != nil {
				return err
			}
			defer store.Close()
			if err = store.Init(ctx); err != nil {
				return err
			}
			if err = pkgtrack.InitWorkbook(*flagBook); err != nil {
				return err
			}
			logger.Info("initialized", "book", *flagBook, "db", *flagDB)
			return nil
		},
	}

	addCmd := &ffcli.Command{Name: "add",
		ShortUsage: "pkgtracker add NAME",
		ShortHelp:  "track a new package and download its history",
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return flag.ErrHelp
			}
			t, err := openTracker(ctx)
			if err != nil {
				return err
			}
			defer t.Store.Close()
			if err = t.SetNewPackage(args[0]); err != nil {
				return err
			}
			return t.AddPackage(ctx)
		},
	}

	updateCmd := &ffcli.Command{Name: "update",
		ShortUsage: "pkgtracker update",
		ShortHelp:  "refetch the version history of every tracked package",
		Exec: func(ctx context.Context, args []string) error {
			t, err := openTracker(ctx)
			if err != nil {
				return err
			}
			defer t.Store.Close()
			return t.UpdateDatabase(ctx)
		},
	}

	historyCmd := &ffcli.Command{Name: "history",
		ShortUsage: "pkgtracker history [NAME]",
		ShortHelp:  "show the latest release and chart the releases per year",
		Exec: func(ctx context.Context, args []string) error {
			t, err := openTracker(ctx)
			if err != nil {
				return err
			}
			defer t.Store.Close()
			if len(args) != 0 {
				if err = t.SelectPackage(args[0]); err != nil {
					return err
				}
			}
			return t.ShowHistory(ctx)
		},
	}

	refreshCmd := &ffcli.Command{Name: "refresh",
		ShortUsage: "pkgtracker refresh",
		ShortHelp:  "refresh the package dropdown from the database",
		Exec: func(ctx context.Context, args []string) error {
			t, err := openTracker(ctx)
			if err != nil {
				return err
			}
			defer t.Store.Close()
			return t.RefreshDropdown(ctx)
		},
	}

	app := ffcli.Command{Name: "pkgtracker", FlagSet: fs,
		ShortUsage: "pkgtracker [flags] <subcommand>",
		Options: []ff.Option{
			ff.WithEnvVarPrefix("PKGTRACKER"),
			ff.WithConfigFileFlag("config"),
			ff.WithConfigFileParser(tomlConfig),
		},
		Subcommands: []*ffcli.Command{initCmd, addCmd, updateCmd, historyCmd, refreshCmd},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
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

// tomlConfig feeds the top-level keys of a TOML file into the flag set.
func tomlConfig(r io.Reader, set func(name, value string) error) error {
	var conf map[string]any
	if _, err := toml.NewDecoder(r).Decode(&conf); err != nil {
		return err
	}
	for name, value := range conf {
		if _, ok := value.(map[string]any); ok {
			continue
		}
		if err := set(name, fmt.Sprint(value)); err != nil {
			return err
		}
	}
	return nil
}
