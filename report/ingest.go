// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/UNO-SOFT/zlog/v2"
	"golang.org/x/sync/errgroup"

	"github.com/UNO-SOFT/xlgrid"
)

// ReadDir collects the transactions of every data file under dir,
// subdirectories included. The files are read concurrently.
func ReadDir(ctx context.Context, dir string) ([]Transaction, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// ~$ files are Excel's lock files.
		if d.IsDir() || strings.HasPrefix(d.Name(), "~$") {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx", ".xlsm", ".xls", ".xlsb", ".csv":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", dir, err)
	}
	sort.Strings(files)

	logger := zlog.SFromContext(ctx)
	parts := make([][]Transaction, len(files))
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		grp.Go(func() error {
			logger.Info("reading", "file", filepath.Base(path))
			part, err := ReadFile(grpCtx, path)
			if err != nil {
				return fmt.Errorf("%q: %w", path, err)
			}
			parts[i] = part
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	var transactions []Transaction
	for _, part := range parts {
		transactions = append(transactions, part...)
	}
	return transactions, nil
}

// ReadFile parses the transactions from the first sheet of the
// workbook. The sheet must have a header row naming at least the
// transaction_date, store and amount columns.
func ReadFile(ctx context.Context, path string) ([]Transaction, error) {
	names, err := xlgrid.SheetNames(path)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%q: no sheets", path)
	}
	grids, err := xlgrid.LoadWorkbook(ctx, path, names[0])
	if err != nil {
		return nil, err
	}
	return parseTransactions(grids[names[0]])
}

func parseTransactions(grid xlgrid.Grid) ([]Transaction, error) {
	if len(grid) == 0 {
		return nil, nil
	}
	dateCol, storeCol, amountCol := -1, -1, -1
	for i, v := range grid[0] {
		s, _ := v.(string)
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "transaction_date":
			dateCol = i
		case "store":
			storeCol = i
		case "amount":
			amountCol = i
		}
	}
	if dateCol < 0 || storeCol < 0 || amountCol < 0 {
		return nil, fmt.Errorf("header %v: need transaction_date, store and amount columns", grid[0])
	}
	transactions := make([]Transaction, 0, len(grid)-1)
	for i, row := range grid[1:] {
		empty := true
		for _, v := range row {
			if v != nil {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		date, ok := cellTime(row[dateCol])
		if !ok {
			return nil, fmt.Errorf("row %d: bad transaction_date %v", i+2, row[dateCol])
		}
		store, ok := row[storeCol].(string)
		if !ok || store == "" {
			return nil, fmt.Errorf("row %d: bad store %v", i+2, row[storeCol])
		}
		amount, ok := cellFloat(row[amountCol])
		if !ok {
			return nil, fmt.Errorf("row %d: bad amount %v", i+2, row[amountCol])
		}
		transactions = append(transactions, Transaction{Date: date, Store: store, Amount: amount})
	}
	return transactions, nil
}

func cellTime(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case float64:
		return xlgrid.SerialToTime(x, false), true
	case string:
		for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02", time.RFC3339} {
			if t, err := time.Parse(layout, x); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func cellFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case xlgrid.Number:
		f, err := strconv.ParseFloat(string(x), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}
