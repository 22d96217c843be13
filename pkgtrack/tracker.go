// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package pkgtrack

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/UNO-SOFT/zlog/v2"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/UNO-SOFT/xlgrid"
)

// Cell names the workbook must define. Everything else (sheet names,
// feedback cells, chart anchor) is derived from these, so the workbook
// layout stays free.
const (
	nameNewPackage      = "new_package"
	nameUpdatedAt       = "updated_at"
	nameLog             = "log"
	namePackageSelect   = "package_selection"
	nameLatestRelease   = "latest_release"
	nameDropdownContent = "dropdown_content"
)

const historySheet = "HistoryData"

var errNoSuchName = errors.New("no such defined name")

// Tracker drives the workbook front-end: it reads the input cells,
// talks to the Store and the PyPI Client and writes the results back.
type Tracker struct {
	Store *Store
	PyPI  *Client
	// Book is the xlsx file the tracker operates on.
	Book string
}

// AddPackage reads the new_package cell, checks the name on PyPI,
// stores it, then refreshes the version history and the dropdown.
// Input problems land in the feedback cell next to new_package and are
// not errors.
func (t *Tracker) AddPackage(ctx context.Context) error {
	return t.withBook(func(f *excelize.File) error { return t.addPackage(ctx, f) })
}

// UpdateDatabase replaces the whole stored version history with fresh
// PyPI data and writes the per-package log into the workbook.
func (t *Tracker) UpdateDatabase(ctx context.Context) error {
	return t.withBook(func(f *excelize.File) error { return t.updateDatabase(ctx, f) })
}

// ShowHistory writes the latest release of the selected package and
// charts its releases per year.
func (t *Tracker) ShowHistory(ctx context.Context) error {
	return t.withBook(func(f *excelize.File) error { return t.showHistory(ctx, f) })
}

// RefreshDropdown repopulates the dropdown source column from the
// packages table.
func (t *Tracker) RefreshDropdown(ctx context.Context) error {
	return t.withBook(func(f *excelize.File) error { return t.refreshDropdown(ctx, f) })
}

// SetNewPackage writes name into the new_package input cell, like
// typing it into the workbook before pressing Add.
func (t *Tracker) SetNewPackage(name string) error {
	return t.setNamedCell(nameNewPackage, name)
}

// SelectPackage writes name into the package_selection cell, like
// picking it from the dropdown.
func (t *Tracker) SelectPackage(name string) error {
	return t.setNamedCell(namePackageSelect, name)
}

func (t *Tracker) setNamedCell(defined, value string) error {
	return t.withBook(func(f *excelize.File) error {
		sheet, ref, err := namedCell(f, defined)
		if err != nil {
			return err
		}
		return f.SetCellStr(sheet, ref.String(), value)
	})
}

func (t *Tracker) withBook(fn func(*excelize.File) error) error {
	f, err := excelize.OpenFile(t.Book)
	if err != nil {
		return fmt.Errorf("open %q: %w", t.Book, err)
	}
	defer f.Close()
	if err = fn(f); err != nil {
		return err
	}
	if err = f.Save(); err != nil {
		return fmt.Errorf("save %q: %w", t.Book, err)
	}
	return nil
}

func (t *Tracker) addPackage(ctx context.Context, f *excelize.File) error {
	logger := zlog.SFromContext(ctx).With("run", uuid.NewString())
	sheet, input, err := namedCell(f, nameNewPackage)
	if err != nil {
		return err
	}
	feedback := xlgrid.Ref{Row: input.Row, Col: input.Col + 1}
	if err = clearCell(f, sheet, feedback); err != nil {
		return err
	}
	packageName, err := f.GetCellValue(sheet, input.String())
	if err != nil {
		return err
	}
	packageName = strings.TrimSpace(packageName)
	if packageName == "" {
		return f.SetCellStr(sheet, feedback.String(), "Error: Please provide a name!")
	}
	exists, err := t.PyPI.Exists(ctx, packageName)
	if err != nil {
		return err
	}
	if !exists {
		return f.SetCellStr(sheet, feedback.String(), "Error: Package not found!")
	}
	storeErr := t.Store.AddPackage(ctx, packageName)
	if err = clearCell(f, sheet, input); err != nil {
		return err
	}
	if storeErr != nil {
		if !errors.Is(storeErr, ErrPackageExists) {
			return storeErr
		}
		return f.SetCellStr(sheet, feedback.String(),
			fmt.Sprintf("Error: %s already exists", packageName))
	}
	if err = f.SetCellStr(sheet, feedback.String(),
		fmt.Sprintf("Added %s successfully.", packageName),
	); err != nil {
		return err
	}
	logger.Info("added", "package", packageName)
	if err = t.updateDatabase(ctx, f); err != nil {
		return err
	}
	return t.refreshDropdown(ctx, f)
}

func (t *Tracker) updateDatabase(ctx context.Context, f *excelize.File) error {
	logger := zlog.SFromContext(ctx).With("run", uuid.NewString())
	logSheet, logStart, err := namedCell(f, nameLog)
	if err != nil {
		return err
	}
	if err = clearColumn(f, logSheet, logStart); err != nil {
		return err
	}
	// Keeping things simple: drop every stored version and repopulate
	// from scratch.
	if err = t.Store.DeleteVersions(ctx); err != nil {
		return err
	}
	pkgs, err := t.Store.Packages(ctx)
	if err != nil {
		return err
	}
	logs := make([]string, 0, 2*len(pkgs))
	for _, p := range pkgs {
		releases, err := t.PyPI.Releases(ctx, p.Name)
		if err != nil {
			logger.Error("download", "package", p.Name, "error", err)
			logs = append(logs, fmt.Sprintf("ERROR: Could not download data for %s", p.Name))
			continue
		}
		logs = append(logs, fmt.Sprintf("INFO: %s downloaded successfully", p.Name))
		versions := make([]Version, 0, len(releases))
		for _, r := range releases {
			versions = append(versions, Version{
				PackageID: p.ID, Version: r.Version, UploadedAt: r.UploadedAt,
			})
		}
		if err = t.Store.StoreVersions(ctx, versions); err != nil {
			return fmt.Errorf("store versions of %q: %w", p.Name, err)
		}
		logs = append(logs, fmt.Sprintf("INFO: %s stored to database successfully", p.Name))
	}
	upSheet, upCell, err := namedCell(f, nameUpdatedAt)
	if err != nil {
		return err
	}
	if err = f.SetCellStr(upSheet, upCell.String(),
		"Last updated: "+time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return err
	}
	if err = writeColumn(f, logSheet, logStart, logs); err != nil {
		return err
	}
	logger.Info("updated", "packages", len(pkgs))
	return nil
}

func (t *Tracker) showHistory(ctx context.Context, f *excelize.File) error {
	selSheet, sel, err := namedCell(f, namePackageSelect)
	if err != nil {
		return err
	}
	feedback := xlgrid.Ref{Row: sel.Row, Col: sel.Col + 1}
	relSheet, rel, err := namedCell(f, nameLatestRelease)
	if err != nil {
		return err
	}
	chartAnchor := xlgrid.Ref{Row: rel.Row + 2, Col: rel.Col}

	packageName, err := f.GetCellValue(selSheet, sel.String())
	if err != nil {
		return err
	}
	if packageName == "" {
		return f.SetCellStr(selSheet, feedback.String(),
			"Error: Please select a package first! You may first have to add one to the database.")
	}
	if err = clearCell(f, selSheet, feedback); err != nil {
		return err
	}
	if err = clearCell(f, relSheet, rel); err != nil {
		return err
	}
	// No chart to delete on the first run.
	_ = f.DeleteChart(relSheet, chartAnchor.String())

	versions, err := t.Store.Versions(ctx, packageName)
	if err != nil {
		return f.SetCellStr(selSheet, feedback.String(), err.Error())
	}
	if len(versions) == 0 {
		return f.SetCellStr(selSheet, feedback.String(),
			fmt.Sprintf("Error: Didn't find any releases for %s", packageName))
	}
	last := versions[len(versions)-1]
	if err = f.SetCellStr(relSheet, rel.String(), fmt.Sprintf("%s (%s)",
		last.Version, last.UploadedAt.Format("January 02, 2006")),
	); err != nil {
		return err
	}
	return writeHistoryChart(f, relSheet, chartAnchor, packageName, versions)
}

func (t *Tracker) refreshDropdown(ctx context.Context, f *excelize.File) error {
	ddSheet, ddStart, err := namedCell(f, nameDropdownContent)
	if err != nil {
		return err
	}
	selSheet, sel, err := namedCell(f, namePackageSelect)
	if err != nil {
		return err
	}
	if err = clearCell(f, selSheet, sel); err != nil {
		return err
	}
	if err = clearColumn(f, ddSheet, ddStart); err != nil {
		return err
	}
	pkgs, err := t.Store.Packages(ctx)
	if err != nil {
		return err
	}
	names := make([]string, len(pkgs))
	for i, p := range pkgs {
		names[i] = p.Name
	}
	return writeColumn(f, ddSheet, ddStart, names)
}

// writeHistoryChart rebuilds the hidden HistoryData sheet with the
// releases-per-year table and anchors a column chart over it. Years
// without a release count as zero, like a resampled time series.
func writeHistoryChart(f *excelize.File, sheet string, anchor xlgrid.Ref, packageName string, versions []Version) error {
	if idx, err := f.GetSheetIndex(historySheet); err != nil {
		return err
	} else if idx != -1 {
		if err = f.DeleteSheet(historySheet); err != nil {
			return err
		}
	}
	if _, err := f.NewSheet(historySheet); err != nil {
		return err
	}
	counts := make(map[int]int, len(versions))
	for _, v := range versions {
		counts[v.UploadedAt.Year()]++
	}
	if err := f.SetCellStr(historySheet, "A1", "Years"); err != nil {
		return err
	}
	if err := f.SetCellStr(historySheet, "B1", "Number of Releases"); err != nil {
		return err
	}
	firstYear := versions[0].UploadedAt.Year()
	lastYear := versions[len(versions)-1].UploadedAt.Year()
	row := 1
	for year := firstYear; year <= lastYear; year++ {
		row++
		axis := xlgrid.Ref{Row: row - 1, Col: 0}
		if err := f.SetCellValue(historySheet, axis.String(), year); err != nil {
			return err
		}
		axis.Col = 1
		if err := f.SetCellValue(historySheet, axis.String(), counts[year]); err != nil {
			return err
		}
	}
	if err := f.SetSheetVisible(historySheet, false); err != nil {
		return err
	}
	return f.AddChart(sheet, anchor.String(), &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       historySheet + "!$B$1",
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", historySheet, row),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", historySheet, row),
		}},
		Title: []excelize.RichTextRun{{
			Text: fmt.Sprintf("Number of Releases per Year (%s)", packageName),
		}},
		XAxis: excelize.ChartAxis{
			Title: []excelize.RichTextRun{{Text: "Years"}},
		},
	})
}

// namedCell resolves a workbook-scoped defined name to its sheet and
// first cell.
func namedCell(f *excelize.File, name string) (string, xlgrid.Ref, error) {
	for _, dn := range f.GetDefinedName() {
		if dn.Name != name {
			continue
		}
		sheet, ref, err := parseRefersTo(dn.RefersTo)
		if err != nil {
			return "", xlgrid.Ref{}, fmt.Errorf("%q refers to %q: %w", name, dn.RefersTo, err)
		}
		return sheet, ref, nil
	}
	return "", xlgrid.Ref{}, fmt.Errorf("%q: %w", name, errNoSuchName)
}

func parseRefersTo(refersTo string) (string, xlgrid.Ref, error) {
	i := strings.LastIndexByte(refersTo, '!')
	if i < 0 {
		return "", xlgrid.Ref{}, errors.New("missing sheet qualifier")
	}
	sheet, cell := refersTo[:i], refersTo[i+1:]
	if len(sheet) > 1 && sheet[0] == '\'' && sheet[len(sheet)-1] == '\'' {
		sheet = strings.ReplaceAll(sheet[1:len(sheet)-1], "''", "'")
	}
	rng, err := xlgrid.ParseRange(strings.ReplaceAll(cell, "$", ""))
	if err != nil {
		return "", xlgrid.Ref{}, err
	}
	return sheet, rng.First, nil
}

func clearCell(f *excelize.File, sheet string, ref xlgrid.Ref) error {
	return f.SetCellValue(sheet, ref.String(), nil)
}

// clearColumn blanks the cells below ref (inclusive) up to the first
// already empty one.
func clearColumn(f *excelize.File, sheet string, ref xlgrid.Ref) error {
	for ; ; ref.Row++ {
		v, err := f.GetCellValue(sheet, ref.String())
		if err != nil {
			return err
		}
		if v == "" {
			return nil
		}
		if err = f.SetCellValue(sheet, ref.String(), nil); err != nil {
			return err
		}
	}
}

func writeColumn(f *excelize.File, sheet string, ref xlgrid.Ref, values []string) error {
	for _, v := range values {
		if err := f.SetCellStr(sheet, ref.String(), v); err != nil {
			return err
		}
		ref.Row++
	}
	return nil
}
