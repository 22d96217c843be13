// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package pkgtrack

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// InitWorkbook writes a fresh tracker workbook to path: the Database,
// Tracker and Dropdown sheets, the defined names the Tracker operates
// through and the package dropdown on the Tracker sheet.
func InitWorkbook(path string) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "Database"); err != nil {
		return err
	}
	for _, sheet := range []string{"Tracker", "Dropdown"} {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	for _, c := range []struct{ sheet, cell, value string }{
		{"Database", "A1", "Database"},
		{"Database", "A3", "Add package:"},
		{"Database", "A7", "Log"},
		{"Tracker", "A1", "Package Tracker"},
		{"Tracker", "A3", "Select package:"},
		{"Tracker", "A5", "Latest release:"},
	} {
		if err := f.SetCellStr(c.sheet, c.cell, c.value); err != nil {
			return err
		}
	}
	for _, dn := range []struct{ name, refersTo string }{
		{nameNewPackage, "Database!$B$3"},
		{nameUpdatedAt, "Database!$A$5"},
		{nameLog, "Database!$A$8"},
		{namePackageSelect, "Tracker!$B$3"},
		{nameLatestRelease, "Tracker!$B$5"},
		{nameDropdownContent, "Dropdown!$A$1"},
	} {
		if err := f.SetDefinedName(&excelize.DefinedName{
			Name: dn.name, RefersTo: dn.refersTo, Scope: "Workbook",
		}); err != nil {
			return fmt.Errorf("define %q: %w", dn.name, err)
		}
	}
	dv := excelize.NewDataValidation(true)
	dv.Sqref = "B3:B3"
	dv.SetSqrefDropList("Dropdown!$A$1:$A$1000")
	if err := f.AddDataValidation("Tracker", dv); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %q: %w", path, err)
	}
	return nil
}
