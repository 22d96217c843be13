// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ods

import (
	"archive/zip"
	"bytes"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/UNO-SOFT/xlgrid"
)

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	sheet, err := w.NewSheet("Eladás", []xlgrid.Column{
		{Name: "name", Header: xlgrid.Style{FontBold: true}},
		{Name: "amount"},
		{Name: "extra"},
	})
	if err != nil {
		t.Fatal(err)
	}
	for i, row := range [][]any{
		{"a<b>&c", 2.5, 42},
		{time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), true, sql.NullFloat64{Float64: 1.5, Valid: true}},
		{nil, xlgrid.Number("007"), sql.NullString{}},
	} {
		if err = sheet.AppendRow(row...); err != nil {
			t.Fatalf("%d. %+v", i, err)
		}
	}
	if err = sheet.Close(); err != nil {
		t.Fatal(err)
	}
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	if len(zr.File) == 0 || zr.File[0].Name != "mimetype" {
		t.Fatalf("first entry is not mimetype: %v", zr.File)
	}
	if zr.File[0].Method != zip.Store {
		t.Errorf("mimetype is compressed (method %d)", zr.File[0].Method)
	}
	if s := readZipFile(t, zr, "mimetype"); s != "application/vnd.oasis.opendocument.spreadsheet" {
		t.Errorf("mimetype: got %q", s)
	}
	for _, name := range []string{"meta.xml", "META-INF/manifest.xml", "settings.xml", "content.xml", "styles.xml"} {
		if !hasZipFile(zr, name) {
			t.Errorf("no %q in the archive", name)
		}
	}

	content := readZipFile(t, zr, "content.xml")
	for _, want := range []string{
		`<office:body><office:spreadsheet>`,
		`table:name="Eladás"`,
		`table:number-columns-repeated="3"`,
		`table:style-name="bf-`,
		`office:value-type="string"><text:p>a&lt;b&gt;&amp;c</text:p>`,
		`office:value="2.5"`,
		`office:value="42"`,
		`office:date-value="2021-03-01"`,
		`office:boolean-value="true"`,
		`office:value="1.5"`,
		`office:value="007"`,
		`</office:spreadsheet></office:body></office:document-content>`,
	} {
		if !strings.Contains(content, want) {
			t.Errorf("content.xml does not contain %q", want)
		}
	}
	if n := strings.Count(content, "<table:table-cell/>"); n != 2 {
		t.Errorf("got %d empty cells, wanted 2", n)
	}

	styles := readZipFile(t, zr, "styles.xml")
	if !strings.Contains(styles, `fo:font-weight="bold"`) {
		t.Errorf("styles.xml misses the bold style: %q", styles)
	}
}

func TestWriterSpoolsSheets(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	var sheets []xlgrid.Sheet
	for _, name := range []string{"first", "second", "third"} {
		sheet, err := w.NewSheet(name, []xlgrid.Column{{Name: "n"}})
		if err != nil {
			t.Fatal(err)
		}
		sheets = append(sheets, sheet)
	}
	// Write them out of order; the sheet order must follow NewSheet.
	for i := len(sheets) - 1; i >= 0; i-- {
		if err := sheets[i].AppendRow(i); err != nil {
			t.Fatal(err)
		}
		if err := sheets[i].Close(); err != nil {
			t.Fatal(err)
		}
	}
	if err = w.Close(); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	content := readZipFile(t, zr, "content.xml")
	last := -1
	for _, name := range []string{"first", "second", "third"} {
		i := strings.Index(content, `table:name="`+name+`"`)
		if i < 0 {
			t.Fatalf("no sheet %q in content.xml", name)
		}
		if i < last {
			t.Errorf("sheet %q is out of order", name)
		}
		last = i
	}
}

func hasZipFile(zr *zip.Reader, name string) bool {
	for _, f := range zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

func readZipFile(t *testing.T, zr *zip.Reader, name string) string {
	t.Helper()
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			t.Fatal(err)
		}
		return string(b)
	}
	t.Fatalf("no %q in the archive", name)
	return ""
}
