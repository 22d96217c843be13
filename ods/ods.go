// Copyright 2019, 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

// Package ods provides the OpenDocument Spreadsheet backend of
// xlgrid.Writer, streaming content.xml instead of building the
// document in memory.
package ods

import (
	"archive/zip"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/flate"
	qt "github.com/valyala/quicktemplate"

	"github.com/UNO-SOFT/xlgrid"
)

var _ = (xlgrid.Writer)((*ODSWriter)(nil))

var qtMu sync.Mutex

// AcquireWriter wraps the given io.Writer to be usable with quicktemplates.
func AcquireWriter(w io.Writer) *qt.Writer {
	qtMu.Lock()
	W := qt.AcquireWriter(w)
	qtMu.Unlock()
	return W
}

// ReleaseWriter returns the *quicktemplate.Writer to the pool.
func ReleaseWriter(W *qt.Writer) { qtMu.Lock(); qt.ReleaseWriter(W); qtMu.Unlock() }

// ValueType is the cell's value's type.
type ValueType uint8

func (v ValueType) String() string {
	switch v {
	case 'f':
		return "float"
	case 'd':
		return "date"
	case 'b':
		return "boolean"
	default:
		return "string"
	}
}

const (
	// FloatType for numerical data
	FloatType = ValueType('f')
	// DateType for dates
	DateType = ValueType('d')
	// BoolType for booleans
	BoolType = ValueType('b')
	// StringType for everything else
	StringType = ValueType('s')
)

// NewWriter returns an ODSWriter streaming the spreadsheet into w.
//
// The first sheet is written through to w directly; each further sheet
// is spooled to an unlinked temporary file and copied in on Close, so
// sheets can be written concurrently. Close every sheet before closing
// the writer.
func NewWriter(w io.Writer) (*ODSWriter, error) {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestSpeed)
	})
	// The mimetype entry must come first, uncompressed.
	for _, elt := range []struct {
		Name   string
		Stream func(*qt.Writer)
	}{
		{"mimetype", streamMimetype},
		{"meta.xml", streamMeta},
		{"META-INF/manifest.xml", streamManifest},
		{"settings.xml", streamSettings},
	} {
		parts := strings.SplitAfter(elt.Name, "/")
		var prev string
		for _, p := range parts[:len(parts)-1] {
			prev += p
			if _, err := zw.CreateHeader(&zip.FileHeader{Name: prev}); err != nil {
				return nil, err
			}
		}
		sub, err := zw.CreateHeader(&zip.FileHeader{Name: elt.Name})
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("%q: %w", elt.Name, err)
		}
		W := AcquireWriter(sub)
		elt.Stream(W)
		ReleaseWriter(W)
	}

	bw, err := zw.Create("content.xml")
	if err != nil {
		zw.Close()
		return nil, fmt.Errorf("content.xml: %w", err)
	}
	W := AcquireWriter(bw)
	streamBeginSpreadsheet(W)
	ReleaseWriter(W)

	return &ODSWriter{w: bw, zipWriter: zw}, nil
}

// ODSWriter writes content.xml of the ODS zip.
type ODSWriter struct {
	mu        sync.Mutex
	zipWriter *zip.Writer
	w         io.Writer
	hasSheet  bool
	files     []*os.File

	styles map[string]string
}

// Close copies in the spooled sheets, finishes content.xml and writes
// styles.xml with the styles collected while the sheets were written.
func (ow *ODSWriter) Close() error {
	if ow == nil {
		return nil
	}
	ow.mu.Lock()
	defer ow.mu.Unlock()
	if ow.w == nil {
		return nil
	}
	files := ow.files
	ow.files = nil

	for _, f := range files {
		if _, err := f.Seek(0, 0); err != nil {
			f.Close()
			return err
		}
		_, err := io.Copy(ow.w, f)
		f.Close()
		if err != nil {
			return err
		}
	}

	W := AcquireWriter(ow.w)
	streamEndSpreadsheet(W)
	ReleaseWriter(W)
	ow.w = nil
	zw := ow.zipWriter
	ow.zipWriter = nil
	defer zw.Close()
	bw, err := zw.Create("styles.xml")
	if err != nil {
		return err
	}
	W = AcquireWriter(bw)
	streamStyles(W, ow.styles)
	ReleaseWriter(W)
	return zw.Close()
}

func (ow *ODSWriter) NewSheet(name string, cols []xlgrid.Column) (xlgrid.Sheet, error) {
	ow.mu.Lock()
	defer ow.mu.Unlock()
	sheet := &ODSSheet{Name: name, ow: ow}
	if !ow.hasSheet {
		// The first sheet is written directly.
		ow.hasSheet = true
		sheet.w = AcquireWriter(ow.w)
		sheet.mu = &ow.mu
	} else {
		var err error
		if sheet.f, err = os.CreateTemp("", "xlgrid-ods-*.xml"); err != nil {
			return nil, err
		}
		os.Remove(sheet.f.Name())
		sheet.w = AcquireWriter(sheet.f)
		sheet.mu = new(sync.Mutex)
		ow.files = append(ow.files, sheet.f)
	}
	var headerStyle string
	for _, c := range cols {
		if c.Header.FontBold {
			headerStyle = ow.styleName(c.Header)
			break
		}
	}
	streamBeginSheet(sheet.w, name, cols, headerStyle)
	return sheet, nil
}

// styleName registers the style and returns its generated name, or ""
// for the default style. Only boldness carries over to ODS; the cell
// value types already make dates and numbers render as such.
func (ow *ODSWriter) styleName(style xlgrid.Style) string {
	if !style.FontBold {
		return ""
	}
	hsh := fnv.New32()
	fmt.Fprintf(hsh, "%t", style.FontBold)
	k := fmt.Sprintf("bf-%d", hsh.Sum32())
	if _, ok := ow.styles[k]; ok {
		return k
	}
	if ow.styles == nil {
		ow.styles = make(map[string]string, 1)
	}
	ow.styles[k] = `<style:style style:name="` + k + `" style:family="table-cell"><style:text-properties text:display="true" fo:font-weight="bold" /></style:style>`
	return k
}

type ODSSheet struct {
	Name string

	mu *sync.Mutex
	ow *ODSWriter
	w  *qt.Writer
	f  *os.File
}

func (ods *ODSSheet) AppendRow(values ...any) error {
	ods.mu.Lock()
	streamRow(ods.w, values...)
	ods.mu.Unlock()
	return nil
}

func (ods *ODSSheet) Close() error {
	if ods == nil {
		return nil
	}
	ods.mu.Lock()
	defer ods.mu.Unlock()

	W := ods.w
	ods.ow, ods.w, ods.f = nil, nil, nil
	if W == nil {
		return nil
	}
	streamEndSheet(W)
	ReleaseWriter(W)
	return nil
}

// normalize unwraps database and Stringer values to the base types the
// cell streamer handles.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	if vr, ok := v.(driver.Valuer); ok {
		if vv, err := vr.Value(); err == nil {
			v = vv
		}
	}
	switch x := v.(type) {
	case sql.NullString:
		if !x.Valid {
			return nil
		}
		return x.String
	case sql.NullFloat64:
		if !x.Valid {
			return nil
		}
		return x.Float64
	case sql.NullInt64:
		if !x.Valid {
			return nil
		}
		return x.Int64
	case sql.NullTime:
		if !x.Valid || x.Time.IsZero() {
			return nil
		}
		return x.Time
	case time.Time:
		if x.IsZero() {
			return nil
		}
		return x
	case xlgrid.CellError:
		return string(x)
	case xlgrid.Number:
		return x
	case fmt.Stringer:
		return x.String()
	}
	return v
}
