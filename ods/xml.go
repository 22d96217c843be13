// Copyright 2019, 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package ods

import (
	"sort"
	"strconv"
	"time"

	qt "github.com/valyala/quicktemplate"

	"github.com/UNO-SOFT/xlgrid"
)

// The XML parts of a minimal OpenDocument Spreadsheet, streamed.
// Namespaces are declared once on the root element of each part.

const (
	mimetype = "application/vnd.oasis.opendocument.spreadsheet"

	nsOffice = "urn:oasis:names:tc:opendocument:xmlns:office:1.0"
	nsTable  = "urn:oasis:names:tc:opendocument:xmlns:table:1.0"
	nsText   = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"
	nsStyle  = "urn:oasis:names:tc:opendocument:xmlns:style:1.0"
	nsFo     = "urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0"
)

func streamMimetype(W *qt.Writer) { W.N().S(mimetype) }

func streamMeta(W *qt.Writer) {
	W.N().S(`<?xml version="1.0" encoding="UTF-8"?>
<office:document-meta xmlns:office="` + nsOffice + `" office:version="1.2"><office:meta/></office:document-meta>
`)
}

func streamManifest(W *qt.Writer) {
	W.N().S(`<?xml version="1.0" encoding="UTF-8"?>
<manifest:manifest xmlns:manifest="urn:oasis:names:tc:opendocument:xmlns:manifest:1.0" manifest:version="1.2">
 <manifest:file-entry manifest:full-path="/" manifest:media-type="` + mimetype + `"/>
 <manifest:file-entry manifest:full-path="content.xml" manifest:media-type="text/xml"/>
 <manifest:file-entry manifest:full-path="meta.xml" manifest:media-type="text/xml"/>
 <manifest:file-entry manifest:full-path="styles.xml" manifest:media-type="text/xml"/>
 <manifest:file-entry manifest:full-path="settings.xml" manifest:media-type="text/xml"/>
</manifest:manifest>
`)
}

func streamSettings(W *qt.Writer) {
	W.N().S(`<?xml version="1.0" encoding="UTF-8"?>
<office:document-settings xmlns:office="` + nsOffice + `" office:version="1.2"><office:settings/></office:document-settings>
`)
}

func streamBeginSpreadsheet(W *qt.Writer) {
	W.N().S(`<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="` + nsOffice + `" xmlns:table="` + nsTable + `" xmlns:text="` + nsText + `" xmlns:style="` + nsStyle + `" xmlns:fo="` + nsFo + `" office:version="1.2">
<office:body><office:spreadsheet>
`)
}

func streamEndSpreadsheet(W *qt.Writer) {
	W.N().S(`</office:spreadsheet></office:body></office:document-content>
`)
}

func streamBeginSheet(W *qt.Writer, name string, cols []xlgrid.Column, headerStyle string) {
	W.N().S(`<table:table table:name="`)
	W.E().S(name)
	W.N().S("\">\n")
	if len(cols) == 0 {
		return
	}
	W.N().S(`<table:table-column table:number-columns-repeated="`)
	W.N().D(len(cols))
	W.N().S("\"/>\n")
	var hasHeader bool
	for _, c := range cols {
		if c.Name != "" {
			hasHeader = true
			break
		}
	}
	if !hasHeader {
		return
	}
	W.N().S(`<table:table-row>`)
	for _, c := range cols {
		streamStringCell(W, headerStyle, c.Name)
	}
	W.N().S("</table:table-row>\n")
}

func streamEndSheet(W *qt.Writer) { W.N().S("</table:table>\n") }

func streamRow(W *qt.Writer, values ...any) {
	W.N().S(`<table:table-row>`)
	for _, v := range values {
		streamCell(W, normalize(v))
	}
	W.N().S("</table:table-row>\n")
}

func streamCell(W *qt.Writer, v any) {
	switch x := v.(type) {
	case nil:
		W.N().S(`<table:table-cell/>`)

	case bool:
		s := "false"
		if x {
			s = "true"
		}
		W.N().S(`<table:table-cell office:value-type="boolean" office:boolean-value="` + s + `"><text:p>`)
		if x {
			W.N().S("TRUE")
		} else {
			W.N().S("FALSE")
		}
		W.N().S(`</text:p></table:table-cell>`)

	case time.Time:
		iso := x.Format("2006-01-02T15:04:05")
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 {
			iso = x.Format("2006-01-02")
		}
		W.N().S(`<table:table-cell office:value-type="date" office:date-value="` + iso + `"><text:p>` + iso + `</text:p></table:table-cell>`)

	case float64:
		streamFloatCell(W, x)
	case float32:
		streamFloatCell(W, float64(x))
	case int:
		streamIntCell(W, int64(x))
	case int8:
		streamIntCell(W, int64(x))
	case int16:
		streamIntCell(W, int64(x))
	case int32:
		streamIntCell(W, int64(x))
	case int64:
		streamIntCell(W, x)
	case uint, uint16, uint32, uint64:
		W.N().S(`<table:table-cell office:value-type="float" office:value="`)
		s := strconv.FormatUint(toUint64(x), 10)
		W.N().S(s)
		W.N().S(`"><text:p>` + s + `</text:p></table:table-cell>`)

	case xlgrid.Number:
		W.N().S(`<table:table-cell office:value-type="float" office:value="`)
		W.E().S(string(x))
		W.N().S(`"><text:p>`)
		W.E().S(string(x))
		W.N().S(`</text:p></table:table-cell>`)

	case string:
		streamStringCell(W, "", x)

	default:
		W.N().S(`<table:table-cell office:value-type="string"><text:p>`)
		W.E().V(v)
		W.N().S(`</text:p></table:table-cell>`)
	}
}

func streamFloatCell(W *qt.Writer, f float64) {
	W.N().S(`<table:table-cell office:value-type="float" office:value="`)
	W.N().F(f)
	W.N().S(`"><text:p>`)
	W.N().F(f)
	W.N().S(`</text:p></table:table-cell>`)
}

func streamIntCell(W *qt.Writer, n int64) {
	W.N().S(`<table:table-cell office:value-type="float" office:value="`)
	W.N().DL(n)
	W.N().S(`"><text:p>`)
	W.N().DL(n)
	W.N().S(`</text:p></table:table-cell>`)
}

func streamStringCell(W *qt.Writer, style, s string) {
	if style == "" {
		W.N().S(`<table:table-cell office:value-type="string"><text:p>`)
	} else {
		W.N().S(`<table:table-cell table:style-name="` + style + `" office:value-type="string"><text:p>`)
	}
	W.E().S(s)
	W.N().S(`</text:p></table:table-cell>`)
}

func toUint64(v any) uint64 {
	switch x := v.(type) {
	case uint:
		return uint64(x)
	case uint16:
		return uint64(x)
	case uint32:
		return uint64(x)
	case uint64:
		return x
	}
	return 0
}

func streamStyles(W *qt.Writer, styles map[string]string) {
	W.N().S(`<?xml version="1.0" encoding="UTF-8"?>
<office:document-styles xmlns:office="` + nsOffice + `" xmlns:style="` + nsStyle + `" xmlns:text="` + nsText + `" xmlns:fo="` + nsFo + `" office:version="1.2">
<office:styles>
`)
	names := make([]string, 0, len(styles))
	for k := range styles {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		W.N().S(styles[k])
		W.N().S("\n")
	}
	W.N().S(`</office:styles></office:document-styles>
`)
}
