// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlgrid

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// CellError is an Excel error literal stored in a cell, such as "#DIV/0!".
// It is a cell value, not a Go error: a grid containing one was read
// successfully.
type CellError string

const (
	CellErrNull  = CellError("#NULL!")
	CellErrDiv0  = CellError("#DIV/0!")
	CellErrValue = CellError("#VALUE!")
	CellErrRef   = CellError("#REF!")
	CellErrName  = CellError("#NAME?")
	CellErrNum   = CellError("#NUM!")
	CellErrNA    = CellError("#N/A")
)

func (e CellError) String() string { return string(e) }

// errorLiterals is keyed by the cell text; the byte values are the BIFF
// error codes, kept for the "0x2a"-style codes some readers surface.
var errorLiterals = map[string]byte{
	string(CellErrNull):  0x00,
	string(CellErrDiv0):  0x07,
	string(CellErrValue): 0x0F,
	string(CellErrRef):   0x17,
	string(CellErrName):  0x1D,
	string(CellErrNum):   0x24,
	string(CellErrNA):    0x2A,
}

var errorCodes = map[byte]CellError{
	0x00: CellErrNull,
	0x07: CellErrDiv0,
	0x0F: CellErrValue,
	0x17: CellErrRef,
	0x1D: CellErrName,
	0x24: CellErrNum,
	0x2A: CellErrNA,
}

// asCellError maps s to a CellError when it is an Excel error literal or
// a hex error code ("0x2a"); otherwise it returns s unchanged.
func asCellError(s string) any {
	if s == "" {
		return s
	}
	if s[0] == '#' {
		if _, ok := errorLiterals[s]; ok {
			return CellError(s)
		}
		return s
	}
	if strings.HasPrefix(s, "0x") {
		if n, err := strconv.ParseUint(s[2:], 16, 8); err == nil {
			if e, ok := errorCodes[byte(n)]; ok {
				return e
			}
		}
	}
	return s
}

// DefaultDateFormat is the number format applied to dates Write puts
// into a sheet when no other format is given.
const DefaultDateFormat = "mm/dd/yy"

// SerialToTime converts an Excel serial date number to a time.Time (UTC),
// rounded to whole seconds. date1904 selects the 1904 date system used by
// some Mac-created workbooks. In the 1900 system serials below 60 use the
// epoch of the fictitious Lotus 1-2-3 calendar, where 1900 is a leap year.
func SerialToTime(serial float64, date1904 bool) time.Time {
	var epoch time.Time
	if date1904 {
		epoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
	} else if serial < 60 {
		epoch = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	} else {
		epoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	}
	days, frac := math.Modf(serial)
	secs := int64(math.Round(frac * 86400))
	return epoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)
}

// TimeToSerial is the inverse of SerialToTime.
func TimeToSerial(t time.Time, date1904 bool) float64 {
	t = t.UTC()
	var epoch time.Time
	if date1904 {
		epoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
	} else if t.Before(time.Date(1900, 3, 1, 0, 0, 0, 0, time.UTC)) {
		epoch = time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC)
	} else {
		epoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	}
	return float64(t.Sub(epoch)) / float64(24*time.Hour)
}

// IsDateFormat reports whether the number format string formats dates
// or times ("mm/dd/yy" or "mmm yy" do, "#,##0.00" does not).
func IsDateFormat(format string) bool { return isDateFormatString(format) }

// isBuiltinDateFormat reports whether the builtin number format id
// (ECMA-376 18.8.30) formats dates or times.
func isBuiltinDateFormat(id int) bool {
	switch {
	case 14 <= id && id <= 22,
		27 <= id && id <= 36,
		45 <= id && id <= 47,
		50 <= id && id <= 58:
		return true
	}
	return false
}

// isDateFormatString reports whether a custom number format string formats
// dates or times, by scanning for date tokens outside quoted literals,
// bracketed sections and escapes.
func isDateFormatString(format string) bool {
	var inQuote bool
	var inBracket bool
	for i := 0; i < len(format); i++ {
		c := format[i]
		switch {
		case inQuote:
			if c == '"' {
				inQuote = false
			}
		case inBracket:
			if c == ']' {
				inBracket = false
			}
		case c == '"':
			inQuote = true
		case c == '[':
			inBracket = true
		case c == '\\', c == '_', c == '*':
			i++
		default:
			switch c {
			case 'y', 'Y', 'm', 'M', 'd', 'D', 'h', 'H', 's', 'S':
				return true
			}
		}
	}
	return false
}

// retypeString converts the string rendering of a cell back into a typed
// value: empty becomes nil, then Excel error literals, booleans, numbers
// and ISO dates are tried in that order. Used for the backends that only
// hand out strings (CSV, .xls).
func retypeString(s string) any {
	if s == "" {
		return nil
	}
	if s[0] == '#' {
		if _, ok := errorLiterals[s]; ok {
			return CellError(s)
		}
	}
	switch s {
	case "TRUE", "True", "true":
		return true
	case "FALSE", "False", "false":
		return false
	}
	c := s[0]
	if !('0' <= c && c <= '9' || c == '-' || c == '+' || c == '.') {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return s
}
