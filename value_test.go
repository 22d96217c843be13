// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlgrid

import (
	"math"
	"testing"
	"time"
)

func TestSerialToTime(t *testing.T) {
	for i, tc := range []struct {
		serial   float64
		date1904 bool
		want     time.Time
	}{
		{1, false, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)},
		{59, false, time.Date(1900, 2, 28, 0, 0, 0, 0, time.UTC)},
		// 1900 is not a leap year, whatever Lotus 1-2-3 thought.
		{61, false, time.Date(1900, 3, 1, 0, 0, 0, 0, time.UTC)},
		{44197, false, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)},
		{44197.5, false, time.Date(2021, 1, 1, 12, 0, 0, 0, time.UTC)},
		{43891.2505787037, false, time.Date(2020, 3, 1, 6, 0, 50, 0, time.UTC)},
		{0, true, time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)},
		{366, true, time.Date(1905, 1, 1, 0, 0, 0, 0, time.UTC)},
	} {
		if got := SerialToTime(tc.serial, tc.date1904); !got.Equal(tc.want) {
			t.Errorf("%d. %v (1904=%t): got %s, wanted %s",
				i, tc.serial, tc.date1904, got, tc.want)
		}
		back := TimeToSerial(tc.want, tc.date1904)
		if math.Abs(back-tc.serial) > 1e-6 {
			t.Errorf("%d. %s: serial back %v, wanted %v", i, tc.want, back, tc.serial)
		}
	}
}

func TestSerialRoundsToSeconds(t *testing.T) {
	// 0.3 days is 7:12:00, but the float representation is a hair off.
	got := SerialToTime(43891.3, false)
	want := time.Date(2020, 3, 1, 7, 12, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %s, wanted %s", got, want)
	}
}

func TestIsDateFormat(t *testing.T) {
	for i, tc := range []struct {
		format string
		want   bool
	}{
		{"mm/dd/yy", true},
		{"mmm yy", true},
		{"yyyy-mm-dd hh:mm:ss", true},
		{"[$-409]m/d/yy", true},
		{"#,##0.00", false},
		{"0%", false},
		{"General", false},
		{`"mm"0.0`, false},
		{`0.0\m`, false},
		{"[Red]0.0", false},
		{"", false},
	} {
		if got := IsDateFormat(tc.format); got != tc.want {
			t.Errorf("%d. %q: got %t, wanted %t", i, tc.format, got, tc.want)
		}
	}
}

func TestRetypeString(t *testing.T) {
	for i, tc := range []struct {
		in   string
		want any
	}{
		{"", nil},
		{"#N/A", CellErrNA},
		{"#DIV/0!", CellErrDiv0},
		{"#Hello", "#Hello"},
		{"TRUE", true},
		{"false", false},
		{"3.14", 3.14},
		{"-2", -2.0},
		{"+5", 5.0},
		{"1e3", 1000.0},
		{"2021-05-04", time.Date(2021, 5, 4, 0, 0, 0, 0, time.UTC)},
		{"2021-05-04 15:04:05", time.Date(2021, 5, 4, 15, 4, 5, 0, time.UTC)},
		{"12abc", "12abc"},
		{"abc", "abc"},
		{"+36-30-1234567", "+36-30-1234567"},
	} {
		got := retypeString(tc.in)
		if wt, ok := tc.want.(time.Time); ok {
			if gt, ok := got.(time.Time); !ok || !gt.Equal(wt) {
				t.Errorf("%d. %q: got %v (%T), wanted %s", i, tc.in, got, got, wt)
			}
			continue
		}
		if got != tc.want {
			t.Errorf("%d. %q: got %v (%T), wanted %v (%T)", i, tc.in, got, got, tc.want, tc.want)
		}
	}
}

func TestAsCellError(t *testing.T) {
	for i, tc := range []struct {
		in   string
		want any
	}{
		{"#REF!", CellErrRef},
		{"#NAME?", CellErrName},
		{"#NOPE!", "#NOPE!"},
		{"0x2a", CellErrNA},
		{"0x07", CellErrDiv0},
		{"0xff", "0xff"},
		{"plain", "plain"},
	} {
		if got := asCellError(tc.in); got != tc.want {
			t.Errorf("%d. %q: got %v (%T), wanted %v", i, tc.in, got, got, tc.want)
		}
	}
}

func TestCellErrorIsNotError(t *testing.T) {
	var v any = CellErrNA
	if _, ok := v.(error); ok {
		t.Error("CellError must not satisfy the error interface")
	}
}
