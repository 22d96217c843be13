// Copyright 2025 Tamás Gulácsi.
//
// SPDX-License-Identifier: Apache-2.0

package xlgrid

import (
	"errors"
	"fmt"
	"strings"
)

// Ref is a cell reference with 0-based Row and Col indices.
// The zero Ref is cell A1.
type Ref struct {
	Row, Col int
}

// ParseRef parses an A1-notation cell reference ("B3", "$C$5", "AA10")
// into 0-based row and column indices. Dollar signs (absolute markers)
// are accepted and ignored. The empty string parses as A1.
func ParseRef(s string) (Ref, error) {
	if s == "" {
		return Ref{}, nil
	}
	rest := s
	if rest[0] == '$' {
		rest = rest[1:]
	}
	var col int
	var letters int
	for letters < len(rest) {
		c := rest[letters]
		if 'a' <= c && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			break
		}
		col = col*26 + int(c-'A'+1)
		letters++
	}
	if letters == 0 || letters > 3 {
		return Ref{}, fmt.Errorf("%q: %w", s, errBadRef)
	}
	rest = rest[letters:]
	if rest != "" && rest[0] == '$' {
		rest = rest[1:]
	}
	if rest == "" {
		return Ref{}, fmt.Errorf("%q: %w", s, errBadRef)
	}
	var row int
	for i := 0; i < len(rest); i++ {
		c := rest[i]
		if c < '0' || c > '9' {
			return Ref{}, fmt.Errorf("%q: %w", s, errBadRef)
		}
		row = row*10 + int(c-'0')
		if row > maxRowNum {
			return Ref{}, fmt.Errorf("%q: %w", s, errBadRef)
		}
	}
	if row == 0 {
		return Ref{}, fmt.Errorf("%q: %w", s, errBadRef)
	}
	return Ref{Row: row - 1, Col: col - 1}, nil
}

var errBadRef = errors.New("not an A1-style cell reference")

// Row numbers are capped so a malformed reference can't overflow the accumulator.
const maxRowNum = 100_000_000

func (r Ref) String() string {
	return fmt.Sprintf("%s%d", ColName(r.Col), r.Row+1)
}

// ColName returns the column letters for the 0-based column index
// (0 is "A", 25 is "Z", 26 is "AA").
func ColName(col int) string {
	if col < 0 {
		return ""
	}
	var b [4]byte
	i := len(b)
	for n := col + 1; n > 0; n /= 26 {
		n--
		i--
		b[i] = byte('A' + n%26)
	}
	return string(b[i:])
}

// Range is a rectangular cell range, both corners inclusive.
type Range struct {
	First, Last Ref
}

// ParseRange parses an A1-notation range ("B2:D5"). A single cell
// reference is accepted as a one-cell range.
func ParseRange(s string) (Range, error) {
	first, last, found := strings.Cut(s, ":")
	f, err := ParseRef(first)
	if err != nil {
		return Range{}, err
	}
	if !found {
		return Range{First: f, Last: f}, nil
	}
	l, err := ParseRef(last)
	if err != nil {
		return Range{}, err
	}
	if l.Row < f.Row || l.Col < f.Col {
		return Range{}, fmt.Errorf("%q: range end before start", s)
	}
	return Range{First: f, Last: l}, nil
}

func (r Range) String() string {
	return r.First.String() + ":" + r.Last.String()
}

// Rows returns the number of rows the range spans.
func (r Range) Rows() int { return r.Last.Row - r.First.Row + 1 }

// Cols returns the number of columns the range spans.
func (r Range) Cols() int { return r.Last.Col - r.First.Col + 1 }
