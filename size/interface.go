/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package size exposes a byte-count type with human-readable parsing and
// formatting over binary magnitudes (1K = 1024), usable directly in
// json / yaml / toml / cbor config files.
package size

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
)

// Size is a number of bytes. The zero value is an empty size.
type Size uint64

const (
	// SizeNul is an empty size.
	SizeNul Size = 0
	// SizeUnit is one byte.
	SizeUnit Size = 1
	// SizeKilo is one binary kilobyte (1024 bytes).
	SizeKilo Size = SizeUnit << 10
	// SizeMega is one binary megabyte.
	SizeMega Size = SizeKilo << 10
	// SizeGiga is one binary gigabyte.
	SizeGiga Size = SizeMega << 10
	// SizeTera is one binary terabyte.
	SizeTera Size = SizeGiga << 10
	// SizePeta is one binary petabyte.
	SizePeta Size = SizeTera << 10
	// SizeExa is one binary exabyte.
	SizeExa Size = SizePeta << 10
)

const (
	// FormatRound0 formats the scaled value with no decimals.
	FormatRound0 = "%.0f"
	// FormatRound1 formats the scaled value with one decimal.
	FormatRound1 = "%.1f"
	// FormatRound2 formats the scaled value with two decimals.
	FormatRound2 = "%.2f"
	// FormatRound3 formats the scaled value with three decimals.
	FormatRound3 = "%.3f"
)

// defUnit holds the default unit rune appended to magnitude prefixes
// ('B' gives KB / MB / GB, 'o' gives Ko / Mo / Go, ...).
var defUnit atomic.Int32

func init() {
	defUnit.Store('B')
}

// SetDefaultUnit changes the default unit rune used by Unit, Code and
// String when called with a zero unit. A zero rune resets to 'B'.
func SetDefaultUnit(unit rune) {
	if unit == 0 {
		unit = 'B'
	}

	defUnit.Store(int32(unit))
}

// unquote removes at most one matching pair of surrounding quotes.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}

	switch s[0] {
	case '"', '\'', '`':
		if s[len(s)-1] == s[0] {
			return s[1 : len(s)-1]
		}
	}

	return s
}

// Parse converts a human-readable size string ("512B", "1.5KB", "10 GB",
// quoted or not, any case) into a Size. The numeric part may be
// fractional; the unit part is mandatory, one of B / K / M / G / T / P /
// E with an optional trailing B.
func Parse(s string) (Size, error) {
	s = strings.TrimSpace(unquote(strings.TrimSpace(s)))

	if s == "" {
		return SizeNul, fmt.Errorf("invalid size: empty value")
	}

	if strings.HasPrefix(s, "-") {
		return SizeNul, fmt.Errorf("invalid size '%s': negative value not allowed", s)
	}

	s = strings.TrimPrefix(s, "+")

	i := 0
	for i < len(s) && (s[i] == '.' || (s[i] >= '0' && s[i] <= '9')) {
		i++
	}

	num := s[:i]
	unt := strings.TrimSpace(s[i:])

	if num == "" {
		return SizeNul, fmt.Errorf("invalid size '%s': missing numeric value", s)
	}

	if unt == "" {
		return SizeNul, fmt.Errorf("invalid size '%s': missing unit", s)
	}

	val, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return SizeNul, fmt.Errorf("invalid size '%s': %w", s, err)
	}

	var mul Size

	switch strings.ToLower(unt) {
	case "b":
		mul = SizeUnit
	case "k", "kb":
		mul = SizeKilo
	case "m", "mb":
		mul = SizeMega
	case "g", "gb":
		mul = SizeGiga
	case "t", "tb":
		mul = SizeTera
	case "p", "pb":
		mul = SizePeta
	case "e", "eb":
		mul = SizeExa
	default:
		return SizeNul, fmt.Errorf("invalid size '%s': unknown unit '%s'", s, unt)
	}

	res := val * float64(mul)
	if math.IsInf(res, 1) || res >= float64(math.MaxUint64) {
		return SizeNul, fmt.Errorf("invalid size '%s': value overflow", s)
	}

	return Size(math.Round(res)), nil
}

// ParseByte is Parse over a raw byte slice.
func ParseByte(p []byte) (Size, error) {
	return Parse(string(p))
}

// ParseInt64 converts a signed byte count to a Size, taking the
// absolute value of negative inputs.
func ParseInt64(i int64) Size {
	if i < 0 {
		return Size(uint64(-i))
	}

	return Size(uint64(i))
}

// ParseUint64 converts a raw byte count to a Size.
func ParseUint64(i uint64) Size {
	return Size(i)
}

// ParseFloat64 converts a float byte count to a Size: the value is
// floored first, negatives are taken absolute, and values beyond the
// uint64 range cap at the maximum size.
func ParseFloat64(f float64) Size {
	f = math.Floor(f)

	if f < 0 {
		f = -f
	}

	if math.IsInf(f, 1) || f >= float64(math.MaxUint64) {
		return Size(math.MaxUint64)
	}

	return Size(f)
}

// SizeFromInt64 is a deprecated alias of ParseInt64.
func SizeFromInt64(i int64) Size {
	return ParseInt64(i)
}

// SizeFromFloat64 is a deprecated alias of ParseFloat64.
func SizeFromFloat64(f float64) Size {
	return ParseFloat64(f)
}

// ParseSize is a deprecated alias of Parse.
func ParseSize(s string) (Size, error) {
	return Parse(s)
}

// ParseByteAsSize is a deprecated alias of ParseByte.
func ParseByteAsSize(p []byte) (Size, error) {
	return ParseByte(p)
}

// GetSize is a deprecated boolean-flavoured Parse.
func GetSize(s string) (Size, bool) {
	v, e := Parse(s)
	if e != nil {
		return SizeNul, false
	}

	return v, true
}
