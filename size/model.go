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

package size

import (
	"fmt"
	"math"
)

// magnitude returns the unit constant matching the order of magnitude
// of the size, and its prefix letter (empty for plain bytes).
func (s Size) magnitude() (Size, string) {
	switch {
	case s >= SizeExa:
		return SizeExa, "E"
	case s >= SizePeta:
		return SizePeta, "P"
	case s >= SizeTera:
		return SizeTera, "T"
	case s >= SizeGiga:
		return SizeGiga, "G"
	case s >= SizeMega:
		return SizeMega, "M"
	case s >= SizeKilo:
		return SizeKilo, "K"
	}

	return SizeUnit, ""
}

// String formats the size scaled to its magnitude with two decimals and
// the unit suffix, e.g. "5.00MB".
func (s Size) String() string {
	return s.Format(FormatRound2) + s.Unit(0)
}

// Format renders the size scaled to its magnitude unit with the given
// fmt verb (typically one of the FormatRound constants).
func (s Size) Format(format string) string {
	m, _ := s.magnitude()
	return fmt.Sprintf(format, float64(s)/float64(m))
}

// Unit returns the unit suffix matching the size's magnitude, using the
// given unit rune, or the default one if unit is zero ("KB", "Ko", ...).
func (s Size) Unit(unit rune) string {
	if unit == 0 {
		unit = rune(defUnit.Load())
	}

	_, p := s.magnitude()
	return p + string(unit)
}

// Code is an alias of Unit kept for config-facing call sites.
func (s Size) Code(unit rune) string {
	return s.Unit(unit)
}

// KiloBytes returns the size as whole kilobytes, flooring fractions.
func (s Size) KiloBytes() uint64 {
	return uint64(s / SizeKilo)
}

// MegaBytes returns the size as whole megabytes, flooring fractions.
func (s Size) MegaBytes() uint64 {
	return uint64(s / SizeMega)
}

// GigaBytes returns the size as whole gigabytes, flooring fractions.
func (s Size) GigaBytes() uint64 {
	return uint64(s / SizeGiga)
}

// TeraBytes returns the size as whole terabytes, flooring fractions.
func (s Size) TeraBytes() uint64 {
	return uint64(s / SizeTera)
}

// PetaBytes returns the size as whole petabytes, flooring fractions.
func (s Size) PetaBytes() uint64 {
	return uint64(s / SizePeta)
}

// ExaBytes returns the size as whole exabytes, flooring fractions.
func (s Size) ExaBytes() uint64 {
	return uint64(s / SizeExa)
}

// Uint64 returns the raw byte count.
func (s Size) Uint64() uint64 {
	return uint64(s)
}

// Uint returns the byte count as uint.
func (s Size) Uint() uint {
	if uint64(s) > uint64(math.MaxUint) {
		return math.MaxUint
	}

	return uint(s)
}

// Uint32 returns the byte count capped at MaxUint32.
func (s Size) Uint32() uint32 {
	if uint64(s) > math.MaxUint32 {
		return math.MaxUint32
	}

	return uint32(s)
}

// Int64 returns the byte count capped at MaxInt64.
func (s Size) Int64() int64 {
	if uint64(s) > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(s)
}

// Int returns the byte count capped at MaxInt.
func (s Size) Int() int {
	if uint64(s) > uint64(math.MaxInt) {
		return math.MaxInt
	}

	return int(s)
}

// Int32 returns the byte count capped at MaxInt32.
func (s Size) Int32() int32 {
	if uint64(s) > math.MaxInt32 {
		return math.MaxInt32
	}

	return int32(s)
}

// Float64 returns the byte count as float64.
func (s Size) Float64() float64 {
	return float64(s)
}

// Float32 returns the byte count as float32.
func (s Size) Float32() float32 {
	return float32(s)
}

// Mul scales the size by m, rounding to the nearest byte. Overflow caps
// at the maximum size; negative factors clear the size.
func (s *Size) Mul(m float64) {
	_ = s.MulErr(m)
}

// MulErr is Mul with the overflow reported.
func (s *Size) MulErr(m float64) error {
	if m < 0 {
		*s = SizeNul
		return fmt.Errorf("size multiply: invalid multiplier '%f'", m)
	}

	res := float64(*s) * m
	if math.IsInf(res, 1) || res >= float64(math.MaxUint64) {
		*s = Size(math.MaxUint64)
		return fmt.Errorf("size multiply: value overflow")
	}

	*s = Size(math.Round(res))
	return nil
}

// Div divides the size by d, rounding to the nearest byte. Division by
// zero or a negative divisor leaves the size unchanged.
func (s *Size) Div(d float64) {
	_ = s.DivErr(d)
}

// DivErr is Div with the invalid-divisor case reported.
func (s *Size) DivErr(d float64) error {
	if d <= 0 {
		return fmt.Errorf("size division: invalid diviser '%f'", d)
	}

	res := float64(*s) / d
	if math.IsInf(res, 1) || res >= float64(math.MaxUint64) {
		*s = Size(math.MaxUint64)
		return fmt.Errorf("size division: value overflow")
	}

	*s = Size(math.Round(res))
	return nil
}

// Add grows the size by v bytes, capping at the maximum size.
func (s *Size) Add(v uint64) {
	_ = s.AddErr(v)
}

// AddErr is Add with the overflow reported.
func (s *Size) AddErr(v uint64) error {
	res := uint64(*s) + v

	if res < uint64(*s) {
		*s = Size(math.MaxUint64)
		return fmt.Errorf("size addition: value overflow")
	}

	*s = Size(res)
	return nil
}

// Sub shrinks the size by v bytes, flooring at zero.
func (s *Size) Sub(v uint64) {
	_ = s.SubErr(v)
}

// SubErr is Sub with the underflow reported.
func (s *Size) SubErr(v uint64) error {
	if v > uint64(*s) {
		*s = SizeNul
		return fmt.Errorf("size subtraction: invalid substractor '%d'", v)
	}

	*s = Size(uint64(*s) - v)
	return nil
}
