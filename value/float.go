// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

// Float is a 32- or 64-bit floating point value, always stored widened to
// float64; Width records which precision it represents so arithmetic can
// round back down when required.
type Float struct {
	Width int // 32 or 64
	Data  float64
}

// F32 constructs a 32-bit Float, rounding data to float32 precision.
func F32(data float64) Float { return Float{Width: 32, Data: float64(float32(data))} }

// F64 constructs a 64-bit Float.
func F64(data float64) Float { return Float{Width: 64, Data: data} }

func (f Float) round() float64 {
	if f.Width == 32 {
		return float64(float32(f.Data))
	}
	return f.Data
}

// newFloat constructs a Float of the given width, rounding data to float32
// precision for width 32 so Data always holds a representable value and
// structural equality on results stays exact.
func newFloat(width int, data float64) Float {
	if width == 32 {
		data = float64(float32(data))
	}
	return Float{Width: width, Data: data}
}

// Add returns f+rhs, rounded to f's width.
func (f Float) Add(rhs Float) Float { return newFloat(f.Width, f.round()+rhs.round()) }

// Sub returns f-rhs, rounded to f's width.
func (f Float) Sub(rhs Float) Float { return newFloat(f.Width, f.round()-rhs.round()) }

// Mul returns f*rhs, rounded to f's width.
func (f Float) Mul(rhs Float) Float { return newFloat(f.Width, f.round()*rhs.round()) }

// Div returns f/rhs, rounded to f's width.
func (f Float) Div(rhs Float) Float { return newFloat(f.Width, f.round()/rhs.round()) }

// Neg returns -f.
func (f Float) Neg() Float { return newFloat(f.Width, -f.round()) }

// Compare returns -1, 0, or 1 comparing f and rhs numerically.
func (f Float) Compare(rhs Float) int {
	a, b := f.round(), rhs.round()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
