// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package value implements the machine's register-resident value model:
// Integer/Float scalars, Ref/Fn handles, and the per-call Frame they live
// in between instructions.
package value

// Integer is a fixed-width, optionally signed integer value. Data always
// holds the raw bit pattern truncated to Width bits; arithmetic wraps
// modulo 2^Width, matching native machine-word overflow behavior rather
// than panicking or saturating.
type Integer struct {
	Width  int // 8, 16, 32, or 64
	Signed bool
	Data   uint64
}

func mask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// NewInteger constructs an Integer, truncating data to width bits.
func NewInteger(width int, signed bool, data uint64) Integer {
	return Integer{Width: width, Signed: signed, Data: data & mask(width)}
}

// Unsigned constructs an unsigned Integer.
func Unsigned(width int, data uint64) Integer { return NewInteger(width, false, data) }

// SignedInt constructs a signed Integer.
func SignedInt(width int, data uint64) Integer { return NewInteger(width, true, data) }

// Int64 interprets the Integer's bits as a signed value, sign-extending
// from Width.
func (i Integer) Int64() int64 {
	shift := 64 - i.Width
	return int64(i.Data<<shift) >> shift
}

// Uint64 returns the Integer's raw bit pattern.
func (i Integer) Uint64() uint64 { return i.Data }

// BitwiseNegate returns the one's complement of i.
func (i Integer) BitwiseNegate() Integer {
	return NewInteger(i.Width, i.Signed, ^i.Data)
}

// Negate returns the two's complement negation of i. i must be signed.
func (i Integer) Negate() Integer {
	return NewInteger(i.Width, i.Signed, (^i.Data)+1)
}

// Add returns i+rhs, wrapping modulo 2^Width. The operands must share a
// width and signedness.
func (i Integer) Add(rhs Integer) Integer { return NewInteger(i.Width, i.Signed, i.Data+rhs.Data) }

// Sub returns i-rhs, wrapping modulo 2^Width.
func (i Integer) Sub(rhs Integer) Integer { return NewInteger(i.Width, i.Signed, i.Data-rhs.Data) }

// Mul returns i*rhs, wrapping modulo 2^Width.
func (i Integer) Mul(rhs Integer) Integer { return NewInteger(i.Width, i.Signed, i.Data*rhs.Data) }

// Div returns i/rhs. For signed operands this is truncating signed
// division; for unsigned operands, native unsigned division.
func (i Integer) Div(rhs Integer) Integer {
	if i.Signed {
		return NewInteger(i.Width, true, uint64(i.Int64()/rhs.Int64()))
	}
	return NewInteger(i.Width, false, i.Data/rhs.Data)
}

// Shl returns i shifted left by rhs bits.
func (i Integer) Shl(rhs Integer) Integer {
	return NewInteger(i.Width, i.Signed, i.Data<<rhs.Data)
}

// Shr returns i shifted right by rhs bits: arithmetic (sign-extending) if
// i is signed, logical otherwise.
func (i Integer) Shr(rhs Integer) Integer {
	if i.Signed {
		return NewInteger(i.Width, true, uint64(i.Int64()>>rhs.Data))
	}
	return NewInteger(i.Width, false, i.Data>>rhs.Data)
}

// Compare returns -1, 0, or 1 comparing i and rhs numerically, respecting
// signedness.
func (i Integer) Compare(rhs Integer) int {
	if i.Signed {
		a, b := i.Int64(), rhs.Int64()
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		default:
			return 0
		}
	}
	a, b := i.Data, rhs.Data
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
