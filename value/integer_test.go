// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import "testing"

func TestIntegerArithmeticWraps(t *testing.T) {
	a := Unsigned(8, 250)
	b := Unsigned(8, 10)
	got := a.Add(b)
	if got.Data != 4 { // (250+10) mod 256 = 4
		t.Errorf("Add wraps to %d, want 4", got.Data)
	}
}

// TestIntegerUnsignedSubWraps pins the policy for unsigned subtraction below
// zero: this implementation wraps modulo 2^Width (native machine-word
// behavior), not saturating at zero.
func TestIntegerUnsignedSubWraps(t *testing.T) {
	a := Unsigned(8, 1)
	b := Unsigned(8, 2)
	got := a.Sub(b)
	if got.Data != 255 { // (1-2) mod 256 = 255
		t.Errorf("Sub underflow wraps to %d, want 255", got.Data)
	}
}

func TestIntegerSignedDivAndCompare(t *testing.T) {
	negSeven := int32(-7)
	a := SignedInt(32, uint64(negSeven))
	b := SignedInt(32, uint64(int32(2)))
	got := a.Div(b)
	if got.Int64() != -3 {
		t.Errorf("Div = %d, want -3", got.Int64())
	}
	if a.Compare(b) >= 0 {
		t.Error("expected -7 < 2")
	}
}

func TestIntegerNegate(t *testing.T) {
	a := SignedInt(8, 5)
	got := a.Negate()
	if got.Int64() != -5 {
		t.Errorf("Negate = %d, want -5", got.Int64())
	}
}

func TestIntegerShifts(t *testing.T) {
	a := Unsigned(8, 1)
	if got := a.Shl(Unsigned(8, 3)).Data; got != 8 {
		t.Errorf("Shl = %d, want 8", got)
	}
	negEight := int8(-8)
	neg := SignedInt(8, uint64(negEight))
	if got := neg.Shr(Unsigned(8, 1)).Int64(); got != -4 {
		t.Errorf("arithmetic Shr = %d, want -4", got)
	}
}
