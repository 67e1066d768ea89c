// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import (
	"fmt"

	"github.com/gvzbm/oxlr/ir"
)

// Frame holds one call's register file. Registers are indexed by
// ir.Register and start out Nil.
type Frame struct {
	Registers []Value
}

// NewFrame allocates a Frame with numRegisters registers, all Nil.
func NewFrame(numRegisters int) *Frame {
	regs := make([]Value, numRegisters)
	for i := range regs {
		regs[i] = Nil()
	}
	return &Frame{Registers: regs}
}

// ErrRegisterOutOfRange is returned by Load/Store when a register index is
// outside the frame's allocated range.
type ErrRegisterOutOfRange struct {
	Register ir.Register
	Count    int
}

func (e *ErrRegisterOutOfRange) Error() string {
	return fmt.Sprintf("register %d out of range for frame with %d registers", e.Register, e.Count)
}

// Load returns the current value of register r.
func (f *Frame) Load(r ir.Register) (Value, error) {
	if int(r) >= len(f.Registers) {
		return Value{}, &ErrRegisterOutOfRange{Register: r, Count: len(f.Registers)}
	}
	return f.Registers[r], nil
}

// Store writes v into register r.
func (f *Frame) Store(r ir.Register, v Value) error {
	if int(r) >= len(f.Registers) {
		return &ErrRegisterOutOfRange{Register: r, Count: len(f.Registers)}
	}
	f.Registers[r] = v
	return nil
}

// Convert resolves an ir.Val operand to a concrete Value: a register read,
// or an immediate literal.
func (f *Frame) Convert(val ir.Val) (Value, error) {
	if val.IsReg {
		return f.Load(val.Reg)
	}
	switch val.LitKind {
	case ir.LitUnit:
		return Nil(), nil
	case ir.LitBool:
		return Bool(val.Bool), nil
	case ir.LitInt:
		return Int(NewInteger(val.IntW, val.IntSign, val.Int)), nil
	case ir.LitFloat:
		return Flt(newFloat(val.FloatW, val.Float)), nil
	default:
		return Value{}, fmt.Errorf("unknown literal kind %d", val.LitKind)
	}
}
