// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import (
	"fmt"

	"github.com/gvzbm/oxlr/ir"
	"github.com/gvzbm/oxlr/memory"
)

// Kind discriminates the cases of Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindFloat
	KindRef
	KindFn
)

// Value is the machine's register-resident value: a small tagged union
// holding either a scalar (Nil/Bool/Int/Float), a Ref to heap or stack
// memory, or a function pointer (a fully qualified function path).
type Value struct {
	Kind Kind

	Bool  bool
	Int   Integer
	Float Float
	Ref   memory.Ref
	Fn    ir.Path
}

// Nil is the unit value.
func Nil() Value { return Value{Kind: KindNil} }

// Bool constructs a boolean Value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// Int constructs an integer Value.
func Int(i Integer) Value { return Value{Kind: KindInt, Int: i} }

// Flt constructs a floating point Value.
func Flt(f Float) Value { return Value{Kind: KindFloat, Float: f} }

// RefVal constructs a Value wrapping a Ref.
func RefVal(r memory.Ref) Value { return Value{Kind: KindRef, Ref: r} }

// Fn constructs a function-pointer Value.
func Fn(path ir.Path) Value { return Value{Kind: KindFn, Fn: path} }

// TypeOf returns the static type of v. For KindRef this is v.Ref.Type(),
// the type of the value the Ref addresses, not a Ref type wrapping it.
func (v Value) TypeOf() ir.Type {
	switch v.Kind {
	case KindNil:
		return ir.Unit()
	case KindBool:
		return ir.Bool()
	case KindInt:
		return ir.Int(v.Int.Width, v.Int.Signed)
	case KindFloat:
		return ir.Float(v.Float.Width)
	case KindRef:
		return v.Ref.Type()
	case KindFn:
		return ir.Type{Kind: ir.KindFnRef}
	default:
		return ir.Unit()
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "()"
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindInt:
		if v.Int.Signed {
			return fmt.Sprintf("%d", v.Int.Int64())
		}
		return fmt.Sprintf("%d", v.Int.Uint64())
	case KindFloat:
		return fmt.Sprintf("%g", v.Float.Data)
	case KindRef:
		return fmt.Sprintf("&%s", v.Ref.Type())
	case KindFn:
		return fmt.Sprintf("fn(%s)", v.Fn)
	default:
		return "?"
	}
}

// Equal reports structural equality between v and o, as required for the
// Eq/NEq binary operators, which are valid for any two Values regardless of
// their kind (mismatched kinds are simply unequal rather than an error).
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNil:
		return true
	case KindBool:
		return v.Bool == o.Bool
	case KindInt:
		return v.Int.Width == o.Int.Width && v.Int.Signed == o.Int.Signed && v.Int.Data == o.Int.Data
	case KindFloat:
		return v.Float.Width == o.Float.Width && v.Float.Data == o.Float.Data
	case KindRef:
		return v.Ref.Equal(o.Ref)
	case KindFn:
		return v.Fn.Equal(o.Fn)
	default:
		return false
	}
}

// Load reads the value currently stored at r into a Value, dispatching on
// r's own type. Nested Ref/Array fields are reconstructed against the
// same heap r was read from.
func Load(r memory.Ref) Value {
	ty := r.Type()
	switch ty.Kind {
	case ir.KindUnit:
		return Nil()
	case ir.KindBool:
		return Bool(r.ReadBool())
	case ir.KindInt:
		return Int(NewInteger(ty.Width, ty.Signed, r.ReadInt(ty.Width)))
	case ir.KindFloat:
		return Flt(newFloat(ty.Width, r.ReadFloat(ty.Width)))
	case ir.KindRef:
		return RefVal(r.ReadRef(*ty.Elem))
	case ir.KindArray:
		return RefVal(r.ReadRef(*ty.Elem))
	case ir.KindAbstractRef:
		if rr, ok := r.ReadAbstractRef(); ok {
			return RefVal(rr)
		}
		return Nil()
	default:
		return Value{Kind: KindNil}
	}
}

// ErrTypeMismatch is returned by Store when v's type is not compatible
// with the location's type under the widening rules below.
type ErrTypeMismatch struct {
	Expected ir.Type
	Got      ir.Type
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch: cannot store %s into location of type %s", e.Got, e.Expected)
}

// Store writes v into the location addressed by r. Compatibility rules:
// Bool into Bool; an Int of the same signedness and width <= the
// location's (implicit widening, sign-extending for signed values); a
// Float of the same width; a Ref whose referent type equals the location's
// inner type; a Ref to an Array into an Array location; any Ref into an
// AbstractRef location; Nil into a Unit location (nothing is written).
// Anything else is an ErrTypeMismatch.
func Store(r memory.Ref, v Value) error {
	ty := r.Type()
	switch {
	case ty.Kind == ir.KindBool && v.Kind == KindBool:
		r.WriteBool(v.Bool)
		return nil
	case ty.Kind == ir.KindInt && v.Kind == KindInt:
		if v.Int.Signed != ty.Signed || v.Int.Width > ty.Width {
			return &ErrTypeMismatch{Expected: ty, Got: v.TypeOf()}
		}
		data := v.Int.Data
		if ty.Signed {
			data = uint64(v.Int.Int64())
		}
		r.WriteInt(ty.Width, data)
		return nil
	case ty.Kind == ir.KindFloat && v.Kind == KindFloat:
		if v.Float.Width != ty.Width {
			return &ErrTypeMismatch{Expected: ty, Got: v.TypeOf()}
		}
		r.WriteFloat(ty.Width, v.Float.Data)
		return nil
	case ty.Kind == ir.KindRef && v.Kind == KindRef:
		if !v.Ref.Type().Equal(*ty.Elem) {
			return &ErrTypeMismatch{Expected: ty, Got: v.TypeOf()}
		}
		return r.WriteRef(v.Ref)
	case ty.Kind == ir.KindArray && v.Kind == KindRef:
		if v.Ref.Type().Kind != ir.KindArray {
			return &ErrTypeMismatch{Expected: ty, Got: v.TypeOf()}
		}
		return r.WriteRef(v.Ref)
	case ty.Kind == ir.KindAbstractRef && v.Kind == KindRef:
		// Conformance of the pointee to the interface bounds is the
		// assembler's guarantee; only the handle is written here.
		return r.WriteRef(v.Ref)
	case ty.Kind == ir.KindUnit && v.Kind == KindNil:
		return nil
	default:
		return &ErrTypeMismatch{Expected: ty, Got: v.TypeOf()}
	}
}
