// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package world

import "github.com/gvzbm/oxlr/ir"

// pointerSize is the in-heap representation size, in bytes, of any value
// that is stored behind a pointer rather than inline: refs, abstract
// (trait-object) refs, and arrays. This matches a native pointer width on
// every platform the runtime targets.
const pointerSize = 8

// sumDiscriminantSize is the number of bytes reserved ahead of a Sum
// type's active variant payload to record which variant is active.
const sumDiscriminantSize = 1

// SizeOf returns the number of bytes a value of type ty occupies, inline,
// wherever it's stored (a struct field, an array element, a data stack
// slot, or a register's backing storage).
func (w *World) SizeOf(ty ir.Type) (int, error) {
	if cached, ok := w.sizeCache.Get(ty); ok {
		return cached, nil
	}
	n, err := w.sizeOfUncached(ty)
	if err != nil {
		return 0, err
	}
	w.sizeCache.Put(ty, n)
	return n, nil
}

func (w *World) sizeOfUncached(ty ir.Type) (int, error) {
	switch ty.Kind {
	case ir.KindUnit:
		return 0, nil
	case ir.KindBool:
		return 1, nil
	case ir.KindInt, ir.KindFloat:
		return ty.Width / 8, nil
	case ir.KindRef, ir.KindAbstractRef, ir.KindArray:
		return pointerSize, nil
	case ir.KindTuple:
		_, size, err := w.layoutMembers(ty.Elems)
		return size, err
	case ir.KindUser:
		td, err := w.TypeDefOf(ty)
		if err != nil {
			return 0, err
		}
		return w.SizeOfUser(td)
	case ir.KindFnRef:
		return 0, nil
	case ir.KindVar:
		return 0, &ErrUnresolvedTypeParameter{Symbol: ty.VarName}
	default:
		return 0, &ErrUnknownType{}
	}
}

// SizeOfUser returns the size of an already-instantiated (no remaining
// type parameters) TypeDefinition.
func (w *World) SizeOfUser(td ir.TypeDefinition) (int, error) {
	switch td.Kind {
	case ir.DefNewType:
		return w.SizeOf(*td.Inner)
	case ir.DefProduct:
		types := make([]ir.Type, len(td.Fields))
		for i, f := range td.Fields {
			types[i] = f.Type
		}
		_, size, err := w.layoutMembers(types)
		return size, err
	case ir.DefSum:
		max := 0
		for _, v := range td.Variants {
			n, err := w.SizeOfUser(v.Def)
			if err != nil {
				return 0, err
			}
			if n > max {
				max = n
			}
		}
		return max + sumDiscriminantSize, nil
	default:
		return 0, &ErrUnknownType{}
	}
}

// RequiredAlignment returns the byte alignment a value of type ty
// requires. Primitive numeric types align to their own width; Bool and
// Unit align to 1; everything else (structs, sums, pointers) aligns to the
// platform pointer size.
func (w *World) RequiredAlignment(ty ir.Type) int {
	switch ty.Kind {
	case ir.KindInt, ir.KindFloat:
		return ty.Width / 8
	case ir.KindBool, ir.KindUnit:
		return 1
	default:
		return pointerSize
	}
}

// alignUp rounds n up to the nearest multiple of a.
func alignUp(n, a int) int {
	if a <= 1 {
		return n
	}
	if rem := n % a; rem != 0 {
		n += a - rem
	}
	return n
}

// layoutMembers computes the padded layout of an ordered member list (a
// tuple's elements or a product's fields): each member is placed at the
// next multiple of its required alignment, and the total is rounded up to
// the widest member alignment so consecutive values of the aggregate in
// an array stay aligned. Returns each member's byte offset and the total
// size. memory.Ref's field/index walks consume the same offsets via
// TupleOffsets/FieldOffsets, so sizing and addressing always agree.
func (w *World) layoutMembers(types []ir.Type) ([]int, int, error) {
	offsets := make([]int, len(types))
	offset := 0
	maxAlign := 1
	for i, t := range types {
		a := w.RequiredAlignment(t)
		if a > maxAlign {
			maxAlign = a
		}
		n, err := w.SizeOf(t)
		if err != nil {
			return nil, 0, err
		}
		offset = alignUp(offset, a)
		offsets[i] = offset
		offset += n
	}
	return offsets, alignUp(offset, maxAlign), nil
}

// TupleOffsets returns the aligned byte offset of every element of a
// tuple, in declaration order.
func (w *World) TupleOffsets(elems []ir.Type) ([]int, error) {
	offsets, _, err := w.layoutMembers(elems)
	return offsets, err
}

// FieldOffsets returns the aligned byte offset of every field of a
// product definition, in declaration order.
func (w *World) FieldOffsets(fields []ir.Field) ([]int, error) {
	types := make([]ir.Type, len(fields))
	for i, f := range fields {
		types[i] = f.Type
	}
	offsets, _, err := w.layoutMembers(types)
	return offsets, err
}
