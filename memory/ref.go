// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package memory

import (
	"encoding/binary"
	"math"

	"github.com/gvzbm/oxlr/ir"
	"github.com/gvzbm/oxlr/world"
)

// arrayLenFieldSize is the width, in bytes, of the element count prefix
// stored ahead of every array's elements.
const arrayLenFieldSize = 8

// pointerFieldSize is the width, in bytes, a Ref or Array field occupies
// when stored inline inside another value: a heap-relative byte offset.
const pointerFieldSize = 8

func putUint(b []byte, v uint64) { binary.LittleEndian.PutUint64(b, v) }
func getUint(b []byte) uint64    { return binary.LittleEndian.Uint64(b) }

// Ref is a typed handle to a value living in a Heap or a DataStack frame.
// It carries its own type, so field and array accesses are self
// describing: no separate type-tracking side table is needed to interpret
// the bytes a Ref points at.
type Ref struct {
	typ ir.Type

	heap  *Heap
	stack *DataStack

	offset int
}

// Type returns the type of the value this Ref addresses.
func (r Ref) Type() ir.Type { return r.typ }

// Equal reports whether r and o address the same location: same backing
// region (heap or a data stack), same byte offset, and the same type.
func (r Ref) Equal(o Ref) bool {
	return r.heap == o.heap && r.stack == o.stack && r.offset == o.offset && r.typ.Equal(o.typ)
}

// IsHeapResident reports whether r addresses heap memory (as opposed to a
// data stack frame). Only heap-resident refs may be stored inline inside
// another heap value (see ErrNotHeapResident).
func (r Ref) IsHeapResident() bool { return r.heap != nil }

func (r Ref) bytes() []byte {
	if r.heap != nil {
		return r.heap.bytes()
	}
	return r.stack.bytes()
}

// ElementCount returns the number of elements addressed by r, and true, if
// r addresses an Array value. Otherwise it returns (0, false).
func (r Ref) ElementCount() (int, bool) {
	if r.typ.Kind != ir.KindArray {
		return 0, false
	}
	return int(getUint(r.bytes()[r.offset : r.offset+arrayLenFieldSize])), true
}

// ReadInt reads an integer payload of the given bit width from r's
// location, zero/sign interpretation left to the caller.
func (r Ref) ReadInt(width int) uint64 {
	b := r.bytes()[r.offset:]
	switch width {
	case 8:
		return uint64(b[0])
	case 16:
		return uint64(binary.LittleEndian.Uint16(b))
	case 32:
		return uint64(binary.LittleEndian.Uint32(b))
	case 64:
		return binary.LittleEndian.Uint64(b)
	default:
		panic("unsupported integer width")
	}
}

// WriteInt writes data truncated to the given bit width at r's location.
func (r Ref) WriteInt(width int, data uint64) {
	b := r.bytes()[r.offset:]
	switch width {
	case 8:
		b[0] = byte(data)
	case 16:
		binary.LittleEndian.PutUint16(b, uint16(data))
	case 32:
		binary.LittleEndian.PutUint32(b, uint32(data))
	case 64:
		binary.LittleEndian.PutUint64(b, data)
	default:
		panic("unsupported integer width")
	}
}

// ReadBool reads a boolean payload at r's location.
func (r Ref) ReadBool() bool {
	return r.bytes()[r.offset] != 0
}

// WriteBool writes a boolean payload at r's location.
func (r Ref) WriteBool(v bool) {
	if v {
		r.bytes()[r.offset] = 1
	} else {
		r.bytes()[r.offset] = 0
	}
}

// ReadFloat reads a floating point payload of the given bit width (32 or
// 64) at r's location.
func (r Ref) ReadFloat(width int) float64 {
	b := r.bytes()[r.offset:]
	if width == 32 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// WriteFloat writes a floating point payload of the given bit width at
// r's location.
func (r Ref) WriteFloat(width int, v float64) {
	b := r.bytes()[r.offset:]
	if width == 32 {
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
	} else {
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	}
}

// ReadRef reconstructs the Ref stored inline at r's location, interpreting
// it as an offset into r's own heap. elemType is the type the reconstructed
// Ref should carry (the Ref/Array's element or inner type, known from
// context rather than from the stored bytes).
func (r Ref) ReadRef(elemType ir.Type) Ref {
	off := int(getUint(r.bytes()[r.offset : r.offset+pointerFieldSize]))
	return Ref{typ: elemType, heap: r.heap, offset: off}
}

// ReadAbstractRef reconstructs the Ref stored inline at r's location when
// r addresses an AbstractRef value. The pointee's concrete type is not
// recorded inline (it is erased behind the interface bounds), so it is
// recovered from the pointee's allocation header instead.
func (r Ref) ReadAbstractRef() (Ref, bool) {
	if r.heap == nil {
		return Ref{}, false
	}
	off := int(getUint(r.bytes()[r.offset : r.offset+pointerFieldSize]))
	ty, ok := r.heap.typeAt(off)
	if !ok {
		return Ref{}, false
	}
	return Ref{typ: ty, heap: r.heap, offset: off}, true
}

// WriteRef stores other inline at r's location. other must be
// heap-resident, and must live on the same heap as r.
func (r Ref) WriteRef(other Ref) error {
	if !other.IsHeapResident() {
		return &ErrNotHeapResident{Type: other.typ}
	}
	putUint(r.bytes()[r.offset:r.offset+pointerFieldSize], uint64(other.offset))
	return nil
}

// Indexed returns a Ref to the index'th element of r: an array element, a
// tuple element, or (by declaration position) a field of a Product-defined
// User value. Tuple and product offsets come from the world's layout
// oracle, so they agree with Field and with SizeOf's padding.
func (r Ref) Indexed(w *world.World, index int) (Ref, error) {
	switch r.typ.Kind {
	case ir.KindArray:
		n, _ := r.ElementCount()
		if index < 0 || index >= n {
			return Ref{}, &ErrIndexOutOfBounds{Index: index, Len: n}
		}
		elemSize, err := w.SizeOf(*r.typ.Elem)
		if err != nil {
			return Ref{}, err
		}
		return Ref{
			typ:    *r.typ.Elem,
			heap:   r.heap,
			stack:  r.stack,
			offset: r.offset + arrayLenFieldSize + index*elemSize,
		}, nil
	case ir.KindTuple:
		if index < 0 || index >= len(r.typ.Elems) {
			return Ref{}, &ErrIndexOutOfBounds{Index: index, Len: len(r.typ.Elems)}
		}
		offsets, err := w.TupleOffsets(r.typ.Elems)
		if err != nil {
			return Ref{}, err
		}
		return Ref{
			typ:    r.typ.Elems[index],
			heap:   r.heap,
			stack:  r.stack,
			offset: r.offset + offsets[index],
		}, nil
	case ir.KindUser:
		td, err := w.TypeDefOf(r.typ)
		if err != nil {
			return Ref{}, err
		}
		if td.Kind != ir.DefProduct {
			return Ref{}, &ErrInvalidIndexType{Type: r.typ}
		}
		if index < 0 || index >= len(td.Fields) {
			return Ref{}, &ErrIndexOutOfBounds{Index: index, Len: len(td.Fields)}
		}
		offsets, err := w.FieldOffsets(td.Fields)
		if err != nil {
			return Ref{}, err
		}
		return Ref{
			typ:    td.Fields[index].Type,
			heap:   r.heap,
			stack:  r.stack,
			offset: r.offset + offsets[index],
		}, nil
	default:
		return Ref{}, &ErrInvalidIndexType{Type: r.typ}
	}
}

// Reinterpret returns a Ref addressing the byte at offset+delta relative to
// r's own location, carrying ty as its type instead of r's. The machine
// package's UnwrapVariant instruction uses this to descend past a sum
// value's discriminant byte into its active variant's payload, whose type
// is only known at that instruction (see ir.Type.InlineDef).
func (r Ref) Reinterpret(ty ir.Type, delta int) Ref {
	return Ref{typ: ty, heap: r.heap, stack: r.stack, offset: r.offset + delta}
}

// Field returns a Ref to the named field of r, which must address a
// Product-defined User value (or transparently, the inner value of a
// NewType wrapper).
func (r Ref) Field(w *world.World, field ir.Symbol) (Ref, error) {
	if r.typ.Kind != ir.KindUser {
		return Ref{}, &ErrFieldNotFound{Type: r.typ, Field: field}
	}
	td, err := w.TypeDefOf(r.typ)
	if err != nil {
		return Ref{}, err
	}
	switch td.Kind {
	case ir.DefNewType:
		return Ref{typ: *td.Inner, heap: r.heap, stack: r.stack, offset: r.offset}, nil
	case ir.DefSum:
		return Ref{}, &ErrInvalidForSum{Type: r.typ}
	case ir.DefProduct:
		offsets, err := w.FieldOffsets(td.Fields)
		if err != nil {
			return Ref{}, err
		}
		for i, f := range td.Fields {
			if f.Name == field {
				return Ref{typ: f.Type, heap: r.heap, stack: r.stack, offset: r.offset + offsets[i]}, nil
			}
		}
		return Ref{}, &ErrFieldNotFound{Type: r.typ, Field: field}
	default:
		return Ref{}, &ErrFieldNotFound{Type: r.typ, Field: field}
	}
}
