// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package memory

import (
	"fmt"

	"github.com/gvzbm/oxlr/ir"
)

// ErrOutOfMemory is returned when an allocation does not fit even after the
// GC hook has run once.
type ErrOutOfMemory struct {
	MaxSize     int
	CurrentSize int
	Requested   int
}

func (e *ErrOutOfMemory) Error() string {
	return fmt.Sprintf("memory exhausted: max size %d, current size %d, requested %d", e.MaxSize, e.CurrentSize, e.Requested)
}

// ErrDataStackOverflow is returned when a stack allocation would exceed the
// data stack's fixed capacity.
type ErrDataStackOverflow struct {
	Capacity  int
	Used      int
	Requested int
}

func (e *ErrDataStackOverflow) Error() string {
	return fmt.Sprintf("data stack overflow: capacity %d, used %d, requested %d", e.Capacity, e.Used, e.Requested)
}

// ErrIndexOutOfBounds is returned by Ref.Indexed when index is outside
// [0, elements).
type ErrIndexOutOfBounds struct {
	Index, Len int
}

func (e *ErrIndexOutOfBounds) Error() string {
	return fmt.Sprintf("index %d out of bounds for length %d", e.Index, e.Len)
}

// ErrInvalidIndexType is returned when Indexed is called against a type
// that cannot be indexed at all (not an Array, a Tuple or a Product-defined
// User type), and by Heap.Alloc when given an Array type.
type ErrInvalidIndexType struct {
	Type ir.Type
}

func (e *ErrInvalidIndexType) Error() string {
	return fmt.Sprintf("cannot index into type %s", e.Type)
}

// ErrFieldNotFound is returned by Ref.Field when the named field does not
// exist on the referenced Product type.
type ErrFieldNotFound struct {
	Type  ir.Type
	Field ir.Symbol
}

func (e *ErrFieldNotFound) Error() string {
	return fmt.Sprintf("type %s has no field %s", e.Type, e.Field)
}

// ErrInvalidForSum is returned by Ref.Field when field access is attempted
// on a Sum type directly (fields belong to a Sum's active variant, which
// must be reached via UnwrapVariant first).
type ErrInvalidForSum struct {
	Type ir.Type
}

func (e *ErrInvalidForSum) Error() string {
	return fmt.Sprintf("cannot access fields directly on sum type %s; unwrap the active variant first", e.Type)
}

// ErrNotHeapResident is returned when a Ref backed by the data stack is
// stored into a heap-resident field without first being copied to the
// heap (see the machine package's CopyToHeap instruction).
type ErrNotHeapResident struct {
	Type ir.Type
}

func (e *ErrNotHeapResident) Error() string {
	return fmt.Sprintf("value of type %s must be copied to the heap before being stored by reference", e.Type)
}
