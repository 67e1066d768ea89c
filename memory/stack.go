// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package memory

import (
	"github.com/gvzbm/oxlr/ir"
	"github.com/gvzbm/oxlr/world"
)

// DefaultDataStackSize is the default byte capacity of a DataStack.
const DefaultDataStackSize = 1 * 1024 * 1024 // 1MiB

// DataStack is a single fixed-capacity arena, filled upward from offset 0,
// used for values allocated
// with StackAlloc/StackAllocArray: short-lived, frame-scoped storage that
// is reclaimed in bulk when a call frame returns rather than individually
// freed. Unlike the Heap, it is never garbage collected; PopFrame is the
// only way bytes are reclaimed.
type DataStack struct {
	world *world.World

	buf  []byte
	used int
	cap  int

	// frames records the high-water `used` mark at frame entry, so
	// PopFrame can rewind to it.
	frames []int
}

// NewDataStack constructs a DataStack with the given byte capacity.
func NewDataStack(w *world.World, capacity int) *DataStack {
	return &DataStack{world: w, buf: make([]byte, capacity), cap: capacity}
}

// PushFrame records the current high-water mark so a later PopFrame call
// can release everything allocated since.
func (s *DataStack) PushFrame() {
	s.frames = append(s.frames, s.used)
}

// PopFrame releases every stack allocation made since the matching
// PushFrame call.
func (s *DataStack) PopFrame() {
	n := len(s.frames)
	s.used = s.frames[n-1]
	s.frames = s.frames[:n-1]
}

func (s *DataStack) allocate(size int) (int, error) {
	if s.used+size > s.cap {
		return 0, &ErrDataStackOverflow{Capacity: s.cap, Used: s.used, Requested: size}
	}
	offset := s.used
	s.used += size
	return offset, nil
}

// StackAlloc allocates space for a single value of type ty on the stack
// and returns a Ref to it.
func (s *DataStack) StackAlloc(ty ir.Type) (Ref, error) {
	size, err := s.world.SizeOf(ty)
	if err != nil {
		return Ref{}, err
	}
	offset, err := s.allocate(size)
	if err != nil {
		return Ref{}, err
	}
	return Ref{typ: ty, stack: s, offset: offset}, nil
}

// StackAllocArray allocates space for count contiguous values of element
// type elemTy on the stack, preceded by an element count, and returns a
// Ref to the resulting Array(elemTy) value.
func (s *DataStack) StackAllocArray(elemTy ir.Type, count int) (Ref, error) {
	elemSize, err := s.world.SizeOf(elemTy)
	if err != nil {
		return Ref{}, err
	}
	size := arrayLenFieldSize + elemSize*count
	offset, err := s.allocate(size)
	if err != nil {
		return Ref{}, err
	}
	putUint(s.buf[offset:offset+arrayLenFieldSize], uint64(count))
	return Ref{typ: ir.Array(elemTy), stack: s, offset: offset}, nil
}

// CopyToHeap copies the value addressed by r (which may be stack- or
// heap-resident) into a fresh heap allocation, returning a Ref suitable
// for storing inline inside another heap value.
func (h *Heap) CopyToHeap(r Ref) (Ref, error) {
	size, err := sizeOfRef(h.world, r)
	if err != nil {
		return Ref{}, err
	}
	var dst Ref
	if r.typ.Kind == ir.KindArray {
		n, _ := r.ElementCount()
		dst, err = h.AllocArray(*r.typ.Elem, n)
	} else {
		dst, err = h.Alloc(r.typ)
	}
	if err != nil {
		return Ref{}, err
	}
	copy(dst.bytes()[dst.offset:dst.offset+size], r.bytes()[r.offset:r.offset+size])
	return dst, nil
}

// CopyToStack copies the value addressed by r into a fresh stack
// allocation on s.
func (s *DataStack) CopyToStack(r Ref) (Ref, error) {
	size, err := sizeOfRef(s.world, r)
	if err != nil {
		return Ref{}, err
	}
	var dst Ref
	if r.typ.Kind == ir.KindArray {
		n, _ := r.ElementCount()
		dst, err = s.StackAllocArray(*r.typ.Elem, n)
	} else {
		dst, err = s.StackAlloc(r.typ)
	}
	if err != nil {
		return Ref{}, err
	}
	copy(dst.bytes()[dst.offset:dst.offset+size], r.bytes()[r.offset:r.offset+size])
	return dst, nil
}

func sizeOfRef(w *world.World, r Ref) (int, error) {
	if r.typ.Kind == ir.KindArray {
		n, _ := r.ElementCount()
		elemSize, err := w.SizeOf(*r.typ.Elem)
		if err != nil {
			return 0, err
		}
		return arrayLenFieldSize + elemSize*n, nil
	}
	return w.SizeOf(r.typ)
}

func (s *DataStack) bytes() []byte { return s.buf }
