// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package memory implements the interpreter's addressable storage: a heap
// of typed allocations and a per-call data stack, both laid out as flat
// byte arenas so a Ref can address any field or array element by an
// integer offset without the runtime carrying raw pointers.
package memory

import (
	"github.com/gvzbm/oxlr/ir"
	"github.com/gvzbm/oxlr/logging"
	"github.com/gvzbm/oxlr/metrics"
	"github.com/gvzbm/oxlr/world"
)

// DefaultMaxHeapSize is the default ceiling on heap bytes in use, absent a
// caller-supplied override. The heap preallocates one contiguous arena up
// front, so the default is a reasonable single-process budget rather than
// an address-space ceiling.
const DefaultMaxHeapSize = 64 * 1024 * 1024 // 64MiB

// HeaderSize is the number of arena bytes reserved ahead of every
// allocation's payload for its header: the referent type pointer, the
// element count, and the previous-allocation link, one machine word each.
// The header's contents live out of band in Heap.headers (Go pointers
// cannot be stored raw in a byte arena), but the bytes are reserved and
// charged against the heap ceiling as if laid out inline.
const HeaderSize = 3 * 8

// headerAlign places every header, and therefore every payload, at a
// machine-word boundary.
const headerAlign = 8

func alignUp(n, a int) int {
	if rem := n % a; rem != 0 {
		n += a - rem
	}
	return n
}

// header records one heap allocation's type, element count (for arrays)
// and its position in the prev-pointer chain that a future GC sweep would
// walk to find every live allocation regardless of reachability from
// registers.
type header struct {
	typ      ir.Type // element type for arrays, value type otherwise
	isArray  bool
	elements int
	offset   int
	prev     int // index into Heap.headers, or -1
}

// Heap is a bump-allocated byte arena plus the allocation metadata needed
// to interpret any offset into it as a typed value.
type Heap struct {
	world *world.World
	log   logging.Logger
	vm    *metrics.VM

	buf     []byte
	used    int
	maxSize int

	headers   []header
	byOffset  map[int]int // payload offset -> index into headers
	lastAlloc int         // index into headers, or -1
}

// NewHeap constructs a Heap with the given byte capacity, backed by w for
// type sizing and alignment. log and vm may be nil.
func NewHeap(w *world.World, maxSize int, log logging.Logger, vm *metrics.VM) *Heap {
	if log == nil {
		log = logging.NewNoOpLogger()
	}
	if vm == nil {
		vm = metrics.NoOp()
	}
	return &Heap{
		world:     w,
		log:       log,
		vm:        vm,
		buf:       make([]byte, maxSize),
		maxSize:   maxSize,
		byOffset:  make(map[int]int),
		lastAlloc: -1,
	}
}

// Alloc allocates space for a single value of type ty and returns a Ref to
// it. ty must not be an Array type; use AllocArray for those.
func (h *Heap) Alloc(ty ir.Type) (Ref, error) {
	if ty.Kind == ir.KindArray {
		return Ref{}, &ErrInvalidIndexType{Type: ty}
	}
	size, err := h.world.SizeOf(ty)
	if err != nil {
		return Ref{}, err
	}
	offset, err := h.allocate(size)
	if err != nil {
		return Ref{}, err
	}
	h.pushHeader(header{typ: ty, elements: 1, offset: offset})
	h.vm.Allocations.Inc()
	return Ref{typ: ty, heap: h, offset: offset}, nil
}

// AllocArray allocates space for count contiguous values of element type
// elemTy, preceded by a machine-word element count, and returns a Ref to
// the resulting Array(elemTy) value.
func (h *Heap) AllocArray(elemTy ir.Type, count int) (Ref, error) {
	elemSize, err := h.world.SizeOf(elemTy)
	if err != nil {
		return Ref{}, err
	}
	size := arrayLenFieldSize + elemSize*count
	offset, err := h.allocate(size)
	if err != nil {
		return Ref{}, err
	}
	putUint(h.buf[offset:offset+arrayLenFieldSize], uint64(count))
	h.pushHeader(header{typ: elemTy, isArray: true, elements: count, offset: offset})
	h.vm.Allocations.Inc()
	return Ref{typ: ir.Array(elemTy), heap: h, offset: offset}, nil
}

func (h *Heap) pushHeader(hd header) {
	hd.prev = h.lastAlloc
	h.headers = append(h.headers, hd)
	h.lastAlloc = len(h.headers) - 1
	h.byOffset[hd.offset] = h.lastAlloc
}

// typeAt recovers the type of the allocation whose payload starts at
// offset. Used to re-type a reference read out of an AbstractRef location,
// whose concrete pointee type is erased from the inline representation.
func (h *Heap) typeAt(offset int) (ir.Type, bool) {
	i, ok := h.byOffset[offset]
	if !ok {
		return ir.Type{}, false
	}
	hd := h.headers[i]
	if hd.isArray {
		return ir.Array(hd.typ), true
	}
	return hd.typ, true
}

// allocate reserves HeaderSize + size bytes from the arena at a header
// boundary and returns the payload's offset, running the GC hook once and
// retrying if the first attempt doesn't fit.
func (h *Heap) allocate(size int) (int, error) {
	ranGC := false
	for {
		start := alignUp(h.used, headerAlign)
		if start+HeaderSize+size <= h.maxSize {
			h.used = start + HeaderSize + size
			return start + HeaderSize, nil
		}
		if ranGC {
			return 0, &ErrOutOfMemory{MaxSize: h.maxSize, CurrentSize: h.used, Requested: HeaderSize + size}
		}
		h.gc()
		ranGC = true
	}
}

// gc is a reserved hook for a future collector. It does not currently free
// any memory; it only logs that a collection was requested, matching the
// runtime's documented non-goal of implementing real garbage collection in
// this revision.
func (h *Heap) gc() {
	h.vm.GCRuns.Inc()
	h.log.Info("running garbage collection hook (no-op): used=%d max=%d", h.used, h.maxSize)
}

// bytes returns the full backing arena, for Ref to slice into.
func (h *Heap) bytes() []byte { return h.buf }

// Used returns the number of arena bytes currently allocated on the heap,
// headers included.
func (h *Heap) Used() int { return h.used }
