// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package value

import (
	"os"
	"testing"

	"github.com/gvzbm/oxlr/ir"
	"github.com/gvzbm/oxlr/memory"
	"github.com/gvzbm/oxlr/world"
)

func testChdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(old) })
}

func newStoreTestHeap(t *testing.T) *memory.Heap {
	t.Helper()
	t.Setenv("OXLR_MODULE_PATH", t.TempDir())
	testChdir(t, t.TempDir())
	w, err := world.New(nil)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return memory.NewHeap(w, memory.DefaultMaxHeapSize, nil, nil)
}

// TestStoreWideningSignExtends pins implicit widening: a narrow signed
// value stored into a wider signed location keeps its numeric value.
func TestStoreWideningSignExtends(t *testing.T) {
	h := newStoreTestHeap(t)
	loc, err := h.Alloc(ir.Int(64, true))
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	negOne := int8(-1)
	if err := Store(loc, Int(SignedInt(8, uint64(negOne)))); err != nil {
		t.Fatalf("Store: %v", err)
	}
	got := Load(loc)
	if got.Kind != KindInt || got.Int.Width != 64 || got.Int.Int64() != -1 {
		t.Errorf("Load after widening store = %v, want Int64(-1) at width 64", got)
	}
}

func TestStoreRejectsNarrowingAndSignMismatch(t *testing.T) {
	h := newStoreTestHeap(t)

	narrow, err := h.Alloc(ir.Int(8, true))
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := Store(narrow, Int(SignedInt(16, 300))); err == nil {
		t.Error("expected error storing i16 into i8 location")
	} else if _, ok := err.(*ErrTypeMismatch); !ok {
		t.Errorf("expected ErrTypeMismatch, got %T: %v", err, err)
	}

	unsigned, err := h.Alloc(ir.Int(64, false))
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if err := Store(unsigned, Int(SignedInt(64, 1))); err == nil {
		t.Error("expected error storing signed int into unsigned location")
	} else if _, ok := err.(*ErrTypeMismatch); !ok {
		t.Errorf("expected ErrTypeMismatch, got %T: %v", err, err)
	}
}

// TestStoreLoadAbstractRef stores a concrete reference into a type-erased
// AbstractRef location and reads it back, recovering the pointee's
// concrete type from its allocation header.
func TestStoreLoadAbstractRef(t *testing.T) {
	h := newStoreTestHeap(t)

	pointee, err := h.Alloc(ir.Int(32, true))
	if err != nil {
		t.Fatalf("Alloc pointee: %v", err)
	}
	if err := Store(pointee, Int(SignedInt(32, 7))); err != nil {
		t.Fatalf("Store pointee: %v", err)
	}

	showPath := ir.MustParsePath("display::Show")
	loc, err := h.Alloc(ir.AbstractRef([]ir.Path{showPath}))
	if err != nil {
		t.Fatalf("Alloc abstract ref location: %v", err)
	}
	if err := Store(loc, RefVal(pointee)); err != nil {
		t.Fatalf("Store ref into abstract location: %v", err)
	}

	got := Load(loc)
	if got.Kind != KindRef {
		t.Fatalf("Load = %v, want a Ref", got)
	}
	if !got.Ref.Type().Equal(ir.Int(32, true)) {
		t.Errorf("recovered pointee type = %s, want i32", got.Ref.Type())
	}
	if inner := Load(got.Ref); inner.Kind != KindInt || inner.Int.Int64() != 7 {
		t.Errorf("pointee value = %v, want Int(7)", inner)
	}
}

// TestStoreLoadScalarRoundTrip covers the set_value/value round-trip law
// for the scalar kinds.
func TestStoreLoadScalarRoundTrip(t *testing.T) {
	h := newStoreTestHeap(t)

	neg321 := int16(-321)
	cases := []struct {
		ty ir.Type
		v  Value
	}{
		{ir.Bool(), Bool(true)},
		{ir.Int(32, false), Int(Unsigned(32, 12345))},
		{ir.Int(16, true), Int(SignedInt(16, uint64(neg321)))},
		{ir.Float(32), Flt(F32(1.5))},
		{ir.Float(64), Flt(F64(-2.25))},
	}
	for _, c := range cases {
		loc, err := h.Alloc(c.ty)
		if err != nil {
			t.Fatalf("Alloc(%s): %v", c.ty, err)
		}
		if err := Store(loc, c.v); err != nil {
			t.Fatalf("Store(%s): %v", c.ty, err)
		}
		got := Load(loc)
		want := c.v
		if c.ty.Kind == ir.KindInt {
			// Loading always yields the location's own width.
			want = Int(Integer{Width: c.ty.Width, Signed: c.ty.Signed, Data: c.v.Int.Data})
			if c.ty.Signed {
				want = Int(NewInteger(c.ty.Width, true, uint64(c.v.Int.Int64())))
			}
		}
		if !got.Equal(want) {
			t.Errorf("round trip through %s: got %v, want %v", c.ty, got, want)
		}
	}
}
