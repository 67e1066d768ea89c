// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gvzbm/oxlr/ir"
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

func newTestWorld(t *testing.T, modules ...*ir.Module) *world.World {
	t.Helper()
	global := t.TempDir()
	for _, m := range modules {
		fp := filepath.Join(global, m.Path.String()+"#"+m.Version+".om")
		f, err := os.Create(fp)
		if err != nil {
			t.Fatalf("create module file: %v", err)
		}
		if err := ir.Encode(f, m); err != nil {
			t.Fatalf("encode module: %v", err)
		}
		f.Close()
	}
	t.Setenv("OXLR_MODULE_PATH", global)
	testChdir(t, t.TempDir())
	w, err := world.New(nil)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	for _, m := range modules {
		if err := w.Load(m.Path, "*"); err != nil {
			t.Fatalf("Load(%s): %v", m.Path, err)
		}
	}
	return w
}

func TestHeapAllocInt(t *testing.T) {
	w := newTestWorld(t)
	h := NewHeap(w, DefaultMaxHeapSize, nil, nil)

	r, err := h.Alloc(ir.Int(32, true))
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	negSeven := int32(-7)
	r.WriteInt(32, uint64(negSeven))
	got := int32(r.ReadInt(32))
	if got != -7 {
		t.Errorf("ReadInt = %d, want -7", got)
	}
}

func TestHeapAllocArrayAndIndex(t *testing.T) {
	w := newTestWorld(t)
	h := NewHeap(w, DefaultMaxHeapSize, nil, nil)

	r, err := h.AllocArray(ir.Int(64, false), 10)
	if err != nil {
		t.Fatalf("AllocArray: %v", err)
	}
	n, ok := r.ElementCount()
	if !ok || n != 10 {
		t.Fatalf("ElementCount = %d,%v want 10,true", n, ok)
	}

	for i := 0; i < 10; i++ {
		el, err := r.Indexed(w, i)
		if err != nil {
			t.Fatalf("Indexed(%d): %v", i, err)
		}
		el.WriteInt(64, uint64(i*i))
	}
	for i := 0; i < 10; i++ {
		el, err := r.Indexed(w, i)
		if err != nil {
			t.Fatalf("Indexed(%d): %v", i, err)
		}
		if got := el.ReadInt(64); got != uint64(i*i) {
			t.Errorf("element %d = %d, want %d", i, got, i*i)
		}
	}

	if _, err := r.Indexed(w, 10); err == nil {
		t.Error("expected out-of-bounds error")
	}
}

func TestHeapAllocExactlyToLimit(t *testing.T) {
	w := newTestWorld(t)
	h := NewHeap(w, HeaderSize+8, nil, nil)

	if _, err := h.Alloc(ir.Int(64, false)); err != nil {
		t.Fatalf("Alloc filling the heap exactly: %v", err)
	}
	if h.Used() != HeaderSize+8 {
		t.Fatalf("Used = %d, want %d", h.Used(), HeaderSize+8)
	}
	// One more byte does not fit, and the GC hook reclaims nothing.
	if _, err := h.Alloc(ir.Bool()); err == nil {
		t.Fatal("expected out of memory for one byte past the limit")
	} else if _, ok := err.(*ErrOutOfMemory); !ok {
		t.Fatalf("expected ErrOutOfMemory, got %T: %v", err, err)
	}
}

func TestHeapOutOfMemoryAfterGC(t *testing.T) {
	w := newTestWorld(t)
	h := NewHeap(w, 4, nil, nil) // too small for even one allocation header

	if _, err := h.Alloc(ir.Int(64, false)); err == nil {
		t.Fatal("expected out of memory error")
	} else if _, ok := err.(*ErrOutOfMemory); !ok {
		t.Fatalf("expected ErrOutOfMemory, got %T: %v", err, err)
	}
}

func TestHeapFieldAccess(t *testing.T) {
	pointModule := &ir.Module{
		Path:       ir.MustParsePath("geometry"),
		Version:    "1.0.0",
		Types:      map[ir.Symbol]ir.TypeDefinition{},
		Interfaces: map[ir.Symbol]ir.Interface{},
		Functions:  map[ir.Symbol]ir.FunctionEntry{},
	}
	pointModule.Types["Point"] = ir.ProductDef(nil, []ir.Field{
		{Name: "x", Type: ir.Int(32, true)},
		{Name: "y", Type: ir.Int(32, true)},
	})
	w := newTestWorld(t, pointModule)
	h := NewHeap(w, DefaultMaxHeapSize, nil, nil)

	pointTy := ir.User(ir.MustParsePath("geometry::Point"), nil)
	r, err := h.Alloc(pointTy)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	xf, err := r.Field(w, "x")
	if err != nil {
		t.Fatalf("Field(x): %v", err)
	}
	yf, err := r.Field(w, "y")
	if err != nil {
		t.Fatalf("Field(y): %v", err)
	}
	xf.WriteInt(32, uint64(int32(7)))
	yf.WriteInt(32, uint64(int32(35)))

	xf2, _ := r.Field(w, "x")
	yf2, _ := r.Field(w, "y")
	sum := int32(xf2.ReadInt(32)) + int32(yf2.ReadInt(32))
	if sum != 42 {
		t.Errorf("x+y = %d, want 42", sum)
	}

	if _, err := r.Field(w, "z"); err == nil {
		t.Error("expected field-not-found error")
	}
}

// TestIndexedAgreesWithField pins the layout invariant on a product with
// mixed field alignments: indexing a field by declaration position must
// resolve to the same location as naming it, with padding applied the
// same way on both paths.
func TestIndexedAgreesWithField(t *testing.T) {
	m := &ir.Module{
		Path:       ir.MustParsePath("records"),
		Version:    "1.0.0",
		Types:      map[ir.Symbol]ir.TypeDefinition{},
		Interfaces: map[ir.Symbol]ir.Interface{},
		Functions:  map[ir.Symbol]ir.FunctionEntry{},
	}
	m.Types["Flagged"] = ir.ProductDef(nil, []ir.Field{
		{Name: "flag", Type: ir.Bool()},
		{Name: "count", Type: ir.Int(64, true)},
	})
	w := newTestWorld(t, m)
	h := NewHeap(w, DefaultMaxHeapSize, nil, nil)

	r, err := h.Alloc(ir.User(ir.MustParsePath("records::Flagged"), nil))
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	names := []ir.Symbol{"flag", "count"}
	for i, name := range names {
		byIndex, err := r.Indexed(w, i)
		if err != nil {
			t.Fatalf("Indexed(%d): %v", i, err)
		}
		byName, err := r.Field(w, name)
		if err != nil {
			t.Fatalf("Field(%s): %v", name, err)
		}
		if !byIndex.Equal(byName) {
			t.Errorf("Indexed(%d) and Field(%s) disagree", i, name)
		}
	}

	// count sits past the flag's alignment padding.
	count, _ := r.Field(w, "count")
	negNine := int64(-9)
	count.WriteInt(64, uint64(negNine))
	flag, _ := r.Field(w, "flag")
	flag.WriteBool(true)
	if got := int64(count.ReadInt(64)); got != -9 {
		t.Errorf("count = %d after writing flag, want -9", got)
	}
}
