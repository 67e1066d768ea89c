// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"

	"github.com/gvzbm/oxlr/ir"
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

func writeModuleFile(t *testing.T, dir string, m *ir.Module) string {
	t.Helper()
	name := m.Path.String() + ModuleFileSeparator + m.Version + ModuleFileExt
	fp := filepath.Join(dir, name)
	f, err := os.Create(fp)
	if err != nil {
		t.Fatalf("create module file: %v", err)
	}
	defer f.Close()
	if err := ir.Encode(f, m); err != nil {
		t.Fatalf("encode module: %v", err)
	}
	return fp
}

func newTestWorld(t *testing.T, global string) *World {
	t.Helper()
	t.Setenv(EnvModulePath, global)
	local := t.TempDir()
	testChdir(t, local)
	w, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func pointModule() *ir.Module {
	return &ir.Module{
		Path:    ir.MustParsePath("geometry"),
		Version: "1.0.0",
		Types: map[ir.Symbol]ir.TypeDefinition{
			"Point": ir.ProductDef(nil, []ir.Field{
				{Name: "x", Type: ir.Int(32, true)},
				{Name: "y", Type: ir.Int(32, true)},
			}),
		},
		Interfaces: map[ir.Symbol]ir.Interface{},
		Functions:  map[ir.Symbol]ir.FunctionEntry{},
	}
}

func TestLoadAndGetType(t *testing.T) {
	global := t.TempDir()
	writeModuleFile(t, global, pointModule())
	w := newTestWorld(t, global)

	if err := w.Load(ir.MustParsePath("geometry"), "*"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	td, err := w.GetType(ir.MustParsePath("geometry::Point"))
	if err != nil {
		t.Fatalf("GetType: %v", err)
	}
	if td.Kind != ir.DefProduct || len(td.Fields) != 2 {
		t.Fatalf("unexpected type definition: %+v", td)
	}
}

func TestLoadMissingModule(t *testing.T) {
	global := t.TempDir()
	w := newTestWorld(t, global)

	err := w.Load(ir.MustParsePath("nope"), "*")
	if err == nil {
		t.Fatal("expected error for missing module")
	}
	if _, ok := err.(*ErrModuleNotFound); !ok {
		t.Fatalf("expected ErrModuleNotFound, got %T: %v", err, err)
	}
}

func TestLoadVersionMismatch(t *testing.T) {
	global := t.TempDir()
	writeModuleFile(t, global, pointModule())
	w := newTestWorld(t, global)

	if err := w.Load(ir.MustParsePath("geometry"), "*"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	err := w.Load(ir.MustParsePath("geometry"), "^2.0.0")
	if _, ok := err.(*ErrVersionMismatch); !ok {
		t.Fatalf("expected ErrVersionMismatch, got %T: %v", err, err)
	}
}

func TestLoadTransitiveImports(t *testing.T) {
	global := t.TempDir()
	writeModuleFile(t, global, pointModule())

	dependent := &ir.Module{
		Path:       ir.MustParsePath("app"),
		Version:    "1.0.0",
		Types:      map[ir.Symbol]ir.TypeDefinition{},
		Interfaces: map[ir.Symbol]ir.Interface{},
		Functions:  map[ir.Symbol]ir.FunctionEntry{},
		Imports: []ir.Import{
			{Path: ir.MustParsePath("geometry"), VersionReq: "^1.0.0"},
		},
	}
	writeModuleFile(t, global, dependent)

	w := newTestWorld(t, global)
	if err := w.Load(ir.MustParsePath("app"), "*"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := w.GetModule(ir.MustParsePath("geometry")); !ok {
		t.Fatal("expected transitive import geometry to be loaded")
	}
}

// TestHandleWatchEventEvictsModule checks the hot-reload path: a write
// event for a loaded module's file evicts it (and the derived caches) so
// the next Load re-reads the file.
func TestHandleWatchEventEvictsModule(t *testing.T) {
	global := t.TempDir()
	fp := writeModuleFile(t, global, pointModule())
	w := newTestWorld(t, global)

	geometry := ir.MustParsePath("geometry")
	pointTy := ir.User(ir.MustParsePath("geometry::Point"), nil)
	if err := w.Load(geometry, "*"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := w.SizeOf(pointTy); err != nil {
		t.Fatalf("SizeOf: %v", err)
	}

	w.HandleWatchEvent(fsnotify.Event{Name: fp, Op: fsnotify.Write})

	if _, ok := w.GetModule(geometry); ok {
		t.Fatal("expected module to be evicted")
	}
	if _, ok := w.sizeCache.Get(pointTy); ok {
		t.Error("expected size cache to be reset")
	}
	if err := w.Load(geometry, "*"); err != nil {
		t.Fatalf("Load after eviction: %v", err)
	}
}

// TestLoadRejectsPhiAtEntry checks that static validation runs at load
// time: a function body whose entry block begins with a phi is skipped the
// same way an undecodable file is, so the load fails with ModuleNotFound
// rather than admitting the module.
func TestLoadRejectsPhiAtEntry(t *testing.T) {
	global := t.TempDir()
	m := pointModule()
	m.Functions["start"] = ir.FunctionEntry{
		Signature: ir.FunctionSignature{Return: ir.Unit()},
		Body: ir.FnBody{
			MaxRegisters: 1,
			Blocks: []ir.BasicBlock{
				{Instrs: []ir.Instruction{{Kind: ir.IPhi, PhiDest: 0}}},
			},
		},
	}
	writeModuleFile(t, global, m)

	w := newTestWorld(t, global)
	err := w.Load(ir.MustParsePath("geometry"), "*")
	if _, ok := err.(*ErrModuleNotFound); !ok {
		t.Fatalf("expected ErrModuleNotFound for module failing validation, got %T: %v", err, err)
	}
}

func TestFindImpl(t *testing.T) {
	global := t.TempDir()
	pointTy := ir.User(ir.MustParsePath("geometry::Point"), nil)
	ifacePath := ir.MustParsePath("geometry::Show")

	m := pointModule()
	m.Interfaces["Show"] = ir.Interface{
		Name: "Show",
		Functions: map[ir.Symbol]ir.FunctionSignature{
			"show": {Return: ir.Array(ir.Int(8, false))},
		},
	}
	m.Functions["Point_show"] = ir.FunctionEntry{
		Signature: ir.FunctionSignature{Return: ir.Array(ir.Int(8, false))},
		Body:      ir.FnBody{MaxRegisters: 1, Blocks: []ir.BasicBlock{{}}},
	}
	m.Implementations = []ir.Implementation{
		{
			Key:     ir.ImplKey{Type: pointTy, InterfacePath: ifacePath},
			Methods: map[ir.Symbol]ir.Symbol{"show": "Point_show"},
		},
	}
	writeModuleFile(t, global, m)

	w := newTestWorld(t, global)
	if err := w.Load(ir.MustParsePath("geometry"), "*"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	fn, ok := w.FindImpl(ir.MustParsePath("geometry::Show::show"), pointTy)
	if !ok {
		t.Fatal("expected to find implementation")
	}
	want := ir.MustParsePath("geometry::Point_show")
	if !fn.Equal(want) {
		t.Errorf("FindImpl = %s, want %s", fn, want)
	}
}
