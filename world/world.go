// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package world implements the module universe: it resolves module paths
// and version requirements to loaded ir.Module values, indexes their
// interface implementations for fast dispatch, and answers sizing/layout
// questions the memory package needs to lay values out in the heap and
// data stack.
package world

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gvzbm/oxlr/internal/semver"
	"github.com/gvzbm/oxlr/ir"
	"github.com/gvzbm/oxlr/logging"
	"github.com/gvzbm/oxlr/util"
)

// ModuleFileSeparator separates a module's path from its version in a
// module file's name, e.g. "acme::geometry#1.2.0.om".
const ModuleFileSeparator = "#"

// ModuleFileExt is the extension module files are expected to carry.
const ModuleFileExt = ".om"

// EnvModulePath names the environment variable that points at the global
// (shared) module search directory.
const EnvModulePath = "OXLR_MODULE_PATH"

// World is the module universe: every module loaded so far, plus the
// derived indexes (implementation lookup, sizing cache) built on top of
// them. The zero value is not usable; construct with New.
type World struct {
	globalModulePath string
	localModulePath  string

	modules map[string]*ir.Module
	impls   map[string]*util.HashMap[ir.ImplKey, *ir.Implementation]

	sizeCache *util.HashMap[ir.Type, int]
	instCache *instantiationCache

	log logging.Logger
}

// New constructs a World rooted at OXLR_MODULE_PATH (global search
// directory) and the process's current working directory (local search
// directory). log may be nil, in which case a NoOpLogger is used.
func New(log logging.Logger) (*World, error) {
	global, ok := os.LookupEnv(EnvModulePath)
	if !ok {
		return nil, &ErrEnvMissing{Var: EnvModulePath}
	}

	local, err := os.Getwd()
	if err != nil {
		return nil, &ErrCwdUnavailable{Cause: err}
	}

	if log == nil {
		log = logging.NewNoOpLogger()
	}

	return &World{
		globalModulePath: global,
		localModulePath:  local,
		modules:          make(map[string]*ir.Module),
		impls:            make(map[string]*util.HashMap[ir.ImplKey, *ir.Implementation]),
		sizeCache:        newTypeSizeCache(),
		instCache:        newInstantiationCache(),
		log:              log,
	}, nil
}

// candidate describes a module file found while scanning a search
// directory, before it has been decoded.
type candidate struct {
	fullPath string
	path     ir.Path
	version  semver.Version
}

// scanDir lists module file candidates in dir matching path and req,
// without decoding them. Missing directories are treated as empty.
func scanDir(dir string, path ir.Path, req semver.Requirement) ([]candidate, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []candidate
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fpath, fver, ok := parseModuleFileName(e.Name())
		if !ok {
			continue
		}
		if !fpath.Equal(path) || !req.Matches(fver) {
			continue
		}
		out = append(out, candidate{
			fullPath: filepath.Join(dir, e.Name()),
			path:     fpath,
			version:  fver,
		})
	}
	return out, nil
}

// parseModuleFileName parses a module file's base name (or full path; only
// the base name is inspected) of the form "<path>#<version>.om" into its
// path and version components.
func parseModuleFileName(name string) (ir.Path, semver.Version, bool) {
	base := filepath.Base(name)
	if !strings.HasSuffix(base, ModuleFileExt) {
		return nil, semver.Version{}, false
	}
	stem := strings.TrimSuffix(base, ModuleFileExt)
	fpathStr, fverStr, ok := strings.Cut(stem, ModuleFileSeparator)
	if !ok {
		return nil, semver.Version{}, false
	}
	fpath, err := ir.ParsePath(fpathStr)
	if err != nil {
		return nil, semver.Version{}, false
	}
	fver, err := semver.Parse(fverStr)
	if err != nil {
		return nil, semver.Version{}, false
	}
	return fpath, fver, true
}

// Load resolves path against versionReq, loading the module (and its
// transitive imports) from the filesystem if it is not already present.
// Loading a module that is already present checks version compatibility
// but does not re-read the file.
func (w *World) Load(path ir.Path, versionReq string) error {
	if path.Len() == 0 {
		return fmt.Errorf("module path must not be empty")
	}
	req, err := semver.ParseRequirement(versionReq)
	if err != nil {
		return fmt.Errorf("parsing version requirement: %w", err)
	}
	return w.load(path, req)
}

func (w *World) load(path ir.Path, req semver.Requirement) error {
	key := path.String()
	if m, ok := w.modules[key]; ok {
		v, err := semver.Parse(m.Version)
		if err != nil {
			return fmt.Errorf("loaded module %s has unparsable version %q: %w", path, m.Version, err)
		}
		if req.Matches(v) {
			return nil
		}
		return &ErrVersionMismatch{Path: path, Loaded: m.Version, Required: req.String()}
	}

	candidates, err := scanDir(w.globalModulePath, path, req)
	if err != nil {
		return fmt.Errorf("scanning global module path: %w", err)
	}
	local, err := scanDir(w.localModulePath, path, req)
	if err != nil {
		return fmt.Errorf("scanning local module path: %w", err)
	}
	candidates = append(candidates, local...)

	for _, c := range candidates {
		m, err := decodeModuleFile(c.fullPath)
		if err != nil {
			w.log.Warn("skipping module file %s: decode error: %v", c.fullPath, err)
			continue
		}
		if !m.Path.Equal(path) {
			continue
		}
		v, err := semver.Parse(m.Version)
		if err != nil || !req.Matches(v) {
			continue
		}

		if err := validateModule(m); err != nil {
			w.log.Warn("skipping module file %s: %v", c.fullPath, err)
			continue
		}

		w.modules[key] = m
		for _, imp := range m.Imports {
			importReq, err := semver.ParseRequirement(imp.VersionReq)
			if err != nil {
				delete(w.modules, key)
				return fmt.Errorf("module %s: parsing import requirement for %s: %w", path, imp.Path, err)
			}
			if err := w.load(imp.Path, importReq); err != nil {
				delete(w.modules, key)
				return fmt.Errorf("module %s: loading import %s: %w", path, imp.Path, err)
			}
		}

		w.indexImplementations(m)
		return nil
	}

	return &ErrModuleNotFound{Path: path, Req: req.String()}
}

// validateModule checks the static invariants of every function body in m
// before the module is admitted to the registry: register and block indices
// in range, and no phi at the entry block (which would have no well-defined
// predecessor). A module that fails validation is skipped the same way a
// module that fails to decode is.
func validateModule(m *ir.Module) error {
	for name, fe := range m.Functions {
		body := fe.Body
		if err := ir.ValidateFnBody(&body); err != nil {
			return fmt.Errorf("function %s: %w", name, err)
		}
	}
	return nil
}

func decodeModuleFile(path string) (*ir.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ir.Decode(f)
}

// GetModule returns the loaded module at path, if any.
func (w *World) GetModule(path ir.Path) (*ir.Module, bool) {
	m, ok := w.modules[path.String()]
	return m, ok
}

// GetType looks up a type definition by its fully qualified path (module
// path plus the type's own name as the last symbol).
func (w *World) GetType(path ir.Path) (ir.TypeDefinition, error) {
	m, ok := w.GetModule(path.ModulePath())
	if !ok {
		return ir.TypeDefinition{}, &ErrUnknownType{Path: path}
	}
	td, ok := m.Types[path.Last()]
	if !ok {
		return ir.TypeDefinition{}, &ErrUnknownType{Path: path}
	}
	return td, nil
}

// GetInterface looks up an interface declaration by its fully qualified
// path.
func (w *World) GetInterface(path ir.Path) (ir.Interface, bool) {
	m, ok := w.GetModule(path.ModulePath())
	if !ok {
		return ir.Interface{}, false
	}
	iface, ok := m.Interfaces[path.Last()]
	return iface, ok
}

// GetFunction looks up a function entry (signature + body) by its fully
// qualified path.
func (w *World) GetFunction(path ir.Path) (ir.FunctionEntry, bool) {
	m, ok := w.GetModule(path.ModulePath())
	if !ok {
		return ir.FunctionEntry{}, false
	}
	fe, ok := m.Functions[path.Last()]
	return fe, ok
}

// indexImplementations builds the fast (type, interface) -> Implementation
// lookup table for a newly loaded module. ir.Module.Implementations stays
// an ordered slice (iteration order is part of the data model); this index
// is purely a derived, World-owned acceleration structure.
func (w *World) indexImplementations(m *ir.Module) {
	idx := util.NewHashMap[ir.ImplKey, *ir.Implementation](implKeyEqual, implKeyHash)
	for i := range m.Implementations {
		impl := &m.Implementations[i]
		idx.Put(impl.Key, impl)
	}
	w.impls[m.Path.String()] = idx
}

func implKeyEqual(a, b ir.ImplKey) bool {
	return a.Type.Equal(b.Type) && a.InterfacePath.Equal(b.InterfacePath)
}

func implKeyHash(k ir.ImplKey) uint64 {
	return typeHash(k.Type) ^ xxhashString(k.InterfacePath.String())
}

// FindImpl resolves the implementation of interfaceFnPath's owning
// interface for the concrete type ty, and returns the local function path
// that realizes interfaceFnPath's method name.
//
// interfaceFnPath has the shape <module>::<interface>::<fn>; the
// implementation is expected to live in the same module as the interface
// declaration.
func (w *World) FindImpl(interfaceFnPath ir.Path, ty ir.Type) (ir.Path, bool) {
	if interfaceFnPath.Len() < 2 {
		return nil, false
	}
	ifacePath := interfaceFnPath.Prefix(interfaceFnPath.Len() - 1)
	fnName := interfaceFnPath.Last()
	modPath := ifacePath.ModulePath()

	idx, ok := w.impls[modPath.String()]
	if !ok {
		return nil, false
	}
	impl, ok := idx.Get(ir.ImplKey{Type: ty, InterfacePath: ifacePath})
	if !ok {
		return nil, false
	}
	localFn, ok := impl.Methods[fnName]
	if !ok {
		return nil, false
	}
	return append(append(ir.Path{}, modPath...), localFn), true
}
