package ir

import "fmt"

// ImplKey identifies one entry of Module.Implementations: a concrete type
// paired with the interface path it implements.
type ImplKey struct {
	Type          Type
	InterfacePath Path
}

// Import names an imported module path together with the version
// requirement it must satisfy, parsed by World.Load into an
// internal/semver Requirement.
type Import struct {
	Path       Path
	VersionReq string
}

// Module is a versioned, self-contained bundle of types, interfaces,
// implementations, and functions. Modules are immutable once loaded into
// a world.World registry.
type Module struct {
	Path    Path
	Version string // canonical semver text; parsed lazily by the loader

	Types           map[Symbol]TypeDefinition
	Interfaces      map[Symbol]Interface
	Functions       map[Symbol]FunctionEntry
	Implementations []Implementation

	Imports []Import
}

// FunctionEntry bundles a function's signature with its compiled body.
type FunctionEntry struct {
	Signature FunctionSignature
	Body      FnBody
}

// Implementation records, for one (concrete type, interface) pair, the
// mapping from interface function name to the local function name in this
// module that realizes it.
type Implementation struct {
	Key     ImplKey
	Methods map[Symbol]Symbol
}

func (m *Module) String() string {
	return fmt.Sprintf("module %s v%s (%d types, %d interfaces, %d funcs)",
		m.Path, m.Version, len(m.Types), len(m.Interfaces), len(m.Functions))
}

// FindImplementation returns the Implementation entry matching ty and
// ifacePath, if one exists in this module.
func (m *Module) FindImplementation(ty Type, ifacePath Path) (*Implementation, bool) {
	for i := range m.Implementations {
		impl := &m.Implementations[i]
		if impl.Key.Type.Equal(ty) && impl.Key.InterfacePath.Equal(ifacePath) {
			return impl, true
		}
	}
	return nil, false
}
