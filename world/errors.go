// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package world

import (
	"fmt"

	"github.com/gvzbm/oxlr/ir"
)

// ErrEnvMissing is returned by New when OXLR_MODULE_PATH is unset.
type ErrEnvMissing struct {
	Var string
}

func (e *ErrEnvMissing) Error() string {
	return fmt.Sprintf("required environment variable %s is not set", e.Var)
}

// ErrCwdUnavailable wraps a failure to determine the local module path.
type ErrCwdUnavailable struct {
	Cause error
}

func (e *ErrCwdUnavailable) Error() string {
	return fmt.Sprintf("could not determine working directory: %v", e.Cause)
}

func (e *ErrCwdUnavailable) Unwrap() error { return e.Cause }

// ErrModuleNotFound is returned when no candidate file satisfies a load
// request.
type ErrModuleNotFound struct {
	Path ir.Path
	Req  string
}

func (e *ErrModuleNotFound) Error() string {
	return fmt.Sprintf("could not find module %s matching %s", e.Path, e.Req)
}

// ErrVersionMismatch is returned when a module is already loaded but the
// loaded version does not satisfy a subsequent requirement.
type ErrVersionMismatch struct {
	Path     ir.Path
	Loaded   string
	Required string
}

func (e *ErrVersionMismatch) Error() string {
	return fmt.Sprintf("module %s: loaded version %s does not satisfy required %s", e.Path, e.Loaded, e.Required)
}

// ErrUnknownType is returned when a User type's path does not resolve.
type ErrUnknownType struct {
	Path ir.Path
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %s", e.Path)
}

// ErrUnresolvedTypeParameter is returned by sizing when a Var(sym) type
// reaches the oracle without being substituted first.
type ErrUnresolvedTypeParameter struct {
	Symbol ir.Symbol
}

func (e *ErrUnresolvedTypeParameter) Error() string {
	return fmt.Sprintf("unresolved type parameter: %s", e.Symbol)
}
