// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package machine

import (
	"fmt"

	"github.com/gvzbm/oxlr/ir"
)

// ErrFunctionNotFound is returned when a Call instruction names a path that
// does not resolve to a loaded function.
type ErrFunctionNotFound struct {
	Path ir.Path
}

func (e *ErrFunctionNotFound) Error() string {
	return fmt.Sprintf("function not found: %s", e.Path)
}

// ErrImplementationNotFound is returned when a CallImpl instruction's
// receiver type has no registered implementation of the named interface
// function.
type ErrImplementationNotFound struct {
	InterfaceFn ir.Path
	Concrete    ir.Type
}

func (e *ErrImplementationNotFound) Error() string {
	return fmt.Sprintf("no implementation of %s for type %s", e.InterfaceFn, e.Concrete)
}

// ErrInvalidIndexType is returned when an index operand is not an unsigned
// integer Value.
type ErrInvalidIndexType struct {
	Description string
}

func (e *ErrInvalidIndexType) Error() string {
	return fmt.Sprintf("invalid index type: %s", e.Description)
}

// ErrInstructionPreconditionViolated is a catch-all for any other violated
// instruction precondition: a phi with no matching predecessor edge, an
// operand of the wrong Value kind for a binary/unary op, a branch condition
// that isn't Bool, an UnwrapVariant against a non-sum type, and similar
// malformed-program conditions the loader's static validation does not
// catch.
type ErrInstructionPreconditionViolated struct {
	Description string
}

func (e *ErrInstructionPreconditionViolated) Error() string {
	return fmt.Sprintf("instruction precondition violated: %s", e.Description)
}
