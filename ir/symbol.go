// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package ir defines the immutable value model for oxlr modules: symbols,
// paths, types, type definitions, interfaces, function bodies, and the
// instruction set executed by the machine package.
package ir

import (
	"fmt"
	"strings"
)

// Symbol is a non-empty name. Equality is byte-wise on the underlying
// string.
type Symbol string

// NewSymbol validates and constructs a Symbol.
func NewSymbol(s string) (Symbol, error) {
	if s == "" {
		return "", fmt.Errorf("symbol must not be empty")
	}
	return Symbol(s), nil
}

func (s Symbol) String() string {
	return string(s)
}

// PathSeparator joins symbols inside a displayed Path.
const PathSeparator = "::"

// Path is an ordered, non-empty sequence of Symbols identifying a module or
// a member (type, interface, function) within one.
type Path []Symbol

// NewPath constructs a Path from symbols, rejecting an empty sequence.
func NewPath(symbols ...Symbol) (Path, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("path must contain at least one symbol")
	}
	p := make(Path, len(symbols))
	copy(p, symbols)
	return p, nil
}

// ParsePath parses the "::"-separated textual form of a Path.
func ParsePath(s string) (Path, error) {
	parts := strings.Split(s, PathSeparator)
	symbols := make([]Symbol, 0, len(parts))
	for _, part := range parts {
		sym, err := NewSymbol(part)
		if err != nil {
			return nil, fmt.Errorf("parsing path %q: %w", s, err)
		}
		symbols = append(symbols, sym)
	}
	return NewPath(symbols...)
}

// MustParsePath is like ParsePath but panics on error. Useful for literals
// in tests and built-in path tables.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Len returns the number of symbols in the path.
func (p Path) Len() int {
	return len(p)
}

// Last returns the final symbol in the path.
func (p Path) Last() Symbol {
	return p[len(p)-1]
}

// Prefix returns the first n symbols of the path.
func (p Path) Prefix(n int) Path {
	out := make(Path, n)
	copy(out, p[:n])
	return out
}

// String renders the path in "::"-separated form.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = string(s)
	}
	return strings.Join(parts, PathSeparator)
}

// Equal reports whether p and o name the same path.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// ModulePath returns the prefix of the path identifying the module that
// hosts the member named by the final symbol, i.e. Prefix(Len()-1).
func (p Path) ModulePath() Path {
	return p.Prefix(p.Len() - 1)
}
