// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ir

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
)

// Encode writes the named, self-describing binary encoding of m to w. The
// format is encoding/gob: every struct field travels with its name, so the
// decoder can evolve independently of the encoder's exact layout. The
// assembler produces these files; the runtime only ever decodes them.
func Encode(w io.Writer, m *Module) error {
	return gob.NewEncoder(w).Encode(m)
}

// Decode reads a Module previously written by Encode.
func Decode(r io.Reader) (*Module, error) {
	var m Module
	if err := gob.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode module: %w", err)
	}
	return &m, nil
}

// RoundTrip is a convenience used by tests:
// it encodes and immediately decodes m, verifying the format is faithful.
func RoundTrip(m *Module) (*Module, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return Decode(&buf)
}
