// Copyright 2017 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package uuid generates correlation identifiers used to tag a single
// machine run (a start invocation) across its log lines, the way a
// decision logger tags each policy decision with an id.
package uuid

import "github.com/google/uuid"

// New returns a random (version 4) UUID string.
func New() string {
	return uuid.NewString()
}
