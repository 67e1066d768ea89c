// Copyright 2018 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package world

import (
	"strings"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gvzbm/oxlr/ir"
	"github.com/gvzbm/oxlr/util"
)

// xxhashString reduces s to a 64-bit digest. Used to turn ir.Type.HashKey's
// canonical string form into the bucket key util.HashMap wants.
func xxhashString(s string) uint64 {
	return xxhash.Sum64String(s)
}

func typeEqual(a, b ir.Type) bool {
	return a.Equal(b)
}

func typeHash(t ir.Type) uint64 {
	return xxhashString(t.HashKey())
}

// newTypeSizeCache returns an empty ir.Type -> byte-size cache backed by
// util.HashMap, since ir.Type holds slices and pointers and cannot be a
// native Go map key.
func newTypeSizeCache() *util.HashMap[ir.Type, int] {
	return util.NewHashMap[ir.Type, int](typeEqual, typeHash)
}

// genericInstanceKey identifies one instantiation of a generic type
// definition: the defining path plus the concrete type arguments.
type genericInstanceKey struct {
	path string
	args string
}

func newGenericInstanceKey(path ir.Path, args []ir.Type) genericInstanceKey {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(a.HashKey())
		b.WriteByte(',')
	}
	return genericInstanceKey{path: path.String(), args: b.String()}
}

// instantiationCache memoizes the result of substituting concrete type
// arguments into a generic TypeDefinition, keyed by (defining path,
// argument list). An LRU keeps long-running hosts from growing this
// without bound across many distinct generic instantiations.
type instantiationCache struct {
	lru *lru.Cache[genericInstanceKey, ir.TypeDefinition]
}

const defaultInstantiationCacheSize = 1024

func newInstantiationCache() *instantiationCache {
	c, err := lru.New[genericInstanceKey, ir.TypeDefinition](defaultInstantiationCacheSize)
	if err != nil {
		// Only fails for a non-positive size, which defaultInstantiationCacheSize never is.
		panic(err)
	}
	return &instantiationCache{lru: c}
}

func (c *instantiationCache) get(path ir.Path, args []ir.Type) (ir.TypeDefinition, bool) {
	return c.lru.Get(newGenericInstanceKey(path, args))
}

func (c *instantiationCache) put(path ir.Path, args []ir.Type, td ir.TypeDefinition) {
	c.lru.Add(newGenericInstanceKey(path, args), td)
}
