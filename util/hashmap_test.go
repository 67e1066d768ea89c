// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package util

import "testing"

func TestHashMapPutGetDelete(t *testing.T) {
	eq := func(a, b string) bool { return a == b }
	// Hashing by length forces every same-length key into one bucket, so
	// the collision path is exercised.
	hash := func(s string) uint64 { return uint64(len(s)) }
	m := NewHashMap[string, int](eq, hash)

	m.Put("a", 1)
	m.Put("b", 2)
	m.Put("a", 3)

	if v, ok := m.Get("a"); !ok || v != 3 {
		t.Errorf("Get(a) = %d,%v, want 3,true", v, ok)
	}
	if v, ok := m.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) = %d,%v, want 2,true", v, ok)
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}

	m.Delete("a")
	if _, ok := m.Get("a"); ok {
		t.Error("expected a to be deleted")
	}
	if v, ok := m.Get("b"); !ok || v != 2 {
		t.Errorf("Get(b) after delete = %d,%v, want 2,true", v, ok)
	}
	if m.Len() != 1 {
		t.Errorf("Len after delete = %d, want 1", m.Len())
	}
}

func TestHashMapIterStopsEarly(t *testing.T) {
	m := NewHashMap[int, int](
		func(a, b int) bool { return a == b },
		func(k int) uint64 { return uint64(k % 2) },
	)
	for i := 0; i < 10; i++ {
		m.Put(i, i)
	}

	seen := 0
	m.Iter(func(int, int) bool {
		seen++
		return seen < 3
	})
	if seen != 3 {
		t.Errorf("Iter visited %d entries after early stop, want 3", seen)
	}
}
