package ir

import "testing"

func TestTypeEqual(t *testing.T) {
	a := Array(Int(64, true))
	b := Array(Int(64, true))
	c := Array(Int(32, true))
	if !a.Equal(b) {
		t.Error("expected equal array types")
	}
	if a.Equal(c) {
		t.Error("expected unequal array element width")
	}
}

func TestTypeHashKeyStable(t *testing.T) {
	t1 := User(MustParsePath("geometry::Point"), nil)
	t2 := User(MustParsePath("geometry::Point"), nil)
	if t1.HashKey() != t2.HashKey() {
		t.Error("expected identical hash keys for structurally equal types")
	}
	t3 := User(MustParsePath("geometry::Circle"), nil)
	if t1.HashKey() == t3.HashKey() {
		t.Error("expected different hash keys for different user paths")
	}
}

func TestFunctionSignatureEqual(t *testing.T) {
	sig1 := FunctionSignature{
		Args:   []Field{{Name: "x", Type: Int(32, true)}},
		Return: Bool(),
	}
	sig2 := FunctionSignature{
		Args:   []Field{{Name: "x", Type: Int(32, true)}},
		Return: Bool(),
	}
	if !sig1.Equal(sig2) {
		t.Error("expected equal signatures")
	}
	sig3 := sig2
	sig3.Args = []Field{{Name: "y", Type: Int(32, true)}}
	if sig1.Equal(sig3) {
		t.Error("expected signatures with differing arg names to be unequal")
	}
}
