package ir

import "testing"

func TestParsePathRoundTrip(t *testing.T) {
	cases := []string{
		"demo::start",
		"geometry::shapes::Point",
		"a",
	}
	for _, c := range cases {
		p, err := ParsePath(c)
		if err != nil {
			t.Fatalf("ParsePath(%q): %v", c, err)
		}
		if got := p.String(); got != c {
			t.Errorf("ParsePath(%q).String() = %q, want %q", c, got, c)
		}
	}
}

func TestPathPrefixAndLast(t *testing.T) {
	p := MustParsePath("a::b::c")
	if p.Last() != "c" {
		t.Errorf("Last() = %q, want c", p.Last())
	}
	pre := p.Prefix(2)
	if pre.String() != "a::b" {
		t.Errorf("Prefix(2) = %q, want a::b", pre.String())
	}
	if p.ModulePath().String() != "a::b" {
		t.Errorf("ModulePath() = %q, want a::b", p.ModulePath().String())
	}
}

func TestPathEqual(t *testing.T) {
	a := MustParsePath("a::b")
	b := MustParsePath("a::b")
	c := MustParsePath("a::c")
	if !a.Equal(b) {
		t.Error("expected a == b")
	}
	if a.Equal(c) {
		t.Error("expected a != c")
	}
}

func TestParsePathRejectsEmptySymbol(t *testing.T) {
	if _, err := ParsePath(""); err == nil {
		t.Error("expected error parsing empty path")
	}
	if _, err := ParsePath("a::"); err == nil {
		t.Error("expected error parsing path with trailing separator")
	}
}
