package semver

import "testing"

func TestRequirementMatches(t *testing.T) {
	cases := []struct {
		req   string
		ver   string
		match bool
	}{
		{"*", "0.0.1", true},
		{"", "9.9.9", true},
		{"1.2.3", "1.2.3", true},
		{"1.2.3", "1.2.4", false},
		{"^1.2.3", "1.9.9", true},
		{"^1.2.3", "2.0.0", false},
		{"^1.2.3", "1.2.2", false},
		{"^0.2.3", "0.2.9", true},
		{"^0.2.3", "0.3.0", false},
		{"~1.2.3", "1.2.9", true},
		{"~1.2.3", "1.3.0", false},
		{">=1.2.3", "5.0.0", true},
		{">=1.2.3", "1.2.2", false},
	}
	for _, c := range cases {
		req, err := ParseRequirement(c.req)
		if err != nil {
			t.Fatalf("ParseRequirement(%q): %v", c.req, err)
		}
		ver, err := Parse(c.ver)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.ver, err)
		}
		if got := req.Matches(ver); got != c.match {
			t.Errorf("Requirement(%q).Matches(%q) = %v, want %v", c.req, c.ver, got, c.match)
		}
	}
}

func TestParseRequirementInvalid(t *testing.T) {
	if _, err := ParseRequirement("^not-a-version"); err == nil {
		t.Error("expected error for malformed requirement")
	}
}
