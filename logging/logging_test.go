package logging

import "testing"

func TestGetLevel(t *testing.T) {
	cases := map[string]Level{
		"":      Info,
		"info":  Info,
		"DEBUG": Debug,
		"warn":  Warn,
		"error": Error,
	}
	for in, want := range cases {
		got, err := GetLevel(in)
		if err != nil {
			t.Fatalf("GetLevel(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("GetLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := GetLevel("bogus"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestNoOpLoggerLevel(t *testing.T) {
	l := NewNoOpLogger()
	l.SetLevel(Debug)
	if l.GetLevel() != Debug {
		t.Errorf("GetLevel() = %v, want Debug", l.GetLevel())
	}
	// Must not panic.
	l.WithFields(map[string]any{"k": "v"}).Info("hello %s", "world")
}
