package corpus

import "testing"

func TestNewEditions(t *testing.T) {
	e, err := NewEditions(Edition{Version: "2013"}, Edition{Version: "2025"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.Has("2013") || !e.Has("2025") || e.Has("1999") {
		t.Errorf("Has() mismatch: %+v", e)
	}
	if e.Other("2013") != "2025" || e.Other("2025") != "2013" {
		t.Error("Other() mismatch")
	}
	if v := e.Versions(); len(v) != 2 || v[0] != "2013" {
		t.Errorf("Versions() = %v", v)
	}
}

func TestNewEditions_Invalid(t *testing.T) {
	if _, err := NewEditions(Edition{Version: "2013"}, Edition{}); err == nil {
		t.Error("expected error for missing edition")
	}
	if _, err := NewEditions(Edition{Version: "2013"}, Edition{Version: "2013"}); err == nil {
		t.Error("expected error for identical editions")
	}
}
