package ids

import "testing"

func TestNewIDValidates(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("NewID: %v", err)
		}
		if err := Validate(id); err != nil {
			t.Fatalf("generated id %q failed validation: %v", id, err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestValidateRejects(t *testing.T) {
	for _, id := range []string{"", "abc", "ABCDEFGH", "abcdefg!", "abcdefghi"} {
		if err := Validate(id); err == nil {
			t.Errorf("Validate(%q) = nil, want error", id)
		}
	}
}

func TestFromKeyIsStable(t *testing.T) {
	a := FromKey("focus:2026-01-01T09:00:00Z")
	b := FromKey("focus:2026-01-01T09:00:00Z")
	c := FromKey("focus:2026-01-01T09:25:00Z")
	if a != b {
		t.Errorf("FromKey not stable: %q vs %q", a, b)
	}
	if a == c {
		t.Errorf("different keys collided: %q", a)
	}
	if err := Validate(a); err != nil {
		t.Errorf("derived id invalid: %v", err)
	}
}
