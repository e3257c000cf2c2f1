package id

import (
	"encoding/base32"
	"strings"
	"testing"
)

func TestNewIDFormat(t *testing.T) {
	id, err := NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty id")
	}
	if strings.Contains(id, "=") {
		t.Fatal("expected no padding")
	}
	if len(id) != 26 {
		t.Fatalf("expected 26-character id, got %d", len(id))
	}
	for _, r := range id {
		if (r < 'a' || r > 'z') && (r < '2' || r > '7') {
			t.Fatalf("unexpected character %q in id", r)
		}
	}

	decoded, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.ToUpper(id))
	if err != nil {
		t.Fatalf("decode id: %v", err)
	}
	if len(decoded) != 16 {
		t.Fatalf("expected 16 decoded bytes, got %d", len(decoded))
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestDeterministicStable(t *testing.T) {
	a := Deterministic("TEST,2", "alice")
	b := Deterministic("TEST,2", "alice")
	if a != b {
		t.Fatalf("expected stable key, got %q and %q", a, b)
	}
	if len(a) != 26 {
		t.Fatalf("expected 26-character key, got %d", len(a))
	}
}

func TestDeterministicDistinguishesParts(t *testing.T) {
	base := Deterministic("TEST,2", "alice")

	if Deterministic("TEST,2", "bob") == base {
		t.Fatal("expected different key for different account")
	}
	if Deterministic("EXP,2", "alice") == base {
		t.Fatal("expected different key for different currency")
	}
	// Joining must not let part boundaries collide.
	if Deterministic("TEST", "2alice") == Deterministic("TEST2", "alice") {
		t.Fatal("expected part boundaries to be preserved")
	}
}
