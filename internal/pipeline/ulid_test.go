package pipeline

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateULID_Format(t *testing.T) {
	id := generateULID()
	if len(id) != 26 {
		t.Fatalf("expected 26 characters, got %d (%q)", len(id), id)
	}
	for _, r := range id {
		if !strings.ContainsRune(crockford, r) {
			t.Errorf("unexpected character %q in %q", r, id)
		}
	}
	if id[0] > '7' {
		t.Errorf("leading digit carries 3 bits, got %q", id[0])
	}
}

func TestGenerateULID_SortsByCreation(t *testing.T) {
	seen := make(map[string]bool)
	prev := ""
	for range 1000 {
		id := generateULID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
		if id[:12] < prev[:min(12, len(prev))] {
			t.Fatalf("id %q sorts before previous %q", id, prev)
		}
		prev = id
	}
}

func TestULIDAt_TimestampPrefix(t *testing.T) {
	a := ulidAt(time.UnixMilli(1_700_000_000_000))
	b := ulidAt(time.UnixMilli(1_700_000_000_001))
	if a[:10] >= b[:10] {
		t.Errorf("expected %q < %q on the timestamp prefix", a[:10], b[:10])
	}
}

func TestEncodeCrockford(t *testing.T) {
	var zero [16]byte
	if got := encodeCrockford(zero); got != strings.Repeat("0", 26) {
		t.Errorf("expected all zeros, got %q", got)
	}
	var ones [16]byte
	for i := range ones {
		ones[i] = 0xFF
	}
	if got := encodeCrockford(ones); got != "7"+strings.Repeat("Z", 25) {
		t.Errorf("expected 7ZZZ..., got %q", got)
	}
}
