// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package asset_test

import (
	"testing"

	"github.com/lithosgfx/lithos/asset"
)

func TestIDTableInternIsStable(t *testing.T) {
	tb := asset.NewIDTable()
	a := tb.Intern(100)
	b := tb.Intern(200)
	if a == b {
		t.Fatalf("distinct source IDs got the same runtime ID: %d", a)
	}
	if again := tb.Intern(100); again != a {
		t.Fatalf("Intern(100) not stable: got %d, want %d", again, a)
	}
	if tb.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", tb.Len())
	}
}

func TestIDTableLookupMissing(t *testing.T) {
	tb := asset.NewIDTable()
	tb.Intern(1)
	if _, ok := tb.Lookup(2); ok {
		t.Fatal("Lookup for a never-interned source ID should report not-found")
	}
}
