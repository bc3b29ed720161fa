// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package backend_test

import (
	"testing"

	"github.com/lithosgfx/lithos/backend"
	_ "github.com/lithosgfx/lithos/driver/soft"
)

func TestOpenEmptyName(t *testing.T) {
	r, err := backend.Open("")
	if err != nil {
		t.Fatalf("Open(\"\"): %v", err)
	}
	if r.GPU() == nil {
		t.Fatal("Open returned a Renderer with a nil GPU")
	}
}

func TestOpenByName(t *testing.T) {
	r, err := backend.Open("soft")
	if err != nil {
		t.Fatalf("Open(\"soft\"): %v", err)
	}
	if r.Name() != "software" {
		t.Fatalf("Name: got %q, want %q", r.Name(), "software")
	}
}

func TestOpenNoMatch(t *testing.T) {
	_, err := backend.Open("definitely-not-a-registered-driver")
	if err != backend.ErrNoMatchingDriver {
		t.Fatalf("Open with unmatched name: got %v, want ErrNoMatchingDriver", err)
	}
}

func TestOwnerIDStable(t *testing.T) {
	r, err := backend.Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	id1 := r.OwnerID()
	id2 := r.OwnerID()
	if id1 != id2 {
		t.Fatal("OwnerID is not stable across calls")
	}

	r2, err := backend.Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if r.OwnerID() == r2.OwnerID() {
		t.Fatal("distinct Renderers produced the same OwnerID")
	}
}

func TestCapabilitiesTranslated(t *testing.T) {
	r, err := backend.Open("")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	caps := r.Capabilities()
	if caps.MaxTexture2DSize <= 0 {
		t.Fatal("Capabilities.MaxTexture2DSize should be positive for the software driver")
	}
}
