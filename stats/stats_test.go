// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package stats_test

import (
	"testing"

	"github.com/lithosgfx/lithos/stats"
)

func TestRegistryIncDec(t *testing.T) {
	r := stats.NewRegistry()
	r.Inc(1, "Texture2D")
	r.Inc(1, "Texture2D")
	r.Inc(2, "Buffer")
	if r.Count(1) != 2 {
		t.Fatalf("Count(1): got %d, want 2", r.Count(1))
	}
	if r.Total() != 3 {
		t.Fatalf("Total: got %d, want 3", r.Total())
	}
	r.Dec(1)
	if r.Count(1) != 1 {
		t.Fatalf("Count(1) after Dec: got %d, want 1", r.Count(1))
	}
}

func TestRegistryDecNegativePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Dec below zero did not panic")
		}
	}()
	r := stats.NewRegistry()
	r.Dec(1)
}

func TestRegistryCheckLeaks(t *testing.T) {
	r := stats.NewRegistry()
	r.Inc(1, "Texture2D")
	r.Inc(2, "Buffer")
	r.Dec(2)
	leaks := r.CheckLeaks()
	if len(leaks) != 1 {
		t.Fatalf("CheckLeaks: got %d entries, want 1", len(leaks))
	}
	if leaks[0].Kind != 1 || leaks[0].Count != 1 || leaks[0].Name != "Texture2D" {
		t.Fatalf("CheckLeaks: unexpected entry %+v", leaks[0])
	}
}

func TestRegistryTrackUntrack(t *testing.T) {
	r := stats.NewRegistry()
	i1 := r.Track(1, "Texture2D", "tex-a")
	i2 := r.Track(1, "Texture2D", "tex-b")
	if r.Count(1) != 2 {
		t.Fatalf("Count after two Track calls: got %d, want 2", r.Count(1))
	}
	live := r.LiveInstances(1)
	if len(live) != 2 {
		t.Fatalf("LiveInstances: got %d entries, want 2", len(live))
	}
	r.Untrack(1, i1)
	if r.Count(1) != 1 {
		t.Fatalf("Count after Untrack: got %d, want 1", r.Count(1))
	}
	live = r.LiveInstances(1)
	if len(live) != 1 || live[0].Value != "tex-b" {
		t.Fatalf("LiveInstances after Untrack: got %+v", live)
	}
	r.Untrack(1, i2)
	if len(r.LiveInstances(1)) != 0 {
		t.Fatal("LiveInstances should be empty once every tracked value is untracked")
	}
}

func TestRegistryTrackReusesSlot(t *testing.T) {
	r := stats.NewRegistry()
	i1 := r.Track(3, "Buffer", "buf-a")
	r.Untrack(3, i1)
	i2 := r.Track(3, "Buffer", "buf-b")
	if i2 != i1 {
		t.Fatalf("Track did not reuse the freed slot: got %d, want %d", i2, i1)
	}
}

func TestRegistryNilIsNoop(t *testing.T) {
	var r *stats.Registry
	r.Inc(1, "Texture2D")
	r.Dec(1)
	if r.Count(1) != 0 {
		t.Fatal("nil Registry Count should be 0")
	}
	if r.Total() != 0 {
		t.Fatal("nil Registry Total should be 0")
	}
	if r.CheckLeaks() != nil {
		t.Fatal("nil Registry CheckLeaks should return nil")
	}
	if idx := r.Track(1, "Texture2D", "x"); idx != -1 {
		t.Fatalf("nil Registry Track should return -1, got %d", idx)
	}
	r.Untrack(1, 0) // must not panic
	if r.LiveInstances(1) != nil {
		t.Fatal("nil Registry LiveInstances should return nil")
	}
}
