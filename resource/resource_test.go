// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package resource_test

import (
	"errors"
	"testing"

	"github.com/lithosgfx/lithos/resource"
	"github.com/lithosgfx/lithos/stats"
)

type fakeDestroyer struct{ destroyed bool }

func (f *fakeDestroyer) Destroy() { f.destroyed = true }

func TestHandleRetainRelease(t *testing.T) {
	reg := stats.NewRegistry()
	fd := &fakeDestroyer{}
	h := resource.New(resource.KindVertexBuffer, resource.OwnerID(1), fd, reg)

	if h.RetainCount() != 1 {
		t.Fatalf("RetainCount: got %d, want 1", h.RetainCount())
	}
	if reg.Count(stats.Kind(resource.KindVertexBuffer)) != 1 {
		t.Fatal("Registry count not incremented on New")
	}

	h.Retain()
	if h.RetainCount() != 2 {
		t.Fatalf("RetainCount after Retain: got %d, want 2", h.RetainCount())
	}

	if h.Release() {
		t.Fatal("Release reported destruction while retain count > 0")
	}
	if fd.destroyed {
		t.Fatal("underlying destroyed too early")
	}

	if !h.Release() {
		t.Fatal("Release did not report destruction at retain count 0")
	}
	if !fd.destroyed {
		t.Fatal("underlying not destroyed when retain count reached 0")
	}
	if reg.Count(stats.Kind(resource.KindVertexBuffer)) != 0 {
		t.Fatal("Registry count not decremented on final Release")
	}
}

func TestHandleReleaseUnbalancedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Release on a destroyed Handle did not panic")
		}
	}()
	h := resource.New(resource.KindVertexBuffer, resource.OwnerID(1), &fakeDestroyer{}, nil)
	h.Release()
	h.Release()
}

func TestHandleOwnerCheck(t *testing.T) {
	h := resource.New(resource.KindTexture2D, resource.OwnerID(1), &fakeDestroyer{}, nil)
	if err := h.CheckOwner(resource.OwnerID(1)); err != nil {
		t.Fatalf("CheckOwner with matching owner: %v", err)
	}
	err := h.CheckOwner(resource.OwnerID(2))
	if !errors.Is(err, resource.ErrOwnerMismatch) {
		t.Fatalf("CheckOwner with mismatched owner: got %v, want ErrOwnerMismatch", err)
	}
}

func TestNewPanicsOnNoOwner(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("New with NoOwner did not panic")
		}
	}()
	resource.New(resource.KindTexture2D, resource.NoOwner, &fakeDestroyer{}, nil)
}

func TestHandleNilRegistry(t *testing.T) {
	h := resource.New(resource.KindProgram, resource.OwnerID(1), &fakeDestroyer{}, nil)
	if !h.Release() {
		t.Fatal("Release with nil registry should still destroy at zero retain count")
	}
}

func TestHandleDebugName(t *testing.T) {
	h := resource.New(resource.KindProgram, resource.OwnerID(1), &fakeDestroyer{}, nil)
	if h.DebugName() != "" {
		t.Fatal("DebugName should start empty")
	}
	h.SetDebugName("tonemap")
	if h.DebugName() != "tonemap" {
		t.Fatalf("DebugName: got %q, want %q", h.DebugName(), "tonemap")
	}
}
