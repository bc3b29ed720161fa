// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package buffer_test

import (
	"testing"

	"github.com/lithosgfx/lithos/buffer"
	"github.com/lithosgfx/lithos/driver"
	_ "github.com/lithosgfx/lithos/driver/soft"
	"github.com/lithosgfx/lithos/resource"
)

func openGPU(t *testing.T) driver.GPU {
	t.Helper()
	for _, d := range driver.Drivers() {
		if d.Name() == "software" {
			gpu, err := d.Open()
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			return gpu
		}
	}
	t.Fatal("software driver not registered")
	return nil
}

func TestVertexBufferMapUnmapProtocol(t *testing.T) {
	gpu := openGPU(t)
	buf, err := gpu.NewBuffer(256, true, driver.UVertexData)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	vb := buffer.NewVertexBuffer(resource.OwnerID(1), buf, buffer.UsageStaticDraw, nil)
	defer vb.Release()

	m, err := vb.Map(buffer.MapWriteDiscard)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(m.Data) != 256 {
		t.Fatalf("Map Data length: got %d, want 256", len(m.Data))
	}
	if _, err := vb.Map(buffer.MapWrite); err != buffer.ErrAlreadyMapped {
		t.Fatalf("Map while already mapped: got %v, want ErrAlreadyMapped", err)
	}
	if err := vb.Unmap(); err != nil {
		t.Fatalf("Unmap: %v", err)
	}
	if err := vb.Unmap(); err != buffer.ErrNotMapped {
		t.Fatalf("second Unmap: got %v, want ErrNotMapped", err)
	}
}

func TestIndexBufferFormat(t *testing.T) {
	gpu := openGPU(t)
	buf, err := gpu.NewBuffer(64, true, driver.UIndexData)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	ib := buffer.NewIndexBuffer(resource.OwnerID(1), buf, buffer.IndexU16, buffer.UsageStaticDraw, nil)
	defer ib.Release()
	if ib.Format != buffer.IndexU16 {
		t.Fatalf("Format: got %v, want IndexU16", ib.Format)
	}
}

func TestIndirectBufferEmulateDraws(t *testing.T) {
	gpu := openGPU(t)
	buf, err := gpu.NewBuffer(128, true, driver.UGeneric)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	ib := buffer.NewIndirectBuffer(resource.OwnerID(1), buf, buffer.UsageStaticDraw, nil)
	defer ib.Release()
	ib.EmulationData = []buffer.DrawInstancedArguments{
		{VertexCountPerInstance: 3, InstanceCount: 1, StartVertexLocation: 0, StartInstanceLocation: 0},
		{VertexCountPerInstance: 6, InstanceCount: 2, StartVertexLocation: 3, StartInstanceLocation: 0},
	}
	draws, err := ib.EmulateDraws()
	if err != nil {
		t.Fatalf("EmulateDraws: %v", err)
	}
	want := [][4]int{{3, 1, 0, 0}, {6, 2, 3, 0}}
	if len(draws) != len(want) {
		t.Fatalf("EmulateDraws: got %d draws, want %d", len(draws), len(want))
	}
	for i, d := range draws {
		if d != want[i] {
			t.Fatalf("draw %d: got %v, want %v", i, d, want[i])
		}
	}
}

func TestIndirectBufferEmulateDrawsIndexedRejectsNonZeroStartInstance(t *testing.T) {
	gpu := openGPU(t)
	buf, err := gpu.NewBuffer(64, true, driver.UGeneric)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	ib := buffer.NewIndirectBuffer(resource.OwnerID(1), buf, buffer.UsageStaticDraw, nil)
	defer ib.Release()
	ib.EmulationDataI = []buffer.DrawIndexedInstancedArguments{
		{IndexCountPerInstance: 3, InstanceCount: 1, StartInstanceLocation: 1},
	}
	if _, err := ib.EmulateDrawsIndexed(); err == nil {
		t.Fatal("EmulateDrawsIndexed should reject a non-zero StartInstanceLocation")
	}
}
