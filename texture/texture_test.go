// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package texture_test

import (
	"testing"

	"github.com/lithosgfx/lithos/driver"
	_ "github.com/lithosgfx/lithos/driver/soft"
	"github.com/lithosgfx/lithos/resource"
	"github.com/lithosgfx/lithos/stats"
	"github.com/lithosgfx/lithos/texture"
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

func TestTexture2DLifecycleAndStats(t *testing.T) {
	gpu := openGPU(t)
	reg := stats.NewRegistry()
	tex, err := texture.NewTexture2D(resource.OwnerID(1), gpu, driver.RGBA8un, driver.Dim3D{Width: 64, Height: 64, Depth: 1}, 1, 1, driver.UShaderSample, reg)
	if err != nil {
		t.Fatalf("NewTexture2D: %v", err)
	}
	if reg.Count(stats.Kind(resource.KindTexture2D)) != 1 {
		t.Fatal("texture creation did not register with the stats registry")
	}
	if tex.Format() != driver.RGBA8un {
		t.Fatalf("Format: got %v, want RGBA8un", tex.Format())
	}
	if tex.Size().Width != 64 || tex.Size().Height != 64 {
		t.Fatalf("Size: got %+v", tex.Size())
	}
	if tex.GetInternalResourceHandle() == nil {
		t.Fatal("GetInternalResourceHandle returned nil")
	}
	if !tex.Release() {
		t.Fatal("Release did not report destruction at retain count 0")
	}
	if reg.Count(stats.Kind(resource.KindTexture2D)) != 0 {
		t.Fatal("texture release did not decrement the stats registry")
	}
}

func TestTexture2DArrayRejectsZeroLayers(t *testing.T) {
	gpu := openGPU(t)
	_, err := texture.NewTexture2DArray(resource.OwnerID(1), gpu, driver.RGBA8un, driver.Dim3D{Width: 8, Height: 8, Depth: 1}, 0, 1, driver.UShaderSample, nil)
	if err != texture.ErrUnsupportedLayers {
		t.Fatalf("NewTexture2DArray with 0 layers: got %v, want ErrUnsupportedLayers", err)
	}
}

func TestTexture2DArrayLayersAndLevels(t *testing.T) {
	gpu := openGPU(t)
	arr, err := texture.NewTexture2DArray(resource.OwnerID(1), gpu, driver.RGBA8un, driver.Dim3D{Width: 32, Height: 32, Depth: 1}, 4, 2, driver.UShaderSample, nil)
	if err != nil {
		t.Fatalf("NewTexture2DArray: %v", err)
	}
	defer arr.Release()
	if arr.Layers() != 4 {
		t.Fatalf("Layers: got %d, want 4", arr.Layers())
	}
	if arr.Levels() != 2 {
		t.Fatalf("Levels: got %d, want 2", arr.Levels())
	}
}

func TestSamplerStateLifecycle(t *testing.T) {
	gpu := openGPU(t)
	s, err := texture.NewSamplerState(resource.OwnerID(1), gpu, &driver.Sampling{Min: driver.FLinear, Mag: driver.FLinear, Mipmap: driver.FNoMipmap}, nil)
	if err != nil {
		t.Fatalf("NewSamplerState: %v", err)
	}
	if s.GetInternalResourceHandle() == nil {
		t.Fatal("GetInternalResourceHandle returned nil")
	}
	if !s.Release() {
		t.Fatal("Release did not report destruction")
	}
}

func TestTexture2DOwnerMismatch(t *testing.T) {
	gpu := openGPU(t)
	tex, err := texture.NewTexture2D(resource.OwnerID(1), gpu, driver.RGBA8un, driver.Dim3D{Width: 4, Height: 4, Depth: 1}, 1, 1, driver.UShaderSample, nil)
	if err != nil {
		t.Fatalf("NewTexture2D: %v", err)
	}
	defer tex.Release()
	if err := tex.CheckOwner(resource.OwnerID(2)); err == nil {
		t.Fatal("CheckOwner with a different owner should fail")
	}
}
