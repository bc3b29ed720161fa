// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package backend implements the Renderer Backend (RB)
// abstraction of spec §4.6/§6: a thin, stateful wrapper around
// a driver.GPU that (a) identifies itself as a resource.OwnerID
// so every object it creates can be owner-checked cheaply, and
// (b) reports a Capabilities summary translated from the
// driver's own driver.Limits.
//
// It is grounded on the teacher's engine package selecting and
// holding on to a single driver.GPU for the process lifetime
// (engine/init.go), generalized here so that more than one
// Renderer may coexist, each wrapping a distinct driver.GPU,
// with resource.Handle.CheckOwner catching accidental
// cross-renderer resource use instead of assuming a singleton.
package backend

import (
	"errors"
	"strings"

	"github.com/lithosgfx/lithos/driver"
	"github.com/lithosgfx/lithos/resource"
)

const prefix = "backend: "

func newErr(reason string) error { return errors.New(prefix + reason) }

// ErrNoMatchingDriver is returned by Open when no registered
// driver.Driver's name contains the requested substring.
var ErrNoMatchingDriver = newErr("no registered driver matches the requested name")

// Capabilities summarizes what a Renderer's underlying driver
// supports, translated from driver.Limits into the vocabulary
// spec §6 uses for External Interfaces.
type Capabilities struct {
	MaxTexture2DSize      int
	MaxTextureCubeSize     int
	MaxTexture3DSize      int
	MaxTextureArrayLayers int

	MaxRootParameters     int
	MaxDescriptorsPerType [5]int // indexed by driver.DescType (DBuffer, DImage, DConstant, DTexture, DSampler)

	MaxRenderTargets    int
	MaxFramebufferSize  [2]int
	MaxFramebufferLayers int
}

func capsFromLimits(l driver.Limits) Capabilities {
	return Capabilities{
		MaxTexture2DSize:      l.MaxImage2D,
		MaxTextureCubeSize:    l.MaxImageCube,
		MaxTexture3DSize:      l.MaxImage3D,
		MaxTextureArrayLayers: l.MaxLayers,
		MaxRootParameters:     l.MaxDescHeaps,
		MaxDescriptorsPerType: [5]int{l.MaxDBuffer, l.MaxDImage, l.MaxDConstant, l.MaxDTexture, l.MaxDSampler},
		MaxRenderTargets:      l.MaxColorTargets,
		MaxFramebufferSize:    l.MaxFBSize,
		MaxFramebufferLayers:  l.MaxFBLayers,
	}
}

// Renderer is a single opened GPU backend instance. It holds
// the driver.GPU it wraps and exposes a stable OwnerID so that
// every resource.Handle it creates can be traced back to it.
type Renderer struct {
	name string
	gpu  driver.GPU
	caps Capabilities
	drv  driver.Driver
}

// Open finds the first registered driver.Driver whose name
// contains name (case-insensitive) and opens it. Passing the
// empty string matches the first registered driver, which is
// how a caller selects "whatever is available" (spec §6).
func Open(name string) (*Renderer, error) {
	drivers := driver.Drivers()
	if len(drivers) == 0 {
		return nil, driver.ErrNoDevice
	}
	lower := strings.ToLower(name)
	for _, d := range drivers {
		if name == "" || strings.Contains(strings.ToLower(d.Name()), lower) {
			gpu, err := d.Open()
			if err != nil {
				return nil, err
			}
			r := &Renderer{name: d.Name(), gpu: gpu, drv: d, caps: capsFromLimits(gpu.Limits())}
			return r, nil
		}
	}
	return nil, ErrNoMatchingDriver
}

// Name returns the name of the underlying driver.
func (r *Renderer) Name() string { return r.name }

// GPU returns the underlying driver.GPU, for use by packages
// (rootsig, pso, cmdstream) that must issue driver-level calls
// on behalf of this Renderer.
func (r *Renderer) GPU() driver.GPU { return r.gpu }

// Capabilities returns the capability summary computed when
// this Renderer was opened.
func (r *Renderer) Capabilities() Capabilities { return r.caps }

// OwnerID returns the resource.OwnerID that every object
// created through this Renderer should be tagged with. It is
// the Renderer's own address reinterpreted as a uintptr, so
// comparing owners never requires a map lookup.
func (r *Renderer) OwnerID() resource.OwnerID { return resource.OwnerID(ownerAddr(r)) }

// Close releases the underlying driver. Callers must have
// already destroyed every resource created through this
// Renderer; the driver itself does not track them.
func (r *Renderer) Close() { r.drv.Close() }
