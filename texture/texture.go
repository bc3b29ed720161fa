// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package texture implements the texture half of the Buffer &
// Texture Objects (BT) component of spec §3/§4.4: Texture2D and
// Texture2DArray, each a driver.Image plus the single
// driver.ImageView the runtime needs to bind it for sampling.
//
// GetInternalResourceHandle (spec §4.4) lets code outside this
// package interoperate with backend-specific APIs that need the
// raw driver.Image, the same way the teacher's own backend code
// reaches past its own wrappers when a driver type is needed
// directly (see driver/soft/resources.go's unexported fields).
package texture

import (
	"errors"

	"github.com/lithosgfx/lithos/driver"
	"github.com/lithosgfx/lithos/resource"
	"github.com/lithosgfx/lithos/stats"
)

const prefix = "texture: "

func newErr(reason string) error { return errors.New(prefix + reason) }

// ErrUnsupportedLayers is returned when the requested layer
// count does not match the texture kind being created.
var ErrUnsupportedLayers = newErr("unsupported layer count for this texture kind")

// Texture2D wraps a single-layer 2D image.
type Texture2D struct {
	*resource.Handle
	img    driver.Image
	view   driver.ImageView
	format driver.PixelFmt
	size   driver.Dim3D
	levels int
	samples int
}

// NewTexture2D creates a Texture2D of the given format, size,
// mip level count and sample count.
func NewTexture2D(owner resource.OwnerID, gpu driver.GPU, pf driver.PixelFmt, size driver.Dim3D, levels, samples int, usg driver.Usage, reg *stats.Registry) (*Texture2D, error) {
	img, err := gpu.NewImage(pf, size, 1, levels, samples, usg)
	if err != nil {
		return nil, err
	}
	typ := driver.IView2D
	if samples > 1 {
		typ = driver.IView2DMS
	}
	view, err := img.NewView(typ, 0, 1, 0, levels)
	if err != nil {
		img.Destroy()
		return nil, err
	}
	t := &Texture2D{img: img, view: view, format: pf, size: size, levels: levels, samples: samples}
	t.Handle = resource.New(resource.KindTexture2D, owner, destroyFunc(func() {
		view.Destroy()
		img.Destroy()
	}), reg)
	return t, nil
}

type destroyFunc func()

func (d destroyFunc) Destroy() { d() }

// GetInternalResourceHandle returns the underlying driver.Image,
// for code that must interoperate with the driver directly
// (spec §4.4).
func (t *Texture2D) GetInternalResourceHandle() driver.Image { return t.img }

// View returns the image view used to bind this texture for
// sampling.
func (t *Texture2D) View() driver.ImageView { return t.view }

// Format returns the texture's pixel format.
func (t *Texture2D) Format() driver.PixelFmt { return t.format }

// Size returns the texture's dimensions.
func (t *Texture2D) Size() driver.Dim3D { return t.size }

// Levels returns the mip level count.
func (t *Texture2D) Levels() int { return t.levels }

// Samples returns the sample count (>1 for multisample
// textures, used by ResolveMultisampleFramebuffer).
func (t *Texture2D) Samples() int { return t.samples }

// Texture2DArray wraps a multi-layer 2D image.
type Texture2DArray struct {
	*resource.Handle
	img    driver.Image
	view   driver.ImageView
	format driver.PixelFmt
	size   driver.Dim3D
	layers int
	levels int
}

// NewTexture2DArray creates a Texture2DArray of the given
// format, per-layer size, layer count and mip level count.
func NewTexture2DArray(owner resource.OwnerID, gpu driver.GPU, pf driver.PixelFmt, size driver.Dim3D, layers, levels int, usg driver.Usage, reg *stats.Registry) (*Texture2DArray, error) {
	if layers < 1 {
		return nil, ErrUnsupportedLayers
	}
	img, err := gpu.NewImage(pf, size, layers, levels, 1, usg)
	if err != nil {
		return nil, err
	}
	view, err := img.NewView(driver.IView2DArray, 0, layers, 0, levels)
	if err != nil {
		img.Destroy()
		return nil, err
	}
	t := &Texture2DArray{img: img, view: view, format: pf, size: size, layers: layers, levels: levels}
	t.Handle = resource.New(resource.KindTexture2DArray, owner, destroyFunc(func() {
		view.Destroy()
		img.Destroy()
	}), reg)
	return t, nil
}

// GetInternalResourceHandle returns the underlying driver.Image.
func (t *Texture2DArray) GetInternalResourceHandle() driver.Image { return t.img }

// View returns the image view used to bind this texture array
// for sampling.
func (t *Texture2DArray) View() driver.ImageView { return t.view }

// Format returns the texture's pixel format.
func (t *Texture2DArray) Format() driver.PixelFmt { return t.format }

// Size returns the per-layer dimensions.
func (t *Texture2DArray) Size() driver.Dim3D { return t.size }

// Layers returns the layer count.
func (t *Texture2DArray) Layers() int { return t.layers }

// Levels returns the mip level count.
func (t *Texture2DArray) Levels() int { return t.levels }

// SamplerState wraps a driver.Sampler, the resource-managed
// counterpart of a material blueprint's static sampler
// definitions (spec §4.9).
type SamplerState struct {
	*resource.Handle
	s driver.Sampler
}

// NewSamplerState creates a SamplerState from the given
// sampling parameters.
func NewSamplerState(owner resource.OwnerID, gpu driver.GPU, spln *driver.Sampling, reg *stats.Registry) (*SamplerState, error) {
	s, err := gpu.NewSampler(spln)
	if err != nil {
		return nil, err
	}
	return &SamplerState{Handle: resource.New(resource.KindSamplerState, owner, s, reg), s: s}, nil
}

// GetInternalResourceHandle returns the underlying
// driver.Sampler.
func (s *SamplerState) GetInternalResourceHandle() driver.Sampler { return s.s }
