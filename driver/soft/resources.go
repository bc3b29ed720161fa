// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package soft

import (
	"github.com/lithosgfx/lithos/driver"
)

// Buffer implements driver.Buffer.
type Buffer struct {
	size    int64
	visible bool
	usage   driver.Usage
	data    []byte
	freed   bool
}

func (b *Buffer) Destroy() { b.freed = true; b.data = nil }

func (b *Buffer) Visible() bool { return b.visible }

func (b *Buffer) Bytes() []byte {
	if !b.visible {
		return nil
	}
	return b.data
}

func (b *Buffer) Cap() int64 { return b.size }

// Image implements driver.Image.
type Image struct {
	gpu     *GPU
	pixFmt  driver.PixelFmt
	size    driver.Dim3D
	layers  int
	levels  int
	samples int
	usage   driver.Usage
	freed   bool
	views   []*ImageView
}

func (i *Image) Destroy() { i.freed = true }

func (i *Image) NewView(typ driver.ViewType, layer, layers, level, levels int) (driver.ImageView, error) {
	if layer < 0 || layers < 1 || layer+layers > i.layers {
		return nil, newErr("Image.NewView: layer range out of bounds")
	}
	if level < 0 || levels < 1 || level+levels > i.levels {
		return nil, newErr("Image.NewView: level range out of bounds")
	}
	v := &ImageView{
		img:    i,
		typ:    typ,
		layer:  layer,
		layers: layers,
		level:  level,
		levels: levels,
	}
	i.views = append(i.views, v)
	return v, nil
}

// ImageView implements driver.ImageView.
type ImageView struct {
	img    *Image
	typ    driver.ViewType
	layer  int
	layers int
	level  int
	levels int
	freed  bool
}

func (v *ImageView) Destroy() { v.freed = true }

// Sampler implements driver.Sampler.
type Sampler struct {
	spln driver.Sampling
}

func (s *Sampler) Destroy() {}

// ShaderCode implements driver.ShaderCode.
type ShaderCode struct {
	data []byte
}

func (s *ShaderCode) Destroy() { s.data = nil }

// RenderPass implements driver.RenderPass.
type RenderPass struct {
	gpu  *GPU
	att  []driver.Attachment
	sub  []driver.Subpass
	fbs  []*Framebuf
	freed bool
}

func (p *RenderPass) Destroy() { p.freed = true }

func (p *RenderPass) NewFB(iv []driver.ImageView, width, height, layers int) (driver.Framebuf, error) {
	if len(iv) != len(p.att) {
		return nil, newErr("RenderPass.NewFB: image view count does not match attachment count")
	}
	if width < 1 || height < 1 || layers < 1 {
		return nil, newErr("RenderPass.NewFB: invalid dimensions")
	}
	v := make([]driver.ImageView, len(iv))
	copy(v, iv)
	fb := &Framebuf{pass: p, views: v, width: width, height: height, layers: layers}
	p.fbs = append(p.fbs, fb)
	return fb, nil
}

// Framebuf implements driver.Framebuf.
type Framebuf struct {
	pass   *RenderPass
	views  []driver.ImageView
	width  int
	height int
	layers int
	freed  bool
}

func (f *Framebuf) Destroy() { f.freed = true }

// DescHeap implements driver.DescHeap.
type DescHeap struct {
	gpu   *GPU
	descs []driver.Descriptor
	n     int
	// bindings[cpy][nr] holds whatever was last bound at
	// descriptor nr for heap copy cpy: a []driver.Buffer,
	// []driver.ImageView or []driver.Sampler depending on
	// the descriptor's Type.
	bindings []map[int]any
	freed    bool
}

func (h *DescHeap) Destroy() { h.freed = true }

func (h *DescHeap) New(n int) error {
	if n == h.n {
		return nil
	}
	if n == 0 {
		h.bindings = nil
		h.n = 0
		return nil
	}
	h.bindings = make([]map[int]any, n)
	for i := range h.bindings {
		h.bindings[i] = make(map[int]any)
	}
	h.n = n
	return nil
}

func (h *DescHeap) descAt(nr int) (driver.Descriptor, bool) {
	for _, d := range h.descs {
		if d.Nr == nr {
			return d, true
		}
	}
	return driver.Descriptor{}, false
}

func (h *DescHeap) SetBuffer(cpy, nr, start int, buf []driver.Buffer, off, size []int64) {
	if cpy < 0 || cpy >= h.n {
		return
	}
	d, ok := h.descAt(nr)
	if !ok || (d.Type != driver.DBuffer && d.Type != driver.DConstant) {
		return
	}
	h.bindings[cpy][nr] = append([]driver.Buffer(nil), buf...)
}

func (h *DescHeap) SetImage(cpy, nr, start int, iv []driver.ImageView) {
	if cpy < 0 || cpy >= h.n {
		return
	}
	d, ok := h.descAt(nr)
	if !ok || (d.Type != driver.DImage && d.Type != driver.DTexture) {
		return
	}
	h.bindings[cpy][nr] = append([]driver.ImageView(nil), iv...)
}

func (h *DescHeap) SetSampler(cpy, nr, start int, splr []driver.Sampler) {
	if cpy < 0 || cpy >= h.n {
		return
	}
	d, ok := h.descAt(nr)
	if !ok || d.Type != driver.DSampler {
		return
	}
	h.bindings[cpy][nr] = append([]driver.Sampler(nil), splr...)
}

func (h *DescHeap) Count() int { return h.n }

// DescTable implements driver.DescTable.
type DescTable struct {
	heaps []driver.DescHeap
	freed bool
}

func (t *DescTable) Destroy() { t.freed = true }

// Pipeline implements driver.Pipeline.
type Pipeline struct {
	graph *driver.GraphState
	comp  *driver.CompState
	freed bool
}

func (p *Pipeline) Destroy() { p.freed = true }
