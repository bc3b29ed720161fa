// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package soft implements an in-process, software driver.GPU.
// It performs no actual rasterization; it exists so that the
// rest of the module (and client code) has a always-available,
// dependency-free driver.Driver to exercise the abstract
// contract against, and so tests do not require a native
// D3D/GL/Vulkan device.
package soft

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lithosgfx/lithos/cmdstream"
	"github.com/lithosgfx/lithos/driver"
)

const prefix = "soft: "

func newErr(reason string) error { return errors.New(prefix + reason) }

func init() {
	driver.Register(new(Driver))
	cmdstream.RegisterDispatch("software", cmdstream.GenericDriverDispatch())
}

// Driver is the software driver.Driver.
// Open always succeeds; there is no notion of "device not
// found" for a software implementation.
type Driver struct {
	mu  sync.Mutex
	gpu *GPU
}

// Open implements driver.Driver.
func (d *Driver) Open() (driver.GPU, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gpu == nil {
		d.gpu = newGPU(d)
	}
	return d.gpu, nil
}

// Name implements driver.Driver.
func (d *Driver) Name() string { return "software" }

// Close implements driver.Driver.
func (d *Driver) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gpu = nil
}

// GPU is the software driver.GPU.
type GPU struct {
	drv    *Driver
	mu     sync.Mutex
	nextID uint64
}

func newGPU(drv *Driver) *GPU {
	return &GPU{drv: drv}
}

func (g *GPU) id() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	return g.nextID
}

// Driver implements driver.GPU.
func (g *GPU) Driver() driver.Driver { return g.drv }

// Commit implements driver.GPU.
// Since there is no actual device, committed command buffers
// are considered to have completed execution immediately;
// the one exception is that the reported error mirrors any
// failure recorded in the buffer during recording.
func (g *GPU) Commit(cb []driver.CmdBuffer, ch chan<- error) {
	var first error
	for _, c := range cb {
		b := c.(*CmdBuffer)
		if b.status != cbEnded {
			if first == nil {
				first = newErr("Commit called with a command buffer that is not ended")
			}
			continue
		}
		b.status = cbCommitted
		if b.failErr != nil && first == nil {
			first = b.failErr
		}
		b.status = cbIdle
	}
	if ch != nil {
		ch <- first
	}
}

// NewCmdBuffer implements driver.GPU.
func (g *GPU) NewCmdBuffer() (driver.CmdBuffer, error) {
	return &CmdBuffer{gpu: g, id: g.id()}, nil
}

// NewRenderPass implements driver.GPU.
func (g *GPU) NewRenderPass(att []driver.Attachment, sub []driver.Subpass) (driver.RenderPass, error) {
	if len(att) == 0 {
		return nil, newErr("NewRenderPass requires at least one attachment")
	}
	if len(sub) == 0 {
		return nil, newErr("NewRenderPass requires at least one subpass")
	}
	a := make([]driver.Attachment, len(att))
	copy(a, att)
	s := make([]driver.Subpass, len(sub))
	copy(s, sub)
	return &RenderPass{gpu: g, att: a, sub: s}, nil
}

// NewShaderCode implements driver.GPU.
func (g *GPU) NewShaderCode(data []byte) (driver.ShaderCode, error) {
	if len(data) == 0 {
		return nil, newErr("NewShaderCode requires non-empty data")
	}
	b := make([]byte, len(data))
	copy(b, data)
	return &ShaderCode{data: b}, nil
}

// NewDescHeap implements driver.GPU.
func (g *GPU) NewDescHeap(ds []driver.Descriptor) (driver.DescHeap, error) {
	d := make([]driver.Descriptor, len(ds))
	copy(d, ds)
	return &DescHeap{gpu: g, descs: d}, nil
}

// NewDescTable implements driver.GPU.
func (g *GPU) NewDescTable(dh []driver.DescHeap) (driver.DescTable, error) {
	if len(dh) > g.Limits().MaxDescHeaps {
		return nil, newErr("NewDescTable: too many descriptor heaps")
	}
	h := make([]driver.DescHeap, len(dh))
	copy(h, dh)
	return &DescTable{heaps: h}, nil
}

// NewPipeline implements driver.GPU.
func (g *GPU) NewPipeline(state any) (driver.Pipeline, error) {
	switch s := state.(type) {
	case *driver.GraphState:
		if s.VertFunc.Code == nil {
			return nil, newErr("NewPipeline: graphics state has nil vertex shader")
		}
		cp := *s
		return &Pipeline{graph: &cp}, nil
	case *driver.CompState:
		if s.Func.Code == nil {
			return nil, newErr("NewPipeline: compute state has nil shader")
		}
		cp := *s
		return &Pipeline{comp: &cp}, nil
	default:
		return nil, newErr(fmt.Sprintf("NewPipeline: unexpected state type %T", state))
	}
}

// NewBuffer implements driver.GPU.
func (g *GPU) NewBuffer(size int64, visible bool, usg driver.Usage) (driver.Buffer, error) {
	if size < 1 {
		return nil, newErr("NewBuffer: size must be positive")
	}
	return &Buffer{size: size, visible: visible, usage: usg, data: make([]byte, size)}, nil
}

// NewImage implements driver.GPU.
func (g *GPU) NewImage(pf driver.PixelFmt, size driver.Dim3D, layers, levels, samples int, usg driver.Usage) (driver.Image, error) {
	if layers < 1 || levels < 1 || samples < 1 {
		return nil, newErr("NewImage: layers, levels and samples must be positive")
	}
	if size.Width < 1 || size.Height < 1 {
		return nil, newErr("NewImage: width and height must be positive")
	}
	return &Image{
		gpu:     g,
		pixFmt:  pf,
		size:    size,
		layers:  layers,
		levels:  levels,
		samples: samples,
		usage:   usg,
	}, nil
}

// NewSampler implements driver.GPU.
func (g *GPU) NewSampler(spln *driver.Sampling) (driver.Sampler, error) {
	if spln == nil {
		return nil, newErr("NewSampler: nil Sampling")
	}
	cp := *spln
	return &Sampler{spln: cp}, nil
}

// Limits implements driver.GPU.
func (g *GPU) Limits() driver.Limits {
	return driver.Limits{
		MaxImage1D:        16384,
		MaxImage2D:        16384,
		MaxImageCube:      16384,
		MaxImage3D:        2048,
		MaxLayers:         2048,
		MaxDescHeaps:      4,
		MaxDBuffer:        4,
		MaxDImage:         4,
		MaxDConstant:      12,
		MaxDTexture:       16,
		MaxDSampler:       16,
		MaxDBufferRange:   1 << 27,
		MaxDConstantRange: 1 << 14,
		MaxColorTargets:   8,
		MaxFBSize:         [2]int{16384, 16384},
		MaxFBLayers:       2048,
		MaxPointSize:      256,
		MaxViewports:      16,
		MaxVertexIn:       16,
		MaxFragmentIn:     32,
		MaxDispatch:       [3]int{65535, 65535, 65535},
	}
}
