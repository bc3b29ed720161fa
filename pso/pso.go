// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package pso implements the immutable Pipeline State (PS)
// objects of spec §3/§4.3: a fixed, validated combination of
// shader stages, fixed-function state and a root signature,
// compiled once into a driver.Pipeline and thereafter read-only.
//
// The descriptor types here generalize the teacher's
// driver.GraphState/driver.CompState (driver/core.go) by
// replacing the ad hoc DescTable field with a rootsig.RootSignature,
// and by adding a structural Hash so that material blueprints can
// key a PSO cache the way spec §4.8 requires (blueprint id +
// shader-property key + dynamic-state-overrides hash).
package pso

import (
	"encoding/binary"
	"errors"
	"hash/fnv"
	"reflect"

	"github.com/lithosgfx/lithos/driver"
	"github.com/lithosgfx/lithos/resource"
	"github.com/lithosgfx/lithos/rootsig"
	"github.com/lithosgfx/lithos/stats"
)

// objPtr extracts a stable, comparable address from an
// interface or pointer value, or zero if p is nil or not a
// pointer-shaped kind.
func objPtr(p any) uintptr {
	if p == nil {
		return 0
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Ptr, reflect.Chan, reflect.Map, reflect.Func, reflect.UnsafePointer, reflect.Slice:
		if v.IsNil() {
			return 0
		}
		return v.Pointer()
	default:
		return 0
	}
}

const prefix = "pso: "

func newErr(reason string) error { return errors.New(prefix + reason) }

// ErrInvalidPipelineState is returned when a Desc combination is
// internally inconsistent (spec §4.3 edge case: e.g. a nil
// shader function with a non-empty stage).
var ErrInvalidPipelineState = newErr("invalid pipeline state combination")

// GraphicsDesc describes a graphics PipelineState.
type GraphicsDesc struct {
	RootSignature *rootsig.RootSignature
	VertFunc      driver.ShaderFunc
	FragFunc      driver.ShaderFunc
	Input         []driver.VertexIn
	Topology      driver.Topology
	Raster        driver.RasterState
	Samples       int
	DS            driver.DSState
	Blend         driver.BlendState
	Pass          driver.RenderPass
	Subpass       int
}

func (d *GraphicsDesc) validate() error {
	if d.RootSignature == nil {
		return newErr("GraphicsDesc: nil RootSignature")
	}
	if d.VertFunc.Code == nil {
		return ErrInvalidPipelineState
	}
	if d.Pass == nil {
		return newErr("GraphicsDesc: nil Pass")
	}
	if d.Samples < 1 {
		return newErr("GraphicsDesc: Samples must be at least 1")
	}
	return nil
}

func (d *GraphicsDesc) driverState() *driver.GraphState {
	return &driver.GraphState{
		VertFunc: d.VertFunc,
		FragFunc: d.FragFunc,
		Desc:     d.RootSignature.Table(),
		Input:    d.Input,
		Topology: d.Topology,
		Raster:   d.Raster,
		Samples:  d.Samples,
		DS:       d.DS,
		Blend:    d.Blend,
		Pass:     d.Pass,
		Subpass:  d.Subpass,
	}
}

// ComputeDesc describes a compute PipelineState.
type ComputeDesc struct {
	RootSignature *rootsig.RootSignature
	Func          driver.ShaderFunc
}

func (d *ComputeDesc) validate() error {
	if d.RootSignature == nil {
		return newErr("ComputeDesc: nil RootSignature")
	}
	if d.Func.Code == nil {
		return ErrInvalidPipelineState
	}
	return nil
}

func (d *ComputeDesc) driverState() *driver.CompState {
	return &driver.CompState{Func: d.Func, Desc: d.RootSignature.Table()}
}

// Kind distinguishes a graphics PipelineState from a compute one.
type Kind int

// Pipeline state kinds.
const (
	KindGraphics Kind = iota
	KindCompute
)

// PipelineState is an immutable, compiled GPU pipeline (spec
// §4.3). Once created, none of its defining state can change;
// a new combination requires a new PipelineState.
type PipelineState struct {
	*resource.Handle
	kind Kind
	hash uint64
	pl   driver.Pipeline
}

// NewGraphics creates a graphics PipelineState.
func NewGraphics(owner resource.OwnerID, gpu driver.GPU, desc GraphicsDesc, reg *stats.Registry) (*PipelineState, error) {
	if err := desc.validate(); err != nil {
		return nil, err
	}
	pl, err := gpu.NewPipeline(desc.driverState())
	if err != nil {
		return nil, err
	}
	p := &PipelineState{kind: KindGraphics, hash: hashGraphics(&desc), pl: pl}
	p.Handle = resource.New(resource.KindPipelineState, owner, pl, reg)
	return p, nil
}

// NewCompute creates a compute PipelineState.
func NewCompute(owner resource.OwnerID, gpu driver.GPU, desc ComputeDesc, reg *stats.Registry) (*PipelineState, error) {
	if err := desc.validate(); err != nil {
		return nil, err
	}
	pl, err := gpu.NewPipeline(desc.driverState())
	if err != nil {
		return nil, err
	}
	p := &PipelineState{kind: KindCompute, hash: hashCompute(&desc), pl: pl}
	p.Handle = resource.New(resource.KindPipelineState, owner, pl, reg)
	return p, nil
}

// Kind reports whether this is a graphics or compute pipeline.
func (p *PipelineState) Kind() Kind { return p.kind }

// Pipeline returns the underlying driver.Pipeline, the value
// cmdstream.CommandBuffer.SetPipelineState records.
func (p *PipelineState) Pipeline() driver.Pipeline { return p.pl }

// Hash returns a structural hash of the state this
// PipelineState was created from. Two PipelineStates created
// from field-for-field-equal descriptors (including the same
// ShaderCode and RootSignature identities) hash identically;
// this is the building block for the PSO cache key that
// material blueprints compute (spec §4.8), which additionally
// folds in the shader-property key and any per-instance dynamic
// state overrides.
func (p *PipelineState) Hash() uint64 { return p.hash }

// hasher accumulates a deterministic structural hash over a
// pipeline descriptor's fields. It is deliberately simple
// (fnv-1a over a little-endian encoding of each field) rather
// than reflection-based, since PipelineState descriptors are
// created far less often than they are looked up, and a stable,
// inspectable encoding is easier to reason about at cache-key
// collision postmortems than a reflect.DeepEqual-driven one.
type hasher struct {
	h   []byte
	sum [8]byte
}

func newHasher() *hasher { return &hasher{} }

func (h *hasher) u32(v uint32) *hasher {
	binary.LittleEndian.PutUint32(h.sum[:4], v)
	h.h = append(h.h, h.sum[:4]...)
	return h
}

func (h *hasher) u64(v uint64) *hasher {
	binary.LittleEndian.PutUint64(h.sum[:], v)
	h.h = append(h.h, h.sum[:]...)
	return h
}

func (h *hasher) ptr(p any) *hasher {
	// Identity of the underlying object is part of the
	// structural key: two descriptors referring to different
	// ShaderCode or RootSignature instances must not collide
	// even if every other field matches.
	return h.u64(uint64(objPtr(p)))
}

func (h *hasher) bytes(b []byte) *hasher {
	h.h = append(h.h, b...)
	return h
}

func (h *hasher) sum64() uint64 {
	f := fnv.New64a()
	f.Write(h.h)
	return f.Sum64()
}

func hashGraphics(d *GraphicsDesc) uint64 {
	h := newHasher()
	h.ptr(d.RootSignature).ptr(d.VertFunc.Code).bytes([]byte(d.VertFunc.Name))
	h.ptr(d.FragFunc.Code).bytes([]byte(d.FragFunc.Name))
	h.u32(uint32(d.Topology)).u32(uint32(d.Samples)).u32(uint32(d.Subpass))
	for _, in := range d.Input {
		h.u32(uint32(in.Format)).u32(uint32(in.Stride)).u32(uint32(in.Nr)).bytes([]byte(in.Name))
	}
	h.u32(uint32(d.Raster.Cull)).u32(uint32(d.Raster.Fill))
	h.u32(uint32(d.DS.DepthCmp))
	if d.DS.DepthTest {
		h.u32(1)
	}
	if d.DS.DepthWrite {
		h.u32(1)
	}
	h.u32(uint32(len(d.Blend.Color)))
	for _, c := range d.Blend.Color {
		h.u32(uint32(c.WriteMask)).u32(uint32(c.Op[0])).u32(uint32(c.Op[1]))
	}
	h.ptr(d.Pass)
	return h.sum64()
}

func hashCompute(d *ComputeDesc) uint64 {
	h := newHasher()
	h.ptr(d.RootSignature).ptr(d.Func.Code).bytes([]byte(d.Func.Name))
	return h.sum64()
}
