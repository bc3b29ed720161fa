// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package rootsig implements the abstract root-signature
// binding-layout declaration of spec §3/§4.2: an ordered list
// of root parameters (descriptor tables, inline constants,
// direct CBV/SRV/UAV) plus static samplers, with numeric
// conventions matching Direct3D 12 so that backends without a
// native root-signature concept can emulate one via sequential
// descriptor-heap binding.
//
// A RootSignature is emulated on top of the driver package's
// slot/descriptor-set model (driver.Descriptor, driver.DescHeap,
// driver.DescTable): each RootParameter becomes one
// driver.DescHeap (one entry per DescriptorRange, or a single
// entry for an inline/direct parameter), and the signature as a
// whole becomes one driver.DescTable spanning those heaps in
// root-parameter order. This is the emulation the teacher's own
// internal/shader package performs by hand for its fixed set of
// four descriptor heaps (engine/internal/shader/desc.go);
// rootsig generalizes that pattern to an arbitrary,
// caller-supplied layout.
package rootsig

import (
	"errors"
	"fmt"

	"github.com/lithosgfx/lithos/driver"
	"github.com/lithosgfx/lithos/resource"
	"github.com/lithosgfx/lithos/stats"
)

const prefix = "rootsig: "

func newErr(reason string) error { return errors.New(prefix + reason) }

// RangeType is the type of resource view a DescriptorRange
// addresses.
type RangeType int

// Range types, matching the D3D12_DESCRIPTOR_RANGE_TYPE
// convention named in spec §3.
const (
	RangeSRV RangeType = iota
	RangeUAV
	RangeCBV
	RangeSampler
)

// Visibility selects which programmable stage(s) may access a
// root parameter or static sampler.
type Visibility int

// Visibility values.
const (
	VisAll Visibility = iota
	VisVertex
	VisTessControl
	VisTessEval
	VisGeometry
	VisFragment
)

func (v Visibility) stage() driver.Stage {
	switch v {
	case VisVertex, VisTessControl, VisTessEval, VisGeometry:
		return driver.SVertex
	case VisFragment:
		return driver.SFragment
	default:
		return driver.SVertex | driver.SFragment
	}
}

// DescriptorRange describes one contiguous block of resource
// views within a DescriptorTable root parameter.
type DescriptorRange struct {
	RangeType                        RangeType
	NumberOfDescriptors               int
	BaseShaderRegister                int
	RegisterSpace                     int
	OffsetInDescriptorsFromTableStart int
	// BaseShaderRegisterName is a human-readable name for the
	// range, up to 32 bytes; purely diagnostic.
	BaseShaderRegisterName string
	// SamplerRootParameterIndex cross-references another root
	// parameter carrying the paired sampler for this range,
	// when RangeType is not RangeSampler. -1 means unpaired.
	SamplerRootParameterIndex int
}

// ParamType is the kind of a RootParameter.
type ParamType int

// Root parameter kinds.
const (
	ParamDescriptorTable ParamType = iota
	ParamConstants32Bit
	ParamConstantBufferView
	ParamShaderResourceView
	ParamUnorderedAccessView
)

// RootParameter is one entry in a root signature's parameter
// list; see spec §3 for the variant fields.
type RootParameter struct {
	Type       ParamType
	Visibility Visibility

	// Valid when Type == ParamDescriptorTable.
	Ranges []DescriptorRange

	// Valid when Type == ParamConstants32Bit.
	Count          int
	ShaderRegister int
	Space          int
}

// StaticSampler is an immutable sampler baked into the root
// signature itself, rather than bound through a descriptor.
type StaticSampler struct {
	Sampling       driver.Sampling
	ShaderRegister int
	Space          int
	Visibility     Visibility
}

// Flags is a bitset of root-signature-wide options.
type Flags uint32

// Flag bits.
const (
	FlagAllowInputAssemblerInputLayout Flags = 1 << iota
	FlagDenyVertexShaderRootAccess
	FlagDenyFragmentShaderRootAccess
)

// Desc is the full descriptor a caller supplies to create a
// RootSignature.
type Desc struct {
	Parameters     []RootParameter
	StaticSamplers []StaticSampler
	Flags          Flags
}

// Validate checks the invariants of spec §3: every index
// referenced by OffsetInDescriptorsFromTableStart or
// SamplerRootParameterIndex must exist, and
// BaseShaderRegisterName must fit in 32 bytes.
func (d *Desc) Validate() error {
	for i, p := range d.Parameters {
		if p.Type != ParamDescriptorTable {
			continue
		}
		for j, r := range p.Ranges {
			if len(r.BaseShaderRegisterName) > 32 {
				return newErr(fmt.Sprintf("parameter %d range %d: BaseShaderRegisterName exceeds 32 bytes", i, j))
			}
			if r.NumberOfDescriptors < 1 {
				return newErr(fmt.Sprintf("parameter %d range %d: NumberOfDescriptors must be positive", i, j))
			}
			if r.OffsetInDescriptorsFromTableStart < 0 || r.OffsetInDescriptorsFromTableStart >= len(p.Ranges) {
				return newErr(fmt.Sprintf("parameter %d range %d: OffsetInDescriptorsFromTableStart out of bounds", i, j))
			}
			if r.RangeType != RangeSampler && r.SamplerRootParameterIndex >= 0 {
				if r.SamplerRootParameterIndex >= len(d.Parameters) {
					return newErr(fmt.Sprintf("parameter %d range %d: SamplerRootParameterIndex out of bounds", i, j))
				}
			}
		}
	}
	return nil
}

// RootSignature is an immutable, emulated D3D12-style root
// signature (spec §3/§4.2).
type RootSignature struct {
	*resource.Handle
	desc  Desc
	table driver.DescTable
	heaps []driver.DescHeap
}

// New creates a RootSignature. The runtime takes ownership of
// copies of desc.Parameters/StaticSamplers, so the caller may
// reuse or free its own copy afterwards (spec §4.2).
func New(owner resource.OwnerID, gpu driver.GPU, desc Desc, reg *stats.Registry) (*RootSignature, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	cp := Desc{
		Parameters:     append([]RootParameter(nil), desc.Parameters...),
		StaticSamplers: append([]StaticSampler(nil), desc.StaticSamplers...),
		Flags:          desc.Flags,
	}
	for i := range cp.Parameters {
		cp.Parameters[i].Ranges = append([]DescriptorRange(nil), desc.Parameters[i].Ranges...)
	}

	heaps := make([]driver.DescHeap, 0, len(cp.Parameters))
	for i, p := range cp.Parameters {
		descs, err := paramDescriptors(p)
		if err != nil {
			destroyHeaps(heaps)
			return nil, fmt.Errorf("rootsig: parameter %d: %w", i, err)
		}
		h, err := gpu.NewDescHeap(descs)
		if err != nil {
			destroyHeaps(heaps)
			return nil, err
		}
		if err := h.New(1); err != nil {
			destroyHeaps(heaps)
			h.Destroy()
			return nil, err
		}
		heaps = append(heaps, h)
	}
	table, err := gpu.NewDescTable(heaps)
	if err != nil {
		destroyHeaps(heaps)
		return nil, err
	}

	rs := &RootSignature{desc: cp, table: table, heaps: heaps}
	rs.Handle = resource.New(resource.KindRootSignature, owner, destroyFunc(func() {
		table.Destroy()
		destroyHeaps(heaps)
	}), reg)
	return rs, nil
}

type destroyFunc func()

func (f destroyFunc) Destroy() { f() }

func destroyHeaps(heaps []driver.DescHeap) {
	for _, h := range heaps {
		h.Destroy()
	}
}

// paramDescriptors flattens one RootParameter into the
// driver.Descriptor slice needed to create its backing
// driver.DescHeap.
func paramDescriptors(p RootParameter) ([]driver.Descriptor, error) {
	stages := p.Visibility.stage()
	switch p.Type {
	case ParamDescriptorTable:
		if len(p.Ranges) == 0 {
			return nil, newErr("descriptor table parameter has no ranges")
		}
		ds := make([]driver.Descriptor, len(p.Ranges))
		for i, r := range p.Ranges {
			ds[i] = driver.Descriptor{
				Type:   rangeDescType(r.RangeType),
				Stages: stages,
				Nr:     i,
				Len:    r.NumberOfDescriptors,
			}
		}
		return ds, nil
	case ParamConstants32Bit, ParamConstantBufferView:
		return []driver.Descriptor{{Type: driver.DConstant, Stages: stages, Nr: 0, Len: 1}}, nil
	case ParamShaderResourceView:
		return []driver.Descriptor{{Type: driver.DBuffer, Stages: stages, Nr: 0, Len: 1}}, nil
	case ParamUnorderedAccessView:
		return []driver.Descriptor{{Type: driver.DBuffer, Stages: stages, Nr: 0, Len: 1}}, nil
	default:
		return nil, newErr("undefined ParamType constant")
	}
}

func rangeDescType(t RangeType) driver.DescType {
	switch t {
	case RangeSRV:
		return driver.DTexture
	case RangeUAV:
		return driver.DImage
	case RangeCBV:
		return driver.DConstant
	case RangeSampler:
		return driver.DSampler
	default:
		panic("rootsig: undefined RangeType constant")
	}
}

// Parameter returns the root parameter at index, for accessor
// use by pso/material resolution.
func (rs *RootSignature) Parameter(index int) (RootParameter, bool) {
	if index < 0 || index >= len(rs.desc.Parameters) {
		return RootParameter{}, false
	}
	return rs.desc.Parameters[index], true
}

// NumParameters returns the number of root parameters.
func (rs *RootSignature) NumParameters() int { return len(rs.desc.Parameters) }

// StaticSampler returns the static sampler at index.
func (rs *RootSignature) StaticSampler(index int) (StaticSampler, bool) {
	if index < 0 || index >= len(rs.desc.StaticSamplers) {
		return StaticSampler{}, false
	}
	return rs.desc.StaticSamplers[index], true
}

// Table returns the driver.DescTable that backs the emulated
// signature, for use by the backend package when binding
// descriptor tables.
func (rs *RootSignature) Table() driver.DescTable { return rs.table }

// Heap returns the driver.DescHeap that backs the root
// parameter at index.
func (rs *RootSignature) Heap(index int) (driver.DescHeap, bool) {
	if index < 0 || index >= len(rs.heaps) {
		return nil, false
	}
	return rs.heaps[index], true
}
