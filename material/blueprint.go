// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package material

import (
	"fmt"

	"github.com/lithosgfx/lithos/pso"
	"github.com/lithosgfx/lithos/rootsig"
)

// DefaultMaxShaderCombinations is the compile-time cap on the
// number of UsageShaderCombination properties a blueprint may
// declare, unless it opts into a larger one (spec §4.8:
// "Combination bounding").
const DefaultMaxShaderCombinations = 4

// ErrTooManyShaderCombinations is the InvalidPipelineState-family
// error raised when a blueprint's SHADER_COMBINATION property
// count exceeds its cap (scenario S4).
type ErrTooManyShaderCombinations struct {
	Count, Limit int
}

func (e *ErrTooManyShaderCombinations) Error() string {
	return fmt.Sprintf("material: shader combination property count %d exceeds limit %d", e.Count, e.Limit)
}

// UBUsage is the binding frequency of a uniform-buffer
// definition (spec §3).
type UBUsage int

// Uniform-buffer usages.
const (
	UBPass UBUsage = iota
	UBMaterial
	UBInstance
)

// UniformBufferDef describes one uniform buffer a blueprint
// binds at a root parameter (spec §3).
type UniformBufferDef struct {
	RootParameterIndex int
	Usage              UBUsage
	ElementCount        int
	BytesPerElement     int
	Properties          []PropertyID
}

// TextureBufferDef describes one texture buffer a blueprint
// binds at a root parameter, analogous to UniformBufferDef.
type TextureBufferDef struct {
	RootParameterIndex int
	Usage              UBUsage
	ElementCount        int
	BytesPerElement     int
	Properties          []PropertyID
}

// SamplerStateDef describes one static/bound sampler state a
// blueprint binds at a root parameter.
type SamplerStateDef struct {
	RootParameterIndex int
	Sampling           rootsig.StaticSampler
}

// TextureBindingDef describes one texture slot a blueprint
// binds at a root parameter, with an optional per-instance
// override property.
type TextureBindingDef struct {
	RootParameterIndex int
	DefaultAssetID     uint32
	// OverrideProperty is the material-property id an instance
	// may set to replace DefaultAssetID, or 0 if the binding
	// cannot be overridden.
	OverrideProperty PropertyID
}

// Blueprint is a template material definition: a property
// schema, an owned root signature, an owned PSO template, and
// the uniform-buffer/texture-buffer/sampler/texture bindings
// that give the schema's properties somewhere to land on the
// GPU (spec §3).
type Blueprint struct {
	AssetID uint32

	Schema        PropertySet
	RootSignature *rootsig.RootSignature
	PSOTemplate   *pso.PipelineState

	UniformBuffers []UniformBufferDef
	TextureBuffers []TextureBufferDef
	Samplers       []SamplerStateDef
	Textures       []TextureBindingDef

	Importance  ImportanceTable
	MaxIntValue MaxIntTable

	maxCombinations int
}

// BlueprintDesc is the input to NewBlueprint.
type BlueprintDesc struct {
	AssetID         uint32
	Schema          PropertySet
	RootSignature   *rootsig.RootSignature
	PSOTemplate     *pso.PipelineState
	UniformBuffers  []UniformBufferDef
	TextureBuffers  []TextureBufferDef
	Samplers        []SamplerStateDef
	Textures        []TextureBindingDef
	Importance      ImportanceTable
	MaxIntValue     MaxIntTable
	// AllowLargeCombinationSet opts out of DefaultMaxShaderCombinations.
	AllowLargeCombinationSet bool
	MaxCombinations          int // used only when AllowLargeCombinationSet is true
}

// NewBlueprint validates and constructs a Blueprint. It
// enforces spec §4.8's combination-count cap and the schema's
// strict-ordering invariant (spec §3).
func NewBlueprint(desc BlueprintDesc) (*Blueprint, error) {
	desc.Schema.Sort()
	if err := desc.Schema.Validate(); err != nil {
		return nil, err
	}
	if desc.RootSignature == nil {
		return nil, newErr("BlueprintDesc: nil RootSignature")
	}
	if desc.PSOTemplate == nil {
		return nil, newErr("BlueprintDesc: nil PSOTemplate")
	}

	limit := DefaultMaxShaderCombinations
	if desc.AllowLargeCombinationSet && desc.MaxCombinations > 0 {
		limit = desc.MaxCombinations
	}
	var combinationCount int
	for _, p := range desc.Schema {
		if p.Usage == UsageShaderCombination {
			combinationCount++
		}
	}
	if combinationCount > limit {
		return nil, &ErrTooManyShaderCombinations{Count: combinationCount, Limit: limit}
	}

	b := &Blueprint{
		AssetID:         desc.AssetID,
		Schema:          desc.Schema,
		RootSignature:   desc.RootSignature,
		PSOTemplate:     desc.PSOTemplate,
		UniformBuffers:  append([]UniformBufferDef(nil), desc.UniformBuffers...),
		TextureBuffers:  append([]TextureBufferDef(nil), desc.TextureBuffers...),
		Samplers:        append([]SamplerStateDef(nil), desc.Samplers...),
		Textures:        append([]TextureBindingDef(nil), desc.Textures...),
		Importance:      desc.Importance,
		MaxIntValue:     desc.MaxIntValue,
		maxCombinations: limit,
	}
	if b.Importance == nil {
		b.Importance = make(ImportanceTable)
	}
	if b.MaxIntValue == nil {
		b.MaxIntValue = make(MaxIntTable)
	}
	return b, nil
}

// MaxCombinations returns the effective shader-combination cap
// this blueprint was created with.
func (b *Blueprint) MaxCombinations() int { return b.maxCombinations }
