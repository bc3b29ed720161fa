// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package material

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lithosgfx/lithos/driver"
)

const prefix = "material: "

func newErr(reason string) error { return errors.New(prefix + reason) }

// ErrPropertyOrder is returned when a PropertySet is not
// strictly ordered by PropertyID (spec §3 invariant).
var ErrPropertyOrder = newErr("material property vector is not strictly ordered by propertyId")

// ErrOverrideMismatch is returned when an override's usage or
// value kind does not match the schema entry it targets (spec
// §4.8 step 1: "invalid overrides ... are rejected at load").
var ErrOverrideMismatch = newErr("material property override usage or value kind mismatch")

// Usage classifies how a MaterialProperty participates in
// resolution (spec §3).
type Usage int

// Usage values.
const (
	UsageUnknown Usage = iota
	UsageStatic
	UsageDynamic
	UsageRasterizerState
	UsageDepthStencilState
	UsageBlendState
	UsageSamplerState
	UsageTexture
	UsageShaderCombination
)

// ValueKind tags the active field of a Value.
type ValueKind int

// Value kinds, one per spec §3 "sum type over" entry.
const (
	KindBool ValueKind = iota
	KindInt
	KindInt2
	KindInt3
	KindInt4
	KindFloat
	KindFloat2
	KindFloat3
	KindFloat4
	KindFillMode
	KindCullMode
	KindConservativeRasterMode
	KindDepthWriteMask
	KindStencilOp
	KindCmpFunc
	KindBlendFactor
	KindBlendOp
	KindFilterMode
	KindAddressMode
	KindAssetID
)

// ConservativeRasterMode has no equivalent in the driver
// package (the teacher's backend never exposed conservative
// rasterization), so material defines its own small enum for
// this one property value, per spec §3.
type ConservativeRasterMode int

// Conservative rasterization modes.
const (
	ConservativeRasterOff ConservativeRasterMode = iota
	ConservativeRasterOn
)

// DepthWriteMask mirrors the D3D12 ZERO/ALL depth write mask
// convention named in spec §3.
type DepthWriteMask int

// Depth write masks.
const (
	DepthWriteZero DepthWriteMask = iota
	DepthWriteAll
)

// Value is a tagged union over every MaterialProperty value
// type in spec §3. Only the field matching Kind is meaningful.
type Value struct {
	Kind ValueKind

	Bool   bool
	Int    int32
	Int2   [2]int32
	Int3   [3]int32
	Int4   [4]int32
	Float  float32
	Float2 [2]float32
	Float3 [3]float32
	Float4 [4]float32

	FillMode      driver.FillMode
	CullMode      driver.CullMode
	ConservRaster ConservativeRasterMode
	DepthWrite    DepthWriteMask
	StencilOp     driver.StencilOp
	CmpFunc       driver.CmpFunc
	BlendFactor   driver.BlendFac
	BlendOp       driver.BlendOp
	FilterMode    driver.Filter
	AddressMode   driver.AddrMode
	AssetID       uint32
}

// Property is one entry of a material's property vector (spec
// §3): a stable identity, how it is consumed, and its value.
type Property struct {
	ID    PropertyID
	Usage Usage
	Value Value
}

// PropertySet is a material property vector. Once Sort has
// been called, it must remain strictly ordered by ID: every
// mutation goes through methods here rather than direct slice
// surgery.
type PropertySet []Property

// Sort orders the set by PropertyID. Loaders call this once
// after reading the on-disk property array; Validate then
// confirms strict ordering (duplicate IDs are rejected, not
// silently merged).
func (s PropertySet) Sort() {
	sort.Slice(s, func(i, j int) bool { return s[i].ID < s[j].ID })
}

// Validate checks the strict-ordering invariant of spec §3.
func (s PropertySet) Validate() error {
	for i := 1; i < len(s); i++ {
		if s[i-1].ID >= s[i].ID {
			return ErrPropertyOrder
		}
	}
	return nil
}

// Find performs a binary search for id, returning the matching
// Property and true, or the zero Property and false. Lookup is
// O(log n), as spec §3 requires.
func (s PropertySet) Find(id PropertyID) (Property, bool) {
	i := sort.Search(len(s), func(i int) bool { return s[i].ID >= id })
	if i < len(s) && s[i].ID == id {
		return s[i], true
	}
	return Property{}, false
}

// ApplyOverrides returns a new PropertySet equal to s with each
// override's value substituted in, provided the override's
// Usage and Value.Kind match the schema entry being overridden;
// an override that targets an unknown PropertyID, or whose
// Usage/Kind disagrees with the schema, is rejected per spec
// §4.8 step 1.
func (s PropertySet) ApplyOverrides(overrides PropertySet) (PropertySet, error) {
	out := append(PropertySet(nil), s...)
	for _, ov := range overrides {
		i := sort.Search(len(out), func(i int) bool { return out[i].ID >= ov.ID })
		if i >= len(out) || out[i].ID != ov.ID {
			return nil, fmt.Errorf("%w: override targets unknown propertyId %d", ErrOverrideMismatch, ov.ID)
		}
		if out[i].Usage != ov.Usage || out[i].Value.Kind != ov.Value.Kind {
			return nil, fmt.Errorf("%w: propertyId %d", ErrOverrideMismatch, ov.ID)
		}
		out[i].Value = ov.Value
	}
	return out, nil
}

// ShaderCombinationKey extracts the ShaderKey (spec §4.8 step
// 2) from s: every property whose Usage is
// UsageShaderCombination, ordered by PropertyID, with integer
// values clamped via maxInt.
func (s PropertySet) ShaderCombinationKey(maxInt MaxIntTable) ShaderKey {
	var key ShaderKey
	for _, p := range s {
		if p.Usage != UsageShaderCombination {
			continue
		}
		v := combinationValue(p.Value)
		key = append(key, KeyEntry{ID: p.ID, Value: maxInt.Clamp(p.ID, v)})
	}
	key.sort()
	return key
}

// combinationValue reduces a Value to the signed integer a
// shader-combination key entry carries; booleans encode as
// 0/1, per spec §3.
func combinationValue(v Value) int32 {
	if v.Kind == KindBool {
		if v.Bool {
			return 1
		}
		return 0
	}
	return v.Int
}
