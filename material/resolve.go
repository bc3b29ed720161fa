// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package material

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/lithosgfx/lithos/pso"
	"github.com/lithosgfx/lithos/resource"
)

// PassContext carries whatever per-pass state a resolve needs
// to distinguish otherwise-identical blueprint/instance pairs
// (e.g. a shadow pass vs. a color pass selecting different
// shader permutations). The source's static, process-wide pass
// listener becomes this explicit, caller-supplied value instead
// (spec §9 "Global state").
type PassContext struct {
	Name string
}

// BindingKind tags what kind of binding a Binding carries.
type BindingKind int

// Binding kinds.
const (
	BindUniformBuffer BindingKind = iota
	BindTextureBuffer
	BindSampler
	BindTexture
)

// Binding is one (rootParameterIndex, resource) pair of spec
// §4.8 step 4. For BindTexture, AssetID is the resolved asset
// id (instance override if present, else the blueprint
// default); actually creating or looking up the backing GPU
// texture/buffer for a binding is the caller's responsibility
// (the asset and texture packages own that), since a Resolve
// call must not itself perform GPU allocation.
type Binding struct {
	RootParameterIndex int
	Kind               BindingKind
	AssetID            uint32
	Def                any // *UniformBufferDef, *TextureBufferDef, or *SamplerStateDef
}

// Resolved is the output of resolving a (blueprint, instance
// technique, pass) triple (spec §4.8).
type Resolved struct {
	Properties    PropertySet
	ShaderKey     ShaderKey
	PipelineState *pso.PipelineState
	Bindings      []Binding
}

// dynamicStateHash folds every property whose Usage affects
// fixed-function state (not shader permutation) into a single
// hash, used as part of the PSO cache key (spec §4.8).
func dynamicStateHash(props PropertySet) uint64 {
	h := fnv.New64a()
	for _, p := range props {
		switch p.Usage {
		case UsageRasterizerState, UsageDepthStencilState, UsageBlendState, UsageSamplerState:
		default:
			continue
		}
		fmt.Fprintf(h, "%d:%+v;", p.ID, p.Value)
	}
	return h.Sum64()
}

// cacheKey is the PipelineStateCache key of spec §4.8:
// (blueprintId, shaderPropertyKey, dynamicStateOverridesHash).
type cacheKey struct {
	blueprintID uint32
	shaderKey   string
	dynamicHash uint64
}

// PSOCache maps resolved (blueprint, shaderKey,
// dynamicStateHash) triples to a PipelineState, so steady-state
// resolves never recompile shaders (spec §4.8: "Caching is
// required for correctness of steady-state performance").
type PSOCache struct {
	mu      sync.Mutex
	entries map[cacheKey]*pso.PipelineState
}

// NewPSOCache creates an empty PSOCache.
func NewPSOCache() *PSOCache {
	return &PSOCache{entries: make(map[cacheKey]*pso.PipelineState)}
}

// getOrCreate returns the cached PipelineState for key, calling
// create to build one on a miss. Testable Property 6 (PSO
// cache hit) follows directly from this: two resolves with an
// identical key never call create twice.
func (c *PSOCache) getOrCreate(key cacheKey, create func() (*pso.PipelineState, error)) (*pso.PipelineState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.entries[key]; ok {
		return p, nil
	}
	p, err := create()
	if err != nil {
		return nil, err
	}
	c.entries[key] = p
	return p, nil
}

// Resolve implements spec §4.8: it applies technique overrides
// onto the blueprint schema, derives the shader-property key,
// looks up (or builds, by calling gpuNewGraphics) the
// PipelineState, and produces the binding list. owner is not
// used.
//
// cache may be nil, in which case every resolve calls
// gpuNewGraphics for its PipelineState — useful for tests that
// want to observe cache-miss behavior directly.
func Resolve(b *Blueprint, tech Technique, pass PassContext, owner resource.OwnerID, gpuNewGraphics func() (*pso.PipelineState, error), cache *PSOCache) (*Resolved, error) {
	effective, err := b.Schema.ApplyOverrides(tech.Overrides)
	if err != nil {
		return nil, err
	}
	key := effective.ShaderCombinationKey(b.MaxIntValue)
	dynHash := dynamicStateHash(effective)

	var ps *pso.PipelineState
	if cache == nil {
		ps, err = gpuNewGraphics()
		if err != nil {
			return nil, err
		}
	} else {
		ck := cacheKey{blueprintID: b.AssetID, shaderKey: string(key.Bytes()), dynamicHash: dynHash}
		ps, err = cache.getOrCreate(ck, gpuNewGraphics)
		if err != nil {
			return nil, err
		}
	}

	bindings := make([]Binding, 0, len(b.UniformBuffers)+len(b.TextureBuffers)+len(b.Samplers)+len(b.Textures))
	for i := range b.UniformBuffers {
		d := &b.UniformBuffers[i]
		bindings = append(bindings, Binding{RootParameterIndex: d.RootParameterIndex, Kind: BindUniformBuffer, Def: d})
	}
	for i := range b.TextureBuffers {
		d := &b.TextureBuffers[i]
		bindings = append(bindings, Binding{RootParameterIndex: d.RootParameterIndex, Kind: BindTextureBuffer, Def: d})
	}
	for i := range b.Samplers {
		d := &b.Samplers[i]
		bindings = append(bindings, Binding{RootParameterIndex: d.RootParameterIndex, Kind: BindSampler, Def: d})
	}
	for i := range b.Textures {
		d := &b.Textures[i]
		assetID := d.DefaultAssetID
		if d.OverrideProperty != 0 {
			if p, ok := effective.Find(d.OverrideProperty); ok && p.Value.Kind == KindAssetID {
				assetID = p.Value.AssetID
			}
		}
		bindings = append(bindings, Binding{RootParameterIndex: d.RootParameterIndex, Kind: BindTexture, AssetID: assetID, Def: d})
	}

	return &Resolved{Properties: effective, ShaderKey: key, PipelineState: ps, Bindings: bindings}, nil
}
