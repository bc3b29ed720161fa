// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package material_test

import (
	"testing"

	"github.com/lithosgfx/lithos/driver"
	"github.com/lithosgfx/lithos/material"
	"github.com/lithosgfx/lithos/pso"
	"github.com/lithosgfx/lithos/resource"
)

func blueprintWithOneCombination(t *testing.T, gpu driver.GPU) *material.Blueprint {
	t.Helper()
	rs := newRS(t, gpu)
	p := newPSO(t, gpu, rs)
	b, err := material.NewBlueprint(material.BlueprintDesc{
		AssetID: 7,
		Schema: material.PropertySet{
			{ID: 1, Usage: material.UsageShaderCombination, Value: material.Value{Kind: material.KindBool, Bool: false}},
		},
		RootSignature: rs,
		PSOTemplate:   p,
		UniformBuffers: []material.UniformBufferDef{
			{RootParameterIndex: 0, Usage: material.UBMaterial, ElementCount: 1, BytesPerElement: 16},
		},
	})
	if err != nil {
		t.Fatalf("NewBlueprint: %v", err)
	}
	return b
}

// TestResolveShaderKeyDeterministic is Testable Property 5: two
// resolves of the same (blueprint, instance, pass) produce
// byte-identical shader-property keys.
func TestResolveShaderKeyDeterministic(t *testing.T) {
	gpu := openGPU(t)
	b := blueprintWithOneCombination(t, gpu)
	tech := material.Technique{TechniqueID: 1, BlueprintAssetID: b.AssetID}
	pass := material.PassContext{Name: "color"}
	create := func() (*pso.PipelineState, error) { return b.PSOTemplate, nil }

	r1, err := material.Resolve(b, tech, pass, resource.OwnerID(1), create, nil)
	if err != nil {
		t.Fatalf("Resolve 1: %v", err)
	}
	r2, err := material.Resolve(b, tech, pass, resource.OwnerID(1), create, nil)
	if err != nil {
		t.Fatalf("Resolve 2: %v", err)
	}
	if !r1.ShaderKey.Equal(r2.ShaderKey) {
		t.Fatalf("ShaderKey not deterministic: %v vs %v", r1.ShaderKey, r2.ShaderKey)
	}
	if string(r1.ShaderKey.Bytes()) != string(r2.ShaderKey.Bytes()) {
		t.Fatal("ShaderKey.Bytes() not byte-identical across resolves")
	}
}

// TestResolvePSOCacheHit is Testable Property 6: two identical
// resolves produce the same PipelineState handle, and a cache
// miss only triggers create once.
func TestResolvePSOCacheHit(t *testing.T) {
	gpu := openGPU(t)
	b := blueprintWithOneCombination(t, gpu)
	tech := material.Technique{TechniqueID: 1, BlueprintAssetID: b.AssetID}
	pass := material.PassContext{Name: "color"}
	cache := material.NewPSOCache()

	var calls int
	create := func() (*pso.PipelineState, error) {
		calls++
		return b.PSOTemplate, nil
	}

	r1, err := material.Resolve(b, tech, pass, resource.OwnerID(1), create, cache)
	if err != nil {
		t.Fatalf("Resolve 1: %v", err)
	}
	r2, err := material.Resolve(b, tech, pass, resource.OwnerID(1), create, cache)
	if err != nil {
		t.Fatalf("Resolve 2: %v", err)
	}
	if r1.PipelineState != r2.PipelineState {
		t.Fatal("two identical resolves returned different PipelineState handles")
	}
	if calls != 1 {
		t.Fatalf("create called %d times, want exactly 1 (cache hit on second resolve)", calls)
	}
}

func TestResolveBindingsCoverUniformBuffers(t *testing.T) {
	gpu := openGPU(t)
	b := blueprintWithOneCombination(t, gpu)
	tech := material.Technique{TechniqueID: 1, BlueprintAssetID: b.AssetID}
	create := func() (*pso.PipelineState, error) { return b.PSOTemplate, nil }

	r, err := material.Resolve(b, tech, material.PassContext{}, resource.OwnerID(1), create, nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(r.Bindings) != 1 || r.Bindings[0].Kind != material.BindUniformBuffer {
		t.Fatalf("Bindings: got %+v, want one BindUniformBuffer entry", r.Bindings)
	}
}
