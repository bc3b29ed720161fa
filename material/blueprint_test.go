// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package material_test

import (
	"testing"

	"github.com/lithosgfx/lithos/driver"
	_ "github.com/lithosgfx/lithos/driver/soft"
	"github.com/lithosgfx/lithos/material"
	"github.com/lithosgfx/lithos/pso"
	"github.com/lithosgfx/lithos/resource"
	"github.com/lithosgfx/lithos/rootsig"
)

func openGPU(t *testing.T) driver.GPU {
	t.Helper()
	for _, d := range driver.Drivers() {
		if d.Name() == "software" {
			gpu, err := d.Open()
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			return gpu
		}
	}
	t.Fatal("software driver not registered")
	return nil
}

func newRS(t *testing.T, gpu driver.GPU) *rootsig.RootSignature {
	t.Helper()
	rs, err := rootsig.New(resource.OwnerID(1), gpu, rootsig.Desc{
		Parameters: []rootsig.RootParameter{{Type: rootsig.ParamConstantBufferView}},
	}, nil)
	if err != nil {
		t.Fatalf("rootsig.New: %v", err)
	}
	return rs
}

func newPSO(t *testing.T, gpu driver.GPU, rs *rootsig.RootSignature) *pso.PipelineState {
	t.Helper()
	code, err := gpu.NewShaderCode([]byte{0, 1, 2, 3})
	if err != nil {
		t.Fatalf("NewShaderCode: %v", err)
	}
	pass, err := gpu.NewRenderPass(
		[]driver.Attachment{{Format: driver.RGBA8un, Samples: 1}},
		[]driver.Subpass{{Color: []int{0}, DS: -1}},
	)
	if err != nil {
		t.Fatalf("NewRenderPass: %v", err)
	}
	p, err := pso.NewGraphics(resource.OwnerID(1), gpu, pso.GraphicsDesc{
		RootSignature: rs,
		VertFunc:      driver.ShaderFunc{Code: code, Name: "main"},
		FragFunc:      driver.ShaderFunc{Code: code, Name: "main"},
		Topology:      driver.TTriangle,
		Samples:       1,
		Pass:          pass,
	}, nil)
	if err != nil {
		t.Fatalf("pso.NewGraphics: %v", err)
	}
	return p
}

func schemaWithCombinations(n int) material.PropertySet {
	s := make(material.PropertySet, n)
	for i := range s {
		s[i] = material.Property{
			ID:    material.PropertyID(i + 1),
			Usage: material.UsageShaderCombination,
			Value: material.Value{Kind: material.KindBool},
		}
	}
	return s
}

// TestBlueprintCombinationCapRejected is scenario S4: a blueprint
// with 5 SHADER_COMBINATION properties and
// AllowLargeCombinationSet == false fails with the
// InvalidPipelineState-family error naming the count and limit.
func TestBlueprintCombinationCapRejected(t *testing.T) {
	gpu := openGPU(t)
	rs := newRS(t, gpu)
	p := newPSO(t, gpu, rs)

	_, err := material.NewBlueprint(material.BlueprintDesc{
		AssetID:       1,
		Schema:        schemaWithCombinations(5),
		RootSignature: rs,
		PSOTemplate:   p,
	})
	var tooMany *material.ErrTooManyShaderCombinations
	if err == nil {
		t.Fatal("NewBlueprint with 5 combination properties should fail")
	}
	if !asErr(err, &tooMany) {
		t.Fatalf("NewBlueprint error: got %v, want *ErrTooManyShaderCombinations", err)
	}
	if tooMany.Count != 5 || tooMany.Limit != material.DefaultMaxShaderCombinations {
		t.Fatalf("error detail: got count=%d limit=%d, want count=5 limit=%d",
			tooMany.Count, tooMany.Limit, material.DefaultMaxShaderCombinations)
	}
}

func asErr(err error, target **material.ErrTooManyShaderCombinations) bool {
	if e, ok := err.(*material.ErrTooManyShaderCombinations); ok {
		*target = e
		return true
	}
	return false
}

func TestBlueprintCombinationCapOptOut(t *testing.T) {
	gpu := openGPU(t)
	rs := newRS(t, gpu)
	p := newPSO(t, gpu, rs)

	b, err := material.NewBlueprint(material.BlueprintDesc{
		AssetID:                  1,
		Schema:                   schemaWithCombinations(5),
		RootSignature:            rs,
		PSOTemplate:              p,
		AllowLargeCombinationSet: true,
		MaxCombinations:          8,
	})
	if err != nil {
		t.Fatalf("NewBlueprint with opt-in large combination set: %v", err)
	}
	if b.MaxCombinations() != 8 {
		t.Fatalf("MaxCombinations: got %d, want 8", b.MaxCombinations())
	}
}

func TestBlueprintSchemaSortedOnConstruction(t *testing.T) {
	gpu := openGPU(t)
	rs := newRS(t, gpu)
	p := newPSO(t, gpu, rs)

	schema := material.PropertySet{
		{ID: 30, Usage: material.UsageStatic, Value: material.Value{Kind: material.KindInt}},
		{ID: 10, Usage: material.UsageStatic, Value: material.Value{Kind: material.KindInt}},
	}
	b, err := material.NewBlueprint(material.BlueprintDesc{
		AssetID:       1,
		Schema:        schema,
		RootSignature: rs,
		PSOTemplate:   p,
	})
	if err != nil {
		t.Fatalf("NewBlueprint: %v", err)
	}
	if b.Schema[0].ID != 10 || b.Schema[1].ID != 30 {
		t.Fatalf("Blueprint.Schema not sorted: %+v", b.Schema)
	}
}

func TestBlueprintRejectsNilRootSignature(t *testing.T) {
	gpu := openGPU(t)
	rs := newRS(t, gpu)
	p := newPSO(t, gpu, rs)
	_, err := material.NewBlueprint(material.BlueprintDesc{AssetID: 1, PSOTemplate: p})
	if err == nil {
		t.Fatal("NewBlueprint with nil RootSignature should fail")
	}
}
