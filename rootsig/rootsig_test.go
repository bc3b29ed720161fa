// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package rootsig_test

import (
	"testing"

	"github.com/lithosgfx/lithos/driver"
	_ "github.com/lithosgfx/lithos/driver/soft"
	"github.com/lithosgfx/lithos/resource"
	"github.com/lithosgfx/lithos/rootsig"
)

func openGPU(t *testing.T) driver.GPU {
	t.Helper()
	drivers := driver.Drivers()
	for _, d := range drivers {
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

func simpleDesc() rootsig.Desc {
	return rootsig.Desc{
		Parameters: []rootsig.RootParameter{
			{
				Type:       rootsig.ParamDescriptorTable,
				Visibility: rootsig.VisFragment,
				Ranges: []rootsig.DescriptorRange{
					{RangeType: rootsig.RangeCBV, NumberOfDescriptors: 1, BaseShaderRegisterName: "PerFrame", SamplerRootParameterIndex: -1},
				},
			},
			{
				Type:       rootsig.ParamDescriptorTable,
				Visibility: rootsig.VisFragment,
				Ranges: []rootsig.DescriptorRange{
					{RangeType: rootsig.RangeSRV, NumberOfDescriptors: 4, BaseShaderRegisterName: "Textures", SamplerRootParameterIndex: 2},
				},
			},
			{
				Type:       rootsig.ParamDescriptorTable,
				Visibility: rootsig.VisFragment,
				Ranges: []rootsig.DescriptorRange{
					{RangeType: rootsig.RangeSampler, NumberOfDescriptors: 4, BaseShaderRegisterName: "Samplers", SamplerRootParameterIndex: -1},
				},
			},
		},
	}
}

func TestNewAndAccessors(t *testing.T) {
	gpu := openGPU(t)
	rs, err := rootsig.New(resource.OwnerID(1), gpu, simpleDesc(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if rs.NumParameters() != 3 {
		t.Fatalf("NumParameters: got %d, want 3", rs.NumParameters())
	}
	if _, ok := rs.Heap(0); !ok {
		t.Fatal("Heap(0) not found")
	}
	if _, ok := rs.Heap(3); ok {
		t.Fatal("Heap(3) should be out of range")
	}
	p, ok := rs.Parameter(1)
	if !ok || p.Ranges[0].NumberOfDescriptors != 4 {
		t.Fatalf("Parameter(1): got %+v, ok=%v", p, ok)
	}
	if rs.Table() == nil {
		t.Fatal("Table returned nil")
	}
	if rs.RetainCount() != 1 {
		t.Fatalf("RetainCount: got %d, want 1", rs.RetainCount())
	}
	rs.Release()
}

func TestValidateRejectsBadSamplerIndex(t *testing.T) {
	desc := rootsig.Desc{
		Parameters: []rootsig.RootParameter{
			{
				Type: rootsig.ParamDescriptorTable,
				Ranges: []rootsig.DescriptorRange{
					{RangeType: rootsig.RangeSRV, NumberOfDescriptors: 1, SamplerRootParameterIndex: 99},
				},
			},
		},
	}
	if err := desc.Validate(); err == nil {
		t.Fatal("Validate did not reject out-of-bounds SamplerRootParameterIndex")
	}
}

func TestValidateRejectsLongRegisterName(t *testing.T) {
	desc := rootsig.Desc{
		Parameters: []rootsig.RootParameter{
			{
				Type: rootsig.ParamDescriptorTable,
				Ranges: []rootsig.DescriptorRange{
					{
						RangeType:                 rootsig.RangeCBV,
						NumberOfDescriptors:        1,
						SamplerRootParameterIndex:  -1,
						BaseShaderRegisterName:     "ThisNameIsDefinitelyLongerThanThirtyTwoBytes",
					},
				},
			},
		},
	}
	if err := desc.Validate(); err == nil {
		t.Fatal("Validate did not reject an over-length BaseShaderRegisterName")
	}
}

func TestNewDeepCopiesDesc(t *testing.T) {
	gpu := openGPU(t)
	desc := simpleDesc()
	rs, err := rootsig.New(resource.OwnerID(1), gpu, desc, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	desc.Parameters[0].Ranges[0].NumberOfDescriptors = 999
	p, _ := rs.Parameter(0)
	if p.Ranges[0].NumberOfDescriptors == 999 {
		t.Fatal("RootSignature aliased the caller's Desc instead of copying it")
	}
	rs.Release()
}
