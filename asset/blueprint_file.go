// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package asset

import (
	"bytes"
	"fmt"
	"io"

	"github.com/lithosgfx/lithos/material"
)

// TagMaterialBlueprint is the on-disk tag for material blueprint
// files, "MBR1" per spec §8 scenario S3.
var TagMaterialBlueprint = NewTag("MBR1")

// BlueprintFileVersion is the version this package reads and
// writes.
const BlueprintFileVersion = 2

// BlueprintFileHeader mirrors spec §4.10's material-blueprint
// header section.
type BlueprintFileHeader struct {
	NumberOfProperties                           uint32
	NumberOfShaderCombinationProperties            uint32
	NumberOfIntegerShaderCombinationProperties     uint32
	NumberOfUniformBuffers                         uint32
	NumberOfTextureBuffers                         uint32
	NumberOfSamplerStates                          uint32
	NumberOfTextures                               uint32
}

// BlueprintFile is the fully decoded in-memory form of a
// material-blueprint asset file, prior to being turned into a
// material.Blueprint by resolving its root-signature and
// pipeline-state blocks against a live rootsig.RootSignature/
// pso.PipelineState created from them (that step needs a
// driver.GPU and so is not part of this package).
type BlueprintFile struct {
	Header     BlueprintFileHeader
	Properties material.PropertySet
	Importance material.ImportanceTable
	MaxInt     material.MaxIntTable

	// RootSignatureBlock and PipelineStateBlock carry the raw
	// section bytes for the root-signature and pipeline-state
	// blocks (spec §4.10). Their precise field layout is owned
	// by the rootsig/pso packages, not by the file format
	// itself; asset only frames them as length-prefixed
	// sections and hands the bytes on to whichever code
	// reconstructs a rootsig.Desc/pso.GraphicsDesc from them.
	RootSignatureBlock []byte
	PipelineStateBlock []byte

	UniformBuffers []material.UniformBufferDef
	TextureBuffers []material.TextureBufferDef
	Samplers       []material.SamplerStateDef
	Textures       []material.TextureBindingDef
}

// ReadBlueprintFile decodes a material-blueprint asset file.
func ReadBlueprintFile(r io.Reader) (*BlueprintFile, error) {
	h, err := ReadHeader(r, TagMaterialBlueprint)
	if err != nil {
		return nil, err
	}
	if h.Version != BlueprintFileVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrUnsupportedFormat, h.Version, BlueprintFileVersion)
	}

	var fh BlueprintFileHeader
	for _, f := range []*uint32{
		&fh.NumberOfProperties, &fh.NumberOfShaderCombinationProperties,
		&fh.NumberOfIntegerShaderCombinationProperties, &fh.NumberOfUniformBuffers,
		&fh.NumberOfTextureBuffers, &fh.NumberOfSamplerStates, &fh.NumberOfTextures,
	} {
		v, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		*f = v
	}

	bf := &BlueprintFile{Header: fh, Importance: make(material.ImportanceTable), MaxInt: make(material.MaxIntTable)}

	bf.Properties = make(material.PropertySet, fh.NumberOfProperties)
	for i := range bf.Properties {
		p, err := readProperty(r)
		if err != nil {
			return nil, err
		}
		bf.Properties[i] = p
	}
	bf.Properties.Sort()
	if err := bf.Properties.Validate(); err != nil {
		return nil, err
	}

	for i := uint32(0); i < fh.NumberOfShaderCombinationProperties; i++ {
		id, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		w, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		bf.Importance[material.PropertyID(id)] = int(int32(w))
	}
	for i := uint32(0); i < fh.NumberOfIntegerShaderCombinationProperties; i++ {
		id, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		m, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		bf.MaxInt[material.PropertyID(id)] = int32(m)
	}

	var err2 error
	if bf.RootSignatureBlock, err2 = readBytes(r); err2 != nil {
		return nil, err2
	}
	if bf.PipelineStateBlock, err2 = readBytes(r); err2 != nil {
		return nil, err2
	}

	bf.UniformBuffers = make([]material.UniformBufferDef, fh.NumberOfUniformBuffers)
	for i := range bf.UniformBuffers {
		d, err := readUBDef(r)
		if err != nil {
			return nil, err
		}
		bf.UniformBuffers[i] = d
	}
	bf.TextureBuffers = make([]material.TextureBufferDef, fh.NumberOfTextureBuffers)
	for i := range bf.TextureBuffers {
		d, err := readTBDef(r)
		if err != nil {
			return nil, err
		}
		bf.TextureBuffers[i] = d
	}

	bf.Samplers = make([]material.SamplerStateDef, fh.NumberOfSamplerStates)
	for i := range bf.Samplers {
		idx, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		bf.Samplers[i] = material.SamplerStateDef{RootParameterIndex: int(idx)}
	}

	bf.Textures = make([]material.TextureBindingDef, fh.NumberOfTextures)
	for i := range bf.Textures {
		idx, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		assetID, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		overrideID, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		bf.Textures[i] = material.TextureBindingDef{
			RootParameterIndex: int(idx),
			DefaultAssetID:     assetID,
			OverrideProperty:   material.PropertyID(overrideID),
		}
	}

	return bf, nil
}

func readUBDef(r io.Reader) (material.UniformBufferDef, error) {
	idx, err := readUint32(r)
	if err != nil {
		return material.UniformBufferDef{}, err
	}
	usage, err := readUint32(r)
	if err != nil {
		return material.UniformBufferDef{}, err
	}
	elemCount, err := readUint32(r)
	if err != nil {
		return material.UniformBufferDef{}, err
	}
	bytesPer, err := readUint32(r)
	if err != nil {
		return material.UniformBufferDef{}, err
	}
	n, err := readUint32(r)
	if err != nil {
		return material.UniformBufferDef{}, err
	}
	props := make([]material.PropertyID, n)
	for i := range props {
		id, err := readUint32(r)
		if err != nil {
			return material.UniformBufferDef{}, err
		}
		props[i] = material.PropertyID(id)
	}
	return material.UniformBufferDef{
		RootParameterIndex: int(idx),
		Usage:              material.UBUsage(usage),
		ElementCount:       int(elemCount),
		BytesPerElement:    int(bytesPer),
		Properties:         props,
	}, nil
}

func readTBDef(r io.Reader) (material.TextureBufferDef, error) {
	d, err := readUBDef(r)
	if err != nil {
		return material.TextureBufferDef{}, err
	}
	return material.TextureBufferDef(d), nil
}

func readProperty(r io.Reader) (material.Property, error) {
	id, err := readUint32(r)
	if err != nil {
		return material.Property{}, err
	}
	usage, err := readUint32(r)
	if err != nil {
		return material.Property{}, err
	}
	kind, err := readUint32(r)
	if err != nil {
		return material.Property{}, err
	}
	raw, err := readBytes(r)
	if err != nil {
		return material.Property{}, err
	}
	val, err := decodeValue(material.ValueKind(kind), raw)
	if err != nil {
		return material.Property{}, err
	}
	return material.Property{ID: material.PropertyID(id), Usage: material.Usage(usage), Value: val}, nil
}

// WriteBlueprintFile encodes bf to w in the layout
// ReadBlueprintFile expects.
func WriteBlueprintFile(w io.Writer, bf *BlueprintFile) error {
	if err := WriteHeader(w, Header{Tag: TagMaterialBlueprint, Version: BlueprintFileVersion}); err != nil {
		return err
	}
	props := append(material.PropertySet(nil), bf.Properties...)
	props.Sort()

	for _, v := range []uint32{
		uint32(len(props)), uint32(len(bf.Importance)), uint32(len(bf.MaxInt)),
		uint32(len(bf.UniformBuffers)), uint32(len(bf.TextureBuffers)),
		uint32(len(bf.Samplers)), uint32(len(bf.Textures)),
	} {
		if err := writeUint32(w, v); err != nil {
			return err
		}
	}

	for _, p := range props {
		if err := writeProperty(w, p); err != nil {
			return err
		}
	}
	for id, weight := range bf.Importance {
		if err := writeUint32(w, uint32(id)); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(int32(weight))); err != nil {
			return err
		}
	}
	for id, max := range bf.MaxInt {
		if err := writeUint32(w, uint32(id)); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(max)); err != nil {
			return err
		}
	}

	if err := writeBytes(w, bf.RootSignatureBlock); err != nil {
		return err
	}
	if err := writeBytes(w, bf.PipelineStateBlock); err != nil {
		return err
	}

	for _, d := range bf.UniformBuffers {
		if err := writeUBDef(w, d); err != nil {
			return err
		}
	}
	for _, d := range bf.TextureBuffers {
		if err := writeUBDef(w, material.UniformBufferDef(d)); err != nil {
			return err
		}
	}
	for _, d := range bf.Samplers {
		if err := writeUint32(w, uint32(d.RootParameterIndex)); err != nil {
			return err
		}
	}
	for _, d := range bf.Textures {
		if err := writeUint32(w, uint32(d.RootParameterIndex)); err != nil {
			return err
		}
		if err := writeUint32(w, d.DefaultAssetID); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(d.OverrideProperty)); err != nil {
			return err
		}
	}
	return nil
}

func writeUBDef(w io.Writer, d material.UniformBufferDef) error {
	for _, v := range []uint32{
		uint32(d.RootParameterIndex), uint32(d.Usage), uint32(d.ElementCount),
		uint32(d.BytesPerElement), uint32(len(d.Properties)),
	} {
		if err := writeUint32(w, v); err != nil {
			return err
		}
	}
	for _, id := range d.Properties {
		if err := writeUint32(w, uint32(id)); err != nil {
			return err
		}
	}
	return nil
}

func writeProperty(w io.Writer, p material.Property) error {
	if err := writeUint32(w, uint32(p.ID)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(p.Usage)); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(p.Value.Kind)); err != nil {
		return err
	}
	return writeBytes(w, encodeValue(p.Value))
}

// encodeValue/decodeValue serialize the active field of a
// material.Value as a little-endian byte slice, sized to
// exactly what that Kind needs (no padding), consistent with
// the "all arrays are length-prefixed" convention of spec §4.10.
func encodeValue(v material.Value) []byte {
	var buf bytes.Buffer
	put32 := func(x uint32) { var b [4]byte; byteOrder.PutUint32(b[:], x); buf.Write(b[:]) }
	switch v.Kind {
	case material.KindBool:
		if v.Bool {
			put32(1)
		} else {
			put32(0)
		}
	case material.KindInt:
		put32(uint32(v.Int))
	case material.KindFillMode, material.KindCullMode,
		material.KindConservativeRasterMode, material.KindDepthWriteMask,
		material.KindStencilOp, material.KindCmpFunc, material.KindBlendFactor,
		material.KindBlendOp, material.KindFilterMode, material.KindAddressMode:
		put32([...]uint32{
			uint32(v.FillMode), uint32(v.CullMode), uint32(v.ConservRaster),
			uint32(v.DepthWrite), uint32(v.StencilOp), uint32(v.CmpFunc),
			uint32(v.BlendFactor), uint32(v.BlendOp), uint32(v.FilterMode),
			uint32(v.AddressMode),
		}[v.Kind-material.KindFillMode])
	case material.KindInt2:
		put32(uint32(v.Int2[0]))
		put32(uint32(v.Int2[1]))
	case material.KindInt3:
		for _, x := range v.Int3 {
			put32(uint32(x))
		}
	case material.KindInt4:
		for _, x := range v.Int4 {
			put32(uint32(x))
		}
	case material.KindFloat:
		put32(float32bits(v.Float))
	case material.KindFloat2:
		for _, x := range v.Float2 {
			put32(float32bits(x))
		}
	case material.KindFloat3:
		for _, x := range v.Float3 {
			put32(float32bits(x))
		}
	case material.KindFloat4:
		for _, x := range v.Float4 {
			put32(float32bits(x))
		}
	case material.KindAssetID:
		put32(v.AssetID)
	}
	return buf.Bytes()
}

func decodeValue(kind material.ValueKind, raw []byte) (material.Value, error) {
	get32 := func(i int) uint32 {
		return byteOrder.Uint32(raw[i*4 : i*4+4])
	}
	v := material.Value{Kind: kind}
	switch kind {
	case material.KindBool:
		v.Bool = get32(0) != 0
	case material.KindInt:
		v.Int = int32(get32(0))
	case material.KindFillMode:
		v.FillMode = materialDriverFillMode(get32(0))
	case material.KindCullMode:
		v.CullMode = materialDriverCullMode(get32(0))
	case material.KindConservativeRasterMode:
		v.ConservRaster = material.ConservativeRasterMode(get32(0))
	case material.KindDepthWriteMask:
		v.DepthWrite = material.DepthWriteMask(get32(0))
	case material.KindStencilOp:
		v.StencilOp = materialDriverStencilOp(get32(0))
	case material.KindCmpFunc:
		v.CmpFunc = materialDriverCmpFunc(get32(0))
	case material.KindBlendFactor:
		v.BlendFactor = materialDriverBlendFac(get32(0))
	case material.KindBlendOp:
		v.BlendOp = materialDriverBlendOp(get32(0))
	case material.KindFilterMode:
		v.FilterMode = materialDriverFilter(get32(0))
	case material.KindAddressMode:
		v.AddressMode = materialDriverAddrMode(get32(0))
	case material.KindInt2:
		v.Int2 = [2]int32{int32(get32(0)), int32(get32(1))}
	case material.KindInt3:
		v.Int3 = [3]int32{int32(get32(0)), int32(get32(1)), int32(get32(2))}
	case material.KindInt4:
		v.Int4 = [4]int32{int32(get32(0)), int32(get32(1)), int32(get32(2)), int32(get32(3))}
	case material.KindFloat:
		v.Float = float32frombits(get32(0))
	case material.KindFloat2:
		v.Float2 = [2]float32{float32frombits(get32(0)), float32frombits(get32(1))}
	case material.KindFloat3:
		v.Float3 = [3]float32{float32frombits(get32(0)), float32frombits(get32(1)), float32frombits(get32(2))}
	case material.KindFloat4:
		v.Float4 = [4]float32{float32frombits(get32(0)), float32frombits(get32(1)), float32frombits(get32(2)), float32frombits(get32(3))}
	case material.KindAssetID:
		v.AssetID = get32(0)
	default:
		return material.Value{}, fmt.Errorf("asset: unrecognized ValueKind %d", kind)
	}
	return v, nil
}
