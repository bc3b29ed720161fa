// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package mesh implements the runtime Mesh representation of
// spec §3: a packed vertex/index buffer pair plus a sub-mesh
// list, each sub-mesh naming the material asset and index range
// it draws with.
//
// It generalizes the teacher's engine.Mesh (engine/mesh.go),
// which couples a mesh strictly to a single shared GPU storage
// buffer (engine/storage.go's meshBuffer) and a fixed semantic
// set; mesh.Mesh instead separates the on-disk/in-memory
// description (this file) from GPU residency, which the
// texture/buffer-owning caller arranges once the mesh is loaded
// (spec's BT component), leaving the same vertex-attribute
// layout idea the teacher's Semantic bitmask expresses.
package mesh

import "github.com/lithosgfx/lithos/driver"

// VertexAttribute describes one interleaved vertex attribute
// within the packed vertex buffer (spec §3:
// "vertex-attribute layout").
type VertexAttribute struct {
	Name       string
	Format     driver.VertexFmt
	ByteOffset int
}

// SubMesh is one drawable range within a Mesh's index buffer
// (spec §3).
type SubMesh struct {
	MaterialAssetID     uint32
	PrimitiveTopology    driver.Topology
	StartIndexLocation   int
	IndexCount           int
}

// Mesh is the runtime representation of a loaded mesh asset
// (spec §3).
type Mesh struct {
	BytesPerVertex int
	VertexCount    int
	IndexFormat    driver.IndexFmt
	IndexCount     int
	Attributes     []VertexAttribute
	SubMeshes      []SubMesh

	VertexData []byte
	IndexData  []byte
}

// ByteSize returns the combined size, in bytes, of the packed
// vertex and index buffers.
func (m *Mesh) ByteSize() int {
	return len(m.VertexData) + len(m.IndexData)
}
