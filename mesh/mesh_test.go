// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package mesh_test

import (
	"testing"

	"github.com/lithosgfx/lithos/driver"
	"github.com/lithosgfx/lithos/mesh"
)

func TestByteSize(t *testing.T) {
	m := &mesh.Mesh{
		BytesPerVertex: 28,
		VertexCount:    3,
		VertexData:     make([]byte, 28*3),
		IndexData:      make([]byte, 6),
	}
	if got, want := m.ByteSize(), 28*3+6; got != want {
		t.Fatalf("ByteSize: got %d, want %d", got, want)
	}
}

func TestSubMeshFields(t *testing.T) {
	m := &mesh.Mesh{
		SubMeshes: []mesh.SubMesh{
			{MaterialAssetID: 5, PrimitiveTopology: driver.TTriangle, StartIndexLocation: 0, IndexCount: 3},
		},
	}
	if len(m.SubMeshes) != 1 {
		t.Fatalf("SubMeshes: got %d entries, want 1", len(m.SubMeshes))
	}
	if m.SubMeshes[0].IndexCount != 3 {
		t.Fatalf("SubMeshes[0].IndexCount: got %d, want 3", m.SubMeshes[0].IndexCount)
	}
}
