// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package asset

import (
	"fmt"
	"io"

	"github.com/lithosgfx/lithos/driver"
	"github.com/lithosgfx/lithos/mesh"
)

// TagMesh is the on-disk tag for mesh asset files, "MSH1" per
// spec §8 scenario S6.
var TagMesh = NewTag("MSH1")

// MeshFileVersion is the version this package reads and writes.
const MeshFileVersion = 1

// MeshFileHeader mirrors spec §4.10's mesh header section.
type MeshFileHeader struct {
	BytesPerVertex    uint32
	VertexCount       uint32
	IndexFormat       uint32
	IndexCount        uint32
	VertexAttribCount uint32
	SubMeshCount      uint32
}

// ReadMeshFile decodes a mesh asset file into a runtime
// mesh.Mesh.
func ReadMeshFile(r io.Reader) (*mesh.Mesh, error) {
	h, err := ReadHeader(r, TagMesh)
	if err != nil {
		return nil, err
	}
	if h.Version != MeshFileVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrUnsupportedFormat, h.Version, MeshFileVersion)
	}

	var fh MeshFileHeader
	for _, f := range []*uint32{
		&fh.BytesPerVertex, &fh.VertexCount, &fh.IndexFormat, &fh.IndexCount,
		&fh.VertexAttribCount, &fh.SubMeshCount,
	} {
		v, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		*f = v
	}

	vertexData, err := readBytes(r)
	if err != nil {
		return nil, err
	}
	if uint32(len(vertexData)) != fh.BytesPerVertex*fh.VertexCount {
		return nil, fmt.Errorf("asset: mesh vertex data size %d does not match bytesPerVertex*vertexCount (%d*%d)",
			len(vertexData), fh.BytesPerVertex, fh.VertexCount)
	}
	indexData, err := readBytes(r)
	if err != nil {
		return nil, err
	}

	attrs := make([]mesh.VertexAttribute, fh.VertexAttribCount)
	for i := range attrs {
		nameBytes, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		format, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		off, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		attrs[i] = mesh.VertexAttribute{
			Name:       string(nameBytes),
			Format:     driver.VertexFmt(format),
			ByteOffset: int(off),
		}
	}

	subs := make([]mesh.SubMesh, fh.SubMeshCount)
	for i := range subs {
		matID, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		topo, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		start, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		count, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		subs[i] = mesh.SubMesh{
			MaterialAssetID:   matID,
			PrimitiveTopology: driver.Topology(topo),
			StartIndexLocation: int(start),
			IndexCount:         int(count),
		}
	}

	return &mesh.Mesh{
		BytesPerVertex: int(fh.BytesPerVertex),
		VertexCount:    int(fh.VertexCount),
		IndexFormat:    driver.IndexFmt(fh.IndexFormat),
		IndexCount:     int(fh.IndexCount),
		Attributes:     attrs,
		SubMeshes:      subs,
		VertexData:     vertexData,
		IndexData:      indexData,
	}, nil
}

// WriteMeshFile encodes m to w in the layout ReadMeshFile
// expects.
func WriteMeshFile(w io.Writer, m *mesh.Mesh) error {
	if err := WriteHeader(w, Header{Tag: TagMesh, Version: MeshFileVersion}); err != nil {
		return err
	}
	for _, v := range []uint32{
		uint32(m.BytesPerVertex), uint32(m.VertexCount), uint32(m.IndexFormat), uint32(m.IndexCount),
		uint32(len(m.Attributes)), uint32(len(m.SubMeshes)),
	} {
		if err := writeUint32(w, v); err != nil {
			return err
		}
	}
	if err := writeBytes(w, m.VertexData); err != nil {
		return err
	}
	if err := writeBytes(w, m.IndexData); err != nil {
		return err
	}
	for _, a := range m.Attributes {
		if err := writeBytes(w, []byte(a.Name)); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(a.Format)); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(a.ByteOffset)); err != nil {
			return err
		}
	}
	for _, s := range m.SubMeshes {
		for _, v := range []uint32{
			s.MaterialAssetID, uint32(s.PrimitiveTopology), uint32(s.StartIndexLocation), uint32(s.IndexCount),
		} {
			if err := writeUint32(w, v); err != nil {
				return err
			}
		}
	}
	return nil
}
