// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package buffer implements the buffer half of the Buffer &
// Texture Objects (BT) component of spec §3/§4.4:
// IndexBuffer, VertexBuffer, UniformBuffer, TextureBuffer and
// IndirectBuffer, all sharing the same resource.Handle-based
// lifecycle and the map/unmap protocol spec §4.4 requires.
//
// Every buffer kind wraps a driver.Buffer (kept from the
// teacher's driver package) the same way the teacher's own
// engine package never introduced a redundant CPU-side buffer
// abstraction: driver.Buffer.Bytes already hands back the
// host-visible slice when one exists, so Map only needs to
// track the single-outstanding-map invariant spec §4.4 names,
// not reimplement memory access itself.
package buffer

import (
	"errors"

	"github.com/lithosgfx/lithos/driver"
	"github.com/lithosgfx/lithos/resource"
	"github.com/lithosgfx/lithos/stats"
)

const prefix = "buffer: "

func newErr(reason string) error { return errors.New(prefix + reason) }

// ErrAlreadyMapped is returned by Map when a buffer already has
// an outstanding, unmatched Map call.
var ErrAlreadyMapped = newErr("buffer already mapped")

// ErrNotMapped is returned by Unmap when there is no
// outstanding Map call to balance.
var ErrNotMapped = newErr("buffer is not mapped")

// MapType selects the access pattern of a Map call (spec §4.4).
type MapType int

// Map types.
const (
	MapRead MapType = iota
	MapWrite
	MapReadWrite
	MapWriteDiscard
	MapWriteNoOverwrite
)

// MappedSubresource is the result of a successful Map call
// (spec §4.4). If Map fails, Data is nil; callers must check
// before dereferencing (spec §7: MapFailed).
type MappedSubresource struct {
	Data       []byte
	RowPitch   int64
	DepthPitch int64
}

// Usage mirrors the D3D-style STATIC_DRAW/DYNAMIC_DRAW/
// STREAM_DRAW convention named in spec §3 for buffer creation
// hints; it does not change driver.Usage, which already
// expresses read/write capability, but records the update
// frequency hint a loader or renderer may want to act on.
type Usage int

// Usage hints.
const (
	UsageStaticDraw Usage = iota
	UsageDynamicDraw
	UsageStreamDraw
)

// base is embedded by every concrete buffer kind below; it
// owns the resource.Handle and map-state bookkeeping common to
// all of them.
type base struct {
	*resource.Handle
	buf    driver.Buffer
	usage  Usage
	mapped bool
}

func newBase(owner resource.OwnerID, kind resource.Kind, buf driver.Buffer, usage Usage, reg *stats.Registry) base {
	return base{
		Handle: resource.New(kind, owner, buf, reg),
		buf:    buf,
		usage:  usage,
	}
}

// Map begins a CPU access window over the buffer's full
// extent. It must be followed by exactly one Unmap call (spec
// §4.4). WRITE_DISCARD conceptually orphans the backing store
// so the caller never observes data the GPU might still be
// reading; since this software-visible model does not alias
// the same bytes across in-flight frames, Map simply hands back
// the live slice and relies on the caller's frame-ring
// discipline to avoid the race spec's backend note describes
// for persistent-mapping backends.
func (b *base) Map(mapType MapType) (MappedSubresource, error) {
	if b.mapped {
		return MappedSubresource{}, ErrAlreadyMapped
	}
	data := b.buf.Bytes()
	if data == nil {
		return MappedSubresource{}, nil // MapFailed: Data is nil
	}
	b.mapped = true
	return MappedSubresource{Data: data, RowPitch: int64(len(data)), DepthPitch: int64(len(data))}, nil
}

// Unmap ends a Map window.
func (b *base) Unmap() error {
	if !b.mapped {
		return ErrNotMapped
	}
	b.mapped = false
	return nil
}

// InternalBuffer returns the underlying driver.Buffer, for
// backend code that must bind it directly.
func (b *base) InternalBuffer() driver.Buffer { return b.buf }

// IndexFmt is the element format of an IndexBuffer (spec §3:
// U16/U32).
type IndexFmt int

// Index formats.
const (
	IndexU16 IndexFmt = iota
	IndexU32
)

// IndexBuffer holds index data for indexed draws.
type IndexBuffer struct {
	base
	Format IndexFmt
}

// NewIndexBuffer creates an IndexBuffer backed by buf.
func NewIndexBuffer(owner resource.OwnerID, buf driver.Buffer, format IndexFmt, usage Usage, reg *stats.Registry) *IndexBuffer {
	return &IndexBuffer{base: newBase(owner, resource.KindIndexBuffer, buf, usage, reg), Format: format}
}

// VertexBuffer holds per-vertex attribute data.
type VertexBuffer struct{ base }

// NewVertexBuffer creates a VertexBuffer backed by buf.
func NewVertexBuffer(owner resource.OwnerID, buf driver.Buffer, usage Usage, reg *stats.Registry) *VertexBuffer {
	return &VertexBuffer{base: newBase(owner, resource.KindVertexBuffer, buf, usage, reg)}
}

// UniformBuffer holds shader constant data (spec §3).
type UniformBuffer struct{ base }

// NewUniformBuffer creates a UniformBuffer backed by buf.
func NewUniformBuffer(owner resource.OwnerID, buf driver.Buffer, usage Usage, reg *stats.Registry) *UniformBuffer {
	return &UniformBuffer{base: newBase(owner, resource.KindUniformBuffer, buf, usage, reg)}
}

// TextureBuffer holds texel data addressed like a 1D texture
// but bound like a buffer (spec §3).
type TextureBuffer struct{ base }

// NewTextureBuffer creates a TextureBuffer backed by buf.
func NewTextureBuffer(owner resource.OwnerID, buf driver.Buffer, usage Usage, reg *stats.Registry) *TextureBuffer {
	return &TextureBuffer{base: newBase(owner, resource.KindTextureBuffer, buf, usage, reg)}
}

// DrawInstancedArguments is one emulated indirect-draw argument
// record (spec §3).
type DrawInstancedArguments struct {
	VertexCountPerInstance uint32
	InstanceCount          uint32
	StartVertexLocation    uint32
	StartInstanceLocation  uint32
}

// DrawIndexedInstancedArguments is the indexed counterpart of
// DrawInstancedArguments.
type DrawIndexedInstancedArguments struct {
	IndexCountPerInstance uint32
	InstanceCount         uint32
	StartIndexLocation    uint32
	BaseVertexLocation    int32
	StartInstanceLocation uint32
}

// IndirectBuffer holds argument records for indirect draws, or,
// when the backend cannot execute indirect draws natively,
// "emulation data": a CPU-side array the runtime walks, issuing
// one ordinary draw per entry (spec §3/§4.7 "Draw emulation").
type IndirectBuffer struct {
	base
	Indexed        bool
	EmulationData  []DrawInstancedArguments
	EmulationDataI []DrawIndexedInstancedArguments
}

// NewIndirectBuffer creates an IndirectBuffer backed by buf.
func NewIndirectBuffer(owner resource.OwnerID, buf driver.Buffer, usage Usage, reg *stats.Registry) *IndirectBuffer {
	return &IndirectBuffer{base: newBase(owner, resource.KindIndirectBuffer, buf, usage, reg)}
}

// EmulateDraws returns the sequence of ordinary Draw argument
// tuples (vertCount, instCount, baseVert, baseInst) to issue in
// place of a single indirect draw call, asserting the
// StartInstanceLocation == 0 constraint spec §4.7 requires of
// the emulation path.
func (b *IndirectBuffer) EmulateDraws() ([][4]int, error) {
	out := make([][4]int, 0, len(b.EmulationData))
	for _, a := range b.EmulationData {
		if a.StartInstanceLocation != 0 {
			return nil, newErr("EmulateDraws: StartInstanceLocation must be zero")
		}
		out = append(out, [4]int{int(a.VertexCountPerInstance), int(a.InstanceCount), int(a.StartVertexLocation), 0})
	}
	return out, nil
}

// EmulateDrawsIndexed is the indexed counterpart of
// EmulateDraws.
func (b *IndirectBuffer) EmulateDrawsIndexed() ([][5]int, error) {
	out := make([][5]int, 0, len(b.EmulationDataI))
	for _, a := range b.EmulationDataI {
		if a.StartInstanceLocation != 0 {
			return nil, newErr("EmulateDrawsIndexed: StartInstanceLocation must be zero")
		}
		out = append(out, [5]int{int(a.IndexCountPerInstance), int(a.InstanceCount), int(a.StartIndexLocation), int(a.BaseVertexLocation), 0})
	}
	return out, nil
}
