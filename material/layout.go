// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package material

import (
	"unsafe"

	"github.com/lithosgfx/lithos/linear"
)

// Data as presented to shader programs.
//
// PassLayout and InstanceLayout are the fixed uniform-buffer
// layouts that back a blueprint's UBPass and UBInstance
// UniformBufferDef entries (spec §3/§4.7): every shader
// combination a blueprint compiles agrees on these two layouts,
// so the runtime can fill and upload them once per frame and
// once per drawable respectively, independent of which
// material properties a given draw happens to set.
//
// Use the Set* methods to update a layout's data in place, then
// Bytes to get the slice a cmdstream.CommandBuffer.
// CopyUniformBufferData call needs.

func copyM4(dst []float32, m *linear.M4) {
	copy(dst, unsafe.Slice((*float32)(unsafe.Pointer(m)), 16))
}

func copyM3(dst []float32, m *linear.M3) {
	copy(dst, unsafe.Slice((*float32)(unsafe.Pointer(m)), 9))
}

// PassLayout is the layout of per-pass, global data (UBPass).
// It is defined as follows:
//
//	[0:16]  | view matrix
//	[16:32] | projection matrix
type PassLayout [32]float32

// SetView sets the view matrix.
func (l *PassLayout) SetView(m *linear.M4) { copyM4(l[0:16], m) }

// SetProjection sets the projection matrix.
func (l *PassLayout) SetProjection(m *linear.M4) { copyM4(l[16:32], m) }

// Bytes returns l's contents as the byte slice a
// CopyUniformBufferData call uploads verbatim.
func (l *PassLayout) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(l)), len(l)*4)
}

// InstanceLayout is the layout of per-drawable data
// (UBInstance). It is defined as follows:
//
//	[0:16]  | world matrix
//	[16:25] | normal matrix (3x3, row-major)
//	[25]    | drawable ID
//	[26:28] | (unused)
type InstanceLayout [28]float32

// SetWorld sets the world matrix.
func (l *InstanceLayout) SetWorld(m *linear.M4) { copyM4(l[0:16], m) }

// SetNormal sets the normal matrix.
func (l *InstanceLayout) SetNormal(m *linear.M3) { copyM3(l[16:25], m) }

// SetID sets the drawable's ID.
func (l *InstanceLayout) SetID(id uint32) { l[25] = *(*float32)(unsafe.Pointer(&id)) }

// Bytes returns l's contents as the byte slice a
// CopyUniformBufferData call uploads verbatim.
func (l *InstanceLayout) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(l)), len(l)*4)
}
