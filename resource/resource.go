// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package resource defines the base type embedded by every
// GPU-owned object in the module: a reference-counted handle
// tagged with its resource kind and the identity of the
// renderer that created it.
//
// It mirrors the teacher's driver.Destroyer convention (an
// explicit Destroy, since the GPU memory a handle may wrap is
// not managed by the garbage collector) and generalizes the
// owner-identity check that engine/init.go performs by pointer
// comparison when selecting a driver.
package resource

import (
	"errors"
	"log"

	"github.com/lithosgfx/lithos/stats"
)

// Kind tags the type of GPU object a Resource wraps.
type Kind int

// Resource kinds, per spec §3.
const (
	KindRootSignature Kind = iota
	KindProgram
	KindVertexArray
	KindSwapChain
	KindFramebuffer
	KindIndexBuffer
	KindVertexBuffer
	KindUniformBuffer
	KindTextureBuffer
	KindIndirectBuffer
	KindTexture2D
	KindTexture2DArray
	KindPipelineState
	KindSamplerState
	KindVertexShader
	KindTessControlShader
	KindTessEvalShader
	KindGeometryShader
	KindFragmentShader

	NumKinds int = iota
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindRootSignature:
		return "RootSignature"
	case KindProgram:
		return "Program"
	case KindVertexArray:
		return "VertexArray"
	case KindSwapChain:
		return "SwapChain"
	case KindFramebuffer:
		return "Framebuffer"
	case KindIndexBuffer:
		return "IndexBuffer"
	case KindVertexBuffer:
		return "VertexBuffer"
	case KindUniformBuffer:
		return "UniformBuffer"
	case KindTextureBuffer:
		return "TextureBuffer"
	case KindIndirectBuffer:
		return "IndirectBuffer"
	case KindTexture2D:
		return "Texture2D"
	case KindTexture2DArray:
		return "Texture2DArray"
	case KindPipelineState:
		return "PipelineState"
	case KindSamplerState:
		return "SamplerState"
	case KindVertexShader:
		return "VertexShader"
	case KindTessControlShader:
		return "TessControlShader"
	case KindTessEvalShader:
		return "TessEvalShader"
	case KindGeometryShader:
		return "GeometryShader"
	case KindFragmentShader:
		return "FragmentShader"
	default:
		return "!resource.Kind"
	}
}

// ErrOwnerMismatch is returned (and, at bind/draw call sites,
// logged and swallowed per spec §7) when a Resource is used
// by a renderer other than the one that created it.
var ErrOwnerMismatch = errors.New("resource: owner mismatch")

// OwnerID identifies the renderer that created a Resource.
// It is a cheap, comparable token (in practice the address of
// the owning renderer's state, reinterpreted as a uintptr) so
// that the owner check spec §4.1 asks for is a pointer compare,
// not a lookup.
type OwnerID uintptr

// NoOwner is the zero OwnerID; no Resource is ever created
// with this value.
const NoOwner OwnerID = 0

// Destroyer is the interface wrapping the Destroy method that
// every concrete backend object (driver.Buffer, driver.Image,
// ...) implements. A Handle's underlying driver object is
// released through this interface when the retain count
// reaches zero.
type Destroyer interface {
	Destroy()
}

// Handle is the base of every GPU-owned object: it is embedded
// by the concrete wrapper types in rootsig, pso, and the
// buffer/texture packages.
type Handle struct {
	kind      Kind
	owner     OwnerID
	retain    int
	debugName string
	reg       *stats.Registry
	slot       int
	underlying Destroyer
}

// New creates a Handle wrapping underlying, owned by owner,
// with an initial retain count of 1. reg may be nil, in which
// case no statistics are kept for this Handle.
//
// The Handle is registered into reg via Track rather than Inc,
// so a non-nil Registry can report exactly which live
// resources are outstanding at shutdown (stats.Registry.
// LiveInstances), not merely a per-kind count.
func New(kind Kind, owner OwnerID, underlying Destroyer, reg *stats.Registry) *Handle {
	if owner == NoOwner {
		panic("resource: New called with NoOwner")
	}
	h := &Handle{
		kind:       kind,
		owner:      owner,
		retain:     1,
		reg:        reg,
		underlying: underlying,
	}
	h.slot = reg.Track(stats.Kind(kind), kind.String(), h)
	return h
}

// Kind returns the resource's immutable type tag.
func (h *Handle) Kind() Kind { return h.kind }

// Owner returns the identity of the renderer that created h.
func (h *Handle) Owner() OwnerID { return h.owner }

// Retain increments the reference count.
// It must be balanced by a corresponding Release (Testable
// Property 1).
func (h *Handle) Retain() {
	if h.retain < 1 {
		panic("resource: Retain called on a destroyed Handle")
	}
	h.retain++
}

// Release decrements the reference count. When it reaches
// zero, the underlying object is destroyed and, if a Registry
// is set, the live count for this kind is decremented.
// It reports whether this call destroyed the resource.
func (h *Handle) Release() bool {
	if h.retain < 1 {
		panic("resource: Release called on a destroyed Handle")
	}
	h.retain--
	if h.retain > 0 {
		return false
	}
	h.underlying.Destroy()
	h.reg.Untrack(stats.Kind(h.kind), h.slot)
	return true
}

// RetainCount returns the current reference count. It is
// exposed mainly for tests; production code should not need
// to inspect it.
func (h *Handle) RetainCount() int { return h.retain }

// SetDebugName attaches a diagnostic name to the resource.
func (h *Handle) SetDebugName(name string) { h.debugName = name }

// DebugName returns the name set by SetDebugName, or the
// empty string if none was set.
func (h *Handle) DebugName() string { return h.debugName }

// InternalHandle returns the backend-opaque object that this
// Handle wraps, for interop with sibling native APIs (spec
// §6). Callers must not call Destroy on the returned value;
// lifetime remains owned by this Handle.
func (h *Handle) InternalHandle() any { return h.underlying }

// CheckOwner verifies that current matches h's owner. On
// mismatch it logs a diagnostic and returns ErrOwnerMismatch;
// callers must treat this as a no-op for the attempted
// operation (spec §7: OwnerMismatch is never fatal).
func (h *Handle) CheckOwner(current OwnerID) error {
	if h.owner != current {
		log.Printf("resource: owner mismatch on %s %q: owned by %v, used by %v",
			h.kind, h.debugName, h.owner, current)
		return ErrOwnerMismatch
	}
	return nil
}
