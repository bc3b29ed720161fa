// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package cmdstream implements the deferred Command Buffer
// (CB) and Backend Dispatch (BD) components of spec §3/§4.5/
// §4.6: an append-only, single-writer arena of variant-tagged
// command packets, later replayed through a per-variant
// dispatch table into concrete driver.CmdBuffer calls.
//
// The packet header (dispatch-variant index plus the byte
// offset of the next packet) is laid out in a real growable
// byte arena with encoding/binary, the same technique the
// teacher uses to pack float32 uniform layouts in
// engine/internal/shader/layout.go. The payload and any
// variable-length auxiliary data (e.g. a viewport array) are
// kept in a parallel Go-typed slice rather than raw bytes,
// since the payloads carry pointers/interfaces (driver.Buffer,
// resource handles) that a byte union could not hold safely
// without unsafe games the teacher itself never plays outside
// of plain numeric data.
package cmdstream

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/lithosgfx/lithos/driver"
	"github.com/lithosgfx/lithos/rootsig"
)

const prefix = "cmdstream: "

func newErr(reason string) error { return errors.New(prefix + reason) }

// Variant tags one command packet. The set is closed (spec
// §3): any addition here requires adding one entry to every
// registered DispatchTable.
type Variant int32

// Command variants.
const (
	VarCopyUniformBufferData Variant = iota
	VarCopyTextureBufferData
	VarBarrier
	VarTransition
	VarSetGraphicsRootSignature
	VarSetGraphicsRootDescriptorTable
	VarSetPipelineState
	VarSetVertexArray
	VarSetPrimitiveTopology
	VarSetViewports
	VarSetScissorRectangles
	VarSetRenderTarget
	VarClear
	VarResolveMultisampleFramebuffer
	VarCopyResource
	VarDraw
	VarDrawIndexed
	VarSetDebugMarker
	VarBeginDebugEvent
	VarEndDebugEvent

	// NumVariants is the size of the closed command-variant
	// set, and thus the required length of a DispatchTable.
	NumVariants = int(iota)
)

// sentinel marks the next-packet offset of the last packet in
// the chain; an all-ones 32-bit value, as spec §3 requires.
const sentinel uint32 = 0xffffffff

const headerSize = 8 // 4 bytes variant + 4 bytes next-offset

// Packet is one recorded command: its variant tag plus a
// typed payload. Payload holds exactly the fields that the
// packet's Variant defines; other fields are left zero.
type Packet struct {
	Variant Variant
	Payload Payload
}

// Payload is the union of every command variant's argument
// set. Only the fields relevant to Packet.Variant are
// meaningful.
type Payload struct {
	Buffer      driver.Buffer
	BufferOff   int64
	Data        []byte
	RootSig     *rootsig.RootSignature
	TableIndex  int
	Barriers    []driver.Barrier
	Transitions []driver.Transition
	Pipeline    driver.Pipeline
	VertexBufs  []driver.Buffer
	VertexOffs  []int64
	IndexBuf    driver.Buffer
	IndexFmt    driver.IndexFmt
	Topology    driver.Topology
	Viewports   []driver.Viewport
	Scissors    []driver.Scissor
	Framebuf    driver.Framebuf
	RenderPass  driver.RenderPass
	Clear       []driver.ClearValue
	Src, Dst    any
	VertCount   int
	InstCount   int
	BaseVert    int
	BaseIdx     int
	BaseInst    int
	IdxCount    int
	Name        string
}

// CommandBuffer is an append-only, single-writer stream of
// command packets (spec §3/§4.5). It is not safe for
// concurrent recording; the single-threaded submission model
// of spec §5 means no synchronization is needed.
type CommandBuffer struct {
	hdr     []byte // packet headers, headerSize bytes each
	packets []Packet
	head    uint32
	tail    uint32
	open    bool
}

// New creates an empty CommandBuffer.
func New() *CommandBuffer {
	cb := &CommandBuffer{}
	cb.reset()
	return cb
}

func (cb *CommandBuffer) reset() {
	cb.hdr = make([]byte, 0, 4096)
	cb.packets = cb.packets[:0]
	cb.head = sentinel
	cb.tail = sentinel
}

// Begin clears the arena for a new recording. Any packets from
// a previous recording are discarded.
func (cb *CommandBuffer) Begin() {
	cb.reset()
	cb.open = true
}

// End closes the recording. Calling an append method after End
// without an intervening Begin panics.
func (cb *CommandBuffer) End() { cb.open = false }

// grow ensures the header arena has room for one more packet,
// doubling capacity (minimum 4KiB) when it does not, per the
// geometric growth policy of spec §4.5.
func (cb *CommandBuffer) grow() {
	need := len(cb.hdr) + headerSize
	if need <= cap(cb.hdr) {
		return
	}
	newCap := cap(cb.hdr) * 2
	if newCap < 4096 {
		newCap = 4096
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]byte, len(cb.hdr), newCap)
	copy(grown, cb.hdr)
	cb.hdr = grown
}

// append links a new packet of the given variant/payload at
// the tail of the chain and returns its index.
func (cb *CommandBuffer) append(v Variant, p Payload) int {
	if !cb.open {
		panic("cmdstream: append called outside Begin/End")
	}
	cb.grow()
	off := uint32(len(cb.hdr))
	var h [headerSize]byte
	binary.LittleEndian.PutUint32(h[0:4], uint32(v))
	binary.LittleEndian.PutUint32(h[4:8], sentinel)
	cb.hdr = append(cb.hdr, h[:]...)
	idx := len(cb.packets)
	cb.packets = append(cb.packets, Packet{Variant: v, Payload: p})

	if cb.head == sentinel {
		cb.head = off
	} else {
		binary.LittleEndian.PutUint32(cb.hdr[cb.tail+4:cb.tail+8], off)
	}
	cb.tail = off
	return idx
}

// Len returns the number of recorded packets.
func (cb *CommandBuffer) Len() int { return len(cb.packets) }

// CopyUniformBufferData appends a VarCopyUniformBufferData packet.
func (cb *CommandBuffer) CopyUniformBufferData(buf driver.Buffer, off int64, data []byte) {
	cb.append(VarCopyUniformBufferData, Payload{Buffer: buf, BufferOff: off, Data: data})
}

// CopyTextureBufferData appends a VarCopyTextureBufferData packet.
func (cb *CommandBuffer) CopyTextureBufferData(buf driver.Buffer, off int64, data []byte) {
	cb.append(VarCopyTextureBufferData, Payload{Buffer: buf, BufferOff: off, Data: data})
}

// Barrier appends a VarBarrier packet recording a batch of
// synchronization barriers (spec §4.6: the runtime leaves
// cross-pass hazard tracking to the caller rather than
// inferring it from resource usage).
func (cb *CommandBuffer) Barrier(b []driver.Barrier) {
	cb.append(VarBarrier, Payload{Barriers: append([]driver.Barrier(nil), b...)})
}

// Transition appends a VarTransition packet recording a batch
// of image layout transitions.
func (cb *CommandBuffer) Transition(t []driver.Transition) {
	cb.append(VarTransition, Payload{Transitions: append([]driver.Transition(nil), t...)})
}

// SetGraphicsRootSignature appends a VarSetGraphicsRootSignature packet.
func (cb *CommandBuffer) SetGraphicsRootSignature(rs *rootsig.RootSignature) {
	cb.append(VarSetGraphicsRootSignature, Payload{RootSig: rs})
}

// SetGraphicsRootDescriptorTable appends a
// VarSetGraphicsRootDescriptorTable packet binding resource
// into rs's heap at rootParameterIndex and then binding rs's
// whole table, per the two-argument
// setGraphicsRootDescriptorTable(rootParameterIndex, resource)
// call of spec §4.7. resource may be nil when the heap was
// already populated by an earlier call (e.g. a static sampler
// or SRV range filled once at blueprint-resolve time).
func (cb *CommandBuffer) SetGraphicsRootDescriptorTable(rs *rootsig.RootSignature, rootParameterIndex int, resource driver.Buffer) {
	cb.append(VarSetGraphicsRootDescriptorTable, Payload{RootSig: rs, TableIndex: rootParameterIndex, Buffer: resource})
}

// SetPipelineState appends a VarSetPipelineState packet.
func (cb *CommandBuffer) SetPipelineState(pl driver.Pipeline) {
	cb.append(VarSetPipelineState, Payload{Pipeline: pl})
}

// SetVertexArray appends a VarSetVertexArray packet.
func (cb *CommandBuffer) SetVertexArray(bufs []driver.Buffer, offs []int64, idx driver.Buffer, idxFmt driver.IndexFmt) {
	cb.append(VarSetVertexArray, Payload{
		VertexBufs: append([]driver.Buffer(nil), bufs...),
		VertexOffs: append([]int64(nil), offs...),
		IndexBuf:   idx,
		IndexFmt:   idxFmt,
	})
}

// SetPrimitiveTopology appends a VarSetPrimitiveTopology packet.
func (cb *CommandBuffer) SetPrimitiveTopology(t driver.Topology) {
	cb.append(VarSetPrimitiveTopology, Payload{Topology: t})
}

// SetViewports appends a VarSetViewports packet, with the
// viewport array stored inline as auxiliary payload data.
func (cb *CommandBuffer) SetViewports(vp []driver.Viewport) {
	cb.append(VarSetViewports, Payload{Viewports: append([]driver.Viewport(nil), vp...)})
}

// SetScissorRectangles appends a VarSetScissorRectangles packet.
func (cb *CommandBuffer) SetScissorRectangles(sc []driver.Scissor) {
	cb.append(VarSetScissorRectangles, Payload{Scissors: append([]driver.Scissor(nil), sc...)})
}

// SetRenderTarget appends a VarSetRenderTarget packet.
func (cb *CommandBuffer) SetRenderTarget(pass driver.RenderPass, fb driver.Framebuf) {
	cb.append(VarSetRenderTarget, Payload{RenderPass: pass, Framebuf: fb})
}

// Clear appends a VarClear packet.
func (cb *CommandBuffer) Clear(values []driver.ClearValue) {
	cb.append(VarClear, Payload{Clear: append([]driver.ClearValue(nil), values...)})
}

// ResolveMultisampleFramebuffer appends a
// VarResolveMultisampleFramebuffer packet.
func (cb *CommandBuffer) ResolveMultisampleFramebuffer(src, dst any) {
	cb.append(VarResolveMultisampleFramebuffer, Payload{Src: src, Dst: dst})
}

// CopyResource appends a VarCopyResource packet.
func (cb *CommandBuffer) CopyResource(src, dst any) {
	cb.append(VarCopyResource, Payload{Src: src, Dst: dst})
}

// Draw appends a VarDraw packet.
func (cb *CommandBuffer) Draw(vertCount, instCount, baseVert, baseInst int) {
	cb.append(VarDraw, Payload{VertCount: vertCount, InstCount: instCount, BaseVert: baseVert, BaseInst: baseInst})
}

// DrawIndexed appends a VarDrawIndexed packet.
func (cb *CommandBuffer) DrawIndexed(idxCount, instCount, baseIdx, baseVert, baseInst int) {
	cb.append(VarDrawIndexed, Payload{IdxCount: idxCount, InstCount: instCount, BaseIdx: baseIdx, BaseVert: baseVert, BaseInst: baseInst})
}

// SetDebugMarker appends a VarSetDebugMarker packet.
func (cb *CommandBuffer) SetDebugMarker(name string) {
	cb.append(VarSetDebugMarker, Payload{Name: name})
}

// BeginDebugEvent appends a VarBeginDebugEvent packet.
func (cb *CommandBuffer) BeginDebugEvent(name string) {
	cb.append(VarBeginDebugEvent, Payload{Name: name})
}

// EndDebugEvent appends a VarEndDebugEvent packet.
func (cb *CommandBuffer) EndDebugEvent() {
	cb.append(VarEndDebugEvent, Payload{})
}

// packetAt decodes the header at byte offset off and returns
// the packet index and the next packet's offset.
func (cb *CommandBuffer) packetAt(off uint32) (int, uint32, error) {
	if int(off)+headerSize > len(cb.hdr) {
		return 0, 0, newErr("packet offset out of range")
	}
	if off%headerSize != 0 {
		return 0, 0, newErr("packet offset misaligned")
	}
	v := binary.LittleEndian.Uint32(cb.hdr[off : off+4])
	next := binary.LittleEndian.Uint32(cb.hdr[off+4 : off+8])
	if int(v) < 0 || int(v) >= NumVariants {
		return 0, 0, fmt.Errorf("cmdstream: packet at offset %d has out-of-range variant %d", off, v)
	}
	return int(off) / headerSize, next, nil
}

// DispatchFunc executes one packet's effect against a
// concrete driver.CmdBuffer.
type DispatchFunc func(*Packet, driver.CmdBuffer)

// DispatchTable maps every Variant to its handler. A complete
// table has no nil entries; RegisterDispatch enforces this.
type DispatchTable [NumVariants]DispatchFunc

var tables = make(map[string]DispatchTable)

// RegisterDispatch registers a complete DispatchTable under
// name, analogous to driver.Register. It panics if any entry
// is nil, so a backend that forgets to wire up a new command
// variant fails at init instead of at replay time (spec §4.6).
func RegisterDispatch(name string, table DispatchTable) {
	for i, fn := range table {
		if fn == nil {
			panic(fmt.Sprintf("cmdstream: dispatch table %q missing handler for variant %d", name, i))
		}
	}
	tables[name] = table
}

// LookupDispatch returns the DispatchTable registered under
// name.
func LookupDispatch(name string) (DispatchTable, bool) {
	t, ok := tables[name]
	return t, ok
}

// Dispatch replays every recorded packet, in chain order, into
// cmd using table. It is the BD component's entry point (spec
// §4.6): cmdstream itself carries no knowledge of what a
// "backend" is beyond this per-variant function table.
func (cb *CommandBuffer) Dispatch(table DispatchTable, cmd driver.CmdBuffer) error {
	if cb.head == sentinel {
		return nil
	}
	off := cb.head
	for {
		idx, next, err := cb.packetAt(off)
		if err != nil {
			return err
		}
		p := &cb.packets[idx]
		fn := table[p.Variant]
		if fn == nil {
			return fmt.Errorf("cmdstream: no dispatch handler for variant %d", p.Variant)
		}
		fn(p, cmd)
		if next == sentinel {
			return nil
		}
		off = next
	}
}
