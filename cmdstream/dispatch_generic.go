// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package cmdstream

import (
	"log"

	"github.com/lithosgfx/lithos/driver"
)

// GenericDriverDispatch builds the DispatchTable that replays
// every packet variant through the driver.CmdBuffer interface
// directly. Any backend whose driver.GPU implementation
// satisfies driver.CmdBuffer faithfully (which is the contract
// every driver.Driver must honor) can register this table
// under its own name instead of writing a bespoke one; drivers
// with native, lower-overhead paths for a given variant may
// override individual entries by copying this table and
// replacing the entries that matter.
func GenericDriverDispatch() DispatchTable {
	return DispatchTable{
		VarCopyUniformBufferData: func(p *Packet, cmd driver.CmdBuffer) {
			if dst := p.Payload.Buffer.Bytes(); dst != nil && p.Payload.BufferOff <= int64(len(dst)) {
				copy(dst[p.Payload.BufferOff:], p.Payload.Data)
				return
			}
			log.Print("cmdstream: CopyUniformBufferData: buffer is not host visible")
		},
		VarCopyTextureBufferData: func(p *Packet, cmd driver.CmdBuffer) {
			if dst := p.Payload.Buffer.Bytes(); dst != nil && p.Payload.BufferOff <= int64(len(dst)) {
				copy(dst[p.Payload.BufferOff:], p.Payload.Data)
				return
			}
			log.Print("cmdstream: CopyTextureBufferData: buffer is not host visible")
		},
		VarBarrier: func(p *Packet, cmd driver.CmdBuffer) {
			if len(p.Payload.Barriers) > 0 {
				cmd.Barrier(p.Payload.Barriers)
			}
		},
		VarTransition: func(p *Packet, cmd driver.CmdBuffer) {
			if len(p.Payload.Transitions) > 0 {
				cmd.Transition(p.Payload.Transitions)
			}
		},
		VarSetGraphicsRootSignature: func(p *Packet, cmd driver.CmdBuffer) {
			// The root signature's descriptor table is bound in
			// full by the paired VarSetGraphicsRootDescriptorTable
			// packet; this packet exists for parity with the
			// variant set and for backends that must rebind state
			// when the signature itself changes.
		},
		VarSetGraphicsRootDescriptorTable: func(p *Packet, cmd driver.CmdBuffer) {
			if p.Payload.RootSig == nil {
				log.Print("cmdstream: SetGraphicsRootDescriptorTable with no root signature")
				return
			}
			if p.Payload.Buffer != nil {
				if heap, ok := p.Payload.RootSig.Heap(p.Payload.TableIndex); ok {
					buf := p.Payload.Buffer
					heap.SetBuffer(0, 0, 0, []driver.Buffer{buf}, []int64{0}, []int64{buf.Cap()})
				}
			}
			cmd.SetDescTableGraph(p.Payload.RootSig.Table(), p.Payload.TableIndex, nil)
		},
		VarSetPipelineState: func(p *Packet, cmd driver.CmdBuffer) {
			cmd.SetPipeline(p.Payload.Pipeline)
		},
		VarSetVertexArray: func(p *Packet, cmd driver.CmdBuffer) {
			cmd.SetVertexBuf(0, p.Payload.VertexBufs, p.Payload.VertexOffs)
			if p.Payload.IndexBuf != nil {
				cmd.SetIndexBuf(p.Payload.IndexFmt, p.Payload.IndexBuf, 0)
			}
		},
		VarSetPrimitiveTopology: func(p *Packet, cmd driver.CmdBuffer) {
			// Topology is carried in the driver.GraphState a
			// pipeline was created with; there is no separate
			// driver.CmdBuffer call to change it dynamically, so
			// this variant is a no-op at the driver layer and
			// exists for backends (and record/replay symmetry)
			// that do support dynamic topology.
		},
		VarSetViewports: func(p *Packet, cmd driver.CmdBuffer) {
			cmd.SetViewport(p.Payload.Viewports)
		},
		VarSetScissorRectangles: func(p *Packet, cmd driver.CmdBuffer) {
			cmd.SetScissor(p.Payload.Scissors)
		},
		VarSetRenderTarget: func(p *Packet, cmd driver.CmdBuffer) {
			cmd.BeginPass(p.Payload.RenderPass, p.Payload.Framebuf, nil)
		},
		VarClear: func(p *Packet, cmd driver.CmdBuffer) {
			// Clear is a self-contained command (spec's
			// clear(flags, colorRGBA, depth, stencil)), not a
			// caller-managed render pass, so it opens and closes
			// its own single-subpass BeginPass/EndPass block
			// rather than leaving one open for VarSetRenderTarget
			// to close.
			cmd.BeginPass(p.Payload.RenderPass, p.Payload.Framebuf, p.Payload.Clear)
			cmd.EndPass()
		},
		VarResolveMultisampleFramebuffer: func(p *Packet, cmd driver.CmdBuffer) {
			src, sok := p.Payload.Src.(*driver.ImageCopy)
			_, dok := p.Payload.Dst.(*driver.ImageCopy)
			if sok && dok {
				cmd.CopyImage(src)
				return
			}
			log.Print("cmdstream: ResolveMultisampleFramebuffer: unsupported src/dst pair")
		},
		VarCopyResource: func(p *Packet, cmd driver.CmdBuffer) {
			switch src := p.Payload.Src.(type) {
			case *driver.BufferCopy:
				cmd.CopyBuffer(src)
			case *driver.ImageCopy:
				cmd.CopyImage(src)
			case *driver.BufImgCopy:
				cmd.CopyBufToImg(src)
			default:
				log.Print("cmdstream: CopyResource: unrecognized copy descriptor")
			}
		},
		VarDraw: func(p *Packet, cmd driver.CmdBuffer) {
			cmd.Draw(p.Payload.VertCount, p.Payload.InstCount, p.Payload.BaseVert, p.Payload.BaseInst)
		},
		VarDrawIndexed: func(p *Packet, cmd driver.CmdBuffer) {
			cmd.DrawIndexed(p.Payload.IdxCount, p.Payload.InstCount, p.Payload.BaseIdx, p.Payload.BaseVert, p.Payload.BaseInst)
		},
		VarSetDebugMarker: func(p *Packet, cmd driver.CmdBuffer) {
			cmd.SetDebugMarker(p.Payload.Name)
		},
		VarBeginDebugEvent: func(p *Packet, cmd driver.CmdBuffer) {
			cmd.BeginDebugEvent(p.Payload.Name)
		},
		VarEndDebugEvent: func(p *Packet, cmd driver.CmdBuffer) {
			cmd.EndDebugEvent()
		},
	}
}
