// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package soft

import (
	"github.com/lithosgfx/lithos/driver"
)

// cbStatus represents the status of a CmdBuffer at a given time.
type cbStatus int

const (
	// Yet to begin. Set after creation, committing and resetting.
	cbIdle cbStatus = iota
	// Ready to record commands. Set after a successful Begin.
	cbBegun
	// Ready to be committed. Set after a successful End.
	cbEnded
	// Ongoing commit. Set during a call to GPU.Commit.
	cbCommitted
	// Recording failed.
	cbFailed
)

// recBlock identifies which kind of logical block (if any) a
// CmdBuffer is currently recording into.
type recBlock int

const (
	recNone recBlock = iota
	recPass
	recWork
	recBlit
)

// CmdBuffer implements driver.CmdBuffer.
// It performs no actual GPU work; it records the most recently
// set state so that callers (in particular backend.Renderer) can
// query it, and validates the Begin/End and block nesting rules
// that the driver.CmdBuffer contract documents.
type CmdBuffer struct {
	gpu     *GPU
	id      uint64
	status  cbStatus
	block   recBlock
	failErr error

	// Last bound state, exposed for test inspection.
	Pipeline   driver.Pipeline
	Viewports  []driver.Viewport
	Scissors   []driver.Scissor
	VertexBufs []driver.Buffer
	IndexBuf   driver.Buffer
	IndexFmt   driver.IndexFmt
	DescTables [2]driver.DescTable // [0] graphics, [1] compute

	// Recorded draw/dispatch/copy calls, in order, for
	// testable-property assertions.
	Calls []Call
}

// Call records one state-changing or action command issued
// against a CmdBuffer, for use by tests.
type Call struct {
	Name string
	Args []any
}

func (cb *CmdBuffer) record(name string, args ...any) {
	cb.Calls = append(cb.Calls, Call{name, args})
}

func (cb *CmdBuffer) fail(err error) {
	cb.status = cbFailed
	cb.failErr = err
}

func (cb *CmdBuffer) Destroy() {}

func (cb *CmdBuffer) Begin() error {
	switch cb.status {
	case cbIdle:
		cb.status = cbBegun
		cb.block = recNone
		cb.Calls = nil
		cb.failErr = nil
		return nil
	default:
		return newErr("Begin called out of sequence")
	}
}

func (cb *CmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) {
	if cb.status != cbBegun || cb.block != recNone {
		cb.fail(newErr("BeginPass called out of sequence"))
		return
	}
	cb.block = recPass
	cb.record("BeginPass", pass, fb, append([]driver.ClearValue(nil), clear...))
}

func (cb *CmdBuffer) NextSubpass() {
	if cb.block != recPass {
		cb.fail(newErr("NextSubpass called outside a render pass"))
		return
	}
	cb.record("NextSubpass")
}

func (cb *CmdBuffer) EndPass() {
	if cb.block != recPass {
		cb.fail(newErr("EndPass called outside a render pass"))
		return
	}
	cb.block = recNone
	cb.record("EndPass")
}

func (cb *CmdBuffer) BeginWork(wait bool) {
	if cb.status != cbBegun || cb.block != recNone {
		cb.fail(newErr("BeginWork called out of sequence"))
		return
	}
	cb.block = recWork
	cb.record("BeginWork", wait)
}

func (cb *CmdBuffer) EndWork() {
	if cb.block != recWork {
		cb.fail(newErr("EndWork called outside compute work"))
		return
	}
	cb.block = recNone
	cb.record("EndWork")
}

func (cb *CmdBuffer) BeginBlit(wait bool) {
	if cb.status != cbBegun || cb.block != recNone {
		cb.fail(newErr("BeginBlit called out of sequence"))
		return
	}
	cb.block = recBlit
	cb.record("BeginBlit", wait)
}

func (cb *CmdBuffer) EndBlit() {
	if cb.block != recBlit {
		cb.fail(newErr("EndBlit called outside data transfer"))
		return
	}
	cb.block = recNone
	cb.record("EndBlit")
}

func (cb *CmdBuffer) SetPipeline(pl driver.Pipeline) {
	cb.Pipeline = pl
	cb.record("SetPipeline", pl)
}

func (cb *CmdBuffer) SetViewport(vp []driver.Viewport) {
	cb.Viewports = append([]driver.Viewport(nil), vp...)
	cb.record("SetViewport", cb.Viewports)
}

func (cb *CmdBuffer) SetScissor(sciss []driver.Scissor) {
	cb.Scissors = append([]driver.Scissor(nil), sciss...)
	cb.record("SetScissor", cb.Scissors)
}

func (cb *CmdBuffer) SetBlendColor(r, g, b, a float32) {
	cb.record("SetBlendColor", r, g, b, a)
}

func (cb *CmdBuffer) SetStencilRef(value uint32) {
	cb.record("SetStencilRef", value)
}

func (cb *CmdBuffer) SetVertexBuf(start int, buf []driver.Buffer, off []int64) {
	if len(cb.VertexBufs) < start+len(buf) {
		grown := make([]driver.Buffer, start+len(buf))
		copy(grown, cb.VertexBufs)
		cb.VertexBufs = grown
	}
	copy(cb.VertexBufs[start:], buf)
	cb.record("SetVertexBuf", start, buf, off)
}

func (cb *CmdBuffer) SetIndexBuf(format driver.IndexFmt, buf driver.Buffer, off int64) {
	cb.IndexFmt = format
	cb.IndexBuf = buf
	cb.record("SetIndexBuf", format, buf, off)
}

func (cb *CmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {
	cb.DescTables[0] = table
	cb.record("SetDescTableGraph", table, start, append([]int(nil), heapCopy...))
}

func (cb *CmdBuffer) SetDescTableComp(table driver.DescTable, start int, heapCopy []int) {
	cb.DescTables[1] = table
	cb.record("SetDescTableComp", table, start, append([]int(nil), heapCopy...))
}

func (cb *CmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int) {
	cb.record("Draw", vertCount, instCount, baseVert, baseInst)
}

func (cb *CmdBuffer) DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int) {
	cb.record("DrawIndexed", idxCount, instCount, baseIdx, vertOff, baseInst)
}

func (cb *CmdBuffer) Dispatch(grpCountX, grpCountY, grpCountZ int) {
	cb.record("Dispatch", grpCountX, grpCountY, grpCountZ)
}

func (cb *CmdBuffer) CopyBuffer(param *driver.BufferCopy) {
	p := *param
	cb.record("CopyBuffer", &p)
}

func (cb *CmdBuffer) CopyImage(param *driver.ImageCopy) {
	p := *param
	cb.record("CopyImage", &p)
}

func (cb *CmdBuffer) CopyBufToImg(param *driver.BufImgCopy) {
	p := *param
	cb.record("CopyBufToImg", &p)
}

func (cb *CmdBuffer) CopyImgToBuf(param *driver.BufImgCopy) {
	p := *param
	cb.record("CopyImgToBuf", &p)
}

func (cb *CmdBuffer) Fill(buf driver.Buffer, off int64, value byte, size int64) {
	if b, ok := buf.(*Buffer); ok && b.visible {
		for i := off; i < off+size; i++ {
			b.data[i] = value
		}
	}
	cb.record("Fill", buf, off, value, size)
}

func (cb *CmdBuffer) Barrier(b []driver.Barrier) {
	cb.record("Barrier", append([]driver.Barrier(nil), b...))
}

func (cb *CmdBuffer) Transition(t []driver.Transition) {
	cb.record("Transition", append([]driver.Transition(nil), t...))
}

func (cb *CmdBuffer) SetDebugMarker(name string) { cb.record("SetDebugMarker", name) }

func (cb *CmdBuffer) BeginDebugEvent(name string) { cb.record("BeginDebugEvent", name) }

func (cb *CmdBuffer) EndDebugEvent() { cb.record("EndDebugEvent") }

func (cb *CmdBuffer) End() error {
	switch cb.status {
	case cbBegun:
		if cb.block != recNone {
			cb.fail(newErr("End called with an open logical block"))
			return cb.failErr
		}
		cb.status = cbEnded
		return nil
	case cbFailed:
		cb.Reset()
		return cb.failErr
	default:
		return newErr("End called out of sequence")
	}
}

func (cb *CmdBuffer) Reset() error {
	cb.status = cbIdle
	cb.block = recNone
	cb.failErr = nil
	cb.Calls = nil
	return nil
}
