// Copyright 2024 Gustavo C. Viegas. All rights reserved.

// Package compositor implements the Compositor/Submit Loop
// (CS) component of spec §4.9: a double-buffered per-frame
// submission loop that records a command stream, dispatches it
// against a backend and waits on completion.
//
// The frame ring follows the teacher's Renderer.cb/Renderer.ch
// pattern in engine/renderer.go: NFrame command buffers, each
// paired with its own capacity-1 result channel, so the caller
// blocks only when the slot it is about to reuse is still
// pending, never per-frame.
package compositor

import (
	"errors"

	"github.com/lithosgfx/lithos/backend"
	"github.com/lithosgfx/lithos/cmdstream"
	"github.com/lithosgfx/lithos/driver"
)

const prefix = "compositor: "

func newErr(reason string) error { return errors.New(prefix + reason) }

// NFrame is the number of frames kept in flight at once.
const NFrame = 2

// ErrNoDispatchTable is returned when the renderer's backend
// has not registered a cmdstream.DispatchTable.
var ErrNoDispatchTable = newErr("no dispatch table registered for this backend")

// frame is one slot of the ring: a driver command buffer paired
// with the cmdstream buffer that was recorded into it, plus the
// channel cell used to know when it is safe to reuse.
type frame struct {
	cb  driver.CmdBuffer
	cs  cmdstream.CommandBuffer
	err chan error
}

// Compositor drives the per-frame begin/record/submit/end loop
// spec §4.9 describes.
type Compositor struct {
	r       *backend.Renderer
	table   cmdstream.DispatchTable
	frames  [NFrame]frame
	next    int
	started bool
}

// New creates a Compositor targeting r. The backend named by
// r.Name must have registered a cmdstream.DispatchTable via
// cmdstream.RegisterDispatch.
func New(r *backend.Renderer) (*Compositor, error) {
	table, ok := cmdstream.LookupDispatch(r.Name())
	if !ok {
		return nil, ErrNoDispatchTable
	}
	c := &Compositor{r: r, table: table}
	for i := range c.frames {
		cb, err := r.GPU().NewCmdBuffer()
		if err != nil {
			c.free()
			return nil, err
		}
		c.frames[i] = frame{cb: cb, err: make(chan error, 1)}
		c.frames[i].err <- nil // slot starts idle
	}
	return c, nil
}

func (c *Compositor) free() {
	for i := range c.frames {
		if c.frames[i].cb != nil {
			c.frames[i].cb.Destroy()
		}
	}
}

// Close releases the command buffers owned by c. It blocks
// until every in-flight frame has completed.
func (c *Compositor) Close() {
	for i := range c.frames {
		<-c.frames[i].err
	}
	c.free()
	*c = Compositor{}
}

// BeginScene starts recording the next frame's command stream
// and returns it for the caller to fill in. It blocks until the
// frame slot's previous submission (NFrame frames ago) has
// completed.
func (c *Compositor) BeginScene() (*cmdstream.CommandBuffer, error) {
	f := &c.frames[c.next]
	// Draining the slot's previous result (possibly an error
	// from NFrame frames ago) does not fail this new frame;
	// EndScene/Close are where a caller observes submission
	// errors.
	<-f.err
	f.cs.Begin()
	if err := f.cb.Begin(); err != nil {
		return nil, err
	}
	c.started = true
	return &f.cs, nil
}

// SubmitCommandBuffer replays the recorded cmdstream against
// the driver command buffer via the backend's dispatch table,
// ends recording and commits it to the GPU. It does not wait
// for completion; call EndScene (or Close) to observe errors.
func (c *Compositor) SubmitCommandBuffer() error {
	if !c.started {
		return newErr("SubmitCommandBuffer called without a matching BeginScene")
	}
	f := &c.frames[c.next]
	f.cs.End()
	if err := f.cs.Dispatch(c.table, f.cb); err != nil {
		return err
	}
	if err := f.cb.End(); err != nil {
		return err
	}
	c.r.GPU().Commit([]driver.CmdBuffer{f.cb}, f.err)
	c.started = false
	c.next = (c.next + 1) % NFrame
	return nil
}

// EndScene blocks until the frame just submitted by
// SubmitCommandBuffer has completed execution, returning any
// error the GPU reported.
func (c *Compositor) EndScene() error {
	idx := (c.next - 1 + NFrame) % NFrame
	f := &c.frames[idx]
	err := <-f.err
	f.err <- nil
	return err
}
