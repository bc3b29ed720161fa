// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package cmdstream_test

import (
	"testing"

	"github.com/lithosgfx/lithos/cmdstream"
	"github.com/lithosgfx/lithos/driver"
	"github.com/lithosgfx/lithos/driver/soft"
	"github.com/lithosgfx/lithos/resource"
	"github.com/lithosgfx/lithos/rootsig"
)

func openSoftGPU(t *testing.T) driver.GPU {
	t.Helper()
	for _, d := range driver.Drivers() {
		if d.Name() == "software" {
			gpu, err := d.Open()
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			return gpu
		}
	}
	t.Fatal("software driver not registered")
	return nil
}

func TestRecordOrderAndLen(t *testing.T) {
	cb := cmdstream.New()
	cb.Begin()
	cb.SetPrimitiveTopology(driver.TTriangle)
	cb.Draw(3, 1, 0, 0)
	cb.SetDebugMarker("frame")
	cb.End()

	if cb.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", cb.Len())
	}
}

func TestBeginResetsPreviousRecording(t *testing.T) {
	cb := cmdstream.New()
	cb.Begin()
	cb.Draw(1, 1, 0, 0)
	cb.End()
	if cb.Len() != 1 {
		t.Fatalf("Len after first recording: got %d, want 1", cb.Len())
	}
	cb.Begin()
	if cb.Len() != 0 {
		t.Fatalf("Len after Begin: got %d, want 0", cb.Len())
	}
	cb.End()
}

func TestAppendOutsideBeginEndPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Draw outside Begin/End did not panic")
		}
	}()
	cb := cmdstream.New()
	cb.Draw(1, 1, 0, 0)
}

type recordingCmdBuffer struct {
	driver.CmdBuffer
	vertCounts     []int
	topologies     []driver.Topology
	calls          []string
	descTableStart int
}

func (r *recordingCmdBuffer) Draw(vertCount, instCount, baseVert, baseInst int) {
	r.vertCounts = append(r.vertCounts, vertCount)
}

func (r *recordingCmdBuffer) SetPipeline(pl driver.Pipeline) {}

func (r *recordingCmdBuffer) BeginPass(pass driver.RenderPass, fb driver.Framebuf, clear []driver.ClearValue) {
	r.calls = append(r.calls, "BeginPass")
}

func (r *recordingCmdBuffer) EndPass() {
	r.calls = append(r.calls, "EndPass")
}

func (r *recordingCmdBuffer) SetDescTableGraph(table driver.DescTable, start int, heapCopy []int) {
	r.calls = append(r.calls, "SetDescTableGraph")
	r.descTableStart = start
}

// TestDispatchClearIsSelfContained verifies VarClear both opens
// and closes its render pass block, so a CommandBuffer that
// only clears (no explicit SetRenderTarget/EndPass pairing) can
// still End() and be dispatched without leaving the driver's
// pass-tracking state open.
func TestDispatchClearIsSelfContained(t *testing.T) {
	cb := cmdstream.New()
	cb.Begin()
	cb.Clear([]driver.ClearValue{{Color: [4]float32{0, 0, 0, 1}}})
	cb.End()

	rec := &recordingCmdBuffer{}
	if err := cb.Dispatch(cmdstream.GenericDriverDispatch(), rec); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(rec.calls) != 2 || rec.calls[0] != "BeginPass" || rec.calls[1] != "EndPass" {
		t.Fatalf("Clear dispatch calls: got %v, want [BeginPass EndPass]", rec.calls)
	}
}

// TestDispatchSetGraphicsRootDescriptorTableBindsResource
// verifies the fix for the previously dead
// SetGraphicsRootDescriptorTable packet: it must carry the
// root signature the table belongs to (so the dispatch handler
// can find the per-parameter heap), bind the given resource
// into that heap, and only then replay the table bind onto the
// driver.CmdBuffer.
func TestDispatchSetGraphicsRootDescriptorTableBindsResource(t *testing.T) {
	gpu := openSoftGPU(t)
	rs, err := rootsig.New(resource.OwnerID(1), gpu, rootsig.Desc{
		Parameters: []rootsig.RootParameter{
			{
				Type:       rootsig.ParamDescriptorTable,
				Visibility: rootsig.VisFragment,
				Ranges: []rootsig.DescriptorRange{
					{RangeType: rootsig.RangeCBV, NumberOfDescriptors: 1, BaseShaderRegisterName: "PerFrame", SamplerRootParameterIndex: -1},
				},
			},
		},
	}, nil)
	if err != nil {
		t.Fatalf("rootsig.New: %v", err)
	}
	defer rs.Release()

	buf, err := gpu.NewBuffer(256, true, driver.UShaderConst)
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	defer buf.Destroy()

	cb := cmdstream.New()
	cb.Begin()
	cb.SetGraphicsRootDescriptorTable(rs, 0, buf)
	cb.End()

	rec := &recordingCmdBuffer{}
	if err := cb.Dispatch(cmdstream.GenericDriverDispatch(), rec); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(rec.calls) != 1 || rec.calls[0] != "SetDescTableGraph" {
		t.Fatalf("calls: got %v, want [SetDescTableGraph]", rec.calls)
	}
	if rec.descTableStart != 0 {
		t.Fatalf("SetDescTableGraph start: got %d, want 0", rec.descTableStart)
	}
}

// TestDispatchSetGraphicsRootDescriptorTableWithoutRootSig
// verifies the nil-RootSig guard still holds now that the
// packet carries RootSig directly rather than relying on a
// prior, separate VarSetGraphicsRootSignature packet.
func TestDispatchSetGraphicsRootDescriptorTableWithoutRootSig(t *testing.T) {
	cb := cmdstream.New()
	cb.Begin()
	cb.SetGraphicsRootDescriptorTable(nil, 0, nil)
	cb.End()

	rec := &recordingCmdBuffer{}
	if err := cb.Dispatch(cmdstream.GenericDriverDispatch(), rec); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("calls: got %v, want none", rec.calls)
	}
}

// TestDispatchBarrierAndTransition exercises the explicit
// synchronization variants against the software driver's real
// CmdBuffer, wiring driver.Barrier/driver.Transition (and the
// Sync/Access/Layout scopes they carry) into the command stream
// instead of leaving them as declared-but-unreachable driver
// contract surface.
func TestDispatchBarrierAndTransition(t *testing.T) {
	gpu := openSoftGPU(t)
	cmd, err := gpu.NewCmdBuffer()
	if err != nil {
		t.Fatalf("NewCmdBuffer: %v", err)
	}
	defer cmd.Destroy()
	if err := cmd.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	cb := cmdstream.New()
	cb.Begin()
	cb.Barrier([]driver.Barrier{{SyncBefore: driver.SCopy, SyncAfter: driver.SDraw, AccessBefore: driver.ACopyWrite, AccessAfter: driver.AShaderRead}})
	cb.Transition([]driver.Transition{{LayoutBefore: driver.LCopyDst, LayoutAfter: driver.LShaderRead}})
	cb.End()

	if err := cb.Dispatch(cmdstream.GenericDriverDispatch(), cmd); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if err := cmd.End(); err != nil {
		t.Fatalf("End: %v", err)
	}

	sc := cmd.(*soft.CmdBuffer)
	var sawBarrier, sawTransition bool
	for _, c := range sc.Calls {
		switch c.Name {
		case "Barrier":
			sawBarrier = true
		case "Transition":
			sawTransition = true
		}
	}
	if !sawBarrier || !sawTransition {
		t.Fatalf("Calls: got %v, want entries for Barrier and Transition", sc.Calls)
	}
}

func TestDispatchReplaysInOrder(t *testing.T) {
	cb := cmdstream.New()
	cb.Begin()
	cb.Draw(3, 1, 0, 0)
	cb.Draw(6, 1, 0, 0)
	cb.End()

	table := cmdstream.GenericDriverDispatch()
	rec := &recordingCmdBuffer{}
	if err := cb.Dispatch(table, rec); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(rec.vertCounts) != 2 || rec.vertCounts[0] != 3 || rec.vertCounts[1] != 6 {
		t.Fatalf("Dispatch did not replay packets in order: %v", rec.vertCounts)
	}
}

func TestDispatchEmptyStream(t *testing.T) {
	cb := cmdstream.New()
	cb.Begin()
	cb.End()
	table := cmdstream.GenericDriverDispatch()
	if err := cb.Dispatch(table, &recordingCmdBuffer{}); err != nil {
		t.Fatalf("Dispatch on empty stream: %v", err)
	}
}

func TestRegisterDispatchPanicsOnIncompleteTable(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("RegisterDispatch with a missing handler did not panic")
		}
	}()
	var table cmdstream.DispatchTable // every entry nil
	cmdstream.RegisterDispatch("incomplete-test-backend", table)
}

func TestLookupDispatch(t *testing.T) {
	cmdstream.RegisterDispatch("lookup-test-backend", cmdstream.GenericDriverDispatch())
	if _, ok := cmdstream.LookupDispatch("lookup-test-backend"); !ok {
		t.Fatal("LookupDispatch did not find a table registered moments ago")
	}
	if _, ok := cmdstream.LookupDispatch("no-such-backend"); ok {
		t.Fatal("LookupDispatch found a table that was never registered")
	}
}
