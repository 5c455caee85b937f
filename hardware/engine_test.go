// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hardware

import (
	"bufio"
	"strings"
	"testing"
)

func TestStabilityVacuousForShortHistory(t *testing.T) {
	var h weightHistory
	if !h.stable() {
		t.Error("empty history should be vacuously stable")
	}
	h.push(10.0)
	h.push(10.05)
	if !h.stable() {
		t.Error("2-sample history should be vacuously stable")
	}
}

func TestStabilityDetectsSettledWeight(t *testing.T) {
	var h weightHistory
	for i := 0; i < 5; i++ {
		h.push(10.0)
	}
	if !h.stable() {
		t.Error("constant weight should be stable")
	}
	h.push(12.0)
	if h.stable() {
		t.Error("a jump beyond the window should not be stable")
	}
}

func TestStabilityWindowCapped(t *testing.T) {
	var h weightHistory
	for i := 0; i < 50; i++ {
		h.push(float64(i))
	}
	if len(h.samples) != historyLen {
		t.Errorf("history length = %d, want %d", len(h.samples), historyLen)
	}
}

func TestFootLatchRisingEdgeOnly(t *testing.T) {
	var f footLatch
	f.setOnRisingEdge(false)
	if f.peek() {
		t.Error("latch should not set on a low reading")
	}
	f.setOnRisingEdge(true)
	if !f.peek() {
		t.Error("latch should set on a rising edge")
	}
	f.setOnRisingEdge(true)
	if !f.tryConsume() {
		t.Error("tryConsume should report the pending latch")
	}
	if f.peek() {
		t.Error("tryConsume should clear the latch")
	}
	if f.tryConsume() {
		t.Error("tryConsume should report false once already consumed")
	}
}

func TestEngineSimulatedIngestAndCommandQueue(t *testing.T) {
	e := New(nil, Simulated)
	e.SetSimulated(5.5, 400, false, true)

	snap := e.Readings()
	if snap.WeightG != 5.5 {
		t.Errorf("WeightG = %v, want 5.5", snap.WeightG)
	}
	if snap.PressureRaw != 400 {
		t.Errorf("PressureRaw = %v, want 400", snap.PressureRaw)
	}
	if !snap.FootSwitchLatched {
		t.Error("foot switch latch should be set after a rising edge")
	}

	if !e.TryConsumeFootSwitch() {
		t.Error("TryConsumeFootSwitch should report the pending latch")
	}

	e.SubmitCommand(DispenseCommand(1500))
	e.drainOneCommand()
	select {
	case <-e.cmds:
		t.Error("command queue should have been drained")
	default:
	}
}

// TestReadOneLineIngestsWellFormedFrame drives the actual serial
// ingestion path (readOneLine -> ingest) over a fake io.Reader,
// covering the loop Run uses when backing is Real, which SetSimulated
// never exercises.
func TestReadOneLineIngestsWellFormedFrame(t *testing.T) {
	e := New(nil, Real)
	r := bufio.NewReader(strings.NewReader("+    0.00g  ;194;s;f\n-1.25g;500;S;F\n"))

	e.readOneLine(r)
	snap := e.Readings()
	if snap.WeightG != 0 {
		t.Errorf("WeightG = %v, want 0", snap.WeightG)
	}
	if snap.PressureRaw != 194 {
		t.Errorf("PressureRaw = %v, want 194", snap.PressureRaw)
	}
	if snap.StopSwitch || snap.FootSwitch {
		t.Errorf("stop/foot = %v/%v, want false/false", snap.StopSwitch, snap.FootSwitch)
	}
	if snap.LastRxMonotonic.IsZero() {
		t.Error("LastRxMonotonic should be set after a well-formed frame")
	}

	e.readOneLine(r)
	snap = e.Readings()
	if snap.WeightG != -1.25 {
		t.Errorf("WeightG = %v, want -1.25", snap.WeightG)
	}
	if !snap.StopSwitch || !snap.FootSwitch {
		t.Errorf("stop/foot = %v/%v, want true/true", snap.StopSwitch, snap.FootSwitch)
	}
	if !snap.FootSwitchLatched {
		t.Error("foot switch latch should be set after the rising edge in the second frame")
	}
}

// TestReadOneLineDiscardsMalformedFrame confirms a malformed line
// read off the wire is logged and discarded without disturbing the
// previously published snapshot.
func TestReadOneLineDiscardsMalformedFrame(t *testing.T) {
	e := New(nil, Real)
	r := bufio.NewReader(strings.NewReader("+0.00g;194;s;f\ngarbage\n"))

	e.readOneLine(r)
	want := e.Readings()

	e.readOneLine(r)
	got := e.Readings()
	if got != want {
		t.Errorf("snapshot changed on malformed frame: got %+v, want %+v", got, want)
	}
}

// TestReadOneLineHandlesEOFWithoutPanicking confirms a read against an
// exhausted reader (io.EOF) is discarded without logging and without
// touching the snapshot, never propagated as a panic.
func TestReadOneLineHandlesEOFWithoutPanicking(t *testing.T) {
	e := New(nil, Real)
	r := bufio.NewReader(strings.NewReader(""))
	e.readOneLine(r)
	if !e.Readings().LastRxMonotonic.IsZero() {
		t.Error("snapshot should remain untouched after an EOF read")
	}
}

func TestEngineCommandQueueOverflowDropsSilently(t *testing.T) {
	e := New(nil, Simulated)
	for i := 0; i < commandQueue+4; i++ {
		e.SubmitCommand(VentCommand())
	}
	if len(e.cmds) != commandQueue {
		t.Errorf("queue length = %d, want capacity %d", len(e.cmds), commandQueue)
	}
}
