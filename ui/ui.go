// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ui defines the collaborator contract between a (not yet
// built) graphical front end and the controller core. It names the
// calls a UI is allowed to make and nothing else: no widget toolkit,
// no persistence, no audio. The UI polls at 100 ms and every call
// here is fire-and-forget; none may block on hardware I/O.
package ui

import "time"

// PollInterval is the cadence the UI adapter is expected to sample
// Snapshot and Sequencer at.
const PollInterval = 100 * time.Millisecond

// SensorSnapshot is the read-only view of the machine's sensed state
// a UI needs to render: current weight, pressure, and switch states.
// cmd/phillerd's adapter fills it from a hardware.Snapshot.
type SensorSnapshot struct {
	WeightG           float64
	PressurePSI       float64
	StopSwitch        bool
	FootSwitch        bool
	FootSwitchLatched bool
	Stable            bool
	Connected         bool
}

// Snapshot is implemented for the Hardware I/O Engine by an adapter in
// cmd/phillerd. It is the only way a UI observes sensed state.
type Snapshot interface {
	Readings() SensorSnapshot
}

// Sequencer is implemented for the Filling Sequencer by an adapter in
// cmd/phillerd. It is the only way a UI observes or drives sequencer
// state.
type Sequencer interface {
	// CurrentStateName is a display-friendly identifier for the
	// sequencer's current state (e.g. "FILL_PURGE_SETUP").
	CurrentStateName() string
	// CurrentMessage returns the operator-facing guidance text and
	// whether the advance button should be enabled.
	CurrentMessage() (text string, enable bool)
	// PushButtonEvent enqueues an operator action. event is one of
	// the named constants in this package.
	PushButtonEvent(event Event)
}

// Event mirrors sequencer.Button without requiring a UI to import the
// sequencer package directly; the composition root translates between
// the two.
type Event int

const (
	Exit Event = iota
	Abort
	MainEnterFill
	MainEnterClean
	MainEnterDiagnostics
	FillNext
	CleanPressureOn
	CleanPressureOff
	CleanDispense
	DiagPressureOn
	DiagPressureOff
	DiagDispense
	DiagSetup
)

// SimWriter is implemented only when simulation mode is on; the UI's
// setup/diagnostics screens use it to drive the simulated backing
// fields. Calling it against a real-hardware engine is a no-op.
type SimWriter interface {
	SetSimulated(weightG float64, pressureRaw int, stopSwitch, footSwitch bool)
}
