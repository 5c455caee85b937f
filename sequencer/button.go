// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sequencer

// Button is the closed set of operator events the UI adapter may
// inject. Each tick a handler consumes at most one.
type Button int

const (
	Exit Button = iota
	AbortButton
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

// buttonQueueCap bounds the operator-event queue; overflow drops and
// logs rather than blocking the UI thread.
const buttonQueueCap = 16
