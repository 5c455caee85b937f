// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package philler is the root of a bottle-filling machine controller:
// a serial-connected Hardware I/O Engine (package hardware), a
// Filling Sequencer state machine (package sequencer), a flat-file
// Configuration Store (package config), and a Countdown Timer
// (package countdowntimer). See cmd/phillerd for the composition
// root that wires them together.
package philler
