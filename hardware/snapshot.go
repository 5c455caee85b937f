// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hardware

import (
	"time"

	"periph.io/x/conn/v3/physic"
)

// historyLen is the size of the weight-stability ring.
const historyLen = 30

// stabilityWindow is the tolerance the last historyLen samples must
// all fall within, relative to the most recent sample, for stable to
// report true.
const stabilityWindow = 0.1 // grams

// Snapshot is the atomically-published record of the machine's most
// recently observed sensor state. Readers get a consistent value for
// any single field; fields are not necessarily consistent with each
// other across a read (Readings copies the whole struct under one
// lock, which is sufficient in practice since the engine only updates
// it at tick boundaries).
type Snapshot struct {
	WeightG           float64
	PressureRaw       int
	PressurePSI       float64
	StopSwitch        bool
	FootSwitch        bool
	FootSwitchLatched bool
	Stable            bool
	LastRxMonotonic   time.Time
}

// Connected reports whether a sensor frame has been parsed within the
// last second.
func (s Snapshot) Connected() bool {
	return !s.LastRxMonotonic.IsZero() && time.Since(s.LastRxMonotonic) < time.Second
}

// PressurePascal is the pressure reading re-expressed as a
// periph.io physical-unit value, for collaborators that want typed
// units rather than a bare float.
func (s Snapshot) PressurePascal() physic.Pressure {
	return physic.Pressure(s.PressurePSI * 6894.757 * float64(physic.Pascal))
}

// WeightMass is the weight reading re-expressed as a periph.io
// physical-unit value.
func (s Snapshot) WeightMass() physic.Mass {
	return physic.Mass(s.WeightG * float64(physic.Gram))
}

// weightHistory is a fixed-capacity ring of the most recent weight
// samples, newest at the logical tail. It is not safe for concurrent
// use; the engine owns it exclusively.
type weightHistory struct {
	samples []float64
}

func (h *weightHistory) push(v float64) {
	h.samples = append(h.samples, v)
	if len(h.samples) > historyLen {
		h.samples = h.samples[len(h.samples)-historyLen:]
	}
}

// stable reports whether every sample in the window lies within
// stabilityWindow of the most recent sample. Vacuously true for
// windows of 0-2 samples.
func (h *weightHistory) stable() bool {
	n := len(h.samples)
	if n < 3 {
		return true
	}
	latest := h.samples[n-1]
	for _, v := range h.samples {
		if diff := v - latest; diff > stabilityWindow || diff < -stabilityWindow {
			return false
		}
	}
	return true
}

func (h *weightHistory) reset() {
	h.samples = h.samples[:0]
}
