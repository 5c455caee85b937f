// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sequencer

import "math"

// secondPulseMS computes the adaptive second-pulse duration from the
// configured parameters and the measured first-pulse delivery.
//
// slope is the estimated flow rate in grams/ms; r is the remaining
// mass to deliver. T2 is truncated toward zero, matching the
// source's integer-division semantics exactly (not rounded).
func secondPulseMS(t1ms uint32, offsetG, targetG, d1G float64) uint32 {
	slope := (d1G - offsetG) / float64(t1ms)
	r := targetG - d1G
	t2 := math.Trunc((r - offsetG) / slope)
	if t2 < 0 {
		return 0
	}
	return uint32(t2)
}
