// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hardware

import (
	"regexp"
	"strconv"
	"strings"
)

// frameRe matches one LF-terminated sensor line: sign prefix, grams,
// 10-bit pressure counts, stop switch, foot switch.
var frameRe = regexp.MustCompile(`([-+ ]*)\s*(\d+\.\d+)g\s*;(\d+);([sS]);([fF])`)

// parsedFrame is the decoded content of one inbound line, before
// pressure conversion and history bookkeeping are applied.
type parsedFrame struct {
	weightG     float64
	pressureRaw int
	stopSwitch  bool
	footSwitch  bool
}

// parseFrame decodes one inbound serial line. Malformed lines return
// ok=false; callers must log and discard rather than let a bad frame
// corrupt the published snapshot.
func parseFrame(line string) (f parsedFrame, ok bool) {
	m := frameRe.FindStringSubmatch(line)
	if m == nil {
		return parsedFrame{}, false
	}

	sign := 1.0
	if strings.ContainsAny(m[1], "-") {
		sign = -1.0
	}

	grams, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return parsedFrame{}, false
	}

	raw, err := strconv.Atoi(m[3])
	if err != nil {
		return parsedFrame{}, false
	}

	return parsedFrame{
		weightG:     sign * grams,
		pressureRaw: clipRaw(raw),
		stopSwitch:  m[4] == "S",
		footSwitch:  m[5] == "F",
	}, true
}

func clipRaw(raw int) int {
	if raw < 0 {
		return 0
	}
	if raw > 1023 {
		return 1023
	}
	return raw
}

// pressureCal is the fixed linear map from 10-bit ADC counts to psi,
// derived from a two-point transducer characterisation (0 psi at ~177
// counts, 30 psi at ~885 counts). Computed once and cached.
type pressureCal struct {
	slope     float64
	intercept float64
}

func newPressureCal() pressureCal {
	const (
		loCounts, loPSI = 177.0, 0.0
		hiCounts, hiPSI = 885.0, 30.0
	)
	slope := (hiPSI - loPSI) / (hiCounts - loCounts)
	intercept := loPSI - slope*loCounts
	return pressureCal{slope: slope, intercept: intercept}
}

func (c pressureCal) psi(raw int) float64 {
	return c.slope*float64(raw) + c.intercept
}
