// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hardware

import "errors"

var (
	// ErrNoSerialDevice is the open error recorded (see
	// Engine.LastOpenError) when neither candidate device path exists.
	// Engine.Run does not return it or stop on it; it probes the paths
	// again on the next tick.
	ErrNoSerialDevice = errors.New("hardware: no serial device found at any candidate path")

	// ErrMalformedFrame is logged (never returned to a caller) when an
	// inbound line fails to match the sensor-frame pattern.
	ErrMalformedFrame = errors.New("hardware: malformed sensor frame")
)
