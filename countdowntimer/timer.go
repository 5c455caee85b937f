// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package countdowntimer implements a one-shot stopwatch: arm it for a
// duration, poll Expired until it fires, optionally Restart it with the
// same duration. It has no goroutine of its own and is safe to embed in
// a single-threaded poller such as the filling sequencer.
package countdowntimer

import "time"

// Timer is a monotonic countdown. The zero value is already expired.
type Timer struct {
	duration time.Duration
	end      time.Time
}

// Start arms the timer for d, measured from now.
func (t *Timer) Start(d time.Duration) {
	t.duration = d
	t.end = time.Now().Add(d)
}

// Restart re-arms the timer for the duration most recently passed to
// Start, measured from now.
func (t *Timer) Restart() {
	t.end = time.Now().Add(t.duration)
}

// Expired reports whether the timer's duration has elapsed.
func (t *Timer) Expired() bool {
	return !time.Now().Before(t.end)
}

// Expire forces the next Expired call to report true.
func (t *Timer) Expire() {
	t.end = time.Now()
}
