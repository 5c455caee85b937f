// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hardware

import "sync"

// footLatch is a single "unread rising-edge" bit. setOnRisingEdge is
// called by the engine on every parsed frame; tryConsume is called by
// the sequencer. This keeps the sequencer out of the snapshot's
// internal locking entirely: it owns and clears only this one bit.
type footLatch struct {
	mu      sync.Mutex
	latched bool
	prevRaw bool
}

// setOnRisingEdge records the instantaneous foot-switch bit and sets
// latched on a 0->1 transition. It never clears latched; only
// tryConsume does that.
func (f *footLatch) setOnRisingEdge(raw bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if raw && !f.prevRaw {
		f.latched = true
	}
	f.prevRaw = raw
}

// tryConsume reports whether the latch is set and clears it
// atomically, so a caller never observes the same press twice.
func (f *footLatch) tryConsume() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.latched {
		return false
	}
	f.latched = false
	return true
}

// peek reports the latch without clearing it, for snapshot publishing.
func (f *footLatch) peek() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.latched
}

// clear forces the latch to false without reporting whether it had
// been set; used when the sequencer acknowledges a press it handled
// through a different path (e.g. purge-wait timer expiry).
func (f *footLatch) clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latched = false
}
