// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sequencer is the Filling Sequencer: a flat state machine
// that drives the multi-phase fill workflow, forwards diagnostics and
// cleaning commands to the hardware engine, and enforces the
// universal stop-switch/abort interlock across every fill state.
package sequencer

import (
	"context"
	"time"

	"github.com/gauntleteer/philler/config"
	"github.com/gauntleteer/philler/countdowntimer"
	"github.com/gauntleteer/philler/hardware"
	"github.com/gauntleteer/philler/internal/logging"
)

const tickInterval = 100 * time.Millisecond

// Sequencer is the Filling Sequencer. Build one with New and drive it
// with Run (or step it manually with Tick in tests).
type Sequencer struct {
	engine *hardware.Engine
	cfg    *config.Store
	log    *logging.Logger

	m       *machine
	timer   countdowntimer.Timer
	buttons chan Button

	snap   hardware.Snapshot
	curBtn Button
	hasBtn bool

	weightUnloaded   float64
	weightWithBottle float64
	finalDispenseMS  uint32
	purgeCount       int
	filledCount      int
	diagDispenseMS   uint32

	entered bool
}

// New builds a Sequencer wired to engine and cfg, with its machine
// initialised to UNINIT. Handler coverage is verified immediately;
// a missing handler panics before Run is ever called.
func New(engine *hardware.Engine, cfg *config.Store, log *logging.Logger) *Sequencer {
	s := &Sequencer{
		engine:  engine,
		cfg:     cfg,
		log:     log,
		buttons: make(chan Button, buttonQueueCap),
	}
	s.m = newMachine(handlerTable(), UNINIT, log)
	return s
}

// PushButton enqueues an operator event for the next tick. The queue
// is bounded; overflow drops and logs.
func (s *Sequencer) PushButton(b Button) {
	select {
	case s.buttons <- b:
	default:
		if s.log != nil {
			s.log.Criticalf("sequencer: button queue full, dropping event %d", b)
		}
	}
}

// CurrentState returns the machine's current state.
func (s *Sequencer) CurrentState() State { return s.m.current }

// popButton dequeues at most one pending button for this tick.
func (s *Sequencer) popButton() (Button, bool) {
	select {
	case b := <-s.buttons:
		return b, true
	default:
		return 0, false
	}
}

// takeButton returns this tick's already-dequeued button exactly
// once; subsequent calls within the same tick report false.
func (s *Sequencer) takeButton() (Button, bool) {
	if !s.hasBtn {
		return 0, false
	}
	s.hasBtn = false
	return s.curBtn, true
}

// Tick runs exactly one dispatch cycle: it samples the hardware
// snapshot, pops at most one button event, enforces the universal
// abort interlock for fill states, and otherwise dispatches to the
// current state's handler.
func (s *Sequencer) Tick() {
	s.snap = s.engine.Readings()
	s.curBtn, s.hasBtn = s.popButton()

	if isFillState(s.m.current) {
		abortRequested := s.hasBtn && (s.curBtn == Exit || s.curBtn == AbortButton)
		if s.snap.StopSwitch || abortRequested {
			if abortRequested {
				s.hasBtn = false
			}
			if s.log != nil {
				s.log.Debugf("sequencer: %s -> %s (interlock)", s.m.current, FillTerminate)
			}
			s.m.current = FillTerminate
			return
		}
	}

	s.m.dispatch(s)
}

// Run drives Tick on a 100 ms cadence until ctx is cancelled.
func (s *Sequencer) Run(ctx context.Context) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

func (s *Sequencer) tared() bool {
	tol := s.cfg.GetValue("tare_tolerance")
	return s.snap.WeightG >= -tol && s.snap.WeightG <= tol
}

// onEntry reports whether this is the first dispatch of state st
// since the machine's current visit began, i.e. since it last
// transitioned into st from some other state. Handlers with a
// one-time "on entry" action (post a command, arm a timer) guard it
// with this; it fires on every fresh arrival, not just the first one
// in the process's lifetime, so a second fill session re-posts
// Pressurize exactly as the first one did.
func (s *Sequencer) onEntry(st State) bool {
	return s.entered && s.m.current == st
}

// SetDiagDispenseMS records the operator-entered diagnostics dispense
// duration used by the DIAGNOSTICS DiagDispense button.
func (s *Sequencer) SetDiagDispenseMS(ms uint32) { s.diagDispenseMS = ms }

// FilledCount returns the number of bottles successfully filled this
// session.
func (s *Sequencer) FilledCount() int { return s.filledCount }

// PurgeCount returns the number of purge pulses issued for the bottle
// currently being primed.
func (s *Sequencer) PurgeCount() int { return s.purgeCount }
