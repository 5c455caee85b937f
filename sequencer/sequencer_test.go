// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sequencer

import (
	"path/filepath"
	"testing"

	"github.com/gauntleteer/philler/config"
	"github.com/gauntleteer/philler/hardware"
)

func newTestSequencer(t *testing.T) (*Sequencer, *hardware.Engine) {
	t.Helper()
	cfg := config.New(nil)
	if err := cfg.Load(filepath.Join(t.TempDir(), "philler.cfg"), config.DefaultProduct); err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	engine := hardware.New(nil, hardware.Simulated)
	return New(engine, cfg, nil), engine
}

func TestHandlerCoverageDoesNotPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("New panicked: %v", r)
		}
	}()
	newTestSequencer(t)
}

func TestUninitAdvancesToStandby(t *testing.T) {
	s, _ := newTestSequencer(t)
	s.Tick()
	if s.CurrentState() != STANDBY {
		t.Fatalf("state = %s, want STANDBY", s.CurrentState())
	}
}

func TestStandbyEntersFillOnButton(t *testing.T) {
	s, _ := newTestSequencer(t)
	s.Tick() // UNINIT -> STANDBY
	s.PushButton(MainEnterFill)
	s.Tick()
	if s.CurrentState() != FillPrep1 {
		t.Fatalf("state = %s, want FILL_PREP1", s.CurrentState())
	}
}

// TestAdaptiveDispenseScenario reproduces the worked example: d1=6.50
// after the first pulse should yield a second-pulse duration of 6036ms.
func TestAdaptiveDispenseScenario(t *testing.T) {
	ms := secondPulseMS(1500, 1.5, 28.12, 6.50)
	if ms != 6036 {
		t.Errorf("secondPulseMS = %d, want 6036", ms)
	}
}

// TestInitialFillShortfallFails drives the machine through the fill
// subgraph up to FILL_INIT_FILLING_WAIT and confirms a first-pulse
// delivery below fill_init_dispense_min routes to the failure state
// without a second pulse.
func TestInitialFillShortfallFails(t *testing.T) {
	s, engine := newTestSequencer(t)
	s.Tick() // -> STANDBY

	driveToReadyWait(t, s, engine)

	engine.SetSimulated(50.00, 700, false, true)
	s.Tick() // FILL_READY_WAIT consumes latch -> FILL_INIT_FILLING

	if s.CurrentState() != FillInitFilling {
		t.Fatalf("state = %s, want FILL_INIT_FILLING", s.CurrentState())
	}
	s.Tick() // posts first pulse -> FILL_INIT_FILLING_WAIT
	if s.CurrentState() != FillInitFillingWait {
		t.Fatalf("state = %s, want FILL_INIT_FILLING_WAIT", s.CurrentState())
	}

	s.timer.Expire()
	engine.SetSimulated(53.00, 700, false, false) // d1 = 3.00 < 4.00
	s.Tick()

	if s.CurrentState() != FillInitFillingFailed {
		t.Fatalf("state = %s, want FILL_INIT_FILLING_FAILED", s.CurrentState())
	}
	dispenses := 0
	for _, c := range engine.DrainCommands() {
		if c.Kind == hardware.Dispense {
			dispenses++
		}
	}
	if dispenses != 1 {
		t.Errorf("dispense commands = %d, want 1 (first pulse only)", dispenses)
	}
}

// driveToReadyWait pushes the machine from STANDBY through pressurize,
// purge-skip, and bottle-load, leaving it in FILL_READY_WAIT with
// weightWithBottle captured at 50.00g, and the foot latch armed.
func driveToReadyWait(t *testing.T, s *Sequencer, engine *hardware.Engine) {
	t.Helper()

	engine.SetSimulated(0, 0, false, false)
	s.PushButton(MainEnterFill)
	s.Tick() // STANDBY -> FILL_PREP1

	s.PushButton(FillNext)
	s.Tick() // FILL_PREP1 -> FILL_PREP2
	s.PushButton(FillNext)
	s.Tick() // FILL_PREP2 -> FILL_RESET_STOP
	s.Tick() // -> FILL_PRESSURIZE

	engine.SetSimulated(0, 885, false, false) // 30 psi, above the 18.5 psi minimum
	s.Tick()                                  // -> FILL_PURGE_INIT
	s.Tick()                                  // -> FILL_PURGE_SETUP

	s.PushButton(FillNext)
	s.Tick() // FILL_PURGE_SETUP -> FILL_PURGE_CLEAR_WAIT

	engine.SetSimulated(0, 885, false, false)
	s.Tick() // tared -> FILL_LOAD_BOTTLE

	engine.SetSimulated(50.00, 885, false, false)
	s.Tick() // weight >= min -> FILL_LOAD_BOTTLE_WAIT

	s.PushButton(FillNext)
	s.Tick() // -> FILL_READY_SETUP (captures weightWithBottle=50.00)
	s.Tick() // -> FILL_READY_WAIT

	if s.CurrentState() != FillReadyWait {
		t.Fatalf("setup: state = %s, want FILL_READY_WAIT", s.CurrentState())
	}
	if s.weightWithBottle != 50.00 {
		t.Fatalf("setup: weightWithBottle = %v, want 50.00", s.weightWithBottle)
	}

	engine.SetSimulated(50.00, 885, false, true) // foot pedal pressed
}

// TestStopSwitchAbortsWithinTwoTicks reproduces the mid-fill
// emergency-stop scenario: once stop_switch reads true during any
// fill state, the machine reaches STANDBY within two ticks having
// posted Abort then Vent.
func TestStopSwitchAbortsWithinTwoTicks(t *testing.T) {
	s, engine := newTestSequencer(t)
	s.Tick() // -> STANDBY

	driveToReadyWait(t, s, engine)
	s.Tick() // consumes latch -> FILL_INIT_FILLING
	s.Tick() // posts first pulse -> FILL_INIT_FILLING_WAIT

	engine.SetSimulated(56.50, 885, true, false) // stop switch engaged

	s.Tick() // tick 1: interlock -> FILL_TERMINATE
	if s.CurrentState() != FillTerminate {
		t.Fatalf("after tick 1, state = %s, want FILL_TERMINATE", s.CurrentState())
	}
	s.Tick() // tick 2: FILL_TERMINATE handler posts Abort, Vent -> STANDBY
	if s.CurrentState() != STANDBY {
		t.Fatalf("after tick 2, state = %s, want STANDBY", s.CurrentState())
	}
	cmds := engine.DrainCommands()
	if n := len(cmds); n < 2 || cmds[n-2].Kind != hardware.Abort || cmds[n-1].Kind != hardware.Vent {
		t.Errorf("commands = %v, want Abort then Vent last", cmds)
	}
}

// TestReentersFillPostsPressurizeAgain reproduces a routine
// operational path: a fill session is aborted back to STANDBY, and
// the operator starts a second one. FILL_PRESSURIZE must post a fresh
// Pressurize command on this second arrival, not only on the first
// one the process ever saw.
func TestReentersFillPostsPressurizeAgain(t *testing.T) {
	s, engine := newTestSequencer(t)
	s.Tick() // -> STANDBY

	driveToFillPressurize := func() {
		engine.SetSimulated(0, 0, false, false)
		s.PushButton(MainEnterFill)
		s.Tick() // STANDBY -> FILL_PREP1
		s.PushButton(FillNext)
		s.Tick() // FILL_PREP1 -> FILL_PREP2
		s.PushButton(FillNext)
		s.Tick() // FILL_PREP2 -> FILL_RESET_STOP
		s.Tick() // FILL_RESET_STOP -> FILL_PRESSURIZE
		s.Tick() // FILL_PRESSURIZE entry: posts Pressurize
	}

	driveToFillPressurize()
	if s.CurrentState() != FillPressurize {
		t.Fatalf("state = %s, want FILL_PRESSURIZE", s.CurrentState())
	}
	if !containsCommand(engine.DrainCommands(), hardware.Pressurize) {
		t.Fatalf("first arrival at FILL_PRESSURIZE did not post Pressurize")
	}

	// Abort back to STANDBY.
	engine.SetSimulated(0, 0, true, false)
	s.Tick() // interlock -> FILL_TERMINATE
	s.Tick() // FILL_TERMINATE posts Abort, Vent -> STANDBY
	if s.CurrentState() != STANDBY {
		t.Fatalf("state = %s, want STANDBY after abort", s.CurrentState())
	}
	engine.DrainCommands() // discard the Abort/Vent pair

	driveToFillPressurize()
	if s.CurrentState() != FillPressurize {
		t.Fatalf("state = %s, want FILL_PRESSURIZE on second entry", s.CurrentState())
	}
	if !containsCommand(engine.DrainCommands(), hardware.Pressurize) {
		t.Fatalf("second arrival at FILL_PRESSURIZE did not post Pressurize")
	}
}

func containsCommand(cmds []hardware.Command, kind hardware.CommandKind) bool {
	for _, c := range cmds {
		if c.Kind == kind {
			return true
		}
	}
	return false
}

// TestMaxPurgeRoutesToResetWait reproduces the max-purge scenario:
// after max_purge pedal-triggered purges, the next press routes to
// FILL_PURGE_RESET_WAIT instead of issuing another dispense.
func TestMaxPurgeRoutesToResetWait(t *testing.T) {
	s, engine := newTestSequencer(t)
	s.Tick() // -> STANDBY

	engine.SetSimulated(0, 0, false, false)
	s.PushButton(MainEnterFill)
	s.Tick()
	s.PushButton(FillNext)
	s.Tick()
	s.PushButton(FillNext)
	s.Tick()
	s.Tick()

	engine.SetSimulated(0, 885, false, false)
	s.Tick() // -> FILL_PURGE_INIT
	s.Tick() // -> FILL_PURGE_SETUP

	maxPurge := 5
	for i := 0; i < maxPurge; i++ {
		engine.SetSimulated(0, 885, false, true)
		s.Tick() // consumes pedal, posts purge, -> FILL_PURGE_WAIT
		if s.CurrentState() != FillPurgeWait {
			t.Fatalf("purge %d: state = %s, want FILL_PURGE_WAIT", i, s.CurrentState())
		}
		s.timer.Expire()
		engine.SetSimulated(0, 885, false, false)
		s.Tick() // -> FILL_PURGE_SETUP
	}

	if s.purgeCount != maxPurge {
		t.Fatalf("purgeCount = %d, want %d", s.purgeCount, maxPurge)
	}

	engine.DrainCommands() // discard the purge pulses already posted
	engine.SetSimulated(0, 885, false, true)
	s.Tick() // sixth pedal press -> FILL_PURGE_RESET_WAIT, no dispense
	if s.CurrentState() != FillPurgeResetWait {
		t.Fatalf("state = %s, want FILL_PURGE_RESET_WAIT", s.CurrentState())
	}
	if containsCommand(engine.DrainCommands(), hardware.Dispense) {
		t.Errorf("sixth pedal press posted a Dispense command")
	}

	engine.SetSimulated(0, 885, false, false)
	s.Tick() // tared -> FILL_PURGE_INIT
	s.Tick() // resets purgeCount, -> FILL_PURGE_SETUP
	if s.purgeCount != 0 {
		t.Errorf("purgeCount after reset = %d, want 0", s.purgeCount)
	}
}
