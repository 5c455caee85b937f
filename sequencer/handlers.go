// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sequencer

import (
	"time"

	"github.com/gauntleteer/philler/hardware"
)

// handlerTable builds the state->handler map the machine framework
// verifies against allStates at construction time.
func handlerTable() map[State]handlerFunc {
	return map[State]handlerFunc{
		UNINIT:      handleUninit,
		STANDBY:     handleStandby,
		DIAGNOSTICS: handleDiagnostics,
		SETUP:       handleSetup,
		CLEAN:       handleClean,

		FillPrep1:             handleFillPrep1,
		FillPrep2:             handleFillPrep2,
		FillResetStop:         handleFillResetStop,
		FillPressurize:        handleFillPressurize,
		FillPurgeInit:         handleFillPurgeInit,
		FillPurgeSetup:        handleFillPurgeSetup,
		FillPurgeWait:         handleFillPurgeWait,
		FillPurgeClearWait:    handleFillPurgeClearWait,
		FillPurgeResetWait:    handleFillPurgeResetWait,
		FillLoadBottle:        handleFillLoadBottle,
		FillLoadBottleWait:    handleFillLoadBottleWait,
		FillReadySetup:        handleFillReadySetup,
		FillReadyWait:         handleFillReadyWait,
		FillInitFilling:       handleFillInitFilling,
		FillInitFillingWait:   handleFillInitFillingWait,
		FillFillingWait:       handleFillFillingWait,
		FillClearBottle:       handleFillClearBottle,
		FillInitFillingFailed: handleFillFailed,
		FillFillingFailed:     handleFillFailed,
		FillTerminate:         handleFillTerminate,
	}
}

func handleUninit(s *Sequencer) Transition {
	return Goto(STANDBY)
}

func handleStandby(s *Sequencer) Transition {
	btn, ok := s.takeButton()
	if !ok {
		return Stay()
	}
	switch btn {
	case MainEnterFill:
		return Goto(FillPrep1)
	case MainEnterClean:
		return Goto(CLEAN)
	case MainEnterDiagnostics:
		return Goto(DIAGNOSTICS)
	}
	return Stay()
}

func handleDiagnostics(s *Sequencer) Transition {
	btn, ok := s.takeButton()
	if !ok {
		return Stay()
	}
	switch btn {
	case DiagPressureOn:
		s.engine.SubmitCommand(hardware.PressurizeCommand())
	case DiagPressureOff:
		s.engine.SubmitCommand(hardware.VentCommand())
	case DiagDispense:
		s.engine.SubmitCommand(hardware.DispenseCommand(s.diagDispenseMS))
	case DiagSetup:
		return Goto(SETUP)
	case Exit:
		return Goto(STANDBY)
	}
	return Stay()
}

func handleSetup(s *Sequencer) Transition {
	if btn, ok := s.takeButton(); ok && btn == Exit {
		return Goto(DIAGNOSTICS)
	}
	return Stay()
}

func handleClean(s *Sequencer) Transition {
	btn, ok := s.takeButton()
	if !ok {
		return Stay()
	}
	switch btn {
	case CleanPressureOn:
		s.engine.SubmitCommand(hardware.PressurizeCommand())
	case CleanPressureOff:
		s.engine.SubmitCommand(hardware.VentCommand())
	case CleanDispense:
		ms := uint32(s.cfg.GetValue("clean_dispense_time"))
		s.engine.SubmitCommand(hardware.DispenseCommand(ms))
	case Exit:
		s.engine.SubmitCommand(hardware.AbortCommand())
		s.engine.SubmitCommand(hardware.VentCommand())
		return Goto(STANDBY)
	}
	return Stay()
}

// handleFillPrep1 waits for the operator to confirm the scale is
// tared before advancing; the UI additionally disables the button
// until tared, this is the server-side half of that contract.
func handleFillPrep1(s *Sequencer) Transition {
	if btn, ok := s.takeButton(); ok && btn == FillNext && s.tared() {
		return Goto(FillPrep2)
	}
	return Stay()
}

func handleFillPrep2(s *Sequencer) Transition {
	s.weightUnloaded = s.snap.WeightG
	if btn, ok := s.takeButton(); ok && btn == FillNext {
		return Goto(FillResetStop)
	}
	return Stay()
}

func handleFillResetStop(s *Sequencer) Transition {
	if !s.snap.StopSwitch {
		return Goto(FillPressurize)
	}
	return Stay()
}

func handleFillPressurize(s *Sequencer) Transition {
	if s.onEntry(FillPressurize) {
		s.engine.SubmitCommand(hardware.PressurizeCommand())
	}
	if s.snap.PressurePSI >= s.cfg.GetValue("fill_pressure_minimum") {
		return Goto(FillPurgeInit)
	}
	return Stay()
}

// handleFillPurgeInit is the implicit setup step the original source
// folds into the pressurize transition: clear the foot-switch latch
// and zero the per-bottle purge count before entering the purge loop.
func handleFillPurgeInit(s *Sequencer) Transition {
	s.engine.ClearFootSwitch()
	s.purgeCount = 0
	return Goto(FillPurgeSetup)
}

func handleFillPurgeSetup(s *Sequencer) Transition {
	if s.engine.TryConsumeFootSwitch() {
		maxPurge := int(s.cfg.GetValue("max_purge"))
		if s.purgeCount >= maxPurge {
			return Goto(FillPurgeResetWait)
		}
		purgeMS := uint32(s.cfg.GetValue("purge_time"))
		s.engine.SubmitCommand(hardware.DispenseCommand(purgeMS))
		s.purgeCount++
		s.timer.Start(time.Second)
		return Goto(FillPurgeWait)
	}
	if btn, ok := s.takeButton(); ok && btn == FillNext {
		return Goto(FillPurgeClearWait)
	}
	return Stay()
}

func handleFillPurgeWait(s *Sequencer) Transition {
	if s.timer.Expired() {
		s.engine.ClearFootSwitch()
		return Goto(FillPurgeSetup)
	}
	return Stay()
}

func handleFillPurgeClearWait(s *Sequencer) Transition {
	if s.tared() {
		return Goto(FillLoadBottle)
	}
	return Stay()
}

func handleFillPurgeResetWait(s *Sequencer) Transition {
	if s.tared() {
		return Goto(FillPurgeInit)
	}
	return Stay()
}

func handleFillLoadBottle(s *Sequencer) Transition {
	if s.snap.WeightG >= s.cfg.GetValue("min_bottle_weight") {
		return Goto(FillLoadBottleWait)
	}
	return Stay()
}

func handleFillLoadBottleWait(s *Sequencer) Transition {
	minW := s.cfg.GetValue("min_bottle_weight")
	btn, ok := s.takeButton()
	settled := s.snap.Stable && s.snap.WeightG >= minW
	if settled || (ok && btn == FillNext) {
		s.weightWithBottle = s.snap.WeightG
		return Goto(FillReadySetup)
	}
	return Stay()
}

func handleFillReadySetup(s *Sequencer) Transition {
	s.engine.ClearFootSwitch()
	return Goto(FillReadyWait)
}

func handleFillReadyWait(s *Sequencer) Transition {
	if s.engine.TryConsumeFootSwitch() {
		return Goto(FillInitFilling)
	}
	return Stay()
}

// handleFillInitFilling is the first pulse: a fixed-duration
// open-loop dispense used to measure the current flow rate.
func handleFillInitFilling(s *Sequencer) Transition {
	t1 := uint32(s.cfg.GetValue("fill_init_dispense_time"))
	s.engine.SubmitCommand(hardware.DispenseCommand(t1))
	s.timer.Start(time.Duration(t1) * time.Millisecond)
	s.engine.ResetHistory()
	return Goto(FillInitFillingWait)
}

func handleFillInitFillingWait(s *Sequencer) Transition {
	if !(s.timer.Expired() && s.snap.Stable) {
		return Stay()
	}
	d1 := s.snap.WeightG - s.weightWithBottle
	if d1 < s.cfg.GetValue("fill_init_dispense_min") {
		return Goto(FillInitFillingFailed)
	}
	t1 := uint32(s.cfg.GetValue("fill_init_dispense_time"))
	offset := s.cfg.GetValue("dispense_offset")
	target := s.cfg.GetValue("fill_weight")
	t2 := secondPulseMS(t1, offset, target, d1)
	s.finalDispenseMS = t2
	s.engine.SubmitCommand(hardware.DispenseCommand(t2))
	s.timer.Start(time.Duration(t2) * time.Millisecond)
	s.engine.ResetHistory()
	return Goto(FillFillingWait)
}

// handleFillFillingWait is the adaptive second pulse: sized by
// handleFillInitFillingWait to land on the configured fill weight.
func handleFillFillingWait(s *Sequencer) Transition {
	if !(s.timer.Expired() && s.snap.Stable) {
		return Stay()
	}
	delivered := s.snap.WeightG - s.weightWithBottle
	if delivered >= s.cfg.GetValue("fill_weight") {
		s.filledCount++
		return Goto(FillClearBottle)
	}
	return Goto(FillFillingFailed)
}

func handleFillClearBottle(s *Sequencer) Transition {
	if s.tared() {
		return Goto(FillLoadBottle)
	}
	return Stay()
}

// handleFillFailed serves both FILL_INIT_FILLING_FAILED and
// FILL_FILLING_FAILED: display guidance (via the progress-message
// map) and wait for the operator to acknowledge. Stop-switch and
// Exit/Abort are already handled by the universal interlock in Tick.
func handleFillFailed(s *Sequencer) Transition {
	if btn, ok := s.takeButton(); ok && btn == FillNext {
		return Goto(FillTerminate)
	}
	return Stay()
}

// handleFillTerminate is the single exit door from the fill
// subgraph, reached either by the universal interlock or by operator
// acknowledgment of a failure: it posts Abort then Vent and returns
// to STANDBY.
func handleFillTerminate(s *Sequencer) Transition {
	s.engine.SubmitCommand(hardware.AbortCommand())
	s.engine.SubmitCommand(hardware.VentCommand())
	s.purgeCount = 0
	return Goto(STANDBY)
}
