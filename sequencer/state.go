// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sequencer

// State is the closed enumeration of sequencer states. The machine is
// a flat finite-state machine: grouping into "Fill", "Clean" and
// "Diagnostics" below is purely organisational, not hierarchical.
type State int

const (
	UNINIT State = iota
	STANDBY

	DIAGNOSTICS
	SETUP

	CLEAN

	FillPrep1
	FillPrep2
	FillResetStop
	FillPressurize
	FillPurgeInit
	FillPurgeSetup
	FillPurgeWait
	FillPurgeClearWait
	FillPurgeResetWait
	FillLoadBottle
	FillLoadBottleWait
	FillReadySetup
	FillReadyWait
	FillInitFilling
	FillInitFillingWait
	FillFillingWait
	FillClearBottle
	FillInitFillingFailed
	FillFillingFailed
	FillTerminate
)

var stateNames = map[State]string{
	UNINIT:                "UNINIT",
	STANDBY:               "STANDBY",
	DIAGNOSTICS:           "DIAGNOSTICS",
	SETUP:                 "SETUP",
	CLEAN:                 "CLEAN",
	FillPrep1:             "FILL_PREP1",
	FillPrep2:             "FILL_PREP2",
	FillResetStop:         "FILL_RESET_STOP",
	FillPressurize:        "FILL_PRESSURIZE",
	FillPurgeInit:         "FILL_PURGE_INIT",
	FillPurgeSetup:        "FILL_PURGE_SETUP",
	FillPurgeWait:         "FILL_PURGE_WAIT",
	FillPurgeClearWait:    "FILL_PURGE_CLEAR_WAIT",
	FillPurgeResetWait:    "FILL_PURGE_RESET_WAIT",
	FillLoadBottle:        "FILL_LOAD_BOTTLE",
	FillLoadBottleWait:    "FILL_LOAD_BOTTLE_WAIT",
	FillReadySetup:        "FILL_READY_SETUP",
	FillReadyWait:         "FILL_READY_WAIT",
	FillInitFilling:       "FILL_INIT_FILLING",
	FillInitFillingWait:   "FILL_INIT_FILLING_WAIT",
	FillFillingWait:       "FILL_FILLING_WAIT",
	FillClearBottle:       "FILL_CLEAR_BOTTLE",
	FillInitFillingFailed: "FILL_INIT_FILLING_FAILED",
	FillFillingFailed:     "FILL_FILLING_FAILED",
	FillTerminate:         "FILL_TERMINATE",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// allStates lists every declared state; the machine framework checks
// this list against the handler table at construction time.
var allStates = []State{
	UNINIT, STANDBY, DIAGNOSTICS, SETUP, CLEAN,
	FillPrep1, FillPrep2, FillResetStop, FillPressurize,
	FillPurgeInit, FillPurgeSetup, FillPurgeWait, FillPurgeClearWait, FillPurgeResetWait,
	FillLoadBottle, FillLoadBottleWait, FillReadySetup, FillReadyWait,
	FillInitFilling, FillInitFillingWait, FillFillingWait, FillClearBottle,
	FillInitFillingFailed, FillFillingFailed, FillTerminate,
}

// isFillState reports whether s belongs to the fill subgraph, where
// the universal abort interlock applies.
func isFillState(s State) bool {
	switch s {
	case FillPrep1, FillPrep2, FillResetStop, FillPressurize,
		FillPurgeInit, FillPurgeSetup, FillPurgeWait, FillPurgeClearWait, FillPurgeResetWait,
		FillLoadBottle, FillLoadBottleWait, FillReadySetup, FillReadyWait,
		FillInitFilling, FillInitFillingWait, FillFillingWait, FillClearBottle,
		FillInitFillingFailed, FillFillingFailed:
		return true
	default:
		return false
	}
}
