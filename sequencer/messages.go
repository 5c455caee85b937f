// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sequencer

import "fmt"

// CurrentMessage returns the operator-facing text for the current
// state and whether the advance ("Next") button should be enabled.
// The UI adapter reads this on every refresh; text may embed runtime
// values such as the live purge count or computed dispense duration.
func (s *Sequencer) CurrentMessage() (text string, enable bool) {
	switch s.m.current {
	case UNINIT:
		return "Initializing", false
	case STANDBY:
		return "Select Fill, Clean, or Diagnostics", true
	case DIAGNOSTICS:
		return "Diagnostics", true
	case SETUP:
		return "Setup", true
	case CLEAN:
		return "Clean: Pressure / Vent / Dispense", true

	case FillPrep1:
		if s.tared() {
			return "Scale is tared. Press Next to continue.", true
		}
		return "Remove all weight from the scale to tare.", false
	case FillPrep2:
		return "Press Next to continue.", true
	case FillResetStop:
		return "Release the emergency stop to continue.", false
	case FillPressurize:
		return fmt.Sprintf("Pressurizing... (target %.1f psi, at %.1f psi)", s.cfg.GetValue("fill_pressure_minimum"), s.snap.PressurePSI), false
	case FillPurgeInit:
		return "Preparing purge cycle...", false
	case FillPurgeSetup:
		return fmt.Sprintf("Press the foot pedal to purge (purge %d of %d), or Next when done.", s.purgeCount, int(s.cfg.GetValue("max_purge"))), true
	case FillPurgeWait:
		return "Purging...", false
	case FillPurgeClearWait:
		return "Remove purge fluid and wait for the scale to return to tare.", false
	case FillPurgeResetWait:
		return "Maximum purges reached. Empty the priming vessel to continue.", false
	case FillLoadBottle:
		return "Load a bottle onto the scale.", false
	case FillLoadBottleWait:
		return "Waiting for the bottle weight to settle.", true
	case FillReadySetup:
		return "Getting ready...", false
	case FillReadyWait:
		return "Press the foot pedal to begin filling.", false
	case FillInitFilling:
		return "Starting initial dispense...", false
	case FillInitFillingWait:
		return "Initial dispense in progress...", false
	case FillFillingWait:
		return fmt.Sprintf("Final dispense in progress (%d ms)...", s.finalDispenseMS), false
	case FillClearBottle:
		return fmt.Sprintf("Remove the filled bottle. (%d filled this session)", s.filledCount), false
	case FillInitFillingFailed:
		return "Initial dispense too small; check the nozzle and pressure. Press Next to exit.", true
	case FillFillingFailed:
		return "Final dispense did not reach target weight. Press Next to exit.", true
	case FillTerminate:
		return "Aborting fill...", false
	default:
		return "", false
	}
}
