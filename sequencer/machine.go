// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sequencer

import (
	"fmt"

	"github.com/gauntleteer/philler/internal/logging"
)

// Transition is a handler's verdict: stay in the current state, or
// move to another one. It carries no side effects of its own; a
// handler performs its side effects (posting commands, arming
// timers) before returning one.
type Transition struct {
	goTo State
	stay bool
}

// Stay keeps the machine in its current state for another tick.
func Stay() Transition { return Transition{stay: true} }

// Goto moves the machine to s on this tick.
func Goto(s State) Transition { return Transition{goTo: s} }

// handlerFunc is invoked exactly once per tick for the current state.
type handlerFunc func(*Sequencer) Transition

// machine is the flat state-machine framework: an enumeration of
// states plus one handler per state, looked up by dispatch. It
// verifies handler coverage at construction time so a missing
// handler is a startup-time fatal error, never a runtime surprise.
type machine struct {
	handlers map[State]handlerFunc
	current  State
	prior    State
	log      *logging.Logger
}

// noState is never a real State value; priming prior with it makes
// the machine's very first dispatch count as an entry.
const noState State = -1

// newMachine builds a machine and panics if any state in allStates
// lacks a handler. This mirrors the source's own startup-time
// verification pass.
func newMachine(handlers map[State]handlerFunc, initial State, log *logging.Logger) *machine {
	for _, s := range allStates {
		if _, ok := handlers[s]; !ok {
			panic(fmt.Sprintf("sequencer: state %s has no handler", s))
		}
	}
	return &machine{handlers: handlers, current: initial, prior: noState, log: log}
}

// dispatch invokes the handler for the current state and applies any
// transition it returns, logging old->new at debug level. It also
// records, for the handler's own use through Sequencer.onEntry,
// whether this dispatch is the first one since the machine arrived in
// the current state: a state reached via the universal interlock
// (which assigns m.current directly, outside dispatch) still counts
// as freshly entered on its next dispatch, since prior reflects
// whatever state preceded it.
func (m *machine) dispatch(s *Sequencer) {
	s.entered = m.current != m.prior
	m.prior = m.current

	h, ok := m.handlers[m.current]
	if !ok {
		panic(fmt.Sprintf("sequencer: state %s has no handler", m.current))
	}
	t := h(s)
	if t.stay {
		return
	}
	if m.log != nil {
		m.log.Debugf("sequencer: %s -> %s", m.current, t.goTo)
	}
	m.current = t.goTo
}
