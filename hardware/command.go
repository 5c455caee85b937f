// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hardware

import "strconv"

// CommandKind is the closed set of instructions the sequencer can post
// to the microcontroller.
type CommandKind int

const (
	// Abort is wire-equivalent to Dispense(0) but kept distinct at the
	// queue layer because it clarifies intent in logs and traces.
	Abort CommandKind = iota
	Pressurize
	Vent
	Dispense
)

// Command is a single instruction destined for the wire. DurationMS is
// only meaningful when Kind is Dispense.
type Command struct {
	Kind       CommandKind
	DurationMS uint32
}

// AbortCommand, PressurizeCommand and VentCommand are the zero-argument
// command constructors; DispenseCommand takes the pulse duration.
func AbortCommand() Command      { return Command{Kind: Abort} }
func PressurizeCommand() Command { return Command{Kind: Pressurize} }
func VentCommand() Command       { return Command{Kind: Vent} }
func DispenseCommand(ms uint32) Command {
	return Command{Kind: Dispense, DurationMS: ms}
}

// encode renders a Command as the underscore-terminated ASCII line the
// microcontroller expects. There is no other framing. An unknown Kind
// is a programmer error and panics.
func (c Command) encode() string {
	switch c.Kind {
	case Pressurize:
		return "P_"
	case Vent:
		return "p_"
	case Abort:
		return "0_"
	case Dispense:
		return strconv.FormatUint(uint64(c.DurationMS), 10) + "_"
	default:
		panic("hardware: unknown command kind " + strconv.Itoa(int(c.Kind)))
	}
}

func (c Command) String() string {
	switch c.Kind {
	case Abort:
		return "Abort"
	case Pressurize:
		return "Pressurize"
	case Vent:
		return "Vent"
	case Dispense:
		return "Dispense(" + strconv.FormatUint(uint64(c.DurationMS), 10) + "ms)"
	default:
		return "Unknown"
	}
}
