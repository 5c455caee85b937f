// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hardware is the Hardware I/O Engine: it owns the serial
// link to the microcontroller, decodes sensor frames into a coherent
// Snapshot, converts raw pressure counts to psi, tracks weight
// stability and the foot-switch latch, and drains a bounded command
// queue onto the wire one command per tick.
package hardware

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/gauntleteer/philler/internal/logging"
)

// candidateDevices are probed in order at startup; the first one that
// exists is opened.
var candidateDevices = []string{"/dev/ttyACM0", "/dev/ttyUSB0"}

const (
	tickInterval  = 5 * time.Millisecond
	readTimeout   = 50 * time.Millisecond
	serialBaud    = 19200
	commandQueue  = 16
	readBufferCap = 256
)

// Backing selects whether the engine's sensed fields come from the
// real serial link or from a locally-writable shadow. This replaces
// the scattered simulate* flags with a single variant: readers select
// the backing field by mode, and the only writer into Simulated
// fields is the UI layer (through SetSimulated).
type Backing int

const (
	Real Backing = iota
	Simulated
)

// Engine is the Hardware I/O Engine. Zero value is not usable; build
// one with New.
type Engine struct {
	log     *logging.Logger
	backing Backing

	mu       sync.Mutex
	snap     Snapshot
	history  weightHistory
	cal      pressureCal
	foot     footLatch
	portPath string

	port    serial.Port
	cmds    chan Command
	openErr error
}

// New builds an Engine. backing selects Real (open the serial device
// and poll it) or Simulated (never touch serial hardware; fields are
// driven by SetSimulated).
func New(log *logging.Logger, backing Backing) *Engine {
	return &Engine{
		log:     log,
		backing: backing,
		cal:     newPressureCal(),
		cmds:    make(chan Command, commandQueue),
	}
}

// Readings returns a copy of the current snapshot. Safe for
// concurrent use from any goroutine.
func (e *Engine) Readings() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap
}

// TryConsumeFootSwitch reports and clears the foot-switch latch in
// one atomic step. Together with ClearFootSwitch and ResetHistory it
// is one of the sequencer's few write paths into the engine's
// hardware-owned state.
func (e *Engine) TryConsumeFootSwitch() bool {
	return e.foot.tryConsume()
}

// ClearFootSwitch forces the latch clear without reporting its prior
// state, used when the sequencer acknowledges a press through a
// different transition than the one that will consume it.
func (e *Engine) ClearFootSwitch() {
	e.foot.clear()
}

// SubmitCommand enqueues a command for transmission on the next tick.
// The queue is bounded; on overflow the command is dropped and
// logged rather than blocking the caller.
func (e *Engine) SubmitCommand(c Command) {
	select {
	case e.cmds <- c:
	default:
		if e.log != nil {
			e.log.Criticalf("hardware: command queue full, dropping %s", c)
		}
	}
}

// SetSimulated overwrites the simulated backing fields and republishes
// the snapshot immediately. It is a no-op (and logged as a programmer
// error) if the engine is not in Simulated mode. Inbound serial frames
// are never consulted while in this mode: the shadow set here is the
// snapshot's only source.
func (e *Engine) SetSimulated(weightG float64, pressureRaw int, stopSwitch, footSwitch bool) {
	if e.backing != Simulated {
		if e.log != nil {
			e.log.Criticalf("hardware: SetSimulated called while backing is Real, ignoring")
		}
		return
	}
	e.foot.setOnRisingEdge(footSwitch)

	e.mu.Lock()
	defer e.mu.Unlock()
	raw := clipRaw(pressureRaw)
	e.history.push(weightG)
	e.snap.WeightG = weightG
	e.snap.PressureRaw = raw
	e.snap.PressurePSI = e.cal.psi(raw)
	e.snap.StopSwitch = stopSwitch
	e.snap.FootSwitch = footSwitch
	e.snap.FootSwitchLatched = e.foot.peek()
	e.snap.Stable = e.history.stable()
	e.snap.LastRxMonotonic = time.Now()
}

// Run drives the 5 ms tick loop until ctx is cancelled: open the
// serial device if not yet open, read and parse one line, drain at
// most one pending command. It returns after the port is closed.
func (e *Engine) Run(ctx context.Context) error {
	if e.backing == Real {
		defer e.closePort()
	}

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	var reader *bufio.Reader
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if e.backing == Simulated {
			// The snapshot is already kept current by SetSimulated;
			// this tick only needs to service the command queue.
			e.drainOneCommand()
			continue
		}

		if e.port == nil {
			if err := e.openPort(); err != nil {
				e.openErr = err
				continue
			}
			reader = bufio.NewReaderSize(e.port, readBufferCap)
		}

		e.readOneLine(reader)
		e.drainOneCommand()
	}
}

// openPort probes the candidate device paths in order and opens the
// first one that exists. It is retried every tick until it succeeds.
func (e *Engine) openPort() error {
	path, err := discoverDevice()
	if err != nil {
		return err
	}
	e.portPath = path

	mode := &serial.Mode{
		BaudRate: serialBaud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		if e.log != nil {
			e.log.Criticalf("hardware: opening %s: %v", path, err)
		}
		return err
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		if e.log != nil {
			e.log.Criticalf("hardware: setting read timeout on %s: %v", path, err)
		}
	}
	e.port = port
	e.openErr = nil
	if e.log != nil {
		e.log.Infof("hardware: opened serial device %s", path)
	}
	return nil
}

func (e *Engine) closePort() {
	if e.port == nil {
		return
	}
	if err := e.port.Close(); err != nil && e.log != nil {
		e.log.Criticalf("hardware: closing serial port: %v", err)
	}
	e.port = nil
}

func discoverDevice() (string, error) {
	for _, path := range candidateDevices {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrNoSerialDevice
}

// readOneLine reads and parses a single LF-terminated frame. Read
// errors other than io.EOF and malformed frames are logged; io.EOF is
// discarded silently. The loop continues either way.
func (e *Engine) readOneLine(r *bufio.Reader) {
	line, err := r.ReadString('\n')
	if err != nil {
		if err != io.EOF && e.log != nil {
			e.log.Criticalf("hardware: serial read: %v", err)
		}
		return
	}
	e.ingest(line)
}

// ingest parses a raw line and, if well-formed, folds it into the
// published snapshot and history.
func (e *Engine) ingest(line string) {
	f, ok := parseFrame(line)
	if !ok {
		if e.log != nil {
			e.log.Criticalf("hardware: %v: %q", ErrMalformedFrame, line)
		}
		return
	}

	e.foot.setOnRisingEdge(f.footSwitch)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.history.push(f.weightG)
	e.snap.WeightG = f.weightG
	e.snap.PressureRaw = f.pressureRaw
	e.snap.PressurePSI = e.cal.psi(f.pressureRaw)
	e.snap.StopSwitch = f.stopSwitch
	e.snap.FootSwitch = f.footSwitch
	e.snap.FootSwitchLatched = e.foot.peek()
	e.snap.Stable = e.history.stable()
	e.snap.LastRxMonotonic = time.Now()
}

// DrainCommands removes and returns every command currently queued,
// in submission order, without transmitting them. Tests use this to
// assert what a handler posted; production code never needs it, since
// Run drains the queue onto the wire one command per tick.
func (e *Engine) DrainCommands() []Command {
	var cmds []Command
	for {
		select {
		case c := <-e.cmds:
			cmds = append(cmds, c)
		default:
			return cmds
		}
	}
}

// drainOneCommand transmits at most one queued command, matching the
// "one command per tick" budget.
func (e *Engine) drainOneCommand() {
	select {
	case c := <-e.cmds:
		e.transmit(c)
	default:
	}
}

// transmit writes the wire encoding of c. Writes are best-effort: a
// failure is logged, never retried, because the microcontroller will
// report its true state on the next inbound frame regardless.
func (e *Engine) transmit(c Command) {
	if e.backing == Simulated || e.port == nil {
		if e.log != nil {
			e.log.Debugf("hardware: command %s (not transmitted, backing=%v)", c, e.backing)
		}
		return
	}
	if _, err := e.port.Write([]byte(c.encode())); err != nil && e.log != nil {
		e.log.Criticalf("hardware: writing command %s: %v", c, err)
	}
}

// LastOpenError returns the most recent serial-open failure, or nil
// if the port is open (or the engine is Simulated and never tried).
func (e *Engine) LastOpenError() error { return e.openErr }

// ResetHistory clears the weight-stability window; callers use this
// when starting a new pulse whose stability must be measured fresh.
func (e *Engine) ResetHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.history.reset()
	e.snap.Stable = e.history.stable()
}
