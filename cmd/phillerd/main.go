// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Command phillerd is the composition root for the bottle-filling
// controller: it loads the configuration store, builds the hardware
// engine and filling sequencer, and runs their worker loops until
// cancelled. CLI flag parsing, the graphical panels, and audio
// peripherals are out of scope; Daemon.Simulate stands in for a
// --simulate flag a wrapping command could set.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gauntleteer/philler/config"
	"github.com/gauntleteer/philler/hardware"
	"github.com/gauntleteer/philler/internal/logging"
	"github.com/gauntleteer/philler/sequencer"
	"github.com/gauntleteer/philler/ui"
)

// Daemon is the composition root's configuration. A wrapping binary
// (or test) fills this in instead of phillerd parsing its own flags.
type Daemon struct {
	ConfigPath string
	Product    string
	Simulate   bool
}

func main() {
	d := Daemon{
		ConfigPath: "/etc/philler/philler.cfg",
		Product:    config.DefaultProduct,
		Simulate:   os.Getenv("PHILLER_SIMULATE") != "",
	}
	if err := d.Run(); err != nil {
		logging.New().Criticalf("phillerd: %v", err)
		os.Exit(1)
	}
}

// Run wires the Configuration Store, Hardware I/O Engine and Filling
// Sequencer together and blocks until interrupted.
func (d Daemon) Run() error {
	log := logging.New()

	cfg := config.New(log)
	if err := cfg.Load(d.ConfigPath, d.Product); err != nil {
		return err
	}

	backing := hardware.Real
	if d.Simulate {
		backing = hardware.Simulated
	}
	engine := hardware.New(log, backing)
	seq := sequencer.New(engine, cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()
	go seq.Run(ctx)

	<-ctx.Done()
	log.Infof("phillerd: shutting down")
	return <-done
}

// These adapters are what a future graphical front end would hold;
// nothing in this binary drives them yet; they exist to prove the
// engine and sequencer satisfy the ui package's collaborator contract.
var (
	_ ui.Snapshot  = uiSnapshotAdapter{}
	_ ui.Sequencer = uiSequencerAdapter{}
)

// uiSnapshotAdapter satisfies ui.Snapshot by converting a
// hardware.Snapshot into the UI's plain display struct.
type uiSnapshotAdapter struct{ engine *hardware.Engine }

func (a uiSnapshotAdapter) Readings() ui.SensorSnapshot {
	s := a.engine.Readings()
	return ui.SensorSnapshot{
		WeightG:           s.WeightG,
		PressurePSI:       s.PressurePSI,
		StopSwitch:        s.StopSwitch,
		FootSwitch:        s.FootSwitch,
		FootSwitchLatched: s.FootSwitchLatched,
		Stable:            s.Stable,
		Connected:         s.Connected(),
	}
}

// uiSequencerAdapter satisfies ui.Sequencer, translating ui.Event
// into the sequencer's own Button type so neither package needs to
// import the other.
type uiSequencerAdapter struct{ seq *sequencer.Sequencer }

func (a uiSequencerAdapter) CurrentStateName() string {
	return a.seq.CurrentState().String()
}

func (a uiSequencerAdapter) CurrentMessage() (string, bool) {
	return a.seq.CurrentMessage()
}

func (a uiSequencerAdapter) PushButtonEvent(event ui.Event) {
	a.seq.PushButton(sequencer.Button(event))
}
