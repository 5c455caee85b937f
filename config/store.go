// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config holds the controller's named, typed, persisted
// parameters: fill weight, pressurization target, purge timing, and
// so on. It is a flat key/value file, section-scoped by product name,
// loaded once at startup and mutated from the (out-of-core) setup
// screen.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"

	"github.com/gauntleteer/philler/internal/logging"
)

// ItemType is the closed set of configurable value kinds.
type ItemType int

const (
	// Decimal items are grams or psi, stored with fractional precision.
	Decimal ItemType = iota
	// Integer items are milliseconds or counts.
	Integer
)

// DefaultProduct is the INI section used when the caller doesn't name
// a product explicitly.
const DefaultProduct = "PRODUCT1"

// item is a single configurable parameter's full metadata plus its
// current value.
type item struct {
	key         string
	displayName string
	unit        string
	kind        ItemType
	value       float64
	defaultVal  float64
	changed     bool
}

// defaults is the master list of recognized keys, in the fixed order
// from the external interface table. Order is preserved only for
// save-file readability; lookups are by key.
var defaults = []item{
	{key: "fill_weight", displayName: "Fill weight", unit: "g", kind: Decimal, defaultVal: 28.12},
	{key: "fill_weight_min", displayName: "Fill weight min", unit: "g", kind: Decimal, defaultVal: 27.3},
	{key: "fill_pressure_minimum", displayName: "Fill pressure (minimum)", unit: "psi", kind: Decimal, defaultVal: 18.5},
	{key: "fill_init_dispense_time", displayName: "Fill initial dispense time", unit: "ms", kind: Integer, defaultVal: 1500},
	{key: "fill_init_dispense_min", displayName: "Fill initial dispense minimum", unit: "g", kind: Decimal, defaultVal: 4},
	{key: "dispense_offset", displayName: "Dispense offset (intercept)", unit: "g", kind: Decimal, defaultVal: 1.5},
	{key: "pressure_display_max", displayName: "Display pressure (maximum)", unit: "psi", kind: Decimal, defaultVal: 20.0},
	{key: "purge_time", displayName: "Purge time", unit: "ms", kind: Integer, defaultVal: 500},
	{key: "max_purge", displayName: "Maximum purges per bottle", unit: "ct", kind: Integer, defaultVal: 5},
	{key: "tare_tolerance", displayName: "Tare tolerance", unit: "g", kind: Decimal, defaultVal: 0.3},
	{key: "min_bottle_weight", displayName: "Minimum bottle weight", unit: "g", kind: Decimal, defaultVal: 40},
	{key: "clean_dispense_time", displayName: "Cleaning dispense time", unit: "ms", kind: Integer, defaultVal: 30000},
}

// invalidUnit and invalidDisplayName, with a value of 0.0 and kind
// Decimal, are the benign sentinel Get returns for an unrecognized
// key, rather than an error.
const (
	invalidUnit        = "inv"
	invalidDisplayName = "(invalid)"
)

// Store is a name-indexed dictionary of typed parameters, loaded from
// and persisted to a flat INI file.
type Store struct {
	path    string
	product string
	items   map[string]*item
	log     *logging.Logger
}

// New builds an empty Store. Call Load before using it.
func New(log *logging.Logger) *Store {
	return &Store{items: make(map[string]*item, len(defaults)), log: log}
}

// Load reads path, creating it with defaults if it doesn't exist, and
// writing back any keys the defaults table introduced that the file
// didn't already have (schema migration). product selects the INI
// section; DefaultProduct is used by callers that don't care.
func (s *Store) Load(path, product string) error {
	s.path = path
	s.product = product

	for _, d := range defaults {
		v := d
		v.value = d.defaultVal
		s.items[d.key] = &v
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if s.log != nil {
			s.log.Infof("creating new config file: %s", path)
		}
		return s.Save()
	}

	f, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("config: loading %s: %w", path, err)
	}

	sec := f.Section(product)
	needsSaving := false
	for _, it := range s.items {
		if !sec.HasKey(it.key) {
			needsSaving = true
			continue
		}
		k := sec.Key(it.key)
		switch it.kind {
		case Integer:
			i, err := k.Int()
			if err != nil {
				return fmt.Errorf("config: key %q: %w", it.key, err)
			}
			it.value = float64(i)
		default:
			fv, err := k.Float64()
			if err != nil {
				return fmt.Errorf("config: key %q: %w", it.key, err)
			}
			it.value = fv
		}
	}

	if needsSaving {
		if s.log != nil {
			s.log.Infof("config file has new entries, rewriting %s", path)
		}
		return s.Save()
	}

	return nil
}

// Save persists every item to disk atomically: write a temp file in
// the same directory, then rename it over the target, so a crash
// mid-write never leaves a truncated config behind.
func (s *Store) Save() error {
	f := ini.Empty()
	sec, err := f.NewSection(s.product)
	if err != nil {
		return fmt.Errorf("config: creating section %q: %w", s.product, err)
	}

	for _, d := range defaults {
		it := s.items[d.key]
		k, err := sec.NewKey(d.key, formatValue(it))
		if err != nil {
			return fmt.Errorf("config: writing key %q: %w", d.key, err)
		}
		_ = k
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".philler-config-*.tmp")
	if err != nil {
		return fmt.Errorf("config: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if _, err := f.WriteTo(fileWriter{tmpPath}); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("config: writing %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("config: renaming into place: %w", err)
	}

	if s.log != nil {
		s.log.Infof("saved config file to %s", s.path)
	}
	return nil
}

// fileWriter adapts a path to io.Writer by truncating the file and
// writing on each Write call, which is all ini.File.WriteTo needs.
type fileWriter struct{ path string }

func (w fileWriter) Write(p []byte) (int, error) {
	f, err := os.OpenFile(w.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return f.Write(p)
}

func formatValue(it *item) string {
	if it.kind == Integer {
		return fmt.Sprintf("%d", int64(it.value))
	}
	return fmt.Sprintf("%g", it.value)
}

// Get returns a configurable's value along with its unit, display
// name and type. An unrecognized key returns the benign sentinel
// (0.0, "inv", "(invalid)", Decimal) rather than an error.
func (s *Store) Get(key string) (value float64, unit, displayName string, kind ItemType) {
	it, ok := s.items[key]
	if !ok {
		return 0.0, invalidUnit, invalidDisplayName, Decimal
	}
	return it.value, it.unit, it.displayName, it.kind
}

// GetValue returns just the numeric value for key, or 0.0 if key is
// unrecognized.
func (s *Store) GetValue(key string) float64 {
	v, _, _, _ := s.Get(key)
	return v
}

// Set updates key's value. If save is true (the default call site
// behavior), the whole store is persisted synchronously.
func (s *Store) Set(key string, value float64, save bool) error {
	it, ok := s.items[key]
	if !ok {
		return fmt.Errorf("config: unknown key %q", key)
	}
	old := it.value
	it.value = value
	it.changed = true
	if s.log != nil {
		s.log.Infof("changed configurable %s from %v to %v", key, old, value)
	}
	if save {
		return s.Save()
	}
	return nil
}

// Changed reports whether Set has been called for any item since the
// store was created, whether or not the new value differs from the
// old one.
func (s *Store) Changed() bool {
	for _, it := range s.items {
		if it.changed {
			return true
		}
	}
	return false
}
