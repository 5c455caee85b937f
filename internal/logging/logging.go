// Copyright 2026 The Philler Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package logging sets up the controller's stderr log stream.
//
// It is deliberately small: a *log.Logger wrapped around a
// go-colorable writer so that level-tagged lines come out in color on
// a real terminal and plain on a redirected file or pipe, without the
// controller needing to know which case it's in.
package logging

import (
	"log"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level tags a log line the way the original Python controller's
// logging module did: critical for things the operator or technician
// must see, info for routine status, debug for transition tracing.
type Level int

const (
	Debug Level = iota
	Info
	Critical
)

func (l Level) tag() string {
	switch l {
	case Debug:
		return "[DEBUG]"
	case Critical:
		return "[CRITICAL]"
	default:
		return "[INFO]"
	}
}

func (l Level) color() string {
	switch l {
	case Debug:
		return "\x1b[90m"
	case Critical:
		return "\x1b[31m"
	default:
		return "\x1b[32m"
	}
}

const colorReset = "\x1b[0m"

// Logger writes level-tagged, optionally colorized lines to an
// underlying writer.
type Logger struct {
	out   *log.Logger
	color bool
}

// New builds a Logger writing to os.Stderr, auto-detecting whether
// that stream is an interactive terminal.
func New() *Logger {
	color := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return &Logger{
		out:   log.New(colorable.NewColorableStderr(), "", log.Ldate|log.Lmicroseconds),
		color: color,
	}
}

func (lg *Logger) printf(level Level, format string, args ...interface{}) {
	if lg == nil {
		return
	}
	if lg.color {
		lg.out.Printf(level.color()+level.tag()+" "+format+colorReset, args...)
		return
	}
	lg.out.Printf(level.tag()+" "+format, args...)
}

// Debugf logs a low-priority tracing line (e.g. state transitions).
func (lg *Logger) Debugf(format string, args ...interface{}) { lg.printf(Debug, format, args...) }

// Infof logs a routine status line.
func (lg *Logger) Infof(format string, args ...interface{}) { lg.printf(Info, format, args...) }

// Criticalf logs a condition an operator or technician must see:
// malformed frames, dropped commands, fatal programmer errors.
func (lg *Logger) Criticalf(format string, args ...interface{}) { lg.printf(Critical, format, args...) }
