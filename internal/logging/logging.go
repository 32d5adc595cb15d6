// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the zerolog logger handed to every component.
// There is no global logger; components receive theirs explicitly.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Options control the run's logger.
type Options struct {
	// Quiet raises the level to warn, keeping alerts and errors only.
	Quiet bool

	// Debug lowers the level to debug.
	Debug bool

	// NoColor disables the console writer's color codes.
	NoColor bool

	// JSON emits structured JSON instead of console output.
	JSON bool
}

// New builds a logger writing to w, colorized console output by
// default.
func New(w io.Writer, opts Options) zerolog.Logger {
	var out io.Writer = w
	if !opts.JSON {
		out = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    opts.NoColor,
			TimeFormat: time.Kitchen,
		}
	}

	level := zerolog.InfoLevel
	switch {
	case opts.Debug:
		level = zerolog.DebugLevel
	case opts.Quiet:
		level = zerolog.WarnLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
