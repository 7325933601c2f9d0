// Package logging builds the leveled logger shared by the transport, cache
// and CLI layers.
package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

// DefaultLevel is used when no level is requested.
const DefaultLevel = "warn"

// New returns a logger named krokidoc writing to w at the given level.
// A nil writer means stderr; an unknown level falls back to DefaultLevel.
func New(level string, w io.Writer) hclog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := hclog.LevelFromString(level)
	if lvl == hclog.NoLevel {
		lvl = hclog.LevelFromString(DefaultLevel)
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "krokidoc",
		Level:  lvl,
		Output: w,
		Color:  hclog.ColorOff,
	})
}

// Discard returns a logger that drops everything. Components fall back to it
// when no logger is supplied.
func Discard() hclog.Logger {
	return hclog.NewNullLogger()
}
