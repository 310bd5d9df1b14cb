// Package logging wires a shared op/go-logging backend for every component.
package logging

import (
	"os"

	logging "gopkg.in/op/go-logging.v1"
)

var format = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:.4s} %{module}: %{message}`,
)

func init() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, format)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(logging.INFO, "")
	logging.SetBackend(leveled)
}

// Get returns a module-scoped logger, the way every package in this
// codebase should obtain one: `var log = logging.Get("session")`.
func Get(module string) *logging.Logger {
	return logging.MustGetLogger(module)
}

// SetLevel adjusts the global verbosity (e.g. from a CLI --verbose flag).
func SetLevel(level logging.Level) {
	logging.SetLevel(level, "")
}

const (
	LevelDebug   = logging.DEBUG
	LevelInfo    = logging.INFO
	LevelWarning = logging.WARNING
	LevelError   = logging.ERROR
)
