// Package app wires the concrete dependency graph the CLI runs against:
// on-disk identity/trust, clipboard capability, history store, and node
// façade, built from a Config the same way the teacher's cmd/ciphera
// builds its own runtime from flags (internal/app.Config + Wire).
package app

import (
	"path/filepath"
	"time"

	"openclipboard/internal/domain/types"
)

// Config bundles everything the CLI can set via flags or environment
// before constructing a Node (spec §A.1).
type Config struct {
	// DataDir holds identity.json, trust.json, and (if HistoryPersist is
	// set) history.db. Defaults to "." if empty.
	DataDir string

	// ListenPort is the TCP port for C5/C6. 0 selects transport.DefaultPort.
	ListenPort int

	// DeviceName is advertised over LAN discovery and stamped into HELLO.
	DeviceName string

	// PollInterval governs how often the clipboard is polled for local
	// changes (spec §4.9). Defaults to 250ms if zero.
	PollInterval time.Duration

	// HistoryLimit clamps to [types.MinHistoryLimit, types.MaxHistoryLimit];
	// zero selects types.DefaultHistoryLimit.
	HistoryLimit int

	// HistoryPersist opts into a bbolt-backed durable history log instead
	// of the default in-memory ring buffer (spec §9, Decision D6).
	HistoryPersist bool
}

func (c Config) identityPath() string {
	return filepath.Join(c.dataDir(), "identity.json")
}

func (c Config) trustPath() string {
	return filepath.Join(c.dataDir(), "trust.json")
}

func (c Config) historyPath() string {
	return filepath.Join(c.dataDir(), "history.db")
}

func (c Config) dataDir() string {
	if c.DataDir == "" {
		return "."
	}
	return c.DataDir
}

func (c Config) pollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return 250 * time.Millisecond
	}
	return c.PollInterval
}

func (c Config) historyLimit() int {
	if c.HistoryLimit <= 0 {
		return types.DefaultHistoryLimit
	}
	return c.HistoryLimit
}
