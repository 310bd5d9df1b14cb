package app

import (
	"fmt"

	"openclipboard/internal/clipboardcap"
	"openclipboard/internal/domain/interfaces"
	"openclipboard/internal/history"
	"openclipboard/internal/node"
)

// Wire is the constructed dependency graph a CLI command runs against:
// the node façade plus the history store and clipboard capability it was
// started with. Kept alongside Node because RecallFromHistory and the
// history subcommands need direct access to the store, not just the node.
type Wire struct {
	Config Config
	Node   *node.Node
	Hist   interfaces.HistoryStore
	Clip   interfaces.ClipboardCapability

	closeHist func() error
}

// Build loads/generates identity and trust, opens the configured history
// store (in-memory or bbolt-backed), and constructs the node façade. It
// does not start any subsystem; call StartMesh for that.
func Build(cfg Config) (*Wire, error) {
	n, err := node.New(cfg.identityPath(), cfg.trustPath())
	if err != nil {
		return nil, fmt.Errorf("build node: %w", err)
	}

	var hist interfaces.HistoryStore
	var closeHist func() error
	if cfg.HistoryPersist {
		ps, err := history.OpenPersistent(cfg.historyPath(), cfg.historyLimit())
		if err != nil {
			return nil, fmt.Errorf("open persistent history: %w", err)
		}
		hist = ps
		closeHist = ps.Close
	} else {
		hist = history.New(cfg.historyLimit())
		closeHist = func() error { return nil }
	}

	return &Wire{
		Config:    cfg,
		Node:      n,
		Hist:      hist,
		Clip:      clipboardcap.NewMock(),
		closeHist: closeHist,
	}, nil
}

// StartMesh brings up C5/C6/C9 (listener, discovery, mesh engine) using the
// wired clipboard capability and history store.
func (w *Wire) StartMesh(sink interfaces.EventSink) error {
	return w.Node.StartMesh(w.Config.ListenPort, w.Config.DeviceName, sink, w.Clip, w.Hist, w.Config.pollInterval())
}

// Close stops the node and releases the history store's file handle, if any.
func (w *Wire) Close() error {
	w.Node.Stop()
	return w.closeHist()
}
