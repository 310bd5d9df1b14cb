// Package clipboardcap implements the clipboard capability abstraction
// (spec §4.9's ClipboardProvider) that the mesh engine polls and writes to.
// The real OS-backed clipboard is intentionally out of scope (spec
// Non-goals: no OS clipboard integration is bundled); Mock is what tests
// and embedders without a native binding use to exercise the sync engine.
package clipboardcap

import "sync"

// Mock is an in-memory ClipboardCapability, safe for concurrent use.
type Mock struct {
	mu   sync.Mutex
	text string
	set  bool
}

// NewMock builds an empty mock clipboard.
func NewMock() *Mock { return &Mock{} }

// ReadText returns the current text and whether anything has been written yet.
func (m *Mock) ReadText() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, m.set, nil
}

// WriteText sets the current text, as if the user (or a peer) had copied it.
func (m *Mock) WriteText(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.set = true
	return nil
}
