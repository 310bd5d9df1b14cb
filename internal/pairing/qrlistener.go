package pairing

import (
	"encoding/base64"
	"sync"

	"openclipboard/internal/domain/interfaces"
	"openclipboard/internal/logging"
	"openclipboard/internal/session"
)

var log = logging.Get("pairing")

// Listener implements the QR auto-trust window (spec §4.7 "2. QR
// auto-trust"): while armed, the next inbound handshake claiming the
// expected PeerId is trusted automatically and the window closes.
type Listener struct {
	mu      sync.Mutex
	enabled bool
	expect  string
	name    string
}

// ExpectPeer arms the listener for exactly one successful pairing: the next
// inbound handshake claiming peerID is trusted automatically and recorded
// under the given display name, then the window closes.
func (l *Listener) ExpectPeer(peerID, name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = true
	l.expect = peerID
	l.name = name
}

// Disable closes the auto-trust window without requiring a pairing to have
// happened.
func (l *Listener) Disable() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = false
	l.expect = ""
	l.name = ""
}

// Enabled reports whether the window is currently open.
func (l *Listener) Enabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// AsAutoTrustFunc adapts the listener into a session.AutoTrustFunc bound to
// trust. Called from the accept path with the handshake's self-attested
// PeerId and identity key; returns true (and writes the trust record, then
// disables itself) exactly once, for the expected peer.
func (l *Listener) AsAutoTrustFunc(trust interfaces.TrustStore) session.AutoTrustFunc {
	return func(peerID string, identityPK []byte) bool {
		l.mu.Lock()
		if !l.enabled || peerID != l.expect {
			l.mu.Unlock()
			return false
		}
		name := l.name
		l.enabled = false
		l.expect = ""
		l.name = ""
		l.mu.Unlock()

		if err := trust.Add(peerID, base64.StdEncoding.EncodeToString(identityPK), name); err != nil {
			log.Errorf("qr auto-trust: write trust record for %s: %v", peerID, err)
			return false
		}
		log.Infof("qr auto-trust: trusted %s (%s)", peerID, name)
		return true
	}
}
