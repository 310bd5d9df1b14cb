// Package node implements the façade (C10, spec §4.10) that aggregates
// identity, trust, transport, discovery, pairing, history, and mesh into
// the single object an embedder constructs.
package node

import (
	"fmt"
	"sync"
	"time"

	"openclipboard/internal/discovery"
	"openclipboard/internal/domain/interfaces"
	"openclipboard/internal/domain/types"
	"openclipboard/internal/identity"
	"openclipboard/internal/logging"
	"openclipboard/internal/mesh"
	"openclipboard/internal/nodeerr"
	"openclipboard/internal/pairing"
	"openclipboard/internal/session"
	"openclipboard/internal/transport"
	"openclipboard/internal/trust"
)

var log = logging.Get("node")

// Node is the embedder-facing aggregate root: one identity, one trust
// store, and whatever subsystems have been started on top of them.
type Node struct {
	self  types.Identity
	trust *trust.Store

	mu        sync.Mutex
	listener  *transport.Listener
	discovery *discovery.Discovery
	engine    *mesh.Engine
	qr        *pairing.Listener
}

// New loads or generates the identity at idPath and opens the trust store
// at trustPath (spec §4.10 "new").
func New(idPath, trustPath string) (*Node, error) {
	id, err := identity.LoadOrGenerate(idPath)
	if err != nil {
		return nil, err
	}
	ts, err := trust.Open(trustPath)
	if err != nil {
		return nil, err
	}
	return &Node{self: id, trust: ts, qr: &pairing.Listener{}}, nil
}

// PeerID returns this node's stable PeerId.
func (n *Node) PeerID() string { return identity.PeerID(n.self) }

// IdentityPublic returns this node's long-term Ed25519 public key, needed
// to build an outgoing pairing payload.
func (n *Node) IdentityPublic() [32]byte { return n.self.Public }

// TrustStore exposes the underlying trust store, e.g. for a CLI's `pair
// finalize` step or manual trust management.
func (n *Node) TrustStore() interfaces.TrustStore { return n.trust }

// StartListener starts the C5 accept loop on port (0 = transport.DefaultPort).
// Every established inbound session is handed to the mesh engine if one has
// been started via StartMesh; otherwise it is closed immediately.
func (n *Node) StartListener(port int, sink interfaces.EventSink) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.listener != nil {
		return nil
	}

	handler := func(s *session.Session) {
		n.mu.Lock()
		engine := n.engine
		n.mu.Unlock()

		if engine == nil {
			s.Close(nil)
			return
		}
		engine.AcceptSession(s)
	}

	ln, err := transport.StartListenerAutoTrust(port, n.self, n.trust, sink, handler, n.qr.AsAutoTrustFunc(n.trust))
	if err != nil {
		return err
	}
	n.listener = ln
	return nil
}

// StartDiscovery starts C6 advertising under name and browsing the LAN,
// reporting sightings to sink.
func (n *Node) StartDiscovery(name string, port int, sink interfaces.DiscoverySink) error {
	n.mu.Lock()
	if n.discovery == nil {
		n.discovery = discovery.New(n.PeerID())
	}
	d := n.discovery
	n.mu.Unlock()
	return d.Start(name, port, sink)
}

// StartMesh starts C5 (listener), C6 (discovery), and C9 (mesh engine)
// together, wiring discovery sightings straight into the engine's dial
// logic (spec §4.10 "start_mesh").
func (n *Node) StartMesh(port int, deviceName string, sink interfaces.EventSink, clip interfaces.ClipboardCapability, hist interfaces.HistoryStore, pollInterval time.Duration) error {
	if port == 0 {
		port = transport.DefaultPort
	}
	n.mu.Lock()
	if n.engine != nil {
		n.mu.Unlock()
		return nil
	}
	engine := mesh.New(n.self, deviceName, n.trust, clip, hist, sink, pollInterval)
	n.engine = engine
	n.mu.Unlock()

	engine.Start()

	if err := n.StartListener(port, sink); err != nil {
		return err
	}
	return n.StartDiscovery(deviceName, port, engine)
}

// ConnectAndSendText dials addr directly and sends one CLIP_TEXT frame,
// without requiring discovery to have found the peer first (spec §4.10
// "connect_and_send_text").
func (n *Node) ConnectAndSendText(addr, text string) error {
	s, err := transport.Dial(addr, n.self, n.trust)
	if err != nil {
		return err
	}
	go func() { _ = s.Serve("", nil) }()
	if !s.Established(session.HandshakeTimeout) {
		s.Close(nodeerr.ErrTimeout)
		return fmt.Errorf("%w: session with %s never established", nodeerr.ErrTimeout, addr)
	}
	if err := s.SendClipText(text); err != nil {
		s.Close(err)
		return err
	}
	return nil
}

// SendClipboardText broadcasts text to every connected trusted peer via the
// mesh engine (best-effort; requires StartMesh to have been called).
func (n *Node) SendClipboardText(text string) {
	n.mu.Lock()
	engine := n.engine
	n.mu.Unlock()
	if engine != nil {
		engine.SendClipboardText(text)
	}
}

// EnableQRPairingListener arms the auto-trust window for peerID (typically
// this node's own PeerId as embedded in the QR payload it is displaying, or
// the counterpart's, depending on who is showing vs scanning).
func (n *Node) EnableQRPairingListener(peerID, displayName string) {
	n.qr.ExpectPeer(peerID, displayName)
}

// DisableQRPairingListener closes the auto-trust window early.
func (n *Node) DisableQRPairingListener() { n.qr.Disable() }

// PairViaQR parses a scanned QR string, trusts the described peer, and
// dials it (spec §4.10 "pair_via_qr").
func (n *Node) PairViaQR(qr string) error {
	_, err := pairing.PairViaQR(qr, n.self, n.trust, "")
	return err
}

// GetClipboardHistory reads up to limit entries from C8, newest first.
func (n *Node) GetClipboardHistory(hist interfaces.HistoryStore, limit int) []types.HistoryEntry {
	return hist.List(limit)
}

// GetClipboardHistoryForPeer reads up to limit entries from C8 for a single
// peer's display name, newest first.
func (n *Node) GetClipboardHistoryForPeer(hist interfaces.HistoryStore, sourcePeer string, limit int) []types.HistoryEntry {
	return hist.ListForPeer(sourcePeer, limit)
}

// RecallFromHistory writes a stored entry back to the clipboard without
// broadcasting it (spec §4.10 "recall_from_history"). If the mesh engine is
// running, its echo suppressor is marked so the poll loop does not treat the
// recall as a fresh local change; otherwise clip is written to directly.
func (n *Node) RecallFromHistory(hist interfaces.HistoryStore, clip interfaces.ClipboardCapability, entryID string) error {
	entry, ok := hist.Find(entryID)
	if !ok {
		return nodeerr.ErrNotFound
	}

	n.mu.Lock()
	engine := n.engine
	n.mu.Unlock()
	if engine != nil {
		return engine.RecallFromHistory(entry)
	}
	return clip.WriteText(entry.Content)
}

// ListKnownPeers returns every peer this node knows about — trusted peers
// loaded from the trust store plus, when the mesh engine is running, live
// online/offline status and last-seen address (spec §4.9/§4.10
// "list_known_peers"). Without a running mesh engine, every trusted peer is
// reported offline.
func (n *Node) ListKnownPeers() []types.PeerEntry {
	n.mu.Lock()
	engine := n.engine
	n.mu.Unlock()

	if engine != nil {
		return engine.Registry().ListAll()
	}

	reg := mesh.NewPeerRegistry()
	reg.LoadFromTrust(n.trust)
	return reg.ListAll()
}

// Stop cancels the accept loop, discovery, and mesh engine, and drains all
// sessions before returning (spec §5 "stop() cancels the accept loop
// first, then signals every session task to drain-and-close").
func (n *Node) Stop() {
	n.mu.Lock()
	ln, disc, engine := n.listener, n.discovery, n.engine
	n.listener, n.discovery, n.engine = nil, nil, nil
	n.mu.Unlock()

	if ln != nil {
		if err := ln.Stop(); err != nil {
			log.Warningf("stop listener: %v", err)
		}
	}
	if disc != nil {
		disc.Stop()
	}
	if engine != nil {
		engine.Stop()
	}
}
