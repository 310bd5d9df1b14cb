package mesh

import (
	"sync"

	"openclipboard/internal/domain/interfaces"
	"openclipboard/internal/domain/types"
)

// PeerRegistry is the runtime view of known peers: who we trust, who we're
// currently connected to, and where we last reached them (spec §4.9,
// exposed to the embedder as list_known_peers).
type PeerRegistry struct {
	mu    sync.RWMutex
	peers map[string]types.PeerEntry
}

// NewPeerRegistry builds an empty registry.
func NewPeerRegistry() *PeerRegistry {
	return &PeerRegistry{peers: make(map[string]types.PeerEntry)}
}

// LoadFromTrust seeds the registry with every trusted peer, offline by
// default, without clobbering entries already marked online.
func (r *PeerRegistry) LoadFromTrust(trust interfaces.TrustStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range trust.List() {
		if _, ok := r.peers[rec.PeerID]; ok {
			continue
		}
		r.peers[rec.PeerID] = types.PeerEntry{PeerID: rec.PeerID, DisplayName: rec.DisplayName, Status: types.PeerOffline}
	}
}

// SetOnline marks a peer online, recording its address if given.
func (r *PeerRegistry) SetOnline(peerID, addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.peers[peerID]
	if !ok {
		e = types.PeerEntry{PeerID: peerID}
	}
	e.Status = types.PeerOnline
	if addr != "" {
		e.LastAddr = addr
	}
	r.peers[peerID] = e
}

// SetOffline marks a peer offline without forgetting it.
func (r *PeerRegistry) SetOffline(peerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.peers[peerID]; ok {
		e.Status = types.PeerOffline
		r.peers[peerID] = e
	}
}

// IsOnline reports whether peerID is currently connected.
func (r *PeerRegistry) IsOnline(peerID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.peers[peerID]
	return ok && e.Status == types.PeerOnline
}

// ListOnline returns every currently-connected peer.
func (r *PeerRegistry) ListOnline() []types.PeerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.PeerEntry, 0, len(r.peers))
	for _, e := range r.peers {
		if e.Status == types.PeerOnline {
			out = append(out, e)
		}
	}
	return out
}

// ListAll returns every known peer, online or not.
func (r *PeerRegistry) ListAll() []types.PeerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.PeerEntry, 0, len(r.peers))
	for _, e := range r.peers {
		out = append(out, e)
	}
	return out
}

// Get looks up a single peer's runtime entry.
func (r *PeerRegistry) Get(peerID string) (types.PeerEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.peers[peerID]
	return e, ok
}
