package interfaces

import "openclipboard/internal/domain/types"

// IdentityStore persists the node's long-term signing identity (C1, spec §4.1).
type IdentityStore interface {
	Load(path string) (types.Identity, error)
	Save(path string, id types.Identity) error
}

// TrustStore is the persistent set of trusted peers keyed by PeerId (C2, spec §4.2).
type TrustStore interface {
	Add(peerID, pkB64, displayName string) error
	Get(peerID string) (types.TrustRecord, bool)
	Remove(peerID string) bool
	List() []types.TrustRecord
	Clear()
}

// HistoryStore is the bounded clipboard history (C8, spec §4.8). Record
// generates the entry's id and timestamp and returns the id.
type HistoryStore interface {
	Record(content, sourcePeer string) string
	List(limit int) []types.HistoryEntry
	ListForPeer(sourcePeer string, limit int) []types.HistoryEntry
	Find(id string) (types.HistoryEntry, bool)
	SetLimit(n int)
}
