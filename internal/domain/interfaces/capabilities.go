package interfaces

// ClipboardCapability is the embedder-provided platform clipboard (spec §6).
//
// Both operations are treated as fallible and non-blocking by callers; any
// error is logged and swallowed rather than propagated to the mesh loop.
type ClipboardCapability interface {
	ReadText() (string, bool, error)
	WriteText(text string) error
}

// EventSink is the embedder-provided callback surface (spec §6).
type EventSink interface {
	OnClipboardText(peerID, text string, tsMS int64)
	OnFileReceived(peerID, name, dataPath string) // reserved, not required v0
	OnPeerConnected(peerID string)
	OnPeerDisconnected(peerID string)
	OnError(message string)
}

// DiscoverySink is the embedder-provided LAN discovery callback surface (spec §6).
type DiscoverySink interface {
	OnPeerDiscovered(peerID, name, addr string)
	OnPeerLost(peerID string)
}
