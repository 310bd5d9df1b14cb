// Package mesh implements the clipboard sync engine (C9, spec §4.9): the
// clipboard poll loop, echo suppression, the connected-peer table, and
// backoff-governed reconnection to discovered trusted peers.
package mesh

import (
	"sync"
	"time"

	"openclipboard/internal/domain/interfaces"
	"openclipboard/internal/domain/types"
	"openclipboard/internal/identity"
	"openclipboard/internal/logging"
	"openclipboard/internal/session"
	"openclipboard/internal/transport"
)

var log = logging.Get("mesh")

const defaultEchoCapacity = 20

// Engine owns every peer connection and the clipboard poll loop. It
// implements interfaces.DiscoverySink so it can be wired directly to
// discovery.Discovery.
type Engine struct {
	selfID     types.Identity
	selfPeerID string
	deviceName string

	trust   interfaces.TrustStore
	clip    interfaces.ClipboardCapability
	hist    interfaces.HistoryStore
	sink    interfaces.EventSink
	echo    *EchoSuppressor
	reg     *PeerRegistry
	pollInt time.Duration

	mu       sync.Mutex
	sessions map[string]*session.Session
	addrs    map[string]string
	dialing  map[string]bool

	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New builds an idle Engine. Call Start to begin the clipboard poll loop.
func New(selfID types.Identity, deviceName string, trust interfaces.TrustStore, clip interfaces.ClipboardCapability, hist interfaces.HistoryStore, sink interfaces.EventSink, pollInterval time.Duration) *Engine {
	if pollInterval <= 0 {
		pollInterval = 250 * time.Millisecond
	}
	reg := NewPeerRegistry()
	reg.LoadFromTrust(trust)

	return &Engine{
		selfID:     selfID,
		selfPeerID: identity.PeerID(selfID),
		deviceName: deviceName,
		trust:      trust,
		clip:       clip,
		hist:       hist,
		sink:       sink,
		echo:       NewEchoSuppressor(defaultEchoCapacity),
		reg:        reg,
		pollInt:    pollInterval,
		sessions:   make(map[string]*session.Session),
		addrs:      make(map[string]string),
		dialing:    make(map[string]bool),
		stopCh:     make(chan struct{}),
	}
}

// Registry exposes the runtime peer table (for list_known_peers).
func (e *Engine) Registry() *PeerRegistry { return e.reg }

// Start launches the clipboard poll loop.
func (e *Engine) Start() {
	e.wg.Add(1)
	go e.pollLoop()
}

// Stop halts the poll loop and every dial/reconnect loop, closes all
// sessions, and waits for their Serve goroutines to return.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopCh)
	})

	e.mu.Lock()
	sessions := make([]*session.Session, 0, len(e.sessions))
	for _, s := range e.sessions {
		sessions = append(sessions, s)
	}
	e.mu.Unlock()
	for _, s := range sessions {
		s.Close(nil)
	}

	e.wg.Wait()
}

// AcceptSession adopts a freshly handshaken inbound session (from the
// transport listener), registers it, and starts serving it. Inbound
// sessions are never retried on disconnect — only the dial side reconnects
// (spec §4.9 dial tie-break).
func (e *Engine) AcceptSession(s *session.Session) {
	e.adopt(s, "")
}

// OnPeerDiscovered implements interfaces.DiscoverySink. It records the
// address and, if this node is responsible for dialing this peer (the
// lexicographically smaller PeerId dials, to avoid both sides connecting to
// each other simultaneously) and the peer is trusted, starts a reconnect
// loop toward it.
func (e *Engine) OnPeerDiscovered(peerID, name, addr string) {
	if peerID == e.selfPeerID {
		return
	}

	e.mu.Lock()
	e.addrs[peerID] = addr
	alreadyDialing := e.dialing[peerID]
	_, connected := e.sessions[peerID]
	e.mu.Unlock()

	if alreadyDialing || connected {
		return
	}
	if _, trusted := e.trust.Get(peerID); !trusted {
		return
	}
	if e.selfPeerID >= peerID {
		return // the peer with the smaller id dials; we wait to be dialed
	}

	e.mu.Lock()
	e.dialing[peerID] = true
	e.mu.Unlock()

	e.wg.Add(1)
	go e.dialLoop(peerID, addr)
}

// OnPeerLost implements interfaces.DiscoverySink.
func (e *Engine) OnPeerLost(peerID string) {
	e.mu.Lock()
	delete(e.addrs, peerID)
	e.mu.Unlock()
}

func (e *Engine) dialLoop(peerID, addr string) {
	defer e.wg.Done()
	defer func() {
		e.mu.Lock()
		delete(e.dialing, peerID)
		e.mu.Unlock()
	}()

	backoff := NewBackoff()
	for {
		select {
		case <-e.stopCh:
			return
		default:
		}

		e.mu.Lock()
		_, connected := e.sessions[peerID]
		e.mu.Unlock()
		if connected {
			return
		}

		s, err := transport.Dial(addr, e.selfID, e.trust)
		if err != nil {
			if e.sink != nil {
				e.sink.OnError("dial " + peerID + " failed: " + err.Error())
			}
			select {
			case <-time.After(backoff.Next()):
			case <-e.stopCh:
				return
			}
			continue
		}

		backoff.Reset()
		e.adopt(s, addr)
		return
	}
}

func (e *Engine) adopt(s *session.Session, addr string) {
	e.mu.Lock()
	e.sessions[s.PeerID] = s
	e.mu.Unlock()

	e.reg.SetOnline(s.PeerID, addr)
	if e.sink != nil {
		e.sink.OnPeerConnected(s.PeerID)
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		err := s.Serve(e.deviceName, func(f types.Frame) { e.onFrame(s.PeerID, f) })
		if err != nil {
			log.Infof("session with %s ended: %v", s.PeerID, err)
		}

		e.mu.Lock()
		delete(e.sessions, s.PeerID)
		e.mu.Unlock()
		e.reg.SetOffline(s.PeerID)
		if e.sink != nil {
			e.sink.OnPeerDisconnected(s.PeerID)
		}
	}()
}

func (e *Engine) onFrame(peerID string, f types.Frame) {
	if f.MsgType != types.MsgClipText {
		return
	}
	text := string(f.Payload)
	e.echo.NoteRemoteWrite(text)
	if err := e.clip.WriteText(text); err != nil {
		if e.sink != nil {
			e.sink.OnError("write clipboard from " + peerID + ": " + err.Error())
		}
		return
	}

	ts := time.Now().UnixMilli()
	e.hist.Record(text, e.peerDisplayName(peerID))
	if e.sink != nil {
		e.sink.OnClipboardText(peerID, text, ts)
	}
}

func (e *Engine) pollLoop() {
	defer e.wg.Done()
	ticker := time.NewTicker(e.pollInt)
	defer ticker.Stop()

	var last string
	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
		}

		text, ok, err := e.clip.ReadText()
		if err != nil || !ok || text == "" {
			continue
		}
		if text == last {
			continue
		}
		last = text

		if e.echo.ShouldIgnoreLocalChange(text) {
			continue
		}

		e.hist.Record(text, "local")
		e.fanOut(text)
	}
}

func (e *Engine) peerDisplayName(peerID string) string {
	if rec, ok := e.trust.Get(peerID); ok && rec.DisplayName != "" {
		return rec.DisplayName
	}
	return peerID
}

func (e *Engine) fanOut(text string) {
	e.mu.Lock()
	sessions := make([]*session.Session, 0, len(e.sessions))
	for _, s := range e.sessions {
		sessions = append(sessions, s)
	}
	e.mu.Unlock()

	for _, s := range sessions {
		if err := s.SendClipText(text); err != nil && e.sink != nil {
			e.sink.OnError("send to " + s.PeerID + " failed: " + err.Error())
		}
	}
}

// SendClipboardText explicitly shares text with every connected peer and
// records it locally, independent of the poll loop (spec §4.9
// send_clipboard_text).
func (e *Engine) SendClipboardText(text string) {
	e.echo.NoteRemoteWrite(text) // a direct send is not itself a remote echo, but it must not re-trigger the poll loop
	e.hist.Record(text, "local")
	e.fanOut(text)
}

// RecallFromHistory writes a previously-seen entry back to the local
// clipboard without fanning it out again (spec §4.10 recall_from_history
// "must never trigger fan-out").
func (e *Engine) RecallFromHistory(entry types.HistoryEntry) error {
	e.echo.NoteRemoteWrite(entry.Content)
	return e.clip.WriteText(entry.Content)
}
