// Package session implements the mutually-authenticated encrypted channel
// (C4, spec §4.4) that every peer connection runs once trust has been
// established out of band.
package session

import (
	"crypto/cipher"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"openclipboard/internal/domain/interfaces"
	"openclipboard/internal/domain/types"
	"openclipboard/internal/logging"
	"openclipboard/internal/nodeerr"
	"openclipboard/internal/protocol"
)

var log = logging.Get("session")

// State is the session lifecycle (spec §4.4 state machine).
type State int32

const (
	StateHandshaking State = iota
	StateHelloPending
	StateEstablished
	StateClosed
)

const (
	pingInterval = 15 * time.Second
	pongTimeout  = 10 * time.Second
)

// Session is one authenticated, encrypted channel to a single peer.
type Session struct {
	conn interfaces.ByteStream

	selfPeerID string
	PeerID     string // known from the handshake; stable for the session's life

	sendAEAD cipher.AEAD
	recvAEAD cipher.AEAD

	sendSeq uint64 // atomic

	recvMu  sync.Mutex
	recvSeq uint64 // last accepted receive sequence; 0 means "none yet"

	state atomic.Int32

	writeMu sync.Mutex

	helloSent       atomic.Bool
	helloRecv       atomic.Bool
	establishedOnce sync.Once
	establishedCh   chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

func newSession(conn interfaces.ByteStream, selfPeerID, peerPeerID string, send, recv cipher.AEAD) *Session {
	s := &Session{
		conn:          conn,
		selfPeerID:    selfPeerID,
		PeerID:        peerPeerID,
		sendAEAD:      send,
		recvAEAD:      recv,
		establishedCh: make(chan struct{}),
		closed:        make(chan struct{}),
	}
	s.state.Store(int32(StateHandshaking))
	return s
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Done is closed once the session transitions to CLOSED.
func (s *Session) Done() <-chan struct{} { return s.closed }

// Err reports why the session closed, once Done is closed.
func (s *Session) Err() error { return s.closeErr }

// SendHello sends the mandatory post-handshake HELLO frame (spec §4.4).
func (s *Session) SendHello(name string) error {
	payload, _ := json.Marshal(types.HelloPayload{PeerID: s.selfPeerID, Name: name, Caps: []string{"clip_text"}})
	if err := s.writeFrame(types.MsgHello, types.StreamControl, payload); err != nil {
		return err
	}
	s.helloSent.Store(true)
	s.state.CompareAndSwap(int32(StateHandshaking), int32(StateHelloPending))
	s.maybeEstablish()
	return nil
}

// SendClipText sends one CLIP_TEXT frame (spec §4.3, §4.9 fan-out).
func (s *Session) SendClipText(text string) error {
	return s.writeFrame(types.MsgClipText, types.StreamClipboard, []byte(text))
}

// SendPing sends a liveness probe carrying the current unix-millis as a token.
func (s *Session) SendPing() error {
	payload := make([]byte, 8)
	putUint64(payload, uint64(time.Now().UnixMilli()))
	return s.writeFrame(types.MsgPing, types.StreamControl, payload)
}

func (s *Session) sendPong(token []byte) error {
	return s.writeFrame(types.MsgPong, types.StreamControl, token)
}

func (s *Session) writeFrame(msgType types.MsgType, stream types.StreamID, payload []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	seq := atomic.AddUint64(&s.sendSeq, 1)
	f := types.Frame{Version: types.FrameVersion, MsgType: msgType, StreamID: stream, Seq: seq, Payload: payload}
	sealed := sealFrame(s.sendAEAD, seq, protocol.Encode(f))
	if err := writeSealed(s.conn, sealed); err != nil {
		return err
	}
	return nil
}

// readFrame blocks for the next decrypted, sequence-checked frame from the peer.
func (s *Session) readFrame() (types.Frame, error) {
	raw, err := readSealed(s.conn)
	if err != nil {
		return types.Frame{}, err
	}
	seq, plaintext, err := openFrame(s.recvAEAD, raw)
	if err != nil {
		return types.Frame{}, err
	}

	s.recvMu.Lock()
	if seq <= s.recvSeq {
		s.recvMu.Unlock()
		return types.Frame{}, fmt.Errorf("%w: got %d, last was %d", nodeerr.ErrBadSequence, seq, s.recvSeq)
	}
	s.recvSeq = seq
	s.recvMu.Unlock()

	f, err := protocol.Decode(plaintext)
	if err != nil {
		return types.Frame{}, err
	}
	if f.Seq != seq {
		return types.Frame{}, fmt.Errorf("%w: envelope/frame sequence mismatch", nodeerr.ErrBadSequence)
	}
	return f, nil
}

func (s *Session) maybeEstablish() {
	if s.helloSent.Load() && s.helloRecv.Load() {
		s.establishedOnce.Do(func() {
			s.state.Store(int32(StateEstablished))
			close(s.establishedCh)
		})
	}
}

// Established blocks until the HELLO handshake completes or ctx-less timeout elapses.
func (s *Session) Established(timeout time.Duration) bool {
	select {
	case <-s.establishedCh:
		return true
	case <-time.After(timeout):
		return false
	case <-s.closed:
		return false
	}
}

// Close marks the session CLOSED and releases the underlying socket on every
// path (spec §5 "Resource lifetimes").
func (s *Session) Close(cause error) error {
	var err error
	s.closeOnce.Do(func() {
		s.state.Store(int32(StateClosed))
		s.closeErr = cause
		err = s.conn.Close()
		close(s.closed)
	})
	return err
}

func putUint64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}
