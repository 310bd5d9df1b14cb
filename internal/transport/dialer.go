package transport

import (
	"fmt"
	"net"
	"time"

	"openclipboard/internal/domain/interfaces"
	"openclipboard/internal/domain/types"
	"openclipboard/internal/nodeerr"
	"openclipboard/internal/session"
)

// DialTimeout bounds the raw TCP connect, separate from the handshake's own
// HandshakeTimeout.
const DialTimeout = 5 * time.Second

// Dial connects to addr and runs the client-role handshake, returning an
// ESTABLISHED-bound session that the caller must Serve.
func Dial(addr string, selfID types.Identity, trust interfaces.TrustStore) (*session.Session, error) {
	conn, err := net.DialTimeout("tcp", addr, DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", nodeerr.ErrIO, addr, err)
	}

	s, err := session.Dial(conn, selfID, trust)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// ConnectAndSendText dials addr, completes the handshake, sends one CLIP_TEXT
// frame and runs the session's Serve loop in the background so keep-alives
// and further frames are handled until the caller closes it.
func ConnectAndSendText(addr, text string, selfID types.Identity, trust interfaces.TrustStore, selfName string, onFrame session.FrameHandler) (*session.Session, error) {
	s, err := Dial(addr, selfID, trust)
	if err != nil {
		return nil, err
	}

	go func() { _ = s.Serve(selfName, onFrame) }()

	if !s.Established(session.HandshakeTimeout) {
		s.Close(nodeerr.ErrTimeout)
		return nil, fmt.Errorf("%w: session with %s never established", nodeerr.ErrTimeout, addr)
	}

	if err := s.SendClipText(text); err != nil {
		s.Close(err)
		return nil, err
	}
	return s, nil
}
