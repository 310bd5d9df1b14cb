package session

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"openclipboard/internal/domain/types"
	"openclipboard/internal/nodeerr"
)

// FrameHandler receives application-level frames once the session is ESTABLISHED
// (currently only CLIP_TEXT; FILE_* are reserved per spec §4.3).
type FrameHandler func(f types.Frame)

// Serve runs the session's receive loop and keep-alive timer until the
// connection closes, a protocol violation is observed, or a HELLO or PONG
// deadline expires. HELLO/PING/PONG are handled internally; CLIP_TEXT frames
// are handed to onFrame and all other types are ignored. Serve blocks and
// returns the reason the session ended.
func (s *Session) Serve(selfName string, onFrame FrameHandler) error {
	frames := make(chan types.Frame, 16)
	readErrs := make(chan error, 1)
	go func() {
		for {
			f, err := s.readFrame()
			if err != nil {
				readErrs <- err
				return
			}
			frames <- f
		}
	}()

	// The reader runs before HELLO is written so that two peers serving over
	// an unbuffered stream do not block on each other's HELLO.
	if err := s.SendHello(selfName); err != nil {
		return s.closeWith(fmt.Errorf("%w: send hello", nodeerr.ErrIO))
	}

	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()

	var pendingPingSince time.Time
	pongDeadline := time.NewTimer(pongTimeout)
	pongDeadline.Stop()
	defer pongDeadline.Stop()

	helloDeadline := time.NewTimer(HandshakeTimeout)
	defer helloDeadline.Stop()

	for {
		select {
		case f := <-frames:
			switch f.MsgType {
			case types.MsgHello:
				var hp types.HelloPayload
				if err := json.Unmarshal(f.Payload, &hp); err != nil {
					return s.closeWith(fmt.Errorf("%w: malformed hello", nodeerr.ErrInvalidFrame))
				}
				if hp.PeerID != s.PeerID {
					return s.closeWith(fmt.Errorf("%w: hello peer_id %s != handshake peer_id %s", nodeerr.ErrIdentityMismatch, hp.PeerID, s.PeerID))
				}
				s.helloRecv.Store(true)
				s.maybeEstablish()
				helloDeadline.Stop()

			case types.MsgPing:
				if err := s.sendPong(f.Payload); err != nil {
					return s.closeWith(err)
				}

			case types.MsgPong:
				pendingPingSince = time.Time{}
				pongDeadline.Stop()

			case types.MsgClipText:
				if onFrame != nil {
					onFrame(f)
				}

			default:
				// FILE_* and anything else: reserved, ignored in v0.
			}

		case err := <-readErrs:
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return s.closeWith(nil)
			}
			return s.closeWith(err)

		case <-pingTicker.C:
			if pendingPingSince.IsZero() {
				if err := s.SendPing(); err != nil {
					return s.closeWith(err)
				}
				pendingPingSince = time.Now()
				pongDeadline.Reset(pongTimeout)
			}

		case <-pongDeadline.C:
			return s.closeWith(fmt.Errorf("%w: no PONG within %s", nodeerr.ErrTimeout, pongTimeout))

		case <-helloDeadline.C:
			return s.closeWith(fmt.Errorf("%w: hello not completed within %s", nodeerr.ErrTimeout, HandshakeTimeout))

		case <-s.closed:
			return s.closeErr
		}
	}
}

func (s *Session) closeWith(cause error) error {
	s.Close(cause)
	return cause
}
