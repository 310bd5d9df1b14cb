// Package transport implements the TCP listener and dialer that carry
// sessions between peers (C5, spec §4.5). It owns nothing about trust or
// framing beyond handing a freshly accepted or dialed net.Conn to the
// session package's handshake.
package transport

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"syscall"

	"openclipboard/internal/domain/interfaces"
	"openclipboard/internal/domain/types"
	"openclipboard/internal/logging"
	"openclipboard/internal/nodeerr"
	"openclipboard/internal/session"
)

var log = logging.Get("transport")

// DefaultPort is the TCP port OpenClipboard listens on unless overridden.
const DefaultPort = 18455

// SessionHandler is invoked once per inbound session whose key agreement
// succeeded (HELLO not yet exchanged), on that connection's goroutine. It is
// expected to Serve the session or hand it to something that will.
type SessionHandler func(s *session.Session)

// Listener accepts inbound connections and promotes each one to an
// authenticated session via session.Accept.
type Listener struct {
	ln net.Listener

	selfID types.Identity
	trust  interfaces.TrustStore
	sink   interfaces.EventSink

	onSession SessionHandler
	autoTrust session.AutoTrustFunc

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// StartListener binds 0.0.0.0:port and begins accepting connections in the
// background. port == 0 selects DefaultPort. Each accepted connection that
// completes its handshake is handed to onSession on its own goroutine; the
// caller is expected to call s.Serve on it. Inbound peers not already in
// trust are rejected.
func StartListener(port int, selfID types.Identity, trust interfaces.TrustStore, sink interfaces.EventSink, onSession SessionHandler) (*Listener, error) {
	return startListener(port, selfID, trust, sink, onSession, nil)
}

// StartListenerAutoTrust is StartListener with a QR-pairing auto-trust
// fallback (spec §4.7): when an inbound initiator is not yet in trust,
// autoTrust decides whether to accept its self-attested key.
func StartListenerAutoTrust(port int, selfID types.Identity, trust interfaces.TrustStore, sink interfaces.EventSink, onSession SessionHandler, autoTrust session.AutoTrustFunc) (*Listener, error) {
	return startListener(port, selfID, trust, sink, onSession, autoTrust)
}

func startListener(port int, selfID types.Identity, trust interfaces.TrustStore, sink interfaces.EventSink, onSession SessionHandler, autoTrust session.AutoTrustFunc) (*Listener, error) {
	if port == 0 {
		port = DefaultPort
	}
	addr := net.JoinHostPort("0.0.0.0", strconv.Itoa(port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		if isAddrInUse(err) {
			return nil, fmt.Errorf("%w: %s", nodeerr.ErrAddressInUse, addr)
		}
		return nil, fmt.Errorf("%w: listen on %s: %v", nodeerr.ErrIO, addr, err)
	}

	l := &Listener{ln: ln, selfID: selfID, trust: trust, sink: sink, onSession: onSession, autoTrust: autoTrust}
	l.wg.Add(1)
	go l.acceptLoop()

	log.Infof("listening on %s", ln.Addr())
	return l, nil
}

// Addr reports the address the listener is bound to.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

func (l *Listener) acceptLoop() {
	defer l.wg.Done()
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if isClosedListener(err) {
				return
			}
			log.Warningf("accept error: %v", err)
			if l.sink != nil {
				l.sink.OnError(fmt.Sprintf("accept error: %v", err))
			}
			return
		}

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			l.handleConn(conn)
		}()
	}
}

func (l *Listener) handleConn(conn net.Conn) {
	var s *session.Session
	var err error
	if l.autoTrust != nil {
		s, err = session.AcceptAutoTrust(conn, l.selfID, l.trust, l.autoTrust)
	} else {
		s, err = session.Accept(conn, l.selfID, l.trust)
	}
	if err != nil {
		log.Warningf("handshake from %s failed: %v", conn.RemoteAddr(), err)
		conn.Close()
		if l.sink != nil {
			l.sink.OnError(fmt.Sprintf("handshake from %s failed: %v", conn.RemoteAddr(), err))
		}
		return
	}
	log.Infof("accepted session with %s (%s)", s.PeerID, conn.RemoteAddr())
	if l.onSession != nil {
		l.onSession(s)
	}
}

// Stop closes the listening socket and waits for all accept/handshake
// goroutines to finish before returning, guaranteeing the port is free by
// the time Stop returns (spec §5 "Resource lifetimes").
func (l *Listener) Stop() error {
	var err error
	l.stopOnce.Do(func() {
		err = l.ln.Close()
		l.wg.Wait()
	})
	return err
}

func isClosedListener(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}
