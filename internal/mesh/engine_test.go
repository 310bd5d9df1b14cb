package mesh

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"openclipboard/internal/clipboardcap"
	"openclipboard/internal/history"
	"openclipboard/internal/identity"
	"openclipboard/internal/transport"
)

type recordingSink struct {
	connected    chan string
	clipboardMsg chan string
}

func newRecordingSink() *recordingSink {
	return &recordingSink{connected: make(chan string, 4), clipboardMsg: make(chan string, 4)}
}

func (s *recordingSink) OnClipboardText(peerID, text string, tsMS int64) { s.clipboardMsg <- text }
func (s *recordingSink) OnFileReceived(peerID, name, dataPath string)    {}
func (s *recordingSink) OnPeerConnected(peerID string)                  { s.connected <- peerID }
func (s *recordingSink) OnPeerDisconnected(peerID string)               {}
func (s *recordingSink) OnError(message string)                         {}

func TestEngineFansOutAcceptedAndAdoptedSessions(t *testing.T) {
	serverID, err := identity.Generate()
	require.NoError(t, err)
	clientID, err := identity.Generate()
	require.NoError(t, err)

	serverTrust := newMemTrust()
	require.NoError(t, serverTrust.Add(identity.PeerID(clientID), base64.StdEncoding.EncodeToString(clientID.Public[:]), "client"))
	clientTrust := newMemTrust()
	require.NoError(t, clientTrust.Add(identity.PeerID(serverID), base64.StdEncoding.EncodeToString(serverID.Public[:]), "server"))

	serverClip := clipboardcap.NewMock()
	serverSink := newRecordingSink()
	serverEngine := New(serverID, "server", serverTrust, serverClip, history.New(50), serverSink, 20*time.Millisecond)
	serverEngine.Start()
	defer serverEngine.Stop()

	ln, err := transport.StartListener(0, serverID, serverTrust, nil, serverEngine.AcceptSession)
	require.NoError(t, err)
	defer ln.Stop()

	clientClip := clipboardcap.NewMock()
	clientSink := newRecordingSink()
	clientEngine := New(clientID, "client", clientTrust, clientClip, history.New(50), clientSink, 20*time.Millisecond)
	clientEngine.Start()
	defer clientEngine.Stop()

	s, err := transport.Dial(ln.Addr().String(), clientID, clientTrust)
	require.NoError(t, err)
	clientEngine.adopt(s, ln.Addr().String())

	select {
	case <-serverSink.connected:
	case <-time.After(2 * time.Second):
		t.Fatal("server never observed the client connect")
	}

	require.NoError(t, clientClip.WriteText("shared via mesh"))

	select {
	case text := <-serverSink.clipboardMsg:
		require.Equal(t, "shared via mesh", text)
	case <-time.After(2 * time.Second):
		t.Fatal("server never received clipboard text from client")
	}

	got, ok, err := serverClip.ReadText()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "shared via mesh", got)
}

func TestOnPeerDiscoveredHonorsDialTieBreak(t *testing.T) {
	lowID, err := identity.Generate()
	require.NoError(t, err)
	highID, err := identity.Generate()
	require.NoError(t, err)
	lowPeer, highPeer := identity.PeerID(lowID), identity.PeerID(highID)
	if lowPeer > highPeer {
		lowID, highID = highID, lowID
		lowPeer, highPeer = highPeer, lowPeer
	}

	trust := newMemTrust()
	require.NoError(t, trust.Add(highPeer, "", "high"))

	e := New(lowID, "low", trust, clipboardcap.NewMock(), history.New(50), nil, time.Hour)
	defer e.Stop()
	e.OnPeerDiscovered(highPeer, "high", "127.0.0.1:1")
	e.mu.Lock()
	_, dialing := e.dialing[highPeer]
	e.mu.Unlock()
	require.True(t, dialing, "the lower peer id should dial the higher one")

	trust2 := newMemTrust()
	require.NoError(t, trust2.Add(lowPeer, "", "low"))
	e2 := New(highID, "high", trust2, clipboardcap.NewMock(), history.New(50), nil, time.Hour)
	defer e2.Stop()
	e2.OnPeerDiscovered(lowPeer, "low", "127.0.0.1:1")
	e2.mu.Lock()
	_, dialing2 := e2.dialing[lowPeer]
	e2.mu.Unlock()
	require.False(t, dialing2, "the higher peer id should wait to be dialed")
}
