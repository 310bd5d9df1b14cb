package node

import (
	"encoding/base64"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"openclipboard/internal/clipboardcap"
	"openclipboard/internal/domain/types"
	"openclipboard/internal/history"
	"openclipboard/internal/nodeerr"
)

func publicKeyB64(n *Node) string {
	pk := n.IdentityPublic()
	return base64.StdEncoding.EncodeToString(pk[:])
}

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

func newTestNode(t *testing.T) *Node {
	t.Helper()
	dir := t.TempDir()
	n, err := New(filepath.Join(dir, "identity.json"), filepath.Join(dir, "trust.json"))
	require.NoError(t, err)
	return n
}

func TestNewGeneratesIdentityAndPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	idPath := filepath.Join(dir, "identity.json")
	trustPath := filepath.Join(dir, "trust.json")

	n1, err := New(idPath, trustPath)
	require.NoError(t, err)
	require.NotEmpty(t, n1.PeerID())

	n2, err := New(idPath, trustPath)
	require.NoError(t, err)
	require.Equal(t, n1.PeerID(), n2.PeerID())
}

func TestConnectAndSendTextRoundTrip(t *testing.T) {
	server := newTestNode(t)
	client := newTestNode(t)

	require.NoError(t, server.TrustStore().Add(client.PeerID(), publicKeyB64(client), "client"))
	require.NoError(t, client.TrustStore().Add(server.PeerID(), publicKeyB64(server), "server"))

	serverClip := clipboardcap.NewMock()
	serverSink := newRecordingSink()
	require.NoError(t, server.StartMesh(0, "server", serverSink, serverClip, history.New(50), 20*time.Millisecond))
	defer server.Stop()

	addr := server.listener.Addr().String()
	require.NoError(t, client.ConnectAndSendText(addr, "hello from client"))

	select {
	case text := <-serverSink.clipboardMsg:
		require.Equal(t, "hello from client", text)
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the clipboard text")
	}
}

func TestRecallFromHistoryReturnsNotFoundForUnknownID(t *testing.T) {
	n := newTestNode(t)
	hist := history.New(50)
	err := n.RecallFromHistory(hist, clipboardcap.NewMock(), "does-not-exist")
	require.ErrorIs(t, err, nodeerr.ErrNotFound)
}

func TestRecallFromHistoryWritesDirectlyWithoutMeshRunning(t *testing.T) {
	n := newTestNode(t)
	hist := history.New(50)
	id := hist.Record("recalled text", "local")

	clip := clipboardcap.NewMock()
	require.NoError(t, n.RecallFromHistory(hist, clip, id))
	text, ok, err := clip.ReadText()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "recalled text", text)
}

func TestGetClipboardHistoryFiltersByPeer(t *testing.T) {
	n := newTestNode(t)
	hist := history.New(50)
	hist.Record("from alice", "alice")
	hist.Record("from bob", "bob")

	require.Len(t, n.GetClipboardHistory(hist, 10), 2)
	aliceOnly := n.GetClipboardHistoryForPeer(hist, "alice", 10)
	require.Len(t, aliceOnly, 1)
	require.Equal(t, "from alice", aliceOnly[0].Content)
}

func TestListKnownPeersReportsTrustedPeerOfflineWithoutMesh(t *testing.T) {
	n := newTestNode(t)
	require.NoError(t, n.TrustStore().Add("other-peer-id", "", "Other"))

	peers := n.ListKnownPeers()
	require.Len(t, peers, 1)
	require.Equal(t, "other-peer-id", peers[0].PeerID)
	require.Equal(t, "Other", peers[0].DisplayName)
	require.Equal(t, types.PeerOffline, peers[0].Status)
}

func TestListKnownPeersReportsOnlineStatusFromRunningMesh(t *testing.T) {
	server := newTestNode(t)
	client := newTestNode(t)

	require.NoError(t, server.TrustStore().Add(client.PeerID(), publicKeyB64(client), "client"))
	require.NoError(t, client.TrustStore().Add(server.PeerID(), publicKeyB64(server), "server"))

	serverClip := clipboardcap.NewMock()
	serverSink := newRecordingSink()
	require.NoError(t, server.StartMesh(0, "server", serverSink, serverClip, history.New(50), 20*time.Millisecond))
	defer server.Stop()

	addr := server.listener.Addr().String()
	require.NoError(t, client.ConnectAndSendText(addr, "hi"))

	select {
	case <-serverSink.connected:
	case <-time.After(2 * time.Second):
		t.Fatal("server never reported the client as connected")
	}

	peers := server.ListKnownPeers()
	require.Len(t, peers, 1)
	require.Equal(t, client.PeerID(), peers[0].PeerID)
	require.Equal(t, types.PeerOnline, peers[0].Status)
}

func TestQRPairingListenerArmsAndDisarms(t *testing.T) {
	n := newTestNode(t)
	require.False(t, n.qr.Enabled())
	n.EnableQRPairingListener("some-peer", "some-name")
	require.True(t, n.qr.Enabled())
	n.DisableQRPairingListener()
	require.False(t, n.qr.Enabled())
}
