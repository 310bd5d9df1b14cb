package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/stretchr/testify/require"
)

func TestParseTXT(t *testing.T) {
	fields := parseTXT([]string{"peer_id=abc123", "name=My Phone", "port=18455"})
	require.Equal(t, "abc123", fields["peer_id"])
	require.Equal(t, "My Phone", fields["name"])
	require.Equal(t, "18455", fields["port"])
}

type recordingSink struct {
	discovered []string
	lost       []string
}

func (r *recordingSink) OnPeerDiscovered(peerID, name, addr string) {
	r.discovered = append(r.discovered, peerID)
}
func (r *recordingSink) OnPeerLost(peerID string) { r.lost = append(r.lost, peerID) }

func TestHandleEntrySuppressesSelf(t *testing.T) {
	d := New("self-peer-id")
	sink := &recordingSink{}

	d.handleEntry(&zeroconf.ServiceEntry{
		Port: 18455, Text: []string{"peer_id=self-peer-id", "name=Self", "port=18455"},
		AddrIPv4: []net.IP{net.ParseIP("10.0.0.5")},
	}, sink)

	require.Empty(t, sink.discovered)
}

func TestHandleEntryReportsOtherPeers(t *testing.T) {
	d := New("self-peer-id")
	sink := &recordingSink{}

	d.handleEntry(&zeroconf.ServiceEntry{
		Port: 18455, Text: []string{"peer_id=other-peer-id", "name=Other", "port=18455"},
		AddrIPv4: []net.IP{net.ParseIP("10.0.0.6")},
	}, sink)

	require.Equal(t, []string{"other-peer-id"}, sink.discovered)
}

func TestSweepExpiredReportsOnlyStalePeers(t *testing.T) {
	d := New("self-peer-id")
	sink := &recordingSink{}

	d.seen["stale-peer"] = time.Now().Add(-2 * peerTTL)
	d.seen["fresh-peer"] = time.Now()

	d.sweepExpired(sink)

	require.Equal(t, []string{"stale-peer"}, sink.lost)
	_, stillTracked := d.seen["fresh-peer"]
	require.True(t, stillTracked)
	_, stillTrackedStale := d.seen["stale-peer"]
	require.False(t, stillTrackedStale)
}

func TestHandleEntryRecordsSightingForExpiry(t *testing.T) {
	d := New("self-peer-id")
	sink := &recordingSink{}

	d.handleEntry(&zeroconf.ServiceEntry{
		Port: 18455, Text: []string{"peer_id=other-peer-id", "name=Other", "port=18455"},
		AddrIPv4: []net.IP{net.ParseIP("10.0.0.6")},
	}, sink)

	lastSeen, ok := d.seen["other-peer-id"]
	require.True(t, ok)
	require.WithinDuration(t, time.Now(), lastSeen, time.Second)
}
