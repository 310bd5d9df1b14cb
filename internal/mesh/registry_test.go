package mesh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"openclipboard/internal/domain/types"
)

type memTrust struct{ records map[string]types.TrustRecord }

func newMemTrust() *memTrust { return &memTrust{records: make(map[string]types.TrustRecord)} }
func (m *memTrust) Add(peerID, pkB64, name string) error {
	m.records[peerID] = types.TrustRecord{PeerID: peerID, IdentityPK: pkB64, DisplayName: name}
	return nil
}
func (m *memTrust) Get(peerID string) (types.TrustRecord, bool) { r, ok := m.records[peerID]; return r, ok }
func (m *memTrust) Remove(peerID string) bool                  { _, ok := m.records[peerID]; delete(m.records, peerID); return ok }
func (m *memTrust) List() []types.TrustRecord {
	out := make([]types.TrustRecord, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out
}
func (m *memTrust) Clear() { m.records = make(map[string]types.TrustRecord) }

func TestPeerRegistryBasic(t *testing.T) {
	trust := newMemTrust()
	require.NoError(t, trust.Add("p1", "", "Peer1"))
	require.NoError(t, trust.Add("p2", "", "Peer2"))

	reg := NewPeerRegistry()
	reg.LoadFromTrust(trust)
	require.Len(t, reg.ListAll(), 2)
	require.Empty(t, reg.ListOnline())

	reg.SetOnline("p1", "1.2.3.4:5000")
	require.Len(t, reg.ListOnline(), 1)
	e, ok := reg.Get("p1")
	require.True(t, ok)
	require.Equal(t, "1.2.3.4:5000", e.LastAddr)

	reg.SetOffline("p1")
	require.Empty(t, reg.ListOnline())
}
