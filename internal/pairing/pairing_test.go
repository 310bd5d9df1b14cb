package pairing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"openclipboard/internal/domain/types"
	"openclipboard/internal/nodeerr"
)

func TestPairingPayloadQRRoundTrip(t *testing.T) {
	payload, err := CreatePayload("peer-a", "Alice's Mac", [32]byte{1, 2, 3, 4}, 18455, []string{"192.168.1.5"})
	require.NoError(t, err)

	s := ToQRString(payload)
	decoded, err := FromQRString(s)
	require.NoError(t, err)
	require.Equal(t, payload, decoded)
}

func TestFromQRStringToleratesWhitespace(t *testing.T) {
	payload, err := CreatePayload("peer-a", "Alice's Mac", [32]byte{9, 9, 9}, 18455, nil)
	require.NoError(t, err)

	s := ToQRString(payload)
	decoded, err := FromQRString("  " + s + "\n\n")
	require.NoError(t, err)
	require.Equal(t, payload, decoded)
}

func TestFromQRStringRejectsUnknownScheme(t *testing.T) {
	_, err := FromQRString("https://pair?v=1")
	require.ErrorIs(t, err, nodeerr.ErrMalformedPairing)
}

func TestFromQRStringRejectsMissingFields(t *testing.T) {
	_, err := FromQRString("openclipboard://pair?v=1&pid=peer-a")
	require.ErrorIs(t, err, nodeerr.ErrMalformedPairing)
}

func TestFromQRStringRejectsWrongVersion(t *testing.T) {
	payload, err := CreatePayload("peer-a", "Alice", [32]byte{1}, 18455, nil)
	require.NoError(t, err)
	payload.Version = 2
	_, err = FromQRString(ToQRString(payload))
	require.ErrorIs(t, err, nodeerr.ErrMalformedPairing)
}

func TestDeriveConfirmationCodeDeterministic(t *testing.T) {
	var nonce [types.NonceSize]byte
	for i := range nonce {
		nonce[i] = 42
	}
	c1 := DeriveConfirmationCode(nonce, "peer-a", "peer-b")
	c2 := DeriveConfirmationCode(nonce, "peer-a", "peer-b")
	require.Equal(t, c1, c2)
	require.Len(t, c1, 6)
	for _, r := range c1 {
		require.True(t, r >= '0' && r <= '9')
	}
}

func TestDeriveConfirmationCodeChangesWithInputs(t *testing.T) {
	var nonce [types.NonceSize]byte
	for i := range nonce {
		nonce[i] = 42
	}
	c1 := DeriveConfirmationCode(nonce, "peer-a", "peer-b")
	c2 := DeriveConfirmationCode(nonce, "peer-a", "peer-c")
	require.NotEqual(t, c1, c2)
}

func TestExplicitPairingRoundTrip(t *testing.T) {
	var pkA, pkB [32]byte
	pkA[0], pkB[0] = 0x01, 0x02

	init, err := CreatePayload("peerA", "Alice", pkA, 18455, nil)
	require.NoError(t, err)

	resp := RespondToInit(init, "peerB", "Bob", pkB, 18455, nil)
	require.Equal(t, init.Nonce, resp.Nonce)

	codeA, err := Finalize(init, resp)
	require.NoError(t, err)
	codeB, err := Finalize(init, resp)
	require.NoError(t, err)
	require.Equal(t, codeA, codeB)
}

func TestFinalizeRejectsNonceMismatch(t *testing.T) {
	var pkA, pkB [32]byte
	init, err := CreatePayload("peerA", "Alice", pkA, 18455, nil)
	require.NoError(t, err)
	resp, err := CreatePayload("peerB", "Bob", pkB, 18455, nil)
	require.NoError(t, err)

	_, err = Finalize(init, resp)
	require.ErrorIs(t, err, nodeerr.ErrNonceMismatch)
}

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

func TestQRListenerAutoTrustsExpectedPeerOnce(t *testing.T) {
	trust := newMemTrust()
	l := &Listener{}
	l.ExpectPeer("peer-x", "Phone")
	require.True(t, l.Enabled())

	fn := l.AsAutoTrustFunc(trust)
	require.True(t, fn("peer-x", []byte{1, 2, 3}))
	require.False(t, l.Enabled())

	rec, ok := trust.Get("peer-x")
	require.True(t, ok)
	require.Equal(t, "Phone", rec.DisplayName)

	// Second call (simulating a repeat attempt) no longer matches: window closed.
	require.False(t, fn("peer-x", []byte{1, 2, 3}))
}

func TestQRListenerRejectsUnexpectedPeer(t *testing.T) {
	trust := newMemTrust()
	l := &Listener{}
	l.ExpectPeer("peer-x", "Phone")

	fn := l.AsAutoTrustFunc(trust)
	require.False(t, fn("peer-y", []byte{1, 2, 3}))
	_, ok := trust.Get("peer-y")
	require.False(t, ok)
}
