package session

import (
	"crypto/cipher"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"openclipboard/internal/domain/interfaces"
	"openclipboard/internal/domain/types"
	"openclipboard/internal/identity"
	"openclipboard/internal/nodeerr"
	"openclipboard/internal/util/memzero"
)

// HandshakeTimeout bounds the HELLO exchange that follows key agreement:
// Serve closes a session whose peer HELLO has not arrived within it, and
// callers wait at most this long in Established. Dial and Accept set no
// deadline of their own on the key-agreement messages.
const HandshakeTimeout = 10 * time.Second

// handshakeMsg is exchanged in both directions. Ephemeral is a fresh X25519
// public key; Sig authenticates it (and, for the responder, binds it to the
// initiator's ephemeral too) under the sender's long-term Ed25519 identity
// key, giving the Noise-IK-class "static key known in advance, ephemeral key
// authenticated" property spec §4.4 calls for.
type handshakeMsg struct {
	PeerID     string `json:"peerId"`
	Ephemeral  []byte `json:"ephemeral"`
	Sig        []byte `json:"sig"`
	IdentityPK []byte `json:"identityPk"`
}

func encodeHandshake(m handshakeMsg) []byte {
	b, _ := json.Marshal(m)
	return b
}

func decodeHandshake(raw []byte) (handshakeMsg, error) {
	var m handshakeMsg
	if err := json.Unmarshal(raw, &m); err != nil {
		return handshakeMsg{}, fmt.Errorf("%w: malformed handshake message", nodeerr.ErrInvalidFrame)
	}
	if len(m.Ephemeral) != 32 {
		return handshakeMsg{}, fmt.Errorf("%w: bad ephemeral key length", nodeerr.ErrInvalidFrame)
	}
	return m, nil
}

func genEphemeral() (priv, pub [32]byte, err error) {
	if _, err = rand.Read(priv[:]); err != nil {
		return
	}
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	pb, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return
	}
	copy(pub[:], pb)
	return
}

// Dial performs the client-role (initiator) handshake over conn.
//
// Precondition: selfID's PeerId must have been trusted by the responder
// ahead of time (out of band, via pairing) — that is verified on the
// responder's side. The dialer additionally verifies the responder's static
// identity key matches its own TrustStore entry for the responder's claimed
// PeerId (spec §4.4 "preventing MitM even without pairing-time verification
// every session").
func Dial(conn interfaces.ByteStream, selfID types.Identity, trust interfaces.TrustStore) (*Session, error) {
	selfPeerID := identity.PeerID(selfID)

	ePriv, ePub, err := genEphemeral()
	if err != nil {
		return nil, fmt.Errorf("%w: generate ephemeral key", nodeerr.ErrIO)
	}
	defer memzero.Zero(ePriv[:])

	sig := ed25519.Sign(ed25519.PrivateKey(selfID.Private[:]), ePub[:])
	msg := handshakeMsg{PeerID: selfPeerID, Ephemeral: ePub[:], Sig: sig, IdentityPK: selfID.Public[:]}
	if err := writeSealed(conn, encodeHandshake(msg)); err != nil {
		return nil, err
	}

	raw, err := readSealed(conn)
	if err != nil {
		return nil, fmt.Errorf("%w: read responder handshake message", nodeerr.ErrIO)
	}
	resp, err := decodeHandshake(raw)
	if err != nil {
		return nil, err
	}

	rec, ok := trust.Get(resp.PeerID)
	if !ok {
		return nil, fmt.Errorf("%w: responder %s not in trust store", nodeerr.ErrUntrustedPeer, resp.PeerID)
	}
	responderPub, err := base64.StdEncoding.DecodeString(rec.IdentityPK)
	if err != nil || len(responderPub) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: corrupt trust record for %s", nodeerr.ErrUntrustedPeer, resp.PeerID)
	}

	signed := append(append([]byte{}, resp.Ephemeral...), ePub[:]...)
	if !ed25519.Verify(ed25519.PublicKey(responderPub), signed, resp.Sig) {
		return nil, fmt.Errorf("%w: responder signature invalid for %s", nodeerr.ErrUntrustedPeer, resp.PeerID)
	}

	var peerEphemeral [32]byte
	copy(peerEphemeral[:], resp.Ephemeral)
	shared, err := curve25519.X25519(ePriv[:], peerEphemeral[:])
	if err != nil {
		return nil, fmt.Errorf("%w: derive shared secret", nodeerr.ErrIO)
	}
	defer memzero.Zero(shared)

	sendAEAD, recvAEAD, err := deriveDirectionalKeys(shared, selfPeerID, resp.PeerID)
	if err != nil {
		return nil, err
	}

	return newSession(conn, selfPeerID, resp.PeerID, sendAEAD, recvAEAD), nil
}

// AutoTrustFunc decides, for an initiator not already present in the trust
// store, whether to accept and trust it anyway. peerID/identityPK have
// already been checked for internal consistency (peerID is genuinely
// derived from identityPK) by the time this is called. Implementations that
// decide to accept are responsible for writing the resulting trust record
// themselves (see pairing.Listener) — the handshake never writes trust on
// its own.
type AutoTrustFunc func(peerID string, identityPK []byte) bool

// Accept performs the server-role (responder) handshake over conn. The
// initiator must already be present in trust.
func Accept(conn interfaces.ByteStream, selfID types.Identity, trust interfaces.TrustStore) (*Session, error) {
	return acceptInternal(conn, selfID, trust, nil)
}

// AcceptAutoTrust is Accept, but falls back to autoTrust when the initiator
// is not yet trusted (spec §4.7 "QR auto-trust" pairing mode). autoTrust may
// be nil, in which case this behaves exactly like Accept.
func AcceptAutoTrust(conn interfaces.ByteStream, selfID types.Identity, trust interfaces.TrustStore, autoTrust AutoTrustFunc) (*Session, error) {
	return acceptInternal(conn, selfID, trust, autoTrust)
}

func acceptInternal(conn interfaces.ByteStream, selfID types.Identity, trust interfaces.TrustStore, autoTrust AutoTrustFunc) (*Session, error) {
	selfPeerID := identity.PeerID(selfID)

	raw, err := readSealed(conn)
	if err != nil {
		return nil, fmt.Errorf("%w: read initiator handshake message", nodeerr.ErrIO)
	}
	init, err := decodeHandshake(raw)
	if err != nil {
		return nil, err
	}

	initiatorPub, err := resolveInitiatorKey(init, trust, autoTrust)
	if err != nil {
		return nil, err
	}
	if !ed25519.Verify(ed25519.PublicKey(initiatorPub), init.Ephemeral, init.Sig) {
		return nil, fmt.Errorf("%w: initiator signature invalid for %s", nodeerr.ErrUntrustedPeer, init.PeerID)
	}

	ePriv, ePub, err := genEphemeral()
	if err != nil {
		return nil, fmt.Errorf("%w: generate ephemeral key", nodeerr.ErrIO)
	}
	defer memzero.Zero(ePriv[:])

	signed := append(append([]byte{}, ePub[:]...), init.Ephemeral...)
	sig := ed25519.Sign(ed25519.PrivateKey(selfID.Private[:]), signed)
	if err := writeSealed(conn, encodeHandshake(handshakeMsg{PeerID: selfPeerID, Ephemeral: ePub[:], Sig: sig})); err != nil {
		return nil, err
	}

	var peerEphemeral [32]byte
	copy(peerEphemeral[:], init.Ephemeral)
	shared, err := curve25519.X25519(ePriv[:], peerEphemeral[:])
	if err != nil {
		return nil, fmt.Errorf("%w: derive shared secret", nodeerr.ErrIO)
	}
	defer memzero.Zero(shared)

	sendAEAD, recvAEAD, err := deriveDirectionalKeys(shared, selfPeerID, init.PeerID)
	if err != nil {
		return nil, err
	}

	return newSession(conn, selfPeerID, init.PeerID, sendAEAD, recvAEAD), nil
}

// resolveInitiatorKey returns the Ed25519 public key to verify the
// initiator's handshake signature against: the key pinned in trust if the
// initiator is already known, or — only when autoTrust accepts it — the
// initiator's self-attested key carried on the wire.
func resolveInitiatorKey(init handshakeMsg, trust interfaces.TrustStore, autoTrust AutoTrustFunc) ([]byte, error) {
	if rec, ok := trust.Get(init.PeerID); ok {
		pub, err := base64.StdEncoding.DecodeString(rec.IdentityPK)
		if err != nil || len(pub) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("%w: corrupt trust record for %s", nodeerr.ErrUntrustedPeer, init.PeerID)
		}
		return pub, nil
	}

	if autoTrust == nil || len(init.IdentityPK) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: initiator %s not in trust store", nodeerr.ErrUntrustedPeer, init.PeerID)
	}
	if identity.PeerIDFromPublic(init.IdentityPK) != init.PeerID {
		return nil, fmt.Errorf("%w: initiator %s does not match its self-attested key", nodeerr.ErrUntrustedPeer, init.PeerID)
	}
	if !autoTrust(init.PeerID, init.IdentityPK) {
		return nil, fmt.Errorf("%w: initiator %s rejected by auto-trust", nodeerr.ErrUntrustedPeer, init.PeerID)
	}
	return init.IdentityPK, nil
}

// deriveDirectionalKeys derives independent send/receive AEAD keys from the
// shared DH secret using HKDF, labelled by direction so both endpoints agree
// on which derived key is "mine to send with" vs "mine to receive with"
// (spec §4.4: "each direction has an independent AEAD key").
func deriveDirectionalKeys(shared []byte, selfPeerID, peerPeerID string) (send, recv cipher.AEAD, err error) {
	selfToPeer, err := hkdfKey(shared, selfPeerID+"->"+peerPeerID)
	if err != nil {
		return nil, nil, err
	}
	peerToSelf, err := hkdfKey(shared, peerPeerID+"->"+selfPeerID)
	if err != nil {
		return nil, nil, err
	}

	send, err = chacha20poly1305.New(selfToPeer)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: build send AEAD", nodeerr.ErrIO)
	}
	recv, err = chacha20poly1305.New(peerToSelf)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: build recv AEAD", nodeerr.ErrIO)
	}
	return send, recv, nil
}

func hkdfKey(shared []byte, info string) ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	r := hkdf.New(sha256.New, shared, nil, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("%w: hkdf expand", nodeerr.ErrIO)
	}
	return key, nil
}
