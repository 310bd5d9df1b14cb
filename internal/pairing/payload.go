// Package pairing implements the bootstrap trust exchange (C7, spec §4.7):
// building and parsing pairing payloads, deriving the human-verifiable
// confirmation code, and the QR auto-trust window.
package pairing

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"openclipboard/internal/domain/types"
	"openclipboard/internal/nodeerr"
)

const scheme = "openclipboard"

// CreatePayload builds a version-1 pairing payload for this node, with a
// freshly generated 32-byte nonce.
func CreatePayload(peerID, name string, identityPK [32]byte, lanPort uint16, lanAddrs []string) (types.PairingPayload, error) {
	var nonce [types.NonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return types.PairingPayload{}, fmt.Errorf("%w: generate pairing nonce", nodeerr.ErrIO)
	}
	return types.PairingPayload{
		Version:    1,
		PeerID:     peerID,
		Name:       name,
		IdentityPK: identityPK,
		LANPort:    lanPort,
		Nonce:      nonce,
		LANAddrs:   lanAddrs,
	}, nil
}

// ToQRString encodes a payload as the openclipboard://pair URL form
// (spec §6 "Pairing URL").
func ToQRString(p types.PairingPayload) string {
	q := url.Values{}
	q.Set("v", strconv.Itoa(int(p.Version)))
	q.Set("pid", p.PeerID)
	q.Set("n", base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString([]byte(p.Name)))
	q.Set("pk", base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(p.IdentityPK[:]))
	q.Set("p", strconv.Itoa(int(p.LANPort)))
	q.Set("nonce", base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(p.Nonce[:]))
	if len(p.LANAddrs) > 0 {
		q.Set("a", strings.Join(p.LANAddrs, ","))
	}
	return scheme + "://pair?" + q.Encode()
}

// FromQRString parses the openclipboard://pair URL form, tolerating
// surrounding whitespace. Fails with MalformedPairing on an unknown scheme,
// missing required fields, or an unsupported version.
func FromQRString(s string) (types.PairingPayload, error) {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil {
		return types.PairingPayload{}, fmt.Errorf("%w: %v", nodeerr.ErrMalformedPairing, err)
	}
	if u.Scheme != scheme || u.Host != "pair" {
		return types.PairingPayload{}, fmt.Errorf("%w: unrecognized scheme/host", nodeerr.ErrMalformedPairing)
	}

	q := u.Query()
	versionStr, pid, nameB64, pkB64, portStr, nonceB64 := q.Get("v"), q.Get("pid"), q.Get("n"), q.Get("pk"), q.Get("p"), q.Get("nonce")
	if pid == "" || nameB64 == "" || pkB64 == "" || portStr == "" || nonceB64 == "" {
		return types.PairingPayload{}, fmt.Errorf("%w: missing required field", nodeerr.ErrMalformedPairing)
	}

	version, err := strconv.Atoi(versionStr)
	if err != nil || version != 1 {
		return types.PairingPayload{}, fmt.Errorf("%w: unsupported version %q", nodeerr.ErrMalformedPairing, versionStr)
	}

	b64 := base64.URLEncoding.WithPadding(base64.NoPadding)
	nameBytes, err := b64.DecodeString(nameB64)
	if err != nil {
		return types.PairingPayload{}, fmt.Errorf("%w: decode name", nodeerr.ErrMalformedPairing)
	}
	pkBytes, err := b64.DecodeString(pkB64)
	if err != nil || len(pkBytes) != ed25519.PublicKeySize {
		return types.PairingPayload{}, fmt.Errorf("%w: decode identity key", nodeerr.ErrMalformedPairing)
	}
	nonceBytes, err := b64.DecodeString(nonceB64)
	if err != nil || len(nonceBytes) != types.NonceSize {
		return types.PairingPayload{}, fmt.Errorf("%w: decode nonce", nodeerr.ErrMalformedPairing)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 0 || port > 65535 {
		return types.PairingPayload{}, fmt.Errorf("%w: bad lan port %q", nodeerr.ErrMalformedPairing, portStr)
	}

	var addrs []string
	if a := q.Get("a"); a != "" {
		addrs = strings.Split(a, ",")
	}

	p := types.PairingPayload{
		Version:  uint8(version),
		PeerID:   pid,
		Name:     string(nameBytes),
		LANPort:  uint16(port),
		LANAddrs: addrs,
	}
	copy(p.IdentityPK[:], pkBytes)
	copy(p.Nonce[:], nonceBytes)
	return p, nil
}
