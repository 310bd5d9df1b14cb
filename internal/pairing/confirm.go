package pairing

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"openclipboard/internal/domain/types"
	"openclipboard/internal/nodeerr"
)

// DeriveConfirmationCode derives the 6-digit code shown to both users for
// out-of-band verification: decimal_truncate6(sha256(nonce || initiatorPeerID
// || responderPeerID)) (spec §4.7, §6).
func DeriveConfirmationCode(nonce [types.NonceSize]byte, initiatorPeerID, responderPeerID string) string {
	h := sha256.New()
	h.Write(nonce[:])
	h.Write([]byte(initiatorPeerID))
	h.Write([]byte(responderPeerID))
	sum := h.Sum(nil)
	n := binary.BigEndian.Uint32(sum[:4])
	return fmt.Sprintf("%06d", n%1_000_000)
}

// RespondToInit builds the responder's payload for the explicit two-string
// flow, reusing the initiator's nonce (spec §4.7 "Explicit (two-string)").
func RespondToInit(init types.PairingPayload, selfPeerID, name string, identityPK [32]byte, lanPort uint16, lanAddrs []string) types.PairingPayload {
	return types.PairingPayload{
		Version:    1,
		PeerID:     selfPeerID,
		Name:       name,
		IdentityPK: identityPK,
		LANPort:    lanPort,
		Nonce:      init.Nonce,
		LANAddrs:   lanAddrs,
	}
}

// Finalize checks that init and resp share the same nonce and returns the
// confirmation code both users should compare out of band. It does not
// write to the trust store: the caller must do that once the user confirms.
func Finalize(init, resp types.PairingPayload) (string, error) {
	if init.Nonce != resp.Nonce {
		return "", fmt.Errorf("%w: init/resp nonce mismatch", nodeerr.ErrNonceMismatch)
	}
	return DeriveConfirmationCode(init.Nonce, init.PeerID, resp.PeerID), nil
}
