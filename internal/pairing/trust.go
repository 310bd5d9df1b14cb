package pairing

import (
	"encoding/base64"

	"openclipboard/internal/domain/interfaces"
	"openclipboard/internal/domain/types"
)

// ConfirmTrust writes the peer described by a pairing payload into trust.
// Used once the user has visually confirmed matching confirmation codes
// (explicit flow), and by PairViaQR on the scanning side of the QR flow.
func ConfirmTrust(trust interfaces.TrustStore, p types.PairingPayload) error {
	return trust.Add(p.PeerID, base64.StdEncoding.EncodeToString(p.IdentityPK[:]), p.Name)
}
