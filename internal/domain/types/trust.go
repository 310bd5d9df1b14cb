package types

import "time"

// TrustRecord is one entry in the TrustStore (spec §3 "TrustRecord").
type TrustRecord struct {
	PeerID      string    `json:"peerId"`
	IdentityPK  string    `json:"identityPk"` // base64 Ed25519 public key
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}
