package types

// PairingPayload is exchanged once per peer pair to bootstrap mutual trust
// (spec §3 "PairingPayload", §4.7, §6 "Pairing URL").
type PairingPayload struct {
	Version     uint8
	PeerID      string
	Name        string
	IdentityPK  [32]byte
	LANPort     uint16
	Nonce       [32]byte
	LANAddrs    []string
}

// NonceSize is the fixed pairing-nonce length (spec §3).
const NonceSize = 32

// PairingScheme is the fixed URL scheme prefix (spec §4.7, §6).
const PairingScheme = "openclipboard://pair"
