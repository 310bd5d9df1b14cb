package pairing

import (
	"fmt"
	"net"
	"strconv"

	"openclipboard/internal/domain/interfaces"
	"openclipboard/internal/domain/types"
	"openclipboard/internal/nodeerr"
	"openclipboard/internal/session"
	"openclipboard/internal/transport"
)

// PairViaQR parses a scanned QR string, trusts the peer it describes, then
// dials it (spec §4.7 "the scanning side parses the payload, writes the
// responder into its TrustStore, then dials the advertised LAN address").
// On successful handshake the remote side — if it has an auto-trust
// Listener armed for this node's PeerId — completes trust symmetrically.
func PairViaQR(qr string, selfID types.Identity, trust interfaces.TrustStore, addrOverride string) (*session.Session, error) {
	payload, err := FromQRString(qr)
	if err != nil {
		return nil, err
	}

	if err := ConfirmTrust(trust, payload); err != nil {
		return nil, err
	}

	addr := addrOverride
	if addr == "" {
		if len(payload.LANAddrs) == 0 {
			return nil, fmt.Errorf("%w: pairing payload for %s carries no LAN address", nodeerr.ErrMalformedPairing, payload.PeerID)
		}
		addr = net.JoinHostPort(payload.LANAddrs[0], strconv.Itoa(int(payload.LANPort)))
	}

	return transport.Dial(addr, selfID, trust)
}
