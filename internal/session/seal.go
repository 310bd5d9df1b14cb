package session

import (
	"crypto/cipher"
	"encoding/binary"
	"fmt"

	"openclipboard/internal/nodeerr"
)

// sealFrame AEAD-seals plaintext (an entire encoded protocol.Frame: header +
// body) under aead, using seq as both the nonce source and the associated
// data, so a tampered or replayed sequence number is detected even though it
// also travels in cleartext ahead of the ciphertext (spec §4.4 "the frame
// sequence serving as the associated data").
func sealFrame(aead cipher.AEAD, seq uint64, plaintext []byte) []byte {
	nonce := make([]byte, aead.NonceSize())
	binary.BigEndian.PutUint64(nonce[len(nonce)-8:], seq)

	ad := make([]byte, 8)
	binary.BigEndian.PutUint64(ad, seq)

	sealed := aead.Seal(nil, nonce, plaintext, ad)

	out := make([]byte, 8+len(sealed))
	binary.BigEndian.PutUint64(out[:8], seq)
	copy(out[8:], sealed)
	return out
}

// openFrame reverses sealFrame, returning the sequence number it carried and
// the decrypted plaintext.
func openFrame(aead cipher.AEAD, raw []byte) (seq uint64, plaintext []byte, err error) {
	if len(raw) < 8 {
		return 0, nil, fmt.Errorf("%w: sealed envelope too short", nodeerr.ErrInvalidFrame)
	}
	seq = binary.BigEndian.Uint64(raw[:8])

	nonce := make([]byte, aead.NonceSize())
	binary.BigEndian.PutUint64(nonce[len(nonce)-8:], seq)

	plaintext, err = aead.Open(nil, nonce, raw[8:], raw[:8])
	if err != nil {
		return seq, nil, fmt.Errorf("%w: AEAD open failed", nodeerr.ErrInvalidFrame)
	}
	return seq, plaintext, nil
}
