package session

import (
	"encoding/binary"
	"fmt"
	"io"

	"openclipboard/internal/domain/interfaces"
	"openclipboard/internal/domain/types"
	"openclipboard/internal/nodeerr"
)

const maxSealedEnvelope = 1024 + types.MaxFramePayload

// writeSealed length-prefixes a sealed envelope with a 4-byte big-endian
// length so the reader on the other side knows how much ciphertext to read
// before it can even attempt to open it.
func writeSealed(w interfaces.ByteStream, sealed []byte) error {
	prefix := make([]byte, 4)
	binary.BigEndian.PutUint32(prefix, uint32(len(sealed)))
	if _, err := w.Write(prefix); err != nil {
		return fmt.Errorf("%w: write envelope length", nodeerr.ErrIO)
	}
	if _, err := w.Write(sealed); err != nil {
		return fmt.Errorf("%w: write envelope", nodeerr.ErrIO)
	}
	return nil
}

func readSealed(r interfaces.ByteStream) ([]byte, error) {
	prefix := make([]byte, 4)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(prefix)
	if length == 0 || int(length) > maxSealedEnvelope {
		return nil, fmt.Errorf("%w: envelope length %d out of bounds", nodeerr.ErrInvalidFrame, length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: read envelope", nodeerr.ErrIO)
	}
	return buf, nil
}
