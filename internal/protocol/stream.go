package protocol

import (
	"fmt"
	"io"

	"openclipboard/internal/domain/types"
	"openclipboard/internal/nodeerr"
)

// WriteFrame writes one frame to w as header+payload in a single call,
// relying on the underlying stream's ordering guarantee (spec §4.3,
// "transport-agnostic... any reliable ordered byte stream").
func WriteFrame(w io.Writer, f types.Frame) error {
	_, err := w.Write(Encode(f))
	if err != nil {
		return fmt.Errorf("%w: write frame", nodeerr.ErrIO)
	}
	return nil
}

// ReadFrame reads exactly one frame from r: first the fixed header, then
// exactly `length` payload bytes.
func ReadFrame(r io.Reader) (types.Frame, error) {
	header := make([]byte, types.HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return types.Frame{}, err
		}
		return types.Frame{}, fmt.Errorf("%w: read frame header", nodeerr.ErrIO)
	}

	length, err := PeekLength(header)
	if err != nil {
		return types.Frame{}, err
	}
	if length > types.MaxFramePayload {
		return types.Frame{}, fmt.Errorf("%w: payload too large (%d bytes)", nodeerr.ErrInvalidFrame, length)
	}

	buf := make([]byte, types.HeaderSize+int(length))
	copy(buf, header)
	if length > 0 {
		if _, err := io.ReadFull(r, buf[types.HeaderSize:]); err != nil {
			return types.Frame{}, fmt.Errorf("%w: read frame payload", nodeerr.ErrIO)
		}
	}

	return Decode(buf)
}
