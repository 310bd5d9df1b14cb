// Package protocol implements the length-prefixed typed-frame wire codec (C3, spec §4.3).
package protocol

import (
	"encoding/binary"
	"fmt"

	"openclipboard/internal/domain/types"
	"openclipboard/internal/nodeerr"
)

// Encode serialises a Frame to its on-wire representation:
// ver(1) | type(1) | stream(4) | seq(8) | len(4) | payload.
func Encode(f types.Frame) []byte {
	buf := make([]byte, types.HeaderSize+len(f.Payload))
	buf[0] = f.Version
	buf[1] = byte(f.MsgType)
	binary.BigEndian.PutUint32(buf[2:6], uint32(f.StreamID))
	binary.BigEndian.PutUint64(buf[6:14], f.Seq)
	binary.BigEndian.PutUint32(buf[14:18], uint32(len(f.Payload)))
	copy(buf[18:], f.Payload)
	return buf
}

// Decode parses a Frame from bytes already known to hold exactly one frame
// (header + payload). It rejects version mismatches, oversized payloads, and
// truncated input (spec §4.3).
func Decode(raw []byte) (types.Frame, error) {
	if len(raw) < types.HeaderSize {
		return types.Frame{}, fmt.Errorf("%w: short header (%d bytes)", nodeerr.ErrInvalidFrame, len(raw))
	}

	version := raw[0]
	if version != types.FrameVersion {
		return types.Frame{}, fmt.Errorf("%w: unsupported version %d", nodeerr.ErrInvalidFrame, version)
	}

	msgType := types.MsgType(raw[1])
	streamID := types.StreamID(binary.BigEndian.Uint32(raw[2:6]))
	seq := binary.BigEndian.Uint64(raw[6:14])
	length := binary.BigEndian.Uint32(raw[14:18])

	if length > types.MaxFramePayload {
		return types.Frame{}, fmt.Errorf("%w: payload too large (%d bytes)", nodeerr.ErrInvalidFrame, length)
	}
	if uint32(len(raw)-types.HeaderSize) < length {
		return types.Frame{}, fmt.Errorf("%w: truncated payload", nodeerr.ErrInvalidFrame)
	}

	payload := make([]byte, length)
	copy(payload, raw[types.HeaderSize:types.HeaderSize+int(length)])

	return types.Frame{
		Version:  version,
		MsgType:  msgType,
		StreamID: streamID,
		Seq:      seq,
		Payload:  payload,
	}, nil
}

// PeekLength reads the length field out of a header-sized prefix without
// validating the rest, so a Reader can size its next allocation before the
// full frame has arrived on the wire.
func PeekLength(header []byte) (uint32, error) {
	if len(header) < types.HeaderSize {
		return 0, fmt.Errorf("%w: short header", nodeerr.ErrInvalidFrame)
	}
	return binary.BigEndian.Uint32(header[14:18]), nil
}
