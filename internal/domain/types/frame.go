package types

// MsgType enumerates the frame payload kinds (spec §4.3).
type MsgType uint8

const (
	MsgHello MsgType = 0x01
	MsgPing  MsgType = 0x02
	MsgPong  MsgType = 0x03

	MsgClipText MsgType = 0x10

	// Reserved file-transfer sub-protocol (stream 3); not required for v0.
	MsgFileOffer  MsgType = 0x20
	MsgFileAccept MsgType = 0x21
	MsgFileReject MsgType = 0x22
	MsgFileChunk  MsgType = 0x23
	MsgFileDone   MsgType = 0x24
)

// StreamID is the logical-stream multiplexing tag (spec §4.3).
type StreamID uint32

const (
	StreamControl   StreamID = 1
	StreamClipboard StreamID = 2
	StreamFile      StreamID = 3
)

// FrameVersion is the fixed wire version (spec §3 "Frame").
const FrameVersion uint8 = 0

// MaxFramePayload bounds a single frame's payload (spec §3, recommended 8 MiB).
const MaxFramePayload = 8 * 1024 * 1024

// Frame is the decoded wire unit (spec §3, §4.3): ver | type | stream | seq | len | payload.
type Frame struct {
	Version  uint8
	MsgType  MsgType
	StreamID StreamID
	Seq      uint64
	Payload  []byte
}

// HeaderSize is the fixed on-wire header length in bytes: 1+1+4+8+4.
const HeaderSize = 1 + 1 + 4 + 8 + 4

// HelloPayload is the JSON body of a HELLO frame (spec §4.3, §4.4).
//
// Unknown fields MUST be ignored on decode (spec §9 "HELLO schema extensibility").
type HelloPayload struct {
	PeerID string   `json:"peerId"`
	Name   string   `json:"name"`
	Caps   []string `json:"caps"`
}
