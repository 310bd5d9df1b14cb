// Package domain re-exports the domain/types and domain/interfaces
// subpackages under one import path, the way the teacher's exports.go did.
package domain

import (
	"openclipboard/internal/domain/interfaces"
	"openclipboard/internal/domain/types"
)

type (
	Identity       = types.Identity
	IdentityFile   = types.IdentityFile
	TrustRecord    = types.TrustRecord
	Frame          = types.Frame
	MsgType        = types.MsgType
	StreamID       = types.StreamID
	HelloPayload   = types.HelloPayload
	PairingPayload = types.PairingPayload
	HistoryEntry   = types.HistoryEntry
	NearbyPeer     = types.NearbyPeer
	PeerStatus     = types.PeerStatus
	PeerEntry      = types.PeerEntry
)

const (
	MsgHello      = types.MsgHello
	MsgPing       = types.MsgPing
	MsgPong       = types.MsgPong
	MsgClipText   = types.MsgClipText
	MsgFileOffer  = types.MsgFileOffer
	MsgFileAccept = types.MsgFileAccept
	MsgFileReject = types.MsgFileReject
	MsgFileChunk  = types.MsgFileChunk
	MsgFileDone   = types.MsgFileDone

	StreamControl   = types.StreamControl
	StreamClipboard = types.StreamClipboard
	StreamFile      = types.StreamFile

	FrameVersion    = types.FrameVersion
	MaxFramePayload = types.MaxFramePayload
	HeaderSize      = types.HeaderSize

	NonceSize     = types.NonceSize
	PairingScheme = types.PairingScheme

	DefaultHistoryLimit = types.DefaultHistoryLimit
	MinHistoryLimit     = types.MinHistoryLimit
	MaxHistoryLimit     = types.MaxHistoryLimit

	PeerOffline = types.PeerOffline
	PeerOnline  = types.PeerOnline
)

type (
	IdentityStore        = interfaces.IdentityStore
	TrustStore            = interfaces.TrustStore
	HistoryStore          = interfaces.HistoryStore
	ClipboardCapability   = interfaces.ClipboardCapability
	EventSink             = interfaces.EventSink
	DiscoverySink         = interfaces.DiscoverySink
	ByteStream            = interfaces.ByteStream
)
