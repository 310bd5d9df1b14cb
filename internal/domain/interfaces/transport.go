package interfaces

import "io"

// ByteStream is the minimal reliable ordered byte stream the framing codec
// and session handshake run over (spec §4.3 "transport-agnostic"). A
// net.Conn satisfies it directly.
type ByteStream interface {
	io.Reader
	io.Writer
	io.Closer
}
