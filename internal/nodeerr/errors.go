// Package nodeerr declares the sentinel error kinds surfaced to embedders (spec §7).
package nodeerr

import "errors"

// Each sentinel corresponds to one row of the §7 error-kind table. Callers
// match with errors.Is; wrapping with fmt.Errorf("...: %w", err) is expected
// to preserve the sentinel through component boundaries.
var (
	ErrIO                = errors.New("io error")
	ErrAddressInUse      = errors.New("address in use")
	ErrMalformedPairing  = errors.New("malformed pairing payload")
	ErrNonceMismatch     = errors.New("pairing nonce mismatch")
	ErrUntrustedPeer     = errors.New("handshake peer is not trusted")
	ErrIdentityMismatch  = errors.New("hello peer id does not match handshake key")
	ErrBadSequence       = errors.New("frame sequence replay or reordering")
	ErrInvalidFrame      = errors.New("invalid frame")
	ErrTimeout           = errors.New("timeout")
	ErrNotFound          = errors.New("not found")
	ErrCancelled         = errors.New("operation cancelled")
	ErrCorruptFile       = errors.New("corrupt file")
)
