package mesh

import "time"

// Backoff is the exponential reconnect delay used by the dial loop: starts
// at 1s, doubles on every failure, caps at 30s, and resets once a handshake
// succeeds (spec §4.9 "back off exponentially ... starting at 1s, doubling
// to 30s cap").
type Backoff struct {
	curMS, maxMS int64
}

// NewBackoff builds a Backoff at its initial delay.
func NewBackoff() *Backoff {
	return &Backoff{curMS: 1_000, maxMS: 30_000}
}

// Reset returns the backoff to its initial delay.
func (b *Backoff) Reset() { b.curMS = 1_000 }

// Next returns the delay to wait before the next attempt and doubles it for
// next time, capped at maxMS.
func (b *Backoff) Next() time.Duration {
	d := time.Duration(b.curMS) * time.Millisecond
	b.curMS *= 2
	if b.curMS > b.maxMS {
		b.curMS = b.maxMS
	}
	return d
}
