package mesh

import "sync"

// EchoSuppressor tracks clipboard text this node just wrote because a peer
// sent it, so the clipboard poll loop doesn't turn right around and fan it
// back out as if it were a fresh local change (spec §4.9 "echo
// suppression").
type EchoSuppressor struct {
	mu     sync.Mutex
	cap    int
	recent []string
}

// NewEchoSuppressor builds a suppressor bounded to cap entries (minimum 1).
func NewEchoSuppressor(cap int) *EchoSuppressor {
	if cap < 1 {
		cap = 1
	}
	return &EchoSuppressor{cap: cap}
}

// NoteRemoteWrite records text as having just been written locally on a
// peer's behalf. Consecutive identical writes collapse to one entry.
func (s *EchoSuppressor) NoteRemoteWrite(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.recent); n > 0 && s.recent[n-1] == text {
		return
	}
	s.recent = append(s.recent, text)
	if len(s.recent) > s.cap {
		s.recent = s.recent[len(s.recent)-s.cap:]
	}
}

// ShouldIgnoreLocalChange reports whether text matches any recently-noted
// remote write.
func (s *EchoSuppressor) ShouldIgnoreLocalChange(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.recent {
		if t == text {
			return true
		}
	}
	return false
}
