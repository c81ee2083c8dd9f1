package serverd

import "sync"

// TermState is the server's termination flag, guarded by its own lock per
// spec.md §5 ("termination lock — guards the boolean termination flag.
// All readers/writers must acquire."). Once set it is never cleared.
type TermState struct {
	mu   sync.Mutex
	done bool
}

// Set marks the server as terminating.
func (t *TermState) Set() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done = true
}

// IsSet reports whether the server is terminating.
func (t *TermState) IsSet() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
