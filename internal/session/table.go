package session

import (
	"sync"

	"github.com/leombro/labsol-13/internal/wire"
)

// Table maps an integer session handle to its live connection. The
// original implementation's registry "channel" field is literally a
// reused file descriptor — a waiting user's socket can be written to
// directly by whichever thread later pairs with them. Go's net.Conn is
// not an integer and isn't safely shared that way, so Table is the
// Go-native stand-in: a worker registers a waiting user's connection here
// under a fresh handle, the registry stores that handle as its channel, and
// whichever worker later consumes a waiting user's channel looks the
// connection back up through this table.
type Table struct {
	mu    sync.Mutex
	next  int
	conns map[int]wire.Conn
}

// NewTable builds an empty Table.
func NewTable() *Table {
	return &Table{conns: make(map[int]wire.Conn)}
}

// Register assigns a fresh handle to conn and returns it.
func (t *Table) Register(conn wire.Conn) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := t.next
	t.next++
	t.conns[h] = conn
	return h
}

// Lookup returns the connection registered under handle, if any.
func (t *Table) Lookup(handle int) (wire.Conn, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.conns[handle]
	return c, ok
}

// Remove forgets handle; it does not close the underlying connection.
func (t *Table) Remove(handle int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.conns, handle)
}
