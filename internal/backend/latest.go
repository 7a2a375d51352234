package backend

import "sync"

// Ticket identifies one issued request.
type Ticket struct {
	Seq uint64
	Key string
}

// Latest tracks the most recently issued request so that responses to superseded
// requests can be dropped (last-request-wins). The zero value is ready to use and
// safe for concurrent use.
type Latest struct {
	mu  sync.Mutex
	seq uint64
	key string
}

// Begin issues a ticket for a request with the given query key. Every ticket
// issued before it becomes stale.
func (l *Latest) Begin(key string) Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seq++
	l.key = key
	return Ticket{Seq: l.seq, Key: key}
}

// Accept reports whether t is still the newest ticket.
func (l *Latest) Accept(t Ticket) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return t.Seq != 0 && t.Seq == l.seq
}

// CurrentKey returns the key of the newest ticket.
func (l *Latest) CurrentKey() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.key
}
