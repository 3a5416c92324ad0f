package orders

import (
	"sync"

	"salesdesk/internal/core/id"
	"salesdesk/internal/domain/catalogs/store"
	"salesdesk/pkg/invoiceseq"
)

// The store catalog serves next-number previews through the mirror.
var _ store.CounterObserver = (*CounterMirror)(nil)

// CounterMirror is an in-memory, best-effort cache of the last known
// invoice counter per store. It serves instant "preview next number"
// queries without a database round trip. Never authoritative: the commit
// transaction always re-reads the real counter.
type CounterMirror struct {
	mu     sync.RWMutex
	tokens map[id.ID]invoiceseq.Token
}

// NewCounterMirror creates an empty mirror.
func NewCounterMirror() *CounterMirror {
	return &CounterMirror{
		tokens: make(map[id.ID]invoiceseq.Token),
	}
}

// Observe records a counter value seen in the database. The cache only
// moves forward: a stale observation from a slow reader never rolls an
// already observed value back.
func (m *CounterMirror) Observe(storeID id.ID, token invoiceseq.Token) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.tokens[storeID]
	if !ok || invoiceseq.Less(cur, token) {
		m.tokens[storeID] = token
	}
}

// Peek returns the cached counter value, if any.
func (m *CounterMirror) Peek(storeID id.ID) (invoiceseq.Token, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tok, ok := m.tokens[storeID]
	return tok, ok
}

// PreviewNext projects the next invoice number from the cache.
func (m *CounterMirror) PreviewNext(storeID id.ID) (invoiceseq.Token, bool) {
	tok, ok := m.Peek(storeID)
	if !ok {
		return "", false
	}
	return invoiceseq.Next(tok), true
}

// Invalidate drops the cached value for a store (after catalog edits that
// may have changed the prefix).
func (m *CounterMirror) Invalidate(storeID id.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.tokens, storeID)
}
