package orders

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdesk/internal/core/id"
	"salesdesk/pkg/invoiceseq"
)

func TestCounterMirror_ObserveAndPeek(t *testing.T) {
	m := NewCounterMirror()
	storeID := id.New()

	_, ok := m.Peek(storeID)
	assert.False(t, ok)

	m.Observe(storeID, invoiceseq.Token("DT-000005"))

	tok, ok := m.Peek(storeID)
	require.True(t, ok)
	assert.Equal(t, invoiceseq.Token("DT-000005"), tok)
}

func TestCounterMirror_OnlyMovesForward(t *testing.T) {
	m := NewCounterMirror()
	storeID := id.New()

	m.Observe(storeID, invoiceseq.Token("DT-000010"))
	m.Observe(storeID, invoiceseq.Token("DT-000007")) // stale reader

	tok, ok := m.Peek(storeID)
	require.True(t, ok)
	assert.Equal(t, invoiceseq.Token("DT-000010"), tok)
}

func TestCounterMirror_PreviewNext(t *testing.T) {
	m := NewCounterMirror()
	storeID := id.New()

	_, ok := m.PreviewNext(storeID)
	assert.False(t, ok)

	m.Observe(storeID, invoiceseq.Token("DT-000010"))

	next, ok := m.PreviewNext(storeID)
	require.True(t, ok)
	assert.Equal(t, invoiceseq.Token("DT-000011"), next)
}

func TestCounterMirror_Invalidate(t *testing.T) {
	m := NewCounterMirror()
	storeID := id.New()

	m.Observe(storeID, invoiceseq.Token("DT-000003"))
	m.Invalidate(storeID)

	_, ok := m.Peek(storeID)
	assert.False(t, ok)
}

func TestCounterMirror_IndependentStores(t *testing.T) {
	m := NewCounterMirror()
	a, b := id.New(), id.New()

	m.Observe(a, invoiceseq.Token("A-000001"))
	m.Observe(b, invoiceseq.Token("B-000009"))

	tokA, _ := m.Peek(a)
	tokB, _ := m.Peek(b)
	assert.Equal(t, invoiceseq.Token("A-000001"), tokA)
	assert.Equal(t, invoiceseq.Token("B-000009"), tokB)
}

func TestCounterMirror_ConcurrentObserve(t *testing.T) {
	m := NewCounterMirror()
	storeID := id.New()

	var wg sync.WaitGroup
	tok := invoiceseq.New("")
	for i := 0; i < 100; i++ {
		tok = invoiceseq.Next(tok)
		wg.Add(1)
		go func(tok invoiceseq.Token) {
			defer wg.Done()
			m.Observe(storeID, tok)
		}(tok)
	}
	wg.Wait()

	got, ok := m.Peek(storeID)
	require.True(t, ok)
	assert.Equal(t, invoiceseq.Token("000100"), got)
}
