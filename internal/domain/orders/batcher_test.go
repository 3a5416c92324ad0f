package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"salesdesk/internal/core/id"
)

func makeLines(n int) []Line {
	lines := make([]Line, n)
	for i := range lines {
		lines[i] = Line{
			LineNo:    i + 1,
			ProductID: id.New(),
			Quantity:  10_000, // 1.0
		}
	}
	return lines
}

func TestSplitLines_ExactMultiple(t *testing.T) {
	batches := SplitLines(makeLines(100), 50)

	assert.Len(t, batches, 2)
	assert.Len(t, batches[0], 50)
	assert.Len(t, batches[1], 50)
}

func TestSplitLines_Remainder(t *testing.T) {
	batches := SplitLines(makeLines(120), 50)

	assert.Len(t, batches, 3)
	assert.Len(t, batches[0], 50)
	assert.Len(t, batches[1], 50)
	assert.Len(t, batches[2], 20)
}

func TestSplitLines_SingleBatch(t *testing.T) {
	batches := SplitLines(makeLines(3), 50)

	assert.Len(t, batches, 1)
	assert.Len(t, batches[0], 3)
}

func TestSplitLines_Empty(t *testing.T) {
	assert.Nil(t, SplitLines(nil, 50))
	assert.Nil(t, SplitLines([]Line{}, 50))
}

func TestSplitLines_PreservesOrder(t *testing.T) {
	lines := makeLines(75)
	batches := SplitLines(lines, 30)

	flat := make([]Line, 0, len(lines))
	for _, b := range batches {
		flat = append(flat, b...)
	}

	assert.Equal(t, lines, flat)
}

func TestSplitLines_InvalidMaxFallsBackToDefault(t *testing.T) {
	batches := SplitLines(makeLines(DefaultMaxPerBatch+1), 0)

	assert.Len(t, batches, 2)
	assert.Len(t, batches[0], DefaultMaxPerBatch)
	assert.Len(t, batches[1], 1)
}

func TestJoinBatches_RoundTrip(t *testing.T) {
	lines := makeLines(120)
	chunks := SplitLines(lines, 50)

	orderID := id.New()
	batches := make([]LineBatch, 0, len(chunks))
	for i, chunk := range chunks {
		batches = append(batches, LineBatch{
			ID:          id.New(),
			OrderID:     orderID,
			BatchNumber: i + 1,
			Items:       chunk,
			Status:      BatchStatusCompleted,
		})
	}

	assert.Equal(t, lines, JoinBatches(batches))
}

func TestJoinBatches_Empty(t *testing.T) {
	assert.Nil(t, JoinBatches(nil))
	assert.Nil(t, JoinBatches([]LineBatch{{BatchNumber: 1}}))
}
