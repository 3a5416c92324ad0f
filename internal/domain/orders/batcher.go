package orders

// DefaultMaxPerBatch bounds the number of line items stored in one batch
// row. Keeps each jsonb payload comfortably under storage ceilings.
const DefaultMaxPerBatch = 50

// SplitLines splits lines into order-preserving chunks of at most
// maxPerBatch items. Batch k (1-based) holds lines[(k-1)*max : k*max].
// An empty line list yields zero batches; no empty batch is ever produced.
// Pure function: the input slice is shared, not copied, but never mutated.
func SplitLines(lines []Line, maxPerBatch int) [][]Line {
	if maxPerBatch <= 0 {
		maxPerBatch = DefaultMaxPerBatch
	}
	if len(lines) == 0 {
		return nil
	}

	batches := make([][]Line, 0, (len(lines)+maxPerBatch-1)/maxPerBatch)
	for start := 0; start < len(lines); start += maxPerBatch {
		end := start + maxPerBatch
		if end > len(lines) {
			end = len(lines)
		}
		batches = append(batches, lines[start:end])
	}
	return batches
}

// JoinBatches reassembles the original line list from batch records.
// Batches must already be sorted by BatchNumber.
func JoinBatches(batches []LineBatch) []Line {
	total := 0
	for _, b := range batches {
		total += len(b.Items)
	}
	if total == 0 {
		return nil
	}

	lines := make([]Line, 0, total)
	for _, b := range batches {
		lines = append(lines, b.Items...)
	}
	return lines
}
