package chunker

import (
	"github.com/oukeidos/anytrans/internal/document"
	"github.com/oukeidos/anytrans/internal/token"
)

// Batch is a contiguous, ordered group of segments whose combined token
// estimate fits the per-request budget. Batches never split a segment.
type Batch struct {
	Index    int
	Segments []document.Segment
	// Tokens is the estimated token count of the batch contents.
	Tokens int
}

// SplitIntoBatches greedily packs consecutive segments into batches of at
// most maxTokens estimated tokens. A single segment that alone exceeds the
// budget is emitted as its own oversized batch; the API call for it may
// fail, which is reported rather than silently dropped. The split is
// deterministic for a given segment sequence and budget.
func SplitIntoBatches(segments []document.Segment, maxTokens int) []Batch {
	if maxTokens <= 0 {
		maxTokens = 1
	}

	var batches []Batch
	var current []document.Segment
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		batches = append(batches, Batch{
			Index:    len(batches),
			Segments: current,
			Tokens:   currentTokens,
		})
		current = nil
		currentTokens = 0
	}

	for _, seg := range segments {
		cost := token.EstimateLines(seg.Lines)
		if len(current) > 0 && currentTokens+cost > maxTokens {
			flush()
		}
		current = append(current, seg)
		currentTokens += cost
	}
	flush()

	return batches
}

// SegmentCount returns the total number of segments across batches.
func SegmentCount(batches []Batch) int {
	n := 0
	for _, b := range batches {
		n += len(b.Segments)
	}
	return n
}
