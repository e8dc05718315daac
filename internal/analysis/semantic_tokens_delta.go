package analysis

import (
	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// DeltaThreshold defines the threshold for using delta vs full response.
// If the delta size is more than this share of the full size, return full instead.
const DeltaThreshold = 0.7

// SemanticTokensDeltaResult wraps either a delta or full response.
type SemanticTokensDeltaResult struct {
	IsDelta bool                          // true if delta, false if full
	Delta   *protocol.SemanticTokensDelta // set if IsDelta == true
	Full    *protocol.SemanticTokens      // set if IsDelta == false
}

// ComputeSemanticTokensDelta computes the delta between old and new tokens.
// If the delta is too large or oldTokens is empty, it returns a full response instead.
func ComputeSemanticTokensDelta(oldTokens, newTokens []SemanticToken, newResultID string) *SemanticTokensDeltaResult {
	if len(oldTokens) == 0 {
		log.Debug("no previous tokens, returning full semantic tokens")
		return fullResult(EncodeSemanticTokens(newTokens), newResultID)
	}

	oldEncoded := EncodeSemanticTokens(oldTokens)
	newEncoded := EncodeSemanticTokens(newTokens)

	edits := computeEdits(oldEncoded, newEncoded)

	deltaSize := calculateDeltaSize(edits)
	fullSize := len(newEncoded)
	if len(newTokens) > 0 && float64(deltaSize) > float64(fullSize)*DeltaThreshold {
		log.Debugf("delta too large (%d vs %d), returning full semantic tokens", deltaSize, fullSize)
		return fullResult(newEncoded, newResultID)
	}

	log.Debugf("returning delta with %d edits (delta size: %d, full size: %d)", len(edits), deltaSize, fullSize)
	return &SemanticTokensDeltaResult{
		IsDelta: true,
		Delta: &protocol.SemanticTokensDelta{
			ResultId: &newResultID,
			Edits:    edits,
		},
	}
}

func fullResult(data []uint32, resultID string) *SemanticTokensDeltaResult {
	return &SemanticTokensDeltaResult{
		Full: &protocol.SemanticTokens{
			ResultID: &resultID,
			Data:     data,
		},
	}
}

// computeEdits produces at most one edit replacing the region between the
// common prefix and the common suffix of the two encodings.
func computeEdits(oldEncoded, newEncoded []uint32) []protocol.SemanticTokensEdit {
	edits := []protocol.SemanticTokensEdit{}

	prefix := 0
	maxPrefix := min(len(oldEncoded), len(newEncoded))
	for prefix < maxPrefix && oldEncoded[prefix] == newEncoded[prefix] {
		prefix++
	}

	suffix := 0
	for suffix < len(oldEncoded)-prefix &&
		suffix < len(newEncoded)-prefix &&
		oldEncoded[len(oldEncoded)-1-suffix] == newEncoded[len(newEncoded)-1-suffix] {
		suffix++
	}

	if prefix+suffix >= max(len(oldEncoded), len(newEncoded)) {
		return edits
	}

	start, err1 := safecast.Conv[uint32](prefix)
	deleteCount, err2 := safecast.Conv[uint32](len(oldEncoded) - suffix - prefix)
	if err1 != nil || err2 != nil {
		return edits
	}

	return append(edits, protocol.SemanticTokensEdit{
		Start:       start,
		DeleteCount: deleteCount,
		Data:        newEncoded[prefix : len(newEncoded)-suffix],
	})
}

// calculateDeltaSize estimates the size of the delta response in uint32 values.
func calculateDeltaSize(edits []protocol.SemanticTokensEdit) int {
	size := 0
	for _, edit := range edits {
		// start and deleteCount plus the data
		size += 2 + len(edit.Data)
	}
	return size
}
