package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tok(line, char, length, typ uint32) SemanticToken {
	return SemanticToken{Line: line, StartChar: char, Length: length, TokenType: typ}
}

func TestSemanticTokensDeltaEdits(t *testing.T) {
	base := []SemanticToken{tok(0, 0, 3, 0), tok(0, 4, 5, 1), tok(1, 0, 4, 2), tok(2, 0, 6, 3)}

	tests := []struct {
		name        string
		old, new    []SemanticToken
		wantEdits   int
		start       uint32
		deleteCount uint32
		dataLen     int
	}{
		{
			name:      "unchanged",
			old:       base,
			new:       base,
			wantEdits: 0,
		},
		{
			name:        "one token retyped",
			old:         base,
			new:         []SemanticToken{tok(0, 0, 3, 0), tok(0, 4, 5, 4), tok(1, 0, 4, 2), tok(2, 0, 6, 3)},
			wantEdits:   1,
			start:       8,
			deleteCount: 1,
			dataLen:     1,
		},
		{
			name:        "appended",
			old:         base[:2],
			new:         base,
			wantEdits:   1,
			start:       10,
			deleteCount: 0,
			dataLen:     10,
		},
		{
			name:        "removed from start",
			old:         base,
			new:         []SemanticToken{tok(1, 0, 4, 2), tok(2, 0, 6, 3)},
			wantEdits:   1,
			start:       0,
			deleteCount: 10,
			dataLen:     0,
		},
		{
			name:        "all removed",
			old:         base,
			new:         nil,
			wantEdits:   1,
			start:       0,
			deleteCount: 20,
			dataLen:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeSemanticTokensDelta(tt.old, tt.new, "rid-2")
			require.True(t, result.IsDelta)
			require.NotNil(t, result.Delta)
			assert.Equal(t, "rid-2", *result.Delta.ResultId)
			require.NotNil(t, result.Delta.Edits)
			require.Len(t, result.Delta.Edits, tt.wantEdits)
			if tt.wantEdits == 0 {
				return
			}

			edit := result.Delta.Edits[0]
			assert.Equal(t, tt.start, edit.Start)
			assert.Equal(t, tt.deleteCount, edit.DeleteCount)
			assert.Len(t, edit.Data, tt.dataLen)
		})
	}
}

func TestSemanticTokensDeltaAppliesToOldEncoding(t *testing.T) {
	old := []SemanticToken{tok(0, 0, 3, 0), tok(2, 0, 4, 2)}
	updated := []SemanticToken{tok(0, 0, 3, 0), tok(1, 2, 5, 1), tok(2, 0, 4, 2)}

	result := ComputeSemanticTokensDelta(old, updated, "rid")
	require.True(t, result.IsDelta)

	data := EncodeSemanticTokens(old)
	for _, e := range result.Delta.Edits {
		tail := append([]uint32{}, data[e.Start+e.DeleteCount:]...)
		data = append(append(data[:e.Start], e.Data...), tail...)
	}
	assert.Equal(t, EncodeSemanticTokens(updated), data)
}

func TestSemanticTokensDeltaFallsBackToFull(t *testing.T) {
	t.Run("no previous tokens", func(t *testing.T) {
		result := ComputeSemanticTokensDelta(nil, []SemanticToken{tok(0, 0, 1, 0), tok(0, 2, 1, 1)}, "rid")
		require.False(t, result.IsDelta)
		require.NotNil(t, result.Full)
		assert.Equal(t, "rid", *result.Full.ResultID)
		assert.Len(t, result.Full.Data, 10)
	})

	t.Run("both empty", func(t *testing.T) {
		result := ComputeSemanticTokensDelta(nil, nil, "rid")
		require.False(t, result.IsDelta)
		assert.NotNil(t, result.Full.Data)
		assert.Empty(t, result.Full.Data)
	})

	t.Run("everything changed", func(t *testing.T) {
		var old, updated []SemanticToken
		for i := range uint32(100) {
			old = append(old, tok(i, 0, 5, i%5))
			updated = append(updated, tok(i, 0, 5, (i+1)%5))
		}
		result := ComputeSemanticTokensDelta(old, updated, "rid")
		require.False(t, result.IsDelta)
		assert.Equal(t, EncodeSemanticTokens(updated), result.Full.Data)
	})
}

func TestSemanticTokensDeltaLargeDocumentSmallChange(t *testing.T) {
	old := make([]SemanticToken, 1000)
	for i := range old {
		old[i] = tok(uint32(i), 0, 5, uint32(i%5))
	}
	updated := append([]SemanticToken(nil), old...)
	updated[500].TokenType = 4 - updated[500].TokenType%5

	result := ComputeSemanticTokensDelta(old, updated, "rid")
	require.True(t, result.IsDelta)
	assert.Len(t, result.Delta.Edits, 1)
}
