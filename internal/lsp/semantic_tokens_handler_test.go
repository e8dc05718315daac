package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/analysis"
)

func fullTokens(t *testing.T) *protocol.SemanticTokens {
	t.Helper()
	tokens, err := SemanticTokensFull(nil, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	require.NotNil(t, tokens)
	return tokens
}

func changeDocument(t *testing.T, version protocol.Integer, text string) {
	t.Helper()
	err := DidChange(nil, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: testURI},
			Version:                version,
		},
		ContentChanges: []any{protocol.TextDocumentContentChangeEventWhole{Text: text}},
	})
	require.NoError(t, err)
}

func TestSemanticTokensFullHandler(t *testing.T) {
	srv := setupServer(t)
	openDocument(t, nil, testURI, "fn test() {\n  let a = 3;\n  a\n}")

	tokens := fullTokens(t)
	require.NotNil(t, tokens.ResultID)
	assert.Equal(t, []uint32{
		0, 3, 4, analysis.TokenFunction, 0,
		1, 6, 1, analysis.TokenVariable, 0,
		1, 2, 1, analysis.TokenVariable, 0,
	}, tokens.Data)
	assert.Equal(t, *tokens.ResultID, srv.SemanticTokensCache().GetLatestResultID(testURI))

	again := fullTokens(t)
	assert.Equal(t, tokens.Data, again.Data, "no edit, identical output")
	assert.Equal(t, *tokens.ResultID, *again.ResultID)
}

func TestSemanticTokensFullDeltaHandler(t *testing.T) {
	setupServer(t)
	openDocument(t, nil, testURI, "fn test() {\n  let a = 3;\n  a\n}")
	previous := fullTokens(t)

	changeDocument(t, 2, "fn test() {\n  let a = 3;\n  let b = a;\n  b\n}")

	result, err := SemanticTokensFullDelta(nil, &protocol.SemanticTokensDeltaParams{
		TextDocument:     protocol.TextDocumentIdentifier{URI: testURI},
		PreviousResultID: *previous.ResultID,
	})
	require.NoError(t, err)

	current := fullTokens(t)
	var applied []uint32
	switch r := result.(type) {
	case *protocol.SemanticTokensDelta:
		require.NotNil(t, r.ResultId)
		assert.Equal(t, *current.ResultID, *r.ResultId)
		applied = append([]uint32(nil), previous.Data...)
		for _, e := range r.Edits {
			tail := append([]uint32(nil), applied[e.Start+e.DeleteCount:]...)
			applied = append(append(applied[:e.Start], e.Data...), tail...)
		}
	case *protocol.SemanticTokens:
		applied = r.Data
	default:
		t.Fatalf("unexpected result %T", result)
	}
	assert.Equal(t, current.Data, applied)
}

func TestSemanticTokensFullDeltaUnknownPrevious(t *testing.T) {
	setupServer(t)
	openDocument(t, nil, testURI, "fn test() { 1 }")

	result, err := SemanticTokensFullDelta(nil, &protocol.SemanticTokensDeltaParams{
		TextDocument:     protocol.TextDocumentIdentifier{URI: testURI},
		PreviousResultID: "stale",
	})
	require.NoError(t, err)
	full, ok := result.(*protocol.SemanticTokens)
	require.True(t, ok, "got %T", result)
	assert.Equal(t, []uint32{0, 3, 4, analysis.TokenFunction, 0}, full.Data)
}

func TestSemanticTokensRangeHandler(t *testing.T) {
	setupServer(t)
	openDocument(t, nil, testURI, "fn f() { 1 }\nfn g() { f() }\nfn h() { g() }")

	result, err := SemanticTokensRange(nil, &protocol.SemanticTokensRangeParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
		Range:        rangeOf(1, 0, 2, 0),
	})
	require.NoError(t, err)
	tokens, ok := result.(*protocol.SemanticTokens)
	require.True(t, ok)
	assert.Equal(t, []uint32{
		1, 3, 1, analysis.TokenFunction, 0,
		0, 6, 1, analysis.TokenFunction, 0,
	}, tokens.Data)
}

func TestSemanticTokensUnknownDocument(t *testing.T) {
	setupServer(t)

	tokens, err := SemanticTokensFull(nil, &protocol.SemanticTokensParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: testURI},
	})
	require.NoError(t, err)
	assert.Nil(t, tokens)
}
