package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/analysis"
	"github.com/CWBudde/go-nrs-lsp/internal/server"
)

// SemanticTokensFull handles textDocument/semanticTokens/full requests.
// The token set is cached under its result id for later delta requests.
func SemanticTokensFull(context *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	uri := params.TextDocument.URI
	log.Debugf("SemanticTokensFull request for %s", uri)

	srv, st, ok := snapshot("SemanticTokensFull", uri)
	if !ok {
		return nil, nil
	}

	tokens, resultID := cacheTokens(srv, st)
	log.Debugf("collected %d semantic token(s) for %s", len(tokens), uri)

	return &protocol.SemanticTokens{
		ResultID: &resultID,
		Data:     analysis.EncodeSemanticTokens(tokens),
	}, nil
}

// SemanticTokensFullDelta handles textDocument/semanticTokens/full/delta
// requests. It answers with edits against the previous result when that
// result is still cached, and with the full set otherwise.
func SemanticTokensFullDelta(context *glsp.Context, params *protocol.SemanticTokensDeltaParams) (any, error) {
	uri := params.TextDocument.URI
	log.Debugf("SemanticTokensFullDelta request for %s (previous %q)", uri, params.PreviousResultID)

	srv, st, ok := snapshot("SemanticTokensFullDelta", uri)
	if !ok {
		return nil, nil
	}

	cache := srv.SemanticTokensCache()
	previous, found := cache.Retrieve(uri, params.PreviousResultID)

	tokens, resultID := cacheTokens(srv, st)
	if !found {
		log.Debugf("previous result %q of %s not cached, returning full tokens", params.PreviousResultID, uri)
		return &protocol.SemanticTokens{
			ResultID: &resultID,
			Data:     analysis.EncodeSemanticTokens(tokens),
		}, nil
	}

	result := analysis.ComputeSemanticTokensDelta(previous.Tokens, tokens, resultID)
	if result.IsDelta {
		return result.Delta, nil
	}
	return result.Full, nil
}

// SemanticTokensRange handles textDocument/semanticTokens/range requests.
// Range results are not cached since deltas are only defined for full sets.
func SemanticTokensRange(context *glsp.Context, params *protocol.SemanticTokensRangeParams) (any, error) {
	uri := params.TextDocument.URI
	log.Debugf("SemanticTokensRange request for %s", uri)

	_, st, ok := snapshot("SemanticTokensRange", uri)
	if !ok {
		return nil, nil
	}

	span, err := st.Text.Span(params.Range)
	if err != nil {
		log.Debugf("invalid semantic tokens range for %s: %v", uri, err)
		return nil, nil
	}

	return &protocol.SemanticTokens{
		Data: analysis.EncodeSemanticTokens(st.SemanticTokens(&span)),
	}, nil
}

func cacheTokens(srv *server.Server, st *server.DocumentState) ([]analysis.SemanticToken, string) {
	tokens := st.SemanticTokens(nil)
	resultID := server.GenerateResultID(st)
	srv.SemanticTokensCache().Store(st.URI, resultID, tokens)
	return tokens, resultID
}
