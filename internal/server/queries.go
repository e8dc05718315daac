package server

import (
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/analysis"
	"github.com/CWBudde/go-nrs-lsp/internal/source"
)

// Queries against a DocumentState only see that snapshot, so text and
// analysis always belong to the same version.

// Offset converts an editor position to a byte offset in this snapshot.
func (st *DocumentState) Offset(pos protocol.Position) (int, error) {
	return st.Text.OffsetOf(pos)
}

// Definition returns the defining span of the symbol under offset.
func (st *DocumentState) Definition(offset int) (source.Span, bool) {
	return analysis.Definition(st.Result, offset)
}

// References returns the uses of the symbol under offset, the definition
// first when includeSelf is set.
func (st *DocumentState) References(offset int, includeSelf bool) []source.Span {
	spans, _ := analysis.FindReferences(st.Result, offset, includeSelf)
	return spans
}

// Rename returns the edits renaming the symbol under offset.
func (st *DocumentState) Rename(offset int, newName string) ([]analysis.TextEdit, error) {
	return analysis.Rename(st.Result, offset, newName)
}

// PrepareRename returns the identifier span and name a rename would start from.
func (st *DocumentState) PrepareRename(offset int) (source.Span, string, error) {
	return analysis.PrepareRename(st.Result, offset)
}

// Completion returns the completion candidates at offset.
func (st *DocumentState) Completion(offset int, cfg CompletionConfig) []analysis.CompletionItem {
	return analysis.Complete(st.Result, offset, analysis.CompletionOptions{
		Permissive: cfg.Permissive,
		Keywords:   true,
	})
}

// Hover describes the symbol under offset.
func (st *DocumentState) Hover(offset int) (analysis.HoverInfo, bool) {
	return analysis.Hover(st.Result, offset)
}

// SemanticTokens returns the highlighted identifiers, restricted to rng when
// it is non-nil.
func (st *DocumentState) SemanticTokens(rng *source.Span) []analysis.SemanticToken {
	return analysis.CollectSemanticTokens(st.Result, st.Text, rng)
}

// Outline returns the document symbol tree.
func (st *DocumentState) Outline() []analysis.OutlineSymbol {
	return analysis.Outline(st.Result)
}

// Diagnostics returns the merged syntax and semantic diagnostics, at most
// limit of them when limit is positive.
func (st *DocumentState) Diagnostics(limit int) []analysis.Diagnostic {
	diags := st.Result.Diagnostics
	if limit > 0 && len(diags) > limit {
		return diags[:limit]
	}
	return diags
}

func (ds *DocumentStore) snapshot(uri protocol.DocumentUri) (*DocumentState, error) {
	st, ok := ds.Get(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}
	return st, nil
}

// Definition resolves offset in the current snapshot of uri.
func (ds *DocumentStore) Definition(uri protocol.DocumentUri, offset int) (source.Span, bool, error) {
	st, err := ds.snapshot(uri)
	if err != nil {
		return source.NoSpan, false, err
	}
	span, ok := st.Definition(offset)
	return span, ok, nil
}

// References finds the uses of the symbol at offset in uri.
func (ds *DocumentStore) References(uri protocol.DocumentUri, offset int, includeSelf bool) ([]source.Span, error) {
	st, err := ds.snapshot(uri)
	if err != nil {
		return nil, err
	}
	return st.References(offset, includeSelf), nil
}

// Rename computes the single-document edit set renaming the symbol at offset.
func (ds *DocumentStore) Rename(uri protocol.DocumentUri, offset int, newName string) ([]analysis.TextEdit, error) {
	st, err := ds.snapshot(uri)
	if err != nil {
		return nil, err
	}
	return st.Rename(offset, newName)
}

// Completion lists completion candidates at offset in uri.
func (ds *DocumentStore) Completion(uri protocol.DocumentUri, offset int, cfg CompletionConfig) ([]analysis.CompletionItem, error) {
	st, err := ds.snapshot(uri)
	if err != nil {
		return nil, err
	}
	return st.Completion(offset, cfg), nil
}

// SemanticTokens encodes the semantic tokens of uri, restricted to rng when
// it is non-nil.
func (ds *DocumentStore) SemanticTokens(uri protocol.DocumentUri, rng *source.Span) ([]uint32, error) {
	st, err := ds.snapshot(uri)
	if err != nil {
		return nil, err
	}
	return analysis.EncodeSemanticTokens(st.SemanticTokens(rng)), nil
}
