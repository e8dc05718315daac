package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/analysis"
	"github.com/CWBudde/go-nrs-lsp/internal/server"
	"github.com/CWBudde/go-nrs-lsp/internal/symbols"
)

// DocumentSymbol handles the textDocument/documentSymbol request.
// It returns a hierarchical list of symbols in the document for the outline view.
func DocumentSymbol(context *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	uri := params.TextDocument.URI
	log.Debugf("DocumentSymbol request for %s", uri)

	_, st, ok := snapshot("DocumentSymbol", uri)
	if !ok {
		return nil, nil
	}

	outline := st.Outline()
	result := make([]protocol.DocumentSymbol, 0, len(outline))
	for _, sym := range outline {
		result = append(result, toDocumentSymbol(st, sym))
	}

	log.Debugf("found %d top-level symbol(s) in %s", len(result), uri)
	return result, nil
}

func toDocumentSymbol(st *server.DocumentState, sym analysis.OutlineSymbol) protocol.DocumentSymbol {
	ds := protocol.DocumentSymbol{
		Name:           sym.Name,
		Kind:           symbolKind(sym.Kind),
		Range:          st.Text.Range(sym.Span),
		SelectionRange: st.Text.Range(sym.Selection),
	}
	if sym.Detail != "" {
		ds.Detail = stringPtr(sym.Detail)
	}
	for _, child := range sym.Children {
		ds.Children = append(ds.Children, toDocumentSymbol(st, child))
	}
	return ds
}

func symbolKind(kind symbols.Kind) protocol.SymbolKind {
	switch kind {
	case symbols.KindFunction:
		return protocol.SymbolKindFunction
	case symbols.KindStruct:
		return protocol.SymbolKindStruct
	case symbols.KindField:
		return protocol.SymbolKindField
	case symbols.KindParameter, symbols.KindVariable:
		return protocol.SymbolKindVariable
	}
	return protocol.SymbolKindNull
}
