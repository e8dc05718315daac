package lsp

import (
	"fmt"
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/analysis"
	"github.com/CWBudde/go-nrs-lsp/internal/symbols"
)

// maxCompletionItems caps a single response; the list is then marked incomplete.
const maxCompletionItems = 200

// Completion handles the textDocument/completion request.
func Completion(context *glsp.Context, params *protocol.CompletionParams) (any, error) {
	startTime := time.Now()
	defer func() {
		log.Debugf("Completion took %v", time.Since(startTime))
	}()

	uri := params.TextDocument.URI
	position := params.Position

	log.Debugf("Completion request at %s line %d, character %d", uri, position.Line, position.Character)

	empty := &protocol.CompletionList{IsIncomplete: false, Items: []protocol.CompletionItem{}}

	srv, st, ok := snapshot("Completion", uri)
	if !ok {
		return empty, nil
	}
	offset, ok := offsetAt("Completion", st, position)
	if !ok {
		return empty, nil
	}

	candidates := st.Completion(offset, srv.Config().Completion)
	incomplete := len(candidates) > maxCompletionItems
	if incomplete {
		candidates = candidates[:maxCompletionItems]
	}

	items := make([]protocol.CompletionItem, 0, len(candidates))
	for i, c := range candidates {
		items = append(items, toCompletionItem(i, c))
	}

	log.Debugf("returning %d completion item(s) for %s", len(items), uri)
	return &protocol.CompletionList{IsIncomplete: incomplete, Items: items}, nil
}

func toCompletionItem(rank int, c analysis.CompletionItem) protocol.CompletionItem {
	kind := completionKind(c.Kind)
	item := protocol.CompletionItem{
		Label: c.Label,
		Kind:  &kind,
		// candidates arrive ranked; keep that order in the client
		SortText: stringPtr(fmt.Sprintf("%04d", rank)),
	}
	if c.Detail != "" {
		item.Detail = stringPtr(c.Detail)
	}
	return item
}

func completionKind(kind symbols.Kind) protocol.CompletionItemKind {
	switch kind {
	case symbols.KindFunction:
		return protocol.CompletionItemKindFunction
	case symbols.KindVariable, symbols.KindParameter:
		return protocol.CompletionItemKindVariable
	case symbols.KindStruct:
		return protocol.CompletionItemKindStruct
	case symbols.KindField:
		return protocol.CompletionItemKindField
	}
	return protocol.CompletionItemKindKeyword
}
