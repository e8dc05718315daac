package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// References handles the textDocument/references request. The declaration
// comes first when requested, then uses in source order.
func References(context *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	uri := params.TextDocument.URI
	position := params.Position

	log.Debugf("References request at %s line %d, character %d (includeDeclaration=%t)",
		uri, position.Line, position.Character, params.Context.IncludeDeclaration)

	_, st, ok := snapshot("References", uri)
	if !ok {
		return []protocol.Location{}, nil
	}
	offset, ok := offsetAt("References", st, position)
	if !ok {
		return []protocol.Location{}, nil
	}

	spans := st.References(offset, params.Context.IncludeDeclaration)
	locations := make([]protocol.Location, 0, len(spans))
	for _, span := range spans {
		locations = append(locations, location(st, span))
	}

	log.Debugf("found %d reference(s) in %s", len(locations), uri)
	return locations, nil
}
