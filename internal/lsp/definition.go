package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Definition handles the textDocument/definition request.
// This provides "go-to definition" functionality, allowing users to navigate
// to where a symbol is defined. A miss returns nil, never an error.
func Definition(context *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	position := params.Position

	log.Debugf("Definition request at %s line %d, character %d", uri, position.Line, position.Character)

	_, st, ok := snapshot("Definition", uri)
	if !ok {
		return nil, nil
	}
	offset, ok := offsetAt("Definition", st, position)
	if !ok {
		return nil, nil
	}

	span, found := st.Definition(offset)
	if !found {
		log.Debugf("no definition at offset %d in %s", offset, uri)
		return nil, nil
	}

	loc := location(st, span)
	return &loc, nil
}
