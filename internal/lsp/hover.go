package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// Hover handles the textDocument/hover request.
// This provides type and symbol information when the user hovers over code.
func Hover(context *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := params.TextDocument.URI
	position := params.Position

	log.Debugf("Hover request at %s line %d, character %d", uri, position.Line, position.Character)

	_, st, ok := snapshot("Hover", uri)
	if !ok {
		return nil, nil
	}
	offset, ok := offsetAt("Hover", st, position)
	if !ok {
		return nil, nil
	}

	info, found := st.Hover(offset)
	if !found {
		return nil, nil
	}

	rng := st.Text.Range(info.Span)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: "```nrs\n" + info.Signature() + "\n```",
		},
		Range: &rng,
	}, nil
}
