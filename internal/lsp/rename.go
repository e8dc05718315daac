package lsp

import (
	"errors"
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/analysis"
	"github.com/CWBudde/go-nrs-lsp/internal/server"
)

// Rename handles the textDocument/rename request. All edits target the one
// document and are returned as a single versioned edit.
func Rename(context *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	uri := params.TextDocument.URI
	position := params.Position

	log.Debugf("Rename request at %s line %d, character %d (newName=%s)",
		uri, position.Line, position.Character, params.NewName)

	srv, st, ok := snapshot("Rename", uri)
	if srv == nil {
		return nil, errors.New("server instance not available")
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", server.ErrDocumentNotFound, uri)
	}
	offset, ok := offsetAt("Rename", st, position)
	if !ok {
		return nil, analysis.ErrNoRenameableSymbol
	}

	edits, err := st.Rename(offset, params.NewName)
	if err != nil {
		log.Debugf("rename at offset %d in %s rejected: %v", offset, uri, err)
		return nil, err
	}

	return buildWorkspaceEdit(st, edits), nil
}

// PrepareRename handles the textDocument/prepareRename request.
// It validates whether a symbol can be renamed and returns the range and placeholder text.
func PrepareRename(context *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
	uri := params.TextDocument.URI
	position := params.Position

	log.Debugf("PrepareRename request at %s line %d, character %d", uri, position.Line, position.Character)

	srv, st, ok := snapshot("PrepareRename", uri)
	if srv == nil {
		return nil, errors.New("server instance not available")
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", server.ErrDocumentNotFound, uri)
	}
	offset, ok := offsetAt("PrepareRename", st, position)
	if !ok {
		return nil, analysis.ErrNoRenameableSymbol
	}

	span, name, err := st.PrepareRename(offset)
	if err != nil {
		return nil, err
	}

	// Range with placeholder form of the result.
	return map[string]any{
		"range":       st.Text.Range(span),
		"placeholder": name,
	}, nil
}

// buildWorkspaceEdit wraps edits in a TextDocumentEdit carrying the version
// they were computed against, so clients reject them if the document moved on.
func buildWorkspaceEdit(st *server.DocumentState, edits []analysis.TextEdit) *protocol.WorkspaceEdit {
	textEdits := make([]any, 0, len(edits))
	for _, edit := range edits {
		textEdits = append(textEdits, protocol.TextEdit{
			Range:   st.Text.Range(edit.Span),
			NewText: edit.NewText,
		})
	}

	version := st.Version
	log.Debugf("built WorkspaceEdit with %d edit(s) for %s", len(textEdits), st.URI)

	return &protocol.WorkspaceEdit{
		DocumentChanges: []any{
			protocol.TextDocumentEdit{
				TextDocument: protocol.OptionalVersionedTextDocumentIdentifier{
					TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: st.URI},
					Version:                &version,
				},
				Edits: textEdits,
			},
		},
	}
}
