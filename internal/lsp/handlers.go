// Package lsp implements LSP protocol handlers. Handlers convert editor
// positions to byte offsets against one document snapshot and delegate to
// the analysis of that snapshot.
package lsp

import (
	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/server"
	"github.com/CWBudde/go-nrs-lsp/internal/source"
)

var log = commonlog.GetLogger("nrs-lsp.lsp")

var (
	// serverInstance holds the global server instance
	// This is set by SetServer and accessed by handlers
	serverInstance *server.Server
)

// SetServer sets the global server instance for handlers to access.
func SetServer(srv *server.Server) {
	serverInstance = srv
}

// NewHandler returns the protocol handler with every supported method wired.
func NewHandler() *protocol.Handler {
	return &protocol.Handler{
		Initialize:  Initialize,
		Initialized: Initialized,
		Shutdown:    Shutdown,
		SetTrace:    SetTrace,

		WorkspaceDidChangeConfiguration:    DidChangeConfiguration,
		WorkspaceDidChangeWorkspaceFolders: DidChangeWorkspaceFolders,

		TextDocumentDidOpen:   DidOpen,
		TextDocumentDidChange: DidChange,
		TextDocumentDidClose:  DidClose,

		TextDocumentDefinition:              Definition,
		TextDocumentReferences:              References,
		TextDocumentRename:                  Rename,
		TextDocumentPrepareRename:           PrepareRename,
		TextDocumentCompletion:              Completion,
		TextDocumentHover:                   Hover,
		TextDocumentCodeAction:              CodeAction,
		TextDocumentDocumentSymbol:          DocumentSymbol,
		TextDocumentSemanticTokensFull:      SemanticTokensFull,
		TextDocumentSemanticTokensFullDelta: SemanticTokensFullDelta,
		TextDocumentSemanticTokensRange:     SemanticTokensRange,
	}
}

// snapshot returns the current state of uri, logging why it is unavailable.
func snapshot(method string, uri protocol.DocumentUri) (*server.Server, *server.DocumentState, bool) {
	srv := serverInstance
	if srv == nil {
		log.Warningf("server instance not available in %s", method)
		return nil, nil, false
	}
	st, ok := srv.Documents().Get(uri)
	if !ok {
		log.Debugf("document not found for %s: %s", method, uri)
		return srv, nil, false
	}
	return srv, st, true
}

// offsetAt converts a position in st, logging invalid positions.
func offsetAt(method string, st *server.DocumentState, pos protocol.Position) (int, bool) {
	offset, err := st.Offset(pos)
	if err != nil {
		log.Debugf("invalid position %d:%d for %s in %s: %v", pos.Line, pos.Character, method, st.URI, err)
		return 0, false
	}
	return offset, true
}

func location(st *server.DocumentState, span source.Span) protocol.Location {
	return protocol.Location{
		URI:   st.URI,
		Range: st.Text.Range(span),
	}
}

func stringPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}
