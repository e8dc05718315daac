package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/server"
)

// DidOpen handles the textDocument/didOpen notification.
// This is sent when a document is opened in the editor.
func DidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	srv := serverInstance
	if srv == nil {
		log.Warning("server instance not available in DidOpen")
		return nil
	}

	doc := params.TextDocument
	log.Infof("document opened: %s (version %d, language %s, %d bytes)",
		doc.URI, doc.Version, doc.LanguageID, len(doc.Text))

	st, err := srv.Documents().Open(doc.URI, doc.Version, doc.Text)
	if err != nil {
		log.Errorf("opening %s: %v", doc.URI, err)
		return nil
	}
	PublishDiagnostics(context, st, srv.Config().MaxProblems)
	return nil
}

// DidChange handles the textDocument/didChange notification.
// The whole document is recompiled and its diagnostics republished.
func DidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	srv := serverInstance
	if srv == nil {
		log.Warning("server instance not available in DidChange")
		return nil
	}

	uri := params.TextDocument.URI
	version := params.TextDocument.Version
	log.Debugf("document changed: %s (version %d, %d change(s))", uri, version, len(params.ContentChanges))

	st, err := srv.Documents().Change(uri, version, params.ContentChanges)
	if err != nil {
		// a newer version or a failed compile leaves the published state as is
		log.Warningf("change of %s not applied: %v", uri, err)
		return nil
	}
	PublishDiagnostics(context, st, srv.Config().MaxProblems)
	return nil
}

// DidClose handles the textDocument/didClose notification.
// This is sent when a document is closed in the editor.
func DidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	srv := serverInstance
	if srv == nil {
		log.Warning("server instance not available in DidClose")
		return nil
	}

	uri := params.TextDocument.URI
	closeDocument(srv, uri)
	log.Infof("document closed: %s", uri)

	clearDiagnostics(context, uri)
	return nil
}

func closeDocument(srv *server.Server, uri protocol.DocumentUri) {
	srv.Documents().Delete(uri)
	srv.SemanticTokensCache().InvalidateDocument(uri)
}
