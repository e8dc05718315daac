package lsp

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/server"
)

const testURI = protocol.DocumentUri("file:///tmp/test.nrs")

// setupServer installs a fresh server instance for the duration of the test.
func setupServer(t *testing.T) *server.Server {
	t.Helper()
	srv := server.New()
	SetServer(srv)
	t.Cleanup(func() { SetServer(nil) })
	return srv
}

// recorder captures notifications sent to the client.
type recorder struct {
	mu          sync.Mutex
	diagnostics []*protocol.PublishDiagnosticsParams
}

func (r *recorder) context() *glsp.Context {
	return &glsp.Context{
		Notify: func(method string, params any) {
			if method != protocol.ServerTextDocumentPublishDiagnostics {
				return
			}
			r.mu.Lock()
			defer r.mu.Unlock()
			r.diagnostics = append(r.diagnostics, params.(*protocol.PublishDiagnosticsParams))
		},
	}
}

func (r *recorder) last(t *testing.T) *protocol.PublishDiagnosticsParams {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.diagnostics, "no diagnostics published")
	return r.diagnostics[len(r.diagnostics)-1]
}

func openDocument(t *testing.T, ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	t.Helper()
	err := DidOpen(ctx, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        uri,
			LanguageID: "nrs",
			Version:    1,
			Text:       text,
		},
	})
	require.NoError(t, err)
}

func pos(line, character protocol.UInteger) protocol.Position {
	return protocol.Position{Line: line, Character: character}
}

func docPos(uri protocol.DocumentUri, p protocol.Position) protocol.TextDocumentPositionParams {
	return protocol.TextDocumentPositionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		Position:     p,
	}
}
