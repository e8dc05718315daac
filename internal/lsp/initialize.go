package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/server"
)

// Name and Version identify the server to clients.
const (
	Name    = "nrs-lsp"
	Version = "0.1.0"
)

// Initialize handles the LSP initialize request.
// This is the first request sent by the client and establishes the server capabilities.
func Initialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if srv := serverInstance; srv != nil {
		srv.SetClientCapabilities(&params.Capabilities)
		srv.SetWorkspaceFolders(workspaceFolders(params))
	}

	log.Infof("initializing %s %s", Name, Version)

	result := protocol.InitializeResult{
		Capabilities: capabilities(),
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: stringPtr(Version),
		},
	}
	return result, nil
}

func workspaceFolders(params *protocol.InitializeParams) []string {
	var folders []string
	for _, folder := range params.WorkspaceFolders {
		folders = append(folders, URIToPath(folder.URI))
	}
	if len(folders) == 0 && params.RootURI != nil {
		folders = append(folders, URIToPath(*params.RootURI))
	}
	return folders
}

func capabilities() protocol.ServerCapabilities {
	changeKind := protocol.TextDocumentSyncKindIncremental

	legend := protocol.SemanticTokensLegend{TokenTypes: []string{}, TokenModifiers: []string{}}
	if srv := serverInstance; srv != nil {
		legend = srv.SemanticTokensLegend().ToProtocolLegend()
	}

	return protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: boolPtr(true),
			Change:    &changeKind,
		},
		HoverProvider:          boolPtr(true),
		DefinitionProvider:     boolPtr(true),
		ReferencesProvider:     boolPtr(true),
		DocumentSymbolProvider: boolPtr(true),
		CompletionProvider: &protocol.CompletionOptions{
			TriggerCharacters: []string{"."},
			ResolveProvider:   boolPtr(false),
		},
		RenameProvider: &protocol.RenameOptions{
			PrepareProvider: boolPtr(true),
		},
		SemanticTokensProvider: &protocol.SemanticTokensOptions{
			Legend: legend,
			Range:  true,
			Full:   &protocol.SemanticDelta{Delta: boolPtr(true)},
		},
		CodeActionProvider: &protocol.CodeActionOptions{
			CodeActionKinds: []protocol.CodeActionKind{protocol.CodeActionKindQuickFix},
			ResolveProvider: boolPtr(false),
		},
	}
}

// Initialized handles the initialized notification from the client.
// This is sent after the initialize response, signaling that the client is ready.
func Initialized(context *glsp.Context, params *protocol.InitializedParams) error {
	srv := serverInstance
	if srv == nil {
		return nil
	}
	if err := srv.LoadWorkspaceConfig(); err != nil {
		log.Errorf("workspace config: %v", err)
	}
	return nil
}

// Shutdown handles the shutdown request.
// The client sends this to ask the server to shut down gracefully.
func Shutdown(context *glsp.Context) error {
	if srv := serverInstance; srv != nil {
		srv.SetShuttingDown()
		srv.SemanticTokensCache().Clear()
	}
	log.Info("shutting down")
	return nil
}

// SetTrace handles $/setTrace.
func SetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	srv := serverInstance
	if srv == nil {
		return nil
	}
	trace := string(params.Value)
	if err := srv.SetClientSetting("trace", func(cfg *server.Config) { cfg.Trace = trace }); err != nil {
		log.Warningf("$/setTrace: %v", err)
	}
	return nil
}
