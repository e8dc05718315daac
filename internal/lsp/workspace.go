package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/server"
)

// settingsNamespace is the key clients nest server settings under.
const settingsNamespace = "nrs-lsp"

// DidChangeConfiguration handles workspace configuration changes from the client.
// Settings are expected under the "nrs-lsp" key:
//
//	{"nrs-lsp": {"maxProblems": 100, "trace": "off", "completion": {"permissive": false}}}
func DidChangeConfiguration(context *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	srv := serverInstance
	if srv == nil {
		log.Warning("server instance not available in DidChangeConfiguration")
		return nil
	}

	settings, ok := params.Settings.(map[string]any)
	if !ok {
		return nil
	}
	ours, ok := settings[settingsNamespace].(map[string]any)
	if !ok {
		return nil
	}

	applySettings(srv, ours)
	log.Infof("configuration updated: %+v", srv.Config())

	// MaxProblems may have changed; republish for every open document.
	for _, uri := range srv.Documents().List() {
		if st, ok := srv.Documents().Get(uri); ok {
			PublishDiagnostics(context, st, srv.Config().MaxProblems)
		}
	}
	return nil
}

// applySettings records the recognised keys of a JSON settings object as
// client settings. Values of the wrong type, or that the config rejects, are
// ignored.
func applySettings(srv *server.Server, settings map[string]any) {
	set := func(name string, change func(*server.Config)) {
		if err := srv.SetClientSetting(name, change); err != nil {
			log.Warningf("ignoring client setting: %v", err)
		}
	}

	if maxProblems, ok := settings["maxProblems"].(float64); ok {
		set("maxProblems", func(c *server.Config) { c.MaxProblems = int(maxProblems) })
	}
	if trace, ok := settings["trace"].(string); ok {
		set("trace", func(c *server.Config) { c.Trace = trace })
	}
	if completion, ok := settings["completion"].(map[string]any); ok {
		if permissive, ok := completion["permissive"].(bool); ok {
			set("completion.permissive", func(c *server.Config) { c.Completion.Permissive = permissive })
		}
	}
}

// DidChangeWorkspaceFolders handles changes to workspace folders.
// The config file is looked up again in the new folder set.
func DidChangeWorkspaceFolders(context *glsp.Context, params *protocol.DidChangeWorkspaceFoldersParams) error {
	srv := serverInstance
	if srv == nil {
		log.Warning("server instance not available in DidChangeWorkspaceFolders")
		return nil
	}

	removed := make(map[string]bool)
	for _, folder := range params.Event.Removed {
		log.Infof("workspace folder removed: %s (%s)", folder.Name, folder.URI)
		removed[URIToPath(folder.URI)] = true
	}

	var folders []string
	for _, folder := range srv.GetWorkspaceFolders() {
		if !removed[folder] {
			folders = append(folders, folder)
		}
	}
	for _, folder := range params.Event.Added {
		log.Infof("workspace folder added: %s (%s)", folder.Name, folder.URI)
		folders = append(folders, URIToPath(folder.URI))
	}
	srv.SetWorkspaceFolders(folders)

	if err := srv.LoadWorkspaceConfig(); err != nil {
		log.Errorf("workspace config: %v", err)
	}
	return nil
}
