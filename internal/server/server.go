// Package server provides the core LSP server state and management.
package server

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

var log = commonlog.GetLogger("nrs-lsp.server")

// Server holds the state of the LSP server.
type Server struct {
	// documents stores all open documents
	documents *DocumentStore

	// workspaceFolders stores the workspace folders from the client
	workspaceFolders []string

	// clientCapabilities stores the client's capabilities from the initialize request
	clientCapabilities *protocol.ClientCapabilities

	// fileConfig is the defaults plus the workspace config file
	fileConfig Config

	// clientSettings are the settings pushed by the client, keyed by name.
	// They are applied over fileConfig.
	clientSettings map[string]func(*Config)

	// config is the effective configuration
	config Config

	// configWatcher reloads the workspace config file, nil when there is none
	configWatcher *ConfigWatcher

	semanticTokensLegend *SemanticTokensLegend

	// semanticTokensCache stores the last token set per document for delta requests
	semanticTokensCache *SemanticTokensCache

	// mutex protects server state
	mu sync.RWMutex

	shuttingDown bool
}

// New creates a new LSP server instance.
func New() *Server {
	return &Server{
		documents:            NewDocumentStore(),
		semanticTokensLegend: NewSemanticTokensLegend(),
		semanticTokensCache:  NewSemanticTokensCache(),
		fileConfig:           DefaultConfig(),
		clientSettings:       make(map[string]func(*Config)),
		config:               DefaultConfig(),
	}
}

// IsShuttingDown returns true if the server is shutting down.
func (s *Server) IsShuttingDown() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shuttingDown
}

// SetShuttingDown marks the server as shutting down and stops the config
// watcher.
func (s *Server) SetShuttingDown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuttingDown = true
	s.stopWatcherLocked()
}

// Documents returns the document store.
func (s *Server) Documents() *DocumentStore {
	return s.documents
}

// Config returns a copy of the current configuration.
func (s *Server) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetClientSetting records a setting pushed by the client and applies it.
// Client settings take precedence over the config file and survive reloads
// of it. A change that makes the config invalid is rejected.
func (s *Server) SetClientSetting(name string, change func(*Config)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.config
	change(&next)
	if err := next.Validate(); err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}
	s.clientSettings[name] = change
	s.config = next
	return nil
}

// updateFileConfig changes the file layer and recomputes the effective config.
func (s *Server) updateFileConfig(update func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	update(&s.fileConfig)
	s.applyLocked()
}

func (s *Server) applyLocked() {
	cfg := s.fileConfig
	for _, name := range slices.Sorted(maps.Keys(s.clientSettings)) {
		s.clientSettings[name](&cfg)
	}
	s.config = cfg
}

// LoadWorkspaceConfig reads the config file of the first workspace folder
// that has one and watches it. Without a config file the file layer falls
// back to the defaults and nothing is watched.
func (s *Server) LoadWorkspaceConfig() error {
	path, ok := FindConfig(s.GetWorkspaceFolders())
	if !ok {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.stopWatcherLocked()
		s.fileConfig = DefaultConfig()
		s.applyLocked()
		return nil
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}

	watcher, err := WatchConfig(path, s.updateFileConfig)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWatcherLocked()
	s.configWatcher = watcher
	s.fileConfig = cfg
	s.applyLocked()
	log.Infof("loaded config from %s", path)
	return nil
}

func (s *Server) stopWatcherLocked() {
	if s.configWatcher == nil {
		return
	}
	if err := s.configWatcher.Stop(); err != nil {
		log.Warningf("stopping config watcher: %v", err)
	}
	s.configWatcher = nil
}

// SetWorkspaceFolders sets the workspace folders.
func (s *Server) SetWorkspaceFolders(folders []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaceFolders = folders
}

// GetWorkspaceFolders returns the workspace folders.
func (s *Server) GetWorkspaceFolders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workspaceFolders
}

// SetClientCapabilities sets the client's capabilities.
func (s *Server) SetClientCapabilities(capabilities *protocol.ClientCapabilities) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clientCapabilities = capabilities
}

// GetClientCapabilities returns the client's capabilities.
func (s *Server) GetClientCapabilities() *protocol.ClientCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientCapabilities
}

// SemanticTokensLegend returns the semantic tokens legend.
// The legend is immutable and shared across all requests.
func (s *Server) SemanticTokensLegend() *SemanticTokensLegend {
	return s.semanticTokensLegend
}

// SemanticTokensCache returns the semantic tokens cache for delta support.
func (s *Server) SemanticTokensCache() *SemanticTokensCache {
	return s.semanticTokensCache
}
