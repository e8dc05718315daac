package server

import (
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/analysis"
)

// CachedTokens is the token set last sent to the client for a document.
type CachedTokens struct {
	ResultID  string
	Tokens    []analysis.SemanticToken
	Timestamp time.Time
}

// SemanticTokensCache remembers the last token set per document so that a
// later delta request can be answered against it. Clients only ever ask for
// a delta against the most recent result id, so older sets are dropped.
type SemanticTokensCache struct {
	mu      sync.RWMutex
	entries map[protocol.DocumentUri]*CachedTokens
}

// NewSemanticTokensCache creates a new semantic tokens cache.
func NewSemanticTokensCache() *SemanticTokensCache {
	return &SemanticTokensCache{
		entries: make(map[protocol.DocumentUri]*CachedTokens),
	}
}

// GenerateResultID derives a result id from the document identity and
// content. Identical snapshots yield identical ids.
func GenerateResultID(st *DocumentState) string {
	d := xxhash.New()
	_, _ = d.WriteString(st.URI)
	_, _ = d.WriteString(":" + strconv.FormatInt(int64(st.Version), 10) + ":")
	_, _ = d.WriteString(strconv.FormatUint(st.Result.Hash, 16))
	return strconv.FormatUint(d.Sum64(), 16)
}

// Store records tokens as the latest result of uri.
func (c *SemanticTokensCache) Store(uri protocol.DocumentUri, resultID string, tokens []analysis.SemanticToken) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[uri] = &CachedTokens{
		ResultID:  resultID,
		Tokens:    tokens,
		Timestamp: time.Now(),
	}
}

// Retrieve returns the cached tokens of uri if resultID is the latest one.
func (c *SemanticTokensCache) Retrieve(uri protocol.DocumentUri, resultID string) (*CachedTokens, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, ok := c.entries[uri]
	if !ok || cached.ResultID != resultID {
		return nil, false
	}
	return cached, true
}

// GetLatestResultID returns the most recent result id of uri, or "".
func (c *SemanticTokensCache) GetLatestResultID(uri protocol.DocumentUri) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cached, ok := c.entries[uri]; ok {
		return cached.ResultID
	}
	return ""
}

// InvalidateDocument forgets uri. Called when the document is closed.
func (c *SemanticTokensCache) InvalidateDocument(uri protocol.DocumentUri) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, uri)
}

// Clear removes all cached tokens from the cache.
func (c *SemanticTokensCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[protocol.DocumentUri]*CachedTokens)
}

// Size returns the number of cached token sets.
func (c *SemanticTokensCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
