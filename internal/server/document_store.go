package server

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"golang.org/x/sync/singleflight"

	"github.com/CWBudde/go-nrs-lsp/internal/analysis"
	"github.com/CWBudde/go-nrs-lsp/internal/document"
)

var (
	// ErrDocumentNotFound is returned for queries on documents that are not open.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrStaleVersion is returned when an update loses to a newer version
	// that landed while it was compiling.
	ErrStaleVersion = errors.New("stale document version")
)

// DocumentState pairs a text snapshot with the analysis of exactly that text.
// A state is never mutated; updates install a new one.
type DocumentState struct {
	URI     protocol.DocumentUri
	Version protocol.Integer
	Text    *document.Text
	Result  *analysis.CompileResult
}

type slot struct {
	state atomic.Pointer[DocumentState]
}

// DocumentStore maps document URIs to their current state. Writers replace a
// document's state atomically; readers take one snapshot per query.
type DocumentStore struct {
	mu    sync.RWMutex
	slots map[protocol.DocumentUri]*slot

	compiles singleflight.Group
	compiler func(text string) (*analysis.CompileResult, error)
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		slots:    make(map[protocol.DocumentUri]*slot),
		compiler: analysis.Compile,
	}
}

func (ds *DocumentStore) slot(uri protocol.DocumentUri, create bool) *slot {
	ds.mu.RLock()
	s, ok := ds.slots[uri]
	ds.mu.RUnlock()
	if ok || !create {
		return s
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if s, ok = ds.slots[uri]; !ok {
		s = &slot{}
		ds.slots[uri] = s
	}
	return s
}

// Open compiles the initial text of a document and stores it.
func (ds *DocumentStore) Open(uri protocol.DocumentUri, version protocol.Integer, text string) (*DocumentState, error) {
	return ds.Update(uri, version, document.NewText(text))
}

// Change applies didChange content changes to the current text of uri and
// recompiles the result.
func (ds *DocumentStore) Change(uri protocol.DocumentUri, version protocol.Integer, changes []any) (*DocumentState, error) {
	current, ok := ds.Get(uri)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}
	text, err := current.Text.ApplyChanges(changes)
	if err != nil {
		return nil, fmt.Errorf("apply changes to %s: %w", uri, err)
	}
	return ds.update(uri, version, text, false)
}

// Update compiles text from scratch and installs it as version of uri. If the
// compile fails the previous state stays in place. If a newer version was
// installed meanwhile, the result is discarded and ErrStaleVersion returned.
func (ds *DocumentStore) Update(uri protocol.DocumentUri, version protocol.Integer, text *document.Text) (*DocumentState, error) {
	return ds.update(uri, version, text, true)
}

// update only recreates a closed document when create is set, so a change
// that finishes compiling after didClose is dropped.
func (ds *DocumentStore) update(uri protocol.DocumentUri, version protocol.Integer, text *document.Text, create bool) (*DocumentState, error) {
	result, err := ds.compile(uri, text.String())
	if err != nil {
		log.Errorf("compile %s (version %d) failed, keeping previous state: %v", uri, version, err)
		return nil, fmt.Errorf("compile %s: %w", uri, err)
	}

	next := &DocumentState{URI: uri, Version: version, Text: text, Result: result}
	s := ds.slot(uri, create)
	if s == nil {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, uri)
	}
	for {
		prev := s.state.Load()
		if prev != nil && prev.Version > version {
			log.Debugf("discarding version %d of %s, version %d already installed", version, uri, prev.Version)
			return nil, fmt.Errorf("%w: %d < %d", ErrStaleVersion, version, prev.Version)
		}
		if s.state.CompareAndSwap(prev, next) {
			return next, nil
		}
	}
}

// compile deduplicates concurrent compiles of the same text for one document.
func (ds *DocumentStore) compile(uri protocol.DocumentUri, text string) (*analysis.CompileResult, error) {
	key := uri + "#" + strconv.FormatUint(xxhash.Sum64String(text), 16)
	v, err, shared := ds.compiles.Do(key, func() (any, error) {
		return ds.compiler(text)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debugf("shared compile result for %s", uri)
	}
	return v.(*analysis.CompileResult), nil
}

// Get returns the current state of uri.
func (ds *DocumentStore) Get(uri protocol.DocumentUri) (*DocumentState, bool) {
	s := ds.slot(uri, false)
	if s == nil {
		return nil, false
	}
	state := s.state.Load()
	return state, state != nil
}

// Delete removes a document from the store.
func (ds *DocumentStore) Delete(uri protocol.DocumentUri) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	delete(ds.slots, uri)
}

// List returns all document URIs.
func (ds *DocumentStore) List() []protocol.DocumentUri {
	ds.mu.RLock()
	defer ds.mu.RUnlock()

	uris := make([]protocol.DocumentUri, 0, len(ds.slots))
	for uri, s := range ds.slots {
		if s.state.Load() != nil {
			uris = append(uris, uri)
		}
	}
	return uris
}

// Clear removes all documents from the store.
func (ds *DocumentStore) Clear() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	ds.slots = make(map[protocol.DocumentUri]*slot)
}
