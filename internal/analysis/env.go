package analysis

import (
	"github.com/CWBudde/go-nrs-lsp/internal/source"
	"github.com/CWBudde/go-nrs-lsp/internal/symbols"
)

// env is the persistent lexical environment: an immutable list of bindings,
// newest first. Extending it allocates one cell and shares the tail, so
// sibling scopes derived from the same env never see each other's names.
// A nil *env is the empty environment.
type env struct {
	name string
	span source.Span
	id   symbols.SymbolID
	next *env
}

// bind returns a new environment with name bound on top of e. e itself is
// unchanged.
func (e *env) bind(name string, span source.Span, id symbols.SymbolID) *env {
	return &env{name: name, span: span, id: id, next: e}
}

// lookup searches from the most recent binding to the oldest, so inner
// bindings shadow outer ones.
func (e *env) lookup(name string) (symbols.SymbolID, bool) {
	for c := e; c != nil; c = c.next {
		if c.name == name {
			return c.id, true
		}
	}
	return symbols.NoSymbolID, false
}

// names returns each visible name once, innermost first.
func (e *env) names() []string {
	seen := make(map[string]struct{})
	var out []string
	for c := e; c != nil; c = c.next {
		if _, ok := seen[c.name]; ok {
			continue
		}
		seen[c.name] = struct{}{}
		out = append(out, c.name)
	}
	return out
}

func (e *env) len() int {
	n := 0
	for c := e; c != nil; c = c.next {
		n++
	}
	return n
}
