package analysis

import (
	"github.com/CWBudde/go-nrs-lsp/internal/syntax"
)

// FindNodeAt returns the deepest node whose span contains offset, treating
// the end of a span as inside so that a cursor just after a name still
// selects it. It returns nil when no node contains offset.
func FindNodeAt(file *syntax.File, offset int) syntax.Node {
	path := NodePath(file, offset)
	if len(path) == 0 {
		return nil
	}
	return path[len(path)-1]
}

// NodePath returns the chain of nodes from the file down to the deepest
// node containing offset.
func NodePath(file *syntax.File, offset int) []syntax.Node {
	if file == nil {
		return nil
	}

	var path []syntax.Node
	syntax.Inspect(file, func(n syntax.Node) bool {
		if !n.Span().ContainsInclusive(offset) {
			return false
		}
		// A later sibling that also contains offset replaces the earlier one.
		for len(path) > 0 && !isAncestor(path[len(path)-1], n) {
			path = path[:len(path)-1]
		}
		path = append(path, n)
		return true
	})
	return path
}

func isAncestor(parent, child syntax.Node) bool {
	for _, c := range syntax.Children(parent) {
		if c == child {
			return true
		}
	}
	return false
}
