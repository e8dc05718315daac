package analysis

import (
	"github.com/CWBudde/go-nrs-lsp/internal/source"
	"github.com/CWBudde/go-nrs-lsp/internal/symbols"
	"github.com/CWBudde/go-nrs-lsp/internal/syntax"
)

// OutlineSymbol is a node of the document outline.
type OutlineSymbol struct {
	Name   string
	Kind   symbols.Kind
	Detail string
	// Span covers the whole declaration; Selection only the name.
	Span      source.Span
	Selection source.Span
	Children  []OutlineSymbol
}

// Outline lists the top-level items of the document. Functions contain their
// parameters and local variables, structs their fields.
func Outline(res *CompileResult) []OutlineSymbol {
	if res == nil || res.Table == nil || res.File == nil {
		return nil
	}
	table := res.Table

	children := make(map[symbols.SymbolID][]OutlineSymbol)
	for _, sym := range table.Symbols() {
		if !sym.Parent.IsValid() {
			continue
		}
		children[sym.Parent] = append(children[sym.Parent], OutlineSymbol{
			Name:      sym.Name,
			Kind:      sym.Kind,
			Detail:    sym.TypeOrUnknown().String(),
			Span:      sym.Span,
			Selection: sym.Span,
		})
	}

	var out []OutlineSymbol
	for _, item := range res.File.Items {
		if syntax.IsNil(item) {
			continue
		}
		var name *syntax.Ident
		switch it := item.(type) {
		case *syntax.FuncDecl:
			name = it.Name
		case *syntax.StructDecl:
			name = it.Name
		}
		if name == nil {
			continue
		}
		id, ok := table.SymbolBySpan(name.Pos)
		if !ok {
			continue
		}
		sym, _ := table.Symbol(id)
		out = append(out, OutlineSymbol{
			Name:      sym.Name,
			Kind:      sym.Kind,
			Detail:    sym.TypeOrUnknown().String(),
			Span:      item.Span(),
			Selection: sym.Span,
			Children:  children[id],
		})
	}
	return out
}
