package analysis

import (
	"cmp"
	"slices"

	"github.com/CWBudde/go-nrs-lsp/internal/symbols"
	"github.com/CWBudde/go-nrs-lsp/internal/syntax"
)

// CompletionOptions tunes the default (non-member) completion path.
type CompletionOptions struct {
	// Permissive offers every function, struct, parameter and variable in
	// the document regardless of whether it is visible at the cursor.
	Permissive bool
	// Keywords adds the language keywords to the default path.
	Keywords bool
}

// CompletionItem is one completion candidate.
type CompletionItem struct {
	Label string
	// Kind is zero for keywords.
	Kind   symbols.Kind
	Detail string
}

// IsKeyword reports whether the item is a language keyword.
func (c CompletionItem) IsKeyword() bool { return c.Kind == 0 }

// Complete returns the candidates for the cursor at offset. Inside a field
// access it offers the fields of the accessed struct; otherwise it offers
// the names visible at offset.
func Complete(res *CompileResult, offset int, opts CompletionOptions) []CompletionItem {
	if res == nil || res.Table == nil {
		return nil
	}

	if fe := memberAccess(NodePath(res.File, offset)); fe != nil {
		return members(res, fe)
	}
	return visibleNames(res, offset, opts)
}

// memberAccess reports the field access the cursor is completing, if any:
// either right after the dot or inside the field name.
func memberAccess(path []syntax.Node) *syntax.FieldExpr {
	if len(path) == 0 {
		return nil
	}
	switch n := path[len(path)-1].(type) {
	case *syntax.FieldExpr:
		return n
	case *syntax.Ident:
		if len(path) < 2 {
			return nil
		}
		if fe, ok := path[len(path)-2].(*syntax.FieldExpr); ok && fe.Field == n {
			return fe
		}
	}
	return nil
}

func members(res *CompileResult, fe *syntax.FieldExpr) []CompletionItem {
	st, ok := ExprType(res, fe.X).(symbols.Struct)
	if !ok {
		return nil
	}
	decl, ok := res.Table.Symbol(st.Decl)
	if !ok {
		return nil
	}

	items := make([]CompletionItem, 0, len(decl.Fields))
	for _, fid := range decl.Fields {
		field, _ := res.Table.Symbol(fid)
		items = append(items, CompletionItem{
			Label:  field.Name,
			Kind:   symbols.KindField,
			Detail: field.TypeOrUnknown().String(),
		})
	}
	return items
}

func visibleNames(res *CompileResult, offset int, opts CompletionOptions) []CompletionItem {
	// Later symbols shadow earlier ones of the same name: locals are created
	// after every top-level item, and inner lets after outer ones.
	byName := make(map[string]symbols.Symbol)
	for _, sym := range res.Table.Symbols() {
		switch sym.Kind {
		case symbols.KindFunction, symbols.KindStruct:
		case symbols.KindParameter, symbols.KindVariable:
			if !opts.Permissive && !sym.Scope.ContainsInclusive(offset) {
				continue
			}
		default:
			continue
		}
		byName[sym.Name] = sym
	}

	items := make([]CompletionItem, 0, len(byName))
	for _, sym := range byName {
		items = append(items, CompletionItem{
			Label:  sym.Name,
			Kind:   sym.Kind,
			Detail: sym.TypeOrUnknown().String(),
		})
	}
	if opts.Keywords {
		for _, kw := range syntax.Keywords() {
			if _, taken := byName[kw]; !taken {
				items = append(items, CompletionItem{Label: kw})
			}
		}
	}

	slices.SortFunc(items, func(a, b CompletionItem) int {
		if c := cmp.Compare(completionRank(a), completionRank(b)); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return items
}

func completionRank(c CompletionItem) int {
	switch c.Kind {
	case symbols.KindParameter, symbols.KindVariable:
		return 0
	case symbols.KindFunction:
		return 1
	case symbols.KindStruct:
		return 2
	}
	return 3
}
