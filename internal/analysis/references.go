package analysis

import (
	"cmp"
	"slices"

	"github.com/CWBudde/go-nrs-lsp/internal/source"
	"github.com/CWBudde/go-nrs-lsp/internal/symbols"
	"github.com/CWBudde/go-nrs-lsp/internal/syntax"
)

// References returns the spans of every use of id in ascending start order,
// preceded by the defining span when includeSelf is set. Field symbols also
// collect the field accesses that resolve to them.
func References(res *CompileResult, id symbols.SymbolID, includeSelf bool) []source.Span {
	if res == nil || res.Table == nil {
		return nil
	}
	sym, ok := res.Table.Symbol(id)
	if !ok {
		return nil
	}

	var uses []source.Span
	for _, refID := range res.Table.ReferencesOf(id) {
		if ref, ok := res.Table.Reference(refID); ok {
			uses = append(uses, ref.Span)
		}
	}
	if sym.Kind == symbols.KindField {
		uses = append(uses, fieldAccessesOf(res, id)...)
	}
	slices.SortFunc(uses, func(a, b source.Span) int {
		return cmp.Compare(a.Start, b.Start)
	})

	out := make([]source.Span, 0, len(uses)+1)
	if includeSelf {
		out = append(out, sym.Span)
	}
	return append(out, uses...)
}

// FindReferences resolves the symbol under offset and returns its references.
func FindReferences(res *CompileResult, offset int, includeSelf bool) ([]source.Span, bool) {
	id, ok := SymbolAt(res, offset)
	if !ok {
		return nil, false
	}
	return References(res, id, includeSelf), true
}

func fieldAccessesOf(res *CompileResult, field symbols.SymbolID) []source.Span {
	var out []source.Span
	syntax.Inspect(res.File, func(n syntax.Node) bool {
		if fe, ok := n.(*syntax.FieldExpr); ok && fe.Field != nil {
			if id, ok := ResolveField(res, fe); ok && id == field {
				out = append(out, fe.Field.Pos)
			}
		}
		return true
	})
	return out
}
