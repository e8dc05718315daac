package analysis

import (
	"github.com/CWBudde/go-nrs-lsp/internal/source"
	"github.com/CWBudde/go-nrs-lsp/internal/symbols"
	"github.com/CWBudde/go-nrs-lsp/internal/syntax"
)

// SymbolAt returns the symbol targeted by the identifier at offset: the
// binding itself, the symbol a reference resolves to, or the field named by
// a field access. Unresolved references yield nothing.
func SymbolAt(res *CompileResult, offset int) (symbols.SymbolID, bool) {
	if res == nil || res.Table == nil {
		return symbols.NoSymbolID, false
	}

	for e := range res.Table.At(offset) {
		switch e.Tag {
		case symbols.TagBinding:
			return e.Symbol, true
		case symbols.TagReference:
			if e.Symbol.IsValid() {
				return e.Symbol, true
			}
			return symbols.NoSymbolID, false
		}
	}

	if fe := fieldAccessAt(res.File, offset); fe != nil {
		return ResolveField(res, fe)
	}
	return symbols.NoSymbolID, false
}

// Definition returns the span of the binding targeted at offset. Clicking on
// a binding targets the binding itself.
func Definition(res *CompileResult, offset int) (source.Span, bool) {
	id, ok := SymbolAt(res, offset)
	if !ok {
		return source.NoSpan, false
	}
	sym, ok := res.Table.Symbol(id)
	if !ok {
		return source.NoSpan, false
	}
	return sym.Span, true
}

// fieldAccessAt returns the field access whose field name lies under offset.
func fieldAccessAt(file *syntax.File, offset int) *syntax.FieldExpr {
	var found *syntax.FieldExpr
	syntax.Inspect(file, func(n syntax.Node) bool {
		if !n.Span().Contains(offset) {
			return false
		}
		if fe, ok := n.(*syntax.FieldExpr); ok && fe.Field != nil && fe.Field.Pos.Contains(offset) {
			found = fe
		}
		return true
	})
	return found
}

// ResolveField resolves the field named by fe by walking the chain of
// accesses that produces its object. Any hop through a non-struct type or an
// unknown field name yields no result.
func ResolveField(res *CompileResult, fe *syntax.FieldExpr) (symbols.SymbolID, bool) {
	if fe == nil || fe.Field == nil {
		return symbols.NoSymbolID, false
	}
	st, ok := ExprType(res, fe.X).(symbols.Struct)
	if !ok {
		return symbols.NoSymbolID, false
	}
	return res.Table.FieldByName(st.Decl, fe.Field.Name)
}

// ExprType recovers the type of an expression from the symbol table. It
// understands names, field chains, struct literals, calls and parentheses;
// everything else is Unknown.
func ExprType(res *CompileResult, x syntax.Expr) symbols.Type {
	if res == nil || syntax.IsNil(x) {
		return symbols.Unknown
	}
	table := res.Table

	switch x := x.(type) {
	case *syntax.NameExpr:
		ref, ok := table.ReferenceBySpan(x.Name.Pos)
		if !ok {
			return symbols.Unknown
		}
		r, _ := table.Reference(ref)
		return symbolType(table, r.Symbol)
	case *syntax.FieldExpr:
		if id, ok := ResolveField(res, x); ok {
			return symbolType(table, id)
		}
	case *syntax.StructLit:
		ref, ok := table.ReferenceBySpan(x.Name.Pos)
		if !ok {
			return symbols.Unknown
		}
		r, _ := table.Reference(ref)
		return symbolType(table, r.Symbol)
	case *syntax.CallExpr:
		if f, ok := ExprType(res, x.Fun).(symbols.Func); ok && f.Result != nil {
			return f.Result
		}
	case *syntax.ParenExpr:
		return ExprType(res, x.X)
	case *syntax.Literal:
		switch x.Kind {
		case syntax.NumberLit:
			return symbols.Number
		case syntax.StringLit:
			return symbols.String
		case syntax.BoolLit:
			return symbols.Bool
		case syntax.NullLit:
			return symbols.Null
		}
	}
	return symbols.Unknown
}

func symbolType(table *symbols.Table, id symbols.SymbolID) symbols.Type {
	sym, ok := table.Symbol(id)
	if !ok {
		return symbols.Unknown
	}
	return sym.TypeOrUnknown()
}
