package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-nrs-lsp/internal/source"
)

func sp(start, end int) source.Span { return source.Span{Start: start, End: end} }

func mustSymbol(t *testing.T, tbl *Table, sym Symbol) SymbolID {
	t.Helper()
	id, err := tbl.AddSymbol(sym)
	require.NoError(t, err)
	return id
}

func mustReference(t *testing.T, tbl *Table, ref Reference) ReferenceID {
	t.Helper()
	id, err := tbl.AddReference(ref)
	require.NoError(t, err)
	return id
}

func TestAddSymbolAssignsDenseIDs(t *testing.T) {
	tbl := NewTable()

	a := mustSymbol(t, tbl, Symbol{Name: "a", Span: sp(0, 1), Kind: KindVariable})
	b := mustSymbol(t, tbl, Symbol{Name: "b", Span: sp(4, 5), Kind: KindVariable})

	assert.Equal(t, SymbolID(1), a)
	assert.Equal(t, SymbolID(2), b)
	assert.Equal(t, 2, tbl.SymbolCount())

	sym, ok := tbl.Symbol(b)
	require.True(t, ok)
	assert.Equal(t, "b", sym.Name)

	_, ok = tbl.Symbol(NoSymbolID)
	assert.False(t, ok)
}

func TestDuplicateSpanIsRejected(t *testing.T) {
	tbl := NewTable()
	mustSymbol(t, tbl, Symbol{Name: "x", Span: sp(2, 3), Kind: KindVariable})

	_, err := tbl.AddSymbol(Symbol{Name: "x", Span: sp(2, 3), Kind: KindVariable})
	require.ErrorIs(t, err, ErrDuplicateSpan)

	_, err = tbl.AddReference(Reference{Name: "x", Span: sp(2, 3), Kind: RefValue})
	require.ErrorIs(t, err, ErrDuplicateSpan)

	mustReference(t, tbl, Reference{Name: "x", Span: sp(7, 8), Kind: RefValue})
	_, err = tbl.AddSymbol(Symbol{Name: "x", Span: sp(7, 8), Kind: KindVariable})
	require.ErrorIs(t, err, ErrDuplicateSpan)
}

func TestInvalidInputs(t *testing.T) {
	tbl := NewTable()

	_, err := tbl.AddSymbol(Symbol{Name: "x", Span: sp(3, 3)})
	require.ErrorIs(t, err, ErrInvalidSpan)

	_, err = tbl.AddReference(Reference{Name: "x", Span: sp(0, 1), Symbol: 42})
	require.ErrorIs(t, err, ErrUnknownSymbol)

	require.ErrorIs(t, tbl.SetType(9, Number), ErrUnknownSymbol)
}

func TestBacklinksAreInverseOfResolution(t *testing.T) {
	tbl := NewTable()
	x := mustSymbol(t, tbl, Symbol{Name: "x", Span: sp(0, 1), Kind: KindVariable})
	y := mustSymbol(t, tbl, Symbol{Name: "y", Span: sp(2, 3), Kind: KindVariable})

	r1 := mustReference(t, tbl, Reference{Name: "x", Span: sp(10, 11), Kind: RefValue, Symbol: x})
	r2 := mustReference(t, tbl, Reference{Name: "z", Span: sp(12, 13), Kind: RefValue})
	r3 := mustReference(t, tbl, Reference{Name: "x", Span: sp(14, 15), Kind: RefValue, Symbol: x})

	assert.Equal(t, []ReferenceID{r1, r3}, tbl.ReferencesOf(x))
	assert.Empty(t, tbl.ReferencesOf(y))

	for id, ref := range tbl.References() {
		if ref.Resolved() {
			assert.Contains(t, tbl.ReferencesOf(ref.Symbol), id)
		} else {
			assert.Equal(t, r2, id)
		}
	}
}

func TestPointQueriesRequireIndex(t *testing.T) {
	tbl := NewTable()
	x := mustSymbol(t, tbl, Symbol{Name: "x", Span: sp(4, 5), Kind: KindVariable})
	r := mustReference(t, tbl, Reference{Name: "x", Span: sp(9, 10), Kind: RefValue, Symbol: x})

	_, ok := tbl.SymbolAt(4)
	assert.False(t, ok, "queries are unavailable before indexing")

	tbl.BuildIndex()
	require.True(t, tbl.Indexed())

	got, ok := tbl.SymbolAt(4)
	require.True(t, ok)
	assert.Equal(t, x, got)

	_, ok = tbl.SymbolAt(9)
	assert.False(t, ok, "reference spans are not bindings")

	gotRef, ok := tbl.ReferenceAt(9)
	require.True(t, ok)
	assert.Equal(t, r, gotRef)

	_, ok = tbl.ReferenceAt(5)
	assert.False(t, ok)

	_, err := tbl.AddSymbol(Symbol{Name: "late", Span: sp(20, 24)})
	assert.ErrorIs(t, err, ErrFrozen)
}

func TestStructFields(t *testing.T) {
	tbl := NewTable()
	st := mustSymbol(t, tbl, Symbol{Name: "Point", Span: sp(7, 12), Kind: KindStruct})
	fx := mustSymbol(t, tbl, Symbol{Name: "x", Span: sp(15, 16), Kind: KindField, Parent: st, Type: Number})
	fy := mustSymbol(t, tbl, Symbol{Name: "y", Span: sp(26, 27), Kind: KindField, Parent: st, Type: Number})

	sym, _ := tbl.Symbol(st)
	assert.Equal(t, []SymbolID{fx, fy}, sym.Fields)

	got, ok := tbl.FieldByName(st, "y")
	require.True(t, ok)
	assert.Equal(t, fy, got)

	_, ok = tbl.FieldByName(st, "z")
	assert.False(t, ok)
	_, ok = tbl.FieldByName(fx, "x")
	assert.False(t, ok, "fields have no fields")
}

func TestTypeDisplay(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Unknown, "unknown"},
		{Number, "number"},
		{String, "string"},
		{Bool, "bool"},
		{Null, "null"},
		{List{Elem: Number}, "[number]"},
		{List{Elem: List{Elem: String}}, "[[string]]"},
		{Struct{Name: "Point", Decl: 1}, "Point"},
		{Func{Params: []Type{Number, Struct{Name: "P"}}, Result: String}, "fn(number, P) -> string"},
		{Func{Result: nil}, "fn() -> unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.typ.String())
	}
}

func TestIdentical(t *testing.T) {
	assert.True(t, Identical(Number, Number))
	assert.False(t, Identical(Number, String))
	assert.True(t, Identical(nil, Unknown))
	assert.False(t, Identical(Unknown, Number))
	assert.True(t, Identical(List{Elem: Bool}, List{Elem: Bool}))
	assert.False(t, Identical(List{Elem: Bool}, List{Elem: Number}))
	assert.True(t, Identical(Struct{Name: "A", Decl: 3}, Struct{Name: "A", Decl: 3}))
	assert.False(t, Identical(Struct{Name: "A", Decl: 3}, Struct{Name: "A", Decl: 4}))
	assert.True(t, Identical(Func{Params: []Type{Number}, Result: Null}, Func{Params: []Type{Number}, Result: Null}))
	assert.False(t, Identical(Func{Params: []Type{Number}}, Func{}))
}
