package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-nrs-lsp/internal/source"
	"github.com/CWBudde/go-nrs-lsp/internal/symbols"
)

const navSource = `struct Point { x: number, y: number }
fn len2(p: Point) -> number { p.x * p.x + p.y * p.y }
fn main() {
	let origin = Point { x: 0, y: 0 };
	let d = len2(origin);
	print(origin.x);
	d
}`

func TestDefinitionOnBindingTargetsItself(t *testing.T) {
	res := compile(t, navSource)

	at := offsetOf(t, navSource, "origin", 0)
	def, ok := Definition(res, at+2)
	require.True(t, ok)
	assert.Equal(t, at, def.Start)
	assert.Equal(t, "origin", def.Text(navSource))
}

func TestDefinitionMisses(t *testing.T) {
	src := "fn f() { let a = 1; missing + a }"
	res := compile(t, src)

	_, ok := Definition(res, offsetOf(t, src, "missing", 0))
	assert.False(t, ok, "unresolved reference")

	_, ok = Definition(res, offsetOf(t, src, "1", 0))
	assert.False(t, ok, "literal")

	_, ok = Definition(res, len(src)+10)
	assert.False(t, ok, "out of range")
}

func TestDefinitionOfFieldAccess(t *testing.T) {
	res := compile(t, navSource)

	def, ok := Definition(res, offsetOf(t, navSource, "origin.x", 0)+len("origin."))
	require.True(t, ok)
	assert.Equal(t, offsetOf(t, navSource, "x", 0), def.Start)

	def, ok = Definition(res, offsetOf(t, navSource, "p.y", 0)+2)
	require.True(t, ok)
	assert.Equal(t, offsetOf(t, navSource, "y", 0), def.Start)
}

func TestFieldChainThroughNonStructYieldsNothing(t *testing.T) {
	src := "struct A { n: number } fn f(a: A) { a.n.deeper }"
	res := compile(t, src)

	_, ok := Definition(res, offsetOf(t, src, "deeper", 0))
	assert.False(t, ok)

	src = "struct A { n: number } fn f(a: A) { a.missing }"
	res = compile(t, src)
	_, ok = Definition(res, offsetOf(t, src, "missing", 0))
	assert.False(t, ok)
}

func TestFindReferences(t *testing.T) {
	src := "fn f(a) { let b = a + a; print(a); b }"
	res := compile(t, src)

	spans, ok := FindReferences(res, offsetOf(t, src, "a", 3), true)
	require.True(t, ok)
	require.Len(t, spans, 4, "definition plus three uses")
	assert.Equal(t, offsetOf(t, src, "a", 0), spans[0].Start, "definition first")
	for i := 1; i < len(spans); i++ {
		assert.Less(t, spans[i-1].Start, spans[i].Start)
	}
	for _, s := range spans {
		assert.Equal(t, "a", s.Text(src))
	}

	without, ok := FindReferences(res, offsetOf(t, src, "a", 0), false)
	require.True(t, ok)
	assert.Equal(t, spans[1:], without)
}

func TestReferencesCountMatchesUses(t *testing.T) {
	res := compile(t, navSource)
	id, sym := symbolNamed(t, res, "origin", symbols.KindVariable)

	spans := References(res, id, true)
	assert.Len(t, spans, 1+strings.Count(navSource, "origin")-1)
	for _, s := range spans {
		assert.Equal(t, sym.Name, s.Text(navSource))
	}

	_, unused := symbolNamed(t, res, "main", symbols.KindFunction)
	mainID, _ := res.Table.SymbolBySpan(unused.Span)
	assert.Equal(t, []source.Span{unused.Span}, References(res, mainID, true))
	assert.Empty(t, References(res, mainID, false))
}

func TestFieldReferencesIncludeAccesses(t *testing.T) {
	res := compile(t, navSource)
	id, _ := symbolNamed(t, res, "x", symbols.KindField)

	spans := References(res, id, true)
	// declaration, p.x twice, literal key, origin.x
	require.Len(t, spans, 5)
	for _, s := range spans {
		assert.Equal(t, "x", s.Text(navSource))
	}
}

func TestRenameRoundTrip(t *testing.T) {
	src := "fn f(a) { let b = a + 1; let c = [a, b]; a }"
	res := compile(t, src)

	at := offsetOf(t, src, "a", 1)
	before, ok := FindReferences(res, at, true)
	require.True(t, ok)

	edits, err := Rename(res, at, "alpha")
	require.NoError(t, err)
	require.Len(t, edits, len(before))

	renamed := ApplyEdits(src, edits)
	assert.Equal(t, "fn f(alpha) { let b = alpha + 1; let c = [alpha, b]; alpha }", renamed)

	res2 := compile(t, renamed)
	assert.Empty(t, res2.Diagnostics)
	after, ok := FindReferences(res2, offsetOf(t, renamed, "alpha", 0), true)
	require.True(t, ok)
	assert.Len(t, after, len(before))
}

func TestRenameStructUpdatesTypeUses(t *testing.T) {
	src := "struct P { v: number } fn f(p: P) -> P { P { v: p.v } }"
	res := compile(t, src)

	edits, err := Rename(res, offsetOf(t, src, "P", 0), "Q")
	require.NoError(t, err)
	assert.Equal(t, "struct Q { v: number } fn f(p: Q) -> Q { Q { v: p.v } }", ApplyEdits(src, edits))
}

func TestRenameFailures(t *testing.T) {
	src := "fn f() { let a = 1; b + a }"
	res := compile(t, src)

	_, err := Rename(res, offsetOf(t, src, "b", 0), "z")
	assert.ErrorIs(t, err, ErrNoRenameableSymbol)

	_, err = Rename(res, offsetOf(t, src, "1", 0), "z")
	assert.ErrorIs(t, err, ErrNoRenameableSymbol)

	for _, bad := range []string{"", "1a", "let", "number", "a-b"} {
		_, err = Rename(res, offsetOf(t, src, "a", 0), bad)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", bad)
	}
}

func TestPrepareRename(t *testing.T) {
	src := "fn f(a) { a }"
	res := compile(t, src)

	use := offsetOf(t, src, "a", 1)
	span, name, err := PrepareRename(res, use)
	require.NoError(t, err)
	assert.Equal(t, "a", name)
	assert.Equal(t, use, span.Start)

	_, _, err = PrepareRename(res, 0)
	assert.ErrorIs(t, err, ErrNoRenameableSymbol)
}

func labels(items []CompletionItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Label)
	}
	return out
}

func TestCompletionMembers(t *testing.T) {
	src := "struct Point { x: number, tag: string } fn f(p: Point) { p. }"
	res, err := Compile(src)
	require.NoError(t, err)

	items := Complete(res, offsetOf(t, src, "p.", 0)+2, CompletionOptions{})
	assert.Equal(t, []string{"x", "tag"}, labels(items))
	assert.Equal(t, symbols.KindField, items[0].Kind)
	assert.Equal(t, "number", items[0].Detail)
	assert.Equal(t, "string", items[1].Detail)
}

func TestCompletionMemberChain(t *testing.T) {
	src := `struct Inner { deep: bool }
struct Outer { inner: Inner }
fn f(o: Outer) { o.inner.de }`
	res := compile(t, src)

	items := Complete(res, offsetOf(t, src, "o.inner.de", 0)+len("o.inner.de"), CompletionOptions{})
	assert.Equal(t, []string{"deep"}, labels(items))

	items = Complete(res, offsetOf(t, src, "o.inner", 0)+len("o.inn"), CompletionOptions{})
	assert.Equal(t, []string{"inner"}, labels(items))
}

func TestCompletionMemberOnNonStruct(t *testing.T) {
	src := "fn f() { let n = 1; n. }"
	res, err := Compile(src)
	require.NoError(t, err)

	assert.Empty(t, Complete(res, offsetOf(t, src, "n.", 0)+2, CompletionOptions{}))
}

func TestCompletionScopeFiltered(t *testing.T) {
	src := `fn helper() { let hidden = 1; hidden }
fn main(arg) {
	let first = 1;
	let second = first;
	second
}
struct S { field: number }`
	res := compile(t, src)

	items := Complete(res, offsetOf(t, src, "second\n}", 0), CompletionOptions{})
	assert.Equal(t, []string{"arg", "first", "second", "helper", "main", "S"}, labels(items))

	items = Complete(res, offsetOf(t, src, "first = 1", 0)+len("first = "), CompletionOptions{})
	assert.NotContains(t, labels(items), "first", "a binding is not visible in its own declaration")
	assert.NotContains(t, labels(items), "second")
	assert.Contains(t, labels(items), "arg")
}

func TestCompletionPermissive(t *testing.T) {
	src := `fn helper() { let hidden = 1; hidden }
fn main(arg) { arg }`
	res := compile(t, src)

	items := Complete(res, offsetOf(t, src, "arg }", 0), CompletionOptions{Permissive: true, Keywords: true})
	got := labels(items)
	assert.Contains(t, got, "hidden")
	assert.Contains(t, got, "arg")
	assert.Contains(t, got, "let")
	assert.NotContains(t, got, "field")
	assert.True(t, items[len(items)-1].IsKeyword())
}

func TestHover(t *testing.T) {
	res := compile(t, navSource)

	info, ok := Hover(res, offsetOf(t, navSource, "len2(origin)", 0))
	require.True(t, ok)
	assert.Equal(t, "len2", info.Name)
	assert.Equal(t, "fn len2(Point) -> number", info.Signature())
	assert.Equal(t, offsetOf(t, navSource, "len2(origin)", 0), info.Span.Start)

	info, ok = Hover(res, offsetOf(t, navSource, "d\n}", 0))
	require.True(t, ok)
	assert.Equal(t, "let d: number", info.Signature())

	_, ok = Hover(res, offsetOf(t, navSource, "0", 0))
	assert.False(t, ok)
}

func TestOutline(t *testing.T) {
	res := compile(t, navSource)
	outline := Outline(res)

	require.Len(t, outline, 3)
	assert.Equal(t, "Point", outline[0].Name)
	assert.Equal(t, []string{"x", "y"}, outlineNames(outline[0].Children))
	assert.Equal(t, "len2", outline[1].Name)
	assert.Equal(t, []string{"p"}, outlineNames(outline[1].Children))
	assert.Equal(t, "main", outline[2].Name)
	assert.Equal(t, []string{"origin", "d"}, outlineNames(outline[2].Children))
	assert.True(t, outline[2].Span.Start < outline[2].Selection.Start)
}

func outlineNames(syms []OutlineSymbol) []string {
	var out []string
	for _, s := range syms {
		out = append(out, s.Name)
	}
	return out
}

func TestFindNodeAt(t *testing.T) {
	src := "fn f(a) { g(a, b) }"
	file := compile(t, src).File

	n := FindNodeAt(file, offsetOf(t, src, "b", 0))
	require.NotNil(t, n)
	assert.Equal(t, "b", n.Span().Text(src))

	path := NodePath(file, offsetOf(t, src, "b", 0)+1)
	require.GreaterOrEqual(t, len(path), 3)
	assert.Same(t, file, path[0])

	assert.Nil(t, FindNodeAt(nil, 0))
}
