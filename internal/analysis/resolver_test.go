package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CWBudde/go-nrs-lsp/internal/source"
	"github.com/CWBudde/go-nrs-lsp/internal/symbols"
	"github.com/CWBudde/go-nrs-lsp/internal/syntax"
)

func compile(t *testing.T, src string) *CompileResult {
	t.Helper()
	res, err := Compile(src)
	require.NoError(t, err)
	require.NotNil(t, res)
	require.True(t, res.Table.Indexed())
	return res
}

// offsetOf returns the offset of the n-th (0-based) occurrence of needle.
func offsetOf(t *testing.T, src, needle string, n int) int {
	t.Helper()
	from := 0
	for i := 0; ; i++ {
		idx := strings.Index(src[from:], needle)
		require.GreaterOrEqual(t, idx, 0, "occurrence %d of %q not found", n, needle)
		if i == n {
			return from + idx
		}
		from += idx + len(needle)
	}
}

func symbolNamed(t *testing.T, res *CompileResult, name string, kind symbols.Kind) (symbols.SymbolID, symbols.Symbol) {
	t.Helper()
	for id, sym := range res.Table.Symbols() {
		if sym.Name == name && sym.Kind == kind {
			return id, sym
		}
	}
	t.Fatalf("no %s symbol named %q", kind, name)
	return 0, symbols.Symbol{}
}

func TestScenarioLetChain(t *testing.T) {
	src := "fn test() { let a = 3; let b = a; b }"
	res := compile(t, src)

	assert.Empty(t, res.Diagnostics)
	require.Equal(t, 3, res.Table.SymbolCount())
	require.Equal(t, 2, res.Table.ReferenceCount())

	var got []string
	for _, sym := range res.Table.Symbols() {
		got = append(got, sym.Name+":"+sym.Kind.String())
	}
	assert.Equal(t, []string{"test:function", "a:variable", "b:variable"}, got)

	for _, ref := range res.Table.References() {
		assert.True(t, ref.Resolved(), "reference %q should resolve", ref.Name)
	}

	def, ok := Definition(res, offsetOf(t, src, "b", 1))
	require.True(t, ok)
	assert.Equal(t, offsetOf(t, src, "b", 0), def.Start)
	assert.Equal(t, "b", def.Text(src))
}

func TestScenarioUndefinedVariable(t *testing.T) {
	res := compile(t, "fn test() { c }")

	require.Equal(t, 1, res.Table.ReferenceCount())
	_, ref, found := firstReference(res)
	require.True(t, found)
	assert.False(t, ref.Resolved())

	require.Len(t, res.SemanticErrors, 1)
	uv, ok := res.SemanticErrors[0].(*UndefinedVariable)
	require.True(t, ok)
	assert.Equal(t, "c", uv.Name)
	assert.Equal(t, "Undefined variable c", uv.Error())

	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, CodeUndefined, res.Diagnostics[0].Code)
}

func firstReference(res *CompileResult) (symbols.ReferenceID, symbols.Reference, bool) {
	for id, ref := range res.Table.References() {
		return id, ref, true
	}
	return 0, symbols.Reference{}, false
}

func TestShadowingResolvesToNearestBinding(t *testing.T) {
	src := "fn f() { let x = 1; let x = 2; x }"
	res := compile(t, src)

	secondX := offsetOf(t, src, "x", 1)
	def, ok := Definition(res, offsetOf(t, src, "x", 2))
	require.True(t, ok)
	assert.Equal(t, secondX, def.Start)
}

func TestInitializerDoesNotSeeOwnBinding(t *testing.T) {
	t.Run("undefined", func(t *testing.T) {
		res := compile(t, "fn f() { let x = x; x }")
		require.Len(t, res.SemanticErrors, 1)
		assert.Equal(t, "x", res.SemanticErrors[0].(*UndefinedVariable).Name)
	})

	t.Run("outer binding", func(t *testing.T) {
		src := "fn f(x) { let x = x; x }"
		res := compile(t, src)
		require.Empty(t, res.Diagnostics)

		param := offsetOf(t, src, "x", 0)
		def, ok := Definition(res, offsetOf(t, src, "x", 2))
		require.True(t, ok)
		assert.Equal(t, param, def.Start, "initializer resolves to the parameter")

		def, ok = Definition(res, offsetOf(t, src, "x", 3))
		require.True(t, ok)
		assert.Equal(t, offsetOf(t, src, "x", 1), def.Start, "body resolves to the let")
	})
}

func TestSiblingBranchesAreIsolated(t *testing.T) {
	src := "fn f(c) { if c { let a = 1; a } else { a } }"
	res := compile(t, src)

	require.Len(t, res.SemanticErrors, 1)
	uv := res.SemanticErrors[0].(*UndefinedVariable)
	assert.Equal(t, offsetOf(t, src, "a", 2), uv.Pos.Start)
}

func TestCallArgumentsShareEnvironment(t *testing.T) {
	src := "fn g(a, b) { a } fn f() { g({ let t = 1; t }, t) }"
	res := compile(t, src)

	require.Len(t, res.SemanticErrors, 1)
	uv := res.SemanticErrors[0].(*UndefinedVariable)
	assert.Equal(t, offsetOf(t, src, ", t)", 0)+2, uv.Pos.Start, "second argument cannot see the first's let")
}

func TestTopLevelHoisting(t *testing.T) {
	src := "fn main() { helper(Point { x: 1 }) } fn helper(p: Point) { p.x } struct Point { x: number }"
	res := compile(t, src)
	assert.Empty(t, res.Diagnostics)

	def, ok := Definition(res, offsetOf(t, src, "helper", 0))
	require.True(t, ok)
	assert.Equal(t, offsetOf(t, src, "helper", 1), def.Start)

	def, ok = Definition(res, offsetOf(t, src, "Point", 0))
	require.True(t, ok)
	assert.Equal(t, offsetOf(t, src, "Point", 2), def.Start)
}

func TestInnerBindingsAreNotHoisted(t *testing.T) {
	res := compile(t, "fn f() { let a = b; let b = 1; a }")
	require.Len(t, res.SemanticErrors, 1)
	assert.Equal(t, "b", res.SemanticErrors[0].(*UndefinedVariable).Name)
}

func TestUndefinedVariableSuggestion(t *testing.T) {
	res := compile(t, "fn f(counter) { countr }")
	require.Len(t, res.Diagnostics, 1)

	d := res.Diagnostics[0]
	assert.Equal(t, "counter", d.Suggestion)
	assert.Contains(t, d.Message, "did you mean `counter`?")

	res = compile(t, "fn f(counter) { zzz }")
	assert.Empty(t, res.Diagnostics[0].Suggestion)
}

func TestInconsistentElementType(t *testing.T) {
	src := `fn f() { [1, 2, "three", true] }`
	res := compile(t, src)

	require.Len(t, res.SemanticErrors, 2)
	first := res.SemanticErrors[0].(*InconsistentElementType)
	assert.Equal(t, "number", first.Expected)
	assert.Equal(t, "string", first.Actual)
	assert.Equal(t, `"three"`, first.Pos.Text(src))
	assert.Equal(t, "Expect element type: number, but got string", first.Error())

	second := res.SemanticErrors[1].(*InconsistentElementType)
	assert.Equal(t, "bool", second.Actual)
}

func TestUnknownTypesAndFields(t *testing.T) {
	src := "struct P { x: number } fn f(a: Q) { P { x: 1, y: 2 } }"
	res := compile(t, src)

	var codes []string
	for _, d := range res.Diagnostics {
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []string{CodeUnknownType, CodeUnknownField}, codes)
}

func TestDuplicateDefinitions(t *testing.T) {
	src := "fn a() { 1 } fn a() { 2 } struct S { f: number, f: string } fn main() { a() }"
	res := compile(t, src)

	var dups []string
	for _, err := range res.SemanticErrors {
		if d, ok := err.(*DuplicateDefinition); ok {
			dups = append(dups, d.Name)
		}
	}
	assert.Equal(t, []string{"a", "f"}, dups)

	def, ok := Definition(res, offsetOf(t, src, "a()", 2))
	require.True(t, ok)
	assert.Equal(t, offsetOf(t, src, "a()", 1), def.Start, "later declaration wins")
}

func TestInferredTypes(t *testing.T) {
	src := `
struct Point { x: number, label: string }
fn make() -> Point { Point { x: 1, label: "a" } }
fn main(n: number) {
	let p = make();
	let xs = [p.x, n];
	let s = p.label + "!";
	let ok = n > 1 && true;
	let nested = [[1], [2]];
	s
}`
	res := compile(t, src)
	require.Empty(t, res.Diagnostics)

	tests := []struct {
		name string
		want string
	}{
		{"p", "Point"},
		{"xs", "[number]"},
		{"s", "string"},
		{"ok", "bool"},
		{"nested", "[[number]]"},
	}
	for _, tt := range tests {
		_, sym := symbolNamed(t, res, tt.name, symbols.KindVariable)
		assert.Equal(t, tt.want, sym.TypeOrUnknown().String(), tt.name)
	}

	_, mk := symbolNamed(t, res, "make", symbols.KindFunction)
	assert.Equal(t, "fn() -> Point", mk.Type.String())
	_, mn := symbolNamed(t, res, "main", symbols.KindFunction)
	assert.Equal(t, "fn(number) -> string", mn.Type.String(), "result inferred from body")
}

func TestIdempotentCompile(t *testing.T) {
	src := "struct S { a: number } fn f(x) { let y = [x, 1]; if y { g } else { S { a: 1 }.a } }"
	a := compile(t, src)
	b := compile(t, src)

	assert.Equal(t, a.Diagnostics, b.Diagnostics)
	assert.Equal(t, a.Table.SymbolCount(), b.Table.SymbolCount())
	assert.Equal(t, a.Table.ReferenceCount(), b.Table.ReferenceCount())
	assert.Equal(t, a.Hash, b.Hash)
}

func TestSyntaxErrorsAreMergedIntoDiagnostics(t *testing.T) {
	src := "fn f() { let a = ; b }"
	res := compile(t, src)

	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, CodeSyntax, res.Diagnostics[0].Code)
	assert.Equal(t, CodeUndefined, res.Diagnostics[1].Code)
	assert.Less(t, res.Diagnostics[0].Span.Start, res.Diagnostics[1].Span.Start)
}

func TestResolveRejectsMissingAST(t *testing.T) {
	_, _, err := Resolve(nil)
	assert.ErrorIs(t, err, ErrNoAST)

	_, err = Analyze("", nil, nil)
	assert.ErrorIs(t, err, ErrNoAST)
}

func TestResolveAbortsOnInconsistentAST(t *testing.T) {
	// Two bindings sharing a span cannot come from the parser.
	name := &syntax.Ident{Name: "x", Pos: source.Span{Start: 3, End: 4}}
	file := &syntax.File{Items: []syntax.Item{
		&syntax.FuncDecl{
			Name:   &syntax.Ident{Name: "f", Pos: source.Span{Start: 0, End: 1}},
			Params: []*syntax.Param{{Name: name}, {Name: name}},
			Body:   &syntax.BlockExpr{Pos: source.Span{Start: 6, End: 8}},
		},
	}}

	_, _, err := Resolve(file)
	assert.ErrorIs(t, err, symbols.ErrDuplicateSpan)
}

func TestResolveRejectsMissingSpans(t *testing.T) {
	file := &syntax.File{Items: []syntax.Item{
		&syntax.StructDecl{Name: &syntax.Ident{Name: "S"}},
	}}
	_, _, err := Resolve(file)
	assert.ErrorIs(t, err, symbols.ErrInvalidSpan)
}
