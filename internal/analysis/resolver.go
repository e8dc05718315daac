package analysis

import (
	"errors"

	"github.com/hbollon/go-edlib"

	"github.com/CWBudde/go-nrs-lsp/internal/source"
	"github.com/CWBudde/go-nrs-lsp/internal/symbols"
	"github.com/CWBudde/go-nrs-lsp/internal/syntax"
)

// ErrNoAST is returned when there is no syntax tree to analyze.
var ErrNoAST = errors.New("no syntax tree to analyze")

// suggestionThreshold is the minimum Jaro-Winkler similarity for a visible
// name to be offered as a "did you mean" fix.
const suggestionThreshold = 0.8

type resolver struct {
	table *symbols.Table
	errs  []SemanticError
	// err is the first internal-consistency failure; it voids the pass.
	err error

	items   map[syntax.Item]symbols.SymbolID
	structs map[string]symbols.SymbolID
	params  map[*syntax.FuncDecl][]symbols.Type

	fn       symbols.SymbolID
	blockEnd int
}

// Resolve walks file and returns the populated, indexed symbol table
// together with the semantic errors found. Semantic errors never stop the
// walk; an error return means the table would have been inconsistent and
// no result is produced.
func Resolve(file *syntax.File) (*symbols.Table, []SemanticError, error) {
	if file == nil {
		return nil, nil, ErrNoAST
	}

	r := &resolver{
		table:   symbols.NewTable(),
		items:   make(map[syntax.Item]symbols.SymbolID),
		structs: make(map[string]symbols.SymbolID),
		params:  make(map[*syntax.FuncDecl][]symbols.Type),
	}

	globals := r.declareItems(file)
	r.declareFields(file)
	r.declareSignatures(file)
	for _, item := range file.Items {
		if fn, ok := item.(*syntax.FuncDecl); ok && fn != nil {
			r.function(fn, globals)
		}
	}

	if r.err != nil {
		return nil, nil, r.err
	}
	r.table.BuildIndex()
	return r.table, r.errs, nil
}

func (r *resolver) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *resolver) report(err SemanticError) {
	r.errs = append(r.errs, err)
}

func (r *resolver) symbol(sym symbols.Symbol) symbols.SymbolID {
	id, err := r.table.AddSymbol(sym)
	if err != nil {
		r.fail(err)
	}
	return id
}

func (r *resolver) reference(ident *syntax.Ident, kind symbols.ReferenceKind, id symbols.SymbolID) {
	_, err := r.table.AddReference(symbols.Reference{
		Name:   ident.Name,
		Span:   ident.Pos,
		Kind:   kind,
		Symbol: id,
	})
	if err != nil {
		r.fail(err)
	}
}

func (r *resolver) setType(id symbols.SymbolID, t symbols.Type) {
	if err := r.table.SetType(id, t); err != nil {
		r.fail(err)
	}
}

func (r *resolver) typeOf(id symbols.SymbolID) symbols.Type {
	sym, ok := r.table.Symbol(id)
	if !ok {
		return symbols.Unknown
	}
	return sym.TypeOrUnknown()
}

// declareItems registers every top-level name before any body is visited,
// so functions and structs may be used ahead of their declaration.
func (r *resolver) declareItems(file *syntax.File) *env {
	var globals *env
	seen := make(map[string]bool)

	for _, item := range file.Items {
		if syntax.IsNil(item) {
			continue
		}
		var (
			name *syntax.Ident
			kind symbols.Kind
		)
		switch it := item.(type) {
		case *syntax.FuncDecl:
			name, kind = it.Name, symbols.KindFunction
		case *syntax.StructDecl:
			name, kind = it.Name, symbols.KindStruct
		}
		if name == nil {
			r.fail(errors.New("top-level declaration without a name"))
			continue
		}
		if seen[name.Name] {
			r.report(&DuplicateDefinition{Name: name.Name, Pos: name.Pos})
		}
		seen[name.Name] = true

		id := r.symbol(symbols.Symbol{Name: name.Name, Span: name.Pos, Kind: kind})
		r.items[item] = id
		if kind == symbols.KindStruct {
			r.structs[name.Name] = id
			r.setType(id, symbols.Struct{Name: name.Name, Decl: id})
		}
		globals = globals.bind(name.Name, name.Pos, id)
	}
	return globals
}

func (r *resolver) declareFields(file *syntax.File) {
	for _, item := range file.Items {
		st, ok := item.(*syntax.StructDecl)
		if !ok {
			continue
		}
		owner := r.items[item]
		seen := make(map[string]bool)
		for _, field := range st.Fields {
			if field == nil || field.Name == nil {
				continue
			}
			if seen[field.Name.Name] {
				r.report(&DuplicateDefinition{Name: field.Name.Name, Pos: field.Name.Pos})
			}
			seen[field.Name.Name] = true
			r.symbol(symbols.Symbol{
				Name:   field.Name.Name,
				Span:   field.Name.Pos,
				Kind:   symbols.KindField,
				Type:   r.resolveType(field.Type),
				Parent: owner,
			})
		}
	}
}

func (r *resolver) declareSignatures(file *syntax.File) {
	for _, item := range file.Items {
		fn, ok := item.(*syntax.FuncDecl)
		if !ok {
			continue
		}
		params := make([]symbols.Type, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = r.resolveType(p.Type)
		}
		r.params[fn] = params

		var result symbols.Type = symbols.Unknown
		if fn.Result != nil {
			result = r.resolveType(fn.Result)
		}
		r.setType(r.items[item], symbols.Func{Params: params, Result: result})
	}
}

// resolveType turns an annotation into a lattice type. Struct names become
// references to the struct symbol.
func (r *resolver) resolveType(t syntax.TypeExpr) symbols.Type {
	switch t := t.(type) {
	case *syntax.NamedType:
		if t == nil || t.Name == nil {
			return symbols.Unknown
		}
		if basic, ok := symbols.BasicByName(t.Name.Name); ok {
			return basic
		}
		if id, ok := r.structs[t.Name.Name]; ok {
			r.reference(t.Name, symbols.RefType, id)
			return symbols.Struct{Name: t.Name.Name, Decl: id}
		}
		r.reference(t.Name, symbols.RefType, symbols.NoSymbolID)
		r.report(&UnknownType{Name: t.Name.Name, Pos: t.Name.Pos})
		return symbols.Unknown
	case *syntax.ListType:
		if t == nil {
			return symbols.Unknown
		}
		return symbols.List{Elem: r.resolveType(t.Elem)}
	}
	return symbols.Unknown
}

func (r *resolver) function(fn *syntax.FuncDecl, globals *env) {
	id := r.items[fn]
	r.fn = id

	scope := fn.Pos
	if fn.Body != nil {
		scope = fn.Body.Pos
	}

	e := globals
	params := r.params[fn]
	for i, p := range fn.Params {
		if p == nil || p.Name == nil {
			continue
		}
		pid := r.symbol(symbols.Symbol{
			Name:   p.Name.Name,
			Span:   p.Name.Pos,
			Kind:   symbols.KindParameter,
			Type:   params[i],
			Scope:  scope,
			Parent: id,
		})
		e = e.bind(p.Name.Name, p.Name.Pos, pid)
	}

	if fn.Body == nil {
		return
	}
	body := r.expr(fn.Body, e)
	if fn.Result == nil {
		r.setType(id, symbols.Func{Params: params, Result: body})
	}
}

// expr resolves every name used in x under e and returns x's type.
func (r *resolver) expr(x syntax.Expr, e *env) symbols.Type {
	if syntax.IsNil(x) {
		return symbols.Null
	}

	switch x := x.(type) {
	case *syntax.BadExpr:
		return symbols.Unknown

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
		return symbols.Unknown

	case *syntax.ListExpr:
		return r.list(x, e)

	case *syntax.NameExpr:
		return r.name(x.Name, e)

	case *syntax.LetExpr:
		return r.let(x, e)

	case *syntax.ThenExpr:
		r.expr(x.First, e)
		return r.expr(x.Second, e)

	case *syntax.UnaryExpr:
		r.expr(x.X, e)
		if x.Op == syntax.Not {
			return symbols.Bool
		}
		return symbols.Number

	case *syntax.BinaryExpr:
		return binaryType(x.Op, r.expr(x.X, e), r.expr(x.Y, e))

	case *syntax.CallExpr:
		ft := r.expr(x.Fun, e)
		// Each argument sees the same environment.
		for _, arg := range x.Args {
			r.expr(arg, e)
		}
		if f, ok := ft.(symbols.Func); ok && f.Result != nil {
			return f.Result
		}
		return symbols.Unknown

	case *syntax.IfExpr:
		r.expr(x.Cond, e)
		var thenType symbols.Type = symbols.Unknown
		if x.Then != nil {
			thenType = r.expr(x.Then, e)
		}
		elseType := r.expr(x.Else, e)
		if symbols.Identical(thenType, elseType) {
			return thenType
		}
		return symbols.Unknown

	case *syntax.PrintExpr:
		r.expr(x.X, e)
		return symbols.Null

	case *syntax.FieldExpr:
		// Field names are resolved lazily by navigation queries; only the
		// type is propagated here.
		xt := r.expr(x.X, e)
		if x.Field == nil {
			return symbols.Unknown
		}
		if st, ok := xt.(symbols.Struct); ok {
			if fid, ok := r.table.FieldByName(st.Decl, x.Field.Name); ok {
				return r.typeOf(fid)
			}
		}
		return symbols.Unknown

	case *syntax.StructLit:
		return r.structLit(x, e)

	case *syntax.BlockExpr:
		saved := r.blockEnd
		r.blockEnd = x.Pos.End - 1
		t := r.expr(x.Body, e)
		r.blockEnd = saved
		return t

	case *syntax.ParenExpr:
		return r.expr(x.X, e)
	}
	return symbols.Unknown
}

func (r *resolver) name(ident *syntax.Ident, e *env) symbols.Type {
	if id, ok := e.lookup(ident.Name); ok {
		r.reference(ident, symbols.RefValue, id)
		return r.typeOf(id)
	}
	r.reference(ident, symbols.RefValue, symbols.NoSymbolID)
	r.report(&UndefinedVariable{
		Name:       ident.Name,
		Pos:        ident.Pos,
		Suggestion: suggest(ident.Name, e.names()),
	})
	return symbols.Unknown
}

// let analyzes the initializer before the name is bound, so `let x = x;`
// refers to an outer x.
func (r *resolver) let(x *syntax.LetExpr, e *env) symbols.Type {
	initType := r.expr(x.Init, e)
	if x.Name == nil {
		return r.expr(x.Body, e)
	}

	typ := initType
	if x.Type != nil {
		if declared := r.resolveType(x.Type); !symbols.IsUnknown(declared) {
			typ = declared
		}
	}

	start := x.Name.Pos.End
	if !syntax.IsNil(x.Init) && x.Init.Span().End > start {
		start = x.Init.Span().End
	}
	end := max(r.blockEnd, start)
	if x.Body != nil && x.Body.Span().End > end {
		end = x.Body.Span().End
	}

	id := r.symbol(symbols.Symbol{
		Name:   x.Name.Name,
		Span:   x.Name.Pos,
		Kind:   symbols.KindVariable,
		Type:   typ,
		Scope:  source.Span{Start: start, End: end},
		Parent: r.fn,
	})
	return r.expr(x.Body, e.bind(x.Name.Name, x.Name.Pos, id))
}

func (r *resolver) list(x *syntax.ListExpr, e *env) symbols.Type {
	expected := symbols.Unknown
	for _, el := range x.Elems {
		t := r.expr(el, e)
		if symbols.IsUnknown(t) {
			continue
		}
		if symbols.IsUnknown(expected) {
			expected = t
			continue
		}
		if !symbols.Identical(expected, t) {
			r.report(&InconsistentElementType{
				Expected: expected.String(),
				Actual:   t.String(),
				Pos:      el.Span(),
			})
		}
	}
	return symbols.List{Elem: expected}
}

func (r *resolver) structLit(x *syntax.StructLit, e *env) symbols.Type {
	id, ok := r.structs[x.Name.Name]
	if ok {
		r.reference(x.Name, symbols.RefType, id)
	} else {
		r.reference(x.Name, symbols.RefType, symbols.NoSymbolID)
		r.report(&UnknownType{Name: x.Name.Name, Pos: x.Name.Pos})
	}

	for _, init := range x.Fields {
		if init == nil || init.Name == nil {
			continue
		}
		r.expr(init.Value, e)
		if !ok {
			r.reference(init.Name, symbols.RefField, symbols.NoSymbolID)
			continue
		}
		fid, found := r.table.FieldByName(id, init.Name.Name)
		r.reference(init.Name, symbols.RefField, fid)
		if !found {
			r.report(&UnknownField{Struct: x.Name.Name, Name: init.Name.Name, Pos: init.Name.Pos})
		}
	}

	if !ok {
		return symbols.Unknown
	}
	return symbols.Struct{Name: x.Name.Name, Decl: id}
}

func binaryType(op syntax.TokenKind, x, y symbols.Type) symbols.Type {
	switch op {
	case syntax.Plus:
		if symbols.Identical(x, symbols.String) && symbols.Identical(y, symbols.String) {
			return symbols.String
		}
		fallthrough
	case syntax.Minus, syntax.Star, syntax.Slash:
		if symbols.Identical(x, symbols.Number) && symbols.Identical(y, symbols.Number) {
			return symbols.Number
		}
		return symbols.Unknown
	case syntax.Eq, syntax.NotEq, syntax.Lt, syntax.LtEq, syntax.Gt, syntax.GtEq,
		syntax.AndAnd, syntax.OrOr:
		return symbols.Bool
	}
	return symbols.Unknown
}

// suggest returns the visible name closest to name, or "" when nothing is
// similar enough.
func suggest(name string, visible []string) string {
	best, bestScore := "", float32(suggestionThreshold)
	for _, candidate := range visible {
		score, err := edlib.StringsSimilarity(name, candidate, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score >= bestScore {
			best, bestScore = candidate, score
		}
	}
	return best
}
