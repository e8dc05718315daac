// Package syntax implements the lexer, the recursive-descent parser and the
// AST of the nrs language.
//
// The parser never gives up on a document: malformed constructs become
// BadExpr placeholders (or a FieldExpr without a field name) and parsing
// resumes at the next statement or declaration, so editor features keep
// working while the user types.
package syntax

import (
	"fmt"

	"github.com/CWBudde/go-nrs-lsp/internal/source"
)

type parser struct {
	toks []Token
	pos  int
	errs []Error

	// noStructLit is non-zero while parsing an if-condition, where `x {`
	// starts the then-block rather than a struct literal.
	noStructLit int
}

// Parse parses a whole document. The returned file is never nil; errors
// from both lexing and parsing are returned in source order of discovery.
func Parse(src string) (*File, []Error) {
	toks, lexErrs := Tokenize(src)
	p := &parser{toks: toks}
	p.errs = append(p.errs, lexErrs...)

	file := &File{Src: source.Span{Start: 0, End: len(src)}}
	for !p.at(EOF) {
		switch p.tok().Kind {
		case Fn:
			if fn := p.parseFunc(); fn != nil {
				file.Items = append(file.Items, fn)
			}
		case Struct:
			if st := p.parseStruct(); st != nil {
				file.Items = append(file.Items, st)
			}
		default:
			p.errorf(p.tok().Span, "expected fn or struct declaration, found %s", p.describe())
			p.advance()
			p.syncItem()
		}
	}
	return file, p.errs
}

// ParseExpr parses a single expression sequence, as found inside a block.
func ParseExpr(src string) (Expr, []Error) {
	toks, lexErrs := Tokenize(src)
	p := &parser{toks: toks}
	p.errs = append(p.errs, lexErrs...)
	e := p.parseSeq()
	if !p.at(EOF) {
		p.errorf(p.tok().Span, "unexpected %s", p.describe())
	}
	return e, p.errs
}

func (p *parser) tok() Token { return p.toks[p.pos] }

func (p *parser) peek(n int) Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) at(k TokenKind) bool { return p.toks[p.pos].Kind == k }

func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if t.Kind != EOF {
		p.pos++
	}
	return t
}

func (p *parser) prevEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.toks[p.pos-1].Span.End
}

func (p *parser) describe() string {
	t := p.tok()
	switch t.Kind {
	case EOF:
		return "end of file"
	case Name, Number, String, Illegal:
		return fmt.Sprintf("%s %q", t.Kind, t.Text)
	default:
		return fmt.Sprintf("'%s'", t.Kind)
	}
}

func (p *parser) errorf(span source.Span, format string, args ...any) {
	// One error per position keeps recovery from cascading.
	if n := len(p.errs); n > 0 && p.errs[n-1].Span.Start == span.Start {
		return
	}
	p.errs = append(p.errs, Error{Span: span, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) expect(k TokenKind) (Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.errorf(p.tok().Span, "expected '%s', found %s", k, p.describe())
	return Token{}, false
}

func (p *parser) ident() *Ident {
	t := p.advance()
	return &Ident{Name: t.Text, Pos: t.Span}
}

// syncItem skips to the next top-level declaration.
func (p *parser) syncItem() {
	for !p.at(EOF) && !p.at(Fn) && !p.at(Struct) {
		p.advance()
	}
}

// syncStmt skips to the end of the current statement: a `;` or `}` at the
// current nesting level, or the start of a declaration.
func (p *parser) syncStmt() {
	depth := 0
	for {
		switch p.tok().Kind {
		case EOF, Fn, Struct:
			return
		case Semicolon:
			if depth == 0 {
				return
			}
		case LBrace:
			depth++
		case RBrace:
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}

func (p *parser) parseFunc() *FuncDecl {
	start := p.advance().Span.Start // fn
	if !p.at(Name) {
		p.errorf(p.tok().Span, "expected function name, found %s", p.describe())
		p.syncItem()
		return nil
	}
	fn := &FuncDecl{Name: p.ident()}

	if _, ok := p.expect(LParen); ok {
		for !p.at(RParen) && !p.at(LBrace) && !p.at(EOF) {
			if !p.at(Name) {
				p.errorf(p.tok().Span, "expected parameter name, found %s", p.describe())
				for !p.at(Comma) && !p.at(RParen) && !p.at(LBrace) && !p.at(EOF) {
					p.advance()
				}
			} else {
				param := &Param{Name: p.ident()}
				param.Pos = param.Name.Pos
				if p.at(Colon) {
					p.advance()
					if param.Type = p.parseType(); param.Type != nil {
						param.Pos = param.Pos.Cover(param.Type.Span())
					}
				}
				fn.Params = append(fn.Params, param)
			}
			if !p.at(Comma) {
				break
			}
			p.advance()
		}
		p.expect(RParen)
	}

	if p.at(Arrow) {
		p.advance()
		fn.Result = p.parseType()
	}

	if p.at(LBrace) {
		fn.Body = p.parseBlock()
	} else {
		p.errorf(p.tok().Span, "expected function body, found %s", p.describe())
		p.syncItem()
	}
	fn.Pos = source.Span{Start: start, End: p.prevEnd()}
	return fn
}

func (p *parser) parseType() TypeExpr {
	switch p.tok().Kind {
	case Name:
		return &NamedType{Name: p.ident()}
	case Null:
		// `null` is a keyword in expressions but a plain type name here.
		t := p.advance()
		return &NamedType{Name: &Ident{Name: t.Text, Pos: t.Span}}
	case LBracket:
		start := p.advance().Span.Start
		lt := &ListType{Elem: p.parseType()}
		p.expect(RBracket)
		lt.Pos = source.Span{Start: start, End: p.prevEnd()}
		return lt
	}
	p.errorf(p.tok().Span, "expected type, found %s", p.describe())
	return nil
}

func (p *parser) parseStruct() *StructDecl {
	start := p.advance().Span.Start // struct
	if !p.at(Name) {
		p.errorf(p.tok().Span, "expected struct name, found %s", p.describe())
		p.syncItem()
		return nil
	}
	st := &StructDecl{Name: p.ident()}

	if _, ok := p.expect(LBrace); !ok {
		p.syncItem()
		st.Pos = source.Span{Start: start, End: p.prevEnd()}
		return st
	}
	for !p.at(RBrace) && !p.at(EOF) && !p.at(Fn) && !p.at(Struct) {
		if !p.at(Name) {
			p.errorf(p.tok().Span, "expected field name, found %s", p.describe())
			for !p.at(Comma) && !p.at(RBrace) && !p.at(EOF) && !p.at(Fn) && !p.at(Struct) {
				p.advance()
			}
		} else {
			field := &FieldDecl{Name: p.ident()}
			if _, ok := p.expect(Colon); ok {
				field.Type = p.parseType()
			}
			field.Pos = source.Span{Start: field.Name.Pos.Start, End: p.prevEnd()}
			st.Fields = append(st.Fields, field)
		}
		if !p.at(Comma) {
			break
		}
		p.advance()
	}
	p.expect(RBrace)
	st.Pos = source.Span{Start: start, End: p.prevEnd()}
	return st
}

func (p *parser) parseBlock() *BlockExpr {
	start := p.advance().Span.Start // {
	saved := p.noStructLit
	p.noStructLit = 0
	body := p.parseSeq()
	p.noStructLit = saved
	p.expect(RBrace)
	return &BlockExpr{Body: body, Pos: source.Span{Start: start, End: p.prevEnd()}}
}

func (p *parser) seqEnd() bool {
	switch p.tok().Kind {
	case RBrace, EOF, Fn, Struct:
		return true
	}
	return false
}

func blockLike(e Expr) bool {
	switch e.(type) {
	case *IfExpr, *BlockExpr:
		return true
	}
	return false
}

// parseSeq parses the statements of a block up to the closing brace. It
// returns nil for an empty sequence.
func (p *parser) parseSeq() Expr {
	if p.seqEnd() {
		return nil
	}
	if p.at(Let) {
		return p.parseLet()
	}
	if p.at(Semicolon) {
		// Empty statement.
		p.advance()
		return p.parseSeq()
	}

	first := p.parseExpr()
	switch {
	case p.at(Semicolon):
		semi := p.advance()
		rest := p.parseSeq()
		return then(first, rest, semi.Span)
	case p.seqEnd():
		return first
	case blockLike(first):
		rest := p.parseSeq()
		if rest == nil {
			return first
		}
		return then(first, rest, source.NoSpan)
	}

	p.errorf(p.tok().Span, "expected ';' or '}', found %s", p.describe())
	p.syncStmt()
	if p.at(Semicolon) {
		semi := p.advance()
		return then(first, p.parseSeq(), semi.Span)
	}
	return first
}

func then(first, rest Expr, semi source.Span) Expr {
	span := first.Span()
	if semi.Valid() {
		span = span.Cover(semi)
	}
	if rest != nil {
		span = span.Cover(rest.Span())
	}
	return &ThenExpr{First: first, Second: rest, Pos: span}
}

func (p *parser) parseLet() Expr {
	letTok := p.advance()
	if !p.at(Name) {
		p.errorf(p.tok().Span, "expected variable name, found %s", p.describe())
		p.syncStmt()
		bad := &BadExpr{Pos: source.Span{Start: letTok.Span.Start, End: p.prevEnd()}}
		if p.at(Semicolon) {
			semi := p.advance()
			return then(bad, p.parseSeq(), semi.Span)
		}
		return bad
	}

	let := &LetExpr{Name: p.ident()}
	if p.at(Colon) {
		p.advance()
		let.Type = p.parseType()
	}
	if _, ok := p.expect(Assign); ok {
		let.Init = p.parseExpr()
	} else {
		let.Init = &BadExpr{Pos: source.Span{Start: p.tok().Span.Start, End: p.tok().Span.Start}}
	}

	switch {
	case p.at(Semicolon):
		p.advance()
		let.Body = p.parseSeq()
	case p.seqEnd():
		p.errorf(p.tok().Span, "expected ';' after let binding, found %s", p.describe())
	default:
		p.errorf(p.tok().Span, "expected ';' after let binding, found %s", p.describe())
		p.syncStmt()
		if p.at(Semicolon) {
			p.advance()
		}
		let.Body = p.parseSeq()
	}

	end := p.prevEnd()
	if let.Body != nil && let.Body.Span().End > end {
		end = let.Body.Span().End
	}
	let.Pos = source.Span{Start: letTok.Span.Start, End: end}
	return let
}

func binaryPrec(k TokenKind) int {
	switch k {
	case OrOr:
		return 1
	case AndAnd:
		return 2
	case Eq, NotEq:
		return 3
	case Lt, LtEq, Gt, GtEq:
		return 4
	case Plus, Minus:
		return 5
	case Star, Slash:
		return 6
	}
	return 0
}

func (p *parser) parseExpr() Expr {
	return p.parseBinary(1)
}

func (p *parser) parseBinary(minPrec int) Expr {
	x := p.parseUnary()
	for {
		prec := binaryPrec(p.tok().Kind)
		if prec == 0 || prec < minPrec {
			return x
		}
		op := p.advance().Kind
		y := p.parseBinary(prec + 1)
		x = &BinaryExpr{Op: op, X: x, Y: y}
	}
}

func (p *parser) parseUnary() Expr {
	if p.at(Not) || p.at(Minus) {
		opTok := p.advance()
		x := p.parseUnary()
		return &UnaryExpr{Op: opTok.Kind, X: x, Pos: opTok.Span.Cover(x.Span())}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() Expr {
	x := p.parsePrimary()
	for {
		switch p.tok().Kind {
		case LParen:
			p.advance()
			call := &CallExpr{Fun: x}
			call.Args = p.parseList(RParen)
			p.expect(RParen)
			call.Pos = source.Span{Start: x.Span().Start, End: p.prevEnd()}
			x = call
		case Dot:
			p.advance()
			fe := &FieldExpr{X: x}
			if p.at(Name) {
				fe.Field = p.ident()
			} else {
				p.errorf(p.tok().Span, "expected field name, found %s", p.describe())
			}
			fe.Pos = source.Span{Start: x.Span().Start, End: p.prevEnd()}
			x = fe
		default:
			return x
		}
	}
}

// parseList parses comma separated expressions up to (not including) end.
func (p *parser) parseList(end TokenKind) []Expr {
	saved := p.noStructLit
	p.noStructLit = 0
	defer func() { p.noStructLit = saved }()

	var list []Expr
	for !p.at(end) && !p.seqEnd() && !p.at(Semicolon) {
		list = append(list, p.parseExpr())
		if !p.at(Comma) {
			break
		}
		p.advance()
	}
	return list
}

func (p *parser) parsePrimary() Expr {
	t := p.tok()
	switch t.Kind {
	case Number:
		p.advance()
		return &Literal{Kind: NumberLit, Value: t.Text, Pos: t.Span}
	case String:
		p.advance()
		return &Literal{Kind: StringLit, Value: t.Text, Pos: t.Span}
	case True, False:
		p.advance()
		return &Literal{Kind: BoolLit, Value: t.Text, Pos: t.Span}
	case Null:
		p.advance()
		return &Literal{Kind: NullLit, Value: t.Text, Pos: t.Span}
	case Name:
		if p.peek(1).Kind == LBrace && p.noStructLit == 0 {
			return p.parseStructLit()
		}
		return &NameExpr{Name: p.ident()}
	case LParen:
		p.advance()
		saved := p.noStructLit
		p.noStructLit = 0
		x := p.parseExpr()
		p.noStructLit = saved
		p.expect(RParen)
		return &ParenExpr{X: x, Pos: source.Span{Start: t.Span.Start, End: p.prevEnd()}}
	case LBracket:
		p.advance()
		list := &ListExpr{Elems: p.parseList(RBracket)}
		p.expect(RBracket)
		list.Pos = source.Span{Start: t.Span.Start, End: p.prevEnd()}
		return list
	case If:
		return p.parseIf()
	case LBrace:
		return p.parseBlock()
	case Print:
		p.advance()
		pe := &PrintExpr{}
		if _, ok := p.expect(LParen); ok {
			saved := p.noStructLit
			p.noStructLit = 0
			pe.X = p.parseExpr()
			p.noStructLit = saved
			p.expect(RParen)
		} else {
			pe.X = &BadExpr{Pos: source.Span{Start: p.tok().Span.Start, End: p.tok().Span.Start}}
		}
		pe.Pos = source.Span{Start: t.Span.Start, End: p.prevEnd()}
		return pe
	}

	p.errorf(t.Span, "expected expression, found %s", p.describe())
	switch t.Kind {
	case RBrace, RParen, RBracket, Semicolon, Comma, EOF, Fn, Struct, Let:
		// Leave synchronising tokens for the caller.
		return &BadExpr{Pos: source.Span{Start: t.Span.Start, End: t.Span.Start}}
	}
	p.advance()
	return &BadExpr{Pos: t.Span}
}

func (p *parser) parseIf() Expr {
	start := p.advance().Span.Start // if
	ie := &IfExpr{}
	p.noStructLit++
	ie.Cond = p.parseExpr()
	p.noStructLit--

	if p.at(LBrace) {
		ie.Then = p.parseBlock()
	} else {
		p.errorf(p.tok().Span, "expected '{' after if condition, found %s", p.describe())
	}

	if ie.Then != nil && p.at(Else) {
		p.advance()
		switch {
		case p.at(If):
			ie.Else = p.parseIf()
		case p.at(LBrace):
			ie.Else = p.parseBlock()
		default:
			p.errorf(p.tok().Span, "expected '{' or 'if' after else, found %s", p.describe())
		}
	}
	ie.Pos = source.Span{Start: start, End: p.prevEnd()}
	return ie
}

func (p *parser) parseStructLit() Expr {
	lit := &StructLit{Name: p.ident()}
	p.advance() // {
	for !p.at(RBrace) && !p.seqEnd() {
		if !p.at(Name) {
			p.errorf(p.tok().Span, "expected field name, found %s", p.describe())
			for !p.at(Comma) && !p.seqEnd() {
				p.advance()
			}
		} else {
			init := &FieldInit{Name: p.ident()}
			if _, ok := p.expect(Colon); ok {
				init.Value = p.parseExpr()
			} else {
				init.Value = &BadExpr{Pos: source.Span{Start: p.tok().Span.Start, End: p.tok().Span.Start}}
			}
			init.Pos = source.Span{Start: init.Name.Pos.Start, End: p.prevEnd()}
			lit.Fields = append(lit.Fields, init)
		}
		if !p.at(Comma) {
			break
		}
		p.advance()
	}
	p.expect(RBrace)
	lit.Pos = source.Span{Start: lit.Name.Pos.Start, End: p.prevEnd()}
	return lit
}
