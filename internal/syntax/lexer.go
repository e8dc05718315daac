package syntax

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/CWBudde/go-nrs-lsp/internal/source"
)

// Error is a syntax error with the span it applies to.
type Error struct {
	Span source.Span
	Msg  string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Span, e.Msg)
}

type lexer struct {
	src    string
	pos    int
	tokens []Token
	errs   []Error
}

// Tokenize splits src into tokens. The result always ends with an EOF token.
// Comments and whitespace are skipped.
func Tokenize(src string) ([]Token, []Error) {
	lx := &lexer{src: src}
	for {
		tok := lx.next()
		lx.tokens = append(lx.tokens, tok)
		if tok.Kind == EOF {
			return lx.tokens, lx.errs
		}
	}
}

func (lx *lexer) errorf(span source.Span, format string, args ...any) {
	lx.errs = append(lx.errs, Error{Span: span, Msg: fmt.Sprintf(format, args...)})
}

func (lx *lexer) peekByte(off int) byte {
	if lx.pos+off < len(lx.src) {
		return lx.src[lx.pos+off]
	}
	return 0
}

func (lx *lexer) skipSpaceAndComments() {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			lx.pos++
		case c == '/' && lx.peekByte(1) == '/':
			for lx.pos < len(lx.src) && lx.src[lx.pos] != '\n' {
				lx.pos++
			}
		default:
			return
		}
	}
}

func (lx *lexer) token(kind TokenKind, start int) Token {
	return Token{Kind: kind, Text: lx.src[start:lx.pos], Span: source.Span{Start: start, End: lx.pos}}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (lx *lexer) next() Token {
	lx.skipSpaceAndComments()
	start := lx.pos
	if lx.pos >= len(lx.src) {
		return Token{Kind: EOF, Span: source.Span{Start: start, End: start}}
	}

	r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
	switch {
	case isIdentStart(r):
		for lx.pos < len(lx.src) {
			r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
			if !isIdentPart(r) {
				break
			}
			lx.pos += size
		}
		tok := lx.token(Name, start)
		if kw, ok := keywords[tok.Text]; ok {
			tok.Kind = kw
		}
		return tok
	case isDigit(lx.src[lx.pos]):
		for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
			lx.pos++
		}
		if lx.peekByte(0) == '.' && isDigit(lx.peekByte(1)) {
			lx.pos++
			for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
				lx.pos++
			}
		}
		return lx.token(Number, start)
	case r == '"':
		return lx.scanString(start)
	}

	two := func(second byte, double, single TokenKind) Token {
		if lx.peekByte(1) == second {
			lx.pos += 2
			return lx.token(double, start)
		}
		lx.pos++
		return lx.token(single, start)
	}

	switch c := lx.src[lx.pos]; c {
	case '(':
		lx.pos++
		return lx.token(LParen, start)
	case ')':
		lx.pos++
		return lx.token(RParen, start)
	case '{':
		lx.pos++
		return lx.token(LBrace, start)
	case '}':
		lx.pos++
		return lx.token(RBrace, start)
	case '[':
		lx.pos++
		return lx.token(LBracket, start)
	case ']':
		lx.pos++
		return lx.token(RBracket, start)
	case ',':
		lx.pos++
		return lx.token(Comma, start)
	case ':':
		lx.pos++
		return lx.token(Colon, start)
	case ';':
		lx.pos++
		return lx.token(Semicolon, start)
	case '.':
		lx.pos++
		return lx.token(Dot, start)
	case '+':
		lx.pos++
		return lx.token(Plus, start)
	case '*':
		lx.pos++
		return lx.token(Star, start)
	case '/':
		lx.pos++
		return lx.token(Slash, start)
	case '-':
		return two('>', Arrow, Minus)
	case '=':
		return two('=', Eq, Assign)
	case '!':
		return two('=', NotEq, Not)
	case '<':
		return two('=', LtEq, Lt)
	case '>':
		return two('=', GtEq, Gt)
	case '&':
		if lx.peekByte(1) == '&' {
			lx.pos += 2
			return lx.token(AndAnd, start)
		}
	case '|':
		if lx.peekByte(1) == '|' {
			lx.pos += 2
			return lx.token(OrOr, start)
		}
	}

	lx.pos += size
	tok := lx.token(Illegal, start)
	lx.errorf(tok.Span, "unexpected character %q", r)
	return tok
}

func (lx *lexer) scanString(start int) Token {
	lx.pos++ // opening quote
	for lx.pos < len(lx.src) {
		switch lx.src[lx.pos] {
		case '"':
			lx.pos++
			return lx.token(String, start)
		case '\\':
			escStart := lx.pos
			lx.pos++
			if lx.pos < len(lx.src) {
				switch lx.src[lx.pos] {
				case '"', '\\', 'n', 't':
				default:
					lx.errorf(source.Span{Start: escStart, End: lx.pos + 1}, "unknown escape sequence")
				}
				lx.pos++
			}
		case '\n':
			tok := lx.token(String, start)
			lx.errorf(tok.Span, "unterminated string literal")
			return tok
		default:
			lx.pos++
		}
	}
	tok := lx.token(String, start)
	lx.errorf(tok.Span, "unterminated string literal")
	return tok
}

// Unquote decodes the body of a string literal token.
func Unquote(lit string) string {
	if len(lit) >= 1 && lit[0] == '"' {
		lit = lit[1:]
	}
	if len(lit) >= 1 && lit[len(lit)-1] == '"' {
		lit = lit[:len(lit)-1]
	}
	out := make([]byte, 0, len(lit))
	for i := 0; i < len(lit); i++ {
		c := lit[i]
		if c != '\\' || i+1 >= len(lit) {
			out = append(out, c)
			continue
		}
		i++
		switch lit[i] {
		case 'n':
			out = append(out, '\n')
		case 't':
			out = append(out, '\t')
		default:
			out = append(out, lit[i])
		}
	}
	return string(out)
}
