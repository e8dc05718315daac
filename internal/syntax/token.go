package syntax

import "github.com/CWBudde/go-nrs-lsp/internal/source"

// TokenKind identifies a lexical token.
type TokenKind int

const (
	EOF TokenKind = iota
	Illegal

	Name   // foo
	Number // 12, 1.5
	String // "abc"

	// Keywords.
	Fn
	Let
	If
	Else
	Struct
	True
	False
	Null
	Print

	// Punctuation.
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	Comma     // ,
	Colon     // :
	Semicolon // ;
	Dot       // .
	Arrow     // ->
	Assign    // =
	Eq        // ==
	NotEq     // !=
	Lt        // <
	LtEq      // <=
	Gt        // >
	GtEq      // >=
	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Not       // !
	AndAnd    // &&
	OrOr      // ||
)

var tokenNames = [...]string{
	EOF:       "end of file",
	Illegal:   "illegal character",
	Name:      "identifier",
	Number:    "number",
	String:    "string",
	Fn:        "fn",
	Let:       "let",
	If:        "if",
	Else:      "else",
	Struct:    "struct",
	True:      "true",
	False:     "false",
	Null:      "null",
	Print:     "print",
	LParen:    "(",
	RParen:    ")",
	LBrace:    "{",
	RBrace:    "}",
	LBracket:  "[",
	RBracket:  "]",
	Comma:     ",",
	Colon:     ":",
	Semicolon: ";",
	Dot:       ".",
	Arrow:     "->",
	Assign:    "=",
	Eq:        "==",
	NotEq:     "!=",
	Lt:        "<",
	LtEq:      "<=",
	Gt:        ">",
	GtEq:      ">=",
	Plus:      "+",
	Minus:     "-",
	Star:      "*",
	Slash:     "/",
	Not:       "!",
	AndAnd:    "&&",
	OrOr:      "||",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return "token"
}

var keywords = map[string]TokenKind{
	"fn":     Fn,
	"let":    Let,
	"if":     If,
	"else":   Else,
	"struct": Struct,
	"true":   True,
	"false":  False,
	"null":   Null,
	"print":  Print,
}

// IsKeyword reports whether name is reserved.
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}

// Keywords returns the reserved words in a stable order.
func Keywords() []string {
	return []string{"fn", "let", "if", "else", "struct", "true", "false", "null", "print"}
}

// Token is a lexical token with its byte span.
type Token struct {
	Kind TokenKind
	Text string
	Span source.Span
}
