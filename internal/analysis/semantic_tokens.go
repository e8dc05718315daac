package analysis

import (
	"cmp"
	"slices"
	"unicode/utf16"

	"fortio.org/safecast"

	"github.com/CWBudde/go-nrs-lsp/internal/source"
	"github.com/CWBudde/go-nrs-lsp/internal/symbols"
)

// Semantic token types in legend order. The index of a name is the value
// written into the encoded token stream.
const (
	TokenFunction uint32 = iota
	TokenVariable
	TokenParameter
	TokenStruct
	TokenProperty
)

// TokenTypes is the semantic token legend.
var TokenTypes = []string{"function", "variable", "parameter", "struct", "property"}

// TokenModifiers is empty: tokens never carry modifiers.
var TokenModifiers = []string{}

// TokenTypeOf maps a symbol kind to its legend index.
func TokenTypeOf(kind symbols.Kind) (uint32, bool) {
	switch kind {
	case symbols.KindFunction:
		return TokenFunction, true
	case symbols.KindVariable:
		return TokenVariable, true
	case symbols.KindParameter:
		return TokenParameter, true
	case symbols.KindStruct:
		return TokenStruct, true
	case symbols.KindField:
		return TokenProperty, true
	}
	return 0, false
}

// SemanticToken is one highlighted identifier in absolute line/column form.
type SemanticToken struct {
	Line      uint32
	StartChar uint32
	Length    uint32
	TokenType uint32
	Modifiers uint32
}

// PositionMapper converts byte offsets to editor positions.
type PositionMapper interface {
	Position(offset int) (line, character int)
}

type spanToken struct {
	span source.Span
	kind symbols.Kind
}

// CollectSemanticTokens returns a token for every binding and every resolved
// reference, the latter taking the kind of its symbol. Unresolved references
// produce nothing. When rng is non-nil only spans starting inside it are
// kept. Tokens are ordered by start offset.
func CollectSemanticTokens(res *CompileResult, mapper PositionMapper, rng *source.Span) []SemanticToken {
	if res == nil || res.Table == nil || mapper == nil {
		return nil
	}
	table := res.Table

	spans := make([]spanToken, 0, table.SymbolCount()+table.ReferenceCount())
	for _, sym := range table.Symbols() {
		spans = append(spans, spanToken{span: sym.Span, kind: sym.Kind})
	}
	for _, ref := range table.References() {
		if sym, ok := table.Symbol(ref.Symbol); ok {
			spans = append(spans, spanToken{span: ref.Span, kind: sym.Kind})
		}
	}
	if rng != nil {
		spans = slices.DeleteFunc(spans, func(t spanToken) bool {
			return t.span.Start < rng.Start || t.span.Start >= rng.End
		})
	}
	slices.SortStableFunc(spans, func(a, b spanToken) int {
		return cmp.Compare(a.span.Start, b.span.Start)
	})

	tokens := make([]SemanticToken, 0, len(spans))
	for _, st := range spans {
		tok, ok := toSemanticToken(res.Text, mapper, st)
		if ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func toSemanticToken(text string, mapper PositionMapper, st spanToken) (SemanticToken, bool) {
	typeIndex, ok := TokenTypeOf(st.kind)
	if !ok {
		return SemanticToken{}, false
	}
	line, char := mapper.Position(st.span.Start)
	length := utf16Length(st.span.Text(text))
	if length <= 0 {
		return SemanticToken{}, false
	}

	l, err1 := safecast.Conv[uint32](line)
	c, err2 := safecast.Conv[uint32](char)
	n, err3 := safecast.Conv[uint32](length)
	if err1 != nil || err2 != nil || err3 != nil {
		return SemanticToken{}, false
	}
	return SemanticToken{Line: l, StartChar: c, Length: n, TokenType: typeIndex}, true
}

// EncodeSemanticTokens encodes tokens in the LSP relative format: each token
// is (deltaLine, deltaStart, length, tokenType, modifiers), where deltaStart
// is relative to the previous token only when both share a line. The first
// token is relative to line 0, column 0.
func EncodeSemanticTokens(tokens []SemanticToken) []uint32 {
	if len(tokens) == 0 {
		return []uint32{}
	}

	encoded := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevChar uint32

	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		deltaChar := token.StartChar
		if deltaLine == 0 {
			deltaChar = token.StartChar - prevChar
		}

		encoded = append(encoded,
			deltaLine,
			deltaChar,
			token.Length,
			token.TokenType,
			token.Modifiers,
		)

		prevLine = token.Line
		prevChar = token.StartChar
	}

	return encoded
}

// SemanticTokens collects and encodes tokens in one step.
func SemanticTokens(res *CompileResult, mapper PositionMapper, rng *source.Span) []uint32 {
	return EncodeSemanticTokens(CollectSemanticTokens(res, mapper, rng))
}

// utf16Length returns the length of s in UTF-16 code units, the unit LSP
// positions are counted in.
func utf16Length(s string) int {
	return len(utf16.Encode([]rune(s)))
}
