package server

import (
	"slices"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/analysis"
)

// SemanticTokensLegend defines the token types and modifiers used by the server.
// The legend must remain consistent across all requests to ensure proper highlighting.
type SemanticTokensLegend struct {
	// TokenTypes is ordered; the index of a type is its encoded value.
	TokenTypes []string

	// TokenModifiers are encoded as bit flags, one bit per index.
	TokenModifiers []string
}

// NewSemanticTokensLegend creates the legend matching the token types the
// analysis emits.
func NewSemanticTokensLegend() *SemanticTokensLegend {
	return &SemanticTokensLegend{
		TokenTypes:     slices.Clone(analysis.TokenTypes),
		TokenModifiers: slices.Clone(analysis.TokenModifiers),
	}
}

// ToProtocolLegend converts the legend to the LSP protocol format.
func (l *SemanticTokensLegend) ToProtocolLegend() protocol.SemanticTokensLegend {
	return protocol.SemanticTokensLegend{
		TokenTypes:     l.TokenTypes,
		TokenModifiers: l.TokenModifiers,
	}
}

// GetTokenTypeIndex returns the index of a token type in the legend.
// Returns -1 if the token type is not found.
func (l *SemanticTokensLegend) GetTokenTypeIndex(tokenType string) int {
	return slices.Index(l.TokenTypes, tokenType)
}
