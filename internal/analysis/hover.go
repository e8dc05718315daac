package analysis

import (
	"fmt"

	"github.com/CWBudde/go-nrs-lsp/internal/source"
	"github.com/CWBudde/go-nrs-lsp/internal/symbols"
)

// HoverInfo describes the symbol under the cursor.
type HoverInfo struct {
	Name string
	Kind symbols.Kind
	Type symbols.Type
	// Span is the identifier the cursor is on, not the definition.
	Span source.Span
}

// Signature renders the symbol the way it is shown in hover popups.
func (h HoverInfo) Signature() string {
	switch h.Kind {
	case symbols.KindFunction:
		if f, ok := h.Type.(symbols.Func); ok {
			return fmt.Sprintf("fn %s%s", h.Name, f.String()[len("fn"):])
		}
		return "fn " + h.Name
	case symbols.KindStruct:
		return "struct " + h.Name
	case symbols.KindField:
		return fmt.Sprintf("(field) %s: %s", h.Name, h.Type)
	case symbols.KindParameter:
		return fmt.Sprintf("(parameter) %s: %s", h.Name, h.Type)
	}
	return fmt.Sprintf("let %s: %s", h.Name, h.Type)
}

// Hover returns information about the symbol targeted at offset.
func Hover(res *CompileResult, offset int) (HoverInfo, bool) {
	id, ok := SymbolAt(res, offset)
	if !ok {
		return HoverInfo{}, false
	}
	sym, _ := res.Table.Symbol(id)

	span := sym.Span
	for _, s := range References(res, id, false) {
		if s.Contains(offset) {
			span = s
			break
		}
	}
	return HoverInfo{
		Name: sym.Name,
		Kind: sym.Kind,
		Type: sym.TypeOrUnknown(),
		Span: span,
	}, true
}
