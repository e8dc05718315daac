package analysis

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/CWBudde/go-nrs-lsp/internal/source"
	"github.com/CWBudde/go-nrs-lsp/internal/symbols"
	"github.com/CWBudde/go-nrs-lsp/internal/syntax"
)

var (
	// ErrNoRenameableSymbol is returned when nothing under the cursor resolves.
	ErrNoRenameableSymbol = errors.New("no renameable symbol here")
	// ErrInvalidName is returned for new names that are not identifiers.
	ErrInvalidName = errors.New("invalid identifier")
)

// TextEdit replaces the text of Span with NewText.
type TextEdit struct {
	Span    source.Span
	NewText string
}

// PrepareRename returns the span and current name of the identifier that a
// rename at offset would change.
func PrepareRename(res *CompileResult, offset int) (source.Span, string, error) {
	id, ok := SymbolAt(res, offset)
	if !ok {
		return source.NoSpan, "", ErrNoRenameableSymbol
	}
	sym, _ := res.Table.Symbol(id)

	for _, span := range References(res, id, true) {
		if span.Contains(offset) {
			return span, sym.Name, nil
		}
	}
	return sym.Span, sym.Name, nil
}

// Rename returns one edit per occurrence of the symbol under offset, the
// definition included. All edits apply to the same document.
func Rename(res *CompileResult, offset int, newName string) ([]TextEdit, error) {
	if err := ValidateName(newName); err != nil {
		return nil, err
	}
	id, ok := SymbolAt(res, offset)
	if !ok {
		return nil, ErrNoRenameableSymbol
	}

	spans := References(res, id, true)
	edits := make([]TextEdit, 0, len(spans))
	for _, span := range spans {
		edits = append(edits, TextEdit{Span: span, NewText: newName})
	}
	log.Debugf("rename of symbol %d to %q produced %d edits", id, newName, len(edits))
	return edits, nil
}

// ValidateName checks that name can be used as an identifier.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	}
	for i, r := range name {
		if r == utf8.RuneError {
			return fmt.Errorf("%w: %q is not valid UTF-8", ErrInvalidName, name)
		}
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if syntax.IsKeyword(name) {
		return fmt.Errorf("%w: %q is a keyword", ErrInvalidName, name)
	}
	if _, builtin := symbols.BasicByName(name); builtin {
		return fmt.Errorf("%w: %q is a builtin type", ErrInvalidName, name)
	}
	return nil
}

// ApplyEdits applies non-overlapping edits to text.
func ApplyEdits(text string, edits []TextEdit) string {
	sorted := slices.Clone(edits)
	// Apply back to front so earlier offsets stay valid.
	slices.SortFunc(sorted, func(a, b TextEdit) int {
		return cmp.Compare(b.Span.Start, a.Span.Start)
	})
	for _, e := range sorted {
		if e.Span.Start < 0 || e.Span.End > len(text) || e.Span.Start > e.Span.End {
			continue
		}
		text = text[:e.Span.Start] + e.NewText + text[e.Span.End:]
	}
	return text
}
