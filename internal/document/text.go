// Package document provides the text buffer behind an open editor document:
// conversion between byte offsets and LSP positions, and incremental edits.
package document

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/CWBudde/go-nrs-lsp/internal/source"
)

// Text is an immutable snapshot of a document's content with a line index.
// Character positions are counted in UTF-16 code units as LSP requires.
type Text struct {
	content string
	// lines holds the byte offset at which each line starts.
	lines []int
}

// NewText indexes content.
func NewText(content string) *Text {
	lines := []int{0}
	for i := range len(content) {
		if content[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return &Text{content: content, lines: lines}
}

// String returns the full content.
func (t *Text) String() string {
	return t.content
}

// Len returns the content length in bytes.
func (t *Text) Len() int {
	return len(t.content)
}

// LineCount returns the number of lines; an empty text has one line.
func (t *Text) LineCount() int {
	return len(t.lines)
}

// line returns the content of line n without its terminating newline.
func (t *Text) line(n int) string {
	start := t.lines[n]
	end := len(t.content)
	if n+1 < len(t.lines) {
		end = t.lines[n+1] - 1
	}
	return t.content[start:end]
}

// Position converts a byte offset to a zero-based line and UTF-16 character.
// Offsets outside the text are clamped.
func (t *Text) Position(offset int) (line, character int) {
	offset = max(0, min(offset, len(t.content)))
	line = sort.Search(len(t.lines), func(i int) bool { return t.lines[i] > offset }) - 1

	for _, r := range t.content[t.lines[line]:offset] {
		character += utf16Len(r)
	}
	return line, character
}

// Offset converts a line and UTF-16 character to a byte offset. A character
// past the end of the line is clamped to the line end; a line past the end of
// the text is an error.
func (t *Text) Offset(line, character int) (int, error) {
	if line < 0 || line >= len(t.lines) {
		return 0, fmt.Errorf("line %d out of range (0-%d)", line, len(t.lines)-1)
	}
	if character < 0 {
		return 0, fmt.Errorf("negative character %d", character)
	}

	start := t.lines[line]
	text := t.line(line)
	units := 0
	for i, r := range text {
		if units >= character {
			return start + i, nil
		}
		units += utf16Len(r)
	}
	return start + len(text), nil
}

// ProtocolPosition converts a byte offset to an LSP position.
func (t *Text) ProtocolPosition(offset int) protocol.Position {
	line, character := t.Position(offset)
	l, _ := safecast.Conv[protocol.UInteger](line)
	c, _ := safecast.Conv[protocol.UInteger](character)
	return protocol.Position{Line: l, Character: c}
}

// OffsetOf converts an LSP position to a byte offset.
func (t *Text) OffsetOf(pos protocol.Position) (int, error) {
	return t.Offset(int(pos.Line), int(pos.Character))
}

// Range converts a span to an LSP range.
func (t *Text) Range(span source.Span) protocol.Range {
	return protocol.Range{
		Start: t.ProtocolPosition(span.Start),
		End:   t.ProtocolPosition(span.End),
	}
}

// Span converts an LSP range to a byte span.
func (t *Text) Span(r protocol.Range) (source.Span, error) {
	start, err := t.OffsetOf(r.Start)
	if err != nil {
		return source.NoSpan, fmt.Errorf("invalid start position: %w", err)
	}
	end, err := t.OffsetOf(r.End)
	if err != nil {
		return source.NoSpan, fmt.Errorf("invalid end position: %w", err)
	}
	if start > end {
		return source.NoSpan, fmt.Errorf("range start %d after end %d", start, end)
	}
	return source.Span{Start: start, End: end}, nil
}

// Apply returns the text after one content change. A change without a range
// replaces the whole document.
func (t *Text) Apply(change protocol.TextDocumentContentChangeEvent) (*Text, error) {
	if change.Range == nil {
		return NewText(change.Text), nil
	}
	span, err := t.Span(*change.Range)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.Grow(len(t.content) - span.Len() + len(change.Text))
	b.WriteString(t.content[:span.Start])
	b.WriteString(change.Text)
	b.WriteString(t.content[span.End:])
	return NewText(b.String()), nil
}

// ApplyChanges applies the content changes of one didChange notification in
// order. Elements may be ranged or whole-document events.
func (t *Text) ApplyChanges(changes []any) (*Text, error) {
	current := t
	for i, c := range changes {
		var err error
		switch change := c.(type) {
		case protocol.TextDocumentContentChangeEvent:
			current, err = current.Apply(change)
		case protocol.TextDocumentContentChangeEventWhole:
			current = NewText(change.Text)
		default:
			err = fmt.Errorf("unsupported content change %T", c)
		}
		if err != nil {
			return nil, fmt.Errorf("change %d: %w", i, err)
		}
	}
	return current, nil
}

func utf16Len(r rune) int {
	if r == utf8.RuneError || r <= 0xFFFF {
		return 1
	}
	return 2
}
