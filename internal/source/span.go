// Package source defines byte-offset spans shared by the parser, the symbol
// table and the navigation layer.
package source

import "fmt"

// Span is a half-open byte range [Start, End) in a document.
type Span struct {
	Start int
	End   int
}

// NoSpan is the zero span; it never denotes a real entity.
var NoSpan = Span{}

// Len returns the number of bytes covered.
func (s Span) Len() int {
	return s.End - s.Start
}

// Empty reports whether the span covers no bytes.
func (s Span) Empty() bool {
	return s.Start >= s.End
}

// Valid reports whether the span is well formed and non-empty.
func (s Span) Valid() bool {
	return s.Start >= 0 && s.Start < s.End
}

// Contains reports whether offset lies inside the span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// ContainsInclusive also accepts the offset right after the last byte, which
// is where an editor cursor sits after typing a word.
func (s Span) ContainsInclusive(offset int) bool {
	return offset >= s.Start && offset <= s.End
}

// Cover returns the smallest span that includes both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Text returns the slice of text the span covers, or "" when out of range.
func (s Span) Text(text string) string {
	if s.Start < 0 || s.End > len(text) || s.Start > s.End {
		return ""
	}
	return text[s.Start:s.End]
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}
