// Package symbols stores the binding sites and use sites of one compiled
// document.
//
// Symbols and references live in slice arenas addressed by dense ids with
// index 0 reserved as the "none" sentinel. Side maps give exact span lookup
// and the backlinks from a symbol to every reference resolved to it. Once
// the resolver has finished, BuildIndex freezes the table and builds the
// interval index that point queries run against.
package symbols

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"fortio.org/safecast"

	"github.com/CWBudde/go-nrs-lsp/internal/interval"
	"github.com/CWBudde/go-nrs-lsp/internal/source"
)

var (
	// ErrDuplicateSpan is returned when a span already denotes an entity.
	ErrDuplicateSpan = errors.New("span already registered")
	// ErrUnknownSymbol is returned for ids outside the symbol arena.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrInvalidSpan is returned for empty or negative spans.
	ErrInvalidSpan = errors.New("invalid span")
	// ErrFrozen is returned when mutating a table after BuildIndex.
	ErrFrozen = errors.New("symbol table is already indexed")
)

// Tag tells whether an index entry is a binding or a reference.
type Tag uint8

const (
	TagBinding Tag = iota + 1
	TagReference
)

// Entry is the value stored in the interval index.
type Entry struct {
	Tag       Tag
	Symbol    SymbolID
	Reference ReferenceID
}

// Table owns the symbol and reference arenas of one document.
type Table struct {
	symbols    []Symbol
	references []Reference

	symbolBySpan map[source.Span]SymbolID
	refBySpan    map[source.Span]ReferenceID
	backlinks    map[SymbolID][]ReferenceID

	index *interval.Index[Entry]
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		symbols:      make([]Symbol, 1, 64), // index 0 reserved for NoSymbolID
		references:   make([]Reference, 1, 128),
		symbolBySpan: make(map[source.Span]SymbolID),
		refBySpan:    make(map[source.Span]ReferenceID),
		backlinks:    make(map[SymbolID][]ReferenceID),
	}
}

func (t *Table) checkSpan(span source.Span) error {
	if t.index != nil {
		return ErrFrozen
	}
	if !span.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidSpan, span)
	}
	if _, ok := t.symbolBySpan[span]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSpan, span)
	}
	if _, ok := t.refBySpan[span]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSpan, span)
	}
	return nil
}

// AddSymbol registers a binding site. A field whose Parent is a struct is
// appended to that struct's field list.
func (t *Table) AddSymbol(sym Symbol) (SymbolID, error) {
	if err := t.checkSpan(sym.Span); err != nil {
		return NoSymbolID, fmt.Errorf("add symbol %q: %w", sym.Name, err)
	}
	if sym.Parent.IsValid() && !t.exists(sym.Parent) {
		return NoSymbolID, fmt.Errorf("add symbol %q: parent %d: %w", sym.Name, sym.Parent, ErrUnknownSymbol)
	}
	value, err := safecast.Conv[uint32](len(t.symbols))
	if err != nil {
		return NoSymbolID, fmt.Errorf("symbol arena overflow: %w", err)
	}
	id := SymbolID(value)
	sym.Fields = nil
	t.symbols = append(t.symbols, sym)
	t.symbolBySpan[sym.Span] = id

	if sym.Kind == KindField && sym.Parent.IsValid() {
		parent := &t.symbols[sym.Parent]
		if parent.Kind == KindStruct {
			parent.Fields = append(parent.Fields, id)
		}
	}
	return id, nil
}

// AddReference registers a use site. A resolved reference is appended to
// the backlinks of its symbol.
func (t *Table) AddReference(ref Reference) (ReferenceID, error) {
	if err := t.checkSpan(ref.Span); err != nil {
		return NoReferenceID, fmt.Errorf("add reference %q: %w", ref.Name, err)
	}
	if ref.Symbol.IsValid() && !t.exists(ref.Symbol) {
		return NoReferenceID, fmt.Errorf("add reference %q: symbol %d: %w", ref.Name, ref.Symbol, ErrUnknownSymbol)
	}
	value, err := safecast.Conv[uint32](len(t.references))
	if err != nil {
		return NoReferenceID, fmt.Errorf("reference arena overflow: %w", err)
	}
	id := ReferenceID(value)
	t.references = append(t.references, ref)
	t.refBySpan[ref.Span] = id
	if ref.Symbol.IsValid() {
		t.backlinks[ref.Symbol] = append(t.backlinks[ref.Symbol], id)
	}
	return id, nil
}

// SetType attaches a type to a symbol.
func (t *Table) SetType(id SymbolID, typ Type) error {
	if t.index != nil {
		return ErrFrozen
	}
	if !t.exists(id) {
		return fmt.Errorf("set type of %d: %w", id, ErrUnknownSymbol)
	}
	t.symbols[id].Type = typ
	return nil
}

// SetScope records the visibility region of a symbol.
func (t *Table) SetScope(id SymbolID, scope source.Span) error {
	if t.index != nil {
		return ErrFrozen
	}
	if !t.exists(id) {
		return fmt.Errorf("set scope of %d: %w", id, ErrUnknownSymbol)
	}
	t.symbols[id].Scope = scope
	return nil
}

func (t *Table) exists(id SymbolID) bool {
	return id.IsValid() && int(id) < len(t.symbols)
}

// BuildIndex freezes the table and builds the interval index over every
// symbol span (tagged binding) and reference span (tagged reference).
func (t *Table) BuildIndex() {
	if t.index != nil {
		return
	}
	entries := make([]interval.Interval[Entry], 0, t.SymbolCount()+t.ReferenceCount())
	for i := 1; i < len(t.symbols); i++ {
		span := t.symbols[i].Span
		entries = append(entries, interval.Interval[Entry]{
			Start: span.Start,
			End:   span.End,
			Val:   Entry{Tag: TagBinding, Symbol: SymbolID(i)},
		})
	}
	for i := 1; i < len(t.references); i++ {
		ref := t.references[i]
		entries = append(entries, interval.Interval[Entry]{
			Start: ref.Span.Start,
			End:   ref.Span.End,
			Val:   Entry{Tag: TagReference, Symbol: ref.Symbol, Reference: ReferenceID(i)},
		})
	}
	t.index = interval.Build(entries)
}

// Indexed reports whether BuildIndex has run.
func (t *Table) Indexed() bool { return t.index != nil }

// At yields the index entries containing offset, smallest start first. It
// yields nothing before BuildIndex.
func (t *Table) At(offset int) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		if t.index == nil {
			return
		}
		for iv := range t.index.Query(offset) {
			if !yield(iv.Val) {
				return
			}
		}
	}
}

// SymbolAt returns the binding whose span contains offset.
func (t *Table) SymbolAt(offset int) (SymbolID, bool) {
	for e := range t.At(offset) {
		if e.Tag == TagBinding {
			return e.Symbol, true
		}
	}
	return NoSymbolID, false
}

// ReferenceAt returns the reference whose span contains offset.
func (t *Table) ReferenceAt(offset int) (ReferenceID, bool) {
	for e := range t.At(offset) {
		if e.Tag == TagReference {
			return e.Reference, true
		}
	}
	return NoReferenceID, false
}

// Symbol returns the symbol with the given id.
func (t *Table) Symbol(id SymbolID) (Symbol, bool) {
	if !t.exists(id) {
		return Symbol{}, false
	}
	return t.symbols[id], true
}

// Reference returns the reference with the given id.
func (t *Table) Reference(id ReferenceID) (Reference, bool) {
	if !id.IsValid() || int(id) >= len(t.references) {
		return Reference{}, false
	}
	return t.references[id], true
}

// SymbolBySpan returns the symbol defined exactly at span.
func (t *Table) SymbolBySpan(span source.Span) (SymbolID, bool) {
	id, ok := t.symbolBySpan[span]
	return id, ok
}

// ReferenceBySpan returns the reference located exactly at span.
func (t *Table) ReferenceBySpan(span source.Span) (ReferenceID, bool) {
	id, ok := t.refBySpan[span]
	return id, ok
}

// ReferencesOf returns the references resolved to id in creation order. The
// result is empty, never nil-with-error, for symbols without uses.
func (t *Table) ReferencesOf(id SymbolID) []ReferenceID {
	return slices.Clone(t.backlinks[id])
}

// FieldByName finds a field of a struct symbol. When a name is declared
// twice the later declaration wins.
func (t *Table) FieldByName(structID SymbolID, name string) (SymbolID, bool) {
	st, ok := t.Symbol(structID)
	if !ok || st.Kind != KindStruct {
		return NoSymbolID, false
	}
	for i := len(st.Fields) - 1; i >= 0; i-- {
		if t.symbols[st.Fields[i]].Name == name {
			return st.Fields[i], true
		}
	}
	return NoSymbolID, false
}

// Symbols yields every symbol in creation order.
func (t *Table) Symbols() iter.Seq2[SymbolID, Symbol] {
	return func(yield func(SymbolID, Symbol) bool) {
		for i := 1; i < len(t.symbols); i++ {
			if !yield(SymbolID(i), t.symbols[i]) {
				return
			}
		}
	}
}

// References yields every reference in creation order.
func (t *Table) References() iter.Seq2[ReferenceID, Reference] {
	return func(yield func(ReferenceID, Reference) bool) {
		for i := 1; i < len(t.references); i++ {
			if !yield(ReferenceID(i), t.references[i]) {
				return
			}
		}
	}
}

// SymbolCount reports the number of symbols, excluding the sentinel.
func (t *Table) SymbolCount() int { return len(t.symbols) - 1 }

// ReferenceCount reports the number of references, excluding the sentinel.
func (t *Table) ReferenceCount() int { return len(t.references) - 1 }
