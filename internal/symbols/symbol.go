package symbols

import "github.com/CWBudde/go-nrs-lsp/internal/source"

// Kind classifies a binding site.
type Kind uint8

const (
	KindFunction Kind = iota + 1
	KindVariable
	KindParameter
	KindStruct
	KindField
)

func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindVariable:
		return "variable"
	case KindParameter:
		return "parameter"
	case KindStruct:
		return "struct"
	case KindField:
		return "field"
	default:
		return "unknown"
	}
}

// ReferenceKind classifies a use site.
type ReferenceKind uint8

const (
	// RefValue is a name used as an expression.
	RefValue ReferenceKind = iota + 1
	// RefType is a name used in a type position or as a struct literal head.
	RefType
	// RefField is a field key inside a struct literal.
	RefField
)

// Symbol is a binding site.
type Symbol struct {
	Name string
	Span source.Span
	Kind Kind
	// Type is nil until a type is attached.
	Type Type
	// Scope is the region in which the name is visible by lexical lookup.
	// Top-level items and fields leave it empty.
	Scope source.Span
	// Parent is the enclosing function for parameters and variables, and the
	// owning struct for fields.
	Parent SymbolID
	// Fields lists the fields of a struct in declaration order.
	Fields []SymbolID
}

// TypeOrUnknown returns the attached type, or Unknown when none is known.
func (s Symbol) TypeOrUnknown() Type {
	if s.Type == nil {
		return Unknown
	}
	return s.Type
}

// Reference is a use of a name. Symbol is NoSymbolID when the name did not
// resolve.
type Reference struct {
	Name   string
	Span   source.Span
	Kind   ReferenceKind
	Symbol SymbolID
}

// Resolved reports whether the reference points to a symbol.
func (r Reference) Resolved() bool { return r.Symbol.IsValid() }
