package symbols

import "strings"

// Type is an element of the small type lattice used for display and member
// resolution. The set of implementations is closed.
type Type interface {
	String() string
	isType()
}

// BasicKind enumerates the scalar members of the lattice.
type BasicKind uint8

const (
	UnknownKind BasicKind = iota
	NumberKind
	StringKind
	BoolKind
	NullKind
)

// Basic is a scalar type.
type Basic struct {
	Kind BasicKind
}

var (
	Unknown Type = Basic{Kind: UnknownKind}
	Number  Type = Basic{Kind: NumberKind}
	String  Type = Basic{Kind: StringKind}
	Bool    Type = Basic{Kind: BoolKind}
	Null    Type = Basic{Kind: NullKind}
)

func (Basic) isType() {}

func (b Basic) String() string {
	switch b.Kind {
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case BoolKind:
		return "bool"
	case NullKind:
		return "null"
	default:
		return "unknown"
	}
}

// Func is the type of a function symbol.
type Func struct {
	Params []Type
	Result Type
}

func (Func) isType() {}

func (f Func) String() string {
	var b strings.Builder
	b.WriteString("fn(")
	for i, p := range f.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(display(p))
	}
	b.WriteString(") -> ")
	b.WriteString(display(f.Result))
	return b.String()
}

// List is a homogeneous list type.
type List struct {
	Elem Type
}

func (List) isType() {}

func (l List) String() string {
	return "[" + display(l.Elem) + "]"
}

// Struct is a user-declared struct type.
type Struct struct {
	Name string
	Decl SymbolID
}

func (Struct) isType() {}

func (s Struct) String() string { return s.Name }

func display(t Type) string {
	if t == nil {
		return Unknown.String()
	}
	return t.String()
}

// IsUnknown reports whether t carries no information.
func IsUnknown(t Type) bool {
	if t == nil {
		return true
	}
	b, ok := t.(Basic)
	return ok && b.Kind == UnknownKind
}

// Identical reports whether two types are structurally equal. Unknown is
// only identical to itself.
func Identical(a, b Type) bool {
	if IsUnknown(a) || IsUnknown(b) {
		return IsUnknown(a) && IsUnknown(b)
	}
	switch x := a.(type) {
	case Basic:
		y, ok := b.(Basic)
		return ok && x.Kind == y.Kind
	case List:
		y, ok := b.(List)
		return ok && Identical(x.Elem, y.Elem)
	case Struct:
		y, ok := b.(Struct)
		return ok && x.Decl == y.Decl
	case Func:
		y, ok := b.(Func)
		if !ok || len(x.Params) != len(y.Params) || !Identical(x.Result, y.Result) {
			return false
		}
		for i := range x.Params {
			if !Identical(x.Params[i], y.Params[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// BasicByName maps builtin type names to their types.
func BasicByName(name string) (Type, bool) {
	switch name {
	case "number":
		return Number, true
	case "string":
		return String, true
	case "bool":
		return Bool, true
	case "null":
		return Null, true
	}
	return nil, false
}
