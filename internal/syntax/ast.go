package syntax

import "github.com/CWBudde/go-nrs-lsp/internal/source"

// Node is implemented by every AST node.
type Node interface {
	Span() source.Span
}

// File is a parsed compilation unit.
type File struct {
	Items []Item
	Src   source.Span
}

func (f *File) Span() source.Span { return f.Src }

// Item is a top-level declaration: *FuncDecl or *StructDecl.
type Item interface {
	Node
	itemNode()
}

// Ident is a name together with its span.
type Ident struct {
	Name string
	Pos  source.Span
}

func (id *Ident) Span() source.Span { return id.Pos }

// FuncDecl is `fn name(params) -> result { body }`.
type FuncDecl struct {
	Name   *Ident
	Params []*Param
	Result TypeExpr // nil when omitted
	Body   *BlockExpr
	Pos    source.Span
}

// Param is `name` or `name: type`.
type Param struct {
	Name *Ident
	Type TypeExpr // nil when omitted
	Pos  source.Span
}

// StructDecl is `struct Name { field: type, ... }`.
type StructDecl struct {
	Name   *Ident
	Fields []*FieldDecl
	Pos    source.Span
}

// FieldDecl is one `name: type` entry of a struct.
type FieldDecl struct {
	Name *Ident
	Type TypeExpr // nil after a parse error
	Pos  source.Span
}

func (d *FuncDecl) Span() source.Span   { return d.Pos }
func (p *Param) Span() source.Span      { return p.Pos }
func (d *StructDecl) Span() source.Span { return d.Pos }
func (f *FieldDecl) Span() source.Span  { return f.Pos }

func (*FuncDecl) itemNode()   {}
func (*StructDecl) itemNode() {}

// TypeExpr is a type annotation: *NamedType or *ListType.
type TypeExpr interface {
	Node
	typeNode()
}

// NamedType is a builtin type name or a struct name.
type NamedType struct {
	Name *Ident
}

// ListType is `[elem]`.
type ListType struct {
	Elem TypeExpr // nil after a parse error
	Pos  source.Span
}

func (t *NamedType) Span() source.Span { return t.Name.Pos }
func (t *ListType) Span() source.Span  { return t.Pos }

func (*NamedType) typeNode() {}
func (*ListType) typeNode()  {}

// Expr is an expression node. The set of implementations is closed.
type Expr interface {
	Node
	exprNode()
}

// LiteralKind tells which literal a Literal holds.
type LiteralKind uint8

const (
	NumberLit LiteralKind = iota + 1
	StringLit
	BoolLit
	NullLit
)

type (
	// BadExpr stands in for an expression that failed to parse.
	BadExpr struct {
		Pos source.Span
	}

	// Literal is a number, string, bool or null literal.
	Literal struct {
		Kind  LiteralKind
		Value string // raw token text
		Pos   source.Span
	}

	// ListExpr is `[a, b, c]`.
	ListExpr struct {
		Elems []Expr
		Pos   source.Span
	}

	// NameExpr is a use of a name.
	NameExpr struct {
		Name *Ident
	}

	// LetExpr is `let name: type = init; body`. Body is nil when the let is
	// the last statement of its block.
	LetExpr struct {
		Name *Ident
		Type TypeExpr
		Init Expr
		Body Expr
		Pos  source.Span
	}

	// ThenExpr sequences two expressions: `first; second`. Second is nil for
	// a trailing `first;`.
	ThenExpr struct {
		First  Expr
		Second Expr
		Pos    source.Span
	}

	// UnaryExpr is `!x` or `-x`.
	UnaryExpr struct {
		Op  TokenKind
		X   Expr
		Pos source.Span
	}

	// BinaryExpr is `x op y`.
	BinaryExpr struct {
		Op TokenKind
		X  Expr
		Y  Expr
	}

	// CallExpr is `fun(args)`.
	CallExpr struct {
		Fun  Expr
		Args []Expr
		Pos  source.Span
	}

	// IfExpr is `if cond { then } else { else }`. Else is nil when absent and
	// may itself be an *IfExpr.
	IfExpr struct {
		Cond Expr
		Then *BlockExpr
		Else Expr
		Pos  source.Span
	}

	// PrintExpr is `print(x)`.
	PrintExpr struct {
		X   Expr
		Pos source.Span
	}

	// FieldExpr is `x.field`. Field is nil when the name after the dot is
	// missing, as while the user is still typing.
	FieldExpr struct {
		X     Expr
		Field *Ident
		Pos   source.Span
	}

	// StructLit is `Name { field: value, ... }`.
	StructLit struct {
		Name   *Ident
		Fields []*FieldInit
		Pos    source.Span
	}

	// FieldInit is one `field: value` entry of a struct literal.
	FieldInit struct {
		Name  *Ident
		Value Expr
		Pos   source.Span
	}

	// BlockExpr is `{ body }`. Body is nil for an empty block.
	BlockExpr struct {
		Body Expr
		Pos  source.Span
	}

	// ParenExpr is `(x)`.
	ParenExpr struct {
		X   Expr
		Pos source.Span
	}
)

func (e *BadExpr) Span() source.Span    { return e.Pos }
func (e *Literal) Span() source.Span    { return e.Pos }
func (e *ListExpr) Span() source.Span   { return e.Pos }
func (e *NameExpr) Span() source.Span   { return e.Name.Pos }
func (e *LetExpr) Span() source.Span    { return e.Pos }
func (e *ThenExpr) Span() source.Span   { return e.Pos }
func (e *UnaryExpr) Span() source.Span  { return e.Pos }
func (e *BinaryExpr) Span() source.Span { return e.X.Span().Cover(e.Y.Span()) }
func (e *CallExpr) Span() source.Span   { return e.Pos }
func (e *IfExpr) Span() source.Span     { return e.Pos }
func (e *PrintExpr) Span() source.Span  { return e.Pos }
func (e *FieldExpr) Span() source.Span  { return e.Pos }
func (e *StructLit) Span() source.Span  { return e.Pos }
func (e *FieldInit) Span() source.Span  { return e.Pos }
func (e *BlockExpr) Span() source.Span  { return e.Pos }
func (e *ParenExpr) Span() source.Span  { return e.Pos }

func (*BadExpr) exprNode()    {}
func (*Literal) exprNode()    {}
func (*ListExpr) exprNode()   {}
func (*NameExpr) exprNode()   {}
func (*LetExpr) exprNode()    {}
func (*ThenExpr) exprNode()   {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*CallExpr) exprNode()   {}
func (*IfExpr) exprNode()     {}
func (*PrintExpr) exprNode()  {}
func (*FieldExpr) exprNode()  {}
func (*StructLit) exprNode()  {}
func (*BlockExpr) exprNode()  {}
func (*ParenExpr) exprNode()  {}
