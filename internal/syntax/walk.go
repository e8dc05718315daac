package syntax

// Inspect traverses the AST rooted at node in depth-first source order. It
// calls f(n) for each non-nil node; if f returns true, Inspect visits the
// children of n.
func Inspect(node Node, f func(Node) bool) {
	if IsNil(node) || !f(node) {
		return
	}
	for _, child := range Children(node) {
		Inspect(child, f)
	}
}

// Children returns the direct, non-nil children of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if !IsNil(c) {
			out = append(out, c)
		}
	}

	switch n := n.(type) {
	case *File:
		for _, item := range n.Items {
			add(item)
		}
	case *FuncDecl:
		add(n.Name)
		for _, p := range n.Params {
			add(p)
		}
		add(n.Result)
		add(n.Body)
	case *Param:
		add(n.Name)
		add(n.Type)
	case *StructDecl:
		add(n.Name)
		for _, f := range n.Fields {
			add(f)
		}
	case *FieldDecl:
		add(n.Name)
		add(n.Type)
	case *NamedType:
		add(n.Name)
	case *ListType:
		add(n.Elem)
	case *ListExpr:
		for _, e := range n.Elems {
			add(e)
		}
	case *NameExpr:
		add(n.Name)
	case *LetExpr:
		add(n.Name)
		add(n.Type)
		add(n.Init)
		add(n.Body)
	case *ThenExpr:
		add(n.First)
		add(n.Second)
	case *UnaryExpr:
		add(n.X)
	case *BinaryExpr:
		add(n.X)
		add(n.Y)
	case *CallExpr:
		add(n.Fun)
		for _, a := range n.Args {
			add(a)
		}
	case *IfExpr:
		add(n.Cond)
		add(n.Then)
		add(n.Else)
	case *PrintExpr:
		add(n.X)
	case *FieldExpr:
		add(n.X)
		add(n.Field)
	case *StructLit:
		add(n.Name)
		for _, f := range n.Fields {
			add(f)
		}
	case *FieldInit:
		add(n.Name)
		add(n.Value)
	case *BlockExpr:
		add(n.Body)
	case *ParenExpr:
		add(n.X)
	}
	return out
}

// IsNil reports whether n is nil or a typed nil pointer.
func IsNil(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *File:
		return n == nil
	case *FuncDecl:
		return n == nil
	case *Param:
		return n == nil
	case *StructDecl:
		return n == nil
	case *FieldDecl:
		return n == nil
	case *Ident:
		return n == nil
	case *NamedType:
		return n == nil
	case *ListType:
		return n == nil
	case *BadExpr:
		return n == nil
	case *Literal:
		return n == nil
	case *ListExpr:
		return n == nil
	case *NameExpr:
		return n == nil
	case *LetExpr:
		return n == nil
	case *ThenExpr:
		return n == nil
	case *UnaryExpr:
		return n == nil
	case *BinaryExpr:
		return n == nil
	case *CallExpr:
		return n == nil
	case *IfExpr:
		return n == nil
	case *PrintExpr:
		return n == nil
	case *FieldExpr:
		return n == nil
	case *StructLit:
		return n == nil
	case *FieldInit:
		return n == nil
	case *BlockExpr:
		return n == nil
	case *ParenExpr:
		return n == nil
	}
	return false
}
