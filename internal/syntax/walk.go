package syntax

// Inspect traverses the tree rooted at n in depth-first order. It
// calls f(n); if f returns true, Inspect visits each child of n
// and then calls f(nil).
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range children(n) {
		Inspect(c, f)
	}
	f(nil)
}

// children returns the direct child nodes of n in source order.
func children(n Node) []Node {
	var list []Node
	add := func(c Node) {
		if !isNil(c) {
			list = append(list, c)
		}
	}
	addExprs := func(xs []Expr) {
		for _, x := range xs {
			add(x)
		}
	}
	addParams := func(ps []*Param) {
		for _, p := range ps {
			add(p)
		}
	}
	addTypeParams := func(ps []*TypeParam) {
		for _, p := range ps {
			add(p)
		}
	}

	switch n := n.(type) {
	case *File:
		for _, d := range n.Decls {
			add(d)
		}
	case *TypeAlias:
		add(n.Name)
		addTypeParams(n.TypeParams)
		add(n.Value)
	case *InterfaceDecl:
		add(n.Name)
		addTypeParams(n.TypeParams)
		for _, e := range n.Extends {
			add(e)
		}
		add(n.Body)
	case *TypeParam:
		add(n.Name)
		add(n.Constraint)
		add(n.Default)
	case *TypeRef:
		add(n.Name)
		addExprs(n.Args)
	case *QualifiedName:
		add(n.X)
		add(n.Sel)
	case *ArrayType:
		add(n.Elem)
	case *IndexedAccess:
		add(n.X)
		add(n.Index)
	case *TupleType:
		for _, e := range n.Elems {
			add(e)
		}
	case *TupleElem:
		add(n.Label)
		add(n.Type)
	case *ObjectType:
		for _, m := range n.Members {
			add(m)
		}
	case *PropertySig:
		add(n.Key)
		add(n.Type)
	case *IndexSig:
		add(n.Param)
		add(n.Type)
	case *MethodSig:
		add(n.Key)
		addParams(n.Params)
		add(n.Result)
	case *Param:
		add(n.Name)
		add(n.Type)
	case *FuncType:
		addParams(n.Params)
		add(n.Result)
	case *TypeOperator:
		add(n.X)
	case *TypeQuery:
		add(n.Name)
	case *UnionType:
		addExprs(n.Types)
	case *IntersectionType:
		addExprs(n.Types)
	}
	return list
}

// isNil reports whether n is nil or a typed nil pointer.
func isNil(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *Ident:
		return n == nil
	case *ObjectType:
		return n == nil
	case *Param:
		return n == nil
	case *TypeRef:
		return n == nil
	}
	return false
}

func setParents(root Node) {
	var stack []Node
	Inspect(root, func(n Node) bool {
		if n == nil {
			stack = stack[:len(stack)-1]
			return false
		}
		if len(stack) > 0 {
			if sp, ok := n.(interface{ setParent(Node) }); ok {
				sp.setParent(stack[len(stack)-1])
			}
		}
		stack = append(stack, n)
		return true
	})
}

func (s *span) setParent(p Node) { s.Parent = p }
