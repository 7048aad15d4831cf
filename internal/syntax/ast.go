package syntax

import "go/token"

// Node is implemented by every syntax tree node.
//
// A node's range never includes parentheses that wrap it: `(A | B)`
// is a UnionType spanning `A | B`. The enclosing node's range does
// include them.
type Node interface {
	Pos() token.Pos
	End() token.Pos
}

// Expr is a type expression.
type Expr interface {
	Node
	exprNode()
}

// Decl is a top-level declaration.
type Decl interface {
	Node
	declNode()
}

// span is embedded in every node. Its fields are bookkeeping, not
// content: two nodes that differ only in span are the same tree.
type span struct {
	Start  token.Pos
	Stop   token.Pos
	Parent Node
}

func (s *span) Pos() token.Pos { return s.Start }
func (s *span) End() token.Pos { return s.Stop }

// ParentOf returns the node that encloses n, or nil for a declaration.
func ParentOf(n Node) Node {
	if sp, ok := n.(interface{ parentNode() Node }); ok {
		return sp.parentNode()
	}
	return nil
}

func (s *span) parentNode() Node { return s.Parent }

type (
	// Comment is a // or /* */ comment.
	Comment struct {
		Slash token.Pos
		Text  string
	}

	// File is a parsed source file.
	File struct {
		span
		Name     string
		Decls    []Decl
		Comments []*Comment
	}

	// Ident is an identifier.
	Ident struct {
		span
		Name string
	}

	// TypeParam is a type parameter `T extends C = D`.
	TypeParam struct {
		span
		Name       *Ident
		Constraint Expr // or nil
		Default    Expr // or nil
	}
)

// Declarations.
type (
	// TypeAlias is `type Name<T> = Value`.
	TypeAlias struct {
		span
		Export     bool
		Declare    bool
		Name       *Ident
		TypeParams []*TypeParam
		Value      Expr
	}

	// InterfaceDecl is `interface Name<T> extends A, B { ... }`.
	InterfaceDecl struct {
		span
		Export     bool
		Declare    bool
		Name       *Ident
		TypeParams []*TypeParam
		Extends    []*TypeRef
		Body       *ObjectType
	}
)

// Type expressions.
type (
	// Keyword is an intrinsic type such as string or undefined.
	Keyword struct {
		span
		Name string
	}

	// Literal is a string, number or boolean literal type. Value is
	// the literal as written, including quotes and a leading minus.
	Literal struct {
		span
		Kind  Kind // STRING, NUMBER, TRUE or FALSE
		Value string
	}

	// TypeRef is a reference to a named type with optional arguments.
	TypeRef struct {
		span
		Name Expr // *Ident or *QualifiedName
		Args []Expr
	}

	// QualifiedName is `X.Sel` in a type reference.
	QualifiedName struct {
		span
		X   Expr
		Sel *Ident
	}

	// ArrayType is `Elem[]`.
	ArrayType struct {
		span
		Elem Expr
	}

	// IndexedAccess is `X[Index]`.
	IndexedAccess struct {
		span
		X     Expr
		Index Expr
	}

	// TupleType is `[A, B?, ...C]`.
	TupleType struct {
		span
		Elems []*TupleElem
	}

	// TupleElem is one element of a tuple, optionally labelled.
	TupleElem struct {
		span
		Rest     bool
		Label    *Ident // or nil
		Optional bool
		Type     Expr
	}

	// ObjectType is a type literal `{ a: T; [k: string]: U; m(): V }`.
	ObjectType struct {
		span
		Members []Member
	}

	// FuncType is `(a: A, ...b: B[]) => R`.
	FuncType struct {
		span
		Params []*Param
		Result Expr
	}

	// TypeOperator is `keyof X` or `readonly X`.
	TypeOperator struct {
		span
		Op Kind // KEYOF or READONLY
		X  Expr
	}

	// TypeQuery is `typeof x.y`.
	TypeQuery struct {
		span
		Name Expr
	}

	// UnionType is `A | B | C`, with an optional leading `|`.
	UnionType struct {
		span
		Types []Expr
	}

	// IntersectionType is `A & B & C`, with an optional leading `&`.
	IntersectionType struct {
		span
		Types []Expr
	}
)

// Member is an object type member.
type Member interface {
	Node
	memberNode()
}

type (
	// PropertySig is `readonly name?: T`.
	PropertySig struct {
		span
		Readonly bool
		Key      Expr // *Ident or *Literal
		Optional bool
		Type     Expr // or nil
	}

	// IndexSig is `[key: K]: T`.
	IndexSig struct {
		span
		Readonly bool
		Param    *Param
		Type     Expr
	}

	// MethodSig is `name?(params): R`.
	MethodSig struct {
		span
		Key      Expr
		Optional bool
		Params   []*Param
		Result   Expr // or nil
	}

	// Param is a function or method parameter.
	Param struct {
		span
		Rest     bool
		Name     *Ident
		Optional bool
		Type     Expr // or nil
	}
)

func (*TypeAlias) declNode()     {}
func (*InterfaceDecl) declNode() {}

func (*Keyword) exprNode()          {}
func (*Literal) exprNode()          {}
func (*TypeRef) exprNode()          {}
func (*QualifiedName) exprNode()    {}
func (*Ident) exprNode()            {}
func (*ArrayType) exprNode()        {}
func (*IndexedAccess) exprNode()    {}
func (*TupleType) exprNode()        {}
func (*ObjectType) exprNode()       {}
func (*FuncType) exprNode()         {}
func (*TypeOperator) exprNode()     {}
func (*TypeQuery) exprNode()        {}
func (*UnionType) exprNode()        {}
func (*IntersectionType) exprNode() {}

func (*PropertySig) memberNode() {}
func (*IndexSig) memberNode()    {}
func (*MethodSig) memberNode()   {}

// Operator returns the combinator kind joining the constituents of a
// union or intersection, or ILLEGAL for any other node.
func Operator(n Node) Kind {
	switch n.(type) {
	case *UnionType:
		return OR
	case *IntersectionType:
		return AND
	}
	return ILLEGAL
}
