package dupe

import "github.com/gnolang/typelint/internal/syntax"

// Resolver maps a constituent to a type handle. Handles of the same
// type must compare equal with ==; IsInvalid identifies the handle of
// constituents that failed to resolve.
type Resolver[T comparable] interface {
	TypeOf(x syntax.Expr) T
	IsInvalid(t T) bool
}

// Group is the ordered list of constituents of one union or
// intersection.
type Group struct {
	Op    syntax.Kind // syntax.OR or syntax.AND
	Types []syntax.Expr
}

// GroupOf returns the group of a union or intersection node.
func GroupOf(n syntax.Node) (Group, bool) {
	switch n := n.(type) {
	case *syntax.UnionType:
		return Group{Op: syntax.OR, Types: n.Types}, true
	case *syntax.IntersectionType:
		return Group{Op: syntax.AND, Types: n.Types}, true
	}
	return Group{}, false
}

// Duplicate is a constituent that repeats an earlier one.
type Duplicate struct {
	Op    syntax.Kind
	Node  syntax.Expr // the redundant constituent
	First syntax.Expr // the occurrence it repeats
}

// Find returns the redundant constituents of g in source order. The
// cited first occurrence is never itself redundant.
func Find[T comparable](g Group, r Resolver[T]) []Duplicate {
	var (
		dups   []Duplicate
		unique []syntax.Expr
		seen   = make(map[T]syntax.Expr)
	)

next:
	for _, x := range g.Types {
		t := r.TypeOf(x)
		valid := !r.IsInvalid(t)

		for _, u := range unique {
			if Equal(u, x) {
				dups = append(dups, Duplicate{Op: g.Op, Node: x, First: u})
				continue next
			}
		}

		if valid {
			if first, ok := seen[t]; ok {
				dups = append(dups, Duplicate{Op: g.Op, Node: x, First: first})
				continue
			}
			seen[t] = x
		}
		unique = append(unique, x)
	}
	return dups
}
