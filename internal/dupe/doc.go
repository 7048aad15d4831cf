// Package dupe finds redundant constituents of union and intersection
// types and computes the deletions that remove them.
//
// A constituent is redundant when an earlier constituent of the same
// group is either the same tree (ignoring positions and parent links)
// or resolves to the same type. Structural equality is checked first,
// so a literal repeat always cites the earliest identical constituent.
//
// Every removal deletes the combinator that precedes the constituent,
// never the one that follows. No two removals in a group can therefore
// claim the same token, and they may be applied in any order.
//
// Usage:
//
//	for _, d := range dupe.Find(group, resolver) {
//	    edit, err := dupe.ComputeRemoval(d, tokens)
//	    ...
//	}
package dupe
