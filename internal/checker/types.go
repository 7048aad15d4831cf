package checker

import (
	"sort"
	"strings"

	"github.com/gnolang/typelint/internal/syntax"
)

// TypeKind classifies a Type.
type TypeKind int

const (
	KindInvalid TypeKind = iota
	KindIntrinsic
	KindLiteral
	KindArray
	KindReadonlyArray
	KindTuple
	KindReadonlyTuple
	KindUnion
	KindIntersection
	KindInterface
	KindBuiltin
	KindTypeParam
	KindObject
	KindFunc
	KindKeyof
	KindIndexedAccess
)

// Type is a resolved type. Types are interned by the Checker that
// produced them: two expressions denote the same type exactly when
// they resolve to the same *Type.
type Type struct {
	id    int
	Kind  TypeKind
	Name  string  // intrinsic, interface, builtin or type parameter name
	Value string  // canonical literal value
	Elems []*Type // members, element types or type arguments
	Flags []byte  // tuple element flags: ' ', '?' or '.'

	decl syntax.Node
}

// Invalid is the type of expressions that could not be resolved. It is
// never equal to another type for the purpose of deduplication.
var Invalid = &Type{id: 0, Kind: KindInvalid, Name: "<invalid>"}

var intrinsicNames = []string{
	"any", "unknown", "never", "void", "undefined", "null",
	"string", "number", "boolean", "bigint", "symbol", "object",
}

// intrinsics are shared by all checkers.
var intrinsics = func() map[string]*Type {
	m := make(map[string]*Type, len(intrinsicNames))
	for i, name := range intrinsicNames {
		m[name] = &Type{id: i + 1, Kind: KindIntrinsic, Name: name}
	}
	return m
}()

// firstID is the first id handed out to non-intrinsic types.
var firstID = len(intrinsicNames) + 1

// Intrinsic returns the built-in type with the given name, or nil.
func Intrinsic(name string) *Type { return intrinsics[name] }

func (t *Type) String() string {
	var b strings.Builder
	writeType(&b, t)
	return b.String()
}

func writeType(b *strings.Builder, t *Type) {
	switch t.Kind {
	case KindInvalid, KindIntrinsic, KindTypeParam:
		b.WriteString(t.Name)
	case KindLiteral:
		b.WriteString(t.Value)
	case KindArray:
		writeElem(b, t.Elems[0])
		b.WriteString("[]")
	case KindReadonlyArray:
		b.WriteString("readonly ")
		writeElem(b, t.Elems[0])
		b.WriteString("[]")
	case KindTuple, KindReadonlyTuple:
		if t.Kind == KindReadonlyTuple {
			b.WriteString("readonly ")
		}
		b.WriteByte('[')
		for i, e := range t.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			if t.Flags[i] == '.' {
				b.WriteString("...")
			}
			writeType(b, e)
			if t.Flags[i] == '?' {
				b.WriteByte('?')
			}
		}
		b.WriteByte(']')
	case KindUnion, KindIntersection:
		sep := " | "
		if t.Kind == KindIntersection {
			sep = " & "
		}
		for i, e := range t.Elems {
			if i > 0 {
				b.WriteString(sep)
			}
			writeElem(b, e)
		}
	case KindInterface, KindBuiltin:
		b.WriteString(t.Name)
		if len(t.Elems) > 0 {
			b.WriteByte('<')
			for i, e := range t.Elems {
				if i > 0 {
					b.WriteString(", ")
				}
				writeType(b, e)
			}
			b.WriteByte('>')
		}
	case KindObject:
		b.WriteString("{...}")
	case KindFunc:
		b.WriteString("(...) => ...")
	case KindKeyof:
		b.WriteString("keyof ")
		writeElem(b, t.Elems[0])
	case KindIndexedAccess:
		writeElem(b, t.Elems[0])
		b.WriteByte('[')
		writeType(b, t.Elems[1])
		b.WriteByte(']')
	}
}

func writeElem(b *strings.Builder, t *Type) {
	if t.Kind == KindUnion || t.Kind == KindIntersection {
		b.WriteByte('(')
		writeType(b, t)
		b.WriteByte(')')
		return
	}
	writeType(b, t)
}

// sortedSet returns ts without duplicates, ordered by creation.
func sortedSet(ts []*Type) []*Type {
	seen := make(map[*Type]bool, len(ts))
	out := make([]*Type, 0, len(ts))
	for _, t := range ts {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
