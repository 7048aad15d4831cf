// Package checker resolves type expressions to interned types.
//
// The rules follow the TypeScript checker where it matters for type
// identity: aliases are transparent, unions and intersections are
// flattened sets, array and tuple types are structural, while object
// literal and function types get a fresh identity at every occurrence.
package checker

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gnolang/typelint/internal/syntax"
)

// builtinArity lists the global generic types that are understood
// without a declaration, with their number of type arguments.
var builtinArity = map[string]int{
	"Array":         1,
	"ReadonlyArray": 1,
	"Promise":       1,
	"Set":           1,
	"ReadonlySet":   1,
	"Map":           2,
	"ReadonlyMap":   2,
	"Record":        2,
	"Partial":       1,
	"Required":      1,
	"Readonly":      1,
	"NonNullable":   1,
	"Date":          0,
	"RegExp":        0,
	"Error":         0,
	"Function":      0,
	"Object":        0,
}

// Checker resolves the type expressions of one file. It is safe for
// concurrent use.
type Checker struct {
	mu sync.Mutex

	aliases map[string]*syntax.TypeAlias
	ifaces  map[string]*syntax.InterfaceDecl

	nextID    int
	interned  map[string]*Type
	nodes     map[syntax.Node]*Type
	resolving map[string]bool
}

// New returns a checker for the declarations of f.
func New(f *syntax.File) *Checker {
	c := &Checker{
		aliases:   make(map[string]*syntax.TypeAlias),
		ifaces:    make(map[string]*syntax.InterfaceDecl),
		nextID:    firstID,
		interned:  make(map[string]*Type),
		nodes:     make(map[syntax.Node]*Type),
		resolving: make(map[string]bool),
	}
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *syntax.TypeAlias:
			if _, dup := c.aliases[d.Name.Name]; !dup {
				c.aliases[d.Name.Name] = d
			}
		case *syntax.InterfaceDecl:
			// merged declarations share one identity
			if _, dup := c.ifaces[d.Name.Name]; !dup {
				c.ifaces[d.Name.Name] = d
			}
		}
	}
	return c
}

// TypeOf returns the type denoted by x, or Invalid.
func (c *Checker) TypeOf(x syntax.Expr) *Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.typeOf(x, nil)
}

// IsInvalid reports whether t is the error type.
func (c *Checker) IsInvalid(t *Type) bool { return t == nil || t == Invalid }

// env binds type parameters while instantiating a generic alias.
type env map[*syntax.TypeParam]*Type

func (c *Checker) typeOf(x syntax.Expr, e env) *Type {
	if x == nil {
		return Invalid
	}
	if e == nil {
		if t, ok := c.nodes[x]; ok {
			return t
		}
	}
	t := c.resolve(x, e)
	if e == nil {
		c.nodes[x] = t
	}
	return t
}

func (c *Checker) resolve(x syntax.Expr, e env) *Type {
	switch x := x.(type) {
	case *syntax.Keyword:
		if t := intrinsics[x.Name]; t != nil {
			return t
		}
		return Invalid
	case *syntax.Literal:
		return c.literal(x)
	case *syntax.TypeRef:
		return c.typeRef(x, e)
	case *syntax.ArrayType:
		return c.array(KindArray, c.typeOf(x.Elem, e))
	case *syntax.IndexedAccess:
		return c.composite(KindIndexedAccess, "", c.typeOf(x.X, e), c.typeOf(x.Index, e))
	case *syntax.TupleType:
		return c.tuple(KindTuple, x, e)
	case *syntax.TypeOperator:
		if x.Op == syntax.KEYOF {
			return c.composite(KindKeyof, "", c.typeOf(x.X, e))
		}
		switch inner := x.X.(type) {
		case *syntax.ArrayType:
			return c.array(KindReadonlyArray, c.typeOf(inner.Elem, e))
		case *syntax.TupleType:
			return c.tuple(KindReadonlyTuple, inner, e)
		}
		return Invalid
	case *syntax.ObjectType:
		return c.fresh(KindObject, x)
	case *syntax.FuncType:
		return c.fresh(KindFunc, x)
	case *syntax.UnionType:
		return c.union(c.typesOf(x.Types, e))
	case *syntax.IntersectionType:
		return c.intersection(c.typesOf(x.Types, e))
	}
	// typeof queries need value declarations, which are not modelled
	return Invalid
}

func (c *Checker) typesOf(xs []syntax.Expr, e env) []*Type {
	ts := make([]*Type, len(xs))
	for i, x := range xs {
		ts[i] = c.typeOf(x, e)
	}
	return ts
}

// intern returns the unique type for key, creating it with mk.
func (c *Checker) intern(key string, mk func() *Type) *Type {
	if t, ok := c.interned[key]; ok {
		return t
	}
	t := mk()
	t.id = c.nextID
	c.nextID++
	c.interned[key] = t
	return t
}

func (c *Checker) fresh(kind TypeKind, decl syntax.Node) *Type {
	t := &Type{id: c.nextID, Kind: kind, decl: decl}
	c.nextID++
	return t
}

func key(kind TypeKind, name string, ts []*Type) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%s", kind, name)
	for _, t := range ts {
		fmt.Fprintf(&b, ",%d", t.id)
	}
	return b.String()
}

func hasInvalid(ts []*Type) bool {
	for _, t := range ts {
		if t == Invalid {
			return true
		}
	}
	return false
}

func (c *Checker) composite(kind TypeKind, name string, elems ...*Type) *Type {
	if hasInvalid(elems) {
		return Invalid
	}
	return c.intern(key(kind, name, elems), func() *Type {
		return &Type{Kind: kind, Name: name, Elems: elems}
	})
}

func (c *Checker) array(kind TypeKind, elem *Type) *Type {
	return c.composite(kind, "", elem)
}

func (c *Checker) tuple(kind TypeKind, x *syntax.TupleType, e env) *Type {
	elems := make([]*Type, len(x.Elems))
	flags := make([]byte, len(x.Elems))
	for i, el := range x.Elems {
		elems[i] = c.typeOf(el.Type, e)
		switch {
		case el.Rest:
			flags[i] = '.'
		case el.Optional:
			flags[i] = '?'
		default:
			flags[i] = ' '
		}
	}
	if hasInvalid(elems) {
		return Invalid
	}
	return c.intern(key(kind, string(flags), elems), func() *Type {
		return &Type{Kind: kind, Elems: elems, Flags: flags}
	})
}

func (c *Checker) literal(x *syntax.Literal) *Type {
	var value string
	switch x.Kind {
	case syntax.STRING:
		value = strconv.Quote(syntax.Unquote(x.Value))
	case syntax.NUMBER:
		value = canonicalNumber(x.Value)
	case syntax.TRUE, syntax.FALSE:
		value = x.Value
	default:
		return Invalid
	}
	return c.intern("lit:"+value, func() *Type {
		return &Type{Kind: KindLiteral, Value: value}
	})
}

// canonicalNumber spells equal numeric literals alike, so that 1, 1.0
// and 0x1 are one type. Bigint literals keep their suffix.
func canonicalNumber(lit string) string {
	s := strings.ReplaceAll(lit, "_", "")
	if strings.HasSuffix(s, "n") {
		s = strings.TrimSuffix(s, "n")
		if i, err := strconv.ParseInt(s, 0, 64); err == nil {
			return strconv.FormatInt(i, 10) + "n"
		}
		return s + "n"
	}
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	return s
}

func (c *Checker) union(ts []*Type) *Type {
	if hasInvalid(ts) {
		return Invalid
	}
	var flat []*Type
	var hasAny, hasUnknown bool
	for _, t := range ts {
		if t.Kind == KindUnion {
			flat = append(flat, t.Elems...)
			continue
		}
		switch t {
		case intrinsics["any"]:
			hasAny = true
		case intrinsics["unknown"]:
			hasUnknown = true
		case intrinsics["never"]:
			continue
		}
		flat = append(flat, t)
	}
	switch {
	case hasAny:
		return intrinsics["any"]
	case hasUnknown:
		return intrinsics["unknown"]
	}
	flat = sortedSet(flat)
	switch len(flat) {
	case 0:
		return intrinsics["never"]
	case 1:
		return flat[0]
	}
	return c.intern(key(KindUnion, "", flat), func() *Type {
		return &Type{Kind: KindUnion, Elems: flat}
	})
}

func (c *Checker) intersection(ts []*Type) *Type {
	if hasInvalid(ts) {
		return Invalid
	}
	var flat []*Type
	for _, t := range ts {
		if t.Kind == KindIntersection {
			flat = append(flat, t.Elems...)
			continue
		}
		switch t {
		case intrinsics["never"]:
			return t
		case intrinsics["any"]:
			return t
		case intrinsics["unknown"]:
			continue
		}
		flat = append(flat, t)
	}
	flat = sortedSet(flat)
	switch len(flat) {
	case 0:
		return intrinsics["unknown"]
	case 1:
		return flat[0]
	}
	return c.intern(key(KindIntersection, "", flat), func() *Type {
		return &Type{Kind: KindIntersection, Elems: flat}
	})
}

func (c *Checker) typeRef(x *syntax.TypeRef, e env) *Type {
	id, ok := x.Name.(*syntax.Ident)
	if !ok {
		// namespaces are not modelled
		return Invalid
	}
	args := c.typesOf(x.Args, e)
	if hasInvalid(args) {
		return Invalid
	}

	if tp := lookupTypeParam(x, id.Name); tp != nil {
		if len(args) > 0 {
			return Invalid
		}
		if t, ok := e[tp]; ok {
			return t
		}
		return c.intern(fmt.Sprintf("tparam:%p", tp), func() *Type {
			return &Type{Kind: KindTypeParam, Name: tp.Name.Name, decl: tp}
		})
	}
	if d, ok := c.aliases[id.Name]; ok {
		return c.instantiate(d, args)
	}
	if d, ok := c.ifaces[id.Name]; ok {
		if !arityOK(d.TypeParams, len(args)) {
			return Invalid
		}
		args = c.withDefaults(d.TypeParams, args)
		if args == nil && len(d.TypeParams) > 0 {
			return Invalid
		}
		return c.intern(key(KindInterface, fmt.Sprintf("%s@%p", id.Name, d), args), func() *Type {
			return &Type{Kind: KindInterface, Name: id.Name, Elems: args, decl: d}
		})
	}
	if n, ok := builtinArity[id.Name]; ok {
		if len(args) != n {
			return Invalid
		}
		switch id.Name {
		case "Array":
			return c.array(KindArray, args[0])
		case "ReadonlyArray":
			return c.array(KindReadonlyArray, args[0])
		}
		return c.composite(KindBuiltin, id.Name, args...)
	}
	return Invalid
}

// lookupTypeParam finds the type parameter named name that is in scope
// at n, by walking up to the enclosing declaration.
func lookupTypeParam(n syntax.Node, name string) *syntax.TypeParam {
	for p := syntax.ParentOf(n); p != nil; p = syntax.ParentOf(p) {
		var params []*syntax.TypeParam
		switch d := p.(type) {
		case *syntax.TypeAlias:
			params = d.TypeParams
		case *syntax.InterfaceDecl:
			params = d.TypeParams
		default:
			continue
		}
		for _, tp := range params {
			if tp.Name.Name == name {
				return tp
			}
		}
		return nil
	}
	return nil
}

func arityOK(params []*syntax.TypeParam, n int) bool {
	required := 0
	for _, tp := range params {
		if tp.Default == nil {
			required++
		}
	}
	return required <= n && n <= len(params)
}

// withDefaults completes args with the defaults of the remaining type
// parameters. It returns nil if a default cannot be resolved.
func (c *Checker) withDefaults(params []*syntax.TypeParam, args []*Type) []*Type {
	if len(args) == len(params) {
		return args
	}
	full := append([]*Type(nil), args...)
	bound := make(env, len(params))
	for i, a := range args {
		bound[params[i]] = a
	}
	for _, tp := range params[len(args):] {
		t := c.typeOf(tp.Default, bound)
		if t == Invalid {
			return nil
		}
		bound[tp] = t
		full = append(full, t)
	}
	return full
}

// instantiate resolves an alias, substituting args for its type
// parameters. Circular aliases resolve to Invalid.
func (c *Checker) instantiate(d *syntax.TypeAlias, args []*Type) *Type {
	if !arityOK(d.TypeParams, len(args)) {
		return Invalid
	}
	args = c.withDefaults(d.TypeParams, args)
	if args == nil && len(d.TypeParams) > 0 {
		return Invalid
	}

	k := key(KindInvalid, fmt.Sprintf("alias:%p", d), args)
	if t, ok := c.interned[k]; ok {
		return t
	}
	if c.resolving[k] {
		return Invalid
	}
	c.resolving[k] = true
	defer delete(c.resolving, k)

	var t *Type
	if len(d.TypeParams) == 0 {
		t = c.typeOf(d.Value, nil)
	} else {
		bound := make(env, len(args))
		for i, a := range args {
			bound[d.TypeParams[i]] = a
		}
		t = c.typeOf(d.Value, bound)
	}
	c.interned[k] = t
	return t
}

// Declared reports whether the name of ref denotes a type parameter,
// a declaration of the file or a built-in type. Qualified names are
// always reported as declared.
func (c *Checker) Declared(ref *syntax.TypeRef) bool {
	id, ok := ref.Name.(*syntax.Ident)
	if !ok {
		return true
	}
	if lookupTypeParam(ref, id.Name) != nil {
		return true
	}
	_, alias := c.aliases[id.Name]
	_, iface := c.ifaces[id.Name]
	_, builtin := builtinArity[id.Name]
	return alias || iface || builtin
}
