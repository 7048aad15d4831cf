package checker

import (
	"go/token"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/typelint/internal/syntax"
)

func newChecker(t *testing.T, src string) (*Checker, map[string]syntax.Expr) {
	t.Helper()
	f, _, err := syntax.ParseFile(token.NewFileSet(), "test.ts", []byte(src))
	require.NoError(t, err)

	values := make(map[string]syntax.Expr)
	for _, d := range f.Decls {
		if a, ok := d.(*syntax.TypeAlias); ok {
			values[a.Name.Name] = a.Value
		}
	}
	return New(f), values
}

// sameType reports whether the aliases a and b resolve to one type.
func sameType(t *testing.T, src, a, b string) bool {
	t.Helper()
	c, values := newChecker(t, src)
	require.Contains(t, values, a)
	require.Contains(t, values, b)
	ta, tb := c.TypeOf(values[a]), c.TypeOf(values[b])
	require.False(t, c.IsInvalid(ta), "%s is invalid", a)
	require.False(t, c.IsInvalid(tb), "%s is invalid", b)
	return ta == tb
}

func TestTypeIdentity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		same bool
	}{
		{"same intrinsic", "type A = string; type B = string;", true},
		{"different intrinsics", "type A = string; type B = number;", false},
		{"string literal quotes", `type A = 'a'; type B = "a";`, true},
		{"different string literals", `type A = 'a'; type B = 'b';`, false},
		{"numeric spellings", "type A = 1; type B = 0x1;", true},
		{"float spelling", "type A = 1; type B = 1.0;", true},
		{"number separators", "type A = 1000; type B = 1_000;", true},
		{"bigint is not number", "type A = 1; type B = 1n;", false},
		{"negative literal", "type A = -1; type B = -1;", true},
		{"boolean literals", "type A = true; type B = false;", false},
		{"union order", "type A = string | number; type B = number | string;", true},
		{"nested union flattened", "type A = string | (number | boolean); type B = boolean | number | string;", true},
		{"union with duplicate", "type A = string | string; type B = string;", true},
		{"intersection order", "interface X {} interface Y {} type A = X & Y; type B = Y & X;", true},
		{"union absorbs never", "type A = string | never; type B = string;", true},
		{"union absorbed by any", "type A = string | any; type B = any;", true},
		{"union absorbed by unknown", "type A = string | unknown; type B = unknown;", true},
		{"intersection absorbs unknown", "type A = string & unknown; type B = string;", true},
		{"intersection absorbed by never", "type A = string & never; type B = never;", true},
		{"alias is transparent", "type S = string; type A = S; type B = string;", true},
		{"alias chain", "type S = string; type R = S; type A = R; type B = S;", true},
		{"array shorthand", "type A = string[]; type B = Array<string>;", true},
		{"readonly array shorthand", "type A = readonly string[]; type B = ReadonlyArray<string>;", true},
		{"readonly differs", "type A = readonly string[]; type B = string[];", false},
		{"tuples", "type A = [string, number]; type B = [string, number];", true},
		{"tuple labels ignored", "type A = [a: string]; type B = [b: string];", true},
		{"optional tuple element", "type A = [string?]; type B = [string];", false},
		{"builtins", "type A = Map<string, number>; type B = Map<string, number>;", true},
		{"builtin args", "type A = Promise<string>; type B = Promise<number>;", false},
		{"generic alias", "type Box<T> = T[]; type A = Box<string>; type B = string[];", true},
		{"generic alias args", "type Box<T> = T[]; type A = Box<string>; type B = Box<number>;", false},
		{"type param default", "type Box<T = string> = T[]; type A = Box; type B = Box<string>;", true},
		{"default refers to earlier param", "type P<T, U = T> = [T, U]; type A = P<string>; type B = [string, string];", true},
		{"interface per arguments", "interface I<T> {} type A = I<string>; type B = I<string>;", true},
		{"interface arguments differ", "interface I<T> {} type A = I<string>; type B = I<number>;", false},
		{"distinct interfaces", "interface I {} interface J {} type A = I; type B = J;", false},
		{"object literals are fresh", "type A = { a: string }; type B = { a: string };", false},
		{"function types are fresh", "type A = () => void; type B = () => void;", false},
		{"aliased object literal", "type O = { a: string }; type A = O; type B = O;", true},
		{"keyof", "interface I {} type A = keyof I; type B = keyof I;", true},
		{"indexed access", "interface I {} type A = I['a']; type B = I[\"a\"];", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.same, sameType(t, tt.src, "A", "B"))
		})
	}
}

func TestInvalidTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
	}{
		{"unresolved reference", "type A = Missing;"},
		{"unresolved member", "type A = string | Missing;"},
		{"circular aliases", "type A = B; type B = A;"},
		{"self reference", "type A = A[];"},
		{"missing type argument", "type Box<T> = T[]; type A = Box;"},
		{"too many type arguments", "type A = Array<string, number>;"},
		{"type parameter with arguments", "type A<T> = T<string>;"},
		{"typeof query", "type A = typeof x;"},
		{"qualified name", "type A = ns.Foo;"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, values := newChecker(t, tt.src)
			assert.True(t, c.IsInvalid(c.TypeOf(values["A"])))
		})
	}
}

func TestInvalidNeverEqual(t *testing.T) {
	t.Parallel()

	c, values := newChecker(t, "type A = Missing; type B = Missing;")
	ta, tb := c.TypeOf(values["A"]), c.TypeOf(values["B"])
	assert.Same(t, Invalid, ta)
	assert.Same(t, Invalid, tb)
	assert.True(t, c.IsInvalid(nil))
}

func TestTypeOfIsMemoized(t *testing.T) {
	t.Parallel()

	c, values := newChecker(t, "type A = { a: string };")
	first := c.TypeOf(values["A"])
	assert.Same(t, first, c.TypeOf(values["A"]))
}

func TestTypeOfConcurrent(t *testing.T) {
	t.Parallel()

	c, values := newChecker(t, "type S = string; type A = S | number; type B = number | string;")

	var wg sync.WaitGroup
	results := make([]*Type, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "A"
			if i%2 == 1 {
				name = "B"
			}
			results[i] = c.TypeOf(values[name])
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestDeclared(t *testing.T) {
	t.Parallel()

	src := `
interface I {}
type S = string;
type G<T> = T | Missing | I | S | Promise<T> | ns.Foo;
`
	f, toks, err := syntax.ParseFile(token.NewFileSet(), "test.ts", []byte(src))
	require.NoError(t, err)
	c := New(f)

	got := make(map[string]bool)
	syntax.Inspect(f, func(n syntax.Node) bool {
		if ref, ok := n.(*syntax.TypeRef); ok {
			got[toks.Text(ref)] = c.Declared(ref)
		}
		return true
	})

	assert.Equal(t, map[string]bool{
		"T":          true,
		"Missing":    false,
		"I":          true,
		"S":          true,
		"Promise<T>": true,
		"ns.Foo":     true,
	}, got)
}

func TestTypeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src  string
		want string
	}{
		{"type A = string;", "string"},
		{`type A = 'a';`, `"a"`},
		{"type A = 0x10;", "16"},
		{"type A = string[];", "string[]"},
		{"type A = (string | number)[];", "(string | number)[]"},
		{"type A = readonly [string, number?, ...boolean[]];", "readonly [string, number?, ...boolean[]]"},
		{"type A = Map<string, number>;", "Map<string, number>"},
		{"interface I<T> {} type A = I<string>;", "I<string>"},
		{"type A = { a: string };", "{...}"},
		{"type A = () => void;", "(...) => ..."},
		{"interface I {} type A = keyof I;", "keyof I"},
		{"type A = Missing;", "<invalid>"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.src, func(t *testing.T) {
			t.Parallel()
			c, values := newChecker(t, tt.src)
			assert.Equal(t, tt.want, c.TypeOf(values["A"]).String())
		})
	}
}

func TestIntrinsic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindIntrinsic, Intrinsic("string").Kind)
	assert.Same(t, Intrinsic("string"), Intrinsic("string"))
	assert.Nil(t, Intrinsic("Foo"))
}
