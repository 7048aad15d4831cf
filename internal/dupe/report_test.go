package dupe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/typelint/internal/checker"
	"github.com/gnolang/typelint/internal/syntax"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "type S = string;\n", "S | number | string")
	n := f.group.Types[0].(*syntax.TypeRef)
	union := syntax.ParentOf(n)

	var diags []Diagnostic
	err := Check[*checker.Type](union, f.toks, f.check, func(d Diagnostic) {
		diags = append(diags, d)
	})
	require.NoError(t, err)
	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, MessageDuplicate, d.MessageID)
	assert.Equal(t, map[string]string{"type": "Union", "previous": "S"}, d.Data)
	assert.Equal(t, "Union type constituent is duplicated with S.", d.Message())
	assert.Equal(t, f.group.Types[2].Pos(), d.Start)
	assert.Equal(t, f.group.Types[2].End(), d.End)
	require.NotNil(t, d.Fix)
	assert.Equal(t, []string{"|", "string"}, f.spanTexts(*d.Fix))
}

func TestCheckIntersectionMessage(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "interface A { a: string }\n", "A & (A)")
	var diags []Diagnostic
	err := Check[*checker.Type](syntax.ParentOf(f.group.Types[0]), f.toks, f.check, func(d Diagnostic) {
		diags = append(diags, d)
	})
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "Intersection type constituent is duplicated with A.", diags[0].Message())

	// the reported range runs to the closing parenthesis
	assert.Equal(t, "A)", f.src[f.toks.Offset(diags[0].Start):f.toks.Offset(diags[0].End)])
}

func TestCheckIgnoresOtherNodes(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "", "string | string")
	called := false
	err := Check[*checker.Type](f.group.Types[0], f.toks, f.check, func(Diagnostic) { called = true })
	assert.NoError(t, err)
	assert.False(t, called)
}

// brokenTokens hides every combinator, so no removal can be computed.
type brokenTokens struct{ *syntax.TokenFile }

func (brokenTokens) Before(syntax.Node, func(syntax.Token) bool) (syntax.Token, bool) {
	return syntax.Token{}, false
}

func TestCheckReturnsRemovalErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "", "string | string | string")
	var diags []Diagnostic
	err := Check[*checker.Type](syntax.ParentOf(f.group.Types[0]), brokenTokens{f.toks}, f.check, func(d Diagnostic) {
		diags = append(diags, d)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoCombinator))
	assert.Empty(t, diags)
}

// shortTokens drops the tokens following a node, so wrapping parentheses
// never balance.
type shortTokens struct{ *syntax.TokenFile }

func (shortTokens) After(syntax.Node, int) []syntax.Token { return nil }

func TestCheckReportsUnbalancedWithoutFix(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "", "string | (string)")
	var diags []Diagnostic
	err := Check[*checker.Type](syntax.ParentOf(f.group.Types[0]), shortTokens{f.toks}, f.check, func(d Diagnostic) {
		diags = append(diags, d)
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnbalanced))

	require.Len(t, diags, 1)
	assert.Nil(t, diags[0].Fix)
	assert.Equal(t, f.group.Types[1].Pos(), diags[0].Start)
	assert.Equal(t, f.group.Types[1].End(), diags[0].End)
	assert.Equal(t, "Union type constituent is duplicated with string.", diags[0].Message())
}

func TestCheckIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "", "'a' | 'b' | \"a\" | 'b' | ('a')")
	fixed := f.deleteCovers(f.removals(t))
	assert.Equal(t, "type T = 'a' | 'b'   ;", fixed)

	again := newFixture(t, "", "'a' | 'b'   ")
	assert.Empty(t, Find[*checker.Type](again.group, again.check))
}

func TestOpName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Union", OpName(syntax.OR))
	assert.Equal(t, "Intersection", OpName(syntax.AND))
}

func TestMessageLeavesUnknownPlaceholders(t *testing.T) {
	t.Parallel()

	d := Diagnostic{Data: map[string]string{"type": "Union"}}
	assert.Equal(t, "Union type constituent is duplicated with {{previous}}.", d.Message())
}

func TestMessageKeepsPlaceholdersInSourceText(t *testing.T) {
	t.Parallel()

	d := Diagnostic{Data: map[string]string{"type": "Union", "previous": "'{{type}}'"}}
	for i := 0; i < 100; i++ {
		require.Equal(t, "Union type constituent is duplicated with '{{type}}'.", d.Message())
	}

	d = Diagnostic{Data: map[string]string{"type": "Intersection", "previous": "{{previous}}"}}
	assert.Equal(t, "Intersection type constituent is duplicated with {{previous}}.", d.Message())
}
