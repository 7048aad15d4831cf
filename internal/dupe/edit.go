package dupe

import (
	"errors"
	"fmt"
	"go/token"

	"github.com/gnolang/typelint/internal/syntax"
)

var (
	// ErrNoCombinator means a constituent reported as redundant has no
	// combinator before it, i.e. it is the first of its group. Find never
	// reports such a constituent.
	ErrNoCombinator = errors.New("no combinator precedes the constituent")

	// ErrUnbalanced means the tokens around a constituent are not the
	// matching brackets the removal relies on.
	ErrUnbalanced = errors.New("unbalanced brackets around the constituent")
)

// Tokens gives access to the token stream around syntax nodes.
type Tokens interface {
	// Before returns the nearest token preceding n that satisfies match.
	Before(n syntax.Node, match func(syntax.Token) bool) (syntax.Token, bool)
	// Between returns the tokens between from and the start of n.
	Between(from syntax.Token, n syntax.Node) []syntax.Token
	// After returns up to count tokens following n.
	After(n syntax.Node, count int) []syntax.Token
	// Text returns the source text of n.
	Text(n syntax.Node) string
}

// Span is a half-open source range [Start, End).
type Span struct {
	Start token.Pos
	End   token.Pos
}

// Edit is a set of disjoint deletions, in source order.
type Edit struct {
	Spans []Span
}

// Start returns the start of the first deletion.
func (e Edit) Start() token.Pos { return e.Spans[0].Start }

// End returns the end of the last deletion.
func (e Edit) End() token.Pos { return e.Spans[len(e.Spans)-1].End }

// Cover returns the contiguous range from the first to the last
// deletion.
func (e Edit) Cover() Span { return Span{Start: e.Start(), End: e.End()} }

// ComputeRemoval returns the edit that deletes d.Node together with the
// combinator preceding it and any parentheses wrapping only d.Node.
func ComputeRemoval(d Duplicate, toks Tokens) (Edit, error) {
	op, ok := toks.Before(d.Node, func(t syntax.Token) bool { return t.Kind == d.Op })
	if !ok {
		return Edit{}, fmt.Errorf("%w: %q", ErrNoCombinator, toks.Text(d.Node))
	}

	leading := toks.Between(op, d.Node)
	trailing := toks.After(d.Node, len(leading))
	if len(trailing) != len(leading) {
		return Edit{}, fmt.Errorf("%w: %q", ErrUnbalanced, toks.Text(d.Node))
	}
	for i := range leading {
		if leading[i].Kind != syntax.LPAREN || trailing[i].Kind != syntax.RPAREN {
			return Edit{}, fmt.Errorf("%w: %q", ErrUnbalanced, toks.Text(d.Node))
		}
	}

	spans := make([]Span, 0, 2+2*len(leading))
	spans = append(spans, Span{op.Pos, op.End()})
	for _, t := range leading {
		spans = append(spans, Span{t.Pos, t.End()})
	}
	spans = append(spans, Span{d.Node.Pos(), d.Node.End()})
	for _, t := range trailing {
		spans = append(spans, Span{t.Pos, t.End()})
	}
	return Edit{Spans: spans}, nil
}
