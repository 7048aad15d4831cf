package dupe

import (
	"errors"
	"go/token"
	"strings"

	"github.com/gnolang/typelint/internal/syntax"
)

// MessageDuplicate is the message id of every diagnostic of this package.
const MessageDuplicate = "duplicate"

const messageTemplate = "{{type}} type constituent is duplicated with {{previous}}."

// Diagnostic reports one redundant constituent.
type Diagnostic struct {
	MessageID string
	Data      map[string]string // "type" and "previous"
	Start     token.Pos
	End       token.Pos
	Fix       *Edit
}

// Message renders the diagnostic's message. Placeholders are filled in a
// single pass, so data containing a placeholder is kept verbatim, and
// placeholders without data are left as they are.
func (d Diagnostic) Message() string {
	var pairs []string
	for _, k := range []string{"type", "previous"} {
		if v, ok := d.Data[k]; ok {
			pairs = append(pairs, "{{"+k+"}}", v)
		}
	}
	return strings.NewReplacer(pairs...).Replace(messageTemplate)
}

// OpName returns the display name of a combinator.
func OpName(op syntax.Kind) string {
	if op == syntax.AND {
		return "Intersection"
	}
	return "Union"
}

// Check reports every redundant constituent of the union or
// intersection n. A duplicate without a preceding combinator is not
// reported. One whose brackets do not balance is reported without a fix.
// Either error is returned after all other constituents are handled.
func Check[T comparable](n syntax.Node, toks Tokens, r Resolver[T], report func(Diagnostic)) error {
	g, ok := GroupOf(n)
	if !ok {
		return nil
	}

	var errs []error
	for _, d := range Find(g, r) {
		diag := Diagnostic{
			MessageID: MessageDuplicate,
			Data: map[string]string{
				"type":     OpName(d.Op),
				"previous": toks.Text(d.First),
			},
			Start: d.Node.Pos(),
			End:   d.Node.End(),
		}

		edit, err := ComputeRemoval(d, toks)
		switch {
		case errors.Is(err, ErrNoCombinator):
			errs = append(errs, err)
			continue
		case err != nil:
			errs = append(errs, err)
		default:
			diag.End = edit.End()
			diag.Fix = &edit
		}
		report(diag)
	}
	return errors.Join(errs...)
}
