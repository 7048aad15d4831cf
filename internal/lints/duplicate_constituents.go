package lints

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/typelint/internal/checker"
	"github.com/gnolang/typelint/internal/dupe"
	"github.com/gnolang/typelint/internal/syntax"
	tt "github.com/gnolang/typelint/internal/types"
)

const DuplicateConstituentsRule = "duplicate-type-constituents"

// DuplicateConstituentsOptions turns off one of the two checks.
type DuplicateConstituentsOptions struct {
	IgnoreIntersections bool
	IgnoreUnions        bool
}

// DuplicateConstituents reports constituents of union and intersection
// types that repeat an earlier constituent, with a fix removing them.
type DuplicateConstituents struct {
	src      *Source
	severity tt.Severity
	logger   *zap.Logger

	issues []tt.Issue
}

func NewDuplicateConstituents(src *Source, severity tt.Severity, logger *zap.Logger) *DuplicateConstituents {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DuplicateConstituents{src: src, severity: severity, logger: logger}
}

// CheckUnion reports the redundant constituents of a union.
func (r *DuplicateConstituents) CheckUnion(n *syntax.UnionType) { r.check(n) }

// CheckIntersection reports the redundant constituents of an intersection.
func (r *DuplicateConstituents) CheckIntersection(n *syntax.IntersectionType) { r.check(n) }

// Visitors returns the entry points enabled by opts, keyed by the
// combinator of the node they handle.
func (r *DuplicateConstituents) Visitors(opts DuplicateConstituentsOptions) map[syntax.Kind]func(syntax.Node) {
	v := make(map[syntax.Kind]func(syntax.Node), 2)
	if !opts.IgnoreUnions {
		v[syntax.OR] = func(n syntax.Node) { r.CheckUnion(n.(*syntax.UnionType)) }
	}
	if !opts.IgnoreIntersections {
		v[syntax.AND] = func(n syntax.Node) { r.CheckIntersection(n.(*syntax.IntersectionType)) }
	}
	return v
}

func (r *DuplicateConstituents) check(n syntax.Node) {
	err := dupe.Check[*checker.Type](n, r.src.Tokens, r.src.Checker, r.report(n))
	if err != nil {
		// a removal that cannot be computed is a bug in Find or the
		// parser, not something the user can act on
		r.logger.DPanic("cannot compute constituent removal",
			zap.String("file", r.src.Filename),
			zap.String("type", r.src.Tokens.Text(n)),
			zap.Error(err))
	}
}

func (r *DuplicateConstituents) report(group syntax.Node) func(dupe.Diagnostic) {
	return func(d dupe.Diagnostic) {
		issue := tt.Issue{
			Rule:       DuplicateConstituentsRule,
			Category:   "redundancy",
			Filename:   r.src.Filename,
			Message:    d.Message(),
			Start:      r.src.Position(d.Start),
			End:        r.src.Position(d.End),
			Confidence: 1.0,
			Severity:   r.severity,
		}
		if d.Fix != nil {
			cover := d.Fix.Cover()
			start, end := r.src.Offset(cover.Start), r.src.Offset(cover.End)
			issue.Suggestion = r.suggestion(group, start, end)
			issue.Edits = []tt.TextEdit{{Start: start, End: end}}
		}
		r.issues = append(r.issues, issue)
	}
}

// suggestion returns the text of group with [start, end) removed.
func (r *DuplicateConstituents) suggestion(group syntax.Node, start, end int) string {
	gs, ge := r.src.Offset(group.Pos()), r.src.Offset(group.End())
	src := r.src.Tokens.Src
	return strings.TrimSpace(string(src[gs:start]) + string(src[end:ge]))
}

// DetectDuplicateConstituents runs the rule over a whole file.
func DetectDuplicateConstituents(
	src *Source,
	opts DuplicateConstituentsOptions,
	severity tt.Severity,
	logger *zap.Logger,
) ([]tt.Issue, error) {
	r := NewDuplicateConstituents(src, severity, logger)
	visitors := r.Visitors(opts)
	if len(visitors) == 0 {
		return nil, nil
	}

	syntax.Inspect(src.File, func(n syntax.Node) bool {
		if n == nil {
			return false
		}
		if visit, ok := visitors[syntax.Operator(n)]; ok {
			visit(n)
		}
		return true
	})

	sort.SliceStable(r.issues, func(i, j int) bool {
		return r.issues[i].Start.Offset < r.issues[j].Start.Offset
	})
	return r.issues, nil
}
