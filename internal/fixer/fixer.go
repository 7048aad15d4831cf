package fixer

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/gnolang/typelint/internal/syntax"
	tt "github.com/gnolang/typelint/internal/types"
)

// DefaultMaxPasses bounds the lint and fix cycles run on one file.
const DefaultMaxPasses = 10

var (
	// ErrOverlap is returned for an edit that overlaps one already accepted.
	ErrOverlap = errors.New("edit overlaps a previous edit")
	// ErrOutOfRange is returned for an edit outside the file content.
	ErrOutOfRange = errors.New("edit out of range")
)

// LintFunc lints content as the file filename.
type LintFunc func(filename string, content []byte) ([]tt.Issue, error)

type Fixer struct {
	DryRun        bool
	MinConfidence float64 // threshold for fixing issues
	MaxPasses     int
	Out           io.Writer

	logger *zap.Logger
}

func New(dryRun bool, threshold float64, logger *zap.Logger) *Fixer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fixer{
		DryRun:        dryRun,
		MinConfidence: threshold,
		MaxPasses:     DefaultMaxPasses,
		Out:           os.Stdout,
		logger:        logger,
	}
}

// Fix lints filename and applies the fixes of the reported issues until
// no fixable issue remains. The file is only written if the result
// still parses. In dry-run mode the changes are printed instead.
func (f *Fixer) Fix(filename string, lint LintFunc) error {
	original, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	content := original
	for pass := 0; pass < f.maxPasses(); pass++ {
		issues, err := lint(filename, content)
		if err != nil {
			return fmt.Errorf("failed to lint file: %w", err)
		}

		fixed, n, err := f.Apply(content, issues)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		if _, _, err := syntax.ParseFile(token.NewFileSet(), filename, fixed); err != nil {
			return fmt.Errorf("fixed source no longer parses: %w", err)
		}

		f.logger.Debug("applied fixes",
			zap.String("file", filename),
			zap.Int("pass", pass+1),
			zap.Int("edits", n))
		content = fixed
	}

	if bytes.Equal(original, content) {
		return nil
	}

	if f.DryRun {
		f.printDiff(filename, original, content)
		return nil
	}

	info, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if err := os.WriteFile(filename, content, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Fprintf(f.Out, "Fixed issues in %s\n", filename)
	return nil
}

// Apply applies the edits of the issues meeting the confidence threshold
// to content and returns the result with the number of edits applied.
// An edit overlapping an earlier one is skipped; a later pass picks it
// up again if it still applies.
func (f *Fixer) Apply(content []byte, issues []tt.Issue) ([]byte, int, error) {
	var edits []tt.TextEdit
	for _, issue := range issues {
		if issue.Confidence < f.MinConfidence {
			continue
		}
		edits = append(edits, issue.Edits...)
	}
	if len(edits) == 0 {
		return content, 0, nil
	}

	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Start != edits[j].Start {
			return edits[i].Start < edits[j].Start
		}
		return edits[i].End < edits[j].End
	})

	accepted := make([]tt.TextEdit, 0, len(edits))
	for _, e := range edits {
		if e.Start < 0 || e.End < e.Start || e.End > len(content) {
			return nil, 0, fmt.Errorf("%w: [%d, %d) in %d bytes", ErrOutOfRange, e.Start, e.End, len(content))
		}
		if len(accepted) > 0 {
			if err := checkOverlap(accepted[len(accepted)-1], e); err != nil {
				f.logger.Debug("skipping edit", zap.Int("start", e.Start), zap.Int("end", e.End), zap.Error(err))
				continue
			}
		}
		accepted = append(accepted, e)
	}

	out := append([]byte(nil), content...)
	for i := len(accepted) - 1; i >= 0; i-- {
		e := accepted[i]
		out = append(out[:e.Start], append([]byte(e.NewText), out[e.End:]...)...)
	}
	return out, len(accepted), nil
}

// checkOverlap reports whether next, starting at or after prev, overlaps it.
// Two insertions at the same offset also conflict.
func checkOverlap(prev, next tt.TextEdit) error {
	if next.Start < prev.End || (next.Start == prev.Start && prev.Start == prev.End) {
		return ErrOverlap
	}
	return nil
}

func (f *Fixer) maxPasses() int {
	if f.MaxPasses <= 0 {
		return DefaultMaxPasses
	}
	return f.MaxPasses
}

var (
	removedStyle = color.New(color.FgRed)
	addedStyle   = color.New(color.FgGreen)
	headerStyle  = color.New(color.Bold)
)

// printDiff prints the changed region of the file, line by line.
func (f *Fixer) printDiff(filename string, before, after []byte) {
	a := strings.Split(string(before), "\n")
	b := strings.Split(string(after), "\n")

	prefix := 0
	for prefix < len(a) && prefix < len(b) && a[prefix] == b[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(a)-prefix && suffix < len(b)-prefix &&
		a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	headerStyle.Fprintf(f.Out, "Would fix %s at line %d:\n", filename, prefix+1)
	for _, line := range a[prefix : len(a)-suffix] {
		removedStyle.Fprintf(f.Out, "- %s\n", line)
	}
	for _, line := range b[prefix : len(b)-suffix] {
		addedStyle.Fprintf(f.Out, "+ %s\n", line)
	}
}
