package fixer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/typelint/internal/lints"
	tt "github.com/gnolang/typelint/internal/types"
)

const confidenceThreshold = 0.8

func lintDuplicates(filename string, content []byte) ([]tt.Issue, error) {
	src, err := lints.ParseFile(filename, content)
	if err != nil {
		return nil, err
	}
	return lints.DetectDuplicateConstituents(src, lints.DuplicateConstituentsOptions{}, tt.SeverityError, nil)
}

func TestAutoFixer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
		dryRun   bool
	}{
		{
			name:     "Fix - Simple union",
			input:    "type T = string | number | string;\n",
			expected: "type T = string | number ;\n",
		},
		{
			name:     "Fix - Intersection",
			input:    "type A = { a: string };\ntype T = A & A;\n",
			expected: "type A = { a: string };\ntype T = A ;\n",
		},
		{
			name:     "Fix - Parenthesized constituent",
			input:    "type T = string | (string);\n",
			expected: "type T = string ;\n",
		},
		{
			name:     "Fix - Multiple duplicates",
			input:    "type T = 1 | 2 | 1 | 2;\n",
			expected: "type T = 1 | 2  ;\n",
		},
		{
			name:     "Fix - Nested groups converge",
			input:    "type T = (string | string) | (string | string);\n",
			expected: "type T = (string ) ;\n",
		},
		{
			name:     "No issues",
			input:    "type T = string | number;\n",
			expected: "type T = string | number;\n",
		},
		{
			name:     "Dry run leaves file untouched",
			input:    "type T = string | string;\n",
			expected: "type T = string | string;\n",
			dryRun:   true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			path := filepath.Join(tmpDir, "test.ts")
			require.NoError(t, os.WriteFile(path, []byte(tt.input), 0o644))

			var out bytes.Buffer
			fixer := New(tt.dryRun, confidenceThreshold, nil)
			fixer.Out = &out

			require.NoError(t, fixer.Fix(path, lintDuplicates))

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(content))

			if tt.dryRun {
				assert.Contains(t, out.String(), "Would fix")
				assert.Contains(t, out.String(), "+ type T = string ;")
			}
		})
	}
}

func TestFixIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.ts")
	require.NoError(t, os.WriteFile(path, []byte("type T = (A & A) | (A & A);\ninterface A {}\n"), 0o644))

	fixer := New(false, confidenceThreshold, nil)
	fixer.Out = &bytes.Buffer{}
	require.NoError(t, fixer.Fix(path, lintDuplicates))

	first, err := os.ReadFile(path)
	require.NoError(t, err)

	issues, err := lintDuplicates(path, first)
	require.NoError(t, err)
	assert.Empty(t, issues)

	require.NoError(t, fixer.Fix(path, lintDuplicates))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestApply(t *testing.T) {
	t.Parallel()

	content := []byte("0123456789")
	f := New(false, 0.5, nil)

	t.Run("back to front", func(t *testing.T) {
		out, n, err := f.Apply(content, []tt.Issue{
			{Confidence: 1, Edits: []tt.TextEdit{{Start: 6, End: 8}}},
			{Confidence: 1, Edits: []tt.TextEdit{{Start: 1, End: 3, NewText: "x"}}},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, "0x34589", string(out))
	})

	t.Run("overlap skipped", func(t *testing.T) {
		out, n, err := f.Apply(content, []tt.Issue{
			{Confidence: 1, Edits: []tt.TextEdit{{Start: 2, End: 6}}},
			{Confidence: 1, Edits: []tt.TextEdit{{Start: 4, End: 8}}},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, "016789", string(out))
	})

	t.Run("low confidence ignored", func(t *testing.T) {
		out, n, err := f.Apply(content, []tt.Issue{
			{Confidence: 0.1, Edits: []tt.TextEdit{{Start: 0, End: 1}}},
		})
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, string(content), string(out))
	})

	t.Run("out of range", func(t *testing.T) {
		_, _, err := f.Apply(content, []tt.Issue{
			{Confidence: 1, Edits: []tt.TextEdit{{Start: 5, End: 20}}},
		})
		assert.ErrorIs(t, err, ErrOutOfRange)
	})
}

func TestCheckOverlap(t *testing.T) {
	t.Parallel()

	assert.NoError(t, checkOverlap(tt.TextEdit{Start: 0, End: 2}, tt.TextEdit{Start: 2, End: 4}))
	assert.ErrorIs(t, checkOverlap(tt.TextEdit{Start: 0, End: 3}, tt.TextEdit{Start: 2, End: 4}), ErrOverlap)
	assert.ErrorIs(t, checkOverlap(tt.TextEdit{Start: 2, End: 2}, tt.TextEdit{Start: 2, End: 2}), ErrOverlap)
}
