package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gnolang/typelint/internal/lints"
	"github.com/gnolang/typelint/internal/types"
)

// createTempDir creates a temporary directory and returns its path.
// It also registers a cleanup function to remove the directory after the test.
func createTempDir(t testing.TB, prefix string) string {
	tempDir, err := os.MkdirTemp("", prefix)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })
	return tempDir
}

func ruleNames(issues []types.Issue) []string {
	var names []string
	for _, issue := range issues {
		names = append(names, issue.Rule)
	}
	return names
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	tempDir := createTempDir(t, "engine_test")

	engine, err := NewEngine(tempDir, nil, nil)
	assert.NoError(t, err)
	assert.NotNil(t, engine)
	assert.Len(t, engine.rules, 2)
	assert.Equal(t, []string{tempDir}, engine.watchDirs)
}

func TestRuleRegistry(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		lints.DuplicateConstituentsRule,
		lints.UnresolvedReferenceRule,
	}, RuleNames())

	rule, ok := NewRule(lints.DuplicateConstituentsRule, nil)
	require.True(t, ok)
	assert.Equal(t, lints.DuplicateConstituentsRule, rule.Name())
	assert.Equal(t, types.SeverityError, rule.Severity())

	rule, ok = NewRule(lints.UnresolvedReferenceRule, zap.NewNop())
	require.True(t, ok)
	assert.Equal(t, types.SeverityWarning, rule.Severity())

	_, ok = NewRule("no-such-rule", nil)
	assert.False(t, ok)
}

func TestEngine_IgnoreRule(t *testing.T) {
	t.Parallel()
	engine := &Engine{}
	engine.IgnoreRule("test_rule")

	assert.True(t, engine.ignoredRules["test_rule"])
}

func TestEngine_RunSource(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine("", nil, nil)
	require.NoError(t, err)

	src := []byte("type A = Missing | string | string;\n")
	issues, err := engine.RunSource(src)
	require.NoError(t, err)

	// sorted by offset: the reference comes first
	assert.Equal(t, []string{lints.UnresolvedReferenceRule, lints.DuplicateConstituentsRule}, ruleNames(issues))
	assert.Equal(t, types.SeverityWarning, issues[0].Severity)
	assert.Equal(t, types.SeverityError, issues[1].Severity)

	_, err = engine.RunSource([]byte("type A = ;"))
	assert.Error(t, err)
}

func TestEngine_RuleConfiguration(t *testing.T) {
	t.Parallel()

	src := []byte("interface I {}\ntype A = (I & I) | (I & I) | Missing;\n")

	tests := []struct {
		name     string
		rules    map[string]types.ConfigRule
		expected []string
		severity types.Severity
	}{
		{
			name: "defaults",
			expected: []string{
				lints.DuplicateConstituentsRule,
				lints.DuplicateConstituentsRule,
				lints.DuplicateConstituentsRule,
				lints.UnresolvedReferenceRule,
			},
			severity: types.SeverityError,
		},
		{
			name: "severity override",
			rules: map[string]types.ConfigRule{
				lints.DuplicateConstituentsRule: {Severity: types.SeverityInfo},
				lints.UnresolvedReferenceRule:   {Severity: types.SeverityOff},
			},
			expected: []string{
				lints.DuplicateConstituentsRule,
				lints.DuplicateConstituentsRule,
				lints.DuplicateConstituentsRule,
			},
			severity: types.SeverityInfo,
		},
		{
			name: "ignore unions",
			rules: map[string]types.ConfigRule{
				lints.DuplicateConstituentsRule: {
					Severity: types.SeverityWarning,
					Options:  map[string]any{"ignore-unions": true},
				},
				lints.UnresolvedReferenceRule: {Severity: types.SeverityOff},
			},
			expected: []string{
				lints.DuplicateConstituentsRule,
				lints.DuplicateConstituentsRule,
			},
			severity: types.SeverityWarning,
		},
		{
			name: "ignore both",
			rules: map[string]types.ConfigRule{
				lints.DuplicateConstituentsRule: {
					Options: map[string]any{"ignore-unions": true, "ignore-intersections": true},
				},
			},
			expected: []string{lints.UnresolvedReferenceRule},
			severity: types.SeverityWarning,
		},
		{
			name: "unknown rule is skipped",
			rules: map[string]types.ConfigRule{
				"no-such-rule":                {Severity: types.SeverityError},
				lints.UnresolvedReferenceRule: {Severity: types.SeverityOff},
				lints.DuplicateConstituentsRule: {
					Options: map[string]any{"ignore-intersections": true},
				},
			},
			expected: []string{lints.DuplicateConstituentsRule},
			severity: types.SeverityError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine, err := NewEngine("", tt.rules, nil)
			require.NoError(t, err)

			issues, err := engine.RunSource(src)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.expected, ruleNames(issues))
			if len(issues) > 0 {
				assert.Equal(t, tt.severity, issues[0].Severity)
			}
		})
	}
}

func TestEngine_Nolint(t *testing.T) {
	t.Parallel()

	src := []byte(`type A = string | string; //nolint
//nolint:unresolved-type-reference
type B = Missing | Missing;
type C = number | number;
`)
	engine, err := NewEngine("", nil, nil)
	require.NoError(t, err)

	issues, err := engine.RunSource(src)
	require.NoError(t, err)

	var lines []int
	for _, issue := range issues {
		lines = append(lines, issue.Start.Line)
	}
	assert.Equal(t, []string{lints.DuplicateConstituentsRule, lints.DuplicateConstituentsRule}, ruleNames(issues))
	assert.Equal(t, []int{3, 4}, lines)
}

func TestEngine_Run(t *testing.T) {
	t.Parallel()

	tempDir := createTempDir(t, "engine_run_test")
	file := filepath.Join(tempDir, "types.ts")
	require.NoError(t, os.WriteFile(file, []byte("export type A = 1 | 2 | 1;\n"), 0o644))

	engine, err := NewEngine(tempDir, nil, nil)
	require.NoError(t, err)

	issues, err := engine.Run(file)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, file, issues[0].Filename)
	assert.Equal(t, "Union type constituent is duplicated with 1.", issues[0].Message)

	_, err = engine.Run(filepath.Join(tempDir, "missing.ts"))
	assert.Error(t, err)
}

func TestEngine_IgnorePath(t *testing.T) {
	t.Parallel()

	tempDir := createTempDir(t, "engine_ignore_test")
	gen := filepath.Join(tempDir, "gen")
	require.NoError(t, os.MkdirAll(gen, 0o755))

	content := []byte("type A = string | string;\n")
	files := map[string]string{
		"kept":      filepath.Join(tempDir, "kept.ts"),
		"generated": filepath.Join(gen, "types.ts"),
		"decl":      filepath.Join(tempDir, "lib.d.ts"),
	}
	for _, f := range files {
		require.NoError(t, os.WriteFile(f, content, 0o644))
	}

	engine, err := NewEngine(tempDir, nil, nil)
	require.NoError(t, err)
	engine.IgnorePath(gen)
	engine.IgnorePath("*.d.ts")

	for name, f := range files {
		issues, err := engine.Run(f)
		require.NoError(t, err)
		if name == "kept" {
			assert.Len(t, issues, 1, name)
		} else {
			assert.Empty(t, issues, name)
		}
	}
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine("", nil, nil)
	require.NoError(t, err)

	full := engine.fingerprint()
	assert.Equal(t, "duplicate-type-constituents=ERROR;unresolved-type-reference=WARNING;", full)

	engine.IgnoreRule(lints.UnresolvedReferenceRule)
	assert.Equal(t, "duplicate-type-constituents=ERROR;", engine.fingerprint())
}

func TestReadSourceCode(t *testing.T) {
	t.Parallel()
	tempDir := createTempDir(t, "source_code_test")

	testFile := filepath.Join(tempDir, "test.ts")
	content := "interface A {\n\ta: string;\n}\n\ntype B = A | A;"
	err := os.WriteFile(testFile, []byte(content), 0o644)
	require.NoError(t, err)

	sourceCode, err := ReadSourceCode(testFile)
	assert.NoError(t, err)
	assert.NotNil(t, sourceCode)
	assert.Len(t, sourceCode.Lines, 5)
	assert.Equal(t, "interface A {", sourceCode.Lines[0])
}

func BenchmarkRunSource(b *testing.B) {
	engine, err := NewEngine("", nil, nil)
	require.NoError(b, err)

	var sb strings.Builder
	for i := 0; i < 500; i++ {
		sb.WriteString("type T = string | number | string | { a: 1 } | { a: 1 };\n")
	}
	src := []byte(sb.String())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := engine.RunSource(src); err != nil {
			b.Fatal(err)
		}
	}
}
