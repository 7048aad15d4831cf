package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectScanner(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	files := map[string]string{
		"a.ts":                     "type A = string;",
		"b.mts":                    "type B = number;",
		"types.d.ts":               "declare type C = A | B;",
		"readme.txt":               "This is a text file",
		"subdir/c.cts":             "type D = C;",
		"node_modules/pkg/x.ts":    "type X = 1;",
		".cache/generated/y.ts":    "type Y = 2;",
		"subdir/nested/deep/e.ts":  "type E = A & A;",
		"subdir/nested/deep/e.tsx": "ignored",
	}

	for path, content := range files {
		fullPath := filepath.Join(tempDir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
	}

	scannedFiles, err := New(tempDir, ".ts", ".mts", ".cts").Scan()
	require.NoError(t, err)

	var got []string
	for _, file := range scannedFiles {
		rel, err := filepath.Rel(tempDir, file.Path)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
		assert.Greater(t, file.Size, int64(0))
	}

	assert.Equal(t, []string{
		"a.ts",
		"b.mts",
		"subdir/c.cts",
		"subdir/nested/deep/e.ts",
		"types.d.ts",
	}, got)
}

func TestScannerWithoutExtensions(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "a.ts"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "b.txt"), []byte("y"), 0o644))

	scannedFiles, err := New(tempDir).Scan()
	require.NoError(t, err)
	assert.Len(t, scannedFiles, 2)
}

func TestScannerMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "missing"), ".ts").Scan()
	assert.Error(t, err)
}

func TestScannerDeclarationFiles(t *testing.T) {
	t.Parallel()
	tempDir := t.TempDir()

	for _, name := range []string{"a.ts", "b.d.ts", "c.d.mts"} {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, name), []byte("x"), 0o644))
	}

	scannedFiles, err := New(tempDir, ".d.ts").Scan()
	require.NoError(t, err)
	require.Len(t, scannedFiles, 1)
	assert.Equal(t, filepath.Join(tempDir, "b.d.ts"), scannedFiles[0].Path)
}
