package scanner

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

type FileInfo struct {
	Path string
	Size int64
}

// skipDirs are directories never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
}

// Scanner finds the source files below a root directory. A file is a
// target when its name ends with one of the suffixes, so ".d.ts" can be
// told apart from ".ts".
type Scanner struct {
	rootDir  string
	suffixes []string
}

func New(rootDir string, suffixes ...string) *Scanner {
	return &Scanner{
		rootDir:  rootDir,
		suffixes: suffixes,
	}
}

// Scan walks the root directory and returns the target files, sorted by path.
// Hidden directories and node_modules are skipped.
func (s *Scanner) Scan() ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.rootDir && isSkippedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.isTargetFile(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{Path: path, Size: info.Size()})
		return nil
	})

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

func isSkippedDir(name string) bool {
	return skipDirs[name] || (strings.HasPrefix(name, ".") && name != "." && name != "..")
}

func (s *Scanner) isTargetFile(name string) bool {
	if len(s.suffixes) == 0 {
		return true
	}
	for _, suffix := range s.suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
