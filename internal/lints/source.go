package lints

import (
	"go/token"
	"os"

	"github.com/gnolang/typelint/internal/checker"
	"github.com/gnolang/typelint/internal/syntax"
)

// Source is a parsed file, shared by every rule that checks it.
type Source struct {
	Filename string
	Fset     *token.FileSet
	File     *syntax.File
	Tokens   *syntax.TokenFile
	Checker  *checker.Checker
}

// ParseFile parses filename, reading it from disk if content is nil.
func ParseFile(filename string, content []byte) (*Source, error) {
	if content == nil {
		var err error
		content, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	fset := token.NewFileSet()
	f, toks, err := syntax.ParseFile(fset, filename, content)
	if err != nil {
		return nil, err
	}

	return &Source{
		Filename: filename,
		Fset:     fset,
		File:     f,
		Tokens:   toks,
		Checker:  checker.New(f),
	}, nil
}

// Offset returns the byte offset of pos.
func (s *Source) Offset(pos token.Pos) int { return s.Tokens.Offset(pos) }

// Position returns the file position of pos.
func (s *Source) Position(pos token.Pos) token.Position { return s.Tokens.Position(pos) }
