package syntax

import (
	"go/token"
	"sort"
)

// TokenFile gives access to the token stream of a parsed file by
// source position.
type TokenFile struct {
	File   *token.File
	Src    []byte
	Tokens []Token // ends with EOF
}

// search returns the index of the first token starting at or after pos.
func (f *TokenFile) search(pos token.Pos) int {
	return sort.Search(len(f.Tokens), func(i int) bool {
		return f.Tokens[i].Pos >= pos
	})
}

// Before returns the nearest token that ends at or before the start
// of n and satisfies match.
func (f *TokenFile) Before(n Node, match func(Token) bool) (Token, bool) {
	for i := f.search(n.Pos()) - 1; i >= 0; i-- {
		if match(f.Tokens[i]) {
			return f.Tokens[i], true
		}
	}
	return Token{}, false
}

// Between returns the tokens strictly between from and the start of n.
func (f *TokenFile) Between(from Token, n Node) []Token {
	i := f.search(from.End())
	j := f.search(n.Pos())
	if i >= j {
		return nil
	}
	return f.Tokens[i:j]
}

// After returns up to count tokens following the end of n, never
// including EOF.
func (f *TokenFile) After(n Node, count int) []Token {
	if count <= 0 {
		return nil
	}
	i := f.search(n.End())
	j := i + count
	if last := len(f.Tokens) - 1; j > last {
		j = last
	}
	if i >= j {
		return nil
	}
	return f.Tokens[i:j]
}

// Text returns the source text of n.
func (f *TokenFile) Text(n Node) string {
	return string(f.Src[f.Offset(n.Pos()):f.Offset(n.End())])
}

// Offset returns the byte offset of pos in the file.
func (f *TokenFile) Offset(pos token.Pos) int {
	return f.File.Offset(pos)
}

// Position returns the line and column of pos.
func (f *TokenFile) Position(pos token.Pos) token.Position {
	return f.File.Position(pos)
}
