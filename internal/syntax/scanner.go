package syntax

import (
	"fmt"
	"go/token"
	"sort"
	"strings"
)

// Error is a syntax error at a source position.
type Error struct {
	Pos token.Position
	Msg string
}

func (e Error) Error() string {
	if e.Pos.Filename != "" || e.Pos.IsValid() {
		return e.Pos.String() + ": " + e.Msg
	}
	return e.Msg
}

// ErrorList is a list of syntax errors, sorted by position.
type ErrorList []*Error

func (l *ErrorList) add(pos token.Position, msg string) {
	*l = append(*l, &Error{Pos: pos, Msg: msg})
}

func (l ErrorList) sort() {
	sort.SliceStable(l, func(i, j int) bool {
		return l[i].Pos.Offset < l[j].Pos.Offset
	})
}

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0], len(l)-1)
}

// Err returns an error equivalent to this list, or nil if it is empty.
func (l ErrorList) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// scanner splits source text into tokens. Comments are kept apart
// from the token stream.
type scanner struct {
	file *token.File
	src  []byte
	off  int

	tokens   []Token
	comments []*Comment
	errors   ErrorList
}

func (s *scanner) error(off int, msg string) {
	s.errors.add(s.file.Position(s.file.Pos(off)), msg)
}

func (s *scanner) emit(kind Kind, start int) {
	s.tokens = append(s.tokens, Token{
		Kind: kind,
		Lit:  string(s.src[start:s.off]),
		Pos:  s.file.Pos(start),
	})
}

func (s *scanner) peek(n int) byte {
	if s.off+n < len(s.src) {
		return s.src[s.off+n]
	}
	return 0
}

func (s *scanner) scan() {
	for s.off < len(s.src) {
		c := s.src[s.off]
		start := s.off
		switch {
		case c == '\n':
			s.off++
			s.file.AddLine(s.off)
		case c == ' ' || c == '\t' || c == '\r':
			s.off++
		case c == '/' && s.peek(1) == '/':
			for s.off < len(s.src) && s.src[s.off] != '\n' {
				s.off++
			}
			s.comments = append(s.comments, &Comment{Slash: s.file.Pos(start), Text: string(s.src[start:s.off])})
		case c == '/' && s.peek(1) == '*':
			s.scanBlockComment(start)
		case isLetter(c):
			for s.off < len(s.src) && (isLetter(s.src[s.off]) || isDigit(s.src[s.off])) {
				s.off++
			}
			s.emit(Lookup(string(s.src[start:s.off])), start)
		case isDigit(c) || c == '.' && isDigit(s.peek(1)):
			s.scanNumber()
			s.emit(NUMBER, start)
		case c == '"' || c == '\'':
			s.scanString(c)
			s.emit(STRING, start)
		default:
			s.scanOperator(c, start)
		}
	}
	s.tokens = append(s.tokens, Token{Kind: EOF, Pos: s.file.Pos(len(s.src))})
}

func (s *scanner) scanBlockComment(start int) {
	s.off += 2
	for {
		if s.off >= len(s.src) {
			s.error(start, "comment not terminated")
			return
		}
		if s.src[s.off] == '\n' {
			s.file.AddLine(s.off + 1)
		}
		if s.src[s.off] == '*' && s.peek(1) == '/' {
			s.off += 2
			break
		}
		s.off++
	}
	s.comments = append(s.comments, &Comment{Slash: s.file.Pos(start), Text: string(s.src[start:s.off])})
}

func (s *scanner) scanNumber() {
	if s.src[s.off] == '0' && (s.peek(1) == 'x' || s.peek(1) == 'X' || s.peek(1) == 'b' || s.peek(1) == 'B' || s.peek(1) == 'o' || s.peek(1) == 'O') {
		s.off += 2
		for s.off < len(s.src) && (isHex(s.src[s.off]) || s.src[s.off] == '_') {
			s.off++
		}
		return
	}
	for s.off < len(s.src) && (isDigit(s.src[s.off]) || s.src[s.off] == '_') {
		s.off++
	}
	if s.off < len(s.src) && s.src[s.off] == '.' {
		s.off++
		for s.off < len(s.src) && (isDigit(s.src[s.off]) || s.src[s.off] == '_') {
			s.off++
		}
	}
	if s.off < len(s.src) && (s.src[s.off] == 'e' || s.src[s.off] == 'E') {
		s.off++
		if s.off < len(s.src) && (s.src[s.off] == '+' || s.src[s.off] == '-') {
			s.off++
		}
		for s.off < len(s.src) && isDigit(s.src[s.off]) {
			s.off++
		}
	}
	if s.off < len(s.src) && s.src[s.off] == 'n' {
		s.off++
	}
}

func (s *scanner) scanString(quote byte) {
	start := s.off
	s.off++
	for {
		if s.off >= len(s.src) || s.src[s.off] == '\n' {
			s.error(start, "string literal not terminated")
			return
		}
		c := s.src[s.off]
		s.off++
		if c == quote {
			return
		}
		if c == '\\' && s.off < len(s.src) {
			s.off++
		}
	}
}

func (s *scanner) scanOperator(c byte, start int) {
	kind := ILLEGAL
	s.off++
	switch c {
	case '|':
		kind = OR
	case '&':
		kind = AND
	case '(':
		kind = LPAREN
	case ')':
		kind = RPAREN
	case '[':
		kind = LBRACK
	case ']':
		kind = RBRACK
	case '{':
		kind = LBRACE
	case '}':
		kind = RBRACE
	case '<':
		kind = LT
	case '>':
		// never combined into >> so nested type arguments close one at a time
		kind = GT
	case ',':
		kind = COMMA
	case ';':
		kind = SEMICOLON
	case ':':
		kind = COLON
	case '?':
		kind = QUESTION
	case '-':
		kind = SUB
	case '=':
		kind = ASSIGN
		if s.peek(0) == '>' {
			s.off++
			kind = ARROW
		}
	case '.':
		kind = PERIOD
		if s.peek(0) == '.' && s.peek(1) == '.' {
			s.off += 2
			kind = ELLIPSIS
		}
	}
	if kind == ILLEGAL {
		s.error(start, fmt.Sprintf("illegal character %q", c))
	}
	s.emit(kind, start)
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_' || c == '$' || c >= 0x80
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isHex(c byte) bool {
	return isDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// Unquote strips the quotes of a string literal. Escapes are kept as
// written; two literals are the same type only if spelled alike.
func Unquote(lit string) string {
	if len(lit) >= 2 {
		return lit[1 : len(lit)-1]
	}
	return strings.Trim(lit, `'"`)
}
