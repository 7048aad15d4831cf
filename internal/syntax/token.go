package syntax

import (
	"go/token"
	"strconv"
)

// Kind is the set of lexical tokens of the type declaration language.
type Kind int

const (
	ILLEGAL Kind = iota
	EOF
	COMMENT

	literal_beg
	IDENT  // string, Foo
	STRING // 'abc', "abc"
	NUMBER // 123, 1.5, 0xff
	literal_end

	operator_beg
	OR        // |
	AND       // &
	LPAREN    // (
	RPAREN    // )
	LBRACK    // [
	RBRACK    // ]
	LBRACE    // {
	RBRACE    // }
	LT        // <
	GT        // >
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :
	QUESTION  // ?
	PERIOD    // .
	ASSIGN    // =
	ARROW     // =>
	ELLIPSIS  // ...
	SUB       // -
	operator_end

	keyword_beg
	TYPE
	INTERFACE
	EXPORT
	DECLARE
	EXTENDS
	KEYOF
	TYPEOF
	READONLY
	TRUE
	FALSE
	keyword_end
)

var tokens = [...]string{
	ILLEGAL: "ILLEGAL",
	EOF:     "EOF",
	COMMENT: "COMMENT",

	IDENT:  "IDENT",
	STRING: "STRING",
	NUMBER: "NUMBER",

	OR:        "|",
	AND:       "&",
	LPAREN:    "(",
	RPAREN:    ")",
	LBRACK:    "[",
	RBRACK:    "]",
	LBRACE:    "{",
	RBRACE:    "}",
	LT:        "<",
	GT:        ">",
	COMMA:     ",",
	SEMICOLON: ";",
	COLON:     ":",
	QUESTION:  "?",
	PERIOD:    ".",
	ASSIGN:    "=",
	ARROW:     "=>",
	ELLIPSIS:  "...",
	SUB:       "-",

	TYPE:      "type",
	INTERFACE: "interface",
	EXPORT:    "export",
	DECLARE:   "declare",
	EXTENDS:   "extends",
	KEYOF:     "keyof",
	TYPEOF:    "typeof",
	READONLY:  "readonly",
	TRUE:      "true",
	FALSE:     "false",
}

func (k Kind) String() string {
	if 0 <= k && k < Kind(len(tokens)) && tokens[k] != "" {
		return tokens[k]
	}
	return "token(" + strconv.Itoa(int(k)) + ")"
}

// IsLiteral reports whether k is an identifier or basic literal.
func (k Kind) IsLiteral() bool { return literal_beg < k && k < literal_end }

// IsOperator reports whether k is an operator or delimiter.
func (k Kind) IsOperator() bool { return operator_beg < k && k < operator_end }

// IsKeyword reports whether k is a keyword.
func (k Kind) IsKeyword() bool { return keyword_beg < k && k < keyword_end }

var keywords map[string]Kind

func init() {
	keywords = make(map[string]Kind, keyword_end-(keyword_beg+1))
	for k := keyword_beg + 1; k < keyword_end; k++ {
		keywords[tokens[k]] = k
	}
}

// Lookup maps an identifier to its keyword kind, or IDENT.
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return IDENT
}

// Token is a single lexical token with its source text.
type Token struct {
	Kind Kind
	Lit  string
	Pos  token.Pos
}

// End returns the position immediately after the token.
func (t Token) End() token.Pos { return t.Pos + token.Pos(len(t.Lit)) }

func (t Token) String() string { return t.Lit }
