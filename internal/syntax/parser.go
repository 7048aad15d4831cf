package syntax

import (
	"fmt"
	"go/token"
)

// intrinsics are the names that denote built-in types rather than
// references to declarations.
var intrinsics = map[string]bool{
	"any":       true,
	"unknown":   true,
	"never":     true,
	"void":      true,
	"undefined": true,
	"null":      true,
	"string":    true,
	"number":    true,
	"boolean":   true,
	"bigint":    true,
	"symbol":    true,
	"object":    true,
}

// ParseFile parses the source of a type declaration file. The returned
// File is nil only if src could not be tokenized at all; on syntax
// errors the error is an ErrorList.
func ParseFile(fset *token.FileSet, filename string, src []byte) (*File, *TokenFile, error) {
	tf := fset.AddFile(filename, -1, len(src))
	s := &scanner{file: tf, src: src}
	s.scan()

	p := &parser{
		fset:   fset,
		file:   tf,
		tokens: s.tokens,
		errors: s.errors,
	}
	f := p.parseFile()
	f.Name = filename
	f.Comments = s.comments
	setParents(f)

	toks := &TokenFile{File: tf, Src: src, Tokens: s.tokens}
	p.errors.sort()
	return f, toks, p.errors.Err()
}

// ParseType parses a single type expression. It is mostly useful in
// tests.
func ParseType(fset *token.FileSet, src string) (Expr, *TokenFile, error) {
	tf := fset.AddFile("", -1, len(src))
	s := &scanner{file: tf, src: []byte(src)}
	s.scan()

	p := &parser{fset: fset, file: tf, tokens: s.tokens, errors: s.errors}
	p.init()
	x := p.parseTypeSafe()
	if x != nil {
		setParents(x)
	}
	p.errors.sort()
	return x, &TokenFile{File: tf, Src: []byte(src), Tokens: s.tokens}, p.errors.Err()
}

func (p *parser) parseTypeSafe() (x Expr) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			x = nil
		}
	}()
	x = p.parseType()
	if p.tok.Kind != EOF {
		p.errorExpected("end of type")
	}
	return x
}

type parser struct {
	fset   *token.FileSet
	file   *token.File
	tokens []Token
	errors ErrorList

	idx     int
	tok     Token
	prevEnd token.Pos
}

// bailout is raised to abandon a declaration after an error.
type bailout struct{}

func (p *parser) init() {
	p.idx = 0
	p.tok = p.tokens[0]
}

func (p *parser) next() {
	p.prevEnd = p.tok.End()
	if p.idx < len(p.tokens)-1 {
		p.idx++
	}
	p.tok = p.tokens[p.idx]
}

func (p *parser) peek(n int) Token {
	if i := p.idx + n; i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) error(pos token.Pos, msg string) {
	p.errors.add(p.file.Position(pos), msg)
	panic(bailout{})
}

func (p *parser) errorExpected(what string) {
	found := p.tok.Kind.String()
	if p.tok.Kind.IsLiteral() || p.tok.Kind.IsKeyword() {
		found = p.tok.Lit
	}
	p.error(p.tok.Pos, fmt.Sprintf("expected %s, found %s", what, found))
}

func (p *parser) expect(k Kind) token.Pos {
	pos := p.tok.Pos
	if p.tok.Kind != k {
		p.errorExpected("'" + k.String() + "'")
	}
	p.next()
	return pos
}

func (p *parser) got(k Kind) bool {
	if p.tok.Kind == k {
		p.next()
		return true
	}
	return false
}

func (p *parser) parseFile() *File {
	p.init()
	f := &File{}
	f.Start = p.tok.Pos
	for p.tok.Kind != EOF {
		if p.got(SEMICOLON) {
			continue
		}
		if d := p.parseDeclSafe(); d != nil {
			f.Decls = append(f.Decls, d)
		}
	}
	f.Stop = p.tok.Pos
	return f
}

// parseDeclSafe parses one declaration, skipping to the next
// declaration keyword if it is malformed.
func (p *parser) parseDeclSafe() (d Decl) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			d = nil
			p.syncDecl()
		}
	}()
	return p.parseDecl()
}

func (p *parser) syncDecl() {
	if p.tok.Kind != EOF {
		p.next()
	}
	for p.tok.Kind != EOF {
		switch p.tok.Kind {
		case TYPE, INTERFACE, EXPORT, DECLARE:
			return
		}
		p.next()
	}
}

func (p *parser) parseDecl() Decl {
	start := p.tok.Pos
	export := p.got(EXPORT)
	declare := p.got(DECLARE)

	switch p.tok.Kind {
	case TYPE:
		p.next()
		d := &TypeAlias{Export: export, Declare: declare}
		d.Start = start
		d.Name = p.parseIdent()
		d.TypeParams = p.parseTypeParams()
		p.expect(ASSIGN)
		d.Value = p.parseType()
		d.Stop = p.prevEnd
		p.got(SEMICOLON)
		return d
	case INTERFACE:
		p.next()
		d := &InterfaceDecl{Export: export, Declare: declare}
		d.Start = start
		d.Name = p.parseIdent()
		d.TypeParams = p.parseTypeParams()
		if p.got(EXTENDS) {
			for {
				d.Extends = append(d.Extends, p.parseTypeRef())
				if !p.got(COMMA) {
					break
				}
			}
		}
		d.Body = p.parseObjectType()
		d.Stop = p.prevEnd
		return d
	}
	p.errorExpected("declaration")
	return nil
}

func (p *parser) parseIdent() *Ident {
	id := &Ident{Name: p.tok.Lit}
	id.Start = p.tok.Pos
	p.expect(IDENT)
	id.Stop = p.prevEnd
	return id
}

// parseName accepts keywords too, as property and parameter names.
func (p *parser) parseName() *Ident {
	if p.tok.Kind.IsKeyword() {
		id := &Ident{Name: p.tok.Lit}
		id.Start, id.Stop = p.tok.Pos, p.tok.End()
		p.next()
		return id
	}
	return p.parseIdent()
}

func (p *parser) parseTypeParams() []*TypeParam {
	if !p.got(LT) {
		return nil
	}
	var list []*TypeParam
	for p.tok.Kind != GT {
		tp := &TypeParam{}
		tp.Start = p.tok.Pos
		tp.Name = p.parseIdent()
		if p.got(EXTENDS) {
			tp.Constraint = p.parseType()
		}
		if p.got(ASSIGN) {
			tp.Default = p.parseType()
		}
		tp.Stop = p.prevEnd
		list = append(list, tp)
		if !p.got(COMMA) {
			break
		}
	}
	p.expect(GT)
	return list
}

// parseType parses a full type: a union of intersections.
func (p *parser) parseType() Expr {
	return p.parseUnionOrIntersection(OR)
}

// parseUnionOrIntersection follows the TypeScript rule that a leading
// operator always produces a union (or intersection) node, even with a
// single constituent, whose range starts at that operator.
func (p *parser) parseUnionOrIntersection(op Kind) Expr {
	start := p.tok.Pos
	leading := p.got(op)
	first := p.parseConstituent(op)
	if p.tok.Kind != op && !leading {
		return first
	}
	types := []Expr{first}
	for p.got(op) {
		types = append(types, p.parseConstituent(op))
	}
	var x Expr
	if op == OR {
		u := &UnionType{Types: types}
		u.Start, u.Stop = start, p.prevEnd
		x = u
	} else {
		i := &IntersectionType{Types: types}
		i.Start, i.Stop = start, p.prevEnd
		x = i
	}
	return x
}

func (p *parser) parseConstituent(op Kind) Expr {
	if op == OR {
		return p.parseUnionOrIntersection(AND)
	}
	return p.parseOperand()
}

func (p *parser) parseOperand() Expr {
	switch p.tok.Kind {
	case KEYOF, READONLY:
		start := p.tok.Pos
		op := p.tok.Kind
		p.next()
		x := &TypeOperator{Op: op, X: p.parseOperand()}
		x.Start, x.Stop = start, p.prevEnd
		return x
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() Expr {
	start := p.tok.Pos
	x := p.parsePrimary()
	for p.tok.Kind == LBRACK {
		p.next()
		if p.got(RBRACK) {
			a := &ArrayType{Elem: x}
			a.Start, a.Stop = start, p.prevEnd
			x = a
			continue
		}
		ia := &IndexedAccess{X: x, Index: p.parseType()}
		p.expect(RBRACK)
		ia.Start, ia.Stop = start, p.prevEnd
		x = ia
	}
	return x
}

func (p *parser) parsePrimary() Expr {
	switch p.tok.Kind {
	case LPAREN:
		if p.isFuncType() {
			return p.parseFuncType()
		}
		p.next()
		x := p.parseType()
		p.expect(RPAREN)
		return x
	case STRING, NUMBER, TRUE, FALSE:
		lit := &Literal{Kind: p.tok.Kind, Value: p.tok.Lit}
		lit.Start, lit.Stop = p.tok.Pos, p.tok.End()
		p.next()
		return lit
	case SUB:
		start := p.tok.Pos
		p.next()
		if p.tok.Kind != NUMBER {
			p.errorExpected("number")
		}
		lit := &Literal{Kind: NUMBER, Value: "-" + p.tok.Lit}
		lit.Start, lit.Stop = start, p.tok.End()
		p.next()
		return lit
	case TYPEOF:
		start := p.tok.Pos
		p.next()
		q := &TypeQuery{Name: p.parseQualifiedName()}
		q.Start, q.Stop = start, p.prevEnd
		return q
	case LBRACE:
		return p.parseObjectType()
	case LBRACK:
		return p.parseTupleType()
	case IDENT:
		if intrinsics[p.tok.Lit] && p.peek(1).Kind != PERIOD {
			kw := &Keyword{Name: p.tok.Lit}
			kw.Start, kw.Stop = p.tok.Pos, p.tok.End()
			p.next()
			return kw
		}
		return p.parseTypeRef()
	}
	p.errorExpected("type")
	return nil
}

func (p *parser) parseQualifiedName() Expr {
	start := p.tok.Pos
	var x Expr = p.parseIdent()
	for p.got(PERIOD) {
		q := &QualifiedName{X: x, Sel: p.parseName()}
		q.Start, q.Stop = start, p.prevEnd
		x = q
	}
	return x
}

func (p *parser) parseTypeRef() *TypeRef {
	start := p.tok.Pos
	ref := &TypeRef{Name: p.parseQualifiedName()}
	if p.got(LT) {
		for p.tok.Kind != GT {
			ref.Args = append(ref.Args, p.parseType())
			if !p.got(COMMA) {
				break
			}
		}
		p.expect(GT)
	}
	ref.Start, ref.Stop = start, p.prevEnd
	return ref
}

// isFuncType reports whether the '(' at the current token opens a
// parameter list rather than a parenthesized type.
func (p *parser) isFuncType() bool {
	next := p.peek(1)
	switch next.Kind {
	case RPAREN, ELLIPSIS:
		return true
	case IDENT, TYPE, KEYOF, READONLY:
		switch p.peek(2).Kind {
		case COLON, COMMA, QUESTION:
			return true
		case RPAREN:
			return p.peek(3).Kind == ARROW
		}
	}
	return false
}

func (p *parser) parseFuncType() *FuncType {
	start := p.tok.Pos
	fn := &FuncType{Params: p.parseParams()}
	p.expect(ARROW)
	fn.Result = p.parseType()
	fn.Start, fn.Stop = start, p.prevEnd
	return fn
}

func (p *parser) parseParams() []*Param {
	p.expect(LPAREN)
	var list []*Param
	for p.tok.Kind != RPAREN {
		prm := &Param{}
		prm.Start = p.tok.Pos
		prm.Rest = p.got(ELLIPSIS)
		prm.Name = p.parseName()
		prm.Optional = p.got(QUESTION)
		if p.got(COLON) {
			prm.Type = p.parseType()
		}
		prm.Stop = p.prevEnd
		list = append(list, prm)
		if !p.got(COMMA) {
			break
		}
	}
	p.expect(RPAREN)
	return list
}

func (p *parser) parseTupleType() *TupleType {
	start := p.expect(LBRACK)
	t := &TupleType{}
	for p.tok.Kind != RBRACK {
		e := &TupleElem{}
		e.Start = p.tok.Pos
		e.Rest = p.got(ELLIPSIS)
		if p.tok.Kind == IDENT && (p.peek(1).Kind == COLON || p.peek(1).Kind == QUESTION && p.peek(2).Kind == COLON) {
			e.Label = p.parseIdent()
			e.Optional = p.got(QUESTION)
			p.expect(COLON)
			e.Type = p.parseType()
		} else {
			e.Type = p.parseType()
			e.Optional = p.got(QUESTION)
		}
		e.Stop = p.prevEnd
		t.Elems = append(t.Elems, e)
		if !p.got(COMMA) {
			break
		}
	}
	p.expect(RBRACK)
	t.Start, t.Stop = start, p.prevEnd
	return t
}

func (p *parser) parseObjectType() *ObjectType {
	start := p.expect(LBRACE)
	obj := &ObjectType{}
	for p.tok.Kind != RBRACE && p.tok.Kind != EOF {
		obj.Members = append(obj.Members, p.parseMember())
		for p.tok.Kind == SEMICOLON || p.tok.Kind == COMMA {
			p.next()
		}
	}
	p.expect(RBRACE)
	obj.Start, obj.Stop = start, p.prevEnd
	return obj
}

func (p *parser) parseMember() Member {
	start := p.tok.Pos
	readonly := false
	if p.tok.Kind == READONLY && p.peek(1).Kind != COLON && p.peek(1).Kind != QUESTION && p.peek(1).Kind != LPAREN {
		readonly = true
		p.next()
	}

	if p.tok.Kind == LBRACK {
		p.next()
		sig := &IndexSig{Readonly: readonly}
		sig.Start = start
		prm := &Param{}
		prm.Start = p.tok.Pos
		prm.Name = p.parseName()
		p.expect(COLON)
		prm.Type = p.parseType()
		prm.Stop = p.prevEnd
		sig.Param = prm
		p.expect(RBRACK)
		p.expect(COLON)
		sig.Type = p.parseType()
		sig.Stop = p.prevEnd
		return sig
	}

	var key Expr
	switch p.tok.Kind {
	case STRING, NUMBER:
		lit := &Literal{Kind: p.tok.Kind, Value: p.tok.Lit}
		lit.Start, lit.Stop = p.tok.Pos, p.tok.End()
		p.next()
		key = lit
	default:
		key = p.parseName()
	}
	optional := p.got(QUESTION)

	if p.tok.Kind == LPAREN {
		m := &MethodSig{Key: key, Optional: optional}
		m.Start = start
		m.Params = p.parseParams()
		if p.got(COLON) {
			m.Result = p.parseType()
		}
		m.Stop = p.prevEnd
		return m
	}

	prop := &PropertySig{Readonly: readonly, Key: key, Optional: optional}
	prop.Start = start
	if p.got(COLON) {
		prop.Type = p.parseType()
	}
	prop.Stop = p.prevEnd
	return prop
}
