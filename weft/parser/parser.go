// Package parser implements a recursive-descent parser for weft IDL source
// files. The parser is recovering: most syntax errors are recorded as
// diagnostics and parsing continues at the next top-level declaration, so a
// single file can yield several diagnostics in one pass. No error aborts the
// file: scanner errors such as an unterminated string are recorded and
// parsing still runs to the end of the file.
package parser

import (
	"fmt"
	"strconv"

	"weftlang.dev/weft/ast"
	"weftlang.dev/weft/errors"
	"weftlang.dev/weft/scanner"
	"weftlang.dev/weft/token"
)

type parser struct {
	file *token.File
	scan *scanner.Scanner
	errs errors.List

	pos token.Pos
	tok token.Token
	lit string

	// one token of lookahead comment state: doc comments collected since
	// the last non-comment token, attached to the next declaration/field.
	pendingDoc *ast.CommentGroup
}

func (p *parser) init(filename string, src []byte) {
	p.file = token.NewFile(filename, len(src))
	p.scan = new(scanner.Scanner)
	p.scan.Init(p.file, src, p.handleErr, scanner.ScanComments)
	p.next()
}

func (p *parser) handleErr(pos token.Pos, msg string) {
	p.errs.Add(errors.Newf(pos, errors.CodeLex, "%s", msg))
}

func (p *parser) next() {
	for {
		pos, tok, lit := p.scan.Scan()
		if tok == token.COMMENT {
			continue
		}
		if tok == token.DOC {
			p.absorbDoc(pos, lit)
			continue
		}
		p.pos, p.tok, p.lit = pos, tok, lit
		return
	}
}

// absorbDoc accumulates consecutive `///` lines into a single CommentGroup,
// joined with newline separators, per the lexer contract in the language
// spec.
func (p *parser) absorbDoc(pos token.Pos, lit string) {
	text := stripDocMarker(lit)
	if p.pendingDoc == nil {
		p.pendingDoc = &ast.CommentGroup{Text: text, Start: pos, End_: pos.Add(len(lit))}
		return
	}
	p.pendingDoc.Text += "\n" + text
	p.pendingDoc.End_ = pos.Add(len(lit))
}

func stripDocMarker(lit string) string {
	if len(lit) >= 3 && lit[:3] == "///" {
		s := lit[3:]
		if len(s) > 0 && s[0] == ' ' {
			s = s[1:]
		}
		return s
	}
	return lit
}

// takeDoc returns and clears any doc comment accumulated since the last
// declaration or field.
func (p *parser) takeDoc() *ast.CommentGroup {
	d := p.pendingDoc
	p.pendingDoc = nil
	return d
}

func (p *parser) errf(pos token.Pos, format string, args ...interface{}) {
	p.errs.Add(errors.Newf(pos, errors.CodeParse, format, args...))
}

func (p *parser) errorExpected(pos token.Pos, want string) {
	msg := "expected " + want
	if pos == p.pos {
		msg += ", found " + describe(p.tok, p.lit)
	}
	p.errf(pos, "%s", msg)
}

func describe(tok token.Token, lit string) string {
	if tok == token.IDENT || tok.IsLiteral() {
		return fmt.Sprintf("%q", lit)
	}
	return fmt.Sprintf("%q", tok.String())
}

// expect consumes the current token if it matches tok, reporting an error
// otherwise, and always advances (to make progress during recovery).
func (p *parser) expect(tok token.Token) token.Pos {
	pos := p.pos
	if p.tok != tok {
		p.errorExpected(pos, fmt.Sprintf("%q", tok.String()))
	}
	p.next()
	return pos
}

// isDeclStart reports whether tok begins a new top-level declaration or
// closes the current file; recovery skips forward until one is seen.
func isDeclStart(tok token.Token) bool {
	switch tok {
	case token.USE, token.TYPE, token.INTERFACE, token.ENUM, token.TUPLE, token.SERVICE, token.HASH_LBR, token.EOF:
		return true
	}
	return false
}

// recoverDecl skips tokens until a declaration boundary is reached, used
// when a top-level declaration fails to parse.
func (p *parser) recoverDecl() {
	for !isDeclStart(p.tok) {
		if p.tok == token.EOF {
			return
		}
		p.next()
	}
}

// recoverField skips tokens until the current block is closed or a new
// field/sub-declaration plausibly begins, used when a field fails to parse.
func (p *parser) recoverField() {
	depth := 0
	for {
		switch p.tok {
		case token.EOF:
			return
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth == 0 {
				return
			}
			depth--
		case token.SEMICOLON:
			if depth == 0 {
				p.next()
				return
			}
		}
		p.next()
	}
}

func (p *parser) parseIdent() *ast.Ident {
	pos, name := p.pos, "_"
	if p.tok == token.IDENT {
		name = p.lit
		p.next()
	} else {
		p.expect(token.IDENT)
	}
	return &ast.Ident{Name: name, NamePos: pos, NameEnd: pos.Add(len(name))}
}

func (p *parser) parseStringLit() *ast.BasicLit {
	pos, lit := p.pos, p.lit
	if p.tok != token.STRING {
		p.errorExpected(pos, "string literal")
		return &ast.BasicLit{Kind: token.STRING, Value: `""`, ValuePos: pos, ValueEnd: pos}
	}
	p.next()
	return &ast.BasicLit{Kind: token.STRING, Value: lit, ValuePos: pos, ValueEnd: pos.Add(len(lit))}
}

// ----------------------------------------------------------------------
// File-level grammar

func (p *parser) parseFile() *ast.File {
	f := &ast.File{Filename: p.file.Name(), FileStart: p.pos}
	// Leading attributes belong to the file only when `use` statements (or
	// the end of the file) follow them; otherwise they belong to the first
	// declaration.
	var lead []*ast.Attribute
	for p.tok == token.HASH_LBR {
		lead = append(lead, p.parseAttribute())
	}
	if p.tok == token.USE || p.tok == token.EOF {
		f.Attrs, lead = lead, nil
	}
	for p.tok == token.USE {
		f.Uses = append(f.Uses, p.parseUse())
	}
	for p.tok != token.EOF {
		if !isDeclStart(p.tok) {
			p.errorExpected(p.pos, "declaration")
			p.recoverDecl()
			continue
		}
		if p.tok == token.EOF {
			break
		}
		d := p.parseDecl(lead)
		lead = nil
		if d != nil {
			f.Decls = append(f.Decls, d)
		}
	}
	f.FileEnd = p.pos
	return f
}

func (p *parser) parseAttribute() *ast.Attribute {
	start := p.expect(token.HASH_LBR)
	a := &ast.Attribute{Start: start}
	a.Name = p.parseIdent()
	if p.tok == token.LPAREN {
		p.next()
		for p.tok != token.RPAREN && p.tok != token.EOF {
			key := p.parseIdent()
			p.expect(token.EQ)
			val := p.parseAttrValue()
			a.Args = append(a.Args, &ast.AttrArg{Key: key, Value: val})
			if p.tok == token.COMMA {
				p.next()
				continue
			}
			break
		}
		p.expect(token.RPAREN)
	}
	a.End_ = p.expect(token.RBRACKET)
	return a
}

// parseAttrValue accepts a string or a bare identifier (treated as an
// unquoted string), matching the `#[key(k = v)]` grammar where v may be a
// name like a strategy identifier.
func (p *parser) parseAttrValue() *ast.BasicLit {
	if p.tok == token.STRING {
		return p.parseStringLit()
	}
	pos, lit := p.pos, p.lit
	if p.tok == token.IDENT || p.tok.IsKeyword() || p.tok.IsPrimitive() {
		p.next()
		return &ast.BasicLit{Kind: token.STRING, Value: strconv.Quote(lit), ValuePos: pos, ValueEnd: pos.Add(len(lit))}
	}
	p.errorExpected(pos, "attribute value")
	return &ast.BasicLit{Kind: token.STRING, Value: `""`, ValuePos: pos, ValueEnd: pos}
}

func (p *parser) parseUse() *ast.UseDecl {
	start := p.expect(token.USE)
	d := &ast.UseDecl{Start: start}
	d.PathPos = p.pos
	d.Path = p.parseDottedPath()
	d.Range = p.parseStringLit()
	p.expect(token.AS)
	d.Alias = p.parseIdent()
	d.End_ = p.expect(token.SEMICOLON)
	return d
}

// parseDottedPath parses `example.common`-style dotted identifiers used for
// package paths in `use` statements (distinct from the `::`-separated
// in-package NamedType path).
func (p *parser) parseDottedPath() string {
	if p.tok != token.IDENT {
		p.errorExpected(p.pos, "package path")
		return ""
	}
	s := p.lit
	p.next()
	for p.tok == token.PERIOD {
		p.next()
		if p.tok != token.IDENT {
			p.errorExpected(p.pos, "package path segment")
			break
		}
		s += "." + p.lit
		p.next()
	}
	return s
}

// ----------------------------------------------------------------------
// Declarations

func (p *parser) parseDecl(attrs []*ast.Attribute) ast.Decl {
	doc := p.takeDoc()
	for p.tok == token.HASH_LBR {
		attrs = append(attrs, p.parseAttribute())
	}
	switch p.tok {
	case token.TYPE:
		return p.parseTypeDecl(doc, attrs)
	case token.INTERFACE:
		return p.parseInterfaceDecl(doc, attrs)
	case token.ENUM:
		return p.parseEnumDecl(doc, attrs)
	case token.TUPLE:
		return p.parseTupleDecl(doc, attrs)
	case token.SERVICE:
		return p.parseServiceDecl(doc, attrs)
	default:
		start := p.pos
		p.errorExpected(p.pos, "declaration")
		if p.tok != token.EOF {
			p.next()
		}
		p.recoverDecl()
		return &ast.BadDecl{Start: start, End_: p.pos}
	}
}

func (p *parser) parseTypeDecl(doc *ast.CommentGroup, attrs []*ast.Attribute) *ast.TypeDecl {
	start := p.expect(token.TYPE)
	d := &ast.TypeDecl{Start: start, Doc: doc, Attrs: attrs}
	d.Name = p.parseIdent()
	p.expect(token.LBRACE)
	for p.tok != token.RBRACE && p.tok != token.EOF {
		var attrs []*ast.Attribute
		for p.tok == token.HASH_LBR {
			attrs = append(attrs, p.parseAttribute())
		}
		if isDeclStart(p.tok) && p.tok != token.USE && p.tok != token.EOF {
			d.Nested = append(d.Nested, p.parseDecl(attrs))
			continue
		}
		fdoc, fstart := p.takeDoc(), p.pos
		d.Fields = append(d.Fields, p.parseFieldTail(fdoc, attrs, fstart, p.parseIdent()))
	}
	d.End_ = p.expect(token.RBRACE)
	return d
}

func (p *parser) parseInterfaceDecl(doc *ast.CommentGroup, attrs []*ast.Attribute) *ast.InterfaceDecl {
	start := p.expect(token.INTERFACE)
	d := &ast.InterfaceDecl{Start: start, Doc: doc, Attrs: attrs}
	d.Name = p.parseIdent()
	p.expect(token.LBRACE)
	for p.tok != token.RBRACE && p.tok != token.EOF {
		// A sub-type decl starts with an identifier (after any attributes);
		// so does a shared field. Disambiguate by looking at what
		// follows the name: `{` or `;` or `as` => sub-type, `:` or `?` =>
		// field.
		if p.tok == token.IDENT || p.tok == token.HASH_LBR {
			st, field := p.parseSubTypeOrField()
			if st != nil {
				d.SubTypes = append(d.SubTypes, st)
			} else if field != nil {
				d.Shared = append(d.Shared, field)
			}
			continue
		}
		if f := p.parseField(); f != nil {
			d.Shared = append(d.Shared, f)
		}
	}
	d.End_ = p.expect(token.RBRACE)
	return d
}

// parseSubTypeOrField parses an interface sub-type declaration if the
// upcoming tokens match `Name ;`, `Name as "alias";`, or `Name { ... }`;
// otherwise the identifier already consumed was a shared field's name, and
// the field is parsed and returned instead. Exactly one return value is
// non-nil.
func (p *parser) parseSubTypeOrField() (*ast.SubTypeDecl, *ast.Field) {
	doc := p.takeDoc()
	var attrs []*ast.Attribute
	for p.tok == token.HASH_LBR {
		attrs = append(attrs, p.parseAttribute())
	}
	start := p.pos
	name := p.parseIdent()
	switch p.tok {
	case token.SEMICOLON:
		end := p.pos
		p.next()
		return &ast.SubTypeDecl{Kind: ast.SubTypeUnit, Name: name, Doc: doc, Attrs: attrs, Start: start, End_: end}, nil
	case token.AS:
		p.next()
		alias := p.parseStringLit()
		end := p.expect(token.SEMICOLON)
		return &ast.SubTypeDecl{Kind: ast.SubTypeAliasedUnit, Name: name, Alias: alias, Doc: doc, Attrs: attrs, Start: start, End_: end}, nil
	case token.LBRACE:
		p.next()
		st := &ast.SubTypeDecl{Kind: ast.SubTypeRecord, Name: name, Doc: doc, Attrs: attrs, Start: start}
		for p.tok != token.RBRACE && p.tok != token.EOF {
			if f := p.parseField(); f != nil {
				st.Fields = append(st.Fields, f)
			}
		}
		st.End_ = p.expect(token.RBRACE)
		return st, nil
	default:
		return nil, p.parseFieldTail(doc, attrs, start, name)
	}
}

func (p *parser) parseEnumDecl(doc *ast.CommentGroup, attrs []*ast.Attribute) *ast.EnumDecl {
	start := p.expect(token.ENUM)
	d := &ast.EnumDecl{Start: start, Doc: doc, Attrs: attrs}
	d.Name = p.parseIdent()
	p.expect(token.AS)
	d.Prim = p.parsePrimKeyword()
	p.expect(token.LBRACE)
	for p.tok != token.RBRACE && p.tok != token.EOF {
		vdoc := p.takeDoc()
		vstart := p.pos
		name := p.parseIdent()
		p.expect(token.AS)
		val := p.parseVariantLit()
		vend := p.expect(token.SEMICOLON)
		d.Variants = append(d.Variants, &ast.EnumVariant{Name: name, Value: val, Doc: vdoc, Start: vstart, End_: vend})
	}
	d.End_ = p.expect(token.RBRACE)
	return d
}

func (p *parser) parsePrimKeyword() token.Token {
	tok := p.tok
	if tok != token.STRING_T && tok != token.INT32 && tok != token.INT64 && tok != token.UINT32 && tok != token.UINT64 {
		p.errorExpected(p.pos, "enum representation type")
		return token.STRING_T
	}
	p.next()
	return tok
}

func (p *parser) parseVariantLit() *ast.BasicLit {
	if p.tok == token.STRING {
		return p.parseStringLit()
	}
	pos, lit, tok := p.pos, p.lit, p.tok
	if tok == token.INT {
		p.next()
		return &ast.BasicLit{Kind: token.INT, Value: lit, ValuePos: pos, ValueEnd: pos.Add(len(lit))}
	}
	p.errorExpected(pos, "enum variant value")
	return &ast.BasicLit{Kind: token.STRING, Value: `""`, ValuePos: pos, ValueEnd: pos}
}

func (p *parser) parseTupleDecl(doc *ast.CommentGroup, attrs []*ast.Attribute) *ast.TupleDecl {
	start := p.expect(token.TUPLE)
	d := &ast.TupleDecl{Start: start, Doc: doc, Attrs: attrs}
	d.Name = p.parseIdent()
	p.expect(token.LBRACE)
	for p.tok != token.RBRACE && p.tok != token.EOF {
		if f := p.parseField(); f != nil {
			d.Fields = append(d.Fields, f)
		}
	}
	d.End_ = p.expect(token.RBRACE)
	return d
}

func (p *parser) parseServiceDecl(doc *ast.CommentGroup, attrs []*ast.Attribute) *ast.ServiceDecl {
	start := p.expect(token.SERVICE)
	d := &ast.ServiceDecl{Start: start, Doc: doc, Attrs: attrs}
	d.Name = p.parseIdent()
	p.expect(token.LBRACE)
	for p.tok != token.RBRACE && p.tok != token.EOF {
		d.Endpoints = append(d.Endpoints, p.parseEndpoint())
	}
	d.End_ = p.expect(token.RBRACE)
	return d
}

func (p *parser) parseEndpoint() *ast.Endpoint {
	doc := p.takeDoc()
	var attrs []*ast.Attribute
	for p.tok == token.HASH_LBR {
		attrs = append(attrs, p.parseAttribute())
	}
	start := p.pos
	e := &ast.Endpoint{Start: start, Doc: doc, Attrs: attrs}
	e.Name = p.parseIdent()
	p.expect(token.LPAREN)
	for p.tok != token.RPAREN && p.tok != token.EOF {
		argStart := p.pos
		name := p.parseIdent()
		opt := false
		if p.tok == token.QUESTION {
			opt = true
			p.next()
		}
		p.expect(token.COLON)
		if p.tok == token.STREAM {
			e.RequestStream = true
			p.next()
		}
		typ := p.parseTypeExpr()
		e.Args = append(e.Args, &ast.Field{Name: name, Optional: opt, Type: typ, Start: argStart, End_: p.pos})
		if p.tok == token.COMMA {
			p.next()
		}
	}
	p.expect(token.RPAREN)
	if p.tok == token.ARROW {
		p.next()
		if p.tok == token.STREAM {
			e.ResponseStream = true
			p.next()
		}
		e.ResponseType = p.parseTypeExpr()
	}
	e.End_ = p.expect(token.SEMICOLON)
	return e
}

// ----------------------------------------------------------------------
// Fields

func (p *parser) parseField() *ast.Field {
	doc := p.takeDoc()
	var attrs []*ast.Attribute
	for p.tok == token.HASH_LBR {
		attrs = append(attrs, p.parseAttribute())
	}
	start := p.pos
	name := p.parseIdent()
	return p.parseFieldTail(doc, attrs, start, name)
}

// parseFieldTail completes a field whose name has already been consumed.
// It is shared with parseSubTypeOrField's fallback path so that a name which
// turns out not to introduce a sub-type is parsed as an ordinary field.
func (p *parser) parseFieldTail(doc *ast.CommentGroup, attrs []*ast.Attribute, start token.Pos, name *ast.Ident) *ast.Field {
	f := &ast.Field{Name: name, Doc: doc, Attrs: attrs, Start: start}
	if p.tok == token.QUESTION {
		f.Optional = true
		p.next()
	}
	if p.tok != token.COLON {
		p.errorExpected(p.pos, `":"`)
		p.recoverField()
		f.End_ = p.pos
		f.Type = &ast.BadType{Start: start, End_: f.End_}
		return f
	}
	p.next()
	f.Type = p.parseTypeExpr()
	if p.tok == token.AS {
		p.next()
		f.Alias = p.parseStringLit()
	}
	f.End_ = p.expect(token.SEMICOLON)
	return f
}

// ----------------------------------------------------------------------
// Type expressions

func (p *parser) parseTypeExpr() ast.TypeExpr {
	switch p.tok {
	case token.LBRACKET:
		start := p.pos
		p.next()
		elem := p.parseTypeExpr()
		end := p.expect(token.RBRACKET)
		return &ast.ArrayType{Elem: elem, Start: start, End_: end}
	case token.LBRACE:
		start := p.pos
		p.next()
		key := p.parseTypeExpr()
		p.expect(token.COLON)
		val := p.parseTypeExpr()
		end := p.expect(token.RBRACE)
		return &ast.MapType{Key: key, Value: val, Start: start, End_: end}
	case token.IDENT, token.DCOLON:
		return p.parseNamedType()
	default:
		if p.tok.IsPrimitive() {
			start, tok := p.pos, p.tok
			p.next()
			return &ast.PrimitiveType{Kind: tok, Start: start, End_: p.pos}
		}
		start := p.pos
		p.errorExpected(p.pos, "type")
		return &ast.BadType{Start: start, End_: start}
	}
}

// parseNamedType parses `alias::Name::Inner`, `Name`, or `::Name` (root
// qualified, meaning "at the root of this file's package").
func (p *parser) parseNamedType() *ast.NamedType {
	start := p.pos
	n := &ast.NamedType{Start: start}
	if p.tok == token.DCOLON {
		n.Root = true
		p.next()
	}
	n.Segments = append(n.Segments, p.parseIdent())
	for p.tok == token.DCOLON {
		p.next()
		n.Segments = append(n.Segments, p.parseIdent())
	}
	n.End_ = p.pos
	return n
}
