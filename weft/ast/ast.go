// Package ast declares the types used to represent syntax trees for weft
// IDL source files.
//
// There are three main classes of node: declarations, type expressions, and
// the small set of auxiliary productions (fields, endpoints, attributes)
// that hang off them. All nodes carry position information marking the
// span of source text they were parsed from, accessible via Pos and End.
package ast

import (
	"weftlang.dev/weft/token"
)

// A Node is any node in the syntax tree.
type Node interface {
	Pos() token.Pos
	End() token.Pos
}

// A Decl is a top-level or nested declaration: a use-import, or one of the
// five polymorphic declaration kinds.
type Decl interface {
	Node
	declNode()
}

func (*UseDecl) declNode()       {}
func (*TypeDecl) declNode()      {}
func (*InterfaceDecl) declNode() {}
func (*EnumDecl) declNode()      {}
func (*TupleDecl) declNode()     {}
func (*ServiceDecl) declNode()   {}
func (*BadDecl) declNode()       {}

// A TypeExpr is any field or endpoint type reference: a primitive keyword,
// a container, or a named path.
type TypeExpr interface {
	Node
	typeExprNode()
}

func (*PrimitiveType) typeExprNode() {}
func (*ArrayType) typeExprNode()     {}
func (*MapType) typeExprNode()       {}
func (*NamedType) typeExprNode()     {}
func (*BadType) typeExprNode()       {}

// File is the root of one parsed source file.
type File struct {
	Filename   string
	Package    string // dotted package path declared by the containing package, filled by the loader
	Attrs      []*Attribute
	Uses       []*UseDecl
	Decls      []Decl
	Doc        *CommentGroup
	FileStart  token.Pos
	FileEnd    token.Pos
}

func (f *File) Pos() token.Pos { return f.FileStart }
func (f *File) End() token.Pos { return f.FileEnd }

// CommentGroup holds one or more consecutive doc-comment lines attached to
// a following declaration or field. Text is already stripped of the `///`
// marker and joined with newline separators.
type CommentGroup struct {
	Text  string
	Start token.Pos
	End_  token.Pos
}

func (g *CommentGroup) Pos() token.Pos { return g.Start }
func (g *CommentGroup) End() token.Pos { return g.End_ }

// Ident is a single identifier, used for declaration names, field names,
// aliases, and the segments of a named-type path.
type Ident struct {
	Name     string
	NamePos  token.Pos
	NameEnd  token.Pos
}

func (x *Ident) Pos() token.Pos { return x.NamePos }
func (x *Ident) End() token.Pos { return x.NameEnd }

// BasicLit is a string or numeric literal, used for attribute values,
// aliases, and enum variant representations.
type BasicLit struct {
	Kind     token.Token // STRING, INT, or FLOAT
	Value    string      // literal text, including quotes for strings
	ValuePos token.Pos
	ValueEnd token.Pos
}

func (x *BasicLit) Pos() token.Pos { return x.ValuePos }
func (x *BasicLit) End() token.Pos { return x.ValueEnd }

// Attribute is a `#[key(k=v, ...)]` or `#[key]` annotation attached to a
// package, declaration, field, or endpoint.
type Attribute struct {
	Name     *Ident
	Args     []*AttrArg // empty for a bare #[key]
	Start    token.Pos
	End_     token.Pos
}

func (a *Attribute) Pos() token.Pos { return a.Start }
func (a *Attribute) End() token.Pos { return a.End_ }

// AttrArg is one `key = value` pair inside an attribute's argument list.
type AttrArg struct {
	Key   *Ident
	Value *BasicLit
}

// UseDecl is a `use <path> "<range>" as <alias>;` import statement.
type UseDecl struct {
	Path     string // dotted package path, e.g. "example.common"
	PathPos  token.Pos
	Range    *BasicLit // the quoted version-range string
	Alias    *Ident
	Start    token.Pos
	End_     token.Pos
}

func (d *UseDecl) Pos() token.Pos { return d.Start }
func (d *UseDecl) End() token.Pos { return d.End_ }

// Field is a named, typed member of a Type, Interface, or Tuple
// declaration, or a shared field on an interface.
type Field struct {
	Name     *Ident
	Optional bool
	Type     TypeExpr
	Alias    *BasicLit // wire-name override from `as "..."`, or nil
	Doc      *CommentGroup
	Attrs    []*Attribute
	Start    token.Pos
	End_     token.Pos
}

func (f *Field) Pos() token.Pos { return f.Start }
func (f *Field) End() token.Pos { return f.End_ }

// TypeDecl is `type Name { fields; nested-decls }`.
type TypeDecl struct {
	Name   *Ident
	Fields []*Field
	Nested []Decl
	Doc    *CommentGroup
	Attrs  []*Attribute
	Start  token.Pos
	End_   token.Pos
}

func (d *TypeDecl) Pos() token.Pos { return d.Start }
func (d *TypeDecl) End() token.Pos { return d.End_ }

// InterfaceDecl is `interface Name { shared-fields; sub-type-decls }`.
type InterfaceDecl struct {
	Name     *Ident
	Shared   []*Field
	SubTypes []*SubTypeDecl
	Doc      *CommentGroup
	Attrs    []*Attribute
	Start    token.Pos
	End_     token.Pos
}

func (d *InterfaceDecl) Pos() token.Pos { return d.Start }
func (d *InterfaceDecl) End() token.Pos { return d.End_ }

// SubTypeKind distinguishes the three shapes a sub-type of an interface may
// take.
type SubTypeKind int

const (
	SubTypeUnit        SubTypeKind = iota // `A;`
	SubTypeAliasedUnit                    // `A as "foo";`
	SubTypeRecord                         // `A { fields }`
)

// SubTypeDecl is one variant of an interface.
type SubTypeDecl struct {
	Kind   SubTypeKind
	Name   *Ident
	Alias  *BasicLit // set for SubTypeAliasedUnit
	Fields []*Field  // set for SubTypeRecord
	Doc    *CommentGroup
	Attrs  []*Attribute
	Start  token.Pos
	End_   token.Pos
}

func (d *SubTypeDecl) Pos() token.Pos { return d.Start }
func (d *SubTypeDecl) End() token.Pos { return d.End_ }

// EnumDecl is `enum Name as PrimType { variants }`.
type EnumDecl struct {
	Name     *Ident
	Prim     token.Token // the underlying primitive keyword, STRING_T or an integer kind
	Variants []*EnumVariant
	Doc      *CommentGroup
	Attrs    []*Attribute
	Start    token.Pos
	End_     token.Pos
}

func (d *EnumDecl) Pos() token.Pos { return d.Start }
func (d *EnumDecl) End() token.Pos { return d.End_ }

// EnumVariant is one `Name as "literal";` member of an enum.
type EnumVariant struct {
	Name  *Ident
	Value *BasicLit
	Doc   *CommentGroup
	Start token.Pos
	End_  token.Pos
}

func (v *EnumVariant) Pos() token.Pos { return v.Start }
func (v *EnumVariant) End() token.Pos { return v.End_ }

// TupleDecl is `tuple Name { positional-fields }`.
type TupleDecl struct {
	Name   *Ident
	Fields []*Field
	Doc    *CommentGroup
	Attrs  []*Attribute
	Start  token.Pos
	End_   token.Pos
}

func (d *TupleDecl) Pos() token.Pos { return d.Start }
func (d *TupleDecl) End() token.Pos { return d.End_ }

// ServiceDecl is `service Name { endpoints }`.
type ServiceDecl struct {
	Name      *Ident
	Endpoints []*Endpoint
	Doc       *CommentGroup
	Attrs     []*Attribute
	Start     token.Pos
	End_      token.Pos
}

func (d *ServiceDecl) Pos() token.Pos { return d.Start }
func (d *ServiceDecl) End() token.Pos { return d.End_ }

// Endpoint is one RPC operation of a service: `name(arg: T, ...) -> [stream] T;`.
type Endpoint struct {
	Name        *Ident
	Args        []*Field
	RequestStream  bool
	ResponseType   TypeExpr // nil if the endpoint has no response
	ResponseStream bool
	Doc         *CommentGroup
	Attrs       []*Attribute
	Start       token.Pos
	End_        token.Pos
}

func (e *Endpoint) Pos() token.Pos { return e.Start }
func (e *Endpoint) End() token.Pos { return e.End_ }

// PrimitiveType is a primitive keyword type expression.
type PrimitiveType struct {
	Kind  token.Token
	Start token.Pos
	End_  token.Pos
}

func (t *PrimitiveType) Pos() token.Pos { return t.Start }
func (t *PrimitiveType) End() token.Pos { return t.End_ }

// ArrayType is `[T]`.
type ArrayType struct {
	Elem  TypeExpr
	Start token.Pos
	End_  token.Pos
}

func (t *ArrayType) Pos() token.Pos { return t.Start }
func (t *ArrayType) End() token.Pos { return t.End_ }

// MapType is `{K: V}`. K is always string, represented directly as a
// PrimitiveType for uniformity with the value slot.
type MapType struct {
	Key   TypeExpr
	Value TypeExpr
	Start token.Pos
	End_  token.Pos
}

func (t *MapType) Pos() token.Pos { return t.Start }
func (t *MapType) End() token.Pos { return t.End_ }

// NamedType is a reference to a declared type by path, e.g. `c::Message` or
// `::Inner::Nested`. Root is true when the path began with `::`, forcing
// resolution at the file's package root. Otherwise Segments[0] is
// ambiguous between an import alias and the first component of an
// in-package path until the translator resolves it against scope (§4.2).
type NamedType struct {
	Root     bool
	Segments []*Ident
	Start    token.Pos
	End_     token.Pos
}

func (t *NamedType) Pos() token.Pos { return t.Start }
func (t *NamedType) End() token.Pos { return t.End_ }

// BadType is a placeholder inserted by the parser's error-recovery path so
// that the rest of the declaration can still be walked.
type BadType struct {
	Start token.Pos
	End_  token.Pos
}

func (t *BadType) Pos() token.Pos { return t.Start }
func (t *BadType) End() token.Pos { return t.End_ }

// BadDecl is a placeholder for a declaration that failed to parse; the
// parser has already recorded a diagnostic and skipped to the next
// top-level declaration.
type BadDecl struct {
	Start token.Pos
	End_  token.Pos
}

func (d *BadDecl) Pos() token.Pos { return d.Start }
func (d *BadDecl) End() token.Pos { return d.End_ }
