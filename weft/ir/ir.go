// Package ir defines the canonical, typed intermediate representation that
// the translator lowers an AST into. The IR is a directed graph of fully
// qualified declarations, but it is represented as a flat arena keyed by
// canonical name rather than as a tree of direct pointers: type expressions
// hold canonical-name keys into the arena instead of pointers to other
// declarations. This keeps ownership acyclic even though the type graph
// itself is not (a type may reference itself through an array, a map, or an
// optional field; see the Invariants described alongside [Package]) and
// lets every traversal go through a single, uniform lookup.
package ir

import (
	"weftlang.dev/weft/token"
)

// Universe is the full set of lowered packages produced by one
// compilation: the root package(s) plus every package transitively
// reachable through `use` imports, each lowered exactly once.
type Universe struct {
	// Packages holds every lowered package, keyed by "path@version" so
	// that two different versions of the same path can coexist within one
	// Universe (§4.5 allows this provided no reference crosses the
	// boundary).
	Packages map[string]*Package
	// Decls is the arena: every declaration in every package, keyed by its
	// CanonicalName. Type references elsewhere in the IR are looked up
	// here rather than held as direct pointers.
	Decls map[string]*Decl
}

// NewUniverse creates an empty Universe ready to receive lowered packages.
func NewUniverse() *Universe {
	return &Universe{Packages: map[string]*Package{}, Decls: map[string]*Decl{}}
}

// Add inserts a lowered package and all of its declarations into the arena.
// It is the translator's responsibility to call Add exactly once per
// distinct (path, version) pin.
func (u *Universe) Add(pkg *Package) {
	u.Packages[pkg.Key()] = pkg
	for _, name := range pkg.Order {
		u.Decls[name] = pkg.Decls[name]
	}
}

// Lookup returns the declaration with the given canonical name, if any.
func (u *Universe) Lookup(canonicalName string) (*Decl, bool) {
	d, ok := u.Decls[canonicalName]
	return d, ok
}

// Package is one lowered, versioned package: an immutable collection of
// declarations once the translator has materialized it for a compilation
// (§3 "Package" lifecycle).
type Package struct {
	Path    string // dotted package path, e.g. "example.common"
	Version string // semantic version string, without "use" range syntax

	// Decls holds every declaration belonging to this package, including
	// nested ones flattened to first-class entries (§4.2 step 4), keyed by
	// CanonicalName.
	Decls map[string]*Decl
	// Order lists CanonicalName in declaration order (outer-to-inner,
	// source order within a level), which is the order used whenever the
	// package's declarations must be iterated deterministically.
	Order []string

	// Imports records, for this package, each alias and the package it was
	// pinned to — the resolved form of its `use` statements.
	Imports []Import
}

// Key returns the Universe map key for this package: "path@version".
func (p *Package) Key() string { return p.Path + "@" + p.Version }

// Import is one resolved `use` alias within a package.
type Import struct {
	Alias       string
	Path        string
	Range       string
	PinnedVersion string
}

// DeclKind distinguishes the five polymorphic declaration shapes.
type DeclKind int

const (
	KindType DeclKind = iota
	KindInterface
	KindEnum
	KindTuple
	KindService
)

func (k DeclKind) String() string {
	switch k {
	case KindType:
		return "type"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindTuple:
		return "tuple"
	case KindService:
		return "service"
	default:
		return "unknown"
	}
}

// Decl is one declaration in canonical form: a common header plus a
// kind-specific payload. Backends and the compatibility checker
// pattern-match on Kind to recover the concrete payload (§9 "Polymorphic
// declarations").
type Decl struct {
	// CanonicalName is "path@version#local", see pkgpath.Join and
	// Package.Key. Versioning the canonical name (rather than using the
	// bare package path) keeps it unique across an entire Universe even
	// when two versions of the same package path are loaded at once
	// (§4.5 allows this as long as no reference unifies them).
	CanonicalName string
	Package       string
	LocalPath     string // dotted path within the package, e.g. "Outer.Inner"
	Kind          DeclKind
	Doc           string
	Attrs         Attributes
	Span          Span

	Type      *TypeBody      // set iff Kind == KindType
	Interface *InterfaceBody // set iff Kind == KindInterface
	Enum      *EnumBody      // set iff Kind == KindEnum
	Tuple     *TupleBody     // set iff Kind == KindTuple
	Service   *ServiceBody   // set iff Kind == KindService
}

// Span records a declaration or field's source extent for diagnostics.
type Span struct {
	Start token.Pos
	End   token.Pos
}

// Attributes is the resolved attribute set of a declaration or field: the
// attributes weft recognizes, parsed into typed fields, plus a bag of
// unrecognized ones preserved for inspection by backends (§9 "Attribute
// extensibility").
type Attributes struct {
	TypeInfo *TypeInfoAttr
	HTTP     *HTTPAttr
	Unknown  []UnknownAttr
}

// TypeInfoAttr is the parsed #[type_info(strategy=..., tag=...)] attribute.
type TypeInfoAttr struct {
	Strategy Strategy
	Tag      string // discriminator field name; defaults to "type"
	Span     Span
}

// HTTPAttr is the parsed #[http(url=..., path=..., method=...)] attribute.
type HTTPAttr struct {
	URL    string
	Path   string
	Method string
	Span   Span
}

// UnknownAttr is an attribute weft does not recognize for the declaration
// kind it was found on; it produces a warning but is preserved so that
// downstream backends may still inspect it.
type UnknownAttr struct {
	Key  string
	Args map[string]string
	Span Span
}

// TypeBody is the payload of a KindType declaration: a record with named,
// typed fields.
type TypeBody struct {
	Fields []Field
}

// Strategy is an interface's type-info discrimination strategy (§4.3).
type Strategy int

const (
	StrategyTagged Strategy = iota
	StrategyUntagged
)

func (s Strategy) String() string {
	if s == StrategyUntagged {
		return "untagged"
	}
	return "tagged"
}

// InterfaceBody is the payload of a KindInterface declaration: a sum of
// sub-types sharing a discrimination strategy and a common set of fields.
type InterfaceBody struct {
	Strategy Strategy
	Tag      string // discriminator field name, only meaningful when Strategy == StrategyTagged
	Shared   []Field
	SubTypes []SubType
}

// SubTypeKind mirrors ast.SubTypeKind in lowered form.
type SubTypeKind int

const (
	SubTypeUnit SubTypeKind = iota
	SubTypeRecord
)

// SubType is one variant of an interface.
type SubType struct {
	Name     string // logical (local) name
	WireName string // on-wire discriminator value / structural tag
	Kind     SubTypeKind
	Fields   []Field // additional fields beyond the interface's Shared set
	Span     Span
}

// EnumBody is the payload of a KindEnum declaration.
type EnumBody struct {
	Prim     token.Token // STRING_T, INT32, INT64, UINT32, or UINT64
	Variants []EnumVariant
}

// EnumVariant is one member of an enum.
type EnumVariant struct {
	Name    string
	Literal string // the literal representation, exactly as written (quotes stripped for strings)
	Span    Span
}

// TupleBody is the payload of a KindTuple declaration: an ordered sequence
// of typed, named positions.
type TupleBody struct {
	Fields []Field
}

// ServiceBody is the payload of a KindService declaration.
type ServiceBody struct {
	Endpoints []Endpoint
}

// Endpoint is one RPC operation of a service.
type Endpoint struct {
	Name           string
	Args           []Field
	RequestStream  bool
	Response       *TypeRef // nil if the endpoint has no response
	ResponseStream bool
	HTTP           *HTTPAttr
	Span           Span
}

// Field is a named, typed member of a Type, Interface, or Tuple
// declaration (or of an endpoint's argument list).
type Field struct {
	Name     string
	Index    int // stable positional index in declaration order (§4.2 step 5)
	Optional bool
	Type     TypeRef
	Alias    string // on-wire rename, or "" if the field is not aliased
	Doc      string
	Span     Span
}

// WireName returns the field's on-wire name: its alias if it has one,
// otherwise its logical name.
func (f Field) WireName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// TypeKind distinguishes the shapes a resolved type reference may take.
type TypeKind int

const (
	TypePrimitive TypeKind = iota
	TypeArray
	TypeMap
	TypeNamed
	TypeOptional // wraps Elem; optional-of-optional collapses during lowering (§4.2)
)

// TypeRef is a fully resolved type expression: no aliases remain, and every
// named reference holds the canonical name of the declaration it points to
// rather than a pointer, consistent with the arena model described above.
// A map's key is always string (§3) and so is not represented explicitly;
// Elem holds the array element type, the map value type, or the optional's
// underlying type, depending on Kind.
type TypeRef struct {
	Kind TypeKind
	Prim token.Token // set iff Kind == TypePrimitive

	Elem *TypeRef // set iff Kind == TypeArray, TypeMap, or TypeOptional
	Ref  string   // canonical name, set iff Kind == TypeNamed
}

// Array returns a TypeRef for an array of elem.
func Array(elem TypeRef) TypeRef { return TypeRef{Kind: TypeArray, Elem: &elem} }

// Map returns a TypeRef for a map from string to value.
func Map(value TypeRef) TypeRef { return TypeRef{Kind: TypeMap, Elem: &value} }

// MapValue returns the value type of a TypeMap TypeRef.
func (t TypeRef) MapValue() TypeRef { return *t.Elem }

// Optional wraps t as optional. If t is already optional, Optional returns
// t unchanged (optional-of-optional collapses to optional, §4.2).
func Optional(t TypeRef) TypeRef {
	if t.Kind == TypeOptional {
		return t
	}
	return TypeRef{Kind: TypeOptional, Elem: &t}
}

// IsOptional reports whether t is an optional wrapper.
func (t TypeRef) IsOptional() bool { return t.Kind == TypeOptional }

// Unwrap returns the type beneath an optional wrapper, or t itself if t is
// not optional.
func (t TypeRef) Unwrap() TypeRef {
	if t.Kind == TypeOptional {
		return *t.Elem
	}
	return t
}

// ContainsContainer reports whether t is an array, a map, or an optional
// wrapper (whatever its element). Used
// by cycle detection: a cycle is only legal when it passes through a
// container or an optional field (§3 invariant 4).
func (t TypeRef) ContainsContainer() bool {
	switch t.Kind {
	case TypeArray, TypeMap:
		return true
	case TypeOptional:
		return true // optional fields are also an allowed cycle breaker
	default:
		return false
	}
}
