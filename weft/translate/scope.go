package translate

import (
	"weftlang.dev/weft/ast"
)

// scope is one level of the lexical nesting used to resolve named type
// references: the package root, or one nested declaration within it.
// Resolution walks the chain from innermost to outermost, implementing the
// "unqualified names search inner-to-outer" rule in §4.2.
type scope struct {
	parent *scope
	names  map[string]*scopeEntry
}

// scopeEntry is one locally addressable declaration: its AST node (so the
// translator can recurse into further nesting) and the canonical name it
// was assigned during flattening.
type scopeEntry struct {
	node          ast.Decl
	canonicalName string
	localPath     string
	children      *scope // nested declarations of this entry, or nil if it has none
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, names: map[string]*scopeEntry{}}
}

// lookupLocal finds name only in this exact scope level, not its ancestors.
func (s *scope) lookupLocal(name string) (*scopeEntry, bool) {
	e, ok := s.names[name]
	return e, ok
}

// lookupChain walks from s outward through parents, returning the first
// match and the scope level it was found at.
func (s *scope) lookupChain(name string) (*scopeEntry, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if e, ok := cur.names[name]; ok {
			return e, true
		}
	}
	return nil, false
}

// declName extracts the identifier name and nested-declaration list (if
// any) of an ast.Decl, uniformly across the five declaration kinds.
func declName(d ast.Decl) (name string, nested []ast.Decl) {
	switch d := d.(type) {
	case *ast.TypeDecl:
		return d.Name.Name, d.Nested
	case *ast.InterfaceDecl:
		return d.Name.Name, nil
	case *ast.EnumDecl:
		return d.Name.Name, nil
	case *ast.TupleDecl:
		return d.Name.Name, nil
	case *ast.ServiceDecl:
		return d.Name.Name, nil
	}
	return "", nil
}
