package translate

import (
	"sort"
	"strconv"
	"strings"

	"weftlang.dev/weft/ast"
	"weftlang.dev/weft/errors"
	"weftlang.dev/weft/ir"
	"weftlang.dev/weft/token"
)

// lowerer lowers the flattened entries of one package into ir.Decl values,
// resolving every type expression along the way. It holds the state that is
// constant across that whole pass: the owning Translator (for diagnostics
// and cross-package lookups), the package being built, its root scope, and
// the `use` aliases visible within it.
type lowerer struct {
	t       *Translator
	pkg     *ir.Package
	pkgRoot *scope
	aliases map[string]resolvedImport
}

// lowerDecl lowers one flattened entry into its ir.Decl, dispatching on the
// AST node's concrete kind.
func (low *lowerer) lowerDecl(e *scopeEntry) *ir.Decl {
	canonical := canonicalNameFor(low.pkg.Key(), e.localPath)
	e.canonicalName = canonical

	base := &ir.Decl{
		CanonicalName: canonical,
		Package:       low.pkg.Path,
		LocalPath:     e.localPath,
	}

	switch d := e.node.(type) {
	case *ast.TypeDecl:
		base.Kind = ir.KindType
		base.Doc = docText(d.Doc)
		base.Span = spanOf(d)
		base.Attrs = low.lowerAttrs(d.Attrs, base)
		base.Type = &ir.TypeBody{Fields: low.lowerFields(d.Fields, e)}
	case *ast.InterfaceDecl:
		base.Kind = ir.KindInterface
		base.Doc = docText(d.Doc)
		base.Span = spanOf(d)
		base.Attrs = low.lowerAttrs(d.Attrs, base)
		base.Interface = low.lowerInterfaceBody(d, e, base.Attrs.TypeInfo)
	case *ast.EnumDecl:
		base.Kind = ir.KindEnum
		base.Doc = docText(d.Doc)
		base.Span = spanOf(d)
		base.Attrs = low.lowerAttrs(d.Attrs, base)
		base.Enum = low.lowerEnumBody(d)
	case *ast.TupleDecl:
		base.Kind = ir.KindTuple
		base.Doc = docText(d.Doc)
		base.Span = spanOf(d)
		base.Attrs = low.lowerAttrs(d.Attrs, base)
		base.Tuple = &ir.TupleBody{Fields: low.lowerFields(d.Fields, e)}
	case *ast.ServiceDecl:
		base.Kind = ir.KindService
		base.Doc = docText(d.Doc)
		base.Span = spanOf(d)
		base.Attrs = low.lowerAttrs(d.Attrs, base)
		base.Service = low.lowerServiceBody(d, e)
	}
	return base
}

func (low *lowerer) lowerInterfaceBody(d *ast.InterfaceDecl, e *scopeEntry, info *ir.TypeInfoAttr) *ir.InterfaceBody {
	body := &ir.InterfaceBody{Strategy: ir.StrategyTagged, Tag: "type"}
	if info != nil {
		body.Strategy = info.Strategy
		body.Tag = info.Tag
	}
	body.Shared = low.lowerFields(d.Shared, e)

	seen := map[string]*ast.SubTypeDecl{}
	for _, st := range d.SubTypes {
		if prior, dup := seen[st.Name.Name]; dup {
			low.t.errs.Add(errors.Newf(st.Pos(), errors.CodeName, "sub-type %q already defined on this interface", st.Name.Name).
				WithSecondary(prior.Pos(), "previous sub-type"))
			continue
		}
		seen[st.Name.Name] = st

		wire := st.Name.Name
		if st.Alias != nil {
			wire = unquoteBasicLit(st.Alias)
		}
		sub := ir.SubType{Name: st.Name.Name, WireName: wire, Span: spanOf(st)}
		if st.Kind == ast.SubTypeRecord {
			sub.Kind = ir.SubTypeRecord
			sub.Fields = low.lowerFields(st.Fields, e)
		} else {
			sub.Kind = ir.SubTypeUnit
		}
		body.SubTypes = append(body.SubTypes, sub)
	}

	if body.Strategy == ir.StrategyUntagged {
		low.checkUntaggedAmbiguity(d, body)
	}
	return body
}

// checkUntaggedAmbiguity reports a warning (never an error, §4.3) when two
// sub-types of an untagged interface could both match the same structural
// shape: same field-name set, which a decoder would resolve first-match-wins.
func (low *lowerer) checkUntaggedAmbiguity(d *ast.InterfaceDecl, body *ir.InterfaceBody) {
	shapeOf := func(st ir.SubType) string {
		names := make([]string, 0, len(body.Shared)+len(st.Fields))
		for _, f := range body.Shared {
			names = append(names, f.Name)
		}
		for _, f := range st.Fields {
			names = append(names, f.Name)
		}
		sort.Strings(names)
		return strings.Join(names, ",")
	}
	byShape := map[string][]ir.SubType{}
	var shapes []string // first-seen order, so warnings are emitted deterministically
	for _, st := range body.SubTypes {
		s := shapeOf(st)
		if _, seen := byShape[s]; !seen {
			shapes = append(shapes, s)
		}
		byShape[s] = append(byShape[s], st)
	}
	for _, s := range shapes {
		if group := byShape[s]; len(group) > 1 {
			names := make([]string, len(group))
			for i, st := range group {
				names[i] = st.Name
			}
			low.t.errs.Add(errors.Warnf(d.Pos(), errors.CodeType,
				"untagged interface %s: sub-types %s have identical shape; first match wins", d.Name.Name, strings.Join(names, ", ")))
		}
	}
}

func (low *lowerer) lowerEnumBody(d *ast.EnumDecl) *ir.EnumBody {
	body := &ir.EnumBody{Prim: d.Prim}
	seen := map[string]*ast.EnumVariant{}
	seenLit := map[string]*ast.EnumVariant{}
	for _, v := range d.Variants {
		if prior, dup := seen[v.Name.Name]; dup {
			low.t.errs.Add(errors.Newf(v.Pos(), errors.CodeName, "enum variant %q already defined", v.Name.Name).
				WithSecondary(prior.Pos(), "previous variant"))
			continue
		}
		seen[v.Name.Name] = v

		lit := unquoteBasicLit(v.Value)
		if prior, dup := seenLit[lit]; dup {
			low.t.errs.Add(errors.Newf(v.Pos(), errors.CodeType, "enum literal %q already used by variant %s", lit, prior.Name.Name).
				WithSecondary(prior.Pos(), "previous use"))
			continue
		}
		seenLit[lit] = v

		body.Variants = append(body.Variants, ir.EnumVariant{Name: v.Name.Name, Literal: lit, Span: spanOf(v)})
	}
	return body
}

func (low *lowerer) lowerServiceBody(d *ast.ServiceDecl, e *scopeEntry) *ir.ServiceBody {
	body := &ir.ServiceBody{}
	seen := map[string]*ast.Endpoint{}
	for _, ep := range d.Endpoints {
		if prior, dup := seen[ep.Name.Name]; dup {
			low.t.errs.Add(errors.Newf(ep.Pos(), errors.CodeName, "endpoint %q already defined", ep.Name.Name).
				WithSecondary(prior.Pos(), "previous endpoint"))
			continue
		}
		seen[ep.Name.Name] = ep

		ie := ir.Endpoint{
			Name:           ep.Name.Name,
			Args:           low.lowerFields(ep.Args, e),
			RequestStream:  ep.RequestStream,
			ResponseStream: ep.ResponseStream,
			Span:           spanOf(ep),
		}
		if ep.ResponseType != nil {
			rt := low.resolveTypeExpr(ep.ResponseType, e)
			ie.Response = &rt
		}
		attrs := low.lowerAttrs(ep.Attrs, nil)
		ie.HTTP = attrs.HTTP
		body.Endpoints = append(body.Endpoints, ie)
	}
	return body
}

func (low *lowerer) lowerFields(fields []*ast.Field, e *scopeEntry) []ir.Field {
	out := make([]ir.Field, 0, len(fields))
	seen := map[string]*ast.Field{}
	for i, f := range fields {
		if prior, dup := seen[f.Name.Name]; dup {
			low.t.errs.Add(errors.Newf(f.Pos(), errors.CodeName, "field %q already defined", f.Name.Name).
				WithSecondary(prior.Pos(), "previous field"))
			continue
		}
		seen[f.Name.Name] = f

		typ := low.resolveTypeExpr(f.Type, e)
		if f.Optional {
			typ = ir.Optional(typ)
		}
		alias := ""
		if f.Alias != nil {
			alias = unquoteBasicLit(f.Alias)
		}
		out = append(out, ir.Field{
			Name:     f.Name.Name,
			Index:    i,
			Optional: f.Optional,
			Type:     typ,
			Alias:    alias,
			Doc:      docText(f.Doc),
			Span:     spanOf(f),
		})
	}
	return out
}

// resolveTypeExpr lowers one AST type expression to an ir.TypeRef,
// resolving named references against e's enclosing scope chain (§4.2 steps
// 3-5).
func (low *lowerer) resolveTypeExpr(te ast.TypeExpr, e *scopeEntry) ir.TypeRef {
	switch t := te.(type) {
	case *ast.PrimitiveType:
		return ir.TypeRef{Kind: ir.TypePrimitive, Prim: t.Kind}
	case *ast.ArrayType:
		elem := low.resolveTypeExpr(t.Elem, e)
		return ir.Array(elem)
	case *ast.MapType:
		val := low.resolveTypeExpr(t.Value, e)
		return ir.Map(val)
	case *ast.NamedType:
		return low.resolveNamedType(t, e)
	case *ast.BadType:
		return ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.BYTES}
	}
	return ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.BYTES}
}

// resolveNamedType implements §4.2's resolution order: `::`-rooted paths
// resolve only against the package root; otherwise the first segment is
// checked simultaneously against the enclosing scope chain and the import
// aliases of every file in the package (an alias is not scoped to the file
// that declares it), and it is an ambiguity error if both match.
func (low *lowerer) resolveNamedType(t *ast.NamedType, e *scopeEntry) ir.TypeRef {
	segs := make([]string, len(t.Segments))
	for i, s := range t.Segments {
		segs[i] = s.Name
	}
	if len(segs) == 0 {
		return ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.BYTES}
	}

	if t.Root {
		canon, ok := low.resolveFromScope(low.pkgRoot, segs, low.pkg.Key())
		if !ok {
			low.errUnresolved(t, strings.Join(segs, "::"))
			return ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.BYTES}
		}
		return ir.TypeRef{Kind: ir.TypeNamed, Ref: canon}
	}

	first := segs[0]
	_, inScope := e.children.lookupChain(first)
	imp, isAlias := low.aliases[first]

	switch {
	case inScope && isAlias:
		low.t.errs.Add(errors.Newf(t.Pos(), errors.CodeName,
			"%q is ambiguous: matches both a declaration in this package and an import alias", first))
		return ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.BYTES}
	case isAlias:
		rest := segs[1:]
		canon, ok := low.resolveInPackage(imp.pkg, rest)
		if !ok {
			low.errUnresolved(t, strings.Join(segs, "::"))
			return ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.BYTES}
		}
		return ir.TypeRef{Kind: ir.TypeNamed, Ref: canon}
	default:
		canon, ok := low.resolveFromScope(e.children, segs, low.pkg.Key())
		if !ok {
			low.errUnresolved(t, strings.Join(segs, "::"))
			return ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.BYTES}
		}
		return ir.TypeRef{Kind: ir.TypeNamed, Ref: canon}
	}
}

// resolveFromScope walks segs starting from start, using start's chain for
// the first segment (inner-to-outer, §4.2) and descending into each
// matched entry's children for subsequent segments.
func (low *lowerer) resolveFromScope(start *scope, segs []string, pkgKey string) (string, bool) {
	entry, ok := start.lookupChain(segs[0])
	if !ok {
		return "", false
	}
	for _, s := range segs[1:] {
		if entry.children == nil {
			return "", false
		}
		next, ok := entry.children.lookupLocal(s)
		if !ok {
			return "", false
		}
		entry = next
	}
	return canonicalNameFor(pkgKey, entry.localPath), true
}

// resolveInPackage resolves a dotted path within an already-lowered package
// reached via an import alias, matching against its flat Decls arena by
// exact canonical name rather than a live scope tree (the imported
// package's scope tree is not retained past its own lowering pass).
func (low *lowerer) resolveInPackage(pkg *ir.Package, segs []string) (string, bool) {
	if pkg == nil || len(segs) == 0 {
		return "", false
	}
	local := strings.Join(segs, ".")
	canon := canonicalNameFor(pkg.Key(), local)
	if _, ok := pkg.Decls[canon]; ok {
		return canon, true
	}
	return "", false
}

func (low *lowerer) errUnresolved(t *ast.NamedType, path string) {
	low.t.errs.Add(errors.Newf(t.Pos(), errors.CodeName, "undefined reference %q", path))
}

func (low *lowerer) lowerAttrs(attrs []*ast.Attribute, decl *ir.Decl) ir.Attributes {
	var out ir.Attributes
	for _, a := range attrs {
		args := map[string]string{}
		for _, arg := range a.Args {
			args[arg.Key.Name] = unquoteBasicLit(arg.Value)
		}
		switch a.Name.Name {
		case "type_info":
			ti := &ir.TypeInfoAttr{Strategy: ir.StrategyTagged, Tag: "type", Span: spanOf(a)}
			if s, ok := args["strategy"]; ok {
				if s == "untagged" {
					ti.Strategy = ir.StrategyUntagged
				} else if s != "tagged" {
					low.t.errs.Add(errors.Newf(a.Pos(), errors.CodeAttribute, "unknown type_info strategy %q", s))
				}
			}
			if tag, ok := args["tag"]; ok {
				ti.Tag = tag
			}
			out.TypeInfo = ti
		case "http":
			out.HTTP = &ir.HTTPAttr{URL: args["url"], Path: args["path"], Method: args["method"], Span: spanOf(a)}
		default:
			low.t.errs.Add(errors.Warnf(a.Pos(), errors.CodeAttribute, "unrecognized attribute %q", a.Name.Name))
			out.Unknown = append(out.Unknown, ir.UnknownAttr{Key: a.Name.Name, Args: args, Span: spanOf(a)})
		}
	}
	return out
}

func docText(g *ast.CommentGroup) string {
	if g == nil {
		return ""
	}
	return g.Text
}

func spanOf(n ast.Node) ir.Span { return ir.Span{Start: n.Pos(), End: n.End()} }

func unquoteBasicLit(lit *ast.BasicLit) string {
	if lit.Kind != token.STRING {
		return lit.Value
	}
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return lit.Value
	}
	return s
}
