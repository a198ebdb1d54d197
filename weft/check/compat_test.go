package check_test

import (
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"weftlang.dev/weft/check"
	"weftlang.dev/weft/ir"
	"weftlang.dev/weft/token"
)

// sortFindings lets cmp.Diff compare two []check.Finding for set equality
// rather than failing on the map-iteration order Compare's internals don't
// promise to preserve.
var sortFindings = cmpopts.SortSlices(func(a, b check.Finding) bool {
	if a.Subject != b.Subject {
		return a.Subject < b.Subject
	}
	return a.Message < b.Message
})

func typeDecl(local string, fields ...ir.Field) *ir.Decl {
	return &ir.Decl{
		CanonicalName: "example.blog@1.0.0#" + local,
		LocalPath:     local,
		Kind:          ir.KindType,
		Type:          &ir.TypeBody{Fields: indexed(fields)},
	}
}

func tupleDecl(local string, fields ...ir.Field) *ir.Decl {
	return &ir.Decl{
		CanonicalName: "example.blog@1.0.0#" + local,
		LocalPath:     local,
		Kind:          ir.KindTuple,
		Tuple:         &ir.TupleBody{Fields: indexed(fields)},
	}
}

func field(name string, optional bool, t ir.TypeRef) ir.Field {
	return ir.Field{Name: name, Optional: optional, Type: t}
}

func aliased(name, alias string, optional bool, t ir.TypeRef) ir.Field {
	return ir.Field{Name: name, Alias: alias, Optional: optional, Type: t}
}

// indexed assigns each field its slice position as Index, matching the
// translator's own positional assignment (§4.2 step 5) so compat tests
// exercise the same identity the real lowerer produces.
func indexed(fields []ir.Field) []ir.Field {
	out := make([]ir.Field, len(fields))
	for i, f := range fields {
		f.Index = i
		out[i] = f
	}
	return out
}

func pkgOf(decls ...*ir.Decl) *ir.Package {
	p := &ir.Package{Path: "example.blog", Version: "1.0.0", Decls: map[string]*ir.Decl{}}
	for _, d := range decls {
		p.Decls[d.CanonicalName] = d
		p.Order = append(p.Order, d.CanonicalName)
	}
	return p
}

func levelsOf(findings []check.Finding) map[check.Level]int {
	m := map[check.Level]int{}
	for _, f := range findings {
		m[f.Level]++
	}
	return m
}

var str = ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.STRING_T}
var i32 = ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.INT32}
var i64 = ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.INT64}

func TestCompareIdenticalPackagesAreAllCompatible(t *testing.T) {
	old := pkgOf(typeDecl("Post", field("title", false, str)))
	findings := check.Compare(old, old)
	for _, f := range findings {
		qt.Assert(t, qt.Equals(f.Level, check.Compatible))
	}
}

func TestCompareRequiredFieldAdded(t *testing.T) {
	old := pkgOf(typeDecl("Post", field("title", false, str)))
	new := pkgOf(typeDecl("Post", field("title", false, str), field("views", false, i32)))

	findings := check.Compare(old, new)
	levels := levelsOf(findings)
	qt.Assert(t, qt.Equals(levels[check.Breaking], 1))
}

func TestCompareOptionalFieldAdded(t *testing.T) {
	old := pkgOf(typeDecl("Post", field("title", false, str)))
	new := pkgOf(typeDecl("Post", field("title", false, str), field("views", true, i32)))

	findings := check.Compare(old, new)
	levels := levelsOf(findings)
	qt.Assert(t, qt.Equals(levels[check.Breaking], 0))
	qt.Assert(t, qt.Equals(levels[check.Compatible], 1))
}

func TestCompareRequiredFieldRemoved(t *testing.T) {
	old := pkgOf(typeDecl("Post", field("title", false, str), field("views", false, i32)))
	new := pkgOf(typeDecl("Post", field("title", false, str)))

	findings := check.Compare(old, new)
	levels := levelsOf(findings)
	qt.Assert(t, qt.Equals(levels[check.Breaking], 1))
}

func TestCompareOptionalFieldRemoved(t *testing.T) {
	old := pkgOf(typeDecl("Post", field("title", false, str), field("views", true, i32)))
	new := pkgOf(typeDecl("Post", field("title", false, str)))

	findings := check.Compare(old, new)
	levels := levelsOf(findings)
	qt.Assert(t, qt.Equals(levels[check.MinorBreaking], 1))
}

func TestCompareIntegerWideningIsCompatible(t *testing.T) {
	old := pkgOf(typeDecl("Post", field("views", false, i32)))
	new := pkgOf(typeDecl("Post", field("views", false, i64)))

	findings := check.Compare(old, new)
	qt.Assert(t, qt.Equals(len(findings), 1))
	qt.Assert(t, qt.Equals(findings[0].Level, check.Compatible))
}

func TestCompareNarrowingIntegerIsBreaking(t *testing.T) {
	old := pkgOf(typeDecl("Post", field("views", false, i64)))
	new := pkgOf(typeDecl("Post", field("views", false, i32)))

	findings := check.Compare(old, new)
	qt.Assert(t, qt.Equals(len(findings), 1))
	qt.Assert(t, qt.Equals(findings[0].Level, check.Breaking))
}

func TestCompareOptionalizingFieldIsCompatible(t *testing.T) {
	old := pkgOf(typeDecl("Post", field("title", false, str)))
	new := pkgOf(typeDecl("Post", field("title", true, str)))

	findings := check.Compare(old, new)
	for _, f := range findings {
		qt.Assert(t, qt.Equals(f.Level, check.Compatible))
	}
}

func TestCompareDeoptionalizingFieldIsBreaking(t *testing.T) {
	old := pkgOf(typeDecl("Post", field("title", true, str)))
	new := pkgOf(typeDecl("Post", field("title", false, str)))

	findings := check.Compare(old, new)
	levels := levelsOf(findings)
	qt.Assert(t, qt.Equals(levels[check.Breaking], 1))
}

func TestCompareRenameWithAliasPreservingWireNameIsCompatible(t *testing.T) {
	old := pkgOf(typeDecl("Post", field("a", false, str)))
	new := pkgOf(typeDecl("Post", aliased("b", "a", false, str)))

	findings := check.Compare(old, new)
	for _, f := range findings {
		qt.Assert(t, qt.Equals(f.Level, check.Compatible))
	}
}

func TestCompareRenameWithoutAliasIsBreaking(t *testing.T) {
	old := pkgOf(typeDecl("Post", field("a", false, str)))
	new := pkgOf(typeDecl("Post", field("b", false, str)))

	findings := check.Compare(old, new)
	levels := levelsOf(findings)
	qt.Assert(t, qt.Equals(levels[check.Breaking], 1))
}

func TestCompareTupleArityChangeIsBreaking(t *testing.T) {
	old := pkgOf(tupleDecl("Point", field("x", false, i32)))
	new := pkgOf(tupleDecl("Point", field("x", false, i32), field("y", false, i32)))

	findings := check.Compare(old, new)
	qt.Assert(t, qt.Equals(len(findings), 1))
	qt.Assert(t, qt.Equals(findings[0].Level, check.Breaking))
}

func TestCompareTuplePositionTypeChangeIsBreaking(t *testing.T) {
	old := pkgOf(tupleDecl("Point", field("x", false, i32)))
	new := pkgOf(tupleDecl("Point", field("x", false, str)))

	findings := check.Compare(old, new)
	qt.Assert(t, qt.Equals(len(findings), 1))
	qt.Assert(t, qt.Equals(findings[0].Level, check.Breaking))
}

func TestCompareTupleIntegerWideningIsStillBreaking(t *testing.T) {
	old := pkgOf(tupleDecl("Point", field("x", false, i32)))
	new := pkgOf(tupleDecl("Point", field("x", false, i64)))

	findings := check.Compare(old, new)
	qt.Assert(t, qt.Equals(len(findings), 1))
	qt.Assert(t, qt.Equals(findings[0].Level, check.Breaking))
}

func TestCompareTupleAddingOptionalPositionIsStillBreaking(t *testing.T) {
	old := pkgOf(tupleDecl("Point", field("x", false, i32)))
	new := pkgOf(tupleDecl("Point", field("x", false, i32), field("y", true, i32)))

	findings := check.Compare(old, new)
	qt.Assert(t, qt.Equals(len(findings), 1))
	qt.Assert(t, qt.Equals(findings[0].Level, check.Breaking))
}

func TestCompareTupleFindingsMatchExactly(t *testing.T) {
	old := pkgOf(tupleDecl("Point", field("x", false, i32), field("y", false, i32)))
	new := pkgOf(tupleDecl("Point", field("x", false, str), field("y", false, i32), field("z", false, i32)))

	findings := check.Compare(old, new)
	want := []check.Finding{
		{check.Breaking, "example.blog@1.0.0#Point", "tuple arity changed from 2 to 3"},
	}
	if diff := cmp.Diff(want, findings, sortFindings); diff != "" {
		t.Fatalf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareEnumAddVariantIsCompatibleRemoveIsBreaking(t *testing.T) {
	mkEnum := func(variants ...ir.EnumVariant) *ir.Decl {
		return &ir.Decl{CanonicalName: "example.blog@1.0.0#Status", LocalPath: "Status", Kind: ir.KindEnum,
			Enum: &ir.EnumBody{Prim: token.STRING_T, Variants: variants}}
	}
	old := pkgOf(mkEnum(ir.EnumVariant{Name: "Active", Literal: "active"}))
	new := pkgOf(mkEnum(ir.EnumVariant{Name: "Active", Literal: "active"}, ir.EnumVariant{Name: "Done", Literal: "done"}))

	findings := check.Compare(old, new)
	qt.Assert(t, qt.Equals(len(findings), 1))
	qt.Assert(t, qt.Equals(findings[0].Level, check.Compatible))

	findings = check.Compare(new, old)
	qt.Assert(t, qt.Equals(len(findings), 1))
	qt.Assert(t, qt.Equals(findings[0].Level, check.Breaking))
}

func TestCompareTaggedInterfaceSubTypeAddedIsCompatible(t *testing.T) {
	mkIface := func(subs ...ir.SubType) *ir.Decl {
		return &ir.Decl{CanonicalName: "example.shapes@1.0.0#Shape", LocalPath: "Shape", Kind: ir.KindInterface,
			Interface: &ir.InterfaceBody{Strategy: ir.StrategyTagged, Tag: "type", SubTypes: subs}}
	}
	old := pkgOf(mkIface(ir.SubType{Name: "circle", WireName: "circle"}))
	new := pkgOf(mkIface(ir.SubType{Name: "circle", WireName: "circle"}, ir.SubType{Name: "square", WireName: "square"}))

	findings := check.Compare(old, new)
	qt.Assert(t, qt.Equals(len(findings), 1))
	qt.Assert(t, qt.Equals(findings[0].Level, check.Compatible))
}

func TestCompareUntaggedInterfaceSubTypeAddedIsMinorBreaking(t *testing.T) {
	mkIface := func(subs ...ir.SubType) *ir.Decl {
		return &ir.Decl{CanonicalName: "example.shapes@1.0.0#Shape", LocalPath: "Shape", Kind: ir.KindInterface,
			Interface: &ir.InterfaceBody{Strategy: ir.StrategyUntagged, SubTypes: subs}}
	}
	old := pkgOf(mkIface(ir.SubType{Name: "circle", WireName: "circle"}))
	new := pkgOf(mkIface(ir.SubType{Name: "circle", WireName: "circle"}, ir.SubType{Name: "square", WireName: "square"}))

	findings := check.Compare(old, new)
	qt.Assert(t, qt.Equals(len(findings), 1))
	qt.Assert(t, qt.Equals(findings[0].Level, check.MinorBreaking))
}

func TestCompareDeclarationRemovedIsBreaking(t *testing.T) {
	old := pkgOf(typeDecl("Post", field("title", false, str)), typeDecl("Draft", field("title", false, str)))
	new := pkgOf(typeDecl("Post", field("title", false, str)))

	findings := check.Compare(old, new)
	found := false
	for _, f := range findings {
		if f.Level == check.Breaking && f.Message == "declaration removed" {
			found = true
		}
	}
	qt.Assert(t, qt.IsTrue(found))
}

func TestCompareServiceEndpointRemovedIsBreakingAddedIsCompatible(t *testing.T) {
	mkSvc := func(eps ...ir.Endpoint) *ir.Decl {
		return &ir.Decl{CanonicalName: "example.blog@1.0.0#Blog", LocalPath: "Blog", Kind: ir.KindService,
			Service: &ir.ServiceBody{Endpoints: eps}}
	}
	old := pkgOf(mkSvc(ir.Endpoint{Name: "getPost"}, ir.Endpoint{Name: "deletePost"}))
	new := pkgOf(mkSvc(ir.Endpoint{Name: "getPost"}, ir.Endpoint{Name: "listPosts"}))

	findings := check.Compare(old, new)
	want := []check.Finding{
		{check.Breaking, "example.blog@1.0.0#Blog.deletePost", "endpoint removed"},
		{check.Compatible, "example.blog@1.0.0#Blog.listPosts", "endpoint added"},
	}
	if diff := cmp.Diff(want, findings, sortFindings); diff != "" {
		t.Fatalf("findings mismatch (-want +got):\n%s", diff)
	}
}
