package ir_test

import (
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"

	"weftlang.dev/weft/ir"
	"weftlang.dev/weft/token"
)

func TestPackageKey(t *testing.T) {
	p := &ir.Package{Path: "example.blog", Version: "1.2.3"}
	qt.Assert(t, qt.Equals(p.Key(), "example.blog@1.2.3"))
}

func TestOptionalCollapses(t *testing.T) {
	str := ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.STRING_T}
	once := ir.Optional(str)
	twice := ir.Optional(once)
	qt.Assert(t, qt.Equals(twice.Kind, ir.TypeOptional))
	qt.Assert(t, qt.Equals(twice.Unwrap().Kind, ir.TypePrimitive))
}

func TestContainerConstructorsProduceExactTypeRefShape(t *testing.T) {
	str := ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.STRING_T}

	cases := []struct {
		name string
		got  ir.TypeRef
		want ir.TypeRef
	}{
		{"Array", ir.Array(str), ir.TypeRef{Kind: ir.TypeArray, Elem: &str}},
		{"Map", ir.Map(str), ir.TypeRef{Kind: ir.TypeMap, Elem: &str}},
		{"Optional", ir.Optional(str), ir.TypeRef{Kind: ir.TypeOptional, Elem: &str}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if diff := cmp.Diff(c.want, c.got); diff != "" {
				t.Fatalf("%s() mismatch (-want +got):\n%s", c.name, diff)
			}
		})
	}
}

func TestContainsContainer(t *testing.T) {
	str := ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.STRING_T}
	qt.Assert(t, qt.IsFalse(str.ContainsContainer()))
	qt.Assert(t, qt.IsTrue(ir.Array(str).ContainsContainer()))
	qt.Assert(t, qt.IsTrue(ir.Map(str).ContainsContainer()))
	qt.Assert(t, qt.IsTrue(ir.Optional(str).ContainsContainer()))
}

func TestDumpIsDeterministicAcrossRuns(t *testing.T) {
	mk := func() *ir.Package {
		p := &ir.Package{Path: "example.blog", Version: "1.0.0", Decls: map[string]*ir.Decl{}}
		post := &ir.Decl{
			CanonicalName: "example.blog@1.0.0#Post",
			Kind:          ir.KindType,
			Type: &ir.TypeBody{Fields: []ir.Field{
				{Name: "title", Index: 0, Type: ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.STRING_T}},
				{Name: "views", Index: 1, Type: ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.INT32}},
			}},
		}
		p.Decls[post.CanonicalName] = post
		p.Order = append(p.Order, post.CanonicalName)
		return p
	}

	a, b := mk(), mk()
	qt.Assert(t, qt.Equals(a.Dump(), b.Dump()))
}

func TestUniverseAddAndLookup(t *testing.T) {
	u := ir.NewUniverse()
	p := &ir.Package{Path: "example.blog", Version: "1.0.0", Decls: map[string]*ir.Decl{
		"example.blog@1.0.0#Post": {CanonicalName: "example.blog@1.0.0#Post", Kind: ir.KindType, Type: &ir.TypeBody{}},
	}, Order: []string{"example.blog@1.0.0#Post"}}
	u.Add(p)

	d, ok := u.Lookup("example.blog@1.0.0#Post")
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(d.CanonicalName, "example.blog@1.0.0#Post"))

	_, ok = u.Lookup("example.blog@1.0.0#Nope")
	qt.Assert(t, qt.IsFalse(ok))
}
