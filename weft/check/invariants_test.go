package check_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"weftlang.dev/weft/check"
	"weftlang.dev/weft/ir"
	"weftlang.dev/weft/token"
)

func namedRef(canon string) ir.TypeRef { return ir.TypeRef{Kind: ir.TypeNamed, Ref: canon} }

func TestValidateInvariantsCanonicalUniquenessDefensiveCheck(t *testing.T) {
	d := typeDecl("Post")
	p := &ir.Package{Path: "example.blog", Version: "1.0.0", Decls: map[string]*ir.Decl{d.CanonicalName: d},
		Order: []string{d.CanonicalName, d.CanonicalName}}
	errs := check.ValidateInvariants(p)
	qt.Assert(t, qt.IsTrue(errs.HasErrors()))
}

func TestValidateInvariantsDuplicateDiscriminatorOnTaggedInterface(t *testing.T) {
	iface := &ir.Decl{
		CanonicalName: "example.shapes@1.0.0#Shape",
		LocalPath:     "Shape",
		Kind:          ir.KindInterface,
		Interface: &ir.InterfaceBody{
			Strategy: ir.StrategyTagged,
			Tag:      "type",
			SubTypes: []ir.SubType{
				{Name: "circle", WireName: "shape"},
				{Name: "square", WireName: "shape"},
			},
		},
	}
	p := pkgOf(iface)
	errs := check.ValidateInvariants(p)
	qt.Assert(t, qt.IsTrue(errs.HasErrors()))
}

func TestValidateInvariantsUntaggedDuplicateDiscriminatorIsNotChecked(t *testing.T) {
	iface := &ir.Decl{
		CanonicalName: "example.shapes@1.0.0#Shape",
		LocalPath:     "Shape",
		Kind:          ir.KindInterface,
		Interface: &ir.InterfaceBody{
			Strategy: ir.StrategyUntagged,
			SubTypes: []ir.SubType{
				{Name: "circle", WireName: "circle"},
				{Name: "square", WireName: "circle"},
			},
		},
	}
	p := pkgOf(iface)
	errs := check.ValidateInvariants(p)
	qt.Assert(t, qt.IsFalse(errs.HasErrors()))
}

func TestValidateInvariantsEnumLiteralOverflow(t *testing.T) {
	d := &ir.Decl{
		CanonicalName: "example.blog@1.0.0#Code",
		LocalPath:     "Code",
		Kind:          ir.KindEnum,
		Enum: &ir.EnumBody{
			Prim: token.INT32,
			Variants: []ir.EnumVariant{
				{Name: "Big", Literal: "99999999999"},
			},
		},
	}
	errs := check.ValidateInvariants(pkgOf(d))
	qt.Assert(t, qt.IsTrue(errs.HasErrors()))
}

func TestValidateInvariantsEnumLiteralInBounds(t *testing.T) {
	d := &ir.Decl{
		CanonicalName: "example.blog@1.0.0#Code",
		LocalPath:     "Code",
		Kind:          ir.KindEnum,
		Enum: &ir.EnumBody{
			Prim: token.INT32,
			Variants: []ir.EnumVariant{
				{Name: "Small", Literal: "42"},
			},
		},
	}
	errs := check.ValidateInvariants(pkgOf(d))
	qt.Assert(t, qt.IsFalse(errs.HasErrors()))
}

func TestValidateInvariantsEnumLiteralNotIntegerIsError(t *testing.T) {
	d := &ir.Decl{
		CanonicalName: "example.blog@1.0.0#Code",
		LocalPath:     "Code",
		Kind:          ir.KindEnum,
		Enum: &ir.EnumBody{
			Prim:     token.INT32,
			Variants: []ir.EnumVariant{{Name: "Frac", Literal: "1.5"}},
		},
	}
	errs := check.ValidateInvariants(pkgOf(d))
	qt.Assert(t, qt.IsTrue(errs.HasErrors()))
}

func TestValidateInvariantsStringEnumSkipsWidthCheck(t *testing.T) {
	d := &ir.Decl{
		CanonicalName: "example.blog@1.0.0#Status",
		LocalPath:     "Status",
		Kind:          ir.KindEnum,
		Enum:          &ir.EnumBody{Prim: token.STRING_T, Variants: []ir.EnumVariant{{Name: "Active", Literal: "active"}}},
	}
	errs := check.ValidateInvariants(pkgOf(d))
	qt.Assert(t, qt.IsFalse(errs.HasErrors()))
}

func TestValidateInvariantsDirectRequiredCycleIsError(t *testing.T) {
	a := typeDecl("A", field("b", false, namedRef("example.blog@1.0.0#B")))
	b := typeDecl("B", field("a", false, namedRef("example.blog@1.0.0#A")))
	errs := check.ValidateInvariants(pkgOf(a, b))
	qt.Assert(t, qt.IsTrue(errs.HasErrors()))
}

func TestValidateInvariantsCycleThroughArrayFieldIsAllowed(t *testing.T) {
	a := typeDecl("A", field("bs", false, ir.Array(namedRef("example.blog@1.0.0#B"))))
	b := typeDecl("B", field("a", false, namedRef("example.blog@1.0.0#A")))
	errs := check.ValidateInvariants(pkgOf(a, b))
	qt.Assert(t, qt.IsFalse(errs.HasErrors()))
}

func TestValidateInvariantsCycleThroughOptionalFieldIsAllowed(t *testing.T) {
	a := typeDecl("A", field("b", true, ir.Optional(namedRef("example.blog@1.0.0#B"))))
	b := typeDecl("B", field("a", false, namedRef("example.blog@1.0.0#A")))
	errs := check.ValidateInvariants(pkgOf(a, b))
	qt.Assert(t, qt.IsFalse(errs.HasErrors()))
}

func TestValidateAttributesRejectsTypeInfoOnNonInterface(t *testing.T) {
	d := typeDecl("Post")
	d.Attrs.TypeInfo = &ir.TypeInfoAttr{Strategy: ir.StrategyTagged, Tag: "type"}
	errs := check.ValidateAttributes(pkgOf(d))
	qt.Assert(t, qt.IsTrue(errs.HasErrors()))
}

func TestValidateAttributesWarnsOnMissingHTTPMethod(t *testing.T) {
	d := &ir.Decl{
		CanonicalName: "example.blog@1.0.0#Blog",
		LocalPath:     "Blog",
		Kind:          ir.KindService,
		Service: &ir.ServiceBody{
			Endpoints: []ir.Endpoint{{Name: "getPost", HTTP: &ir.HTTPAttr{Path: "/posts/:id"}}},
		},
	}
	errs := check.ValidateAttributes(pkgOf(d))
	qt.Assert(t, qt.IsFalse(errs.HasErrors()))
	found := false
	for _, e := range errs {
		if e.Severity.String() == "warning" {
			found = true
		}
	}
	qt.Assert(t, qt.IsTrue(found))
}
