package translate_test

import (
	"context"
	"testing"

	"github.com/go-quicktest/qt"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"weftlang.dev/weft/ast"
	"weftlang.dev/weft/ir"
	"weftlang.dev/weft/parser"
	"weftlang.dev/weft/resolve"
	"weftlang.dev/weft/token"
	"weftlang.dev/weft/translate"
	"weftlang.dev/weft/version"
)

func parseOne(t *testing.T, filename, src string) *ast.File {
	t.Helper()
	f, errs := parser.ParseFile(filename, []byte(src))
	qt.Assert(t, qt.IsFalse(errs.HasErrors()))
	return f
}

func TestTranslateSimpleType(t *testing.T) {
	f := parseOne(t, "post.weft", `
type Post {
  title: string;
  views: int32;
}
`)
	tr := translate.New(translate.Config{})
	pkg, _, diags := tr.Translate(context.Background(), translate.RootPackage{
		Path: "example.blog", Version: "1.0.0", Files: []*ast.File{f},
	})
	qt.Assert(t, qt.IsFalse(diags.HasErrors()))
	qt.Assert(t, qt.IsNotNil(pkg))

	d, ok := pkg.Decls["example.blog@1.0.0#Post"]
	qt.Assert(t, qt.IsTrue(ok))

	want := []ir.Field{
		{Name: "title", Index: 0, Type: ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.STRING_T}},
		{Name: "views", Index: 1, Type: ir.TypeRef{Kind: ir.TypePrimitive, Prim: token.INT32}},
	}
	if diff := cmp.Diff(want, d.Type.Fields, cmpopts.IgnoreFields(ir.Field{}, "Span")); diff != "" {
		t.Fatalf("lowered fields mismatch (-want +got):\n%s", diff)
	}
}

func TestTranslateNestedDeclarationGetsDottedCanonicalName(t *testing.T) {
	f := parseOne(t, "post.weft", `
type Post {
  coord: Post::Coord;
  tuple Coord {
    lat: double;
    lng: double;
  }
}
`)
	tr := translate.New(translate.Config{})
	pkg, _, diags := tr.Translate(context.Background(), translate.RootPackage{
		Path: "example.blog", Version: "1.0.0", Files: []*ast.File{f},
	})
	qt.Assert(t, qt.IsFalse(diags.HasErrors()))
	_, ok := pkg.Decls["example.blog@1.0.0#Post.Coord"]
	qt.Assert(t, qt.IsTrue(ok))
}

func TestTranslateImportWithAlias(t *testing.T) {
	common := resolve.NewMemoryProvider()
	common.Add("example.common", version.MustParse("1.0.0"), resolve.Source{
		LogicalPath: "common.weft",
		Content:     []byte("type Author { name: string; }\n"),
	})
	resolver := resolve.New(common)

	f := parseOne(t, "post.weft", `
use example.common "^1" as c;

type Post {
  author: c::Author;
}
`)
	tr := translate.New(translate.Config{Resolver: resolver})
	pkg, uni, diags := tr.Translate(context.Background(), translate.RootPackage{
		Path: "example.blog", Version: "1.0.0", Files: []*ast.File{f},
	})
	qt.Assert(t, qt.IsFalse(diags.HasErrors()))

	post := pkg.Decls["example.blog@1.0.0#Post"]
	authorField := post.Type.Fields[0]
	qt.Assert(t, qt.Equals(authorField.Type.Ref, "example.common@1.0.0#Author"))

	_, ok := uni.Lookup("example.common@1.0.0#Author")
	qt.Assert(t, qt.IsTrue(ok))
}

func TestTranslateAmbiguousNameIsError(t *testing.T) {
	common := resolve.NewMemoryProvider()
	common.Add("example.common", version.MustParse("1.0.0"), resolve.Source{
		LogicalPath: "common.weft",
		Content:     []byte("type Author { name: string; }\n"),
	})
	resolver := resolve.New(common)

	f := parseOne(t, "post.weft", `
use example.common "^1" as c;

type c {
  coord: c::Thing;
}
`)
	tr := translate.New(translate.Config{Resolver: resolver})
	_, _, diags := tr.Translate(context.Background(), translate.RootPackage{
		Path: "example.blog", Version: "1.0.0", Files: []*ast.File{f},
	})
	qt.Assert(t, qt.IsTrue(diags.HasErrors()))
}

func TestTranslateTaggedInterface(t *testing.T) {
	f := parseOne(t, "shape.weft", `
interface Shape {
  circle {
    radius: double;
  }
  square {
    side: double;
  }
}
`)
	tr := translate.New(translate.Config{})
	pkg, _, diags := tr.Translate(context.Background(), translate.RootPackage{
		Path: "example.shapes", Version: "1.0.0", Files: []*ast.File{f},
	})
	qt.Assert(t, qt.IsFalse(diags.HasErrors()))
	d := pkg.Decls["example.shapes@1.0.0#Shape"]
	qt.Assert(t, qt.Equals(len(d.Interface.SubTypes), 2))
	qt.Assert(t, qt.Equals(d.Interface.SubTypes[0].WireName, "circle"))
}

func TestTranslateUntaggedAmbiguityWarnsNotErrors(t *testing.T) {
	f := parseOne(t, "shape.weft", `
#[type_info(strategy = untagged)]
interface Shape {
  circle {
    radius: double;
  }
  wheel {
    radius: double;
  }
}
`)
	tr := translate.New(translate.Config{})
	pkg, _, diags := tr.Translate(context.Background(), translate.RootPackage{
		Path: "example.shapes", Version: "1.0.0", Files: []*ast.File{f},
	})
	qt.Assert(t, qt.IsFalse(diags.HasErrors()))
	qt.Assert(t, qt.IsNotNil(pkg))

	foundWarning := false
	for _, d := range diags {
		if d.Severity.String() == "warning" {
			foundWarning = true
		}
	}
	qt.Assert(t, qt.IsTrue(foundWarning))
}

func TestTranslateDuplicateFieldNameIsError(t *testing.T) {
	f := parseOne(t, "post.weft", `
type Post {
  title: string;
  title: string;
}
`)
	tr := translate.New(translate.Config{})
	_, _, diags := tr.Translate(context.Background(), translate.RootPackage{
		Path: "example.blog", Version: "1.0.0", Files: []*ast.File{f},
	})
	qt.Assert(t, qt.IsTrue(diags.HasErrors()))
}

func TestTranslateUnresolvedReferenceIsError(t *testing.T) {
	f := parseOne(t, "post.weft", `
type Post {
  author: Nope;
}
`)
	tr := translate.New(translate.Config{})
	_, _, diags := tr.Translate(context.Background(), translate.RootPackage{
		Path: "example.blog", Version: "1.0.0", Files: []*ast.File{f},
	})
	qt.Assert(t, qt.IsTrue(diags.HasErrors()))
}
