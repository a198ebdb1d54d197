package parser

import (
	"fmt"
	"strings"

	"weftlang.dev/weft/ast"
)

// Print renders f back to IDL source text. Printing then re-parsing a file
// produces an AST equal to the original modulo span positions, which is the
// round-trip property exercised by the parser tests.
func Print(f *ast.File) string {
	var b strings.Builder
	for _, a := range f.Attrs {
		printAttr(&b, a, 0)
		b.WriteByte('\n')
	}
	for _, u := range f.Uses {
		fmt.Fprintf(&b, "use %s %s as %s;\n", u.Path, u.Range.Value, u.Alias.Name)
	}
	for i, d := range f.Decls {
		if i > 0 {
			b.WriteByte('\n')
		}
		printDecl(&b, d, 0)
	}
	return b.String()
}

func indent(b *strings.Builder, n int) {
	for i := 0; i < n; i++ {
		b.WriteString("  ")
	}
}

func printDoc(b *strings.Builder, doc *ast.CommentGroup, depth int) {
	if doc == nil {
		return
	}
	for _, line := range strings.Split(doc.Text, "\n") {
		indent(b, depth)
		fmt.Fprintf(b, "/// %s\n", line)
	}
}

func printAttr(b *strings.Builder, a *ast.Attribute, depth int) {
	indent(b, depth)
	fmt.Fprintf(b, "#[%s", a.Name.Name)
	if len(a.Args) > 0 {
		b.WriteByte('(')
		for i, arg := range a.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(b, "%s=%s", arg.Key.Name, arg.Value.Value)
		}
		b.WriteByte(')')
	}
	b.WriteByte(']')
}

func printAttrs(b *strings.Builder, attrs []*ast.Attribute, depth int) {
	for _, a := range attrs {
		printAttr(b, a, depth)
		b.WriteByte('\n')
	}
}

func printDecl(b *strings.Builder, d ast.Decl, depth int) {
	switch d := d.(type) {
	case *ast.TypeDecl:
		printDoc(b, d.Doc, depth)
		printAttrs(b, d.Attrs, depth)
		indent(b, depth)
		fmt.Fprintf(b, "type %s {\n", d.Name.Name)
		for _, f := range d.Fields {
			printField(b, f, depth+1)
		}
		for _, n := range d.Nested {
			printDecl(b, n, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *ast.InterfaceDecl:
		printDoc(b, d.Doc, depth)
		printAttrs(b, d.Attrs, depth)
		indent(b, depth)
		fmt.Fprintf(b, "interface %s {\n", d.Name.Name)
		for _, f := range d.Shared {
			printField(b, f, depth+1)
		}
		for _, s := range d.SubTypes {
			printSubType(b, s, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *ast.EnumDecl:
		printDoc(b, d.Doc, depth)
		printAttrs(b, d.Attrs, depth)
		indent(b, depth)
		fmt.Fprintf(b, "enum %s as %s {\n", d.Name.Name, d.Prim.String())
		for _, v := range d.Variants {
			printDoc(b, v.Doc, depth+1)
			indent(b, depth+1)
			fmt.Fprintf(b, "%s as %s;\n", v.Name.Name, v.Value.Value)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *ast.TupleDecl:
		printDoc(b, d.Doc, depth)
		printAttrs(b, d.Attrs, depth)
		indent(b, depth)
		fmt.Fprintf(b, "tuple %s {\n", d.Name.Name)
		for _, f := range d.Fields {
			printField(b, f, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *ast.ServiceDecl:
		printDoc(b, d.Doc, depth)
		printAttrs(b, d.Attrs, depth)
		indent(b, depth)
		fmt.Fprintf(b, "service %s {\n", d.Name.Name)
		for _, e := range d.Endpoints {
			printEndpoint(b, e, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	case *ast.BadDecl:
		indent(b, depth)
		b.WriteString("/* bad declaration */\n")
	}
}

func printSubType(b *strings.Builder, s *ast.SubTypeDecl, depth int) {
	printDoc(b, s.Doc, depth)
	printAttrs(b, s.Attrs, depth)
	indent(b, depth)
	switch s.Kind {
	case ast.SubTypeUnit:
		fmt.Fprintf(b, "%s;\n", s.Name.Name)
	case ast.SubTypeAliasedUnit:
		fmt.Fprintf(b, "%s as %s;\n", s.Name.Name, s.Alias.Value)
	case ast.SubTypeRecord:
		fmt.Fprintf(b, "%s {\n", s.Name.Name)
		for _, f := range s.Fields {
			printField(b, f, depth+1)
		}
		indent(b, depth)
		b.WriteString("}\n")
	}
}

func printField(b *strings.Builder, f *ast.Field, depth int) {
	printDoc(b, f.Doc, depth)
	printAttrs(b, f.Attrs, depth)
	indent(b, depth)
	b.WriteString(f.Name.Name)
	if f.Optional {
		b.WriteByte('?')
	}
	b.WriteString(": ")
	b.WriteString(printType(f.Type))
	if f.Alias != nil {
		fmt.Fprintf(b, " as %s", f.Alias.Value)
	}
	b.WriteString(";\n")
}

func printEndpoint(b *strings.Builder, e *ast.Endpoint, depth int) {
	printDoc(b, e.Doc, depth)
	printAttrs(b, e.Attrs, depth)
	indent(b, depth)
	fmt.Fprintf(b, "%s(", e.Name.Name)
	for i, a := range e.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s: ", a.Name.Name)
		if e.RequestStream && i == 0 {
			b.WriteString("stream ")
		}
		b.WriteString(printType(a.Type))
	}
	b.WriteString(")")
	if e.ResponseType != nil {
		b.WriteString(" -> ")
		if e.ResponseStream {
			b.WriteString("stream ")
		}
		b.WriteString(printType(e.ResponseType))
	}
	b.WriteString(";\n")
}

func printType(t ast.TypeExpr) string {
	switch t := t.(type) {
	case *ast.PrimitiveType:
		return t.Kind.String()
	case *ast.ArrayType:
		return "[" + printType(t.Elem) + "]"
	case *ast.MapType:
		return "{" + printType(t.Key) + ": " + printType(t.Value) + "}"
	case *ast.NamedType:
		names := make([]string, len(t.Segments))
		for i, s := range t.Segments {
			names[i] = s.Name
		}
		prefix := ""
		if t.Root {
			prefix = "::"
		}
		return prefix + strings.Join(names, "::")
	case *ast.BadType:
		return "/* bad type */"
	}
	return ""
}
