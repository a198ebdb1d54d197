package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Dump renders a Package deterministically: declarations and fields appear
// in their canonical Order/Index, never in map iteration order, so that
// running the translator twice over identical inputs produces
// byte-identical text (§5, §8 "IR determinism").
func (p *Package) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "package %s@%s\n", p.Path, p.Version)
	for _, imp := range sortedImports(p.Imports) {
		fmt.Fprintf(&b, "use %s as %s (%s@%s)\n", imp.Path, imp.Alias, imp.Path, imp.PinnedVersion)
	}
	for _, name := range p.Order {
		d := p.Decls[name]
		dumpDecl(&b, d)
	}
	return b.String()
}

func sortedImports(in []Import) []Import {
	out := append([]Import(nil), in...)
	sort.Slice(out, func(i, j int) bool { return out[i].Alias < out[j].Alias })
	return out
}

func dumpDecl(b *strings.Builder, d *Decl) {
	fmt.Fprintf(b, "%s %s\n", d.Kind, d.CanonicalName)
	switch d.Kind {
	case KindType:
		for _, f := range d.Type.Fields {
			dumpField(b, f)
		}
	case KindInterface:
		fmt.Fprintf(b, "  strategy=%s tag=%s\n", d.Interface.Strategy, d.Interface.Tag)
		for _, f := range d.Interface.Shared {
			dumpField(b, f)
		}
		for _, st := range d.Interface.SubTypes {
			fmt.Fprintf(b, "  subtype %s wire=%q\n", st.Name, st.WireName)
			for _, f := range st.Fields {
				dumpField(b, f)
			}
		}
	case KindEnum:
		fmt.Fprintf(b, "  prim=%s\n", d.Enum.Prim)
		for _, v := range d.Enum.Variants {
			fmt.Fprintf(b, "  variant %s=%s\n", v.Name, v.Literal)
		}
	case KindTuple:
		for _, f := range d.Tuple.Fields {
			dumpField(b, f)
		}
	case KindService:
		for _, e := range d.Service.Endpoints {
			fmt.Fprintf(b, "  endpoint %s reqstream=%v respstream=%v\n", e.Name, e.RequestStream, e.ResponseStream)
			for _, a := range e.Args {
				dumpField(b, a)
			}
			if e.Response != nil {
				fmt.Fprintf(b, "    -> %s\n", dumpType(*e.Response))
			}
		}
	}
}

func dumpField(b *strings.Builder, f Field) {
	fmt.Fprintf(b, "  field[%d] %s wire=%q optional=%v : %s\n", f.Index, f.Name, f.WireName(), f.Optional, dumpType(f.Type))
}

func dumpType(t TypeRef) string {
	switch t.Kind {
	case TypePrimitive:
		return t.Prim.String()
	case TypeArray:
		return "[" + dumpType(*t.Elem) + "]"
	case TypeMap:
		return "{string: " + dumpType(*t.Elem) + "}"
	case TypeOptional:
		return "?" + dumpType(*t.Elem)
	case TypeNamed:
		return t.Ref
	}
	return "?"
}
