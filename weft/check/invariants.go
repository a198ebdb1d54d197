// Package check implements the intra-version invariant and attribute
// validation, and the inter-version compatibility checker, described for
// the semantic checker component: it consumes already-lowered [ir.Package]
// values and never mutates them.
package check

import (
	"sort"

	"github.com/cockroachdb/apd/v3"
	"github.com/mpvl/unique"

	"weftlang.dev/weft/errors"
	"weftlang.dev/weft/ir"
	"weftlang.dev/weft/token"
)

// ValidateInvariants checks the invariants that must hold of any lowered
// package: canonical-name uniqueness, unique discriminators on tagged
// interfaces, and absence of cycles through required non-container fields.
// The translator has already enforced name resolution, field-name, and
// enum-literal uniqueness while lowering; ValidateInvariants re-checks the
// properties that can only be verified once the whole package is
// assembled.
func ValidateInvariants(pkg *ir.Package) errors.List {
	var out errors.List
	checkCanonicalUniqueness(pkg, &out)
	for _, name := range pkg.Order {
		d := pkg.Decls[name]
		if d.Kind == ir.KindInterface {
			checkDiscriminatorUniqueness(d, &out)
		}
		if d.Kind == ir.KindEnum {
			checkEnumLiteralWidths(d, &out)
		}
	}
	checkNoRequiredCycles(pkg, &out)
	return out
}

// checkCanonicalUniqueness re-verifies invariant 6. The translator already
// refuses to register two entries under one canonical name, so this is a
// defensive re-check against the assembled Order/Decls pair rather than a
// path expected to ever fire in practice.
func checkCanonicalUniqueness(pkg *ir.Package, out *errors.List) {
	names := append([]string(nil), pkg.Order...)
	sort.Strings(names)
	deduped := append([]string(nil), names...)
	unique.Strings(&deduped)
	if len(deduped) != len(names) {
		out.Add(errors.Newf(token.NoPos, errors.CodeName, "package %s: duplicate canonical name after assembly", pkg.Path))
	}
}

// checkDiscriminatorUniqueness implements invariant 3. For a tagged
// interface two sub-types sharing a wire name would make the discriminator
// ambiguous on decode, which is always an error (unlike the untagged case,
// where structural overlap only ever warns; see the lowerer's
// checkUntaggedAmbiguity).
func checkDiscriminatorUniqueness(d *ir.Decl, out *errors.List) {
	if d.Interface.Strategy != ir.StrategyTagged {
		return
	}
	seen := map[string]ir.SubType{}
	for _, st := range d.Interface.SubTypes {
		if prior, dup := seen[st.WireName]; dup {
			out.Add(errors.Newf(st.Span.Start, errors.CodeType,
				"interface %s: sub-types %s and %s share discriminator value %q", d.CanonicalName, prior.Name, st.Name, st.WireName).
				WithSecondary(prior.Span.Start, "previous sub-type with this discriminator"))
			continue
		}
		seen[st.WireName] = st
	}
}

// checkEnumLiteralWidths validates that every variant's literal fits the
// enum's declared integer primitive, using apd's arbitrary-precision
// decimal so that a literal many digits wide is checked exactly rather than
// risking silent overflow in a machine int.
func checkEnumLiteralWidths(d *ir.Decl, out *errors.List) {
	lo, hi, ok := widthBounds(d.Enum.Prim)
	if !ok {
		return // string-backed enum: no numeric width to check
	}
	for _, v := range d.Enum.Variants {
		dec, _, err := apd.NewFromString(v.Literal)
		if err != nil {
			out.Add(errors.Newf(v.Span.Start, errors.CodeType, "enum %s: variant %s: %q is not a valid %s literal",
				d.CanonicalName, v.Name, v.Literal, d.Enum.Prim))
			continue
		}
		if dec.Exponent != 0 {
			out.Add(errors.Newf(v.Span.Start, errors.CodeType, "enum %s: variant %s: %q is not an integer",
				d.CanonicalName, v.Name, v.Literal))
			continue
		}
		if dec.Cmp(lo) < 0 || dec.Cmp(hi) > 0 {
			out.Add(errors.Newf(v.Span.Start, errors.CodeType, "enum %s: variant %s: %q does not fit in %s",
				d.CanonicalName, v.Name, v.Literal, d.Enum.Prim))
		}
	}
}

func widthBounds(prim token.Token) (lo, hi *apd.Decimal, ok bool) {
	mk := func(s string) *apd.Decimal {
		d, _, _ := apd.NewFromString(s)
		return d
	}
	switch prim {
	case token.INT32:
		return mk("-2147483648"), mk("2147483647"), true
	case token.INT64:
		return mk("-9223372036854775808"), mk("9223372036854775807"), true
	case token.UINT32:
		return mk("0"), mk("4294967295"), true
	case token.UINT64:
		return mk("0"), mk("18446744073709551615"), true
	default:
		return nil, nil, false
	}
}

// checkNoRequiredCycles implements invariant 4: a type graph may be
// cyclic, but only through edges that pass through an array, a map, or an
// optional field. It walks every Type/Tuple/interface-shared/sub-type
// field chain depth-first, tracking the canonical names currently on the
// stack, and reports a cycle the moment it revisits one through an edge
// that was not a container or optional.
func checkNoRequiredCycles(pkg *ir.Package, out *errors.List) {
	visiting := map[string]bool{}
	done := map[string]bool{}
	var stackNames []string

	var walk func(canonical string) bool
	walk = func(canonical string) bool {
		if done[canonical] {
			return true
		}
		if visiting[canonical] {
			out.Add(errors.Newf(token.NoPos, errors.CodeType,
				"cycle through required fields: %s", cyclePath(stackNames, canonical)))
			return false
		}
		d, ok := pkg.Decls[canonical]
		if !ok {
			return true // declared in another package; already validated there
		}
		visiting[canonical] = true
		stackNames = append(stackNames, canonical)
		for _, f := range requiredFieldsOf(d) {
			if f.Type.ContainsContainer() {
				continue
			}
			if f.Type.Kind == ir.TypeNamed {
				walk(f.Type.Ref)
			}
		}
		stackNames = stackNames[:len(stackNames)-1]
		visiting[canonical] = false
		done[canonical] = true
		return true
	}
	for _, name := range pkg.Order {
		walk(name)
	}
}

func cyclePath(stack []string, closing string) string {
	s := ""
	for i, n := range stack {
		if i > 0 {
			s += " -> "
		}
		s += n
	}
	return s + " -> " + closing
}

func requiredFieldsOf(d *ir.Decl) []ir.Field {
	switch d.Kind {
	case ir.KindType:
		return d.Type.Fields
	case ir.KindTuple:
		return d.Tuple.Fields
	case ir.KindInterface:
		fields := append([]ir.Field(nil), d.Interface.Shared...)
		for _, st := range d.Interface.SubTypes {
			fields = append(fields, st.Fields...)
		}
		return fields
	default:
		return nil
	}
}
