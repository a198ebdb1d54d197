package check

import (
	"fmt"

	"weftlang.dev/weft/ir"
	"weftlang.dev/weft/token"
)

// Level classifies one compatibility finding.
type Level int

const (
	Compatible Level = iota
	MinorBreaking
	Breaking
)

func (l Level) String() string {
	switch l {
	case Compatible:
		return "compatible"
	case MinorBreaking:
		return "minor-breaking"
	case Breaking:
		return "breaking"
	default:
		return "unknown"
	}
}

// Finding is one compatibility observation between an old and new
// declaration (or field, or sub-type, or endpoint) of the same package.
type Finding struct {
	Level   Level
	Subject string // canonical name, optionally with a ".field" or "::SubType" suffix
	Message string
}

// Compare reports every compatibility finding between old and new, two
// lowered versions of the same package path. It never panics and always
// terminates, including when old and new are the same value (Compare(a, a)
// yields only Compatible findings) and regardless of call order.
func Compare(old, new *ir.Package) []Finding {
	var out []Finding
	oldByLocal := map[string]*ir.Decl{}
	for _, name := range old.Order {
		d := old.Decls[name]
		oldByLocal[d.LocalPath] = d
	}
	newByLocal := map[string]*ir.Decl{}
	for _, name := range new.Order {
		d := new.Decls[name]
		newByLocal[d.LocalPath] = d
	}

	for local, od := range oldByLocal {
		nd, ok := newByLocal[local]
		if !ok {
			out = append(out, Finding{Breaking, od.CanonicalName, "declaration removed"})
			continue
		}
		out = append(out, compareDecl(od, nd)...)
	}
	for local, nd := range newByLocal {
		if _, ok := oldByLocal[local]; !ok {
			out = append(out, Finding{Compatible, nd.CanonicalName, "declaration added"})
		}
	}
	return out
}

func compareDecl(old, new *ir.Decl) []Finding {
	if old.Kind != new.Kind {
		return []Finding{{Breaking, new.CanonicalName, "declaration kind changed"}}
	}
	switch old.Kind {
	case ir.KindType:
		return compareFields(old.CanonicalName, old.Type.Fields, new.Type.Fields)
	case ir.KindTuple:
		return compareTuple(old.CanonicalName, old.Tuple.Fields, new.Tuple.Fields)
	case ir.KindEnum:
		return compareEnum(old, new)
	case ir.KindInterface:
		return compareInterface(old, new)
	case ir.KindService:
		return compareService(old, new)
	}
	return nil
}

// compareFields implements the Record/Type rule table in full: added
// required vs optional fields, removed required vs optional fields,
// renames, and the whitelisted type-widening exceptions.
//
// Fields are paired across versions primarily by Index, the "stable
// positional index in declaration order" §4.2 step 5 designates as the
// identity §4.4 compares by — not by name. Pairing by index (rather than
// name) is what lets a rename preserved by alias come out Compatible: the
// old and new field occupying the same index are treated as the same
// field, so compareField's wire-name check (old alias-less name vs a new
// alias matching it) fires instead of the pair being reported as an
// unrelated remove-then-add.
//
// An index that exists on only one side (arity shrank or grew) has no
// partner to pair with by position; the remaining, still-unmatched
// leftovers on each side then get one more pass by name before falling
// through to a plain added/removed classification.
func compareFields(subject string, old, new []ir.Field) []Finding {
	var out []Finding
	oldByIndex := make(map[int]ir.Field, len(old))
	for _, f := range old {
		oldByIndex[f.Index] = f
	}
	newByIndex := make(map[int]ir.Field, len(new))
	for _, f := range new {
		newByIndex[f.Index] = f
	}

	matchedOld := map[int]bool{}
	matchedNew := map[int]bool{}
	for idx, of := range oldByIndex {
		nf, ok := newByIndex[idx]
		if !ok {
			continue
		}
		out = append(out, compareField(subject, of, nf)...)
		matchedOld[idx] = true
		matchedNew[idx] = true
	}

	leftoverOldByName := map[string]ir.Field{}
	for idx, of := range oldByIndex {
		if !matchedOld[idx] {
			leftoverOldByName[of.Name] = of
		}
	}
	for idx, nf := range newByIndex {
		if matchedNew[idx] {
			continue
		}
		of, ok := leftoverOldByName[nf.Name]
		if !ok {
			continue
		}
		out = append(out, compareField(subject, of, nf)...)
		matchedOld[of.Index] = true
		matchedNew[idx] = true
	}

	for idx, of := range oldByIndex {
		if matchedOld[idx] {
			continue
		}
		if of.Optional {
			out = append(out, Finding{MinorBreaking, subject + "." + of.Name, "optional field removed"})
		} else {
			out = append(out, Finding{Breaking, subject + "." + of.Name, "required field removed"})
		}
	}
	for idx, nf := range newByIndex {
		if matchedNew[idx] {
			continue
		}
		if nf.Optional {
			out = append(out, Finding{Compatible, subject + "." + nf.Name, "optional field added"})
		} else {
			out = append(out, Finding{Breaking, subject + "." + nf.Name, "required field added"})
		}
	}
	return out
}

// compareTuple implements the Tuple rule (§4.4): "any change in arity or
// position's type → breaking", with none of the Record rule's optional-add
// or integer-widening exceptions. Tuple positions have no wire-name alias
// to preserve and no optionality of their own, so — unlike compareFields —
// this never looks past Index at a field's Name.
func compareTuple(subject string, old, new []ir.Field) []Finding {
	if len(old) != len(new) {
		return []Finding{{Breaking, subject, fmt.Sprintf("tuple arity changed from %d to %d", len(old), len(new))}}
	}
	var out []Finding
	for i := range old {
		posSubject := fmt.Sprintf("%s.%d", subject, i)
		if !typesEqual(old[i].Type, new[i].Type) {
			out = append(out, Finding{Breaking, posSubject, fmt.Sprintf("tuple position %d type changed", i)})
		}
	}
	return out
}

// typesEqual is a strict structural equality check over TypeRef, with none
// of compareType's whitelisted widenings — exactly what compareTuple needs
// since the Tuple rule has no such exceptions.
func typesEqual(a, b ir.TypeRef) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ir.TypePrimitive:
		return a.Prim == b.Prim
	case ir.TypeNamed:
		return a.Ref == b.Ref
	case ir.TypeArray, ir.TypeMap, ir.TypeOptional:
		return typesEqual(*a.Elem, *b.Elem)
	default:
		return true
	}
}

func compareField(subject string, old, new ir.Field) []Finding {
	var out []Finding
	if old.WireName() != new.WireName() {
		out = append(out, Finding{Breaking, subject + "." + old.Name,
			"field renamed on the wire from " + old.WireName() + " to " + new.WireName()})
	}
	switch {
	case !old.Optional && new.Optional:
		out = append(out, Finding{Compatible, subject + "." + old.Name, "field made optional"})
	case old.Optional && !new.Optional:
		out = append(out, Finding{Breaking, subject + "." + old.Name, "field made required"})
	}
	out = append(out, compareType(subject+"."+old.Name, old.Type.Unwrap(), new.Type.Unwrap())...)
	return out
}

// compareType implements the type-change rule: identical types are
// Compatible, the whitelisted integer widenings (same signedness, larger
// width) are Compatible, and every other change is Breaking.
func compareType(subject string, old, new ir.TypeRef) []Finding {
	if old.Kind != new.Kind {
		return []Finding{{Breaking, subject, "field type changed"}}
	}
	switch old.Kind {
	case ir.TypePrimitive:
		if old.Prim == new.Prim {
			return nil
		}
		if isWidening(old.Prim, new.Prim) {
			return []Finding{{Compatible, subject, "integer widened from " + old.Prim.String() + " to " + new.Prim.String()}}
		}
		return []Finding{{Breaking, subject, "primitive type changed from " + old.Prim.String() + " to " + new.Prim.String()}}
	case ir.TypeNamed:
		if old.Ref != new.Ref {
			return []Finding{{Breaking, subject, "named type reference changed"}}
		}
		return nil
	case ir.TypeArray, ir.TypeMap:
		return compareType(subject, *old.Elem, *new.Elem)
	default:
		return nil
	}
}

func isWidening(old, new token.Token) bool {
	switch {
	case old == token.INT32 && new == token.INT64:
		return true
	case old == token.UINT32 && new == token.UINT64:
		return true
	default:
		return false
	}
}

func compareEnum(old, new *ir.Decl) []Finding {
	var out []Finding
	if old.Enum.Prim != new.Enum.Prim {
		out = append(out, Finding{Breaking, new.CanonicalName, "enum underlying primitive changed"})
	}
	oldByName := map[string]ir.EnumVariant{}
	for _, v := range old.Enum.Variants {
		oldByName[v.Name] = v
	}
	newByName := map[string]ir.EnumVariant{}
	for _, v := range new.Enum.Variants {
		newByName[v.Name] = v
	}
	for name, ov := range oldByName {
		nv, ok := newByName[name]
		if !ok {
			out = append(out, Finding{Breaking, new.CanonicalName + "::" + name, "enum variant removed"})
			continue
		}
		if ov.Literal != nv.Literal {
			out = append(out, Finding{Breaking, new.CanonicalName + "::" + name, "enum variant representation changed"})
		}
	}
	for name := range newByName {
		if _, ok := oldByName[name]; !ok {
			out = append(out, Finding{Compatible, new.CanonicalName + "::" + name, "enum variant added"})
		}
	}
	return out
}

func compareInterface(old, new *ir.Decl) []Finding {
	var out []Finding
	if old.Interface.Strategy != new.Interface.Strategy {
		out = append(out, Finding{Breaking, new.CanonicalName, "type_info strategy changed"})
	} else if old.Interface.Strategy == ir.StrategyTagged && old.Interface.Tag != new.Interface.Tag {
		out = append(out, Finding{Breaking, new.CanonicalName, "discriminator tag field renamed"})
	}
	out = append(out, compareFields(new.CanonicalName, old.Interface.Shared, new.Interface.Shared)...)

	oldByName := map[string]ir.SubType{}
	for _, st := range old.Interface.SubTypes {
		oldByName[st.Name] = st
	}
	newByName := map[string]ir.SubType{}
	for _, st := range new.Interface.SubTypes {
		newByName[st.Name] = st
	}
	addAdded := MinorBreaking
	if old.Interface.Strategy == ir.StrategyTagged {
		addAdded = Compatible
	}
	for name, ost := range oldByName {
		nst, ok := newByName[name]
		if !ok {
			out = append(out, Finding{Breaking, new.CanonicalName + "::" + name, "sub-type removed"})
			continue
		}
		if ost.WireName != nst.WireName {
			out = append(out, Finding{Breaking, new.CanonicalName + "::" + name, "sub-type discriminator value changed"})
		}
		out = append(out, compareFields(new.CanonicalName+"::"+name, ost.Fields, nst.Fields)...)
	}
	for name := range newByName {
		if _, ok := oldByName[name]; !ok {
			out = append(out, Finding{addAdded, new.CanonicalName + "::" + name, "sub-type added"})
		}
	}
	return out
}

func compareService(old, new *ir.Decl) []Finding {
	var out []Finding
	oldByName := map[string]ir.Endpoint{}
	for _, e := range old.Service.Endpoints {
		oldByName[e.Name] = e
	}
	newByName := map[string]ir.Endpoint{}
	for _, e := range new.Service.Endpoints {
		newByName[e.Name] = e
	}
	for name, oe := range oldByName {
		ne, ok := newByName[name]
		if !ok {
			out = append(out, Finding{Breaking, new.CanonicalName + "." + name, "endpoint removed"})
			continue
		}
		subject := new.CanonicalName + "." + name
		if oe.RequestStream != ne.RequestStream || oe.ResponseStream != ne.ResponseStream {
			out = append(out, Finding{Breaking, subject, "streaming direction changed"})
		}
		out = append(out, compareFields(subject, oe.Args, ne.Args)...)
		switch {
		case oe.Response == nil && ne.Response == nil:
		case oe.Response == nil || ne.Response == nil:
			out = append(out, Finding{Breaking, subject, "response presence changed"})
		default:
			out = append(out, compareType(subject+"->", *oe.Response, *ne.Response)...)
		}
	}
	for name := range newByName {
		if _, ok := oldByName[name]; !ok {
			out = append(out, Finding{Compatible, new.CanonicalName + "." + name, "endpoint added"})
		}
	}
	return out
}
