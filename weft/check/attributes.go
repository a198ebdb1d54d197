package check

import (
	"weftlang.dev/weft/errors"
	"weftlang.dev/weft/ir"
)

// ValidateAttributes checks that recognized attributes are attached to a
// declaration kind that can actually use them. The lowerer already parses
// #[type_info(...)] and #[http(...)] into typed fields and warns on
// unrecognized attribute keys as it goes; ValidateAttributes catches the
// remaining shape rule that needs the whole package assembled: a
// recognized attribute used on the wrong kind of declaration.
func ValidateAttributes(pkg *ir.Package) errors.List {
	var out errors.List
	for _, name := range pkg.Order {
		d := pkg.Decls[name]
		if d.Attrs.TypeInfo != nil && d.Kind != ir.KindInterface {
			out.Add(errors.Newf(d.Attrs.TypeInfo.Span.Start, errors.CodeAttribute,
				"%s: #[type_info] only applies to interface declarations", d.CanonicalName))
		}
		if d.Attrs.HTTP != nil {
			out.Add(errors.Newf(d.Attrs.HTTP.Span.Start, errors.CodeAttribute,
				"%s: #[http] only applies to service endpoints", d.CanonicalName))
		}
		if d.Kind == ir.KindService {
			for _, ep := range d.Service.Endpoints {
				if ep.HTTP != nil && ep.HTTP.Method == "" {
					out.Add(errors.Warnf(ep.HTTP.Span.Start, errors.CodeAttribute,
						"%s.%s: #[http] has no method, defaults to POST", d.CanonicalName, ep.Name))
				}
			}
		}
	}
	return out
}
