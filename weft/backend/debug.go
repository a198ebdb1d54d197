package backend

import "weftlang.dev/weft/ir"

// DebugBackend emits the package's deterministic text [ir.Package.Dump] as
// a single file. It exists to exercise the [Backend] seam end-to-end
// without taking on the scope of a real per-target emitter; it is the kind
// of backend a frontend test suite uses to assert on IR shape without
// depending on JSON or reflection.
type DebugBackend struct{}

func (DebugBackend) Name() string { return "debug" }

func (DebugBackend) Emit(pkg *ir.Package, options map[string]string) ([]File, error) {
	name := options["filename"]
	if name == "" {
		name = pkg.Path + ".dump.txt"
	}
	return []File{{Path: name, Content: []byte(pkg.Dump())}}, nil
}
