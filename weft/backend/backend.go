// Package backend defines the narrow interface that separates the IR this
// module produces from the per-target code emitters, documentation
// renderers, and similar consumers the specification treats as external
// collaborators (§1, §6). Real per-target emitters (Go structs, TypeScript
// interfaces, OpenAPI documents, ...) are out of scope here; this package
// only defines the seam and one illustrative backend ([DebugBackend]) that exists to
// prove the seam is usable, grounded on the entrypoint shape of cue's own
// encoding backends (encoding/openapi, encoding/gocode: a Generate-style
// function taking the IR/AST plus options and returning named byte
// payloads or an error).
package backend

import (
	"fmt"

	"weftlang.dev/weft/ir"
)

// File is one emitted output: a path relative to the backend's output root,
// and its bytes.
type File struct {
	Path    string
	Content []byte
}

// EmitError reports a backend failure, keeping the backend name attached so
// a caller running several backends can tell which one failed.
type EmitError struct {
	Backend string
	Cause   error
}

func (e *EmitError) Error() string { return fmt.Sprintf("backend %s: %v", e.Backend, e.Cause) }
func (e *EmitError) Unwrap() error { return e.Cause }

// Backend consumes IR only — never the AST — and renders it into a set of
// output files (§6). Options are backend-specific key/value pairs sourced
// from a [config.Manifest]'s per-backend section.
type Backend interface {
	Name() string
	Emit(pkg *ir.Package, options map[string]string) ([]File, error)
}

// Run is a small helper that wraps b.Emit's error in an [EmitError] tagged
// with the backend's name, so callers running a list of backends over one
// package can report which backend failed without type-switching on b.
func Run(b Backend, pkg *ir.Package, options map[string]string) ([]File, error) {
	files, err := b.Emit(pkg, options)
	if err != nil {
		return nil, &EmitError{Backend: b.Name(), Cause: err}
	}
	return files, nil
}
