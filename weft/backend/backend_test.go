package backend_test

import (
	"errors"
	"testing"

	"github.com/go-quicktest/qt"

	"weftlang.dev/weft/backend"
	"weftlang.dev/weft/ir"
)

func TestDebugBackendDefaultFilename(t *testing.T) {
	pkg := &ir.Package{Path: "example.blog", Version: "1.0.0", Decls: map[string]*ir.Decl{}}
	files, err := backend.Run(backend.DebugBackend{}, pkg, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(files), 1))
	qt.Assert(t, qt.Equals(files[0].Path, "example.blog.dump.txt"))
	qt.Assert(t, qt.Equals(string(files[0].Content), "package example.blog@1.0.0\n"))
}

func TestDebugBackendCustomFilename(t *testing.T) {
	pkg := &ir.Package{Path: "example.blog", Version: "1.0.0", Decls: map[string]*ir.Decl{}}
	files, err := backend.Run(backend.DebugBackend{}, pkg, map[string]string{"filename": "out.txt"})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(files[0].Path, "out.txt"))
}

type failingBackend struct{}

func (failingBackend) Name() string { return "failing" }
func (failingBackend) Emit(pkg *ir.Package, options map[string]string) ([]backend.File, error) {
	return nil, errors.New("boom")
}

func TestRunWrapsBackendErrorWithName(t *testing.T) {
	pkg := &ir.Package{Path: "example.blog", Version: "1.0.0", Decls: map[string]*ir.Decl{}}
	_, err := backend.Run(failingBackend{}, pkg, nil)
	qt.Assert(t, qt.IsNotNil(err))
	qt.Assert(t, qt.ErrorMatches(err, "backend failing: boom"))
}
