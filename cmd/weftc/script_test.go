package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestMain registers Main as the "weftc" command inside testscript's exec
// sandbox, the same way cue's cmd/cue/cmd.TestMain wires its own Main — so a
// .txtar script's "exec weftc ..." line runs in-process rather than forking
// a built binary.
func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"weftc": Main,
	}))
}

// TestScript runs every golden script under testdata/script, each a .txtar
// archive of input files plus a line-oriented transcript of weftc
// invocations and the output/exit-code/file-tree assertions they must
// satisfy.
func TestScript(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:                 "testdata/script",
		RequireExplicitExec: true,
		RequireUniqueNames:  true,
	})
}
