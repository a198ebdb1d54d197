// Command weftc is a minimal driver over the compiler package: parse,
// resolve, translate, and check a root package, printing diagnostics and
// optionally a backend's output. It is deliberately small — it reads the
// manifest only through config.Parse, and the watcher, self-update, and
// language-server surfaces named in §1 as external collaborators are not
// reimplemented here.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"weftlang.dev/weft/config"
)

func main() {
	os.Exit(Main())
}

// Main runs weftc and returns the process exit code, rather than calling
// os.Exit itself, so the same entrypoint doubles as a testscript command in
// script_test.go (grounded on cue's cmd/cue/cmd.Main, used the same way by
// its own testscript-driven TestMain).
func Main() int {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "weftc",
		Short:         "weftc compiles weft IDL packages",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newCheckCmd())
	return cmd
}

func loadManifest(path string) (*config.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return config.Parse(data)
}
