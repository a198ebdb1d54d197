package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"weftlang.dev/weft/ast"
	"weftlang.dev/weft/backend"
	"weftlang.dev/weft/config"
	"weftlang.dev/weft/parser"
	"weftlang.dev/weft/resolve"
	"weftlang.dev/weft/translate"
)

func newBuildCmd() *cobra.Command {
	var manifestPath, out string

	cmd := &cobra.Command{
		Use:   "build <root-package-path>",
		Short: "compile a root package and run the debug backend over it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), manifestPath, args[0], out)
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "weft.yaml", "path to the manifest file")
	cmd.Flags().StringVar(&out, "out", ".", "output directory for backend files")
	return cmd
}

func runBuild(ctx context.Context, manifestPath, rootPath, out string) error {
	m, err := loadManifest(manifestPath)
	if err != nil {
		return err
	}

	root := m.FindRoot(rootPath)
	if root == nil {
		return fmt.Errorf("root package %q not declared in %s", rootPath, manifestPath)
	}

	resolver := newResolver(m)

	asts, err := loadWeftFiles(root.Dir)
	if err != nil {
		return err
	}

	t := translate.New(translate.Config{Resolver: resolver})
	pkg, _, diags := t.Translate(ctx, translate.RootPackage{
		Path: root.Path, Version: "0.0.0", Files: asts,
	})
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.Error())
	}
	if pkg == nil {
		return fmt.Errorf("compilation failed")
	}

	b := backend.DebugBackend{}
	outFiles, err := backend.Run(b, pkg, m.Backends[b.Name()])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}
	for _, f := range outFiles {
		if err := os.WriteFile(filepath.Join(out, f.Path), f.Content, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// loadWeftFiles reads and parses every *.weft file directly in dir,
// returning a parse error the first time any file fails to parse cleanly.
func loadWeftFiles(dir string) ([]*ast.File, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.weft"))
	if err != nil {
		return nil, err
	}
	var out []*ast.File
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, err
		}
		f, perrs := parser.ParseFile(m, data)
		for _, e := range perrs {
			fmt.Fprintln(os.Stderr, e.Error())
		}
		if perrs.HasErrors() {
			return nil, fmt.Errorf("parse errors in %s", m)
		}
		out = append(out, f)
	}
	return out, nil
}

func newResolver(m *config.Manifest) *resolve.Resolver {
	var providers []resolve.Provider
	for _, p := range m.Providers {
		switch p.Kind {
		case "local":
			providers = append(providers, resolve.NewLocalProvider(p.Root))
		case "remote":
			providers = append(providers, resolve.NewRemoteProvider(p.URL))
		}
	}
	return resolve.New(providers...)
}
