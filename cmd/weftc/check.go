package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"weftlang.dev/weft/check"
	"weftlang.dev/weft/translate"
)

func newCheckCmd() *cobra.Command {
	var manifestPath, against string

	cmd := &cobra.Command{
		Use:   "check <root-package-path>",
		Short: "validate a root package, optionally comparing it for compatibility against another version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), manifestPath, args[0], against)
		},
	}
	cmd.Flags().StringVar(&manifestPath, "manifest", "weft.yaml", "path to the manifest file")
	cmd.Flags().StringVar(&against, "against", "", "directory of an older version of the same package to compare against")
	return cmd
}

func runCheck(ctx context.Context, manifestPath, rootPath, against string) error {
	m, err := loadManifest(manifestPath)
	if err != nil {
		return err
	}
	root := m.FindRoot(rootPath)
	if root == nil {
		return fmt.Errorf("root package %q not declared in %s", rootPath, manifestPath)
	}

	resolver := newResolver(m)
	newFiles, err := loadWeftFiles(root.Dir)
	if err != nil {
		return err
	}
	newPkg, _, diags := translate.New(translate.Config{Resolver: resolver}).
		Translate(ctx, translate.RootPackage{Path: root.Path, Version: "0.0.0", Files: newFiles})
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.Error())
	}
	if newPkg == nil {
		return fmt.Errorf("compilation failed")
	}

	if against == "" {
		return nil
	}

	oldFiles, err := loadWeftFiles(against)
	if err != nil {
		return err
	}
	oldPkg, _, oldDiags := translate.New(translate.Config{Resolver: resolver}).
		Translate(ctx, translate.RootPackage{Path: root.Path, Version: "0.0.0-old", Files: oldFiles})
	for _, d := range oldDiags {
		fmt.Fprintln(os.Stderr, d.Error())
	}
	if oldPkg == nil {
		return fmt.Errorf("compilation of --against package failed")
	}

	findings := check.Compare(oldPkg, newPkg)
	breaking := false
	for _, f := range findings {
		fmt.Printf("%s\t%s\t%s\n", f.Level, f.Subject, f.Message)
		if f.Level == check.Breaking {
			breaking = true
		}
	}
	if breaking {
		return fmt.Errorf("breaking changes found")
	}
	return nil
}
