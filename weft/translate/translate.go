// Package translate implements the translator described in §4.2: it
// resolves `use` imports against a resolver, links AST fragments across
// files of a package, expands nested declarations into first-class IR
// entries, assigns canonical names and field numbers, and validates the
// invariants in §3.
//
// The translator is a pure function of (roots, resolver responses): given
// identical resolver answers it produces byte-identical IR and diagnostics,
// ordered by source position (§5). The only suspension points are calls
// into the resolver; translation itself never blocks.
package translate

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"weftlang.dev/weft/ast"
	"weftlang.dev/weft/check"
	"weftlang.dev/weft/errors"
	"weftlang.dev/weft/ir"
	"weftlang.dev/weft/parser"
	"weftlang.dev/weft/pkgpath"
	"weftlang.dev/weft/resolve"
	"weftlang.dev/weft/version"
)

// Config configures one compilation.
type Config struct {
	Resolver *resolve.Resolver
	Logger   *slog.Logger
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// RootPackage is the root package's identity and already-parsed sources,
// the translator's primary input alongside a [Config].
type RootPackage struct {
	Path    string
	Version string
	Files   []*ast.File
}

// Translator lowers one or more root packages, sharing a single [Config]
// (and therefore a single resolver pin cache and IR arena) across all of
// them, matching the "single compilation" unit described in §4.5.
type Translator struct {
	cfg      Config
	runID    string
	uni      *ir.Universe
	errs     errors.List
	inFlight map[string]bool // pkg key currently being lowered, for cycle detection
}

// New creates a Translator backed by cfg. Each Translator is tagged with a
// random run ID, included in every log line it emits, so that log output
// from concurrently running compilations (e.g. independent packages built
// in parallel by an external driver, §5) can be told apart.
func New(cfg Config) *Translator {
	return &Translator{cfg: cfg, runID: uuid.NewString(), uni: ir.NewUniverse(), inFlight: map[string]bool{}}
}

// Translate lowers root and every package it transitively imports. It
// returns the root's lowered Package, the shared Universe (arena) of every
// package lowered so far across this Translator's lifetime, and the
// accumulated diagnostics. If any diagnostic has Error severity, the
// returned Package is nil: per §4.2/§7, the translator refuses to emit IR
// in the presence of errors, though it still continues lowering as much as
// it can first so that callers see every error in one pass.
func (t *Translator) Translate(ctx context.Context, root RootPackage) (*ir.Package, *ir.Universe, errors.List) {
	pkg := t.lowerPackage(ctx, root.Path, root.Version, root.Files, nil)
	t.errs.Sort()
	if t.errs.HasErrors() {
		return nil, t.uni, t.errs
	}
	return pkg, t.uni, t.errs
}

// lowerPackage lowers one package's files into an ir.Package, recursively
// lowering any package it imports. use is the `use` statement that caused
// this package to be loaded, for cycle diagnostics; it is nil for the root
// package.
func (t *Translator) lowerPackage(ctx context.Context, path, ver string, files []*ast.File, use *ast.UseDecl) *ir.Package {
	key := path + "@" + ver
	if existing, ok := t.uni.Packages[key]; ok {
		return existing
	}
	if t.inFlight[key] {
		if use != nil {
			t.errs.Add(errors.Newf(use.Pos(), errors.CodeResolve, "cyclic use of package %s after version pinning", path))
		}
		return nil
	}
	t.inFlight[key] = true
	defer delete(t.inFlight, key)

	pkg := &ir.Package{Path: path, Version: ver, Decls: map[string]*ir.Decl{}}

	// Step 1: preload. Resolve every `use` alias in every file, recursing
	// into the imported package. Aliases must be unique within their
	// importing file (§3 "Import").
	aliases := map[string]resolvedImport{}
	for _, f := range files {
		seen := map[string]*ast.UseDecl{}
		for _, u := range f.Uses {
			if prior, dup := seen[u.Alias.Name]; dup {
				t.errs.Add(errors.Newf(u.Pos(), errors.CodeName, "alias %q already used in this file", u.Alias.Name).
					WithSecondary(prior.Pos(), "previous use"))
				continue
			}
			seen[u.Alias.Name] = u

			if u.Path == path {
				t.errs.Add(errors.Newf(u.Pos(), errors.CodeResolve, "package %s cannot import itself", path))
				continue
			}

			ri, ok := t.resolveImport(ctx, u)
			if !ok {
				continue
			}
			aliases[u.Alias.Name] = ri
			pkg.Imports = append(pkg.Imports, ir.Import{
				Alias: u.Alias.Name, Path: u.Path, Range: unquoteLit(u.Range), PinnedVersion: ri.version,
			})
		}
	}

	// Step 2+4: build local symbol tables once across every file of the
	// package (so declarations in one file can reference declarations in
	// another), flattening nested declarations into first-class entries
	// keyed by a dotted local path, in declaration order.
	root := newScope(nil)
	var entries []*scopeEntry
	for _, f := range files {
		for _, d := range f.Decls {
			if _, ok := d.(*ast.BadDecl); ok {
				continue
			}
			name, _ := declName(d)
			if prior, dup := root.lookupLocal(name); dup {
				t.errs.Add(errors.Newf(d.Pos(), errors.CodeName, "declaration %q already defined in this package", name).
					WithSecondary(prior.node.Pos(), "previous declaration"))
				continue
			}
			entry := t.flatten(d, name, name, root, &entries)
			root.names[name] = entry
		}
	}

	// Step 3+5: resolve type expressions, lower payloads, and assign field
	// indices, walking entries in declaration order for determinism.
	low := &lowerer{t: t, pkg: pkg, pkgRoot: root, aliases: aliases}
	for _, e := range entries {
		d := low.lowerDecl(e)
		pkg.Decls[d.CanonicalName] = d
		pkg.Order = append(pkg.Order, d.CanonicalName)
	}

	// Step 6: validate invariants; diagnostics, not panics.
	t.errs.AddAll(check.ValidateInvariants(pkg))
	t.errs.AddAll(check.ValidateAttributes(pkg))

	t.uni.Add(pkg)
	return pkg
}

type resolvedImport struct {
	path    string
	version string
	pkg     *ir.Package
}

func (t *Translator) resolveImport(ctx context.Context, u *ast.UseDecl) (resolvedImport, bool) {
	rng, err := version.ParseRange(unquoteLit(u.Range))
	if err != nil {
		t.errs.Add(errors.Newf(u.Range.Pos(), errors.CodeResolve, "invalid version range: %v", err))
		return resolvedImport{}, false
	}
	if t.cfg.Resolver == nil {
		t.errs.Add(errors.Newf(u.Pos(), errors.CodeResolve, "no resolver configured for package %s", u.Path))
		return resolvedImport{}, false
	}
	res, err := t.cfg.Resolver.Resolve(ctx, u.Path, rng)
	if err != nil {
		t.errs.Add(errors.Newf(u.Pos(), errors.CodeResolve, "%v", err))
		return resolvedImport{}, false
	}
	t.cfg.logger().Debug("resolved import", "run", t.runID, "path", u.Path, "range", rng.String(), "version", res.Version.String())

	var impFiles []*ast.File
	for _, src := range res.Sources {
		f, perrs := parser.ParseFile(src.LogicalPath, src.Content)
		for _, e := range perrs {
			t.errs.Add(e)
		}
		impFiles = append(impFiles, f)
	}
	impPkg := t.lowerPackage(ctx, u.Path, res.Version.String(), impFiles, u)
	if impPkg == nil {
		return resolvedImport{}, false
	}
	return resolvedImport{path: u.Path, version: res.Version.String(), pkg: impPkg}, true
}

func unquoteLit(lit *ast.BasicLit) string {
	s, err := strconv.Unquote(lit.Value)
	if err != nil {
		return lit.Value
	}
	return s
}

// flatten recursively registers d and its nested declarations into scope
// frames, appending each to entries in declaration order (§4.2 step 4:
// nested declarations keep their outer names as a dotted prefix in their
// canonical name but become first-class IR entries).
func (t *Translator) flatten(d ast.Decl, name, localPath string, parentScope *scope, entries *[]*scopeEntry) *scopeEntry {
	entry := &scopeEntry{node: d, localPath: localPath}
	entry.children = newScope(parentScope)
	*entries = append(*entries, entry)

	_, nested := declName(d)
	for _, nd := range nested {
		if _, ok := nd.(*ast.BadDecl); ok {
			continue
		}
		nname, _ := declName(nd)
		if prior, dup := entry.children.lookupLocal(nname); dup {
			t.errs.Add(errors.Newf(nd.Pos(), errors.CodeName, "declaration %q already defined in %s", nname, localPath).
				WithSecondary(prior.node.Pos(), "previous declaration"))
			continue
		}
		child := t.flatten(nd, nname, localPath+"."+nname, entry.children, entries)
		entry.children.names[nname] = child
	}
	return entry
}

// canonicalNameFor builds a canonical name from a package key ("path@version",
// see ir.Package.Key) and a dotted local declaration path. Versioning the
// canonical name, rather than using the bare package path, keeps names
// unique across the whole Universe even when two different versions of the
// same package path are loaded into one compilation (§4.5).
func canonicalNameFor(pkgKey, localPath string) string {
	return pkgpath.Join(pkgKey, localPath)
}
