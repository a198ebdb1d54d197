// Package resolve implements the package resolver interface seen by the
// translator: given a required package path and a version range, it
// returns the highest version within range discoverable across a set of
// configured providers, together with that version's source files.
//
// A single compilation must pin each distinct (path, range) pair to one
// version so that independent `use` sites converge (§4.5); [PinCache]
// implements that memoization and is the only mutable state a compilation
// touches.
package resolve

import (
	"context"
	"fmt"
	"sync"

	"github.com/opencontainers/go-digest"

	"weftlang.dev/weft/version"
)

// Source is one source file belonging to a resolved package, tagged with
// its logical path (typically a filename relative to the package
// directory) so diagnostics can report a meaningful location.
type Source struct {
	LogicalPath string
	Content     []byte
}

// Digest returns a content-addressed identifier for the source's bytes.
func (s Source) Digest() digest.Digest {
	return digest.FromBytes(s.Content)
}

// Resolved is the result of a successful resolve: the version chosen and
// the full set of source files that make up that version of the package.
type Resolved struct {
	Version version.Version
	Sources []Source
}

// ResolveError reports why a (path, range) lookup failed: no version
// satisfied the range, no provider knew the path at all, or a configured
// provider itself failed.
type ResolveError struct {
	Path  string
	Range string
	Cause error
}

func (e *ResolveError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("resolve %s %q: %v", e.Path, e.Range, e.Cause)
	}
	return fmt.Sprintf("resolve %s %q: no matching version", e.Path, e.Range)
}

func (e *ResolveError) Unwrap() error { return e.Cause }

// Provider is one source of packages. The resolver polymorphism described
// in §4.5 ("local filesystem", "in-memory", "remote index") is modeled as
// implementations of this single interface; [Resolver] fans out to however
// many providers it is configured with and takes the highest match across
// all of them.
type Provider interface {
	// Versions returns every version of path that this provider knows
	// about, or an empty slice (not an error) if it has never heard of
	// path.
	Versions(ctx context.Context, path string) ([]version.Version, error)
	// Sources returns the source files for one specific, already-chosen
	// version of path.
	Sources(ctx context.Context, path string, v version.Version) ([]Source, error)
}

// Resolver resolves (path, range) pairs against a list of providers,
// consulted in order, and pins each distinct pair to a single version for
// the lifetime of the Resolver value.
type Resolver struct {
	providers []Provider

	mu   sync.Mutex
	pins map[pinKey]version.Version
}

type pinKey struct {
	path  string
	rng   string
}

// New creates a Resolver backed by providers, consulted in the given order.
// Every provider is asked for its versions of a path; the highest matching
// version across all of them wins (the earlier provider on a tie), and its
// sources come from the provider that reported it.
func New(providers ...Provider) *Resolver {
	return &Resolver{providers: providers, pins: make(map[pinKey]version.Version)}
}

// Resolve returns the highest version of path within rng, reusing a
// previously pinned answer for the identical (path, rng) pair if one
// exists. It implements the resolver interface consumed by the translator
// (§4.5, §6).
func (r *Resolver) Resolve(ctx context.Context, path string, rng version.Range) (Resolved, error) {
	key := pinKey{path: path, rng: rng.String()}

	r.mu.Lock()
	if v, ok := r.pins[key]; ok {
		r.mu.Unlock()
		return r.fetchPinned(ctx, path, v, rng)
	}
	r.mu.Unlock()

	var allErrs []error
	var best version.Version
	var owner Provider
	for _, p := range r.providers {
		vs, err := p.Versions(ctx, path)
		if err != nil {
			allErrs = append(allErrs, err)
			continue
		}
		if len(vs) == 0 {
			continue
		}
		v, ok := rng.HighestMatching(vs)
		if ok && (owner == nil || v.Compare(best) > 0) {
			best, owner = v, p
		}
	}
	if owner == nil {
		return Resolved{}, &ResolveError{Path: path, Range: rng.String(), Cause: firstOrNil(allErrs)}
	}

	r.mu.Lock()
	r.pins[key] = best
	r.mu.Unlock()

	srcs, err := owner.Sources(ctx, path, best)
	if err != nil {
		return Resolved{}, &ResolveError{Path: path, Range: rng.String(), Cause: err}
	}
	return Resolved{Version: best, Sources: srcs}, nil
}

func (r *Resolver) fetchPinned(ctx context.Context, path string, v version.Version, rng version.Range) (Resolved, error) {
	for _, p := range r.providers {
		vs, err := p.Versions(ctx, path)
		if err != nil || len(vs) == 0 {
			continue
		}
		for _, cand := range vs {
			if cand.Compare(v) == 0 {
				srcs, err := p.Sources(ctx, path, v)
				if err != nil {
					return Resolved{}, &ResolveError{Path: path, Range: rng.String(), Cause: err}
				}
				return Resolved{Version: v, Sources: srcs}, nil
			}
		}
	}
	return Resolved{}, &ResolveError{Path: path, Range: rng.String(), Cause: fmt.Errorf("pinned version %s no longer available", v)}
}

func firstOrNil(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errs[0]
}
