package resolve

import (
	"context"
	"fmt"

	"weftlang.dev/weft/version"
)

// RemoteProvider resolves packages from a remote package index addressed
// by path and version, e.g. tarballs served over HTTP(S). The index
// protocol itself (discovery, authentication, tarball layout) is outside
// this spec's scope (§1): this type exists so that the resolver's provider
// polymorphism has a third, network-backed member alongside
// [LocalProvider] and [MemoryProvider], and so that [Manifest] has
// something concrete to configure, but Versions and Sources return a clear
// "not implemented" error (which [Resolver] wraps in a [ResolveError])
// rather than performing any I/O.
type RemoteProvider struct {
	IndexURL string
}

// NewRemoteProvider creates a RemoteProvider pointed at a package index
// base URL. No connection is ever made.
func NewRemoteProvider(indexURL string) *RemoteProvider {
	return &RemoteProvider{IndexURL: indexURL}
}

func (r *RemoteProvider) Versions(ctx context.Context, path string) ([]version.Version, error) {
	return nil, fmt.Errorf("remote package index %s: fetching %q: %w", r.IndexURL, path, errRemoteUnsupported)
}

func (r *RemoteProvider) Sources(ctx context.Context, path string, v version.Version) ([]Source, error) {
	return nil, fmt.Errorf("remote package index %s: fetching %s@%s: %w", r.IndexURL, path, v, errRemoteUnsupported)
}

var errRemoteUnsupported = fmt.Errorf("remote index fetching is not implemented by this frontend")
