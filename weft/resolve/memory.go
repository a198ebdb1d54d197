package resolve

import (
	"context"

	"weftlang.dev/weft/version"
)

// MemoryPackage is one version of one package, as served by [MemoryProvider].
type MemoryPackage struct {
	Version version.Version
	Sources []Source
}

// MemoryProvider is an in-memory [Provider] used by tests and by embedding
// programs that already have package sources in memory rather than on
// disk or in a registry.
type MemoryProvider struct {
	packages map[string][]MemoryPackage
}

// NewMemoryProvider creates an empty MemoryProvider; use Add to populate it.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{packages: make(map[string][]MemoryPackage)}
}

// Add registers one version of a package.
func (m *MemoryProvider) Add(path string, v version.Version, sources ...Source) {
	m.packages[path] = append(m.packages[path], MemoryPackage{Version: v, Sources: sources})
}

func (m *MemoryProvider) Versions(ctx context.Context, path string) ([]version.Version, error) {
	var vs []version.Version
	for _, pkg := range m.packages[path] {
		vs = append(vs, pkg.Version)
	}
	return vs, nil
}

func (m *MemoryProvider) Sources(ctx context.Context, path string, v version.Version) ([]Source, error) {
	for _, pkg := range m.packages[path] {
		if pkg.Version.Compare(v) == 0 {
			return pkg.Sources, nil
		}
	}
	return nil, nil
}
