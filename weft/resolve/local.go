package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"weftlang.dev/weft/version"
)

// LocalProvider resolves packages from a directory tree on disk. A package
// "example.common" at version "1.0.0" lives at
// <root>/example/common/1.0.0/*.weft (dots in the package path become path
// separators, mirroring the convention used for Go's own module cache
// layout).
type LocalProvider struct {
	root string
}

// NewLocalProvider creates a LocalProvider rooted at dir.
func NewLocalProvider(dir string) *LocalProvider {
	return &LocalProvider{root: dir}
}

func (l *LocalProvider) packageDir(path string) string {
	return filepath.Join(l.root, filepath.FromSlash(strings.ReplaceAll(path, ".", "/")))
}

func (l *LocalProvider) Versions(ctx context.Context, path string) ([]version.Version, error) {
	entries, err := os.ReadDir(l.packageDir(path))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var vs []version.Version
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		v, err := version.Parse(e.Name())
		if err != nil {
			continue // not a version directory; skip silently
		}
		vs = append(vs, v)
	}
	sort.Slice(vs, func(i, j int) bool { return vs[i].Compare(vs[j]) < 0 })
	return vs, nil
}

func (l *LocalProvider) Sources(ctx context.Context, path string, v version.Version) ([]Source, error) {
	dir := filepath.Join(l.packageDir(path), v.String())
	matches, err := filepath.Glob(filepath.Join(dir, "*.weft"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no .weft sources in %s", dir)
	}
	sort.Strings(matches)
	var out []Source
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, err
		}
		out = append(out, Source{LogicalPath: filepath.Base(m), Content: data})
	}
	return out, nil
}
