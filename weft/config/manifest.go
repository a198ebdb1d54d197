// Package config defines the typed manifest configuration record the core
// accepts from whatever external loader discovers and parses it (§6,
// "Manifest"): root packages to compile, provider configuration for the
// resolver, and per-target backend options. Reading the manifest file
// itself, watching it for changes, and the CLI surface around it are all
// external-collaborator concerns (§1) this package deliberately stays
// agnostic to; it only defines the shape and a YAML loader, grounded the
// way cue's mod/modfile package loads cue.mod/module.cue.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Manifest is the core's typed view of a project's configuration.
type Manifest struct {
	// Roots lists the root packages to compile, by dotted path and the
	// directory holding their source files. Dir is kept as written; Parse
	// does not rebase a relative Dir onto the manifest's location.
	Roots []RootConfig `yaml:"roots"`
	// Providers configures the resolver's provider chain, consulted in
	// the order listed (§4.5).
	Providers []ProviderConfig `yaml:"providers"`
	// Backends maps a backend name (e.g. "go", "typescript") to its
	// options, passed through verbatim to that backend's Emit call.
	Backends map[string]map[string]string `yaml:"backends"`
}

// RootConfig names one root package and where to load its sources from.
type RootConfig struct {
	Path string `yaml:"path"`
	Dir  string `yaml:"dir"`
}

// ProviderConfig configures one resolver provider. Kind selects which
// [resolve.Provider] implementation to construct; the remaining fields are
// interpreted according to Kind.
type ProviderConfig struct {
	Kind string `yaml:"kind"` // "local" or "remote"
	Root string `yaml:"root,omitempty"`     // for "local"
	URL  string `yaml:"url,omitempty"`      // for "remote"
}

// Parse decodes a manifest document from YAML bytes.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// FindRoot returns the RootConfig for path, or nil if path is not declared
// in this manifest.
func (m *Manifest) FindRoot(path string) *RootConfig {
	for i := range m.Roots {
		if m.Roots[i].Path == path {
			return &m.Roots[i]
		}
	}
	return nil
}

func (m *Manifest) validate() error {
	if len(m.Roots) == 0 {
		return fmt.Errorf("manifest: at least one root package is required")
	}
	seen := map[string]bool{}
	for _, r := range m.Roots {
		if r.Path == "" {
			return fmt.Errorf("manifest: root package missing path")
		}
		if seen[r.Path] {
			return fmt.Errorf("manifest: duplicate root package %q", r.Path)
		}
		seen[r.Path] = true
	}
	for _, p := range m.Providers {
		switch p.Kind {
		case "local":
			if p.Root == "" {
				return fmt.Errorf("manifest: local provider missing root")
			}
		case "remote":
			if p.URL == "" {
				return fmt.Errorf("manifest: remote provider missing url")
			}
		default:
			return fmt.Errorf("manifest: unknown provider kind %q", p.Kind)
		}
	}
	return nil
}
