package plugin

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/orbitkernel/physics/internal/core/force"
)

// Manifest is the on-disk description of a plugin, parsed from a
// plugin.yaml sitting alongside a scripted provider (see script.go).
// Grounded on the domain stack's yaml.v3 usage (totodo713-vamplite's own
// config loading uses the same library for its world settings file).
type Manifest struct {
	Name                string   `yaml:"name"`
	Version             string   `yaml:"version"`
	RequiredAPIVersion  string   `yaml:"required_api_version"`
	Dependencies        []string `yaml:"dependencies"`
	EntryPoint          string   `yaml:"entry_point"`
}

// ParseManifest decodes a plugin.yaml document.
func ParseManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("plugin: parsing manifest: %w", err)
	}
	return m, nil
}

// manifestPlugin adapts a parsed Manifest to the Plugin interface for
// registry bookkeeping. Initialize is where the actual force-provider
// behavior for a scripted plugin comes alive: it reads EntryPoint relative
// to dir and hands its source to script.go's yaegi interpreter, stashing
// the resulting force.Provider for the host to pick up via Provider().
type manifestPlugin struct {
	manifest Manifest
	version  Version
	required Version
	dir      string

	provider force.Provider
}

// NewManifestPlugin validates and wraps a Manifest as a Plugin. dir is the
// directory the manifest file was read from, used to resolve a relative
// EntryPoint at Initialize time.
func NewManifestPlugin(dir string, m Manifest) (Plugin, error) {
	v, err := ParseVersion(m.Version)
	if err != nil {
		return nil, fmt.Errorf("plugin %q: %w", m.Name, err)
	}
	req, err := ParseVersion(m.RequiredAPIVersion)
	if err != nil {
		return nil, fmt.Errorf("plugin %q: %w", m.Name, err)
	}
	return &manifestPlugin{manifest: m, version: v, required: req, dir: dir}, nil
}

func (p *manifestPlugin) Name() string               { return p.manifest.Name }
func (p *manifestPlugin) Version() Version            { return p.version }
func (p *manifestPlugin) RequiredAPIVersion() Version { return p.required }
func (p *manifestPlugin) Dependencies() []string      { return p.manifest.Dependencies }

// EntryPoint returns the path (relative to the manifest's directory) of the
// Go source file Initialize interprets for this plugin.
func (p *manifestPlugin) EntryPoint() string { return p.manifest.EntryPoint }

// Initialize interprets the manifest's EntryPoint, if any, as a scripted
// force provider and keeps the result available through Provider. A
// manifest with no EntryPoint is a dependency-only plugin and initializes
// as a no-op.
func (p *manifestPlugin) Initialize(ctx Context) error {
	if p.manifest.EntryPoint == "" {
		return nil
	}
	src, err := os.ReadFile(filepath.Join(p.dir, p.manifest.EntryPoint))
	if err != nil {
		return fmt.Errorf("plugin %q: reading entry point: %w", p.manifest.Name, err)
	}
	provider, err := LoadScriptedProvider(p.manifest.Name, string(src))
	if err != nil {
		return fmt.Errorf("plugin %q: loading scripted provider: %w", p.manifest.Name, err)
	}
	p.provider = provider
	return nil
}

// Update is a no-op for a manifest-described plugin: its behavior runs
// through the force.Provider the scheduler calls every step, not through a
// per-step plugin hook.
func (p *manifestPlugin) Update(Context) error { return nil }

// Shutdown is a no-op for a manifest-described plugin: the interpreted
// provider holds no resources that outlive the process.
func (p *manifestPlugin) Shutdown() error { return nil }

// Provider returns the force.Provider loaded by Initialize, if the
// manifest declared an EntryPoint.
func (p *manifestPlugin) Provider() (force.Provider, bool) {
	return p.provider, p.provider != nil
}
