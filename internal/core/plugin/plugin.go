// Package plugin implements the force-provider/system extension contract
// from spec.md §4.6: named, versioned plugins with declared dependencies,
// resolved into a deterministic load order via topological sort, with
// semver-style API compatibility checked at registration time. Grounded on
// the teacher's System/SystemManager dependency graph
// (internal/core/ecs/system_manager.go), generalized from ECS systems
// (Update/Priority) ordered by numeric priority into named plugins ordered
// by an explicit dependency DAG.
package plugin

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/orbitkernel/physics/internal/core/ecs"
)

// Version is a semver-shaped (major.minor.patch) version triple.
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ParseVersion parses a "major.minor.patch" string.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("plugin: malformed version %q, want major.minor.patch", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("plugin: malformed version %q: %w", s, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// CompatibleWith reports whether v satisfies a plugin's declared required
// API version: the major version must match exactly (breaking changes),
// and v's minor must be at least the required minor (new host capabilities
// are additive); patch is never load-bearing for compatibility.
func (v Version) CompatibleWith(required Version) bool {
	return v.Major == required.Major && v.Minor >= required.Minor
}

// ThreadPool is the minimal fan-out handle a plugin's Initialize/Update may
// use to schedule concurrent work against the host's worker pool, satisfied
// structurally by *errgroup.Group without plugin importing golang.org/x/sync
// itself.
type ThreadPool interface {
	Go(func() error)
	Wait() error
}

// Context is the immutable view of host state a plugin receives on
// Initialize and Update: the world to read or mutate components on, which
// integrator is driving the simulation and at what timestep, and an
// optional thread-pool handle for plugins that want to fan out their own
// work across the host's worker pool.
type Context struct {
	World          *ecs.World
	IntegratorName string
	Timestep       float64
	Pool           ThreadPool
}

// Plugin is an extension unit the host loads in dependency order: a force
// provider, a constraint, a scripted behavior, or a bundle of these. Name
// must be unique within a Registry; Dependencies names other plugins (by
// Name) that must be loaded first. Initialize is called once per plugin in
// dependency order after every plugin in a Registry has been registered;
// Update is called once per simulation step in the same order; Shutdown is
// called once per plugin in reverse dependency order during teardown.
type Plugin interface {
	Name() string
	Version() Version
	RequiredAPIVersion() Version
	Dependencies() []string
	Initialize(ctx Context) error
	Update(ctx Context) error
	Shutdown() error
}

// Registry holds the set of plugins registered against one host API
// version and resolves them into a load order.
type Registry struct {
	apiVersion Version
	plugins    map[string]Plugin
	// insertion records registration order, used to break ties in the
	// topological sort deterministically.
	insertion []string
}

// NewRegistry creates a Registry enforcing compatibility against
// hostAPIVersion.
func NewRegistry(hostAPIVersion Version) *Registry {
	return &Registry{
		apiVersion: hostAPIVersion,
		plugins:    make(map[string]Plugin),
	}
}

// Register adds p to the registry. It fails if p's name is already taken or
// if the host API version is incompatible with what p requires; it does
// not check dependencies yet — that happens at Resolve, once the full set
// of intended plugins is known.
func (r *Registry) Register(p Plugin) error {
	if _, exists := r.plugins[p.Name()]; exists {
		return ecs.New(ecs.CodeDuplicateName, "plugin already registered").WithDetails(p.Name())
	}
	if !r.apiVersion.CompatibleWith(p.RequiredAPIVersion()) {
		return ecs.New(ecs.CodeIncompatibleAPIVersion, "plugin requires an incompatible host API version").
			WithDetails(fmt.Sprintf("plugin=%s requires=%s host=%s", p.Name(), p.RequiredAPIVersion(), r.apiVersion))
	}
	r.plugins[p.Name()] = p
	r.insertion = append(r.insertion, p.Name())
	return nil
}

// DependencyGraph returns each registered plugin's declared dependency
// names, sorted, for diagnostics.
func (r *Registry) DependencyGraph() map[string][]string {
	out := make(map[string][]string, len(r.plugins))
	for name, p := range r.plugins {
		deps := append([]string(nil), p.Dependencies()...)
		sort.Strings(deps)
		out[name] = deps
	}
	return out
}

// Resolve returns every registered plugin in a dependency-respecting load
// order (a dependency always precedes its dependents), or an error if a
// dependency cannot be found or the graph contains a cycle.
func (r *Registry) Resolve() ([]Plugin, error) {
	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(r.plugins))
	order := make([]Plugin, 0, len(r.plugins))

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case visited:
			return nil
		case visiting:
			return ecs.New(ecs.CodeCircularDependency, "circular plugin dependency").
				WithDetails(strings.Join(append(path, name), " -> "))
		}
		p, ok := r.plugins[name]
		if !ok {
			return ecs.New(ecs.CodeUnresolvedDependency, "dependency not registered").WithDetails(name)
		}
		state[name] = visiting
		deps := append([]string(nil), p.Dependencies()...)
		sort.Strings(deps)
		for _, dep := range deps {
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		state[name] = visited
		order = append(order, p)
		return nil
	}

	for _, name := range r.insertion {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// GetByName returns the plugin registered under name, if any.
func (r *Registry) GetByName(name string) (Plugin, bool) {
	p, ok := r.plugins[name]
	return p, ok
}

// InitializeAll resolves the registered plugins and calls Initialize on
// each in dependency order (a plugin is initialized only after every
// plugin it depends on), per spec.md §4.6's lifecycle. It stops and
// returns the first error encountered, leaving later plugins
// uninitialized.
func (r *Registry) InitializeAll(ctx Context) error {
	order, err := r.Resolve()
	if err != nil {
		return err
	}
	for _, p := range order {
		if err := p.Initialize(ctx); err != nil {
			return fmt.Errorf("plugin %s: initialize: %w", p.Name(), err)
		}
	}
	return nil
}

// UpdateAll calls Update on every registered plugin in the same dependency
// order InitializeAll used, once per simulation step.
func (r *Registry) UpdateAll(ctx Context) error {
	order, err := r.Resolve()
	if err != nil {
		return err
	}
	for _, p := range order {
		if err := p.Update(ctx); err != nil {
			return fmt.Errorf("plugin %s: update: %w", p.Name(), err)
		}
	}
	return nil
}

// ShutdownAll calls Shutdown on every registered plugin in reverse
// dependency order, so a plugin is torn down before anything it depends
// on. It runs Shutdown on every plugin even after an error, returning the
// first one encountered.
func (r *Registry) ShutdownAll() error {
	order, err := r.Resolve()
	if err != nil {
		return err
	}
	var first error
	for i := len(order) - 1; i >= 0; i-- {
		if err := order[i].Shutdown(); err != nil && first == nil {
			first = fmt.Errorf("plugin %s: shutdown: %w", order[i].Name(), err)
		}
	}
	return first
}
