package plugin

import (
	"fmt"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/orbitkernel/physics/internal/core/ecs"
	"github.com/orbitkernel/physics/internal/core/force"
)

// ScriptedProvider interprets an externally supplied Go source file as a
// force.Provider at load time, per spec.md §4.6's requirement that plugins
// be loadable without recompiling the host binary. Grounded on the domain
// stack's traefik/yaegi usage for exactly this purpose: embedding a Go
// interpreter so user-supplied .go sources run without a build step.
//
// The interpreted source must define a package-level function with the
// signature:
//
//	func ComputeForce(world *ecs.World, e ecs.Entity) (ecs.Vector3, bool)
//
// in a package named "plugin". Anything else the script defines is
// ignored.
type ScriptedProvider struct {
	name  string
	fn    func(world *ecs.World, e ecs.Entity) (ecs.Vector3, bool)
}

// LoadScriptedProvider interprets src (Go source text) and returns a
// force.Provider backed by its ComputeForce function.
func LoadScriptedProvider(name, src string) (force.Provider, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("plugin %s: loading stdlib symbols: %w", name, err)
	}
	if err := exposeCoreTypes(i); err != nil {
		return nil, fmt.Errorf("plugin %s: exposing core types: %w", name, err)
	}

	if _, err := i.Eval(src); err != nil {
		return nil, fmt.Errorf("plugin %s: interpreting source: %w", name, err)
	}

	v, err := i.Eval("plugin.ComputeForce")
	if err != nil {
		return nil, fmt.Errorf("plugin %s: resolving ComputeForce: %w", name, err)
	}
	fn, ok := v.Interface().(func(world *ecs.World, e ecs.Entity) (ecs.Vector3, bool))
	if !ok {
		return nil, fmt.Errorf("plugin %s: ComputeForce has an unexpected signature", name)
	}

	return &ScriptedProvider{name: name, fn: fn}, nil
}

func (s *ScriptedProvider) Name() string { return s.name }

func (s *ScriptedProvider) ComputeForce(world *ecs.World, e ecs.Entity) (ecs.Vector3, bool) {
	return s.fn(world, e)
}

// exposeCoreTypes registers this module's own ecs/force packages as yaegi
// symbols so interpreted plugin source can reference ecs.World, ecs.Entity,
// and ecs.Vector3 by name. The table (Symbols, in symbols.go) is a
// hand-maintained subset of what `yaegi extract` would generate, so it
// only covers the identifiers listed there.
func exposeCoreTypes(i *interp.Interpreter) error {
	return i.Use(Symbols)
}
