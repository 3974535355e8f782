// Package force implements the force accumulation pipeline from spec.md
// §4.3: pluggable force providers, a per-step registry that sums their
// contributions into a per-entity total, and the F=ma translation into
// acceleration. Grounded on the teacher's ApplyForce/ApplyGravity methods
// (internal/core/ecs/components/physics.go), generalized from a single
// hardcoded gravity+friction model into an open provider capability.
package force

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/orbitkernel/physics/internal/core/components"
	"github.com/orbitkernel/physics/internal/core/ecs"
)

// Provider is a capability: given an entity and a read-only view of the
// world, produce a force 3-vector or report absent. Providers must be pure
// with respect to entity data and safe for concurrent invocation across
// different entities — they must not mutate shared state.
type Provider interface {
	Name() string
	ComputeForce(world *ecs.World, e ecs.Entity) (force ecs.Vector3, present bool)
}

// ProviderFunc adapts a plain function to the Provider interface, the way a
// plugin-contributed or test-only provider is typically written.
type ProviderFunc struct {
	ProviderName string
	Fn           func(world *ecs.World, e ecs.Entity) (ecs.Vector3, bool)
}

func (f ProviderFunc) Name() string { return f.ProviderName }
func (f ProviderFunc) ComputeForce(world *ecs.World, e ecs.Entity) (ecs.Vector3, bool) {
	return f.Fn(world, e)
}

// Registry is the per-step container of registered providers and
// accumulated per-entity totals. It must be reconstructed (or fully
// cleared) every step: the two critical pitfalls in spec.md §9 are both
// about this registry accreting stale state across steps.
type Registry struct {
	mu        sync.Mutex
	providers []Provider
	totals    map[ecs.Entity]ecs.Vector3

	maxExpectedForce  float64
	maxForceMagnitude float64
	warnOnHighForces  bool
	clampForces       bool

	logger     zerolog.Logger
	collectors *ecs.Collectors
}

// NewRegistry creates an empty force registry configured from cfg.
func NewRegistry(cfg ecs.WorldConfig, logger zerolog.Logger) *Registry {
	return &Registry{
		totals:            make(map[ecs.Entity]ecs.Vector3),
		maxExpectedForce:  cfg.MaxExpectedForce,
		maxForceMagnitude: cfg.MaxForceMagnitude,
		warnOnHighForces:  cfg.WarnOnHighForces,
		clampForces:       cfg.ClampForces,
		logger:            logger,
	}
}

// WithCollectors attaches a Prometheus collector set for rejected/clamped
// force counters. Optional; nil collectors disable metric emission.
func (r *Registry) WithCollectors(c *ecs.Collectors) *Registry {
	r.collectors = c
	return r
}

// Register adds a provider for the current step. Registration is additive
// within a step by design — Reset must be called at the top of each step to
// avoid the force-multiplication pitfall from registering the same
// providers repeatedly across steps.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = append(r.providers, p)
}

// Reset clears both the provider list and the accumulated totals, the
// "rebuild from scratch" step the force stage performs before running any
// providers.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers = r.providers[:0]
	r.totals = make(map[ecs.Entity]ecs.Vector3)
}

// Providers returns the currently registered providers.
func (r *Registry) Providers() []Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// AccumulateForEntity zeros entity e's total and re-sums every registered
// provider's finite contribution into it. This is the explicit
// accumulate_for_entity pass spec.md §9 calls out as a separate step from
// registration — registering a provider does not by itself populate any
// total. Safe to call concurrently for distinct entities: each call only
// ever writes its own entity's map slot.
func (r *Registry) AccumulateForEntity(world *ecs.World, e ecs.Entity) {
	providers := r.Providers()

	total := ecs.Vector3{}
	for _, p := range providers {
		f, ok := p.ComputeForce(world, e)
		if !ok {
			continue
		}
		if !f.IsFinite() {
			r.logger.Warn().Str("provider", p.Name()).Str("entity", e.String()).
				Msg("rejected non-finite force contribution")
			if r.collectors != nil {
				r.collectors.ForceRejected.WithLabelValues(p.Name()).Inc()
			}
			continue
		}
		total = total.Add(f)
	}

	if mag := total.Length(); mag > r.maxExpectedForce {
		if r.warnOnHighForces {
			r.logger.Warn().Str("entity", e.String()).Float64("magnitude", mag).
				Msg("accumulated force exceeds max_expected_force")
		}
		if r.clampForces && mag > r.maxForceMagnitude && mag > 0 {
			total = total.Scale(r.maxForceMagnitude / mag)
			if r.collectors != nil {
				r.collectors.ForceClamped.WithLabelValues("total").Inc()
			}
		}
	}

	r.mu.Lock()
	r.totals[e] = total
	r.mu.Unlock()
}

// Total returns entity e's accumulated force, if accumulation has run for
// it this step.
func (r *Registry) Total(e ecs.Entity) (ecs.Vector3, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.totals[e]
	return t, ok
}

// ApplyF2A translates each entity's accumulated force into acceleration:
// a = F/m, skipping immovable bodies (mass == 0, acceleration left at
// zero) and skipping any entity missing force, mass, or an acceleration
// component to write into — all non-fatal per spec.md §4.3.
func (r *Registry) ApplyF2A(world *ecs.World, entities []ecs.Entity) {
	for _, e := range entities {
		f, ok := r.Total(e)
		if !ok {
			continue
		}
		mass, ok := ecs.GetComponent[components.Mass](world, ecs.ComponentTypeMass, e)
		if !ok {
			r.warnMissing(e, ecs.ComponentTypeMass)
			continue
		}
		if !ecs.HasComponent[components.Acceleration](world, ecs.ComponentTypeAcceleration, e) {
			r.warnMissing(e, ecs.ComponentTypeAcceleration)
			continue
		}

		var a ecs.Vector3
		if !mass.Immovable() {
			a = f.Scale(1.0 / mass.Value)
		}
		_ = ecs.AddComponent(world, ecs.ComponentTypeAcceleration, e, components.Acceleration{Value: a})
	}
}

func (r *Registry) warnMissing(e ecs.Entity, ct ecs.ComponentType) {
	r.logger.Warn().Str("entity", e.String()).Str("component", string(ct)).
		Msg("skipping entity missing component in F=ma translation")
}
