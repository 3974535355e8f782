// Package integrate implements the two numerical integrators from
// spec.md §4.4: symplectic Velocity Verlet and classical RK4, sharing a
// common contract over the position/velocity/acceleration/mass stores and
// the force registry. Grounded on the teacher's
// PhysicsComponent.UpdateVelocity/ApplyForce (internal/core/ecs/components/physics.go),
// generalized from a single semi-implicit Euler step into the two
// higher-order schemes the spec requires.
package integrate

import (
	"math"

	"github.com/orbitkernel/physics/internal/core/ecs"
	"github.com/orbitkernel/physics/internal/core/force"
)

// Integrator advances position and velocity over a configured timestep
// using the force model. Implementations must not sample forces with only
// some bodies advanced to an intermediate stage — see RK4's global staging
// requirement in spec.md §4.4.2.
type Integrator interface {
	Name() string
	Timestep() float64
	SetTimestep(dt float64)
	ValidateTimestep() *ecs.Error
	Integrate(world *ecs.World, entities []ecs.Entity, registry *force.Registry) error
	// ForceEvaluations reports the number of per-entity force accumulations
	// performed during the most recent Integrate call (2·N for Verlet,
	// 4·N for RK4), for the testable property in spec.md §8.
	ForceEvaluations() int
}

// validateTimestep implements the shared diagnostic contract both
// integrators expose: dt must be finite and strictly positive; very small
// or very large values are advisory, not fatal.
func validateTimestep(dt float64) *ecs.Error {
	switch {
	case math.IsNaN(dt) || math.IsInf(dt, 0):
		return ecs.New(ecs.CodeTimestepAdvisory, "timestep is not finite")
	case dt == 0:
		return ecs.New(ecs.CodeTimestepAdvisory, "timestep is zero")
	case dt < 0:
		return ecs.New(ecs.CodeTimestepAdvisory, "timestep is negative")
	case dt < 1e-9:
		return ecs.New(ecs.CodeTimestepAdvisory, "timestep is below the precision floor (1e-9)")
	case dt > 1.0:
		return ecs.New(ecs.CodeTimestepAdvisory, "timestep is above the stability ceiling (1.0)")
	default:
		return nil
	}
}
