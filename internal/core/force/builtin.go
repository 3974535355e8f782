package force

import (
	"math"

	"github.com/orbitkernel/physics/internal/core/components"
	"github.com/orbitkernel/physics/internal/core/ecs"
)

// Constant is a reference provider applying the same force vector to every
// entity bearing a Mass component, e.g. uniform gravity. Grounded on the
// teacher's PhysicsComponent.ApplyGravity (internal/core/ecs/components/physics.go),
// generalized from a hardcoded downward pull to an arbitrary configured
// vector.
type Constant struct {
	Vector ecs.Vector3
}

func (c Constant) Name() string { return "constant-force" }

func (c Constant) ComputeForce(world *ecs.World, e ecs.Entity) (ecs.Vector3, bool) {
	mass, ok := ecs.GetComponent[components.Mass](world, ecs.ComponentTypeMass, e)
	if !ok || mass.Immovable() {
		return ecs.Vector3{}, false
	}
	return c.Vector.Scale(mass.Value), true
}

// NewtonianGravity is a reference N-body gravity provider: every other
// massive body in the world pulls the queried entity toward it following
// F = G*m1*m2/(r²+ε²), with softening ε avoiding the r→0 singularity.
// This corresponds to the "softening on a provided gravity plugin" option
// spec.md §6 documents; it is a reference provider over the force.Provider
// capability, not part of the scheduler's mandatory pipeline.
type NewtonianGravity struct {
	G         float64
	Softening float64

	// Bodies lists every entity participating in mutual gravitation. The
	// provider does not discover bodies itself (spec.md explicitly excludes
	// spatial acceleration structures and leaves source discovery to the
	// caller).
	Bodies []ecs.Entity
}

func (g NewtonianGravity) Name() string { return "newtonian-gravity" }

func (g NewtonianGravity) ComputeForce(world *ecs.World, e ecs.Entity) (ecs.Vector3, bool) {
	selfPos, ok := ecs.GetComponent[components.Position](world, ecs.ComponentTypePosition, e)
	if !ok {
		return ecs.Vector3{}, false
	}
	selfMass, ok := ecs.GetComponent[components.Mass](world, ecs.ComponentTypeMass, e)
	if !ok || selfMass.Immovable() {
		return ecs.Vector3{}, false
	}

	var total ecs.Vector3
	found := false
	for _, other := range g.Bodies {
		if other == e {
			continue
		}
		otherPos, ok := ecs.GetComponent[components.Position](world, ecs.ComponentTypePosition, other)
		if !ok {
			continue
		}
		otherMass, ok := ecs.GetComponent[components.Mass](world, ecs.ComponentTypeMass, other)
		if !ok {
			continue
		}

		delta := otherPos.Value.Sub(selfPos.Value)
		r2 := delta.Dot(delta) + g.Softening*g.Softening
		if r2 == 0 {
			continue
		}
		r := math.Sqrt(r2)
		magnitude := g.G * selfMass.Value * otherMass.Value / r2
		total = total.Add(delta.Scale(magnitude / r))
		found = true
	}
	return total, found
}
