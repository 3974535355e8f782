package integrate

import (
	"github.com/orbitkernel/physics/internal/core/components"
	"github.com/orbitkernel/physics/internal/core/ecs"
	"github.com/orbitkernel/physics/internal/core/ecs/storage"
	"github.com/orbitkernel/physics/internal/core/force"
	"github.com/orbitkernel/physics/internal/core/simd"
)

// Verlet is the symplectic Velocity Verlet scheme from spec.md §4.4.1: two
// force evaluations per step, time-symmetric and long-run energy stable,
// the default integrator for orbital and oscillatory scenarios.
type Verlet struct {
	dt    float64
	evals int
}

// NewVerlet constructs a Verlet integrator at the given timestep.
func NewVerlet(dt float64) *Verlet {
	return &Verlet{dt: dt}
}

func (v *Verlet) Name() string             { return "verlet" }
func (v *Verlet) Timestep() float64        { return v.dt }
func (v *Verlet) SetTimestep(dt float64)   { v.dt = dt }
func (v *Verlet) ValidateTimestep() *ecs.Error { return validateTimestep(v.dt) }
func (v *Verlet) ForceEvaluations() int    { return v.evals }

// Integrate advances every entity in entities by one step of dt:
//
//	a0 ← accumulate forces at the current state, F=ma
//	p' ← p + v·dt + ½·a0·dt²
//	a1 ← accumulate forces again at p', F=ma
//	v' ← v + ½·(a0+a1)·dt
//
// Entities missing position, velocity, acceleration, or mass are skipped
// without a warning; they are never fatal to the rest of the step.
func (v *Verlet) Integrate(world *ecs.World, entities []ecs.Entity, registry *force.Registry) error {
	dt := v.dt
	v.evals = 0

	participating := make([]ecs.Entity, 0, len(entities))
	for _, e := range entities {
		if !hasKinematicState(world, e) {
			continue
		}
		participating = append(participating, e)
	}

	for _, e := range participating {
		registry.AccumulateForEntity(world, e)
	}
	registry.ApplyF2A(world, participating)
	v.evals += len(participating)

	// Velocity/Acceleration may be SoA-backed (cmd/simulate's "soa" scenario
	// layout registers them that way); Position and Mass never are, since
	// force providers need per-entity reads of both. Store.Get always
	// reports absent for a SoA store, so every per-entity read below must
	// branch through the bulk field arrays instead when that layout is in
	// play — a0 and v0 are captured as copies before ApplyF2A's second call
	// overwrites the acceleration store's backing arrays in place.
	accelSoA, accelBulk := soaAcceleration(world, participating)
	velSoA, velBulk := soaVelocity(world, participating)

	var a0x, a0y, a0z []float64
	if accelBulk {
		ax, ay, az := accelSoA.FieldArrays()
		a0x = append([]float64(nil), ax...)
		a0y = append([]float64(nil), ay...)
		a0z = append([]float64(nil), az...)
	}
	var v0x, v0y, v0z []float64
	if velBulk {
		vx, vy, vz := velSoA.FieldArrays()
		v0x = append([]float64(nil), vx...)
		v0y = append([]float64(nil), vy...)
		v0z = append([]float64(nil), vz...)
	}

	a0 := make(map[ecs.Entity]ecs.Vector3, len(participating))
	for i, e := range participating {
		accelVal := ecs.Vector3{}
		if accelBulk {
			accelVal = ecs.Vector3{X: a0x[i], Y: a0y[i], Z: a0z[i]}
		} else {
			accel, _ := ecs.GetComponent[components.Acceleration](world, ecs.ComponentTypeAcceleration, e)
			accelVal = accel.Value
		}
		a0[e] = accelVal

		pos, _ := ecs.GetComponent[components.Position](world, ecs.ComponentTypePosition, e)
		velVal := ecs.Vector3{}
		if velBulk {
			velVal = ecs.Vector3{X: v0x[i], Y: v0y[i], Z: v0z[i]}
		} else {
			vel, _ := ecs.GetComponent[components.Velocity](world, ecs.ComponentTypeVelocity, e)
			velVal = vel.Value
		}

		newPos := pos.Value.Add(velVal.Scale(dt)).Add(accelVal.Scale(0.5 * dt * dt))
		if err := ecs.AddComponent(world, ecs.ComponentTypePosition, e, components.Position{Value: newPos}); err != nil {
			return err
		}
	}

	for _, e := range participating {
		registry.AccumulateForEntity(world, e)
	}
	registry.ApplyF2A(world, participating)
	v.evals += len(participating)

	if velBulk && accelBulk {
		vx, vy, vz := velSoA.FieldArrays()
		a1x, a1y, a1z := accelSoA.FieldArrays()
		simd.UpdateVelocity(vx, vy, vz, a0x, a0y, a0z, 0.5*dt)
		simd.UpdateVelocity(vx, vy, vz, a1x, a1y, a1z, 0.5*dt)
		return nil
	}

	var a1x, a1y, a1z []float64
	if accelBulk {
		a1x, a1y, a1z = accelSoA.FieldArrays()
	}
	for i, e := range participating {
		a1Val := ecs.Vector3{}
		if accelBulk {
			a1Val = ecs.Vector3{X: a1x[i], Y: a1y[i], Z: a1z[i]}
		} else {
			a1, _ := ecs.GetComponent[components.Acceleration](world, ecs.ComponentTypeAcceleration, e)
			a1Val = a1.Value
		}
		velVal := ecs.Vector3{}
		if velBulk {
			velVal = ecs.Vector3{X: v0x[i], Y: v0y[i], Z: v0z[i]}
		} else {
			vel, _ := ecs.GetComponent[components.Velocity](world, ecs.ComponentTypeVelocity, e)
			velVal = vel.Value
		}

		newVel := velVal.Add(a0[e].Add(a1Val).Scale(0.5 * dt))
		if err := ecs.AddComponent(world, ecs.ComponentTypeVelocity, e, components.Velocity{Value: newVel}); err != nil {
			return err
		}
	}

	return nil
}

// soaAcceleration returns the Acceleration store as a *storage.Vector3SoA,
// only when one is registered and its dense entity order exactly matches
// entities — otherwise the bulk field-array path isn't safe to take and the
// caller falls back to per-entity GetComponent/AddComponent.
func soaAcceleration(world *ecs.World, entities []ecs.Entity) (*storage.Vector3SoA[components.Acceleration], bool) {
	store, ok := ecs.GetStoreRaw[components.Acceleration](world, ecs.ComponentTypeAcceleration)
	if !ok {
		return nil, false
	}
	soa, ok := store.(*storage.Vector3SoA[components.Acceleration])
	if !ok || !sameEntityOrder(soa.Entities(), entities) {
		return nil, false
	}
	return soa, true
}

// soaVelocity is soaAcceleration's counterpart for the Velocity store.
func soaVelocity(world *ecs.World, entities []ecs.Entity) (*storage.Vector3SoA[components.Velocity], bool) {
	store, ok := ecs.GetStoreRaw[components.Velocity](world, ecs.ComponentTypeVelocity)
	if !ok {
		return nil, false
	}
	soa, ok := store.(*storage.Vector3SoA[components.Velocity])
	if !ok || !sameEntityOrder(soa.Entities(), entities) {
		return nil, false
	}
	return soa, true
}

func sameEntityOrder(a, b []ecs.Entity) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// hasKinematicState reports whether e carries the four components every
// integrator requires to advance it.
func hasKinematicState(world *ecs.World, e ecs.Entity) bool {
	return ecs.HasComponent[components.Position](world, ecs.ComponentTypePosition, e) &&
		ecs.HasComponent[components.Velocity](world, ecs.ComponentTypeVelocity, e) &&
		ecs.HasComponent[components.Acceleration](world, ecs.ComponentTypeAcceleration, e) &&
		ecs.HasComponent[components.Mass](world, ecs.ComponentTypeMass, e)
}
