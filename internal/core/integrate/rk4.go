package integrate

import (
	"github.com/orbitkernel/physics/internal/core/components"
	"github.com/orbitkernel/physics/internal/core/ecs"
	"github.com/orbitkernel/physics/internal/core/force"
	"github.com/orbitkernel/physics/internal/core/pool"
)

// stage holds one k-stage's per-entity velocity and acceleration samples,
// indexed in parallel with the integrator's participating-entity slice.
type stage struct {
	v []ecs.Vector3
	a []ecs.Vector3
}

// RK4 is the classical fourth-order Runge-Kutta scheme from spec.md §4.4.2:
// four force evaluations per step, each one sampled only after every body
// has been globally staged to the same intermediate point in time — a
// per-entity RK4 (each body integrated against a frozen snapshot of its
// neighbors) would silently desynchronize coupled N-body forces.
type RK4 struct {
	dt    float64
	evals int

	scratch *pool.Pool[[]ecs.Vector3]
}

// NewRK4 constructs an RK4 integrator at the given timestep, drawing its
// k-stage staging buffers from a shared pool of Vector3 slices.
func NewRK4(dt float64, scratch *pool.Pool[[]ecs.Vector3]) *RK4 {
	return &RK4{dt: dt, scratch: scratch}
}

func (r *RK4) Name() string                 { return "rk4" }
func (r *RK4) Timestep() float64            { return r.dt }
func (r *RK4) SetTimestep(dt float64)       { r.dt = dt }
func (r *RK4) ValidateTimestep() *ecs.Error { return validateTimestep(r.dt) }
func (r *RK4) ForceEvaluations() int        { return r.evals }

// Integrate advances every entity in entities by one step of dt using the
// four-stage classical scheme:
//
//	k1 ← (v, a) at the current state
//	k2 ← (v, a) after staging every body to p₀+½dt·k1v, v₀+½dt·k1a
//	k3 ← (v, a) after staging every body to p₀+½dt·k2v, v₀+½dt·k2a
//	k4 ← (v, a) after staging every body to p₀+dt·k3v,  v₀+dt·k3a
//	commit p₀+dt/6·(k1v+2k2v+2k3v+k4v), v₀+dt/6·(k1a+2k2a+2k3a+k4a)
//
// The final acceleration component is committed from k4, the state nearest
// the end of the step, rather than a fifth evaluation — keeping the total
// force-evaluation count at 4·N.
func (r *RK4) Integrate(world *ecs.World, entities []ecs.Entity, registry *force.Registry) error {
	dt := r.dt
	r.evals = 0

	participating := make([]ecs.Entity, 0, len(entities))
	for _, e := range entities {
		if hasKinematicState(world, e) {
			participating = append(participating, e)
		}
	}
	n := len(participating)
	if n == 0 {
		return nil
	}

	// p0/v0 and all eight k-stage velocity/acceleration slices are drawn
	// from the same shared scratch pool and released at step end, per
	// spec.md's lifecycle invariant that RK4 never allocates its staging
	// buffers on the heap mid-step.
	guards := make([]*pool.Guard[[]ecs.Vector3], 10)
	for i := range guards {
		guards[i] = r.scratch.Acquire()
	}
	defer func() {
		for _, g := range guards {
			g.Release()
		}
	}()
	p0 := ensureLen(guards[0].Value(), n)
	v0 := ensureLen(guards[1].Value(), n)

	for i, e := range participating {
		pos, _ := ecs.GetComponent[components.Position](world, ecs.ComponentTypePosition, e)
		vel, _ := ecs.GetComponent[components.Velocity](world, ecs.ComponentTypeVelocity, e)
		p0[i] = pos.Value
		v0[i] = vel.Value
	}

	k1 := r.sample(world, registry, participating, v0,
		ensureLen(guards[2].Value(), n), ensureLen(guards[3].Value(), n))
	k2 := r.stageAndSample(world, registry, participating, p0, v0, k1, 0.5*dt,
		ensureLen(guards[4].Value(), n), ensureLen(guards[5].Value(), n))
	k3 := r.stageAndSample(world, registry, participating, p0, v0, k2, 0.5*dt,
		ensureLen(guards[6].Value(), n), ensureLen(guards[7].Value(), n))
	k4 := r.stageAndSample(world, registry, participating, p0, v0, k3, dt,
		ensureLen(guards[8].Value(), n), ensureLen(guards[9].Value(), n))

	sixth := dt / 6.0
	for i, e := range participating {
		dv := k1.v[i].Add(k2.v[i].Scale(2)).Add(k3.v[i].Scale(2)).Add(k4.v[i]).Scale(sixth)
		da := k1.a[i].Add(k2.a[i].Scale(2)).Add(k3.a[i].Scale(2)).Add(k4.a[i]).Scale(sixth)

		finalPos := p0[i].Add(dv)
		finalVel := v0[i].Add(da)

		if err := ecs.AddComponent(world, ecs.ComponentTypePosition, e, components.Position{Value: finalPos}); err != nil {
			return err
		}
		if err := ecs.AddComponent(world, ecs.ComponentTypeVelocity, e, components.Velocity{Value: finalVel}); err != nil {
			return err
		}
		if err := ecs.AddComponent(world, ecs.ComponentTypeAcceleration, e, components.Acceleration{Value: k4.a[i]}); err != nil {
			return err
		}
	}

	return nil
}

// sample reads the current (v, a) for every participating entity without
// staging anything first — used for k1, which starts from the real state.
// vBuf/aBuf are pool-acquired scratch slices, already sized to len(entities),
// that become the returned stage's backing arrays.
func (r *RK4) sample(world *ecs.World, registry *force.Registry, entities []ecs.Entity, v0, vBuf, aBuf []ecs.Vector3) stage {
	for _, e := range entities {
		registry.AccumulateForEntity(world, e)
	}
	registry.ApplyF2A(world, entities)
	r.evals += len(entities)

	s := stage{v: vBuf, a: aBuf}
	for i, e := range entities {
		accel, _ := ecs.GetComponent[components.Acceleration](world, ecs.ComponentTypeAcceleration, e)
		s.v[i] = v0[i]
		s.a[i] = accel.Value
	}
	return s
}

// stageAndSample writes p0+prev.v*h, v0+prev.a*h into the real position and
// velocity stores for every entity — the "global staging" step — then
// samples forces at that shared intermediate state. vBuf/aBuf are
// pool-acquired scratch slices, already sized to len(entities), that become
// the returned stage's backing arrays.
func (r *RK4) stageAndSample(world *ecs.World, registry *force.Registry, entities []ecs.Entity, p0, v0 []ecs.Vector3, prev stage, h float64, vBuf, aBuf []ecs.Vector3) stage {
	for i, e := range entities {
		stagedPos := p0[i].Add(prev.v[i].Scale(h))
		vBuf[i] = v0[i].Add(prev.a[i].Scale(h))
		_ = ecs.AddComponent(world, ecs.ComponentTypePosition, e, components.Position{Value: stagedPos})
		_ = ecs.AddComponent(world, ecs.ComponentTypeVelocity, e, components.Velocity{Value: vBuf[i]})
	}

	for _, e := range entities {
		registry.AccumulateForEntity(world, e)
	}
	registry.ApplyF2A(world, entities)
	r.evals += len(entities)

	s := stage{v: vBuf, a: aBuf}
	for i, e := range entities {
		accel, _ := ecs.GetComponent[components.Acceleration](world, ecs.ComponentTypeAcceleration, e)
		s.a[i] = accel.Value
	}
	return s
}

func ensureLen(buf *[]ecs.Vector3, n int) []ecs.Vector3 {
	if cap(*buf) < n {
		*buf = make([]ecs.Vector3, n)
	}
	*buf = (*buf)[:n]
	return *buf
}
