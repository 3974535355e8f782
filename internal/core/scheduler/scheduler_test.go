package scheduler_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitkernel/physics/internal/core/components"
	"github.com/orbitkernel/physics/internal/core/ecs"
	"github.com/orbitkernel/physics/internal/core/ecs/storage"
	"github.com/orbitkernel/physics/internal/core/force"
	"github.com/orbitkernel/physics/internal/core/integrate"
	"github.com/orbitkernel/physics/internal/core/scheduler"
)

func newWorldWithBodies(t *testing.T, n int) (*ecs.World, []ecs.Entity) {
	t.Helper()
	w := ecs.NewWorld(ecs.DefaultWorldConfig())
	ecs.RegisterStore[components.Position](w, ecs.ComponentTypePosition, storage.NewSparse[components.Position]())
	ecs.RegisterStore[components.Velocity](w, ecs.ComponentTypeVelocity, storage.NewSparse[components.Velocity]())
	ecs.RegisterStore[components.Acceleration](w, ecs.ComponentTypeAcceleration, storage.NewSparse[components.Acceleration]())
	ecs.RegisterStore[components.Mass](w, ecs.ComponentTypeMass, storage.NewSparse[components.Mass]())

	entities := make([]ecs.Entity, n)
	for i := 0; i < n; i++ {
		e := w.CreateEntity()
		require.NoError(t, ecs.AddComponent(w, ecs.ComponentTypePosition, e, components.Position{}))
		require.NoError(t, ecs.AddComponent(w, ecs.ComponentTypeVelocity, e, components.Velocity{}))
		require.NoError(t, ecs.AddComponent(w, ecs.ComponentTypeAcceleration, e, components.Acceleration{}))
		require.NoError(t, ecs.AddComponent(w, ecs.ComponentTypeMass, e, components.Mass{Value: 1}))
		entities[i] = e
	}
	return w, entities
}

func TestStepAdvancesEveryEntity(t *testing.T) {
	w, entities := newWorldWithBodies(t, 200)
	reg := force.NewRegistry(ecs.DefaultWorldConfig(), zerolog.Nop())
	sched := scheduler.New(w, reg, integrate.NewVerlet(0.01), zerolog.Nop())
	sched.RegisterProvider(force.Constant{Vector: ecs.Vector3{Y: -1}})

	require.NoError(t, sched.Step(context.Background(), entities))

	for _, e := range entities {
		vel, ok := ecs.GetComponent[components.Velocity](w, ecs.ComponentTypeVelocity, e)
		require.True(t, ok)
		assert.NotEqual(t, 0.0, vel.Value.Y, "every entity should have accumulated the constant force")
	}
}

func TestSequentialAndParallelModesAgree(t *testing.T) {
	wPar, entPar := newWorldWithBodies(t, 300)
	wSeq, entSeq := newWorldWithBodies(t, 300)

	regPar := force.NewRegistry(ecs.DefaultWorldConfig(), zerolog.Nop())
	schedPar := scheduler.New(wPar, regPar, integrate.NewVerlet(0.01), zerolog.Nop())
	schedPar.RegisterProvider(force.Constant{Vector: ecs.Vector3{Y: -2}})

	regSeq := force.NewRegistry(ecs.DefaultWorldConfig(), zerolog.Nop())
	schedSeq := scheduler.New(wSeq, regSeq, integrate.NewVerlet(0.01), zerolog.Nop())
	schedSeq.RegisterProvider(force.Constant{Vector: ecs.Vector3{Y: -2}})
	schedSeq.SetParallel(false)

	require.NoError(t, schedPar.Step(context.Background(), entPar))
	require.NoError(t, schedSeq.Step(context.Background(), entSeq))

	for i := range entPar {
		posPar, _ := ecs.GetComponent[components.Position](wPar, ecs.ComponentTypePosition, entPar[i])
		posSeq, _ := ecs.GetComponent[components.Position](wSeq, ecs.ComponentTypePosition, entSeq[i])
		assert.Equal(t, posSeq.Value, posPar.Value, "parallel and sequential fan-out must produce identical results")
	}
	assert.False(t, schedSeq.IsParallel())
	assert.True(t, schedPar.IsParallel())
}

func TestConstraintErrorAbortsStep(t *testing.T) {
	w, entities := newWorldWithBodies(t, 5)
	reg := force.NewRegistry(ecs.DefaultWorldConfig(), zerolog.Nop())
	sched := scheduler.New(w, reg, integrate.NewVerlet(0.01), zerolog.Nop())
	sched.RegisterConstraint(failingConstraint{})

	err := sched.Step(context.Background(), entities)
	assert.Error(t, err)
}

type failingConstraint struct{}

func (failingConstraint) Name() string { return "failing" }
func (failingConstraint) Resolve(*ecs.World, []ecs.Entity) error {
	return ecs.New(ecs.CodeValidationFailure, "constraint always fails, for testing")
}

func TestPostProcessHookRuns(t *testing.T) {
	w, entities := newWorldWithBodies(t, 5)
	reg := force.NewRegistry(ecs.DefaultWorldConfig(), zerolog.Nop())
	sched := scheduler.New(w, reg, integrate.NewVerlet(0.01), zerolog.Nop())

	ran := false
	sched.RegisterPostProcess(func(*ecs.World, []ecs.Entity) error {
		ran = true
		return nil
	})

	require.NoError(t, sched.Step(context.Background(), entities))
	assert.True(t, ran)
}
