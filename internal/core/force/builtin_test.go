package force_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitkernel/physics/internal/core/components"
	"github.com/orbitkernel/physics/internal/core/ecs"
	"github.com/orbitkernel/physics/internal/core/force"
)

func TestConstantForceScalesByMass(t *testing.T) {
	w := newTestWorld()
	e := w.CreateEntity()
	require.NoError(t, ecs.AddComponent(w, ecs.ComponentTypeMass, e, components.Mass{Value: 2}))

	c := force.Constant{Vector: ecs.Vector3{Y: -9.81}}
	f, ok := c.ComputeForce(w, e)
	require.True(t, ok)
	assert.InDelta(t, -19.62, f.Y, 1e-9)
}

func TestConstantForceAbsentForImmovableBody(t *testing.T) {
	w := newTestWorld()
	e := w.CreateEntity()
	require.NoError(t, ecs.AddComponent(w, ecs.ComponentTypeMass, e, components.Mass{Value: 0}))

	c := force.Constant{Vector: ecs.Vector3{Y: -1}}
	_, ok := c.ComputeForce(w, e)
	assert.False(t, ok)
}

func TestNewtonianGravityAttractsTowardOtherBody(t *testing.T) {
	w := newTestWorld()
	a := w.CreateEntity()
	b := w.CreateEntity()

	require.NoError(t, ecs.AddComponent(w, ecs.ComponentTypePosition, a, components.Position{Value: ecs.Vector3{X: 0}}))
	require.NoError(t, ecs.AddComponent(w, ecs.ComponentTypeMass, a, components.Mass{Value: 1}))
	require.NoError(t, ecs.AddComponent(w, ecs.ComponentTypePosition, b, components.Position{Value: ecs.Vector3{X: 1}}))
	require.NoError(t, ecs.AddComponent(w, ecs.ComponentTypeMass, b, components.Mass{Value: 1}))

	g := force.NewtonianGravity{G: 1, Bodies: []ecs.Entity{a, b}}
	f, ok := g.ComputeForce(w, a)
	require.True(t, ok)
	assert.Greater(t, f.X, 0.0, "a should be pulled toward b, i.e. in +X")
	assert.InDelta(t, 1.0, f.X, 1e-9)
}

func TestNewtonianGravitySofteningAvoidsSingularity(t *testing.T) {
	w := newTestWorld()
	a := w.CreateEntity()
	b := w.CreateEntity()

	require.NoError(t, ecs.AddComponent(w, ecs.ComponentTypePosition, a, components.Position{Value: ecs.Vector3{X: 0}}))
	require.NoError(t, ecs.AddComponent(w, ecs.ComponentTypeMass, a, components.Mass{Value: 1}))
	require.NoError(t, ecs.AddComponent(w, ecs.ComponentTypePosition, b, components.Position{Value: ecs.Vector3{X: 0}}))
	require.NoError(t, ecs.AddComponent(w, ecs.ComponentTypeMass, b, components.Mass{Value: 1}))

	g := force.NewtonianGravity{G: 1, Softening: 0.1, Bodies: []ecs.Entity{a, b}}
	f, ok := g.ComputeForce(w, a)
	require.True(t, ok)
	assert.True(t, f.IsFinite())
	assert.False(t, math.IsNaN(f.X))
}
