package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitkernel/physics/internal/core/ecs"
)

func TestRegistryCreateDestroy(t *testing.T) {
	r := ecs.NewRegistry()

	e1 := r.Create()
	e2 := r.Create()

	require.True(t, r.IsAlive(e1))
	require.True(t, r.IsAlive(e2))
	assert.Equal(t, 2, r.Count())
	assert.NotEqual(t, e1.Index, e2.Index)

	r.Destroy(e1)
	assert.False(t, r.IsAlive(e1))
	assert.Equal(t, 1, r.Count())
}

func TestRegistryStaleHandleAfterRecycle(t *testing.T) {
	r := ecs.NewRegistry()

	e1 := r.Create()
	r.Destroy(e1)

	e2 := r.Create()
	require.Equal(t, e1.Index, e2.Index, "the freed index should be recycled")
	assert.NotEqual(t, e1.Generation, e2.Generation, "the recycled slot must carry a new generation")

	assert.False(t, r.IsAlive(e1), "the stale handle must not be reported alive")
	assert.True(t, r.IsAlive(e2))
}

func TestRegistryDestroyIsIdempotent(t *testing.T) {
	r := ecs.NewRegistry()
	e := r.Create()

	r.Destroy(e)
	assert.NotPanics(t, func() { r.Destroy(e) })
	assert.Equal(t, 0, r.Count())
}

func TestRegistryIterAlive(t *testing.T) {
	r := ecs.NewRegistry()
	e1 := r.Create()
	e2 := r.Create()
	e3 := r.Create()
	r.Destroy(e2)

	var seen []ecs.Entity
	r.IterAlive(func(e ecs.Entity) { seen = append(seen, e) })

	assert.ElementsMatch(t, []ecs.Entity{e1, e3}, seen)
}

func TestSetOperations(t *testing.T) {
	s := ecs.NewSet()
	e1 := ecs.Entity{Index: 1, Generation: 1}
	e2 := ecs.Entity{Index: 2, Generation: 1}

	s.Add(e1)
	s.Add(e2)
	assert.True(t, s.Contains(e1))
	assert.Equal(t, 2, s.Len())

	s.Remove(e1)
	assert.False(t, s.Contains(e1))
	assert.Equal(t, 1, s.Len())

	s.Clear()
	assert.Equal(t, 0, s.Len())
}
