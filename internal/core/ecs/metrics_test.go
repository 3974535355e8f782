package ecs_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/orbitkernel/physics/internal/core/ecs"
)

func TestCollectorsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := ecs.NewCollectors("physics_test")

	require.NoError(t, c.Register(reg))

	c.PoolHits.WithLabelValues("rk4-scratch").Inc()
	c.StepDuration.Observe(0.001)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
}

func TestCollectorsRegisterIdempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := ecs.NewCollectors("physics_test")

	require.NoError(t, c.Register(reg))
	require.NoError(t, c.Register(reg), "registering the same collector set twice must not error")
}
