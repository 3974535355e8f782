package ecs

import (
	"math"
	"time"
)

// ComponentType identifies a registered component kind, used for store
// lookup and error reporting. String-based for debuggability, following the
// teacher's convention.
type ComponentType string

// Built-in component type identifiers. Plugins may register their own.
const (
	ComponentTypePosition     ComponentType = "position"
	ComponentTypeVelocity     ComponentType = "velocity"
	ComponentTypeAcceleration ComponentType = "acceleration"
	ComponentTypeMass         ComponentType = "mass"
)

// Vector3 is the one numeric shape every component in this kernel is built
// from: three double-precision scalars.
type Vector3 struct {
	X, Y, Z float64
}

// Add returns the component-wise sum.
func (v Vector3) Add(o Vector3) Vector3 {
	return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns the component-wise difference.
func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and o.
func (v Vector3) Dot(o Vector3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Length returns the Euclidean norm of v.
func (v Vector3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// IsFinite reports whether every component is finite (no NaN, no Inf). Every
// write to Position or Velocity must satisfy this per the data model's
// "finite on write" invariant.
func (v Vector3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// ThreadSafetyLevel mirrors the granularity a force provider or plugin
// declares about its own concurrency guarantees.
type ThreadSafetyLevel int

const (
	ThreadSafetyNone ThreadSafetyLevel = iota
	ThreadSafetyRead
	ThreadSafetyFull
)

// WorldConfig carries the world's tunable limits and diagnostic toggles.
type WorldConfig struct {
	MaxEntities int `json:"max_entities"`

	// MaxExpectedForce is the threshold at which an accumulated force is
	// considered high-magnitude, subject to WarnOnHighForces/ClampForces.
	MaxExpectedForce float64 `json:"max_expected_force"`
	// MaxForceMagnitude is a hard clamp ceiling applied to accumulated
	// per-entity force when ClampForces is enabled.
	MaxForceMagnitude float64 `json:"max_force_magnitude"`

	WarnOnHighForces         bool `json:"warn_on_high_forces"`
	ClampForces              bool `json:"clamp_forces"`
	WarnOnMissingComponents  bool `json:"warn_on_missing_components"`
	EnableMetrics            bool `json:"enable_metrics"`
	EnableDebugMode          bool `json:"enable_debug_mode"`
}

// DefaultWorldConfig returns the configuration a bare World is created
// with absent explicit overrides.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		MaxEntities:             100_000,
		MaxExpectedForce:        1e6,
		MaxForceMagnitude:       1e9,
		WarnOnHighForces:        true,
		ClampForces:             false,
		WarnOnMissingComponents: true,
		EnableMetrics:           true,
		EnableDebugMode:         false,
	}
}

// PerformanceMetrics is a point-in-time snapshot of world-level counters,
// exposed through World.DebugInfo and mirrored into the Prometheus
// collectors in metrics.go.
type PerformanceMetrics struct {
	EntityCount     int           `json:"entity_count"`
	ComponentStores int           `json:"component_stores"`
	LastStepTime    time.Duration `json:"last_step_time"`
	Timestamp       time.Time     `json:"timestamp"`
}

// StorageStats describes one component store's occupancy, returned by
// World.DebugInfo for each registered component type.
type StorageStats struct {
	ComponentType  ComponentType `json:"component_type"`
	ComponentCount int           `json:"component_count"`
	Capacity       int           `json:"capacity"`
}

const (
	// InvalidEntityIndex is never produced by Registry.Create for a live
	// slot sharing generation zero; used as a sentinel in debug dumps.
	InvalidEntityIndex = ^uint32(0)
)
