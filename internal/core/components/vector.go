// Package components defines the four numeric component kinds the kernel
// advances: Position, Velocity, Acceleration, and Mass. Grounded on the
// teacher's PhysicsComponent (internal/core/ecs/components/physics.go),
// split into per-field components matching spec.md §3's data model instead
// of one bundled physics struct, since the three storage layouts need to
// operate on a single scalar shape per store.
package components

import (
	"math"

	"github.com/orbitkernel/physics/internal/core/ecs"
)

// Position is the entity's location; writes must be finite.
type Position struct {
	Value ecs.Vector3
}

func (p Position) Type() ecs.ComponentType { return ecs.ComponentTypePosition }
func (p Position) Clone() ecs.Component    { return p }

func (p Position) Validate() error {
	if !p.Value.IsFinite() {
		return ecs.New(ecs.CodeValidationFailure, "position must be finite").WithComponent(ecs.ComponentTypePosition)
	}
	return nil
}

// Velocity is the entity's rate of change of position; writes must be
// finite.
type Velocity struct {
	Value ecs.Vector3
}

func (v Velocity) Type() ecs.ComponentType { return ecs.ComponentTypeVelocity }
func (v Velocity) Clone() ecs.Component    { return v }

func (v Velocity) Validate() error {
	if !v.Value.IsFinite() {
		return ecs.New(ecs.CodeValidationFailure, "velocity must be finite").WithComponent(ecs.ComponentTypeVelocity)
	}
	return nil
}

// Acceleration is rewritten every step from the force model; it carries no
// standalone finite-on-write contract beyond what F=ma already guarantees,
// but Validate still rejects non-finite values defensively.
type Acceleration struct {
	Value ecs.Vector3
}

func (a Acceleration) Type() ecs.ComponentType { return ecs.ComponentTypeAcceleration }
func (a Acceleration) Clone() ecs.Component    { return a }

func (a Acceleration) Validate() error {
	if !a.Value.IsFinite() {
		return ecs.New(ecs.CodeValidationFailure, "acceleration must be finite").WithComponent(ecs.ComponentTypeAcceleration)
	}
	return nil
}

// Mass must be non-negative; zero marks an immovable body (infinite
// inertia, by convention 1/mass = 0).
type Mass struct {
	Value float64
}

func (m Mass) Type() ecs.ComponentType { return ecs.ComponentTypeMass }
func (m Mass) Clone() ecs.Component    { return m }

func (m Mass) Validate() error {
	if m.Value < 0 || math.IsNaN(m.Value) {
		return ecs.New(ecs.CodeValidationFailure, "mass must be non-negative").WithComponent(ecs.ComponentTypeMass)
	}
	return nil
}

// Immovable reports whether this mass makes its body immovable under F=ma
// (zero mass ⇒ 1/mass treated as zero).
func (m Mass) Immovable() bool {
	return m.Value == 0
}

// ToVector3Position / FromVector3Position adapt Position for the SoA store
// constructor, which is generic over any Vector3-shaped component and needs
// plain conversion functions rather than a reflection-based accessor.
func ToVector3Position(p Position) ecs.Vector3   { return p.Value }
func FromVector3Position(v ecs.Vector3) Position { return Position{Value: v} }

func ToVector3Velocity(v Velocity) ecs.Vector3   { return v.Value }
func FromVector3Velocity(v ecs.Vector3) Velocity { return Velocity{Value: v} }

func ToVector3Acceleration(a Acceleration) ecs.Vector3   { return a.Value }
func FromVector3Acceleration(v ecs.Vector3) Acceleration { return Acceleration{Value: v} }

func ToScalarMass(m Mass) float64   { return m.Value }
func FromScalarMass(v float64) Mass { return Mass{Value: v} }
