package plugin

import (
	"reflect"

	"github.com/orbitkernel/physics/internal/core/ecs"
	"github.com/orbitkernel/physics/internal/core/force"
)

// Symbols is the yaegi export table for this module's core packages, the
// hand-maintained subset `yaegi extract ./internal/core/...` would
// otherwise generate: just enough of ecs and force for a scripted plugin to
// declare a ComputeForce function against ecs.World/ecs.Entity/ecs.Vector3.
// Regenerate (or extend) this table whenever a scripted plugin needs a type
// or function this subset doesn't cover yet.
var Symbols = map[string]map[string]reflect.Value{
	"github.com/orbitkernel/physics/internal/core/ecs/ecs": {
		"Vector3":                   reflect.ValueOf((*ecs.Vector3)(nil)),
		"Entity":                    reflect.ValueOf((*ecs.Entity)(nil)),
		"World":                     reflect.ValueOf((*ecs.World)(nil)),
		"ComponentType":             reflect.ValueOf((*ecs.ComponentType)(nil)),
		"ComponentTypePosition":     reflect.ValueOf(ecs.ComponentTypePosition),
		"ComponentTypeVelocity":     reflect.ValueOf(ecs.ComponentTypeVelocity),
		"ComponentTypeAcceleration": reflect.ValueOf(ecs.ComponentTypeAcceleration),
		"ComponentTypeMass":         reflect.ValueOf(ecs.ComponentTypeMass),
	},
	"github.com/orbitkernel/physics/internal/core/force/force": {
		"Provider":     reflect.ValueOf((*force.Provider)(nil)),
		"ProviderFunc": reflect.ValueOf((*force.ProviderFunc)(nil)),
	},
}
