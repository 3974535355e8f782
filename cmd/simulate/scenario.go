package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/orbitkernel/physics/internal/core/components"
	"github.com/orbitkernel/physics/internal/core/ecs"
	"github.com/orbitkernel/physics/internal/core/ecs/storage"
	"github.com/orbitkernel/physics/internal/core/force"
	"github.com/orbitkernel/physics/internal/core/integrate"
	"github.com/orbitkernel/physics/internal/core/pool"
)

func newRK4ScratchPool() *pool.Pool[[]ecs.Vector3] {
	return pool.New("rk4-scratch", pool.DefaultConfig(), func() []ecs.Vector3 {
		return make([]ecs.Vector3, 0, 16)
	}, func(buf *[]ecs.Vector3) {
		*buf = (*buf)[:0]
	})
}

// Scenario is the on-disk description `simulate run` consumes: initial
// bodies, a timestep and step count, and which integrator/gravity model to
// drive them with.
type Scenario struct {
	Integrator string  `yaml:"integrator"` // "verlet" or "rk4"
	Layout     string  `yaml:"layout"`     // "sparse" (default) or "soa"
	Timestep   float64 `yaml:"timestep"`
	Steps      int     `yaml:"steps"`

	Gravity *struct {
		G         float64 `yaml:"g"`
		Softening float64 `yaml:"softening"`
	} `yaml:"gravity"`

	Bodies []struct {
		Position [3]float64 `yaml:"position"`
		Velocity [3]float64 `yaml:"velocity"`
		Mass     float64    `yaml:"mass"`
	} `yaml:"bodies"`
}

// LoadScenario reads and parses a scenario YAML file from path.
func LoadScenario(path string) (Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("opening scenario: %w", err)
	}
	defer f.Close()

	var s Scenario
	if err := yaml.NewDecoder(f).Decode(&s); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario: %w", err)
	}
	if s.Timestep <= 0 {
		return Scenario{}, fmt.Errorf("scenario timestep must be positive, got %v", s.Timestep)
	}
	return s, nil
}

// BuildWorld materializes a Scenario into a world, entity list, and
// integrator ready for the scheduler to step.
func (s Scenario) BuildWorld(opts ...ecs.Option) (*ecs.World, []ecs.Entity, integrate.Integrator, []force.Provider) {
	world := ecs.NewWorld(ecs.DefaultWorldConfig(), opts...)
	ecs.RegisterStore[components.Position](world, ecs.ComponentTypePosition, storage.NewSparse[components.Position]())
	ecs.RegisterStore[components.Mass](world, ecs.ComponentTypeMass, storage.NewSparse[components.Mass]())

	// "soa" keeps Velocity/Acceleration on the structure-of-arrays layout so
	// the integrator's bulk kinematic-update path (internal/core/integrate)
	// drives them through the simd package's lane-unrolled primitives
	// instead of per-entity component reads. Position and Mass stay Sparse
	// in every layout, since force.NewtonianGravity needs per-entity reads
	// of both.
	if s.Layout == "soa" {
		ecs.RegisterStore[components.Velocity](world, ecs.ComponentTypeVelocity, storage.NewVector3SoA(components.ToVector3Velocity, components.FromVector3Velocity))
		ecs.RegisterStore[components.Acceleration](world, ecs.ComponentTypeAcceleration, storage.NewVector3SoA(components.ToVector3Acceleration, components.FromVector3Acceleration))
	} else {
		ecs.RegisterStore[components.Velocity](world, ecs.ComponentTypeVelocity, storage.NewSparse[components.Velocity]())
		ecs.RegisterStore[components.Acceleration](world, ecs.ComponentTypeAcceleration, storage.NewSparse[components.Acceleration]())
	}

	entities := make([]ecs.Entity, 0, len(s.Bodies))
	for _, b := range s.Bodies {
		e := world.CreateEntity()
		pos := ecs.Vector3{X: b.Position[0], Y: b.Position[1], Z: b.Position[2]}
		vel := ecs.Vector3{X: b.Velocity[0], Y: b.Velocity[1], Z: b.Velocity[2]}
		_ = ecs.AddComponent(world, ecs.ComponentTypePosition, e, components.Position{Value: pos})
		_ = ecs.AddComponent(world, ecs.ComponentTypeVelocity, e, components.Velocity{Value: vel})
		_ = ecs.AddComponent(world, ecs.ComponentTypeAcceleration, e, components.Acceleration{})
		_ = ecs.AddComponent(world, ecs.ComponentTypeMass, e, components.Mass{Value: b.Mass})
		entities = append(entities, e)
	}

	var providers []force.Provider
	if s.Gravity != nil {
		providers = append(providers, force.NewtonianGravity{
			G:         s.Gravity.G,
			Softening: s.Gravity.Softening,
			Bodies:    entities,
		})
	}

	var integrator integrate.Integrator
	switch s.Integrator {
	case "rk4":
		scratch := newRK4ScratchPool()
		integrator = integrate.NewRK4(s.Timestep, scratch)
	default:
		integrator = integrate.NewVerlet(s.Timestep)
	}

	return world, entities, integrator, providers
}
