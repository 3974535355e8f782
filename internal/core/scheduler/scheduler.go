// Package scheduler drives one simulation step through the five-stage
// barrier pipeline from spec.md §4.5: force accumulation, F=ma translation,
// integration, constraint resolution, and post-process. Grounded on the
// teacher's SystemManager.Update loop and its SetParallelExecution toggle
// (internal/core/ecs/system_manager.go), generalized from an ordered list of
// game systems to five fixed, barrier-separated stages whose intra-stage
// entity work fans out with errgroup instead of running single-threaded.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/orbitkernel/physics/internal/core/ecs"
	"github.com/orbitkernel/physics/internal/core/force"
	"github.com/orbitkernel/physics/internal/core/integrate"
)

// Constraint resolves post-integration positional/velocity constraints
// (e.g. collision response, joints) over the full entity set. Constraints
// run after integration and before post-process, per spec.md §4.5 stage 4.
type Constraint interface {
	Name() string
	Resolve(world *ecs.World, entities []ecs.Entity) error
}

// PostProcessFunc runs once per step after constraints settle — bookkeeping
// such as diagnostic snapshotting or metric flushing, never physics state.
type PostProcessFunc func(world *ecs.World, entities []ecs.Entity) error

// Scheduler owns one world's step pipeline: providers to accumulate each
// step, the integrator to advance with, and the constraints/post-process
// hooks run after it.
type Scheduler struct {
	world      *ecs.World
	registry   *force.Registry
	integrator integrate.Integrator

	providers    []force.Provider
	constraints  []Constraint
	postProcess  []PostProcessFunc

	parallel bool
	chunk    int

	logger     zerolog.Logger
	collectors *ecs.Collectors
}

// New constructs a Scheduler over world, accumulating forces into registry
// and advancing with integrator. Intra-stage parallel fan-out is enabled by
// default; call SetParallel(false) for strict-sequential debug runs.
func New(world *ecs.World, registry *force.Registry, integrator integrate.Integrator, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		world:      world,
		registry:   registry,
		integrator: integrator,
		parallel:   true,
		chunk:      64,
		logger:     logger,
	}
}

// WithCollectors attaches Prometheus stage/step duration histograms.
func (s *Scheduler) WithCollectors(c *ecs.Collectors) *Scheduler {
	s.collectors = c
	return s
}

// SetParallel toggles intra-stage fan-out. Disabling it forces every stage
// to run its per-entity work on a single goroutine in iteration order,
// useful when reproducing a bug that depends on scheduling order. Mirrors
// the teacher's SetParallelExecution/IsParallelExecutionEnabled pair.
func (s *Scheduler) SetParallel(enabled bool) { s.parallel = enabled }

// IsParallel reports the current fan-out mode.
func (s *Scheduler) IsParallel() bool { return s.parallel }

// RegisterProvider adds a force provider re-registered at the top of every
// step's force stage. Unlike force.Registry.Register, which is per-step and
// additive, providers registered here persist across steps — exactly the
// pattern spec.md §9 calls out to avoid accreting duplicate registrations.
func (s *Scheduler) RegisterProvider(p force.Provider) {
	s.providers = append(s.providers, p)
}

// RegisterConstraint adds a constraint run every step after integration.
func (s *Scheduler) RegisterConstraint(c Constraint) {
	s.constraints = append(s.constraints, c)
}

// RegisterPostProcess adds a hook run every step after constraints settle.
func (s *Scheduler) RegisterPostProcess(fn PostProcessFunc) {
	s.postProcess = append(s.postProcess, fn)
}

// Step runs exactly one pass of the five stages over entities, in the fixed
// order force → acceleration → integration → constraints → post-process. A
// non-fatal per-entity error (missing state) never aborts the step; a stage
// function returning an error does.
func (s *Scheduler) Step(ctx context.Context, entities []ecs.Entity) error {
	start := time.Now()
	defer func() {
		d := time.Since(start)
		s.world.RecordStepDuration(d)
		if s.collectors != nil {
			s.collectors.StepDuration.Observe(d.Seconds())
		}
	}()

	if err := s.stage(ctx, "force_accumulation", func() error {
		s.registry.Reset()
		for _, p := range s.providers {
			s.registry.Register(p)
		}
		return s.fanOut(ctx, entities, func(e ecs.Entity) error {
			s.registry.AccumulateForEntity(s.world, e)
			return nil
		})
	}); err != nil {
		return err
	}

	if err := s.stage(ctx, "acceleration", func() error {
		s.registry.ApplyF2A(s.world, entities)
		return nil
	}); err != nil {
		return err
	}

	if err := s.stage(ctx, "integration", func() error {
		return s.integrator.Integrate(s.world, entities, s.registry)
	}); err != nil {
		return err
	}

	if err := s.stage(ctx, "constraints", func() error {
		for _, c := range s.constraints {
			if err := c.Resolve(s.world, entities); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := s.stage(ctx, "post_process", func() error {
		for _, fn := range s.postProcess {
			if err := fn(s.world, entities); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	return nil
}

// stage times fn and records it under name, whether or not fn errors.
func (s *Scheduler) stage(_ context.Context, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	if s.collectors != nil {
		s.collectors.StageDuration.WithLabelValues(name).Observe(d.Seconds())
	}
	s.logger.Debug().Str("stage", name).Dur("duration", d).Msg("stage complete")
	return err
}

// fanOut applies fn to every entity, either concurrently in fixed-size
// chunks (s.parallel) or sequentially in slice order.
func (s *Scheduler) fanOut(ctx context.Context, entities []ecs.Entity, fn func(ecs.Entity) error) error {
	if !s.parallel || len(entities) <= s.chunk {
		for _, e := range entities {
			if err := fn(e); err != nil {
				return err
			}
		}
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	for start := 0; start < len(entities); start += s.chunk {
		end := start + s.chunk
		if end > len(entities) {
			end = len(entities)
		}
		chunk := entities[start:end]
		g.Go(func() error {
			for _, e := range chunk {
				if err := fn(e); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
