package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/orbitkernel/physics/internal/core/components"
	"github.com/orbitkernel/physics/internal/core/ecs"
	"github.com/orbitkernel/physics/internal/core/force"
	"github.com/orbitkernel/physics/internal/core/scheduler"
)

func newRunCmd(logger zerolog.Logger) *cobra.Command {
	var scenarioPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario to completion and print the final state",
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := LoadScenario(scenarioPath)
			if err != nil {
				return err
			}

			world, entities, integrator, providers := scenario.BuildWorld(ecs.WithLogger(logger))

			registry := force.NewRegistry(world.Config(), logger)
			sched := scheduler.New(world, registry, integrator, logger)
			for _, p := range providers {
				sched.RegisterProvider(p)
			}

			ctx := context.Background()
			for i := 0; i < scenario.Steps; i++ {
				if err := sched.Step(ctx, entities); err != nil {
					return fmt.Errorf("step %d: %w", i, err)
				}
			}

			for i, e := range entities {
				pos, _ := ecs.GetComponent[components.Position](world, ecs.ComponentTypePosition, e)
				fmt.Printf("body[%d] position=(%.6f, %.6f, %.6f)\n", i, pos.Value.X, pos.Value.Y, pos.Value.Z)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "path to a scenario YAML file")
	cmd.MarkFlagRequired("scenario")
	return cmd
}
