// Command simulate is the external CLI wrapping the physics kernel in
// internal/core: run a fixed-step simulation, validate a plugin directory's
// dependency graph, or serve a metrics/health HTTP surface. None of
// internal/core imports this package or anything under cobra/chi/cron —
// the wire format and transport concerns here are deliberately kept
// outside the simulation core, per spec.md §1.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:   "simulate",
		Short: "Run and inspect physics simulations",
	}
	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newValidateCmd(logger))
	root.AddCommand(newServeCmd(logger))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
