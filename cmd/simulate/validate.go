package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/orbitkernel/physics/internal/core/force"
	"github.com/orbitkernel/physics/internal/core/plugin"
)

// scriptedPlugin is implemented by manifestPlugin; asserted against to
// report which resolved plugins actually interpreted a scripted force
// provider at Initialize time.
type scriptedPlugin interface {
	Provider() (force.Provider, bool)
}

// loadPluginDir globs pluginDir for one plugin.yaml per subdirectory,
// parses and registers each against registry, runs InitializeAll (which
// interprets every manifest's scripted EntryPoint), and returns the
// dependency order computed by Resolve.
func loadPluginDir(registry *plugin.Registry, pluginDir string) ([]plugin.Plugin, error) {
	entries, err := filepath.Glob(filepath.Join(pluginDir, "*", "plugin.yaml"))
	if err != nil {
		return nil, err
	}
	for _, manifestPath := range entries {
		f, err := os.Open(manifestPath)
		if err != nil {
			return nil, err
		}
		m, err := plugin.ParseManifest(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", manifestPath, err)
		}
		p, err := plugin.NewManifestPlugin(filepath.Dir(manifestPath), m)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", manifestPath, err)
		}
		if err := registry.Register(p); err != nil {
			return nil, fmt.Errorf("%s: %w", manifestPath, err)
		}
	}

	order, err := registry.Resolve()
	if err != nil {
		return nil, err
	}
	if err := registry.InitializeAll(plugin.Context{}); err != nil {
		return nil, err
	}
	return order, nil
}

func newValidateCmd(logger zerolog.Logger) *cobra.Command {
	var pluginDir string
	var apiVersion string
	var watch bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a plugin directory's manifests and dependency graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			hostAPI, err := plugin.ParseVersion(apiVersion)
			if err != nil {
				return err
			}
			registry := plugin.NewRegistry(hostAPI)

			order, err := loadPluginDir(registry, pluginDir)
			if err != nil {
				return err
			}
			reportPlugins(order)
			logger.Info().Int("plugins", len(order)).Msg("plugin graph validated")

			if !watch {
				return nil
			}
			return watchPluginDir(pluginDir, hostAPI, logger)
		},
	}
	cmd.Flags().StringVarP(&pluginDir, "dir", "d", "./plugins", "directory containing one subdirectory per plugin")
	cmd.Flags().StringVar(&apiVersion, "api-version", "1.0.0", "host plugin API version to validate against")
	cmd.Flags().BoolVar(&watch, "watch", false, "keep running and re-validate whenever a plugin.yaml changes")
	return cmd
}

func reportPlugins(order []plugin.Plugin) {
	for _, p := range order {
		if sp, ok := p.(scriptedPlugin); ok {
			if provider, ok := sp.Provider(); ok {
				fmt.Printf("%s@%s (scripted provider %q)\n", p.Name(), p.Version(), provider.Name())
				continue
			}
		}
		fmt.Printf("%s@%s\n", p.Name(), p.Version())
	}
}

// watchPluginDir rebuilds a fresh Registry from pluginDir every time a
// plugin.yaml under it changes, so a hand-edited manifest or scripted
// provider takes effect without restarting the host. It blocks until the
// process receives SIGINT/SIGTERM.
func watchPluginDir(pluginDir string, hostAPI plugin.Version, logger zerolog.Logger) error {
	onLoad := func(manifestPath string) {
		registry := plugin.NewRegistry(hostAPI)
		order, err := loadPluginDir(registry, pluginDir)
		if err != nil {
			logger.Error().Err(err).Str("path", manifestPath).Msg("plugin reload failed")
			return
		}
		reportPlugins(order)
		logger.Info().Int("plugins", len(order)).Msg("plugin graph reloaded")
	}

	w, err := plugin.NewWatcher(pluginDir, onLoad, logger)
	if err != nil {
		return fmt.Errorf("starting plugin watcher: %w", err)
	}
	defer w.Close()

	logger.Info().Str("dir", pluginDir).Msg("watching plugin directory for changes")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	return nil
}
