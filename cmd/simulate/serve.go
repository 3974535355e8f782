package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/orbitkernel/physics/internal/core/ecs"
)

func newServeCmd(logger zerolog.Logger) *cobra.Command {
	var addr string
	var snapshotSchedule string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a Prometheus metrics/health HTTP surface alongside periodic diagnostic snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			collectors := ecs.NewCollectors("physics")
			if err := collectors.Register(reg); err != nil {
				return err
			}

			router := chi.NewRouter()
			router.Use(middleware.Logger)
			router.Use(middleware.Recoverer)
			router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

			scheduler := cron.New()
			_, err := scheduler.AddFunc(snapshotSchedule, func() {
				logger.Info().Time("snapshot_at", time.Now()).Msg("diagnostic snapshot tick")
			})
			if err != nil {
				return err
			}
			scheduler.Start()
			defer scheduler.Stop()

			logger.Info().Str("addr", addr).Msg("serving metrics and health endpoints")
			server := &http.Server{Addr: addr, Handler: router}
			return server.ListenAndServe()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":9090", "address to serve /healthz and /metrics on")
	cmd.Flags().StringVar(&snapshotSchedule, "snapshot-schedule", "@every 1m", "cron schedule for periodic diagnostic snapshot logging")
	return cmd
}
