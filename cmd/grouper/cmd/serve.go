package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/arloliu/grouper"
	"github.com/arloliu/grouper/internal/metrics"
	"github.com/arloliu/grouper/internal/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the roster API and shuffle UI",
		Long: `Loads the roster once in the background and serves the JSON API, the
shuffle page and the health probes until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			return runServe(cmd, cfg)
		},
	}
}

func runServe(cmd *cobra.Command, cfg grouper.Config) (err error) {
	ctx := cmd.Context()

	logger, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}

	provider, closeProvider, err := grouper.OpenRosterProvider(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeProvider(); closeErr != nil {
			logger.Warn("failed to close roster source", "error", closeErr)
		}
	}()

	opts := []grouper.Option{
		grouper.WithLogger(logger),
		grouper.WithSourceName(cfg.Roster.Source),
	}
	var serverOpts []server.Option

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		collector := metrics.NewPrometheus(reg, cfg.Metrics.Namespace)

		opts = append(opts, grouper.WithMetrics(collector))
		serverOpts = append(serverOpts, server.WithMetrics(collector), server.WithGatherer(reg))
	}

	svc, err := grouper.NewService(&cfg, provider, opts...)
	if err != nil {
		return err
	}

	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if stopErr := svc.Stop(stopCtx); stopErr != nil && !errors.Is(stopErr, grouper.ErrNotStarted) {
			err = errors.Join(err, fmt.Errorf("failed to stop service: %w", stopErr))
		}
	}()

	serverOpts = append(serverOpts, server.WithLogger(logger))

	return server.New(cfg, svc, serverOpts...).Run(ctx)
}
