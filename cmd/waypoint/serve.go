package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/waypoint/internal/config"
	"github.com/vango-dev/waypoint/internal/server"
	"github.com/vango-dev/waypoint/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		dir      string
		addr     string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the server",
		Long: `Start the HTTP server.

Configuration is read from waypoint.json and .env in --dir, then from
WAYPOINT_* environment variables, then from flags.

Examples:
  waypoint serve
  waypoint serve --addr=:8080
  WAYPOINT_LOG_FORMAT=json waypoint serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(dir, addr, logLevel)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory holding waypoint.json and .env")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	return cmd
}

func loadConfig(dir, addr, logLevel string) (*config.Config, error) {
	cfg, err := config.FromEnvironment(dir)
	if err != nil {
		return nil, err
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServer(ctx context.Context, cfg *config.Config) error {
	logger := cfg.Logger(os.Stderr)

	var opts []server.Option
	opts = append(opts, server.WithLogger(logger))
	if cfg.Telemetry.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		rec := telemetry.New(
			telemetry.WithRegistry(reg),
			telemetry.WithTracerName(cfg.Telemetry.TracerName),
		)
		opts = append(opts, server.WithTelemetry(rec, reg))
	}

	logger.Info("waypoint", "version", version, "addr", cfg.Server.Addr, "metrics", cfg.Telemetry.Metrics)
	if err := server.New(cfg, opts...).Run(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
