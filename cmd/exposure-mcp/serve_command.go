package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/exposure-meter-mcp/internal/logging"
	"github.com/ironsheep/exposure-meter-mcp/internal/meter"
	"github.com/ironsheep/exposure-meter-mcp/internal/metrics"
	"github.com/ironsheep/exposure-meter-mcp/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP protocol over stdin/stdout (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, ctx)
		},
	}
}

func runServe(cmd *cobra.Command, ctx *commandContext) error {
	logger, err := ctx.ensureLogger(cmd)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	s, err := ctx.ensureSettings()
	if err != nil {
		return err
	}

	observer, stop, err := startMetrics(ctx.flags.metricsAddr, logger)
	if err != nil {
		return err
	}
	defer stop()

	logger.Info("exposure meter server starting",
		logging.String("version", Version),
		logging.String("build_time", BuildTime),
		logging.String("git_commit", GitCommit),
		logging.String(logging.FieldPath, ctx.settingsPath))

	srv := server.New(server.Options{
		Logger:       logger,
		Settings:     s,
		SettingsPath: ctx.settingsPath,
		Observer:     observer,
		Strict:       ctx.flags.strict,
		Version:      Version,
		In:           cmd.InOrStdin(),
		Out:          cmd.OutOrStdout(),
	})
	if err := srv.Run(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// startMetrics serves a fresh Prometheus registry on addr and returns the
// collector feeding it. The listener is bound before returning, so an address
// that cannot be bound is reported as an error. An empty addr disables
// metrics; the returned observer is then nil and stop is a no-op.
func startMetrics(addr string, logger *slog.Logger) (meter.Observer, func(), error) {
	if addr == "" {
		return nil, func() {}, nil
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("metrics listener: %w", err)
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.WarnWithContext(logger, "metrics listener stopped", "metrics_listen_failed",
				logging.String("addr", addr),
				logging.Error(err))
		}
	}()
	logger.Info("serving metrics", logging.String("addr", ln.Addr().String()))

	stop := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}
	return collector, stop, nil
}
