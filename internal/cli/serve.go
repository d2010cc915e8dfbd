package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/abtrack/internal/abtest"
	"github.com/emiliopalmerini/abtrack/internal/adapters/analytics"
	"github.com/emiliopalmerini/abtrack/internal/adapters/prometheus"
	"github.com/emiliopalmerini/abtrack/internal/adapters/turso"
	"github.com/emiliopalmerini/abtrack/internal/ports"
	"github.com/emiliopalmerini/abtrack/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ingest server",
	Long: `Start the HTTP server that receives tracked events, stores them, and
forwards them to the configured analytics vendors.

Examples:
  abtrack serve              # Start on the configured port (default 8080)
  abtrack serve --port 3000  # Start on port 3000`,
	RunE: runServe,
}

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	port := app.Config.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	metrics := prometheus.NewMetrics()
	dispatcher := app.NewDispatcher(ctx,
		analytics.ServerSinks(app.Config.Analytics, app.Logger),
		abtest.WithFailureFunc(metrics.SinkFailed),
	)
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), app.Config.ShutdownTimeout)
		defer flushCancel()
		if err := dispatcher.Close(flushCtx); err != nil {
			app.Logger.Warn("failed to flush events", zap.Error(err))
		}
	}()

	app.Logger.Info("forwarding events", zap.Strings("sinks", dispatcher.Sinks()))

	stores := func(ns string) ports.KeyValueStore {
		return turso.NewKVStore(app.DB.DB, ns)
	}

	server := web.NewServer(port, app.Registry, app.Events, stores,
		web.WithLogger(app.Logger),
		web.WithDispatcher(dispatcher),
		web.WithMetrics(metrics),
		web.WithShutdownTimeout(app.Config.ShutdownTimeout),
	)
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
