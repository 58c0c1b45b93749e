package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/navsync"
	"github.com/vango-dev/navsync/pkg/reconcile"
	"github.com/vango-dev/navsync/pkg/remote"
)

func serveCmd() *cobra.Command {
	var (
		addr string
		path string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a WebSocket-backed navigation surface",
		Long: `Serve a WebSocket endpoint a client surface can connect to. The
connected client becomes the native navigation surface: its navigate
and entry-change events are reconciled server-side, and Prometheus
metrics are exposed on /metrics.

Examples:
  navsync serve
  navsync serve --addr=:9090 --path=/nav`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, path)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8650", "Address to listen on")
	cmd.Flags().StringVar(&path, "path", "/ws", "WebSocket endpoint path")

	return cmd
}

func runServe(addr, path string) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	registry := prometheus.NewRegistry()
	metricsCfg := reconcile.DefaultMetricsConfig()
	metricsCfg.Registry = registry
	metrics := reconcile.NewMetrics(metricsCfg)

	nav := remote.New(remote.Config{Logger: logger})
	defer nav.Close()

	r, err := navsync.New(nav,
		navsync.WithLogger(logger),
		navsync.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}
	defer r.Close()

	off := r.RegisterNonRouterCurrentEntryChangeListener(func(url string, state any) {
		logger.Info("client navigated", "url", url)
	})
	defer off()

	router := remote.NewRouter(nav, remote.RouterConfig{
		Path:            path,
		MetricsGatherer: registry,
	})

	logger.Info("listening", "addr", addr, "ws_path", path)
	return http.ListenAndServe(addr, router)
}
