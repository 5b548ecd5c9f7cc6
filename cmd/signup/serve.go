package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/signup/internal/config"
	"github.com/vango-dev/signup/pkg/middleware"
	"github.com/vango-dev/signup/pkg/server"
)

func serveCmd(root *rootOptions) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the signup page",
		Long: `Serve the signup page, its live validation channel, /healthz
and /metrics.

Examples:
  signup serve
  signup serve --port=8080
  signup serve --config=/etc/signup/signup.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root.configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := newLogger(cmd.ErrOrStderr(), root.verbose)
			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			srv, err := server.New(a.service, a.table, serverOptions(a)...)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from signup.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from signup.json)")

	return cmd
}

func serverOptions(a *app) []server.Option {
	opts := []server.Option{
		server.WithLogger(a.logger.With("component", "server")),
		server.WithConfig(server.Config{
			Address:        a.cfg.Address(),
			RedirectTarget: a.cfg.Server.RedirectTarget,
		}),
		server.WithTracing(),
		server.WithControllerOptions(a.controllerOptions()...),
	}
	if a.provider != nil {
		opts = append(opts, server.WithProvider(a.provider))
	}
	if a.cfg.Metrics.Enabled {
		m, reg := newMetrics(a.cfg.Metrics)
		opts = append(opts, server.WithMetrics(m, reg))
	}
	return opts
}

func newMetrics(mc config.MetricsConfig) (*middleware.Metrics, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := middleware.NewMetrics(
		middleware.WithNamespace(mc.Namespace),
		middleware.WithRegistry(reg),
	)
	return m, reg
}
