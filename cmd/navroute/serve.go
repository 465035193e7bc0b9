package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navroute/internal/config"
	"github.com/vango-dev/navroute/internal/dev"
)

func serveCmd() *cobra.Command {
	var (
		port     int
		host     string
		noReload bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site with route fallback and live reload",
		Long: `Serve the static root of the project.

Paths without a file fall back to the index page so client-side
routes survive a reload. Pages are pre-routed with the manifest,
the events endpoint delivers published events, metrics are exposed
for Prometheus, and browsers reload when files or the manifest change.

Examples:
  navroute serve
  navroute serve --port=8080
  navroute serve --host=0.0.0.0 --no-reload`,
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			return runServe(cmd, port, host, noReload, verbose)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from navroute.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from navroute.json)")
	cmd.Flags().BoolVar(&noReload, "no-reload", false, "Disable live reload")

	return cmd
}

func runServe(cmd *cobra.Command, port int, host string, noReload, verbose bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	if port > 0 {
		cfg.Serve.Port = port
	}
	if host != "" {
		cfg.Serve.Host = host
	}
	if noReload {
		cfg.Serve.Reload = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	printBanner()
	fmt.Println("  serve")
	fmt.Println()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	server := dev.NewServer(dev.ServerOptions{
		Config:  cfg,
		Logger:  newLogger(cmd.ErrOrStderr(), level),
		Verbose: verbose,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	success("Serving %s", cfg.RootPath())
	info("Local:   %s", cfg.URL())
	if cfg.Events.Enabled {
		info("Events:  %s", cfg.URL()+cfg.Events.Path)
	}
	if cfg.Metrics.Enabled {
		info("Metrics: %s", cfg.URL()+cfg.Metrics.Path)
	}
	fmt.Println()

	return server.Start(ctx)
}
