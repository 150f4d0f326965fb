package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io/fs"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"portfolio/config"
	"portfolio/internal/handlers"
	"portfolio/internal/logger"
	"portfolio/internal/metrics"
	"portfolio/internal/version"
	"portfolio/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var (
		port       string
		siteDir    string
		pixelSink  bool
		trustProxy bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site locally with a development analytics sink",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("site") {
				cfg.SiteDir = siteDir
			}
			if flags.Changed("pixel-sink") {
				cfg.PixelSink = pixelSink
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, routerOptions{TrustProxy: trustProxy, Salt: newSalt()})
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen port (default from config, 8080)")
	cmd.Flags().StringVar(&siteDir, "site", "", "Serve this directory instead of the embedded site")
	cmd.Flags().BoolVar(&pixelSink, "pixel-sink", false, "Accept analytics beacons at /pixel.gif")
	cmd.Flags().BoolVar(&trustProxy, "trust-proxy", false, "Use X-Forwarded-For for client addresses")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, opts routerOptions) error {
	logger.Setup(logger.Options{Level: cfg.LogLevel, Output: cfg.LogOutput, Format: cfg.LogFormat, FilePath: cfg.LogFilePath})
	log := logger.Get()
	log.Info().
		Str("version", version.Version).
		Str("env", string(cfg.Env)).
		Str("site_dir", cfg.SiteDir).
		Bool("pixel_sink", cfg.PixelSink).
		Msg("portfolio preview starting")

	site := siteFS(cfg.SiteDir)
	registry := prometheus.NewRegistry()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      buildRouter(cfg, site, registry, opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("public_url", cfg.PublicURL).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}

type routerOptions struct {
	TrustProxy bool
	// Salt keys pixel client hashes; a fresh one per process unlinks runs.
	Salt string
}

func newSalt() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func buildRouter(cfg config.Config, site fs.FS, registry *prometheus.Registry, opts routerOptions) http.Handler {
	r := chi.NewRouter()

	limits := middleware.DefaultRateLimitConfig()
	limits.TrustProxy = opts.TrustProxy

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CacheControl(24 * time.Hour))
	r.Use(middleware.RateLimit(limits))

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(metrics.NewSiteCollector(site, handlers.ProjectsPath, handlers.TranslationsPath))

	r.Get("/api/health", handlers.HealthCheck)
	r.Get("/api/ready", handlers.ReadinessCheck(site))
	r.Get("/api/version", handlers.Version)
	r.Get("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}).ServeHTTP)
	if cfg.PixelSink {
		r.Get("/pixel.gif", handlers.PixelSink(handlers.PixelOptions{
			Metrics:    metrics.NewPixel(registry),
			TrustProxy: opts.TrustProxy,
			Salt:       opts.Salt,
		}))
	}
	handlers.RegisterSiteRoutes(r, site)
	return r
}
