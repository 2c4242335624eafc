package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/tripsmith/itinerary-api/internal/config"
	"github.com/tripsmith/itinerary-api/internal/enrich"
	"github.com/tripsmith/itinerary-api/internal/handler"
	"github.com/tripsmith/itinerary-api/internal/imagesearch"
	"github.com/tripsmith/itinerary-api/internal/metrics"
	"github.com/tripsmith/itinerary-api/internal/middleware"
	"github.com/tripsmith/itinerary-api/internal/planner"
	"github.com/tripsmith/itinerary-api/internal/repo"
	"github.com/tripsmith/itinerary-api/internal/service"
	"github.com/tripsmith/itinerary-api/internal/weather"
)

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "Apply pending database migrations before serving")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, migrate bool) error {
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Metrics ----------------------------------------------------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(reg)

	// --- Pipeline ---------------------------------------------------------
	gen, err := planner.NewGeminiGenerator(ctx, cfg.Gemini)
	if err != nil {
		return fmt.Errorf("create gemini client: %w", err)
	}
	weatherClient := weather.NewClient(cfg.Weather, logger)
	imageClient := imagesearch.NewUnsplashClient(cfg.Images)
	if cfg.Weather.APIKey == "" {
		logger.Warn("WEATHERAPI_KEY not set; weather will be reported as unavailable")
	}
	if cfg.Images.AccessKey == "" {
		logger.Warn("UNSPLASH_API_KEY not set; images will be reported as unavailable")
	}

	enricher := enrich.New(imageClient, weatherClient, recorder, enrich.Options{
		MaxConcurrency: cfg.MaxConcurrentLookups,
		ImageTimeout:   cfg.Images.Timeout,
		WeatherTimeout: cfg.Weather.Timeout,
		Budget:         cfg.EnrichmentBudget,
	}, logger)
	itineraries := service.NewItineraryService(planner.New(gen, recorder, logger), enricher, logger)

	// --- Database (optional) ----------------------------------------------
	var (
		saved  handler.SavedItineraryServicer
		export handler.ExportServicer
	)
	if cfg.PersistenceEnabled() {
		if migrate {
			if err := migrateUp(ctx, cfg.DatabaseURL, logger); err != nil {
				return err
			}
		}

		// New() does not open connections immediately; the first query does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("create database pool: %w", err)
		}
		defer pool.Close()

		// Verify the DB is reachable before accepting traffic.
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		logger.Info("database connection established")

		itRepo := repo.NewItineraryRepo(pool)
		saved = service.NewSavedItineraryService(itRepo)
		export = service.NewExportService(itRepo)
	} else {
		logger.Info("DATABASE_URL not set; saved itinerary endpoints disabled")
	}

	// --- Router -----------------------------------------------------------
	// Middleware order: RequestID, RealIP, logger, Recoverer, CORS, body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", metrics.Handler(reg))
	srvHandler := handler.NewServer(itineraries, saved, export, logger)
	r.Mount("/", srvHandler.Routes(middleware.NewAuthenticator([]byte(cfg.JWTSecret))))

	// --- HTTP Server ------------------------------------------------------
	// Generation can take minutes, so the write timeout covers the model
	// call plus the whole enrichment budget.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.Gemini.Timeout + cfg.EnrichmentBudget + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "model", cfg.Gemini.Model)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown: give in-flight requests up to 15 seconds to complete.
	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
