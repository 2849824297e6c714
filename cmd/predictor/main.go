package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/heartcheck/predictor/internal/api"
	"github.com/heartcheck/predictor/internal/inference"
	"github.com/heartcheck/predictor/internal/model"
	"github.com/heartcheck/predictor/internal/shared/config"
	"github.com/heartcheck/predictor/internal/shared/metrics"
	secmiddleware "github.com/heartcheck/predictor/internal/shared/middleware"
	"github.com/heartcheck/predictor/internal/web"
)

// maxBodyBytes bounds form posts and API bodies.
const maxBodyBytes = 64 * 1024

// App holds all application dependencies
type App struct {
	Config   *config.Config
	Pipeline *model.Pipeline
	Adapter  *inference.Adapter
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	app, err := newApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	info := app.Pipeline.Info()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      newRouter(app),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		fmt.Println("\nShutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Server shutdown error: %v\n", err)
		}
		close(done)
	}()

	fmt.Println("============================================")
	fmt.Println("Heart Disease Prediction")
	fmt.Println("============================================")
	fmt.Printf("Environment:    %s\n", cfg.Server.Env)
	fmt.Printf("Server:         http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("API:            http://localhost:%d/api/v1\n", cfg.Server.Port)
	fmt.Printf("Health:         http://localhost:%d/health\n", cfg.Server.Port)
	fmt.Printf("Model:          %s@%s (%s)\n", info.Name, info.Version, cfg.Model.Path)
	fmt.Printf("Rate limit:     %v (%d rps, burst %d)\n", cfg.RateLimit.Enabled, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	fmt.Printf("Trust proxy:    %v\n", cfg.Server.TrustProxy)
	fmt.Println("============================================")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}

	<-done
	fmt.Println("Server stopped")
}

// newApp loads the model and checks it against the form. The model is
// required; there is no degraded mode without it.
func newApp(cfg *config.Config) (*App, error) {
	pipeline, err := model.Load(cfg.Model.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	if err := inference.VerifyVocabulary(pipeline); err != nil {
		return nil, fmt.Errorf("model is incompatible with the form: %w", err)
	}

	info := pipeline.Info()
	metrics.RecordModelLoaded(info.Name, info.Version)

	return &App{
		Config:   cfg,
		Pipeline: pipeline,
		Adapter:  inference.NewAdapter(pipeline),
	}, nil
}

func newRouter(app *App) http.Handler {
	cfg := app.Config
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	if cfg.Server.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(secmiddleware.InputSanitizer(maxBodyBytes))
	r.Use(metrics.Middleware)

	var predictMiddleware []func(http.Handler) http.Handler
	if cfg.RateLimit.Enabled {
		limiter := secmiddleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		predictMiddleware = append(predictMiddleware, limiter.Middleware)
	}

	// Health checks
	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(app))
	r.Handle("/metrics", metrics.Handler())

	// JSON API
	r.Route("/api/v1", func(r chi.Router) {
		cors := secmiddleware.DefaultCORSConfig()
		cors.AllowedOrigins = cfg.CORS.AllowedOrigins
		r.Use(secmiddleware.CORS(cors))

		r.Get("/", infoHandler(app))
		r.Mount("/", api.NewHandler(app.Adapter, app.Pipeline.Info()).Routes(predictMiddleware...))
	})

	// Form page
	r.Mount("/", web.NewHandler(app.Adapter).Routes(predictMiddleware...))

	return r
}

func infoHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info := app.Pipeline.Info()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"name":    "Heart Disease Prediction",
			"version": "1.0.0",
			"model":   info.Name + "@" + info.Version,
			"endpoints": []string{
				"POST /api/v1/predict",
				"GET /api/v1/fields",
				"GET /api/v1/model",
			},
		})
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}

func readyHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"server": "ready",
		}

		if app.Pipeline != nil && app.Adapter != nil && !app.Pipeline.Info().ID.IsZero() {
			checks["model"] = "ready"
		} else {
			checks["model"] = "not loaded"
		}

		allReady := true
		for _, status := range checks {
			if status != "ready" {
				allReady = false
				break
			}
		}

		status := http.StatusOK
		if !allReady {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[bool]string{true: "ready", false: "not ready"}[allReady],
			"checks": checks,
		})
	}
}
