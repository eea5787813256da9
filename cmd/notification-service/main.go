package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/orderprocessing/order-system/notification-service/config"
	"github.com/orderprocessing/order-system/notification-service/handlers"
	"github.com/orderprocessing/order-system/shared/telemetry"
)

func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	deps, err := config.BuildDependencies(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to build dependencies: %v", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			deps.Logger.Errorw("error closing dependencies", "error", err)
		}
	}()

	deps.Logger.Infow("starting service", "env", cfg.Env, "port", cfg.Port, "bus_driver", cfg.Bus.Driver)

	subCtx, stopSubscriber := context.WithCancel(ctx)
	defer stopSubscriber()

	go func() {
		if err := deps.EventSubscriber.Subscribe(subCtx, deps.EventHandler); err != nil {
			deps.Logger.Errorw("event subscriber stopped", "error", err)
		}
	}()

	go deps.Janitor.Run(subCtx)

	router := setupRouter(deps)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	deps.Logger.Infow("shutting down")
	stopSubscriber()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	deps.Logger.Infow("stopped")
}

func setupRouter(deps *config.Dependencies) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	if deps.Telemetry != nil {
		r.Use(telemetry.Middleware(deps.Telemetry))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Handle("/metrics", handlers.NewMetricsHandler())

	return r
}
