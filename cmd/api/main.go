package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/backend"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/cache"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/checkout"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/config"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/domain"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/events"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/httpapi"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/promotion"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/session"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/internal/stock"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/pkg/logger"
	"github.com/DimitriDiciocio/RoyalBurgerWeb-sub001/pkg/metrics"
)

func main() {
	// .env is optional, real deployments configure through the environment
	_ = godotenv.Load()

	cfg := config.Load()
	lg := logger.New("checkout-api")
	ctx := context.Background()

	m := metrics.NewCheckoutMetrics("checkout_api")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	redisCache := cache.NewRedisCache(redisClient)

	backendClient := backend.New(cfg.BackendBaseURL, cfg.BackendTimeout, m)
	settings := backend.NewCachedSettings(backendClient, redisCache)
	promos := promotion.NewResolver(backendClient, cfg.BackendTimeout)
	stockValidator := stock.NewValidator(backendClient, cfg.BackendTimeout)
	publisher := events.NewPublisher(cfg.KafkaBrokers...)
	defer publisher.Close()

	deps := checkout.Deps{
		Settings:   settings,
		Balance:    backendClient,
		Promotions: promos,
		Stock:      stockValidator,
		Submitter:  backendClient,
		Events:     publisher,
		Metrics:    m,
	}

	store := session.NewStore(func(sessionID string, accountID int64, items []domain.CartItem) *checkout.Orchestrator {
		return checkout.NewOrchestrator(deps, sessionID, accountID, items)
	}, cfg.SessionTTL)
	defer store.Close()

	checkoutHandler := httpapi.NewCheckoutHandler(store, redisCache, settings, cfg.RequestTimeout)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(httpapi.RequestIDHeader)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
	r.Use(chimiddleware.Compress(5))

	r.Get("/health", checkoutHandler.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Route("/api/v1", checkoutHandler.Routes)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(r, "checkout-api"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info(ctx, "checkout api starting", "port", cfg.HTTPPort, "backend", cfg.BackendBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	lg.Info(ctx, "shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	lg.Info(ctx, "server exited")
}
