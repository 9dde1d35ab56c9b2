package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pizzeria-be/internal/address"
	"pizzeria-be/internal/auth"
	"pizzeria-be/internal/cart"
	"pizzeria-be/internal/catalog"
	"pizzeria-be/internal/config"
	"pizzeria-be/internal/customer"
	"pizzeria-be/internal/db"
	"pizzeria-be/internal/events"
	"pizzeria-be/internal/httpapi"
	"pizzeria-be/internal/logger"
	"pizzeria-be/internal/metrics"
	"pizzeria-be/internal/middleware"
	"pizzeria-be/internal/order"
	"pizzeria-be/internal/promotion"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	openDBFunc      = db.Open
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.L().Fatal("server exited with error", zap.Error(err))
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	database, err := openDBFunc(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	publisher := events.New(cfg.KafkaBrokers)
	defer publisher.Close()

	limiter := middleware.NewRateLimiter(cfg.InternalAPIKey)
	go limiter.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           newServer(cfg, database, rdb, publisher, limiter),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- startServerFunc(srv) }()
	log.Info("http server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newServer builds every service on top of the shared connections.
func newServer(cfg *config.Config, database *sql.DB, rdb *redis.Client, publisher events.Publisher, limiter *middleware.RateLimiter) http.Handler {
	checkoutMetrics := metrics.NewCheckout()

	catalogSvc := catalog.NewService(catalog.NewRepository(database))
	promotionSvc := promotion.NewService(promotion.NewRepository(database))
	customerSvc := customer.NewService(customer.NewRepository(database))

	cartSvc := cart.NewService(
		cart.NewRedisStore(rdb, cfg.CartTTL),
		catalogSvc,
		promotionSvc,
		customerSvc,
		cart.Settings{DeliveryFee: cfg.DeliveryFee, Location: cfg.StoreTimezone},
		checkoutMetrics,
	)

	orderSvc := order.NewService(
		order.NewRepository(database),
		cartSvc,
		publisher,
		order.Settings{
			StoreName:     cfg.StoreName,
			StoreWhatsApp: cfg.StoreWhatsApp,
			CashbackRate:  cfg.CashbackRate,
			Location:      cfg.StoreTimezone,
			Topic:         cfg.KafkaTopic,
		},
		checkoutMetrics,
	)

	return httpapi.NewRouter(httpapi.Deps{
		Catalog:      catalogSvc,
		Promotions:   promotionSvc,
		Customers:    customerSvc,
		Carts:        cartSvc,
		Orders:       orderSvc,
		Addresses:    address.NewClient(cfg.PostalCodeBaseURL),
		Auth:         auth.NewAuthenticator(cfg.JWTSecret, cfg.AdminPassHash),
		Metrics:      checkoutMetrics,
		Limiter:      limiter,
		CORSOrigin:   cfg.CORSOrigin,
		SecureCookie: cfg.AppEnv == "production",
	})
}
