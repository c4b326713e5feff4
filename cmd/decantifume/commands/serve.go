package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"decantifume-api/internal/auth"
	"decantifume-api/internal/client"
	"decantifume-api/internal/config"
	"decantifume-api/internal/event"
	"decantifume-api/internal/ratelimit"
	"decantifume-api/internal/repository"
	"decantifume-api/internal/server"
	"decantifume-api/internal/service"

	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
)

// forcedExitGrace is how long past the shutdown timeout the process waits
// before giving up on a clean exit.
const forcedExitGrace = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := openDB(cfg)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer closeDB(db)

	ctx := context.Background()

	publisher, closePublisher := newPublisher(cfg)
	defer closePublisher()

	limiter, closeLimiter, err := newLimiterStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()

	images, err := client.NewCloudinaryClient(&cfg.Cloudinary)
	if err != nil {
		return err
	}
	stripeClient := client.NewStripeClient(&cfg.Stripe)
	braintreeClient := client.NewBraintreeClient(&cfg.BrainTree)

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)

	tokens := auth.NewTokenIssuer(&cfg.Auth)

	services := server.Services{
		Auth:    service.NewAuthService(userRepo, tokens, cfg.BcryptSaltRounds),
		User:    service.NewUserService(userRepo, cfg.BcryptSaltRounds),
		Product: service.NewProductService(productRepo, images),
		Order:   service.NewOrderService(db, userRepo, productRepo, orderRepo, publisher),
		Payment: service.NewPaymentService(
			db,
			stripeClient,
			braintreeClient,
			orderRepo,
			webhookEventRepo,
			publisher,
			cfg.Stripe.Currency,
		),
		Wishlist: service.NewWishlistService(wishlistRepo, productRepo),
	}

	srv := server.NewServer(cfg, services, tokens, userRepo, limiter)

	serverAddr := cfg.Addr()
	slog.Info("starting HTTP server", "addr", serverAddr, "environment", cfg.Environment.Name)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	select {
	case err := <-serverErr:
		slog.Error("HTTP server error", "error", err)
		os.Exit(1)
	case sig := <-sigChan:
		slog.Info("signal received, starting graceful shutdown", "signal", sig.String())
	}

	forced := time.AfterFunc(cfg.HTTP.ShutdownTimeout+forcedExitGrace, func() {
		slog.Error("graceful shutdown timed out, forcing exit")
		os.Exit(1)
	})
	defer forced.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// newPublisher falls back to dropping events when RabbitMQ is not configured
// or unreachable.
func newPublisher(cfg *config.Config) (event.Publisher, func()) {
	if cfg.RabbitMQ.URL == "" {
		return event.NoopPublisher{}, func() {}
	}

	publisher, err := event.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		slog.Warn("rabbitmq unavailable, order events disabled", "error", err)
		return event.NoopPublisher{}, func() {}
	}

	return publisher, func() {
		if err := publisher.Close(); err != nil {
			slog.Warn("close rabbitmq publisher", "error", err)
		}
	}
}

// newLimiterStore returns nil when Redis is not configured, which makes the
// server use its in-memory limiter.
func newLimiterStore(ctx context.Context, cfg *config.Config) (echomw.RateLimiterStore, func(), error) {
	if cfg.Redis.URL == "" {
		return nil, func() {}, nil
	}

	redisClient, err := ratelimit.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}

	store := ratelimit.NewRedisStore(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	return store, func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("close redis", "error", err)
		}
	}, nil
}
