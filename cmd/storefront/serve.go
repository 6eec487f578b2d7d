package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/dedup"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/payments"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/pkg/config"
	pkgdb "github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/events"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Load()
	logger := bootLogger(cfg)

	if err := config.Require(cfg.ServeRequirements()); err != nil {
		return err
	}

	db, err := bootDB(cfg)
	if err != nil {
		return err
	}
	defer pkgdb.Close(db)

	r := &repo.GormRepo{DB: db}
	ready := []func(context.Context) error{func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			return err
		}
		defer producer.Close()
		publisher = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, domain events are dropped")
	}

	var deduper dedup.Deduper = dedup.Nop{}
	if cfg.RedisAddr != "" {
		rd := dedup.NewRedis(cfg.RedisAddr)
		defer rd.Close()
		deduper = rd
		ready = append(ready, rd.Ping)
	}

	catalog := &service.CatalogService{Repo: r}
	if cfg.MediaURL != "" {
		catalog.Thumbs = storage.Static{BaseURL: cfg.MediaURL}
	}
	idx, err := bootIndex(cfg)
	if err != nil {
		return err
	}
	if idx != nil {
		catalog.Indexer = idx
		catalog.Searcher = idx
		ready = append(ready, idx.Ping)
	}
	bucket, err := bootBucket(ctx, cfg)
	if err != nil {
		return err
	}
	if bucket != nil {
		catalog.Thumbs = bucket
	}

	processor := payments.NewStripeProcessor(cfg.StripeAPIKey, cfg.StripeWebhookSecret)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORS())
	e.Use(csrf.Middleware(csrf.Config{
		Secure:    strings.HasPrefix(cfg.PublicBaseURL, "https://"),
		SkipPaths: []string{"/store/stripe-webhook", "/metrics", "/health/live", "/health/ready"},
	}))

	httpserver.Register(e, &httpserver.Deps{
		CatalogHandler: &httpserver.CatalogHTTP{Svc: catalog},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Events: publisher}},
		CheckoutHandler: &httpserver.CheckoutHTTP{
			Svc: &service.CheckoutService{Repo: r, Payments: processor},
			Webhooks: &service.WebhookService{
				Repo:     r,
				Payments: processor,
				Dedup:    deduper,
				Events:   publisher,
			},
			PublicBaseURL: cfg.PublicBaseURL,
		},
		AccountHandler: &httpserver.AccountHTTP{Svc: &service.AccountService{Repo: r, JWTSecret: cfg.JWTAccessSecret}},
		JWTSecret:      cfg.JWTAccessSecret,
		Ready: func(ctx context.Context) error {
			for _, check := range ready {
				if err := check(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("storefront stopped")
	return nil
}
