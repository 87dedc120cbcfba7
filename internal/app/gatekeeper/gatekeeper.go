// Package gatekeeper собирает приложение: хранилище, кеш, брокер,
// сервисы и HTTP-сервер с graceful shutdown.
package gatekeeper

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/billing"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/cache"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/config"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/gate"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/jwt"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/migrations"
	authservice "github.com/magabrotheeeer/saas-gatekeeper/internal/services/auth"
	checkoutservice "github.com/magabrotheeeer/saas-gatekeeper/internal/services/checkout"
	identityservice "github.com/magabrotheeeer/saas-gatekeeper/internal/services/identity"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/services/reconcile"
	subservice "github.com/magabrotheeeer/saas-gatekeeper/internal/services/subscription"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и ресурсы приложения.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *repository.Storage
	cache    *cache.Cache
	amqpConn *amqp.Connection
}

// New собирает приложение из конфигурации: подключает хранилище,
// применяет миграции, поднимает кеш и брокер, строит сервисы и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	amqpConn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		return nil, err
	}
	amqpChannel, err := amqpConn.Channel()
	if err != nil {
		return nil, err
	}
	if err = rabbitmq.SetupExchange(amqpChannel); err != nil {
		return nil, err
	}

	tokenMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	billingClient := billing.NewClient(cfg.Billing.APIURL, cfg.Billing.SecretKey, cfg.Billing.Timeout)

	identityService := identityservice.New(tokenMaker, db, logger)
	authService := authservice.New(db, tokenMaker, logger)
	subscriptionService := subservice.New(db, cacheRedis, logger)
	checkoutService := checkoutservice.New(billingClient, subscriptionService, logger,
		cfg.Billing.SuccessURL, cfg.Billing.ReturnURL)
	accessGate := gate.New(identityService, logger)
	reconcilePoller := reconcile.New(subscriptionService, logger,
		reconcile.DefaultInterval, reconcile.DefaultMaxAttempts)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Identity:      identityService,
		Auth:          authService,
		Subscription:  subscriptionService,
		Checkout:      checkoutService,
		Gate:          accessGate,
		Reconcile:     reconcilePoller,
		Storage:       db,
		AmqpChannel:   amqpChannel,
		WebhookSecret: cfg.Billing.WebhookSecret,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:   srv,
		logger:   logger,
		db:       db,
		cache:    cacheRedis,
		amqpConn: amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и блокируется до отмены контекста либо
// ошибки сервера. При отмене выполняет graceful shutdown и закрывает
// соединения с хранилищем и брокером.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		a.amqpConn.Close()
		return err
	}
}
