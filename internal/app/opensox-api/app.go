// Package opensoxapi собирает основное приложение: хранилище, кеш,
// платёжный провайдер, брокер уведомлений и HTTP-сервер.
package opensoxapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/opensoxlabs/opensox-api/internal/cache"
	"github.com/opensoxlabs/opensox-api/internal/config"
	"github.com/opensoxlabs/opensox-api/internal/lib/jwt"
	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
	"github.com/opensoxlabs/opensox-api/internal/migrations"
	"github.com/opensoxlabs/opensox-api/internal/paymentprovider"
	"github.com/opensoxlabs/opensox-api/internal/rabbitmq"
	authservice "github.com/opensoxlabs/opensox-api/internal/services/auth"
	paymentservice "github.com/opensoxlabs/opensox-api/internal/services/payment"
	programservice "github.com/opensoxlabs/opensox-api/internal/services/program"
	sessionservice "github.com/opensoxlabs/opensox-api/internal/services/session"
	subservice "github.com/opensoxlabs/opensox-api/internal/services/subscription"
	testimonialservice "github.com/opensoxlabs/opensox-api/internal/services/testimonial"
	"github.com/opensoxlabs/opensox-api/internal/storage"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache
	amqp   *amqp.Connection
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis := cache.New(cfg.RedisConnection, logger)

	// Брокер не обязателен: без него сервис работает, но не шлёт
	// событий воркеру уведомлений.
	var amqpConn *amqp.Connection
	var amqpCh *amqp.Channel
	if cfg.RabbitMQConnection != "" {
		amqpConn, err = rabbitmq.Connect(cfg.RabbitMQConnection, cfg.ConnectRetries, cfg.ConnectDelay)
		if err != nil {
			logger.Error("failed to connect to rabbitmq, events disabled", sl.Err(err))
		} else {
			amqpCh, err = rabbitmq.SetupChannel(amqpConn, rabbitmq.GetNotificationQueues())
			if err != nil {
				logger.Error("failed to setup rabbitmq channel, events disabled", sl.Err(err))
				amqpConn.Close()
				amqpConn = nil
			}
		}
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	providerClient := paymentprovider.NewClient(cfg.ProviderKeyID, cfg.ProviderKeySecret)

	authService := authservice.New(db, jwtMaker)
	sessionService := sessionservice.New(db, db, cacheRedis, logger, cfg.SessionsTTL)
	subscriptionService := subservice.New(db, cacheRedis, logger)
	testimonialService := testimonialservice.New(db, db, cacheRedis, logger, cfg.CatalogTTL)
	programService := programservice.New(db, cacheRedis, logger, cfg.CatalogTTL)
	paymentService := paymentservice.New(db, providerClient, subscriptionService,
		amqpCh, cfg.ProviderKeyID, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:         authService,
		Session:      sessionService,
		Subscription: subscriptionService,
		Testimonial:  testimonialService,
		Program:      programService,
		Payment:      paymentService,
		JWTMaker:     jwtMaker,
		Storage:      db,
		Cache:        cacheRedis,
	}, cfg.WebhookSecret)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		amqp:   amqpConn,
	}, nil
}

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
		if closeErr := a.cache.Close(); closeErr != nil {
			a.logger.Error("failed to close cache", sl.Err(closeErr))
		}
		if a.amqp != nil {
			if closeErr := a.amqp.Close(); closeErr != nil {
				a.logger.Error("failed to close rabbitmq connection", sl.Err(closeErr))
			}
		}
		a.db.DB.Close()
		return err
	}
}
