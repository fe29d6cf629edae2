// Package notificationsender собирает воркер уведомлений: брокер,
// SMTP-транспорт и сервис отправки писем.
package notificationsender

import (
	"context"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/opensoxlabs/opensox-api/internal/config"
	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
	"github.com/opensoxlabs/opensox-api/internal/lib/smtp"
	"github.com/opensoxlabs/opensox-api/internal/rabbitmq"
	senderservice "github.com/opensoxlabs/opensox-api/internal/services/sender"
	"github.com/opensoxlabs/opensox-api/internal/storage"
)

type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, cfg.ConnectRetries, cfg.ConnectDelay)
	if err != nil {
		return nil, err
	}

	queues := rabbitmq.GetNotificationQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	senderService := senderservice.New(db, transport, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderService,
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	err := rabbitmq.ConsumerMessage(ctx, a.ch, "notifications.subscription", a.senderService.SendSubscriptionActivated)
	if err != nil {
		a.logger.Error("failed to start notifications.subscription consumer", sl.Err(err))
		return err
	}

	<-ctx.Done()
	a.logger.Info("notification sender shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}

	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}

	return nil
}
