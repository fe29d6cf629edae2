// Package sender содержит воркер уведомлений: читает события активации
// подписки из очереди и отправляет письма по SMTP.
package sender

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
	"github.com/opensoxlabs/opensox-api/internal/lib/smtp"
	"github.com/opensoxlabs/opensox-api/internal/models"
)

// SubscriptionActivatedEvent сообщение из очереди notifications.subscription.
type SubscriptionActivatedEvent struct {
	UserUID string    `json:"user_uid"`
	PlanID  string    `json:"plan_id"`
	EndDate time.Time `json:"end_date"`
}

// UserRepository отдаёт пользователя для подстановки адреса и имени в письмо.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Service отправляет письма об активации подписки.
type Service struct {
	users     UserRepository
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		users:     users,
		transport: transport,
		log:       log,
	}
}

// SendSubscriptionActivated обрабатывает сообщение из очереди: находит
// пользователя и шлёт письмо с подтверждением подписки.
func (s *Service) SendSubscriptionActivated(body []byte) error {
	const op = "services.sender.SendSubscriptionActivated"

	var event SubscriptionActivatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.GetUser(context.Background(), event.UserUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		// Пользователь удалён: письмо отправлять некому, сообщение подтверждаем.
		s.log.Warn("activation event for unknown user", slog.String("user_uid", event.UserUID))
		return nil
	}

	subject := "Your Opensox Pro subscription is active"
	bodyText := fmt.Sprintf(
		"Hi %s!\n\nYour Opensox Pro subscription (%s plan) is now active until %s.\n\nEnjoy the weekly sessions.",
		user.Username, event.PlanID, event.EndDate.Format("02 Jan 2006"))

	return s.sendEmail([]string{user.Email}, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.From()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(from); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", from), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.Any("to", to))
	return nil
}
