// Package subscription содержит бизнес-логику состояния подписки:
// ответ о статусе для клиента и активацию после успешного платежа.
package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
	"github.com/opensoxlabs/opensox-api/internal/models"
)

// statusCacheTTL короткий: активация после оплаты должна стать видимой
// клиенту в течение минуты даже без явной инвалидации.
const statusCacheTTL = time.Minute

// Repository определяет методы для работы с подписками в хранилище.
type Repository interface {
	// FindLatestSubscription возвращает последнюю подписку пользователя или nil.
	FindLatestSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	// UpsertActiveSubscription активирует или продлевает подписку.
	UpsertActiveSubscription(ctx context.Context, userUID string, planMonths int, startDate time.Time) (*models.Subscription, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) bool
	Set(ctx context.Context, key string, value any, expiration time.Duration) bool
	Del(ctx context.Context, key string) bool
}

// Service реализует операции над подпиской пользователя.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

func statusCacheKey(userUID string) string {
	return fmt.Sprintf("subscription:%s", userUID)
}

// Status возвращает текущее состояние подписки пользователя.
// Статус кешируется с коротким TTL и инвалидируется при активации.
func (s *Service) Status(ctx context.Context, userUID string) (*models.SubscriptionStatus, error) {
	const op = "services.subscription.Status"

	var cached models.SubscriptionStatus
	if s.cache.Get(ctx, statusCacheKey(userUID), &cached) {
		return &cached, nil
	}

	sub, err := s.repo.FindLatestSubscription(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	status := models.SubscriptionStatus{Status: models.SubscriptionStatusInactive}
	if sub != nil {
		status.Status = sub.Status
		status.EndDate = &sub.EndDate
		status.IsPro = sub.IsPro(time.Now().UTC())
		// Активная запись с истёкшей датой для клиента выглядит истёкшей
		if sub.Status == models.SubscriptionStatusActive && !status.IsPro {
			status.Status = models.SubscriptionStatusExpired
		}
	}

	s.cache.Set(ctx, statusCacheKey(userUID), status, statusCacheTTL)
	return &status, nil
}

// Activate активирует подписку после подтверждённого платежа и снимает
// закешированный статус, чтобы клиент сразу увидел доступ.
func (s *Service) Activate(ctx context.Context, userUID string, planMonths int) (*models.Subscription, error) {
	const op = "services.subscription.Activate"

	sub, err := s.repo.UpsertActiveSubscription(ctx, userUID, planMonths, time.Now().UTC())
	if err != nil {
		s.log.Error("failed to activate subscription",
			slog.String("op", op), slog.String("user_uid", userUID), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("subscription activated",
		slog.String("user_uid", userUID),
		slog.Int("plan_months", planMonths),
		slog.Time("end_date", sub.EndDate))

	if !s.cache.Del(ctx, statusCacheKey(userUID)) {
		s.log.Warn("failed to invalidate subscription status cache",
			slog.String("user_uid", userUID))
	}
	return sub, nil
}
