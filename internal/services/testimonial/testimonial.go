// Package testimonial содержит бизнес-логику отзывов: публичный список,
// отправка отзыва pro-пользователем и инвалидация кеша после записи.
package testimonial

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/opensoxlabs/opensox-api/internal/models"
	sessionservice "github.com/opensoxlabs/opensox-api/internal/services/session"
)

const listCacheKey = "testimonials:all"

// Repository определяет методы для работы с отзывами в хранилище.
type Repository interface {
	// ListApprovedTestimonials возвращает одобренные отзывы, свежие первыми.
	ListApprovedTestimonials(ctx context.Context) ([]*models.Testimonial, error)
	// GetTestimonialByUser возвращает отзыв пользователя или nil.
	GetTestimonialByUser(ctx context.Context, userUID string) (*models.Testimonial, error)
	// UpsertTestimonial сохраняет отзыв пользователя.
	UpsertTestimonial(ctx context.Context, userUID, name, content string) (*models.Testimonial, error)
}

// SubscriptionRepository проверяет право pro-пользователя на отправку отзыва.
type SubscriptionRepository interface {
	FindActiveSubscription(ctx context.Context, userUID string, now time.Time) (*models.Subscription, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) bool
	Set(ctx context.Context, key string, value any, expiration time.Duration) bool
	Del(ctx context.Context, key string) bool
}

// Service реализует операции с отзывами.
type Service struct {
	repo     Repository
	subs     SubscriptionRepository
	cache    Cache
	log      *slog.Logger
	cacheTTL time.Duration
}

// New создает новый экземпляр Service.
func New(repo Repository, subs SubscriptionRepository, cache Cache, log *slog.Logger, cacheTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		subs:     subs,
		cache:    cache,
		log:      log,
		cacheTTL: cacheTTL,
	}
}

// ListApproved возвращает одобренные отзывы для публичной страницы.
func (s *Service) ListApproved(ctx context.Context) ([]*models.Testimonial, error) {
	const op = "services.testimonial.ListApproved"

	var cached []*models.Testimonial
	if s.cache.Get(ctx, listCacheKey, &cached) {
		return cached, nil
	}

	result, err := s.repo.ListApprovedTestimonials(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Set(ctx, listCacheKey, result, s.cacheTTL)
	return result, nil
}

// My возвращает собственный отзыв пользователя для формы редактирования.
func (s *Service) My(ctx context.Context, userUID string) (*models.Testimonial, error) {
	const op = "services.testimonial.My"

	result, err := s.repo.GetTestimonialByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Submit сохраняет отзыв pro-пользователя и инвалидирует публичный список.
// Без активной подписки возвращает ErrSubscriptionRequired.
func (s *Service) Submit(ctx context.Context, userUID string, req models.DummyTestimonial) (*models.Testimonial, error) {
	const op = "services.testimonial.Submit"

	sub, err := s.subs.FindActiveSubscription(ctx, userUID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub == nil {
		s.log.Warn("testimonial submit denied: no active subscription",
			slog.String("op", op), slog.String("user_uid", userUID))
		return nil, fmt.Errorf("%s: %w", op, sessionservice.ErrSubscriptionRequired)
	}

	result, err := s.repo.UpsertTestimonial(ctx, userUID, req.Name, req.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("testimonial submitted", slog.String("user_uid", userUID), slog.String("id", result.ID))

	if !s.cache.Del(ctx, listCacheKey) {
		s.log.Warn("failed to invalidate testimonials cache")
	}
	return result, nil
}
