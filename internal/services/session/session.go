// Package session содержит бизнес-логику закрытого раздела еженедельных
// pro-сессий: проверку права доступа перед чтением и административные
// операции с инвалидацией кеша.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
	"github.com/opensoxlabs/opensox-api/internal/models"
)

// ErrSubscriptionRequired возвращается, когда у пользователя нет активной
// неистёкшей подписки. Транспортный слой отображает её в 403, все прочие
// ошибки — в 500.
var ErrSubscriptionRequired = errors.New("active subscription required to access sessions")

// ErrSessionNotFound возвращается при обновлении несуществующей сессии.
var ErrSessionNotFound = errors.New("session not found")

const sessionsCacheKey = "sessions:all"

// SubscriptionRepository определяет проверку права доступа в хранилище.
type SubscriptionRepository interface {
	// FindActiveSubscription возвращает активную неистёкшую подписку или nil.
	FindActiveSubscription(ctx context.Context, userUID string, now time.Time) (*models.Subscription, error)
}

// SessionRepository определяет методы для работы с сессиями в хранилище.
type SessionRepository interface {
	// ListSessions возвращает все сессии с темами в контрактном порядке.
	ListSessions(ctx context.Context) ([]*models.Session, error)
	// CreateSession добавляет новую сессию и возвращает её ID.
	CreateSession(ctx context.Context, session models.Session) (string, error)
	// UpdateSession обновляет сессию, возвращает количество изменённых записей.
	UpdateSession(ctx context.Context, session models.Session) (int, error)
}

// Cache описывает методы для кэширования данных. Операции не возвращают
// ошибок: отказ кеша равнозначен промаху.
type Cache interface {
	Get(ctx context.Context, key string, result any) bool
	Set(ctx context.Context, key string, value any, expiration time.Duration) bool
	DelPattern(ctx context.Context, pattern string) bool
}

// Service реализует закрытый доступ к сессиям.
type Service struct {
	subs     SubscriptionRepository
	sessions SessionRepository
	cache    Cache
	log      *slog.Logger
	cacheTTL time.Duration
}

// New создает новый экземпляр Service.
func New(subs SubscriptionRepository, sessions SessionRepository, cache Cache, log *slog.Logger, cacheTTL time.Duration) *Service {
	return &Service{
		subs:     subs,
		sessions: sessions,
		cache:    cache,
		log:      log,
		cacheTTL: cacheTTL,
	}
}

// GetSessions возвращает все сессии с темами для пользователя с активной
// подпиской. Проверка подписки выполняется при каждом вызове и никогда не
// кешируется; кешируется только сам список сессий. При отсутствии права
// доступа запрос сессий не выполняется, ошибка логируется и пробрасывается
// наверх — если вызов идёт внутри транзакции, она обязана откатиться.
func (s *Service) GetSessions(ctx context.Context, userUID string) ([]*models.Session, error) {
	const op = "services.session.GetSessions"

	sub, err := s.subs.FindActiveSubscription(ctx, userUID, time.Now().UTC())
	if err != nil {
		s.log.Error("subscription lookup failed",
			slog.String("op", op), slog.String("user_uid", userUID), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if sub == nil {
		s.log.Warn("access denied: no active subscription",
			slog.String("op", op), slog.String("user_uid", userUID))
		return nil, fmt.Errorf("%s: %w", op, ErrSubscriptionRequired)
	}

	var cached []*models.Session
	if s.cache.Get(ctx, sessionsCacheKey, &cached) {
		return cached, nil
	}

	result, err := s.sessions.ListSessions(ctx)
	if err != nil {
		s.log.Error("failed to list sessions",
			slog.String("op", op), slog.String("user_uid", userUID), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !s.cache.Set(ctx, sessionsCacheKey, result, s.cacheTTL) {
		s.log.Debug("sessions list was not cached", slog.String("op", op))
	}
	return result, nil
}

// CreateSession создаёт сессию (административная операция) и инвалидирует
// кеш списков.
func (s *Service) CreateSession(ctx context.Context, req models.DummySession) (string, error) {
	const op = "services.session.CreateSession"

	session, err := sessionFromRequest(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.sessions.CreateSession(ctx, session)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("created new session", slog.String("id", id))
	s.invalidate(ctx)
	return id, nil
}

// UpdateSession обновляет сессию и её темы, затем инвалидирует кеш списков.
func (s *Service) UpdateSession(ctx context.Context, id string, req models.DummySession) error {
	const op = "services.session.UpdateSession"

	session, err := sessionFromRequest(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	session.ID = id

	count, err := s.sessions.UpdateSession(ctx, session)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", op, ErrSessionNotFound)
	}

	s.log.Info("updated session", slog.String("id", id))
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if !s.cache.DelPattern(ctx, "sessions:*") {
		s.log.Warn("failed to invalidate sessions cache")
	}
}

func sessionFromRequest(req models.DummySession) (models.Session, error) {
	sessionDate, err := time.Parse("2006-01-02", req.SessionDate)
	if err != nil {
		return models.Session{}, fmt.Errorf("invalid session date: %w", err)
	}

	var description *string
	if req.Description != "" {
		description = &req.Description
	}

	topics := make([]models.SessionTopic, 0, len(req.Topics))
	for _, t := range req.Topics {
		topics = append(topics, models.SessionTopic{
			Timestamp: t.Timestamp,
			Topic:     t.Topic,
			SortOrder: t.SortOrder,
		})
	}
	// Порядок тем детерминирован уже на записи
	sort.SliceStable(topics, func(i, j int) bool { return topics[i].SortOrder < topics[j].SortOrder })

	return models.Session{
		Title:       req.Title,
		Description: description,
		VideoURL:    req.VideoURL,
		SessionDate: sessionDate,
		Topics:      topics,
	}, nil
}
