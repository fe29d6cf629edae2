package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/opensoxlabs/opensox-api/internal/models"
)

type SubsMock struct{ mock.Mock }

func (m *SubsMock) FindActiveSubscription(ctx context.Context, userUID string, now time.Time) (*models.Subscription, error) {
	args := m.Called(ctx, userUID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

type SessionsMock struct{ mock.Mock }

func (m *SessionsMock) ListSessions(ctx context.Context) ([]*models.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Session), args.Error(1)
}
func (m *SessionsMock) CreateSession(ctx context.Context, session models.Session) (string, error) {
	args := m.Called(ctx, session)
	return args.String(0), args.Error(1)
}
func (m *SessionsMock) UpdateSession(ctx context.Context, session models.Session) (int, error) {
	args := m.Called(ctx, session)
	return args.Int(0), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) bool {
	args := m.Called(ctx, key, result)
	return args.Bool(0)
}
func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) bool {
	args := m.Called(ctx, key, value, expiration)
	return args.Bool(0)
}
func (m *CacheMock) DelPattern(ctx context.Context, pattern string) bool {
	args := m.Called(ctx, pattern)
	return args.Bool(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func activeSub(userUID string) *models.Subscription {
	return &models.Subscription{
		UserUID:   userUID,
		Status:    models.SubscriptionStatusActive,
		StartDate: time.Now().AddDate(0, -1, 0),
		EndDate:   time.Now().AddDate(0, 1, 0),
	}
}

func sampleSessions() []*models.Session {
	return []*models.Session{
		{
			ID:          "s2",
			Title:       "Reading large codebases",
			VideoURL:    "https://www.youtube.com/watch?v=bbb",
			SessionDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:          "s1",
			Title:       "First contribution",
			VideoURL:    "https://www.youtube.com/watch?v=aaa",
			SessionDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Topics: []models.SessionTopic{
				{ID: "t1", Topic: "intro", SortOrder: 1},
				{ID: "t2", Topic: "picking an issue", SortOrder: 2},
			},
		},
	}
}

func TestGetSessions_NoSubscription(t *testing.T) {
	subs := new(SubsMock)
	sessions := new(SessionsMock)
	cache := new(CacheMock)

	subs.On("FindActiveSubscription", mock.Anything, "u1", mock.Anything).Return(nil, nil).Once()

	svc := New(subs, sessions, cache, newNoopLogger(), time.Minute)
	res, err := svc.GetSessions(context.Background(), "u1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSubscriptionRequired))
	assert.Nil(t, res)

	// Запрос сессий не должен выполняться без права доступа
	sessions.AssertNotCalled(t, "ListSessions", mock.Anything)
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	subs.AssertExpectations(t)
}

func TestGetSessions_SubscriptionLookupError(t *testing.T) {
	subs := new(SubsMock)
	sessions := new(SessionsMock)
	cache := new(CacheMock)

	dbErr := errors.New("connection refused")
	subs.On("FindActiveSubscription", mock.Anything, "u1", mock.Anything).Return(nil, dbErr).Once()

	svc := New(subs, sessions, cache, newNoopLogger(), time.Minute)
	_, err := svc.GetSessions(context.Background(), "u1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, dbErr))
	assert.False(t, errors.Is(err, ErrSubscriptionRequired))
	sessions.AssertNotCalled(t, "ListSessions", mock.Anything)
}

func TestGetSessions_ActiveSubscription(t *testing.T) {
	subs := new(SubsMock)
	sessions := new(SessionsMock)
	cache := new(CacheMock)

	expected := sampleSessions()
	subs.On("FindActiveSubscription", mock.Anything, "u1", mock.Anything).Return(activeSub("u1"), nil).Once()
	cache.On("Get", mock.Anything, "sessions:all", mock.Anything).Return(false).Once()
	sessions.On("ListSessions", mock.Anything).Return(expected, nil).Once()
	cache.On("Set", mock.Anything, "sessions:all", expected, time.Minute).Return(true).Once()

	svc := New(subs, sessions, cache, newNoopLogger(), time.Minute)
	res, err := svc.GetSessions(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, res, 2)

	// Сессии по дате по убыванию
	assert.Equal(t, "s2", res[0].ID)
	assert.Equal(t, "s1", res[1].ID)
	assert.False(t, res[0].SessionDate.Before(res[1].SessionDate))

	// Темы внутри сессии по порядку по возрастанию
	topics := res[1].Topics
	require.Len(t, topics, 2)
	assert.LessOrEqual(t, topics[0].SortOrder, topics[1].SortOrder)

	subs.AssertExpectations(t)
	sessions.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestGetSessions_CacheHitSkipsStore(t *testing.T) {
	subs := new(SubsMock)
	sessions := new(SessionsMock)
	cache := new(CacheMock)

	subs.On("FindActiveSubscription", mock.Anything, "u1", mock.Anything).Return(activeSub("u1"), nil).Once()
	cache.On("Get", mock.Anything, "sessions:all", mock.Anything).Return(true).Once()

	svc := New(subs, sessions, cache, newNoopLogger(), time.Minute)
	_, err := svc.GetSessions(context.Background(), "u1")

	require.NoError(t, err)
	sessions.AssertNotCalled(t, "ListSessions", mock.Anything)
}

func TestGetSessions_AuthCheckedOnEveryCall(t *testing.T) {
	subs := new(SubsMock)
	sessions := new(SessionsMock)
	cache := new(CacheMock)

	// Проверка подписки выполняется при каждом вызове, даже при попадании в кеш
	subs.On("FindActiveSubscription", mock.Anything, "u1", mock.Anything).Return(activeSub("u1"), nil).Twice()
	cache.On("Get", mock.Anything, "sessions:all", mock.Anything).Return(true).Twice()

	svc := New(subs, sessions, cache, newNoopLogger(), time.Minute)
	_, err := svc.GetSessions(context.Background(), "u1")
	require.NoError(t, err)
	_, err = svc.GetSessions(context.Background(), "u1")
	require.NoError(t, err)

	subs.AssertExpectations(t)
}

func TestGetSessions_ListError(t *testing.T) {
	subs := new(SubsMock)
	sessions := new(SessionsMock)
	cache := new(CacheMock)

	dbErr := errors.New("db error")
	subs.On("FindActiveSubscription", mock.Anything, "u1", mock.Anything).Return(activeSub("u1"), nil).Once()
	cache.On("Get", mock.Anything, "sessions:all", mock.Anything).Return(false).Once()
	sessions.On("ListSessions", mock.Anything).Return(nil, dbErr).Once()

	svc := New(subs, sessions, cache, newNoopLogger(), time.Minute)
	_, err := svc.GetSessions(context.Background(), "u1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, dbErr))
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateSession_InvalidatesCache(t *testing.T) {
	subs := new(SubsMock)
	sessions := new(SessionsMock)
	cache := new(CacheMock)

	req := models.DummySession{
		Title:       "New session",
		VideoURL:    "https://www.youtube.com/watch?v=ccc",
		SessionDate: "2024-02-10",
		Topics: []models.DummySessionTopic{
			{Topic: "later topic", SortOrder: 2},
			{Topic: "first topic", SortOrder: 1},
		},
	}

	sessions.On("CreateSession", mock.Anything, mock.MatchedBy(func(s models.Session) bool {
		// Темы отсортированы уже на записи
		return len(s.Topics) == 2 && s.Topics[0].SortOrder == 1 && s.Topics[1].SortOrder == 2
	})).Return("new-id", nil).Once()
	cache.On("DelPattern", mock.Anything, "sessions:*").Return(true).Once()

	svc := New(subs, sessions, cache, newNoopLogger(), time.Minute)
	id, err := svc.CreateSession(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "new-id", id)
	sessions.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCreateSession_InvalidDate(t *testing.T) {
	svc := New(new(SubsMock), new(SessionsMock), new(CacheMock), newNoopLogger(), time.Minute)

	_, err := svc.CreateSession(context.Background(), models.DummySession{
		Title:       "Bad",
		VideoURL:    "https://example.com/v",
		SessionDate: "10-02-2024",
	})
	assert.Error(t, err)
}

func TestUpdateSession_NotFound(t *testing.T) {
	subs := new(SubsMock)
	sessions := new(SessionsMock)
	cache := new(CacheMock)

	sessions.On("UpdateSession", mock.Anything, mock.Anything).Return(0, nil).Once()

	svc := New(subs, sessions, cache, newNoopLogger(), time.Minute)
	err := svc.UpdateSession(context.Background(), "missing", models.DummySession{
		Title:       "t",
		VideoURL:    "https://example.com/v",
		SessionDate: "2024-02-10",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	cache.AssertNotCalled(t, "DelPattern", mock.Anything, mock.Anything)
}
