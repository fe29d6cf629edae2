package subscription

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

type RepoMock struct{ mock.Mock }

func (m *RepoMock) FindLatestSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}
func (m *RepoMock) UpsertActiveSubscription(ctx context.Context, userUID string, planMonths int, startDate time.Time) (*models.Subscription, error) {
	args := m.Called(ctx, userUID, planMonths, startDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Get(ctx context.Context, key string, result any) bool {
	return m.Called(ctx, key, result).Bool(0)
}
func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) bool {
	return m.Called(ctx, key, value, expiration).Bool(0)
}
func (m *CacheMock) Del(ctx context.Context, key string) bool {
	return m.Called(ctx, key).Bool(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestStatus_NoSubscription(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)

	cache.On("Get", mock.Anything, "subscription:u1", mock.Anything).Return(false).Once()
	repo.On("FindLatestSubscription", mock.Anything, "u1").Return(nil, nil).Once()
	cache.On("Set", mock.Anything, "subscription:u1", mock.Anything, statusCacheTTL).Return(true).Once()

	svc := New(repo, cache, newNoopLogger())
	status, err := svc.Status(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusInactive, status.Status)
	assert.False(t, status.IsPro)
	assert.Nil(t, status.EndDate)
}

func TestStatus_ActiveSubscription(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)

	end := time.Now().AddDate(0, 1, 0)
	cache.On("Get", mock.Anything, "subscription:u1", mock.Anything).Return(false).Once()
	repo.On("FindLatestSubscription", mock.Anything, "u1").Return(&models.Subscription{
		UserUID: "u1",
		Status:  models.SubscriptionStatusActive,
		EndDate: end,
	}, nil).Once()
	cache.On("Set", mock.Anything, "subscription:u1", mock.Anything, statusCacheTTL).Return(true).Once()

	svc := New(repo, cache, newNoopLogger())
	status, err := svc.Status(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, status.Status)
	assert.True(t, status.IsPro)
}

func TestStatus_ExpiredActiveRow(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)

	// Запись active с истёкшей датой не даёт доступа
	end := time.Now().AddDate(0, 0, -1)
	cache.On("Get", mock.Anything, "subscription:u1", mock.Anything).Return(false).Once()
	repo.On("FindLatestSubscription", mock.Anything, "u1").Return(&models.Subscription{
		UserUID: "u1",
		Status:  models.SubscriptionStatusActive,
		EndDate: end,
	}, nil).Once()
	cache.On("Set", mock.Anything, "subscription:u1", mock.Anything, statusCacheTTL).Return(true).Once()

	svc := New(repo, cache, newNoopLogger())
	status, err := svc.Status(context.Background(), "u1")

	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusExpired, status.Status)
	assert.False(t, status.IsPro)
}

func TestStatus_CacheHit(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)

	cache.On("Get", mock.Anything, "subscription:u1", mock.Anything).Return(true).Once()

	svc := New(repo, cache, newNoopLogger())
	_, err := svc.Status(context.Background(), "u1")

	require.NoError(t, err)
	repo.AssertNotCalled(t, "FindLatestSubscription", mock.Anything, mock.Anything)
}

func TestActivate_InvalidatesStatusCache(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)

	sub := &models.Subscription{
		UserUID: "u1",
		Status:  models.SubscriptionStatusActive,
		EndDate: time.Now().AddDate(0, 1, 0),
	}
	repo.On("UpsertActiveSubscription", mock.Anything, "u1", 1, mock.Anything).Return(sub, nil).Once()
	cache.On("Del", mock.Anything, "subscription:u1").Return(true).Once()

	svc := New(repo, cache, newNoopLogger())
	got, err := svc.Activate(context.Background(), "u1", 1)

	require.NoError(t, err)
	assert.Equal(t, sub, got)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestActivate_RepoError(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)

	dbErr := errors.New("db down")
	repo.On("UpsertActiveSubscription", mock.Anything, "u1", 12, mock.Anything).Return(nil, dbErr).Once()

	svc := New(repo, cache, newNoopLogger())
	_, err := svc.Activate(context.Background(), "u1", 12)

	require.Error(t, err)
	assert.True(t, errors.Is(err, dbErr))
	cache.AssertNotCalled(t, "Del", mock.Anything, mock.Anything)
}
