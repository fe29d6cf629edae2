package program

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/opensoxlabs/opensox-api/internal/models"
)

type RepoMock struct {
	mock.Mock
}

func (m *RepoMock) ListPrograms(ctx context.Context) ([]*models.Program, error) {
	args := m.Called(ctx)
	if progs, ok := args.Get(0).([]*models.Program); ok {
		return progs, args.Error(1)
	}
	return nil, args.Error(1)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) Get(ctx context.Context, key string, result any) bool {
	args := m.Called(ctx, key, result)
	return args.Bool(0)
}

func (m *CacheMock) Set(ctx context.Context, key string, value any, expiration time.Duration) bool {
	args := m.Called(ctx, key, value, expiration)
	return args.Bool(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func catalogue() []*models.Program {
	return []*models.Program{
		{ID: "1", Name: "Google Summer of Code", Description: "Global program for open source", Tags: []string{"global", "stipend"}},
		{ID: "2", Name: "Hacktoberfest", Description: "Month-long celebration", Tags: []string{"global", "swag"}},
		{ID: "3", Name: "Outreachy", Description: "Internships in open source", Tags: []string{"internship", "stipend"}},
	}
}

func TestList_NoFilters(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, discardLogger(), time.Hour)

	cache.On("Get", mock.Anything, "programs:all", mock.Anything).Return(false)
	repo.On("ListPrograms", mock.Anything).Return(catalogue(), nil)
	cache.On("Set", mock.Anything, "programs:all", mock.Anything, time.Hour).Return(true)

	got, err := svc.List(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestList_SearchMatchesNameAndDescription(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, discardLogger(), time.Hour)

	cache.On("Get", mock.Anything, "programs:all", mock.Anything).Return(false)
	repo.On("ListPrograms", mock.Anything).Return(catalogue(), nil)
	cache.On("Set", mock.Anything, "programs:all", mock.Anything, time.Hour).Return(true)

	// "open source" встречается только в описаниях.
	got, err := svc.List(context.Background(), "OPEN SOURCE", nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Google Summer of Code", got[0].Name)
	assert.Equal(t, "Outreachy", got[1].Name)
}

func TestList_TagIntersection(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, discardLogger(), time.Hour)

	cache.On("Get", mock.Anything, "programs:all", mock.Anything).Return(false)
	repo.On("ListPrograms", mock.Anything).Return(catalogue(), nil)
	cache.On("Set", mock.Anything, "programs:all", mock.Anything, time.Hour).Return(true)

	got, err := svc.List(context.Background(), "", []string{"global", "stipend"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Google Summer of Code", got[0].Name)
}

func TestList_CacheHitSkipsRepository(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, discardLogger(), time.Hour)

	cache.On("Get", mock.Anything, "programs:all", mock.Anything).
		Run(func(args mock.Arguments) {
			out := args.Get(2).(*[]*models.Program)
			*out = catalogue()
		}).Return(true)

	got, err := svc.List(context.Background(), "hackto", nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Hacktoberfest", got[0].Name)
	repo.AssertNotCalled(t, "ListPrograms", mock.Anything)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTags_DistinctSorted(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, discardLogger(), time.Hour)

	cache.On("Get", mock.Anything, "programs:tags", mock.Anything).Return(false)
	cache.On("Get", mock.Anything, "programs:all", mock.Anything).Return(false)
	repo.On("ListPrograms", mock.Anything).Return(catalogue(), nil)
	cache.On("Set", mock.Anything, "programs:all", mock.Anything, time.Hour).Return(true)
	cache.On("Set", mock.Anything, "programs:tags",
		[]string{"global", "internship", "stipend", "swag"}, time.Hour).Return(true)

	got, err := svc.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"global", "internship", "stipend", "swag"}, got)
	cache.AssertExpectations(t)
}

func TestList_RepositoryError(t *testing.T) {
	repo := new(RepoMock)
	cache := new(CacheMock)
	svc := New(repo, cache, discardLogger(), time.Hour)

	cache.On("Get", mock.Anything, "programs:all", mock.Anything).Return(false)
	repo.On("ListPrograms", mock.Anything).Return(nil, assert.AnError)

	_, err := svc.List(context.Background(), "", nil)
	require.Error(t, err)
}
