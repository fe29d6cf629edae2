// Package program содержит логику каталога open-source программ:
// закешированный полный список с фильтрацией по поиску и тегам.
package program

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/opensoxlabs/opensox-api/internal/models"
)

const (
	listCacheKey = "programs:all"
	tagsCacheKey = "programs:tags"
)

// Repository определяет методы для работы с каталогом в хранилище.
type Repository interface {
	// ListPrograms возвращает весь каталог по алфавиту.
	ListPrograms(ctx context.Context) ([]*models.Program, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) bool
	Set(ctx context.Context, key string, value any, expiration time.Duration) bool
}

// Service реализует чтение каталога программ.
type Service struct {
	repo     Repository
	cache    Cache
	log      *slog.Logger
	cacheTTL time.Duration
}

// New создает новый экземпляр Service.
func New(repo Repository, cache Cache, log *slog.Logger, cacheTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		log:      log,
		cacheTTL: cacheTTL,
	}
}

// List возвращает программы, отфильтрованные по подстроке поиска и тегам.
// Каталог небольшой: фильтрация выполняется в памяти поверх
// закешированного полного списка.
func (s *Service) List(ctx context.Context, search string, tags []string) ([]*models.Program, error) {
	const op = "services.program.List"

	all, err := s.loadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	search = strings.ToLower(strings.TrimSpace(search))
	result := make([]*models.Program, 0, len(all))
	for _, p := range all {
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if !hasAllTags(p.Tags, tags) {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

// Tags возвращает отсортированный список всех тегов каталога без повторов.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	const op = "services.program.Tags"

	var cached []string
	if s.cache.Get(ctx, tagsCacheKey, &cached) {
		return cached, nil
	}

	all, err := s.loadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	seen := make(map[string]struct{})
	var tags []string
	for _, p := range all {
		for _, tag := range p.Tags {
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				tags = append(tags, tag)
			}
		}
	}
	sort.Strings(tags)

	s.cache.Set(ctx, tagsCacheKey, tags, s.cacheTTL)
	return tags, nil
}

func (s *Service) loadAll(ctx context.Context) ([]*models.Program, error) {
	var cached []*models.Program
	if s.cache.Get(ctx, listCacheKey, &cached) {
		return cached, nil
	}

	all, err := s.repo.ListPrograms(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, listCacheKey, all, s.cacheTTL)
	return all, nil
}

func hasAllTags(programTags, wanted []string) bool {
	for _, w := range wanted {
		found := false
		for _, t := range programTags {
			if strings.EqualFold(t, w) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
