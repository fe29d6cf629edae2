// Package health реализует HTTP-обработчик проверки готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/opensoxlabs/opensox-api/internal/http/response"
	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
)

// StorageChecker проверяет готовность базы данных.
type StorageChecker interface {
	CheckDatabaseReady(ctx context.Context) error
}

// CacheChecker проверяет доступность кеша.
type CacheChecker interface {
	Ping(ctx context.Context) bool
}

type Handler struct {
	log     *slog.Logger
	storage StorageChecker
	cache   CacheChecker
}

func New(log *slog.Logger, storage StorageChecker, cache CacheChecker) *Handler {
	return &Handler{
		log:     log,
		storage: storage,
		cache:   cache,
	}
}

// ServeHTTP возвращает 200, если база доступна. Недоступный кеш не
// считается отказом: сервис продолжает работать без него.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if err := h.storage.CheckDatabaseReady(r.Context()); err != nil {
		h.log.Error("database is not ready", slog.String("op", op), sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database is not ready"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": "ok",
		"cache":  h.cache.Ping(r.Context()),
	}))
}
