// Package programlist реализует HTTP-обработчик каталога open-source
// программ с фильтрацией по поиску и тегам.
package programlist

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/opensoxlabs/opensox-api/internal/http/response"
	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
	"github.com/opensoxlabs/opensox-api/internal/models"
)

// Handler обрабатывает HTTP-запросы каталога программ.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	List(ctx context.Context, search string, tags []string) ([]*models.Program, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Каталог open-source программ
// @Description Возвращает программы, отфильтрованные по подстроке поиска и тегам (через запятую).
// @Tags Programs
// @Produce  json
// @Param search query string false "Подстрока для поиска по названию и описанию"
// @Param tags query string false "Список тегов через запятую"
// @Success 200 {object} map[string]any "Список программ"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /programs [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.program.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	search := r.URL.Query().Get("search")
	var tags []string
	if raw := r.URL.Query().Get("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	res, err := h.service.List(r.Context(), search, tags)
	if err != nil {
		log.Error("failed to list programs", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list programs"))
		return
	}

	log.Info("list programs", slog.Int("count", len(res)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":    len(res),
		"programs": res,
	}))
}
