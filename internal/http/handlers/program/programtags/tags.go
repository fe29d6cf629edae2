// Package programtags реализует HTTP-обработчик списка тегов каталога.
package programtags

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/opensoxlabs/opensox-api/internal/http/response"
	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
)

// Handler обрабатывает HTTP-запросы списка тегов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики тегов каталога.
type Service interface {
	Tags(ctx context.Context) ([]string, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Теги каталога программ
// @Description Возвращает отсортированный список всех тегов без повторов.
// @Tags Programs
// @Produce  json
// @Success 200 {object} map[string]any "Список тегов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /programs/tags [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.program.tags"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.Tags(r.Context())
	if err != nil {
		log.Error("failed to list tags", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list tags"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"tags": res,
	}))
}
