// Package testimoniallist реализует HTTP-обработчик публичного списка
// одобренных отзывов.
package testimoniallist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/opensoxlabs/opensox-api/internal/http/response"
	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
	"github.com/opensoxlabs/opensox-api/internal/models"
)

// Handler обрабатывает HTTP-запросы списка отзывов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения отзывов.
type Service interface {
	ListApproved(ctx context.Context) ([]*models.Testimonial, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список одобренных отзывов
// @Description Возвращает отзывы, прошедшие модерацию. Доступно без авторизации.
// @Tags Testimonials
// @Produce  json
// @Success 200 {object} map[string]any "Список отзывов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /testimonials [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.testimonial.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	res, err := h.service.ListApproved(r.Context())
	if err != nil {
		log.Error("failed to list testimonials", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list testimonials"))
		return
	}

	log.Info("list testimonials", slog.Int("count", len(res)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":        len(res),
		"testimonials": res,
	}))
}
