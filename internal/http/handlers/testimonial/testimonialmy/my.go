// Package testimonialmy реализует HTTP-обработчик для чтения
// собственного отзыва текущего пользователя.
package testimonialmy

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/opensoxlabs/opensox-api/internal/http/middlewarectx"
	"github.com/opensoxlabs/opensox-api/internal/http/response"
	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
	"github.com/opensoxlabs/opensox-api/internal/models"
)

// Handler обрабатывает HTTP-запросы собственного отзыва.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения отзыва пользователя.
type Service interface {
	My(ctx context.Context, userUID string) (*models.Testimonial, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отзыв текущего пользователя
// @Description Возвращает отзыв пользователя независимо от статуса модерации, либо null.
// @Tags Testimonials
// @Produce  json
// @Success 200 {object} map[string]any "Отзыв пользователя"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /testimonials/my [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.testimonial.my"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.My(r.Context(), userUID)
	if err != nil {
		log.Error("failed to get testimonial", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get testimonial"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"testimonial": res,
	}))
}
