// Package testimonialsubmit реализует HTTP-обработчик отправки отзыва.
//
// Отправить отзыв может только пользователь с активной подпиской;
// повторная отправка редактирует существующий отзыв и снимает его
// с публикации до новой модерации.
package testimonialsubmit

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/opensoxlabs/opensox-api/internal/http/middlewarectx"
	"github.com/opensoxlabs/opensox-api/internal/http/response"
	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
	"github.com/opensoxlabs/opensox-api/internal/models"
	sessionservice "github.com/opensoxlabs/opensox-api/internal/services/session"
)

// Handler управляет HTTP-запросами на отправку отзывов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики отправки отзыва.
type Service interface {
	Submit(ctx context.Context, userUID string, req models.DummyTestimonial) (*models.Testimonial, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Отправить отзыв
// @Description Создает или редактирует отзыв текущего пользователя. Требует активную подписку.
// @Tags Testimonials
// @Accept  json
// @Produce  json
// @Param request body models.DummyTestimonial true "Текст отзыва"
// @Success 200 {object} map[string]any "Отзыв сохранен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет активной подписки"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /testimonials [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.testimonial.submit"
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

	var req models.DummyTestimonial
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	testimonial, err := h.service.Submit(r.Context(), userUID, req)
	if err != nil {
		if errors.Is(err, sessionservice.ErrSubscriptionRequired) {
			log.Warn("access denied: no active subscription", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("active subscription required"))
			return
		}
		log.Error("failed to submit testimonial", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not submit testimonial"))
		return
	}

	log.Info("testimonial submitted", slog.String("id", testimonial.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"testimonial": testimonial,
	}))
}
