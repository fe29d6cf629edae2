// Package sessionlist реализует HTTP-обработчик для списка pro-сессий.
//
// Доступ к списку закрыт для пользователей без активной подписки:
// такой запрос завершается статусом 403 без обращения к данным сессий.
package sessionlist

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/opensoxlabs/opensox-api/internal/http/middlewarectx"
	"github.com/opensoxlabs/opensox-api/internal/http/response"
	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
	"github.com/opensoxlabs/opensox-api/internal/models"
	sessionservice "github.com/opensoxlabs/opensox-api/internal/services/session"
)

// Handler обрабатывает HTTP-запросы на чтение списка сессий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения сессий.
type Service interface {
	GetSessions(ctx context.Context, userUID string) ([]*models.Session, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список pro-сессий
// @Description Возвращает все сессии с темами, сначала самые свежие. Требует активную подписку.
// @Tags Sessions
// @Produce  json
// @Success 200 {object} map[string]any "Список сессий"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет активной подписки"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sessions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.list"

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

	res, err := h.service.GetSessions(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, sessionservice.ErrSubscriptionRequired) {
			log.Warn("access denied: no active subscription", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("active subscription required"))
			return
		}
		log.Error("failed to list sessions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list sessions"))
		return
	}

	log.Info("list sessions", slog.Int("count", len(res)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"count":    len(res),
		"sessions": res,
	}))
}
