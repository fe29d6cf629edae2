// Package exchange реализует HTTP-обработчик обмена профиля внешнего
// OAuth-провайдера на собственный JWT сервиса. Пользователь создаётся
// при первом входе.
package exchange

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/opensoxlabs/opensox-api/internal/http/response"
	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
)

// Request — профиль, полученный от OAuth-провайдера
type Request struct {
	Provider string `json:"provider" validate:"required,oneof=google github"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50"`
}

// Handler обрабатывает HTTP-запросы обмена OAuth-профиля на JWT.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service определяет методы бизнес-логики обмена OAuth-профиля.
type Service interface {
	ExchangeOAuth(ctx context.Context, provider, email, username string) (token, role string, err error)
}

// New создает новый экземпляр Handler с заданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обмен OAuth-профиля на JWT
// @Description Находит или создает пользователя по email и выдает JWT сервиса
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Профиль OAuth-провайдера"
// @Success 200 {object} map[string]any "JWT выдан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации данных"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /auth/exchange [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.exchange"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
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

	token, role, err := h.service.ExchangeOAuth(r.Context(), req.Provider, req.Email, req.Username)
	if err != nil {
		log.Error("oauth exchange failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to exchange oauth profile"))
		return
	}

	log.Info("oauth exchange success",
		slog.String("provider", req.Provider),
		slog.String("username", req.Username))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": token,
		"role":  role,
	}))
}
