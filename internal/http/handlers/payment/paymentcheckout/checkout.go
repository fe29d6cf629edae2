// Package paymentcheckout реализует HTTP-обработчик оформления платежа
// за подписку.
package paymentcheckout

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
	paymentservice "github.com/opensoxlabs/opensox-api/internal/services/payment"
)

// Handler управляет HTTP-запросами на оформление платежа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики оформления платежа.
type Service interface {
	CreateCheckout(ctx context.Context, userUID, planID string) (*paymentservice.Checkout, error)
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
// @Summary Оформить платеж за подписку
// @Description Создает заказ у платежного провайдера и возвращает параметры для оплаты на клиенте.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body models.DummyCheckout true "Выбранный план"
// @Success 200 {object} map[string]any "Параметры оплаты"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/checkout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkout"
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

	var req models.DummyCheckout
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

	checkout, err := h.service.CreateCheckout(r.Context(), userUID, req.PlanID)
	if err != nil {
		if errors.Is(err, paymentservice.ErrUnknownPlan) {
			log.Error("unknown plan", slog.String("plan_id", req.PlanID))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("unknown plan"))
			return
		}
		log.Error("failed to create checkout", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create checkout"))
		return
	}

	log.Info("checkout created", slog.String("user_uid", userUID), slog.String("plan_id", req.PlanID))
	render.JSON(w, r, response.OKWithData(checkout))
}
