// Package paymentwebhook реализует HTTP-обработчик вебхуков платёжного
// провайдера. Подпись проверяется по сырому телу запроса до разбора JSON.
package paymentwebhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/opensoxlabs/opensox-api/internal/http/response"
	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
	"github.com/opensoxlabs/opensox-api/internal/paymentprovider"
)

// SignatureHeader заголовок с HMAC-подписью тела вебхука.
const SignatureHeader = "X-Webhook-Signature"

// Handler управляет HTTP-запросами вебхуков провайдера.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

// Service описывает интерфейс бизнес-логики обработки вебхука.
type Service interface {
	HandleWebhook(ctx context.Context, event paymentprovider.WebhookEvent) error
}

// New создает новый Handler с переданными логгером, сервисом и секретом вебхука.
func New(log *slog.Logger, service Service, webhookSecret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: webhookSecret,
	}
}

// ServeHTTP godoc
// @Summary Вебхук платежного провайдера
// @Description Принимает события платежей. Запросы с неверной подписью отклоняются.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param X-Webhook-Signature header string true "HMAC-SHA256 подпись тела"
// @Success 200 {object} map[string]any "Событие обработано"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверная подпись"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	signature := r.Header.Get(SignatureHeader)
	if !paymentprovider.VerifyWebhookSignature(body, signature, h.webhookSecret) {
		log.Error("invalid webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid signature"))
		return
	}

	var event paymentprovider.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to decode webhook event", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.service.HandleWebhook(r.Context(), event); err != nil {
		log.Error("failed to handle webhook", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to handle webhook"))
		return
	}

	log.Info("webhook handled", slog.String("event", event.Event))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"received": true,
	}))
}
