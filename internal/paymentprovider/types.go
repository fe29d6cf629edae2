package paymentprovider

// CreateOrderRequest представляет запрос на создание заказа у провайдера.
type CreateOrderRequest struct {
	Amount   int               `json:"amount"`   // сумма в минимальных единицах валюты
	Currency string            `json:"currency"` // валюта, например "INR"
	Receipt  string            `json:"receipt"`  // внутренний идентификатор платежа
	Notes    map[string]string `json:"notes,omitempty"`
}

// CreateOrderResponse представляет ответ провайдера на создание заказа.
type CreateOrderResponse struct {
	ID        string `json:"id"` // ID заказа у провайдера
	Amount    int    `json:"amount"`
	Currency  string `json:"currency"`
	Receipt   string `json:"receipt"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// WebhookEvent представляет уведомление провайдера о событии платежа.
type WebhookEvent struct {
	Event   string `json:"event"` // например "payment.captured"
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
				Amount  int    `json:"amount"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}
