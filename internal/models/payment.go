package models

import "time"

// Статусы платежа.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusCaptured = "captured"
	PaymentStatusFailed   = "failed"
)

// Payment запись о платеже за подписку. ProviderOrderID уникален —
// повторная доставка webhook по тому же заказу не меняет состояние.
type Payment struct {
	ID              string    // Идентификатор записи
	UserUID         string    // Плательщик
	PlanID          string    // Оплачиваемый план: monthly или yearly
	ProviderOrderID string    // Идентификатор заказа на стороне провайдера
	Amount          int       // Сумма в минорных единицах валюты
	Currency        string    // Код валюты, например INR
	Status          string    // Статус: pending, captured, failed
	CreatedAt       time.Time // Дата создания
}

// DummyCheckout используется для приёма запроса на оформление платежа.
type DummyCheckout struct {
	PlanID string `json:"plan_id" validate:"required,oneof=monthly yearly"`
}
