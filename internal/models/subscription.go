package models

import "time"

// Статусы подписки. Доступ к закрытым разделам даёт только
// active с неистёкшим EndDate.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusInactive = "inactive"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusExpired  = "expired"
)

// Subscription представляет оплаченную подписку пользователя на платформу.
// Создаётся и продлевается платёжным потоком, читается при проверке доступа.
type Subscription struct {
	ID         int       // Идентификатор записи
	UserUID    string    // Владелец подписки
	Status     string    // Статус: active, inactive, canceled, expired
	StartDate  time.Time // Дата начала
	EndDate    time.Time // Дата окончания
	PlanMonths int       // Длительность оплаченного плана в месяцах
	CreatedAt  time.Time // Дата создания записи
}

// IsPro сообщает, даёт ли подписка доступ к закрытым разделам на момент now.
func (s *Subscription) IsPro(now time.Time) bool {
	return s != nil && s.Status == SubscriptionStatusActive && !s.EndDate.Before(now)
}

// SubscriptionStatus проекция для ответа о состоянии подписки.
type SubscriptionStatus struct {
	Status  string     `json:"status"`
	EndDate *time.Time `json:"end_date,omitempty"`
	IsPro   bool       `json:"is_pro"`
}
