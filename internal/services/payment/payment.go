// Package payment содержит логику оформления платежа и обработки
// вебхуков платёжного провайдера.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/opensoxlabs/opensox-api/internal/lib/sl"
	"github.com/opensoxlabs/opensox-api/internal/models"
	"github.com/opensoxlabs/opensox-api/internal/paymentprovider"
	"github.com/opensoxlabs/opensox-api/internal/rabbitmq"
)

// ErrUnknownPlan возвращается при запросе несуществующего плана подписки.
var ErrUnknownPlan = errors.New("unknown plan")

// ErrUnknownOrder возвращается, когда вебхук ссылается на неизвестный заказ.
var ErrUnknownOrder = errors.New("unknown order")

// Plan описывает тарифный план подписки.
type Plan struct {
	ID       string
	Months   int
	Amount   int // сумма в минорных единицах валюты
	Currency string
}

// plans фиксированный прейскурант. Годовой план дешевле двенадцати
// месячных.
var plans = map[string]Plan{
	"monthly": {ID: "monthly", Months: 1, Amount: 49900, Currency: "INR"},
	"yearly":  {ID: "yearly", Months: 12, Amount: 499900, Currency: "INR"},
}

// Checkout параметры оплаты, которые клиент передаёт провайдеру.
type Checkout struct {
	PaymentID       string `json:"payment_id"`
	ProviderOrderID string `json:"provider_order_id"`
	Amount          int    `json:"amount"`
	Currency        string `json:"currency"`
	KeyID           string `json:"key_id"`
}

// Repository определяет методы для работы с платежами в хранилище.
type Repository interface {
	CreatePayment(ctx context.Context, payment models.Payment) (string, error)
	GetPaymentByProviderOrderID(ctx context.Context, providerOrderID string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, providerOrderID, status string) (int, error)
}

// OrderCreator создаёт заказ у платёжного провайдера.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req paymentprovider.CreateOrderRequest) (*paymentprovider.CreateOrderResponse, error)
}

// SubscriptionActivator активирует подписку после успешной оплаты.
type SubscriptionActivator interface {
	Activate(ctx context.Context, userUID string, planMonths int) (*models.Subscription, error)
}

// Service реализует оформление и подтверждение платежей.
type Service struct {
	repo     Repository
	provider OrderCreator
	subs     SubscriptionActivator
	ch       *amqp.Channel
	keyID    string
	log      *slog.Logger
}

// New создает новый экземпляр Service. Канал брокера может быть nil —
// тогда события об активации не публикуются.
func New(repo Repository, provider OrderCreator, subs SubscriptionActivator,
	ch *amqp.Channel, keyID string, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		provider: provider,
		subs:     subs,
		ch:       ch,
		keyID:    keyID,
		log:      log,
	}
}

// CreateCheckout создаёт заказ у провайдера и платёж в статусе pending.
func (s *Service) CreateCheckout(ctx context.Context, userUID, planID string) (*Checkout, error) {
	const op = "services.payment.CreateCheckout"

	plan, ok := plans[planID]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUnknownPlan, planID)
	}

	order, err := s.provider.CreateOrder(ctx, paymentprovider.CreateOrderRequest{
		Amount:   plan.Amount,
		Currency: plan.Currency,
		Notes:    map[string]string{"user_uid": userUID, "plan_id": plan.ID},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	paymentID, err := s.repo.CreatePayment(ctx, models.Payment{
		UserUID:         userUID,
		PlanID:          plan.ID,
		ProviderOrderID: order.ID,
		Amount:          plan.Amount,
		Currency:        plan.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("checkout created",
		slog.String("user_uid", userUID),
		slog.String("plan_id", plan.ID),
		slog.String("provider_order_id", order.ID))

	return &Checkout{
		PaymentID:       paymentID,
		ProviderOrderID: order.ID,
		Amount:          plan.Amount,
		Currency:        plan.Currency,
		KeyID:           s.keyID,
	}, nil
}

// HandleWebhook обрабатывает событие провайдера. Повторная доставка
// уже обработанного события ничего не меняет: статус платежа
// переводится только из pending.
func (s *Service) HandleWebhook(ctx context.Context, event paymentprovider.WebhookEvent) error {
	const op = "services.payment.HandleWebhook"

	orderID := event.Payload.Payment.Entity.OrderID

	switch event.Event {
	case "payment.captured":
		return s.handleCaptured(ctx, op, orderID)
	case "payment.failed":
		if _, err := s.repo.UpdatePaymentStatus(ctx, orderID, models.PaymentStatusFailed); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	default:
		s.log.Info("ignoring webhook event", slog.String("event", event.Event))
		return nil
	}
}

func (s *Service) handleCaptured(ctx context.Context, op, orderID string) error {
	payment, err := s.repo.GetPaymentByProviderOrderID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if payment == nil {
		return fmt.Errorf("%s: %w: %s", op, ErrUnknownOrder, orderID)
	}

	updated, err := s.repo.UpdatePaymentStatus(ctx, orderID, models.PaymentStatusCaptured)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if updated == 0 {
		s.log.Info("webhook redelivery for processed payment",
			slog.String("provider_order_id", orderID))
		return nil
	}

	plan, ok := plans[payment.PlanID]
	if !ok {
		return fmt.Errorf("%s: %w: %s", op, ErrUnknownPlan, payment.PlanID)
	}

	sub, err := s.subs.Activate(ctx, payment.UserUID, plan.Months)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.publishActivated(payment, sub)
	return nil
}

// publishActivated отправляет событие воркеру уведомлений. Ошибка
// публикации не откатывает платёж — уведомление вторично.
func (s *Service) publishActivated(payment *models.Payment, sub *models.Subscription) {
	if s.ch == nil {
		return
	}
	event := map[string]any{
		"user_uid": payment.UserUID,
		"plan_id":  payment.PlanID,
		"end_date": sub.EndDate,
	}
	if err := rabbitmq.PublishMessage(s.ch, rabbitmq.NotificationsExchange,
		"subscription.activated", event); err != nil {
		s.log.Error("failed to publish activation event", sl.Err(err))
	}
}
