package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opensoxlabs/opensox-api/internal/models"
)

// CreatePayment сохраняет новый платёж в статусе pending и возвращает его ID.
func (s *Storage) CreatePayment(ctx context.Context, payment models.Payment) (string, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO payments (user_uid, plan_id, provider_order_id, amount, currency, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	if err := s.DB.QueryRowContext(ctx, query,
		payment.UserUID, payment.PlanID, payment.ProviderOrderID,
		payment.Amount, payment.Currency, models.PaymentStatusPending).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetPaymentByProviderOrderID возвращает платёж по идентификатору заказа
// на стороне провайдера или nil, если заказ неизвестен.
func (s *Storage) GetPaymentByProviderOrderID(ctx context.Context, providerOrderID string) (*models.Payment, error) {
	const op = "storage.GetPaymentByProviderOrderID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, plan_id, provider_order_id, amount, currency, status, created_at
			  FROM payments
			  WHERE provider_order_id = $1`
	row := s.DB.QueryRowContext(ctx, query, providerOrderID)

	var item models.Payment
	if err := row.Scan(&item.ID, &item.UserUID, &item.PlanID, &item.ProviderOrderID,
		&item.Amount, &item.Currency, &item.Status, &item.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}

// UpdatePaymentStatus переводит платёж в новый статус только из pending.
// Возвращает количество изменённых строк: 0 означает, что платёж уже был
// обработан и повторная доставка webhook ничего не меняет.
func (s *Storage) UpdatePaymentStatus(ctx context.Context, providerOrderID, status string) (int, error) {
	const op = "storage.UpdatePaymentStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET status = $1
			  WHERE provider_order_id = $2 AND status = $3`
	res, err := s.DB.ExecContext(ctx, query, status, providerOrderID, models.PaymentStatusPending)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
