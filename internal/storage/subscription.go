package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/opensoxlabs/opensox-api/internal/models"
)

// FindActiveSubscription возвращает активную неистёкшую подписку пользователя
// или nil, если такой нет. Отсутствие подписки — не ошибка: решение об
// отказе в доступе принимает сервисный слой.
func (s *Storage) FindActiveSubscription(ctx context.Context, userUID string, now time.Time) (*models.Subscription, error) {
	const op = "storage.FindActiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, status, start_date, end_date, plan_months, created_at
			  FROM subscriptions
			  WHERE user_uid = $1
			    AND status = $2
			    AND end_date >= $3
			  ORDER BY end_date DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userUID, models.SubscriptionStatusActive, now)

	var sub models.Subscription
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.Status, &sub.StartDate,
		&sub.EndDate, &sub.PlanMonths, &sub.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// FindLatestSubscription возвращает последнюю подписку пользователя
// независимо от статуса. Используется для ответа о состоянии подписки.
func (s *Storage) FindLatestSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	const op = "storage.FindLatestSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, status, start_date, end_date, plan_months, created_at
			  FROM subscriptions
			  WHERE user_uid = $1
			  ORDER BY end_date DESC
			  LIMIT 1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	var sub models.Subscription
	if err := row.Scan(&sub.ID, &sub.UserUID, &sub.Status, &sub.StartDate,
		&sub.EndDate, &sub.PlanMonths, &sub.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// UpsertActiveSubscription активирует подписку пользователя: продлевает
// действующую активную запись либо создаёт новую от startDate.
// Возвращает итоговую запись.
func (s *Storage) UpsertActiveSubscription(ctx context.Context, userUID string, planMonths int, startDate time.Time) (*models.Subscription, error) {
	const op = "storage.UpsertActiveSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Действующая активная подписка продлевается от своей даты окончания
	var current models.Subscription
	err = tx.QueryRowContext(ctx,
		`SELECT id, end_date FROM subscriptions
		 WHERE user_uid = $1 AND status = $2 AND end_date >= $3
		 ORDER BY end_date DESC LIMIT 1 FOR UPDATE`,
		userUID, models.SubscriptionStatusActive, startDate).Scan(&current.ID, &current.EndDate)

	var result models.Subscription
	switch {
	case err == nil:
		newEnd := current.EndDate.AddDate(0, planMonths, 0)
		row := tx.QueryRowContext(ctx,
			`UPDATE subscriptions SET end_date = $1, plan_months = plan_months + $2
			 WHERE id = $3
			 RETURNING id, user_uid, status, start_date, end_date, plan_months, created_at`,
			newEnd, planMonths, current.ID)
		if err := row.Scan(&result.ID, &result.UserUID, &result.Status, &result.StartDate,
			&result.EndDate, &result.PlanMonths, &result.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	case errors.Is(err, sql.ErrNoRows):
		endDate := startDate.AddDate(0, planMonths, 0)
		row := tx.QueryRowContext(ctx,
			`INSERT INTO subscriptions (user_uid, status, start_date, end_date, plan_months)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, user_uid, status, start_date, end_date, plan_months, created_at`,
			userUID, models.SubscriptionStatusActive, startDate, endDate, planMonths)
		if err := row.Scan(&result.ID, &result.UserUID, &result.Status, &result.StartDate,
			&result.EndDate, &result.PlanMonths, &result.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}
