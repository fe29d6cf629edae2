package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opensoxlabs/opensox-api/internal/models"
)

// ListApprovedTestimonials возвращает одобренные отзывы, свежие первыми.
func (s *Storage) ListApprovedTestimonials(ctx context.Context) ([]*models.Testimonial, error) {
	const op = "storage.ListApprovedTestimonials"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, content, approved, created_at, updated_at
			  FROM testimonials
			  WHERE approved = true
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Testimonial
	for rows.Next() {
		var item models.Testimonial
		if err := rows.Scan(&item.ID, &item.UserUID, &item.Name, &item.Content,
			&item.Approved, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetTestimonialByUser возвращает отзыв пользователя или nil, если его нет.
func (s *Storage) GetTestimonialByUser(ctx context.Context, userUID string) (*models.Testimonial, error) {
	const op = "storage.GetTestimonialByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, name, content, approved, created_at, updated_at
			  FROM testimonials
			  WHERE user_uid = $1`
	row := s.DB.QueryRowContext(ctx, query, userUID)

	var item models.Testimonial
	if err := row.Scan(&item.ID, &item.UserUID, &item.Name, &item.Content,
		&item.Approved, &item.CreatedAt, &item.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}

// UpsertTestimonial сохраняет отзыв пользователя: один пользователь —
// один отзыв, повторная отправка редактирует существующий и снимает
// пометку approved до повторной модерации.
func (s *Storage) UpsertTestimonial(ctx context.Context, userUID, name, content string) (*models.Testimonial, error) {
	const op = "storage.UpsertTestimonial"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO testimonials (user_uid, name, content)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (user_uid) DO UPDATE
			  SET name = EXCLUDED.name, content = EXCLUDED.content,
			      approved = false, updated_at = now()
			  RETURNING id, user_uid, name, content, approved, created_at, updated_at`
	row := s.DB.QueryRowContext(ctx, query, userUID, name, content)

	var item models.Testimonial
	if err := row.Scan(&item.ID, &item.UserUID, &item.Name, &item.Content,
		&item.Approved, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &item, nil
}
