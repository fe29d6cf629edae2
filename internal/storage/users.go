package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/opensoxlabs/opensox-api/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newID string
	query := `INSERT INTO users (email, username, password_hash, role, auth_provider)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING uuid`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Email, user.Username, user.PasswordHash, user.Role, user.AuthProvider).Scan(&newID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByUsername возвращает пользователя по его username или nil, если не найден.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	return s.getUser(ctx, op, `WHERE username = $1`, username)
}

// GetUserByEmail возвращает пользователя по email или nil, если его нет.
// Используется при обмене подтверждённой социальной личности на токен.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	return s.getUser(ctx, op, `WHERE email = $1`, email)
}

// GetUser возвращает пользователя по его UID или nil, если не найден.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	return s.getUser(ctx, op, `WHERE uuid = $1`, userUID)
}

// Отсутствие пользователя — не ошибка: все вызывающие сервисы сами
// решают, что значит nil (ErrInvalidCredentials, первый вход, ack письма).
func (s *Storage) getUser(ctx context.Context, op, where string, arg any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uuid, email, username, password_hash, role, auth_provider, created_at
			  FROM users ` + where
	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, arg)

	var passwordHash sql.NullString
	if err := row.Scan(&u.UUID, &u.Email, &u.Username, &passwordHash,
		&u.Role, &u.AuthProvider, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.PasswordHash = passwordHash.String
	return u, nil
}
