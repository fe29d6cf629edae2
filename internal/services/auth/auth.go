// Package auth содержит логику регистрации, входа и обмена OAuth-профиля
// на собственный JWT сервиса.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/opensoxlabs/opensox-api/internal/lib/jwt"
	"github.com/opensoxlabs/opensox-api/internal/lib/password"
	"github.com/opensoxlabs/opensox-api/internal/models"
)

// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUserExists возвращается при попытке зарегистрировать занятое имя.
var ErrUserExists = errors.New("user already exists")

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его UUID.
	RegisterUser(ctx context.Context, user models.User) (string, error)

	// GetUserByUsername возвращает пользователя по имени или nil, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// GetUserByEmail возвращает пользователя по email или nil, если не найден.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service отвечает за регистрацию, авторизацию и выпуск JWT.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// New создает новый экземпляр Service.
func New(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля и дефолтной ролью "user".
func (s *Service) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	const op = "services.auth.Register"

	existing, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if existing != nil {
		return "", fmt.Errorf("%s: %w", op, ErrUserExists)
	}

	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         "user", // дефолтная роль при регистрации
		AuthProvider: "credentials",
	}

	uid, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UUID)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, user.Role, nil
}

// ExchangeOAuth обменивает профиль внешнего OAuth-провайдера на JWT сервиса.
// Пользователь находится по email, а при первом входе создаётся.
func (s *Service) ExchangeOAuth(ctx context.Context, provider, email, username string) (token, role string, err error) {
	const op = "services.auth.ExchangeOAuth"

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if user == nil {
		newUser := models.User{
			Email:        email,
			Username:     username,
			Role:         "user",
			AuthProvider: provider,
		}
		uid, err := s.users.RegisterUser(ctx, newUser)
		if err != nil {
			return "", "", fmt.Errorf("%s: %w", op, err)
		}
		newUser.UUID = uid
		user = &newUser
	}

	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UUID)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	return token, user.Role, nil
}
