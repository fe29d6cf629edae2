// Package models содержит доменные структуры платформы:
// пользователей, подписки, еженедельные сессии, отзывы и каталог
// open-source программ. Структуры используются в бизнес-логике
// и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
// PasswordHash пустой для пользователей, пришедших через социальный вход.
type User struct {
	UUID         string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта
	Username     string    // Имя пользователя (уникальное)
	PasswordHash string    // Хэш пароля, пустой при oauth-регистрации
	Role         string    // Роль пользователя, admin или user
	AuthProvider string    // Способ входа: credentials, google, github
	CreatedAt    time.Time // Дата регистрации
}
