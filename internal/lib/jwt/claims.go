// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Токен выдаётся после логина или обмена подтверждённой социальной личности
// и несёт username, роль и UID пользователя — всё, что нужно обработчикам
// для авторизации без обращения к базе.
package jwt

import "github.com/golang-jwt/jwt/v5"

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	Username             string `json:"username"` // Имя пользователя
	Role                 string `json:"role"`     // Роль пользователя
	UserUID              string `json:"user_uid"` // Уникальный идентификатор пользователя
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (ExpiresAt, IssuedAt и пр.)
}
