package models

import "time"

// Session представляет еженедельную pro-сессию с видеозаписью.
// Список сессий возвращается отсортированным по дате по убыванию
// (сначала самые свежие), темы внутри сессии — по порядку по возрастанию.
type Session struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	VideoURL    string         `json:"video_url"`
	SessionDate time.Time      `json:"session_date"`
	Topics      []SessionTopic `json:"topics"`
}

// SessionTopic тема внутри сессии с таймкодом в видео.
// SortOrder задаёт детерминированный порядок показа.
type SessionTopic struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"` // Таймкод в видео, например "12:34"
	Topic     string `json:"topic"`
	SortOrder int    `json:"order"`
}

// DummySession используется для приёма данных сессии из JSON-запроса
// администратора до валидации и парсинга даты.
type DummySession struct {
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description,omitempty" validate:"omitempty"`
	VideoURL    string              `json:"video_url" validate:"required,url"`
	SessionDate string              `json:"session_date" validate:"required"` // Дата в формате 2006-01-02
	Topics      []DummySessionTopic `json:"topics" validate:"dive"`
}

// DummySessionTopic тема сессии из JSON-запроса.
type DummySessionTopic struct {
	Timestamp string `json:"timestamp,omitempty" validate:"omitempty"`
	Topic     string `json:"topic" validate:"required"`
	SortOrder int    `json:"order" validate:"gte=0"`
}
