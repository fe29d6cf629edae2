package models

import "time"

// Testimonial отзыв pro-пользователя о платформе.
// На одного пользователя приходится не более одного отзыва,
// повторная отправка редактирует существующий.
type Testimonial struct {
	ID        string    `json:"id"`
	UserUID   string    `json:"-"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Approved  bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DummyTestimonial используется для приёма отзыва из JSON-запроса.
// Ограничения длины повторяют форму на сайте.
type DummyTestimonial struct {
	Name    string `json:"name" validate:"required,max=40"`
	Content string `json:"content" validate:"required,min=10,max=1000"`
}
