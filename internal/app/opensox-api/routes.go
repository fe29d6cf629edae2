// Package opensoxapi предоставляет маршруты для основного приложения.
package opensoxapi

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/opensoxlabs/opensox-api/internal/cache"
	"github.com/opensoxlabs/opensox-api/internal/http/handlers/auth/exchange"
	"github.com/opensoxlabs/opensox-api/internal/http/handlers/auth/login"
	"github.com/opensoxlabs/opensox-api/internal/http/handlers/auth/register"
	"github.com/opensoxlabs/opensox-api/internal/http/handlers/health"
	"github.com/opensoxlabs/opensox-api/internal/http/handlers/payment/paymentcheckout"
	"github.com/opensoxlabs/opensox-api/internal/http/handlers/payment/paymentwebhook"
	"github.com/opensoxlabs/opensox-api/internal/http/handlers/program/programlist"
	"github.com/opensoxlabs/opensox-api/internal/http/handlers/program/programtags"
	"github.com/opensoxlabs/opensox-api/internal/http/handlers/session/sessioncreate"
	"github.com/opensoxlabs/opensox-api/internal/http/handlers/session/sessionlist"
	"github.com/opensoxlabs/opensox-api/internal/http/handlers/session/sessionupdate"
	"github.com/opensoxlabs/opensox-api/internal/http/handlers/subscription/substatus"
	"github.com/opensoxlabs/opensox-api/internal/http/handlers/testimonial/testimoniallist"
	"github.com/opensoxlabs/opensox-api/internal/http/handlers/testimonial/testimonialmy"
	"github.com/opensoxlabs/opensox-api/internal/http/handlers/testimonial/testimonialsubmit"
	"github.com/opensoxlabs/opensox-api/internal/http/middlewarectx"
	"github.com/opensoxlabs/opensox-api/internal/lib/jwt"
	authservice "github.com/opensoxlabs/opensox-api/internal/services/auth"
	paymentservice "github.com/opensoxlabs/opensox-api/internal/services/payment"
	programservice "github.com/opensoxlabs/opensox-api/internal/services/program"
	sessionservice "github.com/opensoxlabs/opensox-api/internal/services/session"
	subservice "github.com/opensoxlabs/opensox-api/internal/services/subscription"
	testimonialservice "github.com/opensoxlabs/opensox-api/internal/services/testimonial"
	"github.com/opensoxlabs/opensox-api/internal/storage"
)

// Services собирает зависимости маршрутов приложения.
type Services struct {
	Auth         *authservice.Service
	Session      *sessionservice.Service
	Subscription *subservice.Service
	Testimonial  *testimonialservice.Service
	Program      *programservice.Service
	Payment      *paymentservice.Service
	JWTMaker     jwt.Maker
	Storage      *storage.Storage
	Cache        *cache.Cache
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services, webhookSecret string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(50, 100)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
		r.Post("/auth/exchange", exchange.New(logger, s.Auth).ServeHTTP)
		r.Get("/testimonials", testimoniallist.New(logger, s.Testimonial).ServeHTTP)
		r.Get("/programs", programlist.New(logger, s.Program).ServeHTTP)
		r.Get("/programs/tags", programtags.New(logger, s.Program).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.JWTMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))
			r.Get("/sessions", sessionlist.New(logger, s.Session).ServeHTTP)
			r.Get("/subscription/status", substatus.New(logger, s.Subscription).ServeHTTP)
			r.Post("/testimonials", testimonialsubmit.New(logger, s.Testimonial).ServeHTTP)
			r.Get("/testimonials/my", testimonialmy.New(logger, s.Testimonial).ServeHTTP)
			r.Post("/payments/checkout", paymentcheckout.New(logger, s.Payment).ServeHTTP)

			// Административные операции
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))
				r.Post("/admin/sessions", sessioncreate.New(logger, s.Session).ServeHTTP)
				r.Put("/admin/sessions/{id}", sessionupdate.New(logger, s.Session).ServeHTTP)
			})
		})

		// Webhook endpoint (без аутентификации, подпись проверяется в обработчике)
		r.Post("/payments/webhook", paymentwebhook.New(logger, s.Payment, webhookSecret).ServeHTTP)
	})

	r.Get("/health", health.New(logger, s.Storage, s.Cache).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
