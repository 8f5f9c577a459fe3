// Package talkwise предоставляет маршруты для основного приложения.
package talkwise

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	accententitlement "github.com/talkwise/talkwise-backend/internal/http/handlers/account/entitlement"
	"github.com/talkwise/talkwise-backend/internal/http/handlers/admin/broadcast"
	adminstats "github.com/talkwise/talkwise-backend/internal/http/handlers/admin/stats"
	adminticketanswer "github.com/talkwise/talkwise-backend/internal/http/handlers/admin/ticketanswer"
	adminticketlist "github.com/talkwise/talkwise-backend/internal/http/handlers/admin/ticketlist"
	"github.com/talkwise/talkwise-backend/internal/http/handlers/admin/userlist"
	"github.com/talkwise/talkwise-backend/internal/http/handlers/admin/userupdate"
	"github.com/talkwise/talkwise-backend/internal/http/handlers/admin/vouchercreate"
	"github.com/talkwise/talkwise-backend/internal/http/handlers/admin/voucherexport"
	"github.com/talkwise/talkwise-backend/internal/http/handlers/admin/voucherlist"
	"github.com/talkwise/talkwise-backend/internal/http/handlers/admin/voucherremove"
	"github.com/talkwise/talkwise-backend/internal/http/handlers/auth/login"
	"github.com/talkwise/talkwise-backend/internal/http/handlers/auth/register"
	"github.com/talkwise/talkwise-backend/internal/http/handlers/health"
	lessoncomplete "github.com/talkwise/talkwise-backend/internal/http/handlers/lesson/complete"
	lessonlist "github.com/talkwise/talkwise-backend/internal/http/handlers/lesson/list"
	lessonread "github.com/talkwise/talkwise-backend/internal/http/handlers/lesson/read"
	notificationlist "github.com/talkwise/talkwise-backend/internal/http/handlers/notification/list"
	"github.com/talkwise/talkwise-backend/internal/http/handlers/notification/markread"
	"github.com/talkwise/talkwise-backend/internal/http/handlers/payment/checkout"
	"github.com/talkwise/talkwise-backend/internal/http/handlers/payment/paymentlist"
	"github.com/talkwise/talkwise-backend/internal/http/handlers/payment/paymentwebhook"
	ticketcreate "github.com/talkwise/talkwise-backend/internal/http/handlers/ticket/create"
	ticketlist "github.com/talkwise/talkwise-backend/internal/http/handlers/ticket/list"
	"github.com/talkwise/talkwise-backend/internal/http/middlewarectx"
	adminservice "github.com/talkwise/talkwise-backend/internal/services/admin"
	authservice "github.com/talkwise/talkwise-backend/internal/services/auth"
	lessonservice "github.com/talkwise/talkwise-backend/internal/services/lesson"
	notificationservice "github.com/talkwise/talkwise-backend/internal/services/notification"
	paymentservice "github.com/talkwise/talkwise-backend/internal/services/payment"
	progressservice "github.com/talkwise/talkwise-backend/internal/services/progress"
	ticketservice "github.com/talkwise/talkwise-backend/internal/services/ticket"
	voucherservice "github.com/talkwise/talkwise-backend/internal/services/voucher"
)

// Services собирает все сервисы, нужные маршрутам.
type Services struct {
	Auth         *authservice.Service
	Lesson       *lessonservice.Service
	Progress     *progressservice.Service
	Voucher      *voucherservice.Service
	Payment      *paymentservice.Service
	Ticket       *ticketservice.Service
	Notification *notificationservice.Service
	Admin        *adminservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, s *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, 5, 10))
			r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, s.Auth).ServeHTTP)
		})

		// Вебхук провайдера аутентифицируется подписью, не JWT
		r.Post("/payments/webhook", paymentwebhook.New(logger, s.Payment).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(s.Auth, logger))

			r.Get("/lessons", lessonlist.New(logger, s.Lesson).ServeHTTP)
			r.Get("/lessons/{number}", lessonread.New(logger, s.Lesson).ServeHTTP)
			r.Post("/lessons/{number}/complete", lessoncomplete.New(logger, s.Progress).ServeHTTP)
			r.Get("/me/entitlement", accententitlement.New(logger, s.Lesson).ServeHTTP)

			r.Post("/payments/checkout", checkout.New(logger, s.Payment).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, s.Payment).ServeHTTP)

			r.Get("/notifications", notificationlist.New(logger, s.Notification).ServeHTTP)
			r.Post("/notifications/{id}/read", markread.New(logger, s.Notification).ServeHTTP)

			r.Post("/tickets", ticketcreate.New(logger, s.Ticket).ServeHTTP)
			r.Get("/tickets", ticketlist.New(logger, s.Ticket).ServeHTTP)

			// Админ-панель
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Get("/admin/stats", adminstats.New(logger, s.Admin).ServeHTTP)
				r.Get("/admin/users", userlist.New(logger, s.Admin).ServeHTTP)
				r.Patch("/admin/users/{uid}", userupdate.New(logger, s.Admin).ServeHTTP)
				r.Post("/admin/vouchers", vouchercreate.New(logger, s.Voucher).ServeHTTP)
				r.Get("/admin/vouchers", voucherlist.New(logger, s.Voucher).ServeHTTP)
				r.Get("/admin/vouchers/export", voucherexport.New(logger, s.Voucher).ServeHTTP)
				r.Delete("/admin/vouchers/{id}", voucherremove.New(logger, s.Voucher).ServeHTTP)
				r.Post("/admin/broadcast", broadcast.New(logger, s.Notification).ServeHTTP)
				r.Get("/admin/tickets", adminticketlist.New(logger, s.Ticket).ServeHTTP)
				r.Post("/admin/tickets/{id}/answer", adminticketanswer.New(logger, s.Ticket).ServeHTTP)
			})
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
