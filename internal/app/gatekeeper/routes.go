package gatekeeper

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/gate"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/handlers/billing/checkoutcreate"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/handlers/billing/checkoutstatus"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/handlers/billing/portalcreate"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/handlers/billing/subscriptionread"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/handlers/billing/webhook"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/handlers/gate/check"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/handlers/health"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/handlers/onboarding/username"
	planslist "github.com/magabrotheeeer/saas-gatekeeper/internal/http/handlers/plans/list"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/rabbitmq"
	authservice "github.com/magabrotheeeer/saas-gatekeeper/internal/services/auth"
	checkoutservice "github.com/magabrotheeeer/saas-gatekeeper/internal/services/checkout"
	identityservice "github.com/magabrotheeeer/saas-gatekeeper/internal/services/identity"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/services/reconcile"
	subservice "github.com/magabrotheeeer/saas-gatekeeper/internal/services/subscription"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/storage/repository"
)

// Services собирает зависимости маршрутов в одном месте.
type Services struct {
	Identity      *identityservice.Service
	Auth          *authservice.Service
	Subscription  *subservice.Service
	Checkout      *checkoutservice.Service
	Gate          *gate.Gate
	Reconcile     *reconcile.Poller
	Storage       *repository.Storage
	AmqpChannel   rabbitmq.Channel
	WebhookSecret string
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

	authLimiter := rate.NewLimiter(5, 10)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки. Вход и регистрация ограничены по
		// частоте, гейт открыт: отсутствие сессии — валидное состояние.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, authLimiter))
			r.Post("/auth/register", register.New(logger, s.Auth).ServeHTTP)
			r.Post("/auth/login", login.New(logger, s.Auth).ServeHTTP)
		})
		r.Get("/gate/{area}", check.New(logger, s.Gate).ServeHTTP)
		r.Get("/plans", planslist.New(logger).ServeHTTP)

		// Вебхук провайдера защищён общим секретом, а не сессией.
		r.Post("/billing/webhook",
			webhook.New(logger, s.Subscription, s.AmqpChannel, s.WebhookSecret).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AuthMiddleware(s.Identity, logger))
			r.Post("/onboarding/username", username.New(logger, s.Storage).ServeHTTP)
			r.Post("/billing/checkout", checkoutcreate.New(logger, s.Checkout).ServeHTTP)
			r.Post("/billing/portal", portalcreate.New(logger, s.Checkout).ServeHTTP)
			r.Get("/billing/checkout/status", checkoutstatus.New(logger, s.Reconcile).ServeHTTP)
			r.Get("/billing/subscription", subscriptionread.New(logger, s.Subscription).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
