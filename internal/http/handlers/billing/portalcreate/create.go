// Package portalcreate реализует HTTP-обработчик создания сессии портала
// управления подпиской у платёжного провайдера.
package portalcreate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/models"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/services/checkout"
)

// Service описывает интерфейс создания портал-сессий.
type Service interface {
	CreatePortalSession(ctx context.Context, user *models.User) (string, error)
}

// Handler обрабатывает HTTP-запросы создания портал-сессии.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Создать сессию портала подписки
// @Description Создает сессию портала управления подпиской и возвращает URL. Требует уже существующего клиента у провайдера.
// @Tags Billing
// @Produce  json
// @Success 200 {object} map[string]any "URL портала"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "У пользователя нет клиента у провайдера"
// @Failure 502 {object} response.ErrorResponse "Платёжный провайдер недоступен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /billing/portal [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.portalcreate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		log.Error("user not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	url, err := h.service.CreatePortalSession(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrNoCustomer):
			log.Error("no billing customer", slog.String("uid", user.UID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("no billing customer"))
		case errors.Is(err, checkout.ErrProviderUnavailable):
			log.Error("billing provider unavailable", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("billing provider unavailable"))
		default:
			log.Error("failed to create portal session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("portal session created", slog.String("uid", user.UID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"url": url,
	}))
}
