// Package subscriptionread реализует HTTP-обработчик чтения снапшота
// подписки текущего пользователя.
//
// Пользователь без строки подписки получает снапшот плана free:
// отсутствие записи не является ошибкой.
package subscriptionread

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/models"
)

// SubscriptionResponse — JSON-представление снапшота подписки.
// Идентификатор клиента у провайдера наружу не отдаётся.
type SubscriptionResponse struct {
	PlanID            string `json:"plan_id"`
	Interval          string `json:"interval,omitempty"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}

// Service описывает интерфейс чтения снапшота подписки.
type Service interface {
	Get(ctx context.Context, userUID string) (*models.Subscription, error)
}

// Handler обрабатывает HTTP-запросы чтения подписки.
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
// @Summary Снапшот подписки
// @Description Возвращает снапшот подписки текущего пользователя. Без записи в хранилище возвращается план free.
// @Tags Billing
// @Produce  json
// @Success 200 {object} map[string]any "Снапшот подписки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /billing/subscription [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.subscriptionread"

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

	sub, err := h.service.Get(r.Context(), user.UID)
	if err != nil {
		log.Error("failed to read subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("subscription read", slog.String("uid", user.UID), slog.String("plan_id", sub.PlanID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"subscription": SubscriptionResponse{
			PlanID:            sub.PlanID,
			Interval:          sub.Interval,
			CurrentPeriodEnd:  sub.CurrentPeriodEnd,
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		},
	}))
}
