// Package checkoutstatus реализует HTTP-обработчик сверки подписки после
// возврата со страницы оплаты.
//
// Обработчик блокирует запрос на время ограниченного цикла сверки и
// возвращает его терминальный исход: succeeded или exhausted. Exhausted
// отдаётся со статусом 200, это не ошибка, а «обновление ещё не дошло».
package checkoutstatus

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
	"github.com/magabrotheeeer/saas-gatekeeper/internal/services/reconcile"
)

// Service описывает интерфейс цикла сверки подписки.
type Service interface {
	Run(ctx context.Context, userUID string, observe func(reconcile.Status)) (reconcile.Status, error)
}

// Handler обрабатывает HTTP-запросы сверки после оплаты.
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
// @Summary Сверка подписки после оплаты
// @Description Запускает ограниченный цикл сверки локальной подписки с провайдером и возвращает терминальный исход: succeeded или exhausted.
// @Tags Billing
// @Produce  json
// @Success 200 {object} map[string]any "Исход сверки"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /billing/checkout/status [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkoutstatus"

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

	status, err := h.service.Run(r.Context(), user.UID, nil)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Клиент ушёл со страницы, писать некому.
			log.Info("reconcile cancelled by client", slog.String("uid", user.UID))
			return
		}
		log.Error("reconcile failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("reconcile finished",
		slog.String("uid", user.UID),
		slog.String("status", string(status)),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": status,
	}))
}
