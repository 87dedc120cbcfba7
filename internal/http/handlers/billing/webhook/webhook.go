// Package webhook реализует HTTP-обработчик уведомлений платёжного
// провайдера об изменении подписки.
//
// Уведомление — единственный источник записи локальной подписки.
// Обработчик проверяет общий секрет, применяет событие идемпотентно и
// публикует его в RabbitMQ для внешних потребителей. Сбой публикации
// не откатывает применённое обновление.
package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/models"
)

// SecretHeader — заголовок с общим секретом вебхука.
const SecretHeader = "X-Webhook-Secret"

// Request — тело уведомления провайдера.
type Request struct {
	UserUID           string `json:"user_uid" validate:"required"`
	PlanID            string `json:"plan_id" validate:"required"`
	Interval          string `json:"interval"`
	CustomerID        string `json:"customer_id"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}

// Service описывает интерфейс применения уведомления к подписке.
type Service interface {
	Apply(ctx context.Context, sub models.Subscription) error
}

// Handler обрабатывает уведомления платёжного провайдера.
type Handler struct {
	log      *slog.Logger
	service  Service
	channel  rabbitmq.Channel
	secret   string
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, channel rabbitmq.Channel, secret string) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		channel:  channel,
		secret:   secret,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вебхук платёжного провайдера
// @Description Применяет уведомление провайдера к локальной подписке. Требует общий секрет в заголовке X-Webhook-Secret.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param request body Request true "Событие подписки"
// @Success 200 {object} map[string]any "Событие применено"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверный секрет"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /billing/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	got := r.Header.Get(SecretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		log.Error("webhook secret mismatch")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	sub := models.Subscription{
		UserUID:           req.UserUID,
		PlanID:            req.PlanID,
		Interval:          req.Interval,
		CustomerID:        req.CustomerID,
		CurrentPeriodEnd:  req.CurrentPeriodEnd,
		CancelAtPeriodEnd: req.CancelAtPeriodEnd,
	}
	if err := h.service.Apply(r.Context(), sub); err != nil {
		log.Error("failed to apply subscription event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to apply event"))
		return
	}

	if err := rabbitmq.PublishMessage(h.channel, rabbitmq.ExchangeSubscriptions,
		rabbitmq.RoutingKeyUpdated, sub); err != nil {
		log.Error("failed to publish subscription event", sl.Err(err))
	}

	log.Info("subscription event applied",
		slog.String("user_uid", req.UserUID),
		slog.String("plan_id", req.PlanID),
	)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "event applied",
	}))
}
