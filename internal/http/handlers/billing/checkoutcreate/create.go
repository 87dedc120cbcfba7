// Package checkoutcreate реализует HTTP-обработчик создания checkout-сессии
// у платёжного провайдера.
//
// Обработчик требует авторизованного пользователя с завершённым
// онбордингом и возвращает URL для редиректа на страницу оплаты.
// Локальная подписка при этом не меняется: её обновляет уведомление
// провайдера.
package checkoutcreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/middlewarectx"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/models"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/plans"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/services/checkout"
)

// Request — входные данные для создания checkout-сессии.
type Request struct {
	PlanID   string `json:"plan_id" validate:"required"`
	Interval string `json:"interval" validate:"required,oneof=month year"`
	Currency string `json:"currency" validate:"required,oneof=usd eur"`
}

// Service описывает интерфейс оркестрации checkout-сессий.
type Service interface {
	CreateCheckout(ctx context.Context, user *models.User, planID string, interval plans.Interval, currency plans.Currency) (string, error)
}

// Handler обрабатывает HTTP-запросы создания checkout-сессии.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать checkout-сессию
// @Description Создает checkout-сессию у платёжного провайдера и возвращает URL страницы оплаты. План free оплатить нельзя.
// @Tags Billing
// @Accept  json
// @Produce  json
// @Param request body Request true "План, интервал и валюта"
// @Success 200 {object} map[string]any "URL страницы оплаты"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Онбординг не завершен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации или неизвестный план"
// @Failure 502 {object} response.ErrorResponse "Платёжный провайдер недоступен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /billing/checkout [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.billing.checkoutcreate"

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
	if !user.HasUsername() {
		log.Error("onboarding incomplete", slog.String("uid", user.UID))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("onboarding incomplete"))
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

	url, err := h.service.CreateCheckout(r.Context(), user, req.PlanID,
		plans.Interval(req.Interval), plans.Currency(req.Currency))
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrFreePlanCheckout),
			errors.Is(err, checkout.ErrPlanNotFound),
			errors.Is(err, checkout.ErrPriceNotFound):
			log.Error("checkout rejected", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("plan is not available for checkout"))
		case errors.Is(err, checkout.ErrProviderUnavailable):
			log.Error("billing provider unavailable", sl.Err(err))
			w.WriteHeader(http.StatusBadGateway)
			render.JSON(w, r, response.Error("billing provider unavailable"))
		default:
			log.Error("failed to create checkout session", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("checkout session created", slog.String("uid", user.UID), slog.String("plan_id", req.PlanID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"url": url,
	}))
}
