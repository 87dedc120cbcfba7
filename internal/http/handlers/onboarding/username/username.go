// Package username реализует HTTP-обработчик шага онбординга, на котором
// пользователь выбирает себе имя.
//
// Имя устанавливается ровно один раз: повторная попытка возвращает
// конфликт, установленное имя никогда не перезаписывается.
package username

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
	"github.com/magabrotheeeer/saas-gatekeeper/internal/storage/repository"
)

// Request — входные данные шага выбора имени.
type Request struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=20"`
}

// Service описывает интерфейс установки имени пользователя.
type Service interface {
	SetUsername(ctx context.Context, userUID, username string) error
}

// Handler обрабатывает HTTP-запросы установки имени пользователя.
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
// @Summary Установить имя пользователя
// @Description Завершает онбординг, устанавливая имя пользователя ровно один раз.
// @Tags Onboarding
// @Accept  json
// @Produce  json
// @Param request body Request true "Выбранное имя пользователя"
// @Success 200 {object} map[string]any "Имя установлено"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 409 {object} response.ErrorResponse "Имя уже установлено или занято"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /onboarding/username [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.onboarding.username"

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

	if err := h.service.SetUsername(r.Context(), user.UID, req.Username); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameAlreadySet):
			log.Error("username already set", slog.String("uid", user.UID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("username already set"))
		case errors.Is(err, repository.ErrUsernameTaken):
			log.Error("username taken", slog.String("username", req.Username))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("username already taken"))
		default:
			log.Error("failed to set username", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("username set", slog.String("uid", user.UID), slog.String("username", req.Username))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"username": req.Username,
		"message":  "username set successfully",
	}))
}
