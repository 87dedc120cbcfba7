// Package check реализует HTTP-обработчик вычисления решения доступа
// к зоне приложения.
//
// Обработчик извлекает зону из URL, путь запроса из query-параметра и
// сессионный токен из заголовка Authorization. Отсутствие токена — не
// ошибка, а валидное состояние unauthenticated, поэтому маршрут не
// закрыт auth middleware.
package check

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/gate"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/services/identity"
)

// DecisionResponse — JSON-представление решения гейта.
type DecisionResponse struct {
	Allowed  bool   `json:"allowed"`
	Location string `json:"location,omitempty"`
}

// Service описывает интерфейс вычисления решения доступа.
type Service interface {
	Evaluate(ctx context.Context, token string, area gate.Area, path string) (gate.Decision, error)
}

// Handler обрабатывает HTTP-запросы вычисления решения доступа.
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
// @Summary Решение доступа к зоне
// @Description Вычисляет решение доступа к зоне приложения для текущей сессии: пропустить или редирект. Для зоны admin с недостаточной ролью возвращает 403 без деталей.
// @Tags Gate
// @Produce  json
// @Param area path string true "Зона приложения" Enums(auth, onboarding, dashboard, admin)
// @Param path query string false "Запрошенный путь внутри зоны"
// @Success 200 {object} DecisionResponse "Решение доступа"
// @Failure 400 {object} response.ErrorResponse "Неизвестная зона"
// @Failure 403 {object} response.ErrorResponse "Недостаточная роль"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /gate/{area} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.gate.check"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	area, ok := gate.ParseArea(chi.URLParam(r, "area"))
	if !ok {
		log.Error("unknown area", slog.String("area", chi.URLParam(r, "area")))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unknown area"))
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/" + string(area)
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	decision, err := h.service.Evaluate(r.Context(), token, area, path)
	if err != nil {
		if errors.Is(err, identity.ErrForbidden) {
			// Без деталей: ответ одинаков для любой причины запрета.
			log.Warn("access forbidden", slog.String("area", string(area)))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("forbidden"))
			return
		}
		log.Error("failed to evaluate gate decision", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("gate decision evaluated",
		slog.String("area", string(area)),
		slog.Bool("allowed", decision.Allowed),
		slog.String("location", decision.Location),
	)
	render.JSON(w, r, response.StatusOKWithData(DecisionResponse{
		Allowed:  decision.Allowed,
		Location: decision.Location,
	}))
}
