// Package list реализует HTTP-обработчик списка тарифных планов.
//
// Каталог статичен, поэтому обработчику не нужен сервис: он отдаёт
// планы с ценами в минорных единицах на пару (интервал, валюта).
package list

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/saas-gatekeeper/internal/http/response"
	"github.com/magabrotheeeer/saas-gatekeeper/internal/plans"
)

// PlanResponse — JSON-представление тарифного плана.
type PlanResponse struct {
	ID          string                                    `json:"id"`
	Name        string                                    `json:"name"`
	Description string                                    `json:"description"`
	Prices      map[plans.Interval]map[plans.Currency]int `json:"prices,omitempty"`
}

// Handler обрабатывает HTTP-запросы списка планов.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Список тарифных планов
// @Description Возвращает каталог планов с ценами в минорных единицах валюты.
// @Tags Plans
// @Produce  json
// @Success 200 {object} map[string]any "Каталог планов"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	catalog := plans.All()
	out := make([]PlanResponse, 0, len(catalog))
	for _, p := range catalog {
		out = append(out, PlanResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Prices:      p.Prices,
		})
	}

	log.Info("plans listed", slog.Int("count", len(out)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"plans": out,
	}))
}
