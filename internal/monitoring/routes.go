package monitoring

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Get("/alerts", h.ListAlertsHandler)
	r.Get("/alerts/states", h.AlertStatesHandler)
	r.Get("/alerts/category-risk-with-zipcodes", h.CategoryRiskHandler)
	r.Post("/fetch-alerts", h.TriggerFetchHandler)
	r.Get("/sync-logs", h.SyncLogsHandler)

	return r
}
