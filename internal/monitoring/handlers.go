package monitoring

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/PioneData/CAT-Backend/internal/db"
)

// Handlers carries the collaborators the monitoring endpoints need. The
// on-demand trigger shares the exact ingestion path with the periodic job.
type Handlers struct {
	Fetcher  AlertFetcher
	Ingestor *Ingestor
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// ListAlertsHandler serves GET /alerts with search, state and severity
// filters plus sorting and pagination.
func (h *Handlers) ListAlertsHandler(w http.ResponseWriter, r *http.Request) {
	q := db.DB.Model(&Alert{})

	if search := r.URL.Query().Get("search"); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", term, term)
	}
	if state := r.URL.Query().Get("state"); state != "" && state != "all" {
		q = q.Joins("JOIN states ON states.id = alerts.state_id").
			Where("states.code = ?", state)
	}
	if severity := r.URL.Query().Get("severity"); severity != "" && severity != "all" {
		q = q.Where("severity = ?", strings.ToUpper(severity))
	}

	switch r.URL.Query().Get("sort_by") {
	case "recent":
		q = q.Order("event_timestamp DESC")
	case "alphabetical":
		q = q.Order("title")
	default:
		// Severity first; the enum is stored as text so rank it explicitly.
		q = q.Order("CASE severity WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END DESC").
			Order("event_timestamp DESC")
	}

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	var alerts []Alert
	if err := q.Offset(skip).Limit(limit).Find(&alerts).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, alerts)
}

// AlertStatesHandler lists the distinct state codes that currently have alerts.
func (h *Handlers) AlertStatesHandler(w http.ResponseWriter, r *http.Request) {
	var codes []string
	err := db.DB.Model(&Alert{}).
		Joins("JOIN states ON states.id = alerts.state_id").
		Distinct().
		Pluck("states.code", &codes).Error
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, codes)
}

// TriggerFetchHandler runs one on-demand ingestion batch and returns the
// grouped report, or a plain message when nothing new was processed.
func (h *Handlers) TriggerFetchHandler(w http.ResponseWriter, r *http.Request) {
	features, err := h.Fetcher.FetchActiveAlerts(r.Context())
	if err != nil {
		http.Error(w, "Feed fetch failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	result, err := h.Ingestor.ProcessAlerts(r.Context(), features)
	if err != nil {
		http.Error(w, "Ingestion failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if !result.Processed {
		writeJSON(w, map[string]string{"message": "No new alerts to process"})
		return
	}
	writeJSON(w, result)
}

// CategoryRiskHandler serves the nested category-risk report over already
// ingested alerts.
func (h *Handlers) CategoryRiskHandler(w http.ResponseWriter, r *http.Request) {
	filters := CategoryRiskFilters{
		State:    r.URL.Query().Get("state"),
		Category: r.URL.Query().Get("category"),
	}
	if severity := r.URL.Query().Get("severity"); severity != "" && severity != "all" {
		filters.Severity = AlertSeverity(strings.ToUpper(severity))
	}

	result, err := GroupAlertsByCategory(db.DB.WithContext(r.Context()), filters)
	if err != nil {
		http.Error(w, "Error fetching alerts: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// SyncLogsHandler lists recent ingestion summaries, newest first.
func (h *Handlers) SyncLogsHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}

	var logs []AlertSyncLog
	if err := db.DB.Order("sync_timestamp DESC").Limit(limit).Find(&logs).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, logs)
}
