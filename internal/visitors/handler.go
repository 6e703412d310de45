package visitors

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/tobro-digital/agency-platform/internal/changefeed"
	"github.com/tobro-digital/agency-platform/internal/observability/metrics"
	"github.com/tobro-digital/agency-platform/pkg/logging"
)

// Defaults recorded when the tracking payload or headers omit a value.
const (
	DefaultAction = "page_view"
	DirectReferer = "Direct"
)

// Handler handles HTTP requests for visitor tracking
type Handler struct {
	repo    Repository
	feed    changefeed.Publisher
	metrics *metrics.SiteMetrics
	logger  *logging.Logger
}

// NewHandler creates a new visitors handler. feed and metrics may be nil.
func NewHandler(repo Repository, feed changefeed.Publisher, m *metrics.SiteMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:    repo,
		feed:    feed,
		metrics: m,
		logger:  logger,
	}
}

// Track handles POST /track-visitor requests. The visit is recorded
// best-effort against the caller's derived address; a malformed body still
// counts as a page visit.
func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	var req TrackVisitorRequest
	if r.Body != nil {
		// Tracking beacons often send empty or truncated bodies.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	referer := r.Header.Get("Referer")
	if referer == "" {
		referer = DirectReferer
	}
	action := req.Action
	if action == "" {
		action = DefaultAction
	}

	event := &Event{
		IP:        ClientIP(r),
		Page:      req.Page,
		Action:    action,
		UserAgent: r.UserAgent(),
		Referer:   referer,
	}

	if err := h.repo.Record(r.Context(), event); err != nil {
		h.logger.Error("failed to record visit", "error", err, "ip", event.IP)
		h.metrics.ObserveVisitor(event.Action, "error")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "failed to record visit"})
		return
	}

	h.metrics.ObserveVisitor(event.Action, "ok")
	h.publishChange(r)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"success": true, "ip": event.IP})
}

// ListVisitorsResponse is the response for listing visit events
type ListVisitorsResponse struct {
	Visitors []Event `json:"visitors"`
	Count    int     `json:"count"`
}

// List handles GET /track-visitor requests. Supports ?limit=N, default 100.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	events, err := h.repo.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list visits", "error", err)
		http.Error(w, "failed to list visits", http.StatusInternalServerError)
		return
	}

	response := ListVisitorsResponse{
		Visitors: events,
		Count:    len(events),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// GetSummary handles GET /admin/visitors/summary requests.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.repo.Summary(r.Context(), time.Now())
	if err != nil {
		h.logger.Error("failed to compute visit summary", "error", err)
		http.Error(w, "failed to compute summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

func (h *Handler) publishChange(r *http.Request) {
	if h.feed == nil {
		return
	}
	if err := h.feed.Publish(r.Context(), changefeed.TableVisitors); err != nil {
		h.logger.Error("failed to publish visitor change", "error", err)
	}
}
