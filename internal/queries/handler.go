package queries

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tobro-digital/agency-platform/internal/changefeed"
	"github.com/tobro-digital/agency-platform/pkg/logging"
)

// Notifier alerts the team about a new query. Implemented by notify.Service.
type Notifier interface {
	QueryReceived(q *Query)
}

// Handler handles HTTP requests for project queries
type Handler struct {
	repo     Repository
	feed     changefeed.Publisher
	notifier Notifier
	logger   *logging.Logger
}

// NewHandler creates a new queries handler. feed and notifier may be nil.
func NewHandler(repo Repository, feed changefeed.Publisher, notifier Notifier, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:     repo,
		feed:     feed,
		notifier: notifier,
		logger:   logger,
	}
}

// Create handles POST /queries requests from the public intake form.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateQueryRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode query request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	query, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidName) || errors.Is(err, ErrMissingEmail) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create query", "error", err)
		http.Error(w, "failed to create query", http.StatusInternalServerError)
		return
	}

	h.logger.Info("query created", "id", query.ID, "email", query.Email)
	h.publishChange(r)
	if h.notifier != nil {
		h.notifier.QueryReceived(query)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(query)
}

// ListQueriesResponse is the response for listing queries
type ListQueriesResponse struct {
	Queries []Query `json:"queries"`
	Count   int     `json:"count"`
}

// List handles GET /admin/queries requests. Supports ?status= (exact match,
// "All" passes everything) and ?search= (case-insensitive substring over
// name, company and email).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list queries", "error", err)
		http.Error(w, "failed to list queries", http.StatusInternalServerError)
		return
	}

	filtered := Filter(all, r.URL.Query().Get("status"), r.URL.Query().Get("search"))

	response := ListQueriesResponse{
		Queries: filtered,
		Count:   len(filtered),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// AnalyticsReport is the dashboard roll-up over every query.
type AnalyticsReport struct {
	Total              int           `json:"total"`
	StatusCounts       StatusCounts  `json:"status_counts"`
	ConversionRate     float64       `json:"conversion_rate"`
	Services           *Distribution `json:"service_distribution"`
	Budgets            *Distribution `json:"budget_distribution"`
	MostPopularService string        `json:"most_popular_service"`
}

// Analytics handles GET /admin/analytics requests.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to load queries for analytics", "error", err)
		http.Error(w, "failed to compute analytics", http.StatusInternalServerError)
		return
	}

	services := ServiceDistribution(all)
	report := AnalyticsReport{
		Total:              len(all),
		StatusCounts:       CountByStatus(all),
		ConversionRate:     ConversionRate(all),
		Services:           services,
		Budgets:            BudgetDistribution(all),
		MostPopularService: services.MostPopular(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}

// ListClientsResponse is the response for the client roll-up
type ListClientsResponse struct {
	Clients []Client `json:"clients"`
	Count   int      `json:"count"`
}

// Clients handles GET /admin/clients requests. Supports ?search= with the
// same semantics as the query list.
func (h *Handler) Clients(w http.ResponseWriter, r *http.Request) {
	all, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to load queries for clients", "error", err)
		http.Error(w, "failed to list clients", http.StatusInternalServerError)
		return
	}

	clients := FilterClients(GroupByClient(all), r.URL.Query().Get("search"))

	response := ListClientsResponse{
		Clients: clients,
		Count:   len(clients),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// UpdateStatusRequest is the payload for a status transition.
type UpdateStatusRequest struct {
	Status Status `json:"status"`
}

// UpdateStatus handles PATCH /admin/queries/{id}/status requests.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing query id", http.StatusBadRequest)
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !req.Status.Valid() {
		http.Error(w, ErrInvalidStatus.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, ErrQueryNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update query status", "error", err, "id", id)
		http.Error(w, "failed to update status", http.StatusInternalServerError)
		return
	}

	h.logger.Info("query status updated", "id", id, "status", req.Status)
	h.publishChange(r)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"id": id, "status": req.Status})
}

// Delete handles DELETE /admin/queries/{id} requests.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing query id", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrQueryNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete query", "error", err, "id", id)
		http.Error(w, "failed to delete query", http.StatusInternalServerError)
		return
	}

	h.logger.Info("query deleted", "id", id)
	h.publishChange(r)

	w.WriteHeader(http.StatusNoContent)
}

// publishChange nudges feed subscribers to re-fetch. Delivery failures are
// logged and never fail the request that caused them.
func (h *Handler) publishChange(r *http.Request) {
	if h.feed == nil {
		return
	}
	if err := h.feed.Publish(r.Context(), changefeed.TableQueries); err != nil {
		h.logger.Error("failed to publish queries change", "error", err)
	}
}
