package projects

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tobro-digital/agency-platform/internal/changefeed"
	"github.com/tobro-digital/agency-platform/pkg/logging"
)

// Handler handles HTTP requests for upcoming projects
type Handler struct {
	repo   Repository
	feed   changefeed.Publisher
	logger *logging.Logger
}

// NewHandler creates a new projects handler. feed may be nil.
func NewHandler(repo Repository, feed changefeed.Publisher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		feed:   feed,
		logger: logger,
	}
}

// ListProjectsResponse is the response for listing upcoming projects
type ListProjectsResponse struct {
	Projects []UpcomingProject `json:"projects"`
	Count    int               `json:"count"`
}

// List handles GET /projects requests.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list projects", "error", err)
		http.Error(w, "failed to list projects", http.StatusInternalServerError)
		return
	}

	response := ListProjectsResponse{
		Projects: projects,
		Count:    len(projects),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Create handles POST /admin/projects requests.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrMissingTitle) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create project", "error", err)
		http.Error(w, "failed to create project", http.StatusInternalServerError)
		return
	}

	h.logger.Info("project announced", "id", p.ID, "title", p.Title)
	h.publishChange(r)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(p)
}

// Delete handles DELETE /admin/projects/{id} requests.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing project id", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete project", "error", err, "id", id)
		http.Error(w, "failed to delete project", http.StatusInternalServerError)
		return
	}

	h.logger.Info("project deleted", "id", id)
	h.publishChange(r)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) publishChange(r *http.Request) {
	if h.feed == nil {
		return
	}
	if err := h.feed.Publish(r.Context(), changefeed.TableProjects); err != nil {
		h.logger.Error("failed to publish project change", "error", err)
	}
}
