package testimonials

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tobro-digital/agency-platform/internal/changefeed"
	"github.com/tobro-digital/agency-platform/pkg/logging"
)

// Handler handles HTTP requests for testimonials
type Handler struct {
	repo   Repository
	feed   changefeed.Publisher
	logger *logging.Logger
}

// NewHandler creates a new testimonials handler. feed may be nil.
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

// ListTestimonialsResponse is the response for listing testimonials
type ListTestimonialsResponse struct {
	Testimonials []Testimonial `json:"testimonials"`
	Count        int           `json:"count"`
}

// List handles GET /testimonials requests.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	testimonials, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list testimonials", "error", err)
		http.Error(w, "failed to list testimonials", http.StatusInternalServerError)
		return
	}

	response := ListTestimonialsResponse{
		Testimonials: testimonials,
		Count:        len(testimonials),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Create handles POST /admin/testimonials requests.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTestimonialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tm, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrMissingClientName) || errors.Is(err, ErrMissingFeedback) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to create testimonial", "error", err)
		http.Error(w, "failed to create testimonial", http.StatusInternalServerError)
		return
	}

	h.logger.Info("testimonial created", "id", tm.ID, "client", tm.ClientName)
	h.publishChange(r)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(tm)
}

// Delete handles DELETE /admin/testimonials/{id} requests.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing testimonial id", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrTestimonialNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete testimonial", "error", err, "id", id)
		http.Error(w, "failed to delete testimonial", http.StatusInternalServerError)
		return
	}

	h.logger.Info("testimonial deleted", "id", id)
	h.publishChange(r)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) publishChange(r *http.Request) {
	if h.feed == nil {
		return
	}
	if err := h.feed.Publish(r.Context(), changefeed.TableTestimonials); err != nil {
		h.logger.Error("failed to publish testimonial change", "error", err)
	}
}
