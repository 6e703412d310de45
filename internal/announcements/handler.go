package announcements

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tobro-digital/agency-platform/internal/changefeed"
	"github.com/tobro-digital/agency-platform/pkg/logging"
)

// Cache serves the public endpoint from an in-process snapshot so banner
// reads avoid a database round trip. Implemented by changefeed.Subscriber.
type Cache interface {
	Latest() (*Announcement, bool)
}

// Handler handles HTTP requests for the site announcement
type Handler struct {
	repo   Repository
	cache  Cache
	feed   changefeed.Publisher
	logger *logging.Logger
}

// NewHandler creates a new announcements handler. cache and feed may be nil.
func NewHandler(repo Repository, cache Cache, feed changefeed.Publisher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		cache:  cache,
		feed:   feed,
		logger: logger,
	}
}

// Get handles GET /announcement requests. An absent announcement renders as
// an inactive one, never as an error.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.cache != nil {
		if a, ok := h.cache.Latest(); ok {
			h.respond(w, a)
			return
		}
	}

	a, err := h.repo.Get(r.Context())
	if err != nil {
		h.logger.Error("failed to load announcement", "error", err)
		http.Error(w, "failed to load announcement", http.StatusInternalServerError)
		return
	}
	h.respond(w, a)
}

func (h *Handler) respond(w http.ResponseWriter, a *Announcement) {
	if a == nil {
		a = &Announcement{Active: false}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a)
}

// Set handles PUT /admin/announcement requests.
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	var req SetAnnouncementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	a, err := h.repo.Set(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, ErrMissingText) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to set announcement", "error", err)
		http.Error(w, "failed to set announcement", http.StatusInternalServerError)
		return
	}

	h.logger.Info("announcement published", "length", len(a.Text))
	h.publishChange(r)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a)
}

// Clear handles DELETE /admin/announcement requests.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear announcement", "error", err)
		http.Error(w, "failed to clear announcement", http.StatusInternalServerError)
		return
	}

	h.logger.Info("announcement cleared")
	h.publishChange(r)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) publishChange(r *http.Request) {
	if h.feed == nil {
		return
	}
	if err := h.feed.Publish(r.Context(), changefeed.TableAnnouncements); err != nil {
		h.logger.Error("failed to publish announcement change", "error", err)
	}
}
