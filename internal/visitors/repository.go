package visitors

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit caps how many events a listing returns when the caller
// does not say.
const DefaultListLimit = 100

// Repository defines the interface for visit event storage
type Repository interface {
	Record(ctx context.Context, event *Event) error
	List(ctx context.Context, limit int) ([]Event, error)
	Summary(ctx context.Context, now time.Time) (Summary, error)
}

// InMemoryRepository is an in-memory Repository used in tests and when no
// database is configured.
type InMemoryRepository struct {
	mu     sync.RWMutex
	events []Event // newest first
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Record appends a visit event.
func (r *InMemoryRepository) Record(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	r.events = append([]Event{*event}, r.events...)
	r.mu.Unlock()
	return nil
}

// List returns the most recent events, newest first.
func (r *InMemoryRepository) List(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit > len(r.events) {
		limit = len(r.events)
	}
	out := make([]Event, limit)
	copy(out, r.events[:limit])
	return out, nil
}

// Summary rolls up every stored event, not just the listing window.
func (r *InMemoryRepository) Summary(ctx context.Context, now time.Time) (Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Summarize(r.events, now), nil
}
