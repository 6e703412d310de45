package announcements

import (
	"context"
	"sync"
	"time"
)

// Repository defines the interface for the announcement singleton. Get
// returns (nil, nil) when no announcement exists.
type Repository interface {
	Get(ctx context.Context) (*Announcement, error)
	Set(ctx context.Context, text string) (*Announcement, error)
	Clear(ctx context.Context) error
}

// InMemoryRepository is an in-memory Repository used in tests and when no
// database is configured.
type InMemoryRepository struct {
	mu      sync.RWMutex
	current *Announcement
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

// Get returns the current announcement, or nil when none is published.
func (r *InMemoryRepository) Get(ctx context.Context) (*Announcement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == nil {
		return nil, nil
	}
	copied := *r.current
	return &copied, nil
}

// Set publishes or replaces the announcement.
func (r *InMemoryRepository) Set(ctx context.Context, text string) (*Announcement, error) {
	req := SetAnnouncementRequest{Text: text}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = &Announcement{
		Text:      text,
		Active:    true,
		UpdatedAt: time.Now().UTC(),
	}
	copied := *r.current
	return &copied, nil
}

// Clear removes the announcement. Clearing an absent announcement is a no-op.
func (r *InMemoryRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = nil
	return nil
}
