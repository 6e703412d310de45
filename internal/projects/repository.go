package projects

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for upcoming project storage
type Repository interface {
	Create(ctx context.Context, req *CreateProjectRequest) (*UpcomingProject, error)
	List(ctx context.Context) ([]UpcomingProject, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is an in-memory Repository used in tests and when no
// database is configured.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*UpcomingProject
	ordered []string // newest first
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[string]*UpcomingProject)}
}

// Create stores a new project announcement.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateProjectRequest) (*UpcomingProject, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := &UpcomingProject{
		ID:         uuid.New().String(),
		Title:      req.Title,
		Client:     req.Client,
		Summary:    req.Summary,
		Tags:       append([]string(nil), req.Tags...),
		LaunchDate: req.LaunchDate,
		CreatedAt:  time.Now().UTC(),
	}

	r.mu.Lock()
	r.byID[p.ID] = p
	r.ordered = append([]string{p.ID}, r.ordered...)
	r.mu.Unlock()

	return p, nil
}

// List returns all upcoming projects, newest first.
func (r *InMemoryRepository) List(ctx context.Context) ([]UpcomingProject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]UpcomingProject, 0, len(r.ordered))
	for _, id := range r.ordered {
		out = append(out, *r.byID[id])
	}
	return out, nil
}

// Delete removes a project announcement.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrProjectNotFound
	}
	delete(r.byID, id)
	for i, pid := range r.ordered {
		if pid == id {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
	return nil
}
