package queries

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for query storage
type Repository interface {
	Create(ctx context.Context, req *CreateQueryRequest) (*Query, error)
	List(ctx context.Context) ([]Query, error)
	GetByID(ctx context.Context, id string) (*Query, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is an in-memory Repository used in tests and when no
// database is configured.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*Query
	ordered []string // newest first
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[string]*Query)}
}

// Create stores a new query.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateQueryRequest) (*Query, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	q := &Query{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Email:       req.Email,
		Company:     req.Company,
		Services:    append([]string(nil), req.Services...),
		Description: req.Description,
		Budget:      ParseBudget(req.Budget),
		Timeline:    req.Timeline,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	r.mu.Lock()
	r.byID[q.ID] = q
	r.ordered = append([]string{q.ID}, r.ordered...)
	r.mu.Unlock()

	return q, nil
}

// List returns all queries, newest first.
func (r *InMemoryRepository) List(ctx context.Context) ([]Query, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Query, 0, len(r.ordered))
	for _, id := range r.ordered {
		out = append(out, *r.byID[id])
	}
	return out, nil
}

// GetByID retrieves a query by ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Query, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.byID[id]
	if !ok {
		return nil, ErrQueryNotFound
	}
	copied := *q
	return &copied, nil
}

// UpdateStatus moves a query to a new pipeline status.
func (r *InMemoryRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	q, ok := r.byID[id]
	if !ok {
		return ErrQueryNotFound
	}
	q.Status = status
	return nil
}

// Delete removes a query.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrQueryNotFound
	}
	delete(r.byID, id)
	for i, qid := range r.ordered {
		if qid == id {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
	return nil
}
