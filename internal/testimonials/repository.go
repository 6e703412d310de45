package testimonials

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for testimonial storage
type Repository interface {
	Create(ctx context.Context, req *CreateTestimonialRequest) (*Testimonial, error)
	List(ctx context.Context) ([]Testimonial, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryRepository is an in-memory Repository used in tests and when no
// database is configured.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*Testimonial
	ordered []string // newest first
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{byID: make(map[string]*Testimonial)}
}

// Create stores a new testimonial.
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateTestimonialRequest) (*Testimonial, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tm := &Testimonial{
		ID:         uuid.New().String(),
		ClientName: req.ClientName,
		Role:       req.Role,
		Industry:   req.Industry,
		Feedback:   req.Feedback,
		Impact:     req.Impact,
		Rating:     ClampRating(req.Rating),
		ThemeColor: req.ThemeColorOrDefault(),
		CreatedAt:  time.Now().UTC(),
	}

	r.mu.Lock()
	r.byID[tm.ID] = tm
	r.ordered = append([]string{tm.ID}, r.ordered...)
	r.mu.Unlock()

	return tm, nil
}

// List returns all testimonials, newest first.
func (r *InMemoryRepository) List(ctx context.Context) ([]Testimonial, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Testimonial, 0, len(r.ordered))
	for _, id := range r.ordered {
		out = append(out, *r.byID[id])
	}
	return out, nil
}

// Delete removes a testimonial.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return ErrTestimonialNotFound
	}
	delete(r.byID, id)
	for i, tid := range r.ordered {
		if tid == id {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
	return nil
}
