package testimonials

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// testimonialsDB is the subset of pgxpool.Pool the repository needs; tests
// inject a mock through it.
type testimonialsDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores testimonials in the relational database.
type PostgresRepository struct {
	db testimonialsDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("testimonials: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db testimonialsDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new testimonial. The rating is clamped before it touches
// the database.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateTestimonialRequest) (*Testimonial, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	rating := ClampRating(req.Rating)
	color := req.ThemeColorOrDefault()
	var createdAt time.Time
	err := r.db.QueryRow(ctx, `
		INSERT INTO testimonials (id, client_name, role, industry, feedback, impact, rating, theme_color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, id, req.ClientName, req.Role, req.Industry, req.Feedback, req.Impact, rating, color).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("testimonials: insert failed: %w", err)
	}

	return &Testimonial{
		ID:         id.String(),
		ClientName: req.ClientName,
		Role:       req.Role,
		Industry:   req.Industry,
		Feedback:   req.Feedback,
		Impact:     req.Impact,
		Rating:     rating,
		ThemeColor: color,
		CreatedAt:  createdAt,
	}, nil
}

// List returns every testimonial, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Testimonial, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, client_name, COALESCE(role, ''), COALESCE(industry, ''),
			feedback, COALESCE(impact, ''), rating, COALESCE(theme_color, ''), created_at
		FROM testimonials
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("testimonials: select failed: %w", err)
	}
	defer rows.Close()

	var out []Testimonial
	for rows.Next() {
		var (
			tm Testimonial
			id uuid.UUID
		)
		if err := rows.Scan(&id, &tm.ClientName, &tm.Role, &tm.Industry, &tm.Feedback,
			&tm.Impact, &tm.Rating, &tm.ThemeColor, &tm.CreatedAt); err != nil {
			return nil, fmt.Errorf("testimonials: scan failed: %w", err)
		}
		tm.ID = id.String()
		// Rows written before the range check existed may carry wild ratings
		// or miss an accent color.
		tm.Rating = ClampRating(tm.Rating)
		if tm.ThemeColor == "" {
			tm.ThemeColor = DefaultThemeColor
		}
		out = append(out, tm)
	}
	return out, rows.Err()
}

// Delete removes a testimonial.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM testimonials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("testimonials: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrTestimonialNotFound
	}
	return nil
}
