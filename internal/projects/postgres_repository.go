package projects

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// projectsDB is the subset of pgxpool.Pool the repository needs; tests inject
// a mock through it.
type projectsDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores upcoming projects in the relational database.
type PostgresRepository struct {
	db projectsDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("projects: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db projectsDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new project announcement.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateProjectRequest) (*UpcomingProject, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	var createdAt time.Time
	err := r.db.QueryRow(ctx, `
		INSERT INTO upcoming_projects (id, title, client, summary, tags, launch_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, id, req.Title, req.Client, req.Summary, req.Tags, req.LaunchDate).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("projects: insert failed: %w", err)
	}

	return &UpcomingProject{
		ID:         id.String(),
		Title:      req.Title,
		Client:     req.Client,
		Summary:    req.Summary,
		Tags:       append([]string(nil), req.Tags...),
		LaunchDate: req.LaunchDate,
		CreatedAt:  createdAt,
	}, nil
}

// List returns every upcoming project, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]UpcomingProject, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, COALESCE(client, ''), COALESCE(summary, ''), tags, launch_date, created_at
		FROM upcoming_projects
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("projects: select failed: %w", err)
	}
	defer rows.Close()

	var out []UpcomingProject
	for rows.Next() {
		var (
			p  UpcomingProject
			id uuid.UUID
		)
		if err := rows.Scan(&id, &p.Title, &p.Client, &p.Summary, &p.Tags, &p.LaunchDate, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("projects: scan failed: %w", err)
		}
		p.ID = id.String()
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a project announcement.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM upcoming_projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("projects: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}
