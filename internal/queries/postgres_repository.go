package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// queriesDB is the subset of pgxpool.Pool the repository needs; tests inject
// a mock through it.
type queriesDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores queries in the relational database.
type PostgresRepository struct {
	db queriesDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("queries: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db queriesDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new row. The service list is stored comma-joined for
// compatibility with rows written by the previous site.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateQueryRequest) (*Query, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	budget := ParseBudget(req.Budget)
	query := `
		INSERT INTO queries (id, name, email, company, service, message, budget, timeline, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.Name,
		req.Email,
		req.Company,
		joinServices(req.Services),
		req.Description,
		budget.Label,
		req.Timeline,
		string(StatusPending),
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("queries: insert failed: %w", err)
	}

	return &Query{
		ID:          id.String(),
		Name:        req.Name,
		Email:       req.Email,
		Company:     req.Company,
		Services:    append([]string(nil), req.Services...),
		Description: req.Description,
		Budget:      budget,
		Timeline:    req.Timeline,
		Status:      StatusPending,
		CreatedAt:   createdAt,
	}, nil
}

const selectColumns = `id, name, email, COALESCE(company, ''), COALESCE(service, ''),
		COALESCE(message, ''), COALESCE(budget, ''), COALESCE(timeline, ''), COALESCE(status, ''), created_at`

// List returns every query, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]Query, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+selectColumns+`
		FROM queries
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("queries: select failed: %w", err)
	}
	defer rows.Close()

	var out []Query
	for rows.Next() {
		q, err := scanQuery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

// GetByID fetches a single query.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Query, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+selectColumns+`
		FROM queries
		WHERE id = $1
	`, id)
	q, err := scanQuery(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrQueryNotFound
		}
		return nil, err
	}
	return q, nil
}

// UpdateStatus moves a query to a new pipeline status.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}
	ct, err := r.db.Exec(ctx, `UPDATE queries SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("queries: update status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrQueryNotFound
	}
	return nil
}

// Delete removes a query.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM queries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("queries: delete failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrQueryNotFound
	}
	return nil
}

func scanQuery(row pgx.Row) (*Query, error) {
	var (
		q        Query
		service  string
		message  string
		budget   string
		status   string
		id       uuid.UUID
		company  string
		timeline string
	)
	if err := row.Scan(&id, &q.Name, &q.Email, &company, &service, &message, &budget, &timeline, &status, &q.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("queries: scan failed: %w", err)
	}

	q.ID = id.String()
	q.Services = splitServices(service)
	q.Description = message
	q.Budget = ParseBudget(budget)
	q.Status = ParseStatus(status)

	// Rows written before company/timeline became columns carry them inside
	// the message blob.
	legacyCompany, legacyTimeline := parseLegacyMessage(message)
	if company == "" {
		company = legacyCompany
	}
	if timeline == "" {
		timeline = legacyTimeline
	}
	q.Company = company
	q.Timeline = timeline

	return &q, nil
}
