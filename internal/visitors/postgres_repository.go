package visitors

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// visitorsDB is the subset of pgxpool.Pool the repository needs; tests inject
// a mock through it.
type visitorsDB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores visit events in the relational database.
type PostgresRepository struct {
	db     visitorsDB
	tracer trace.Tracer
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("visitors: pgx pool required")
	}
	return &PostgresRepository{
		db:     pool,
		tracer: otel.Tracer("agency.internal.visitors"),
	}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db visitorsDB) *PostgresRepository {
	return &PostgresRepository{
		db:     db,
		tracer: otel.Tracer("agency.internal.visitors"),
	}
}

// Record appends a visit event.
func (r *PostgresRepository) Record(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	ctx, span := r.tracer.Start(ctx, "visitors.record")
	defer span.End()

	_, err := r.db.Exec(ctx, `
		INSERT INTO visitors (id, ip, page, action, user_agent, referer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, event.ID, event.IP, event.Page, event.Action, event.UserAgent, event.Referer, event.CreatedAt)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("visitors: insert failed: %w", err)
	}
	return nil
}

// List returns the most recent events, newest first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	ctx, span := r.tracer.Start(ctx, "visitors.list")
	defer span.End()

	rows, err := r.db.Query(ctx, `
		SELECT id, ip, COALESCE(page, ''), COALESCE(action, ''),
			COALESCE(user_agent, ''), COALESCE(referer, ''), created_at
		FROM visitors
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("visitors: select failed: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			e  Event
			id uuid.UUID
		)
		if err := rows.Scan(&id, &e.IP, &e.Page, &e.Action, &e.UserAgent, &e.Referer, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("visitors: scan failed: %w", err)
		}
		e.ID = id.String()
		out = append(out, e)
	}
	return out, rows.Err()
}

// Summary computes the dashboard roll-up in SQL so it covers the whole table
// rather than a listing window. "Today" is measured in UTC.
func (r *PostgresRepository) Summary(ctx context.Context, now time.Time) (Summary, error) {
	ctx, span := r.tracer.Start(ctx, "visitors.summary")
	defer span.End()

	dayStart := now.UTC().Truncate(24 * time.Hour)
	var s Summary
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT ip),
			COUNT(*) FILTER (WHERE created_at >= $1)
		FROM visitors
	`, dayStart).Scan(&s.Total, &s.UniqueIPs, &s.Today)
	if err != nil {
		span.RecordError(err)
		return Summary{}, fmt.Errorf("visitors: summary failed: %w", err)
	}
	return s, nil
}
