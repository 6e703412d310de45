package announcements

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// announcementsDB is the subset of pgxpool.Pool the repository needs; tests
// inject a mock through it.
type announcementsDB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores the announcement as a single fixed row.
type PostgresRepository struct {
	db announcementsDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("announcements: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB allows injecting a mock database for testing.
func NewPostgresRepositoryWithDB(db announcementsDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the current announcement, or (nil, nil) when none is published.
func (r *PostgresRepository) Get(ctx context.Context) (*Announcement, error) {
	var a Announcement
	err := r.db.QueryRow(ctx, `
		SELECT text, active, updated_at
		FROM announcements
		WHERE id = 1
	`).Scan(&a.Text, &a.Active, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("announcements: select failed: %w", err)
	}
	return &a, nil
}

// Set upserts the single announcement row.
func (r *PostgresRepository) Set(ctx context.Context, text string) (*Announcement, error) {
	req := SetAnnouncementRequest{Text: text}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a := Announcement{Text: text, Active: true}
	err := r.db.QueryRow(ctx, `
		INSERT INTO announcements (id, text, active, updated_at)
		VALUES (1, $1, TRUE, NOW())
		ON CONFLICT (id) DO UPDATE SET text = EXCLUDED.text, active = TRUE, updated_at = NOW()
		RETURNING updated_at
	`, text).Scan(&a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("announcements: upsert failed: %w", err)
	}
	return &a, nil
}

// Clear deletes the announcement row. Deleting an absent row is a no-op.
func (r *PostgresRepository) Clear(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM announcements WHERE id = 1`); err != nil {
		return fmt.Errorf("announcements: delete failed: %w", err)
	}
	return nil
}
