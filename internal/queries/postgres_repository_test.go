package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
)

func newMockRepo(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewPostgresRepositoryWithDB(mock), mock
}

func queryRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "name", "email", "company", "service",
		"message", "budget", "timeline", "status", "created_at",
	})
}

func TestPostgresCreate(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO queries").
		WithArgs(pgxmock.AnyArg(), "Ada", "ada@acme.com", "Acme", "Web Design, SEO",
			"New site please", "Professional", "3 months", "Pending").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	q, err := repo.Create(context.Background(), &CreateQueryRequest{
		Name:        "Ada",
		Email:       "ada@acme.com",
		Company:     "Acme",
		Services:    []string{"Web Design", "SEO"},
		Description: "New site please",
		Budget:      "Professional",
		Timeline:    "3 months",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if q.Status != StatusPending {
		t.Errorf("status = %s, want Pending", q.Status)
	}
	if !q.CreatedAt.Equal(now) {
		t.Errorf("created_at = %v, want %v", q.CreatedAt, now)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresCreate_ValidatesBeforeHittingDB(t *testing.T) {
	repo, mock := newMockRepo(t)

	_, err := repo.Create(context.Background(), &CreateQueryRequest{Email: "no-name@acme.com"})
	if !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresList_BackfillsLegacyRows(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	rows := queryRows().
		AddRow(uuid.New(), "Ada", "ada@acme.com", "Acme", "SEO",
			"Plain message", "Basic", "ASAP", "Booked", now).
		AddRow(uuid.New(), "Old Row", "old@legacy.com", "", "Web Design",
			"Company: Legacy Ltd\nTimeline: 6 months", "$500", "", "weird", now.Add(-time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM queries").WillReturnRows(rows)

	out, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(out))
	}

	if out[0].Company != "Acme" || out[0].Status != StatusBooked {
		t.Errorf("unexpected first row: %+v", out[0])
	}

	legacy := out[1]
	if legacy.Company != "Legacy Ltd" {
		t.Errorf("legacy company = %q, want Legacy Ltd", legacy.Company)
	}
	if legacy.Timeline != "6 months" {
		t.Errorf("legacy timeline = %q, want 6 months", legacy.Timeline)
	}
	if legacy.Status != StatusPending {
		t.Errorf("unknown status should parse to Pending, got %s", legacy.Status)
	}
	if legacy.Budget.Label != "$500" || legacy.Budget.Tier != TierBasic {
		t.Errorf("unexpected budget: %+v", legacy.Budget)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresGetByID_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM queries").
		WithArgs("missing").
		WillReturnRows(queryRows())

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrQueryNotFound) {
		t.Fatalf("expected ErrQueryNotFound, got %v", err)
	}
}

func TestPostgresUpdateStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE queries SET status").
		WithArgs("Booked", "abc").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdateStatus(context.Background(), "abc", StatusBooked); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresUpdateStatus_NoRowsIsNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE queries SET status").
		WithArgs("Booked", "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), "missing", StatusBooked)
	if !errors.Is(err, ErrQueryNotFound) {
		t.Fatalf("expected ErrQueryNotFound, got %v", err)
	}
}

func TestPostgresUpdateStatus_RejectsInvalidStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	err := repo.UpdateStatus(context.Background(), "abc", Status("Archived"))
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresDelete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("DELETE FROM queries").
		WithArgs("abc").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	if err := repo.Delete(context.Background(), "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	mock.ExpectExec("DELETE FROM queries").
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, ErrQueryNotFound) {
		t.Fatalf("expected ErrQueryNotFound, got %v", err)
	}
}
