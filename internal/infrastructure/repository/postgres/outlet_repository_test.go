package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

var outletColumns = []string{"id", "name", "address", "operating_hours", "latitude", "longitude", "waze_link", "updated_at"}

func newRepoWithMock(t *testing.T) (*OutletRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return NewOutletRepository(db), mock, func() { _ = db.Close() }
}

func TestListAllMapsNullCoordinates(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	rows := sqlmock.NewRows(outletColumns).
		AddRow(int64(1), "Subway Bangsar", "Jalan Telawi", "Monday - Sunday, 8:00 AM - 10:00 PM", 3.13, 101.67, "https://waze.com/ul?ll=3.13,101.67", time.Now()).
		AddRow(int64(2), "Subway Cheras", "", "", nil, nil, "", time.Now())
	mock.ExpectQuery("FROM outlets").WillReturnRows(rows)

	outlets, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(outlets) != 2 {
		t.Fatalf("expected 2 outlets, got %d", len(outlets))
	}
	if outlets[0].Latitude == nil || *outlets[0].Latitude != 3.13 {
		t.Fatalf("expected latitude, got %+v", outlets[0])
	}
	if outlets[1].Latitude != nil || outlets[1].Longitude != nil {
		t.Fatalf("expected nil coordinates, got %+v", outlets[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectQuery("FROM outlets").
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	if !domain.IsKind(err, domain.ErrOutletNotFound) {
		t.Fatalf("expected ErrOutletNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertWritesBackAssignedID(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	lat := 3.05
	outlet := &domain.Outlet{Name: "Subway Puchong", Address: "IOI Mall", Latitude: &lat}
	mock.ExpectQuery("INSERT INTO outlets").
		WithArgs("Subway Puchong", "IOI Mall", "", sql.NullFloat64{Float64: 3.05, Valid: true}, sql.NullFloat64{}, "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	if err := repo.Upsert(context.Background(), outlet); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if outlet.ID != 9 || outlet.UpdatedAt.IsZero() {
		t.Fatalf("expected id and timestamp written back, got %+v", outlet)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpsertRejectsNamelessOutlet(t *testing.T) {
	repo, _, done := newRepoWithMock(t)
	defer done()

	err := repo.Upsert(context.Background(), &domain.Outlet{Address: "somewhere"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEnsureSchemaTakesAdvisoryLock(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").WithArgs(schemaLockKey).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS outlets").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
