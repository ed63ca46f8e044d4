package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kirillkom/outlet-assistant/internal/core/domain"
)

const schemaLockKey = int64(2025031501)

type OutletRepository struct {
	db *sql.DB
}

func NewOutletRepository(db *sql.DB) *OutletRepository {
	return &OutletRepository{db: db}
}

func (r *OutletRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker/ingest startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockKey); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS outlets (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	operating_hours TEXT NOT NULL DEFAULT '',
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	waze_link TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (name, address)
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *OutletRepository) ListAll(ctx context.Context) ([]domain.Outlet, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, address, operating_hours, latitude, longitude, waze_link, updated_at
FROM outlets
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("list outlets: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Outlet, 0)
	for rows.Next() {
		outlet, err := scanOutlet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, outlet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outlets: %w", err)
	}
	return out, nil
}

func (r *OutletRepository) GetByID(ctx context.Context, id int64) (*domain.Outlet, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, address, operating_hours, latitude, longitude, waze_link, updated_at
FROM outlets
WHERE id = $1
`, id)

	outlet, err := scanOutlet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrOutletNotFound, "get outlet", fmt.Errorf("outlet %s", strconv.FormatInt(id, 10)))
		}
		return nil, err
	}
	return &outlet, nil
}

// Upsert keys outlets by (name, address) and writes the assigned id back.
func (r *OutletRepository) Upsert(ctx context.Context, outlet *domain.Outlet) error {
	if outlet == nil {
		return domain.WrapError(domain.ErrInvalidInput, "upsert outlet", errors.New("outlet is nil"))
	}
	if outlet.Name == "" {
		return domain.WrapError(domain.ErrInvalidInput, "upsert outlet", errors.New("name is required"))
	}

	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, `
INSERT INTO outlets (name, address, operating_hours, latitude, longitude, waze_link, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (name, address) DO UPDATE
SET operating_hours = EXCLUDED.operating_hours,
	latitude = EXCLUDED.latitude,
	longitude = EXCLUDED.longitude,
	waze_link = EXCLUDED.waze_link,
	updated_at = EXCLUDED.updated_at
RETURNING id
`,
		outlet.Name, outlet.Address, outlet.OperatingHours,
		nullFloat(outlet.Latitude), nullFloat(outlet.Longitude), outlet.WazeLink, now,
	).Scan(&outlet.ID)
	if err != nil {
		return fmt.Errorf("upsert outlet: %w", err)
	}
	outlet.UpdatedAt = now
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOutlet(row rowScanner) (domain.Outlet, error) {
	var (
		outlet    domain.Outlet
		latitude  sql.NullFloat64
		longitude sql.NullFloat64
	)
	err := row.Scan(
		&outlet.ID, &outlet.Name, &outlet.Address, &outlet.OperatingHours,
		&latitude, &longitude, &outlet.WazeLink, &outlet.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Outlet{}, err
		}
		return domain.Outlet{}, fmt.Errorf("scan outlet: %w", err)
	}
	if latitude.Valid {
		outlet.Latitude = &latitude.Float64
	}
	if longitude.Valid {
		outlet.Longitude = &longitude.Float64
	}
	return outlet, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
