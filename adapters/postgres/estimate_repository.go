package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"fellingdate/domain/dendro"
	"fellingdate/ports"
)

// estimateRepository implements the EstimateArchive interface
type estimateRepository struct {
	db *sqlx.DB
}

// NewEstimateArchive creates an estimate archive backed by postgres.
func NewEstimateArchive(db *sqlx.DB) ports.EstimateArchive {
	return &estimateRepository{db: db}
}

// Connect opens and pings the archive database.
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to estimate archive: %w", err)
	}
	return db, nil
}

// Migrate creates the archive schema when missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	schema := `CREATE TABLE IF NOT EXISTS felling_estimates (
		id UUID PRIMARY KEY,
		series_id TEXT NOT NULL,
		dataset TEXT NOT NULL,
		family TEXT NOT NULL,
		lower_year INT NOT NULL,
		upper_year INT,
		mass DOUBLE PRECISION NOT NULL,
		cred_mass DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS felling_estimates_series_idx ON felling_estimates (series_id)`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate estimate archive: %w", err)
	}
	return nil
}

// Save inserts one computed interval.
func (r *estimateRepository) Save(ctx context.Context, seriesID string, hdi dendro.HDIInterval) (ports.ArchivedEstimate, error) {
	row := ports.ArchivedEstimate{
		ID:        uuid.NewString(),
		SeriesID:  seriesID,
		Dataset:   hdi.Dataset,
		Family:    hdi.Family,
		Lower:     hdi.Lower,
		Upper:     hdi.Upper,
		Mass:      hdi.Mass,
		CredMass:  hdi.CredMass,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	query := `INSERT INTO felling_estimates (
		id, series_id, dataset, family, lower_year, upper_year, mass, cred_mass, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		row.ID, row.SeriesID, row.Dataset, row.Family, row.Lower, row.Upper, row.Mass, row.CredMass, row.CreatedAt,
	)
	if err != nil {
		return ports.ArchivedEstimate{}, fmt.Errorf("failed to save estimate: %w", err)
	}
	return row, nil
}

// ListBySeries returns stored estimates for one series, newest first.
func (r *estimateRepository) ListBySeries(ctx context.Context, seriesID string) ([]ports.ArchivedEstimate, error) {
	query := `SELECT id, series_id, dataset, family, lower_year, upper_year, mass, cred_mass, created_at
	FROM felling_estimates WHERE series_id = $1 ORDER BY created_at DESC`

	var rows []ports.ArchivedEstimate
	if err := r.db.SelectContext(ctx, &rows, query, seriesID); err != nil {
		return nil, fmt.Errorf("failed to list estimates: %w", err)
	}
	return rows, nil
}
