package ports

import (
	"context"

	"fellingdate/domain/dendro"
)

// ArchivedEstimate is one stored interval-estimate row.
type ArchivedEstimate struct {
	ID        string  `db:"id"`
	SeriesID  string  `db:"series_id"`
	Dataset   string  `db:"dataset"`
	Family    string  `db:"family"`
	Lower     int     `db:"lower_year"`
	Upper     *int    `db:"upper_year"`
	Mass      float64 `db:"mass"`
	CredMass  float64 `db:"cred_mass"`
	CreatedAt string  `db:"created_at"`
}

// EstimateArchive persists computed felling-date intervals for later
// reporting. Optional: callers must tolerate ErrArchiveDisabled.
type EstimateArchive interface {
	Save(ctx context.Context, seriesID string, hdi dendro.HDIInterval) (ArchivedEstimate, error)
	ListBySeries(ctx context.Context, seriesID string) ([]ArchivedEstimate, error)
}
