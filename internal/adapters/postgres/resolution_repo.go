package postgres

import (
	"context"

	"github.com/samirrijal/panoplace/internal/core/domain"
)

// ResolutionRepo implements ports.ResolutionRepository.
type ResolutionRepo struct {
	db *DB
}

func NewResolutionRepo(db *DB) *ResolutionRepo {
	return &ResolutionRepo{db: db}
}

func (r *ResolutionRepo) Insert(ctx context.Context, res *domain.Resolution) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO resolutions (time, lat, lng, place, source)
		VALUES ($1, $2, $3, $4, $5)
	`, res.Time, res.Coordinate.Lat, res.Coordinate.Lng, res.Place, res.Source)
	return err
}

func (r *ResolutionRepo) ListRecent(ctx context.Context, limit int) ([]domain.Resolution, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT time, lat, lng, place, source
		FROM resolutions
		ORDER BY time DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Resolution
	for rows.Next() {
		var res domain.Resolution
		if err := rows.Scan(&res.Time, &res.Coordinate.Lat, &res.Coordinate.Lng,
			&res.Place, &res.Source); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
