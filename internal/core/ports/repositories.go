package ports

import (
	"context"

	"github.com/samirrijal/panoplace/internal/core/domain"
)

// ResolutionRepository persists successful resolutions.
type ResolutionRepository interface {
	Insert(ctx context.Context, r *domain.Resolution) error
	ListRecent(ctx context.Context, limit int) ([]domain.Resolution, error)
}
