package ports

import (
	"context"

	"github.com/samirrijal/panoplace/internal/core/domain"
)

// Geocoder resolves a coordinate into a place description via an external
// reverse-geocoding service. A non-nil error means the call itself failed
// (transport error or non-success HTTP status); a thin but well-formed
// response is returned as a result with empty fields.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lng float64) (*domain.ReverseResult, error)
}

// PositionSource extracts the current coordinate from the viewer page.
// Returns domain.ErrNoPosition when no position-bearing element is found
// or its coordinate is unparsable.
type PositionSource interface {
	Current(ctx context.Context) (domain.Coordinate, error)
}

// CacheService provides read-through caching shared between processes.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes resolution events to a message broker.
type EventPublisher interface {
	PublishDisplay(ctx context.Context, d *domain.Display) error
	PublishResolution(ctx context.Context, r *domain.Resolution) error
}
