package http

import (
	"github.com/nats-io/nats.go"
	"github.com/samirrijal/panoplace/internal/adapters/postgres"
	"github.com/samirrijal/panoplace/internal/adapters/valkey"
	"github.com/samirrijal/panoplace/internal/core/ports"
	"github.com/samirrijal/panoplace/internal/core/usecases"
)

// Dependencies holds everything the HTTP handlers need. History, NATS,
// DB, and Cache may be nil when the backing service is unavailable;
// handlers degrade instead of failing to start.
type Dependencies struct {
	Places   *usecases.PlaceCache
	Geocoder ports.Geocoder
	History  ports.ResolutionRepository
	NATS     *nats.Conn
	DB       *postgres.DB
	Cache    *valkey.Cache
}
