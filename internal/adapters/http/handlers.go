package http

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samirrijal/panoplace/internal/adapters/valkey"
	"github.com/samirrijal/panoplace/internal/core/domain"
)

// DisplayHandler returns the current display tuple written by the poller.
// When the mirror is empty (poller not running yet) the default
// disconnected display is returned rather than an error: the presentation
// layer always gets something renderable.
func DisplayHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Cache != nil {
			if data, err := deps.Cache.Get(c.Context(), valkey.DisplayKey); err == nil {
				var d domain.Display
				if err := json.Unmarshal(data, &d); err == nil {
					return c.JSON(d)
				}
			}
		}
		return c.JSON(domain.Display{
			Text:      domain.TextUnavailable,
			Status:    domain.StatusDisconnected,
			UpdatedAt: time.Now(),
		})
	}
}

// PositionHandler returns the last coordinate the poller extracted.
func PositionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Cache == nil {
			return errUnavailable(c, "cache not available")
		}
		data, err := deps.Cache.Get(c.Context(), valkey.PositionKey)
		if err != nil {
			return errNotFound(c, "no position observed yet")
		}
		var coord domain.Coordinate
		if err := json.Unmarshal(data, &coord); err != nil {
			return errInternal(c, "corrupt position mirror")
		}
		return c.JSON(coord)
	}
}

// placeResponse is the payload of a synchronous place lookup.
type placeResponse struct {
	Place  string            `json:"place"`
	Source string            `json:"source"`
	Coord  domain.Coordinate `json:"coordinate"`
}

// PlaceHandler resolves a coordinate to a place name on demand,
// cache-first like the pipeline but synchronously.
func PlaceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lat := c.QueryFloat("lat", 0)
		lng := c.QueryFloat("lng", 0)
		if c.Query("lat") == "" || c.Query("lng") == "" {
			return errBadRequest(c, "lat and lng are required")
		}

		coord := domain.Coordinate{Lat: lat, Lng: lng}
		if !coord.Valid() {
			return errBadRequest(c, "lat must be in [-90,90] and lng in [-180,180]")
		}

		if entry, ok := deps.Places.Lookup(c.Context(), coord); ok {
			return c.JSON(placeResponse{Place: entry.Name, Source: domain.SourceCache, Coord: coord})
		}

		res, err := deps.Geocoder.Reverse(c.Context(), lat, lng)
		if err != nil {
			return errUnavailable(c, "reverse geocoding failed: "+err.Error())
		}

		name := res.PlaceName()
		if domain.IsPlaceholderName(name) {
			return errNotFound(c, "no place details for this coordinate")
		}

		deps.Places.Store(c.Context(), coord, name)
		return c.JSON(placeResponse{Place: name, Source: domain.SourceNetwork, Coord: coord})
	}
}

// HistoryHandler lists recent successful resolutions.
func HistoryHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.History == nil {
			return errUnavailable(c, "history not available")
		}

		limit := c.QueryInt("limit", 50)
		if limit <= 0 || limit > 500 {
			limit = 50
		}

		items, err := deps.History.ListRecent(c.Context(), limit)
		if err != nil {
			return errInternal(c, err.Error())
		}
		if items == nil {
			items = []domain.Resolution{}
		}
		return c.JSON(items)
	}
}
