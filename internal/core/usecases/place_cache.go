package usecases

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/samirrijal/panoplace/internal/core/domain"
	"github.com/samirrijal/panoplace/internal/core/ports"
	"github.com/samirrijal/panoplace/internal/pkg/geospatial"
	"github.com/samirrijal/panoplace/internal/pkg/metrics"
)

// PlaceCache maps quantized coordinates to resolved place names. Entries
// are overwritten at the same key but never evicted; a session visits few
// enough distinct positions that unbounded growth is acceptable.
//
// Key equality is only a fast path. Validity is the distance gate: any
// entry strictly closer than the reuse threshold satisfies a lookup.
type PlaceCache struct {
	mu      sync.Mutex
	entries map[string]domain.PlaceEntry
	remote  ports.CacheService // optional write-through, shared across processes
}

// NewPlaceCache creates a place cache. remote may be nil.
func NewPlaceCache(remote ports.CacheService) *PlaceCache {
	return &PlaceCache{
		entries: make(map[string]domain.PlaceEntry),
		remote:  remote,
	}
}

// remoteTTLSeconds bounds how long a place survives in the shared cache.
// The in-memory map has no eviction; the remote tier is per-day.
const remoteTTLSeconds = 86400

// Lookup returns the cached entry valid for the coordinate, if any.
// Exact quantized key first, then the nearest in-range entry.
func (p *PlaceCache) Lookup(ctx context.Context, c domain.Coordinate) (domain.PlaceEntry, bool) {
	key := geospatial.QuantizedKey(c.Lat, c.Lng)

	p.mu.Lock()
	if e, ok := p.entries[key]; ok {
		p.mu.Unlock()
		metrics.CacheHits.WithLabelValues("memory").Inc()
		return e, true
	}

	var (
		best     domain.PlaceEntry
		bestDist float64
		found    bool
	)
	for _, e := range p.entries {
		d := geospatial.Haversine(c.Lat, c.Lng, e.Coordinate.Lat, e.Coordinate.Lng)
		if d < geospatial.ReuseThresholdMeters && (!found || d < bestDist) {
			best, bestDist, found = e, d, true
		}
	}
	p.mu.Unlock()

	if found {
		metrics.CacheHits.WithLabelValues("memory").Inc()
		return best, true
	}

	if e, ok := p.lookupRemote(ctx, key); ok {
		metrics.CacheHits.WithLabelValues("remote").Inc()
		return e, true
	}

	metrics.CacheMisses.Inc()
	return domain.PlaceEntry{}, false
}

// Store records a resolved place at the coordinate's quantized key.
func (p *PlaceCache) Store(ctx context.Context, c domain.Coordinate, name string) {
	entry := domain.PlaceEntry{
		Coordinate: c,
		Name:       name,
		RecordedAt: time.Now(),
	}

	key := geospatial.QuantizedKey(c.Lat, c.Lng)
	p.mu.Lock()
	p.entries[key] = entry
	p.mu.Unlock()

	if p.remote != nil {
		if data, err := json.Marshal(entry); err == nil {
			_ = p.remote.Set(ctx, "place:"+key, data, remoteTTLSeconds)
		}
	}
}

// Len returns the number of in-memory entries.
func (p *PlaceCache) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *PlaceCache) lookupRemote(ctx context.Context, key string) (domain.PlaceEntry, bool) {
	if p.remote == nil {
		return domain.PlaceEntry{}, false
	}
	data, err := p.remote.Get(ctx, "place:"+key)
	if err != nil {
		return domain.PlaceEntry{}, false
	}
	var e domain.PlaceEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return domain.PlaceEntry{}, false
	}

	// Populate the local map so the scan path sees it next time.
	p.mu.Lock()
	p.entries[key] = e
	p.mu.Unlock()
	return e, true
}
