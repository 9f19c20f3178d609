package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/samirrijal/panoplace/internal/core/domain"
	"github.com/samirrijal/panoplace/internal/core/usecases"
)

// --- Mock CacheService ---

type mockCache struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttlSeconds int) error
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, errors.New("not found")
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttlSeconds)
	}
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error { return nil }

// --- Tests ---

func TestPlaceCache_RoundTrip(t *testing.T) {
	cache := usecases.NewPlaceCache(nil)
	ctx := context.Background()
	c := domain.Coordinate{Lat: 48.8566, Lng: 2.3522}

	cache.Store(ctx, c, "France, Paris")

	entry, ok := cache.Lookup(ctx, c)
	if !ok {
		t.Fatal("expected hit for identical coordinate")
	}
	if entry.Name != "France, Paris" {
		t.Errorf("name = %q", entry.Name)
	}
	if !entry.Coordinate.Equal(c) {
		t.Errorf("coordinate = %+v", entry.Coordinate)
	}
}

func TestPlaceCache_NearbyHit(t *testing.T) {
	cache := usecases.NewPlaceCache(nil)
	ctx := context.Background()

	cache.Store(ctx, domain.Coordinate{Lat: 48.8566, Lng: 2.3522}, "France, Paris")

	// ~14 m away: within the 100 m reuse threshold.
	entry, ok := cache.Lookup(ctx, domain.Coordinate{Lat: 48.8567, Lng: 2.3523})
	if !ok {
		t.Fatal("expected hit 14 m from a stored entry")
	}
	if entry.Name != "France, Paris" {
		t.Errorf("name = %q", entry.Name)
	}
}

func TestPlaceCache_MissBeyondThreshold(t *testing.T) {
	cache := usecases.NewPlaceCache(nil)
	ctx := context.Background()

	cache.Store(ctx, domain.Coordinate{Lat: 48.8566, Lng: 2.3522}, "France, Paris")

	// ~2 km away.
	if _, ok := cache.Lookup(ctx, domain.Coordinate{Lat: 48.8700, Lng: 2.3700}); ok {
		t.Error("expected miss beyond the reuse threshold")
	}
}

func TestPlaceCache_NearestWins(t *testing.T) {
	cache := usecases.NewPlaceCache(nil)
	ctx := context.Background()

	cache.Store(ctx, domain.Coordinate{Lat: 48.85660, Lng: 2.35220}, "France, Paris")
	cache.Store(ctx, domain.Coordinate{Lat: 48.85700, Lng: 2.35300}, "France, Paris 2e")

	// Closer to the second entry; both are in range.
	entry, ok := cache.Lookup(ctx, domain.Coordinate{Lat: 48.85695, Lng: 2.35295})
	if !ok {
		t.Fatal("expected hit")
	}
	if entry.Name != "France, Paris 2e" {
		t.Errorf("expected nearest entry, got %q", entry.Name)
	}
}

func TestPlaceCache_OverwriteSameKey(t *testing.T) {
	cache := usecases.NewPlaceCache(nil)
	ctx := context.Background()
	c := domain.Coordinate{Lat: 43.263, Lng: -2.935}

	cache.Store(ctx, c, "old")
	cache.Store(ctx, c, "Spain, Bilbao")

	entry, _ := cache.Lookup(ctx, c)
	if entry.Name != "Spain, Bilbao" {
		t.Errorf("expected overwrite, got %q", entry.Name)
	}
	if cache.Len() != 1 {
		t.Errorf("len = %d, want 1", cache.Len())
	}
}

func TestPlaceCache_RemoteWriteThrough(t *testing.T) {
	var setKey string
	var setValue []byte
	remote := &mockCache{
		setFn: func(ctx context.Context, key string, value []byte, ttl int) error {
			setKey, setValue = key, value
			return nil
		},
	}

	cache := usecases.NewPlaceCache(remote)
	ctx := context.Background()
	cache.Store(ctx, domain.Coordinate{Lat: 48.8566, Lng: 2.3522}, "France, Paris")

	if setKey != "place:48.856600,2.352200" {
		t.Errorf("remote key = %q", setKey)
	}
	var e domain.PlaceEntry
	if err := json.Unmarshal(setValue, &e); err != nil {
		t.Fatalf("remote value not JSON: %v", err)
	}
	if e.Name != "France, Paris" {
		t.Errorf("remote entry name = %q", e.Name)
	}
}

func TestPlaceCache_RemoteReadThrough(t *testing.T) {
	entry := domain.PlaceEntry{
		Coordinate: domain.Coordinate{Lat: 48.8566, Lng: 2.3522},
		Name:       "France, Paris",
	}
	data, _ := json.Marshal(entry)

	remote := &mockCache{
		getFn: func(ctx context.Context, key string) ([]byte, error) {
			if key == "place:48.856600,2.352200" {
				return data, nil
			}
			return nil, errors.New("not found")
		},
	}

	cache := usecases.NewPlaceCache(remote)
	got, ok := cache.Lookup(context.Background(), domain.Coordinate{Lat: 48.8566, Lng: 2.3522})
	if !ok {
		t.Fatal("expected remote hit")
	}
	if got.Name != "France, Paris" {
		t.Errorf("name = %q", got.Name)
	}
	if cache.Len() != 1 {
		t.Error("remote hit should populate the local map")
	}
}
