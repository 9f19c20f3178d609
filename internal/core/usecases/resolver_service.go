package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samirrijal/panoplace/internal/core/domain"
	"github.com/samirrijal/panoplace/internal/core/ports"
	"github.com/samirrijal/panoplace/internal/pkg/metrics"
)

// Resolution pipeline defaults.
const (
	DefaultDebounce       = 2 * time.Second
	DefaultRequestTimeout = 10 * time.Second
)

// ResolverConfig tunes the pipeline. Zero values fall back to the defaults.
type ResolverConfig struct {
	Debounce       time.Duration
	RequestTimeout time.Duration
	Health         HealthConfig
}

// ResolverService orchestrates position-to-place resolution: it debounces
// bursts of position updates into a single lookup, consults the place
// cache before the network, and feeds outcomes into the health tracker.
//
// Each scheduled resolution carries a sequence number; a completion older
// than the newest applied one is discarded, so a slow network response can
// never overwrite the display produced by a later resolution.
type ResolverService struct {
	geocoder  ports.Geocoder
	cache     *PlaceCache
	health    *HealthTracker
	history   ports.ResolutionRepository // optional
	publisher ports.EventPublisher       // optional

	debounce   time.Duration
	reqTimeout time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	pending   domain.Coordinate
	seq       uint64
	applied   uint64
	lastValid string
	display   domain.Display
}

// NewResolverService creates the pipeline. history and publisher may be nil.
func NewResolverService(
	geocoder ports.Geocoder,
	cache *PlaceCache,
	history ports.ResolutionRepository,
	publisher ports.EventPublisher,
	cfg ResolverConfig,
) *ResolverService {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	s := &ResolverService{
		geocoder:   geocoder,
		cache:      cache,
		history:    history,
		publisher:  publisher,
		debounce:   cfg.Debounce,
		reqTimeout: cfg.RequestTimeout,
		display: domain.Display{
			Text:      domain.TextUnavailable,
			Status:    domain.StatusDisconnected,
			UpdatedAt: time.Now(),
		},
	}
	s.health = NewHealthTracker(cfg.Health, s.onStatusChange)
	return s
}

// Resolve schedules a debounced resolution for the coordinate. Each call
// cancels any pending schedule and restarts the debounce window, so a
// burst of updates collapses into one lookup for the final coordinate.
// An already in-flight network request is not cancelled; its completion
// is discarded if a newer resolution has applied in the meantime.
func (s *ResolverService) Resolve(c domain.Coordinate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = c
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.fire)
}

// Display returns the current renderable (text, status) pair. The status
// is read live from the health tracker so timer-driven decay is visible
// between resolutions.
func (s *ResolverService) Display() domain.Display {
	s.mu.Lock()
	d := s.display
	s.mu.Unlock()
	d.Status = s.health.Status()
	return d
}

// Health exposes the tracker for readiness reporting.
func (s *ResolverService) Health() *HealthTracker {
	return s.health
}

// Close cancels the pending debounce and the health timers.
func (s *ResolverService) Close() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	s.health.Stop()
}

func (s *ResolverService) fire() {
	s.mu.Lock()
	c := s.pending
	s.seq++
	n := s.seq
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.reqTimeout)
	defer cancel()

	if entry, ok := s.cache.Lookup(ctx, c); ok {
		s.completeSuccess(ctx, n, c, entry.Name, domain.SourceCache)
		metrics.ResolutionsTotal.WithLabelValues("cache").Inc()
		return
	}

	metrics.GeocodeRequests.Inc()
	start := time.Now()
	res, err := s.geocoder.Reverse(ctx, c.Lat, c.Lng)
	metrics.GeocodeDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.GeocodeFailures.Inc()
		metrics.ResolutionsTotal.WithLabelValues("failure").Inc()
		s.health.RecordFailure()
		slog.Warn("reverse geocode failed",
			"lat", c.Lat, "lng", c.Lng, "error", err,
			"consecutive_failures", s.health.Failures())
		s.apply(ctx, n, s.fallbackText())
		return
	}

	name := res.PlaceName()
	if domain.IsPlaceholderName(name) {
		// The service answered, just with nothing usable. Counts as a
		// success for health, but is never cached.
		metrics.ResolutionsTotal.WithLabelValues("thin").Inc()
		s.health.RecordSuccess()
		if name == "" {
			name = domain.TextUnavailable
		}
		s.apply(ctx, n, name)
		return
	}

	s.cache.Store(ctx, c, name)
	s.completeSuccess(ctx, n, c, name, domain.SourceNetwork)
	metrics.ResolutionsTotal.WithLabelValues("network").Inc()
}

func (s *ResolverService) completeSuccess(ctx context.Context, n uint64, c domain.Coordinate, name, source string) {
	s.health.RecordSuccess()

	s.mu.Lock()
	s.lastValid = name
	s.mu.Unlock()

	r := &domain.Resolution{Time: time.Now(), Coordinate: c, Place: name, Source: source}
	if s.history != nil {
		if err := s.history.Insert(ctx, r); err != nil {
			slog.Warn("record resolution", "error", err)
		}
	}
	if s.publisher != nil {
		_ = s.publisher.PublishResolution(ctx, r)
	}

	s.apply(ctx, n, name)
}

// fallbackText renders the last known place annotated as stale, or the
// unavailable placeholder when nothing was ever resolved.
func (s *ResolverService) fallbackText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastValid != "" {
		return s.lastValid + domain.StaleSuffix
	}
	return domain.TextUnavailable
}

// apply installs a completed resolution's display unless a newer one has
// already applied.
func (s *ResolverService) apply(ctx context.Context, n uint64, text string) {
	s.mu.Lock()
	if n < s.applied {
		s.mu.Unlock()
		metrics.StaleCompletions.Inc()
		return
	}
	s.applied = n
	s.display = domain.Display{
		Text:      text,
		Status:    s.health.Status(),
		UpdatedAt: time.Now(),
	}
	d := s.display
	s.mu.Unlock()

	if s.publisher != nil {
		_ = s.publisher.PublishDisplay(ctx, &d)
	}
}

// onStatusChange re-publishes the display whenever the health status moves
// without a resolution completing (decay timer, threshold crossing).
func (s *ResolverService) onStatusChange(status domain.Status) {
	s.mu.Lock()
	s.display.Status = status
	s.display.UpdatedAt = time.Now()
	d := s.display
	s.mu.Unlock()

	if s.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.publisher.PublishDisplay(ctx, &d)
	}
}
