package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samirrijal/panoplace/internal/adapters/embed"
	natsadapter "github.com/samirrijal/panoplace/internal/adapters/nats"
	"github.com/samirrijal/panoplace/internal/adapters/nominatim"
	"github.com/samirrijal/panoplace/internal/adapters/postgres"
	"github.com/samirrijal/panoplace/internal/adapters/valkey"
	"github.com/samirrijal/panoplace/internal/core/domain"
	"github.com/samirrijal/panoplace/internal/core/ports"
	"github.com/samirrijal/panoplace/internal/core/usecases"
	"github.com/samirrijal/panoplace/internal/pkg/config"
	"github.com/samirrijal/panoplace/internal/pkg/logging"
	"github.com/samirrijal/panoplace/internal/pkg/metrics"
	"github.com/samirrijal/panoplace/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("panoplace-poller")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// History store (optional — the overlay works without it)
	var history ports.ResolutionRepository
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Warn("postgres unavailable, history disabled", "error", err)
	} else {
		defer db.Close()
		history = postgres.NewResolutionRepo(db)
	}

	// Shared cache + display mirror (optional)
	var remote ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		remote = cache
	}

	// Event fabric (optional)
	var publisher ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	source := embed.New(cfg.Viewer.PageURL, cfg.Viewer.EmbedPattern, 5*time.Second)
	geocoder := nominatim.New(
		cfg.Geocoder.BaseURL,
		cfg.Geocoder.UserAgent,
		time.Duration(cfg.Geocoder.TimeoutSeconds)*time.Second,
	)

	resolver := usecases.NewResolverService(
		geocoder,
		usecases.NewPlaceCache(remote),
		history,
		publisher,
		usecases.ResolverConfig{},
	)
	defer resolver.Close()

	pollInterval := time.Duration(cfg.Viewer.PollIntervalSec) * time.Second
	slog.Info("poller starting",
		"page_url", cfg.Viewer.PageURL,
		"embed_pattern", cfg.Viewer.EmbedPattern,
		"poll_interval", pollInterval.String())

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var prev domain.Coordinate
	var havePrev bool

	tick := func() {
		tickCtx, tickCancel := context.WithTimeout(ctx, pollInterval)
		defer tickCancel()

		c, err := source.Current(tickCtx)
		switch {
		case errors.Is(err, domain.ErrNoPosition):
			metrics.PositionPolls.WithLabelValues("absent").Inc()
			slog.Debug("no position on viewer page")
		case err != nil:
			metrics.PositionPolls.WithLabelValues("error").Inc()
			slog.Warn("position poll failed", "error", err)
		default:
			metrics.PositionPolls.WithLabelValues("ok").Inc()
			// Resolve only when the coordinate actually moved. This is
			// exact equality; the distance tolerance lives in the cache.
			if !havePrev || !c.Equal(prev) {
				prev, havePrev = c, true
				resolver.Resolve(c)
				mirrorPosition(tickCtx, cache, c)
			}
		}

		mirrorDisplay(tickCtx, cache, resolver.Display())
	}

	tick()

	for {
		select {
		case <-ticker.C:
			tick()
		case sig := <-quit:
			slog.Info("shutdown signal received", "signal", sig.String())
			cancel()
			return
		case <-ctx.Done():
			return
		}
	}
}

// mirrorDisplay writes the current display tuple where the api can read it.
func mirrorDisplay(ctx context.Context, cache *valkey.Cache, d domain.Display) {
	if cache == nil {
		return
	}
	if data, err := json.Marshal(d); err == nil {
		_ = cache.Set(ctx, valkey.DisplayKey, data, 0)
	}
}

func mirrorPosition(ctx context.Context, cache *valkey.Cache, c domain.Coordinate) {
	if cache == nil {
		return
	}
	if data, err := json.Marshal(c); err == nil {
		_ = cache.Set(ctx, valkey.PositionKey, data, 0)
	}
}
