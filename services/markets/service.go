package markets

import (
	"context"
	"log/slog"
	"time"

	"marketdata-backend/lib/ttlcache"

	scrapers "marketdata-backend/lib/scrapers/markets"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("services/markets")

const defaultSnapshotTTL = time.Second * 90

// Service owns the current market snapshot: it decides when cached data is
// still fresh, when to trigger a new scrape run, and keeps the on-disk copy
// in sync. All request handlers and daemons go through it.
type Service struct {
	manager *scrapers.Manager
	store   *Store

	snapshotCache *ttlcache.Cache[scrapers.Snapshot]
	summaryCache  *ttlcache.Cache[scrapers.CategorySummary]
}

type ServiceOptions struct {
	Manager *scrapers.Manager
	// Store is optional; without it snapshots only live in memory.
	Store *Store
	// SnapshotTTL defaults to 90s.
	SnapshotTTL time.Duration
	// Clock defaults to time.Now. Tests inject a fake to move time.
	Clock ttlcache.Clock
}

func NewService(opts ServiceOptions) *Service {
	if opts.Manager == nil {
		panic("nil scrape manager")
	}
	ttl := opts.SnapshotTTL
	if ttl == 0 {
		ttl = defaultSnapshotTTL
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	s := &Service{
		manager:       opts.Manager,
		store:         opts.Store,
		snapshotCache: ttlcache.NewWithClock[scrapers.Snapshot](ttl, clock),
		summaryCache:  ttlcache.NewWithClock[scrapers.CategorySummary](ttl, clock),
	}

	if s.store != nil {
		snapshot, err := s.store.Load()
		if err != nil {
			slog.Warn("no persisted snapshot loaded", "err", err)
		} else {
			// serve the persisted copy for one ttl window after restart
			// rather than hammering the sources on boot
			s.snapshotCache.Set(snapshot)
			slog.Info("loaded persisted snapshot", "last_updated", snapshot.LastUpdated)
		}
	}

	return s
}

// RunScrape triggers an immediate scrape run, bypassing the cache. The run's
// output becomes the current snapshot only when no filters narrowed it, a
// partial run must never masquerade as a full snapshot.
func (s *Service) RunScrape(ctx context.Context, sources []string, dataTypes []string) scrapers.RawScrapeOutput {
	ctx, span := tracer.Start(ctx, "RunScrape", trace.WithAttributes(
		attribute.StringSlice("sources", sources),
		attribute.StringSlice("data_types", dataTypes),
	))
	defer span.End()

	output := s.manager.RunScrape(ctx, sources, dataTypes)
	if len(sources) == 0 && len(dataTypes) == 0 {
		s.Commit(ctx, output)
	}
	return output
}

// Commit replaces the current snapshot wholesale with a run's output and
// persists it. Persistence failure is logged, not propagated, the in-memory
// snapshot is already live.
func (s *Service) Commit(ctx context.Context, output scrapers.RawScrapeOutput) {
	snapshot := scrapers.Snapshot{
		Data:        output.Data,
		LastUpdated: output.Timestamp,
	}
	s.snapshotCache.Set(snapshot)
	s.summaryCache.Invalidate()

	if s.store != nil {
		err := s.store.Save(snapshot)
		if err != nil {
			slog.ErrorContext(ctx, "persist snapshot", "err", err)
		}
	}
}

// GetSnapshot returns the current snapshot, scraping first when the cache has
// expired or force is set. Repeated calls within the ttl window cost nothing.
func (s *Service) GetSnapshot(ctx context.Context, force bool) scrapers.Snapshot {
	ctx, span := tracer.Start(ctx, "GetSnapshot", trace.WithAttributes(
		attribute.Bool("force", force),
	))
	defer span.End()

	if !force {
		if snapshot, ok := s.snapshotCache.Get(); ok {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return snapshot
		}
	}

	output := s.manager.RunScrape(ctx, nil, nil)
	s.Commit(ctx, output)
	return scrapers.Snapshot{
		Data:        output.Data,
		LastUpdated: output.Timestamp,
	}
}

// GetCategorySummary returns the folded cross-source view, derived from the
// same snapshot GetSnapshot would serve.
func (s *Service) GetCategorySummary(ctx context.Context, force bool) scrapers.CategorySummary {
	ctx, span := tracer.Start(ctx, "GetCategorySummary", trace.WithAttributes(
		attribute.Bool("force", force),
	))
	defer span.End()

	if !force {
		if summary, ok := s.summaryCache.Get(); ok {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			return summary
		}
	}

	summary := BuildCategorySummary(s.GetSnapshot(ctx, force))
	s.summaryCache.Set(summary)
	return summary
}

// SourceStatus describes one registered source for the status endpoint.
type SourceStatus struct {
	Name            string            `json:"name"`
	Status          string            `json:"status"`
	RequiresBrowser bool              `json:"requires_browser"`
	DataTypes       []string          `json:"data_types"`
	URLs            map[string]string `json:"urls"`
}

// Sources lists every registered source in configuration order, enabled ones
// first. Browser-required sources skipped by this deployment still show up,
// marked browser_required_disabled.
func (s *Service) Sources() []SourceStatus {
	var statuses []SourceStatus
	for _, src := range s.manager.Sources() {
		statuses = append(statuses, SourceStatus{
			Name:            src.Name(),
			Status:          "enabled",
			RequiresBrowser: src.RequiresBrowser(),
			DataTypes:       src.DataTypes(),
			URLs:            src.URLs(),
		})
	}
	for _, src := range s.manager.DisabledSources() {
		statuses = append(statuses, SourceStatus{
			Name:            src.Name(),
			Status:          "browser_required_disabled",
			RequiresBrowser: src.RequiresBrowser(),
			DataTypes:       src.DataTypes(),
			URLs:            src.URLs(),
		})
	}
	return statuses
}

// HasData reports whether any source in the current snapshot carries at
// least one record.
func (s *Service) HasData() (bool, time.Time) {
	snapshot, ok := s.snapshotCache.Get()
	if !ok {
		return false, time.Time{}
	}
	for _, result := range snapshot.Data {
		for _, records := range result {
			if len(records) > 0 {
				return true, snapshot.LastUpdated
			}
		}
	}
	return false, snapshot.LastUpdated
}

// ScrapeDaemon re-scrapes on a fixed interval so the snapshot stays warm
// without request traffic. Blocks until ctx is canceled.
func (s *Service) ScrapeDaemon(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			output := s.RunScrape(ctx, nil, nil)
			if len(output.Errors) > 0 {
				slog.WarnContext(
					ctx, "scheduled scrape finished with errors",
					"errors", len(output.Errors),
				)
			}
		}
	}
}
