package markets

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	scrapers "marketdata-backend/lib/scrapers/markets"

	"github.com/stretchr/testify/require"
)

// countingSource records how many times it was scraped so cache behavior is
// observable.
type countingSource struct {
	name  string
	calls atomic.Int32
}

func (c *countingSource) Name() string            { return c.name }
func (c *countingSource) RequiresBrowser() bool   { return false }
func (c *countingSource) DataTypes() []string     { return []string{"acciones"} }
func (c *countingSource) URLs() map[string]string { return nil }

func (c *countingSource) ScrapeAll(ctx context.Context, filter []string) scrapers.SourceResult {
	c.calls.Add(1)
	return scrapers.SourceResult{
		"acciones": {{"nombre": "AAPL", "precio": "184.20"}},
	}
}

func (c *countingSource) ScrapeOne(ctx context.Context, dataType string) scrapers.DataTypeResult {
	return c.ScrapeAll(ctx, nil)[dataType]
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestService(t *testing.T, clock *fakeClock) (*Service, *countingSource) {
	t.Helper()
	source := &countingSource{name: "testsource"}
	manager := scrapers.NewManagerFromSources(
		[]scrapers.SourceScraper{source},
		scrapers.ManagerOptions{ScrapeCeiling: time.Second * 5},
	)
	service := NewService(ServiceOptions{
		Manager:     manager,
		SnapshotTTL: time.Second * 90,
		Clock:       clock.Now,
	})
	return service, source
}

func TestGetSnapshotCachesWithinTTL(t *testing.T) {
	clock := newFakeClock()
	service, source := newTestService(t, clock)
	ctx := context.Background()

	first := service.GetSnapshot(ctx, false)
	require.Len(t, first.Data["testsource"]["acciones"], 1)
	require.EqualValues(t, 1, source.calls.Load())

	// within the ttl window the snapshot is served from cache
	second := service.GetSnapshot(ctx, false)
	require.Equal(t, first.LastUpdated, second.LastUpdated)
	require.EqualValues(t, 1, source.calls.Load())

	clock.Advance(time.Second * 91)
	service.GetSnapshot(ctx, false)
	require.EqualValues(t, 2, source.calls.Load())
}

func TestGetSnapshotForceBypassesCache(t *testing.T) {
	clock := newFakeClock()
	service, source := newTestService(t, clock)
	ctx := context.Background()

	service.GetSnapshot(ctx, false)
	service.GetSnapshot(ctx, true)
	require.EqualValues(t, 2, source.calls.Load())
}

func TestFilteredScrapeDoesNotCommit(t *testing.T) {
	clock := newFakeClock()
	service, source := newTestService(t, clock)
	ctx := context.Background()

	output := service.RunScrape(ctx, []string{"testsource"}, []string{"acciones"})
	require.Len(t, output.Data["testsource"]["acciones"], 1)

	// the filtered run must not have become the cached snapshot
	service.GetSnapshot(ctx, false)
	require.EqualValues(t, 2, source.calls.Load())
}

func TestUnfilteredScrapeCommits(t *testing.T) {
	clock := newFakeClock()
	service, source := newTestService(t, clock)
	ctx := context.Background()

	service.RunScrape(ctx, nil, nil)
	service.GetSnapshot(ctx, false)
	require.EqualValues(t, 1, source.calls.Load())
}

func TestCommitPersistsThroughStore(t *testing.T) {
	clock := newFakeClock()
	store := NewStore(filepath.Join(t.TempDir(), "data.json"))

	source := &countingSource{name: "testsource"}
	manager := scrapers.NewManagerFromSources(
		[]scrapers.SourceScraper{source},
		scrapers.ManagerOptions{},
	)
	service := NewService(ServiceOptions{
		Manager: manager,
		Store:   store,
		Clock:   clock.Now,
	})

	snapshot := service.GetSnapshot(context.Background(), false)

	persisted, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, snapshot.Data, persisted.Data)
}

func TestNewServiceSeedsFromStore(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(filepath.Join(dir, "data.json"))
	err := store.Save(scrapers.Snapshot{
		Data: map[string]scrapers.SourceResult{
			"testsource": {"acciones": {{"nombre": "AAPL"}}},
		},
		LastUpdated: time.Date(2024, 5, 31, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	clock := newFakeClock()
	source := &countingSource{name: "testsource"}
	manager := scrapers.NewManagerFromSources(
		[]scrapers.SourceScraper{source},
		scrapers.ManagerOptions{},
	)
	service := NewService(ServiceOptions{
		Manager: manager,
		Store:   store,
		Clock:   clock.Now,
	})

	// the persisted snapshot serves the first window without a scrape
	snapshot := service.GetSnapshot(context.Background(), false)
	require.EqualValues(t, 0, source.calls.Load())
	require.Len(t, snapshot.Data["testsource"]["acciones"], 1)

	hasData, lastUpdated := service.HasData()
	require.True(t, hasData)
	require.False(t, lastUpdated.IsZero())
}

func TestSources(t *testing.T) {
	clock := newFakeClock()
	service, _ := newTestService(t, clock)

	statuses := service.Sources()
	require.Len(t, statuses, 1)
	require.Equal(t, "testsource", statuses[0].Name)
	require.Equal(t, "enabled", statuses[0].Status)
	require.Equal(t, []string{"acciones"}, statuses[0].DataTypes)
	require.False(t, statuses[0].RequiresBrowser)
}
