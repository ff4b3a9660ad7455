package markets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeSource lets orchestrator tests script a source's behavior without HTTP.
type fakeSource struct {
	name      string
	dataTypes []string
	scrape    func(ctx context.Context) SourceResult
}

func (f *fakeSource) Name() string            { return f.name }
func (f *fakeSource) RequiresBrowser() bool   { return false }
func (f *fakeSource) DataTypes() []string     { return f.dataTypes }
func (f *fakeSource) URLs() map[string]string { return nil }

func (f *fakeSource) ScrapeAll(ctx context.Context, _ []string) SourceResult {
	return f.scrape(ctx)
}

func (f *fakeSource) ScrapeOne(ctx context.Context, dataType string) DataTypeResult {
	return f.scrape(ctx)[dataType]
}

func healthySource(name string) *fakeSource {
	return &fakeSource{
		name:      name,
		dataTypes: []string{"acciones"},
		scrape: func(context.Context) SourceResult {
			return SourceResult{"acciones": {{"nombre": "AAPL", "precio": "184.20"}}}
		},
	}
}

func TestRunScrapeIsolatesPanics(t *testing.T) {
	panicky := &fakeSource{
		name:      "broken",
		dataTypes: []string{"acciones", "forex"},
		scrape: func(context.Context) SourceResult {
			panic("selector engine exploded")
		},
	}
	manager := NewManagerFromSources(
		[]SourceScraper{healthySource("alpha"), panicky, healthySource("beta")},
		ManagerOptions{ScrapeCeiling: time.Second * 5},
	)

	output := manager.RunScrape(context.Background(), nil, nil)

	require.Len(t, output.Data, 3)
	require.Len(t, output.Data["alpha"]["acciones"], 1)
	require.Len(t, output.Data["beta"]["acciones"], 1)

	// failed source still maps every declared data type, to empty
	require.Empty(t, output.Data["broken"]["acciones"])
	require.Empty(t, output.Data["broken"]["forex"])

	require.Len(t, output.Errors, 1)
	require.Equal(t, "broken", output.Errors[0].Source)
	require.Contains(t, output.Errors[0].Error, "panicked")
}

func TestRunScrapeEnforcesCeiling(t *testing.T) {
	slow := &fakeSource{
		name:      "slow",
		dataTypes: []string{"indices"},
		scrape: func(ctx context.Context) SourceResult {
			select {
			case <-time.After(time.Second * 10):
			case <-ctx.Done():
			}
			return SourceResult{"indices": {{"nombre": "late"}}}
		},
	}
	manager := NewManagerFromSources(
		[]SourceScraper{healthySource("alpha"), slow},
		ManagerOptions{ScrapeCeiling: time.Millisecond * 100},
	)

	start := time.Now()
	output := manager.RunScrape(context.Background(), nil, nil)
	require.Less(t, time.Since(start), time.Second*5)

	// the fast sibling's data survives the slow source's timeout
	require.Len(t, output.Data["alpha"]["acciones"], 1)

	// partial progress from the timed-out source is discarded
	require.Empty(t, output.Data["slow"]["indices"])
	require.Len(t, output.Errors, 1)
	require.Equal(t, "slow", output.Errors[0].Source)
	require.Contains(t, output.Errors[0].Error, "ceiling")
}

func TestRunScrapeSourceFilter(t *testing.T) {
	manager := NewManagerFromSources(
		[]SourceScraper{healthySource("alpha"), healthySource("beta")},
		ManagerOptions{},
	)

	output := manager.RunScrape(context.Background(), []string{"beta"}, nil)
	require.Len(t, output.Data, 1)
	require.Contains(t, output.Data, "beta")
	require.Empty(t, output.Errors)
	require.False(t, output.Timestamp.IsZero())
}

func TestRunScrapeErrorOrderFollowsConfiguration(t *testing.T) {
	failing := func(name string) *fakeSource {
		return &fakeSource{
			name:      name,
			dataTypes: []string{"acciones"},
			scrape: func(context.Context) SourceResult {
				panic(name)
			},
		}
	}
	manager := NewManagerFromSources(
		[]SourceScraper{failing("first"), healthySource("mid"), failing("second")},
		ManagerOptions{},
	)

	output := manager.RunScrape(context.Background(), nil, nil)
	require.Len(t, output.Errors, 2)
	require.Equal(t, "first", output.Errors[0].Source)
	require.Equal(t, "second", output.Errors[1].Source)
}

func TestNewManagerDisablesBrowserSources(t *testing.T) {
	manager, err := NewManager(DefaultSpecs(), testScraperOptions(), ManagerOptions{
		DisableBrowserSources: true,
	})
	require.NoError(t, err)

	for _, src := range manager.Sources() {
		require.False(t, src.RequiresBrowser())
	}
	require.Len(t, manager.Sources(), 2)

	require.Len(t, manager.DisabledSources(), 1)
	require.Equal(t, "tradingview", manager.DisabledSources()[0].Name())
}

func TestNewManagerValidatesSpecs(t *testing.T) {
	spec := FinvizSpec()
	delete(spec.URLs, "forex")

	_, err := NewManager([]Spec{spec}, testScraperOptions(), ManagerOptions{})
	require.Error(t, err)
}
