package markets

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultScrapeCeiling = time.Minute * 2

// Manager fans a scrape run out across every registered source and folds the
// results back together. One source failing, panicking or hanging never costs
// the run the other sources' data.
type Manager struct {
	sources  []SourceScraper
	disabled []SourceScraper
	ceiling  time.Duration
}

type ManagerOptions struct {
	// ScrapeCeiling bounds a whole run. Sources still working when it
	// expires report empty results plus an error. Defaults to 2m.
	ScrapeCeiling time.Duration
	// DisableBrowserSources drops sources that need javascript rendering,
	// for deployments where no browser runtime is available.
	DisableBrowserSources bool
}

// NewManager builds scrapers for the given specs in order. Spec validation
// errors surface here so a misconfigured deployment fails at startup.
func NewManager(specs []Spec, scraperOpts ScraperOptions, opts ManagerOptions) (*Manager, error) {
	ceiling := opts.ScrapeCeiling
	if ceiling == 0 {
		ceiling = defaultScrapeCeiling
	}

	var sources, disabled []SourceScraper
	for _, spec := range specs {
		scraper, err := NewScraper(spec, scraperOpts)
		if err != nil {
			return nil, err
		}
		if opts.DisableBrowserSources && spec.RequiresBrowser {
			slog.Info("skipping browser-required source", "source", spec.Name)
			disabled = append(disabled, scraper)
			continue
		}
		sources = append(sources, scraper)
	}

	return &Manager{
		sources:  sources,
		disabled: disabled,
		ceiling:  ceiling,
	}, nil
}

// NewManagerFromSources wires pre-built sources directly, bypassing spec
// validation. Used by tests to inject slow or failing sources.
func NewManagerFromSources(sources []SourceScraper, opts ManagerOptions) *Manager {
	ceiling := opts.ScrapeCeiling
	if ceiling == 0 {
		ceiling = defaultScrapeCeiling
	}
	return &Manager{sources: sources, ceiling: ceiling}
}

// Sources returns the enabled sources in configuration order.
func (m *Manager) Sources() []SourceScraper {
	return m.sources
}

// DisabledSources returns sources left out of scrape runs because they need a
// browser runtime this deployment doesn't have.
func (m *Manager) DisabledSources() []SourceScraper {
	return m.disabled
}

type sourceOutcome struct {
	result  SourceResult
	err     error
	settled bool
}

// RunScrape scrapes every registered source concurrently, honoring the
// optional source and data-type filters. The output always maps every
// selected source: a source that failed, panicked or ran past the ceiling
// contributes an all-empty result and an entry in Errors, in configuration
// order.
func (m *Manager) RunScrape(ctx context.Context, sourceFilter []string, dataTypeFilter []string) RawScrapeOutput {
	ctx, span := tracer.Start(ctx, "RunScrape")
	defer span.End()

	selected := m.selectSources(sourceFilter)

	runCtx, cancel := context.WithTimeout(ctx, m.ceiling)
	defer cancel()

	outcomes := make([]sourceOutcome, len(selected))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i, src := range selected {
		wg.Add(1)
		go func(i int, src SourceScraper) {
			defer wg.Done()
			result, err := m.runSource(runCtx, src, dataTypeFilter)
			mu.Lock()
			outcomes[i] = sourceOutcome{result: result, err: err, settled: true}
			mu.Unlock()
		}(i, src)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-runCtx.Done():
		// Workers past the ceiling keep running on a dead context until
		// their current request unwinds; their late results are dropped.
	}

	output := RawScrapeOutput{
		Data:      map[string]SourceResult{},
		Timestamp: time.Now(),
	}
	mu.Lock()
	defer mu.Unlock()
	for i, src := range selected {
		outcome := outcomes[i]
		if !outcome.settled {
			outcome.result = emptyResult(src)
			outcome.err = fmt.Errorf("exceeded global scrape ceiling of %s", m.ceiling)
		}
		output.Data[src.Name()] = outcome.result
		if outcome.err != nil {
			span.SetStatus(codes.Error, "one or more sources failed")
			output.Errors = append(output.Errors, ScrapeError{
				Source: src.Name(),
				Error:  outcome.err.Error(),
			})
		}
	}
	span.SetAttributes(attribute.Int("errors", len(output.Errors)))
	return output
}

func (m *Manager) selectSources(sourceFilter []string) []SourceScraper {
	if len(sourceFilter) == 0 {
		return m.sources
	}
	var selected []SourceScraper
	for _, src := range m.sources {
		for _, name := range sourceFilter {
			if src.Name() == name {
				selected = append(selected, src)
				break
			}
		}
	}
	return selected
}

// runSource wraps one source's scrape in panic containment. A panicking
// source is indistinguishable from a failed one at the run level.
func (m *Manager) runSource(ctx context.Context, src SourceScraper, dataTypeFilter []string) (result SourceResult, err error) {
	ctx, span := tracer.Start(ctx, "runSource", trace.WithAttributes(
		attribute.String("source", src.Name()),
	))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(
				ctx, "source panicked",
				"source", src.Name(),
				"panic", r,
				"stack", string(debug.Stack()),
			)
			result = emptyResult(src)
			err = fmt.Errorf("source panicked: %v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, "panic")
		}
	}()

	result = src.ScrapeAll(ctx, dataTypeFilter)
	if ctx.Err() != nil {
		// The ceiling expired mid-run. Partial progress is discarded so
		// downstream consumers never mistake a truncated run for a full one.
		return emptyResult(src), fmt.Errorf("exceeded global scrape ceiling of %s", m.ceiling)
	}
	return result, nil
}

// emptyResult maps each of a source's data types to an empty sequence.
func emptyResult(src SourceScraper) SourceResult {
	result := SourceResult{}
	for _, dataType := range src.DataTypes() {
		result[dataType] = DataTypeResult{}
	}
	return result
}
