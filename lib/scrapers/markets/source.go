package markets

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	browser "github.com/EDDYCJY/fake-useragent"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("scrapers/markets")

// SourceScraper is the capability set one financial-data source exposes to
// the orchestrator. Concrete sources are declared as Spec tables rather than
// separate implementations, but the orchestrator only sees this interface so
// tests can substitute slow or failing sources.
type SourceScraper interface {
	Name() string
	RequiresBrowser() bool
	DataTypes() []string
	URLs() map[string]string
	ScrapeAll(ctx context.Context, dataTypeFilter []string) SourceResult
	ScrapeOne(ctx context.Context, dataType string) DataTypeResult
}

// Spec declares everything source-specific as data: which pages exist, how
// to find their rows, and how to read them. Adding a probe or fixing a
// column mapping touches one table.
type Spec struct {
	Name            string
	RequiresBrowser bool
	// DataTypes fixes iteration order so that logs and courtesy delays are
	// deterministic for a given configuration.
	DataTypes []string
	URLs      map[string]string
	Probes    ProbeSet
	Contracts ContractSet
	// RowCaps bounds conversion per data type; defaultRowCap applies when
	// unset.
	RowCaps map[string]int
}

const defaultRowCap = 50

type ScraperOptions struct {
	// Client defaults to NewClient(ClientOptions{}).
	Client *resty.Client
	// MaxRetries defaults to 3 fetch attempts per page.
	MaxRetries int
	// BackoffBase defaults to 1s and doubles on every retry.
	BackoffBase time.Duration
	// RequestDelay produces the courtesy pause between data-type requests
	// within one source. Defaults to a 1-3s jitter; tests return 0.
	RequestDelay func() time.Duration
}

type Scraper struct {
	spec         Spec
	http         *resty.Client
	maxRetries   int
	backoffBase  time.Duration
	requestDelay func() time.Duration
}

// NewScraper validates the spec tables against each other. An enabled source
// with a data type missing its URL, probes or contract is a deployment
// configuration fault and fails here, at startup, rather than per request.
func NewScraper(spec Spec, opts ScraperOptions) (*Scraper, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("source spec has no name")
	}
	if len(spec.DataTypes) == 0 {
		return nil, fmt.Errorf("source %q declares no data types", spec.Name)
	}
	for _, dataType := range spec.DataTypes {
		if spec.URLs[dataType] == "" {
			return nil, fmt.Errorf("source %q: data type %q has no url", spec.Name, dataType)
		}
		if len(spec.Probes[dataType]) == 0 {
			return nil, fmt.Errorf("source %q: data type %q has no probes", spec.Name, dataType)
		}
		if _, ok := spec.Contracts[dataType]; !ok {
			return nil, fmt.Errorf("source %q: data type %q has no column contract", spec.Name, dataType)
		}
	}

	client := opts.Client
	if client == nil {
		client = NewClient(ClientOptions{})
	}
	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = 3
	}
	backoffBase := opts.BackoffBase
	if backoffBase == 0 {
		backoffBase = time.Second
	}
	requestDelay := opts.RequestDelay
	if requestDelay == nil {
		requestDelay = jitterDelay
	}

	return &Scraper{
		spec:         spec,
		http:         client,
		maxRetries:   maxRetries,
		backoffBase:  backoffBase,
		requestDelay: requestDelay,
	}, nil
}

func jitterDelay() time.Duration {
	ms, err := random.IntRange(1000, 3000)
	if err != nil {
		return time.Second
	}
	return time.Duration(ms) * time.Millisecond
}

func (s *Scraper) Name() string {
	return s.spec.Name
}

func (s *Scraper) RequiresBrowser() bool {
	return s.spec.RequiresBrowser
}

func (s *Scraper) DataTypes() []string {
	return s.spec.DataTypes
}

func (s *Scraper) URLs() map[string]string {
	return s.spec.URLs
}

// ScrapeAll processes the source's data types sequentially, pausing between
// requests so the upstream doesn't rate-limit us. Failures are local to a
// data type: the result maps every requested key, failed ones to an empty
// sequence.
func (s *Scraper) ScrapeAll(ctx context.Context, dataTypeFilter []string) SourceResult {
	ctx, span := tracer.Start(ctx, "ScrapeAll", trace.WithAttributes(
		attribute.String("source", s.spec.Name),
	))
	defer span.End()

	result := SourceResult{}
	first := true
	for _, dataType := range s.spec.DataTypes {
		if len(dataTypeFilter) > 0 && !slices.Contains(dataTypeFilter, dataType) {
			continue
		}
		if !first {
			select {
			case <-time.After(s.requestDelay()):
			case <-ctx.Done():
				result[dataType] = DataTypeResult{}
				continue
			}
		}
		first = false

		result[dataType] = s.ScrapeOne(ctx, dataType)
	}
	return result
}

func (s *Scraper) ScrapeOne(ctx context.Context, dataType string) DataTypeResult {
	ctx, span := tracer.Start(ctx, "ScrapeOne", trace.WithAttributes(
		attribute.String("source", s.spec.Name),
		attribute.String("data_type", dataType),
	))
	defer span.End()

	url, ok := s.spec.URLs[dataType]
	if !ok {
		return DataTypeResult{}
	}

	doc, err := s.fetch(ctx, url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed after retries")
		slog.WarnContext(
			ctx, "fetch failed",
			"source", s.spec.Name,
			"data_type", dataType,
			"err", err,
		)
		return DataTypeResult{}
	}

	rows := s.spec.Probes.FindRows(doc, dataType)
	if len(rows) == 0 {
		// expected when the upstream changes markup, not an error
		slog.DebugContext(
			ctx, "no probe matched",
			"source", s.spec.Name,
			"data_type", dataType,
		)
		return DataTypeResult{}
	}

	rowCap := s.spec.RowCaps[dataType]
	if rowCap == 0 {
		rowCap = defaultRowCap
	}
	if len(rows) > rowCap {
		rows = rows[:rowCap]
	}

	records := make(DataTypeResult, 0, len(rows))
	for _, row := range rows {
		record, ok := s.spec.Contracts.ExtractRecord(row, dataType)
		if !ok {
			continue
		}
		records = append(records, record)
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	slog.DebugContext(
		ctx, "scraped data type",
		"source", s.spec.Name,
		"data_type", dataType,
		"rows", len(rows),
		"records", len(records),
	)
	return records
}

// fetch GETs a page with a freshly rotated User-Agent, retrying transient
// failures with a doubling backoff.
func (s *Scraper) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.backoffBase << (attempt - 1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		res, err := s.http.R().
			SetContext(ctx).
			SetHeader("User-Agent", browser.Random()).
			Get(url)
		if err != nil {
			lastErr = err
			continue
		}
		if res.IsError() {
			lastErr = fmt.Errorf("unexpected status: %s", res.Status())
			continue
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
		if err != nil {
			lastErr = err
			continue
		}
		return doc, nil
	}
	return nil, lastErr
}
