package main

import (
	"flag"
	"log/slog"
	"time"

	"marketdata-backend/lib/configutil"
	"marketdata-backend/lib/serviceutil"
	marketsvc "marketdata-backend/services/markets"

	scrapers "marketdata-backend/lib/scrapers/markets"
)

type Config struct {
	// Port defaults to 8000.
	Port int `json:"port"`
	// AccessToken protects every route except /health. Empty disables auth.
	AccessToken string `json:"access_token"`
	// Snapshot is where the current snapshot persists. Empty keeps it in
	// memory only.
	Snapshot string `json:"snapshot"`
	// ScrapeIntervalMinutes defaults to 50.
	ScrapeIntervalMinutes int `json:"scrape_interval_minutes"`
	// ScrapeCeilingSeconds bounds one whole scrape run. Defaults to 120.
	ScrapeCeilingSeconds int `json:"scrape_ceiling_seconds"`
	// DisableBrowserSources drops sources needing javascript rendering, for
	// deployments without a browser runtime.
	DisableBrowserSources bool `json:"disable_browser_sources"`
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	initialScrape := flag.Bool("scrape", false, "Trigger scraping immediately on run.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.ScrapeIntervalMinutes == 0 {
		cfg.ScrapeIntervalMinutes = 50
	}

	manager, err := scrapers.NewManager(
		scrapers.DefaultSpecs(),
		scrapers.ScraperOptions{},
		scrapers.ManagerOptions{
			ScrapeCeiling:         time.Duration(cfg.ScrapeCeilingSeconds) * time.Second,
			DisableBrowserSources: cfg.DisableBrowserSources,
		},
	)
	if err != nil {
		serviceutil.Fatal("init scrape manager", err)
	}

	var store *marketsvc.Store
	if cfg.Snapshot != "" {
		store = marketsvc.NewStore(cfg.Snapshot)
	}

	service := marketsvc.NewService(marketsvc.ServiceOptions{
		Manager: manager,
		Store:   store,
	})

	if *initialScrape {
		go func() {
			output := service.RunScrape(ctx, nil, nil)
			slog.InfoContext(
				ctx, "initial scrape finished",
				"sources", len(output.Data),
				"errors", len(output.Errors),
			)
		}()
	}
	go service.ScrapeDaemon(ctx, time.Duration(cfg.ScrapeIntervalMinutes)*time.Minute)

	go serviceutil.StartHttpServer(cfg.Port, marketsvc.NewHandler(service, cfg.AccessToken))
	<-ctx.Done()
}
