package main

import (
	"context"
	"log/slog"

	"marketdata-backend/lib/serviceutil"
	"marketdata-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	err := telemetry.SetupFromEnv(ctx, "marketsd")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		telemetry.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)
}
