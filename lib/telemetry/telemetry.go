package telemetry

import (
	"context"
	"errors"
	"os"
	"time"

	"marketdata-backend/lib/configutil"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
)

type OtlpConnConfig struct {
	GrpcEndpoint string            `json:"grpc_endpoint"`
	HttpEndpoint string            `json:"http_endpoint"`
	Headers      map[string]string `json:"headers"`
}

type OtlpConfig struct {
	Traces  OtlpConnConfig `json:"traces"`
	Metrics OtlpConnConfig `json:"metrics"`
}

type Config struct {
	Otlp OtlpConfig `json:"otlp"`
}

var tracerProvider *trace.TracerProvider
var meterProvider *metric.MeterProvider

// searches up the filesystem from the cwd to find a file called
// telemetry.json5, once found it will then use it as a config to setup
// telemetry. a missing config file is not an error, spans and metrics just
// stay local to the process.
func SetupFromEnv(ctx context.Context, serviceName string) error {
	config, err := configutil.ReadRecursively[Config]("telemetry.json5")
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return Setup(ctx, serviceName, config)
}

func Setup(ctx context.Context, serviceName string, config Config) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*15)
	defer cancel()

	r, err := newResource(serviceName)
	if err != nil {
		return err
	}

	tracerProvider, err = newTraceProvider(ctx, r, config)
	if err != nil {
		return err
	}
	otel.SetTracerProvider(tracerProvider)

	meterProvider, err = newMetricProvider(ctx, r, config)
	if err != nil {
		return err
	}
	otel.SetMeterProvider(meterProvider)

	return nil
}

func Shutdown(ctx context.Context) error {
	errlist := []error{}
	if tracerProvider != nil {
		err := tracerProvider.Shutdown(ctx)
		if err != nil {
			errlist = append(errlist, err)
		}
	}
	if meterProvider != nil {
		err := meterProvider.Shutdown(ctx)
		if err != nil {
			errlist = append(errlist, err)
		}
	}
	return errors.Join(errlist...)
}

var setupTestEnvironments = map[string]bool{}

// sets up telemetry in a testing environment, ensuring that it isn't
// set up more than once
func SetupForTesting(serviceName string) func() {
	if setupTestEnvironments[serviceName] {
		return func() {}
	}
	setupTestEnvironments[serviceName] = true

	InitSlog(true)
	err := SetupFromEnv(context.Background(), serviceName)
	if err != nil {
		panic(err)
	}

	return func() {
		err := Shutdown(context.Background())
		if err != nil {
			panic(err)
		}
	}
}
