package markets

import (
	"time"

	"marketdata-backend/lib/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

type ClientOptions struct {
	// Timeout defaults to 15s, matching the sources' tolerance before a
	// retry is more useful than waiting.
	Timeout time.Duration
}

// NewClient builds the shared http client for source scrapers: browser-like
// headers, a cloudflare bypass transport, and trace instrumentation. The
// User-Agent header is set per request, not here, so it can rotate.
func NewClient(opts ClientOptions) *resty.Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = time.Second * 15
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)

	client.SetHeaders(map[string]string{
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.5",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Cache-Control":             "no-cache",
		"Pragma":                    "no-cache",
		"DNT":                       "1",
	})

	telemetry.InstrumentResty(client, "scrapers/markets/http")
	return client
}
