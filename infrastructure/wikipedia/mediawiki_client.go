package wikipedia

import (
	"net/url"
	"strings"

	"namethatpage-backend/pkg/observability"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// MediaWikiClient talks to the MediaWiki action API (w/api.php). It resolves
// redirects and lists the links of seed pages.
type MediaWikiClient struct {
	apiURL   string
	upstream *upstream
	tracer   trace.Tracer
	logger   *zap.Logger
}

// NewMediaWikiClient creates a client for the wiki at baseURL,
// e.g. https://en.wikipedia.org
func NewMediaWikiClient(baseURL string, opts Options, logger *zap.Logger) *MediaWikiClient {
	return &MediaWikiClient{
		apiURL:   strings.TrimRight(baseURL, "/") + "/w/api.php",
		upstream: newUpstream(wikipediaUpstream, opts, logger),
		tracer:   observability.Tracer("wikipedia"),
		logger:   logger.Named("mediawiki_client"),
	}
}

// apiError is the error envelope of the action API
type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (c *MediaWikiClient) endpoint(params url.Values) string {
	params.Set("format", "json")
	params.Set("formatversion", "2")
	return c.apiURL + "?" + params.Encode()
}

// canonical converts an API title ("Big cat") to underscore form
func canonical(title string) string {
	return strings.ReplaceAll(title, " ", "_")
}
