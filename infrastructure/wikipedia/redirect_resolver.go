package wikipedia

import (
	"context"
	"fmt"
	"net/url"

	"namethatpage-backend/domain/core/valueobjects"
	"namethatpage-backend/pkg/errors"
	"namethatpage-backend/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type titleMapping struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type redirectResponse struct {
	Query struct {
		Normalized []titleMapping `json:"normalized"`
		Redirects  []titleMapping `json:"redirects"`
	} `json:"query"`
	Error *apiError `json:"error"`
}

// ResolveRedirect returns the article a title redirects to. The API's title
// normalization is applied first, then redirects. A title that is not a
// redirect comes back unchanged.
func (c *MediaWikiClient) ResolveRedirect(ctx context.Context, title valueobjects.ArticleTitle) (_ valueobjects.ArticleTitle, err error) {
	ctx, span := c.tracer.Start(ctx, "mediawiki.ResolveRedirect")
	span.SetAttributes(attribute.String("article.title", title.String()))
	defer func() { observability.EndSpan(span, err) }()

	params := url.Values{}
	params.Set("action", "query")
	params.Set("titles", title.String())
	params.Set("redirects", "")

	var resp redirectResponse
	if err := c.upstream.getJSON(ctx, c.endpoint(params), &resp); err != nil {
		c.logger.Warn("redirect lookup failed", zap.String("title", title.String()), zap.Error(err))
		return "", errors.NewResolveFailedError(title.String(), err)
	}
	if resp.Error != nil {
		return "", errors.NewResolveFailedError(title.String(), fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Info)).
			WithCode(resp.Error.Code)
	}

	current := title.String()
	current = follow(current, resp.Query.Normalized)
	current = follow(current, resp.Query.Redirects)

	resolved := valueobjects.ArticleTitle(canonical(current))
	if resolved != title {
		c.logger.Debug("title redirected",
			zap.String("title", title.String()),
			zap.String("target", resolved.String()),
		)
	}
	span.SetAttributes(attribute.String("article.resolved", resolved.String()))
	return resolved, nil
}

// follow applies the mapping whose source matches current. Sources are
// compared in underscore form since the API echoes titles with spaces.
func follow(current string, mappings []titleMapping) string {
	for _, m := range mappings {
		if canonical(m.From) == canonical(current) && m.To != "" {
			return m.To
		}
	}
	// a single-title query can only map that title
	if len(mappings) == 1 && mappings[0].To != "" {
		return mappings[0].To
	}
	return current
}
