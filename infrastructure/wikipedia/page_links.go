package wikipedia

import (
	"context"
	"fmt"
	"net/url"

	"namethatpage-backend/domain/core/entities"
	"namethatpage-backend/domain/core/valueobjects"
	"namethatpage-backend/pkg/errors"
	"namethatpage-backend/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
)

type parseLinksResponse struct {
	Parse struct {
		Title string `json:"title"`
		Links []struct {
			Namespace int    `json:"ns"`
			Title     string `json:"title"`
			Exists    bool   `json:"exists"`
		} `json:"links"`
	} `json:"parse"`
	Error *apiError `json:"error"`
}

// FetchPageLinks lists the internal links of a page, following redirects.
// The parse API reports titles only, so a link's text is its display title.
func (c *MediaWikiClient) FetchPageLinks(ctx context.Context, page string) (_ []entities.PageLink, err error) {
	ctx, span := c.tracer.Start(ctx, "mediawiki.FetchPageLinks")
	span.SetAttributes(attribute.String("wiki.page", page))
	defer func() { observability.EndSpan(span, err) }()

	params := url.Values{}
	params.Set("action", "parse")
	params.Set("page", page)
	params.Set("prop", "links")
	params.Set("redirects", "")

	var resp parseLinksResponse
	if err := c.upstream.getJSON(ctx, c.endpoint(params), &resp); err != nil {
		return nil, errors.NewUpstreamUnavailableError(page, err)
	}
	if resp.Error != nil {
		return nil, errors.NewUpstreamUnavailableError(page, fmt.Errorf("%s: %s", resp.Error.Code, resp.Error.Info)).
			WithCode(resp.Error.Code)
	}

	links := make([]entities.PageLink, 0, len(resp.Parse.Links))
	for _, l := range resp.Parse.Links {
		links = append(links, entities.PageLink{
			Title:     valueobjects.ArticleTitle(canonical(l.Title)),
			Text:      l.Title,
			Namespace: l.Namespace,
			Exists:    l.Exists,
		})
	}
	span.SetAttributes(attribute.Int("wiki.links", len(links)))
	return links, nil
}
