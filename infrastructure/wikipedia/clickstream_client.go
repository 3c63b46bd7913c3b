package wikipedia

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"namethatpage-backend/domain/core/entities"
	"namethatpage-backend/domain/core/valueobjects"
	"namethatpage-backend/pkg/errors"
	"namethatpage-backend/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ClickstreamConfig configures the clickstream client
type ClickstreamConfig struct {
	BaseURL   string
	LagMonths int
	MainPage  valueobjects.ArticleTitle
	Retry     RetryPolicy
}

// ClickstreamClient reads ranked reader navigation from the monthly
// clickstream dumps served by wikinav.
type ClickstreamClient struct {
	config   ClickstreamConfig
	upstream *upstream
	retry    *retrier
	tracer   trace.Tracer
	logger   *zap.Logger

	now func() time.Time
}

type clickstreamResponse struct {
	Results []struct {
		Title string `json:"title"`
	} `json:"results"`
}

// NewClickstreamClient creates a new clickstream client
func NewClickstreamClient(config ClickstreamConfig, opts Options, logger *zap.Logger) *ClickstreamClient {
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.MainPage.IsZero() {
		config.MainPage = entities.DefaultMainPage
	}

	return &ClickstreamClient{
		config:   config,
		upstream: newUpstream(clickstreamUpstream, opts, logger),
		retry:    newRetrier(clickstreamUpstream, config.Retry, logger.Named("clickstream_retry"), opts.Metrics),
		tracer:   observability.Tracer("wikipedia"),
		logger:   logger.Named("clickstream_client"),
		now:      time.Now,
	}
}

// FetchClues fetches both directions of an article's clickstream for the
// lagged month. Both requests are retried together; once retries run out the
// last error is reported as UPSTREAM_UNAVAILABLE.
func (c *ClickstreamClient) FetchClues(ctx context.Context, title valueobjects.ArticleTitle) (*entities.ClickstreamRecord, error) {
	month := c.Month()
	ctx, span := c.tracer.Start(ctx, "clickstream.FetchClues", trace.WithAttributes(
		attribute.String("article.title", title.String()),
		attribute.String("clickstream.month", month),
	))

	var record *entities.ClickstreamRecord
	err := c.retry.do(ctx, "FetchClues", func(ctx context.Context) error {
		var (
			sources      []entities.LinkClue
			destinations []entities.LinkClue
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			sources, err = c.fetchDirection(gctx, title, "sources", month)
			return err
		})
		g.Go(func() error {
			var err error
			destinations, err = c.fetchDirection(gctx, title, "destinations", month)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		record = entities.NewClickstreamRecord(title, sources, destinations, c.config.MainPage)
		return nil
	})
	if err != nil {
		c.logger.Warn("clickstream fetch failed",
			zap.String("title", title.String()),
			zap.String("month", month),
			zap.Error(err),
		)
		appErr := errors.NewUpstreamUnavailableError(title.String(), err)
		observability.EndSpan(span, appErr)
		return nil, appErr
	}

	span.SetAttributes(
		attribute.Int("clickstream.inbound", len(record.Inbound)),
		attribute.Int("clickstream.outbound", len(record.Outbound)),
	)
	span.End()
	return record, nil
}

// Month returns the YYYY-MM window currently queried
func (c *ClickstreamClient) Month() string {
	return clickstreamMonth(c.now(), c.config.LagMonths)
}

// clickstreamMonth steps back from the first of the month so that day
// overflow ("March 31 minus one month") cannot skip a month.
func clickstreamMonth(now time.Time, lagMonths int) string {
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, -lagMonths, 0).Format("2006-01")
}

func (c *ClickstreamClient) fetchDirection(ctx context.Context, title valueobjects.ArticleTitle, direction, month string) ([]entities.LinkClue, error) {
	rawURL := fmt.Sprintf("%s/%s/%s/%s?limit=%d",
		c.config.BaseURL,
		url.PathEscape(title.String()),
		direction,
		month,
		entities.RawResultLimit,
	)

	var resp clickstreamResponse
	if err := c.upstream.getJSON(ctx, rawURL, &resp); err != nil {
		return nil, fmt.Errorf("%s of %s: %w", direction, title, err)
	}

	clues := make([]entities.LinkClue, 0, len(resp.Results))
	for _, result := range resp.Results {
		clues = append(clues, entities.LinkClue{
			Title: valueobjects.ArticleTitle(strings.ReplaceAll(result.Title, " ", "_")),
		})
	}
	return clues, nil
}
