package handlers

import (
	"context"
	"fmt"

	"namethatpage-backend/application/queries"
	"namethatpage-backend/application/queries/bus"
	"namethatpage-backend/application/services"
	"namethatpage-backend/domain/core/aggregates"
	"namethatpage-backend/domain/core/entities"
	"namethatpage-backend/domain/core/valueobjects"

	"go.uber.org/zap"
)

// ArticleSelector is the selection side used by the handlers
type ArticleSelector interface {
	SelectByTitle(ctx context.Context, title valueobjects.ArticleTitle) (*entities.ClickstreamRecord, error)
	SelectRandom(ctx context.Context) (*entities.ClickstreamRecord, error)
}

// GraphBuilder is the graph side used by the handlers
type GraphBuilder interface {
	Build(ctx context.Context, record *entities.ClickstreamRecord, opts services.BuildOptions) (*aggregates.Graph, error)
}

// SelectArticleHandler handles SelectArticleQuery
type SelectArticleHandler struct {
	selector ArticleSelector
	logger   *zap.Logger
}

// NewSelectArticleHandler creates a new select article handler
func NewSelectArticleHandler(selector ArticleSelector, logger *zap.Logger) *SelectArticleHandler {
	return &SelectArticleHandler{selector: selector, logger: logger}
}

// Handle implements bus.QueryHandler
func (h *SelectArticleHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.SelectArticleQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}
	return h.Select(ctx, q)
}

// Select runs a random or titled selection
func (h *SelectArticleHandler) Select(ctx context.Context, q queries.SelectArticleQuery) (*entities.ClickstreamRecord, error) {
	if q.IsRandom() {
		return h.selector.SelectRandom(ctx)
	}
	return h.selector.SelectByTitle(ctx, q.ArticleTitle())
}

// BuildGraphHandler handles BuildGraphQuery
type BuildGraphHandler struct {
	builder GraphBuilder
	logger  *zap.Logger
}

// NewBuildGraphHandler creates a new build graph handler
func NewBuildGraphHandler(builder GraphBuilder, logger *zap.Logger) *BuildGraphHandler {
	return &BuildGraphHandler{builder: builder, logger: logger}
}

// Handle implements bus.QueryHandler
func (h *BuildGraphHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.BuildGraphQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}
	return h.builder.Build(ctx, q.Record, services.BuildOptions{
		CenterIsBlank: q.CenterIsBlank,
		CenterIsBlue:  q.CenterIsBlue,
	})
}

// ArticleGraphHandler handles ArticleGraphQuery
type ArticleGraphHandler struct {
	selector *SelectArticleHandler
	builder  GraphBuilder
	logger   *zap.Logger
}

// NewArticleGraphHandler creates a new article graph handler
func NewArticleGraphHandler(selector ArticleSelector, builder GraphBuilder, logger *zap.Logger) *ArticleGraphHandler {
	return &ArticleGraphHandler{
		selector: NewSelectArticleHandler(selector, logger),
		builder:  builder,
		logger:   logger,
	}
}

// Handle implements bus.QueryHandler
func (h *ArticleGraphHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.ArticleGraphQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}

	record, err := h.selector.Select(ctx, q.Selection())
	if err != nil {
		return nil, err
	}

	graph, err := h.builder.Build(ctx, record, services.BuildOptions{
		CenterIsBlank: q.CenterIsBlank,
		CenterIsBlue:  q.CenterIsBlue,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Debug("article graph ready",
		zap.String("center", record.Center.String()),
		zap.Int("nodes", len(graph.Nodes())),
	)
	if q.CenterIsBlank {
		record = record.WithoutCenter()
	}
	return &queries.ArticleGraphResult{Record: record, Graph: graph}, nil
}

// RegisterAll registers every query handler on b
func RegisterAll(b *bus.QueryBus, selector ArticleSelector, builder GraphBuilder, logger *zap.Logger) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.SelectArticleQuery{}, NewSelectArticleHandler(selector, logger)},
		{queries.BuildGraphQuery{}, NewBuildGraphHandler(builder, logger)},
		{queries.ArticleGraphQuery{}, NewArticleGraphHandler(selector, builder, logger)},
	}
	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}
