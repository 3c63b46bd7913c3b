package services

import (
	"context"

	"namethatpage-backend/application/ports"
	"namethatpage-backend/domain/core/aggregates"
	"namethatpage-backend/domain/core/entities"
	"namethatpage-backend/domain/core/valueobjects"
	"namethatpage-backend/pkg/errors"
	"namethatpage-backend/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GraphBuilderConfig tunes graph construction
type GraphBuilderConfig struct {
	PruneStrategy aggregates.PruneStrategy
	// KeepCenter exempts the center node from pruning
	KeepCenter bool
	// FanOutLimit caps concurrent first-level fetches; 0 means unlimited
	FanOutLimit int
}

// DefaultGraphBuilderConfig returns the default builder configuration
func DefaultGraphBuilderConfig() GraphBuilderConfig {
	return GraphBuilderConfig{PruneStrategy: aggregates.PruneSinglePass}
}

// BuildOptions are the per-request presentation flags
type BuildOptions struct {
	CenterIsBlank bool
	CenterIsBlue  bool
}

// GraphBuilder expands a clickstream record two levels deep into a pruned
// navigation graph.
type GraphBuilder struct {
	clickstream ports.ClickstreamSource
	config      GraphBuilderConfig
	metrics     *observability.Collector
	tracer      trace.Tracer
	logger      *zap.Logger
}

// NewGraphBuilder creates a new graph builder
func NewGraphBuilder(
	clickstream ports.ClickstreamSource,
	config GraphBuilderConfig,
	metrics *observability.Collector,
	logger *zap.Logger,
) *GraphBuilder {
	if config.PruneStrategy == "" {
		config.PruneStrategy = aggregates.PruneSinglePass
	}
	return &GraphBuilder{
		clickstream: clickstream,
		config:      config,
		metrics:     metrics,
		tracer:      observability.Tracer("services"),
		logger:      logger.Named("graph_builder"),
	}
}

// Build constructs the graph around record.Center. Every first-level
// neighbor's clues are fetched concurrently; if any fetch fails the whole
// build fails and no graph is returned.
func (b *GraphBuilder) Build(ctx context.Context, record *entities.ClickstreamRecord, opts BuildOptions) (_ *aggregates.Graph, err error) {
	if record == nil || record.Center.IsZero() {
		return nil, errors.NewValidationError("record with a center article is required")
	}

	ctx, span := b.tracer.Start(ctx, "GraphBuilder.Build", trace.WithAttributes(
		attribute.String("article.center", record.Center.String()),
	))
	defer func() { observability.EndSpan(span, err) }()

	graph := aggregates.NewGraph(record.Center)
	visited := map[valueobjects.ArticleTitle]struct{}{record.Center: {}}

	// First level is recorded before any goroutine starts
	var firstLevel []valueobjects.ArticleTitle
	visit := func(title valueobjects.ArticleTitle) {
		if _, seen := visited[title]; seen {
			return
		}
		visited[title] = struct{}{}
		graph.AddNode(title)
		firstLevel = append(firstLevel, title)
	}
	for _, clue := range record.Inbound {
		graph.AddEdge(clue.Title, record.Center)
		visit(clue.Title)
	}
	for _, clue := range record.Outbound {
		graph.AddEdge(record.Center, clue.Title)
		visit(clue.Title)
	}

	secondLevel, err := b.fetchAll(ctx, firstLevel)
	if err != nil {
		b.logger.Warn("graph build failed",
			zap.String("center", record.Center.String()),
			zap.Error(err),
		)
		return nil, err
	}

	for i, neighbor := range firstLevel {
		neighborRecord := secondLevel[i]
		for _, clue := range neighborRecord.Inbound {
			graph.AddEdge(clue.Title, neighbor)
			if _, seen := visited[clue.Title]; !seen {
				visited[clue.Title] = struct{}{}
				graph.AddNode(clue.Title)
			}
		}
		for _, clue := range neighborRecord.Outbound {
			graph.AddEdge(neighbor, clue.Title)
			if _, seen := visited[clue.Title]; !seen {
				visited[clue.Title] = struct{}{}
				graph.AddNode(clue.Title)
			}
		}
	}

	var keep []valueobjects.ArticleTitle
	if b.config.KeepCenter {
		keep = append(keep, record.Center)
	}
	pruned := graph.Prune(b.config.PruneStrategy, keep...)

	if opts.CenterIsBlank {
		graph.ObscureCenter()
	}
	if opts.CenterIsBlue {
		graph.HighlightCenter()
	}

	nodes, edges := len(graph.Nodes()), len(graph.Edges())
	b.metrics.RecordGraph(nodes, edges, len(pruned))
	span.SetAttributes(
		attribute.Int("graph.nodes", nodes),
		attribute.Int("graph.edges", edges),
		attribute.Int("graph.pruned", len(pruned)),
	)
	b.logger.Debug("graph built",
		zap.String("center", record.Center.String()),
		zap.Int("first_level", len(firstLevel)),
		zap.Int("nodes", nodes),
		zap.Int("edges", edges),
		zap.Int("pruned", len(pruned)),
	)

	return graph, nil
}

// fetchAll fetches the records of titles concurrently. Results are indexed
// like titles; each goroutine writes only its own slot.
func (b *GraphBuilder) fetchAll(ctx context.Context, titles []valueobjects.ArticleTitle) ([]*entities.ClickstreamRecord, error) {
	results := make([]*entities.ClickstreamRecord, len(titles))

	g, gctx := errgroup.WithContext(ctx)
	if b.config.FanOutLimit > 0 {
		g.SetLimit(b.config.FanOutLimit)
	}

	for i, title := range titles {
		g.Go(func() error {
			record, err := b.clickstream.FetchClues(gctx, title)
			if err != nil {
				if !errors.IsUpstreamUnavailable(err) {
					err = errors.NewUpstreamUnavailableError(title.String(), err)
				}
				return err
			}
			if record == nil {
				record = &entities.ClickstreamRecord{Center: title}
			}
			results[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
