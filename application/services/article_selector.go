package services

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"namethatpage-backend/application/ports"
	domainconfig "namethatpage-backend/domain/config"
	"namethatpage-backend/domain/core/entities"
	"namethatpage-backend/domain/core/valueobjects"
	"namethatpage-backend/pkg/errors"
	"namethatpage-backend/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	selectionModeTitle  = "title"
	selectionModeRandom = "random"
)

// ArticleSelectorConfig tunes article selection
type ArticleSelectorConfig struct {
	// MaxSelectionRestarts bounds how often a random selection starts over
	// after a failed fetch
	MaxSelectionRestarts int
}

// DefaultArticleSelectorConfig returns the default selector configuration
func DefaultArticleSelectorConfig() ArticleSelectorConfig {
	return ArticleSelectorConfig{MaxSelectionRestarts: 5}
}

// ArticleSelector picks the center article of a round, either by title or
// at random from the seed corpus.
type ArticleSelector struct {
	clickstream ports.ClickstreamSource
	redirects   ports.RedirectResolver
	links       ports.PageLinkSource
	corpus      ports.SeedCorpusProvider
	config      ArticleSelectorConfig
	metrics     *observability.Collector
	tracer      trace.Tracer
	logger      *zap.Logger

	rndMu sync.Mutex
	rnd   ports.RandomSource
}

// NewArticleSelector creates a new article selector. A nil rnd is replaced
// by a time-seeded source.
func NewArticleSelector(
	clickstream ports.ClickstreamSource,
	redirects ports.RedirectResolver,
	links ports.PageLinkSource,
	corpus ports.SeedCorpusProvider,
	rnd ports.RandomSource,
	config ArticleSelectorConfig,
	metrics *observability.Collector,
	logger *zap.Logger,
) *ArticleSelector {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if config.MaxSelectionRestarts < 0 {
		config.MaxSelectionRestarts = 0
	}
	return &ArticleSelector{
		clickstream: clickstream,
		redirects:   redirects,
		links:       links,
		corpus:      corpus,
		rnd:         rnd,
		config:      config,
		metrics:     metrics,
		tracer:      observability.Tracer("services"),
		logger:      logger.Named("article_selector"),
	}
}

// SelectByTitle resolves title through redirects and returns the clues of
// the target article. Upstream errors are returned unchanged.
func (s *ArticleSelector) SelectByTitle(ctx context.Context, title valueobjects.ArticleTitle) (_ *entities.ClickstreamRecord, err error) {
	if title.IsZero() {
		return nil, errors.NewValidationError("article title is required")
	}

	ctx, span := s.tracer.Start(ctx, "ArticleSelector.SelectByTitle", trace.WithAttributes(
		attribute.String("article.title", title.String()),
	))
	defer func() {
		s.metrics.RecordSelection(selectionModeTitle, selectionOutcome(err))
		observability.EndSpan(span, err)
	}()

	resolved, err := s.redirects.ResolveRedirect(ctx, title)
	if err != nil {
		return nil, err
	}

	record, err := s.clickstream.FetchClues(ctx, resolved)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("article selected by title",
		zap.String("title", title.String()),
		zap.String("center", record.Center.String()),
	)
	return record, nil
}

// SelectRandom picks a random article from the seed corpus, then hops to
// one of its clues. A failed clickstream fetch starts the selection over, at
// most MaxSelectionRestarts times. Seed page failures are returned as is.
func (s *ArticleSelector) SelectRandom(ctx context.Context) (_ *entities.ClickstreamRecord, err error) {
	ctx, span := s.tracer.Start(ctx, "ArticleSelector.SelectRandom")
	defer func() {
		s.metrics.RecordSelection(selectionModeRandom, selectionOutcome(err))
		observability.EndSpan(span, err)
	}()

	var lastErr error
	for attempt := 0; attempt <= s.config.MaxSelectionRestarts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, errors.NewTimeoutError("random article selection").WithCause(ctxErr)
		}
		if attempt > 0 {
			s.metrics.RecordRestart()
			s.logger.Warn("restarting random selection",
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
		}

		record, restart, err := s.selectRandomOnce(ctx)
		if err != nil && !restart {
			return nil, err
		}
		if err == nil {
			span.SetAttributes(
				attribute.String("article.center", record.Center.String()),
				attribute.Int("selection.restarts", attempt),
			)
			return record, nil
		}
		lastErr = err
	}

	return nil, errors.NewNoArticleAvailableError(s.config.MaxSelectionRestarts+1, lastErr)
}

// selectRandomOnce runs one selection attempt. restart reports whether the
// failure came from a clickstream fetch of a randomly chosen article.
func (s *ArticleSelector) selectRandomOnce(ctx context.Context) (_ *entities.ClickstreamRecord, restart bool, _ error) {
	corpus := s.corpus.SeedCorpus()

	pool, err := s.candidatePool(ctx, corpus)
	if err != nil {
		return nil, false, err
	}

	candidate := pool[s.intn(len(pool))]
	record, err := s.clickstream.FetchClues(ctx, candidate)
	if err != nil {
		return nil, true, err
	}

	hop, ok := s.secondaryHop(corpus, record)
	if !ok {
		s.logger.Debug("no eligible clue to hop to, keeping candidate",
			zap.String("candidate", candidate.String()),
		)
		return record, false, nil
	}

	hopRecord, err := s.clickstream.FetchClues(ctx, hop)
	if err != nil {
		return nil, true, err
	}

	s.logger.Debug("random article selected",
		zap.String("candidate", candidate.String()),
		zap.String("center", hopRecord.Center.String()),
	)
	return hopRecord, false, nil
}

// candidatePool unions the admitted links of every seed page, deduplicated
// by title in category order. Categories that fail or come back empty are
// skipped.
func (s *ArticleSelector) candidatePool(ctx context.Context, corpus domainconfig.SeedCorpus) ([]valueobjects.ArticleTitle, error) {
	perCategory := make([][]entities.PageLink, len(corpus.Categories))
	failures := make([]error, len(corpus.Categories))

	var g errgroup.Group
	for i, category := range corpus.Categories {
		g.Go(func() error {
			links, err := s.links.FetchPageLinks(ctx, category)
			if err != nil {
				failures[i] = err
				return nil
			}
			perCategory[i] = corpus.Filter(links)
			return nil
		})
	}
	_ = g.Wait()

	var (
		pool    []valueobjects.ArticleTitle
		seen    = make(map[valueobjects.ArticleTitle]struct{})
		lastErr error
	)
	for i, category := range corpus.Categories {
		if failures[i] != nil {
			s.logger.Warn("skipping seed category",
				zap.String("category", category),
				zap.Error(failures[i]),
			)
			lastErr = failures[i]
			continue
		}
		if len(perCategory[i]) == 0 {
			noLinks := errors.NewNoLinksFoundError(category)
			s.logger.Warn("skipping seed category", zap.String("category", category), zap.Error(noLinks))
			continue
		}
		for _, link := range perCategory[i] {
			if _, dup := seen[link.Title]; dup {
				continue
			}
			seen[link.Title] = struct{}{}
			pool = append(pool, link.Title)
		}
	}

	if len(pool) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, errors.NewNoLinksFoundError(strings.Join(corpus.Categories, ", "))
	}
	return pool, nil
}

// secondaryHop picks a random clue of record that the corpus would admit
// as a main namespace article.
func (s *ArticleSelector) secondaryHop(corpus domainconfig.SeedCorpus, record *entities.ClickstreamRecord) (valueobjects.ArticleTitle, bool) {
	var eligible []valueobjects.ArticleTitle
	for _, clue := range record.Neighbors() {
		if clue.Title == record.Center {
			continue
		}
		link := entities.PageLink{
			Title:     clue.Title,
			Text:      clue.Title.DisplayName(),
			Namespace: entities.NamespaceMain,
			Exists:    true,
		}
		if corpus.Admits(link) {
			eligible = append(eligible, clue.Title)
		}
	}
	if len(eligible) == 0 {
		return "", false
	}
	return eligible[s.intn(len(eligible))], true
}

func (s *ArticleSelector) intn(n int) int {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.rnd.Intn(n)
}

func selectionOutcome(err error) string {
	if err == nil {
		return "success"
	}
	if appErr := errors.GetAppError(err); appErr != nil {
		return strings.ToLower(string(appErr.Type))
	}
	return "error"
}
