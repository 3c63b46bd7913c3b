package ports

import (
	"context"

	domainconfig "namethatpage-backend/domain/config"
	"namethatpage-backend/domain/core/entities"
	"namethatpage-backend/domain/core/valueobjects"
)

// ClickstreamSource fetches the filtered clickstream record of one article.
// Implementations retry internally and fail with an UPSTREAM_UNAVAILABLE AppError.
type ClickstreamSource interface {
	FetchClues(ctx context.Context, title valueobjects.ArticleTitle) (*entities.ClickstreamRecord, error)
}

// RedirectResolver maps a possibly stale title to its canonical target.
// A title without a redirect is returned unchanged.
type RedirectResolver interface {
	ResolveRedirect(ctx context.Context, title valueobjects.ArticleTitle) (valueobjects.ArticleTitle, error)
}

// PageLinkSource lists the internal links of a wiki page
type PageLinkSource interface {
	FetchPageLinks(ctx context.Context, page string) ([]entities.PageLink, error)
}

// SeedCorpusProvider supplies the current seed corpus snapshot
type SeedCorpusProvider interface {
	SeedCorpus() domainconfig.SeedCorpus
}

// StaticSeedCorpus is a SeedCorpusProvider that never changes
type StaticSeedCorpus domainconfig.SeedCorpus

// SeedCorpus implements SeedCorpusProvider
func (s StaticSeedCorpus) SeedCorpus() domainconfig.SeedCorpus {
	return domainconfig.SeedCorpus(s)
}

// RandomSource is the subset of *rand.Rand used for selection
type RandomSource interface {
	Intn(n int) int
}
