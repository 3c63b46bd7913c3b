package services

import (
	"context"

	"namethatpage-backend/domain/core/entities"
	"namethatpage-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/mock"
)

// MockClickstreamSource is a mock implementation of ports.ClickstreamSource
type MockClickstreamSource struct {
	mock.Mock
}

// FetchClues accepts either a record or a func(title) record as first return value
func (m *MockClickstreamSource) FetchClues(ctx context.Context, title valueobjects.ArticleTitle) (*entities.ClickstreamRecord, error) {
	args := m.Called(ctx, title)
	if fn, ok := args.Get(0).(func(valueobjects.ArticleTitle) *entities.ClickstreamRecord); ok {
		return fn(title), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ClickstreamRecord), args.Error(1)
}

// MockRedirectResolver is a mock implementation of ports.RedirectResolver
type MockRedirectResolver struct {
	mock.Mock
}

func (m *MockRedirectResolver) ResolveRedirect(ctx context.Context, title valueobjects.ArticleTitle) (valueobjects.ArticleTitle, error) {
	args := m.Called(ctx, title)
	return args.Get(0).(valueobjects.ArticleTitle), args.Error(1)
}

// MockPageLinkSource is a mock implementation of ports.PageLinkSource
type MockPageLinkSource struct {
	mock.Mock
}

func (m *MockPageLinkSource) FetchPageLinks(ctx context.Context, page string) ([]entities.PageLink, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.PageLink), args.Error(1)
}

// sequenceRandom returns its values in order, then repeats the last one
type sequenceRandom struct {
	values []int
	next   int
}

func (r *sequenceRandom) Intn(n int) int {
	if len(r.values) == 0 {
		return 0
	}
	i := r.next
	if i >= len(r.values) {
		i = len(r.values) - 1
	}
	r.next++
	return r.values[i] % n
}

func record(center string, inbound, outbound []string) *entities.ClickstreamRecord {
	r := &entities.ClickstreamRecord{Center: valueobjects.ArticleTitle(center)}
	for _, title := range inbound {
		r.Inbound = append(r.Inbound, entities.LinkClue{Title: valueobjects.ArticleTitle(title)})
	}
	for _, title := range outbound {
		r.Outbound = append(r.Outbound, entities.LinkClue{Title: valueobjects.ArticleTitle(title)})
	}
	return r
}

func article(title string) entities.PageLink {
	return entities.PageLink{
		Title:     valueobjects.ArticleTitle(title),
		Text:      valueobjects.ArticleTitle(title).DisplayName(),
		Namespace: entities.NamespaceMain,
		Exists:    true,
	}
}
