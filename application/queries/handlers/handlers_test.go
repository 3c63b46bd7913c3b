package handlers

import (
	"context"
	"testing"
	"time"

	"namethatpage-backend/application/queries"
	"namethatpage-backend/application/queries/bus"
	"namethatpage-backend/application/services"
	"namethatpage-backend/domain/core/aggregates"
	"namethatpage-backend/domain/core/entities"
	"namethatpage-backend/domain/core/valueobjects"
	"namethatpage-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockArticleSelector struct {
	mock.Mock
}

func (m *MockArticleSelector) SelectByTitle(ctx context.Context, title valueobjects.ArticleTitle) (*entities.ClickstreamRecord, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ClickstreamRecord), args.Error(1)
}

func (m *MockArticleSelector) SelectRandom(ctx context.Context) (*entities.ClickstreamRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ClickstreamRecord), args.Error(1)
}

type MockGraphBuilder struct {
	mock.Mock
}

func (m *MockGraphBuilder) Build(ctx context.Context, record *entities.ClickstreamRecord, opts services.BuildOptions) (*aggregates.Graph, error) {
	args := m.Called(ctx, record, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*aggregates.Graph), args.Error(1)
}

type recordedQuery struct {
	query   string
	outcome string
}

type fakeMetrics struct {
	recorded []recordedQuery
}

func (f *fakeMetrics) RecordQuery(query, outcome string, _ time.Duration) {
	f.recorded = append(f.recorded, recordedQuery{query, outcome})
}

func newBus(t *testing.T, selector ArticleSelector, builder GraphBuilder, metrics bus.Metrics) *bus.QueryBus {
	t.Helper()
	b := bus.NewQueryBus(bus.NewLoggingMiddleware(zap.NewNop()), bus.NewMetricsMiddleware(metrics))
	require.NoError(t, RegisterAll(b, selector, builder, zap.NewNop()))
	return b
}

func TestSelectArticle_ByTitle(t *testing.T) {
	// Arrange
	selector := new(MockArticleSelector)
	dog := &entities.ClickstreamRecord{Center: "Solar_System"}
	selector.On("SelectByTitle", mock.Anything, valueobjects.ArticleTitle("Solar_System")).Return(dog, nil)
	b := newBus(t, selector, new(MockGraphBuilder), &fakeMetrics{})

	// Act
	got, err := bus.Ask[*entities.ClickstreamRecord](context.Background(), b, queries.SelectArticleQuery{Title: "Solar System"})

	// Assert
	require.NoError(t, err)
	assert.Same(t, dog, got)
	selector.AssertNotCalled(t, "SelectRandom", mock.Anything)
}

func TestSelectArticle_Random(t *testing.T) {
	selector := new(MockArticleSelector)
	selector.On("SelectRandom", mock.Anything).Return(&entities.ClickstreamRecord{Center: "Moon"}, nil)
	metrics := &fakeMetrics{}
	b := newBus(t, selector, new(MockGraphBuilder), metrics)

	got, err := bus.Ask[*entities.ClickstreamRecord](context.Background(), b, queries.SelectArticleQuery{})

	require.NoError(t, err)
	assert.Equal(t, valueobjects.ArticleTitle("Moon"), got.Center)
	assert.Equal(t, []recordedQuery{{"SelectArticleQuery", "success"}}, metrics.recorded)
}

func TestSelectArticle_ErrorKeepsType(t *testing.T) {
	selector := new(MockArticleSelector)
	selector.On("SelectRandom", mock.Anything).Return(nil, errors.NewNoArticleAvailableError(6, assert.AnError))
	metrics := &fakeMetrics{}
	b := newBus(t, selector, new(MockGraphBuilder), metrics)

	_, err := b.Ask(context.Background(), queries.SelectArticleQuery{})

	assert.True(t, errors.IsNoArticleAvailable(err))
	assert.Equal(t, []recordedQuery{{"SelectArticleQuery", "error"}}, metrics.recorded)
}

func TestBus_RejectsInvalidQuery(t *testing.T) {
	selector := new(MockArticleSelector)
	b := newBus(t, selector, new(MockGraphBuilder), &fakeMetrics{})

	_, err := b.Ask(context.Background(), queries.SelectArticleQuery{Title: "{{template}}"})

	assert.True(t, errors.IsValidation(err))
	selector.AssertNotCalled(t, "SelectByTitle", mock.Anything, mock.Anything)
}

func TestBus_DuplicateRegistration(t *testing.T) {
	b := newBus(t, new(MockArticleSelector), new(MockGraphBuilder), &fakeMetrics{})

	err := b.Register(queries.BuildGraphQuery{}, NewBuildGraphHandler(new(MockGraphBuilder), zap.NewNop()))
	assert.Error(t, err)
}

func TestBuildGraph_PassesFlags(t *testing.T) {
	builder := new(MockGraphBuilder)
	record := &entities.ClickstreamRecord{Center: "Elephant"}
	graph := aggregates.NewGraph("Elephant")
	builder.On("Build", mock.Anything, record, services.BuildOptions{CenterIsBlank: true}).Return(graph, nil)
	b := newBus(t, new(MockArticleSelector), builder, &fakeMetrics{})

	got, err := bus.Ask[*aggregates.Graph](context.Background(), b, queries.BuildGraphQuery{Record: record, CenterIsBlank: true})

	require.NoError(t, err)
	assert.Same(t, graph, got)
	builder.AssertExpectations(t)
}

func TestArticleGraph_SelectsThenBuilds(t *testing.T) {
	selector := new(MockArticleSelector)
	builder := new(MockGraphBuilder)
	record := &entities.ClickstreamRecord{Center: "Dog"}
	graph := aggregates.NewGraph("Dog")
	selector.On("SelectByTitle", mock.Anything, valueobjects.ArticleTitle("Dog")).Return(record, nil)
	builder.On("Build", mock.Anything, record, services.BuildOptions{CenterIsBlue: true}).Return(graph, nil)
	b := newBus(t, selector, builder, &fakeMetrics{})

	got, err := bus.Ask[*queries.ArticleGraphResult](context.Background(), b, queries.ArticleGraphQuery{Title: "Dog", CenterIsBlue: true})

	require.NoError(t, err)
	assert.Same(t, record, got.Record)
	assert.Same(t, graph, got.Graph)
}

func TestArticleGraph_BlankCenterHidesTitle(t *testing.T) {
	// Arrange
	selector := new(MockArticleSelector)
	builder := new(MockGraphBuilder)
	record := &entities.ClickstreamRecord{
		Center:   "Elephant",
		Outbound: []entities.LinkClue{{Title: "Ivory"}},
	}
	graph := aggregates.NewGraph("Elephant")
	selector.On("SelectRandom", mock.Anything).Return(record, nil)
	builder.On("Build", mock.Anything, record, services.BuildOptions{CenterIsBlank: true}).Return(graph, nil)
	b := newBus(t, selector, builder, &fakeMetrics{})

	// Act
	got, err := bus.Ask[*queries.ArticleGraphResult](context.Background(), b, queries.ArticleGraphQuery{CenterIsBlank: true})

	// Assert
	require.NoError(t, err)
	assert.True(t, got.Record.Center.IsZero())
	assert.Equal(t, record.Outbound, got.Record.Outbound)
	assert.Equal(t, valueobjects.ArticleTitle("Elephant"), record.Center)
}

func TestArticleGraph_BuildFailure(t *testing.T) {
	selector := new(MockArticleSelector)
	builder := new(MockGraphBuilder)
	record := &entities.ClickstreamRecord{Center: "Dog"}
	selector.On("SelectRandom", mock.Anything).Return(record, nil)
	builder.On("Build", mock.Anything, record, services.BuildOptions{}).
		Return(nil, errors.NewUpstreamUnavailableError("Cat", assert.AnError))
	b := newBus(t, selector, builder, &fakeMetrics{})

	_, err := b.Ask(context.Background(), queries.ArticleGraphQuery{})

	assert.True(t, errors.IsUpstreamUnavailable(err))
}
