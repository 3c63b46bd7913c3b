package di

import (
	"namethatpage-backend/application/ports"
	querybus "namethatpage-backend/application/queries/bus"
	"namethatpage-backend/application/services"
	"namethatpage-backend/infrastructure/config"
	"namethatpage-backend/interfaces/http/rest"
	"namethatpage-backend/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *observability.Collector
	Tracer     *observability.TracerProvider
	SeedCorpus ports.SeedCorpusProvider
	Selector   *services.ArticleSelector
	Builder    *services.GraphBuilder
	QueryBus   *querybus.QueryBus
	Router     *rest.Router
}
