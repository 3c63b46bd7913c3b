package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"namethatpage-backend/application/ports"
	querybus "namethatpage-backend/application/queries/bus"
	queryhandlers "namethatpage-backend/application/queries/handlers"
	"namethatpage-backend/application/services"
	domainconfig "namethatpage-backend/domain/config"
	"namethatpage-backend/domain/core/aggregates"
	"namethatpage-backend/domain/core/valueobjects"
	"namethatpage-backend/infrastructure/config"
	"namethatpage-backend/infrastructure/wikipedia"
	"namethatpage-backend/interfaces/http/rest"
	"namethatpage-backend/pkg/observability"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "namethatpage-backend"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.With(zap.String("service", serviceName)), nil
}

// ProvideCloudWatchSink creates the CloudWatch metrics sink, or nil when
// CloudWatch is disabled
func ProvideCloudWatchSink(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.CloudWatchSink, error) {
	if !cfg.EnableMetrics || !cfg.EnableCloudWatch {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return observability.NewCloudWatchSink(cfg.CloudWatchNamespace, cloudwatch.NewFromConfig(awsCfg), logger), nil
}

// ProvideMetrics creates the Prometheus collector, or nil when disabled
func ProvideMetrics(cfg *config.Config, sink *observability.CloudWatchSink) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	collector := observability.NewCollector("namethatpage")
	if sink != nil {
		collector.WithCloudWatch(sink)
	}
	return collector
}

// ProvideTracerProvider initializes tracing and returns its flush function
func ProvideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, serviceName, cfg.Environment, cfg.OTLPEndpoint, cfg.EnableTracing)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Failed to flush traces", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// ProvideHTTPClient creates the HTTP client shared by all upstream calls
func ProvideHTTPClient(cfg *config.Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 32
	return &http.Client{
		Timeout:   2 * cfg.UpstreamTimeout,
		Transport: transport,
	}
}

// ProvideUpstreamOptions collects the settings shared by the upstream clients
func ProvideUpstreamOptions(cfg *config.Config, client *http.Client, metrics *observability.Collector) wikipedia.Options {
	return wikipedia.Options{
		HTTPClient:     client,
		UserAgent:      cfg.UserAgent,
		Timeout:        cfg.UpstreamTimeout,
		CircuitBreaker: cfg.EnableCircuitBreaker,
		Metrics:        metrics,
	}
}

// ProvideClickstreamClient creates the clickstream client
func ProvideClickstreamClient(cfg *config.Config, opts wikipedia.Options, logger *zap.Logger) *wikipedia.ClickstreamClient {
	retry := wikipedia.DefaultRetryPolicy()
	retry.MaxRetries = cfg.ClickstreamRetries
	retry.InitialDelay = cfg.RetryInitialDelay
	retry.MaxDelay = cfg.RetryMaxDelay

	return wikipedia.NewClickstreamClient(wikipedia.ClickstreamConfig{
		BaseURL:   cfg.ClickstreamBaseURL,
		LagMonths: cfg.ClickstreamLagMonths,
		MainPage:  valueobjects.ArticleTitle(cfg.MainPageTitle),
		Retry:     retry,
	}, opts, logger)
}

// ProvideMediaWikiClient creates the MediaWiki action API client
func ProvideMediaWikiClient(cfg *config.Config, opts wikipedia.Options, logger *zap.Logger) *wikipedia.MediaWikiClient {
	return wikipedia.NewMediaWikiClient(cfg.WikipediaBaseURL, opts, logger)
}

// ProvideSeedCorpus loads the seed corpus, watching the file when enabled
func ProvideSeedCorpus(cfg *config.Config, metrics *observability.Collector, logger *zap.Logger) (ports.SeedCorpusProvider, func(), error) {
	if !cfg.WatchSeedCorpus {
		corpus, err := config.LoadSeedCorpus(cfg.SeedCorpusFile)
		if err != nil {
			return nil, nil, err
		}
		metrics.SetSeedCategories(len(corpus.Categories))
		return ports.StaticSeedCorpus(corpus), func() {}, nil
	}

	watcher, err := config.NewCorpusWatcher(cfg.SeedCorpusFile, logger)
	if err != nil {
		return nil, nil, err
	}
	metrics.SetSeedCategories(len(watcher.SeedCorpus().Categories))
	watcher.OnChange(func(corpus domainconfig.SeedCorpus) {
		metrics.RecordCorpusReload(len(corpus.Categories))
	})
	if err := watcher.Start(); err != nil {
		return nil, nil, err
	}
	return watcher, watcher.Stop, nil
}

// ProvideArticleSelector creates the article selector
func ProvideArticleSelector(
	cfg *config.Config,
	clickstream *wikipedia.ClickstreamClient,
	mediawiki *wikipedia.MediaWikiClient,
	corpus ports.SeedCorpusProvider,
	metrics *observability.Collector,
	logger *zap.Logger,
) *services.ArticleSelector {
	return services.NewArticleSelector(
		clickstream,
		mediawiki,
		mediawiki,
		corpus,
		nil,
		services.ArticleSelectorConfig{MaxSelectionRestarts: cfg.MaxSelectionRestarts},
		metrics,
		logger,
	)
}

// ProvideGraphBuilder creates the graph builder
func ProvideGraphBuilder(
	cfg *config.Config,
	clickstream *wikipedia.ClickstreamClient,
	metrics *observability.Collector,
	logger *zap.Logger,
) *services.GraphBuilder {
	return services.NewGraphBuilder(clickstream, services.GraphBuilderConfig{
		PruneStrategy: aggregates.PruneStrategy(cfg.PruneStrategy),
		KeepCenter:    cfg.KeepCenter,
		FanOutLimit:   cfg.FanOutLimit,
	}, metrics, logger)
}

// ProvideQueryBus creates the query bus with all handlers registered
func ProvideQueryBus(
	selector *services.ArticleSelector,
	builder *services.GraphBuilder,
	metrics *observability.Collector,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	bus := querybus.NewQueryBus(
		querybus.NewLoggingMiddleware(logger),
		querybus.NewMetricsMiddleware(metrics),
	)
	if err := queryhandlers.RegisterAll(bus, selector, builder, logger); err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}
	return bus, nil
}

// ProvideRouter creates the HTTP router
func ProvideRouter(
	cfg *config.Config,
	bus *querybus.QueryBus,
	metrics *observability.Collector,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(bus, metrics, rest.RouterConfig{
		EnableCORS:         cfg.EnableCORS,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout:     cfg.RequestTimeout,
		Debug:              cfg.IsDevelopment(),
	}, logger)
}
