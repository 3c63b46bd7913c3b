package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"namethatpage-backend/infrastructure/config"
	"namethatpage-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerAddress:        ":0",
		Environment:          "test",
		RequestTimeout:       5 * time.Second,
		ClickstreamBaseURL:   config.DefaultClickstreamBaseURL,
		WikipediaBaseURL:     config.DefaultWikipediaBaseURL,
		UserAgent:            config.DefaultUserAgent,
		UpstreamTimeout:      time.Second,
		ClickstreamRetries:   1,
		RetryInitialDelay:    time.Millisecond,
		RetryMaxDelay:        10 * time.Millisecond,
		EnableCircuitBreaker: true,
		MaxSelectionRestarts: 2,
		PruneStrategy:        "single_pass",
		MainPageTitle:        "Main_Page",
		LogLevel:             "error",
		EnableMetrics:        true,
		EnableCORS:           true,
		CORSAllowedOrigins:   []string{"*"},
	}
}

func TestInitializeContainer(t *testing.T) {
	// Arrange
	cfg := testConfig()

	// Act
	container, cleanup, err := InitializeContainer(context.Background(), cfg)

	// Assert
	require.NoError(t, err)
	defer cleanup()
	assert.Same(t, cfg, container.Config)
	assert.NotNil(t, container.Logger)
	assert.NotNil(t, container.Metrics)
	assert.NotNil(t, container.Selector)
	assert.NotNil(t, container.Builder)
	assert.NotNil(t, container.QueryBus)
	assert.NotEmpty(t, container.SeedCorpus.SeedCorpus().Categories)
	assert.Equal(t, float64(len(container.SeedCorpus.SeedCorpus().Categories)), testutil.ToFloat64(container.Metrics.SeedCategories))

	handler := container.Router.Setup()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInitializeContainer_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.EnableMetrics = false

	container, cleanup, err := InitializeContainer(context.Background(), cfg)

	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, container.Metrics)
}

func TestInitializeContainer_WatchedCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - Wikipedia:Vital_articles/Level/1\n"), 0o600))

	cfg := testConfig()
	cfg.SeedCorpusFile = path
	cfg.WatchSeedCorpus = true

	container, cleanup, err := InitializeContainer(context.Background(), cfg)

	require.NoError(t, err)
	defer cleanup()
	assert.Equal(t, []string{"Wikipedia:Vital_articles/Level/1"}, container.SeedCorpus.SeedCorpus().Categories)
	assert.Equal(t, 1.0, testutil.ToFloat64(container.Metrics.SeedCategories))

	// Act: a reload is reported through the collector
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - Level/1\n  - Level/2\n"), 0o600))
	watcher, ok := container.SeedCorpus.(*config.CorpusWatcher)
	require.True(t, ok)
	require.NoError(t, watcher.Reload())

	assert.Equal(t, 2.0, testutil.ToFloat64(container.Metrics.SeedCategories))
	assert.GreaterOrEqual(t, testutil.ToFloat64(container.Metrics.CorpusReloads), 1.0)
}

func TestInitializeContainer_InvalidLogLevel(t *testing.T) {
	cfg := testConfig()
	cfg.LogLevel = "loud"

	_, _, err := InitializeContainer(context.Background(), cfg)

	assert.Error(t, err)
}

func TestInitializeContainer_MissingWatchedCorpus(t *testing.T) {
	cfg := testConfig()
	cfg.SeedCorpusFile = filepath.Join(t.TempDir(), "missing", "corpus.yaml")
	cfg.WatchSeedCorpus = true

	_, _, err := InitializeContainer(context.Background(), cfg)

	assert.Error(t, err)
}

type recordingPutter struct {
	inputs []*cloudwatch.PutMetricDataInput
}

func (p *recordingPutter) PutMetricData(_ context.Context, params *cloudwatch.PutMetricDataInput, _ ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	p.inputs = append(p.inputs, params)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestProvideCloudWatchSink(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		sink, err := ProvideCloudWatchSink(context.Background(), testConfig(), zap.NewNop())

		require.NoError(t, err)
		assert.Nil(t, sink)
	})

	t.Run("enabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.EnableCloudWatch = true
		cfg.CloudWatchNamespace = "NameThatPage/test"
		cfg.AWSRegion = "us-east-1"

		sink, err := ProvideCloudWatchSink(context.Background(), cfg, zap.NewNop())

		require.NoError(t, err)
		assert.NotNil(t, sink)
	})
}

func TestProvideMetrics_MirrorsToCloudWatch(t *testing.T) {
	// Arrange
	putter := &recordingPutter{}
	sink := observability.NewCloudWatchSink("NameThatPage/test", putter, zap.NewNop())
	collector := ProvideMetrics(testConfig(), sink)

	// Act
	collector.RecordSelection("random", "success")
	require.NoError(t, collector.Flush(context.Background()))

	// Assert
	require.Len(t, putter.inputs, 1)
	assert.Equal(t, "NameThatPage/test", aws.ToString(putter.inputs[0].Namespace))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Selections.WithLabelValues("random", "success")))
}
