package observability

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockMetricDataPutter struct {
	mock.Mock
}

func (m *MockMetricDataPutter) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*cloudwatch.PutMetricDataOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func metricNames(input *cloudwatch.PutMetricDataInput) []string {
	names := make([]string, 0, len(input.MetricData))
	for _, d := range input.MetricData {
		names = append(names, aws.ToString(d.MetricName))
	}
	return names
}

func TestCollector_MirrorsToCloudWatch(t *testing.T) {
	// Arrange
	putter := new(MockMetricDataPutter)
	var sent *cloudwatch.PutMetricDataInput
	putter.On("PutMetricData", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*cloudwatch.PutMetricDataInput) }).
		Return(&cloudwatch.PutMetricDataOutput{}, nil).Once()

	sink := NewCloudWatchSink("NameThatPage/test", putter, zap.NewNop())
	c := NewCollector("test").WithCloudWatch(sink)

	// Act
	c.RecordSelection("random", "success")
	c.RecordRestart()
	c.RecordGraph(10, 14, 2)
	c.RecordUpstream("clickstream", "success", 30*time.Millisecond)
	require.Equal(t, 7, sink.Pending())
	err := c.Flush(context.Background())

	// Assert
	require.NoError(t, err)
	putter.AssertExpectations(t)
	require.NotNil(t, sent)
	assert.Equal(t, "NameThatPage/test", aws.ToString(sent.Namespace))
	assert.Equal(t, []string{
		"Selections", "SelectionRestarts", "GraphNodes", "GraphEdges", "PrunedNodes",
		"UpstreamCalls", "UpstreamLatency",
	}, metricNames(sent))
	assert.Equal(t, 14.0, aws.ToFloat64(sent.MetricData[3].Value))
	assert.Equal(t, 0, sink.Pending())
}

func TestCloudWatchSink_FlushEmptyDoesNotCall(t *testing.T) {
	putter := new(MockMetricDataPutter)
	sink := NewCloudWatchSink("ns", putter, zap.NewNop())

	require.NoError(t, sink.Flush(context.Background()))

	putter.AssertNotCalled(t, "PutMetricData", mock.Anything, mock.Anything)
}

func TestCloudWatchSink_FlushFailureDropsBatch(t *testing.T) {
	putter := new(MockMetricDataPutter)
	putter.On("PutMetricData", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()
	sink := NewCloudWatchSink("ns", putter, zap.NewNop())
	NewCollector("test").WithCloudWatch(sink).RecordRestart()

	err := sink.Flush(context.Background())

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, sink.Pending())
	putter.AssertExpectations(t)
}

func TestCloudWatchSink_BatchesLargeFlushes(t *testing.T) {
	putter := new(MockMetricDataPutter)
	putter.On("PutMetricData", mock.Anything, mock.Anything).Return(&cloudwatch.PutMetricDataOutput{}, nil)
	sink := NewCloudWatchSink("ns", putter, zap.NewNop())
	c := NewCollector("test").WithCloudWatch(sink)

	for i := 0; i < maxDatumsPerPut+1; i++ {
		c.RecordRestart()
	}
	require.NoError(t, c.Flush(context.Background()))

	putter.AssertNumberOfCalls(t, "PutMetricData", 2)
}

func TestCloudWatchSink_NilIsNoop(t *testing.T) {
	var sink *CloudWatchSink
	var c *Collector

	assert.NotPanics(t, func() {
		sink.add("Requests", 1, "Count", nil)
		NewCollector("test").RecordRestart()
	})
	assert.Equal(t, 0, sink.Pending())
	assert.NoError(t, sink.Flush(context.Background()))
	assert.NoError(t, c.Flush(context.Background()))
}
