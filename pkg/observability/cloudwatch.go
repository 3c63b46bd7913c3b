package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// maxDatumsPerPut is the PutMetricData batch limit
const maxDatumsPerPut = 1000

// MetricDataPutter is the subset of *cloudwatch.Client used by the sink
type MetricDataPutter interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchSink buffers metric data and publishes it to CloudWatch on
// Flush. It serves deployments where nothing scrapes /metrics, such as
// Lambda, which flushes once per invocation.
type CloudWatchSink struct {
	namespace string
	client    MetricDataPutter
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending []types.MetricDatum
}

// NewCloudWatchSink creates a new CloudWatch sink
func NewCloudWatchSink(namespace string, client MetricDataPutter, logger *zap.Logger) *CloudWatchSink {
	return &CloudWatchSink{
		namespace: namespace,
		client:    client,
		logger:    logger.Named("cloudwatch"),
		now:       time.Now,
	}
}

func (s *CloudWatchSink) add(name string, value float64, unit types.StandardUnit, dimensions map[string]string) {
	if s == nil {
		return
	}

	cwDimensions := make([]types.Dimension, 0, len(dimensions))
	for k, v := range dimensions {
		cwDimensions = append(cwDimensions, types.Dimension{
			Name:  aws.String(k),
			Value: aws.String(v),
		})
	}

	datum := types.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: cwDimensions,
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(s.now()),
	}

	s.mu.Lock()
	s.pending = append(s.pending, datum)
	s.mu.Unlock()
}

// Pending returns the number of buffered datums
func (s *CloudWatchSink) Pending() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush publishes every buffered datum. Datums of a failed batch are
// dropped; metrics never fail a request.
func (s *CloudWatchSink) Flush(ctx context.Context) error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	var firstErr error
	for start := 0; start < len(pending); start += maxDatumsPerPut {
		end := min(start+maxDatumsPerPut, len(pending))
		_, err := s.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(s.namespace),
			MetricData: pending[start:end],
		})
		if err != nil {
			s.logger.Warn("Failed to send metrics",
				zap.Int("datums", end-start),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = fmt.Errorf("put metric data: %w", err)
			}
		}
	}
	return firstErr
}
