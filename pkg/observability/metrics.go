// Package observability provides CloudWatch metric emission for the service.
package observability

import (
	"context"
	"time"

	"policyapi/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

const putTimeout = 2 * time.Second

// CloudWatchMetrics implements ports.Metrics against the CloudWatch API.
// Emission failures are logged and swallowed so metrics never affect the
// request path.
type CloudWatchMetrics struct {
	client    *cloudwatch.Client
	namespace string
	logger    *zap.Logger
}

// NewCloudWatchMetrics creates a metrics emitter scoped to the given
// environment, e.g. namespace "PolicyAPI/production".
func NewCloudWatchMetrics(client *cloudwatch.Client, environment string, logger *zap.Logger) *CloudWatchMetrics {
	return &CloudWatchMetrics{
		client:    client,
		namespace: "PolicyAPI/" + environment,
		logger:    logger,
	}
}

var _ ports.Metrics = (*CloudWatchMetrics)(nil)

// CacheHit records a cache hit for the given operation.
func (m *CloudWatchMetrics) CacheHit(operation string) {
	m.put("CacheHit", 1, types.StandardUnitCount, []types.Dimension{
		{Name: aws.String("Operation"), Value: aws.String(operation)},
	})
}

// CacheMiss records a cache miss for the given operation.
func (m *CloudWatchMetrics) CacheMiss(operation string) {
	m.put("CacheMiss", 1, types.StandardUnitCount, []types.Dimension{
		{Name: aws.String("Operation"), Value: aws.String(operation)},
	})
}

// RequestDuration records how long a request took to serve.
func (m *CloudWatchMetrics) RequestDuration(method, path string, status int, duration time.Duration) {
	m.put("RequestDuration", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, []types.Dimension{
		{Name: aws.String("Method"), Value: aws.String(method)},
		{Name: aws.String("Path"), Value: aws.String(path)},
	})
}

func (m *CloudWatchMetrics) put(name string, value float64, unit types.StandardUnit, dims []types.Dimension) {
	ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
	defer cancel()

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Unit:       unit,
				Dimensions: dims,
				Timestamp:  aws.Time(time.Now().UTC()),
			},
		},
	})
	if err != nil {
		m.logger.Warn("Failed to emit metric",
			zap.String("metric", name),
			zap.Error(err),
		)
	}
}

// NoopMetrics discards every measurement. Used when metrics are disabled.
type NoopMetrics struct{}

// NewNoopMetrics creates a metrics sink that drops everything.
func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

var _ ports.Metrics = (*NoopMetrics)(nil)

func (*NoopMetrics) CacheHit(operation string)  {}
func (*NoopMetrics) CacheMiss(operation string) {}
func (*NoopMetrics) RequestDuration(method, path string, status int, duration time.Duration) {}
