// Package metrics publishes per-cycle pipeline counters to CloudWatch.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"

	"redstream/application/ports"
)

// Publisher sends cycle stats as custom metrics under one namespace.
type Publisher struct {
	client    *cloudwatch.Client
	namespace string
	logger    *zap.Logger
}

// NewPublisher creates a new Publisher
func NewPublisher(client *cloudwatch.Client, namespace string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// Publish sends one datum per counter. Best-effort: the caller logs the
// returned error and moves on.
func (p *Publisher) Publish(ctx context.Context, stats ports.CycleStats) error {
	now := time.Now().UTC()
	datum := func(name string, value int) types.MetricDatum {
		return types.MetricDatum{
			MetricName: aws.String(name),
			Value:      aws.Float64(float64(value)),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(now),
		}
	}

	_, err := p.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(p.namespace),
		MetricData: []types.MetricDatum{
			datum("RecordsProcessed", stats.Processed),
			datum("RecordsSkipped", stats.Skipped),
			datum("SinkWriteFailures", stats.SinkFailures),
			datum("AnomaliesFlagged", stats.Anomalies),
		},
	})
	if err != nil {
		return fmt.Errorf("put metric data: %w", err)
	}
	return nil
}
