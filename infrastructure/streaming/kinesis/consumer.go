// Package kinesis adapts the managed stream to the pipeline's source and
// the producer's sink. The consumer walks a single shard iterator and
// never persists its position; checkpointing is left to the stream.
package kinesis

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
	"go.uber.org/zap"

	pkgerrors "redstream/pkg/errors"
)

// Consumer reads micro-batches from the first shard of a stream.
type Consumer struct {
	client     *kinesis.Client
	streamName string
	iterator   types.ShardIteratorType
	limit      int32
	logger     *zap.Logger

	shardIterator *string
}

// NewConsumer creates a consumer for the given stream. iteratorType is
// LATEST or TRIM_HORIZON.
func NewConsumer(client *kinesis.Client, streamName, iteratorType string, limit int32, logger *zap.Logger) *Consumer {
	return &Consumer{
		client:     client,
		streamName: streamName,
		iterator:   types.ShardIteratorType(iteratorType),
		limit:      limit,
		logger:     logger,
	}
}

// start describes the stream and acquires the initial shard iterator.
// Failure here is control-plane and fatal.
func (c *Consumer) start(ctx context.Context) error {
	desc, err := c.client.DescribeStream(ctx, &kinesis.DescribeStreamInput{
		StreamName: aws.String(c.streamName),
	})
	if err != nil {
		return pkgerrors.NewUpstreamError("describe stream", err)
	}
	shards := desc.StreamDescription.Shards
	if len(shards) == 0 {
		return pkgerrors.NewUpstreamError("describe stream",
			pkgerrors.NewInternalError("stream has no shards", nil))
	}
	shardID := shards[0].ShardId

	out, err := c.client.GetShardIterator(ctx, &kinesis.GetShardIteratorInput{
		StreamName:        aws.String(c.streamName),
		ShardId:           shardID,
		ShardIteratorType: c.iterator,
	})
	if err != nil {
		return pkgerrors.NewUpstreamError("get shard iterator", err)
	}

	c.shardIterator = out.ShardIterator
	c.logger.Info("acquired shard iterator",
		zap.String("stream", c.streamName),
		zap.String("shardID", aws.ToString(shardID)),
		zap.String("iteratorType", string(c.iterator)),
	)
	return nil
}

// Next returns the payloads of the next micro-batch and advances the shard
// iterator. The first call acquires the iterator lazily.
func (c *Consumer) Next(ctx context.Context) ([][]byte, error) {
	if c.shardIterator == nil {
		if err := c.start(ctx); err != nil {
			return nil, err
		}
	}

	out, err := c.client.GetRecords(ctx, &kinesis.GetRecordsInput{
		ShardIterator: c.shardIterator,
		Limit:         aws.Int32(c.limit),
	})
	if err != nil {
		return nil, pkgerrors.NewUpstreamError("get records", err)
	}
	c.shardIterator = out.NextShardIterator

	payloads := make([][]byte, 0, len(out.Records))
	for _, rec := range out.Records {
		payloads = append(payloads, rec.Data)
	}
	return payloads, nil
}
