package kinesis

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"go.uber.org/zap"

	"redstream/domain/record"
	pkgerrors "redstream/pkg/errors"
)

// Producer writes raw records onto the stream, one PutRecord per post with
// the post id as partition key.
type Producer struct {
	client     *kinesis.Client
	streamName string
	logger     *zap.Logger
}

// NewProducer creates a producer for the given stream.
func NewProducer(client *kinesis.Client, streamName string, logger *zap.Logger) *Producer {
	return &Producer{
		client:     client,
		streamName: streamName,
		logger:     logger,
	}
}

// Put serializes the raw record and sends it to the stream.
func (p *Producer) Put(ctx context.Context, raw record.Raw) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return pkgerrors.NewInternalError("marshal raw record", err)
	}

	out, err := p.client.PutRecord(ctx, &kinesis.PutRecordInput{
		StreamName:   aws.String(p.streamName),
		Data:         data,
		PartitionKey: aws.String(raw.ID),
	})
	if err != nil {
		return pkgerrors.NewUpstreamError("put record", err)
	}

	p.logger.Debug("sent record to stream",
		zap.String("recordID", raw.ID),
		zap.String("shardID", aws.ToString(out.ShardId)),
		zap.String("sequenceNumber", aws.ToString(out.SequenceNumber)),
	)
	return nil
}
