package cli

import (
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awskinesis "github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"redstream/application/pipeline"
	"redstream/domain/analytics"
	"redstream/domain/record"
	"redstream/infrastructure/metrics"
	dynamorepo "redstream/infrastructure/persistence/dynamodb"
	"redstream/infrastructure/streaming/kinesis"
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Consume the stream, enrich records and persist them",
	Long: `Polls the Kinesis stream once per second, normalizes and enriches each
record, upserts it into the processed-records table and scans every
micro-batch for statistical outliers. Exits cleanly once the configured
time budget elapses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		cfg, logger, awsCfg, err := setup(ctx)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		consumer := kinesis.NewConsumer(
			awskinesis.NewFromConfig(awsCfg),
			cfg.StreamName,
			cfg.IteratorType,
			cfg.GetRecordsLimit,
			logger,
		)
		repo := dynamorepo.NewRecordRepository(
			awsdynamodb.NewFromConfig(awsCfg),
			cfg.TableName,
			logger,
		)

		normalizer := record.NewNormalizer(record.NewActivityTable(), record.VaderScorer{})
		detector := analytics.NewDetector(cfg.AnomalyThreshold)

		opts := []pipeline.Option{}
		if cfg.EnableMetrics {
			publisher := metrics.NewPublisher(
				awscloudwatch.NewFromConfig(awsCfg),
				cfg.MetricNamespace,
				logger,
			)
			opts = append(opts, pipeline.WithMetrics(publisher))
		}

		p := pipeline.New(consumer, repo, normalizer, detector, logger, opts...)

		logger.Info("starting consumer",
			zap.String("stream", cfg.StreamName),
			zap.String("table", cfg.TableName),
			zap.Duration("runDuration", cfg.RunDuration),
		)
		return p.Run(ctx, cfg.RunDuration)
	},
}
