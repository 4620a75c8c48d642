package cli

import (
	"time"

	awskinesis "github.com/aws/aws-sdk-go-v2/service/kinesis"
	awssecrets "github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"redstream/infrastructure/reddit"
	"redstream/infrastructure/secrets"
	"redstream/infrastructure/streaming/kinesis"
)

var produceCmd = &cobra.Command{
	Use:   "produce",
	Short: "Stream new subreddit posts onto the Kinesis stream",
	Long: `Polls the subreddit's new listing, filters out posts already sent and
puts one record per fresh post onto the stream, until the configured
producer duration elapses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		cfg, logger, awsCfg, err := setup(ctx)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		userAgent := cfg.UserAgent
		provider := secrets.NewProvider(awssecrets.NewFromConfig(awsCfg), cfg.SecretName, logger)
		if creds, err := provider.RedditCredentials(ctx); err != nil {
			logger.Warn("could not load reddit credentials, using configured user agent", zap.Error(err))
		} else if creds.UserAgent != "" {
			userAgent = creds.UserAgent
		}

		client := reddit.NewClient(userAgent, logger)
		producer := kinesis.NewProducer(awskinesis.NewFromConfig(awsCfg), cfg.StreamName, logger)

		logger.Info("starting producer",
			zap.String("subreddit", cfg.Subreddit),
			zap.String("stream", cfg.StreamName),
			zap.Duration("duration", cfg.ProducerDuration),
		)

		deadline := time.Now().Add(cfg.ProducerDuration)
		sent := 0
		for time.Now().Before(deadline) {
			posts, err := client.New(ctx, cfg.Subreddit, 100)
			if err != nil {
				if ctx.Err() != nil {
					break
				}
				logger.Warn("listing poll failed, retrying next cycle", zap.Error(err))
				continue
			}

			for _, post := range client.Unseen(posts) {
				if err := producer.Put(ctx, post.ToRaw()); err != nil {
					logger.Error("failed to send record to stream",
						zap.String("recordID", post.ID),
						zap.Error(err),
					)
					continue
				}
				sent++
			}

			select {
			case <-ctx.Done():
				logger.Info("producer interrupted", zap.Int("sent", sent))
				return nil
			case <-time.After(cfg.PollInterval):
			}
		}

		logger.Info("producer finished", zap.Int("sent", sent))
		return nil
	},
}
