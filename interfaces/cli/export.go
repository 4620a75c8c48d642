package cli

import (
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	awssecrets "github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"redstream/infrastructure/reddit"
	"redstream/infrastructure/secrets"
	"redstream/infrastructure/storage/s3"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a bounded batch of hot posts to S3 as CSV",
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
		posts, err := client.Hot(ctx, cfg.Subreddit, 100)
		if err != nil {
			return err
		}

		rows := make([]s3.PostRow, 0, len(posts))
		for _, post := range posts {
			rows = append(rows, s3.PostRow{
				Title:    post.Title,
				Score:    post.Score,
				URL:      post.URL,
				Comments: post.NumComments,
			})
		}

		exporter := s3.NewExporter(awss3.NewFromConfig(awsCfg), cfg.ExportBucket, logger)
		key, err := exporter.Export(ctx, rows, cfg.ExportLimit)
		if err != nil {
			return err
		}

		logger.Info("export complete",
			zap.String("subreddit", cfg.Subreddit),
			zap.Int("fetched", len(posts)),
			zap.String("key", key),
		)
		return nil
	},
}
