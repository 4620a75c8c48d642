package cli

import (
	awsathena "github.com/aws/aws-sdk-go-v2/service/athena"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"redstream/infrastructure/query/athena"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the Athena report query and publish the result CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		cfg, logger, awsCfg, err := setup(ctx)
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		runner := athena.NewRunner(
			awsathena.NewFromConfig(awsCfg),
			awss3.NewFromConfig(awsCfg),
			cfg.AthenaDatabase,
			cfg.ReportBucket,
			cfg.ReportTempDir,
			cfg.ReportKey,
			logger,
		)

		executionID, err := runner.Run(ctx)
		if err != nil {
			return err
		}

		logger.Info("report complete",
			zap.String("executionID", executionID),
			zap.String("bucket", cfg.ReportBucket),
			zap.String("key", cfg.ReportKey),
		)
		return nil
	},
}
