// Package cli wires the redstream subcommands: produce, consume, export,
// report and scan.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"redstream/infrastructure/config"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "redstream",
	Short: "Reddit streaming analytics pipeline",
	Long: `Redstream pulls reddit posts, streams them through Kinesis, enriches
and normalizes each record, persists the result to DynamoDB, exports
bounded batches to S3 and materializes an Athena report.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional, REDSTREAM_* env vars take precedence)")

	rootCmd.AddCommand(consumeCmd)
	rootCmd.AddCommand(produceCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(scanCmd)
}

// signalContext returns a context canceled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// setup loads configuration, a logger and the AWS SDK configuration shared
// by every subcommand.
func setup(ctx context.Context) (*config.Config, *zap.Logger, aws.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, aws.Config{}, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, aws.Config{}, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, nil, aws.Config{}, err
	}

	return cfg, logger, awsCfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
