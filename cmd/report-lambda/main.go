// Lambda entrypoint for the scheduled Athena report.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsathena "github.com/aws/aws-sdk-go-v2/service/athena"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"redstream/infrastructure/config"
	"redstream/infrastructure/query/athena"
)

type response struct {
	StatusCode       int    `json:"statusCode"`
	Message          string `json:"message"`
	QueryExecutionID string `json:"query_execution_id,omitempty"`
}

type handler struct {
	runner *athena.Runner
	logger *zap.Logger
}

func (h *handler) handle(ctx context.Context) (response, error) {
	executionID, err := h.runner.Run(ctx)
	if err != nil {
		h.logger.Error("report query failed", zap.Error(err))
		return response{
			StatusCode:       500,
			Message:          err.Error(),
			QueryExecutionID: executionID,
		}, err
	}

	return response{
		StatusCode:       200,
		Message:          "query result saved",
		QueryExecutionID: executionID,
	}, nil
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Fatal("Failed to load AWS configuration", zap.Error(err))
	}

	h := &handler{
		runner: athena.NewRunner(
			awsathena.NewFromConfig(awsCfg),
			awss3.NewFromConfig(awsCfg),
			cfg.AthenaDatabase,
			cfg.ReportBucket,
			cfg.ReportTempDir,
			cfg.ReportKey,
			logger,
		),
		logger: logger,
	}

	lambda.Start(h.handle)
}
