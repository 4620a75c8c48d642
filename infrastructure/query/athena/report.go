// Package athena materializes the processed-records report: it runs a
// fixed federated SQL query against the table's query-accessible mirror
// and copies the result to a well-known object key.
package athena

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsathena "github.com/aws/aws-sdk-go-v2/service/athena"
	athenatypes "github.com/aws/aws-sdk-go-v2/service/athena/types"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// reportQuery projects every numeric field through a fixed-point decimal
// cast and drops rows where any of them fails to parse.
const reportQuery = `
SELECT
    created_time,
    TRY_CAST(sentiment AS DECIMAL(38,9)) AS sentiment,
    TRY_CAST(upvote_ratio AS DECIMAL(38,9)) AS upvote_ratio,
    thumbnail,
    TRY_CAST(author_activity_count AS DECIMAL(38,9)) AS author_activity_count,
    edited,
    over_18,
    author,
    title,
    subreddit,
    TRY_CAST(score AS DECIMAL(38,9)) AS score,
    TRY_CAST(num_comments AS DECIMAL(38,9)) AS num_comments,
    is_self_post,
    stickied,
    time_of_day,
    post_type,
    id,
    TRY_CAST(post_age_minutes AS DECIMAL(38,9)) AS post_age_minutes,
    TRY_CAST(popularity_score AS DECIMAL(38,9)) AS popularity_score,
    flair_text
FROM "default"."tbl_reddit_processed"
WHERE
    sentiment IS NOT NULL
    AND TRY_CAST(sentiment AS DECIMAL(38,9)) IS NOT NULL
    AND upvote_ratio IS NOT NULL
    AND TRY_CAST(upvote_ratio AS DECIMAL(38,9)) IS NOT NULL
    AND author_activity_count IS NOT NULL
    AND TRY_CAST(author_activity_count AS DECIMAL(38,9)) IS NOT NULL
    AND score IS NOT NULL
    AND TRY_CAST(score AS DECIMAL(38,9)) IS NOT NULL
    AND num_comments IS NOT NULL
    AND TRY_CAST(num_comments AS DECIMAL(38,9)) IS NOT NULL
    AND post_age_minutes IS NOT NULL
    AND TRY_CAST(post_age_minutes AS DECIMAL(38,9)) IS NOT NULL
    AND popularity_score IS NOT NULL
    AND TRY_CAST(popularity_score AS DECIMAL(38,9)) IS NOT NULL
`

const defaultPollInterval = 5 * time.Second

// Runner executes the report query and publishes its result object.
type Runner struct {
	athena       *awsathena.Client
	s3           *awss3.Client
	database     string
	bucket       string
	tempPrefix   string
	finalKey     string
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewRunner creates a report runner. Temporary query results land under
// tempPrefix in the bucket; the finished report is copied to finalKey.
func NewRunner(
	athenaClient *awsathena.Client,
	s3Client *awss3.Client,
	database, bucket, tempPrefix, finalKey string,
	logger *zap.Logger,
) *Runner {
	return &Runner{
		athena:       athenaClient,
		s3:           s3Client,
		database:     database,
		bucket:       bucket,
		tempPrefix:   tempPrefix,
		finalKey:     finalKey,
		pollInterval: defaultPollInterval,
		logger:       logger,
	}
}

// Run starts the query, polls until it reaches a terminal state and, on
// success, copies the result object to the final key and deletes the
// temporary one. Returns the query execution id.
func (r *Runner) Run(ctx context.Context) (string, error) {
	start, err := r.athena.StartQueryExecution(ctx, &awsathena.StartQueryExecutionInput{
		QueryString:        aws.String(reportQuery),
		ClientRequestToken: aws.String(uuid.NewString()),
		QueryExecutionContext: &athenatypes.QueryExecutionContext{
			Database: aws.String(r.database),
		},
		ResultConfiguration: &athenatypes.ResultConfiguration{
			OutputLocation: aws.String(fmt.Sprintf("s3://%s/%s", r.bucket, r.tempPrefix)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("start query execution: %w", err)
	}
	executionID := aws.ToString(start.QueryExecutionId)
	r.logger.Info("started report query", zap.String("executionID", executionID))

	exec, err := r.waitForCompletion(ctx, executionID)
	if err != nil {
		return executionID, err
	}

	resultLocation := aws.ToString(exec.ResultConfiguration.OutputLocation)
	tempKey, err := resultKey(resultLocation, r.bucket)
	if err != nil {
		return executionID, err
	}

	_, err = r.s3.CopyObject(ctx, &awss3.CopyObjectInput{
		Bucket:     aws.String(r.bucket),
		CopySource: aws.String(r.bucket + "/" + tempKey),
		Key:        aws.String(r.finalKey),
	})
	if err != nil {
		return executionID, fmt.Errorf("copy report to final location: %w", err)
	}

	// Temp cleanup is best-effort; the next run overwrites anyway
	if _, err := r.s3.DeleteObject(ctx, &awss3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(tempKey),
	}); err != nil {
		r.logger.Warn("failed to delete temporary result object",
			zap.String("key", tempKey),
			zap.Error(err),
		)
	}

	r.logger.Info("report copied to final location",
		zap.String("bucket", r.bucket),
		zap.String("key", r.finalKey),
	)
	return executionID, nil
}

// waitForCompletion polls the execution until it leaves RUNNING/QUEUED.
func (r *Runner) waitForCompletion(ctx context.Context, executionID string) (*athenatypes.QueryExecution, error) {
	for {
		out, err := r.athena.GetQueryExecution(ctx, &awsathena.GetQueryExecutionInput{
			QueryExecutionId: aws.String(executionID),
		})
		if err != nil {
			return nil, fmt.Errorf("get query execution: %w", err)
		}

		state := out.QueryExecution.Status.State
		switch state {
		case athenatypes.QueryExecutionStateSucceeded:
			return out.QueryExecution, nil
		case athenatypes.QueryExecutionStateFailed, athenatypes.QueryExecutionStateCancelled:
			reason := aws.ToString(out.QueryExecution.Status.StateChangeReason)
			return nil, fmt.Errorf("query execution %s: %s", strings.ToLower(string(state)), reason)
		}

		r.logger.Debug("report query still running",
			zap.String("executionID", executionID),
			zap.String("state", string(state)),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.pollInterval):
		}
	}
}

// resultKey extracts the object key from an s3://bucket/key output location.
func resultKey(outputLocation, bucket string) (string, error) {
	prefix := fmt.Sprintf("s3://%s/", bucket)
	if !strings.HasPrefix(outputLocation, prefix) {
		return "", fmt.Errorf("result location %q is not in bucket %q", outputLocation, bucket)
	}
	key := strings.TrimPrefix(outputLocation, prefix)
	if key == "" {
		return "", fmt.Errorf("result location %q has no object key", outputLocation)
	}
	return key, nil
}
