// Package dynamodb persists canonical records to the processed-records
// table.
package dynamodb

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"redstream/domain/record"
	pkgerrors "redstream/pkg/errors"
)

// recordItem is the DynamoDB item shape for a processed record. Numeric
// fields use the fixed-point Number type; attribute names match what the
// report query selects.
type recordItem struct {
	ID                  string   `dynamodbav:"id"`
	Author              string   `dynamodbav:"author"`
	Title               string   `dynamodbav:"title"`
	Subreddit           string   `dynamodbav:"subreddit"`
	CreatedTime         string   `dynamodbav:"created_time"`
	Score               Number   `dynamodbav:"score"`
	NumComments         Number   `dynamodbav:"num_comments"`
	UpvoteRatio         Number   `dynamodbav:"upvote_ratio"`
	FlairText           string   `dynamodbav:"flair_text,omitempty"`
	Thumbnail           string   `dynamodbav:"thumbnail,omitempty"`
	Over18              bool     `dynamodbav:"over_18"`
	Stickied            bool     `dynamodbav:"stickied"`
	Edited              bool     `dynamodbav:"edited"`
	IsSelfPost          bool     `dynamodbav:"is_self_post"`
	TitleTokens         []string `dynamodbav:"title_tokens"`
	Sentiment           Number   `dynamodbav:"sentiment"`
	PostAgeMinutes      Number   `dynamodbav:"post_age_minutes"`
	PopularityScore     Number   `dynamodbav:"popularity_score"`
	PostType            string   `dynamodbav:"post_type"`
	TimeOfDay           string   `dynamodbav:"time_of_day"`
	AuthorActivityCount int      `dynamodbav:"author_activity_count"`
}

func newRecordItem(rec *record.Canonical) recordItem {
	return recordItem{
		ID:                  rec.ID,
		Author:              rec.Author,
		Title:               rec.Title,
		Subreddit:           rec.Subreddit,
		CreatedTime:         rec.CreatedTime,
		Score:               NewNumber(float64(rec.Score)),
		NumComments:         NewNumber(float64(rec.NumComments)),
		UpvoteRatio:         NewNumber(rec.UpvoteRatio),
		FlairText:           rec.FlairText,
		Thumbnail:           rec.Thumbnail,
		Over18:              rec.Over18,
		Stickied:            rec.Stickied,
		Edited:              rec.Edited,
		IsSelfPost:          rec.IsSelfPost,
		TitleTokens:         rec.TitleTokens,
		Sentiment:           NewNumber(rec.Sentiment),
		PostAgeMinutes:      NewNumber(rec.PostAgeMinutes),
		PopularityScore:     NewNumber(rec.PopularityScore),
		PostType:            rec.PostType,
		TimeOfDay:           rec.TimeOfDay,
		AuthorActivityCount: rec.AuthorActivityCount,
	}
}

func (it recordItem) toCanonical() record.Canonical {
	return record.Canonical{
		Raw: record.Raw{
			ID:          it.ID,
			Author:      it.Author,
			Title:       it.Title,
			Subreddit:   it.Subreddit,
			CreatedTime: it.CreatedTime,
			Score:       int(it.Score.IntPart()),
			NumComments: int(it.NumComments.IntPart()),
			UpvoteRatio: it.UpvoteRatio.Float64(),
			FlairText:   it.FlairText,
			Thumbnail:   it.Thumbnail,
			Over18:      it.Over18,
			Stickied:    it.Stickied,
			Edited:      it.Edited,
			IsSelfPost:  it.IsSelfPost,
		},
		TitleTokens:         it.TitleTokens,
		Sentiment:           it.Sentiment.Float64(),
		PostAgeMinutes:      it.PostAgeMinutes.Float64(),
		PopularityScore:     it.PopularityScore.Float64(),
		PostType:            it.PostType,
		TimeOfDay:           it.TimeOfDay,
		AuthorActivityCount: it.AuthorActivityCount,
	}
}

// RecordRepository stores processed records in DynamoDB, keyed by id.
type RecordRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewRecordRepository creates a new RecordRepository
func NewRecordRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) *RecordRepository {
	return &RecordRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Put upserts one canonical record. Failures are reported as record-scoped
// SinkWrite errors; callers are expected to log and move on.
func (r *RecordRepository) Put(ctx context.Context, rec *record.Canonical) error {
	av, err := attributevalue.MarshalMap(newRecordItem(rec))
	if err != nil {
		return pkgerrors.NewSinkWriteError(rec.ID, err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("failed to save record to DynamoDB",
			zap.Error(err),
			zap.String("recordID", rec.ID),
			zap.String("awsErrorCode", apiErrorCode(err)),
		)
		return pkgerrors.NewSinkWriteError(rec.ID, err)
	}

	r.logger.Debug("saved record to DynamoDB", zap.String("recordID", rec.ID))
	return nil
}

// ScanHighScore returns every stored record whose score is at least
// minScore, paging through the full table.
func (r *RecordRepository) ScanHighScore(ctx context.Context, minScore float64) ([]record.Canonical, error) {
	cond := expression.Name("score").GreaterThanEqual(expression.Value(NewNumber(minScore)))
	expr, err := expression.NewBuilder().WithFilter(cond).Build()
	if err != nil {
		return nil, pkgerrors.NewInternalError("build scan expression", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var results []record.Canonical
	for {
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, pkgerrors.NewUpstreamError("scan processed records", err)
		}

		var items []recordItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, pkgerrors.NewInternalError("unmarshal scanned records", err)
		}
		for _, it := range items {
			results = append(results, it.toCanonical())
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	return results, nil
}

// apiErrorCode extracts the AWS API error code, if any, for logging.
func apiErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
