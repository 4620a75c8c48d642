// Package s3 exports bounded post batches as CSV objects.
package s3

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// PostRow is the CSV projection of one post.
type PostRow struct {
	Title    string
	Score    int
	URL      string
	Comments int
}

var csvHeader = []string{"title", "score", "url", "comments"}

// BuildCSV renders up to limit rows as CSV with a header line. A
// non-positive limit keeps every row.
func BuildCSV(rows []PostRow, limit int) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for i, row := range rows {
		if limit > 0 && i >= limit {
			break
		}
		err := w.Write([]string{
			row.Title,
			strconv.Itoa(row.Score),
			row.URL,
			strconv.Itoa(row.Comments),
		})
		if err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// Exporter uploads CSV batches to an object-store bucket.
type Exporter struct {
	client *s3.Client
	bucket string
	logger *zap.Logger
}

// NewExporter creates a new Exporter
func NewExporter(client *s3.Client, bucket string, logger *zap.Logger) *Exporter {
	return &Exporter{
		client: client,
		bucket: bucket,
		logger: logger,
	}
}

// Export writes the rows as a timestamped CSV object and returns its key.
func (e *Exporter) Export(ctx context.Context, rows []PostRow, limit int) (string, error) {
	body, err := BuildCSV(rows, limit)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("reddit_batch_%s.csv", time.Now().UTC().Format("2006-01-02_15-04-05"))
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("upload export to s3: %w", err)
	}

	e.logger.Info("uploaded batch export",
		zap.String("bucket", e.bucket),
		zap.String("key", key),
		zap.Int("bytes", len(body)),
	)
	return key, nil
}
