// Package ports defines the boundary interfaces between the pipeline and
// the managed services it delegates to.
package ports

import (
	"context"

	"redstream/domain/record"
)

// RecordSource yields one micro-batch of raw record payloads per poll.
// An empty batch is a normal outcome; an error means the transport itself
// is unavailable and the pipeline should stop.
type RecordSource interface {
	Next(ctx context.Context) ([][]byte, error)
}

// RecordSink upserts one canonical record at a time, keyed by record id.
// Writes are best-effort: callers log failures and keep going, there is no
// retry and no rollback.
type RecordSink interface {
	Put(ctx context.Context, rec *record.Canonical) error
}

// CycleStats summarizes one retrieval cycle.
type CycleStats struct {
	Processed    int
	Skipped      int
	SinkFailures int
	Anomalies    int
}

// MetricsPublisher publishes per-cycle counters to a metrics backend.
// Publishing is best-effort and must never stall the pipeline.
type MetricsPublisher interface {
	Publish(ctx context.Context, stats CycleStats) error
}
