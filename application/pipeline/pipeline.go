// Package pipeline wires the consume loop: poll the transport, normalize
// each record, forward it to the durable sink, then scan the batch for
// statistical outliers.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"redstream/application/ports"
	"redstream/domain/analytics"
	"redstream/domain/record"
	pkgerrors "redstream/pkg/errors"
)

// Pipeline runs the sequential pull-process-store-analyze loop.
//
// Processing is single-threaded: records within a cycle are handled in
// order, and the only shared mutable state is the activity table inside
// the normalizer.
type Pipeline struct {
	source     ports.RecordSource
	sink       ports.RecordSink
	normalizer *record.Normalizer
	detector   *analytics.Detector
	metrics    ports.MetricsPublisher
	limiter    *rate.Limiter
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithMetrics attaches a per-cycle metrics publisher.
func WithMetrics(m ports.MetricsPublisher) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithPollRate overrides the default one-poll-per-second throttle.
func WithPollRate(limit rate.Limit) Option {
	return func(p *Pipeline) { p.limiter = rate.NewLimiter(limit, 1) }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline over the given source and sink.
func New(
	source ports.RecordSource,
	sink ports.RecordSink,
	normalizer *record.Normalizer,
	detector *analytics.Detector,
	logger *zap.Logger,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		source:     source,
		sink:       sink,
		normalizer: normalizer,
		detector:   detector,
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls the source until the time budget elapses or the context is
// canceled. The budget is checked once per cycle, so in-flight work always
// completes. A non-positive budget means run until canceled.
//
// Record-scoped failures (bad payloads, malformed timestamps, sink write
// failures) are logged and skipped; transport failures stop the loop.
func (p *Pipeline) Run(ctx context.Context, budget time.Duration) error {
	deadline := p.now().Add(budget)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if budget > 0 && !p.now().Before(deadline) {
			p.logger.Info("processing time budget reached, exiting",
				zap.Duration("budget", budget),
			)
			return nil
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return err
		}

		payloads, err := p.source.Next(ctx)
		if err != nil {
			if pkgerrors.GetPipelineError(err) != nil {
				return err
			}
			return pkgerrors.NewUpstreamError("read records", err)
		}
		if len(payloads) == 0 {
			continue
		}

		batch, stats := p.processBatch(ctx, payloads)

		report := p.detector.Detect(batch)
		for metric, ids := range report {
			p.logger.Warn("anomalies detected",
				zap.String("metric", metric),
				zap.Strings("recordIDs", ids),
			)
		}
		stats.Anomalies = report.Total()

		p.logger.Info("cycle complete",
			zap.Int("processed", stats.Processed),
			zap.Int("skipped", stats.Skipped),
			zap.Int("sinkFailures", stats.SinkFailures),
			zap.Int("anomalies", stats.Anomalies),
		)

		if p.metrics != nil {
			if err := p.metrics.Publish(ctx, stats); err != nil {
				p.logger.Warn("failed to publish cycle metrics", zap.Error(err))
			}
		}
	}
}

// processBatch normalizes and forwards each payload in order. A record
// that fails to decode or normalize is skipped; a record that fails to
// reach the sink is still part of the returned batch so the anomaly scan
// sees everything that was processed.
func (p *Pipeline) processBatch(ctx context.Context, payloads [][]byte) ([]record.Canonical, ports.CycleStats) {
	batch := make([]record.Canonical, 0, len(payloads))
	var stats ports.CycleStats

	for _, payload := range payloads {
		var raw record.Raw
		if err := json.Unmarshal(payload, &raw); err != nil {
			p.logger.Warn("skipping undecodable payload", zap.Error(err))
			stats.Skipped++
			continue
		}

		rec, err := p.normalizer.Normalize(raw, p.now())
		if err != nil {
			p.logger.Warn("skipping record",
				zap.String("recordID", raw.ID),
				zap.Error(err),
			)
			stats.Skipped++
			continue
		}

		if err := p.sink.Put(ctx, rec); err != nil {
			p.logger.Error("sink write failed, continuing",
				zap.String("recordID", rec.ID),
				zap.Error(err),
			)
			stats.SinkFailures++
		}

		p.logger.Debug("processed record",
			zap.String("recordID", rec.ID),
			zap.String("author", rec.Author),
			zap.Float64("popularityScore", rec.PopularityScore),
			zap.Int("authorActivityCount", rec.AuthorActivityCount),
		)

		batch = append(batch, *rec)
		stats.Processed++
	}

	return batch, stats
}
