// Package analytics implements the batch-local statistical anomaly scan.
package analytics

import (
	"math"

	"redstream/domain/record"
)

// Tracked metric names, matching the attribute names of the stored record.
const (
	MetricScore       = "score"
	MetricNumComments = "num_comments"
	MetricPopularity  = "popularity_score"
)

// DefaultThreshold is the standardized-score cutoff above which a record is
// flagged as an outlier.
const DefaultThreshold = 3.0

// Report maps a metric name to the ids of records flagged under it. A
// record may appear under several metrics independently.
type Report map[string][]string

// Total returns the number of flags across all metrics.
func (r Report) Total() int {
	total := 0
	for _, ids := range r {
		total += len(ids)
	}
	return total
}

// Empty reports whether no record was flagged under any metric.
func (r Report) Empty() bool {
	return r.Total() == 0
}

// Detector flags statistical outliers within one micro-batch.
//
// The scan is stateless: means, deviations and flags are computed per call
// and never carried across batches. Detection is observational only and
// never gates what happens to a record elsewhere in the pipeline.
type Detector struct {
	threshold float64
}

// NewDetector creates a detector with the given z-score threshold; a
// non-positive threshold falls back to DefaultThreshold.
func NewDetector(threshold float64) *Detector {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Detector{threshold: threshold}
}

// Detect computes per-metric standardized scores across the batch and
// returns the ids whose absolute z-score exceeds the threshold. Metrics
// with fewer than two records or zero deviation produce no flags.
func (d *Detector) Detect(batch []record.Canonical) Report {
	report := make(Report)
	if len(batch) < 2 {
		return report
	}

	ids := make([]string, len(batch))
	for i := range batch {
		ids[i] = batch[i].ID
	}

	metrics := map[string]func(*record.Canonical) float64{
		MetricScore:       func(r *record.Canonical) float64 { return float64(r.Score) },
		MetricNumComments: func(r *record.Canonical) float64 { return float64(r.NumComments) },
		MetricPopularity:  func(r *record.Canonical) float64 { return r.PopularityScore },
	}

	values := make([]float64, len(batch))
	for name, extract := range metrics {
		for i := range batch {
			values[i] = extract(&batch[i])
		}
		if flagged := d.flagOutliers(ids, values); len(flagged) > 0 {
			report[name] = flagged
		}
	}
	return report
}

// flagOutliers returns the ids whose value deviates from the batch mean by
// more than threshold sample standard deviations.
func (d *Detector) flagOutliers(ids []string, values []float64) []string {
	n := len(values)

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range values {
		diff := v - mean
		sq += diff * diff
	}
	// Sample standard deviation, matching the statistical-library default
	std := math.Sqrt(sq / float64(n-1))
	if std == 0 {
		return nil
	}

	var flagged []string
	for i, v := range values {
		if math.Abs(v-mean)/std > d.threshold {
			flagged = append(flagged, ids[i])
		}
	}
	return flagged
}
