// Package importer drives the batch import: feed → validate → resolve →
// upsert → images, with a persistent job record per run.
package importer

import "time"

// Statistics accumulates counters for one import run. It is owned by the
// orchestrator; counters are only touched after a listing's full
// pipeline has settled, so final counts are deterministic regardless of
// intra-batch interleaving.
type Statistics struct {
	TotalProcessed int `json:"total_processed"`
	Created        int `json:"created"`
	Updated        int `json:"updated"`
	Skipped        int `json:"skipped"`
	Failed         int `json:"failed"`

	LuxuryWithImages    int `json:"luxury_with_images"`
	LuxuryWithoutImages int `json:"luxury_without_images"`

	ImagesProcessed int `json:"images_processed"`
	ImagesSkipped   int `json:"images_skipped"`
	ImagesFailed    int `json:"images_failed"`

	SuccessRate       float64 `json:"success_rate"`
	FailureRate       float64 `json:"failure_rate"`
	SkipRate          float64 `json:"skip_rate"`
	ListingsPerSecond float64 `json:"listings_per_second"`
	MillisPerListing  float64 `json:"millis_per_listing"`
	DurationMillis    int64   `json:"duration_millis"`
}

// finalize computes the derived rates from the raw counters.
func (s *Statistics) finalize(elapsed time.Duration) {
	s.DurationMillis = elapsed.Milliseconds()

	if s.TotalProcessed > 0 {
		total := float64(s.TotalProcessed)
		s.SuccessRate = float64(s.Created+s.Updated) / total * 100
		s.FailureRate = float64(s.Failed) / total * 100
		s.SkipRate = float64(s.Skipped) / total * 100
		s.MillisPerListing = float64(s.DurationMillis) / total
	}
	if secs := elapsed.Seconds(); secs > 0 {
		s.ListingsPerSecond = float64(s.TotalProcessed) / secs
	}
}
