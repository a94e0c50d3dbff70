// Package runstate holds the process-wide RunState record (spec §3):
// created before the pipeline starts, written monotonically by the main
// goroutine at well-defined phase boundaries (never concurrently with a
// worker), and read by the post-processor's report serializer after the
// pipeline has ended.
package runstate

import "time"

// RarefactionPoint is one (subsample size, distinct ortholog count) sample
// on the rarefaction curve.
type RarefactionPoint struct {
	ReadCount         int64 `json:"read_count"`
	DistinctOrthologs int   `json:"distinct_orthologs"`
}

// SampleResult is the per-sample summary the post-processor files under
// RunState.Samples once it finishes a sample's run.
type SampleResult struct {
	TotalRawReads    int64         `json:"total_raw_reads"`
	TotalMappedReads int64         `json:"total_mapped_reads"`
	MappingRate      float64       `json:"mapping_rate"`
	Duration         time.Duration `json:"duration_ns"`
}

// RunState is the single process-wide record of a pipeline run's
// high-level outcome. Every field is set by the main goroutine only, never
// concurrently with worker execution, so it carries no internal lock.
type RunState struct {
	TotalRawReads     int64
	TotalMappedReads  int64
	DistinctOrthologs int

	StartTime time.Time
	EndTime   time.Time

	Rarefaction []RarefactionPoint

	Samples map[string]*SampleResult
}

// New creates a RunState stamped with the given start time (callers pass
// it in rather than calling time.Now() so the value is reproducible in
// tests).
func New(start time.Time) *RunState {
	return &RunState{StartTime: start, Samples: make(map[string]*SampleResult)}
}

// MappingRate returns TotalMappedReads/TotalRawReads, or 0 if no reads were
// observed.
func (rs *RunState) MappingRate() float64 {
	if rs.TotalRawReads == 0 {
		return 0
	}
	return float64(rs.TotalMappedReads) / float64(rs.TotalRawReads)
}

// RecordSample stores a completed sample's summary under id.
func (rs *RunState) RecordSample(id string, result *SampleResult) {
	rs.Samples[id] = result
}
