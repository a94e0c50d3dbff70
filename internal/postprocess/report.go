// Package postprocess implements the post-aggregation phase (spec §4.6/C7):
// writing the abundance file, optionally launching the asynchronous
// rarefaction computation, and publishing a JSON run-report snapshot.
//
// The report writer's atomic temp-file-then-rename discipline is grounded
// on the teacher's internal/snapshot.Manager.Write: marshal to a sibling
// temp file, then os.Rename into place so a reader never observes a
// partially-written file. JSON encoding goes through
// github.com/segmentio/encoding/json rather than the standard library,
// matching how the pack's miku-parallel repo serializes its own
// higher-cardinality run snapshots.
package postprocess

import (
	"fmt"
	"os"
	"path/filepath"

	segjson "github.com/segmentio/encoding/json"

	"github.com/wyang-bio/seq2fun-core/internal/dup"
	"github.com/wyang-bio/seq2fun-core/internal/filter"
	"github.com/wyang-bio/seq2fun-core/internal/runstate"
	"github.com/wyang-bio/seq2fun-core/internal/stats"
)

// Report is the canonical aggregate snapshot this repo owns; presentation
// JSON/HTML reports remain an external serializer's job (spec §6) and
// would consume this structure.
type Report struct {
	TotalRawReads     int64                            `json:"total_raw_reads"`
	TotalMappedReads  int64                             `json:"total_mapped_reads"`
	DistinctOrthologs int                               `json:"distinct_orthologs"`
	MappingRate       float64                           `json:"mapping_rate"`
	StartTime         string                            `json:"start_time"`
	EndTime           string                            `json:"end_time"`
	Rarefaction       []runstate.RarefactionPoint        `json:"rarefaction,omitempty"`
	Samples           map[string]*runstate.SampleResult `json:"samples,omitempty"`
	FilterCounts      map[string]int64                  `json:"filter_counts"`
	TrimmedReads      int64                             `json:"trimmed_reads"`
	PreTrimMeanQual   float64                           `json:"pre_trim_mean_quality"`
	PostTrimMeanQual  float64                           `json:"post_trim_mean_quality"`
	DuplicationRate   float64                            `json:"duplication_rate"`
}

// BuildReport assembles a Report from a finished RunState and the merged
// per-run accumulators.
func BuildReport(rs *runstate.RunState, f *filter.Result, pre, post *stats.Stats, dupEst *dup.Estimator) *Report {
	r := &Report{
		TotalRawReads:     rs.TotalRawReads,
		TotalMappedReads:  rs.TotalMappedReads,
		DistinctOrthologs: rs.DistinctOrthologs,
		MappingRate:       rs.MappingRate(),
		StartTime:         rs.StartTime.Format(timeLayout),
		EndTime:           rs.EndTime.Format(timeLayout),
		Rarefaction:       rs.Rarefaction,
		Samples:           rs.Samples,
		FilterCounts:      make(map[string]int64, 8),
		PreTrimMeanQual:   pre.MeanQuality(),
		PostTrimMeanQual:  post.MeanQuality(),
	}
	if f != nil {
		for _, v := range []filter.Verdict{filter.Pass, filter.FailLowQuality, filter.FailTooShort, filter.FailTooLong, filter.FailNRate} {
			r.FilterCounts[string(v)] = f.Count(v)
		}
		r.TrimmedReads = f.Trimmed()
	}
	if dupEst != nil {
		r.DuplicationRate = dupEst.Rate()
	}
	return r
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// WriteReport marshals report and writes it to path atomically: encode to
// a sibling temp file in the same directory, then os.Rename into place.
func WriteReport(path string, report *Report) error {
	data, err := segjson.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp report file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp report file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp report file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp report file into place: %w", err)
	}
	return nil
}
