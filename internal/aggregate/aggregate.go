// Package aggregate combines the per-worker accumulators (spec §4.5/C6)
// into a single GlobalResult once every worker goroutine has joined. Each
// merge is a plain integer-keyed summation or struct-field fold — no
// string interning, no contention — because every worker-local structure
// (search.Context's PartialHitMap, filter.Result, stats.Stats,
// dup.Estimator) was designed to reduce this way.
//
// Grounded on the teacher's controller result-collection step, which folds
// per-job Result values returned over resultCh into aggregate counters
// after the dispatch loop drains; here the fold runs once, synchronously,
// after worker.Run has returned for every worker instead of incrementally
// per message, since there is no long-lived controller goroutine in this
// pipeline.
package aggregate

import (
	"github.com/wyang-bio/seq2fun-core/internal/dict"
	"github.com/wyang-bio/seq2fun-core/internal/dup"
	"github.com/wyang-bio/seq2fun-core/internal/filter"
	"github.com/wyang-bio/seq2fun-core/internal/stats"
	"github.com/wyang-bio/seq2fun-core/internal/worker"
)

// GlobalResult is the fully-merged outcome of a pipeline run.
type GlobalResult struct {
	HitCounts map[dict.OrthologRef]uint32

	TotalMappedReads  int64
	DistinctOrthologs int

	PreStats  stats.Stats
	PostStats stats.Stats
	Filter    *filter.Result
	Dup       *dup.Estimator
}

// Merge folds a slice of per-worker contexts into one GlobalResult. Workers
// whose goroutine never ran (nil entries, e.g. a worker pool sized larger
// than the batches actually produced) are skipped.
func Merge(contexts []*worker.Context) *GlobalResult {
	g := &GlobalResult{
		HitCounts: make(map[dict.OrthologRef]uint32),
		Filter:    filter.NewResult(),
	}

	for _, wctx := range contexts {
		if wctx == nil {
			continue
		}
		g.PreStats.Merge(&wctx.PreStats)
		g.PostStats.Merge(&wctx.PostStats)
		g.Filter.Merge(wctx.Filter)
		if wctx.Dup != nil {
			if g.Dup == nil {
				g.Dup = dup.NewEstimator(0)
			}
			g.Dup.Merge(wctx.Dup)
		}
		for ref, count := range wctx.Search.PartialHitMap() {
			g.HitCounts[ref] += count
			g.TotalMappedReads += int64(count)
		}
	}

	g.DistinctOrthologs = len(g.HitCounts)
	return g
}
