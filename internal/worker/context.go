// Package worker implements the consumer side of the pipeline: per-worker
// mutable state (Context, spec C3) and the batch-processing loop that
// applies the per-read pipeline to every record in a dequeued batch
// (spec §4.4/C5).
//
// Grounded on the teacher's internal/worker: the same "pool of goroutines
// pulling from a shared channel, reporting through a context" shape, with
// Task/Result (opaque simulated payloads) replaced by Batch/per-worker
// aggregates and the simulated execute() replaced by the real filter/trim/
// search pipeline.
package worker

import (
	"bytes"

	"github.com/wyang-bio/seq2fun-core/internal/dup"
	"github.com/wyang-bio/seq2fun-core/internal/filter"
	"github.com/wyang-bio/seq2fun-core/internal/search"
	"github.com/wyang-bio/seq2fun-core/internal/stats"
)

// Context is a single worker's local, single-goroutine-owned state: stats
// accumulators, filter counters, search state, and the three pending output
// buffers for the current batch.
type Context struct {
	ID int

	PreStats  stats.Stats
	PostStats stats.Stats
	Filter    *filter.Result
	Dup       *dup.Estimator
	Search    *search.Context

	primaryBuf bytes.Buffer
	failedBuf  bytes.Buffer
	koBuf      bytes.Buffer
}

// NewContext creates a worker-local context. idx is the shared, read-only
// search index; dupEstimator is nil when duplication profiling is disabled.
func NewContext(id int, idx *search.Index, dupEstimator *dup.Estimator) *Context {
	return &Context{
		ID:     id,
		Filter: filter.NewResult(),
		Dup:    dupEstimator,
		Search: search.NewContext(idx),
	}
}

// resetBuffers clears the per-batch output buffers after they've been
// handed off to the writer sinks.
func (c *Context) resetBuffers() {
	c.primaryBuf.Reset()
	c.failedBuf.Reset()
	c.koBuf.Reset()
}
