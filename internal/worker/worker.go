package worker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wyang-bio/seq2fun-core/internal/config"
	"github.com/wyang-bio/seq2fun-core/internal/dict"
	"github.com/wyang-bio/seq2fun-core/internal/filter"
	"github.com/wyang-bio/seq2fun-core/internal/metrics"
	"github.com/wyang-bio/seq2fun-core/internal/mgi"
	"github.com/wyang-bio/seq2fun-core/internal/queue"
	"github.com/wyang-bio/seq2fun-core/internal/sink"
	"github.com/wyang-bio/seq2fun-core/internal/trim"
	"github.com/wyang-bio/seq2fun-core/internal/umi"
	"github.com/wyang-bio/seq2fun-core/pkg/seqio"
)

// KOMapTagPrefix is the tag prefix written to both the primary output and
// the reads->KO map file for a mapped read.
const KOMapTagPrefix = "s2f_"

// Sinks bundles the (up to three) shared writer sinks a non-split worker
// submits to. Any of them may be nil, meaning that output stream is
// disabled.
type Sinks struct {
	Primary *sink.WriterSink
	Failed  *sink.WriterSink
	KOMap   *sink.WriterSink
}

// MarkAllInputCompleted signals completion on every configured sink.
func (s Sinks) MarkAllInputCompleted() {
	for _, snk := range []*sink.WriterSink{s.Primary, s.Failed, s.KOMap} {
		if snk != nil {
			snk.MarkInputCompleted()
		}
	}
}

// Run is a single worker's main loop (spec §4.4): dequeue batches until the
// queue reports produce-finished-and-empty, process each one, and submit
// the accumulated output buffers to the shared sinks. When the last worker
// observes the finished signal it propagates MarkInputCompleted to every
// sink.
//
// outputMu serializes multi-buffer submission across workers in non-split
// mode so a single worker's three buffers land contiguously in their
// respective files (spec's "atomic group submission" invariant).
// splitWriter, if non-nil, bypasses the shared Sinks.Primary entirely and
// writes this worker's primary output straight to its own file.
func Run(
	id int,
	q *queue.BatchQueue,
	cfg *config.Config,
	d *dict.Dictionary,
	wctx *Context,
	sinks Sinks,
	outputMu *sync.Mutex,
	finished *int32,
	totalWorkers int32,
	fastaAdapters [][]byte,
	splitWriter *sink.WriterSink,
	collector *metrics.Collector,
) {
	for {
		batch, ok := q.TryDequeue()
		if !ok {
			break
		}
		if collector != nil {
			collector.SetQueueDepth(q.Residency())
		}
		start := time.Now()
		processBatch(batch, cfg, d, wctx, fastaAdapters, collector)
		if collector != nil {
			collector.ObserveBatchLatency(time.Since(start).Seconds())
		}
		submitBatch(wctx, sinks, outputMu, splitWriter, collector)
	}

	if atomic.AddInt32(finished, 1) == totalWorkers {
		sinks.MarkAllInputCompleted()
		if splitWriter != nil {
			splitWriter.MarkInputCompleted()
		}
	}
}

func processBatch(batch *queue.Batch, cfg *config.Config, d *dict.Dictionary, wctx *Context, fastaAdapters [][]byte, collector *metrics.Collector) {
	for i := 0; i < batch.Count; i++ {
		processRecord(batch.Records[i], cfg, d, wctx, fastaAdapters, collector)
	}
}

// processRecord runs the full per-read pipeline of spec §4.4 steps 1-11.
func processRecord(r0 *seqio.Record, cfg *config.Config, d *dict.Dictionary, wctx *Context, fastaAdapters [][]byte, collector *metrics.Collector) {
	// 1. pre-trim stats
	wctx.PreStats.Update(r0)

	// 2. duplication profiling
	if cfg.Duplicate.Enabled && wctx.Dup != nil {
		wctx.Dup.Add(r0)
	}

	// 3. index filter
	if cfg.IndexFilter.Enabled && indexHitsFilter(r0, cfg.IndexFilter.Indices) {
		return
	}

	// 4. MGI fix
	if cfg.FixMGI {
		mgi.Fix(r0)
	}

	// 5. UMI extraction
	if cfg.UMI.Enabled {
		umi.Extract(r0, cfg.UMI.Length)
	}

	// 6. fixed-length trim + sliding window quality trim
	r1 := trim.FrontTail(r0, cfg.Trim.Front1, cfg.Trim.Tail1)
	if r1 != nil {
		r1 = trim.SlidingWindow(r1, cfg.Trim.WindowSize, cfg.Trim.MeanQualityCutoff)
	}

	// 7. polyG / adapter / polyX / max-length
	if r1 != nil {
		if cfg.PolyGTrim.Enabled {
			trim.TrimPolyG(r1, cfg.PolyGTrim.MinLen)
		}
		if cfg.Adapter.Enabled {
			trimmed := false
			if cfg.Adapter.HasSeqR1 {
				trimmed = trim.TrimAdapterSequence(r1, []byte(cfg.Adapter.Sequence)) || trimmed
			}
			if cfg.Adapter.HasFasta {
				trimmed = trim.TrimAdapterFasta(r1, fastaAdapters) || trimmed
			}
			if cfg.Adapter.PolyA {
				trimmed = trim.TrimPolyA(r1, cfg.PolyGTrim.MinLen) || trimmed
			}
			if trimmed {
				wctx.Filter.RecordTrimmed()
			}
		}
		if cfg.PolyXTrim.Enabled {
			trim.TrimPolyX(r1, cfg.PolyXTrim.MinLen)
		}
		trim.ClipMaxLength(r1, cfg.Trim.MaxLen1)
	}

	// 8. classify
	verdict := filter.Classify(r1, filter.Config{
		MinLength:   cfg.Filter.MinLength,
		MaxLength:   cfg.Filter.MaxLength,
		MinMeanQual: cfg.Filter.MinMeanQual,
		MaxNRate:    cfg.Filter.MaxNRate,
	})
	wctx.Filter.Record(verdict)
	if collector != nil {
		collector.RecordProcessed(1)
	}

	if verdict == filter.Pass {
		// 9. translated search
		ref, hit := wctx.Search.Search(r1)
		if hit {
			id, _ := d.ID(ref)
			tag := KOMapTagPrefix + id
			wctx.primaryBuf.WriteString(r1.StringWithTag(tag))
			// Gated on the KO-map sink's presence (spec §6: "outReadsKOMap:
			// presence enables the respective writer sink"), not on
			// OutputReadsAnnoMap alone, so a configured sink is never left
			// silently empty by an unset companion flag.
			if cfg.OutReadsKOMap != "" {
				fmt.Fprintf(&wctx.koBuf, "%s\t%s\n", r1.Name, tag)
			}
			if collector != nil {
				collector.RecordMapped(1)
			}
		} else {
			// search miss: not an error, pass through untagged (spec §7.4)
			wctx.primaryBuf.WriteString(r1.String())
		}
	} else if cfg.FailedOut != "" {
		// 10. route to failed-reads output
		wctx.failedBuf.WriteString(recordOrOriginal(r1, r0).StringWithTag(string(verdict)))
	}
	if verdict != filter.Pass && collector != nil {
		collector.RecordFailed(string(verdict), 1)
	}

	// 11. post-trim stats
	wctx.PostStats.Update(r1)
}

// recordOrOriginal picks the surviving record to tag for the failed-reads
// output: r1 if trimming left something, otherwise the untrimmed original
// so a rejected read is never silently dropped from that diagnostic file.
func recordOrOriginal(r1, r0 *seqio.Record) *seqio.Record {
	if r1 != nil {
		return r1
	}
	return r0
}

func indexHitsFilter(r *seqio.Record, indices []string) bool {
	if len(indices) == 0 || len(r.Index) == 0 {
		return false
	}
	idx := string(r.Index)
	for _, blocked := range indices {
		if idx == blocked {
			return true
		}
	}
	return false
}

// submitBatch hands the worker's accumulated buffers to the writer sinks.
// Only the primary stream bypasses the shared sink in split mode (writing
// straight to this worker's own file per spec §4.4); the failed-reads and
// KO-map streams always go through their shared sinks, still serialized by
// outputMu so a worker's buffers land as a group, split mode or not.
func submitBatch(wctx *Context, sinks Sinks, outputMu *sync.Mutex, splitWriter *sink.WriterSink, collector *metrics.Collector) {
	outputMu.Lock()
	if splitWriter != nil {
		splitWriter.Submit(wctx.primaryBuf.Bytes())
	} else if sinks.Primary != nil {
		sinks.Primary.Submit(wctx.primaryBuf.Bytes())
	}
	if sinks.Failed != nil {
		sinks.Failed.Submit(wctx.failedBuf.Bytes())
	}
	if sinks.KOMap != nil {
		sinks.KOMap.Submit(wctx.koBuf.Bytes())
	}
	outputMu.Unlock()
	wctx.resetBuffers()

	if collector != nil {
		if splitWriter != nil {
			collector.SetWriterPending(splitWriter.Name(), splitWriter.PendingBytes())
		} else if sinks.Primary != nil {
			collector.SetWriterPending("primary", sinks.Primary.PendingBytes())
		}
		if sinks.Failed != nil {
			collector.SetWriterPending("failed", sinks.Failed.PendingBytes())
		}
		if sinks.KOMap != nil {
			collector.SetWriterPending("ko_map", sinks.KOMap.PendingBytes())
		}
	}
}
