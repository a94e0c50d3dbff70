// Package pipeline wires the BatchQueue, producer, worker pool, writer
// sinks, aggregator, and post-processor into the two top-level runs this
// repo exposes: the primary filter/trim/search pipeline and the
// demultiplex-by-feature variant. It replaces the teacher's
// internal/controller, which performed the analogous job for a
// distributed job queue (dispatch loop + WAL + snapshot + Raft
// hand-off) — none of that distributed machinery applies to a
// single-process, non-cancellable read pipeline, so only the
// "own the goroutine lifecycle, merge results at the end" shape survives.
package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/wyang-bio/seq2fun-core/internal/queue"
	"github.com/wyang-bio/seq2fun-core/internal/sink"
	"github.com/wyang-bio/seq2fun-core/pkg/seqio"
)

// BatchSize, QueueCapacity, and MemLimit are the glossary's
// implementation-defined pipeline constants.
const (
	BatchSize     = 1000
	QueueCapacity = 1000
	MemLimit      = 5

	// writerBackpressureBytes is the unit MemLimit is scaled to when
	// checked against a writer sink's PendingBytes: 5 "MemLimit units" of
	// primary-writer backlog, interpreted as megabytes of unflushed text.
	writerBackpressureBytes = MemLimit * 1 << 20
)

// producerPaceCheckRecords is how often (in records produced) the producer
// re-checks the primary writer sink's backlog, per spec §4.3 step 2.
const producerPaceCheckRecords = BatchSize * MemLimit

// RunProduce reads records from r until EOF or cap is reached, batches
// them in groups of BatchSize, and enqueues each full batch (plus a final
// partial one) onto q. primary, if non-nil, is polled for backpressure
// every producerPaceCheckRecords records. cap of 0 means unbounded.
func RunProduce(r *seqio.Reader, q *queue.BatchQueue, primary *sink.WriterSink, cap int, log *slog.Logger) error {
	batch := &queue.Batch{Records: make([]*seqio.Record, BatchSize)}
	produced := 0

	for {
		if cap > 0 && produced >= cap {
			break
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("producer: read record: %w", err)
		}

		batch.Records[batch.Count] = rec
		batch.Count++
		produced++

		if batch.Count == BatchSize {
			q.Enqueue(batch)
			batch = &queue.Batch{Records: make([]*seqio.Record, BatchSize)}
			paceOnQueueResidency(q, log)
		}

		if produced%producerPaceCheckRecords == 0 {
			paceOnWriterBacklog(primary, log)
		}
	}

	if batch.Count > 0 {
		q.Enqueue(batch)
	}
	q.MarkProduceFinished()
	return nil
}

func paceOnQueueResidency(q *queue.BatchQueue, log *slog.Logger) {
	for q.Residency() > MemLimit {
		if log != nil {
			log.Debug("producer pacing on queue residency", "residency", q.Residency())
		}
		time.Sleep(time.Millisecond)
	}
}

func paceOnWriterBacklog(primary *sink.WriterSink, log *slog.Logger) {
	if primary == nil {
		return
	}
	for primary.PendingBytes() > writerBackpressureBytes {
		if log != nil {
			log.Debug("producer pacing on writer backlog", "pending_bytes", primary.PendingBytes())
		}
		time.Sleep(time.Millisecond)
	}
}
