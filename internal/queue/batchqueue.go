// ============================================================================
// Batch Queue - Bounded MPMC Buffer Between Producer and Workers
// ============================================================================
//
// Package: internal/queue
// File: batchqueue.go
//
// Grounded on the teacher's internal/jobmanager pending-queue: a
// mutex+condition-variable guarded slice with monotonic counters, here
// reshaped into a fixed-capacity ring of batch slots instead of an
// unbounded pending list, to give the producer an explicit backpressure
// signal (spec §4.1).
//
// writePos and readPos are monotonically increasing; only `mod capacity` is
// ever taken when touching a slot, so wraparound never has to reconcile two
// separately-wrapped counters.
// ============================================================================

package queue

import (
	"sync"

	"github.com/wyang-bio/seq2fun-core/pkg/seqio"
)

// Batch is a fixed-size group of records moved as a unit through the queue.
type Batch struct {
	Records []*seqio.Record
	Count   int
}

// BatchQueue is a bounded multi-producer(1)/multi-consumer(N) buffer of
// Batches. Enqueue must only ever be called from the producer goroutine;
// TryDequeue is safe from any number of worker goroutines.
type BatchQueue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	slots    []*Batch
	capacity int
	writePos uint64
	readPos  uint64

	produceFinished bool
}

// New creates a BatchQueue with room for capacity in-flight batches.
func New(capacity int) *BatchQueue {
	if capacity <= 0 {
		capacity = 1
	}
	q := &BatchQueue{
		slots:    make([]*Batch, capacity),
		capacity: capacity,
	}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Enqueue blocks while the queue is at capacity, then installs batch at the
// next write slot. Single-producer only.
func (q *BatchQueue) Enqueue(batch *Batch) {
	q.mu.Lock()
	for q.writePos-q.readPos >= uint64(q.capacity) {
		q.notFull.Wait()
	}
	q.slots[q.writePos%uint64(q.capacity)] = batch
	q.writePos++
	q.mu.Unlock()
	q.notEmpty.Signal()
}

// TryDequeue returns the next batch in FIFO order. If the queue is
// currently empty it blocks until a batch arrives or the producer finishes;
// in the latter case it returns (nil, false) — the worker's signal to stop
// looping.
func (q *BatchQueue) TryDequeue() (*Batch, bool) {
	q.mu.Lock()
	for q.writePos == q.readPos {
		if q.produceFinished {
			q.mu.Unlock()
			return nil, false
		}
		q.notEmpty.Wait()
	}
	b := q.slots[q.readPos%uint64(q.capacity)]
	q.slots[q.readPos%uint64(q.capacity)] = nil
	q.readPos++
	q.mu.Unlock()
	q.notFull.Signal()
	return b, true
}

// MarkProduceFinished signals that no further Enqueue calls will occur and
// wakes any workers blocked waiting for new batches.
func (q *BatchQueue) MarkProduceFinished() {
	q.mu.Lock()
	q.produceFinished = true
	q.mu.Unlock()
	q.notEmpty.Broadcast()
}

// Residency reports the number of batches currently buffered
// (writePos - readPos), the value the producer polls against MEM_LIMIT for
// backpressure.
func (q *BatchQueue) Residency() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int(q.writePos - q.readPos)
}
