package queue

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueDequeueFIFO(t *testing.T) {
	q := New(4)
	for i := 0; i < 3; i++ {
		q.Enqueue(&Batch{Count: i})
	}
	for i := 0; i < 3; i++ {
		b, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, i, b.Count)
	}
}

func TestDequeueEmptyFinishedReturnsFalse(t *testing.T) {
	q := New(4)
	q.MarkProduceFinished()
	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestDequeueBlocksUntilEnqueue(t *testing.T) {
	q := New(4)
	done := make(chan struct{})
	go func() {
		b, ok := q.TryDequeue()
		assert.True(t, ok)
		assert.Equal(t, 7, b.Count)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	q.Enqueue(&Batch{Count: 7})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TryDequeue never returned")
	}
}

func TestEnqueueBlocksAtCapacity(t *testing.T) {
	q := New(1)
	q.Enqueue(&Batch{Count: 1})

	blocked := make(chan struct{})
	go func() {
		q.Enqueue(&Batch{Count: 2})
		close(blocked)
	}()

	select {
	case <-blocked:
		t.Fatal("Enqueue should have blocked at capacity")
	case <-time.After(50 * time.Millisecond):
	}

	_, _ = q.TryDequeue()

	select {
	case <-blocked:
	case <-time.After(time.Second):
		t.Fatal("Enqueue never unblocked after a dequeue")
	}
}

func TestEveryBatchProcessedExactlyOnceUnderConcurrency(t *testing.T) {
	for _, workers := range []int{1, 2, 8, 32} {
		q := New(16)
		const totalBatches = 500

		var seen int64
		var wg sync.WaitGroup
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					_, ok := q.TryDequeue()
					if !ok {
						return
					}
					atomic.AddInt64(&seen, 1)
				}
			}()
		}

		for i := 0; i < totalBatches; i++ {
			q.Enqueue(&Batch{Count: i})
		}
		q.MarkProduceFinished()
		wg.Wait()

		assert.Equal(t, int64(totalBatches), atomic.LoadInt64(&seen), "workers=%d", workers)
	}
}

func TestResidencyTracksBacklog(t *testing.T) {
	q := New(4)
	assert.Equal(t, 0, q.Residency())
	q.Enqueue(&Batch{})
	q.Enqueue(&Batch{})
	assert.Equal(t, 2, q.Residency())
	q.TryDequeue()
	assert.Equal(t, 1, q.Residency())
}
