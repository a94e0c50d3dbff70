package demux

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyang-bio/seq2fun-core/internal/queue"
	"github.com/wyang-bio/seq2fun-core/internal/sink"
	"github.com/wyang-bio/seq2fun-core/pkg/seqio"
)

func openSinks(t *testing.T, n int) []*sink.WriterSink {
	t.Helper()
	sinks := make([]*sink.WriterSink, n)
	for i := 0; i < n; i++ {
		s, err := sink.Open(filepath.Join(t.TempDir(), "bucket.fastq"), nil)
		require.NoError(t, err)
		go s.Run(nil)
		sinks[i] = s
	}
	return sinks
}

func rec(name string) *seqio.Record {
	return &seqio.Record{Name: []byte(name), Seq: []byte("ACGT"), Qual: []byte("IIII")}
}

func TestRouteRecordSubsetMatchInsertsFeature(t *testing.T) {
	targets := Targets{Subset: []string{"K001", "K002"}, Full: []string{"K001", "K002", "K003"}}
	fs := NewFeatureSet()
	bufs := make([][]byte, 3)

	routeRecord(rec("read1\tK002"), targets, 2, bufs, fs)

	assert.Contains(t, string(bufs[1]), "@read1")
	assert.Equal(t, 1, fs.Len())
}

func TestRouteRecordFullOnlyMatchGoesToOverflowWithoutFeatureCount(t *testing.T) {
	targets := Targets{Subset: []string{"K001", "K002"}, Full: []string{"K001", "K002", "K003"}}
	fs := NewFeatureSet()
	bufs := make([][]byte, 3)

	routeRecord(rec("read2\tK003"), targets, 2, bufs, fs)

	assert.Contains(t, string(bufs[2]), "@read2")
	assert.Equal(t, 0, fs.Len())
}

func TestRouteRecordNoMatchIsDropped(t *testing.T) {
	targets := Targets{Subset: []string{"K001"}, Full: []string{"K001"}}
	fs := NewFeatureSet()
	bufs := make([][]byte, 2)

	routeRecord(rec("read3\tK999"), targets, 1, bufs, fs)

	assert.Empty(t, string(bufs[0]))
	assert.Empty(t, string(bufs[1]))
}

func TestRunDrainsAndSignalsCompletionAcrossAllBuckets(t *testing.T) {
	targets := Targets{Subset: []string{"K001"}, Full: []string{"K001", "K002"}}
	q := queue.New(4)
	q.Enqueue(&queue.Batch{Records: []*seqio.Record{rec("r1\tK001"), rec("r2\tK002")}, Count: 2})
	q.MarkProduceFinished()

	buckets := openSinks(t, 2) // subset[0] + overflow
	fs := NewFeatureSet()
	var finished int32

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Run(q, targets, buckets, fs, &finished, 2)
		}()
	}
	wg.Wait()

	for _, b := range buckets {
		deadline := time.After(2 * time.Second)
		for b.State() != sink.Closed {
			select {
			case <-deadline:
				t.Fatal("bucket sink never closed")
			case <-time.After(time.Millisecond):
			}
		}
	}
	assert.Equal(t, 1, fs.Len())
}
