// Package demux implements the demultiplex-by-feature pipeline variant
// (spec §4.7/C8): the same BatchQueue/producer/worker skeleton as the
// primary pipeline, but each worker routes a record into one of K+1
// output buckets instead of running the filter/trim/search chain.
package demux

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/wyang-bio/seq2fun-core/internal/queue"
	"github.com/wyang-bio/seq2fun-core/internal/sink"
	"github.com/wyang-bio/seq2fun-core/pkg/seqio"
)

// Targets holds the subset and full target feature lists a record's
// second tab-delimited field is checked against.
type Targets struct {
	Subset []string
	Full   []string
}

// FeatureSet is the demux variant's shared, lock-protected set of distinct
// features observed across every worker — populated only from the subset
// match branch per spec §9 resolution 2: overflow-bucket features are
// written to their file but never inflate this count.
type FeatureSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewFeatureSet returns an empty, ready-to-use FeatureSet.
func NewFeatureSet() *FeatureSet {
	return &FeatureSet{seen: make(map[string]struct{})}
}

// Insert adds feature to the set.
func (fs *FeatureSet) Insert(feature string) {
	fs.mu.Lock()
	fs.seen[feature] = struct{}{}
	fs.mu.Unlock()
}

// Len reports the number of distinct features inserted so far.
func (fs *FeatureSet) Len() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.seen)
}

// Run is a single demux worker's main loop. buckets holds exactly
// len(targets.Subset)+1 sinks: index s is the subset match at position s,
// and the last index (overflow, "K") receives full-target-only matches.
func Run(q *queue.BatchQueue, targets Targets, buckets []*sink.WriterSink, featureSet *FeatureSet, finished *int32, totalWorkers int32) {
	overflow := len(targets.Subset)
	bufs := make([][]byte, len(buckets))

	for {
		batch, ok := q.TryDequeue()
		if !ok {
			break
		}
		for i := range bufs {
			bufs[i] = bufs[i][:0]
		}
		for i := 0; i < batch.Count; i++ {
			routeRecord(batch.Records[i], targets, overflow, bufs, featureSet)
		}
		for i, b := range bufs {
			if len(b) > 0 {
				buckets[i].Submit(b)
			}
		}
	}

	if atomic.AddInt32(finished, 1) == totalWorkers {
		for _, b := range buckets {
			b.MarkInputCompleted()
		}
	}
}

// routeRecord implements spec §4.7 steps 1-3 for a single record.
func routeRecord(r *seqio.Record, targets Targets, overflow int, bufs [][]byte, featureSet *FeatureSet) {
	fields := strings.SplitN(string(r.Name), "\t", 2)
	if len(fields) < 2 {
		return
	}
	feature := fields[1]
	if !strings.HasPrefix(feature, "K") {
		return
	}

	if idx := indexOf(targets.Subset, feature); idx >= 0 {
		bufs[idx] = append(bufs[idx], r.String()...)
		featureSet.Insert(feature)
		return
	}
	if indexOf(targets.Full, feature) >= 0 {
		bufs[overflow] = append(bufs[overflow], r.String()...)
	}
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
