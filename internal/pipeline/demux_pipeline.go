package pipeline

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/wyang-bio/seq2fun-core/internal/config"
	"github.com/wyang-bio/seq2fun-core/internal/demux"
	"github.com/wyang-bio/seq2fun-core/internal/queue"
	"github.com/wyang-bio/seq2fun-core/internal/sink"
	"github.com/wyang-bio/seq2fun-core/pkg/seqio"
)

// DemuxResult reports how many distinct subset features the demultiplex
// run observed.
type DemuxResult struct {
	DistinctFeatures int
}

// RunDemux executes the demultiplex-by-feature variant (C8): the same
// BatchQueue/producer skeleton as Run, but each worker routes records into
// one of len(cfg.Demux.SubsetTargets)+1 writer sinks instead of running
// the filter/trim/search chain.
func RunDemux(cfg *config.Config, log *slog.Logger) (*DemuxResult, error) {
	if cfg.Input == "" {
		return nil, fmt.Errorf("demux: input path is required")
	}
	if len(cfg.Demux.SubsetTargets) == 0 {
		return nil, fmt.Errorf("demux: at least one subset target is required")
	}

	targets := demux.Targets{Subset: cfg.Demux.SubsetTargets, Full: cfg.Demux.FullTargets}
	numBuckets := len(targets.Subset) + 1

	fatalCh := make(chan error, numBuckets)
	buckets := make([]*sink.WriterSink, numBuckets)
	var sinksWG sync.WaitGroup
	for i := 0; i < numBuckets; i++ {
		path := fmt.Sprintf("%s.bucket%d.fastq", cfg.Demux.OutPrefix, i)
		s, err := sink.Open(path, fatalCh)
		if err != nil {
			return nil, fmt.Errorf("demux: %w", err)
		}
		buckets[i] = s
		sinksWG.Add(1)
		go func() { defer sinksWG.Done(); s.Run(log) }()
	}

	q := queue.New(QueueCapacity)
	reader, err := seqio.NewReader(cfg.Input, false, cfg.Phred64, cfg.FastqBufferSize)
	if err != nil {
		return nil, fmt.Errorf("demux: %w", err)
	}
	defer reader.Close()

	numWorkers := cfg.Thread
	if numWorkers <= 0 {
		numWorkers = 1
	}

	featureSet := demux.NewFeatureSet()
	var finished int32
	var workersWG sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		workersWG.Add(1)
		go func() {
			defer workersWG.Done()
			demux.Run(q, targets, buckets, featureSet, &finished, int32(numWorkers))
		}()
	}

	if err := RunProduce(reader, q, nil, cfg.ReadsToProcess, log); err != nil {
		return nil, fmt.Errorf("demux: %w", err)
	}

	workersWG.Wait()
	sinksWG.Wait()

	select {
	case err := <-fatalCh:
		return nil, fmt.Errorf("demux: %w", err)
	default:
	}

	return &DemuxResult{DistinctFeatures: featureSet.Len()}, nil
}
