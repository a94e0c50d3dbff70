package pipeline

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/wyang-bio/seq2fun-core/internal/aggregate"
	"github.com/wyang-bio/seq2fun-core/internal/config"
	"github.com/wyang-bio/seq2fun-core/internal/dict"
	"github.com/wyang-bio/seq2fun-core/internal/dup"
	"github.com/wyang-bio/seq2fun-core/internal/metrics"
	"github.com/wyang-bio/seq2fun-core/internal/postprocess"
	"github.com/wyang-bio/seq2fun-core/internal/queue"
	"github.com/wyang-bio/seq2fun-core/internal/runstate"
	"github.com/wyang-bio/seq2fun-core/internal/search"
	"github.com/wyang-bio/seq2fun-core/internal/sink"
	"github.com/wyang-bio/seq2fun-core/internal/worker"
	"github.com/wyang-bio/seq2fun-core/pkg/seqio"
)

// Result is everything a caller of Run needs once a pipeline invocation
// has finished: the merged aggregate result and the RunState that now
// holds timing and (if profiling was enabled) the rarefaction curve.
type Result struct {
	Global   *aggregate.GlobalResult
	RunState *runstate.RunState
	// ReportDone receives a single value (nil, or the first error) once
	// the post-processor's background report/rarefaction work finishes.
	ReportDone <-chan error
}

// Run executes the primary filter/trim/search pipeline (C1-C7) end to end
// against cfg and returns once every worker has joined, the abundance file
// has been written, and the background report/rarefaction work has been
// launched (not necessarily finished — see Result.ReportDone).
func Run(cfg *config.Config, log *slog.Logger, collector *metrics.Collector) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rs := runstate.New(time.Now())

	d, err := dict.Load(cfg.MHomoSearchOptions.DictionaryPath)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	seedMap, err := loadSeedMap(cfg.MHomoSearchOptions.FullDBMap)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	idx := search.NewIndex(d, cfg.MHomoSearchOptions.SeedLen, seedMap)

	fastaAdapters, err := loadFastaSequences(cfg.Adapter.SeqsInFasta)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	fatalCh := make(chan error, 8)

	q := queue.New(QueueCapacity)
	reader, err := seqio.NewReader(cfg.Input, false, cfg.Phred64, cfg.FastqBufferSize)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	defer reader.Close()

	var sinksWG sync.WaitGroup
	var sinks worker.Sinks
	var splitWriters []*sink.WriterSink

	if cfg.Split.Enabled {
		splitWriters = make([]*sink.WriterSink, cfg.Thread)
		for i := 0; i < cfg.Thread; i++ {
			path := fmt.Sprintf("%s.part%d", cfg.Out1, i)
			s, err := sink.Open(path, fatalCh)
			if err != nil {
				return nil, fmt.Errorf("pipeline: %w", err)
			}
			splitWriters[i] = s
			sinksWG.Add(1)
			go func() { defer sinksWG.Done(); s.Run(log) }()
		}
	} else if cfg.Out1 != "" {
		s, err := sink.Open(cfg.Out1, fatalCh)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		sinks.Primary = s
		sinksWG.Add(1)
		go func() { defer sinksWG.Done(); s.Run(log) }()
	}

	if cfg.FailedOut != "" {
		s, err := sink.Open(cfg.FailedOut, fatalCh)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		sinks.Failed = s
		sinksWG.Add(1)
		go func() { defer sinksWG.Done(); s.Run(log) }()
	}

	if cfg.OutReadsKOMap != "" {
		s, err := sink.Open(cfg.OutReadsKOMap, fatalCh)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
		sinks.KOMap = s
		sinksWG.Add(1)
		go func() { defer sinksWG.Done(); s.Run(log) }()
	}

	numWorkers := cfg.Thread
	if numWorkers <= 0 {
		numWorkers = 1
	}

	contexts := make([]*worker.Context, numWorkers)
	var workersWG sync.WaitGroup
	var outputMu sync.Mutex
	var finished int32

	for i := 0; i < numWorkers; i++ {
		var workerDup *dup.Estimator
		if cfg.Duplicate.Enabled {
			workerDup = dup.NewEstimator(cfg.Duplicate.HistSize)
		}
		wctx := worker.NewContext(i, idx, workerDup)
		contexts[i] = wctx

		var splitWriter *sink.WriterSink
		if cfg.Split.Enabled {
			splitWriter = splitWriters[i]
		}

		workersWG.Add(1)
		go func(id int, wctx *worker.Context, splitWriter *sink.WriterSink) {
			defer workersWG.Done()
			worker.Run(id, q, cfg, d, wctx, sinks, &outputMu, &finished, int32(numWorkers), fastaAdapters, splitWriter, collector)
		}(i, wctx, splitWriter)
	}

	var primaryForBackpressure *sink.WriterSink
	if !cfg.Split.Enabled {
		primaryForBackpressure = sinks.Primary
	}
	if err := RunProduce(reader, q, primaryForBackpressure, cfg.ReadsToProcess, log); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	workersWG.Wait()
	sinksWG.Wait()

	select {
	case err := <-fatalCh:
		return nil, fmt.Errorf("pipeline: %w", err)
	default:
	}

	global := aggregate.Merge(contexts)

	done, err := postprocess.Run(postprocess.Options{
		Prefix:     cfg.MHomoSearchOptions.Prefix,
		Dictionary: d,
		Global:     global,
		RunState:   rs,
		Profiling:  cfg.MHomoSearchOptions.Profiling,
	})
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	return &Result{Global: global, RunState: rs, ReportDone: done}, nil
}

// loadSeedMap reads a two-column "seed\tid" file into a map. An empty path
// yields an empty map (search then always misses, which is a valid,
// non-fatal configuration per spec §7.4).
func loadSeedMap(path string) (map[string]string, error) {
	m := make(map[string]string)
	if path == "" {
		return m, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed map %q: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, "\t", 2)
		if len(fields) != 2 {
			continue
		}
		m[fields[0]] = fields[1]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read seed map %q: %w", path, err)
	}
	return m, nil
}

// loadFastaSequences reads one or more FASTA files of adapter sequences
// into a flat slice of sequence byte slices (headers discarded).
func loadFastaSequences(paths []string) ([][]byte, error) {
	var seqs [][]byte
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open adapter fasta %q: %w", path, err)
		}
		var cur []byte
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, ">") {
				if len(cur) > 0 {
					seqs = append(seqs, cur)
				}
				cur = nil
				continue
			}
			cur = append(cur, []byte(line)...)
		}
		if len(cur) > 0 {
			seqs = append(seqs, cur)
		}
		f.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read adapter fasta %q: %w", path, err)
		}
	}
	return seqs, nil
}
