package postprocess

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/wyang-bio/seq2fun-core/internal/aggregate"
	"github.com/wyang-bio/seq2fun-core/internal/dict"
	"github.com/wyang-bio/seq2fun-core/internal/runstate"
)

// Options configures one post-processor run (C7). Rng, if nil, is seeded
// from RunState.StartTime; tests inject a deterministic source. Prefix also
// serves as the sample id under which the run's SampleResult is recorded.
type Options struct {
	Prefix     string
	Dictionary *dict.Dictionary
	Global     *aggregate.GlobalResult
	RunState   *runstate.RunState
	Profiling  bool
	Rng        *rand.Rand
}

// Run writes the abundance file synchronously, then launches the
// rarefaction computation and report write in a background goroutine so a
// multi-sample driver can move on to the next sample without waiting on
// one sample's saturation curve. The returned channel receives exactly one
// value — nil on success, or the first error encountered — once that
// background work finishes; a caller that doesn't care (e.g. a CLI
// exiting after the last sample) may ignore it, but anything that must not
// exit before every report lands should receive from it.
func Run(opts Options) (<-chan error, error) {
	abundancePath := opts.Prefix + "_s2fid_abundance.txt"
	if err := WriteAbundance(abundancePath, opts.Global.HitCounts, opts.Dictionary); err != nil {
		return nil, fmt.Errorf("post-processor: %w", err)
	}

	opts.RunState.TotalRawReads = opts.Global.PreStats.Reads
	opts.RunState.TotalMappedReads = opts.Global.TotalMappedReads
	opts.RunState.DistinctOrthologs = opts.Global.DistinctOrthologs

	done := make(chan error, 1)
	go func() {
		defer close(done)
		opts.RunState.EndTime = time.Now()
		opts.RunState.RecordSample(opts.Prefix, &runstate.SampleResult{
			TotalRawReads:    opts.RunState.TotalRawReads,
			TotalMappedReads: opts.RunState.TotalMappedReads,
			MappingRate:      opts.RunState.MappingRate(),
			Duration:         opts.RunState.EndTime.Sub(opts.RunState.StartTime),
		})

		if opts.Profiling && opts.Global.TotalMappedReads > 0 {
			rng := opts.Rng
			if rng == nil {
				rng = rand.New(rand.NewSource(opts.RunState.StartTime.UnixNano()))
			}
			opts.RunState.Rarefaction = ComputeRarefaction(opts.Global.HitCounts, opts.RunState.TotalRawReads, rng)
		}

		report := BuildReport(opts.RunState, opts.Global.Filter, &opts.Global.PreStats, &opts.Global.PostStats, opts.Global.Dup)
		reportPath := opts.Prefix + "_report.json"
		if err := WriteReport(reportPath, report); err != nil {
			done <- fmt.Errorf("post-processor: %w", err)
			return
		}
		done <- nil
	}()

	return done, nil
}
