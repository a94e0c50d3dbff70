// Package filter classifies a post-trim record into a pass/fail verdict and
// accumulates per-verdict counts. A Result is a thread-local accumulator:
// each worker owns one and the aggregator combines them with Merge once all
// workers have joined.
package filter

import "github.com/wyang-bio/seq2fun-core/pkg/seqio"

// Verdict is the outcome of classifying a single record.
type Verdict string

const (
	Pass           Verdict = "PASS"
	FailLowQuality Verdict = "FAIL_LOW_QUALITY"
	FailTooShort   Verdict = "FAIL_TOO_SHORT"
	FailTooLong    Verdict = "FAIL_TOO_LONG"
	FailNRate      Verdict = "FAIL_N_RATE"
)

// Config carries the thresholds Classify checks, a slice of the full
// pipeline Config relevant to filtering only.
type Config struct {
	MinLength     int
	MaxLength     int
	MinMeanQual   float64
	MaxNRate      float64
}

// Classify returns FailTooShort for a nil record (the read didn't survive
// trimming), otherwise checks length, max-N rate, and mean quality in that
// order and returns the first violated verdict, or Pass.
func Classify(r *seqio.Record, cfg Config) Verdict {
	if r == nil || len(r.Seq) == 0 {
		return FailTooShort
	}
	if cfg.MinLength > 0 && len(r.Seq) < cfg.MinLength {
		return FailTooShort
	}
	if cfg.MaxLength > 0 && len(r.Seq) > cfg.MaxLength {
		return FailTooLong
	}
	if cfg.MaxNRate > 0 {
		n := 0
		for _, b := range r.Seq {
			if b == 'N' || b == 'n' {
				n++
			}
		}
		if float64(n)/float64(len(r.Seq)) > cfg.MaxNRate {
			return FailNRate
		}
	}
	if cfg.MinMeanQual > 0 {
		sum := 0
		for _, q := range r.Qual {
			sum += int(q) - 33
		}
		if float64(sum)/float64(len(r.Qual)) < cfg.MinMeanQual {
			return FailLowQuality
		}
	}
	return Pass
}

// Result tallies verdict counts plus the adapter trimmed-read counter
// (adapter sequence, FASTA adapters, polyA), noted separately because it's
// incremented at most once per record regardless of how many of the chained
// adapter steps actually fired.
type Result struct {
	counts  map[Verdict]int64
	trimmed int64
}

// NewResult returns an empty accumulator.
func NewResult() *Result {
	return &Result{counts: make(map[Verdict]int64, 8)}
}

// Record tallies one classification.
func (r *Result) Record(v Verdict) {
	r.counts[v]++
}

// RecordTrimmed marks that this record had at least one adapter trim step
// (sequence, FASTA or polyA) fire; call at most once per record.
func (r *Result) RecordTrimmed() {
	r.trimmed++
}

// Count returns the tally for a verdict.
func (r *Result) Count(v Verdict) int64 {
	return r.counts[v]
}

// Trimmed returns the number of records that had an adapter trim step fire.
func (r *Result) Trimmed() int64 {
	return r.trimmed
}

// Merge folds other's counts into r.
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	for v, c := range other.counts {
		r.counts[v] += c
	}
	r.trimmed += other.trimmed
}
