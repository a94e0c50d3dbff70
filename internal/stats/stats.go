// Package stats implements the pre/post-trim read accumulators workers
// update locally and the aggregator merges at join time.
package stats

import "github.com/wyang-bio/seq2fun-core/pkg/seqio"

// Stats tallies basic per-read metrics over a stream of records.
type Stats struct {
	Reads  int64
	Bases  int64
	QSum   float64
	NCount int64
	MinLen int
	MaxLen int
}

// Update folds one record into the accumulator. Passing nil is a no-op, so
// callers can unconditionally call Update(r1) after a trim step that may
// have dropped the record.
func (s *Stats) Update(r *seqio.Record) {
	if r == nil {
		return
	}
	n := len(r.Seq)
	s.Reads++
	s.Bases += int64(n)
	for _, q := range r.Qual {
		s.QSum += float64(int(q) - 33)
	}
	for _, b := range r.Seq {
		if b == 'N' || b == 'n' {
			s.NCount++
		}
	}
	if s.Reads == 1 || n < s.MinLen {
		s.MinLen = n
	}
	if n > s.MaxLen {
		s.MaxLen = n
	}
}

// MeanQuality returns the mean Phred quality across all bases observed.
func (s *Stats) MeanQuality() float64 {
	if s.Bases == 0 {
		return 0
	}
	return s.QSum / float64(s.Bases)
}

// Merge folds other into s.
func (s *Stats) Merge(other *Stats) {
	if other == nil {
		return
	}
	if s.Reads == 0 {
		s.MinLen = other.MinLen
	} else if other.Reads > 0 && other.MinLen < s.MinLen {
		s.MinLen = other.MinLen
	}
	if other.MaxLen > s.MaxLen {
		s.MaxLen = other.MaxLen
	}
	s.Reads += other.Reads
	s.Bases += other.Bases
	s.QSum += other.QSum
	s.NCount += other.NCount
}
