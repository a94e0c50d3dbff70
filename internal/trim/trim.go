// Package trim implements the pure per-record trimming primitives the
// worker pipeline chains together: fixed-length head/tail trim, sliding
// window quality trim, polyG/polyA/polyX trim, adapter trim, and max-length
// clipping. Every function takes ownership of the record it's handed: it
// either mutates it in place and returns it, returns a new record, or
// returns nil to signal the read didn't survive.
package trim

import "github.com/wyang-bio/seq2fun-core/pkg/seqio"

// FrontTail removes front bases from the start and tail bases from the end
// of the read. It returns nil if the remaining length would be non-positive.
func FrontTail(r *seqio.Record, front, tail int) *seqio.Record {
	if front <= 0 && tail <= 0 {
		return r
	}
	remaining := len(r.Seq) - front - tail
	if remaining <= 0 {
		return nil
	}
	if front > 0 {
		r.Seq = r.Seq[front:]
		r.Qual = r.Qual[front:]
		r.TrimmedFront += front
	}
	if tail > 0 {
		r.Resize(len(r.Seq) - tail)
	}
	return r
}

// SlidingWindow scans from the front of the read in windows of windowSize
// bases; once the window's mean quality drops below cutoff, everything from
// that window onward is dropped. Returns nil if nothing usable remains.
func SlidingWindow(r *seqio.Record, windowSize int, cutoff float64) *seqio.Record {
	if windowSize <= 0 || len(r.Qual) < windowSize {
		if len(r.Seq) == 0 {
			return nil
		}
		return r
	}

	sum := 0
	for i := 0; i < windowSize; i++ {
		sum += qualScore(r.Qual[i])
	}
	cutAt := -1
	for i := 0; i+windowSize <= len(r.Qual); i++ {
		if i > 0 {
			sum -= qualScore(r.Qual[i-1])
			sum += qualScore(r.Qual[i+windowSize-1])
		}
		mean := float64(sum) / float64(windowSize)
		if mean < cutoff {
			cutAt = i
			break
		}
	}
	if cutAt == 0 {
		return nil
	}
	if cutAt > 0 {
		r.Resize(cutAt)
	}
	if len(r.Seq) == 0 {
		return nil
	}
	return r
}

// qualScore converts a Phred+33 quality byte to its numeric score.
func qualScore(q byte) int {
	return int(q) - 33
}
