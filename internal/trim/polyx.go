package trim

import "github.com/wyang-bio/seq2fun-core/pkg/seqio"

// TrimPolyG removes a trailing run of G calls (an Illumina two-channel
// chemistry artifact on reads shorter than the flow cell's cycle count).
// Reports whether a trim occurred.
func TrimPolyG(r *seqio.Record, minLen int) bool {
	return trimTrailingRun(r, 'G', minLen)
}

// TrimPolyX removes a trailing homopolymer run of any single base.
func TrimPolyX(r *seqio.Record, minLen int) bool {
	if len(r.Seq) == 0 {
		return false
	}
	return trimTrailingRun(r, r.Seq[len(r.Seq)-1], minLen)
}

func trimTrailingRun(r *seqio.Record, base byte, minLen int) bool {
	if minLen <= 0 || len(r.Seq) < minLen {
		return false
	}
	n := len(r.Seq)
	runLen := 0
	for i := n - 1; i >= 0 && (r.Seq[i] == base || r.Seq[i] == 'N'); i-- {
		runLen++
	}
	if runLen < minLen {
		return false
	}
	r.Resize(n - runLen)
	return true
}

// TrimPolyA removes a trailing poly-A tail, the mRNA-library counterpart of
// TrimPolyG/TrimPolyX.
func TrimPolyA(r *seqio.Record, minLen int) bool {
	return trimTrailingRun(r, 'A', minLen)
}
