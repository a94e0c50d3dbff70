package trim

import "github.com/wyang-bio/seq2fun-core/pkg/seqio"

// ClipMaxLength truncates the read to maxLen bases if it's longer. A
// non-positive maxLen disables clipping.
func ClipMaxLength(r *seqio.Record, maxLen int) bool {
	if maxLen <= 0 || len(r.Seq) <= maxLen {
		return false
	}
	r.Resize(maxLen)
	return true
}
