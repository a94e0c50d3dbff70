package trim

import (
	"bytes"

	"github.com/wyang-bio/seq2fun-core/pkg/seqio"
)

// TrimAdapterSequence drops everything from the first occurrence of adapter
// onward. Reports whether a trim occurred.
func TrimAdapterSequence(r *seqio.Record, adapter []byte) bool {
	if len(adapter) == 0 {
		return false
	}
	if i := bytes.Index(r.Seq, adapter); i >= 0 {
		r.Resize(i)
		return true
	}
	return false
}

// TrimAdapterFasta tries each adapter sequence loaded from a FASTA file in
// order and trims at the first one found, stopping after the first match —
// a read is only ever cut once per adapter-trim step regardless of how many
// candidate adapters it contains.
func TrimAdapterFasta(r *seqio.Record, adapters [][]byte) bool {
	for _, a := range adapters {
		if TrimAdapterSequence(r, a) {
			return true
		}
	}
	return false
}
