// Package umi implements UMI (unique molecular identifier) extraction: the
// leading umiLen bases are clipped off the read and folded into the read
// name so downstream dedup tooling can recover them.
package umi

import "github.com/wyang-bio/seq2fun-core/pkg/seqio"

// Extract clips the first umiLen bases from r and appends them to the read
// name as "_UMI_<bases>". Returns false (no-op) if the read is too short.
func Extract(r *seqio.Record, umiLen int) bool {
	if umiLen <= 0 || len(r.Seq) <= umiLen {
		return false
	}
	tag := append([]byte(nil), r.Seq[:umiLen]...)
	r.Seq = r.Seq[umiLen:]
	r.Qual = r.Qual[umiLen:]
	r.TrimmedFront += umiLen
	r.Name = append(append(append([]byte{}, r.Name...), []byte("_UMI_")...), tag...)
	return true
}
