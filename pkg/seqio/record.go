// Package seqio provides the record and reader primitives the processing
// pipeline is built on: owned FASTQ reads and a streaming reader that turns a
// byte stream into them.
package seqio

import "fmt"

// Record is a single owned FASTQ read. Trimming mutates Seq/Qual in place or
// returns a new *Record; callers must stop referencing a Record once a trim
// step supersedes it.
type Record struct {
	Name  []byte
	Seq   []byte
	Qual  []byte
	Index []byte // index tag; Reader sets it to the mate digit for interleaved input and never splits a barcode off the name

	// TrimmedFront counts bases removed from the start of Seq across every
	// trim step applied so far, needed to keep annotation coordinates and
	// UMI bookkeeping aligned with the original read.
	TrimmedFront int
}

// Length returns the current sequence length.
func (r *Record) Length() int {
	if r == nil {
		return 0
	}
	return len(r.Seq)
}

// Resize truncates Seq and Qual to n bases. n must not exceed the current
// length.
func (r *Record) Resize(n int) {
	if n < 0 {
		n = 0
	}
	if n > len(r.Seq) {
		n = len(r.Seq)
	}
	r.Seq = r.Seq[:n]
	if n <= len(r.Qual) {
		r.Qual = r.Qual[:n]
	}
}

// Clone returns a deep copy, used when a trim step must keep the original
// intact while producing a derived record.
func (r *Record) Clone() *Record {
	c := &Record{
		Name:         append([]byte(nil), r.Name...),
		Seq:          append([]byte(nil), r.Seq...),
		Qual:         append([]byte(nil), r.Qual...),
		Index:        append([]byte(nil), r.Index...),
		TrimmedFront: r.TrimmedFront,
	}
	return c
}

// FixMGI rewrites an MGI-platform read name into the conventional Illumina
// layout (strip the trailing "/1" "/2" pair suffix some MGI base-callers
// emit and fold it into a single space-separated mate tag instead).
func (r *Record) FixMGI() {
	n := r.Name
	if len(n) < 2 {
		return
	}
	if n[len(n)-2] == '/' && (n[len(n)-1] == '1' || n[len(n)-1] == '2') {
		mate := n[len(n)-1]
		r.Name = append(append([]byte{}, n[:len(n)-2]...), ' ', mate, ':', 'N', ':', '0', ':')
	}
}

// String renders the record in plain FASTQ form.
func (r *Record) String() string {
	return fmt.Sprintf("@%s\n%s\n+\n%s\n", r.Name, r.Seq, r.Qual)
}

// StringWithTag renders the record with tag appended to the name line,
// separated by a space, matching the annotated-output convention used by the
// primary and failed-reads writers.
func (r *Record) StringWithTag(tag string) string {
	return fmt.Sprintf("@%s %s\n%s\n+\n%s\n", r.Name, tag, r.Seq, r.Qual)
}
