// Package mgi applies the MGI-platform read name fix-up step of the worker
// pipeline. The actual rewrite lives on seqio.Record since it only touches
// record-local state; this package exists so the pipeline step list in
// internal/worker reads as a flat sequence of named steps.
package mgi

import "github.com/wyang-bio/seq2fun-core/pkg/seqio"

// Fix rewrites r's name in place if it carries the MGI mate-suffix layout.
func Fix(r *seqio.Record) {
	r.FixMGI()
}
