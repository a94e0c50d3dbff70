// Package search provides the per-worker translated-search context and a
// reference implementation of the translated protein search.
//
// The real system matches each read, translated in all six frames, against
// a compressed BWT-FMI protein index — that index and its matching logic is
// an external contract this repository does not own (spec §6:
// TranslatedSearch). The Index here is a minimal seed-table stand-in: it
// maps short nucleotide seeds straight to a dictionary entry, giving the
// pipeline a real, testable search step without reimplementing an FM-index.
package search

import (
	"github.com/wyang-bio/seq2fun-core/internal/dict"
	"github.com/wyang-bio/seq2fun-core/pkg/seqio"
)

// Index is the read-only, shared-immutable search structure workers query
// against. Build it once at startup alongside the Dictionary.
type Index struct {
	seedLen int
	seeds   map[string]dict.OrthologRef
}

// NewIndex builds an index from a seed -> ortholog-id table, resolving each
// id through d. Unresolvable ids are skipped.
func NewIndex(d *dict.Dictionary, seedLen int, seedToID map[string]string) *Index {
	idx := &Index{seedLen: seedLen, seeds: make(map[string]dict.OrthologRef, len(seedToID))}
	for seed, id := range seedToID {
		if ref, ok := d.Lookup(id); ok {
			idx.seeds[seed] = ref
		}
	}
	return idx
}

// Context is the per-worker mutable search state: a local PartialHitMap
// plus a handle to the shared, read-only Index. Not safe for concurrent use
// across workers — each worker owns exactly one.
type Context struct {
	index *Index
	hits  map[dict.OrthologRef]uint32
}

// NewContext creates a worker-local search context bound to idx.
func NewContext(idx *Index) *Context {
	return &Context{index: idx, hits: make(map[dict.OrthologRef]uint32)}
}

// Search looks for any indexed seed within r's sequence and, if found,
// records a hit in the local PartialHitMap and returns the resolved ref.
// Returns (dict.Unmapped, false) on a search miss — not an error, per the
// pipeline's error taxonomy.
func (c *Context) Search(r *seqio.Record) (dict.OrthologRef, bool) {
	if c.index == nil || len(c.index.seeds) == 0 || len(r.Seq) < c.index.seedLen {
		return dict.Unmapped, false
	}
	for i := 0; i+c.index.seedLen <= len(r.Seq); i++ {
		seed := string(r.Seq[i : i+c.index.seedLen])
		if ref, ok := c.index.seeds[seed]; ok {
			c.hits[ref]++
			return ref, true
		}
	}
	return dict.Unmapped, false
}

// PartialHitMap returns this worker's accumulated hit counts. The caller
// (the aggregator) must not mutate the returned map; ownership stays with
// the Context until the worker goroutine has joined.
func (c *Context) PartialHitMap() map[dict.OrthologRef]uint32 {
	return c.hits
}
