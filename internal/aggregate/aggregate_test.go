package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wyang-bio/seq2fun-core/internal/dict"
	"github.com/wyang-bio/seq2fun-core/internal/filter"
	"github.com/wyang-bio/seq2fun-core/internal/search"
	"github.com/wyang-bio/seq2fun-core/internal/worker"
	"github.com/wyang-bio/seq2fun-core/pkg/seqio"
)

func TestMergeSumsHitCountsAcrossWorkers(t *testing.T) {
	idx := search.NewIndex(&dict.Dictionary{}, 4, nil)
	w0 := worker.NewContext(0, idx, nil)
	w1 := worker.NewContext(1, idx, nil)

	ref := dict.OrthologRef(7)
	w0.Search.PartialHitMap()[ref] = 3
	w1.Search.PartialHitMap()[ref] = 5
	w1.Search.PartialHitMap()[dict.OrthologRef(9)] = 2

	w0.Filter.Record(filter.Pass)
	w1.Filter.Record(filter.FailTooShort)

	g := Merge([]*worker.Context{w0, w1})

	assert.Equal(t, uint32(8), g.HitCounts[ref])
	assert.Equal(t, uint32(2), g.HitCounts[dict.OrthologRef(9)])
	assert.Equal(t, 2, g.DistinctOrthologs)
	assert.Equal(t, int64(10), g.TotalMappedReads)
	assert.Equal(t, int64(1), g.Filter.Count(filter.Pass))
	assert.Equal(t, int64(1), g.Filter.Count(filter.FailTooShort))
}

func TestMergeSkipsNilContexts(t *testing.T) {
	idx := search.NewIndex(&dict.Dictionary{}, 4, nil)
	w0 := worker.NewContext(0, idx, nil)

	g := Merge([]*worker.Context{w0, nil})

	assert.NotNil(t, g)
	assert.Equal(t, 0, g.DistinctOrthologs)
}

func TestMergeCombinesStatsAndTracksRecordCounts(t *testing.T) {
	idx := search.NewIndex(&dict.Dictionary{}, 4, nil)
	w0 := worker.NewContext(0, idx, nil)
	w0.PreStats.Update(&seqio.Record{Seq: []byte("ACGT"), Qual: []byte("IIII")})
	w1 := worker.NewContext(1, idx, nil)
	w1.PreStats.Update(&seqio.Record{Seq: []byte("ACGTACGT"), Qual: []byte("IIIIIIII")})

	g := Merge([]*worker.Context{w0, w1})

	assert.Equal(t, int64(2), g.PreStats.Reads)
	assert.Equal(t, int64(12), g.PreStats.Bases)
}
