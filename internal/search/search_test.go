package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyang-bio/seq2fun-core/internal/dict"
	"github.com/wyang-bio/seq2fun-core/pkg/seqio"
)

func testDict(t *testing.T) *dict.Dictionary {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dict.tsv")
	require.NoError(t, os.WriteFile(path, []byte("K00001\tko1\tgo1\tsym1\tgene1\n"), 0o644))
	d, err := dict.Load(path)
	require.NoError(t, err)
	return d
}

func TestSearchHit(t *testing.T) {
	d := testDict(t)
	idx := NewIndex(d, 4, map[string]string{"ACGT": "K00001"})
	ctx := NewContext(idx)

	ref, ok := ctx.Search(&seqio.Record{Seq: []byte("TTACGTTT")})
	require.True(t, ok)
	id, _ := d.ID(ref)
	assert.Equal(t, "K00001", id)
	assert.Equal(t, uint32(1), ctx.PartialHitMap()[ref])
}

func TestSearchMiss(t *testing.T) {
	d := testDict(t)
	idx := NewIndex(d, 4, map[string]string{"ACGT": "K00001"})
	ctx := NewContext(idx)

	_, ok := ctx.Search(&seqio.Record{Seq: []byte("TTTTTTTT")})
	assert.False(t, ok)
	assert.Empty(t, ctx.PartialHitMap())
}
