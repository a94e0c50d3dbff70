package postprocess

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyang-bio/seq2fun-core/internal/aggregate"
	"github.com/wyang-bio/seq2fun-core/internal/dict"
	"github.com/wyang-bio/seq2fun-core/internal/filter"
	"github.com/wyang-bio/seq2fun-core/internal/runstate"
)

func testDict(t *testing.T) *dict.Dictionary {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dict.tsv")
	require.NoError(t, os.WriteFile(path, []byte(
		"K00001\tko:K00001\tgo:0000001\tsymA\tgeneA\n"+
			"K00002\tko:K00002\tgo:0000002\tsymB\tgeneB\n"), 0o644))
	d, err := dict.Load(path)
	require.NoError(t, err)
	return d
}

func TestWriteAbundanceFormatsKnownAndUnmappedEntries(t *testing.T) {
	d := testDict(t)
	id1, _ := d.Lookup("K00001")

	hits := map[dict.OrthologRef]uint32{
		id1:                  5,
		dict.OrthologRef(99): 2, // not in dictionary -> s2f_U
	}

	path := filepath.Join(t.TempDir(), "abund.txt")
	require.NoError(t, WriteAbundance(path, hits, d))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.True(t, strings.HasPrefix(text, "#s2f_id\tReads_count\tannotation\n"))
	assert.Contains(t, text, "s2f_K00001\t5\tko:K00001|go:0000001|symA|geneA\n")
	assert.Contains(t, text, "s2f_U\t2\t\n")
}

func TestWriteAbundanceEmptyHitsProducesHeaderOnly(t *testing.T) {
	d := testDict(t)
	path := filepath.Join(t.TempDir(), "abund_empty.txt")
	require.NoError(t, WriteAbundance(path, map[dict.OrthologRef]uint32{}, d))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#s2f_id\tReads_count\tannotation\n", string(content))
}

func TestComputeRarefactionSingleMappedRecordCollapsesToEndpoints(t *testing.T) {
	hits := map[dict.OrthologRef]uint32{dict.OrthologRef(1): 1}
	rng := rand.New(rand.NewSource(1))
	points := ComputeRarefaction(hits, 100, rng)

	require.NotEmpty(t, points)
	assert.Equal(t, int64(0), points[0].ReadCount)
	assert.Equal(t, 0, points[0].DistinctOrthologs)
	last := points[len(points)-1]
	assert.Equal(t, int64(100), last.ReadCount)
	assert.Equal(t, 1, last.DistinctOrthologs)
}

func TestComputeRarefactionZeroMappedReturnsOrigin(t *testing.T) {
	points := ComputeRarefaction(map[dict.OrthologRef]uint32{}, 100, rand.New(rand.NewSource(1)))
	assert.Equal(t, []runstate.RarefactionPoint{{ReadCount: 0, DistinctOrthologs: 0}}, points)
}

func TestComputeRarefactionDistinctCountNeverExceedsDictionarySize(t *testing.T) {
	hits := map[dict.OrthologRef]uint32{
		dict.OrthologRef(1): 400,
		dict.OrthologRef(2): 300,
		dict.OrthologRef(3): 300,
	}
	points := ComputeRarefaction(hits, 1000, rand.New(rand.NewSource(42)))
	for _, p := range points {
		assert.LessOrEqual(t, p.DistinctOrthologs, 3)
	}
}

func TestRunWritesAbundanceAndReportAtomically(t *testing.T) {
	d := testDict(t)
	id1, _ := d.Lookup("K00001")

	global := &aggregate.GlobalResult{
		HitCounts:         map[dict.OrthologRef]uint32{id1: 10},
		TotalMappedReads:  10,
		DistinctOrthologs: 1,
		Filter:            filter.NewResult(),
	}
	global.Filter.Record(filter.Pass)
	global.PreStats.Reads = 20

	rs := runstate.New(time.Unix(0, 1))
	prefix := filepath.Join(t.TempDir(), "run1")

	done, err := Run(Options{
		Prefix:     prefix,
		Dictionary: d,
		Global:     global,
		RunState:   rs,
		Profiling:  true,
		Rng:        rand.New(rand.NewSource(7)),
	})
	require.NoError(t, err)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("post-processor background work never finished")
	}

	_, err = os.Stat(prefix + "_s2fid_abundance.txt")
	require.NoError(t, err)
	reportBytes, err := os.ReadFile(prefix + "_report.json")
	require.NoError(t, err)
	assert.Contains(t, string(reportBytes), "\"total_mapped_reads\": 10")
	assert.NotContains(t, string(reportBytes), ".tmp")
}
