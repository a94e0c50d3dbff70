package dict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDict(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "dict.tsv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadAndLookup(t *testing.T) {
	path := writeDict(t, "#id\tko\tgo\tsymbol\tgene\nK00001\tko:K00001\tGO:1\tHK\thexokinase\nK00002\tko:K00002\tGO:2\tPK\tpyruvate-kinase\n")

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())

	ref, ok := d.Lookup("K00002")
	require.True(t, ok)
	ann, ok := d.Annotation(ref)
	require.True(t, ok)
	assert.Equal(t, "ko:K00002|GO:2|PK|pyruvate-kinase", ann.Pipe())

	_, ok = d.Lookup("missing")
	assert.False(t, ok)
}

func TestLookupRefOutOfRange(t *testing.T) {
	path := writeDict(t, "K1\tko\tgo\tsym\tgene\n")
	d, err := Load(path)
	require.NoError(t, err)

	_, ok := d.Annotation(Unmapped)
	assert.False(t, ok)
	_, ok = d.Annotation(OrthologRef(99))
	assert.False(t, ok)
}
