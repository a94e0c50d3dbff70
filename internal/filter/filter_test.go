package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wyang-bio/seq2fun-core/pkg/seqio"
)

func TestClassifyNil(t *testing.T) {
	assert.Equal(t, FailTooShort, Classify(nil, Config{}))
}

func TestClassifyTooShort(t *testing.T) {
	r := &seqio.Record{Seq: []byte("ACG"), Qual: []byte("III")}
	assert.Equal(t, FailTooShort, Classify(r, Config{MinLength: 10}))
}

func TestClassifyTooLong(t *testing.T) {
	r := &seqio.Record{Seq: []byte("ACGTACGT"), Qual: []byte("IIIIIIII")}
	assert.Equal(t, FailTooLong, Classify(r, Config{MaxLength: 4}))
}

func TestClassifyNRate(t *testing.T) {
	r := &seqio.Record{Seq: []byte("ACGTNNNN"), Qual: []byte("IIIIIIII")}
	assert.Equal(t, FailNRate, Classify(r, Config{MaxNRate: 0.1}))
}

func TestClassifyLowQuality(t *testing.T) {
	r := &seqio.Record{Seq: []byte("ACGT"), Qual: []byte("####")}
	assert.Equal(t, FailLowQuality, Classify(r, Config{MinMeanQual: 20}))
}

func TestClassifyPass(t *testing.T) {
	r := &seqio.Record{Seq: []byte("ACGTACGT"), Qual: []byte("IIIIIIII")}
	v := Classify(r, Config{MinLength: 4, MaxLength: 100, MinMeanQual: 20, MaxNRate: 0.2})
	assert.Equal(t, Pass, v)
}

func TestResultMerge(t *testing.T) {
	a := NewResult()
	a.Record(Pass)
	a.Record(Pass)
	a.RecordTrimmed()

	b := NewResult()
	b.Record(FailTooShort)

	a.Merge(b)
	assert.Equal(t, int64(2), a.Count(Pass))
	assert.Equal(t, int64(1), a.Count(FailTooShort))
	assert.Equal(t, int64(1), a.Trimmed())
}
