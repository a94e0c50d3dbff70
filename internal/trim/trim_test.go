package trim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wyang-bio/seq2fun-core/pkg/seqio"
)

func rec(seq, qual string) *seqio.Record {
	return &seqio.Record{Name: []byte("r1"), Seq: []byte(seq), Qual: []byte(qual)}
}

func TestFrontTail(t *testing.T) {
	r := rec("ACGTACGT", "IIIIIIII")
	out := FrontTail(r, 2, 1)
	assert.NotNil(t, out)
	assert.Equal(t, "GTACG", string(out.Seq))
	assert.Equal(t, 2, out.TrimmedFront)
}

func TestFrontTailDropsEverything(t *testing.T) {
	r := rec("ACGT", "IIII")
	assert.Nil(t, FrontTail(r, 2, 3))
}

func TestSlidingWindowCutsLowQualityTail(t *testing.T) {
	// quality '#'=2, 'I'=40; the window starting at index 3 (mean 11.5) is
	// the first below 20, so everything from index 3 onward is dropped
	r := rec("ACGTACGT", "IIII####")
	out := SlidingWindow(r, 4, 20)
	assert.NotNil(t, out)
	assert.Equal(t, "ACG", string(out.Seq))
}

func TestSlidingWindowAllLowQuality(t *testing.T) {
	r := rec("ACGT", "####")
	assert.Nil(t, SlidingWindow(r, 4, 20))
}

func TestTrimPolyG(t *testing.T) {
	r := rec("ACGTGGGGGG", "IIIIIIIIII")
	assert.True(t, TrimPolyG(r, 4))
	assert.Equal(t, "ACGT", string(r.Seq))
}

func TestTrimPolyGBelowMinLen(t *testing.T) {
	r := rec("ACGTGG", "IIIIII")
	assert.False(t, TrimPolyG(r, 4))
}

func TestTrimAdapterSequence(t *testing.T) {
	r := rec("ACGTAGATCGGAAGAGC", "IIIIIIIIIIIIIIIII")
	assert.True(t, TrimAdapterSequence(r, []byte("AGATCGGAAGAGC")))
	assert.Equal(t, "ACGT", string(r.Seq))
}

func TestTrimAdapterFastaFirstMatchWins(t *testing.T) {
	r := rec("ACGTNNNN", "IIIIIIII")
	ok := TrimAdapterFasta(r, [][]byte{[]byte("NNNN"), []byte("ACGT")})
	assert.True(t, ok)
	assert.Equal(t, "ACGT", string(r.Seq))
}

func TestClipMaxLength(t *testing.T) {
	r := rec("ACGTACGT", "IIIIIIII")
	assert.True(t, ClipMaxLength(r, 4))
	assert.Equal(t, "ACGT", string(r.Seq))
	assert.False(t, ClipMaxLength(r, 10))
}
