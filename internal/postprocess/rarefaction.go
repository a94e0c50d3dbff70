package postprocess

import (
	"math"
	"math/rand"
	"sort"

	"github.com/wyang-bio/seq2fun-core/internal/dict"
	"github.com/wyang-bio/seq2fun-core/internal/runstate"
)

// rarefactionSteps is the number of equal-width prefixes sampled between
// the origin and the full vector (spec §4.6).
const rarefactionSteps = 50

// ComputeRarefaction builds the saturation curve from a GlobalHitMap: each
// ortholog id is repeated `count` times into a flat vector, shuffled, then
// sampled at 50 equal-width prefixes. rng is injected so callers (and
// tests) control reproducibility; production call sites pass a
// rand.New(rand.NewSource(...)) seeded from wall-clock time once at
// startup.
func ComputeRarefaction(hits map[dict.OrthologRef]uint32, totalRawReads int64, rng *rand.Rand) []runstate.RarefactionPoint {
	var total int64
	for _, c := range hits {
		total += int64(c)
	}
	if total == 0 {
		return []runstate.RarefactionPoint{{ReadCount: 0, DistinctOrthologs: 0}}
	}

	vec := make([]dict.OrthologRef, 0, total)
	for ref, c := range hits {
		for i := uint32(0); i < c; i++ {
			vec = append(vec, ref)
		}
	}
	rng.Shuffle(len(vec), func(i, j int) { vec[i], vec[j] = vec[j], vec[i] })

	points := make([]runstate.RarefactionPoint, 0, rarefactionSteps+2)
	points = append(points, runstate.RarefactionPoint{ReadCount: 0, DistinctOrthologs: 0})

	step := total / rarefactionSteps
	if step == 0 {
		step = 1
	}
	for i := 1; i < rarefactionSteps; i++ {
		prefixLen := step * int64(i)
		if prefixLen >= total {
			break
		}
		distinct := distinctCount(vec[:prefixLen])
		x := int64(math.Round(float64(prefixLen) * float64(totalRawReads) / float64(total)))
		points = append(points, runstate.RarefactionPoint{ReadCount: x, DistinctOrthologs: distinct})
	}

	points = append(points, runstate.RarefactionPoint{
		ReadCount:         totalRawReads,
		DistinctOrthologs: distinctCount(vec),
	})
	return points
}

// distinctCount sorts a copy of the prefix and counts distinct values,
// matching the reference "sort then scan" approach rather than a map, since
// the prefix is re-sorted at every step anyway.
func distinctCount(prefix []dict.OrthologRef) int {
	if len(prefix) == 0 {
		return 0
	}
	cp := append([]dict.OrthologRef(nil), prefix...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	distinct := 1
	for i := 1; i < len(cp); i++ {
		if cp[i] != cp[i-1] {
			distinct++
		}
	}
	return distinct
}
