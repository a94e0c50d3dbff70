package postprocess

import (
	"bufio"
	"fmt"
	"os"
	"sort"

	"github.com/wyang-bio/seq2fun-core/internal/dict"
)

// UnmappedID is the placeholder id written for a GlobalHitMap key the
// dictionary no longer resolves — an empty annotation, never a stale one
// (spec §9 resolution 1).
const UnmappedID = "s2f_U"

// WriteAbundance writes the `<prefix>_s2fid_abundance.txt` file: a header
// line followed by one row per hit-map entry, sorted by descending count
// for a stable, human-scannable file.
func WriteAbundance(path string, hits map[dict.OrthologRef]uint32, d *dict.Dictionary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create abundance file %q: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "#s2f_id\tReads_count\tannotation")

	type row struct {
		ref   dict.OrthologRef
		count uint32
	}
	rows := make([]row, 0, len(hits))
	for ref, count := range hits {
		rows = append(rows, row{ref, count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].ref < rows[j].ref
	})

	for _, r := range rows {
		id, ok := d.ID(r.ref)
		annotation := ""
		s2fID := UnmappedID
		if ok {
			s2fID = "s2f_" + id
			if a, ok := d.Annotation(r.ref); ok {
				annotation = a.Pipe()
			}
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", s2fID, r.count, annotation)
	}
	return w.Flush()
}
