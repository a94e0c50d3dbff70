// Package dict holds the read-only ortholog dictionary the pipeline maps
// reads against. Keys handed out by the dictionary (OrthologRef) are plain
// slot indices rather than strings or pointers: two workers that both
// observe the same logical ortholog always produce the same OrthologRef, so
// merging per-worker hit maps reduces to integer-keyed summation with no
// string interning step.
package dict

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// OrthologRef is a stable reference into a Dictionary's annotation table.
// Refs are slot indices starting at 0; Unmapped (-1) never refers to a real
// entry.
type OrthologRef int32

// Unmapped marks "no ortholog" / "not found in dictionary".
const Unmapped OrthologRef = -1

// Annotation is the metadata attached to a single ortholog group.
type Annotation struct {
	KO     string
	GO     string
	Symbol string
	Gene   string
}

// Pipe renders the annotation in the abundance file's pipe-joined column
// format: ko|go|symbol|gene.
func (a Annotation) Pipe() string {
	return a.KO + "|" + a.GO + "|" + a.Symbol + "|" + a.Gene
}

// Dictionary is the immutable id -> annotation table loaded once before the
// pipeline starts. It is safe for concurrent read-only access by any number
// of workers.
type Dictionary struct {
	ids   []string
	annot []Annotation
	index map[string]OrthologRef
}

// Load reads a tab-separated dictionary file with columns
// id, ko, go, symbol, gene (extra columns are ignored, missing trailing
// columns are treated as empty).
func Load(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary %q: %w", path, err)
	}
	defer f.Close()

	d := &Dictionary{index: make(map[string]OrthologRef)}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		id := fields[0]
		a := Annotation{}
		if len(fields) > 1 {
			a.KO = fields[1]
		}
		if len(fields) > 2 {
			a.GO = fields[2]
		}
		if len(fields) > 3 {
			a.Symbol = fields[3]
		}
		if len(fields) > 4 {
			a.Gene = fields[4]
		}
		if _, exists := d.index[id]; exists {
			continue
		}
		ref := OrthologRef(len(d.ids))
		d.ids = append(d.ids, id)
		d.annot = append(d.annot, a)
		d.index[id] = ref
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary %q: %w", path, err)
	}
	return d, nil
}

// Lookup resolves an ortholog id string to its stable reference.
func (d *Dictionary) Lookup(id string) (OrthologRef, bool) {
	ref, ok := d.index[id]
	return ref, ok
}

// ID returns the textual ortholog id a ref resolves to.
func (d *Dictionary) ID(ref OrthologRef) (string, bool) {
	if ref < 0 || int(ref) >= len(d.ids) {
		return "", false
	}
	return d.ids[ref], true
}

// Annotation returns the annotation a ref resolves to.
func (d *Dictionary) Annotation(ref OrthologRef) (Annotation, bool) {
	if ref < 0 || int(ref) >= len(d.annot) {
		return Annotation{}, false
	}
	return d.annot[ref], true
}

// Len reports the number of entries in the dictionary.
func (d *Dictionary) Len() int {
	return len(d.ids)
}
