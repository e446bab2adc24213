package reader

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/ssargent/monologreader/pkg/bptree"
	"github.com/ssargent/monologreader/pkg/codec"
	"github.com/ssargent/monologreader/pkg/source"
)

const timeIndexOrder = 64

// index holds the record boundaries of a file and the secondary lookups
// derived from their first lines.
type index struct {
	spans  []Span
	lines  int
	levels map[string]*roaring.Bitmap
	times  *bptree.BPlusTree[int64, []int]
}

// buildIndex scans src once from the first line. A line matching the meta
// grammar opens a new span and closes the previous one on the line before
// it; any other line extends the open span. Lines before the first match
// belong to no record.
func buildIndex(src source.LineSource, dec *codec.Decoder) (*index, error) {
	idx := &index{
		levels: make(map[string]*roaring.Bitmap),
		times:  bptree.NewBPlusTree[int64, []int](timeIndexOrder),
	}

	if err := src.Seek(0); err != nil {
		return idx, fmt.Errorf("rewind source: %w", err)
	}

	var open *Span
	for !src.EOF() {
		text, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return idx, err
		}

		if meta := dec.DecodeMeta(text); meta != nil {
			if open != nil {
				open.End = idx.lines - 1
				idx.add(*open)
			}
			open = &Span{Start: idx.lines, Date: meta.Date, Level: meta.Level}
		}
		idx.lines++
	}

	if open != nil {
		open.End = idx.lines - 1
		idx.add(*open)
	}
	return idx, nil
}

func (idx *index) add(span Span) {
	n := len(idx.spans)
	idx.spans = append(idx.spans, span)

	bm, ok := idx.levels[span.Level]
	if !ok {
		bm = roaring.New()
		idx.levels[span.Level] = bm
	}
	bm.Add(uint32(n))

	if span.Date != nil {
		idx.times.Upsert(span.Date.Unix(), func(old []int, _ bool) []int {
			return append(old, n)
		})
	}
}

// levelCounts returns the number of records per level.
func (idx *index) levelCounts() map[string]int {
	counts := make(map[string]int, len(idx.levels))
	for level, bm := range idx.levels {
		counts[level] = int(bm.GetCardinality())
	}
	return counts
}

// byLevel returns the record numbers of a level in ascending order.
func (idx *index) byLevel(levels ...string) []int {
	var bm *roaring.Bitmap
	for _, level := range levels {
		if b, ok := idx.levels[level]; ok {
			if bm == nil {
				bm = b.Clone()
				continue
			}
			bm.Or(b)
		}
	}
	if bm == nil {
		return nil
	}

	out := make([]int, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// between returns the record numbers whose date lies in [from, to], ordered
// by date and then by position. Records with an invalid date are never
// included.
func (idx *index) between(from, to time.Time) []int {
	var out []int
	idx.times.Ascend(from.Unix(), to.Unix(), func(_ int64, records []int) bool {
		for _, n := range records {
			if d := idx.spans[n].Date; d.Before(from) || d.After(to) {
				continue
			}
			out = append(out, n)
		}
		return true
	})
	return out
}

// levelNames returns the known levels sorted by name.
func (idx *index) levelNames() []string {
	names := make([]string, 0, len(idx.levels))
	for level := range idx.levels {
		names = append(names, level)
	}
	sort.Strings(names)
	return names
}
