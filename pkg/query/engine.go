package query

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ssargent/monologreader/pkg/codec"
)

// SimpleQueryEngine answers level and date constraints from the reader's
// indexes and checks field conditions on the decoded records.
type SimpleQueryEngine struct {
	src       RecordSource
	extractor FieldExtractor
}

// NewSimpleQueryEngine creates a new query engine
func NewSimpleQueryEngine(src RecordSource, extractor FieldExtractor) *SimpleQueryEngine {
	if extractor == nil {
		extractor = &RecordFieldExtractor{}
	}
	return &SimpleQueryEngine{
		src:       src,
		extractor: extractor,
	}
}

// Plan returns the record indexes satisfying the level and date constraints,
// or nil when the query has neither. Field conditions are not applied. With
// a date constraint the indexes are in date order, otherwise in file order.
func (qe *SimpleQueryEngine) Plan(q Query) []int {
	if len(q.Levels) == 0 && q.From == nil && q.To == nil {
		return nil
	}
	if q.From == nil && q.To == nil {
		return nonNil(qe.src.ByLevel(q.Levels...))
	}

	lo, hi := time.Time{}, time.Now().AddDate(100, 0, 0)
	if q.From != nil {
		lo = *q.From
	}
	if q.To != nil {
		hi = *q.To
	}
	indexes := qe.src.Between(lo, hi)
	if len(q.Levels) > 0 {
		wanted := qe.src.ByLevel(q.Levels...)
		indexes = slices.DeleteFunc(indexes, func(i int) bool {
			_, found := slices.BinarySearch(wanted, i)
			return !found
		})
	}
	return nonNil(indexes)
}

// Execute streams the records matching q
func (qe *SimpleQueryEngine) Execute(ctx context.Context, q Query) (QueryIterator, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}
	return &recordIterator{
		ctx:     ctx,
		engine:  qe,
		fields:  q.Fields,
		indexes: qe.Plan(q),
		pos:     -1,
	}, nil
}

// Page returns up to limit matches starting at offset, and the total number
// of matches. Without field conditions only the page itself is decoded.
func (qe *SimpleQueryEngine) Page(ctx context.Context, q Query, offset, limit int) ([]QueryResult, int, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, fmt.Errorf("invalid query: %w", err)
	}

	results := []QueryResult{}

	if len(q.Fields) == 0 {
		indexes := qe.Plan(q)
		total := qe.src.Count()
		if indexes != nil {
			total = len(indexes)
		}
		for pos := offset; pos < total && pos < offset+limit; pos++ {
			i := pos
			if indexes != nil {
				i = indexes[pos]
			}
			rec, err := qe.src.Get(i)
			if err != nil {
				return nil, 0, err
			}
			results = append(results, QueryResult{Index: i, Record: rec})
		}
		return results, total, nil
	}

	it, err := qe.Execute(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	defer it.Close()

	total := 0
	for it.Next() {
		if total >= offset && total < offset+limit {
			results = append(results, it.Result())
		}
		total++
	}
	if err := it.Err(); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

// Matches reports whether rec satisfies every field condition. A record that
// did not decode matches only when there are no conditions.
func (qe *SimpleQueryEngine) Matches(rec *codec.Record, fields []FieldQuery) bool {
	for _, f := range fields {
		v, ok := qe.extractor.Extract(rec, f.Field)
		if !ok || !compare(v, f.Operator, f.Value) {
			return false
		}
	}
	return true
}

// compare applies op to a decoded JSON value and the query text. Ordering
// operators compare numerically when both sides are numbers, otherwise as
// strings.
func compare(v interface{}, op, want string) bool {
	got := stringify(v)
	switch op {
	case "=":
		return got == want
	case "!=":
		return got != want
	case "~":
		return strings.Contains(got, want)
	}

	var c int
	gf, gerr := strconv.ParseFloat(got, 64)
	wf, werr := strconv.ParseFloat(want, 64)
	if gerr == nil && werr == nil {
		c = cmpFloat(gf, wf)
	} else {
		c = strings.Compare(got, want)
	}

	switch op {
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	}
	return false
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return "null"
	}
	return fmt.Sprint(v)
}

func nonNil(indexes []int) []int {
	if indexes == nil {
		return []int{}
	}
	return indexes
}

// recordIterator implements QueryIterator, decoding records lazily
type recordIterator struct {
	ctx     context.Context
	engine  *SimpleQueryEngine
	fields  []FieldQuery
	indexes []int // nil means every record
	pos     int
	result  QueryResult
	err     error
}

func (it *recordIterator) Next() bool {
	for it.err == nil {
		if err := it.ctx.Err(); err != nil {
			it.err = err
			return false
		}

		it.pos++
		i := it.pos
		if it.indexes != nil {
			if it.pos >= len(it.indexes) {
				return false
			}
			i = it.indexes[it.pos]
		} else if it.pos >= it.engine.src.Count() {
			return false
		}

		rec, err := it.engine.src.Get(i)
		if err != nil {
			it.err = err
			return false
		}
		if it.engine.Matches(rec, it.fields) {
			it.result = QueryResult{Index: i, Record: rec}
			return true
		}
	}
	return false
}

func (it *recordIterator) Result() QueryResult {
	return it.result
}

func (it *recordIterator) Err() error {
	return it.err
}

func (it *recordIterator) Close() error {
	// Cleanup resources if needed
	it.result = QueryResult{}
	return nil
}
