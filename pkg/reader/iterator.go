package reader

import "github.com/ssargent/monologreader/pkg/codec"

// recordIterator implements RecordIterator over all records or a selection.
type recordIterator struct {
	reader  *LogReader
	indexes []int // nil means every record
	pos     int
	current int
	record  *codec.Record
	err     error
}

func (it *recordIterator) Next() bool {
	if it.err != nil {
		return false
	}

	it.pos++
	if it.indexes == nil {
		if it.pos >= it.reader.Count() {
			return false
		}
		it.current = it.pos
	} else {
		if it.pos >= len(it.indexes) {
			return false
		}
		it.current = it.indexes[it.pos]
	}

	it.record, it.err = it.reader.Get(it.current)
	return it.err == nil
}

func (it *recordIterator) Index() int {
	return it.current
}

func (it *recordIterator) Record() *codec.Record {
	return it.record
}

func (it *recordIterator) Err() error {
	return it.err
}

func (it *recordIterator) Close() error {
	// Don't close the underlying reader as it's owned by the caller
	it.record = nil
	return nil
}
