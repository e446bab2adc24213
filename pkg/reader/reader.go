package reader

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/ssargent/monologreader/pkg/codec"
	"github.com/ssargent/monologreader/pkg/logging"
	"github.com/ssargent/monologreader/pkg/source"
)

// LogReader is a read-only, random-access collection of the records in a
// log file. Records are located once when the reader is built and decoded
// each time they are read.
//
// A LogReader is not safe for concurrent use.
type LogReader struct {
	src        source.LineSource
	ownsSource bool
	decoder    *codec.Decoder
	logger     *logging.Logger
	metrics    *Metrics
	index      *index

	cursor int   // traversal position for Rewind/Valid/Current/Next
	err    error // last error seen by All
}

// Open opens the log file at path and indexes it. .gz, .zst and .lz4 files
// are decompressed on the fly.
func Open(path string, opts ...Option) (*LogReader, error) {
	o := buildOptions(opts)

	src, err := source.Open(source.Config{Path: path, CheckpointEvery: o.checkpointEvery})
	if err != nil {
		return nil, err
	}

	r, err := newReader(src, o)
	if err != nil {
		src.Close()
		return nil, err
	}
	r.ownsSource = true
	return r, nil
}

// New indexes an already open line source. The caller keeps ownership of
// src; Close does not close it.
func New(src source.LineSource, opts ...Option) (*LogReader, error) {
	return newReader(src, buildOptions(opts))
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.decoder == nil {
		o.decoder = codec.MustNewDecoder()
	}
	if o.logger == nil {
		o.logger = logging.NoopLogger()
	}
	return o
}

func newReader(src source.LineSource, o options) (*LogReader, error) {
	ctx := context.Background()

	start := time.Now()
	idx, err := buildIndex(src, o.decoder)
	elapsed := time.Since(start)

	o.logger.LogIndexBuilt(ctx, idx.lines, len(idx.spans), elapsed, err)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	o.metrics.RecordIndexBuild(idx.lines, len(idx.spans), elapsed)

	return &LogReader{
		src:     src,
		decoder: o.decoder,
		logger:  o.logger,
		metrics: o.metrics,
		index:   idx,
	}, nil
}

// Count returns the number of records.
func (r *LogReader) Count() int {
	return len(r.index.spans)
}

// Lines returns the number of physical lines scanned.
func (r *LogReader) Lines() int {
	return r.index.lines
}

// Exists reports whether i is a valid record index.
func (r *LogReader) Exists(i int) bool {
	return i >= 0 && i < len(r.index.spans)
}

// Get reads and decodes record i. A record whose boundary matched but whose
// text does not decode is returned as nil with a nil error. An index out of
// range fails with ErrIndexOutOfRange.
//
// Get leaves both the traversal position and the source cursor where it
// found them.
func (r *LogReader) Get(i int) (*codec.Record, error) {
	if !r.Exists(i) {
		return nil, &ReaderError{Op: "get", Index: i, Err: ErrIndexOutOfRange}
	}

	var rec *codec.Record
	err := r.withCursor(func() error {
		var err error
		rec, err = r.read(i)
		return err
	})
	return rec, err
}

// Set always fails: the collection is read-only.
func (r *LogReader) Set(i int, _ *codec.Record) error {
	return &ReaderError{Op: "set", Index: i, Err: ErrReadOnly}
}

// Delete always fails: the collection is read-only.
func (r *LogReader) Delete(i int) error {
	return &ReaderError{Op: "delete", Index: i, Err: ErrReadOnly}
}

// withCursor runs fn and then puts the source cursor back on the line it
// was on, whatever fn returned.
func (r *LogReader) withCursor(fn func() error) (err error) {
	saved := r.src.Line()
	defer func() {
		if serr := r.src.Seek(saved); serr != nil {
			err = errors.Join(err, fmt.Errorf("restore cursor: %w", serr))
		}
	}()
	return fn()
}

// read seeks to span i, joins its lines and decodes them.
func (r *LogReader) read(i int) (*codec.Record, error) {
	start := time.Now()
	span := r.index.spans[i]

	if err := r.src.Seek(span.Start); err != nil {
		return nil, fmt.Errorf("seek to line %d: %w", span.Start, err)
	}

	var block strings.Builder
	for line := span.Start; line <= span.End; line++ {
		text, err := r.src.Next()
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		block.WriteString(text)
	}

	rec := r.decoder.Decode(block.String())
	if rec == nil {
		r.logger.LogDecodeMiss(context.Background(), i, span.Start, span.End)
	}
	r.metrics.RecordRead(rec != nil, time.Since(start))
	return rec, nil
}

// Rewind moves the traversal to the first record.
func (r *LogReader) Rewind() {
	r.cursor = 0
}

// Valid reports whether the traversal is on a record.
func (r *LogReader) Valid() bool {
	return r.Exists(r.cursor)
}

// Key returns the traversal position.
func (r *LogReader) Key() int {
	return r.cursor
}

// Current reads the record at the traversal position.
func (r *LogReader) Current() (*codec.Record, error) {
	return r.Get(r.cursor)
}

// Next advances the traversal. It stops one past the last record.
func (r *LogReader) Next() {
	if r.cursor < r.Count() {
		r.cursor++
	}
}

// All iterates over every record in order. It has its own position, so
// neither Get nor the Rewind/Next traversal affect it. Iteration stops at
// the first read error, which Err then reports.
func (r *LogReader) All() iter.Seq2[int, *codec.Record] {
	return func(yield func(int, *codec.Record) bool) {
		r.err = nil
		for i := 0; i < r.Count(); i++ {
			rec, err := r.Get(i)
			if err != nil {
				r.err = err
				return
			}
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Err returns the error that stopped the last All iteration, if any.
func (r *LogReader) Err() error {
	return r.err
}

// Iterator returns a streaming iterator over all records
func (r *LogReader) Iterator() RecordIterator {
	return &recordIterator{reader: r, indexes: nil, pos: -1}
}

// Spans returns a copy of the record boundaries.
func (r *LogReader) Spans() []Span {
	out := make([]Span, len(r.index.spans))
	copy(out, r.index.spans)
	return out
}

// Levels returns the number of records per level.
func (r *LogReader) Levels() map[string]int {
	return r.index.levelCounts()
}

// LevelNames returns the levels present in the file, sorted.
func (r *LogReader) LevelNames() []string {
	return r.index.levelNames()
}

// ByLevel returns the indexes of records with any of the given levels, in
// file order. Levels are compared exactly.
func (r *LogReader) ByLevel(levels ...string) []int {
	return r.index.byLevel(levels...)
}

// Between returns the indexes of records dated within [from, to], ordered
// by date. Records whose date did not parse are never returned.
func (r *LogReader) Between(from, to time.Time) []int {
	return r.index.between(from, to)
}

// Select returns an iterator over the given record indexes. A nil slice
// selects nothing.
func (r *LogReader) Select(indexes []int) RecordIterator {
	if indexes == nil {
		indexes = []int{}
	}
	return &recordIterator{reader: r, indexes: indexes, pos: -1}
}

// Close closes the source if the reader opened it.
func (r *LogReader) Close() error {
	if !r.ownsSource {
		return nil
	}
	return r.src.Close()
}
