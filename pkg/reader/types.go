package reader

import (
	"errors"
	"fmt"
	"time"

	"github.com/ssargent/monologreader/pkg/codec"
	"github.com/ssargent/monologreader/pkg/logging"
)

// Span is the physical line range of one record, with the date and level
// read from its first line.
type Span struct {
	Start int        // first line, 0-based
	End   int        // last line, inclusive
	Date  *time.Time // nil when the first line's date did not parse
	Level string
}

// Lines returns the number of physical lines in the span.
func (s Span) Lines() int {
	return s.End - s.Start + 1
}

// RecordIterator provides streaming access to records
type RecordIterator interface {
	Next() bool
	Index() int
	Record() *codec.Record
	Err() error
	Close() error
}

// Errors
var (
	ErrIndexOutOfRange = errors.New("record index out of range")
	ErrReadOnly        = errors.New("log reader is read-only")
)

// ReaderError reports a contract violation on a record index.
type ReaderError struct {
	Op    string
	Index int
	Err   error
}

func (e *ReaderError) Error() string {
	return fmt.Sprintf("%s record %d: %v", e.Op, e.Index, e.Err)
}

func (e *ReaderError) Unwrap() error { return e.Err }

type options struct {
	decoder         *codec.Decoder
	logger          *logging.Logger
	metrics         *Metrics
	checkpointEvery int
}

// Option configures a LogReader.
type Option func(*options)

// WithDecoder sets the decoder used for both boundary detection and
// decoding. Defaults to the Monolog grammar.
func WithDecoder(d *codec.Decoder) Option {
	return func(o *options) {
		if d != nil {
			o.decoder = d
		}
	}
}

// WithLogger sets the logger. Defaults to a logger that discards output.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records index and decode metrics.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithCheckpointEvery sets the checkpoint distance of file sources opened by Open.
func WithCheckpointEvery(lines int) Option {
	return func(o *options) {
		o.checkpointEvery = lines
	}
}
