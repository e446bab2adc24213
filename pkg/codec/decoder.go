package codec

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

const (
	// DefaultMetaPattern matches the prefix of a line that starts a record.
	DefaultMetaPattern = `^\[(?P<date>[^\n]*?)\] (?P<logger>\w+)\.(?P<level>\w+): `

	// DefaultRecordPattern matches a record block once its trailing context
	// and extra payloads have been removed.
	DefaultRecordPattern = `(?s)^\[(?P<date>[^\n]*?)\] (?P<logger>\w+)\.(?P<level>\w+): (?P<message>.*)$`
)

// ErrInvalidPattern is returned when a supplied grammar does not compile or
// lacks one of the named groups the decoder reads.
var ErrInvalidPattern = errors.New("invalid record pattern")

type options struct {
	metaPattern   string
	recordPattern string
	dateLayout    string
	location      *time.Location
}

// Option configures a Decoder.
type Option func(*options)

// WithMetaPattern replaces the record-start pattern. It must define the
// named groups date and level. An empty pattern keeps the default.
func WithMetaPattern(pattern string) Option {
	return func(o *options) {
		if pattern != "" {
			o.metaPattern = pattern
		}
	}
}

// WithRecordPattern replaces the record header pattern. It must define the
// named groups date, logger, level and message. An empty pattern keeps the
// default.
func WithRecordPattern(pattern string) Option {
	return func(o *options) {
		if pattern != "" {
			o.recordPattern = pattern
		}
	}
}

// WithDateLayout sets the time layout used to parse the date group.
func WithDateLayout(layout string) Option {
	return func(o *options) {
		if layout != "" {
			o.dateLayout = layout
		}
	}
}

// WithLocation sets the time zone dates are interpreted in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// Decoder turns log text into records.
type Decoder struct {
	meta       *regexp.Regexp
	record     *regexp.Regexp
	dateLayout string
	location   *time.Location

	// submatch indexes of the named groups
	metaDate   int
	metaLevel  int
	recDate    int
	recLogger  int
	recLevel   int
	recMessage int
}

// NewDecoder builds a Decoder from the default Monolog grammar, modified by opts.
func NewDecoder(opts ...Option) (*Decoder, error) {
	o := options{
		metaPattern:   DefaultMetaPattern,
		recordPattern: DefaultRecordPattern,
		dateLayout:    DefaultDateLayout,
		location:      time.Local,
	}
	for _, opt := range opts {
		opt(&o)
	}

	meta, err := compile(o.metaPattern, "date", "level")
	if err != nil {
		return nil, fmt.Errorf("meta pattern: %w", err)
	}
	record, err := compile(o.recordPattern, "date", "logger", "level", "message")
	if err != nil {
		return nil, fmt.Errorf("record pattern: %w", err)
	}

	return &Decoder{
		meta:       meta,
		record:     record,
		dateLayout: o.dateLayout,
		location:   o.location,
		metaDate:   meta.SubexpIndex("date"),
		metaLevel:  meta.SubexpIndex("level"),
		recDate:    record.SubexpIndex("date"),
		recLogger:  record.SubexpIndex("logger"),
		recLevel:   record.SubexpIndex("level"),
		recMessage: record.SubexpIndex("message"),
	}, nil
}

// MustNewDecoder is NewDecoder that panics on error. Intended for the
// default grammar and tests.
func MustNewDecoder(opts ...Option) *Decoder {
	d, err := NewDecoder(opts...)
	if err != nil {
		panic(err)
	}
	return d
}

func compile(pattern string, groups ...string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	for _, g := range groups {
		if re.SubexpIndex(g) < 0 {
			return nil, fmt.Errorf("%w: missing group %q", ErrInvalidPattern, g)
		}
	}
	return re, nil
}

// DateLayout returns the layout dates are parsed with.
func (d *Decoder) DateLayout() string {
	return d.dateLayout
}

// Location returns the time zone dates are interpreted in.
func (d *Decoder) Location() *time.Location {
	return d.location
}

// DecodeMeta reports whether line starts a record. It returns nil when the
// line does not match the meta grammar, which callers treat as a
// continuation of the previous record.
func (d *Decoder) DecodeMeta(line string) *Meta {
	if line == "" {
		return nil
	}
	m := d.meta.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	return &Meta{
		Date:  d.parseDate(m[d.metaDate]),
		Level: m[d.metaLevel],
	}
}

// Decode extracts a record from a block of one or more lines. It returns nil
// when the block is empty, has fewer than two trailing payloads, or its head
// does not match the record pattern.
func (d *Decoder) Decode(block string) *Record {
	if strings.TrimSpace(block) == "" {
		return nil
	}

	head, context, extra, ok := SplitPayloads(trimLineEnding(block))
	if !ok {
		return nil
	}

	m := d.record.FindStringSubmatch(head)
	if m == nil {
		return nil
	}

	return &Record{
		Date:    d.parseDate(m[d.recDate]),
		Logger:  m[d.recLogger],
		Level:   m[d.recLevel],
		Message: m[d.recMessage],
		Context: decodePayload(context),
		Extra:   decodePayload(extra),
	}
}

func (d *Decoder) parseDate(s string) *time.Time {
	t, err := time.ParseInLocation(d.dateLayout, s, d.location)
	if err != nil {
		return nil
	}
	return &t
}

func decodePayload(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil
	}
	return v
}

// trimLineEnding drops trailing line terminators, so blank lines that follow
// a record do not hide its payloads. Other whitespace is kept.
func trimLineEnding(s string) string {
	return strings.TrimRight(s, "\r\n")
}
