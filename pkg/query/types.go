package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ssargent/monologreader/pkg/codec"
)

// RecordSource is what the engine reads from. *reader.LogReader implements it.
type RecordSource interface {
	Count() int
	Get(i int) (*codec.Record, error)
	ByLevel(levels ...string) []int
	Between(from, to time.Time) []int
}

// FieldExtractor defines how to extract field values from a record
type FieldExtractor interface {
	Extract(rec *codec.Record, field string) (interface{}, bool)
}

// RecordFieldExtractor resolves dotted paths against a record: logger, level,
// message, date, and context.* or extra.* into the decoded payloads.
type RecordFieldExtractor struct{}

// Extract implements FieldExtractor
func (e *RecordFieldExtractor) Extract(rec *codec.Record, field string) (interface{}, bool) {
	if rec == nil {
		return nil, false
	}

	head, rest, nested := strings.Cut(field, ".")
	switch head {
	case "logger":
		return rec.Logger, !nested
	case "level":
		return rec.Level, !nested
	case "message":
		return rec.Message, !nested
	case "date":
		if rec.Date == nil || nested {
			return nil, false
		}
		return rec.Date.Format(time.RFC3339), true
	case "context":
		return lookup(rec.Context, rest, nested)
	case "extra":
		return lookup(rec.Extra, rest, nested)
	}
	return nil, false
}

func lookup(v interface{}, path string, nested bool) (interface{}, bool) {
	if !nested {
		return v, v != nil
	}
	for _, key := range strings.Split(path, ".") {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if v, ok = m[key]; !ok {
			return nil, false
		}
	}
	return v, true
}

// FieldQuery represents a single field-based query condition
type FieldQuery struct {
	Field    string // Dotted field path (e.g. "context.user", "logger")
	Operator string // Comparison operator: "=", "!=", "~", ">", "<", ">=", "<="
	Value    string // Value to compare against
}

// operators tried at each position; two-character operators must come first
var operators = []string{"!=", ">=", "<=", "=", "~", ">", "<"}

// ParseFieldQuery parses a condition such as "context.user=bob" or
// "extra.ms>=100". The condition is split at the first operator in the
// text, so the value may itself contain operator characters.
func ParseFieldQuery(s string) (FieldQuery, error) {
	for i := range len(s) {
		for _, op := range operators {
			if strings.HasPrefix(s[i:], op) {
				q := FieldQuery{
					Field:    strings.TrimSpace(s[:i]),
					Operator: op,
					Value:    strings.TrimSpace(s[i+len(op):]),
				}
				return q, q.Validate()
			}
		}
	}
	return FieldQuery{}, fmt.Errorf("no operator in condition %q", s)
}

// Validate checks if the query is properly formed
func (q *FieldQuery) Validate() error {
	if q.Field == "" {
		return fmt.Errorf("field name cannot be empty")
	}
	if q.Operator == "" {
		return fmt.Errorf("operator cannot be empty")
	}
	for _, op := range operators {
		if q.Operator == op {
			return nil
		}
	}
	return fmt.Errorf("invalid operator: %s", q.Operator)
}

// String returns the condition in the form ParseFieldQuery accepts
func (q FieldQuery) String() string {
	return q.Field + q.Operator + q.Value
}

// Query selects records. Zero values mean no constraint.
type Query struct {
	Levels []string     // any of these levels, exact match
	From   *time.Time   // record date at or after
	To     *time.Time   // record date at or before
	Fields []FieldQuery // all must hold on the decoded record
}

// Validate checks the time range and every field condition
func (q *Query) Validate() error {
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return fmt.Errorf("from %s is after to %s", q.From.Format(time.RFC3339), q.To.Format(time.RFC3339))
	}
	for i := range q.Fields {
		if err := q.Fields[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// QueryResult represents a single query result
type QueryResult struct {
	Index  int           // The record index
	Record *codec.Record // The record, nil if it did not decode
}

// QueryIterator provides streaming access to query results
type QueryIterator interface {
	Next() bool
	Result() QueryResult
	Err() error
	Close() error
}

// QueryEngine handles query execution
type QueryEngine interface {
	Execute(ctx context.Context, q Query) (QueryIterator, error)
	Page(ctx context.Context, q Query, offset, limit int) ([]QueryResult, int, error)
}
