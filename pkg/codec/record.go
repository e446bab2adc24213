package codec

import (
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// DefaultDateLayout is the layout of the bracketed record date (YYYY-MM-DD HH:MM:SS).
const DefaultDateLayout = "2006-01-02 15:04:05"

// Record is one decoded log record.
type Record struct {
	Date    *time.Time `json:"date"`    // nil when the date did not parse
	Logger  string     `json:"logger"`  // channel name
	Level   string     `json:"level"`   // severity token, e.g. ERROR
	Message string     `json:"message"` // may contain newlines
	Context any        `json:"context"` // nil when the payload is not valid JSON
	Extra   any        `json:"extra"`   // nil when the payload is not valid JSON
}

// Meta is the boundary information read from the first line of a record.
type Meta struct {
	Date  *time.Time
	Level string
}

// HasValidDate reports whether the record date parsed.
func (r *Record) HasValidDate() bool {
	return r != nil && r.Date != nil
}

// Encode formats a record in the canonical single-block text form accepted
// by Decode. Nil payloads are written as empty arrays and a nil date as an
// empty bracket pair.
func Encode(r *Record) string {
	return EncodeLayout(r, DefaultDateLayout)
}

// EncodeLayout is Encode with an explicit date layout.
func EncodeLayout(r *Record, layout string) string {
	if r == nil {
		return ""
	}

	var b strings.Builder
	b.WriteByte('[')
	if r.Date != nil {
		b.WriteString(r.Date.Format(layout))
	}
	b.WriteString("] ")
	b.WriteString(r.Logger)
	b.WriteByte('.')
	b.WriteString(r.Level)
	b.WriteString(": ")
	b.WriteString(r.Message)
	b.WriteByte(' ')
	b.WriteString(encodePayload(r.Context))
	b.WriteByte(' ')
	b.WriteString(encodePayload(r.Extra))
	return b.String()
}

func encodePayload(v any) string {
	if v == nil {
		return "[]"
	}
	data, err := json.Marshal(v)
	if err != nil || len(data) == 0 || (data[0] != '[' && data[0] != '{') {
		return "[]"
	}
	return string(data)
}
