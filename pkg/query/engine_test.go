package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ssargent/monologreader/pkg/codec"
	"github.com/ssargent/monologreader/pkg/reader"
	"github.com/ssargent/monologreader/pkg/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLog = `[2024-03-01 10:00:00] auth.INFO: login {"user":"alice","attempt":1} {"ip":"10.0.0.1"}
[2024-03-01 10:00:10] auth.WARNING: login failed {"user":"bob","attempt":3} {"ip":"10.0.0.2"}
[2024-03-01 10:01:00] db.DEBUG: slow query {"ms":250,"table":{"name":"users"}} []
[2024-03-01 10:02:00] auth.INFO: logout {"user":"alice"} []
[2024-03-01 10:03:00] app.INFO: no payloads
`

func newEngine(t *testing.T) *SimpleQueryEngine {
	t.Helper()
	dec := codec.MustNewDecoder(codec.WithLocation(time.UTC))
	r, err := reader.New(source.NewMemory(testLog), reader.WithDecoder(dec))
	require.NoError(t, err)
	return NewSimpleQueryEngine(r, nil)
}

func at(hour, minute, sec int) *time.Time {
	t := time.Date(2024, time.March, 1, hour, minute, sec, 0, time.UTC)
	return &t
}

func collect(t *testing.T, it QueryIterator) []int {
	t.Helper()
	defer it.Close()
	got := []int{}
	for it.Next() {
		got = append(got, it.Result().Index)
	}
	require.NoError(t, it.Err())
	return got
}

func TestFieldQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		query   FieldQuery
		wantErr bool
	}{
		{
			name:    "valid equality query",
			query:   FieldQuery{Field: "context.user", Operator: "=", Value: "alice"},
			wantErr: false,
		},
		{
			name:    "valid range query",
			query:   FieldQuery{Field: "context.attempt", Operator: ">", Value: "1"},
			wantErr: false,
		},
		{
			name:    "empty field",
			query:   FieldQuery{Field: "", Operator: "=", Value: "x"},
			wantErr: true,
		},
		{
			name:    "empty operator",
			query:   FieldQuery{Field: "logger", Value: "x"},
			wantErr: true,
		},
		{
			name:    "invalid operator",
			query:   FieldQuery{Field: "logger", Operator: "invalid", Value: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("FieldQuery.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseFieldQuery(t *testing.T) {
	tests := []struct {
		input   string
		want    FieldQuery
		wantErr bool
	}{
		{input: "context.user=bob", want: FieldQuery{Field: "context.user", Operator: "=", Value: "bob"}},
		{input: "extra.ms >= 100", want: FieldQuery{Field: "extra.ms", Operator: ">=", Value: "100"}},
		{input: "level!=DEBUG", want: FieldQuery{Field: "level", Operator: "!=", Value: "DEBUG"}},
		{input: "message~timeout", want: FieldQuery{Field: "message", Operator: "~", Value: "timeout"}},
		{input: "context.n<5", want: FieldQuery{Field: "context.n", Operator: "<", Value: "5"}},
		{input: "message~user=bob", want: FieldQuery{Field: "message", Operator: "~", Value: "user=bob"}},
		{input: "message~a>=b", want: FieldQuery{Field: "message", Operator: "~", Value: "a>=b"}},
		{input: "context.q=a!=b", want: FieldQuery{Field: "context.q", Operator: "=", Value: "a!=b"}},
		{input: "context.n<=x<y", want: FieldQuery{Field: "context.n", Operator: "<=", Value: "x<y"}},
		{input: "=bob", wantErr: true},
		{input: "just words", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFieldQuery(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordFieldExtractor_Extract(t *testing.T) {
	date := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rec := &codec.Record{
		Date:    &date,
		Logger:  "auth",
		Level:   "INFO",
		Message: "login",
		Context: map[string]interface{}{"user": "alice", "geo": map[string]interface{}{"country": "NZ"}},
		Extra:   []interface{}{},
	}
	e := &RecordFieldExtractor{}

	tests := []struct {
		field  string
		want   interface{}
		wantOK bool
	}{
		{"logger", "auth", true},
		{"level", "INFO", true},
		{"message", "login", true},
		{"date", "2024-03-01T10:00:00Z", true},
		{"context.user", "alice", true},
		{"context.geo.country", "NZ", true},
		{"context.missing", nil, false},
		{"context.user.name", nil, false},
		{"extra.ip", nil, false},
		{"logger.name", nil, false},
		{"unknown", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			got, ok := e.Extract(rec, tt.field)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := e.Extract(nil, "logger")
	assert.False(t, ok)
}

func TestSimpleQueryEngine_Execute(t *testing.T) {
	engine := newEngine(t)

	tests := []struct {
		name  string
		query Query
		want  []int
	}{
		{"everything", Query{}, []int{0, 1, 2, 3, 4}},
		{"level", Query{Levels: []string{"INFO"}}, []int{0, 3, 4}},
		{"date range", Query{From: at(10, 0, 10), To: at(10, 2, 0)}, []int{1, 2, 3}},
		{"level and date", Query{Levels: []string{"INFO"}, From: at(10, 1, 0)}, []int{3, 4}},
		{"field equality", Query{Fields: []FieldQuery{{Field: "context.user", Operator: "=", Value: "alice"}}}, []int{0, 3}},
		{"numeric compare", Query{Fields: []FieldQuery{{Field: "context.attempt", Operator: ">", Value: "2"}}}, []int{1}},
		{"nested field", Query{Fields: []FieldQuery{{Field: "context.table.name", Operator: "=", Value: "users"}}}, []int{2}},
		{"contains", Query{Fields: []FieldQuery{{Field: "message", Operator: "~", Value: "login"}}}, []int{0, 1}},
		{"not equal skips undecodable", Query{Fields: []FieldQuery{{Field: "logger", Operator: "!=", Value: "auth"}}}, []int{2}},
		{
			"level and field",
			Query{Levels: []string{"INFO"}, Fields: []FieldQuery{{Field: "extra.ip", Operator: "=", Value: "10.0.0.1"}}},
			[]int{0},
		},
		{"no matches", Query{Levels: []string{"CRITICAL"}}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := engine.Execute(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, collect(t, it))
		})
	}
}

func TestSimpleQueryEngine_ExecuteInvalid(t *testing.T) {
	engine := newEngine(t)

	_, err := engine.Execute(context.Background(), Query{Fields: []FieldQuery{{Field: "logger", Operator: "??"}}})
	assert.ErrorContains(t, err, "invalid query")
}

func TestQuery_ValidateReversedRange(t *testing.T) {
	from := time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)

	q := Query{From: &from, To: &to}
	assert.ErrorContains(t, q.Validate(), "is after")

	q.To = &from
	assert.NoError(t, q.Validate())
}

func TestSimpleQueryEngine_ExecuteCancelled(t *testing.T) {
	engine := newEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	it, err := engine.Execute(ctx, Query{})
	require.NoError(t, err)

	require.True(t, it.Next())
	cancel()
	assert.False(t, it.Next())
	assert.True(t, errors.Is(it.Err(), context.Canceled))
}

func TestSimpleQueryEngine_Page(t *testing.T) {
	engine := newEngine(t)

	indexes := func(results []QueryResult) []int {
		out := []int{}
		for _, r := range results {
			out = append(out, r.Index)
		}
		return out
	}

	tests := []struct {
		name          string
		query         Query
		offset, limit int
		want          []int
		total         int
	}{
		{"first page", Query{}, 0, 2, []int{0, 1}, 5},
		{"last page", Query{}, 4, 2, []int{4}, 5},
		{"past end", Query{}, 9, 2, []int{}, 5},
		{"indexed filter", Query{Levels: []string{"INFO"}}, 1, 5, []int{3, 4}, 3},
		{"field filter", Query{Fields: []FieldQuery{{Field: "context.user", Operator: "~", Value: "i"}}}, 1, 1, []int{3}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, total, err := engine.Page(context.Background(), tt.query, tt.offset, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, indexes(results))
			assert.Equal(t, tt.total, total)
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		got  interface{}
		op   string
		want string
		ok   bool
	}{
		{"alice", "=", "alice", true},
		{float64(250), "=", "250", true},
		{float64(250), ">=", "100", true},
		{float64(9), "<", "10", true},
		{"9", "<", "10", true},
		{"b", ">", "a", true},
		{true, "=", "true", true},
		{nil, "=", "null", true},
		{"alice", "!=", "alice", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ok, compare(tt.got, tt.op, tt.want), "%v %s %s", tt.got, tt.op, tt.want)
	}
}
