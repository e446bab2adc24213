package api

import (
	"time"

	"github.com/ssargent/monologreader/pkg/codec"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// RecordResponse is one record and its position in the file. Record is null
// when the record's boundary matched but its text did not decode.
type RecordResponse struct {
	Index  int           `json:"index"`
	Record *codec.Record `json:"record"`
}

// RecordPage is a window of records.
type RecordPage struct {
	Offset  int              `json:"offset"`
	Limit   int              `json:"limit"`
	Total   int              `json:"total"`
	Records []RecordResponse `json:"records"`
}

// StatsResponse summarises the served file.
type StatsResponse struct {
	File    string         `json:"file,omitempty"`
	Records int            `json:"records"`
	Lines   int            `json:"lines"`
	Levels  map[string]int `json:"levels"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind string
	Port int
	File string // shown in stats
}

// RecordSource is the read-only record collection served by the API.
// *reader.LogReader implements it.
type RecordSource interface {
	Count() int
	Lines() int
	Get(i int) (*codec.Record, error)
	Set(i int, r *codec.Record) error
	Delete(i int) error
	Levels() map[string]int
	ByLevel(levels ...string) []int
	Between(from, to time.Time) []int
}
